package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
)

const (
	DefaultHomeDir    = "$HOME/.capsule"
	DefaultAPIListen  = "127.0.0.1:8080"
	DefaultQueryCache = 4096
)

type AppConfig struct {
	Home string `mapstructure:"-"`

	APIEnable      bool   `mapstructure:"api_enable"`
	APIListenAddr  string `mapstructure:"api_listen_addr"`
	QueryCacheSize int    `mapstructure:"query_cache_size"`
	Metrics        bool   `mapstructure:"metrics"`
}

func DefaultAppConfig(home string) *AppConfig {
	return &AppConfig{
		Home:           home,
		APIEnable:      true,
		APIListenAddr:  DefaultAPIListen,
		QueryCacheSize: DefaultQueryCache,
		Metrics:        true,
	}
}

func (c *AppConfig) ValidateBasic() error {
	if c.QueryCacheSize < 0 {
		return fmt.Errorf("query_cache_size can't be negative")
	}
	if c.APIEnable && c.APIListenAddr == "" {
		return fmt.Errorf("api_listen_addr is required when api is enabled")
	}
	return nil
}

func (c *AppConfig) DataDir() string {
	return filepath.Join(c.Home, "data")
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *AppConfig `mapstructure:"app"`
}

func ExpandHome(home string) string {
	if len(home) == 0 {
		home = os.ExpandEnv(DefaultHomeDir)
	}
	return home
}

func DefaultConfig(home string) *Config {
	home = ExpandHome(home)
	cfg := &Config{
		DefaultCometConfig(),
		DefaultAppConfig(home),
	}
	cfg.SetRoot(home)
	_ = os.MkdirAll(filepath.Join(home, "config"), DefaultDirPerm)
	return cfg
}

func (c *Config) AppConfigFile() string {
	return filepath.Join(c.RootDir, "config", "app.toml")
}

func (c *Config) ValidateBasic() error {
	if err := c.Config.ValidateBasic(); err != nil {
		return err
	}
	return c.App.ValidateBasic()
}

func InitializeNodeValidatorFiles(cfg *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(cfg.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := cfg.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := cfg.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

func DefaultCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 3
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}
