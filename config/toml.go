package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	cmtconfig "github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/libs/os"
	"github.com/spf13/viper"
)

// DefaultDirPerm is the default permissions used when creating directories.
const DefaultDirPerm = 0o700

var appConfigTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("appConfigFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if appConfigTemplate, err = tmpl.Parse(defaultAppConfigTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFiles writes config.toml through cometbft and app.toml through
// the embedded template.
func WriteConfigFiles(cfg *Config) {
	cmtconfig.WriteConfigFile(filepath.Join(cfg.RootDir, "config", "config.toml"), cfg.Config)
	WriteAppConfigFile(cfg.AppConfigFile(), cfg)
}

// WriteAppConfigFile renders the app section using the template and writes
// it to configFilePath.
func WriteAppConfigFile(configFilePath string, cfg *Config) {
	var buffer bytes.Buffer

	if err := appConfigTemplate.Execute(&buffer, cfg); err != nil {
		panic(err)
	}

	os.MustWriteFile(configFilePath, buffer.Bytes(), 0o644)
}

// Load reads config.toml and, when present, merges app.toml on top.
func Load(home string) (*Config, error) {
	home = ExpandHome(home)
	cfg := &Config{
		Config: DefaultCometConfig(),
		App:    DefaultAppConfig(home),
	}
	cfg.SetRoot(home)

	v := viper.New()
	v.SetConfigFile(filepath.Join(home, "config", "config.toml"))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if os.FileExists(cfg.AppConfigFile()) {
		v.SetConfigFile(cfg.AppConfigFile())
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading app config: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.SetRoot(home)
	cfg.App.Home = home
	if err := cfg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid configuration data: %w", err)
	}
	return cfg, nil
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go.
//
//go:embed app.toml.tpl
var defaultAppConfigTemplate string
