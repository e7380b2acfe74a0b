package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/config"
	"github.com/calehh/capsule-app/types"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/spf13/cobra"
)

type printInfo struct {
	Moniker    string          `json:"moniker" yaml:"moniker"`
	ChainID    string          `json:"chain_id" yaml:"chain_id"`
	NodeID     string          `json:"node_id" yaml:"node_id"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)

	return err
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, p2p, genesis, and application configuration files",
	Long:  `Initialize validators's and node's configuration files.`,
	Args:  cobra.NoArgs,
	RunE:  initRun,
}

func init() {
	initCmd.Flags().BoolP(FlagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(FlagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().Uint64(FlagFund, 0, "genesis balance of the validator wallet")
	initCmd.Flags().Uint64(FlagLamports, 0, "storage price used for record reservations, 0 for the default")
}

func initRun(cmd *cobra.Command, args []string) error {
	overwrite, _ := cmd.Flags().GetBool(FlagOverwrite)
	chainID, _ := cmd.Flags().GetString(FlagChainID)
	fund, _ := cmd.Flags().GetUint64(FlagFund)
	lamports, _ := cmd.Flags().GetUint64(FlagLamports)
	if chainID == "" {
		chainID = fmt.Sprintf("capsule-chain-%v", rand.Uint64())
	}
	if lamports > config.MaxLamportsPerByteYear {
		return fmt.Errorf("%s above %d", FlagLamports, config.MaxLamportsPerByteYear)
	}

	cfg := config.DefaultConfig(homeDir)
	genFile := cfg.GenesisFile()
	if _, err := os.Stat(genFile); err == nil && !overwrite {
		return fmt.Errorf("genesis file %v already exists, use --%s to replace it", genFile, FlagOverwrite)
	}

	nodeID, pk, err := config.InitializeNodeValidatorFiles(cfg, nil)
	if err != nil {
		return err
	}
	vals := []types.GenesisValidator{{Address: pk.Address(), PubKey: pk, Power: types.DefaultPower}}

	appState := types.AppState{LamportsPerByteYear: lamports}
	if fund > 0 {
		appState.Balances = append(appState.Balances, types.GenesisBalance{
			Address: addr.BytesToAddress(pk.Bytes()),
			Amount:  fund,
		})
	}
	appStateBytes, err := json.Marshal(appState)
	if err != nil {
		return err
	}

	appGenesis := &types.GenesisDoc{
		GenesisTime:     time.Now(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators:      vals,
		AppState:        appStateBytes,
	}
	if err = types.ExportGenesisFile(appGenesis, genFile); err != nil {
		return fmt.Errorf("failed to export genesis file %v", err)
	}
	config.WriteConfigFiles(cfg)
	return displayInfo(printInfo{
		Moniker:    cfg.Moniker,
		ChainID:    chainID,
		NodeID:     nodeID,
		AppMessage: appGenesis.AppState,
	})
}
