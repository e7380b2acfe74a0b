package main

import "github.com/spf13/cobra"

const (
	FlagHome      = "home"
	FlagChainID   = "chain-id"
	FlagOverwrite = "overwrite"
	FlagFund      = "fund"
	FlagLamports  = "lamports-per-byte-year"

	DefaultKeyPath = "./config/priv_validator_key.json"
)

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", "http://127.0.0.1:26657", "capsuled rpc url")
}

func skeyFlag(cmd *cobra.Command, skey *string) {
	cmd.Flags().StringVarP(skey, "skeyPath", "s", DefaultKeyPath, "private key path")
}

func addressFlag(cmd *cobra.Command, p *string, name, usage string) {
	cmd.Flags().StringVar(p, name, "", usage)
	_ = cmd.MarkFlagRequired(name)
}
