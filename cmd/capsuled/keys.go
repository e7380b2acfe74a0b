package main

import (
	"encoding/hex"
	"fmt"

	"github.com/calehh/capsule-app/crypto"
	"github.com/calehh/capsule-app/state"
	"github.com/spf13/cobra"
)

var pubkeyArgs struct {
	Skey string
}

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Print the public key and wallet address of a key file",
	Args:  cobra.NoArgs,
	RunE:  pubkeyRun,
}

func init() {
	skeyFlag(pubkeyCmd, &pubkeyArgs.Skey)
}

func pubkeyRun(cmd *cobra.Command, args []string) error {
	pv, err := crypto.LoadFilePV(pubkeyArgs.Skey)
	if err != nil {
		return err
	}
	fmt.Println("pubkey:", hex.EncodeToString(pv.PublicKey()))
	fmt.Println("address:", pv.Address())
	return nil
}

var signArgs struct {
	Skey string
}

var signCmd = &cobra.Command{
	Use:   "sign <hex data>",
	Short: "Sign arbitrary data with a key file",
	Args:  cobra.ExactArgs(1),
	RunE:  signRun,
}

func init() {
	skeyFlag(signCmd, &signArgs.Skey)
}

func signRun(cmd *cobra.Command, args []string) error {
	dat, err := hex.DecodeString(args[0])
	if err != nil {
		return err
	}
	pv, err := crypto.LoadFilePV(signArgs.Skey)
	if err != nil {
		return err
	}
	sig, err := pv.Sign(dat)
	if err != nil {
		return fmt.Errorf("sign err: %w", err)
	}
	fmt.Println("address:", pv.Address())
	fmt.Println("signature:", hex.EncodeToString(sig))
	return nil
}

var walletArgs struct {
	Url string
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Create or inspect wallets",
}

var walletNewCmd = &cobra.Command{
	Use:   "new <key file>",
	Short: "Generate a wallet key file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pv, err := crypto.GenFilePV(args[0])
		if err != nil {
			return err
		}
		fmt.Println("address:", pv.Address())
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show balance and nonce of a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecord[state.Wallet](walletArgs.Url, "/wallets/", args[0])
	},
}

func init() {
	urlFlag(walletShowCmd, &walletArgs.Url)
	walletCmd.AddCommand(walletNewCmd, walletShowCmd)
}
