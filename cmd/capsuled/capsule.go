package main

import (
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	"github.com/spf13/cobra"
)

var capsuleCmd = &cobra.Command{
	Use:   "capsule",
	Short: "Capsule marketplace and per-capsule staking",
}

var capsuleCreateArgs struct {
	txArguments
	tx.CreateCapsuleTx
}

var capsuleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a capsule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := capsuleCreateArgs.CreateCapsuleTx
		return sendTx(&capsuleCreateArgs.txArguments, tx.TxTypeCreateCapsule, &body)
	},
}

var capsulePriceArgs struct {
	txArguments
	Capsule string
	Price   uint64
}

var capsulePriceCmd = &cobra.Command{
	Use:   "set-price",
	Short: "Change the per-query price of an owned capsule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseAddress("capsule", capsulePriceArgs.Capsule)
		if err != nil {
			return err
		}
		return sendTx(&capsulePriceArgs.txArguments, tx.TxTypeUpdateCapsulePrice, &tx.UpdateCapsulePriceTx{
			Capsule:  a,
			NewPrice: capsulePriceArgs.Price,
		})
	},
}

var capsuleStakeArgs struct {
	txArguments
	Capsule string
	Amount  uint64
}

var capsuleStakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Stake on a capsule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseAddress("capsule", capsuleStakeArgs.Capsule)
		if err != nil {
			return err
		}
		return sendTx(&capsuleStakeArgs.txArguments, tx.TxTypeStakeOnCapsule, &tx.StakeOnCapsuleTx{
			Capsule: a,
			Amount:  capsuleStakeArgs.Amount,
		})
	},
}

var capsuleShowArgs struct {
	Url string
}

var capsuleShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show a capsule record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecord[state.Capsule](capsuleShowArgs.Url, "/capsules/", args[0])
	},
}

var capsuleShowStakeCmd = &cobra.Command{
	Use:   "show-stake <address>",
	Short: "Show a stake record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecord[state.StakeRecord](capsuleShowArgs.Url, "/stakes/", args[0])
	},
}

func init() {
	f := capsuleCreateCmd.Flags()
	txFlags(capsuleCreateCmd, &capsuleCreateArgs.txArguments)
	f.StringVar(&capsuleCreateArgs.CapsuleId, "id", "", "capsule id, at most 32 bytes")
	f.StringVar(&capsuleCreateArgs.Name, "name", "", "capsule name")
	f.StringVar(&capsuleCreateArgs.Description, "description", "", "capsule description")
	f.StringVar(&capsuleCreateArgs.Category, "category", "", "capsule category")
	f.Uint64Var(&capsuleCreateArgs.PricePerQuery, "price", 0, "price per query")
	_ = capsuleCreateCmd.MarkFlagRequired("id")
	_ = capsuleCreateCmd.MarkFlagRequired("price")

	txFlags(capsulePriceCmd, &capsulePriceArgs.txArguments)
	addressFlag(capsulePriceCmd, &capsulePriceArgs.Capsule, "capsule", "capsule address")
	capsulePriceCmd.Flags().Uint64Var(&capsulePriceArgs.Price, "price", 0, "new price per query")

	txFlags(capsuleStakeCmd, &capsuleStakeArgs.txArguments)
	addressFlag(capsuleStakeCmd, &capsuleStakeArgs.Capsule, "capsule", "capsule address")
	capsuleStakeCmd.Flags().Uint64Var(&capsuleStakeArgs.Amount, "amount", 0, "amount to stake")

	urlFlag(capsuleShowCmd, &capsuleShowArgs.Url)
	urlFlag(capsuleShowStakeCmd, &capsuleShowArgs.Url)
	capsuleCmd.AddCommand(capsuleCreateCmd, capsulePriceCmd, capsuleStakeCmd, capsuleShowCmd, capsuleShowStakeCmd)
}
