package main

import (
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query settlement",
}

var queryPayArgs struct {
	txArguments
	Capsule string
}

var queryPayCmd = &cobra.Command{
	Use:   "pay",
	Short: "Pay a capsule's per-query price to its creator's escrow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseAddress("capsule", queryPayArgs.Capsule)
		if err != nil {
			return err
		}
		return sendTx(&queryPayArgs.txArguments, tx.TxTypePayQuery, &tx.PayQueryTx{Capsule: a})
	},
}

var earningsCmd = &cobra.Command{
	Use:   "earnings",
	Short: "Earnings escrow",
}

var earningsWithdrawArgs struct {
	txArguments
	Earnings    string
	Destination string
}

var earningsWithdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw accrued earnings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := parseAddress("earnings", earningsWithdrawArgs.Earnings)
		if err != nil {
			return err
		}
		d, err := parseAddress("to", earningsWithdrawArgs.Destination)
		if err != nil {
			return err
		}
		return sendTx(&earningsWithdrawArgs.txArguments, tx.TxTypeWithdrawEarnings, &tx.WithdrawEarningsTx{
			Earnings:    e,
			Destination: d,
		})
	},
}

var earningsShowArgs struct {
	Url string
}

var earningsShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show an earnings record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecord[state.Earnings](earningsShowArgs.Url, "/earnings/", args[0])
	},
}

var transferArgs struct {
	txArguments
	To     string
	Amount uint64
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Send value to another address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseAddress("to", transferArgs.To)
		if err != nil {
			return err
		}
		return sendTx(&transferArgs.txArguments, tx.TxTypeTransfer, &tx.TransferTx{To: to, Amount: transferArgs.Amount})
	},
}

func init() {
	txFlags(queryPayCmd, &queryPayArgs.txArguments)
	addressFlag(queryPayCmd, &queryPayArgs.Capsule, "capsule", "capsule address")
	queryCmd.AddCommand(queryPayCmd)

	txFlags(earningsWithdrawCmd, &earningsWithdrawArgs.txArguments)
	addressFlag(earningsWithdrawCmd, &earningsWithdrawArgs.Earnings, "earnings", "earnings address")
	addressFlag(earningsWithdrawCmd, &earningsWithdrawArgs.Destination, "to", "destination wallet, the earnings owner")
	urlFlag(earningsShowCmd, &earningsShowArgs.Url)
	earningsCmd.AddCommand(earningsWithdrawCmd, earningsShowCmd)

	txFlags(transferCmd, &transferArgs.txArguments)
	addressFlag(transferCmd, &transferArgs.To, "to", "recipient address")
	transferCmd.Flags().Uint64Var(&transferArgs.Amount, "amount", 0, "amount")
}
