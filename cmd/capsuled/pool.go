package main

import (
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	"github.com/spf13/cobra"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Pooled staking",
}

var poolInitArgs struct {
	txArguments
	CapsuleId string
}

var poolInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the staking pool of a capsule id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendTx(&poolInitArgs.txArguments, tx.TxTypeInitializePool, &tx.InitializePoolTx{
			CapsuleId: poolInitArgs.CapsuleId,
		})
	},
}

type poolAmountArguments struct {
	txArguments
	Pool   string
	Amount uint64
}

var poolStakeArgs, poolUnstakeArgs poolAmountArguments

func poolAmountCmd(use, short string, a *poolAmountArguments, tp tx.TxType) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseAddress("pool", a.Pool)
			if err != nil {
				return err
			}
			if tp == tx.TxTypePoolUnstake {
				return sendTx(&a.txArguments, tp, &tx.PoolUnstakeTx{Pool: p, Amount: a.Amount})
			}
			return sendTx(&a.txArguments, tp, &tx.PoolStakeTx{Pool: p, Amount: a.Amount})
		},
	}
	txFlags(cmd, &a.txArguments)
	addressFlag(cmd, &a.Pool, "pool", "pool address")
	cmd.Flags().Uint64Var(&a.Amount, "amount", 0, "amount")
	return cmd
}

var poolShowArgs struct {
	Url string
}

var poolShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show a staking pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecord[state.StakingPool](poolShowArgs.Url, "/pools/", args[0])
	},
}

var poolShowStakeCmd = &cobra.Command{
	Use:   "show-stake <address>",
	Short: "Show a user stake in a pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecord[state.UserStake](poolShowArgs.Url, "/userstakes/", args[0])
	},
}

func init() {
	txFlags(poolInitCmd, &poolInitArgs.txArguments)
	poolInitCmd.Flags().StringVar(&poolInitArgs.CapsuleId, "capsule-id", "", "capsule id the pool backs")
	_ = poolInitCmd.MarkFlagRequired("capsule-id")

	urlFlag(poolShowCmd, &poolShowArgs.Url)
	urlFlag(poolShowStakeCmd, &poolShowArgs.Url)
	poolCmd.AddCommand(
		poolInitCmd,
		poolAmountCmd("stake", "Stake into a pool", &poolStakeArgs, tx.TxTypePoolStake),
		poolAmountCmd("unstake", "Withdraw stake from a pool", &poolUnstakeArgs, tx.TxTypePoolUnstake),
		poolShowCmd,
		poolShowStakeCmd,
	)
}
