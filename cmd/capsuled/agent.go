package main

import (
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Agent registry",
}

var agentRegisterArgs struct {
	txArguments
	tx.RegisterAgentTx
}

var agentRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an agent owned by the signing wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := agentRegisterArgs.RegisterAgentTx
		return sendTx(&agentRegisterArgs.txArguments, tx.TxTypeRegisterAgent, &body)
	},
}

var agentShowArgs struct {
	Url string
}

var agentShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show an agent record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecord[state.Agent](agentShowArgs.Url, "/agents/", args[0])
	},
}

func init() {
	f := agentRegisterCmd.Flags()
	txFlags(agentRegisterCmd, &agentRegisterArgs.txArguments)
	f.StringVar(&agentRegisterArgs.AgentId, "id", "", "agent id, at most 32 bytes")
	f.StringVar(&agentRegisterArgs.Name, "name", "", "agent name")
	f.StringVar(&agentRegisterArgs.DisplayName, "display-name", "", "display name")
	f.StringVar(&agentRegisterArgs.Platform, "platform", "", "platform the agent runs on")
	_ = agentRegisterCmd.MarkFlagRequired("id")

	urlFlag(agentShowCmd, &agentShowArgs.Url)
	agentCmd.AddCommand(agentRegisterCmd, agentShowCmd)
}
