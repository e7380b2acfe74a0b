package main

import (
	"fmt"
	"os"
)

func main() {
	clCmd.AddCommand(initCmd)
	clCmd.AddCommand(startCmd)
	clCmd.AddCommand(versionCmd)
	clCmd.AddCommand(pubkeyCmd)
	clCmd.AddCommand(signCmd)
	clCmd.AddCommand(walletCmd)
	clCmd.AddCommand(agentCmd)
	clCmd.AddCommand(capsuleCmd)
	clCmd.AddCommand(poolCmd)
	clCmd.AddCommand(queryCmd)
	clCmd.AddCommand(earningsCmd)
	clCmd.AddCommand(transferCmd)
	clCmd.AddCommand(deriveCmd)
	if err := clCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
