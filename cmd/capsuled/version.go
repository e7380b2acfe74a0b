package main

import (
	"fmt"

	"github.com/calehh/capsule-app/app"
	"github.com/calehh/capsule-app/tx"
	cmtversion "github.com/cometbft/cometbft/version"
	"github.com/spf13/cobra"
)

// GitCommit is set at build time with -ldflags "-X main.GitCommit=...".
var GitCommit string

const Version = "0.1.0"

func versionString() string {
	if len(GitCommit) >= 8 {
		return Version + "-" + GitCommit[:8]
	}
	return Version
}

var versionVerbose bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the node version",
	Aliases: []string{"V"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !versionVerbose {
			fmt.Println(versionString())
			return nil
		}
		return printJSON(map[string]any{
			"version":    versionString(),
			"app":        app.AppVersion,
			"tx":         tx.TxVersion0,
			"cometbft":   cmtversion.TMCoreSemVer,
			"abci":       cmtversion.ABCIVersion,
			"block":      cmtversion.BlockProtocol,
			"git_commit": GitCommit,
		})
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "print protocol versions as JSON")
}
