package main

import (
	"fmt"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var deriveArgs struct {
	Hex bool
}

var deriveCmd = &cobra.Command{
	Use:   "derive <kind> [seed...]",
	Short: "Compute the address of a record",
	Long: `Compute the deterministic address of a record from its kind and seeds.
Seeds that parse as 32 byte hex addresses are used as raw bytes, anything
else as text, unless --hex forces every seed to be hex.

  capsuled derive capsule <creator> my-capsule
  capsuled derive staking <capsule> <staker>`,
	Args: cobra.MinimumNArgs(1),
	RunE: deriveRun,
}

func init() {
	deriveCmd.Flags().BoolVar(&deriveArgs.Hex, "hex", false, "decode every seed as 0x hex")
}

func deriveRun(cmd *cobra.Command, args []string) error {
	req := types.DeriveRequest{Kind: args[0]}
	for _, s := range args[1:] {
		seed, err := parseSeed(s, deriveArgs.Hex)
		if err != nil {
			return err
		}
		req.Seeds = append(req.Seeds, seed)
	}
	res, err := req.Derive()
	if err != nil {
		return err
	}
	return printJSON(res)
}

func parseSeed(s string, forceHex bool) (hexutil.Bytes, error) {
	if forceHex {
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", s, err)
		}
		return b, nil
	}
	if a, err := addr.HexToAddress(s); err == nil {
		return a.Bytes(), nil
	}
	return []byte(s), nil
}
