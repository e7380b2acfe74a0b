package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/app"
	"github.com/calehh/capsule-app/crypto"
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

var ErrRecordNotFound = errors.New("record not found")

type txArguments struct {
	Url    string
	Skey   string
	Nonce  int64
	NoSend bool
}

func txFlags(cmd *cobra.Command, a *txArguments) {
	urlFlag(cmd, &a.Url)
	skeyFlag(cmd, &a.Skey)
	cmd.Flags().Int64VarP(&a.Nonce, "nonce", "n", -1, "wallet nonce, queried when negative")
	cmd.Flags().BoolVarP(&a.NoSend, "nosend", "", false, "print the signed transaction instead of sending it")
}

func newClient(url string) (*http.HTTP, error) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	return cli, nil
}

func parseAddress(name, s string) (addr.Address, error) {
	a, err := addr.HexToAddress(s)
	if err != nil {
		return a, fmt.Errorf("--%s: %w", name, err)
	}
	return a, nil
}

func queryRecord[T any](ctx context.Context, cli *http.HTTP, path string, a addr.Address) (*T, int64, error) {
	res, err := cli.ABCIQuery(ctx, path, a.Bytes())
	if err != nil {
		return nil, 0, err
	}
	switch res.Response.Code {
	case 0:
	case app.QueryCodeNotFound:
		return nil, res.Response.Height, fmt.Errorf("%w: %s%v", ErrRecordNotFound, path, a)
	default:
		return nil, res.Response.Height, fmt.Errorf("query %s: code %d: %s", path, res.Response.Code, res.Response.Log)
	}
	rec := new(T)
	if err = json.Unmarshal(res.Response.Value, rec); err != nil {
		return nil, res.Response.Height, err
	}
	return rec, res.Response.Height, nil
}

func showRecord[T any](url, path, address string) error {
	a, err := parseAddress("address", address)
	if err != nil {
		return err
	}
	cli, err := newClient(url)
	if err != nil {
		return err
	}
	rec, height, err := queryRecord[T](context.Background(), cli, path, a)
	if err != nil {
		return err
	}
	return printJSON(struct {
		Height int64 `json:"height"`
		Record *T    `json:"record"`
	}{height, rec})
}

func printJSON(v any) error {
	dat, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(dat))
	return nil
}

// sendTx signs body with the key at a.Skey and broadcasts it.
func sendTx(a *txArguments, tp tx.TxType, body any) error {
	cli, err := newClient(a.Url)
	if err != nil {
		return err
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		return fmt.Errorf("get chain genesis: %w", err)
	}
	chainId := gres.Genesis.ChainID

	pv, err := crypto.LoadFilePV(a.Skey)
	if err != nil {
		return err
	}
	var nonce uint64
	if a.Nonce < 0 {
		w, _, err := queryRecord[state.Wallet](ctx, cli, "/wallets/", pv.Address())
		if err != nil {
			return err
		}
		nonce = w.Nonce
	} else {
		nonce = uint64(a.Nonce)
	}

	btx := &tx.CapsuleTx{
		Version: tx.TxVersion0,
		Type:    tp,
		Nonce:   nonce,
		Tx:      body,
	}
	if err = pv.SignTx(btx, chainId); err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}
	dat, err := tx.MarshalCapsuleTx(btx)
	if err != nil {
		return err
	}
	if a.NoSend {
		fmt.Println(string(dat))
		return nil
	}
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		return fmt.Errorf("broadcast tx: %w", err)
	}
	if res.Code != 0 {
		return fmt.Errorf("tx rejected: code %d: %s", res.Code, res.Log)
	}
	return printJSON(map[string]any{
		"hash":   res.Hash.String(),
		"signer": pv.Address(),
		"nonce":  nonce,
		"type":   tp.String(),
	})
}
