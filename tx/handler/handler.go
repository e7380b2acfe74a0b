package handler

import (
	"context"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// TxHandler runs one transaction type against a state. Check validates
// without writing. Process applies the operation; a rejected operation is
// reported through the result code, and only a failure that leaves the
// ledger unusable is returned as an error.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.CapsuleTx) (res *abcitypes.ResponseCheckTx, err error)
	Process(ctx context.Context, st *state.State, btx *tx.CapsuleTx) (res *abcitypes.ExecTxResult, err error)
}

type opHandler[Tx any, E any] struct {
	logger cmtlog.Logger
	apply  func(st *state.State, t *Tx, signer addr.Address, checkOnly bool) (*E, error)
	encode func(*E) abcitypes.Event
}

func newOpHandler[Tx any, E any](logger cmtlog.Logger, module string, apply func(*state.State, *Tx, addr.Address, bool) (*E, error), encode func(*E) abcitypes.Event) *opHandler[Tx, E] {
	return &opHandler[Tx, E]{
		logger: logger.With("module", module),
		apply:  apply,
		encode: encode,
	}
}

func (h *opHandler[Tx, E]) Check(ctx context.Context, st *state.State, btx *tx.CapsuleTx) (res *abcitypes.ResponseCheckTx, err error) {
	t, err := tx.Payload[Tx](btx)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ResponseCheckTx{Code: state.CodeOK}
	_, err1 := h.apply(st, t, btx.Signer, true)
	if err1 != nil {
		h.logger.Info("CheckTx fail", "signer", btx.Signer, "err", err1)
		res.Code = state.CodeOf(err1)
		res.Log = err1.Error()
	}
	return
}

func (h *opHandler[Tx, E]) Process(ctx context.Context, st *state.State, btx *tx.CapsuleTx) (res *abcitypes.ExecTxResult, err error) {
	t, err := tx.Payload[Tx](btx)
	if err != nil {
		return &abcitypes.ExecTxResult{Code: state.CodeTxDecode, Log: err.Error()}, nil
	}
	event, err := h.apply(st, t, btx.Signer, false)
	if err != nil {
		if !state.IsLedgerError(err) {
			h.logger.Error("process tx fail", "signer", btx.Signer, "nonce", btx.Nonce, "err", err)
			return nil, err
		}
		h.logger.Info("tx rejected", "signer", btx.Signer, "nonce", btx.Nonce, "err", err)
		return &abcitypes.ExecTxResult{Code: state.CodeOf(err), Log: err.Error()}, nil
	}
	res = &abcitypes.ExecTxResult{Code: state.CodeOK}
	res.Events = []abcitypes.Event{h.encode(event)}
	return
}

// NewTxHandlers returns the handler of every supported transaction type.
func NewTxHandlers(logger cmtlog.Logger) map[tx.TxType]TxHandler {
	return map[tx.TxType]TxHandler{
		tx.TxTypeRegisterAgent:      NewRegisterAgentTxHandler(logger),
		tx.TxTypeCreateCapsule:      NewCreateCapsuleTxHandler(logger),
		tx.TxTypeUpdateCapsulePrice: NewUpdateCapsulePriceTxHandler(logger),
		tx.TxTypeStakeOnCapsule:     NewStakeOnCapsuleTxHandler(logger),
		tx.TxTypeInitializePool:     NewInitializePoolTxHandler(logger),
		tx.TxTypePoolStake:          NewPoolStakeTxHandler(logger),
		tx.TxTypePoolUnstake:        NewPoolUnstakeTxHandler(logger),
		tx.TxTypePayQuery:           NewPayQueryTxHandler(logger),
		tx.TxTypeWithdrawEarnings:   NewWithdrawEarningsTxHandler(logger),
		tx.TxTypeTransfer:           NewTransferTxHandler(logger),
	}
}
