package app

import (
	"context"
	"errors"
	"time"

	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

var (
	ErrNoFinalizedState = errors.New("commit without finalized block")
	ErrUnexpectedHeight = errors.New("unexpected block height")
)

// parseTx decodes dat and verifies its signer against st. The returned code
// is the result code to report when err is not nil.
func (app *CapsuleApp) parseTx(st *state.State, dat []byte, allowNonceGap bool) (btx *tx.CapsuleTx, code uint32, err error) {
	btx, err = tx.UnmarshalCapsuleTx(dat)
	if err != nil {
		if errors.Is(err, tx.ErrUnsupportedTxType) || errors.Is(err, tx.ErrUnsupportedTxVersion) {
			return nil, state.CodeUnsupportedTx, err
		}
		return nil, state.CodeTxDecode, err
	}
	if _, ok := app.txHdlrs[btx.Type]; !ok {
		return nil, state.CodeUnsupportedTx, tx.ErrUnsupportedTxType
	}
	if err = st.Verify(btx, allowNonceGap); err != nil {
		return nil, state.CodeOf(err), err
	}
	return
}

// applyTx runs a verified tx on a branch of st. The branch is merged back
// only when the operation succeeds, while the signer nonce advances either
// way. err is set only when the ledger can not continue.
func (app *CapsuleApp) applyTx(ctx context.Context, st *state.State, btx *tx.CapsuleTx) (res *abcitypes.ExecTxResult, err error) {
	work := st.Branch()
	res, err = app.txHdlrs[btx.Type].Process(ctx, work, btx)
	if err != nil {
		app.logger.Error("process tx fail", "type", btx.Type, "signer", btx.Signer, "err", err)
		return nil, err
	}
	if res.Code == state.CodeOK {
		st.Merge(work)
	}
	if err = st.IncrementNonce(btx.Signer); err != nil {
		return nil, err
	}
	return
}

func (app *CapsuleApp) blockState(height int64, t time.Time) (*state.State, error) {
	st := app.db.NewState()
	if st.Header().Height != uint64(height) {
		app.logger.Error("block height mismatch", "state", st.Header().Height, "block", height)
		return nil, ErrUnexpectedHeight
	}
	st.SetBlockTime(t.Unix())
	return st, nil
}

func (app *CapsuleApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	st := app.db.CheckState()
	btx, code, err := app.parseTx(st, check.Tx, true)
	if err != nil {
		app.logger.Info("check tx rejected", "code", code, "err", err)
		app.metrics.observeCheckTx(code)
		return &abcitypes.ResponseCheckTx{Code: code, Log: err.Error()}, nil
	}
	res, err = app.txHdlrs[btx.Type].Check(ctx, st, btx)
	if err != nil {
		app.logger.Error("check tx fail", "type", btx.Type, "err", err)
		res = &abcitypes.ResponseCheckTx{Code: state.CodeTxDecode, Log: err.Error()}
		err = nil
	}
	app.metrics.observeCheckTx(res.Code)
	return
}

// PrepareProposal keeps the txs that verify and apply cleanly, in order,
// within the block byte limit.
func (app *CapsuleApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	app.logger.Info("PrepareProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	res = &abcitypes.ResponsePrepareProposal{Txs: make([][]byte, 0, len(proposal.Txs))}
	st, err := app.blockState(proposal.Height, proposal.Time)
	if err != nil {
		return nil, err
	}
	var size int64
	for _, stx := range proposal.Txs {
		if size+int64(len(stx)) > proposal.MaxTxBytes {
			break
		}
		btx, _, err := app.parseTx(st, stx, false)
		if err != nil {
			app.logger.Info("drop tx from proposal", "err", err)
			continue
		}
		work := st.Branch()
		result, err := app.applyTx(ctx, work, btx)
		if err != nil {
			continue
		}
		if result.Code != state.CodeOK {
			app.logger.Info("drop tx from proposal", "type", btx.Type, "code", result.Code, "log", result.Log)
			continue
		}
		st.Merge(work)
		size += int64(len(stx))
		res.Txs = append(res.Txs, stx)
	}
	return res, nil
}

// ProcessProposal rejects a block carrying a tx that does not decode or
// verify, or one that would halt the ledger. Txs whose operation is
// rejected are accepted and recorded with their code.
func (app *CapsuleApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	app.logger.Info("ProcessProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	st, err := app.blockState(proposal.Height, proposal.Time)
	if err != nil {
		return res, nil
	}
	for _, stx := range proposal.Txs {
		btx, _, err := app.parseTx(st, stx, false)
		if err != nil {
			app.logger.Info("proposal rejected", "height", proposal.Height, "err", err)
			return res, nil
		}
		if _, err = app.applyTx(ctx, st, btx); err != nil {
			return res, nil
		}
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	return res, nil
}

func (app *CapsuleApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	app.logger.Info("FinalizeBlock", "height", req.Height, "txs", len(req.Txs))
	st, err := app.blockState(req.Height, req.Time)
	if err != nil {
		return nil, err
	}
	results := make([]*abcitypes.ExecTxResult, len(req.Txs))
	for i, stx := range req.Txs {
		btx, code, err := app.parseTx(st, stx, false)
		if err != nil {
			results[i] = &abcitypes.ExecTxResult{Code: code, Log: err.Error()}
			continue
		}
		results[i], err = app.applyTx(ctx, st, btx)
		if err != nil {
			return nil, err
		}
		app.metrics.observeTx(btx.Type, results[i].Code)
	}
	h, err := st.Update()
	if err != nil {
		app.logger.Error("state update hash fail", "err", err)
		return nil, err
	}
	app.st = st
	app.metrics.BlockHeight.Set(float64(req.Height))
	app.metrics.BlockTxs.Observe(float64(len(req.Txs)))
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: results,
		AppHash:   h.Bytes(),
	}, nil
}

func (app *CapsuleApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	if app.st == nil {
		return nil, ErrNoFinalizedState
	}
	h, err := app.db.SetState(app.st)
	if err != nil {
		return nil, err
	}
	app.logger.Info("Commit", "height", app.st.Header().Height, "appHash", h)
	app.st = nil
	return &abcitypes.ResponseCommit{}, nil
}
