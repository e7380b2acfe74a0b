package handler

import (
	"context"
	"testing"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) *state.State {
	db, err := state.NewMemStateDB(0, cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	st.SetChainId("handler-test")
	st.SetBlockTime(1_700_000_000)
	return st
}

func wallet(name string) addr.Address {
	return addr.BytesToAddress(ed25519.GenPrivKeyFromSecret([]byte(name)).PubKey().Bytes())
}

func envelope(tp tx.TxType, signer addr.Address, body any) *tx.CapsuleTx {
	return &tx.CapsuleTx{Type: tp, Signer: signer, Tx: body}
}

func TestNewTxHandlersCoversEveryType(t *testing.T) {
	hs := NewTxHandlers(cmtlog.NewNopLogger())
	for tp := tx.TxTypeRegisterAgent; tp <= tx.TxTypeTransfer; tp++ {
		assert.Contains(t, hs, tp, tp.String())
	}
	assert.NotContains(t, hs, tx.TxTypeUnknown)
}

func TestProcessEmitsEvent(t *testing.T) {
	st := newState(t)
	alice := wallet("alice")
	require.NoError(t, st.Mint(alice, 100_000_000))

	h := NewCreateCapsuleTxHandler(cmtlog.NewNopLogger())
	btx := envelope(tx.TxTypeCreateCapsule, alice, &tx.CreateCapsuleTx{
		CapsuleId: "cap", Name: "n", Description: "d", Category: "c", PricePerQuery: 1_000_000,
	})

	res, err := h.Check(context.Background(), st, btx)
	require.NoError(t, err)
	assert.Equal(t, state.CodeOK, res.Code)

	exec, err := h.Process(context.Background(), st, btx)
	require.NoError(t, err)
	assert.Equal(t, state.CodeOK, exec.Code)
	require.Len(t, exec.Events, 1)
	assert.Equal(t, types.EventCapsuleCreatedType, exec.Events[0].Type)
	v, ok := types.EventAttribute(exec.Events[0], "creator")
	assert.True(t, ok)
	assert.Equal(t, alice.String(), v)
}

func TestRejectionIsReportedAsCode(t *testing.T) {
	st := newState(t)
	bob := wallet("bob")
	h := NewTransferTxHandler(cmtlog.NewNopLogger())
	btx := envelope(tx.TxTypeTransfer, bob, &tx.TransferTx{To: wallet("carol"), Amount: 5})

	res, err := h.Check(context.Background(), st, btx)
	require.NoError(t, err)
	assert.Equal(t, state.CodeOf(state.ErrInsufficientPayment), res.Code)
	assert.NotEmpty(t, res.Log)

	exec, err := h.Process(context.Background(), st, btx)
	require.NoError(t, err)
	assert.Equal(t, state.CodeOf(state.ErrInsufficientPayment), exec.Code)
	assert.Empty(t, exec.Events)
}

func TestMismatchedPayload(t *testing.T) {
	st := newState(t)
	h := NewPayQueryTxHandler(cmtlog.NewNopLogger())
	btx := envelope(tx.TxTypePayQuery, wallet("dave"), &tx.TransferTx{})

	_, err := h.Check(context.Background(), st, btx)
	assert.ErrorIs(t, err, tx.ErrUnmatchedTxType)

	exec, err := h.Process(context.Background(), st, btx)
	require.NoError(t, err)
	assert.Equal(t, state.CodeTxDecode, exec.Code)
}
