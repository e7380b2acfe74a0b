package state

import (
	"errors"
	"testing"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChainId       = "capsule-test"
	testNow     int64 = 1_700_000_000
)

func newTestDB(t *testing.T) *StateDB {
	db, err := NewMemStateDB(64, cmtlog.NewNopLogger())
	require.NoError(t, err)
	return db
}

func newTestState(t *testing.T) *State {
	st := newTestDB(t).NewState()
	st.SetChainId(testChainId)
	st.SetBlockTime(testNow)
	return st
}

func testKey(name string) ed25519.PrivKey {
	return ed25519.GenPrivKeyFromSecret([]byte(name))
}

func testWallet(name string) addr.Address {
	return addr.BytesToAddress(testKey(name).PubKey().Bytes())
}

func fund(t *testing.T, st *State, name string, amount uint64) addr.Address {
	a := testWallet(name)
	require.NoError(t, st.Mint(a, amount))
	return a
}

func balanceOf(t *testing.T, st *State, a addr.Address) uint64 {
	b, err := st.Balance(a)
	require.NoError(t, err)
	return b
}

// writes captures every pending write so a failed operation can be shown to
// have changed nothing.
func writes(st *State) map[string][]byte {
	m := make(map[string][]byte, len(st.dirty))
	for k, v := range st.dirty {
		m[k] = append([]byte(nil), v...)
	}
	return m
}

func TestStateSaveAndReload(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	st.SetChainId(testChainId)
	st.SetBlockTime(testNow)
	alice := fund(t, st, "alice", 10_000_000_000)

	ev, err := st.CreateCapsule(&tx.CreateCapsuleTx{
		CapsuleId: "memory-1", Name: "Memory", Description: "a capsule", Category: "general", PricePerQuery: 1_000_000,
	}, alice, false)
	require.NoError(t, err)

	h, err := st.Update()
	require.NoError(t, err)
	saved, err := db.SetState(st)
	require.NoError(t, err)
	assert.Equal(t, h, saved)
	assert.Equal(t, saved.Bytes(), db.Header().Hash)

	capsule, height, err := db.GetCapsule(ev.Capsule)
	require.NoError(t, err)
	require.NotNil(t, capsule)
	assert.Equal(t, uint64(0), height)
	assert.Equal(t, "memory-1", capsule.CapsuleId)
	assert.Equal(t, alice, capsule.Creator)

	d, _, err := db.GetDerivation(ev.Capsule)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, string(addr.KindCapsule), d.Kind)
	assert.Equal(t, capsule.Bump, d.Bump)

	next := db.NewState()
	assert.Equal(t, uint64(1), next.Header().Height)
	assert.Equal(t, testChainId, next.Header().ChainId)
	w, err := next.GetWallet(alice)
	require.NoError(t, err)
	assert.Equal(t, 10_000_000_000-next.Reservation(CapsuleSize), w.Balance)
}

func TestUpdateIsOrderIndependent(t *testing.T) {
	hashOf := func(names ...string) []byte {
		st := newTestState(t)
		for _, n := range names {
			fund(t, st, n, 1_000)
		}
		h, err := st.Update()
		require.NoError(t, err)
		return h.Bytes()
	}
	assert.Equal(t, hashOf("a", "b", "c"), hashOf("c", "a", "b"))
	assert.NotEqual(t, hashOf("a", "b"), hashOf("a", "b", "c"))
}

func TestCheckStateDoesNotSeeUncommittedWrites(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	alice := fund(t, st, "alice", 5)
	_, err := st.Update()
	require.NoError(t, err)

	b, err := db.CheckState().Balance(alice)
	require.NoError(t, err)
	assert.Zero(t, b)

	_, err = db.SetState(st)
	require.NoError(t, err)
	b, err = db.CheckState().Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), b)

	_, err = db.CheckState().Update()
	assert.ErrorIs(t, err, ErrReadOnlyState)
}

func TestCorruptRecordIsRejected(t *testing.T) {
	st := newTestState(t)
	alice := fund(t, st, "alice", 10_000_000_000)
	ev, err := st.CreateCapsule(&tx.CreateCapsuleTx{
		CapsuleId: "c", Name: "n", Description: "d", Category: "x", PricePerQuery: 100_000,
	}, alice, false)
	require.NoError(t, err)

	capsule, err := st.GetCapsule(ev.Capsule)
	require.NoError(t, err)
	capsule.CapsuleId = "other"
	st.putRecord(ev.Capsule, capsule)

	_, err = st.GetCapsule(ev.Capsule)
	assert.ErrorIs(t, err, ErrCorruptRecord)
	_, err = st.StakeOnCapsule(&tx.StakeOnCapsuleTx{Capsule: ev.Capsule, Amount: 1_000_000}, alice, false)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func signedTx(t *testing.T, name string, nonce uint64, chainId string) *tx.CapsuleTx {
	btx := &tx.CapsuleTx{
		Type:   tx.TxTypeTransfer,
		Nonce:  nonce,
		Signer: testWallet(name),
		Tx:     &tx.TransferTx{To: testWallet("bob"), Amount: 1},
	}
	dat, err := btx.SigData([]byte(chainId))
	require.NoError(t, err)
	sig, err := testKey(name).Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}
	return btx
}

func TestVerify(t *testing.T) {
	st := newTestState(t)
	alice := testWallet("alice")
	require.NoError(t, st.IncrementNonce(alice))

	assert.NoError(t, st.Verify(signedTx(t, "alice", 1, testChainId), false))
	assert.ErrorIs(t, st.Verify(signedTx(t, "alice", 0, testChainId), false), ErrTxNonceInvalid)
	assert.ErrorIs(t, st.Verify(signedTx(t, "alice", 3, testChainId), false), ErrTxNonceInvalid)
	assert.NoError(t, st.Verify(signedTx(t, "alice", 3, testChainId), true))
	assert.ErrorIs(t, st.Verify(signedTx(t, "alice", 1, "other-chain"), false), ErrTxSigInvalid)

	forged := signedTx(t, "mallory", 1, testChainId)
	forged.Signer = alice
	assert.ErrorIs(t, st.Verify(forged, false), ErrTxSigInvalid)

	unsigned := signedTx(t, "alice", 1, testChainId)
	unsigned.Sig = nil
	assert.ErrorIs(t, st.Verify(unsigned, false), ErrTxSigInvalid)
}

func TestTransfer(t *testing.T) {
	st := newTestState(t)
	alice := fund(t, st, "alice", 100)
	bob := testWallet("bob")

	ev, err := st.Transfer(&tx.TransferTx{To: bob, Amount: 60}, alice, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), ev.Amount)
	assert.Equal(t, uint64(40), balanceOf(t, st, alice))
	assert.Equal(t, uint64(60), balanceOf(t, st, bob))

	before := writes(st)
	_, err = st.Transfer(&tx.TransferTx{To: bob, Amount: 41}, alice, false)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	_, err = st.Transfer(&tx.TransferTx{To: alice, Amount: 41}, alice, false)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	_, err = st.Transfer(&tx.TransferTx{To: bob, Amount: 0}, alice, false)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = st.Transfer(&tx.TransferTx{To: addr.Address{}, Amount: 1}, alice, false)
	assert.ErrorIs(t, err, ErrInvalidDestination)
	assert.Equal(t, before, writes(st))
	assert.Zero(t, balanceOf(t, st, addr.Address{}))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeOK, CodeOf(nil))
	assert.Equal(t, uint32(6000), CodeOf(ErrInvalidAgentOwner))
	assert.Equal(t, uint32(6001), CodeOf(ErrInvalidCapsuleOwner))
	assert.Equal(t, uint32(6007), CodeOf(ErrUnauthorized))
	assert.Equal(t, uint32(6013), CodeOf(ErrAlreadyExists))
	assert.Equal(t, uint32(6004), CodeOf(ErrInsufficientPayment))
	assert.True(t, IsLedgerError(ErrInvalidCapsuleOwner))
	assert.False(t, IsLedgerError(ErrLedgerInconsistent))
	assert.Equal(t, CodeNonceInvalid, CodeOf(ErrTxNonceInvalid))
	assert.Equal(t, CodeInternal, CodeOf(ErrLedgerInconsistent))
	assert.Equal(t, uint32(6018), CodeOf(ErrInvalidDestination))
	assert.True(t, IsLedgerError(ErrInvalidDestination))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("agent not found")))
}

func TestBranchMerge(t *testing.T) {
	st := newTestState(t)
	alice := fund(t, st, "alice", 100)
	bob := testWallet("bob")

	b := st.Branch()
	_, err := b.Transfer(&tx.TransferTx{To: bob, Amount: 30}, alice, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), balanceOf(t, b, alice))
	assert.Equal(t, uint64(100), balanceOf(t, st, alice))
	assert.Zero(t, balanceOf(t, st, bob))

	// a dropped branch leaves the parent untouched
	before := writes(st)
	dropped := st.Branch()
	_, err = dropped.Transfer(&tx.TransferTx{To: bob, Amount: 50}, alice, false)
	require.NoError(t, err)
	assert.Equal(t, before, writes(st))

	// a nested branch reads through both levels
	nested := b.Branch()
	assert.Equal(t, uint64(30), balanceOf(t, nested, bob))
	_, err = nested.Transfer(&tx.TransferTx{To: bob, Amount: 5}, alice, false)
	require.NoError(t, err)
	b.Merge(nested)

	st.Merge(b)
	assert.Equal(t, uint64(65), balanceOf(t, st, alice))
	assert.Equal(t, uint64(35), balanceOf(t, st, bob))
	assert.Len(t, st.dirty, len(before)+1)
}
