package state

import (
	"strings"
	"testing"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capsuleTx(id string, price uint64) *tx.CreateCapsuleTx {
	return &tx.CreateCapsuleTx{
		CapsuleId:     id,
		Name:          "Trading memory",
		Description:   "Lessons from a year of market making",
		Category:      "finance",
		PricePerQuery: price,
	}
}

func createCapsule(t *testing.T, st *State, creator addr.Address, id string, price uint64) addr.Address {
	ev, err := st.CreateCapsule(capsuleTx(id, price), creator, false)
	require.NoError(t, err)
	return ev.Capsule
}

func TestCreateCapsule(t *testing.T) {
	st := newTestState(t)
	creator := fund(t, st, "creator", 100_000_000)

	ev, err := st.CreateCapsule(capsuleTx("cap-1", 1_000_000), creator, false)
	require.NoError(t, err)
	capsule, err := st.GetCapsule(ev.Capsule)
	require.NoError(t, err)
	require.NotNil(t, capsule)
	assert.Equal(t, uint64(1_000_000), capsule.PricePerQuery)
	assert.Zero(t, capsule.TotalStake)
	assert.Equal(t, testNow, capsule.CreatedAt)
	assert.Equal(t, testNow, capsule.UpdatedAt)
	assert.Equal(t, st.Reservation(CapsuleSize), balanceOf(t, st, ev.Capsule))

	_, err = st.CreateCapsule(capsuleTx("cap-1", 2_000_000), creator, false)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateCapsulePriceBounds(t *testing.T) {
	cases := []struct {
		price uint64
		err   error
	}{
		{0, ErrInvalidPrice},
		{99_999, ErrInvalidPrice},
		{100_000, nil},
		{100_000_000_000, nil},
		{100_000_000_001, ErrPriceTooHigh},
		{^uint64(0), ErrPriceTooHigh},
	}
	for _, c := range cases {
		st := newTestState(t)
		creator := fund(t, st, "creator", 100_000_000)
		before := writes(st)
		_, err := st.CreateCapsule(capsuleTx("cap", c.price), creator, false)
		if c.err == nil {
			assert.NoError(t, err, "price %d", c.price)
			continue
		}
		assert.ErrorIs(t, err, c.err, "price %d", c.price)
		assert.Equal(t, before, writes(st), "price %d", c.price)
	}
}

func TestCreateCapsuleValidation(t *testing.T) {
	st := newTestState(t)
	creator := fund(t, st, "creator", 100_000_000)
	before := writes(st)

	long := capsuleTx(strings.Repeat("c", 33), 1_000_000)
	_, err := st.CreateCapsule(long, creator, false)
	assert.ErrorIs(t, err, ErrInvalidMetadataLength)

	desc := capsuleTx("cap", 1_000_000)
	desc.Description = strings.Repeat("d", 513)
	_, err = st.CreateCapsule(desc, creator, false)
	assert.ErrorIs(t, err, ErrInvalidMetadataLength)

	blank := capsuleTx("cap", 1_000_000)
	blank.Category = " "
	_, err = st.CreateCapsule(blank, creator, false)
	assert.ErrorIs(t, err, ErrEmptyString)

	assert.Equal(t, before, writes(st))
}

func TestUpdateCapsulePrice(t *testing.T) {
	st := newTestState(t)
	creator := fund(t, st, "creator", 100_000_000)
	ca := createCapsule(t, st, creator, "cap", 1_000_000)
	st.SetBlockTime(testNow + 60)

	ev, err := st.UpdateCapsulePrice(&tx.UpdateCapsulePriceTx{Capsule: ca, NewPrice: 5_000_000}, creator, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), ev.OldPrice)
	assert.Equal(t, uint64(5_000_000), ev.NewPrice)

	capsule, err := st.GetCapsule(ca)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), capsule.PricePerQuery)
	assert.Equal(t, testNow, capsule.CreatedAt)
	assert.Equal(t, testNow+60, capsule.UpdatedAt)
	assert.Equal(t, "cap", capsule.CapsuleId)
	assert.Zero(t, capsule.TotalStake)
}

func TestUpdateCapsulePriceRejections(t *testing.T) {
	st := newTestState(t)
	creator := fund(t, st, "creator", 100_000_000)
	stranger := fund(t, st, "stranger", 100_000_000)
	ca := createCapsule(t, st, creator, "cap", 1_000_000)
	before := writes(st)

	_, err := st.UpdateCapsulePrice(&tx.UpdateCapsulePriceTx{Capsule: ca, NewPrice: 2_000_000}, stranger, false)
	assert.ErrorIs(t, err, ErrInvalidCapsuleOwner)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// ownership is checked before the price
	_, err = st.UpdateCapsulePrice(&tx.UpdateCapsulePriceTx{Capsule: ca, NewPrice: 1}, stranger, false)
	assert.ErrorIs(t, err, ErrInvalidCapsuleOwner)

	_, err = st.UpdateCapsulePrice(&tx.UpdateCapsulePriceTx{Capsule: ca, NewPrice: 99_999}, creator, false)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = st.UpdateCapsulePrice(&tx.UpdateCapsulePriceTx{Capsule: ca, NewPrice: 100_000_000_001}, creator, false)
	assert.ErrorIs(t, err, ErrPriceTooHigh)

	_, err = st.UpdateCapsulePrice(&tx.UpdateCapsulePriceTx{Capsule: testWallet("nowhere"), NewPrice: 2_000_000}, creator, false)
	assert.ErrorIs(t, err, ErrCapsuleNotFound)

	assert.Equal(t, before, writes(st))
}
