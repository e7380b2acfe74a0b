package state

import (
	"math/rand"
	"testing"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/config"
	"github.com/calehh/capsule-app/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stake(st *State, staker, capsule addr.Address, amount uint64) error {
	_, err := st.StakeOnCapsule(&tx.StakeOnCapsuleTx{Capsule: capsule, Amount: amount}, staker, false)
	return err
}

func stakeAddress(t *testing.T, capsule, staker addr.Address) addr.Address {
	a, _, err := addr.Derive(addr.KindStaking, capsule.Bytes(), staker.Bytes())
	require.NoError(t, err)
	return a
}

func TestStakeScenario(t *testing.T) {
	st := newTestState(t)
	creator := fund(t, st, "creator", 100_000_000)
	stakerA := fund(t, st, "staker-a", 100_000_000)
	ca := createCapsule(t, st, creator, "cap", 1_000_000)
	sa := stakeAddress(t, ca, stakerA)

	require.NoError(t, stake(st, stakerA, ca, 1_000_000))
	rec, err := st.GetStakeRecord(sa)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(1_000_000), rec.Amount)
	assert.Equal(t, rec.StakedAt+604800, rec.LockUntil)
	assert.True(t, rec.Locked(testNow))
	assert.False(t, rec.Locked(testNow+604800))

	before := writes(st)
	err = stake(st, stakerA, ca, 500)
	assert.ErrorIs(t, err, ErrInsufficientStake)
	assert.Equal(t, before, writes(st))

	st.SetBlockTime(testNow + 3600)
	require.NoError(t, stake(st, stakerA, ca, 2_000_000))
	rec, err = st.GetStakeRecord(sa)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000), rec.Amount)
	assert.Equal(t, testNow, rec.StakedAt)
	assert.Equal(t, testNow+3600+604800, rec.LockUntil)

	capsule, err := st.GetCapsule(ca)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000), capsule.TotalStake)
	assert.Equal(t, testNow+3600, capsule.UpdatedAt)

	assert.Equal(t, 3_000_000+st.Reservation(StakeRecordSize), balanceOf(t, st, sa))
	assert.Equal(t, 100_000_000-3_000_000-st.Reservation(StakeRecordSize), balanceOf(t, st, stakerA))
}

func TestStakeBounds(t *testing.T) {
	st := newTestState(t)
	creator := fund(t, st, "creator", 100_000_000)
	staker := fund(t, st, "staker", 2_000_000_000_000)
	ca := createCapsule(t, st, creator, "cap", 1_000_000)
	before := writes(st)

	assert.ErrorIs(t, stake(st, staker, ca, config.MinStakeAmount-1), ErrInsufficientStake)
	assert.ErrorIs(t, stake(st, staker, ca, config.MaxStakeAmount+1), ErrStakeTooHigh)
	assert.ErrorIs(t, stake(st, staker, testWallet("missing"), config.MinStakeAmount), ErrCapsuleNotFound)
	assert.Equal(t, before, writes(st))

	assert.NoError(t, stake(st, staker, ca, config.MaxStakeAmount))
}

func TestStakeRequiresReservationOnFirstDeposit(t *testing.T) {
	st := newTestState(t)
	creator := fund(t, st, "creator", 100_000_000)
	ca := createCapsule(t, st, creator, "cap", 1_000_000)
	reservation := st.Reservation(StakeRecordSize)
	staker := fund(t, st, "staker", 1_000_000+reservation-1)
	before := writes(st)

	assert.ErrorIs(t, stake(st, staker, ca, 1_000_000), ErrInsufficientPayment)
	assert.Equal(t, before, writes(st))

	require.NoError(t, st.Mint(staker, 1))
	require.NoError(t, stake(st, staker, ca, 1_000_000))
	assert.Zero(t, balanceOf(t, st, staker))

	// later deposits need only the amount
	require.NoError(t, st.Mint(staker, 1_000_000))
	require.NoError(t, stake(st, staker, ca, 1_000_000))
	assert.Zero(t, balanceOf(t, st, staker))
}

func TestStakeOverflow(t *testing.T) {
	st := newTestState(t)
	creator := fund(t, st, "creator", 100_000_000)
	staker := fund(t, st, "staker", 100_000_000)
	ca := createCapsule(t, st, creator, "cap", 1_000_000)

	capsule, err := st.GetCapsule(ca)
	require.NoError(t, err)
	capsule.TotalStake = ^uint64(0) - 10
	st.putRecord(ca, capsule)
	before := writes(st)

	assert.ErrorIs(t, stake(st, staker, ca, 1_000_000), ErrMathOverflow)
	assert.Equal(t, before, writes(st))

	capsule.TotalStake = 0
	st.putRecord(ca, capsule)
	st.SetBlockTime(1<<63 - 100)
	before = writes(st)
	assert.ErrorIs(t, stake(st, staker, ca, 1_000_000), ErrMathOverflow)
	assert.Equal(t, before, writes(st))
}

func TestStakeSumsProperty(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		st := newTestState(t)
		creator := fund(t, st, "creator", 100_000_000)
		capsules := []addr.Address{
			createCapsule(t, st, creator, "cap-a", 1_000_000),
			createCapsule(t, st, creator, "cap-b", 2_000_000),
		}
		names := []string{"s1", "s2", "s3", "s4"}
		stakers := make([]addr.Address, len(names))
		for i, n := range names {
			stakers[i] = fund(t, st, n, 1_000_000_000_000)
		}
		supply := totalSupply(t, st, append(append([]addr.Address{creator}, stakers...), capsules...))

		sums := make(map[addr.Address]uint64)
		totals := make(map[addr.Address]uint64)
		for i := 0; i < 60; i++ {
			ca := capsules[rnd.Intn(len(capsules))]
			s := stakers[rnd.Intn(len(stakers))]
			amount := config.MinStakeAmount + uint64(rnd.Int63n(int64(50*config.MinStakeAmount)))
			if rnd.Intn(10) == 0 {
				amount = uint64(rnd.Int63n(int64(config.MinStakeAmount)))
			}
			st.SetBlockTime(testNow + int64(i))
			err := stake(st, s, ca, amount)
			if amount < config.MinStakeAmount {
				assert.ErrorIs(t, err, ErrInsufficientStake)
				continue
			}
			require.NoError(t, err)
			sums[stakeAddress(t, ca, s)] += amount
			totals[ca] += amount
		}

		holders := append(append([]addr.Address{creator}, stakers...), capsules...)
		for _, ca := range capsules {
			capsule, err := st.GetCapsule(ca)
			require.NoError(t, err)
			assert.Equal(t, totals[ca], capsule.TotalStake)
			for _, s := range stakers {
				sa := stakeAddress(t, ca, s)
				rec, err := st.GetStakeRecord(sa)
				require.NoError(t, err)
				if sums[sa] == 0 {
					assert.Nil(t, rec)
					continue
				}
				assert.Equal(t, sums[sa], rec.Amount)
				assert.Equal(t, sums[sa]+st.Reservation(StakeRecordSize), balanceOf(t, st, sa))
				holders = append(holders, sa)
			}
		}
		assert.Equal(t, supply, totalSupply(t, st, holders))
	}
}

func totalSupply(t *testing.T, st *State, holders []addr.Address) (sum uint64) {
	for _, a := range holders {
		sum += balanceOf(t, st, a)
	}
	return
}
