package types

import (
	"testing"

	"github.com/calehh/capsule-app/addr"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrA = addr.BytesToAddress([]byte{0xa})
	addrB = addr.BytesToAddress([]byte{0xb})
	addrC = addr.BytesToAddress([]byte{0xc})
)

func TestPoolStakeEventDirections(t *testing.T) {
	stake := &EventPoolStake{Pool: addrA, UserStake: addrB, User: addrC, Amount: 5, StakeAmount: 7, TotalStaked: 9}
	ev := EncodeEventPoolStake(stake)
	assert.Equal(t, EventPoolStakedType, ev.Type)
	from, _ := EventAttribute(ev, "from")
	assert.Equal(t, addrC.String(), from)
	assert.Equal(t, stake, DecodeEventPoolStake(ev))

	unstake := *stake
	unstake.Unstake = true
	ev = EncodeEventPoolStake(&unstake)
	assert.Equal(t, EventPoolUnstakedType, ev.Type)
	from, _ = EventAttribute(ev, "from")
	assert.Equal(t, addrA.String(), from)
	assert.Equal(t, &unstake, DecodeEventPoolStake(ev))
}

func TestDecodeEvents(t *testing.T) {
	staked := &EventCapsuleStaked{Capsule: addrA, Stake: addrB, Staker: addrC, Amount: 1, StakeAmount: 2, TotalStake: 3, LockUntil: -4}
	assert.Equal(t, staked, DecodeEventCapsuleStaked(EncodeEventCapsuleStaked(staked)))

	withdrawn := &EventEarningsWithdrawn{Earnings: addrA, Destination: addrB, Amount: 11}
	assert.Equal(t, withdrawn, DecodeEventEarningsWithdrawn(EncodeEventEarningsWithdrawn(withdrawn)))

	transfer := &EventTransfer{From: addrA, To: addrB, Amount: 12}
	assert.Equal(t, transfer, DecodeEventTransfer(EncodeEventTransfer(transfer)))

	bad := abci.Event{Type: EventTransferType, Attributes: []abci.EventAttribute{{Key: "amount", Value: "-1"}}}
	assert.Nil(t, DecodeEventTransfer(bad))

	_, ok := EventAttribute(bad, "from")
	assert.False(t, ok)
}

func TestParseAppState(t *testing.T) {
	st, err := ParseAppState(nil)
	require.NoError(t, err)
	assert.Zero(t, st.LamportsPerByteYear)
	assert.Empty(t, st.Balances)

	st, err = ParseAppState([]byte(`{"lamports_per_byte_year":10,"balances":[{"address":"` + addrA.String() + `","amount":3}]}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), st.LamportsPerByteYear)
	assert.Equal(t, []GenesisBalance{{Address: addrA, Amount: 3}}, st.Balances)

	_, err = ParseAppState([]byte(`{"balances":[{"address":"` + addrA.String() + `","amount":3},{"address":"` + addrA.String() + `","amount":4}]}`))
	assert.Error(t, err)

	_, err = ParseAppState([]byte(`{"balances":[{"address":"nothex","amount":3}]}`))
	assert.Error(t, err)
}

func TestDeriveRequest(t *testing.T) {
	req := &DeriveRequest{Kind: string(addr.KindEarnings), Seeds: []hexutil.Bytes{addrA.Bytes(), addrB.Bytes()}}
	res, err := req.Derive()
	require.NoError(t, err)
	a, bump, err := addr.Derive(addr.KindEarnings, addrA.Bytes(), addrB.Bytes())
	require.NoError(t, err)
	assert.Equal(t, &DeriveResult{Address: a, Bump: bump}, res)

	_, err = (&DeriveRequest{Kind: "other"}).Derive()
	assert.ErrorIs(t, err, addr.ErrUnknownKind)
}
