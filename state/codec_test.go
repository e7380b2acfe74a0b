package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodecOmitsZeroValues(t *testing.T) {
	assert.Empty(t, (&StakeRecord{}).Marshal())
	assert.Empty(t, (&StateHeader{}).Marshal())

	a := &Agent{AgentId: "x", CreatedAt: -5, Bump: 254}
	var b Agent
	require.NoError(t, b.Unmarshal(a.Marshal()))
	assert.Equal(t, *a, b)
}

func TestCodecSkipsUnknownFields(t *testing.T) {
	p := &StakingPool{CapsuleId: "pool", TotalStaked: 9, Bump: 200}
	dat := p.Marshal()
	dat = protowire.AppendTag(dat, 99, protowire.BytesType)
	dat = protowire.AppendString(dat, "from a newer version")
	// field 2 with the wrong wire type is ignored too
	dat = protowire.AppendTag(dat, 2, protowire.BytesType)
	dat = protowire.AppendBytes(dat, []byte{1, 2})

	var n StakingPool
	require.NoError(t, n.Unmarshal(dat))
	assert.Equal(t, *p, n)
}

func TestCodecRejectsTruncatedInput(t *testing.T) {
	c := &Capsule{CapsuleId: "cap", Name: "name", PricePerQuery: 1_000_000}
	dat := c.Marshal()
	var n Capsule
	assert.Error(t, n.Unmarshal(dat[:len(dat)-1]))
}

func TestHeaderClone(t *testing.T) {
	h := &StateHeader{ChainId: "c", Height: 3, RootHash: []byte{1}, Hash: []byte{2}}
	c := h.Clone()
	c.Hash[0] = 9
	assert.Equal(t, byte(2), h.Hash[0])

	var d StateHeader
	require.NoError(t, d.Unmarshal(h.Marshal()))
	assert.Equal(t, *h, d)
	assert.Nil(t, (&StateHeader{}).Clone().Hash)
}

func TestFieldTablesAreOrdered(t *testing.T) {
	tables := map[string][]field{
		"agent":        (&Agent{}).fields(),
		"capsule":      (&Capsule{}).fields(),
		"stake":        (&StakeRecord{}).fields(),
		"earnings":     (&Earnings{}).fields(),
		"pool":         (&StakingPool{}).fields(),
		"user_stake":   (&UserStake{}).fields(),
		"state_header": (&StateHeader{}).fields(),
	}
	for name, fs := range tables {
		for i := range fs {
			assert.Equal(t, protowire.Number(i+1), fs[i].num, name)
		}
		assert.NotPanics(t, func() { marshalFields(fs) }, name)
	}
}

func TestCodecBumpOutOfRangeIsIgnored(t *testing.T) {
	dat := protowire.AppendTag(nil, 4, protowire.VarintType)
	dat = protowire.AppendVarint(dat, 300)
	var p StakingPool
	require.NoError(t, p.Unmarshal(dat))
	assert.Zero(t, p.Bump)
}
