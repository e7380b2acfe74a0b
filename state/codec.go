package state

import (
	"fmt"

	"github.com/calehh/capsule-app/addr"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in protobuf wire format. Zero values are omitted so
// that equal records always encode to equal bytes; signed integers use
// zigzag encoding.

// field binds a field number to a pointer into a record. Supported targets
// are *uint64, *int64, *uint8, *string, *[]byte and *addr.Address.
type field struct {
	num protowire.Number
	ptr any
}

func marshalFields(fs []field) []byte {
	var b []byte
	for _, f := range fs {
		switch p := f.ptr.(type) {
		case *uint64:
			b = appendUint(b, f.num, *p)
		case *int64:
			b = appendUint(b, f.num, protowire.EncodeZigZag(*p))
		case *uint8:
			b = appendUint(b, f.num, uint64(*p))
		case *string:
			if len(*p) > 0 {
				b = protowire.AppendTag(b, f.num, protowire.BytesType)
				b = protowire.AppendString(b, *p)
			}
		case *[]byte:
			b = appendBytes(b, f.num, *p)
		case *addr.Address:
			if !p.IsZero() {
				b = appendBytes(b, f.num, p[:])
			}
		default:
			panic(fmt.Sprintf("codec: unsupported field type %T", f.ptr))
		}
	}
	return b
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// unmarshalFields decodes dat into fs. Unknown fields, and fields whose wire
// type does not match, are skipped as protobuf does.
func unmarshalFields(dat []byte, fs []field) error {
	for len(dat) > 0 {
		num, typ, n := protowire.ConsumeTag(dat)
		if n < 0 {
			return protowire.ParseError(n)
		}
		dat = dat[n:]
		m := consumeField(num, typ, dat, fs)
		if m < 0 {
			return protowire.ParseError(m)
		}
		dat = dat[m:]
	}
	return nil
}

func consumeField(num protowire.Number, typ protowire.Type, b []byte, fs []field) int {
	var target any
	for _, f := range fs {
		if f.num == num {
			target = f.ptr
			break
		}
	}
	switch p := target.(type) {
	case *uint64, *int64, *uint8:
		if typ != protowire.VarintType {
			break
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return n
		}
		switch p := p.(type) {
		case *uint64:
			*p = v
		case *int64:
			*p = protowire.DecodeZigZag(v)
		case *uint8:
			if v <= 0xff {
				*p = uint8(v)
			}
		}
		return n
	case *string, *[]byte, *addr.Address:
		if typ != protowire.BytesType {
			break
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n
		}
		switch p := p.(type) {
		case *string:
			*p = string(v)
		case *[]byte:
			*p = append([]byte(nil), v...)
		case *addr.Address:
			if len(v) == addr.AddressLength {
				copy(p[:], v)
			}
		}
		return n
	}
	return protowire.ConsumeFieldValue(num, typ, b)
}

func (a *Agent) fields() []field {
	return []field{
		{1, &a.Owner}, {2, &a.AgentId}, {3, &a.Name}, {4, &a.DisplayName}, {5, &a.Platform},
		{6, &a.CreatedAt}, {7, &a.UsageCount}, {8, &a.Reputation}, {9, &a.Bump},
	}
}

func (a *Agent) Marshal() []byte { return marshalFields(a.fields()) }

func (a *Agent) Unmarshal(dat []byte) error {
	*a = Agent{}
	return unmarshalFields(dat, a.fields())
}

func (c *Capsule) fields() []field {
	return []field{
		{1, &c.Creator}, {2, &c.CapsuleId}, {3, &c.Name}, {4, &c.Description}, {5, &c.Category},
		{6, &c.PricePerQuery}, {7, &c.TotalStake}, {8, &c.CreatedAt}, {9, &c.UpdatedAt}, {10, &c.Bump},
	}
}

func (c *Capsule) Marshal() []byte { return marshalFields(c.fields()) }

func (c *Capsule) Unmarshal(dat []byte) error {
	*c = Capsule{}
	return unmarshalFields(dat, c.fields())
}

func (r *StakeRecord) fields() []field {
	return []field{{1, &r.Capsule}, {2, &r.Staker}, {3, &r.Amount}, {4, &r.StakedAt}, {5, &r.LockUntil}, {6, &r.Bump}}
}

func (r *StakeRecord) Marshal() []byte { return marshalFields(r.fields()) }

func (r *StakeRecord) Unmarshal(dat []byte) error {
	*r = StakeRecord{}
	return unmarshalFields(dat, r.fields())
}

func (e *Earnings) fields() []field {
	return []field{{1, &e.Wallet}, {2, &e.Capsule}, {3, &e.TotalEarnings}, {4, &e.QueryCount}, {5, &e.LastUpdated}, {6, &e.Bump}}
}

func (e *Earnings) Marshal() []byte { return marshalFields(e.fields()) }

func (e *Earnings) Unmarshal(dat []byte) error {
	*e = Earnings{}
	return unmarshalFields(dat, e.fields())
}

func (p *StakingPool) fields() []field {
	return []field{{1, &p.CapsuleId}, {2, &p.TotalStaked}, {3, &p.Creator}, {4, &p.Bump}}
}

func (p *StakingPool) Marshal() []byte { return marshalFields(p.fields()) }

func (p *StakingPool) Unmarshal(dat []byte) error {
	*p = StakingPool{}
	return unmarshalFields(dat, p.fields())
}

func (u *UserStake) fields() []field {
	return []field{{1, &u.Pool}, {2, &u.User}, {3, &u.Amount}, {4, &u.StakedAt}, {5, &u.Bump}}
}

func (u *UserStake) Marshal() []byte { return marshalFields(u.fields()) }

func (u *UserStake) Unmarshal(dat []byte) error {
	*u = UserStake{}
	return unmarshalFields(dat, u.fields())
}

// StateHeader is the per-height ledger header. RootHash and Hash are filled
// when the state is saved.
type StateHeader struct {
	ChainId             string `json:"chainId"`
	Height              uint64 `json:"height"`
	BlockTime           int64  `json:"blockTime"`
	LamportsPerByteYear uint64 `json:"lamportsPerByteYear"`
	RootHash            []byte `json:"rootHash"`
	Hash                []byte `json:"hash"`
}

func (h *StateHeader) GetHash() []byte {
	if h == nil {
		return nil
	}
	return h.Hash
}

func (h *StateHeader) Clone() *StateHeader {
	n := *h
	n.RootHash = append([]byte(nil), h.RootHash...)
	n.Hash = append([]byte(nil), h.Hash...)
	return &n
}

func (h *StateHeader) fields() []field {
	return []field{
		{1, &h.ChainId}, {2, &h.Height}, {3, &h.BlockTime},
		{4, &h.LamportsPerByteYear}, {5, &h.RootHash}, {6, &h.Hash},
	}
}

func (h *StateHeader) Marshal() []byte { return marshalFields(h.fields()) }

func (h *StateHeader) Unmarshal(dat []byte) error {
	*h = StateHeader{}
	return unmarshalFields(dat, h.fields())
}
