package state

import (
	"github.com/calehh/capsule-app/addr"
)

// Maximum encoded sizes used to price storage reservations. They follow the
// fixed layout of each record: 8 byte discriminator, 32 byte keys, 4 byte
// length prefix per string, 8 byte integers and a 1 byte bump.
const (
	AgentSize       = 8 + 32 + (4 + 32) + (4 + 128) + (4 + 128) + (4 + 32) + 8 + 8 + 8 + 1
	CapsuleSize     = 8 + 32 + (4 + 32) + (4 + 128) + (4 + 512) + (4 + 32) + 8 + 8 + 8 + 8 + 1
	StakeRecordSize = 8 + 32 + 32 + 8 + 8 + 8 + 1
	EarningsSize    = 8 + 32 + 32 + 8 + 8 + 8 + 1
	StakingPoolSize = 8 + (4 + 64) + 8 + 32 + 1
	UserStakeSize   = 8 + 32 + 32 + 8 + 8 + 1
)

// Record is a ledger entry stored at a derived address. Seeds and Proof
// re-derive that address.
type Record interface {
	Kind() addr.Kind
	Seeds() [][]byte
	Proof() uint8
	Marshal() []byte
	Unmarshal(dat []byte) error
}

var (
	_ Record = &Agent{}
	_ Record = &Capsule{}
	_ Record = &StakeRecord{}
	_ Record = &Earnings{}
	_ Record = &StakingPool{}
	_ Record = &UserStake{}
)

type Agent struct {
	Owner       addr.Address `json:"owner"`
	AgentId     string       `json:"agentId"`
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Platform    string       `json:"platform"`
	CreatedAt   int64        `json:"createdAt"`
	UsageCount  uint64       `json:"usageCount"`
	Reputation  uint64       `json:"reputation"`
	Bump        uint8        `json:"bump"`
}

func (a *Agent) Kind() addr.Kind { return addr.KindAgent }
func (a *Agent) Seeds() [][]byte { return [][]byte{a.Owner.Bytes(), []byte(a.AgentId)} }
func (a *Agent) Proof() uint8    { return a.Bump }

type Capsule struct {
	Creator       addr.Address `json:"creator"`
	CapsuleId     string       `json:"capsuleId"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Category      string       `json:"category"`
	PricePerQuery uint64       `json:"pricePerQuery"`
	TotalStake    uint64       `json:"totalStake"`
	CreatedAt     int64        `json:"createdAt"`
	UpdatedAt     int64        `json:"updatedAt"`
	Bump          uint8        `json:"bump"`
}

func (c *Capsule) Kind() addr.Kind { return addr.KindCapsule }
func (c *Capsule) Seeds() [][]byte { return [][]byte{c.Creator.Bytes(), []byte(c.CapsuleId)} }
func (c *Capsule) Proof() uint8    { return c.Bump }

// StakeRecord is the per-capsule stake of one staker. Its balance holds the
// staked value plus its storage reservation.
type StakeRecord struct {
	Capsule   addr.Address `json:"capsule"`
	Staker    addr.Address `json:"staker"`
	Amount    uint64       `json:"amount"`
	StakedAt  int64        `json:"stakedAt"`
	LockUntil int64        `json:"lockUntil"`
	Bump      uint8        `json:"bump"`
}

func (r *StakeRecord) Kind() addr.Kind { return addr.KindStaking }
func (r *StakeRecord) Seeds() [][]byte { return [][]byte{r.Capsule.Bytes(), r.Staker.Bytes()} }
func (r *StakeRecord) Proof() uint8    { return r.Bump }

// Locked reports whether the lock window is still open at now. Nothing in
// the ledger enforces it; withdrawal logic outside the ledger reads it.
func (r *StakeRecord) Locked(now int64) bool {
	return now < r.LockUntil
}

// Earnings is the escrow of one creator wallet for one capsule.
type Earnings struct {
	Wallet        addr.Address `json:"wallet"`
	Capsule       addr.Address `json:"capsule"`
	TotalEarnings uint64       `json:"totalEarnings"`
	QueryCount    uint64       `json:"queryCount"`
	LastUpdated   int64        `json:"lastUpdated"`
	Bump          uint8        `json:"bump"`
}

func (e *Earnings) Kind() addr.Kind { return addr.KindEarnings }
func (e *Earnings) Seeds() [][]byte { return [][]byte{e.Wallet.Bytes(), e.Capsule.Bytes()} }
func (e *Earnings) Proof() uint8    { return e.Bump }

type StakingPool struct {
	CapsuleId   string       `json:"capsuleId"`
	TotalStaked uint64       `json:"totalStaked"`
	Creator     addr.Address `json:"creator"`
	Bump        uint8        `json:"bump"`
}

func (p *StakingPool) Kind() addr.Kind { return addr.KindStakingPool }
func (p *StakingPool) Seeds() [][]byte { return [][]byte{[]byte(p.CapsuleId)} }
func (p *StakingPool) Proof() uint8    { return p.Bump }

// UserStake keeps its pool so the record can re-derive its own address.
type UserStake struct {
	Pool     addr.Address `json:"pool"`
	User     addr.Address `json:"user"`
	Amount   uint64       `json:"amount"`
	StakedAt int64        `json:"stakedAt"`
	Bump     uint8        `json:"bump"`
}

func (u *UserStake) Kind() addr.Kind { return addr.KindUserStake }
func (u *UserStake) Seeds() [][]byte { return [][]byte{u.Pool.Bytes(), u.User.Bytes()} }
func (u *UserStake) Proof() uint8    { return u.Bump }

// Wallet is the signer view of an address: spendable balance and the nonce
// of its next transaction.
type Wallet struct {
	Address addr.Address `json:"address"`
	Balance uint64       `json:"balance"`
	Nonce   uint64       `json:"nonce"`
}

// Derivation is stored next to every created record so readers can prove
// how an address was obtained.
type Derivation struct {
	Kind  string
	Bump  uint8
	Seeds [][]byte
}
