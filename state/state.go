package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/config"
	"github.com/calehh/capsule-app/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

var ErrReadOnlyState = errors.New("read only state")

type kvReader interface {
	Get(key []byte) ([]byte, error)
}

type emptyReader struct{}

func (emptyReader) Get([]byte) ([]byte, error) { return nil, nil }

// State is a working copy of the ledger. Writes stay in dirty until Update
// flushes them, in key order, into the tree.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	view   kvReader
	dbVer  int64

	header *StateHeader
	dirty  map[string][]byte
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	s := &State{
		logger: logger,
		db:     db,
		view:   db,
		header: new(StateHeader),
		dirty:  make(map[string][]byte),
	}
	s.header.LamportsPerByteYear = config.DefaultLamportsPerByteYear
	return s
}

func (s *State) nextState() *State {
	n := &State{
		logger: s.logger,
		db:     s.db,
		view:   s.db,
		dbVer:  s.dbVer,
		dirty:  make(map[string][]byte),
	}
	n.header = s.header.Clone()
	if s.header.GetHash() != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

// Clone returns an independent copy sharing the same tree. Changes made to
// the copy are dropped unless the caller keeps it.
func (s *State) Clone() *State {
	n := &State{
		logger: s.logger,
		db:     s.db,
		view:   s.view,
		dbVer:  s.dbVer,
		header: s.header.Clone(),
		dirty:  make(map[string][]byte, len(s.dirty)),
	}
	for k, v := range s.dirty {
		n.dirty[k] = v
	}
	return n
}

// Branch returns a child state that reads through to s and keeps its own
// writes. Nothing reaches s until Merge.
func (s *State) Branch() *State {
	return &State{
		logger: s.logger,
		db:     s.db,
		view:   parentReader{s},
		dbVer:  s.dbVer,
		header: s.header.Clone(),
		dirty:  make(map[string][]byte),
	}
}

// Merge applies the writes and header of a branch taken from s.
func (s *State) Merge(b *State) {
	for k, v := range b.dirty {
		s.dirty[k] = v
	}
	s.header = b.header
}

type parentReader struct {
	s *State
}

func (p parentReader) Get(key []byte) ([]byte, error) {
	return p.s.get(key)
}

// snapshot returns a read-only view of the last saved version. Reads do not
// observe writes flushed by a later Update that has not been saved yet.
func (s *State) snapshot() (*State, error) {
	n := &State{
		logger: s.logger,
		dbVer:  s.dbVer,
		header: s.header.Clone(),
		dirty:  make(map[string][]byte),
	}
	if s.dbVer == 0 {
		n.view = emptyReader{}
		return n, nil
	}
	tree, err := s.db.GetImmutable(s.dbVer)
	if err != nil {
		return nil, err
	}
	n.view = tree
	return n, nil
}

func (s *State) load() (err error) {
	val, err := s.view.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = s.header.Unmarshal(val)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		s.header.RootHash = append(s.header.RootHash[:0], rootHash...)
		s.header.Hash = append(s.header.Hash[:0], h[:]...)
	}
	return
}

// Update writes the header and every dirty key into the working tree and
// returns the resulting app hash.
func (s *State) Update() (h common.Hash, err error) {
	if s.db == nil {
		return h, ErrReadOnlyState
	}
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	_, err = s.db.Set([]byte(KeyState), s.header.Marshal())
	if err != nil {
		return
	}

	keys := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, err = s.db.Set([]byte(k), s.dirty[k])
		if err != nil {
			return
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.dirty = make(map[string][]byte)
	return
}

func (s *State) save() (h common.Hash, err error) {
	if s.db == nil {
		return h, ErrReadOnlyState
	}
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) get(key []byte) ([]byte, error) {
	if v, ok := s.dirty[string(key)]; ok {
		return v, nil
	}
	val, err := s.view.Get(key)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (s *State) set(key []byte, val []byte) {
	s.dirty[string(key)] = val
}

func (s *State) has(key []byte) (bool, error) {
	val, err := s.get(key)
	return val != nil, err
}

func (s *State) getUint(key []byte) (v uint64, err error) {
	val, err := s.get(key)
	if err != nil || val == nil {
		return 0, err
	}
	if err = rlp.DecodeBytes(val, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return
}

func (s *State) setUint(key []byte, v uint64) {
	val, err := rlp.EncodeToBytes(v)
	if err != nil {
		panic(err)
	}
	s.set(key, val)
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

func (s *State) SetLamportsPerByteYear(v uint64) {
	if v == 0 {
		v = config.DefaultLamportsPerByteYear
	}
	s.header.LamportsPerByteYear = v
}

// SetBlockTime sets the clock every operation of the block reads.
func (s *State) SetBlockTime(t int64) {
	s.header.BlockTime = t
}

func (s *State) now() int64 {
	return s.header.BlockTime
}

// Reservation is the storage reservation a record of size bytes must hold.
func (s *State) Reservation(size int) uint64 {
	return config.ReservationCost(s.header.LamportsPerByteYear, size)
}

func (s *State) Balance(a addr.Address) (uint64, error) {
	return s.getUint(balanceKey(a))
}

func (s *State) setBalance(a addr.Address, v uint64) {
	s.setUint(balanceKey(a), v)
}

func (s *State) Nonce(a addr.Address) (uint64, error) {
	return s.getUint(nonceKey(a))
}

// IncrementNonce consumes the current nonce of a.
func (s *State) IncrementNonce(a addr.Address) error {
	n, err := s.Nonce(a)
	if err != nil {
		return err
	}
	n, overflow := math.SafeAdd(n, 1)
	if overflow {
		return ErrMathOverflow
	}
	s.setUint(nonceKey(a), n)
	return nil
}

func (s *State) GetWallet(a addr.Address) (w *Wallet, err error) {
	w = &Wallet{Address: a}
	if w.Balance, err = s.Balance(a); err != nil {
		return nil, err
	}
	if w.Nonce, err = s.Nonce(a); err != nil {
		return nil, err
	}
	return
}

// Mint credits a with amount. Only genesis allocation mints.
func (s *State) Mint(a addr.Address, amount uint64) error {
	b, err := s.Balance(a)
	if err != nil {
		return err
	}
	b, overflow := math.SafeAdd(b, amount)
	if overflow {
		return ErrMathOverflow
	}
	s.setBalance(a, b)
	return nil
}

// Verify checks the signature and nonce of btx against the signer wallet.
// allowNonceGap accepts nonces ahead of the wallet, as the mempool does.
func (s *State) Verify(btx *tx.CapsuleTx, allowNonceGap bool) (err error) {
	if btx.Signer.IsZero() {
		return ErrTxSignerInvalid
	}
	nonce, err := s.Nonce(btx.Signer)
	if err != nil {
		return err
	}
	if !(nonce == btx.Nonce || (allowNonceGap && nonce < btx.Nonce)) {
		return ErrTxNonceInvalid
	}
	if len(btx.Sig) != 1 {
		return ErrTxSigInvalid
	}
	dat, err := btx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return err
	}
	pk := ed25519.PubKey(btx.Signer.Bytes())
	if !pk.VerifySignature(dat, btx.Sig[0]) {
		return ErrTxSigInvalid
	}
	return nil
}

func loadRecord[T any, PT interface {
	*T
	Record
}](s *State, a addr.Address) (PT, error) {
	rec := PT(new(T))
	val, err := s.get(recordKey(rec.Kind(), a))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	if err = rec.Unmarshal(val); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if err = addr.Verify(a, rec.Kind(), rec.Proof(), rec.Seeds()...); err != nil {
		return nil, fmt.Errorf("%w: %s %v: %v", ErrCorruptRecord, rec.Kind(), a, err)
	}
	return rec, nil
}

func (s *State) putRecord(a addr.Address, rec Record) {
	s.set(recordKey(rec.Kind(), a), rec.Marshal())
}

// createRecord stores a new record together with the derivation that
// produced its address.
func (s *State) createRecord(a addr.Address, rec Record) {
	d := Derivation{Kind: string(rec.Kind()), Bump: rec.Proof(), Seeds: rec.Seeds()}
	val, err := rlp.EncodeToBytes(&d)
	if err != nil {
		panic(err)
	}
	s.set(derivationKey(a), val)
	s.putRecord(a, rec)
}

func (s *State) GetDerivation(a addr.Address) (*Derivation, error) {
	val, err := s.get(derivationKey(a))
	if err != nil || val == nil {
		return nil, err
	}
	d := new(Derivation)
	if err = rlp.DecodeBytes(val, d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return d, nil
}

func (s *State) GetAgent(a addr.Address) (*Agent, error) {
	return loadRecord[Agent](s, a)
}

func (s *State) GetCapsule(a addr.Address) (*Capsule, error) {
	return loadRecord[Capsule](s, a)
}

func (s *State) GetStakeRecord(a addr.Address) (*StakeRecord, error) {
	return loadRecord[StakeRecord](s, a)
}

func (s *State) GetEarnings(a addr.Address) (*Earnings, error) {
	return loadRecord[Earnings](s, a)
}

func (s *State) GetStakingPool(a addr.Address) (*StakingPool, error) {
	return loadRecord[StakingPool](s, a)
}

func (s *State) GetUserStake(a addr.Address) (*UserStake, error) {
	return loadRecord[UserStake](s, a)
}
