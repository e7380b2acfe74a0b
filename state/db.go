package state

import (
	"fmt"
	"sync"

	"github.com/calehh/capsule-app/addr"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree
	cache  *lru.Cache[string, []byte]

	state     *State
	committed *State
}

func NewStateDB(dir string, cacheSize int, logger cmtlog.Logger) (db *StateDB, err error) {
	ldb, err := dbm.NewDB("capsule", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	db, err = newStateDB(ldb, cacheSize, logger)
	if err != nil {
		return nil, err
	}
	db.dir = dir
	return
}

// NewMemStateDB keeps the tree in memory.
func NewMemStateDB(cacheSize int, logger cmtlog.Logger) (*StateDB, error) {
	return newStateDB(dbm.NewMemDB(), cacheSize, logger)
}

func newStateDB(ldb dbm.DB, cacheSize int, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "capsuledb")
	tdb := iavl.NewMutableTree(ldb, 128, true, Cometbft2CosmosLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, logger)
	st.dbVer = version
	err = st.load()
	if err != nil {
		logger.Error("from capsuledb load fail", "err", err)
		return nil, err
	}
	db = &StateDB{
		logger: logger,
		db:     tdb,
		state:  st,
	}
	if cacheSize > 0 {
		db.cache, err = lru.New[string, []byte](cacheSize)
		if err != nil {
			return nil, err
		}
	}
	if db.committed, err = db.snapshot(st); err != nil {
		return nil, err
	}
	return
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

type cachedReader struct {
	view  kvReader
	cache *lru.Cache[string, []byte]
	ver   int64
}

func (r *cachedReader) Get(key []byte) ([]byte, error) {
	ck := fmt.Sprintf("%d/%s", r.ver, key)
	if v, ok := r.cache.Get(ck); ok {
		return v, nil
	}
	v, err := r.view.Get(key)
	if err != nil {
		return nil, err
	}
	r.cache.Add(ck, v)
	return v, nil
}

func (db *StateDB) snapshot(st *State) (*State, error) {
	snap, err := st.snapshot()
	if err != nil {
		return nil, err
	}
	if db.cache != nil {
		snap.view = &cachedReader{view: snap.view, cache: db.cache, ver: st.dbVer}
	}
	return snap, nil
}

func (db *StateDB) Header() (header *StateHeader) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	header = db.state.Header().Clone()
	return
}

// CheckState is a read-only view of the last committed version. It may be
// used for validation only.
func (db *StateDB) CheckState() *State {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.committed.Clone()
}

func (db *StateDB) NewState() (st *State) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	st = db.state.nextState()
	return
}

func (db *StateDB) SetState(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, err = st.save()
	if err != nil {
		return
	}
	if db.cache != nil {
		db.cache.Purge()
	}
	committed, err := db.snapshot(st)
	if err != nil {
		return
	}
	db.state = st
	db.committed = committed
	return
}

func getCommitted[T any](db *StateDB, get func(st *State) (*T, error)) (rec *T, height uint64, err error) {
	db.mtx.RLock()
	st := db.committed
	db.mtx.RUnlock()
	rec, err = get(st)
	height = st.header.Height
	return
}

func (db *StateDB) GetWallet(a addr.Address) (*Wallet, uint64, error) {
	return getCommitted(db, func(st *State) (*Wallet, error) { return st.GetWallet(a) })
}

func (db *StateDB) GetAgent(a addr.Address) (*Agent, uint64, error) {
	return getCommitted(db, func(st *State) (*Agent, error) { return st.GetAgent(a) })
}

func (db *StateDB) GetCapsule(a addr.Address) (*Capsule, uint64, error) {
	return getCommitted(db, func(st *State) (*Capsule, error) { return st.GetCapsule(a) })
}

func (db *StateDB) GetStakeRecord(a addr.Address) (*StakeRecord, uint64, error) {
	return getCommitted(db, func(st *State) (*StakeRecord, error) { return st.GetStakeRecord(a) })
}

func (db *StateDB) GetEarnings(a addr.Address) (*Earnings, uint64, error) {
	return getCommitted(db, func(st *State) (*Earnings, error) { return st.GetEarnings(a) })
}

func (db *StateDB) GetStakingPool(a addr.Address) (*StakingPool, uint64, error) {
	return getCommitted(db, func(st *State) (*StakingPool, error) { return st.GetStakingPool(a) })
}

func (db *StateDB) GetUserStake(a addr.Address) (*UserStake, uint64, error) {
	return getCommitted(db, func(st *State) (*UserStake, error) { return st.GetUserStake(a) })
}

func (db *StateDB) GetDerivation(a addr.Address) (*Derivation, uint64, error) {
	return getCommitted(db, func(st *State) (*Derivation, error) { return st.GetDerivation(a) })
}
