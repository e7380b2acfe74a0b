package state

import (
	"fmt"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/config"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/types"
)

// The pool variant keeps all staked value in the pool's own balance, next to
// its reservation. User stakes are counters against that vault and carry no
// lock.

func (s *State) InitializePool(t *tx.InitializePoolTx, creator addr.Address, checkOnly bool) (event *types.EventPoolInitialized, err error) {
	s.logger.Debug("apply initialize pool", "creator", creator, "capsuleId", t.CapsuleId, "height", s.header.Height)
	if err = validateText(textField{"capsule_id", t.CapsuleId, config.MaxPoolCapsuleLen}); err != nil {
		return nil, err
	}
	pa, bump, err := derive(addr.KindStakingPool, []byte(t.CapsuleId))
	if err != nil {
		return nil, err
	}
	exists, err := s.has(recordKey(addr.KindStakingPool, pa))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}
	plan := s.newTransferPlan()
	if err = plan.move(creator, pa, s.Reservation(StakingPoolSize)); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	pool := &StakingPool{
		CapsuleId:   t.CapsuleId,
		TotalStaked: 0,
		Creator:     creator,
		Bump:        bump,
	}
	s.createRecord(pa, pool)
	plan.commit()

	event = &types.EventPoolInitialized{
		Pool:      pa,
		Creator:   creator,
		CapsuleId: pool.CapsuleId,
	}
	return
}

func (s *State) loadPool(a addr.Address) (*StakingPool, error) {
	pool, err := s.GetStakingPool(a)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

func (s *State) PoolStake(t *tx.PoolStakeTx, user addr.Address, checkOnly bool) (event *types.EventPoolStake, err error) {
	s.logger.Debug("apply pool stake", "user", user, "pool", t.Pool, "amount", t.Amount, "height", s.header.Height)
	if t.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := s.loadPool(t.Pool)
	if err != nil {
		return nil, err
	}
	ua, bump, err := derive(addr.KindUserStake, t.Pool.Bytes(), user.Bytes())
	if err != nil {
		return nil, err
	}
	rec, err := s.GetUserStake(ua)
	if err != nil {
		return nil, err
	}

	plan := s.newTransferPlan()
	amount := t.Amount
	if rec == nil {
		if err = plan.move(user, ua, s.Reservation(UserStakeSize)); err != nil {
			return nil, err
		}
	} else if amount, err = checkedAdd(rec.Amount, t.Amount); err != nil {
		return nil, err
	}
	total, err := checkedAdd(pool.TotalStaked, t.Amount)
	if err != nil {
		return nil, err
	}
	if err = plan.move(user, t.Pool, t.Amount); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	if rec == nil {
		rec = &UserStake{Pool: t.Pool, User: user, Bump: bump}
		s.createRecord(ua, rec)
	}
	rec.Amount = amount
	rec.StakedAt = s.now()
	s.putRecord(ua, rec)
	pool.TotalStaked = total
	s.putRecord(t.Pool, pool)
	plan.commit()

	event = &types.EventPoolStake{
		Pool:        t.Pool,
		UserStake:   ua,
		User:        user,
		Amount:      t.Amount,
		StakeAmount: rec.Amount,
		TotalStaked: pool.TotalStaked,
	}
	return
}

// PoolUnstake returns amount from the pool vault to the user. A pool whose
// total or vault can not cover a stake its user still holds is reported as
// ErrLedgerInconsistent.
func (s *State) PoolUnstake(t *tx.PoolUnstakeTx, user addr.Address, checkOnly bool) (event *types.EventPoolStake, err error) {
	s.logger.Debug("apply pool unstake", "user", user, "pool", t.Pool, "amount", t.Amount, "height", s.header.Height)
	if t.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := s.loadPool(t.Pool)
	if err != nil {
		return nil, err
	}
	ua, _, err := derive(addr.KindUserStake, t.Pool.Bytes(), user.Bytes())
	if err != nil {
		return nil, err
	}
	rec, err := s.GetUserStake(ua)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrStakeNotFound
	}
	if rec.Amount < t.Amount {
		return nil, fmt.Errorf("%w: staked %d, requested %d", ErrInsufficientStake, rec.Amount, t.Amount)
	}
	if pool.TotalStaked < t.Amount {
		s.logger.Error("pool total below user stake", "pool", t.Pool, "total", pool.TotalStaked, "stake", rec.Amount)
		return nil, fmt.Errorf("%w: pool %v total %d below user stake %d", ErrLedgerInconsistent, t.Pool, pool.TotalStaked, rec.Amount)
	}

	plan := s.newTransferPlan()
	vault, err := plan.balance(t.Pool)
	if err != nil {
		return nil, err
	}
	spendable, underflow := safeSub(vault, s.Reservation(StakingPoolSize))
	if underflow || spendable < t.Amount {
		s.logger.Error("pool vault short", "pool", t.Pool, "vault", vault, "amount", t.Amount)
		return nil, fmt.Errorf("%w: pool %v vault %d can not pay %d", ErrLedgerInconsistent, t.Pool, vault, t.Amount)
	}
	if err = plan.move(t.Pool, user, t.Amount); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	rec.Amount -= t.Amount
	s.putRecord(ua, rec)
	pool.TotalStaked -= t.Amount
	s.putRecord(t.Pool, pool)
	plan.commit()

	event = &types.EventPoolStake{
		Pool:        t.Pool,
		UserStake:   ua,
		User:        user,
		Amount:      t.Amount,
		StakeAmount: rec.Amount,
		TotalStaked: pool.TotalStaked,
		Unstake:     true,
	}
	return
}
