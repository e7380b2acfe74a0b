package state

import (
	"fmt"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/config"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/types"
)

// StakeOnCapsule moves amount from the staker into its stake record for the
// capsule, creating the record on the first deposit. Every deposit restarts
// the lock window. The lock is recorded only; nothing here releases stake.
func (s *State) StakeOnCapsule(t *tx.StakeOnCapsuleTx, staker addr.Address, checkOnly bool) (event *types.EventCapsuleStaked, err error) {
	s.logger.Debug("apply stake on capsule", "staker", staker, "capsule", t.Capsule, "amount", t.Amount, "height", s.header.Height)
	if t.Amount < config.MinStakeAmount {
		return nil, fmt.Errorf("%w: %d below %d", ErrInsufficientStake, t.Amount, config.MinStakeAmount)
	}
	if t.Amount > config.MaxStakeAmount {
		return nil, fmt.Errorf("%w: %d above %d", ErrStakeTooHigh, t.Amount, config.MaxStakeAmount)
	}
	capsule, err := s.GetCapsule(t.Capsule)
	if err != nil {
		return nil, err
	}
	if capsule == nil {
		return nil, ErrCapsuleNotFound
	}
	sa, bump, err := derive(addr.KindStaking, t.Capsule.Bytes(), staker.Bytes())
	if err != nil {
		return nil, err
	}
	rec, err := s.GetStakeRecord(sa)
	if err != nil {
		return nil, err
	}

	required := t.Amount
	var reservation uint64
	if rec == nil {
		reservation = s.Reservation(StakeRecordSize)
		if required, err = checkedAdd(required, reservation); err != nil {
			return nil, err
		}
	}
	plan := s.newTransferPlan()
	bal, err := plan.balance(staker)
	if err != nil {
		return nil, err
	}
	if bal < required {
		return nil, fmt.Errorf("%w: balance %d, required %d", ErrInsufficientPayment, bal, required)
	}

	now := s.now()
	lockUntil, err := addSeconds(now, config.StakeLockPeriod)
	if err != nil {
		return nil, err
	}
	amount := t.Amount
	if rec != nil {
		if amount, err = checkedAdd(rec.Amount, t.Amount); err != nil {
			return nil, err
		}
	}
	totalStake, err := checkedAdd(capsule.TotalStake, t.Amount)
	if err != nil {
		return nil, err
	}
	if err = plan.move(staker, sa, reservation); err != nil {
		return nil, err
	}
	if err = plan.move(staker, sa, t.Amount); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	if rec == nil {
		rec = &StakeRecord{
			Capsule:  t.Capsule,
			Staker:   staker,
			StakedAt: now,
			Bump:     bump,
		}
		s.createRecord(sa, rec)
	}
	rec.Amount = amount
	rec.LockUntil = lockUntil
	s.putRecord(sa, rec)

	capsule.TotalStake = totalStake
	capsule.UpdatedAt = now
	s.putRecord(t.Capsule, capsule)
	plan.commit()

	event = &types.EventCapsuleStaked{
		Capsule:     t.Capsule,
		Stake:       sa,
		Staker:      staker,
		Amount:      t.Amount,
		StakeAmount: rec.Amount,
		TotalStake:  capsule.TotalStake,
		LockUntil:   rec.LockUntil,
	}
	return
}
