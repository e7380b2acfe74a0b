package state

import (
	"fmt"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/types"
)

// accrue returns e with amount added and one more query counted.
func (s *State) accrue(e *Earnings, amount uint64) (*Earnings, error) {
	total, err := checkedAdd(e.TotalEarnings, amount)
	if err != nil {
		return nil, err
	}
	count, err := checkedAdd(e.QueryCount, 1)
	if err != nil {
		return nil, err
	}
	n := *e
	n.TotalEarnings = total
	n.QueryCount = count
	n.LastUpdated = s.now()
	return &n, nil
}

// AddEarnings credits amount to the escrow counters. It is the settlement
// entry point and is not reachable by a signed transaction; the value it
// accounts for must already be held by the escrow.
func (s *State) AddEarnings(ref addr.Address, amount uint64) (*Earnings, error) {
	e, err := s.GetEarnings(ref)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEarningsNotFound
	}
	n, err := s.accrue(e, amount)
	if err != nil {
		return nil, err
	}
	s.putRecord(ref, n)
	return n, nil
}

// PayQuery settles one query against a capsule: the payer moves the
// capsule price into the creator's escrow for that capsule, which is created
// on first use at the payer's expense.
func (s *State) PayQuery(t *tx.PayQueryTx, payer addr.Address, checkOnly bool) (event *types.EventQueryPaid, err error) {
	s.logger.Debug("apply pay query", "payer", payer, "capsule", t.Capsule, "height", s.header.Height)
	capsule, err := s.GetCapsule(t.Capsule)
	if err != nil {
		return nil, err
	}
	if capsule == nil {
		return nil, ErrCapsuleNotFound
	}
	ea, bump, err := derive(addr.KindEarnings, capsule.Creator.Bytes(), t.Capsule.Bytes())
	if err != nil {
		return nil, err
	}
	e, err := s.GetEarnings(ea)
	if err != nil {
		return nil, err
	}

	plan := s.newTransferPlan()
	created := e == nil
	if created {
		if err = plan.move(payer, ea, s.Reservation(EarningsSize)); err != nil {
			return nil, err
		}
		e = &Earnings{Wallet: capsule.Creator, Capsule: t.Capsule, Bump: bump}
	}
	if err = plan.move(payer, ea, capsule.PricePerQuery); err != nil {
		return nil, err
	}
	n, err := s.accrue(e, capsule.PricePerQuery)
	if err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	if created {
		s.createRecord(ea, n)
	} else {
		s.putRecord(ea, n)
	}
	plan.commit()

	event = &types.EventQueryPaid{
		Capsule:       t.Capsule,
		Earnings:      ea,
		Payer:         payer,
		Amount:        capsule.PricePerQuery,
		TotalEarnings: n.TotalEarnings,
		QueryCount:    n.QueryCount,
	}
	return
}

// WithdrawEarnings pays the whole accrued total to the escrow's wallet. The
// escrow authorizes the transfer itself by re-deriving its address from the
// stored bump, so only the recorded wallet can ever receive it.
func (s *State) WithdrawEarnings(t *tx.WithdrawEarningsTx, caller addr.Address, checkOnly bool) (event *types.EventEarningsWithdrawn, err error) {
	s.logger.Debug("apply withdraw earnings", "caller", caller, "earnings", t.Earnings, "height", s.header.Height)
	e, err := s.GetEarnings(t.Earnings)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEarningsNotFound
	}
	if e.Wallet != caller {
		return nil, fmt.Errorf("%w: caller is not the earnings wallet", ErrUnauthorized)
	}
	if e.Wallet != t.Destination {
		return nil, fmt.Errorf("%w: destination is not the earnings wallet", ErrUnauthorized)
	}
	if e.TotalEarnings == 0 {
		return nil, fmt.Errorf("%w: nothing to withdraw", ErrInsufficientPayment)
	}

	plan := s.newTransferPlan()
	held, err := plan.balance(t.Earnings)
	if err != nil {
		return nil, err
	}
	available, underflow := safeSub(held, s.Reservation(EarningsSize))
	if underflow || available < e.TotalEarnings {
		return nil, fmt.Errorf("%w: escrow holds %d, owes %d", ErrInsufficientPayment, held, e.TotalEarnings)
	}
	if err = addr.Verify(t.Earnings, e.Kind(), e.Bump, e.Seeds()...); err != nil {
		return nil, fmt.Errorf("%w: escrow signature: %v", ErrCorruptRecord, err)
	}
	if err = plan.move(t.Earnings, t.Destination, e.TotalEarnings); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	event = &types.EventEarningsWithdrawn{
		Earnings:    t.Earnings,
		Destination: t.Destination,
		Amount:      e.TotalEarnings,
	}
	e.TotalEarnings = 0
	s.putRecord(t.Earnings, e)
	plan.commit()
	return
}
