package state

import (
	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/types"
)

// Transfer moves value between any two addresses. Sending to a derived
// address funds that record.
func (s *State) Transfer(t *tx.TransferTx, from addr.Address, checkOnly bool) (event *types.EventTransfer, err error) {
	s.logger.Debug("apply transfer", "from", from, "to", t.To, "amount", t.Amount, "height", s.header.Height)
	if t.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	if t.To.IsZero() {
		return nil, ErrInvalidDestination
	}
	plan := s.newTransferPlan()
	if err = plan.move(from, t.To, t.Amount); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}
	plan.commit()

	event = &types.EventTransfer{
		From:   from,
		To:     t.To,
		Amount: t.Amount,
	}
	return
}
