package state

import (
	"fmt"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/config"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/types"
)

func validatePrice(price uint64) error {
	if price < config.MinPricePerQuery {
		return fmt.Errorf("%w: %d below %d", ErrInvalidPrice, price, config.MinPricePerQuery)
	}
	if price > config.MaxPricePerQuery {
		return fmt.Errorf("%w: %d above %d", ErrPriceTooHigh, price, config.MaxPricePerQuery)
	}
	return nil
}

func (s *State) CreateCapsule(t *tx.CreateCapsuleTx, creator addr.Address, checkOnly bool) (event *types.EventCapsuleCreated, err error) {
	s.logger.Debug("apply create capsule", "creator", creator, "capsuleId", t.CapsuleId, "height", s.header.Height)
	err = validateText(
		textField{"capsule_id", t.CapsuleId, config.MaxCapsuleIDLen},
		textField{"name", t.Name, config.MaxNameLen},
		textField{"description", t.Description, config.MaxDescriptionLen},
		textField{"category", t.Category, config.MaxCategoryLen},
	)
	if err != nil {
		return nil, err
	}
	if err = validatePrice(t.PricePerQuery); err != nil {
		return nil, err
	}
	a, bump, err := derive(addr.KindCapsule, creator.Bytes(), []byte(t.CapsuleId))
	if err != nil {
		return nil, err
	}
	exists, err := s.has(recordKey(addr.KindCapsule, a))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}
	plan := s.newTransferPlan()
	if err = plan.move(creator, a, s.Reservation(CapsuleSize)); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	now := s.now()
	capsule := &Capsule{
		Creator:       creator,
		CapsuleId:     t.CapsuleId,
		Name:          t.Name,
		Description:   t.Description,
		Category:      t.Category,
		PricePerQuery: t.PricePerQuery,
		TotalStake:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
		Bump:          bump,
	}
	s.createRecord(a, capsule)
	plan.commit()

	event = &types.EventCapsuleCreated{
		Capsule:       a,
		Creator:       creator,
		CapsuleId:     capsule.CapsuleId,
		PricePerQuery: capsule.PricePerQuery,
	}
	return
}

// UpdateCapsulePrice checks existence and ownership before the new price.
func (s *State) UpdateCapsulePrice(t *tx.UpdateCapsulePriceTx, caller addr.Address, checkOnly bool) (event *types.EventCapsulePriceUpdated, err error) {
	s.logger.Debug("apply update capsule price", "caller", caller, "capsule", t.Capsule, "height", s.header.Height)
	capsule, err := s.GetCapsule(t.Capsule)
	if err != nil {
		return nil, err
	}
	if capsule == nil {
		return nil, ErrCapsuleNotFound
	}
	if capsule.Creator != caller {
		return nil, ErrInvalidCapsuleOwner
	}
	if err = validatePrice(t.NewPrice); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	event = &types.EventCapsulePriceUpdated{
		Capsule:  t.Capsule,
		OldPrice: capsule.PricePerQuery,
		NewPrice: t.NewPrice,
	}
	capsule.PricePerQuery = t.NewPrice
	capsule.UpdatedAt = s.now()
	s.putRecord(t.Capsule, capsule)
	return
}
