package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calehh/capsule-app/addr"
	"github.com/ethereum/go-ethereum/common/math"
)

// Every ledger operation validates first and only then writes. Balance
// movements are collected in a transferPlan, which checks each leg against
// the balances the plan has already moved, and applied together with the
// record writes once nothing can fail anymore.
type transferPlan struct {
	s   *State
	bal map[addr.Address]uint64
}

func (s *State) newTransferPlan() *transferPlan {
	return &transferPlan{s: s, bal: make(map[addr.Address]uint64)}
}

func (p *transferPlan) balance(a addr.Address) (uint64, error) {
	if b, ok := p.bal[a]; ok {
		return b, nil
	}
	b, err := p.s.Balance(a)
	if err != nil {
		return 0, err
	}
	p.bal[a] = b
	return b, nil
}

func (p *transferPlan) move(from, to addr.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	fb, err := p.balance(from)
	if err != nil {
		return err
	}
	if fb < amount {
		return ErrInsufficientPayment
	}
	if from == to {
		return nil
	}
	tb, err := p.balance(to)
	if err != nil {
		return err
	}
	nb, overflow := math.SafeAdd(tb, amount)
	if overflow {
		return ErrMathOverflow
	}
	p.bal[from] = fb - amount
	p.bal[to] = nb
	return nil
}

func (p *transferPlan) commit() {
	for a, b := range p.bal {
		p.s.setBalance(a, b)
	}
}

type textField struct {
	name  string
	value string
	max   int
}

// validateText rejects blank fields before it looks at any length.
func validateText(fields ...textField) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyString, f.name)
		}
	}
	for _, f := range fields {
		if len(f.value) > f.max {
			return fmt.Errorf("%w: %s is %d bytes, max %d", ErrInvalidMetadataLength, f.name, len(f.value), f.max)
		}
	}
	return nil
}

// derive maps seed bound violations to the ledger's length error.
func derive(kind addr.Kind, seeds ...[]byte) (addr.Address, uint8, error) {
	a, bump, err := addr.Derive(kind, seeds...)
	if err != nil {
		if errors.Is(err, addr.ErrSeedTooLong) || errors.Is(err, addr.ErrTooManySeeds) {
			return a, 0, fmt.Errorf("%w: %v", ErrInvalidMetadataLength, err)
		}
		return a, 0, err
	}
	return a, bump, nil
}

func addSeconds(t, d int64) (int64, error) {
	r := t + d
	if (d > 0 && r < t) || (d < 0 && r > t) {
		return 0, ErrMathOverflow
	}
	return r, nil
}

func checkedAdd(x, y uint64) (uint64, error) {
	v, overflow := math.SafeAdd(x, y)
	if overflow {
		return 0, ErrMathOverflow
	}
	return v, nil
}

func safeSub(x, y uint64) (uint64, bool) {
	return math.SafeSub(x, y)
}
