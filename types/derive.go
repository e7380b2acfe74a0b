package types

import (
	"github.com/calehh/capsule-app/addr"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DeriveRequest asks for the deterministic address of a record kind and
// its seeds.
type DeriveRequest struct {
	Kind  string          `json:"kind"`
	Seeds []hexutil.Bytes `json:"seeds"`
}

type DeriveResult struct {
	Address addr.Address `json:"address"`
	Bump    uint8        `json:"bump"`
}

func (r *DeriveRequest) Derive() (*DeriveResult, error) {
	kind, err := addr.ParseKind(r.Kind)
	if err != nil {
		return nil, err
	}
	seeds := make([][]byte, len(r.Seeds))
	for i, s := range r.Seeds {
		seeds[i] = s
	}
	a, bump, err := addr.Derive(kind, seeds...)
	if err != nil {
		return nil, err
	}
	return &DeriveResult{Address: a, Bump: bump}, nil
}
