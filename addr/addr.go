// Package addr derives record addresses from a record kind and an ordered
// seed tuple. A derived address is never a valid ed25519 public key, so it
// can not collide with a wallet and nobody holds a key that signs for it.
package addr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	AddressLength = 32
	MaxSeedLen    = 32
	MaxSeeds      = 16
)

type Kind string

const (
	KindAgent       Kind = "agent"
	KindCapsule     Kind = "capsule"
	KindStaking     Kind = "staking"
	KindEarnings    Kind = "earnings"
	KindStakingPool Kind = "staking_pool"
	KindUserStake   Kind = "user_stake"
)

var kinds = map[Kind]bool{
	KindAgent:       true,
	KindCapsule:     true,
	KindStaking:     true,
	KindEarnings:    true,
	KindStakingPool: true,
	KindUserStake:   true,
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !kinds[k] {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

var (
	ErrSeedTooLong     = errors.New("seed too long")
	ErrTooManySeeds    = errors.New("too many seeds")
	ErrOnCurve         = errors.New("derived address is on curve")
	ErrNoViableBump    = errors.New("unable to find a viable bump")
	ErrAddressMismatch = errors.New("derived address mismatch")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrUnknownKind     = errors.New("unknown record kind")
)

// ProgramID namespaces every derivation of this ledger.
var ProgramID = crypto.Keccak256Hash([]byte("capsule-ledger/v1"))

var derivationMarker = []byte("CapsuleDerivedAddress")

type Address [AddressLength]byte

func BytesToAddress(b []byte) (a Address) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return
}

func ParseAddress(b []byte) (a Address, err error) {
	if len(b) != AddressLength {
		return a, fmt.Errorf("%w: length %d", ErrInvalidAddress, len(b))
	}
	copy(a[:], b)
	return
}

func HexToAddress(s string) (a Address, err error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	dat, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return ParseAddress(dat)
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string { return hex.EncodeToString(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(dat []byte) error {
	n, err := HexToAddress(string(dat))
	if err != nil {
		return err
	}
	*a = n
	return nil
}

// CreateAddress hashes the program id, the kind tag, the length-prefixed
// seeds and the bump. It fails with ErrOnCurve when the hash happens to be a
// valid curve point.
func CreateAddress(kind Kind, bump uint8, seeds ...[]byte) (a Address, err error) {
	if len(seeds) > MaxSeeds {
		return a, ErrTooManySeeds
	}
	parts := make([][]byte, 0, 2*len(seeds)+5)
	parts = append(parts, ProgramID[:], []byte{byte(len(kind))}, []byte(kind))
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return a, fmt.Errorf("%w: %d bytes", ErrSeedTooLong, len(seed))
		}
		parts = append(parts, []byte{byte(len(seed))}, seed)
	}
	parts = append(parts, []byte{bump}, derivationMarker)
	h := crypto.Keccak256(parts...)
	if onCurve(h) {
		return a, ErrOnCurve
	}
	copy(a[:], h)
	return
}

// Derive returns the canonical address of (kind, seeds) together with its
// bump, the highest bump whose address is off curve.
func Derive(kind Kind, seeds ...[]byte) (a Address, bump uint8, err error) {
	for b := 255; b >= 0; b-- {
		a, err = CreateAddress(kind, uint8(b), seeds...)
		if err == nil {
			return a, uint8(b), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Address{}, 0, err
		}
	}
	return Address{}, 0, ErrNoViableBump
}

// Verify checks that a was derived from (kind, bump, seeds). Any failure,
// including a bump that lands on the curve, is an ErrAddressMismatch.
func Verify(a Address, kind Kind, bump uint8, seeds ...[]byte) error {
	n, err := CreateAddress(kind, bump, seeds...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAddressMismatch, err)
	}
	if n != a {
		return ErrAddressMismatch
	}
	return nil
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
