package state

import (
	"fmt"

	"github.com/calehh/capsule-app/addr"
)

var (
	KeyState      = "s"
	KeyRecord     = "r/%s/%x"
	KeyBalance    = "b/%x"
	KeyNonce      = "n/%x"
	KeyDerivation = "k/%x"
)

func recordKey(kind addr.Kind, a addr.Address) []byte {
	return []byte(fmt.Sprintf(KeyRecord, kind, a[:]))
}

func balanceKey(a addr.Address) []byte {
	return []byte(fmt.Sprintf(KeyBalance, a[:]))
}

func nonceKey(a addr.Address) []byte {
	return []byte(fmt.Sprintf(KeyNonce, a[:]))
}

func derivationKey(a addr.Address) []byte {
	return []byte(fmt.Sprintf(KeyDerivation, a[:]))
}
