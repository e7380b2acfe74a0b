package tx

import (
	"errors"
)

type TxType uint8

const (
	TxTypeUnknown            TxType = 0
	TxTypeRegisterAgent      TxType = 1
	TxTypeCreateCapsule      TxType = 2
	TxTypeUpdateCapsulePrice TxType = 3
	TxTypeStakeOnCapsule     TxType = 4
	TxTypeInitializePool     TxType = 5
	TxTypePoolStake          TxType = 6
	TxTypePoolUnstake        TxType = 7
	TxTypePayQuery           TxType = 8
	TxTypeWithdrawEarnings   TxType = 9
	TxTypeTransfer           TxType = 10
)

var txTypeNames = map[TxType]string{
	TxTypeRegisterAgent:      "register_agent",
	TxTypeCreateCapsule:      "create_capsule",
	TxTypeUpdateCapsulePrice: "update_capsule_price",
	TxTypeStakeOnCapsule:     "stake_on_capsule",
	TxTypeInitializePool:     "initialize_pool",
	TxTypePoolStake:          "pool_stake",
	TxTypePoolUnstake:        "pool_unstake",
	TxTypePayQuery:           "pay_query",
	TxTypeWithdrawEarnings:   "withdraw_earnings",
	TxTypeTransfer:           "transfer",
}

func (t TxType) String() string {
	if n, ok := txTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

const (
	TxVersion0 uint8 = 0
)

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrUnmatchedTxType   = errors.New("unmatched tx type")

	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)
