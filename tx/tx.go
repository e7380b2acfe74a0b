package tx

import (
	"encoding/json"
	"fmt"

	"github.com/calehh/capsule-app/addr"
)

// CapsuleTx is the signed envelope of every ledger operation. Signer is the
// ed25519 public key of the calling wallet, which is also its address.
type CapsuleTx struct {
	Version uint8        `json:"version"`
	Type    TxType       `json:"type"`
	Nonce   uint64       `json:"nonce"`
	Signer  addr.Address `json:"signer"`
	Tx      any          `json:"tx"`
	Sig     [][]byte     `json:"sig"`
}

type RegisterAgentTx struct {
	AgentId     string `json:"agentId"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Platform    string `json:"platform"`
}

type CreateCapsuleTx struct {
	CapsuleId     string `json:"capsuleId"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	PricePerQuery uint64 `json:"pricePerQuery"`
}

type UpdateCapsulePriceTx struct {
	Capsule  addr.Address `json:"capsule"`
	NewPrice uint64       `json:"newPrice"`
}

type StakeOnCapsuleTx struct {
	Capsule addr.Address `json:"capsule"`
	Amount  uint64       `json:"amount"`
}

type InitializePoolTx struct {
	CapsuleId string `json:"capsuleId"`
}

type PoolStakeTx struct {
	Pool   addr.Address `json:"pool"`
	Amount uint64       `json:"amount"`
}

type PoolUnstakeTx struct {
	Pool   addr.Address `json:"pool"`
	Amount uint64       `json:"amount"`
}

type PayQueryTx struct {
	Capsule addr.Address `json:"capsule"`
}

type WithdrawEarningsTx struct {
	Earnings    addr.Address `json:"earnings"`
	Destination addr.Address `json:"destination"`
}

type TransferTx struct {
	To     addr.Address `json:"to"`
	Amount uint64       `json:"amount"`
}

type capsuleTxTmpl[Tx any] struct {
	Version uint8        `json:"version"`
	Type    TxType       `json:"type"`
	Nonce   uint64       `json:"nonce"`
	Signer  addr.Address `json:"signer"`
	Tx      Tx           `json:"tx"`
	Sig     [][]byte     `json:"sig"`
}

// SigData is the message a wallet signs: the envelope with its signatures
// replaced by ext, which is the chain id.
func (tx *CapsuleTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func parseTxType(dat []byte) (TxType, error) {
	var tx struct {
		Type TxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return TxTypeUnknown, fmt.Errorf("%w: %v", ErrInvalidTx, err)
	}
	return tx.Type, nil
}

func unmarshalCapsuleTx[Tx any](dat []byte) (btx *CapsuleTx, err error) {
	var txt capsuleTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	if txt.Version != TxVersion0 {
		return nil, ErrUnsupportedTxVersion
	}
	btx = new(CapsuleTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.Signer = txt.Signer
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalCapsuleTx(dat []byte) (btx *CapsuleTx, err error) {
	tp, err := parseTxType(dat)
	if err != nil {
		return nil, err
	}
	switch tp {
	case TxTypeRegisterAgent:
		return unmarshalCapsuleTx[RegisterAgentTx](dat)
	case TxTypeCreateCapsule:
		return unmarshalCapsuleTx[CreateCapsuleTx](dat)
	case TxTypeUpdateCapsulePrice:
		return unmarshalCapsuleTx[UpdateCapsulePriceTx](dat)
	case TxTypeStakeOnCapsule:
		return unmarshalCapsuleTx[StakeOnCapsuleTx](dat)
	case TxTypeInitializePool:
		return unmarshalCapsuleTx[InitializePoolTx](dat)
	case TxTypePoolStake:
		return unmarshalCapsuleTx[PoolStakeTx](dat)
	case TxTypePoolUnstake:
		return unmarshalCapsuleTx[PoolUnstakeTx](dat)
	case TxTypePayQuery:
		return unmarshalCapsuleTx[PayQueryTx](dat)
	case TxTypeWithdrawEarnings:
		return unmarshalCapsuleTx[WithdrawEarningsTx](dat)
	case TxTypeTransfer:
		return unmarshalCapsuleTx[TransferTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalCapsuleTx(btx *CapsuleTx) (dat []byte, err error) {
	return json.Marshal(btx)
}

// Payload returns the typed body of btx.
func Payload[Tx any](btx *CapsuleTx) (*Tx, error) {
	t, ok := btx.Tx.(*Tx)
	if !ok {
		return nil, ErrUnmatchedTxType
	}
	return t, nil
}
