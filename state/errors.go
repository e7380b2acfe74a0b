package state

import (
	"errors"
	"fmt"
)

// Ledger errors. Their ABCI codes start at CodeLedgerBase and follow the
// declaration order below; never reorder, only append.
var (
	ErrUnauthorized          = errors.New("unauthorized access")
	ErrInvalidAgentOwner     = fmt.Errorf("invalid agent owner: %w", ErrUnauthorized)
	ErrInvalidCapsuleOwner   = fmt.Errorf("invalid capsule owner: %w", ErrUnauthorized)
	ErrCapsuleNotFound       = errors.New("capsule not found")
	ErrInsufficientStake     = errors.New("insufficient stake amount")
	ErrInsufficientPayment   = errors.New("insufficient payment")
	ErrStakeNotFound         = errors.New("stake not found")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidMetadataLength = errors.New("invalid metadata length")
	ErrMathOverflow          = errors.New("math overflow")
	ErrEmptyString           = errors.New("string cannot be empty")
	ErrPriceTooHigh          = errors.New("price exceeds maximum allowed")
	ErrStakeTooHigh          = errors.New("stake amount exceeds maximum allowed")
	ErrAlreadyExists         = errors.New("record already exists")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrPoolNotFound          = errors.New("staking pool not found")
	ErrEarningsNotFound      = errors.New("earnings not found")
	ErrInvalidDestination    = errors.New("invalid destination")
)

// ErrLedgerInconsistent reports a broken ledger invariant. It is never a
// caller mistake and must halt block execution.
var ErrLedgerInconsistent = errors.New("ledger inconsistent")

var ErrCorruptRecord = errors.New("corrupt record")

var (
	ErrTxSignerInvalid = errors.New("signer invalid")
	ErrTxNonceInvalid  = errors.New("nonce invalid")
	ErrTxSigInvalid    = errors.New("signature invalid")
)

const (
	CodeOK            uint32 = 0
	CodeTxDecode      uint32 = 1
	CodeUnsupportedTx uint32 = 2
	CodeSignerInvalid uint32 = 3
	CodeNonceInvalid  uint32 = 4
	CodeSigInvalid    uint32 = 5
	CodeInternal      uint32 = 99

	CodeLedgerBase uint32 = 6000
)

var ledgerCodes = []error{
	ErrInvalidAgentOwner,
	ErrInvalidCapsuleOwner,
	ErrCapsuleNotFound,
	ErrInsufficientStake,
	ErrInsufficientPayment,
	ErrStakeNotFound,
	ErrInvalidPrice,
	ErrUnauthorized,
	ErrInvalidMetadataLength,
	ErrMathOverflow,
	ErrEmptyString,
	ErrPriceTooHigh,
	ErrStakeTooHigh,
	ErrAlreadyExists,
	ErrInvalidAmount,
	ErrPoolNotFound,
	ErrEarningsNotFound,
	nil, // 6017, agent not found, reserved
	ErrInvalidDestination,
}

var hostCodes = []struct {
	err  error
	code uint32
}{
	{ErrTxSignerInvalid, CodeSignerInvalid},
	{ErrTxNonceInvalid, CodeNonceInvalid},
	{ErrTxSigInvalid, CodeSigInvalid},
}

// CodeOf maps err to the code reported in CheckTx and ExecTxResult.
// The owner-specific errors are matched before ErrUnauthorized which
// they wrap.
func CodeOf(err error) uint32 {
	if err == nil {
		return CodeOK
	}
	for i, e := range ledgerCodes {
		if errors.Is(err, e) {
			return CodeLedgerBase + uint32(i)
		}
	}
	for _, h := range hostCodes {
		if errors.Is(err, h.err) {
			return h.code
		}
	}
	return CodeInternal
}

// IsLedgerError reports whether err is a caller-facing ledger rejection.
func IsLedgerError(err error) bool {
	c := CodeOf(err)
	return c >= CodeLedgerBase && c < CodeLedgerBase+uint32(len(ledgerCodes))
}
