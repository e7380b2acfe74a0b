package handler

import (
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewCreateCapsuleTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "createCapsuleTx", (*state.State).CreateCapsule, types.EncodeEventCapsuleCreated)
}

func NewUpdateCapsulePriceTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "updateCapsulePriceTx", (*state.State).UpdateCapsulePrice, types.EncodeEventCapsulePriceUpdated)
}

func NewStakeOnCapsuleTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "stakeOnCapsuleTx", (*state.State).StakeOnCapsule, types.EncodeEventCapsuleStaked)
}
