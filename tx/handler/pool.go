package handler

import (
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewInitializePoolTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "initializePoolTx", (*state.State).InitializePool, types.EncodeEventPoolInitialized)
}

func NewPoolStakeTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "poolStakeTx", (*state.State).PoolStake, types.EncodeEventPoolStake)
}

func NewPoolUnstakeTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "poolUnstakeTx", (*state.State).PoolUnstake, types.EncodeEventPoolStake)
}
