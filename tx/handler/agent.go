package handler

import (
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewRegisterAgentTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "registerAgentTx", (*state.State).RegisterAgent, types.EncodeEventAgentRegistered)
}
