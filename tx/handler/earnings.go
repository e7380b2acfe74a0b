package handler

import (
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewPayQueryTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "payQueryTx", (*state.State).PayQuery, types.EncodeEventQueryPaid)
}

func NewWithdrawEarningsTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "withdrawEarningsTx", (*state.State).WithdrawEarnings, types.EncodeEventEarningsWithdrawn)
}

func NewTransferTxHandler(logger cmtlog.Logger) TxHandler {
	return newOpHandler(logger, "transferTx", (*state.State).Transfer, types.EncodeEventTransfer)
}
