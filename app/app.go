package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/calehh/capsule-app/config"
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/tx/handler"
	"github.com/calehh/capsule-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/prometheus/client_golang/prometheus"
)

const AppVersion uint64 = 1

var ErrLamportsOutOfRange = errors.New("lamports_per_byte_year out of range")

var _ abcitypes.Application = &CapsuleApp{}

type CapsuleApp struct {
	cfg    *config.Config
	logger cmtlog.Logger

	db       *state.StateDB
	txHdlrs  map[tx.TxType]handler.TxHandler
	queriers map[string]Querier
	metrics  *Metrics

	st *state.State
}

func NewCapsuleApp(cfg *config.Config, logger cmtlog.Logger) (app *CapsuleApp, err error) {
	db, err := state.NewStateDB(cfg.App.DataDir(), cfg.App.QueryCacheSize, logger)
	if err != nil {
		return nil, err
	}
	var reg prometheus.Registerer
	if cfg.App.Metrics {
		reg = prometheus.DefaultRegisterer
	}
	return newCapsuleApp(cfg, db, NewMetrics(reg), logger), nil
}

func newCapsuleApp(cfg *config.Config, db *state.StateDB, metrics *Metrics, logger cmtlog.Logger) *CapsuleApp {
	app := &CapsuleApp{
		cfg:      cfg,
		logger:   logger.With("module", "app"),
		db:       db,
		txHdlrs:  handler.NewTxHandlers(logger),
		queriers: make(map[string]Querier),
		metrics:  metrics,
	}
	app.registerQuerier()
	return app
}

// DB exposes the committed state to read-only services.
func (app *CapsuleApp) DB() *state.StateDB {
	return app.db
}

func (app *CapsuleApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("capsule app stopped")
}

func (app *CapsuleApp) registerQuerier() {
	app.queriers["/wallets/"] = newRecordQuerier(app.logger, app.db.GetWallet)
	app.queriers["/agents/"] = newRecordQuerier(app.logger, app.db.GetAgent)
	app.queriers["/capsules/"] = newRecordQuerier(app.logger, app.db.GetCapsule)
	app.queriers["/stakes/"] = newRecordQuerier(app.logger, app.db.GetStakeRecord)
	app.queriers["/earnings/"] = newRecordQuerier(app.logger, app.db.GetEarnings)
	app.queriers["/pools/"] = newRecordQuerier(app.logger, app.db.GetStakingPool)
	app.queriers["/userstakes/"] = newRecordQuerier(app.logger, app.db.GetUserStake)
	app.queriers["/derivations/"] = newRecordQuerier(app.logger, app.db.GetDerivation)
	app.queriers["/derive/"] = &DeriveQuerier{}
}

func (app *CapsuleApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	header := app.db.Header()
	if header.Hash != nil {
		app.logger.Info("InitChain on initialized state", "chainId", header.ChainId)
		return &abcitypes.ResponseInitChain{AppHash: header.Hash}, nil
	}
	appState, err := types.ParseAppState(chain.AppStateBytes)
	if err != nil {
		app.logger.Error("InitChain parse app state fail", "err", err)
		return nil, err
	}
	if appState.LamportsPerByteYear > config.MaxLamportsPerByteYear {
		return nil, fmt.Errorf("%w: %d", ErrLamportsOutOfRange, appState.LamportsPerByteYear)
	}

	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	st.SetLamportsPerByteYear(appState.LamportsPerByteYear)
	st.SetBlockTime(chain.Time.Unix())
	for _, b := range appState.Balances {
		if err = st.Mint(b.Address, b.Amount); err != nil {
			app.logger.Error("InitChain mint fail", "address", b.Address, "err", err)
			return nil, err
		}
	}
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err := app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	app.logger.Info("InitChain", "chainId", chain.ChainId, "balances", len(appState.Balances), "appHash", h)
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *CapsuleApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		Data:             "capsule",
		AppVersion:       AppVersion,
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *CapsuleApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *CapsuleApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_ACCEPT}, nil
}

func (app *CapsuleApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{Result: abcitypes.ResponseApplySnapshotChunk_ABORT}, nil
}

func (app *CapsuleApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (app *CapsuleApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (app *CapsuleApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{Result: abcitypes.ResponseOfferSnapshot_REJECT}, nil
}
