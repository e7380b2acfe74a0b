package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

// Service serves the committed ledger state over HTTP.
type Service struct {
	engine     *gin.Engine
	db         *state.StateDB
	logger     cmtlog.Logger
	listenAddr string
	srv        *http.Server
}

func NewService(listenAddr string, db *state.StateDB, logger cmtlog.Logger) *Service {
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Service{
		engine:     r,
		db:         db,
		logger:     logger.With("module", "api"),
		listenAddr: listenAddr,
	}
	v1 := s.engine.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.POST("/derive", s.handleDerive)
	v1.GET("/wallets/:address", recordHandler(s, db.GetWallet))
	v1.GET("/agents/:address", recordHandler(s, db.GetAgent))
	v1.GET("/capsules/:address", recordHandler(s, db.GetCapsule))
	v1.GET("/stakes/:address", recordHandler(s, db.GetStakeRecord))
	v1.GET("/earnings/:address", recordHandler(s, db.GetEarnings))
	v1.GET("/pools/:address", recordHandler(s, db.GetStakingPool))
	v1.GET("/userstakes/:address", recordHandler(s, db.GetUserStake))
	v1.GET("/derivations/:address", recordHandler(s, db.GetDerivation))
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) Start() {
	s.srv = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		s.logger.Info("api listening", "addr", s.listenAddr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server stopped", "err", err)
		}
	}()
}

func (s *Service) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

type RecordResponse[T any] struct {
	Height uint64 `json:"height"`
	Record *T     `json:"record"`
}

type StatusResponse struct {
	ChainId             string `json:"chainId"`
	Height              uint64 `json:"height"`
	BlockTime           int64  `json:"blockTime"`
	AppHash             string `json:"appHash"`
	LamportsPerByteYear uint64 `json:"lamportsPerByteYear"`
}

func recordHandler[T any](s *Service, get func(a addr.Address) (*T, uint64, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := addr.HexToAddress(c.Param("address"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rec, height, err := get(a)
		if err != nil {
			s.logger.Error("read record fail", "path", c.FullPath(), "address", a, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, RecordResponse[T]{Height: height, Record: rec})
	}
}

func (s *Service) handleStatus(c *gin.Context) {
	h := s.db.Header()
	c.JSON(http.StatusOK, StatusResponse{
		ChainId:             h.ChainId,
		Height:              h.Height,
		BlockTime:           h.BlockTime,
		AppHash:             hexutil.Encode(h.Hash),
		LamportsPerByteYear: h.LamportsPerByteYear,
	})
}

func (s *Service) handleDerive(c *gin.Context) {
	var req types.DeriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := req.Derive()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
