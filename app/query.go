package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const (
	QueryCodeNotFound   uint32 = 1
	QueryCodeBadRequest uint32 = 2
	QueryCodeInternal   uint32 = 3
	QueryCodeNoRoute    uint32 = 404
)

func (app *CapsuleApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = QueryCodeNoRoute
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

// RecordQuerier serves one record kind of the committed state keyed by
// its 32 byte address.
type RecordQuerier[T any] struct {
	logger cmtlog.Logger
	get    func(a addr.Address) (*T, uint64, error)
}

func newRecordQuerier[T any](logger cmtlog.Logger, get func(a addr.Address) (*T, uint64, error)) *RecordQuerier[T] {
	return &RecordQuerier[T]{logger: logger, get: get}
}

func (q *RecordQuerier[T]) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	a, err1 := addr.ParseAddress(req.Data)
	if err1 != nil {
		res.Code = QueryCodeBadRequest
		res.Log = err1.Error()
		return
	}
	rec, height, err1 := q.get(a)
	if err1 != nil {
		q.logger.Error("query fail", "path", req.Path, "address", a, "err", err1)
		res.Code = QueryCodeInternal
		res.Log = err1.Error()
		return
	}
	res.Height = int64(height)
	if rec == nil {
		res.Code = QueryCodeNotFound
		return
	}
	res.Key = a.Bytes()
	res.Value, _ = json.Marshal(rec)
	return
}

// DeriveQuerier computes an address from a JSON encoded DeriveRequest
// without touching state.
type DeriveQuerier struct{}

func (q *DeriveQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	var dr types.DeriveRequest
	if err1 := json.Unmarshal(req.Data, &dr); err1 != nil {
		res.Code = QueryCodeBadRequest
		res.Log = err1.Error()
		return
	}
	result, err1 := dr.Derive()
	if err1 != nil {
		res.Code = QueryCodeBadRequest
		res.Log = err1.Error()
		return
	}
	res.Value, _ = json.Marshal(result)
	return
}
