package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/state"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	svc     *Service
	owner   addr.Address
	capsule addr.Address
}

func newFixture(t *testing.T) *fixture {
	db, err := state.NewMemStateDB(16, cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	st.SetChainId("api-test")
	st.SetBlockTime(1_700_000_000)
	owner := addr.BytesToAddress(ed25519.GenPrivKeyFromSecret([]byte("owner")).PubKey().Bytes())
	require.NoError(t, st.Mint(owner, 1_000_000_000))
	ev, err := st.CreateCapsule(&tx.CreateCapsuleTx{
		CapsuleId: "cap", Name: "n", Description: "d", Category: "c", PricePerQuery: 500_000,
	}, owner, false)
	require.NoError(t, err)
	_, err = st.Update()
	require.NoError(t, err)
	_, err = db.SetState(st)
	require.NoError(t, err)
	return &fixture{
		svc:     NewService("127.0.0.1:0", db, cmtlog.NewNopLogger()),
		owner:   owner,
		capsule: ev.Capsule,
	}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.svc.Handler().ServeHTTP(w, req)
	return w
}

func TestGetRecord(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/v1/capsules/"+f.capsule.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var res RecordResponse[state.Capsule]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "cap", res.Record.CapsuleId)
	assert.Equal(t, f.owner, res.Record.Creator)
	assert.Equal(t, uint64(500_000), res.Record.PricePerQuery)

	w = f.do(http.MethodGet, "/v1/wallets/0x"+f.owner.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var wallet RecordResponse[state.Wallet]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wallet))
	assert.Less(t, wallet.Record.Balance, uint64(1_000_000_000))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/agents/"+f.owner.String(), "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/v1/capsules/zz", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/v1/capsules/abcd", "").Code)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "api-test", res.ChainId)
	assert.Equal(t, uint64(3480), res.LamportsPerByteYear)
	assert.True(t, strings.HasPrefix(res.AppHash, "0x"))
}

func TestDerive(t *testing.T) {
	f := newFixture(t)
	body := `{"kind":"capsule","seeds":["0x` + f.owner.String() + `","0x636170"]}`
	w := f.do(http.MethodPost, "/v1/derive", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res types.DeriveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, f.capsule, res.Address)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/derive", `{"kind":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/derive", `not json`).Code)
}
