package invkeeper

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/everFinance/invkeeper/schema"
	"github.com/everFinance/invkeeper/sdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type testView struct {
	Data  *schema.InventoryRecord `json:"data"`
	State struct {
		Loading             bool   `json:"loading"`
		Confirmed           bool   `json:"confirmed"`
		LastTransactionHash string `json:"lastTransactionHash"`
		Error               string `json:"error"`
	} `json:"state"`
	ObjectId     string `json:"objectId"`
	IsOwner      bool   `json:"isOwner"`
	ObjectExists bool   `json:"objectExists"`
	HasValidData bool   `json:"hasValidData"`
}

func newTestKeeper(t *testing.T, chain *fakeChain, signer *fakeSigner, opts ...Option) *Keeper {
	gin.SetMode(gin.TestMode)
	k := &Keeper{
		network:     testNetwork(),
		coordinator: NewCoordinator(testNetwork(), chain, signer, sdk.StaticAccount{Address: testOwner}, opts...),
		engine:      gin.New(),
	}
	k.registerRoutes(k.engine)
	return k
}

func serve(k *Keeper, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	k.engine.ServeHTTP(w, req)
	return w
}

func TestApi_Info(t *testing.T) {
	k := newTestKeeper(t, newFakeChain(), &fakeSigner{})
	w := serve(k, http.MethodGet, "/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	info := schema.RespInfo{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, schema.RespInfo{Network: "testnet", RpcUrl: "http://127.0.0.1:9000", PackageId: testPackageId, Account: testOwner}, info)
}

func TestApi_Lifecycle(t *testing.T) {
	chain := newFakeChain()
	chain.putCreated(testDigest, testObjectId)
	chain.putInventory(testObjectId, "3", testOwner)
	signer := &fakeSigner{digest: testDigest}
	k := newTestKeeper(t, chain, signer)

	w := serve(k, http.MethodGet, "/object")
	assert.Equal(t, http.StatusOK, w.Code)
	view := testView{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Nil(t, view.Data)
	assert.Equal(t, "", view.ObjectId)

	w = serve(k, http.MethodPost, "/object")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := struct {
		View  testView `json:"view"`
		Error string   `json:"error"`
	}{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "", resp.Error)
	assert.Equal(t, testObjectId, resp.View.ObjectId)
	assert.True(t, resp.View.State.Confirmed)
	assert.Equal(t, testDigest, resp.View.State.LastTransactionHash)
	assert.Equal(t, uint64(3), resp.View.Data.InventoryCount)
	assert.True(t, resp.View.IsOwner)

	chain.putInventory(testObjectId, "4", testOwner)
	w = serve(k, http.MethodPost, "/object/add")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, schema.Target(testPackageId, schema.MethodAddInventory), signer.lastTx().MoveCalls[0].Target)

	w = serve(k, http.MethodPost, "/object/refresh")
	assert.Equal(t, http.StatusOK, w.Code)
	view = testView{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, uint64(4), view.Data.InventoryCount)

	w = serve(k, http.MethodDelete, "/object")
	assert.Equal(t, http.StatusOK, w.Code)
	view = testView{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "", view.ObjectId)
	assert.False(t, view.State.Confirmed)
}

func TestApi_ActionError(t *testing.T) {
	c := newFakeChain()
	c.putCreated(testDigest, testObjectId)
	signer := &fakeSigner{digest: testDigest}
	k := newTestKeeper(t, c, signer)
	assert.Equal(t, http.StatusOK, serve(k, http.MethodPost, "/object").Code)

	signer.err = schema.ErrSigner
	w := serve(k, http.MethodPost, "/object/remove")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := struct {
		View  testView `json:"view"`
		Error string   `json:"error"`
	}{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, schema.ErrSigner.Error())
	assert.Equal(t, resp.Error, resp.View.State.Error)
	assert.False(t, resp.View.State.Loading)
}

func TestApi_ActionInFlight(t *testing.T) {
	chain := newFakeChain()
	chain.putCreated(testDigest, testObjectId)
	signer := &fakeSigner{digest: testDigest}
	k := newTestKeeper(t, chain, signer)

	var inFlight *httptest.ResponseRecorder
	chain.onWait = func() {
		// a second action while the create waits for finality
		inFlight = serve(k, http.MethodPost, "/object/add")
	}
	w := serve(k, http.MethodPost, "/object")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusConflict, inFlight.Code)
	assert.JSONEq(t, `{"error":"`+schema.ErrTxInFlight.Error()+`"}`, inFlight.Body.String())
	assert.Equal(t, 1, signer.calls())

	// reads are not guarded
	chain.onWait = func() {
		inFlight = serve(k, http.MethodGet, "/object")
	}
	signer.digest = testDigest2
	assert.Equal(t, http.StatusOK, serve(k, http.MethodPost, "/object/add").Code)
	assert.Equal(t, http.StatusOK, inFlight.Code)
}

func TestApi_History(t *testing.T) {
	chain := newFakeChain()
	chain.putCreated(testDigest, testObjectId)
	k := newTestKeeper(t, chain, &fakeSigner{digest: testDigest}, WithStore(newTestStore(t)))
	assert.Equal(t, http.StatusOK, serve(k, http.MethodPost, "/object").Code)

	w := serve(k, http.MethodGet, "/history")
	assert.Equal(t, http.StatusOK, w.Code)
	records := make([]schema.TxRecord, 0)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Equal(t, 1, len(records))
	assert.Equal(t, testDigest, records[0].Digest)

	w = serve(k, http.MethodGet, "/history/"+testDigest)
	assert.Equal(t, http.StatusOK, w.Code)
	record := schema.TxRecord{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, records[0], record)

	w = serve(k, http.MethodGet, "/history/"+testDigest2)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"`+schema.ErrNotExist.Error()+`"}`, w.Body.String())
}
