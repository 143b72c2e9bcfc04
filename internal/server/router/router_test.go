package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishledger/internal/domain/pricing"
	"github.com/mamadbah2/fishledger/internal/repository/memory"
	"github.com/mamadbah2/fishledger/internal/server/handlers"
	"github.com/mamadbah2/fishledger/internal/service/dues"
	"github.com/mamadbah2/fishledger/internal/service/loadings"
	"github.com/mamadbah2/fishledger/internal/service/reporting"
	"github.com/mamadbah2/fishledger/internal/service/stock"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) (*apiClient, *memory.Store) {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	policy := pricing.DefaultPolicy()
	stockSvc := stock.NewService(store, policy, nil)
	loadingSvc := loadings.NewService(store, stockSvc, policy, nil)
	dueSvc := dues.NewService(store, nil)
	reportingSvc := reporting.NewService(stockSvc, dueSvc, store, nil, nil)

	ledger := handlers.NewLedgerHandler(loadingSvc, stockSvc, dueSvc, reportingSvc, nil)
	return &apiClient{t: t, engine: New(ledger, nil, nil)}, store
}

func (a *apiClient) do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestHealthz(t *testing.T) {
	api, _ := newAPI(t)
	code, body := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestWebhookRoutesNeedMessaging(t *testing.T) {
	api, _ := newAPI(t)
	code, body := api.do(http.MethodGet, "/webhook", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Nil(t, body)
}

func TestLedgerFlow(t *testing.T) {
	api, store := newAPI(t)

	code, _ := api.do(http.MethodPost, "/api/v1/varieties", map[string]any{"code": "rc", "name": "Rohu"})
	require.Equal(t, http.StatusCreated, code)
	code, body := api.do(http.MethodPost, "/api/v1/varieties", map[string]any{"code": "RC", "name": "Rohu"})
	assert.Equal(t, http.StatusConflict, code)
	assert.NotEmpty(t, body["error"])

	code, _ = api.do(http.MethodPost, "/api/v1/loadings", map[string]any{
		"bill_no": "F-1", "category": "FARMER_INTAKE", "party_name": "Suresh",
		"lines": []map[string]any{{"variety_code": "RC", "loose_kgs": 500, "price_per_kg": "150"}},
	})
	require.Equal(t, http.StatusCreated, code)

	code, body = api.do(http.MethodPost, "/api/v1/loadings", map[string]any{
		"bill_no": "D-1", "category": "CLIENT_DISPATCH", "party_name": "Ravi",
		"lines": []map[string]any{{"variety_code": "RC", "trays": 16, "price_per_kg": 200}},
	})
	require.Equal(t, http.StatusCreated, code)
	notices := body["notices"].([]any)
	require.Len(t, notices, 1)
	assert.Equal(t, float64(14), notices[0].(map[string]any)["trays"])
	record := body["record"].(map[string]any)
	assert.Equal(t, "95000", record["grand_total"])
	recordID := record["id"].(string)
	lineID := record["lines"].([]any)[0].(map[string]any)["id"].(string)

	code, body = api.do(http.MethodGet, "/api/v1/stock/rc", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["net_kgs"])

	code, body = api.do(http.MethodGet, "/api/v1/dues?party=Ravi", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "95000", body["due"])

	code, body = api.do(http.MethodPost, "/api/v1/payments", map[string]any{
		"party_name": "Ravi", "party_kind": "CLIENT", "amount": "100000", "mode": "UPI",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["requires_confirmation"])

	code, body = api.do(http.MethodPost, "/api/v1/payments", map[string]any{
		"party_name": "Ravi", "party_kind": "CLIENT", "amount": "100000", "mode": "UPI", "confirm": true,
	})
	require.Equal(t, http.StatusCreated, code)
	account := body["account"].(map[string]any)
	assert.Equal(t, "0", account["due"])
	assert.Equal(t, "5000", account["overpaid"])

	code, body = api.do(http.MethodGet, "/api/v1/dues/pending?kind=vendor", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["accounts"].([]any), 1)

	linePath := "/api/v1/loadings/" + recordID + "/lines/" + lineID
	code, _ = api.do(http.MethodPost, linePath+"/edit/save", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = api.do(http.MethodPost, linePath+"/edit", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "EDITING", body["state"])

	code, body = api.do(http.MethodPatch, linePath+"/edit", map[string]any{"trays": 10, "loose_kgs": 0})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(350), body["line"].(map[string]any)["total_kgs"])

	code, body = api.do(http.MethodPost, linePath+"/edit/save", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "66500", body["record"].(map[string]any)["grand_total"])

	code, body = api.do(http.MethodDelete, linePath, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["record_deleted"])

	code, _ = api.do(http.MethodGet, "/api/v1/loadings/"+recordID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = api.do(http.MethodPost, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Len(t, body["stock"].([]any), 1)
	assert.Len(t, store.Snapshots(), 1)
}

func TestValidationErrors(t *testing.T) {
	api, _ := newAPI(t)

	code, body := api.do(http.MethodPost, "/api/v1/loadings", map[string]any{
		"bill_no": "F-1", "category": "FARMER_INTAKE", "party_name": "Suresh",
		"lines": []map[string]any{{"variety_code": "RC", "trays": -2}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "lines[0].trays", body["field"])

	code, _ = api.do(http.MethodGet, "/api/v1/loadings?category=RETURNS", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, "/api/v1/dues?party=Ravi&kind=broker", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
