package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexlake/cir/pkg/mapstore"
	"github.com/hexlake/cir/pkg/overrides"
	"github.com/hexlake/cir/pkg/resolver"
	"github.com/hexlake/cir/pkg/tempid"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	table := overrides.NewTable(map[string]map[string]string{
		mapstore.MatchTypePlan: {"Z0005": "COMP100"},
	})

	gen, err := tempid.NewGenerator(&tempid.Config{Salt: "api-test-salt"})
	require.NoError(t, err)

	res := resolver.New(log, table, mapstore.NewMemoryStore(), nil, gen)

	defaultStrategy := resolver.Strategy{
		PlanColumn:         "plan_code",
		CustomerNameColumn: "customer_name",
		OutputColumn:       "resolved_company_id",
		GenerateTempIDs:    true,
	}

	return newApp(log, res, defaultStrategy, 100)
}

func postResolve(t *testing.T, app *fiber.App, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHealthz(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResolve(t *testing.T) {
	app := testApp(t)

	resp := postResolve(t, app, ResolveRequest{
		Rows: []resolver.Row{
			{"plan_code": "Z0005"},
			{"customer_name": "unknown co"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ResolveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Len(t, body.IDs, 2)
	assert.Equal(t, "COMP100", body.IDs[0])
	assert.True(t, tempid.IsTempID(body.IDs[1]))
	require.NotNil(t, body.Statistics)
	assert.Equal(t, 2, body.Statistics.TotalRows)
	assert.Equal(t, 1, body.Statistics.TempIDsGenerated)
}

func TestResolve_StrategyOverride(t *testing.T) {
	app := testApp(t)

	resp := postResolve(t, app, ResolveRequest{
		Rows: []resolver.Row{{"plan": "Z0005"}},
		Strategy: &resolver.Strategy{
			PlanColumn:   "plan",
			OutputColumn: "company_id",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ResolveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"COMP100"}, body.IDs)
}

func TestResolve_InvalidStrategy(t *testing.T) {
	app := testApp(t)

	resp := postResolve(t, app, ResolveRequest{
		Rows:     []resolver.Row{{"plan_code": "Z0005"}},
		Strategy: &resolver.Strategy{OutputColumn: ""},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResolve_MalformedBody(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResolve_BatchTooLarge(t *testing.T) {
	app := testApp(t)

	rows := make([]resolver.Row, 101)
	for i := range rows {
		rows[i] = resolver.Row{"customer_name": "x"}
	}

	resp := postResolve(t, app, ResolveRequest{Rows: rows})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
