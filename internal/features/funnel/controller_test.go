package funnel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/features/filter"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSaved struct{}

func (stubSaved) Criteria(ctx context.Context, id, module string, facetNames []string) (filter.Criteria, error) {
	if id != "globex-only" {
		return filter.Criteria{}, common_models.ErrNotFound
	}
	return filter.NewCriteria("globex", nil, nil), nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	utils.SetSecret("funnel-test")

	gate, err := visibility.NewGate(visibility.DefaultMatrix())
	require.NoError(t, err)
	svc, _ := newTestService(t)

	app := fiber.New()
	NewFunnelApi(NewFunnelController(svc, gate, stubSaved{}), &config.Config{}).Setup(app)
	return app
}

func call(t *testing.T, app *fiber.App, role, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, err := utils.GenerateToken("u-"+strings.ToLower(role), role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestFunnelEndpoints_Access(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		role   string
		method string
		path   string
		want   int
	}{
		{"no token", "", http.MethodGet, "/api/deals", fiber.StatusUnauthorized},
		{"sale lists deals", "SALE", http.MethodGet, "/api/deals", fiber.StatusOK},
		{"support has no deals", "SUPPORT", http.MethodGet, "/api/deals", fiber.StatusForbidden},
		{"support has no leads", "SUPPORT", http.MethodGet, "/api/leads", fiber.StatusForbidden},
		{"unknown role", "INTERN", http.MethodGet, "/api/leads", fiber.StatusForbidden},
		{"stages", "SALE", http.MethodGet, "/api/stages/deals", fiber.StatusOK},
		{"stages of unknown funnel", "SALE", http.MethodGet, "/api/stages/tickets", fiber.StatusNotFound},
		{"stages hidden from support", "SUPPORT", http.MethodGet, "/api/stages/LEAD", fiber.StatusForbidden},
		{"bad date filter", "SALE", http.MethodGet, "/api/deals?from=soon", fiber.StatusBadRequest},
		{"missing saved filter", "SALE", http.MethodGet, "/api/deals?filter_id=nope", fiber.StatusNotFound},
		{"missing record", "SALE", http.MethodGet, "/api/leads/nope", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := call(t, app, tt.role, tt.method, tt.path, "")
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestFunnelEndpoints_Lifecycle(t *testing.T) {
	app := newTestApp(t)

	status, created := call(t, app, "SALE", http.MethodPost, "/api/deals", `{"name":"Acme","company":"Acme Corp","amount":500}`)
	require.Equal(t, fiber.StatusCreated, status)
	id := created["id"].(string)
	assert.Equal(t, StageNew, created["stage_id"])
	assert.Equal(t, "u-sale", created["owner_id"])

	status, _ = call(t, app, "SALE", http.MethodPost, "/api/deals", `{"name":"Globex"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = call(t, app, "SALE", http.MethodPost, "/api/deals", `{"company":"nameless"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, list := call(t, app, "SALE", http.MethodGet, "/api/deals?q=ACME", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, list["total"])

	status, list = call(t, app, "SALE", http.MethodGet, "/api/deals?filter_id=globex-only", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, list["total"])

	status, list = call(t, app, "SALE", http.MethodGet, "/api/deals?stage=NEW,WON", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, list["total"])

	path := "/api/deals/" + id + "/stage"

	status, _ = call(t, app, "SALE", http.MethodPatch, path, `{"stage_id":"QUALIFIED"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = call(t, app, "SALE", http.MethodPatch, path, `{"stage_id":"WON","probability":50}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = call(t, app, "SALE", http.MethodPatch, path, `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, moved := call(t, app, "SALE", http.MethodPatch, path, `{"stage_id":"PROPOSAL","version":1}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 50, moved["probability"])
	assert.EqualValues(t, 75, moved["progress"])
	assert.EqualValues(t, 2, moved["version"])

	status, _ = call(t, app, "SALE", http.MethodPatch, path, `{"stage_id":"WON","version":1}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, got := call(t, app, "MANAGER", http.MethodGet, "/api/deals/"+id, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, StageProposal, got["stage_id"])

	status, _ = call(t, app, "SALE", http.MethodGet, "/api/leads/"+id, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
