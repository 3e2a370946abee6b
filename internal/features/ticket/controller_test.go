package ticket

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *fakeClock) {
	t.Helper()
	utils.SetSecret("ticket-test")
	gate, err := visibility.NewGate(visibility.DefaultMatrix())
	require.NoError(t, err)
	svc, clock, _ := newTestService()

	app := fiber.New()
	NewTicketApi(NewTicketController(svc, gate, nil), &config.Config{}).Setup(app)
	return app, clock
}

func do(t *testing.T, app *fiber.App, role, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	token, err := utils.GenerateToken("agent-1", role, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

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

func TestTicketEndpoints(t *testing.T) {
	app, clock := newTestApp(t)

	status, _ := do(t, app, "INTERN", http.MethodGet, "/api/tickets", "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, created := do(t, app, "SUPPORT", http.MethodPost, "/api/tickets", `{"subject":"Cannot log in","priority":"urgent"}`)
	require.Equal(t, fiber.StatusCreated, status)
	id := created["id"].(string)
	assert.Equal(t, "TKT-000001", created["ticket_number"])

	status, _ = do(t, app, "SUPPORT", http.MethodPost, "/api/tickets", `{"subject":"x","priority":"someday"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, list := do(t, app, "SALE", http.MethodGet, "/api/tickets?priority=urgent&q=log", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, list["total"])

	status, _ = do(t, app, "SALE", http.MethodGet, "/api/tickets?to=31/12/2024", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, "SALE", http.MethodGet, "/api/tickets?filter_id=abc", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	clock.now = clock.now.Add(5 * time.Hour)

	status, overdue := do(t, app, "SUPPORT", http.MethodGet, "/api/tickets/overdue", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, overdue["total"])

	status, slaBody := do(t, app, "SUPPORT", http.MethodGet, "/api/tickets/"+id+"/sla", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, slaBody["overdue"])
	assert.EqualValues(t, 1, slaBody["progress"])
	breakdown := slaBody["breakdown"].(map[string]any)
	assert.EqualValues(t, 1, breakdown["hours"])

	status, _ = do(t, app, "SUPPORT", http.MethodPatch, "/api/tickets/"+id+"/status", `{"status":"ON_HOLD"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = do(t, app, "SUPPORT", http.MethodPatch, "/api/tickets/"+id+"/status", `{"status":"OPEN","version":5}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, updated := do(t, app, "SUPPORT", http.MethodPatch, "/api/tickets/"+id+"/status", `{"status":"CLOSED","version":1}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "CLOSED", updated["status"])

	status, overdue = do(t, app, "SUPPORT", http.MethodGet, "/api/tickets/overdue", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, overdue["total"])

	status, _ = do(t, app, "SUPPORT", http.MethodGet, "/api/tickets/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
