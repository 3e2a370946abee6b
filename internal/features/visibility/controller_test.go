package visibility

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"go-crm-funnel/internal/config"
	"go-crm-funnel/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationEndpoint(t *testing.T) {
	utils.SetSecret("nav-test")
	g := defaultGate(t)
	app := fiber.New()
	NewNavigationApi(NewNavigationController(g), &config.Config{}).Setup(app)

	tests := []struct {
		role         string
		wantSections []string
		wantAdmin    []string
	}{
		{role: "MANAGER", wantSections: allSections, wantAdmin: []string{ItemUsers, ItemDepartments, ItemProducts}},
		{role: "SALE", wantSections: []string{SectionDashboard, SectionLeads, SectionDeals, SectionCustomers, SectionTickets, SectionReports}},
		{role: "HACKER", wantSections: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token, err := utils.GenerateToken("u1", tt.role, time.Hour)
			require.NoError(t, err)
			req := httptest.NewRequest("GET", "/api/navigation", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			var body struct {
				Sections []Section `json:"sections"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

			codes := []string{}
			var admin []string
			for _, s := range body.Sections {
				codes = append(codes, s.Code)
				if s.Code == SectionAdmin {
					admin = s.Items
				}
			}
			assert.Equal(t, tt.wantSections, codes)
			assert.Equal(t, tt.wantAdmin, admin)
		})
	}
}
