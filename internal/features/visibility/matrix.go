package visibility

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoleGrant lists what one role may reach.
type RoleGrant struct {
	Sections []string            `yaml:"sections"`
	Items    map[string][]string `yaml:"items,omitempty"` // section code -> allowed items
}

// MatrixConfig is the serialisable form of the capability matrix.
type MatrixConfig struct {
	Sections []Section          `yaml:"sections"`
	Roles    map[Role]RoleGrant `yaml:"roles"`
}

var allSections = []string{
	SectionDashboard, SectionLeads, SectionDeals, SectionCustomers,
	SectionTickets, SectionReports, SectionAdmin,
}

// DefaultMatrix is the built-in role table.
func DefaultMatrix() MatrixConfig {
	return MatrixConfig{
		Sections: []Section{
			{Code: SectionDashboard},
			{Code: SectionLeads},
			{Code: SectionDeals},
			{Code: SectionCustomers},
			{Code: SectionTickets},
			{Code: SectionReports},
			{Code: SectionAdmin, Items: []string{ItemUsers, ItemDepartments, ItemProducts, ItemRoles, ItemShareConfig}},
		},
		Roles: map[Role]RoleGrant{
			RoleAdmin: {
				Sections: allSections,
				Items: map[string][]string{
					SectionAdmin: {ItemUsers, ItemDepartments, ItemProducts, ItemRoles, ItemShareConfig},
				},
			},
			RoleManager: {
				Sections: allSections,
				Items: map[string][]string{
					SectionAdmin: {ItemUsers, ItemDepartments, ItemProducts},
				},
			},
			RoleSale: {
				Sections: []string{SectionDashboard, SectionLeads, SectionDeals, SectionCustomers, SectionTickets, SectionReports},
			},
			RoleSupport: {
				Sections: []string{SectionDashboard, SectionCustomers, SectionTickets},
			},
		},
	}
}

// LoadMatrixFile reads a MatrixConfig from YAML.
func LoadMatrixFile(path string) (MatrixConfig, error) {
	var cfg MatrixConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read visibility matrix: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse visibility matrix: %w", err)
	}
	return cfg, nil
}
