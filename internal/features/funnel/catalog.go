package funnel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StageRow is one row of the stage configuration table.
type StageRow struct {
	FunnelType         FunnelType `yaml:"funnel_type"`
	StageID            string     `yaml:"stage_id"`
	Order              int        `yaml:"order"`
	IsTerminal         bool       `yaml:"is_terminal"`
	DefaultProbability int        `yaml:"default_probability"`
}

// Stage ids of the built-in table
const (
	StageNew         = "NEW"
	StageContacted   = "CONTACTED"
	StageQualified   = "QUALIFIED"
	StageProposal    = "PROPOSAL"
	StageNegotiation = "NEGOTIATION"
	StageWon         = "WON"
	StageLost        = "LOST"
)

// DefaultStageTable is the built-in configuration. Terminal rows are listed
// in the order they should appear after the ordered stages.
func DefaultStageTable() []StageRow {
	return []StageRow{
		{FunnelType: FunnelLead, StageID: StageNew, Order: 1, DefaultProbability: 10},
		{FunnelType: FunnelLead, StageID: StageContacted, Order: 2, DefaultProbability: 30},
		{FunnelType: FunnelLead, StageID: StageQualified, Order: 3, DefaultProbability: 60},
		{FunnelType: FunnelLead, StageID: StageWon, IsTerminal: true, DefaultProbability: 100},
		{FunnelType: FunnelLead, StageID: StageLost, IsTerminal: true, DefaultProbability: 0},

		{FunnelType: FunnelDeal, StageID: StageNew, Order: 1, DefaultProbability: 10},
		{FunnelType: FunnelDeal, StageID: StageContacted, Order: 2, DefaultProbability: 25},
		{FunnelType: FunnelDeal, StageID: StageProposal, Order: 3, DefaultProbability: 50},
		{FunnelType: FunnelDeal, StageID: StageNegotiation, Order: 4, DefaultProbability: 75},
		{FunnelType: FunnelDeal, StageID: StageWon, IsTerminal: true, DefaultProbability: 100},
		{FunnelType: FunnelDeal, StageID: StageLost, IsTerminal: true, DefaultProbability: 0},
	}
}

type stageFile struct {
	Stages []StageRow `yaml:"stages"`
}

// LoadStageFile reads the table from YAML:
//
//	stages:
//	  - {funnel_type: DEAL, stage_id: NEW, order: 1, default_probability: 10}
func LoadStageFile(path string) ([]StageRow, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage table: %w", err)
	}
	var f stageFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse stage table: %w", err)
	}
	return f.Stages, nil
}
