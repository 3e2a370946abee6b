package funnel

import (
	"fmt"
	"strings"
	"time"
)

// FunnelType selects which stage table applies to a record.
type FunnelType string

const (
	FunnelLead FunnelType = "LEAD"
	FunnelDeal FunnelType = "DEAL"
)

// ParseFunnelType accepts "lead", "leads", "DEAL", ...
func ParseFunnelType(s string) (FunnelType, error) {
	switch strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "S") {
	case string(FunnelLead):
		return FunnelLead, nil
	case string(FunnelDeal):
		return FunnelDeal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFunnelType, s)
}

// Module is the collection/section name records of this type live under.
func (ft FunnelType) Module() string {
	return strings.ToLower(string(ft)) + "s"
}

// Stage is one phase of a funnel. Terminal stages carry no meaningful order
// and have a fixed probability (100 for a win, 0 for a loss).
type Stage struct {
	ID                 string `json:"id"`
	Order              int    `json:"order"`
	IsTerminal         bool   `json:"is_terminal"`
	DefaultProbability int    `json:"default_probability"`
}

// FunnelRecord is a lead or a deal.
type FunnelRecord struct {
	ID                string     `json:"id" bson:"_id"`
	FunnelType        FunnelType `json:"funnel_type" bson:"funnel_type"`
	Name              string     `json:"name" bson:"name"`
	Company           string     `json:"company" bson:"company"`
	Email             string     `json:"email" bson:"email"`
	StageID           string     `json:"stage_id" bson:"stage_id"`
	Probability       int        `json:"probability" bson:"probability"`
	OwnerID           string     `json:"owner_id" bson:"owner_id"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty" bson:"expected_close_date,omitempty"`
	Amount            float64    `json:"amount" bson:"amount"`
	Version           int64      `json:"version" bson:"version"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
}

// RecordView is a record decorated with its stage display data.
type RecordView struct {
	FunnelRecord
	Stage    Stage `json:"stage"`
	Progress int   `json:"progress"`
	Overdue  bool  `json:"overdue"`
}

// StageChange is a request to move a record to another stage.
type StageChange struct {
	StageID     string `json:"stage_id"`
	Probability *int   `json:"probability,omitempty"`
	// ExpectedVersion guards against lost updates when set.
	ExpectedVersion *int64 `json:"version,omitempty"`
}

// CreateRecordRequest is the body accepted when creating a lead or deal.
type CreateRecordRequest struct {
	Name              string     `json:"name"`
	Company           string     `json:"company"`
	Email             string     `json:"email"`
	OwnerID           string     `json:"owner_id"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Amount            float64    `json:"amount"`
}
