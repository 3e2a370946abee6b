package models

import (
	"time"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionStageChange  AuditAction = "STAGE_CHANGE"
	AuditActionStatusChange AuditAction = "STATUS_CHANGE"
	AuditActionFilter       AuditAction = "FILTER"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        string            `bson:"_id" json:"id"`
	Action    AuditAction       `bson:"action" json:"action"`
	Module    string            `bson:"module" json:"module"`                       // leads, deals, tickets, filters
	RecordID  string            `bson:"record_id" json:"record_id"`                 // The ID of the record being modified
	ActorID   string            `bson:"actor_id" json:"actor_id"`                   // User ID who performed the action
	ActorRole string            `bson:"actor_role" json:"actor_role"`               // Role claimed by the actor's token
	Changes   map[string]Change `bson:"changes,omitempty" json:"changes,omitempty"` // field -> {old, new}
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
}

// Log is a persisted application log line written by the logger's DB sink.
type Log struct {
	Message      string    `bson:"message" json:"message"`
	Caller       string    `bson:"caller" json:"caller"`
	RequestID    string    `bson:"request_id,omitempty" json:"request_id,omitempty"`
	ActorID      string    `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	AppID        string    `bson:"app_id" json:"app_id"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}

// Page describes a paginated slice of a larger result.
type Page struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}
