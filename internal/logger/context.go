package logger

import (
	"context"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/pkg/utils"

	"go.uber.org/zap"
)

// ContextWithRequestID stores the id assigned by the request id middleware.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, common_models.RequestIDKey, requestID)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(common_models.RequestIDKey).(string)
	return id
}

// ContextFields returns the request_id and actor_id fields that the DB sink
// persists alongside each entry.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if claims, ok := utils.ClaimsFromContext(ctx); ok {
		fields = append(fields, zap.String("actor_id", claims.UserID))
	}
	return fields
}
