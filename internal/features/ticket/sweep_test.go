package ticket

import (
	"context"
	"testing"
	"time"

	"go-crm-funnel/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSweep_LogsBreachedTickets(t *testing.T) {
	svc, clock, _ := newTestService()
	ctx := agent()

	_, err := svc.CreateTicket(ctx, CreateTicketRequest{Subject: "Outage", Priority: TicketPriorityUrgent})
	require.NoError(t, err)
	_, err = svc.CreateTicket(ctx, CreateTicketRequest{Subject: "Invoice copy", Priority: TicketPriorityLow})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	sweeper := NewSLASweeper(svc, &config.Config{}, zap.New(core))

	count, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	clock.now = clock.now.Add(5 * time.Hour)
	count, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	breached := logs.FilterMessage("Ticket SLA breached").All()
	require.Len(t, breached, 1)
	assert.Equal(t, "TKT-000001", breached[0].ContextMap()["ticket_number"])
	assert.Equal(t, int64(1), breached[0].ContextMap()["overdue_hours"])
}

func TestSweeper_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, _, _ := newTestService()
	sweeper := NewSLASweeper(svc, &config.Config{SLASweepSchedule: "@every 1h"}, zap.NewNop())

	require.NoError(t, sweeper.Start())
	sweeper.Stop()
	// Stopping twice is harmless.
	sweeper.Stop()
}

func TestSweeper_Schedule(t *testing.T) {
	svc, _, _ := newTestService()

	disabled := NewSLASweeper(svc, &config.Config{SLASweepSchedule: ""}, zap.NewNop())
	require.NoError(t, disabled.Start())
	disabled.Stop()

	invalid := NewSLASweeper(svc, &config.Config{SLASweepSchedule: "every now and then"}, zap.NewNop())
	assert.Error(t, invalid.Start())
}
