package funnel

import (
	"context"
	"testing"
	"time"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/features/filter"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/logger"
	"go-crm-funnel/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type auditCall struct {
	action   common_models.AuditAction
	module   string
	recordID string
	changes  map[string]common_models.Change
}

type mockAudit struct {
	calls []auditCall
}

func (m *mockAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	m.calls = append(m.calls, auditCall{action, module, recordID, changes})
	return nil
}

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*FunnelServiceImpl, *mockAudit) {
	t.Helper()
	audit := &mockAudit{}
	return &FunnelServiceImpl{
		Engine: defaultEngine(t),
		Repo:   NewMemoryFunnelRepository(),
		Audit:  audit,
		Logger: zap.NewNop(),
		Now:    func() time.Time { return testNow },
	}, audit
}

func intPtr(v int) *int {
	return &v
}

func versionPtr(v int64) *int64 {
	return &v
}

func TestCreateRecord(t *testing.T) {
	svc, audit := newTestService(t)

	view, err := svc.CreateRecord(context.Background(), FunnelDeal, CreateRecordRequest{Name: "  Acme renewal ", Amount: 1200})
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "Acme renewal", view.Name)
	assert.Equal(t, StageNew, view.StageID)
	assert.Equal(t, 10, view.Probability)
	assert.Equal(t, int64(1), view.Version)
	assert.Equal(t, 25, view.Progress)

	require.Len(t, audit.calls, 1)
	assert.Equal(t, common_models.AuditActionCreate, audit.calls[0].action)
	assert.Equal(t, "deals", audit.calls[0].module)

	_, err = svc.CreateRecord(context.Background(), FunnelDeal, CreateRecordRequest{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	_, err = svc.CreateRecord(context.Background(), FunnelDeal, CreateRecordRequest{Name: "x", Amount: -1})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	_, err = svc.CreateRecord(context.Background(), "X", CreateRecordRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrUnknownFunnelType)
}

func TestChangeStage(t *testing.T) {
	svc, audit := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateRecord(ctx, FunnelDeal, CreateRecordRequest{Name: "Acme"})
	require.NoError(t, err)

	moved, err := svc.ChangeStage(ctx, FunnelDeal, created.ID, StageChange{StageID: StageNegotiation})
	require.NoError(t, err)
	assert.Equal(t, StageNegotiation, moved.StageID)
	assert.Equal(t, 75, moved.Probability)
	assert.Equal(t, int64(2), moved.Version)

	last := audit.calls[len(audit.calls)-1]
	assert.Equal(t, common_models.AuditActionStageChange, last.action)
	assert.Equal(t, common_models.Change{Old: StageNew, New: StageNegotiation}, last.changes["stage_id"])
	assert.NotContains(t, last.changes, "regression")

	back, err := svc.ChangeStage(ctx, FunnelDeal, created.ID, StageChange{StageID: StageContacted, ExpectedVersion: versionPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), back.Version)
	last = audit.calls[len(audit.calls)-1]
	assert.Equal(t, common_models.Change{Old: false, New: true}, last.changes["regression"])

	stored, err := svc.GetRecord(ctx, FunnelDeal, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StageContacted, stored.StageID)
}

func TestChangeStage_Errors(t *testing.T) {
	svc, audit := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateRecord(ctx, FunnelDeal, CreateRecordRequest{Name: "Acme"})
	require.NoError(t, err)
	calls := len(audit.calls)

	_, err = svc.ChangeStage(ctx, FunnelDeal, created.ID, StageChange{StageID: StageQualified})
	var stageErr *InvalidStageError
	assert.ErrorAs(t, err, &stageErr)

	_, err = svc.ChangeStage(ctx, FunnelDeal, created.ID, StageChange{StageID: StageWon, Probability: intPtr(80)})
	assert.ErrorIs(t, err, ErrInvalidProbability)

	_, err = svc.ChangeStage(ctx, FunnelDeal, created.ID, StageChange{StageID: StageProposal, ExpectedVersion: versionPtr(7)})
	assert.ErrorIs(t, err, common_models.ErrVersionConflict)

	_, err = svc.ChangeStage(ctx, FunnelDeal, "missing", StageChange{StageID: StageProposal})
	assert.ErrorIs(t, err, common_models.ErrNotFound)

	_, err = svc.ChangeStage(ctx, FunnelLead, created.ID, StageChange{StageID: StageNew})
	assert.ErrorIs(t, err, common_models.ErrNotFound, "deals are not reachable as leads")

	stored, err := svc.GetRecord(ctx, FunnelDeal, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StageNew, stored.StageID, "failed changes leave the record alone")
	assert.Equal(t, int64(1), stored.Version)
	assert.Len(t, audit.calls, calls)
}

func TestChangeStage_NoOp(t *testing.T) {
	svc, audit := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateRecord(ctx, FunnelLead, CreateRecordRequest{Name: "Jane"})
	require.NoError(t, err)
	calls := len(audit.calls)

	same, err := svc.ChangeStage(ctx, FunnelLead, created.ID, StageChange{StageID: StageNew})
	require.NoError(t, err)
	assert.Equal(t, int64(1), same.Version)
	assert.Len(t, audit.calls, calls)

	tuned, err := svc.ChangeStage(ctx, FunnelLead, created.ID, StageChange{StageID: StageNew, Probability: intPtr(15)})
	require.NoError(t, err)
	assert.Equal(t, 15, tuned.Probability)
	assert.Equal(t, int64(2), tuned.Version)
	last := audit.calls[len(audit.calls)-1]
	assert.Equal(t, common_models.Change{Old: 10, New: 15}, last.changes["probability"])
	assert.NotContains(t, last.changes, "stage_id")
}

func TestMemoryRepository_StaleUpdate(t *testing.T) {
	repo := NewMemoryFunnelRepository()
	ctx := context.Background()
	rec := FunnelRecord{ID: "d1", FunnelType: FunnelDeal, StageID: StageNew, Version: 1}
	require.NoError(t, repo.Create(ctx, &rec))
	assert.ErrorIs(t, repo.Create(ctx, &rec), common_models.ErrVersionConflict)

	first := rec
	first.StageID = StageProposal
	require.NoError(t, repo.Update(ctx, &first, 1))
	assert.Equal(t, int64(2), first.Version)

	second := rec
	second.StageID = StageLost
	assert.ErrorIs(t, repo.Update(ctx, &second, 1), common_models.ErrVersionConflict)

	stored, err := repo.FindByID(ctx, FunnelDeal, "d1")
	require.NoError(t, err)
	assert.Equal(t, StageProposal, stored.StageID)

	missing := FunnelRecord{ID: "nope", FunnelType: FunnelDeal}
	assert.ErrorIs(t, repo.Update(ctx, &missing, 1), common_models.ErrNotFound)
}

func TestListRecords(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	june := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	may := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	for _, req := range []CreateRecordRequest{
		{Name: "Acme", Company: "Acme Corp", OwnerID: "u1", ExpectedCloseDate: &june},
		{Name: "Globex", Company: "Globex", OwnerID: "u2", ExpectedCloseDate: &may},
		{Name: "Initech", Company: "ACME subsidiary", OwnerID: "u2"},
	} {
		_, err := svc.CreateRecord(ctx, FunnelDeal, req)
		require.NoError(t, err)
	}
	_, err := svc.CreateRecord(ctx, FunnelLead, CreateRecordRequest{Name: "Acme lead"})
	require.NoError(t, err)

	names := func(views []RecordView) []string {
		out := []string{}
		for _, v := range views {
			out = append(out, v.Name)
		}
		return out
	}

	all, err := svc.ListRecords(ctx, FunnelDeal, filter.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, names(all))
	assert.True(t, all[1].Overdue, "May close date is before testNow")

	text, err := svc.ListRecords(ctx, FunnelDeal, filter.NewCriteria("acme", nil, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Initech"}, names(text))

	owner, err := svc.ListRecords(ctx, FunnelDeal, filter.NewCriteria("acme", map[string][]string{FacetOwner: {"u2"}}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"Initech"}, names(owner))

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	dated, err := svc.ListRecords(ctx, FunnelDeal, filter.NewCriteria("", nil, &filter.DateRange{Start: &start}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, names(dated))

	denied, err := svc.ListRecords(ctx, FunnelDeal, filter.Criteria{}.WithRoleScope(visibility.DenyAll))
	require.NoError(t, err)
	assert.Empty(t, denied)

	_, err = svc.ListRecords(ctx, "X", filter.Criteria{})
	assert.ErrorIs(t, err, ErrUnknownFunnelType)
}

func TestSingleRecordPathsHonorScope(t *testing.T) {
	svc, audit := newTestService(t)

	mine, err := svc.CreateRecord(context.Background(), FunnelLead, CreateRecordRequest{Name: "Mine", OwnerID: "u1"})
	require.NoError(t, err)
	theirs, err := svc.CreateRecord(context.Background(), FunnelLead, CreateRecordRequest{Name: "Theirs", OwnerID: "u2"})
	require.NoError(t, err)

	ownOnly := visibility.ContextWithScope(context.Background(), func(r any) bool {
		rec, ok := r.(FunnelRecord)
		return ok && rec.OwnerID == "u1"
	})

	got, err := svc.GetRecord(ownOnly, FunnelLead, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Name)

	_, err = svc.GetRecord(ownOnly, FunnelLead, theirs.ID)
	assert.ErrorIs(t, err, common_models.ErrNotFound)

	audit.calls = nil
	_, err = svc.ChangeStage(ownOnly, FunnelLead, theirs.ID, StageChange{StageID: StageContacted})
	assert.ErrorIs(t, err, common_models.ErrNotFound)
	assert.Empty(t, audit.calls)

	untouched, err := svc.GetRecord(context.Background(), FunnelLead, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, StageNew, untouched.StageID)

	denied := visibility.ContextWithScope(context.Background(), visibility.DenyAll)
	_, err = svc.GetRecord(denied, FunnelLead, mine.ID)
	assert.ErrorIs(t, err, common_models.ErrNotFound)
}

func TestChangeStageLogsRequestAndActor(t *testing.T) {
	svc, _ := newTestService(t)
	core, logs := observer.New(zapcore.InfoLevel)
	svc.Logger = zap.New(core)

	created, err := svc.CreateRecord(context.Background(), FunnelLead, CreateRecordRequest{Name: "Traced"})
	require.NoError(t, err)

	ctx := utils.ContextWithClaims(logger.ContextWithRequestID(context.Background(), "req-9"), &utils.UserClaims{UserID: "rep-3", Role: "SALE"})
	_, err = svc.ChangeStage(ctx, FunnelLead, created.ID, StageChange{StageID: StageContacted})
	require.NoError(t, err)

	entries := logs.FilterMessage("Stage changed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "rep-3", fields["actor_id"])
	assert.Equal(t, StageContacted, fields["to"])
}
