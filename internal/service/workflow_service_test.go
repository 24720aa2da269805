package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/events"
	"github.com/spec-kit/case-workflow/internal/repository/memory"
	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

var baseTime = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(string, events.EventHandler, ...events.EventType) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

func (d *recordingDispatcher) last() events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events[len(d.events)-1]
}

type fixture struct {
	svc        *WorkflowService
	store      *memory.Store
	dispatcher *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutHandler(domain.Handler{ID: "agent-1", Name: "Ana", Kind: domain.HandlerKindAgent, PoolID: "agents", Active: true})
	store.PutHandler(domain.Handler{ID: "agent-2", Name: "Ben", Kind: domain.HandlerKindAgent, PoolID: "agents", Active: true})
	store.PutHandler(domain.Handler{ID: "bo-1", Name: "Cleo", Kind: domain.HandlerKindBackOffice, PoolID: "backoffice", Load: 2, Active: true})
	store.PutHandler(domain.Handler{ID: "bo-2", Name: "Dan", Kind: domain.HandlerKindBackOffice, PoolID: "backoffice", Active: true})
	store.PutHandler(domain.Handler{ID: "bo-0", Name: "Eve", Kind: domain.HandlerKindBackOffice, PoolID: "backoffice", Active: false})

	dispatcher := &recordingDispatcher{}
	clock := &stepClock{now: baseTime}
	svc := NewWorkflowService(WorkflowDependencies{
		UnitOfWork:         store,
		Reader:             store.Stores(),
		Dispatcher:         dispatcher,
		Clock:              clock.Now,
		BackOfficePool:     "backoffice",
		ExternalAreaDomain: "Areas.Example.com",
	})
	return &fixture{svc: svc, store: store, dispatcher: dispatcher}
}

func (f *fixture) createInquiry(t *testing.T) *domain.Case {
	t.Helper()
	c, err := f.svc.CreateCase(context.Background(), "agent-1", CreateCaseInput{
		Category:   domain.CategoryInquiry,
		Subject:    "Card blocked",
		CustomerID: "cust-1",
		MotiveID:   "motive-7",
		AgentID:    "agent-1",
		Channel:    "phone",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) load(t *testing.T, handlerID string) int {
	t.Helper()
	h, err := f.store.Stores().Handlers.GetByID(context.Background(), handlerID)
	require.NoError(t, err)
	return h.Load
}

func (f *fixture) escalate(t *testing.T, caseID string) {
	t.Helper()
	_, err := f.svc.Escalate(context.Background(), EscalateInput{CaseID: caseID, FromAgentID: "agent-1", Reason: "needs review"})
	require.NoError(t, err)
}

func (f *fixture) derive(t *testing.T, caseID string) {
	t.Helper()
	_, _, err := f.svc.Derive(context.Background(), DeriveInput{
		CaseID:           caseID,
		FromBackOfficeID: "bo-2",
		TargetAreaID:     "IT-Support",
		Reason:           "needs IT",
		Detail:           "reset token",
	})
	require.NoError(t, err)
}

func activeCount(history []domain.Assignment) int {
	n := 0
	for _, a := range history {
		if a.Active() {
			n++
		}
	}
	return n
}

func TestCaseLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.createInquiry(t)
	assert.Equal(t, domain.CaseStateOpen, c.State)
	assert.Equal(t, 1, f.load(t, "agent-1"))

	escalated, err := f.svc.Escalate(ctx, EscalateInput{CaseID: c.ID, FromAgentID: "agent-1", Reason: "needs review"})
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStateEscalated, escalated.State)

	view, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Active)
	assert.Equal(t, "bo-2", view.Active.HandlerID)
	assert.Len(t, view.History, 2)
	assert.Equal(t, 1, activeCount(view.History))
	assert.Equal(t, 0, f.load(t, "agent-1"))
	assert.Equal(t, 1, f.load(t, "bo-2"))

	escalatedEvent := f.dispatcher.last()
	assert.Equal(t, events.EventCaseEscalated, escalatedEvent.Type)
	assert.Equal(t, c.ID, escalatedEvent.CaseID)
	assert.NotEmpty(t, escalatedEvent.ID)

	derived, notification, err := f.svc.Derive(ctx, DeriveInput{
		CaseID:           c.ID,
		FromBackOfficeID: "bo-2",
		TargetAreaID:     "IT-Support",
		Reason:           "needs IT",
		Detail:           "reset token",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStateDerived, derived.State)
	assert.Equal(t, "IT-Support", notification.DestinationArea)
	assert.Equal(t, "it-support@areas.example.com", notification.DestinationAddress)

	derivedEvent := f.dispatcher.last()
	require.Equal(t, events.EventCaseDerived, derivedEvent.Type)
	payload, ok := derivedEvent.Payload.(events.CaseDerivedPayload)
	require.True(t, ok)
	assert.Equal(t, "it-support@areas.example.com", payload.DestinationAddress)

	latest, err := f.store.Stores().Notifications.LatestForCase(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, notification.ID, latest.ID)

	returned, err := f.svc.RegisterExternalResponse(ctx, ExternalResponseInput{CaseID: c.ID, Response: "token reset", ReceivedBy: "bo-2"})
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStateOpen, returned.State)

	latest, err = f.store.Stores().Notifications.LatestForCase(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, latest.Response)
	assert.Equal(t, "token reset", *latest.Response)

	_, err = f.svc.Close(ctx, c.ID, "bo-2")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeClosurePreconditionNotMet))

	_, err = f.svc.RecordManualResponse(ctx, ManualResponseInput{CaseID: c.ID, AuthorID: "bo-2", Body: "We reset your token."})
	require.NoError(t, err)

	_, err = f.svc.Close(ctx, c.ID, "bo-2")
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Message, "documentation")

	_, err = f.svc.Document(ctx, DocumentInput{CaseID: c.ID, HandlerID: "bo-2", Problem: "token expired", Solution: "IT reset it"})
	require.NoError(t, err)

	closed, err := f.svc.Close(ctx, c.ID, "bo-2")
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStateClosed, closed.State)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, 0, f.load(t, "bo-2"))

	view, err = f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Active)
	assert.Equal(t, 0, activeCount(view.History))

	assert.Equal(t, []events.EventType{
		events.EventCaseCreated,
		events.EventCaseEscalated,
		events.EventCaseDerived,
		events.EventCaseReturned,
		events.EventCaseClosed,
	}, f.dispatcher.types())

	_, err = f.svc.Close(ctx, c.ID, "bo-2")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestEscalateOnDerivedCaseChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)
	f.escalate(t, c.ID)
	f.derive(t, c.ID)

	before, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	eventsBefore := len(f.dispatcher.types())
	loadBefore := f.load(t, "bo-2")

	_, err = f.svc.Escalate(ctx, EscalateInput{CaseID: c.ID, FromAgentID: "bo-2", Reason: "again"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidPrecondition))

	after, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Case.State, after.Case.State)
	assert.Equal(t, before.Active.ID, after.Active.ID)
	assert.Len(t, after.History, len(before.History))
	assert.Equal(t, loadBefore, f.load(t, "bo-2"))
	assert.Len(t, f.dispatcher.types(), eventsBefore)
}

func TestCloseWithoutManualResponseFailsEvenWhenDocumented(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)

	_, err := f.svc.Document(ctx, DocumentInput{CaseID: c.ID, HandlerID: "agent-1", Problem: "p", Solution: "s"})
	require.NoError(t, err)

	_, err = f.svc.Close(ctx, c.ID, "agent-1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeClosurePreconditionNotMet))
	assert.Contains(t, apperrors.ToDomainError(err).Message, "manual response")

	view, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStateOpen, view.Case.State)
	assert.Nil(t, view.Case.ClosedAt)
}

func TestCloseFromOpenWithPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)

	_, err := f.svc.RecordManualResponse(ctx, ManualResponseInput{CaseID: c.ID, AuthorID: "agent-1", Body: "done"})
	require.NoError(t, err)
	_, err = f.svc.Document(ctx, DocumentInput{CaseID: c.ID, HandlerID: "agent-1", Problem: "p", Solution: "s"})
	require.NoError(t, err)

	check, err := f.svc.CanClose(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, check.Allowed)

	closed, err := f.svc.Close(ctx, c.ID, "agent-1")
	require.NoError(t, err)
	assert.True(t, closed.IsClosed())
	assert.Equal(t, 0, f.load(t, "agent-1"))

	check, err = f.svc.CanClose(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Contains(t, check.Reason, "already CLOSED")

	_, err = f.svc.Document(ctx, DocumentInput{CaseID: c.ID, HandlerID: "agent-1", Problem: "p2", Solution: "s2"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	_, err = f.svc.RecordManualResponse(ctx, ManualResponseInput{CaseID: c.ID, AuthorID: "agent-1", Body: "late"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestCanCloseReasons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)

	check, err := f.svc.CanClose(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Contains(t, check.Reason, "manual response")

	_, err = f.svc.RecordManualResponse(ctx, ManualResponseInput{CaseID: c.ID, AuthorID: "agent-1", Body: "hi"})
	require.NoError(t, err)

	check, err = f.svc.CanClose(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Contains(t, check.Reason, "documentation")

	_, err = f.svc.CanClose(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestEscalateWithEmptyPoolFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)

	_, err := f.svc.Escalate(ctx, EscalateInput{CaseID: c.ID, FromAgentID: "agent-1", TargetPoolID: "nobody", Reason: "r"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoHandlerAvailable))

	view, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStateOpen, view.Case.State)
	assert.Equal(t, "agent-1", view.Active.HandlerID)
	assert.Nil(t, view.Documentation)
	assert.Equal(t, 1, f.load(t, "agent-1"))
}

func TestEscalateRequiresCurrentHolder(t *testing.T) {
	f := newFixture(t)
	c := f.createInquiry(t)

	_, err := f.svc.Escalate(context.Background(), EscalateInput{CaseID: c.ID, FromAgentID: "agent-2", Reason: "r"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidPrecondition))
}

func TestEscalateNeverHandsBackToCurrentHolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)
	f.store.PutHandler(domain.Handler{ID: "agent-2", Kind: domain.HandlerKindAgent, PoolID: "agents", Active: false})

	_, err := f.svc.Escalate(ctx, EscalateInput{CaseID: c.ID, FromAgentID: "agent-1", TargetPoolID: "agents", Reason: "second opinion"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoHandlerAvailable))

	view, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStateOpen, view.Case.State)
	assert.Len(t, view.History, 1)
	assert.Equal(t, 1, f.load(t, "agent-1"))
}

func TestEscalateRecordsReasonOnHandedOverAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)

	_, err := f.svc.Document(ctx, DocumentInput{CaseID: c.ID, HandlerID: "agent-1", Problem: "card blocked", Solution: "tried unblock"})
	require.NoError(t, err)
	f.escalate(t, c.ID)

	view, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, view.History, 2)
	assert.Nil(t, view.Documentation)

	doc, err := f.store.Stores().Documentation.GetForAssignment(ctx, view.History[0].ID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "card blocked", doc.Problem)
	assert.Contains(t, doc.Solution, "tried unblock")
	assert.Contains(t, doc.Solution, "Escalated to backoffice: needs review")
}

func TestDeriveAndReturnRequireState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)

	_, _, err := f.svc.Derive(ctx, DeriveInput{CaseID: c.ID, FromBackOfficeID: "agent-1", TargetAreaID: "it", Reason: "r"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	_, err = f.svc.RegisterExternalResponse(ctx, ExternalResponseInput{CaseID: c.ID, Response: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	f.escalate(t, c.ID)
	_, _, err = f.svc.Derive(ctx, DeriveInput{CaseID: c.ID, FromBackOfficeID: "bo-1", TargetAreaID: "it", Reason: "r"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidPrecondition))

	f.derive(t, c.ID)
	_, _, err = f.svc.Derive(ctx, DeriveInput{CaseID: c.ID, FromBackOfficeID: "bo-2", TargetAreaID: "it", Reason: "r"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	assert.Contains(t, err.Error(), "already DERIVED")
}

func TestMissingCaseIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Escalate(ctx, EscalateInput{CaseID: "missing", FromAgentID: "agent-1", Reason: "r"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Close(ctx, "missing", "agent-1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.GetCase(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCreateCaseByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	formal, err := f.svc.CreateCase(ctx, "agent-1", CreateCaseInput{
		Category:   domain.CategoryComplaintFormal,
		Subject:    "Wrong charge",
		CustomerID: "cust-2",
		AgentID:    "agent-1",
		Severity:   "high",
	})
	require.NoError(t, err)
	require.NotNil(t, formal.Details.Complaint)
	require.NotNil(t, formal.Details.Complaint.ResponseDeadline)
	assert.Equal(t, formal.CreatedAt.Add(30*24*time.Hour), *formal.Details.Complaint.ResponseDeadline)
	assert.Equal(t, formal.CreatedAt.Add(60*24*time.Hour), *formal.Details.Complaint.ResolutionDeadline)

	req, err := f.svc.CreateCase(ctx, "agent-1", CreateCaseInput{
		Category:    domain.CategoryRequest,
		Subject:     "New card",
		CustomerID:  "cust-3",
		AgentID:     "agent-1",
		RequestType: "card_replacement",
	})
	require.NoError(t, err)
	require.NotNil(t, req.Details.Request)
	assert.Nil(t, req.Details.Complaint)
	assert.Equal(t, 2, f.load(t, "agent-1"))

	created := f.dispatcher.last()
	assert.Equal(t, events.EventCaseCreated, created.Type)
	assert.Equal(t, events.Actor{EmployeeID: "agent-1"}, created.Actor)
}

func TestCreateCaseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCase(ctx, "agent-1", CreateCaseInput{Category: "OTHER", AgentID: "agent-1"})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
	assert.Contains(t, de.Details, "category")
	assert.Contains(t, de.Details, "subject")

	_, err = f.svc.CreateCase(ctx, "ghost", CreateCaseInput{
		Category:   domain.CategoryInquiry,
		Subject:    "s",
		CustomerID: "c",
		AgentID:    "ghost",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Empty(t, f.dispatcher.types())
}

func TestCreateCaseRequiresAgentHandler(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateCase(context.Background(), "sup-1", CreateCaseInput{
		Category:   domain.CategoryInquiry,
		Subject:    "s",
		CustomerID: "c",
		AgentID:    "bo-2",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidPrecondition))
	assert.Equal(t, 0, f.load(t, "bo-2"))
	assert.Empty(t, f.dispatcher.types())
}

func TestDocumentOnlyByCurrentHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)

	_, err := f.svc.Document(ctx, DocumentInput{CaseID: c.ID, HandlerID: "agent-2", Problem: "p", Solution: "s"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidPrecondition))

	first, err := f.svc.Document(ctx, DocumentInput{CaseID: c.ID, HandlerID: "agent-1", Problem: "p", Solution: "s"})
	require.NoError(t, err)
	second, err := f.svc.Document(ctx, DocumentInput{CaseID: c.ID, HandlerID: "agent-1", Problem: "p2", Solution: "s2"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	view, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Documentation)
	assert.Equal(t, "p2", view.Documentation.Problem)
}

func TestConcurrentEscalationsSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createInquiry(t)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Escalate(ctx, EscalateInput{CaseID: c.ID, FromAgentID: "agent-1", Reason: "busy"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if apperrors.HasCode(err, apperrors.CodeInvalidPrecondition) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, rejected)

	view, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, activeCount(view.History))
	assert.Len(t, view.History, 2)
	assert.Equal(t, 1, f.load(t, "bo-2"))
}
