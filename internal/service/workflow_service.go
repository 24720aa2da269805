package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/assignment"
	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/events"
	"github.com/spec-kit/case-workflow/internal/observability"
	"github.com/spec-kit/case-workflow/internal/repository"
	"github.com/spec-kit/case-workflow/internal/workflow"
	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

// Operation names used for instrumentation.
const (
	OpCreateCase               = "create_case"
	OpEscalate                 = "escalate"
	OpDerive                   = "derive"
	OpRegisterExternalResponse = "register_external_response"
	OpClose                    = "close"
	OpDocument                 = "document"
	OpRecordManualResponse     = "record_manual_response"
)

// WorkflowService is the single entry point for mutating cases. Every
// operation runs in one unit of work with the case row locked, and domain
// events are handed to the dispatcher only after that unit commits.
type WorkflowService struct {
	uow            repository.UnitOfWork
	reader         repository.Stores
	policy         assignment.Policy
	dispatcher     events.Dispatcher
	instrumenter   *observability.Instrumenter
	logger         *zap.Logger
	clock          func() time.Time
	backOfficePool string
	areaDomain     string
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	UnitOfWork         repository.UnitOfWork
	Reader             repository.Stores
	Policy             assignment.Policy
	Dispatcher         events.Dispatcher
	Instrumenter       *observability.Instrumenter
	Logger             *zap.Logger
	Clock              func() time.Time
	BackOfficePool     string
	ExternalAreaDomain string
}

// CreateCaseInput describes a new case and the agent that takes it first.
type CreateCaseInput struct {
	Category    domain.CaseCategory
	Subject     string
	Description string
	CustomerID  string
	MotiveID    string
	AgentID     string
	Channel     string
	Severity    string
	RequestType string
}

// EscalateInput moves a case from an agent to a back-office pool.
type EscalateInput struct {
	CaseID       string
	FromAgentID  string
	TargetPoolID string
	Reason       string
}

// DeriveInput sends an escalated case to an external area.
type DeriveInput struct {
	CaseID           string
	FromBackOfficeID string
	TargetAreaID     string
	Reason           string
	Detail           string
}

// ExternalResponseInput carries the answer of an external area.
type ExternalResponseInput struct {
	CaseID     string
	Response   string
	ReceivedBy string
}

// DocumentInput records problem and solution for the current assignment.
type DocumentInput struct {
	CaseID    string
	HandlerID string
	Problem   string
	Solution  string
	ArticleID *string
}

// ManualResponseInput is a human reply sent to the customer.
type ManualResponseInput struct {
	CaseID   string
	AuthorID string
	Body     string
}

// CaseView is a case with its assignment history and the documentation of
// the current assignment.
type CaseView struct {
	Case          domain.Case
	Active        *domain.Assignment
	History       []domain.Assignment
	Documentation *domain.Documentation
}

// ClosureCheck is the result of evaluating closure preconditions.
type ClosureCheck struct {
	Allowed bool
	Reason  string
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := deps.Policy
	if policy == nil {
		policy = assignment.LeastLoaded
	}
	instrumenter := deps.Instrumenter
	if instrumenter == nil {
		instrumenter = observability.NewInstrumenter(logger, nil)
	}
	return &WorkflowService{
		uow:            deps.UnitOfWork,
		reader:         deps.Reader,
		policy:         policy,
		dispatcher:     deps.Dispatcher,
		instrumenter:   instrumenter,
		logger:         logger,
		clock:          clock,
		backOfficePool: deps.BackOfficePool,
		areaDomain:     deps.ExternalAreaDomain,
	}
}

// CreateCase opens a case of the requested category and assigns it to the
// creating agent.
func (s *WorkflowService) CreateCase(ctx context.Context, actorID string, input CreateCaseInput) (*domain.Case, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	var created *domain.Case
	err := s.run(ctx, OpCreateCase, "", func(ctx context.Context, stores repository.Stores, out *outbox) error {
		agent, err := stores.Handlers.GetByID(ctx, input.AgentID)
		if err != nil {
			return storeErr("handler", err)
		}
		if agent.Kind != domain.HandlerKindAgent {
			return apperrors.NewInvalidPrecondition("cases are opened by agents", map[string]any{
				"handler_id": agent.ID,
				"kind":       agent.Kind,
			})
		}
		if !agent.Active {
			return apperrors.NewInvalidPrecondition("agent is not active", map[string]any{"handler_id": agent.ID})
		}

		now := s.clock()
		c := buildCase(input, now)
		c.ID = uuid.NewString()
		if err := stores.Cases.Create(ctx, c); err != nil {
			return err
		}
		if _, err := stores.Assignments.Open(ctx, c.ID, agent.ID, now); err != nil {
			return err
		}
		if err := stores.Handlers.AdjustLoad(ctx, agent.ID, 1); err != nil {
			return storeErr("handler", err)
		}

		out.add(events.Event{
			Type:    events.EventCaseCreated,
			CaseID:  c.ID,
			Actor:   events.Actor{EmployeeID: actorID},
			Payload: events.CaseCreatedPayload{Category: c.Category, HandlerID: agent.ID},
		})
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Escalate transfers the active assignment from an agent to the
// least-loaded member of a back-office pool and moves the case to ESCALATED.
func (s *WorkflowService) Escalate(ctx context.Context, input EscalateInput) (*domain.Case, error) {
	if input.FromAgentID == "" || strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.NewValidationError("from agent and reason are required", nil)
	}
	pool := input.TargetPoolID
	if pool == "" {
		pool = s.backOfficePool
	}

	var result *domain.Case
	err := s.run(ctx, OpEscalate, input.CaseID, func(ctx context.Context, stores repository.Stores, out *outbox) error {
		c, err := lockCase(ctx, stores, input.CaseID)
		if err != nil {
			return err
		}
		if c.State != domain.CaseStateOpen {
			return apperrors.NewInvalidPrecondition("escalation requires an open case", map[string]any{
				"case_id": c.ID,
				"state":   c.State,
			})
		}
		current, err := requireHolder(ctx, stores, c.ID, input.FromAgentID)
		if err != nil {
			return err
		}

		target, err := assignment.SelectFrom(ctx, stores.Handlers, pool, s.policy, current.HandlerID)
		if err != nil {
			return err
		}

		now := s.clock()
		if err := s.recordEscalationNote(ctx, stores, current, input, pool, now); err != nil {
			return err
		}
		if err := transferAssignment(ctx, stores, current, target.ID, now); err != nil {
			return err
		}
		if err := moveTo(c, domain.CaseStateEscalated, now); err != nil {
			return err
		}
		if err := stores.Cases.Update(ctx, c); err != nil {
			return err
		}

		out.add(events.Event{
			Type:   events.EventCaseEscalated,
			CaseID: c.ID,
			Actor:  events.Actor{EmployeeID: input.FromAgentID},
			Payload: events.CaseEscalatedPayload{
				FromHandlerID: current.HandlerID,
				ToHandlerID:   target.ID,
				PoolID:        pool,
				Reason:        input.Reason,
			},
		})
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Derive sends an escalated case to an external area. The back-office
// handler keeps the assignment while the area works on it.
func (s *WorkflowService) Derive(ctx context.Context, input DeriveInput) (*domain.Case, *domain.ExternalNotification, error) {
	if input.FromBackOfficeID == "" || strings.TrimSpace(input.TargetAreaID) == "" || strings.TrimSpace(input.Reason) == "" {
		return nil, nil, apperrors.NewValidationError("back-office handler, target area and reason are required", nil)
	}

	var (
		result       *domain.Case
		notification *domain.ExternalNotification
	)
	err := s.run(ctx, OpDerive, input.CaseID, func(ctx context.Context, stores repository.Stores, out *outbox) error {
		c, err := lockCase(ctx, stores, input.CaseID)
		if err != nil {
			return err
		}
		if c.State != domain.CaseStateEscalated {
			return rejectTransition(c, domain.CaseStateDerived)
		}
		if _, err := requireHolder(ctx, stores, c.ID, input.FromBackOfficeID); err != nil {
			return err
		}

		now := s.clock()
		n := &domain.ExternalNotification{
			CaseID:             c.ID,
			DestinationArea:    input.TargetAreaID,
			DestinationAddress: s.destinationAddress(input.TargetAreaID),
			Reason:             input.Reason,
			Detail:             input.Detail,
			SentAt:             now,
		}
		if err := stores.Notifications.Save(ctx, n); err != nil {
			return err
		}
		if err := moveTo(c, domain.CaseStateDerived, now); err != nil {
			return err
		}
		if err := stores.Cases.Update(ctx, c); err != nil {
			return err
		}

		out.add(events.Event{
			Type:   events.EventCaseDerived,
			CaseID: c.ID,
			Actor:  events.Actor{EmployeeID: input.FromBackOfficeID},
			Payload: events.CaseDerivedPayload{
				DestinationArea:    n.DestinationArea,
				DestinationAddress: n.DestinationAddress,
				NotificationID:     n.ID,
			},
		})
		result, notification = c, n
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, notification, nil
}

// RegisterExternalResponse stores the external area's answer and returns
// the case to OPEN. The table has no DERIVED to OPEN edge, so the case
// passes through ESCALATED inside the same unit of work.
func (s *WorkflowService) RegisterExternalResponse(ctx context.Context, input ExternalResponseInput) (*domain.Case, error) {
	var result *domain.Case
	err := s.run(ctx, OpRegisterExternalResponse, input.CaseID, func(ctx context.Context, stores repository.Stores, out *outbox) error {
		c, err := lockCase(ctx, stores, input.CaseID)
		if err != nil {
			return err
		}
		if c.State != domain.CaseStateDerived {
			return rejectTransition(c, domain.CaseStateOpen)
		}

		now := s.clock()
		payload := events.CaseReturnedPayload{}
		latest, err := stores.Notifications.LatestForCase(ctx, c.ID)
		if err != nil {
			return err
		}
		if latest != nil {
			if err := stores.Notifications.RecordResponse(ctx, latest.ID, input.Response, now); err != nil {
				return err
			}
			payload.NotificationID = latest.ID
		}

		for _, hop := range []domain.CaseState{domain.CaseStateEscalated, domain.CaseStateOpen} {
			if err := moveTo(c, hop, now); err != nil {
				return err
			}
		}
		if err := stores.Cases.Update(ctx, c); err != nil {
			return err
		}

		out.add(events.Event{
			Type:    events.EventCaseReturned,
			CaseID:  c.ID,
			Actor:   events.Actor{EmployeeID: input.ReceivedBy},
			Payload: payload,
		})
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close resolves a case once its closure preconditions hold. The current
// assignment ends and its handler's load slot is released.
func (s *WorkflowService) Close(ctx context.Context, caseID, byEmployeeID string) (*domain.Case, error) {
	var result *domain.Case
	err := s.run(ctx, OpClose, caseID, func(ctx context.Context, stores repository.Stores, out *outbox) error {
		c, err := lockCase(ctx, stores, caseID)
		if err != nil {
			return err
		}
		if !workflow.IsValidTransition(c.State, domain.CaseStateClosed) {
			return rejectTransition(c, domain.CaseStateClosed)
		}

		check, active, err := evaluateClosure(ctx, stores, c)
		if err != nil {
			return err
		}
		if !check.Allowed {
			return apperrors.NewClosurePreconditionNotMet(check.Reason, map[string]any{"case_id": c.ID})
		}

		now := s.clock()
		if err := stores.Assignments.Close(ctx, active.ID, now); err != nil {
			return storeErr("assignment", err)
		}
		if err := stores.Handlers.AdjustLoad(ctx, active.HandlerID, -1); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := moveTo(c, domain.CaseStateClosed, now); err != nil {
			return err
		}
		if err := stores.Cases.Update(ctx, c); err != nil {
			return err
		}

		out.add(events.Event{
			Type:    events.EventCaseClosed,
			CaseID:  c.ID,
			Actor:   events.Actor{EmployeeID: byEmployeeID},
			Payload: events.CaseClosedPayload{ClosedBy: byEmployeeID, ClosedAt: now},
		})
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CanClose evaluates closure preconditions against committed state.
func (s *WorkflowService) CanClose(ctx context.Context, caseID string) (ClosureCheck, error) {
	c, err := s.reader.Cases.GetByID(ctx, caseID)
	if err != nil {
		return ClosureCheck{}, apperrors.MapError(storeErr("case", err))
	}
	if c.IsClosed() {
		return ClosureCheck{Reason: workflow.ExplainRejection(c.State, domain.CaseStateClosed)}, nil
	}
	check, _, err := evaluateClosure(ctx, s.reader, c)
	if err != nil {
		return ClosureCheck{}, apperrors.MapError(err)
	}
	return check, nil
}

// Document upserts the documentation of the current assignment. Only the
// current handler may write it and it is frozen once the case closes.
func (s *WorkflowService) Document(ctx context.Context, input DocumentInput) (*domain.Documentation, error) {
	if strings.TrimSpace(input.Problem) == "" || strings.TrimSpace(input.Solution) == "" {
		return nil, apperrors.NewValidationError("problem and solution are required", nil)
	}

	var doc *domain.Documentation
	err := s.run(ctx, OpDocument, input.CaseID, func(ctx context.Context, stores repository.Stores, _ *outbox) error {
		c, err := lockCase(ctx, stores, input.CaseID)
		if err != nil {
			return err
		}
		if c.IsClosed() {
			return apperrors.NewInvalidTransition("documentation is frozen once the case is closed", map[string]any{"case_id": c.ID})
		}
		current, err := requireHolder(ctx, stores, c.ID, input.HandlerID)
		if err != nil {
			return err
		}

		now := s.clock()
		d := &domain.Documentation{
			AssignmentID: current.ID,
			CaseID:       c.ID,
			Problem:      strings.TrimSpace(input.Problem),
			Solution:     strings.TrimSpace(input.Solution),
			ArticleID:    input.ArticleID,
			AuthorID:     input.HandlerID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := stores.Documentation.Save(ctx, d); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// RecordManualResponse stores a human reply sent to the customer.
func (s *WorkflowService) RecordManualResponse(ctx context.Context, input ManualResponseInput) (*domain.ManualResponse, error) {
	if input.AuthorID == "" || strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.NewValidationError("author and body are required", nil)
	}

	var reply *domain.ManualResponse
	err := s.run(ctx, OpRecordManualResponse, input.CaseID, func(ctx context.Context, stores repository.Stores, _ *outbox) error {
		c, err := lockCase(ctx, stores, input.CaseID)
		if err != nil {
			return err
		}
		if c.IsClosed() {
			return apperrors.NewInvalidTransition("case is closed", map[string]any{"case_id": c.ID})
		}
		r := &domain.ManualResponse{
			CaseID:   c.ID,
			AuthorID: input.AuthorID,
			Body:     strings.TrimSpace(input.Body),
			SentAt:   s.clock(),
		}
		if err := stores.Replies.Create(ctx, r); err != nil {
			return err
		}
		reply = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// GetCase returns a case with its assignment history.
func (s *WorkflowService) GetCase(ctx context.Context, caseID string) (*CaseView, error) {
	c, err := s.reader.Cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, apperrors.MapError(storeErr("case", err))
	}
	history, err := s.reader.Assignments.ListByCase(ctx, caseID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	view := &CaseView{Case: *c, History: history}
	for i := range history {
		if history[i].Active() {
			active := history[i]
			view.Active = &active
		}
	}
	if view.Active != nil {
		doc, err := s.reader.Documentation.GetForAssignment(ctx, view.Active.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		view.Documentation = doc
	}
	return view, nil
}

// outbox buffers events raised inside a unit of work until it commits.
type outbox struct {
	events []events.Event
}

func (o *outbox) add(e events.Event) {
	o.events = append(o.events, e)
}

func (s *WorkflowService) run(ctx context.Context, op, caseID string, fn func(ctx context.Context, stores repository.Stores, out *outbox) error) error {
	out := &outbox{}
	err := s.instrumenter.Instrument(ctx, op, caseID, func(ctx context.Context) error {
		out.events = nil
		return apperrors.MapError(s.uow.Do(ctx, func(ctx context.Context, stores repository.Stores) error {
			return fn(ctx, stores, out)
		}))
	})
	if err != nil {
		return err
	}
	for _, event := range out.events {
		s.publishEvent(ctx, event)
	}
	return nil
}

func (s *WorkflowService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event not dispatched",
			zap.String("event_type", string(event.Type)),
			zap.String("case_id", event.CaseID),
			zap.Error(err),
		)
	}
}

func (s *WorkflowService) destinationAddress(areaID string) string {
	return strings.ToLower(fmt.Sprintf("%s@%s", strings.TrimSpace(areaID), s.areaDomain))
}

// recordEscalationNote appends the escalation reason to the documentation of
// the assignment being handed over, creating it when the agent wrote none.
func (s *WorkflowService) recordEscalationNote(ctx context.Context, stores repository.Stores, current *domain.Assignment, input EscalateInput, pool string, now time.Time) error {
	doc, err := stores.Documentation.GetForAssignment(ctx, current.ID)
	if err != nil {
		return err
	}
	note := fmt.Sprintf("Escalated to %s: %s", pool, strings.TrimSpace(input.Reason))
	if doc == nil {
		doc = &domain.Documentation{
			AssignmentID: current.ID,
			CaseID:       current.CaseID,
			Problem:      strings.TrimSpace(input.Reason),
			Solution:     note,
			CreatedAt:    now,
		}
	} else {
		doc.Solution = strings.TrimSpace(doc.Solution + "\n\n" + note)
	}
	doc.AuthorID = input.FromAgentID
	doc.UpdatedAt = now
	return stores.Documentation.Save(ctx, doc)
}

func lockCase(ctx context.Context, stores repository.Stores, caseID string) (*domain.Case, error) {
	if caseID == "" {
		return nil, apperrors.NewValidationError("case id is required", nil)
	}
	c, err := stores.Cases.GetForUpdate(ctx, caseID)
	if err != nil {
		return nil, storeErr("case", err)
	}
	return c, nil
}

// requireHolder returns the active assignment, which must belong to
// handlerID.
func requireHolder(ctx context.Context, stores repository.Stores, caseID, handlerID string) (*domain.Assignment, error) {
	current, err := stores.Assignments.GetActive(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFound("active assignment", map[string]any{"case_id": caseID})
	}
	if current.HandlerID != handlerID {
		return nil, apperrors.NewInvalidPrecondition("only the current handler may perform this operation", map[string]any{
			"case_id":         caseID,
			"current_handler": current.HandlerID,
		})
	}
	return current, nil
}

// transferAssignment ends the current assignment and opens one for
// handlerID, moving one unit of load between the two handlers.
func transferAssignment(ctx context.Context, stores repository.Stores, current *domain.Assignment, handlerID string, now time.Time) error {
	if err := stores.Assignments.Close(ctx, current.ID, now); err != nil {
		return storeErr("assignment", err)
	}
	if err := stores.Handlers.AdjustLoad(ctx, current.HandlerID, -1); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := stores.Assignments.Open(ctx, current.CaseID, handlerID, now); err != nil {
		return err
	}
	if err := stores.Handlers.AdjustLoad(ctx, handlerID, 1); err != nil {
		return storeErr("handler", err)
	}
	return nil
}

// evaluateClosure checks, in order, that a manual reply was sent and that
// the current assignment is documented.
func evaluateClosure(ctx context.Context, stores repository.Stores, c *domain.Case) (ClosureCheck, *domain.Assignment, error) {
	replied, err := stores.Replies.HasManualResponse(ctx, c.ID)
	if err != nil {
		return ClosureCheck{}, nil, err
	}
	if !replied {
		return ClosureCheck{Reason: "no manual response has been sent to the customer"}, nil, nil
	}
	active, err := stores.Assignments.GetActive(ctx, c.ID)
	if err != nil {
		return ClosureCheck{}, nil, err
	}
	if active == nil {
		return ClosureCheck{Reason: "case has no current assignment"}, nil, nil
	}
	doc, err := stores.Documentation.GetForAssignment(ctx, active.ID)
	if err != nil {
		return ClosureCheck{}, nil, err
	}
	if doc == nil {
		return ClosureCheck{Reason: "current assignment has no documentation"}, active, nil
	}
	return ClosureCheck{Allowed: true}, active, nil
}

func moveTo(c *domain.Case, target domain.CaseState, now time.Time) error {
	if !workflow.IsValidTransition(c.State, target) {
		return rejectTransition(c, target)
	}
	c.State = target
	c.UpdatedAt = now
	if target == domain.CaseStateClosed {
		closed := now
		c.ClosedAt = &closed
	}
	return nil
}

func rejectTransition(c *domain.Case, target domain.CaseState) error {
	reason := workflow.ExplainRejection(c.State, target)
	if reason == "" {
		reason = fmt.Sprintf("case is %s", c.State)
	}
	return apperrors.NewInvalidTransition(reason, map[string]any{
		"case_id":   c.ID,
		"state":     c.State,
		"requested": target,
		"allowed":   workflow.AllowedTargets(c.State),
	})
}

func storeErr(resource string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrCapacityExceeded):
		return apperrors.NewConflict("handler is at capacity", nil)
	default:
		return err
	}
}

func validateCreate(input CreateCaseInput) error {
	details := map[string]any{}
	if !input.Category.Valid() {
		details["category"] = "unknown category"
	}
	if strings.TrimSpace(input.Subject) == "" {
		details["subject"] = "required"
	}
	if strings.TrimSpace(input.CustomerID) == "" {
		details["customer_id"] = "required"
	}
	if input.AgentID == "" {
		details["agent_id"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid case", details)
	}
	return nil
}

func buildCase(input CreateCaseInput, now time.Time) *domain.Case {
	core := domain.CaseCore{
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		CustomerID:  input.CustomerID,
		MotiveID:    input.MotiveID,
	}
	switch input.Category {
	case domain.CategoryComplaintSoft:
		return domain.NewSoftComplaint(core, domain.ComplaintDetails{Severity: input.Severity}, now)
	case domain.CategoryComplaintFormal:
		return domain.NewFormalComplaint(core, domain.ComplaintDetails{Severity: input.Severity}, now)
	case domain.CategoryRequest:
		return domain.NewRequest(core, domain.RequestDetails{RequestType: input.RequestType}, now)
	default:
		return domain.NewInquiry(core, domain.InquiryDetails{Channel: input.Channel}, now)
	}
}
