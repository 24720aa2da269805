package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/case-workflow/internal/api/dto"
	"github.com/spec-kit/case-workflow/internal/auth"
	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/service"
	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

// CasesHandler exposes the case workflow operations.
type CasesHandler struct {
	service *service.WorkflowService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(workflowService *service.WorkflowService) *CasesHandler {
	return &CasesHandler{service: workflowService}
}

// CreateCase POST /cases.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agentID := principal.EmployeeID
	if req.AgentID != "" && principal.Role == domain.RoleSupervisor {
		agentID = req.AgentID
	}

	created, err := h.service.CreateCase(c.UserContext(), principal.EmployeeID, service.CreateCaseInput{
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
		CustomerID:  req.CustomerID,
		MotiveID:    req.MotiveID,
		AgentID:     agentID,
		Channel:     req.Channel,
		Severity:    req.Severity,
		RequestType: req.RequestType,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": caseSummary(created)})
}

// GetCase GET /cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	view, err := h.service.GetCase(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseDetail(view)})
}

// Escalate POST /cases/:id/escalate.
func (h *CasesHandler) Escalate(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	escalated, err := h.service.Escalate(c.UserContext(), service.EscalateInput{
		CaseID:       c.Params("id"),
		FromAgentID:  principal.EmployeeID,
		TargetPoolID: req.PoolID,
		Reason:       req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummary(escalated)})
}

// Derive POST /cases/:id/derive.
func (h *CasesHandler) Derive(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.DeriveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	derived, notification, err := h.service.Derive(c.UserContext(), service.DeriveInput{
		CaseID:           c.Params("id"),
		FromBackOfficeID: principal.EmployeeID,
		TargetAreaID:     req.AreaID,
		Reason:           req.Reason,
		Detail:           req.Detail,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DeriveResponse{
		Case:         caseSummary(derived),
		Notification: notificationResponse(notification),
	}})
}

// RegisterExternalResponse POST /cases/:id/external-response.
func (h *CasesHandler) RegisterExternalResponse(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ExternalResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	returned, err := h.service.RegisterExternalResponse(c.UserContext(), service.ExternalResponseInput{
		CaseID:     c.Params("id"),
		Response:   req.Response,
		ReceivedBy: principal.EmployeeID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummary(returned)})
}

// Close POST /cases/:id/close.
func (h *CasesHandler) Close(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	closed, err := h.service.Close(c.UserContext(), c.Params("id"), principal.EmployeeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummary(closed)})
}

// ClosureCheck GET /cases/:id/closure-check.
func (h *CasesHandler) ClosureCheck(c *fiber.Ctx) error {
	check, err := h.service.CanClose(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ClosureCheckResponse{Allowed: check.Allowed, Reason: check.Reason}})
}

// Document PUT /cases/:id/documentation.
func (h *CasesHandler) Document(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.DocumentationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	doc, err := h.service.Document(c.UserContext(), service.DocumentInput{
		CaseID:    c.Params("id"),
		HandlerID: principal.EmployeeID,
		Problem:   req.Problem,
		Solution:  req.Solution,
		ArticleID: req.ArticleID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentationResponse(doc)})
}

// AddManualResponse POST /cases/:id/replies.
func (h *CasesHandler) AddManualResponse(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ManualResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reply, err := h.service.RecordManualResponse(c.UserContext(), service.ManualResponseInput{
		CaseID:   c.Params("id"),
		AuthorID: principal.EmployeeID,
		Body:     req.Body,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ManualResponseResponse{
		ID:       reply.ID,
		AuthorID: reply.AuthorID,
		Body:     reply.Body,
		SentAt:   reply.SentAt,
	}})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.EmployeeID == "" {
		return nil, apperrors.NewUnauthorized("employee required")
	}
	return principal, nil
}

func caseSummary(c *domain.Case) dto.CaseSummary {
	return dto.CaseSummary{
		ID:          c.ID,
		Category:    c.Category,
		State:       c.State,
		Subject:     c.Subject,
		Description: c.Description,
		CustomerID:  c.CustomerID,
		MotiveID:    c.MotiveID,
		Details:     c.Details,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		ClosedAt:    c.ClosedAt,
	}
}

func caseDetail(view *service.CaseView) dto.CaseDetailResponse {
	history := make([]dto.AssignmentResponse, 0, len(view.History))
	for i := range view.History {
		history = append(history, assignmentResponse(&view.History[i]))
	}
	resp := dto.CaseDetailResponse{
		CaseSummary: caseSummary(&view.Case),
		History:     history,
	}
	if view.Active != nil {
		active := assignmentResponse(view.Active)
		resp.Active = &active
	}
	if view.Documentation != nil {
		doc := documentationResponse(view.Documentation)
		resp.Documentation = &doc
	}
	return resp
}

func assignmentResponse(a *domain.Assignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:        a.ID,
		HandlerID: a.HandlerID,
		StartedAt: a.StartedAt,
		EndedAt:   a.EndedAt,
	}
}

func documentationResponse(d *domain.Documentation) dto.DocumentationResponse {
	return dto.DocumentationResponse{
		ID:           d.ID,
		AssignmentID: d.AssignmentID,
		Problem:      d.Problem,
		Solution:     d.Solution,
		ArticleID:    d.ArticleID,
		AuthorID:     d.AuthorID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func notificationResponse(n *domain.ExternalNotification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:                 n.ID,
		DestinationArea:    n.DestinationArea,
		DestinationAddress: n.DestinationAddress,
		Reason:             n.Reason,
		Detail:             n.Detail,
		SentAt:             n.SentAt,
	}
}
