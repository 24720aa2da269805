package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/case-workflow/internal/api/dto"
	"github.com/spec-kit/case-workflow/internal/assignment"
	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/repository"
	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

// PoolsHandler lets supervisors inspect handler pools.
type PoolsHandler struct {
	handlers repository.HandlerRepository
	selector *assignment.Selector
	policy   assignment.Policy
}

// NewPoolsHandler constructs handler.
func NewPoolsHandler(handlers repository.HandlerRepository, policy assignment.Policy) *PoolsHandler {
	return &PoolsHandler{
		handlers: handlers,
		selector: assignment.NewSelector(handlers),
		policy:   policy,
	}
}

// ListMembers GET /pools/:id/handlers.
func (h *PoolsHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.handlers.ListPool(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.HandlerResponse, 0, len(members))
	for i := range members {
		items = append(items, handlerResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Candidate GET /pools/:id/candidate previews who the next escalation into
// the pool would go to. Nothing is reserved.
func (h *PoolsHandler) Candidate(c *fiber.Ctx) error {
	chosen, err := h.selector.Select(c.UserContext(), c.Params("id"), h.policy)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": handlerResponse(&chosen)})
}

func handlerResponse(h *domain.Handler) dto.HandlerResponse {
	return dto.HandlerResponse{
		ID:       h.ID,
		Name:     h.Name,
		Kind:     h.Kind,
		PoolID:   h.PoolID,
		Load:     h.Load,
		Capacity: h.Capacity,
	}
}
