package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/case-workflow/internal/api/dto"
	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/service"
	"github.com/spec-kit/case-workflow/internal/sla"
	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

// SLAHandler serves compliance reports.
type SLAHandler struct {
	service *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// Compliance GET /sla/compliance?category=&from=&to=&mode=.
// from and to accept RFC3339 timestamps or YYYY-MM-DD dates.
func (h *SLAHandler) Compliance(c *fiber.Ctx) error {
	from, okFrom := parseTime(c.Query("from"))
	to, okTo := parseTime(c.Query("to"))
	if !okFrom || !okTo {
		return apperrors.NewValidationError("from and to must be RFC3339 timestamps or dates", nil)
	}
	report, err := h.service.Compliance(c.UserContext(), service.ComplianceQuery{
		Category: domain.CaseCategory(c.Query("category")),
		From:     from,
		To:       to,
		Mode:     sla.Mode(c.Query("mode")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ComplianceResponse{
		Category:         report.Category,
		Mode:             string(report.Mode),
		ThresholdMinutes: report.ThresholdMinutes,
		Compliance:       report.Compliance,
		Samples:          report.Samples,
		From:             from,
		To:               to,
	}})
}

func parseTime(val string) (time.Time, bool) {
	if val == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
