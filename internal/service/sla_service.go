package service

import (
	"context"
	"time"

	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/repository"
	"github.com/spec-kit/case-workflow/internal/sla"
	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

// SLAService answers compliance queries over resolved cases or daily KPI
// snapshots.
type SLAService struct {
	cases      repository.CaseRepository
	stats      repository.StatsRepository
	calculator *sla.Calculator
}

// SLADependencies bundles collaborators for the SLA service.
type SLADependencies struct {
	CaseRepo   repository.CaseRepository
	StatsRepo  repository.StatsRepository
	Calculator *sla.Calculator
}

// ComplianceQuery selects the cases measured. The window is [From, To).
type ComplianceQuery struct {
	Category domain.CaseCategory
	From     time.Time
	To       time.Time
	Mode     sla.Mode
}

// ComplianceReport is the computed compliance for one category and window.
type ComplianceReport struct {
	Category         domain.CaseCategory
	ThresholdMinutes int
	Mode             sla.Mode
	Compliance       float64
	Samples          int
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	return &SLAService{
		cases:      deps.CaseRepo,
		stats:      deps.StatsRepo,
		calculator: deps.Calculator,
	}
}

// Compliance computes the share of cases resolved within the category
// threshold. An empty window yields 0.
func (s *SLAService) Compliance(ctx context.Context, q ComplianceQuery) (*ComplianceReport, error) {
	if q.Mode == "" {
		q.Mode = sla.ModeExact
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	key := string(q.Category)
	report := &ComplianceReport{
		Category:         q.Category,
		ThresholdMinutes: s.calculator.Threshold(key),
		Mode:             q.Mode,
	}

	switch q.Mode {
	case sla.ModeApproximate:
		samples, err := s.stats.ListDailyAverages(ctx, q.Category, q.From, q.To)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		report.Samples = len(samples)
		report.Compliance = s.calculator.Approximate(key, samples)
	default:
		resolved, err := s.cases.ListResolved(ctx, q.Category, q.From, q.To)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		report.Samples = len(resolved)
		report.Compliance = s.calculator.Exact(key, resolved)
	}
	return report, nil
}

func validateQuery(q ComplianceQuery) error {
	details := map[string]any{}
	if !q.Category.Valid() {
		details["category"] = "unknown category"
	}
	if q.Mode != sla.ModeExact && q.Mode != sla.ModeApproximate {
		details["mode"] = "must be exact or approximate"
	}
	if q.From.IsZero() || q.To.IsZero() || !q.From.Before(q.To) {
		details["window"] = "from must be before to"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid compliance query", details)
	}
	return nil
}
