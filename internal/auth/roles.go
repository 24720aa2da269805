package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/case-workflow/internal/domain"
	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

// RequireRole ensures the principal has one of the allowed roles.
// Supervisors pass every check.
func RequireRole(allowed ...domain.EmployeeRole) fiber.Handler {
	allowedSet := make(map[domain.EmployeeRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role == domain.RoleSupervisor || len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return RequireRole()
}
