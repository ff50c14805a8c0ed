package middleware

import (
	"strings"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// TokenParser valida um bearer token e devolve suas claims
type TokenParser interface {
	ParseToken(token string) (*usecases.Claims, error)
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// RequireAuth rejeita requisições sem token válido
func RequireAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return unauthorized(c, "Token de autenticação ausente")
		}
		claims, err := parser.ParseToken(token)
		if err != nil {
			return unauthorized(c, "Token inválido ou expirado")
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// OptionalAuth lets anonymous requests through. A token that is present but
// invalid is still rejected.
func OptionalAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}
		claims, err := parser.ParseToken(token)
		if err != nil {
			return unauthorized(c, "Token inválido ou expirado")
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the authenticated claims, or nil for anonymous requests.
func ClaimsFrom(c *fiber.Ctx) *usecases.Claims {
	claims, _ := c.Locals(claimsKey).(*usecases.Claims)
	return claims
}

// ViewerRole returns the authenticated role, or nil for anonymous requests.
func ViewerRole(c *fiber.Ctx) *entities.ViewerRole {
	claims := ClaimsFrom(c)
	if claims == nil {
		return nil
	}
	role := claims.Role
	return &role
}
