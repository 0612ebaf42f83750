// file: internals/helpers/auth/claims.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys hydrated by the JWT middleware.
const (
	LocUserID     = "user_id"
	LocRole       = "role"
	LocDepartment = "department"
	LocClaims     = "jwt_claims"
)

// Caller is the authenticated principal of a request.
type Caller struct {
	UserID     uuid.UUID
	Role       string
	Department string
}

func (c Caller) Is(role string) bool { return strings.EqualFold(c.Role, role) }

func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	switch v := c.Locals(LocUserID).(type) {
	case uuid.UUID:
		if v != uuid.Nil {
			return v, nil
		}
	case string:
		if id, err := uuid.Parse(strings.TrimSpace(v)); err == nil {
			return id, nil
		}
	}
	return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id not found in token")
}

func GetRole(c *fiber.Ctx) string {
	if s, ok := c.Locals(LocRole).(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return ""
}

// CallerFromCtx reads the principal set by AuthJWT.
func CallerFromCtx(c *fiber.Ctx) (Caller, error) {
	uid, err := GetUserIDFromToken(c)
	if err != nil {
		return Caller{}, err
	}
	dept, _ := c.Locals(LocDepartment).(string)
	return Caller{UserID: uid, Role: GetRole(c), Department: strings.TrimSpace(dept)}, nil
}
