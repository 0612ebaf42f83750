// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	helperAuth "collegefee_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // read the access_token cookie when there is no Bearer header
}

// AuthJWT verifies an HS256 bearer token and hydrates the locals read by helperAuth.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: secret is required")
	}

	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c, o.AllowCookieFallback)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		// user id: id, sub, then user_id
		var uid string
		for _, k := range []string{"id", "sub", "user_id"} {
			if uid = strClaim(claims, k); uid != "" {
				break
			}
		}
		id, err := uuid.Parse(uid)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
		}

		c.Locals(helperAuth.LocClaims, claims)
		c.Locals(helperAuth.LocUserID, id)
		c.Locals(helperAuth.LocRole, strings.ToLower(strClaim(claims, "role")))
		c.Locals(helperAuth.LocDepartment, strClaim(claims, "department"))
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx, cookie bool) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" && cookie {
		if t := strings.TrimSpace(c.Cookies("access_token")); t != "" {
			return t, nil
		}
	}
	if auth == "" {
		return "", errors.New("Unauthorized - No token provided")
	}
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errors.New("Unauthorized - Invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", errors.New("Unauthorized - Empty token")
	}
	return tok, nil
}

func strClaim(m jwt.MapClaims, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
