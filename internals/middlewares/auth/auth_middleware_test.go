package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helperAuth "collegefee_backend/internals/helpers/auth"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func newApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Use(AuthJWT(AuthJWTOpts{Secret: secret, AllowCookieFallback: true}))
	if len(roles) > 0 {
		app.Use(OnlyRoles("", roles...))
	}
	app.Get("/me", func(c *fiber.Ctx) error {
		caller, err := helperAuth.CallerFromCtx(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": caller.UserID, "role": caller.Role, "department": caller.Department})
	})
	return app
}

func call(t *testing.T, app *fiber.App, header string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	out := map[string]string{}
	if res.StatusCode == fiber.StatusOK {
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return res.StatusCode, out
}

func TestAuthJWTHydratesCaller(t *testing.T) {
	id := uuid.New()
	tok := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": id.String(), "role": "HOD", "department": "CSE",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	status, body := call(t, newApp(), "Bearer "+tok)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, id.String(), body["user_id"])
	assert.Equal(t, "hod", body["role"])
	assert.Equal(t, "CSE", body["department"])
}

func TestAuthJWTRejects(t *testing.T) {
	id := uuid.New().String()
	app := newApp()
	live := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Token abc",
		"wrong secret": "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": id, "exp": live}),
		"expired": "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret),
			jwt.MapClaims{"sub": id, "exp": time.Now().Add(-time.Hour).Unix()}),
		"no subject": "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"role": "admin", "exp": live}),
		"alg none": "Bearer " + sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType,
			jwt.MapClaims{"sub": id, "exp": live}),
	}
	for name, header := range cases {
		status, _ := call(t, app, header)
		assert.Equal(t, fiber.StatusUnauthorized, status, name)
	}
}

func TestOnlyRoles(t *testing.T) {
	app := newApp("admin")
	admin := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": uuid.NewString(), "role": "admin"})
	student := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": uuid.NewString(), "role": "student"})
	roleless := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": uuid.NewString()})

	status, _ := call(t, app, "Bearer "+admin)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, app, "Bearer "+student)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = call(t, app, "Bearer "+roleless)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
