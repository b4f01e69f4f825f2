package jwt

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(secret, issuer string) *fiber.App {
	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(secret, issuer), func(c *fiber.Ctx) error {
		name, _ := c.Locals(LocalName).(string)
		return c.SendString(c.Locals(LocalSubject).(string) + "|" + name)
	})
	return app
}

func call(t *testing.T, app *fiber.App, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestMiddleware(t *testing.T) {
	gen := NewGenerator("s3cret", "brand-review", time.Hour)
	token, err := gen.Generate("reviewer-1", "Jordan")
	require.NoError(t, err)

	app := newApp("s3cret", "brand-review")

	status, body := call(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "reviewer-1|Jordan", body)

	status, _ = call(t, app, token)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, newApp("other", "brand-review"), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, newApp("s3cret", "someone-else"), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMiddleware_Expired(t *testing.T) {
	token, err := NewGenerator("s3cret", "", -time.Minute).Generate("r", "")
	require.NoError(t, err)

	status, _ := call(t, newApp("s3cret", ""), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGenerate_RequiresSubject(t *testing.T) {
	_, err := NewGenerator("s", "i", time.Hour).Generate("", "x")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
}
