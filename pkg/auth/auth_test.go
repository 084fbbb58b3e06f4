package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator("test-secret", "glance")
	require.NoError(t, err)
	return v
}

func TestIssueAndValidate(t *testing.T) {
	v := newValidator(t)
	token, err := v.Issue(Viewer{UserID: "ruben", StoreID: "vitamax", Roles: []string{"analyst"}, Locale: "FR"}, time.Hour)
	require.NoError(t, err)

	viewer, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ruben", viewer.UserID)
	assert.Equal(t, "vitamax", viewer.StoreID)
	assert.Equal(t, []string{"analyst"}, viewer.Roles)
	assert.Equal(t, "fr", viewer.Locale)
}

func TestValidateDefaultsLocale(t *testing.T) {
	v := newValidator(t)
	token, err := v.Issue(Viewer{UserID: "ruben", StoreID: "vitamax"}, time.Hour)
	require.NoError(t, err)
	viewer, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, DefaultLocale, viewer.Locale)
}

func TestValidateRejects(t *testing.T) {
	v := newValidator(t)

	expired, err := v.Issue(Viewer{UserID: "ruben", StoreID: "vitamax"}, -time.Minute)
	require.NoError(t, err)
	_, err = v.Validate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noStore, err := v.Issue(Viewer{UserID: "ruben"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Validate(noStore)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewValidator("other-secret", "glance")
	require.NoError(t, err)
	foreign, err := other.Issue(Viewer{UserID: "ruben", StoreID: "vitamax"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Validate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{StoreID: "vitamax"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewValidatorRequiresSecret(t *testing.T) {
	_, err := NewValidator("", "")
	assert.Error(t, err)
}

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	handler := func(c *fiber.Ctx) error {
		user, _ := c.Locals(LocalUserID).(string)
		tenant, _ := c.Locals(LocalTenantID).(string)
		locale, _ := c.Locals(LocalLocale).(string)
		return c.SendString(user + "|" + tenant + "|" + locale)
	}
	app.Get("/dashboard/_layout", handler)
	app.Post("/api/chat", handler)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestMiddlewareSetsViewerLocals(t *testing.T) {
	v := newValidator(t)
	app := newApp(Config{Validator: v})
	token, err := v.Issue(Viewer{UserID: "ruben", StoreID: "vitamax", Locale: "fr"}, time.Hour)
	require.NoError(t, err)

	status, body := send(t, app, http.MethodGet, "/dashboard/_layout", token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ruben|vitamax|fr", body)

	status, _ = send(t, app, http.MethodGet, "/dashboard/_layout", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = send(t, app, http.MethodGet, "/dashboard/_layout", "garbage")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMiddlewarePublicPrefixes(t *testing.T) {
	app := newApp(Config{PublicPrefixes: []string{"/api"}})
	status, body := send(t, app, http.MethodPost, "/api/chat", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "||", body)

	status, _ = send(t, app, http.MethodGet, "/dashboard/_layout", "")
	assert.Equal(t, http.StatusUnauthorized, status, "no validator fails closed")
}

func TestMiddlewarePublicPrefixesKeepOptionalViewer(t *testing.T) {
	v := newValidator(t)
	app := newApp(Config{Validator: v, PublicPrefixes: []string{"/api/chat"}})
	token, err := v.Issue(Viewer{UserID: "ana", StoreID: "extralinens"}, time.Hour)
	require.NoError(t, err)

	status, body := send(t, app, http.MethodPost, "/api/chat", token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ana|extralinens|en", body)

	status, body = send(t, app, http.MethodPost, "/api/chat", "garbage")
	assert.Equal(t, http.StatusOK, status, "bad tokens are ignored on public routes")
	assert.Equal(t, "||", body)
}

func TestMiddlewareDevBypass(t *testing.T) {
	app := newApp(Config{DevBypass: true})
	status, body := send(t, app, http.MethodGet, "/dashboard/_layout", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "demo|retailjet|en", body)
}

func TestIsPublic(t *testing.T) {
	assert.True(t, isPublic("/api", []string{"/api"}))
	assert.True(t, isPublic("/api/chat", []string{"/api/"}))
	assert.False(t, isPublic("/apix", []string{"/api"}))
	assert.False(t, isPublic("/api", []string{""}))
}
