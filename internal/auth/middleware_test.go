package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avilachehab/christmas-gifts/internal/events"
)

type recordingDispatcher struct {
	published []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	r.published = append(r.published, e)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func newGateApp(t *testing.T, validator *TokenValidator, dispatcher events.Dispatcher) *fiber.App {
	t.Helper()
	gate := NewAuthMiddleware(validator, dispatcher, nil)

	app := fiber.New()
	app.Get("/protected", gate.Handle, func(c *fiber.Ctx) error {
		id, ok := IdentityFromCtx(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		ctxID, ok := IdentityFromContext(c.UserContext())
		if !ok || ctxID != id {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(id.Subject)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware_AttachesIdentity(t *testing.T) {
	issuer, validator := newPair(t)
	issued, err := issuer.Issue("testuser")
	require.NoError(t, err)

	status, body := doGet(t, newGateApp(t, validator, nil), "Bearer "+issued.Token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "testuser", body)
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	issuer, validator := newPair(t)
	issued, err := issuer.Issue("testuser")
	require.NoError(t, err)

	status, _ := doGet(t, newGateApp(t, validator, nil), "bearer "+issued.Token)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthMiddleware_RejectsWithEmptyBody(t *testing.T) {
	issuer, validator := newPair(t)
	issued, err := issuer.Issue("testuser")
	require.NoError(t, err)

	foreign, err := NewTokenIssuer(mustKey(t, differentSecret), time.Hour)
	require.NoError(t, err)
	forged, err := foreign.Issue("testuser")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		reason ErrorKind
	}{
		{"no header", "", KindMissingToken},
		{"basic scheme", "Basic dGVzdHVzZXI6dGVzdHBhc3M=", KindMissingToken},
		{"token without scheme", issued.Token, KindMissingToken},
		{"empty bearer", "Bearer ", KindMissingToken},
		{"malformed", "Bearer abc.def", KindMalformedToken},
		{"forged", "Bearer " + forged.Token, KindSignatureMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dispatcher := &recordingDispatcher{}
			status, body := doGet(t, newGateApp(t, validator, dispatcher), tc.header)

			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Empty(t, body)
			require.Len(t, dispatcher.published, 1)
			assert.Equal(t, events.EventTokenRejected, dispatcher.published[0].Type)
			assert.Equal(t, string(tc.reason), dispatcher.published[0].Reason)
			assert.Equal(t, "/protected", dispatcher.published[0].Path)
		})
	}
}

func TestAuthMiddleware_RejectsExpired(t *testing.T) {
	key := mustKey(t, testSecret)
	past, err := NewTokenIssuer(key, time.Hour, WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	require.NoError(t, err)
	validator, err := NewTokenValidator(key)
	require.NoError(t, err)

	issued, err := past.Issue("testuser")
	require.NoError(t, err)

	dispatcher := &recordingDispatcher{}
	status, body := doGet(t, newGateApp(t, validator, dispatcher), "Bearer "+issued.Token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Empty(t, body)
	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, string(KindExpiredToken), dispatcher.published[0].Reason)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc  "))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("Token abc"))
	assert.Equal(t, "", bearerToken(""))
}
