package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, "bookhub")
	require.NoError(t, err)
	return ts
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", "bookhub")
	assert.Error(t, err)
}

func TestGenerateValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	in := Identity{ID: "github|42", Email: "dev@example.com", Name: "Dev"}

	token, err := ts.Generate(in, time.Minute)
	require.NoError(t, err)

	got, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	good, err := ts.Generate(Identity{ID: "u"}, time.Minute)
	require.NoError(t, err)

	otherIssuer, err := NewTokenService(testSecret, "someone-else")
	require.NoError(t, err)
	foreign, err := otherIssuer.Generate(Identity{ID: "u"}, time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewTokenService("another-secret-of-16+", "bookhub")
	require.NoError(t, err)
	forged, err := otherSecret.Generate(Identity{ID: "u"}, time.Minute)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u", Issuer: "bookhub",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := ts.Generate(Identity{}, time.Minute)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "u", Issuer: "bookhub", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.jwt", ErrInvalidToken},
		{"tampered", good + "x", ErrInvalidToken},
		{"issuer", foreign, ErrInvalidToken},
		{"secret", forged, ErrInvalidToken},
		{"no expiry", noExpiry, ErrInvalidToken},
		{"no subject", noSubject, ErrInvalidToken},
		{"alg none", none, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Validate(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t)
	ts.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := ts.Generate(Identity{ID: "u"}, time.Minute)
	require.NoError(t, err)

	ts.now = time.Now
	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestIdentify(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(Identity{ID: "u-1", Email: "u@example.com"}, time.Minute)
	require.NoError(t, err)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(id.ID))
	})

	tests := []struct {
		name     string
		demo     bool
		setup    func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{"bearer", false, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "u-1"},
		{"lowercase scheme", false, func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, http.StatusOK, "u-1"},
		{"cookie", false, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: token}) }, http.StatusOK, "u-1"},
		{"anonymous", false, func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"bad token", false, func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"demo anonymous", true, func(r *http.Request) {}, http.StatusOK, DemoIdentity.ID},
		{"demo with token", true, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "u-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			Identify(ts, tt.demo)(echo).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestProfileIDContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := ProfileIDFromContext(req.Context())
	assert.False(t, ok)

	ctx := WithProfileID(req.Context(), "p-1")
	id, ok := ProfileIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "p-1", id)
}
