package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/identity"
)

func Test_sessionApi_login(t *testing.T) {
	app := newTestApp(t, false)
	authFailed := marshallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "this field is required", "password": "this field is required"}`),
		},
		{name: "unknown email", body: []byte(`{"email": "nobody@school.ru", "password": "x"}`), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "wrong password", body: []byte(`{"email": "head@admin.school.ru", "password": "nope"}`), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "valid credentials", body: []byte(`{"email": " HEAD@admin.school.ru ", "password": "s3cret-pass"}`)},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/login"
		t.Run(tt.name, func(t *testing.T) {
			rec := app.run(t, tt)
			if rec.Code != http.StatusOK {
				return
			}
			var resp LoginResponse
			unmarshall(t, rec, &resp)
			assert.NotEmpty(t, resp.Token)
			require.NotNil(t, resp.Session)
			assert.Equal(t, adminEmail, resp.Session.Email)
			assert.True(t, resp.Session.IsAdmin())

			// the token opens the admin portal
			app.run(t, httpTest{path: "/v1/admin/dashboard", token: resp.Token})
		})
	}
}

func Test_sessionApi_quickLogin(t *testing.T) {
	app := newTestApp(t, false)

	tests := []struct {
		admin    bool
		wantRole identity.Role
	}{
		{admin: false, wantRole: identity.RoleStudent},
		{admin: true, wantRole: identity.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(string(tt.wantRole), func(t *testing.T) {
			rec := app.run(t, httpTest{
				method: http.MethodPost,
				path:   "/v1/auth/quick-login",
				body:   marshallObj(t, QuickLoginRequest{Admin: tt.admin}),
			})
			var resp LoginResponse
			unmarshall(t, rec, &resp)
			require.NotNil(t, resp.Session)
			assert.Equal(t, tt.wantRole, resp.Session.Role)

			rec = app.run(t, httpTest{path: "/v1/auth/me", token: resp.Token})
			var sess identity.Session
			unmarshall(t, rec, &sess)
			assert.Equal(t, *resp.Session, sess)
		})
	}

	t.Run("disabled", func(t *testing.T) {
		app := newTestApp(t, false, func(conf *core.Config) { conf.Auth.DemoLogin = false })
		app.run(t, httpTest{
			method: http.MethodPost, path: "/v1/auth/quick-login", body: []byte(`{}`),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "demo login disabled"}),
		})
	})
}

func Test_sessionApi_refreshToken(t *testing.T) {
	app := newTestApp(t, false)
	conf := app.deps.Conf

	now := time.Now()
	stale := getSessionClaims(conf, student, now.Add(-2*conf.Server.JWTRefreshExpirationDelta).Unix())
	staleToken, err := app.generateToken(stale)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Refresh period expired", token: staleToken, wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: app.token(t, student)},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/token-refresh"
		t.Run(tt.name, func(t *testing.T) {
			rec := app.run(t, tt)
			if rec.Code != http.StatusOK {
				return
			}
			var resp LoginResponse
			unmarshall(t, rec, &resp)

			claims := new(Claims)
			_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(conf.SecretKey), nil
			})
			require.NoError(t, err)
			assert.Equal(t, student.UserID, claims.Subject)
			assert.Equal(t, student.Email, claims.Email)
			assert.False(t, claims.IsAdmin)
		})
	}
}

func TestServer_home(t *testing.T) {
	app := newTestApp(t, false)
	req, rec := newAuthRequest(http.MethodGet, "/", "")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), app.deps.Conf.AppName)
}
