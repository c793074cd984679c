package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/content"
	"github.com/trezcool/schoolportal/core/identity"
	identitysvc "github.com/trezcool/schoolportal/services/identity"
	"github.com/trezcool/schoolportal/storage/kv"
	"github.com/trezcool/schoolportal/storage/kv/dummykv"
	"github.com/trezcool/schoolportal/testutil"
)

const (
	adminEmail    = "head@admin.school.ru"
	adminPassword = "s3cret-pass"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}

	student = identity.Session{UserID: "student-1", Email: "pupil@school.ru", Name: "Pupil", Role: identity.RoleStudent}
	admin   = identity.Session{UserID: "admin-1", Email: "head@admin.school.ru", Name: "Head", Role: identity.RoleAdmin}
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testApp struct {
	*Server
	store   *content.Store
	backend *dummykv.Backend
	logger  *testutil.Logger
}

// newTestApp serves a store backed by an in-memory backend, seeded when seed is set.
// configure tweaks the test configuration before anything is built.
func newTestApp(t *testing.T, seed bool, configure ...func(*core.Config)) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	conf.Auth.AdminEmail = adminEmail
	conf.Auth.AdminPasswordHash = ""
	conf.Auth.AdminPassword = adminPassword
	conf.Auth.DemoLogin = true
	for _, fn := range configure {
		fn(conf)
	}

	logger := testutil.NewLogger(t)
	backend := dummykv.New()
	adapter, err := kv.NewAdapter(backend, logger, conf.Storage.Timeout)
	require.NoError(t, err)
	store, err := content.NewStore(adapter, logger, content.WithSeed(seed))
	require.NoError(t, err)
	provider, err := identitysvc.NewLocalProvider(conf)
	require.NoError(t, err)
	validate, translator := core.NewValidator()

	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Store:      store,
		Identity:   provider,
		Validate:   validate,
		Translator: translator,
	})
	return &testApp{Server: srv, store: store, backend: backend, logger: logger}
}

func (app *testApp) token(t *testing.T, sess identity.Session) string {
	t.Helper()
	token, err := app.IssueToken(sess)
	require.NoError(t, err)
	return token
}

// run plays tt against the app and checks the status code, and the body when wantData is set.
func (app *testApp) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	if tt.method == "" {
		tt.method = http.MethodGet
	}
	if tt.wantCode == 0 {
		tt.wantCode = http.StatusOK
	}
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}
