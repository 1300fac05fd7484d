package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskapi/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	users   *services.UserService
	creds   *auth.Credentials
}

func newTestAPI(t *testing.T, opts Options) *testAPI {
	t.Helper()
	repos := repomanager.NewMemoryRepositoryManager()
	creds := auth.NewCredentials("test-secret", bcrypt.MinCost, 0, auth.NewAccountRevocationStore(repos.Users()))
	us := services.NewUserService(repos, creds, logging.Nop{})
	ts := services.NewTaskService(repos, logging.Nop{})
	if opts.Health == nil {
		opts.Health = repos
	}
	s := NewServer(":0", logging.Nop{}, us, ts, creds, opts)
	return &testAPI{t: t, handler: s.Handler(), users: us, creds: creds}
}

type response struct {
	Code    int
	Header  http.Header
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}

// do sends body (marshalled unless it is already a string) with an optional
// bearer token.
func (a *testAPI) do(method, path, token string, body any) response {
	a.t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	res := response{Code: rec.Code, Header: rec.Header()}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	}
	return res
}

func (a *testAPI) signup(email, password string) string {
	a.t.Helper()
	res := a.do(http.MethodPost, "/user/signup", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusCreated, res.Code, res.Message)
	token := res.Header.Get(common.AuthTokenHeaderName)
	require.NotEmpty(a.t, token)
	return token
}

func (a *testAPI) admin(email, password string) string {
	a.t.Helper()
	_, err := a.users.CreateAdmin(context.Background(), email, password)
	require.NoError(a.t, err)
	res := a.do(http.MethodPost, "/user/signin", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, res.Code, res.Message)
	return res.Header.Get(common.AuthTokenHeaderName)
}

func (a *testAPI) createTask(token, title string) string {
	a.t.Helper()
	res := a.do(http.MethodPost, "/task/new", token, map[string]string{"title": title})
	require.Equal(a.t, http.StatusCreated, res.Code, res.Message)
	var v taskView
	require.NoError(a.t, json.Unmarshal(res.Data, &v))
	require.NotEmpty(a.t, v.ID)
	return v.ID
}
