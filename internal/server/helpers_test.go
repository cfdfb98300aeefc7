package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/academic-scheduler/internal/handlers"
	"github.com/harentsoaR/academic-scheduler/internal/middleware"
	"github.com/harentsoaR/academic-scheduler/internal/models"
	"github.com/harentsoaR/academic-scheduler/internal/repository/memstore"
	"github.com/harentsoaR/academic-scheduler/internal/tokenstore"
	"github.com/harentsoaR/academic-scheduler/internal/upload"
	"github.com/harentsoaR/academic-scheduler/internal/utils"
)

const testUploadLimit = 4 << 10

func init() {
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost
}

type recordingNotifier struct {
	mu        sync.Mutex
	published []string
}

func (n *recordingNotifier) TimetablePublished(tt *models.Timetable) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, tt.ID.Hex())
}

func (n *recordingNotifier) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.published...)
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	store    *memstore.Store
	tokens   *utils.TokenManager
	notifier *recordingNotifier
	uploads  *upload.LocalStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	revoked := tokenstore.NewMemory()
	uploads, err := upload.NewLocalStorage(t.TempDir(), testUploadLimit)
	require.NoError(t, err)
	notifier := &recordingNotifier{}

	stores := handlers.Stores{
		Users:      store.Users,
		Venues:     store.Venues,
		Groups:     store.Groups,
		Subjects:   store.Subjects,
		Timetables: store.Timetables,
	}
	h := handlers.NewHandler(stores, tokens, revoked, uploads, notifier)
	h.AddHealthCheck("storage", store)
	h.AddHealthCheck("tokens", revoked)

	r := NewRouter(h, Options{
		UploadDir:      uploads.Root(),
		LoginPerMinute: 100,
		Tokens:         tokens,
		Revoked:        revoked,
		Metrics:        middleware.NewMetrics(),
	})
	return &testServer{t: t, router: r, store: store, tokens: tokens, notifier: notifier, uploads: uploads}
}

// seedUser stores a user with password "password123" and returns it with a
// valid token.
func (s *testServer) seedUser(name, email, role string) (*models.User, string) {
	s.t.Helper()
	hashed, err := utils.HashPassword("password123")
	require.NoError(s.t, err)
	u := &models.User{Name: name, Email: email, Password: hashed, Role: role}
	require.NoError(s.t, s.store.Users.Create(context.Background(), u))
	token, _, err := s.tokens.GenerateJWT(u.ID.Hex(), u.Role)
	require.NoError(s.t, err)
	return u, token
}

func (s *testServer) admin() string {
	_, token := s.seedUser("Admin", "admin@uni.test", models.RoleAdmin)
	return token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

// decode checks the status and unmarshals the result into out when non-nil.
func decode(t *testing.T, rec *httptest.ResponseRecorder, status int, out interface{}) envelope {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Result, out))
	}
	return env
}
