package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stationops/forecourt/internal/auth"
	"github.com/stationops/forecourt/internal/database"
	"github.com/stationops/forecourt/internal/handlers"
	middlewareCustom "github.com/stationops/forecourt/internal/middleware"
	"github.com/stationops/forecourt/internal/models"
	"github.com/stationops/forecourt/internal/routes"
	"github.com/stationops/forecourt/internal/services"
	pkglogger "github.com/stationops/forecourt/pkg/logger"
)

// RecordingSink captures notification payloads for test assertions
type RecordingSink struct {
	mu       sync.Mutex
	Payloads []models.NotificationPayload
}

// Send records the payload
func (s *RecordingSink) Send(payload models.NotificationPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Payloads = append(s.Payloads, payload)
}

// Last returns the most recent payload, or nil
func (s *RecordingSink) Last() *models.NotificationPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Payloads) == 0 {
		return nil
	}
	return &s.Payloads[len(s.Payloads)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Sink   *RecordingSink

	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server with a real database and
// a recording notification sink
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	auditLogger := pkglogger.NewAuditLogger(logger)
	sink := &RecordingSink{}

	logRepo, alertRepo, userRepo, stationRepo, settingsRepo, eventRepo := InitializeRepositories(db)
	tokenManager := auth.NewTokenManager("integration-test-secret-key", 8*time.Hour)

	policyService := services.NewPolicyService(settingsRepo, logger)
	lockoutService := services.NewLockoutService(userRepo, eventRepo, "admin", logger, auditLogger)
	alertService := services.NewAlertService(alertRepo, stationRepo, eventRepo, sink, logger, auditLogger)
	logService := services.NewLogService(logRepo, policyService, alertService, logger)
	authService := services.NewAuthService(userRepo, lockoutService, policyService, tokenManager, eventRepo, logger, auditLogger)
	userAdminService := services.NewUserAdminService(userRepo, lockoutService, eventRepo, logger, auditLogger)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(chiMiddleware.Recoverer)

	routes.RegisterRoutes(router,
		handlers.NewAuthHandler(authService),
		handlers.NewLogHandler(logService),
		handlers.NewAlertHandler(alertService),
		handlers.NewSettingsHandler(policyService),
		handlers.NewUserHandler(userAdminService),
		handlers.NewStationHandler(stationRepo),
		handlers.NewSecurityEventHandler(eventRepo),
		tokenManager,
	)

	return &TestServer{
		Server: httptest.NewServer(router),
		DB:     db,
		Sink:   sink,
		logger: logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// DoJSON sends a JSON request with optional bearer token and decodes the response
func (ts *TestServer) DoJSON(ctx context.Context, method, path, token string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, ts.Server.URL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Server.Client().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Login authenticates against the test server and returns the session token
func (ts *TestServer) Login(ctx context.Context, username, password string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	status, err := ts.DoJSON(ctx, http.MethodPost, "/auth/login", "",
		map[string]string{"username": username, "password": password}, &result)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", status)
	}
	return result.Token, nil
}
