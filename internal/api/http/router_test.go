package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/api/http/handlers"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/observability"
	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/service"
	"github.com/spec-kit/callcenter-service/internal/session"
)

const (
	staffUsername = "agent"
	staffPassword = "agent-pass"
	callerPhone   = "0(555) 123 45 67"
)

type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Reason  string         `json:"reason"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store := repository.NewMemoryStore()
	store.SeedReferenceData()
	hash, err := auth.HashPassword(staffPassword, 4)
	require.NoError(t, err)
	staffID := store.AddStaff("Deniz", "Kaya", true)
	store.AddStaffLogin(staffID, staffUsername, hash)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	engine := config.DefaultEngineConfig()

	resolver := service.NewCustomerResolver(service.CustomerResolverDependencies{
		Store: store, Dispatcher: dispatcher, Logger: logger, BcryptCost: 4,
	})
	complaints := service.NewComplaintService(service.ComplaintServiceDependencies{
		Store: store, Picker: service.NewStaffPicker(nil), Engine: engine, Dispatcher: dispatcher, Logger: logger,
	})
	calls := service.NewCallSessionManager(service.CallSessionDependencies{
		Store: store, Sessions: session.NewMemoryStore(time.Hour), Complaints: complaints, Dispatcher: dispatcher, Logger: logger,
	})
	surveys := service.NewSurveyService(service.SurveyServiceDependencies{
		Store: store, Complaints: complaints, Engine: engine, Dispatcher: dispatcher, Logger: logger,
	})
	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: 4,
	}, service.AuthDependencies{Store: store, Resolver: resolver, Logger: logger})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	validate := validator.New()
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("callcenter-service", "test", map[string]handlers.Pinger{"postgres": nil}),
		Auth:           handlers.NewAuthHandler(authService, validate),
		Customers:      handlers.NewCustomersHandler(resolver, validate),
		Calls:          handlers.NewCallsHandler(calls, validate),
		Complaints:     handlers.NewComplaintsHandler(complaints, surveys, validate),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(store, nil), service.NewLookupService(store)),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store),
		Metrics:        metrics,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func login(t *testing.T, app *fiber.App, path, username, password string) string {
	t.Helper()
	var resp struct {
		Data struct {
			Auth struct {
				Token string `json:"token"`
			} `json:"auth"`
		} `json:"data"`
	}
	status := doJSON(t, app, http.MethodPost, path, "", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, resp.Data.Auth.Token)
	return resp.Data.Auth.Token
}

func registerCustomer(t *testing.T, app *fiber.App, username string) int64 {
	t.Helper()
	var resp struct {
		Data struct {
			Customer struct {
				ID int64 `json:"id"`
			} `json:"customer"`
		} `json:"data"`
	}
	status := doJSON(t, app, http.MethodPost, "/auth/customers/register", "", map[string]string{
		"first_name":       "Ayse",
		"last_name":        "Yilmaz",
		"email":            username + "@example.com",
		"phone":            callerPhone,
		"city":             "Izmir",
		"username":         username,
		"password":         "s3cret!",
		"password_confirm": "s3cret!",
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	return resp.Data.Customer.ID
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	var ready map[string]any
	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "ready", ready["status"])
	assert.Equal(t, map[string]any{"postgres": "disabled"}, ready["dependencies"])

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	var body apiError
	status := doJSON(t, app, http.MethodPost, "/calls/sessions", "", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)

	var missing apiError
	status = doJSON(t, app, http.MethodGet, "/no-such-route", "", nil, &missing)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", missing.Error.Code)
}

func TestCustomerTokenCannotUseStaffRoutes(t *testing.T) {
	app := newTestApp(t)
	registerCustomer(t, app, "ayse.y")
	token := login(t, app, "/auth/customers/login", "ayse.y", "s3cret!")

	var body apiError
	status := doJSON(t, app, http.MethodPost, "/calls/sessions", token, nil, &body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestCallToComplaintToSurveyFlow(t *testing.T) {
	app := newTestApp(t)
	customerID := registerCustomer(t, app, "ayse.y")
	staffToken := login(t, app, "/auth/staff/login", staffUsername, staffPassword)
	customerToken := login(t, app, "/auth/customers/login", "ayse.y", "s3cret!")

	var resolved struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	status := doJSON(t, app, http.MethodGet, "/customers/resolve?phone=0(555)%20123%2045%2067", staffToken, nil, &resolved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, customerID, resolved.Data.ID)

	var started struct {
		Data struct {
			ID    string `json:"id"`
			State string `json:"state"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusCreated, doJSON(t, app, http.MethodPost, "/calls/sessions", staffToken, nil, &started))
	assert.Equal(t, "STARTED", started.Data.State)

	topic := int64(2)
	var ended struct {
		Data struct {
			CallID           int64  `json:"call_id"`
			ComplaintCreated bool   `json:"complaint_created"`
			ComplaintID      *int64 `json:"complaint_id"`
		} `json:"data"`
	}
	status = doJSON(t, app, http.MethodPost, "/calls/sessions/"+started.Data.ID+"/end", staffToken, map[string]any{
		"phone":         callerPhone,
		"customer_id":   customerID,
		"call_type_id":  1,
		"call_topic_id": topic,
		"notes":         "Package arrived damaged",
	}, &ended)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, ended.Data.ComplaintCreated)
	require.NotNil(t, ended.Data.ComplaintID)
	complaintPath := "/complaints/" + strconv.FormatInt(*ended.Data.ComplaintID, 10)

	var again apiError
	status = doJSON(t, app, http.MethodPost, "/calls/sessions/"+started.Data.ID+"/end", staffToken, map[string]any{
		"phone":        callerPhone,
		"call_type_id": 1,
	}, &again)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AlreadyEnded", again.Error.Reason)

	var early apiError
	status = doJSON(t, app, http.MethodPost, "/me"+complaintPath+"/survey", customerToken, map[string]int{"rating": 5}, &early)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ComplaintNotClosed", early.Error.Reason)

	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodPost, complaintPath+"/close", staffToken, nil, nil))

	var mine struct {
		Data []struct {
			ID       int64 `json:"id"`
			IsActive bool  `json:"is_active"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodGet, "/me/complaints", customerToken, nil, &mine))
	require.Len(t, mine.Data, 1)
	assert.False(t, mine.Data[0].IsActive)

	var survey struct {
		Data struct {
			Rating int    `json:"rating"`
			CallID *int64 `json:"call_id"`
		} `json:"data"`
	}
	status = doJSON(t, app, http.MethodPost, "/me"+complaintPath+"/survey", customerToken, map[string]int{"rating": 4}, &survey)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 4, survey.Data.Rating)
	require.NotNil(t, survey.Data.CallID)
	assert.Equal(t, ended.Data.CallID, *survey.Data.CallID)

	var dup apiError
	status = doJSON(t, app, http.MethodPost, "/me"+complaintPath+"/survey", customerToken, map[string]int{"rating": 1}, &dup)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AlreadySubmitted", dup.Error.Reason)
}

func TestEndCallValidationReasons(t *testing.T) {
	app := newTestApp(t)
	staffToken := login(t, app, "/auth/staff/login", staffUsername, staffPassword)

	var started struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusCreated, doJSON(t, app, http.MethodPost, "/calls/sessions", staffToken, nil, &started))
	endPath := "/calls/sessions/" + started.Data.ID + "/end"

	cases := []struct {
		name   string
		body   map[string]any
		reason string
	}{
		{name: "missing phone", body: map[string]any{"call_type_id": 1}, reason: "MissingPhone"},
		{name: "bad phone", body: map[string]any{"phone": "5551234567", "call_type_id": 1}, reason: "InvalidFormat"},
		{name: "missing call type", body: map[string]any{"phone": callerPhone}, reason: "MissingCallType"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body apiError
			status := doJSON(t, app, http.MethodPost, endPath, staffToken, tc.body, &body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
			assert.Equal(t, tc.reason, body.Error.Reason)
		})
	}

	var unknown apiError
	status := doJSON(t, app, http.MethodPost, "/calls/sessions/nope/end", staffToken, map[string]any{
		"phone": callerPhone, "call_type_id": 1,
	}, &unknown)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SessionNotFound", unknown.Error.Reason)
}

func TestSelfServiceComplaintValidation(t *testing.T) {
	app := newTestApp(t)
	registerCustomer(t, app, "ayse.y")
	token := login(t, app, "/auth/customers/login", "ayse.y", "s3cret!")

	var missing apiError
	status := doJSON(t, app, http.MethodPost, "/me/complaints", token, map[string]any{"title": "Late"}, &missing)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidInput", missing.Error.Reason)

	var unknownProduct apiError
	status = doJSON(t, app, http.MethodPost, "/me/complaints", token, map[string]any{
		"title":        "Broken",
		"description":  "Stopped working",
		"category_id":  1,
		"product_code": "999999",
	}, &unknownProduct)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ProductNotFound", unknownProduct.Error.Reason)

	var created struct {
		Data struct {
			ID          int64   `json:"id"`
			ProductCode *string `json:"product_code"`
			IsActive    bool    `json:"is_active"`
		} `json:"data"`
	}
	status = doJSON(t, app, http.MethodPost, "/me/complaints", token, map[string]any{
		"title":        "Broken",
		"description":  "Stopped working",
		"category_id":  1,
		"product_code": "100001",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, created.Data.IsActive)
	require.NotNil(t, created.Data.ProductCode)
	assert.Equal(t, "100001", *created.Data.ProductCode)
}

func TestRegisterRejectsPhoneAlreadyOnFile(t *testing.T) {
	app := newTestApp(t)
	registerCustomer(t, app, "ayse.y")

	var body apiError
	status := doJSON(t, app, http.MethodPost, "/auth/customers/register", "", map[string]string{
		"first_name":       "Mehmet",
		"last_name":        "Kaya",
		"email":            "mehmet@example.com",
		"phone":            callerPhone,
		"username":         "mehmet.k",
		"password":         "s3cret!",
		"password_confirm": "s3cret!",
	}, &body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.Error.Code)
	assert.Equal(t, "PhoneTaken", body.Error.Reason)
}
