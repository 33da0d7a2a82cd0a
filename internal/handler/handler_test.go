package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"exelix/internal/domain"
	"exelix/internal/middleware"
	"exelix/internal/service/admission"
	"exelix/internal/service/auth"
	"exelix/internal/service/owner"
	"exelix/internal/service/photo"
)

type mockAdmission struct{ mock.Mock }

func (m *mockAdmission) Submit(ctx context.Context, req admission.Request) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAdmission) RecordRejected(ctx context.Context, senderIP string) {
	m.Called(ctx, senderIP)
}

type stubCaptcha struct{ siteKey string }

func (s stubCaptcha) Enabled() bool                                { return s.siteKey != "" }
func (s stubCaptcha) SiteKey() string                              { return s.siteKey }
func (s stubCaptcha) Verify(context.Context, string, string) error { return nil }

type mockOwnerService struct{ mock.Mock }

func (m *mockOwnerService) Gate(ctx context.Context, code string, viewer *uuid.UUID) (*owner.GateResult, error) {
	args := m.Called(ctx, code, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*owner.GateResult), args.Error(1)
}

func (m *mockOwnerService) Register(ctx context.Context, input domain.RegisterOwnerInput, file *photo.File) (*domain.Owner, error) {
	args := m.Called(ctx, input, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *mockOwnerService) Get(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *mockOwnerService) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateOwnerInput, file *photo.File) (*domain.Owner, error) {
	args := m.Called(ctx, id, input, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *mockOwnerService) SetTelegram(ctx context.Context, id uuid.UUID, telegram *string) (*string, error) {
	args := m.Called(ctx, id, telegram)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *mockOwnerService) SetAtCar(ctx context.Context, id uuid.UUID, atCar bool) error {
	return m.Called(ctx, id, atCar).Error(0)
}

func (m *mockOwnerService) SetPushSubscription(ctx context.Context, id uuid.UUID, raw json.RawMessage) error {
	return m.Called(ctx, id, raw).Error(0)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) IssueOwnerToken(ownerID uuid.UUID) (string, error) {
	args := m.Called(ownerID)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) ValidateOwnerToken(token string) (*auth.OwnerClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.OwnerClaims), args.Error(1)
}

func (m *mockAuthService) GetOwner(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *mockAuthService) AdminLogin(ctx context.Context, input domain.AdminLoginInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) ValidateAdminToken(token string) (*auth.AdminClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.AdminClaims), args.Error(1)
}

func (m *mockAuthService) EnsureAdmin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminStats), args.Error(1)
}

func (m *mockAdminService) ListOwners(ctx context.Context, params domain.OffsetParams) ([]domain.OwnerSummary, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OwnerSummary), args.Error(1)
}

func (m *mockAdminService) GenerateCodes(ctx context.Context, count int) ([]domain.ProvisionedCode, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProvisionedCode), args.Error(1)
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(middleware.RequestInfo(""))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func TestNotifyHandler_Send(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		svc := new(mockAdmission)
		svc.On("Submit", mock.Anything, mock.MatchedBy(func(req admission.Request) bool {
			return req.QRCode == "ex1" && req.SenderIP == "0.0.0.0" && len(req.Types) == 1
		})).Return(nil)

		app := newTestApp()
		app.Post("/send", NewNotifyHandler(svc, stubCaptcha{}, "").Send)

		resp, body := doJSON(t, app, http.MethodPost, "/send", `{"qrCode":"ex1","types":["lights_on"]}`)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "SENT", body["message"])
		svc.AssertExpectations(t)
	})

	t.Run("sender limit keeps its code", func(t *testing.T) {
		svc := new(mockAdmission)
		svc.On("Submit", mock.Anything, mock.Anything).Return(&admission.Rejection{
			Kind:    admission.KindSenderLimit,
			Message: "LIMIT_REACHED",
			Code:    admission.CodeLimitCritical,
			Status:  fiber.StatusTooManyRequests,
		})

		app := newTestApp()
		app.Post("/send", NewNotifyHandler(svc, stubCaptcha{}, "").Send)

		resp, body := doJSON(t, app, http.MethodPost, "/send", `{"qrCode":"ex1","types":["evacuation"]}`)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "SENDER_LIMIT", body["error"])
		assert.Equal(t, "LIMIT_CRITICAL", body["code"])
		assert.Equal(t, "LIMIT_REACHED", body["message"])
	})

	t.Run("malformed body is submitted empty", func(t *testing.T) {
		svc := new(mockAdmission)
		svc.On("Submit", mock.Anything, mock.MatchedBy(func(req admission.Request) bool {
			return req.QRCode == "" && req.Types == nil
		})).Return(&admission.Rejection{
			Kind:    admission.KindInvalidRequest,
			Message: "qrCode and types[] required",
			Status:  fiber.StatusBadRequest,
		})

		app := newTestApp()
		app.Post("/send", NewNotifyHandler(svc, stubCaptcha{}, "").Send)

		resp, body := doJSON(t, app, http.MethodPost, "/send", `{not json`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_REQUEST", body["error"])
		_, hasCode := body["code"]
		assert.False(t, hasCode)
	})
}

func TestNotifyHandler_SendTolerantBody(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantTypes []string
	}{
		{
			name:      "non-string tag kept as unknown text",
			body:      `{"qrCode":"ex1","types":["blocking",5]}`,
			wantCode:  "ex1",
			wantTypes: []string{"blocking", "5"},
		},
		{
			name:      "numeric qr code",
			body:      `{"qrCode":12345,"types":["blocking"]}`,
			wantCode:  "12345",
			wantTypes: []string{"blocking"},
		},
		{
			name:      "types not a list",
			body:      `{"qrCode":"ex1","types":"blocking"}`,
			wantCode:  "ex1",
			wantTypes: nil,
		},
		{
			name:      "object qr code reads as missing",
			body:      `{"qrCode":{"a":1},"types":[null,{"k":"v"}]}`,
			wantCode:  "",
			wantTypes: []string{"", `{"k":"v"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got admission.Request
			svc := new(mockAdmission)
			svc.On("Submit", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
				got = args.Get(1).(admission.Request)
			}).Return(nil)

			app := newTestApp()
			app.Post("/send", NewNotifyHandler(svc, stubCaptcha{}, "").Send)

			resp, _ := doJSON(t, app, http.MethodPost, "/send", tt.body)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.wantCode, got.QRCode)
			assert.Equal(t, tt.wantTypes, got.Types)
			assert.Equal(t, "0.0.0.0", got.SenderIP)
		})
	}
}

func TestNotifyHandler_MixedTypesFilterToKnown(t *testing.T) {
	types := domain.ParseNotificationTypes(tagList(json.RawMessage(`["blocking",5,true]`)))
	assert.Equal(t, domain.NotificationTypes{domain.NotifBlocking}, types)
}

func TestNotifyHandler_RecordLimited(t *testing.T) {
	svc := new(mockAdmission)
	svc.On("RecordRejected", mock.Anything, "0.0.0.0").Return().Once()

	limiter := middleware.NewIPRateLimiter(0.001, 1)
	h := NewNotifyHandler(svc, stubCaptcha{}, "")
	svc.On("Submit", mock.Anything, mock.Anything).Return(nil).Once()

	app := newTestApp()
	app.Post("/send", middleware.RateLimit(limiter, h.RecordLimited), h.Send)

	resp, _ := doJSON(t, app, http.MethodPost, "/send", `{"qrCode":"ex1","types":["blocking"]}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/send", `{"qrCode":"ex1","types":["blocking"]}`)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", body["error"])
	svc.AssertExpectations(t)
}

func TestNotifyHandler_Types(t *testing.T) {
	app := newTestApp()
	app.Get("/types", NewNotifyHandler(new(mockAdmission), stubCaptcha{siteKey: "site"}, "vapid").Types)

	resp, body := doJSON(t, app, http.MethodGet, "/types", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "site", body["captchaSiteKey"])
	assert.Equal(t, "vapid", body["vapidPublicKey"])
	assert.Len(t, body["types"], len(domain.NotificationTypeCatalog()))
}

func TestQRHandler_Gate(t *testing.T) {
	telegram := "driver"
	closed := &domain.Owner{ID: uuid.New(), Name: "Aibek", Surname: "Uulu", Phone: "+996", Telegram: &telegram}

	tests := []struct {
		name       string
		result     *owner.GateResult
		err        error
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "inactive code asks for registration",
			result:     &owner.GateResult{Action: owner.GateRegister, Code: "ex1"},
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "register", body["action"])
				assert.Equal(t, "ex1", body["qrCode"])
			},
		},
		{
			name:       "closed profile hides name",
			result:     &owner.GateResult{Action: owner.GateNotify, Code: "ex1", Owner: closed},
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "notify", body["action"])
				assert.Equal(t, true, body["canTelegram"])
				assert.Equal(t, "+996", body["phone"])
				pub := body["owner"].(map[string]interface{})
				assert.Nil(t, pub["name"])
				assert.Equal(t, "+996", pub["phone"])
			},
		},
		{
			name:       "unknown code",
			err:        owner.ErrQRNotFound,
			wantStatus: fiber.StatusNotFound,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "QR_NOT_FOUND", body["error"])
			},
		},
		{
			name:       "active code without owner",
			err:        owner.ErrNoOwner,
			wantStatus: fiber.StatusInternalServerError,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "NO_OWNER", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockOwnerService)
			svc.On("Gate", mock.Anything, "ex1", (*uuid.UUID)(nil)).Return(tt.result, tt.err)

			app := newTestApp()
			app.Get("/q/:code", NewQRHandler(svc).Gate)

			resp, body := doJSON(t, app, http.MethodGet, "/q/ex1", "")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			tt.check(t, body)
		})
	}
}

func TestRegisterHandler_Register(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		svc := new(mockOwnerService)
		svc.On("Register", mock.Anything, mock.Anything, (*photo.File)(nil)).Return(nil, owner.ErrMissingFields)

		app := newTestApp()
		app.Post("/register", NewRegisterHandler(svc, new(mockAuthService), CookieConfig{}).Register)

		resp, body := doJSON(t, app, http.MethodPost, "/register", `{"qrCode":"ex1"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "MISSING_FIELDS", body["error"])
	})

	t.Run("already active", func(t *testing.T) {
		svc := new(mockOwnerService)
		svc.On("Register", mock.Anything, mock.Anything, (*photo.File)(nil)).Return(nil, owner.ErrQRAlreadyActive)

		app := newTestApp()
		app.Post("/register", NewRegisterHandler(svc, new(mockAuthService), CookieConfig{}).Register)

		resp, body := doJSON(t, app, http.MethodPost, "/register", `{"qrCode":"ex1","name":"a","surname":"b","phone":"1"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "QR_ALREADY_ACTIVE", body["error"])
	})

	t.Run("issues session", func(t *testing.T) {
		created := &domain.Owner{ID: uuid.New(), Name: "a", Surname: "b", Phone: "1", Lang: domain.LangRU}

		svc := new(mockOwnerService)
		svc.On("Register", mock.Anything, mock.MatchedBy(func(in domain.RegisterOwnerInput) bool {
			return in.QRCode == "ex1" && in.Name == "a"
		}), (*photo.File)(nil)).Return(created, nil)
		authSvc := new(mockAuthService)
		authSvc.On("IssueOwnerToken", created.ID).Return("jwt", nil)

		app := newTestApp()
		app.Post("/register", NewRegisterHandler(svc, authSvc, CookieConfig{}).Register)

		resp, body := doJSON(t, app, http.MethodPost, "/register", `{"qrCode":"ex1","name":"a","surname":"b","phone":"1"}`)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "jwt", body["token"])
		assert.Contains(t, resp.Header.Get(fiber.HeaderSetCookie), middleware.OwnerCookie+"=jwt")
	})
}

func TestOwnerHandler_PushSubscription(t *testing.T) {
	t.Run("non-object rejected", func(t *testing.T) {
		svc := new(mockOwnerService)
		svc.On("SetPushSubscription", mock.Anything, uuid.Nil, mock.Anything).Return(owner.ErrInvalidPush)

		app := newTestApp()
		app.Post("/push", NewOwnerHandler(svc).PushSubscription)

		resp, body := doJSON(t, app, http.MethodPost, "/push", `{"subscription":"nope"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_SUBSCRIPTION", body["error"])
	})

	t.Run("object stored", func(t *testing.T) {
		svc := new(mockOwnerService)
		svc.On("SetPushSubscription", mock.Anything, uuid.Nil, mock.MatchedBy(func(raw json.RawMessage) bool {
			return strings.Contains(string(raw), "endpoint")
		})).Return(nil)

		app := newTestApp()
		app.Post("/push", NewOwnerHandler(svc).PushSubscription)

		resp, body := doJSON(t, app, http.MethodPost, "/push", `{"subscription":{"endpoint":"https://push.example"}}`)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		svc.AssertExpectations(t)
	})
}

func TestOwnerHandler_AtCar(t *testing.T) {
	svc := new(mockOwnerService)
	svc.On("SetAtCar", mock.Anything, uuid.Nil, false).Return(nil)

	app := newTestApp()
	app.Post("/at-car-off", NewOwnerHandler(svc).AtCarOff)

	resp, body := doJSON(t, app, http.MethodPost, "/at-car-off", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["at_car"])
}

func TestAdminHandler(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		authSvc := new(mockAuthService)
		authSvc.On("AdminLogin", mock.Anything, domain.AdminLoginInput{Login: "root", Password: "x"}).Return("", auth.ErrInvalidCredentials)

		app := newTestApp()
		app.Post("/login", NewAdminHandler(authSvc, new(mockAdminService), CookieConfig{}).Login)

		resp, body := doJSON(t, app, http.MethodPost, "/login", `{"login":"root","password":"x"}`)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", body["error"])
	})

	t.Run("users default paging", func(t *testing.T) {
		adminSvc := new(mockAdminService)
		adminSvc.On("ListOwners", mock.Anything, domain.OffsetParams{Offset: 0, Limit: 40}).Return(nil, nil)

		app := newTestApp()
		app.Get("/users", NewAdminHandler(new(mockAuthService), adminSvc, CookieConfig{}).Users)

		resp, body := doJSON(t, app, http.MethodGet, "/users", "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, []interface{}{}, body["users"])
	})

	t.Run("generate codes passes count", func(t *testing.T) {
		adminSvc := new(mockAdminService)
		adminSvc.On("GenerateCodes", mock.Anything, 5).Return([]domain.ProvisionedCode{}, nil)

		app := newTestApp()
		app.Post("/qr-codes", NewAdminHandler(new(mockAuthService), adminSvc, CookieConfig{}).GenerateCodes)

		resp, _ := doJSON(t, app, http.MethodPost, "/qr-codes?count=5", "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		adminSvc.AssertExpectations(t)
	})
}
