package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/kakeibo/internal/auth"
	"github.com/hitoshi/kakeibo/internal/middleware"
	"github.com/hitoshi/kakeibo/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn          func(state string) (string, error)
	handleCallbackFn       func(ctx context.Context, code string) (*model.Session, error)
	signUpFn               func(ctx context.Context, input auth.SignUpInput) (*model.Session, error)
	signInFn               func(ctx context.Context, email, password string) (*model.Session, error)
	signInGuestFn          func(ctx context.Context) (*model.Session, error)
	requestPasswordResetFn func(ctx context.Context, email string) error
	resetPasswordFn        func(ctx context.Context, token, password, confirmation string) error
	logoutFn               func(ctx context.Context, sessionID string) error
	getCurrentUserFn       func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) GetLoginURL(state string) (string, error) {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "", nil
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, nil
}

func (m *mockAuthService) SignUp(ctx context.Context, input auth.SignUpInput) (*model.Session, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, input)
	}
	return nil, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) SignInGuest(ctx context.Context) (*model.Session, error) {
	if m.signInGuestFn != nil {
		return m.signInGuestFn(ctx)
	}
	return nil, nil
}

func (m *mockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.requestPasswordResetFn != nil {
		return m.requestPasswordResetFn(ctx, email)
	}
	return nil
}

func (m *mockAuthService) ResetPassword(ctx context.Context, token, password, confirmation string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, token, password, confirmation)
	}
	return nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		CookieDomain:  "",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

func testSession(id string) *model.Session {
	return &model.Session{
		ID:        id,
		UserID:    "user-id-123",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Google OAuth ---

func TestAuthHandler_Login_RedirectsToOAuthURL(t *testing.T) {
	svc := &mockAuthService{
		getLoginURLFn: func(state string) (string, error) {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	location := resp.Header.Get("Location")
	if !strings.Contains(location, "accounts.google.com") {
		t.Errorf("Location = %q, should contain google oauth URL", location)
	}

	stateCookie := findCookie(resp, oauthStateCookie)
	if stateCookie == nil {
		t.Fatal("expected oauth_state cookie")
	}
	if !strings.Contains(location, stateCookie.Value) {
		t.Errorf("Location %q should carry state %q", location, stateCookie.Value)
	}
}

func TestAuthHandler_Login_ProviderDisabled(t *testing.T) {
	svc := &mockAuthService{
		getLoginURLFn: func(string) (string, error) {
			return "", model.NewProviderDisabledError(model.ProviderGoogle)
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	assertStatus(t, w, http.StatusNotFound)
	if body := decodeAPIError(t, w); body.Code != model.ErrCodeProviderDisabled {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeProviderDisabled)
	}
	if findCookie(w.Result(), oauthStateCookie) != nil {
		t.Error("oauth_state cookie must not be set when Google is disabled")
	}
}

func TestAuthHandler_Callback_Success_SetsCookieAndRedirects(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			if code != "test-code" {
				t.Errorf("code = %q, want test-code", code)
			}
			return testSession("session-id-abc"), nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=test-code&state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "test-state"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	if location := resp.Header.Get("Location"); location != "http://localhost:3000/dashboard" {
		t.Errorf("Location = %q, want dashboard", location)
	}

	sessionCookie := findCookie(resp, middleware.SessionCookieName)
	if sessionCookie == nil {
		t.Fatal("expected session_id cookie")
	}
	if sessionCookie.Value != "session-id-abc" {
		t.Errorf("cookie value = %q, want session-id-abc", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if sessionCookie.MaxAge != 86400 {
		t.Errorf("MaxAge = %d, want 86400", sessionCookie.MaxAge)
	}
}

func TestAuthHandler_Callback_InvalidState(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		cookie string
	}{
		{name: "mismatch", query: "state=wrong", cookie: "correct"},
		{name: "missing cookie", query: "state=value"},
		{name: "empty state", query: "state=", cookie: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				handleCallbackFn: func(context.Context, string) (*model.Session, error) {
					t.Fatal("HandleCallback must not be called")
					return nil, nil
				},
			}
			h := NewAuthHandler(svc, testAuthConfig())

			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=x&"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			h.Callback(w, req)

			assertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestAuthHandler_Callback_MissingCode(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=s", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	assertStatus(t, w, http.StatusBadRequest)
}

func TestAuthHandler_Callback_ServiceError_RedirectsToSignIn(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(context.Context, string) (*model.Session, error) {
			return nil, errors.New("token exchange failed")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=c&state=s", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	if location := resp.Header.Get("Location"); !strings.Contains(location, "/auth/sign-in?error=") {
		t.Errorf("Location = %q, want sign-in page with error", location)
	}
	if findCookie(resp, middleware.SessionCookieName) != nil {
		t.Error("session cookie must not be set on failure")
	}
}

// --- メール/パスワード ---

func TestAuthHandler_SignUp_Success(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(_ context.Context, input auth.SignUpInput) (*model.Session, error) {
			if input.Email != "taro@example.com" || input.PasswordConfirmation != "password123" {
				t.Errorf("input = %+v", input)
			}
			return testSession("session-new"), nil
		},
		getCurrentUserFn: func(_ context.Context, sessionID string) (*model.User, error) {
			if sessionID != "session-new" {
				t.Errorf("sessionID = %q, want session-new", sessionID)
			}
			return &model.User{ID: "user-id-123", Email: "taro@example.com", Name: "太郎"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := newJSONRequest(http.MethodPost, "/auth/sign-up",
		`{"email":"taro@example.com","password":"password123","password_confirmation":"password123","name":"太郎"}`)
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	assertStatus(t, w, http.StatusCreated)
	if c := findCookie(w.Result(), middleware.SessionCookieName); c == nil || c.Value != "session-new" {
		t.Errorf("session cookie = %+v, want session-new", c)
	}
	var body userResponse
	decodeBody(t, w, &body)
	if body.ID != "user-id-123" || body.Email != "taro@example.com" || body.IsGuest {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthHandler_SignUp_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"email taken", model.NewEmailTakenError(), http.StatusConflict, model.ErrCodeEmailTaken},
		{"password mismatch", model.NewPasswordMismatchError(), http.StatusBadRequest, model.ErrCodePasswordMismatch},
		{"validation", model.NewValidationError("メールアドレスの形式が正しくありません。"), http.StatusBadRequest, model.ErrCodeValidation},
		{"internal", errors.New("db down"), http.StatusInternalServerError, middleware.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				signUpFn: func(context.Context, auth.SignUpInput) (*model.Session, error) {
					return nil, tt.err
				},
			}
			h := NewAuthHandler(svc, testAuthConfig())

			w := httptest.NewRecorder()
			h.SignUp(w, newJSONRequest(http.MethodPost, "/auth/sign-up", `{"email":"a@example.com"}`))

			assertStatus(t, w, tt.wantStatus)
			if body := decodeAPIError(t, w); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if findCookie(w.Result(), middleware.SessionCookieName) != nil {
				t.Error("session cookie must not be set on failure")
			}
		})
	}
}

func TestAuthHandler_SignUp_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	w := httptest.NewRecorder()
	h.SignUp(w, newJSONRequest(http.MethodPost, "/auth/sign-up", `{not json`))

	assertStatus(t, w, http.StatusBadRequest)
	if body := decodeAPIError(t, w); body.Code != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", body.Code)
	}
}

func TestAuthHandler_SignIn_Success(t *testing.T) {
	svc := &mockAuthService{
		signInFn: func(_ context.Context, email, password string) (*model.Session, error) {
			if email != "taro@example.com" || password != "password123" {
				t.Errorf("credentials = %q / %q", email, password)
			}
			return testSession("session-login"), nil
		},
		getCurrentUserFn: func(context.Context, string) (*model.User, error) {
			return &model.User{ID: "user-id-123", Email: "taro@example.com"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	w := httptest.NewRecorder()
	h.SignIn(w, newJSONRequest(http.MethodPost, "/auth/sign-in", `{"email":"taro@example.com","password":"password123"}`))

	assertStatus(t, w, http.StatusOK)
	if c := findCookie(w.Result(), middleware.SessionCookieName); c == nil || c.Value != "session-login" {
		t.Errorf("session cookie = %+v", c)
	}
}

func TestAuthHandler_SignIn_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		signInFn: func(context.Context, string, string) (*model.Session, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	w := httptest.NewRecorder()
	h.SignIn(w, newJSONRequest(http.MethodPost, "/auth/sign-in", `{"email":"taro@example.com","password":"wrong"}`))

	assertStatus(t, w, http.StatusUnauthorized)
	if body := decodeAPIError(t, w); body.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q", body.Code)
	}
}

func TestAuthHandler_Guest_CreatesSession(t *testing.T) {
	svc := &mockAuthService{
		signInGuestFn: func(context.Context) (*model.Session, error) {
			return testSession("session-guest"), nil
		},
		getCurrentUserFn: func(context.Context, string) (*model.User, error) {
			return &model.User{ID: "guest-1", Name: "ゲスト", IsGuest: true}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	w := httptest.NewRecorder()
	h.Guest(w, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))

	assertStatus(t, w, http.StatusCreated)
	var body userResponse
	decodeBody(t, w, &body)
	if !body.IsGuest {
		t.Error("is_guest = false, want true")
	}
}

// --- パスワード再設定 ---

func TestAuthHandler_ForgotPassword_Accepted(t *testing.T) {
	var gotEmail string
	svc := &mockAuthService{
		requestPasswordResetFn: func(_ context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	w := httptest.NewRecorder()
	h.ForgotPassword(w, newJSONRequest(http.MethodPost, "/auth/password/forgot", `{"email":"taro@example.com"}`))

	assertStatus(t, w, http.StatusAccepted)
	if gotEmail != "taro@example.com" {
		t.Errorf("email = %q", gotEmail)
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusNoContent},
		{"invalid token", model.NewInvalidResetTokenError(), http.StatusBadRequest},
		{"mismatch", model.NewPasswordMismatchError(), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				resetPasswordFn: func(_ context.Context, token, password, confirmation string) error {
					if token != "tok" || password != "newpassword1" || confirmation != "newpassword1" {
						t.Errorf("args = %q %q %q", token, password, confirmation)
					}
					return tt.err
				},
			}
			h := NewAuthHandler(svc, testAuthConfig())

			w := httptest.NewRecorder()
			h.ResetPassword(w, newJSONRequest(http.MethodPost, "/auth/password/reset",
				`{"token":"tok","password":"newpassword1","password_confirmation":"newpassword1"}`))

			assertStatus(t, w, tt.wantStatus)
		})
	}
}

// --- セッション管理 ---

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var loggedOut string
	svc := &mockAuthService{
		logoutFn: func(_ context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-to-delete"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	assertStatus(t, w, http.StatusNoContent)
	if loggedOut != "session-to-delete" {
		t.Errorf("logged out session = %q", loggedOut)
	}
	c := findCookie(w.Result(), middleware.SessionCookieName)
	if c == nil || c.MaxAge >= 0 {
		t.Errorf("session cookie should be cleared, got %+v", c)
	}
}

func TestAuthHandler_Logout_ServiceErrorStillClearsCookie(t *testing.T) {
	svc := &mockAuthService{
		logoutFn: func(context.Context, string) error {
			return errors.New("db down")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "s"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	assertStatus(t, w, http.StatusNoContent)
	if c := findCookie(w.Result(), middleware.SessionCookieName); c == nil || c.MaxAge >= 0 {
		t.Errorf("session cookie should be cleared, got %+v", c)
	}
}

func TestAuthHandler_Me_ReturnsUser(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(_ context.Context, sessionID string) (*model.User, error) {
			if sessionID != "valid-session" {
				return nil, model.NewUnauthorizedError()
			}
			return &model.User{ID: "user-id-123", Email: "test@example.com", Name: "Test User"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "valid-session"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	assertStatus(t, w, http.StatusOK)
	var body userResponse
	decodeBody(t, w, &body)
	if body.ID != "user-id-123" || body.Name != "Test User" {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthHandler_Me_Unauthorized(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(context.Context, string) (*model.User, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	t.Run("no cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("expired session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "expired"})
		w := httptest.NewRecorder()
		h.Me(w, req)
		assertStatus(t, w, http.StatusUnauthorized)
		if body := decodeAPIError(t, w); body.Code != model.ErrCodeUnauthorized {
			t.Errorf("code = %q", body.Code)
		}
	})
}

func TestGenerateState_IsRandomHex(t *testing.T) {
	a, err := generateState()
	if err != nil {
		t.Fatalf("generateState() error = %v", err)
	}
	b, _ := generateState()
	if len(a) != 32 {
		t.Errorf("len = %d, want 32", len(a))
	}
	if a == b {
		t.Error("state values should differ")
	}
}
