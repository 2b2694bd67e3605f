package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/models"
)

// ─────────────────────────────────────────────
// Fake services
// ─────────────────────────────────────────────

// Every fake method falls back to a zero result when its fn field is nil.

type fakeAuthService struct {
	registerFn        func(ctx context.Context, request models.RegisterRequest, proof models.CaptchaProof) (models.User, error)
	loginFn           func(ctx context.Context, request models.LoginRequest, proof models.CaptchaProof) (models.User, models.Token, error)
	logoutFn          func(ctx context.Context, user models.User) error
	resolveIdentityFn func(ctx context.Context, tokenString string) (models.User, error)
}

func (m *fakeAuthService) Register(ctx context.Context, request models.RegisterRequest, proof models.CaptchaProof) (models.User, error) {
	if m.registerFn == nil {
		return models.User{}, nil
	}
	return m.registerFn(ctx, request, proof)
}

func (m *fakeAuthService) Login(ctx context.Context, request models.LoginRequest, proof models.CaptchaProof) (models.User, models.Token, error) {
	if m.loginFn == nil {
		return models.User{}, models.Token{}, nil
	}
	return m.loginFn(ctx, request, proof)
}

func (m *fakeAuthService) Logout(ctx context.Context, user models.User) error {
	if m.logoutFn == nil {
		return nil
	}
	return m.logoutFn(ctx, user)
}

func (m *fakeAuthService) ResolveIdentity(ctx context.Context, tokenString string) (models.User, error) {
	if m.resolveIdentityFn == nil {
		return models.User{}, service.ErrTokenIsExpiredOrInvalid
	}
	return m.resolveIdentityFn(ctx, tokenString)
}

func (m *fakeAuthService) CreateToken(_ context.Context, _ models.User) (models.Token, error) {
	return models.Token{}, nil
}

func (m *fakeAuthService) ParseToken(_ context.Context, _ string) (models.Token, error) {
	return models.Token{}, service.ErrTokenIsExpiredOrInvalid
}

type fakeAdminService struct {
	dashboardFn   func(ctx context.Context) (models.Dashboard, error)
	recentUsersFn func(ctx context.Context) ([]models.User, error)
	createUserFn  func(ctx context.Context, actor models.User, request models.AdminCreateUserRequest) (models.User, error)
	changeRoleFn  func(ctx context.Context, actor models.User, targetID int64, role string) error
	setActiveFn   func(ctx context.Context, actor models.User, targetID int64, active bool) error
	unlockFn      func(ctx context.Context, actor models.User, targetID int64) error
	deleteFn      func(ctx context.Context, actor models.User, targetID int64) (models.DeleteResult, error)
	auditLogFn    func(ctx context.Context, limit int) ([]models.AuditEvent, error)
}

func (m *fakeAdminService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	if m.dashboardFn == nil {
		return models.Dashboard{}, nil
	}
	return m.dashboardFn(ctx)
}

func (m *fakeAdminService) RecentUsers(ctx context.Context) ([]models.User, error) {
	if m.recentUsersFn == nil {
		return nil, nil
	}
	return m.recentUsersFn(ctx)
}

func (m *fakeAdminService) CreateUser(ctx context.Context, actor models.User, request models.AdminCreateUserRequest) (models.User, error) {
	if m.createUserFn == nil {
		return models.User{}, nil
	}
	return m.createUserFn(ctx, actor, request)
}

func (m *fakeAdminService) ChangeRole(ctx context.Context, actor models.User, targetID int64, role string) error {
	if m.changeRoleFn == nil {
		return nil
	}
	return m.changeRoleFn(ctx, actor, targetID, role)
}

func (m *fakeAdminService) SetActive(ctx context.Context, actor models.User, targetID int64, active bool) error {
	if m.setActiveFn == nil {
		return nil
	}
	return m.setActiveFn(ctx, actor, targetID, active)
}

func (m *fakeAdminService) Unlock(ctx context.Context, actor models.User, targetID int64) error {
	if m.unlockFn == nil {
		return nil
	}
	return m.unlockFn(ctx, actor, targetID)
}

func (m *fakeAdminService) Delete(ctx context.Context, actor models.User, targetID int64) (models.DeleteResult, error) {
	if m.deleteFn == nil {
		return models.DeleteResult{}, nil
	}
	return m.deleteFn(ctx, actor, targetID)
}

func (m *fakeAdminService) AuditLog(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	if m.auditLogFn == nil {
		return nil, nil
	}
	return m.auditLogFn(ctx, limit)
}

type fakeProfileService struct {
	homeFn           func(ctx context.Context) (models.UserStats, error)
	directoryFn      func(ctx context.Context) (models.Directory, error)
	updateDetailsFn  func(ctx context.Context, user models.User, request models.ProfileDetailsRequest) (models.User, error)
	changePasswordFn func(ctx context.Context, user models.User, request models.PasswordChangeRequest) error
	updateAvatarFn   func(ctx context.Context, user models.User, upload models.AvatarUpload, r io.Reader) (models.User, error)
	removeAvatarFn   func(ctx context.Context, user models.User) (models.User, error)
}

func (m *fakeProfileService) Home(ctx context.Context) (models.UserStats, error) {
	if m.homeFn == nil {
		return models.UserStats{}, nil
	}
	return m.homeFn(ctx)
}

func (m *fakeProfileService) Directory(ctx context.Context) (models.Directory, error) {
	if m.directoryFn == nil {
		return models.Directory{}, nil
	}
	return m.directoryFn(ctx)
}

func (m *fakeProfileService) UpdateDetails(ctx context.Context, user models.User, request models.ProfileDetailsRequest) (models.User, error) {
	if m.updateDetailsFn == nil {
		return user, nil
	}
	return m.updateDetailsFn(ctx, user, request)
}

func (m *fakeProfileService) ChangePassword(ctx context.Context, user models.User, request models.PasswordChangeRequest) error {
	if m.changePasswordFn == nil {
		return nil
	}
	return m.changePasswordFn(ctx, user, request)
}

func (m *fakeProfileService) UpdateAvatar(ctx context.Context, user models.User, upload models.AvatarUpload, r io.Reader) (models.User, error) {
	if m.updateAvatarFn == nil {
		return user, nil
	}
	return m.updateAvatarFn(ctx, user, upload, r)
}

func (m *fakeProfileService) RemoveAvatar(ctx context.Context, user models.User) (models.User, error) {
	if m.removeAvatarFn == nil {
		return user, nil
	}
	return m.removeAvatarFn(ctx, user)
}

func (m *fakeProfileService) AvatarURL(_ context.Context, user models.User) string {
	if user.AvatarFilename != nil {
		return "/uploads/avatars/" + *user.AvatarFilename
	}
	return service.DefaultAvatarURL
}

// mockAppInfoService implements service.AppInfoService for testing.
type mockAppInfoService struct {
	version   string
	healthErr error
}

func (m *mockAppInfoService) GetAppVersion(_ context.Context) string {
	return m.version
}

func (m *mockAppInfoService) Health(_ context.Context) error {
	return m.healthErr
}

// fakeVerifier hands out a fixed question and counts issued challenges.
type fakeVerifier struct {
	mode     captcha.Mode
	question string
	issued   int
	verifyOK bool
}

func (v *fakeVerifier) Mode() captcha.Mode { return v.mode }

func (v *fakeVerifier) SiteKey() string {
	if v.mode == captcha.ModeTurnstile {
		return "site-key"
	}
	return ""
}

func (v *fakeVerifier) Issue(_ context.Context, _, _ string) (string, error) {
	if v.mode != captcha.ModeMath {
		return "", captcha.ErrChallengeUnavailable
	}
	v.issued++
	return v.question, nil
}

func (v *fakeVerifier) Current(_ context.Context, _, _ string) (string, error) {
	if v.mode != captcha.ModeMath {
		return "", nil
	}
	return v.question, nil
}

func (v *fakeVerifier) Verify(_ context.Context, _ models.CaptchaProof) bool {
	return v.verifyOK
}

// ─────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────

const (
	testCookieName = "access_token_cookie"
	validToken     = "valid-token"
)

func testConfig() *config.StructuredConfig {
	return &config.StructuredConfig{
		App:    config.App{TokenDuration: 2 * time.Hour},
		Server: config.Server{CookieName: testCookieName},
		Storage: config.Storage{
			Avatars: config.Avatars{MaxBytes: 2 << 20},
		},
		Workers: config.Workers{SweepInterval: time.Minute},
	}
}

type fixture struct {
	auth     *fakeAuthService
	admin    *fakeAdminService
	profile  *fakeProfileService
	appInfo  *mockAppInfoService
	verifier *fakeVerifier

	handler *Handler
	router  *chi.Mux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, testConfig())
}

func newFixtureWithConfig(t *testing.T, cfg *config.StructuredConfig) *fixture {
	t.Helper()

	f := &fixture{
		auth:     &fakeAuthService{},
		admin:    &fakeAdminService{},
		profile:  &fakeProfileService{},
		appInfo:  &mockAppInfoService{version: "test-version"},
		verifier: &fakeVerifier{mode: captcha.ModeMath, question: "What is 7 + 3?"},
	}

	services := &service.Services{
		AuthService:    f.auth,
		AdminService:   f.admin,
		ProfileService: f.profile,
		AppInfoService: f.appInfo,
	}
	f.handler = NewHandler(services, f.verifier, nil, cfg, logger.Nop())
	f.router = f.handler.Init()

	return f
}

// signIn makes the returned identity cookie resolve to user.
func (f *fixture) signIn(user models.User) *http.Cookie {
	f.auth.resolveIdentityFn = func(_ context.Context, token string) (models.User, error) {
		if token == validToken {
			return user, nil
		}
		return models.User{}, service.ErrTokenIsExpiredOrInvalid
	}
	return &http.Cookie{Name: testCookieName, Value: validToken}
}

func (f *fixture) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func adminUser() models.User {
	return models.User{UserID: 1, Username: "root", Email: "root@example.com", Role: models.RoleAdmin, IsActive: true}
}

func regularUser() models.User {
	fullName := "Bob Stone"
	return models.User{UserID: 3, Username: "bob", Email: "bob@example.com", FullName: &fullName, Role: models.RoleUser, IsActive: true}
}

// ─────────────────────────────────────────────
// Request and response helpers
// ─────────────────────────────────────────────

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) pageView {
	t.Helper()

	var page pageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page), rec.Body.String())
	return page
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// flashNotices decodes the notices queued by a response.
func flashNotices(t *testing.T, rec *httptest.ResponseRecorder) []models.Notice {
	t.Helper()

	cookie := responseCookie(rec, flashCookieName)
	if cookie == nil || cookie.Value == "" {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	require.NoError(t, err)

	var notices []models.Notice
	require.NoError(t, json.Unmarshal(payload, &notices))
	return notices
}
