package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/williamGois/madnezz-api-sub001/internal/dto"
	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/service"
	"github.com/williamGois/madnezz-api-sub001/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string) error {
	return m.logoutErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock UserService ──

type mockUserService struct {
	createResult *dto.UserResponse
	createErr    error
	getResult    *dto.UserResponse
	getErr       error
	updateResult *dto.UserResponse
	updateErr    error
	statusErr    error
	listResult   []dto.UserResponse
	listTotal    int64
	listErr      error
	importResult *dto.ImportUserResponse
	importErr    error
}

func (m *mockUserService) CreateUser(_ context.Context, _ string, _ *dto.CreateUserRequest) (*dto.UserResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockUserService) GetUser(_ context.Context, _, _ string) (*dto.UserResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockUserService) UpdateUser(_ context.Context, _, _ string, _ *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockUserService) UpdateUserStatus(_ context.Context, _, _ string, _ *dto.UpdateUserStatusRequest) error {
	return m.statusErr
}
func (m *mockUserService) ListUsers(_ context.Context, _ string, _ *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockUserService) ImportStoreManagers(_ context.Context, _, _ string, _ io.Reader) (*dto.ImportUserResponse, error) {
	return m.importResult, m.importErr
}

// ── Mock AccessService ──

type mockAccessService struct {
	canAccessUnit bool
	canAccessErr  error
	permsResult   []dto.EffectivePermissionResponse
	permsErr      error
	unitsResult   []model.OrganizationUnit
	unitsErr      error
}

func (m *mockAccessService) CanAccessUnit(_ context.Context, _, _ string) (bool, error) {
	return m.canAccessUnit, m.canAccessErr
}
func (m *mockAccessService) CanAccessDepartment(_ context.Context, _ string, _ model.DepartmentType) (bool, error) {
	return m.canAccessUnit, m.canAccessErr
}
func (m *mockAccessService) CanAccessResource(_ context.Context, _, _ string, _ model.DepartmentType) (bool, error) {
	return m.canAccessUnit, m.canAccessErr
}
func (m *mockAccessService) AccessibleUnits(_ context.Context, _ string) ([]model.OrganizationUnit, error) {
	return m.unitsResult, m.unitsErr
}
func (m *mockAccessService) EffectivePermissions(_ context.Context, _ string) ([]dto.EffectivePermissionResponse, error) {
	return m.permsResult, m.permsErr
}
func (m *mockAccessService) CanManageUser(_ context.Context, _, _ string) (bool, error) {
	return m.canAccessUnit, m.canAccessErr
}
func (m *mockAccessService) ValidateDelegation(_ context.Context, _ string, _ model.PositionLevel, _ model.DepartmentType) error {
	return m.canAccessErr
}

// ── Mock OrganizationService ──

type mockOrganizationService struct {
	createOrgResult *dto.OrganizationResponse
	createOrgErr    error
	regionResult    *dto.CreateRegionResponse
	regionErr       error
	storeResult     *dto.CreateStoreResponse
	storeErr        error
	getResult       *dto.OrganizationResponse
	getErr          error
	listResult      []dto.OrganizationResponse
	listTotal       int64
	listErr         error
	unitsResult     []dto.UnitResponse
	unitsErr        error
}

func (m *mockOrganizationService) CreateOrganization(_ context.Context, _ string, _ *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	return m.createOrgResult, m.createOrgErr
}
func (m *mockOrganizationService) CreateRegion(_ context.Context, _, _ string, _ *dto.CreateRegionRequest) (*dto.CreateRegionResponse, error) {
	return m.regionResult, m.regionErr
}
func (m *mockOrganizationService) CreateStore(_ context.Context, _, _ string, _ *dto.CreateStoreRequest) (*dto.CreateStoreResponse, error) {
	return m.storeResult, m.storeErr
}
func (m *mockOrganizationService) GetOrganization(_ context.Context, _, _ string) (*dto.OrganizationResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockOrganizationService) ListOrganizations(_ context.Context, _ string, _ *dto.OrganizationListRequest) ([]dto.OrganizationResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockOrganizationService) ListUnits(_ context.Context, _, _ string) ([]dto.UnitResponse, error) {
	return m.unitsResult, m.unitsErr
}

// ── Mock ContextService ──

type mockContextService struct {
	switchResult *dto.ContextResponse
	switchErr    error
	resetResult  *dto.ContextResponse
	resetErr     error
	getResult    *dto.ContextResponse
	getErr       error
}

func (m *mockContextService) SwitchContext(_ context.Context, _ string, _ *dto.SwitchContextRequest) (*dto.ContextResponse, error) {
	return m.switchResult, m.switchErr
}
func (m *mockContextService) ResetContext(_ context.Context, _ string) (*dto.ContextResponse, error) {
	return m.resetResult, m.resetErr
}
func (m *mockContextService) GetContext(_ context.Context, _ string) (*dto.ContextResponse, error) {
	return m.getResult, m.getErr
}

// ═══════════════════════════════════════════════════════════
// 测试辅助
// ═══════════════════════════════════════════════════════════

// injectAuth 模拟 JWTAuth 中间件注入的上下文
func injectAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	return &resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler 测试
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	authSvc := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    900,
			User:         dto.UserResponse{ID: "user-1", Email: "root@madnezz.com"},
		},
	}
	h := NewAuthHandler(authSvc, &mockUserService{})

	r := gin.New()
	r.POST("/login", h.Login)

	w := doJSON(r, http.MethodPost, "/login", dto.LoginRequest{
		Email:    "root@madnezz.com",
		Password: "senha-segura",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, &mockUserService{})

	r := gin.New()
	r.POST("/login", h.Login)

	w := doJSON(r, http.MethodPost, "/login", dto.LoginRequest{
		Email:    "root@madnezz.com",
		Password: "senha-errada",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestAuthHandler_Login_BadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	r := gin.New()
	r.POST("/login", h.Login)

	// 缺少 password
	w := doJSON(r, http.MethodPost, "/login", map[string]string{"email": "root@madnezz.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ContextHandler 测试
// ═══════════════════════════════════════════════════════════

func TestContextHandler_Switch_Success(t *testing.T) {
	ctxSvc := &mockContextService{
		switchResult: &dto.ContextResponse{
			OriginalRole: "master",
			CurrentRole:  "gr",
			Switched:     true,
		},
	}
	h := NewContextHandler(ctxSvc)

	r := gin.New()
	r.POST("/context/switch", injectAuth("user-1", "master"), h.SwitchContext)

	w := doJSON(r, http.MethodPost, "/context/switch", dto.SwitchContextRequest{
		Role:           "gr",
		OrganizationID: "11111111-1111-1111-1111-111111111111",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
}

func TestContextHandler_Switch_DeniedForNonMaster(t *testing.T) {
	h := NewContextHandler(&mockContextService{switchErr: model.ErrContextSwitchDenied})

	r := gin.New()
	r.POST("/context/switch", injectAuth("user-2", "go"), h.SwitchContext)

	w := doJSON(r, http.MethodPost, "/context/switch", dto.SwitchContextRequest{
		Role:           "gr",
		OrganizationID: "11111111-1111-1111-1111-111111111111",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际 %d", w.Code)
	}
}

func TestContextHandler_Switch_Unauthenticated(t *testing.T) {
	h := NewContextHandler(&mockContextService{})

	r := gin.New()
	r.POST("/context/switch", h.SwitchContext) // 无 injectAuth

	w := doJSON(r, http.MethodPost, "/context/switch", dto.SwitchContextRequest{
		Role:           "gr",
		OrganizationID: "11111111-1111-1111-1111-111111111111",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// OrganizationHandler 测试
// ═══════════════════════════════════════════════════════════

func TestOrganizationHandler_Create_Success(t *testing.T) {
	orgSvc := &mockOrganizationService{
		createOrgResult: &dto.OrganizationResponse{ID: "org-1", Name: "MADNEZZ", Code: "MADNEZZ"},
	}
	h := NewOrganizationHandler(orgSvc)

	r := gin.New()
	r.POST("/organizations", injectAuth("user-1", "master"), h.CreateOrganization)

	w := doJSON(r, http.MethodPost, "/organizations", dto.CreateOrganizationRequest{
		Name: "MADNEZZ",
		Code: "MADNEZZ",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
}

func TestOrganizationHandler_Create_DuplicateCode(t *testing.T) {
	h := NewOrganizationHandler(&mockOrganizationService{createOrgErr: service.ErrOrganizationCodeExists})

	r := gin.New()
	r.POST("/organizations", injectAuth("user-1", "master"), h.CreateOrganization)

	w := doJSON(r, http.MethodPost, "/organizations", dto.CreateOrganizationRequest{
		Name: "MADNEZZ",
		Code: "MADNEZZ",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际 %d", w.Code)
	}
	resp := parseEnvelope(t, w)
	if resp.Code != 13002 {
		t.Errorf("期望业务码 13002，实际 %d", resp.Code)
	}
}

func TestOrganizationHandler_CreateRegion_NotFound(t *testing.T) {
	h := NewOrganizationHandler(&mockOrganizationService{regionErr: service.ErrOrganizationNotFound})

	r := gin.New()
	r.POST("/organizations/:id/regions", injectAuth("user-1", "master"), h.CreateRegion)

	w := doJSON(r, http.MethodPost, "/organizations/org-ghost/regions", dto.CreateRegionRequest{
		Name: "Região Norte",
		Code: "RN",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler 测试
// ═══════════════════════════════════════════════════════════

func TestUserHandler_Create_Forbidden(t *testing.T) {
	h := NewUserHandler(&mockUserService{createErr: service.ErrNoPermission}, &mockAccessService{})

	r := gin.New()
	r.POST("/users", injectAuth("user-3", "gr"), h.CreateUser)

	w := doJSON(r, http.MethodPost, "/users", dto.CreateUserRequest{
		Name:     "Gerente",
		Email:    "gerente@madnezz.com",
		Password: "senha-segura",
		Role:     "store_manager",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际 %d", w.Code)
	}
}

func TestUserHandler_Create_EmailConflict(t *testing.T) {
	h := NewUserHandler(&mockUserService{createErr: service.ErrEmailExists}, &mockAccessService{})

	r := gin.New()
	r.POST("/users", injectAuth("user-1", "master"), h.CreateUser)

	w := doJSON(r, http.MethodPost, "/users", dto.CreateUserRequest{
		Name:     "Gerente",
		Email:    "gerente@madnezz.com",
		Password: "senha-segura",
		Role:     "master",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际 %d", w.Code)
	}
}

func TestUserHandler_EffectivePermissions(t *testing.T) {
	accessSvc := &mockAccessService{
		permsResult: []dto.EffectivePermissionResponse{
			{UnitID: "unit-1", Department: "operations", Level: "gr"},
			{UnitID: "unit-2", Department: "operations", Level: "gr"},
		},
	}
	h := NewUserHandler(&mockUserService{}, accessSvc)

	r := gin.New()
	r.GET("/users/me/permissions", injectAuth("user-3", "gr"), h.GetEffectivePermissions)

	req := httptest.NewRequest(http.MethodGet, "/users/me/permissions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
}
