package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/williamGois/madnezz-api-sub001/internal/dto"
	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/repository"
)

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailExists          = errors.New("邮箱已被注册")
	ErrOrganizationRequired = errors.New("该角色必须指定组织")
	ErrRegionRequired       = errors.New("创建 GR 必须指定大区")
	ErrStoreRequired        = errors.New("创建店长必须指定门店")
	ErrImportEmptySheet     = errors.New("导入文件没有数据行")
)

// defaultTitles 各角色职位的默认头衔
var defaultTitles = map[model.HierarchyRole]string{
	model.RoleGO:           "General Officer",
	model.RoleGR:           "Regional Manager",
	model.RoleStoreManager: "Store Manager",
}

// UserService 层级用户管理
// 创建路径按角色分流：MASTER 无组织无职位；GO 挂 company 根；
// GR 挂指定大区；店长挂指定门店。用户与职位在同一事务内落库
type UserService interface {
	CreateUser(ctx context.Context, actorID string, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, actorID, userID string) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actorID, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	UpdateUserStatus(ctx context.Context, actorID, userID string, req *dto.UpdateUserStatusRequest) error
	ListUsers(ctx context.Context, actorID string, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	// ImportStoreManagers 从 xlsx 批量开通店长：
	// 列依次为 姓名/邮箱/初始密码/电话/门店编码，逐行独立事务，失败行不影响其余行
	ImportStoreManagers(ctx context.Context, actorID, organizationID string, r io.Reader) (*dto.ImportUserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	access AccessService
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, access AccessService, logger *zap.Logger) UserService {
	return &userService{repo: repo, access: access, logger: logger}
}

// hashPassword bcrypt 哈希
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *userService) CreateUser(ctx context.Context, actorID string, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	actor, err := s.repo.User.GetByID(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	targetRole, err := model.ParseHierarchyRole(req.Role)
	if err != nil {
		return nil, err
	}

	// 授权：未切换的 MASTER 可创建任意角色；生效 GO 仅可在本组织创建更低角色
	orgID := req.OrganizationID
	switch actor.CurrentRole() {
	case model.RoleMaster:
		// 放行
	case model.RoleGO:
		if !model.RoleGO.CanManageLevel(targetRole) {
			return nil, ErrNoPermission
		}
		orgID = actor.CurrentOrganizationID()
	default:
		return nil, ErrNoPermission
	}

	if targetRole != model.RoleMaster && orgID == "" {
		return nil, ErrOrganizationRequired
	}

	var user *model.User
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		exists, err := tx.User.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailExists
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return err
		}

		// 角色分流：确定用户工厂与职位挂载单元
		var unit *model.OrganizationUnit
		switch targetRole {
		case model.RoleMaster:
			user = model.NewMaster(req.Name, req.Email, hash)
		case model.RoleGO:
			user = model.NewGO(req.Name, req.Email, hash, orgID)
			unit, err = tx.OrganizationUnit.GetRoot(ctx, orgID)
			if err != nil {
				if notFound(err) {
					return ErrCompanyUnitNotFound
				}
				return err
			}
		case model.RoleGR:
			if req.RegionID == "" {
				return ErrRegionRequired
			}
			unit, err = tx.OrganizationUnit.GetByID(ctx, req.RegionID)
			if err != nil {
				if notFound(err) {
					return ErrRegionNotFound
				}
				return err
			}
			if unit.Type != model.UnitTypeRegional || unit.OrganizationID != orgID || !unit.IsActive {
				return ErrRegionNotFound
			}
			user = model.NewGR(req.Name, req.Email, hash, orgID)
		case model.RoleStoreManager:
			if req.StoreID == "" {
				return ErrStoreRequired
			}
			unit, err = tx.OrganizationUnit.GetByID(ctx, req.StoreID)
			if err != nil {
				if notFound(err) {
					return ErrStoreNotFound
				}
				return err
			}
			if unit.Type != model.UnitTypeStore || unit.OrganizationID != orgID || !unit.IsActive {
				return ErrStoreNotFound
			}
			user = model.NewStoreManager(req.Name, req.Email, hash, orgID, unit.OrganizationUnitID)
		}
		user.Phone = req.Phone

		if err := tx.User.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return err
		}
		if unit == nil {
			return nil
		}

		level, _ := targetRole.PositionLevel()
		title := req.Title
		if title == "" {
			title = defaultTitles[targetRole]
		}
		pos := &model.Position{
			OrganizationID:     orgID,
			OrganizationUnitID: unit.OrganizationUnitID,
			UserID:             user.UserID,
			Level:              level,
			Title:              title,
			IsActive:           true,
		}
		if err := tx.Position.Create(ctx, pos); err != nil {
			return err
		}
		return s.assignDepartments(ctx, tx, pos, orgID, targetRole, req.Departments)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建用户",
		zap.String("user_id", user.UserID),
		zap.String("role", string(targetRole)),
		zap.String("actor_id", actorID))
	return toUserResponse(user), nil
}

// assignDepartments 解析并授权职能部门
// GO 级别天然覆盖全部部门不建关联；GR/店长未指定时默认 operations
func (s *userService) assignDepartments(ctx context.Context, tx *repository.Repository, pos *model.Position, orgID string, role model.HierarchyRole, raw []string) error {
	if role == model.RoleGO {
		return nil
	}
	if len(raw) == 0 {
		raw = []string{string(model.DeptOperations)}
	}
	depts := make([]model.Department, 0, len(raw))
	for _, v := range raw {
		t, err := model.ParseDepartmentType(v)
		if err != nil {
			return err
		}
		d, err := tx.Department.GetByType(ctx, orgID, t)
		if err != nil {
			return err
		}
		depts = append(depts, *d)
	}
	return tx.Position.AssignDepartments(ctx, pos, depts)
}

func (s *userService) GetUser(ctx context.Context, actorID, userID string) (*dto.UserResponse, error) {
	if actorID != userID {
		ok, err := s.access.CanManageUser(ctx, actorID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoPermission
		}
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if actorID != userID {
		ok, err := s.access.CanManageUser(ctx, actorID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoPermission
		}
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.repo.User.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
		user.Email = *req.Email
		user.EmailVerifiedAt = nil
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateUserStatus(ctx context.Context, actorID, userID string, req *dto.UpdateUserStatusRequest) error {
	ok, err := s.access.CanManageUser(ctx, actorID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPermission
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	user.Status = req.Status
	if err := s.repo.User.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("更新用户状态",
		zap.String("user_id", userID),
		zap.String("status", req.Status),
		zap.String("actor_id", actorID))
	return nil
}

func (s *userService) ListUsers(ctx context.Context, actorID string, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	actor, err := s.repo.User.GetByID(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}

	filters := &repository.UserListFilters{
		OrganizationID: req.OrganizationID,
		Role:           req.Role,
		Status:         req.Status,
		Keyword:        req.Keyword,
	}
	// MASTER 可按任意组织过滤；GO 强制限定在本组织
	switch actor.CurrentRole() {
	case model.RoleMaster:
	case model.RoleGO:
		filters.OrganizationID = actor.CurrentOrganizationID()
	default:
		return nil, 0, ErrNoPermission
	}

	users, total, err := s.repo.User.ListWithFilters(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) ImportStoreManagers(ctx context.Context, actorID, organizationID string, r io.Reader) (*dto.ImportUserResponse, error) {
	actor, err := s.repo.User.GetByID(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	switch actor.CurrentRole() {
	case model.RoleMaster:
	case model.RoleGO:
		if actor.CurrentOrganizationID() != organizationID {
			return nil, ErrNoPermission
		}
	default:
		return nil, ErrNoPermission
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, ErrImportEmptySheet
	}

	resp := &dto.ImportUserResponse{}
	for i, row := range rows[1:] { // 第一行为表头
		rowNum := i + 2
		resp.Total++
		if err := s.importOneManager(ctx, organizationID, row); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{Row: rowNum, Reason: err.Error()})
			continue
		}
		resp.Success++
	}

	s.logger.Info("批量导入店长完成",
		zap.String("organization_id", organizationID),
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed))
	return resp, nil
}

// importOneManager 导入单行店长，独立事务
func (s *userService) importOneManager(ctx context.Context, organizationID string, row []string) error {
	if len(row) < 5 {
		return fmt.Errorf("列数不足，至少需要 姓名/邮箱/密码/电话/门店编码 五列")
	}
	name := strings.TrimSpace(row[0])
	email := strings.TrimSpace(row[1])
	password := strings.TrimSpace(row[2])
	phone := strings.TrimSpace(row[3])
	storeCode := normalizeCode(row[4])
	if name == "" || email == "" || password == "" || storeCode == "" {
		return fmt.Errorf("姓名/邮箱/密码/门店编码不能为空")
	}

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		store, err := tx.OrganizationUnit.GetByCodeAndType(ctx, organizationID, model.UnitTypeStore, storeCode)
		if err != nil {
			if notFound(err) {
				return fmt.Errorf("门店编码 %s 不存在", storeCode)
			}
			return err
		}

		exists, err := tx.User.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailExists
		}

		hash, err := hashPassword(password)
		if err != nil {
			return err
		}
		user := model.NewStoreManager(name, email, hash, organizationID, store.OrganizationUnitID)
		user.Phone = phone
		if err := tx.User.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return err
		}

		pos := &model.Position{
			OrganizationID:     organizationID,
			OrganizationUnitID: store.OrganizationUnitID,
			UserID:             user.UserID,
			Level:              model.LevelStoreManager,
			Title:              defaultTitles[model.RoleStoreManager],
			IsActive:           true,
		}
		if err := tx.Position.Create(ctx, pos); err != nil {
			return err
		}
		return s.assignDepartments(ctx, tx, pos, organizationID, model.RoleStoreManager, nil)
	})
}

// toUserResponse 构造用户响应（脱敏）
func toUserResponse(user *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:            user.UserID,
		Name:          user.Name,
		Email:         user.Email,
		Phone:         user.Phone,
		HierarchyRole: string(user.HierarchyRole),
		EffectiveRole: string(user.CurrentRole()),
		Status:        user.Status,
		Permissions:   user.Permissions,
	}
	if user.OrganizationID != nil {
		resp.OrganizationID = *user.OrganizationID
	}
	if user.StoreID != nil {
		resp.StoreID = *user.StoreID
	}
	if user.Organization != nil {
		resp.Organization = &dto.OrganizationSummary{
			ID:   user.Organization.OrganizationID,
			Name: user.Organization.Name,
			Code: user.Organization.Code,
		}
	}
	if user.Context != nil {
		resp.Context = toContextResponse(user)
	}
	return resp
}
