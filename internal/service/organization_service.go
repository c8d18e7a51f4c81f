package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/williamGois/madnezz-api-sub001/internal/dto"
	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/repository"
)

var (
	ErrOrganizationNotFound   = errors.New("组织不存在")
	ErrOrganizationCodeExists = errors.New("组织编码已存在")
	ErrRegionCodeExists       = errors.New("大区编码在该组织内已存在")
	ErrStoreCodeExists        = errors.New("门店编码在该组织内已存在")
	ErrCompanyUnitNotFound    = errors.New("组织缺少 company 根单元")
	ErrRegionNotFound         = errors.New("大区不存在")
	ErrStoreNotFound          = errors.New("门店不存在")
	ErrStoreNotInOrganization = errors.New("门店不属于该组织")
)

// departmentNames 建组织时初始化六个职能部门的显示名
var departmentNames = map[model.DepartmentType]string{
	model.DeptAdministrative: "Administrative",
	model.DeptFinancial:      "Financial",
	model.DeptMarketing:      "Marketing",
	model.DeptOperations:     "Operations",
	model.DeptTrade:          "Trade",
	model.DeptMacro:          "Macro",
}

// OrganizationService 组织与组织单元生命周期
// 三条创建链路（组织/大区/门店）都在单个事务内完成：
// 应用层先做唯一性预检查给出友好错误，并发竞争由数据库唯一约束兜底，
// 约束冲突统一归一化为对应的 *Exists 错误
type OrganizationService interface {
	// CreateOrganization 创建组织：组织行 + company 根单元 + 六个职能部门，
	// 可选同时开通首位 GO（仅 MASTER）
	CreateOrganization(ctx context.Context, actorID string, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error)
	// CreateRegion 在 company 根下创建大区（MASTER 或本组织 GO）
	CreateRegion(ctx context.Context, actorID, organizationID string, req *dto.CreateRegionRequest) (*dto.CreateRegionResponse, error)
	// CreateStore 在大区下创建门店，可选同时开通店长（MASTER 或本组织 GO）
	CreateStore(ctx context.Context, actorID, organizationID string, req *dto.CreateStoreRequest) (*dto.CreateStoreResponse, error)
	GetOrganization(ctx context.Context, actorID, organizationID string) (*dto.OrganizationResponse, error)
	ListOrganizations(ctx context.Context, actorID string, req *dto.OrganizationListRequest) ([]dto.OrganizationResponse, int64, error)
	ListUnits(ctx context.Context, actorID, organizationID string) ([]dto.UnitResponse, error)
}

type organizationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOrganizationService 创建 OrganizationService 实例
func NewOrganizationService(repo *repository.Repository, logger *zap.Logger) OrganizationService {
	return &organizationService{repo: repo, logger: logger}
}

// normalizeCode 编码统一大写去空白后比较与存储
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// requireActor 解析操作者
func (s *organizationService) requireActor(ctx context.Context, actorID string) (*model.User, error) {
	actor, err := s.repo.User.GetByID(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !actor.IsActive() {
		return nil, ErrNoPermission
	}
	return actor, nil
}

// requireMasterOrOrgGO 建大区/建门店的统一守卫：
// 未切换的 MASTER 放行；生效角色为 GO 时必须落在目标组织
func (s *organizationService) requireMasterOrOrgGO(ctx context.Context, actorID, organizationID string) (*model.User, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	switch actor.CurrentRole() {
	case model.RoleMaster:
		return actor, nil
	case model.RoleGO:
		if actor.CurrentOrganizationID() == organizationID {
			return actor, nil
		}
	}
	return nil, ErrNoPermission
}

func (s *organizationService) CreateOrganization(ctx context.Context, actorID string, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.CurrentRole() != model.RoleMaster {
		return nil, ErrNoPermission
	}

	code := normalizeCode(req.Code)
	org := &model.Organization{Name: req.Name, Code: code, IsActive: true}
	var root *model.OrganizationUnit
	var goUserID string

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Organization.ExistsByCode(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			return ErrOrganizationCodeExists
		}
		if err := tx.Organization.Create(ctx, org); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOrganizationCodeExists
			}
			return err
		}

		root = &model.OrganizationUnit{
			OrganizationID: org.OrganizationID,
			Name:           req.Name,
			Code:           code,
			Type:           model.UnitTypeCompany,
			IsActive:       true,
		}
		if err := tx.OrganizationUnit.Create(ctx, root); err != nil {
			return err
		}

		depts := make([]model.Department, 0, len(model.AllDepartmentTypes))
		for _, t := range model.AllDepartmentTypes {
			depts = append(depts, model.Department{
				OrganizationID: org.OrganizationID,
				Type:           t,
				Name:           departmentNames[t],
				IsActive:       true,
			})
		}
		if err := tx.Department.CreateBatch(ctx, depts); err != nil {
			return err
		}

		if req.GO != nil {
			goUser, err := s.provisionUser(ctx, tx, req.GO, func(hash string) *model.User {
				return model.NewGO(req.GO.Name, req.GO.Email, hash, org.OrganizationID)
			})
			if err != nil {
				return err
			}
			goUserID = goUser.UserID
			pos := &model.Position{
				OrganizationID:     org.OrganizationID,
				OrganizationUnitID: root.OrganizationUnitID,
				UserID:             goUser.UserID,
				Level:              model.LevelGO,
				Title:              "General Officer",
				IsActive:           true,
			}
			if err := tx.Position.Create(ctx, pos); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建组织",
		zap.String("organization_id", org.OrganizationID),
		zap.String("code", org.Code),
		zap.String("actor_id", actorID))

	resp := toOrganizationResponse(org)
	resp.RootUnit = toUnitResponse(root)
	resp.GOUserID = goUserID
	return resp, nil
}

func (s *organizationService) CreateRegion(ctx context.Context, actorID, organizationID string, req *dto.CreateRegionRequest) (*dto.CreateRegionResponse, error) {
	if _, err := s.requireMasterOrOrgGO(ctx, actorID, organizationID); err != nil {
		return nil, err
	}

	org, err := s.repo.Organization.GetByID(ctx, organizationID)
	if err != nil {
		if notFound(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}

	code := normalizeCode(req.Code)
	var region *model.OrganizationUnit

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		root, err := tx.OrganizationUnit.GetRoot(ctx, org.OrganizationID)
		if err != nil {
			if notFound(err) {
				return ErrCompanyUnitNotFound
			}
			return err
		}

		exists, err := tx.OrganizationUnit.ExistsByCodeAndType(ctx, org.OrganizationID, model.UnitTypeRegional, code)
		if err != nil {
			return err
		}
		if exists {
			return ErrRegionCodeExists
		}

		region = &model.OrganizationUnit{
			OrganizationID: org.OrganizationID,
			ParentID:       &root.OrganizationUnitID,
			Name:           req.Name,
			Code:           code,
			Type:           model.UnitTypeRegional,
			IsActive:       true,
		}
		if err := tx.OrganizationUnit.Create(ctx, region); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrRegionCodeExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建大区",
		zap.String("organization_id", org.OrganizationID),
		zap.String("region_id", region.OrganizationUnitID),
		zap.String("code", region.Code))
	return &dto.CreateRegionResponse{Region: *toUnitResponse(region)}, nil
}

func (s *organizationService) CreateStore(ctx context.Context, actorID, organizationID string, req *dto.CreateStoreRequest) (*dto.CreateStoreResponse, error) {
	if _, err := s.requireMasterOrOrgGO(ctx, actorID, organizationID); err != nil {
		return nil, err
	}

	org, err := s.repo.Organization.GetByID(ctx, organizationID)
	if err != nil {
		if notFound(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}

	code := normalizeCode(req.Code)
	var store *model.OrganizationUnit
	var managerID string

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		region, err := tx.OrganizationUnit.GetByID(ctx, req.RegionID)
		if err != nil {
			if notFound(err) {
				return ErrRegionNotFound
			}
			return err
		}
		if region.Type != model.UnitTypeRegional || region.OrganizationID != org.OrganizationID || !region.IsActive {
			return ErrRegionNotFound
		}

		exists, err := tx.OrganizationUnit.ExistsByCodeAndType(ctx, org.OrganizationID, model.UnitTypeStore, code)
		if err != nil {
			return err
		}
		if exists {
			return ErrStoreCodeExists
		}

		store = &model.OrganizationUnit{
			OrganizationID: org.OrganizationID,
			ParentID:       &region.OrganizationUnitID,
			Name:           req.Name,
			Code:           code,
			Type:           model.UnitTypeStore,
			IsActive:       true,
		}
		if err := tx.OrganizationUnit.Create(ctx, store); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrStoreCodeExists
			}
			return err
		}

		if req.Manager != nil {
			manager, err := s.provisionUser(ctx, tx, req.Manager, func(hash string) *model.User {
				return model.NewStoreManager(req.Manager.Name, req.Manager.Email, hash, org.OrganizationID, store.OrganizationUnitID)
			})
			if err != nil {
				return err
			}
			managerID = manager.UserID

			pos := &model.Position{
				OrganizationID:     org.OrganizationID,
				OrganizationUnitID: store.OrganizationUnitID,
				UserID:             manager.UserID,
				Level:              model.LevelStoreManager,
				Title:              "Store Manager",
				IsActive:           true,
			}
			if err := tx.Position.Create(ctx, pos); err != nil {
				return err
			}

			// 店长默认授权 operations，可由请求覆盖
			deptTypes := req.Departments
			if len(deptTypes) == 0 {
				deptTypes = []string{string(model.DeptOperations)}
			}
			depts := make([]model.Department, 0, len(deptTypes))
			for _, raw := range deptTypes {
				t, err := model.ParseDepartmentType(raw)
				if err != nil {
					return err
				}
				d, err := tx.Department.GetByType(ctx, org.OrganizationID, t)
				if err != nil {
					return err
				}
				depts = append(depts, *d)
			}
			if err := tx.Position.AssignDepartments(ctx, pos, depts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建门店",
		zap.String("organization_id", org.OrganizationID),
		zap.String("store_id", store.OrganizationUnitID),
		zap.String("code", store.Code))
	return &dto.CreateStoreResponse{Store: *toUnitResponse(store), ManagerUserID: managerID}, nil
}

// provisionUser 在事务内创建随组织/门店开通的用户
func (s *organizationService) provisionUser(ctx context.Context, tx *repository.Repository, req *dto.ProvisionUser, build func(hash string) *model.User) (*model.User, error) {
	exists, err := tx.User.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := build(hash)
	user.Phone = req.Phone
	if err := tx.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, actorID, organizationID string) (*dto.OrganizationResponse, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.CurrentRole() != model.RoleMaster && actor.CurrentOrganizationID() != organizationID {
		return nil, ErrNoPermission
	}

	org, err := s.repo.Organization.GetByID(ctx, organizationID)
	if err != nil {
		if notFound(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}

	resp := toOrganizationResponse(org)
	if root, err := s.repo.OrganizationUnit.GetRoot(ctx, organizationID); err == nil {
		resp.RootUnit = toUnitResponse(root)
	}
	return resp, nil
}

func (s *organizationService) ListOrganizations(ctx context.Context, actorID string, req *dto.OrganizationListRequest) ([]dto.OrganizationResponse, int64, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if actor.CurrentRole() != model.RoleMaster {
		return nil, 0, ErrNoPermission
	}

	orgs, total, err := s.repo.Organization.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		result = append(result, *toOrganizationResponse(&orgs[i]))
	}
	return result, total, nil
}

func (s *organizationService) ListUnits(ctx context.Context, actorID, organizationID string) ([]dto.UnitResponse, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.CurrentRole() != model.RoleMaster && actor.CurrentOrganizationID() != organizationID {
		return nil, ErrNoPermission
	}

	units, err := s.repo.OrganizationUnit.ListByOrganization(ctx, organizationID, true)
	if err != nil {
		return nil, err
	}
	result := make([]dto.UnitResponse, 0, len(units))
	for i := range units {
		result = append(result, *toUnitResponse(&units[i]))
	}
	return result, nil
}

// toOrganizationResponse 构造组织响应
func toOrganizationResponse(org *model.Organization) *dto.OrganizationResponse {
	return &dto.OrganizationResponse{
		ID:        org.OrganizationID,
		Name:      org.Name,
		Code:      org.Code,
		IsActive:  org.IsActive,
		CreatedAt: org.CreatedAt.Format(time.RFC3339),
	}
}

// toUnitResponse 构造组织单元响应
func toUnitResponse(u *model.OrganizationUnit) *dto.UnitResponse {
	resp := &dto.UnitResponse{
		ID:             u.OrganizationUnitID,
		OrganizationID: u.OrganizationID,
		Name:           u.Name,
		Code:           u.Code,
		Type:           string(u.Type),
		IsActive:       u.IsActive,
	}
	if u.ParentID != nil {
		resp.ParentID = *u.ParentID
	}
	return resp
}
