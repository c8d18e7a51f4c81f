package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/williamGois/madnezz-api-sub001/internal/dto"
	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/repository"
)

var (
	ErrNoPermission     = errors.New("没有执行该操作的权限")
	ErrNoActivePosition = errors.New("用户没有激活的职位")
	ErrDelegationDenied = errors.New("不允许的权限委派")
)

// AccessService 访问控制判定
// 资源访问 = 层级可达 且 职能部门授权，两个维度同时满足才放行。
// 未切换上下文的 MASTER 视为全局放行；切换后按上下文角色的作用域判定
type AccessService interface {
	CanAccessUnit(ctx context.Context, actorID, targetUnitID string) (bool, error)
	CanAccessDepartment(ctx context.Context, actorID string, dept model.DepartmentType) (bool, error)
	// CanAccessResource 资源访问判定：层级维度与部门维度取 AND
	CanAccessResource(ctx context.Context, actorID, targetUnitID string, dept model.DepartmentType) (bool, error)
	AccessibleUnits(ctx context.Context, actorID string) ([]model.OrganizationUnit, error)
	// EffectivePermissions 展开有效权限：可达单元 × 授权部门 的笛卡尔积
	EffectivePermissions(ctx context.Context, actorID string) ([]dto.EffectivePermissionResponse, error)
	// CanManageUser 用户管理判定：角色必须严格更高，且目标在作用域内
	CanManageUser(ctx context.Context, actorID, targetUserID string) (bool, error)
	// ValidateDelegation 委派校验：GO 可委派任意部门；GR 仅可向店长委派
	// operations/trade/marketing；店长不可委派
	ValidateDelegation(ctx context.Context, delegatorID string, delegateeLevel model.PositionLevel, dept model.DepartmentType) error
}

type accessService struct {
	repo      *repository.Repository
	hierarchy HierarchyService
	logger    *zap.Logger
}

// NewAccessService 创建 AccessService 实例
func NewAccessService(repo *repository.Repository, hierarchy HierarchyService, logger *zap.Logger) AccessService {
	return &accessService{repo: repo, hierarchy: hierarchy, logger: logger}
}

// actorScope 判定主体的作用域快照
type actorScope struct {
	user     *model.User
	global   bool // 未切换上下文的 MASTER
	level    model.PositionLevel
	unitID   string
	orgID    string
	allDepts bool
	depts    map[model.DepartmentType]bool
}

// resolveScope 解析判定主体的作用域
// 普通用户取激活职位；切换中的 MASTER 合成作用域：
// go/gr 落在上下文组织的 company 根单元，store_manager 落在上下文门店，
// 部门维度视为持有该组织全部激活部门
func (s *accessService) resolveScope(ctx context.Context, actorID string) (*actorScope, error) {
	user, err := s.repo.User.GetByID(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	role := user.CurrentRole()
	if role == model.RoleMaster {
		return &actorScope{user: user, global: true}, nil
	}

	scope := &actorScope{user: user, depts: make(map[model.DepartmentType]bool)}

	if user.IsMaster() {
		// 切换中的 MASTER：无真实职位，按上下文合成
		level, _ := role.PositionLevel()
		scope.level = level
		scope.orgID = user.CurrentOrganizationID()
		scope.allDepts = true

		if role == model.RoleStoreManager {
			scope.unitID = user.CurrentStoreID()
		} else {
			root, err := s.repo.OrganizationUnit.GetRoot(ctx, scope.orgID)
			if err != nil {
				if notFound(err) {
					return nil, ErrUnitNotFound
				}
				return nil, err
			}
			scope.unitID = root.OrganizationUnitID
		}
		return scope, nil
	}

	pos, err := s.repo.Position.GetActiveByUser(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, ErrNoActivePosition
		}
		return nil, err
	}
	scope.level = pos.Level
	scope.unitID = pos.OrganizationUnitID
	scope.orgID = pos.OrganizationID
	scope.allDepts = pos.Level == model.LevelGO
	for _, t := range pos.DepartmentTypes() {
		scope.depts[t] = true
	}
	return scope, nil
}

// hasDepartment 部门维度判定；GO 级别天然覆盖全部部门
func (scope *actorScope) hasDepartment(dept model.DepartmentType) bool {
	return scope.global || scope.allDepts || scope.depts[dept]
}

func (s *accessService) CanAccessUnit(ctx context.Context, actorID, targetUnitID string) (bool, error) {
	scope, err := s.resolveScope(ctx, actorID)
	if err != nil {
		return false, err
	}
	if scope.global {
		return true, nil
	}
	return s.hierarchy.CanAccessUnit(ctx, scope.orgID, scope.unitID, targetUnitID)
}

func (s *accessService) CanAccessDepartment(ctx context.Context, actorID string, dept model.DepartmentType) (bool, error) {
	scope, err := s.resolveScope(ctx, actorID)
	if err != nil {
		return false, err
	}
	return scope.hasDepartment(dept), nil
}

func (s *accessService) CanAccessResource(ctx context.Context, actorID, targetUnitID string, dept model.DepartmentType) (bool, error) {
	scope, err := s.resolveScope(ctx, actorID)
	if err != nil {
		return false, err
	}
	if scope.global {
		return true, nil
	}
	if !scope.hasDepartment(dept) {
		return false, nil
	}
	return s.hierarchy.CanAccessUnit(ctx, scope.orgID, scope.unitID, targetUnitID)
}

func (s *accessService) AccessibleUnits(ctx context.Context, actorID string) ([]model.OrganizationUnit, error) {
	scope, err := s.resolveScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.global {
		// 全局 MASTER 没有单一组织作用域，调用方需先切换上下文或按组织查询
		return nil, ErrNoActivePosition
	}
	return s.hierarchy.AccessibleUnits(ctx, scope.orgID, scope.unitID)
}

func (s *accessService) EffectivePermissions(ctx context.Context, actorID string) ([]dto.EffectivePermissionResponse, error) {
	scope, err := s.resolveScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.global {
		return nil, ErrNoActivePosition
	}

	units, err := s.hierarchy.AccessibleUnits(ctx, scope.orgID, scope.unitID)
	if err != nil {
		return nil, err
	}

	// 部门集合：GO 与切换中的 MASTER 展开组织全部激活部门
	var deptTypes []model.DepartmentType
	if scope.allDepts {
		depts, err := s.repo.Department.ListByOrganization(ctx, scope.orgID)
		if err != nil {
			return nil, err
		}
		for _, d := range depts {
			deptTypes = append(deptTypes, d.Type)
		}
	} else {
		for t := range scope.depts {
			deptTypes = append(deptTypes, t)
		}
	}

	result := make([]dto.EffectivePermissionResponse, 0, len(units)*len(deptTypes))
	for _, u := range units {
		for _, t := range deptTypes {
			result = append(result, dto.EffectivePermissionResponse{
				UnitID:     u.OrganizationUnitID,
				Department: string(t),
				Level:      string(scope.level),
			})
		}
	}
	return result, nil
}

func (s *accessService) CanManageUser(ctx context.Context, actorID, targetUserID string) (bool, error) {
	scope, err := s.resolveScope(ctx, actorID)
	if err != nil {
		return false, err
	}

	target, err := s.repo.User.GetByID(ctx, targetUserID)
	if err != nil {
		if notFound(err) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	// 角色维度：必须严格高于目标的基础角色（同级不可互管，MASTER 不受管）
	actorRole := scope.user.CurrentRole()
	if !actorRole.CanManageLevel(target.HierarchyRole) {
		return false, nil
	}
	if scope.global {
		return true, nil
	}

	// 组织维度：目标必须属于作用域组织
	if target.OrganizationID == nil || *target.OrganizationID != scope.orgID {
		return false, nil
	}

	// 单元维度：目标有职位时其单元必须可达；无职位仅按组织归属判定
	targetPos, err := s.repo.Position.GetActiveByUser(ctx, targetUserID)
	if err != nil {
		if notFound(err) {
			return true, nil
		}
		return false, err
	}
	return s.hierarchy.CanManagePosition(ctx, scope.orgID, scope.level, scope.unitID, targetPos.Level, targetPos.OrganizationUnitID)
}

func (s *accessService) ValidateDelegation(ctx context.Context, delegatorID string, delegateeLevel model.PositionLevel, dept model.DepartmentType) error {
	scope, err := s.resolveScope(ctx, delegatorID)
	if err != nil {
		return err
	}
	if scope.global {
		return nil
	}

	// 委派方必须严格高于受派方
	if !scope.level.IsHigherThan(delegateeLevel) {
		return ErrDelegationDenied
	}
	// 委派的部门必须在委派方自身授权内
	if !scope.hasDepartment(dept) {
		return ErrDelegationDenied
	}

	switch scope.level {
	case model.LevelGO:
		return nil
	case model.LevelGR:
		if delegateeLevel != model.LevelStoreManager {
			return ErrDelegationDenied
		}
		switch dept {
		case model.DeptOperations, model.DeptTrade, model.DeptMarketing:
			return nil
		default:
			return ErrDelegationDenied
		}
	default:
		return ErrDelegationDenied
	}
}
