package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/repository"
)

var (
	ErrUnitNotFound = errors.New("组织单元不存在")
)

// HierarchyService 层级可达性计算
// 可达规则：目标单元等于本单元，或目标是本单元的后代（仅沿激活单元）。
// 判定前把组织内全部激活单元一次性读入内存建树，避免逐跳点查
type HierarchyService interface {
	// CanAccessUnit 判断持有 actorLevel 职位、挂在 actorUnitID 上的用户能否触达 targetUnitID
	CanAccessUnit(ctx context.Context, organizationID string, actorUnitID, targetUnitID string) (bool, error)
	// CanManagePosition 判断管理者能否触达目标职位：层级同级或更高 且 目标单元可达。
	// 注意这里刻意放行同级（职位维度的可达语义）；用户管理要求角色严格更高，
	// 该约束由 AccessService.CanManageUser 在调用前施加，本方法不重复判定
	CanManagePosition(ctx context.Context, organizationID string, managerLevel model.PositionLevel, managerUnitID string, targetLevel model.PositionLevel, targetUnitID string) (bool, error)
	// AccessibleUnits 返回从本单元出发可达的全部激活单元（含本单元）
	AccessibleUnits(ctx context.Context, organizationID string, actorUnitID string) ([]model.OrganizationUnit, error)
}

type hierarchyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewHierarchyService 创建 HierarchyService 实例
func NewHierarchyService(repo *repository.Repository, logger *zap.Logger) HierarchyService {
	return &hierarchyService{repo: repo, logger: logger}
}

// unitIndex 单次判定使用的内存快照
type unitIndex struct {
	byID     map[string]*model.OrganizationUnit
	children map[string][]string
}

// loadIndex 批量加载组织内激活单元并建立父子索引
func (s *hierarchyService) loadIndex(ctx context.Context, organizationID string) (*unitIndex, error) {
	units, err := s.repo.OrganizationUnit.ListByOrganization(ctx, organizationID, true)
	if err != nil {
		s.logger.Error("批量加载组织单元失败",
			zap.String("organization_id", organizationID), zap.Error(err))
		return nil, err
	}

	idx := &unitIndex{
		byID:     make(map[string]*model.OrganizationUnit, len(units)),
		children: make(map[string][]string, len(units)),
	}
	for i := range units {
		u := &units[i]
		idx.byID[u.OrganizationUnitID] = u
		if u.ParentID != nil {
			idx.children[*u.ParentID] = append(idx.children[*u.ParentID], u.OrganizationUnitID)
		}
	}
	return idx, nil
}

// isSelfOrDescendant 自底向上回溯父链
// visited 集合保证脏数据成环时必然终止
func (idx *unitIndex) isSelfOrDescendant(ancestorID, targetID string) bool {
	visited := make(map[string]bool)
	cur := targetID
	for cur != "" && !visited[cur] {
		if cur == ancestorID {
			return true
		}
		visited[cur] = true
		u, ok := idx.byID[cur]
		if !ok || u.ParentID == nil {
			return false
		}
		cur = *u.ParentID
	}
	return false
}

func (s *hierarchyService) CanAccessUnit(ctx context.Context, organizationID string, actorUnitID, targetUnitID string) (bool, error) {
	idx, err := s.loadIndex(ctx, organizationID)
	if err != nil {
		return false, err
	}
	if _, ok := idx.byID[actorUnitID]; !ok {
		return false, ErrUnitNotFound
	}
	// 目标不在组织内或已停用：不可达而非报错
	if _, ok := idx.byID[targetUnitID]; !ok {
		return false, nil
	}
	return idx.isSelfOrDescendant(actorUnitID, targetUnitID), nil
}

func (s *hierarchyService) CanManagePosition(ctx context.Context, organizationID string, managerLevel model.PositionLevel, managerUnitID string, targetLevel model.PositionLevel, targetUnitID string) (bool, error) {
	if !managerLevel.CanManage(targetLevel) {
		return false, nil
	}
	return s.CanAccessUnit(ctx, organizationID, managerUnitID, targetUnitID)
}

func (s *hierarchyService) AccessibleUnits(ctx context.Context, organizationID string, actorUnitID string) ([]model.OrganizationUnit, error) {
	idx, err := s.loadIndex(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	start, ok := idx.byID[actorUnitID]
	if !ok {
		return nil, ErrUnitNotFound
	}

	// 从本单元向下 BFS，visited 兜底防环
	var result []model.OrganizationUnit
	visited := map[string]bool{start.OrganizationUnitID: true}
	queue := []string{start.OrganizationUnitID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, *idx.byID[id])
		for _, childID := range idx.children[id] {
			if !visited[childID] {
				visited[childID] = true
				queue = append(queue, childID)
			}
		}
	}
	return result, nil
}

// notFound 统一识别 gorm 的记录缺失
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
