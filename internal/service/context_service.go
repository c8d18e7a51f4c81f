package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/williamGois/madnezz-api-sub001/internal/dto"
	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/repository"
)

var (
	ErrInvalidContextRole   = errors.New("不允许切换到该角色")
	ErrContextStoreRequired = errors.New("切换到店长上下文必须指定门店")
)

// ContextService MASTER 身份上下文切换
// 上下文写入用户行的 context_data，跨请求、跨设备持续生效，直至显式重置
type ContextService interface {
	// SwitchContext 切换到低级角色上下文（仅 MASTER）
	SwitchContext(ctx context.Context, userID string, req *dto.SwitchContextRequest) (*dto.ContextResponse, error)
	// ResetContext 清除上下文，恢复 MASTER 本体
	ResetContext(ctx context.Context, userID string) (*dto.ContextResponse, error)
	// GetContext 查询当前生效上下文
	GetContext(ctx context.Context, userID string) (*dto.ContextResponse, error)
}

type contextService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewContextService 创建 ContextService 实例
func NewContextService(repo *repository.Repository, logger *zap.Logger) ContextService {
	return &contextService{repo: repo, logger: logger}
}

func (s *contextService) SwitchContext(ctx context.Context, userID string, req *dto.SwitchContextRequest) (*dto.ContextResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsMaster() {
		return nil, model.ErrContextSwitchDenied
	}

	role, err := model.ParseHierarchyRole(req.Role)
	if err != nil || role == model.RoleMaster {
		return nil, ErrInvalidContextRole
	}

	// 目标组织必须存在且激活
	org, err := s.repo.Organization.GetByID(ctx, req.OrganizationID)
	if err != nil {
		if notFound(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	if !org.IsActive {
		return nil, ErrOrganizationNotFound
	}

	storeID := ""
	if role == model.RoleStoreManager {
		if req.StoreID == "" {
			return nil, ErrContextStoreRequired
		}
		store, err := s.repo.OrganizationUnit.GetByID(ctx, req.StoreID)
		if err != nil {
			if notFound(err) {
				return nil, ErrStoreNotFound
			}
			return nil, err
		}
		if store.Type != model.UnitTypeStore || !store.IsActive {
			return nil, ErrStoreNotFound
		}
		if store.OrganizationID != org.OrganizationID {
			return nil, ErrStoreNotInOrganization
		}
		storeID = store.OrganizationUnitID
	}

	if err := user.SwitchContext(role, org.OrganizationID, storeID); err != nil {
		return nil, err
	}
	if err := s.repo.User.UpdateContext(ctx, user); err != nil {
		s.logger.Error("持久化上下文失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("MASTER 切换上下文",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("organization_id", org.OrganizationID),
		zap.String("store_id", storeID))
	return toContextResponse(user), nil
}

func (s *contextService) ResetContext(ctx context.Context, userID string) (*dto.ContextResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := user.ResetContext(); err != nil {
		return nil, err
	}
	if err := s.repo.User.UpdateContext(ctx, user); err != nil {
		s.logger.Error("清除上下文失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("MASTER 重置上下文", zap.String("user_id", userID))
	return toContextResponse(user), nil
}

func (s *contextService) GetContext(ctx context.Context, userID string) (*dto.ContextResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toContextResponse(user), nil
}

// toContextResponse 构造上下文响应
func toContextResponse(user *model.User) *dto.ContextResponse {
	resp := &dto.ContextResponse{
		OriginalRole:   string(user.HierarchyRole),
		CurrentRole:    string(user.CurrentRole()),
		OrganizationID: user.CurrentOrganizationID(),
		StoreID:        user.CurrentStoreID(),
	}
	if user.Context != nil {
		resp.Switched = true
		resp.SwitchedAt = user.Context.SwitchedAt.Format(time.RFC3339)
	}
	return resp
}
