package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/williamGois/madnezz-api-sub001/internal/model"
)

// PositionRepository 职位数据访问接口
type PositionRepository interface {
	Create(ctx context.Context, pos *model.Position) error
	GetByID(ctx context.Context, id string) (*model.Position, error)
	// GetActiveByUser 返回用户当前的活跃职位
	// 数据模型未强制唯一，以最近更新的一条为准
	GetActiveByUser(ctx context.Context, userID string) (*model.Position, error)
	ListByUnit(ctx context.Context, organizationUnitID string) ([]model.Position, error)
	AssignDepartments(ctx context.Context, pos *model.Position, depts []model.Department) error
	Update(ctx context.Context, pos *model.Position) error
}

// positionRepo PositionRepository 的 GORM 实现
type positionRepo struct {
	db *gorm.DB
}

// NewPositionRepo 创建 PositionRepository 实例
func NewPositionRepo(db *gorm.DB) PositionRepository {
	return &positionRepo{db: db}
}

func (r *positionRepo) Create(ctx context.Context, pos *model.Position) error {
	return r.db.WithContext(ctx).Create(pos).Error
}

func (r *positionRepo) GetByID(ctx context.Context, id string) (*model.Position, error) {
	var pos model.Position
	err := r.db.WithContext(ctx).
		Preload("Departments").
		Preload("OrganizationUnit").
		Where("position_id = ?", id).
		First(&pos).Error
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

func (r *positionRepo) GetActiveByUser(ctx context.Context, userID string) (*model.Position, error) {
	var pos model.Position
	err := r.db.WithContext(ctx).
		Preload("Departments").
		Preload("OrganizationUnit").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("updated_at DESC").
		First(&pos).Error
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

func (r *positionRepo) ListByUnit(ctx context.Context, organizationUnitID string) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).
		Preload("Departments").
		Where("organization_unit_id = ? AND is_active = ?", organizationUnitID, true).
		Find(&positions).Error
	return positions, err
}

func (r *positionRepo) AssignDepartments(ctx context.Context, pos *model.Position, depts []model.Department) error {
	return r.db.WithContext(ctx).Model(pos).Association("Departments").Replace(depts)
}

func (r *positionRepo) Update(ctx context.Context, pos *model.Position) error {
	return r.db.WithContext(ctx).Save(pos).Error
}
