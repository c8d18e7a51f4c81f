package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/williamGois/madnezz-api-sub001/internal/model"
)

// OrganizationUnitRepository 组织单元数据访问接口
// 层级可达性计算依赖 ListByOrganization 一次性批量取数（而非逐跳点查）
type OrganizationUnitRepository interface {
	Create(ctx context.Context, unit *model.OrganizationUnit) error
	GetByID(ctx context.Context, id string) (*model.OrganizationUnit, error)
	GetRoot(ctx context.Context, organizationID string) (*model.OrganizationUnit, error)
	GetByCodeAndType(ctx context.Context, organizationID string, unitType model.UnitType, code string) (*model.OrganizationUnit, error)
	ExistsByCodeAndType(ctx context.Context, organizationID string, unitType model.UnitType, code string) (bool, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]model.OrganizationUnit, error)
	ListChildren(ctx context.Context, parentID string) ([]model.OrganizationUnit, error)
	Update(ctx context.Context, unit *model.OrganizationUnit) error
}

// organizationUnitRepo OrganizationUnitRepository 的 GORM 实现
type organizationUnitRepo struct {
	db *gorm.DB
}

// NewOrganizationUnitRepo 创建 OrganizationUnitRepository 实例
func NewOrganizationUnitRepo(db *gorm.DB) OrganizationUnitRepository {
	return &organizationUnitRepo{db: db}
}

func (r *organizationUnitRepo) Create(ctx context.Context, unit *model.OrganizationUnit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *organizationUnitRepo) GetByID(ctx context.Context, id string) (*model.OrganizationUnit, error) {
	var unit model.OrganizationUnit
	err := r.db.WithContext(ctx).
		Where("organization_unit_id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *organizationUnitRepo) GetRoot(ctx context.Context, organizationID string) (*model.OrganizationUnit, error) {
	var unit model.OrganizationUnit
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND type = ? AND parent_id IS NULL", organizationID, model.UnitTypeCompany).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *organizationUnitRepo) GetByCodeAndType(ctx context.Context, organizationID string, unitType model.UnitType, code string) (*model.OrganizationUnit, error) {
	var unit model.OrganizationUnit
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND type = ? AND code = ?", organizationID, unitType, code).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *organizationUnitRepo) ExistsByCodeAndType(ctx context.Context, organizationID string, unitType model.UnitType, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.OrganizationUnit{}).
		Where("organization_id = ? AND type = ? AND code = ?", organizationID, unitType, code).
		Count(&count).Error
	return count > 0, err
}

func (r *organizationUnitRepo) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]model.OrganizationUnit, error) {
	var units []model.OrganizationUnit
	db := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("created_at ASC").Find(&units).Error
	return units, err
}

func (r *organizationUnitRepo) ListChildren(ctx context.Context, parentID string) ([]model.OrganizationUnit, error) {
	var units []model.OrganizationUnit
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&units).Error
	return units, err
}

func (r *organizationUnitRepo) Update(ctx context.Context, unit *model.OrganizationUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}
