package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
// Role 决定走哪条工厂路径；GO/GR 需要 OrganizationID，店长还需要 StoreID
type CreateUserRequest struct {
	Name           string   `json:"name"            binding:"required,min=2,max=100"`
	Email          string   `json:"email"           binding:"required,email"`
	Password       string   `json:"password"        binding:"required,min=8,max=72"`
	Role           string   `json:"role"            binding:"required,oneof=master go gr store_manager"`
	OrganizationID string   `json:"organization_id" binding:"omitempty,uuid"`
	StoreID        string   `json:"store_id"        binding:"omitempty,uuid"`
	RegionID       string   `json:"region_id"       binding:"omitempty,uuid"`
	Phone          string   `json:"phone"           binding:"omitempty,max=30"`
	Title          string   `json:"title"           binding:"omitempty,max=100"`
	Departments    []string `json:"departments"     binding:"omitempty,dive,oneof=administrative financial marketing operations trade macro"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	OrganizationID string `form:"organization_id" binding:"omitempty,uuid"`
	Role           string `form:"role"            binding:"omitempty,oneof=master go gr store_manager"`
	Status         string `form:"status"          binding:"omitempty,oneof=active inactive suspended"`
	Keyword        string `form:"keyword"         binding:"omitempty,max=50"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=2,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,max=30"`
}

// UpdateUserStatusRequest 更新用户状态请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

// ImportUserResponse 批量导入店长响应
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// EffectivePermissionResponse 有效权限条目（单元 × 职能部门）
type EffectivePermissionResponse struct {
	UnitID     string `json:"unit_id"`
	Department string `json:"department"`
	Level      string `json:"level"`
}
