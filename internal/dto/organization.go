package dto

// ── 组织模块 DTO ──

// CreateOrganizationRequest 创建组织请求（仅 MASTER）
// 可选地同时开通首位 GO 用户
type CreateOrganizationRequest struct {
	Name string         `json:"name" binding:"required,min=2,max=200"`
	Code string         `json:"code" binding:"required,min=2,max=20,alphanum,uppercase"`
	GO   *ProvisionUser `json:"go_user,omitempty"`
}

// ProvisionUser 随组织/门店一并开通的用户
type ProvisionUser struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone"    binding:"omitempty,max=30"`
}

// CreateRegionRequest 创建大区请求（MASTER 或本组织 GO）
type CreateRegionRequest struct {
	Name string `json:"name" binding:"required,min=2,max=200"`
	Code string `json:"code" binding:"required,min=2,max=20,alphanum,uppercase"`
}

// CreateStoreRequest 创建门店请求（MASTER 或本组织 GO）
// 可选地同时开通店长并绑定到新门店
type CreateStoreRequest struct {
	Name        string         `json:"name"        binding:"required,min=2,max=200"`
	Code        string         `json:"code"        binding:"required,min=2,max=20,alphanum,uppercase"`
	RegionID    string         `json:"region_id"   binding:"required,uuid"`
	Manager     *ProvisionUser `json:"manager,omitempty"`
	Departments []string       `json:"departments" binding:"omitempty,dive,oneof=administrative financial marketing operations trade macro"`
}

// OrganizationResponse 组织响应
type OrganizationResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Code      string        `json:"code"`
	IsActive  bool          `json:"is_active"`
	RootUnit  *UnitResponse `json:"root_unit,omitempty"`
	GOUserID  string        `json:"go_user_id,omitempty"`
	CreatedAt string        `json:"created_at"`
}

// OrganizationListRequest 组织列表查询参数
type OrganizationListRequest struct {
	PaginationRequest
}

// UnitResponse 组织单元响应
type UnitResponse struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	ParentID       string `json:"parent_id,omitempty"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	Type           string `json:"type"`
	IsActive       bool   `json:"is_active"`
}

// CreateRegionResponse 创建大区响应
type CreateRegionResponse struct {
	Region UnitResponse `json:"region"`
}

// CreateStoreResponse 创建门店响应
type CreateStoreResponse struct {
	Store         UnitResponse `json:"store"`
	ManagerUserID string       `json:"manager_user_id,omitempty"`
}
