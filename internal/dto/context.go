package dto

// SwitchContextRequest MASTER 切换身份上下文请求
type SwitchContextRequest struct {
	Role           string `json:"role"            binding:"required,oneof=go gr store_manager"`
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	StoreID        string `json:"store_id"        binding:"omitempty,uuid"`
}

// ContextResponse 当前身份上下文
type ContextResponse struct {
	OriginalRole   string `json:"original_role"`
	CurrentRole    string `json:"current_role"`
	OrganizationID string `json:"organization_id,omitempty"`
	StoreID        string `json:"store_id,omitempty"`
	SwitchedAt     string `json:"switched_at,omitempty"`
	Switched       bool   `json:"switched"`
}
