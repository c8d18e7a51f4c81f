package model

import "errors"

// ── 值对象校验错误 ──

var (
	ErrInvalidHierarchyRole  = errors.New("无效的层级角色")
	ErrInvalidPositionLevel  = errors.New("无效的职位层级")
	ErrInvalidDepartmentType = errors.New("无效的职能部门类型")
	ErrInvalidUnitType       = errors.New("无效的组织单元类型")
)

// ── HierarchyRole 用户层级角色 ──

// HierarchyRole 用户层级角色（四级）
// 数值秩 越小权限越高：master=1 > go=2 > gr=3 > store_manager=4
type HierarchyRole string

const (
	RoleMaster       HierarchyRole = "master"
	RoleGO           HierarchyRole = "go"
	RoleGR           HierarchyRole = "gr"
	RoleStoreManager HierarchyRole = "store_manager"
)

var hierarchyRoleRanks = map[HierarchyRole]int{
	RoleMaster:       1,
	RoleGO:           2,
	RoleGR:           3,
	RoleStoreManager: 4,
}

// ParseHierarchyRole 校验并构造层级角色
func ParseHierarchyRole(s string) (HierarchyRole, error) {
	r := HierarchyRole(s)
	if _, ok := hierarchyRoleRanks[r]; !ok {
		return "", ErrInvalidHierarchyRole
	}
	return r, nil
}

// Rank 返回数值秩（越小权限越高）
func (r HierarchyRole) Rank() int {
	return hierarchyRoleRanks[r]
}

// IsValid 判断角色是否合法
func (r HierarchyRole) IsValid() bool {
	_, ok := hierarchyRoleRanks[r]
	return ok
}

// CanAccessLevel 能否访问 other 级别的资源（同级或更低级均可）
func (r HierarchyRole) CanAccessLevel(other HierarchyRole) bool {
	return r.Rank() <= other.Rank()
}

// CanManageLevel 能否管理 other 级别的用户（必须严格高于，同级不可互管）
func (r HierarchyRole) CanManageLevel(other HierarchyRole) bool {
	return r.Rank() < other.Rank()
}

// PositionLevel 将层级角色映射到职位层级
// MASTER 不持有职位，返回 false
func (r HierarchyRole) PositionLevel() (PositionLevel, bool) {
	switch r {
	case RoleGO:
		return LevelGO, true
	case RoleGR:
		return LevelGR, true
	case RoleStoreManager:
		return LevelStoreManager, true
	default:
		return "", false
	}
}

// ── PositionLevel 职位层级 ──

// PositionLevel 职位层级（三级，MASTER 无职位）
// 同样约定数值秩越小权限越高：go=1 > gr=2 > store_manager=3
type PositionLevel string

const (
	LevelGO           PositionLevel = "go"
	LevelGR           PositionLevel = "gr"
	LevelStoreManager PositionLevel = "store_manager"
)

var positionLevelRanks = map[PositionLevel]int{
	LevelGO:           1,
	LevelGR:           2,
	LevelStoreManager: 3,
}

// ParsePositionLevel 校验并构造职位层级
func ParsePositionLevel(s string) (PositionLevel, error) {
	l := PositionLevel(s)
	if _, ok := positionLevelRanks[l]; !ok {
		return "", ErrInvalidPositionLevel
	}
	return l, nil
}

// Rank 返回数值秩（越小权限越高）
func (l PositionLevel) Rank() int {
	return positionLevelRanks[l]
}

// IsValid 判断职位层级是否合法
func (l PositionLevel) IsValid() bool {
	_, ok := positionLevelRanks[l]
	return ok
}

// IsHigherThan 是否严格高于 other
func (l PositionLevel) IsHigherThan(other PositionLevel) bool {
	return l.Rank() < other.Rank()
}

// IsLowerThan 是否严格低于 other
func (l PositionLevel) IsLowerThan(other PositionLevel) bool {
	return l.Rank() > other.Rank()
}

// IsSameLevel 是否同级
func (l PositionLevel) IsSameLevel(other PositionLevel) bool {
	return l.Rank() == other.Rank()
}

// CanManage 能否管理 other（同级或更高均可，区别于 HierarchyRole.CanManageLevel）
func (l PositionLevel) CanManage(other PositionLevel) bool {
	return l.Rank() <= other.Rank()
}

// UnitType 返回该职位层级应挂载的组织单元类型
// GO 挂在 company、GR 挂在 regional、店长挂在 store
func (l PositionLevel) UnitType() UnitType {
	switch l {
	case LevelGO:
		return UnitTypeCompany
	case LevelGR:
		return UnitTypeRegional
	default:
		return UnitTypeStore
	}
}

// ── DepartmentType 职能部门类型 ──

// DepartmentType 职能部门类型（封闭枚举，与单元树正交）
type DepartmentType string

const (
	DeptAdministrative DepartmentType = "administrative"
	DeptFinancial      DepartmentType = "financial"
	DeptMarketing      DepartmentType = "marketing"
	DeptOperations     DepartmentType = "operations"
	DeptTrade          DepartmentType = "trade"
	DeptMacro          DepartmentType = "macro"
)

// AllDepartmentTypes 全部职能部门类型（建组织时批量初始化用）
var AllDepartmentTypes = []DepartmentType{
	DeptAdministrative,
	DeptFinancial,
	DeptMarketing,
	DeptOperations,
	DeptTrade,
	DeptMacro,
}

// ParseDepartmentType 校验并构造职能部门类型
func ParseDepartmentType(s string) (DepartmentType, error) {
	t := DepartmentType(s)
	for _, v := range AllDepartmentTypes {
		if t == v {
			return t, nil
		}
	}
	return "", ErrInvalidDepartmentType
}

// ── UnitType 组织单元类型 ──

// UnitType 组织单元类型，决定节点在树中的合法深度
// company=根(0)、regional=1、store=2
type UnitType string

const (
	UnitTypeCompany  UnitType = "company"
	UnitTypeRegional UnitType = "regional"
	UnitTypeStore    UnitType = "store"
)

// ParseUnitType 校验并构造组织单元类型
func ParseUnitType(s string) (UnitType, error) {
	switch t := UnitType(s); t {
	case UnitTypeCompany, UnitTypeRegional, UnitTypeStore:
		return t, nil
	default:
		return "", ErrInvalidUnitType
	}
}

// [自证通过] internal/model/role.go
