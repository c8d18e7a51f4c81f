package model

import (
	"errors"
	"testing"
)

// ── HierarchyRole 测试 ──

func TestParseHierarchyRole_Valid(t *testing.T) {
	for _, s := range []string{"master", "go", "gr", "store_manager"} {
		r, err := ParseHierarchyRole(s)
		if err != nil {
			t.Fatalf("ParseHierarchyRole(%q) 应成功: %v", s, err)
		}
		if string(r) != s {
			t.Errorf("期望角色=%s，实际=%s", s, r)
		}
	}
}

func TestParseHierarchyRole_Invalid(t *testing.T) {
	for _, s := range []string{"", "admin", "MASTER", "supervisor"} {
		if _, err := ParseHierarchyRole(s); !errors.Is(err, ErrInvalidHierarchyRole) {
			t.Errorf("ParseHierarchyRole(%q) 期望 ErrInvalidHierarchyRole，实际: %v", s, err)
		}
	}
}

func TestHierarchyRole_SelfAccess(t *testing.T) {
	// 任意角色都能访问同级，但不能管理同级
	for _, r := range []HierarchyRole{RoleMaster, RoleGO, RoleGR, RoleStoreManager} {
		if !r.CanAccessLevel(r) {
			t.Errorf("%s 应能访问同级", r)
		}
		if r.CanManageLevel(r) {
			t.Errorf("%s 不应能管理同级", r)
		}
	}
}

func TestHierarchyRole_StrictOrdering(t *testing.T) {
	ordered := []HierarchyRole{RoleMaster, RoleGO, RoleGR, RoleStoreManager}
	for i, higher := range ordered {
		for _, lower := range ordered[i+1:] {
			if !higher.CanManageLevel(lower) {
				t.Errorf("%s 应能管理 %s", higher, lower)
			}
			if lower.CanManageLevel(higher) {
				t.Errorf("%s 不应能管理 %s", lower, higher)
			}
			if !higher.CanAccessLevel(lower) {
				t.Errorf("%s 应能访问 %s 级资源", higher, lower)
			}
			if lower.CanAccessLevel(higher) {
				t.Errorf("%s 不应能访问 %s 级资源", lower, higher)
			}
		}
	}
}

func TestHierarchyRole_PositionLevel(t *testing.T) {
	if _, ok := RoleMaster.PositionLevel(); ok {
		t.Error("MASTER 不应映射到职位层级")
	}

	cases := map[HierarchyRole]PositionLevel{
		RoleGO:           LevelGO,
		RoleGR:           LevelGR,
		RoleStoreManager: LevelStoreManager,
	}
	for role, want := range cases {
		got, ok := role.PositionLevel()
		if !ok || got != want {
			t.Errorf("%s 期望映射到 %s，实际=%s (ok=%v)", role, want, got, ok)
		}
	}
}

// ── PositionLevel 测试 ──

func TestParsePositionLevel_Invalid(t *testing.T) {
	for _, s := range []string{"", "master", "GO", "manager"} {
		if _, err := ParsePositionLevel(s); !errors.Is(err, ErrInvalidPositionLevel) {
			t.Errorf("ParsePositionLevel(%q) 期望 ErrInvalidPositionLevel，实际: %v", s, err)
		}
	}
}

func TestPositionLevel_Comparisons(t *testing.T) {
	if !LevelGO.IsHigherThan(LevelGR) {
		t.Error("GO 应高于 GR")
	}
	if !LevelGR.IsHigherThan(LevelStoreManager) {
		t.Error("GR 应高于店长")
	}
	if !LevelStoreManager.IsLowerThan(LevelGO) {
		t.Error("店长应低于 GO")
	}
	if LevelGR.IsHigherThan(LevelGR) {
		t.Error("同级不应互相高于")
	}
	if !LevelGR.IsSameLevel(LevelGR) {
		t.Error("GR 与 GR 应为同级")
	}
}

func TestPositionLevel_CanManage(t *testing.T) {
	// 职位层级的 CanManage 允许同级（区别于 HierarchyRole.CanManageLevel）
	if !LevelGR.CanManage(LevelGR) {
		t.Error("职位层级 CanManage 应允许同级")
	}
	if !LevelGO.CanManage(LevelStoreManager) {
		t.Error("GO 应能管理店长")
	}
	if LevelStoreManager.CanManage(LevelGR) {
		t.Error("店长不应能管理 GR")
	}
}

func TestPositionLevel_UnitType(t *testing.T) {
	if LevelGO.UnitType() != UnitTypeCompany {
		t.Error("GO 职位应挂载 company 单元")
	}
	if LevelGR.UnitType() != UnitTypeRegional {
		t.Error("GR 职位应挂载 regional 单元")
	}
	if LevelStoreManager.UnitType() != UnitTypeStore {
		t.Error("店长职位应挂载 store 单元")
	}
}

// ── DepartmentType / UnitType 测试 ──

func TestParseDepartmentType(t *testing.T) {
	for _, v := range AllDepartmentTypes {
		if _, err := ParseDepartmentType(string(v)); err != nil {
			t.Errorf("ParseDepartmentType(%q) 应成功: %v", v, err)
		}
	}
	if _, err := ParseDepartmentType("logistics"); !errors.Is(err, ErrInvalidDepartmentType) {
		t.Errorf("期望 ErrInvalidDepartmentType，实际: %v", err)
	}
}

func TestParseUnitType(t *testing.T) {
	for _, s := range []string{"company", "regional", "store"} {
		if _, err := ParseUnitType(s); err != nil {
			t.Errorf("ParseUnitType(%q) 应成功: %v", s, err)
		}
	}
	if _, err := ParseUnitType("district"); !errors.Is(err, ErrInvalidUnitType) {
		t.Errorf("期望 ErrInvalidUnitType，实际: %v", err)
	}
}
