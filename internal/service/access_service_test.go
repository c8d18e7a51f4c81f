package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/williamGois/madnezz-api-sub001/internal/model"
)

// ── 测试辅助 ──

// accessFixture 在层级树上再铺一层用户与职位：
// master（全局）、GO 挂根、GR 挂 R1（operations/trade/marketing）、店长挂 S1（operations）
type accessFixture struct {
	*hierarchyFixture
	svc    AccessService
	master *model.User
	goUser *model.User
	grUser *model.User
	smUser *model.User
}

func seedAccess(t *testing.T) *accessFixture {
	t.Helper()
	ctx := context.Background()
	f := seedHierarchy(t)
	logger := zap.NewNop()

	depts := make([]model.Department, 0, len(model.AllDepartmentTypes))
	for _, dt := range model.AllDepartmentTypes {
		depts = append(depts, model.Department{
			OrganizationID: f.org.OrganizationID,
			Type:           dt,
			Name:           departmentNames[dt],
			IsActive:       true,
		})
	}
	if err := f.repo.Department.CreateBatch(ctx, depts); err != nil {
		t.Fatalf("初始化部门失败: %v", err)
	}

	af := &accessFixture{hierarchyFixture: f}
	af.svc = NewAccessService(f.repo, NewHierarchyService(f.repo, logger), logger)

	af.master = model.NewMaster("Root", "root@madnezz.com", "hash")
	af.goUser = model.NewGO("GO", "go@madnezz.com", "hash", f.org.OrganizationID)
	af.grUser = model.NewGR("GR Norte", "gr@madnezz.com", "hash", f.org.OrganizationID)
	af.smUser = model.NewStoreManager("Gerente LN1", "sm@madnezz.com", "hash", f.org.OrganizationID, f.s1.OrganizationUnitID)
	for _, u := range []*model.User{af.master, af.goUser, af.grUser, af.smUser} {
		if err := f.repo.User.Create(ctx, u); err != nil {
			t.Fatalf("创建用户失败: %v", err)
		}
	}

	af.placeUser(t, af.goUser, f.root.OrganizationUnitID, model.LevelGO, nil)
	af.placeUser(t, af.grUser, f.r1.OrganizationUnitID, model.LevelGR,
		[]model.DepartmentType{model.DeptOperations, model.DeptTrade, model.DeptMarketing})
	af.placeUser(t, af.smUser, f.s1.OrganizationUnitID, model.LevelStoreManager,
		[]model.DepartmentType{model.DeptOperations})
	return af
}

// placeUser 为用户建职位并授权部门
func (af *accessFixture) placeUser(t *testing.T, user *model.User, unitID string, level model.PositionLevel, deptTypes []model.DepartmentType) {
	t.Helper()
	ctx := context.Background()
	pos := &model.Position{
		OrganizationID:     af.org.OrganizationID,
		OrganizationUnitID: unitID,
		UserID:             user.UserID,
		Level:              level,
		IsActive:           true,
	}
	if err := af.repo.Position.Create(ctx, pos); err != nil {
		t.Fatalf("创建职位失败: %v", err)
	}
	var depts []model.Department
	for _, dt := range deptTypes {
		d, err := af.repo.Department.GetByType(ctx, af.org.OrganizationID, dt)
		if err != nil {
			t.Fatalf("部门 %s 不存在: %v", dt, err)
		}
		depts = append(depts, *d)
	}
	if len(depts) > 0 {
		if err := af.repo.Position.AssignDepartments(ctx, pos, depts); err != nil {
			t.Fatalf("授权部门失败: %v", err)
		}
	}
}

// ── CanAccessResource 测试（层级 AND 部门） ──

func TestAccessService_CanAccessResource(t *testing.T) {
	af := seedAccess(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor string
		unit  string
		dept  model.DepartmentType
		want  bool
	}{
		{"MASTER 全局放行", af.master.UserID, af.s2.OrganizationUnitID, model.DeptFinancial, true},
		{"GO 全部门全单元", af.goUser.UserID, af.s2.OrganizationUnitID, model.DeptFinancial, true},
		{"GR 授权部门+可达门店", af.grUser.UserID, af.s1.OrganizationUnitID, model.DeptOperations, true},
		{"GR 未授权部门即使单元可达也拒绝", af.grUser.UserID, af.s1.OrganizationUnitID, model.DeptFinancial, false},
		{"GR 授权部门但单元不可达", af.grUser.UserID, af.s2.OrganizationUnitID, model.DeptOperations, false},
		{"店长本店授权部门", af.smUser.UserID, af.s1.OrganizationUnitID, model.DeptOperations, true},
		{"店长本店未授权部门", af.smUser.UserID, af.s1.OrganizationUnitID, model.DeptTrade, false},
		{"店长不可达上级大区", af.smUser.UserID, af.r1.OrganizationUnitID, model.DeptOperations, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := af.svc.CanAccessResource(ctx, tt.actor, tt.unit, tt.dept)
			if err != nil {
				t.Fatalf("CanAccessResource 应成功: %v", err)
			}
			if got != tt.want {
				t.Errorf("期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

func TestAccessService_CanAccessResource_NoActivePosition(t *testing.T) {
	af := seedAccess(t)
	ctx := context.Background()

	orphan := model.NewGR("Sem Cargo", "orphan@madnezz.com", "hash", af.org.OrganizationID)
	if err := af.repo.User.Create(ctx, orphan); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	_, err := af.svc.CanAccessResource(ctx, orphan.UserID, af.s1.OrganizationUnitID, model.DeptOperations)
	if !errors.Is(err, ErrNoActivePosition) {
		t.Errorf("期望 ErrNoActivePosition，实际: %v", err)
	}
}

// ── 切换上下文后的 MASTER 作用域 ──

func TestAccessService_SwitchedMasterScopedToContextOrg(t *testing.T) {
	af := seedAccess(t)
	ctx := context.Background()

	if err := af.master.SwitchContext(model.RoleGR, af.org.OrganizationID, ""); err != nil {
		t.Fatalf("切换上下文失败: %v", err)
	}
	if err := af.repo.User.UpdateContext(ctx, af.master); err != nil {
		t.Fatalf("持久化上下文失败: %v", err)
	}

	// 合成作用域落在 company 根：组织内任意单元可达
	got, err := af.svc.CanAccessResource(ctx, af.master.UserID, af.s2.OrganizationUnitID, model.DeptFinancial)
	if err != nil {
		t.Fatalf("CanAccessResource 应成功: %v", err)
	}
	if !got {
		t.Error("切换中的 MASTER 在上下文组织内应可达")
	}
}

func TestAccessService_SwitchedMasterAsStoreManager(t *testing.T) {
	af := seedAccess(t)
	ctx := context.Background()

	if err := af.master.SwitchContext(model.RoleStoreManager, af.org.OrganizationID, af.s1.OrganizationUnitID); err != nil {
		t.Fatalf("切换上下文失败: %v", err)
	}
	if err := af.repo.User.UpdateContext(ctx, af.master); err != nil {
		t.Fatalf("持久化上下文失败: %v", err)
	}

	got, err := af.svc.CanAccessUnit(ctx, af.master.UserID, af.s1.OrganizationUnitID)
	if err != nil {
		t.Fatalf("CanAccessUnit 应成功: %v", err)
	}
	if !got {
		t.Error("店长上下文应可达本店")
	}

	got, err = af.svc.CanAccessUnit(ctx, af.master.UserID, af.s2.OrganizationUnitID)
	if err != nil {
		t.Fatalf("CanAccessUnit 应成功: %v", err)
	}
	if got {
		t.Error("店长上下文不应可达其他门店")
	}
}

// ── EffectivePermissions 测试（笛卡尔积展开） ──

func TestAccessService_EffectivePermissions_GR(t *testing.T) {
	af := seedAccess(t)

	perms, err := af.svc.EffectivePermissions(context.Background(), af.grUser.UserID)
	if err != nil {
		t.Fatalf("EffectivePermissions 应成功: %v", err)
	}
	// 可达单元 {R1, S1} × 授权部门 {operations, trade, marketing} = 6 条
	if len(perms) != 6 {
		t.Fatalf("期望 6 条有效权限，实际 %d", len(perms))
	}
	for _, p := range perms {
		if p.Level != string(model.LevelGR) {
			t.Errorf("期望 level=gr，实际=%s", p.Level)
		}
		if p.UnitID == af.s2.OrganizationUnitID || p.UnitID == af.r2.OrganizationUnitID {
			t.Errorf("有效权限不应覆盖不可达单元 %s", p.UnitID)
		}
	}
}

func TestAccessService_EffectivePermissions_GOCoversAllDepartments(t *testing.T) {
	af := seedAccess(t)

	perms, err := af.svc.EffectivePermissions(context.Background(), af.goUser.UserID)
	if err != nil {
		t.Fatalf("EffectivePermissions 应成功: %v", err)
	}
	// 可达单元 5 × 全部部门 6 = 30 条
	if len(perms) != 30 {
		t.Errorf("期望 30 条有效权限，实际 %d", len(perms))
	}
}

func TestAccessService_EffectivePermissions_GlobalMasterRejected(t *testing.T) {
	af := seedAccess(t)

	_, err := af.svc.EffectivePermissions(context.Background(), af.master.UserID)
	if !errors.Is(err, ErrNoActivePosition) {
		t.Errorf("未切换的 MASTER 无组织作用域，期望 ErrNoActivePosition，实际: %v", err)
	}
}

// ── CanManageUser 测试 ──

func TestAccessService_CanManageUser(t *testing.T) {
	af := seedAccess(t)
	ctx := context.Background()

	// R2 下的店长，GR Norte 不可达
	smSul := model.NewStoreManager("Gerente LS1", "sm-sul@madnezz.com", "hash", af.org.OrganizationID, af.s2.OrganizationUnitID)
	if err := af.repo.User.Create(ctx, smSul); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	af.placeUser(t, smSul, af.s2.OrganizationUnitID, model.LevelStoreManager, []model.DepartmentType{model.DeptOperations})

	// 同店第二位店长：单元可达但角色同级，管理仍须拒绝
	smPeer := model.NewStoreManager("Gerente LN1 副", "sm-peer@madnezz.com", "hash", af.org.OrganizationID, af.s1.OrganizationUnitID)
	if err := af.repo.User.Create(ctx, smPeer); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	af.placeUser(t, smPeer, af.s1.OrganizationUnitID, model.LevelStoreManager, []model.DepartmentType{model.DeptOperations})

	tests := []struct {
		name   string
		actor  string
		target string
		want   bool
	}{
		{"MASTER 管 GO", af.master.UserID, af.goUser.UserID, true},
		{"MASTER 管店长", af.master.UserID, af.smUser.UserID, true},
		{"GO 管 GR", af.goUser.UserID, af.grUser.UserID, true},
		{"GO 管店长", af.goUser.UserID, af.smUser.UserID, true},
		{"GR 管辖区内店长", af.grUser.UserID, af.smUser.UserID, true},
		{"GR 不可管辖区外店长", af.grUser.UserID, smSul.UserID, false},
		{"GR 不可管 GO", af.grUser.UserID, af.goUser.UserID, false},
		{"店长不可管店长", af.smUser.UserID, smSul.UserID, false},
		{"店长不可管同店同级店长", af.smUser.UserID, smPeer.UserID, false},
		{"任何人不可管 MASTER", af.goUser.UserID, af.master.UserID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := af.svc.CanManageUser(ctx, tt.actor, tt.target)
			if err != nil {
				t.Fatalf("CanManageUser 应成功: %v", err)
			}
			if got != tt.want {
				t.Errorf("期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

// ── ValidateDelegation 测试 ──

func TestAccessService_ValidateDelegation(t *testing.T) {
	af := seedAccess(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		delegator string
		delegatee model.PositionLevel
		dept      model.DepartmentType
		wantErr   bool
	}{
		{"MASTER 任意委派", af.master.UserID, model.LevelStoreManager, model.DeptFinancial, false},
		{"GO 向 GR 委派任意部门", af.goUser.UserID, model.LevelGR, model.DeptFinancial, false},
		{"GO 向店长委派", af.goUser.UserID, model.LevelStoreManager, model.DeptMacro, false},
		{"GR 向店长委派 operations", af.grUser.UserID, model.LevelStoreManager, model.DeptOperations, false},
		{"GR 向店长委派 trade", af.grUser.UserID, model.LevelStoreManager, model.DeptTrade, false},
		{"GR 向店长委派 marketing", af.grUser.UserID, model.LevelStoreManager, model.DeptMarketing, false},
		{"GR 向店长委派 financial 被拒", af.grUser.UserID, model.LevelStoreManager, model.DeptFinancial, true},
		{"GR 向 GR 委派被拒", af.grUser.UserID, model.LevelGR, model.DeptOperations, true},
		{"店长不可委派", af.smUser.UserID, model.LevelStoreManager, model.DeptOperations, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := af.svc.ValidateDelegation(ctx, tt.delegator, tt.delegatee, tt.dept)
			if tt.wantErr && !errors.Is(err, ErrDelegationDenied) {
				t.Errorf("期望 ErrDelegationDenied，实际: %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("委派应被允许，实际: %v", err)
			}
		})
	}
}
