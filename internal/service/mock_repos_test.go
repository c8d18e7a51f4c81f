package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/repository"
)

// newTestRepo 组装全 mock 的 Repository 聚合
// db 为空时 Transaction 直接执行回调，不带事务语义
func newTestRepo() *repository.Repository {
	return &repository.Repository{
		Organization:     newMockOrganizationRepo(),
		OrganizationUnit: newMockOrganizationUnitRepo(),
		Department:       newMockDepartmentRepo(),
		Position:         newMockPositionRepo(),
		User:             newMockUserRepo(),
	}
}

// ── Mock OrganizationRepository ──

type mockOrganizationRepo struct {
	orgs map[string]*model.Organization
}

func newMockOrganizationRepo() *mockOrganizationRepo {
	return &mockOrganizationRepo{orgs: make(map[string]*model.Organization)}
}

func (m *mockOrganizationRepo) Create(_ context.Context, org *model.Organization) error {
	if org.OrganizationID == "" {
		org.OrganizationID = "org-" + org.Code
	}
	m.orgs[org.OrganizationID] = org
	return nil
}

func (m *mockOrganizationRepo) GetByID(_ context.Context, id string) (*model.Organization, error) {
	if o, ok := m.orgs[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationRepo) GetByCode(_ context.Context, code string) (*model.Organization, error) {
	for _, o := range m.orgs {
		if o.Code == code {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, o := range m.orgs {
		if o.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOrganizationRepo) List(_ context.Context, offset, limit int) ([]model.Organization, int64, error) {
	var result []model.Organization
	for _, o := range m.orgs {
		result = append(result, *o)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockOrganizationRepo) Update(_ context.Context, org *model.Organization) error {
	m.orgs[org.OrganizationID] = org
	return nil
}

// ── Mock OrganizationUnitRepository ──

type mockOrganizationUnitRepo struct {
	units map[string]*model.OrganizationUnit
	seq   int
}

func newMockOrganizationUnitRepo() *mockOrganizationUnitRepo {
	return &mockOrganizationUnitRepo{units: make(map[string]*model.OrganizationUnit)}
}

func (m *mockOrganizationUnitRepo) Create(_ context.Context, unit *model.OrganizationUnit) error {
	if unit.OrganizationUnitID == "" {
		m.seq++
		unit.OrganizationUnitID = fmt.Sprintf("unit-%s-%d", strings.ToLower(unit.Code), m.seq)
	}
	m.units[unit.OrganizationUnitID] = unit
	return nil
}

func (m *mockOrganizationUnitRepo) GetByID(_ context.Context, id string) (*model.OrganizationUnit, error) {
	if u, ok := m.units[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationUnitRepo) GetRoot(_ context.Context, organizationID string) (*model.OrganizationUnit, error) {
	for _, u := range m.units {
		if u.OrganizationID == organizationID && u.Type == model.UnitTypeCompany && u.ParentID == nil {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationUnitRepo) GetByCodeAndType(_ context.Context, organizationID string, unitType model.UnitType, code string) (*model.OrganizationUnit, error) {
	for _, u := range m.units {
		if u.OrganizationID == organizationID && u.Type == unitType && u.Code == code {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationUnitRepo) ExistsByCodeAndType(_ context.Context, organizationID string, unitType model.UnitType, code string) (bool, error) {
	for _, u := range m.units {
		if u.OrganizationID == organizationID && u.Type == unitType && u.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOrganizationUnitRepo) ListByOrganization(_ context.Context, organizationID string, activeOnly bool) ([]model.OrganizationUnit, error) {
	var result []model.OrganizationUnit
	for _, u := range m.units {
		if u.OrganizationID != organizationID {
			continue
		}
		if activeOnly && !u.IsActive {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockOrganizationUnitRepo) ListChildren(_ context.Context, parentID string) ([]model.OrganizationUnit, error) {
	var result []model.OrganizationUnit
	for _, u := range m.units {
		if u.ParentID != nil && *u.ParentID == parentID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockOrganizationUnitRepo) Update(_ context.Context, unit *model.OrganizationUnit) error {
	m.units[unit.OrganizationUnitID] = unit
	return nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	depts map[string]*model.Department
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDepartmentRepo) CreateBatch(_ context.Context, depts []model.Department) error {
	for i := range depts {
		d := &depts[i]
		if d.DepartmentID == "" {
			d.DepartmentID = "dept-" + string(d.Type) + "-" + d.OrganizationID
		}
		m.depts[d.DepartmentID] = d
	}
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByType(_ context.Context, organizationID string, deptType model.DepartmentType) (*model.Department, error) {
	for _, d := range m.depts {
		if d.OrganizationID == organizationID && d.Type == deptType {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) ListByOrganization(_ context.Context, organizationID string) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		if d.OrganizationID == organizationID && d.IsActive {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	m.depts[dept.DepartmentID] = dept
	return nil
}

// ── Mock PositionRepository ──

type mockPositionRepo struct {
	positions []*model.Position
	seq       int
}

func newMockPositionRepo() *mockPositionRepo {
	return &mockPositionRepo{}
}

func (m *mockPositionRepo) Create(_ context.Context, pos *model.Position) error {
	if pos.PositionID == "" {
		m.seq++
		pos.PositionID = fmt.Sprintf("pos-%d", m.seq)
	}
	m.positions = append(m.positions, pos)
	return nil
}

func (m *mockPositionRepo) GetByID(_ context.Context, id string) (*model.Position, error) {
	for _, p := range m.positions {
		if p.PositionID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPositionRepo) GetActiveByUser(_ context.Context, userID string) (*model.Position, error) {
	// 与真实实现一致：多条激活职位时取最近的一条
	for i := len(m.positions) - 1; i >= 0; i-- {
		if m.positions[i].UserID == userID && m.positions[i].IsActive {
			return m.positions[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPositionRepo) ListByUnit(_ context.Context, organizationUnitID string) ([]model.Position, error) {
	var result []model.Position
	for _, p := range m.positions {
		if p.OrganizationUnitID == organizationUnitID && p.IsActive {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPositionRepo) AssignDepartments(_ context.Context, pos *model.Position, depts []model.Department) error {
	pos.Departments = depts
	return nil
}

func (m *mockPositionRepo) Update(_ context.Context, pos *model.Position) error {
	for i, p := range m.positions {
		if p.PositionID == pos.PositionID {
			m.positions[i] = pos
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) UpdateContext(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.UserID].Context = user.Context
	return nil
}

func (m *mockUserRepo) ListWithFilters(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var matched []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.OrganizationID != "" && (u.OrganizationID == nil || *u.OrganizationID != filters.OrganizationID) {
				continue
			}
			if filters.Role != "" && string(u.HierarchyRole) != filters.Role {
				continue
			}
			if filters.Status != "" && u.Status != filters.Status {
				continue
			}
			if filters.Keyword != "" &&
				!strings.Contains(strings.ToLower(u.Name), strings.ToLower(filters.Keyword)) &&
				!strings.Contains(strings.ToLower(u.Email), strings.ToLower(filters.Keyword)) {
				continue
			}
		}
		matched = append(matched, *u)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}
