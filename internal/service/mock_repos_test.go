package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"culture-points/internal/model"
	"culture-points/internal/repository"
	pkgerrors "culture-points/pkg/errors"
	"culture-points/pkg/polish"
)

// ── Mock StaffRepository ──

type mockStaffRepo struct {
	staff map[string]*model.Staff // key: staff_id

	errAddScore error
	// hideExisting 模拟并发创建：查重时看不到已存在的工号
	hideExisting bool
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{staff: make(map[string]*model.Staff)}
}

func (m *mockStaffRepo) Create(_ context.Context, staff *model.Staff) error {
	if staff.StaffID == "" {
		staff.StaffID = "staff-" + staff.EmployeeID
	}
	if staff.Version == 0 {
		staff.Version = 1
	}
	for _, s := range m.staff {
		if strings.EqualFold(s.EmployeeID, staff.EmployeeID) {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *staff
	m.staff[staff.StaffID] = &cp
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*model.Staff, error) {
	if s, ok := m.staff[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.Staff, error) {
	for _, s := range m.staff {
		if strings.EqualFold(s.EmployeeID, employeeID) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	if m.hideExisting {
		return false, nil
	}
	_, err := m.GetByEmployeeID(ctx, employeeID)
	return err == nil, nil
}

func (m *mockStaffRepo) List(_ context.Context, filter repository.StaffFilter, offset, limit int) ([]model.Staff, int64, error) {
	var all []model.Staff
	for _, s := range m.staff {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Keyword != "" {
			kw := strings.ToLower(filter.Keyword)
			if !strings.Contains(strings.ToLower(s.Name), kw) && !strings.Contains(strings.ToLower(s.EmployeeID), kw) {
				continue
			}
		}
		if filter.JoinFrom != nil && s.JoinDate.Before(*filter.JoinFrom) {
			continue
		}
		if filter.JoinTo != nil && s.JoinDate.After(*filter.JoinTo) {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool {
		switch filter.ScoreSort {
		case "desc":
			if all[i].Score != all[j].Score {
				return all[i].Score > all[j].Score
			}
		case "asc":
			if all[i].Score != all[j].Score {
				return all[i].Score < all[j].Score
			}
		}
		return all[i].EmployeeID < all[j].EmployeeID
	})

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStaffRepo) ListAll(ctx context.Context) ([]model.Staff, error) {
	list, _, err := m.List(ctx, repository.StaffFilter{}, 0, len(m.staff))
	return list, err
}

func (m *mockStaffRepo) TopBy(ctx context.Context, column string, limit int) ([]model.Staff, error) {
	all, _ := m.ListAll(ctx)
	sort.SliceStable(all, func(i, j int) bool {
		if column == "login_count" {
			return all[i].LoginCount > all[j].LoginCount
		}
		return all[i].Score > all[j].Score
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockStaffRepo) UpdateStatus(_ context.Context, staff *model.Staff) error {
	stored, ok := m.staff[staff.StaffID]
	if !ok || stored.Version != staff.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = staff.Status
	stored.Version++
	staff.Version = stored.Version
	return nil
}

func (m *mockStaffRepo) UpdatePassword(_ context.Context, id, passwordHash string, mustChange bool) error {
	stored, ok := m.staff[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.PasswordHash = passwordHash
	stored.MustChangePassword = mustChange
	return nil
}

func (m *mockStaffRepo) IncrementLoginCount(_ context.Context, id string) error {
	if stored, ok := m.staff[id]; ok {
		stored.LoginCount++
	}
	return nil
}

func (m *mockStaffRepo) AddScore(_ context.Context, id string, amount int) error {
	if m.errAddScore != nil {
		return m.errAddScore
	}
	stored, ok := m.staff[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Score += amount
	return nil
}

// ── Mock ApplicationRepository ──

type mockApplicationRepo struct {
	apps map[string]*model.Application
	seq  int
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{apps: make(map[string]*model.Application)}
}

func (m *mockApplicationRepo) Create(_ context.Context, app *model.Application) error {
	if app.ApplicationID == "" {
		m.seq++
		app.ApplicationID = fmt.Sprintf("app-%d", m.seq)
	}
	cp := *app
	m.apps[app.ApplicationID] = &cp
	return nil
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	if a, ok := m.apps[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) ListPending(_ context.Context) ([]model.Application, error) {
	var list []model.Application
	for _, a := range m.apps {
		if a.Status == model.ApplicationPending {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].SubmitTime.Equal(list[j].SubmitTime) {
			return list[i].SubmitTime.Before(list[j].SubmitTime)
		}
		return list[i].ApplicationID < list[j].ApplicationID
	})
	return list, nil
}

func (m *mockApplicationRepo) List(_ context.Context, filter repository.ApplicationFilter, offset, limit int) ([]model.Application, int64, error) {
	var list []model.Application
	for _, a := range m.apps {
		if filter.ApplicantID != "" && a.ApplicantID != filter.ApplicantID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Dimension != "" && a.Dimension != filter.Dimension {
			continue
		}
		list = append(list, *a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SubmitTime.After(list[j].SubmitTime) })
	total := int64(len(list))
	if offset >= len(list) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], total, nil
}

func (m *mockApplicationRepo) Transition(_ context.Context, id, toStatus, opinion, reviewerID string, at time.Time) (bool, error) {
	a, ok := m.apps[id]
	if !ok || a.Status != model.ApplicationPending {
		return false, nil
	}
	a.Status = toStatus
	a.AdminOpinion = opinion
	a.ReviewedBy = &reviewerID
	a.ReviewedAt = &at
	return true, nil
}

func (m *mockApplicationRepo) CountByStatus(_ context.Context) ([]repository.StatusCount, error) {
	counts := make(map[string]int64)
	for _, a := range m.apps {
		counts[a.Status]++
	}
	var rows []repository.StatusCount
	for status, n := range counts {
		rows = append(rows, repository.StatusCount{Status: status, Count: n})
	}
	return rows, nil
}

func (m *mockApplicationRepo) CountByDimension(_ context.Context) ([]repository.DimensionCount, error) {
	counts := make(map[string]int64)
	for _, a := range m.apps {
		counts[a.Dimension]++
	}
	var rows []repository.DimensionCount
	for dim, n := range counts {
		rows = append(rows, repository.DimensionCount{Dimension: dim, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Dimension < rows[j].Dimension
	})
	return rows, nil
}

// ── Mock PointHistoryRepository ──

type mockPointHistoryRepo struct {
	entries []model.PointHistory
	staff   *mockStaffRepo
}

func newMockPointHistoryRepo(staff *mockStaffRepo) *mockPointHistoryRepo {
	return &mockPointHistoryRepo{staff: staff}
}

func (m *mockPointHistoryRepo) Create(_ context.Context, entry *model.PointHistory) error {
	for _, e := range m.entries {
		if e.ApplicationID == entry.ApplicationID {
			return errors.New("duplicate application_id")
		}
	}
	if entry.HistoryID == "" {
		entry.HistoryID = fmt.Sprintf("hist-%d", len(m.entries)+1)
	}
	entry.Seq = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockPointHistoryRepo) ListByStaff(_ context.Context, staffID string) ([]model.PointHistory, error) {
	var list []model.PointHistory
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].StaffID == staffID {
			list = append(list, m.entries[i])
		}
	}
	return list, nil
}

func (m *mockPointHistoryRepo) SumByStaff(_ context.Context) ([]repository.StaffScoreSum, error) {
	var rows []repository.StaffScoreSum
	for _, s := range m.staff.staff {
		row := repository.StaffScoreSum{
			StaffID:    s.StaffID,
			EmployeeID: s.EmployeeID,
			Name:       s.Name,
			Score:      s.Score,
		}
		for _, e := range m.entries {
			if e.StaffID == s.StaffID && e.Status == model.ApplicationApproved {
				row.HistorySum += e.Amount
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EmployeeID < rows[j].EmployeeID })
	return rows, nil
}

// ── Mock 事务执行器 ──

// mockTx 直接在同一组 mock 仓储上执行 fn，不具备回滚能力
type mockTx struct {
	repo  *repository.Repository
	calls int
}

func (m *mockTx) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	m.calls++
	return fn(m.repo)
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
	err    error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.tokens[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.tokens[jti]
	return ok, nil
}

// ── Mock Polisher ──

type mockPolisher struct {
	result *polish.Result
	err    error
	calls  int
}

func (m *mockPolisher) Polish(_ context.Context, _, _, _ string) (*polish.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// ── 测试夹具 ──

type testRepos struct {
	repo    *repository.Repository
	staff   *mockStaffRepo
	apps    *mockApplicationRepo
	history *mockPointHistoryRepo
	tx      *mockTx
}

func newTestRepos() *testRepos {
	staff := newMockStaffRepo()
	apps := newMockApplicationRepo()
	history := newMockPointHistoryRepo(staff)
	repo := &repository.Repository{
		Staff:        staff,
		Application:  apps,
		PointHistory: history,
	}
	return &testRepos{
		repo:    repo,
		staff:   staff,
		apps:    apps,
		history: history,
		tx:      &mockTx{repo: repo},
	}
}

// addStaff 直接写入员工，密码使用 MinCost 哈希
func (r *testRepos) addStaff(id, employeeID, role string, score int) *model.Staff {
	staff := &model.Staff{
		StaffID:    id,
		EmployeeID: employeeID,
		Name:       "员工" + employeeID,
		Role:       role,
		Score:      score,
		Status:     model.StaffStatusActive,
		JoinDate:   model.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	staff.Version = 1
	r.staff.staff[id] = staff
	return staff
}
