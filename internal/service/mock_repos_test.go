package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64

	// 角色/权限派生视图：测试直接按用户配置
	roleCodes map[int64][]string
	permCodes map[int64][]string
	// roleCodeByID 与 mockRoleRepo 保持一致，AssignRole 据此更新派生视图
	roleCodeByID map[int64]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:        make(map[int64]*model.User),
		nextID:       1,
		roleCodes:    make(map[int64][]string),
		permCodes:    make(map[int64][]string),
		roleCodeByID: make(map[int64]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if !u.IsDelete && u.UserNo == user.UserNo {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.users[id]; ok && !u.IsDelete {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUserNo(_ context.Context, userNo string) (*model.User, error) {
	for _, u := range m.users {
		if !u.IsDelete && u.UserNo == userNo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) SoftDelete(_ context.Context, id int64) error {
	if u, ok := m.users[id]; ok {
		u.IsDelete = true
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, collegeID *int64, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if u.IsDelete {
			continue
		}
		if collegeID != nil && (u.CollegeID == nil || *u.CollegeID != *collegeID) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	return pageSlice(all, offset, limit), total, nil
}

func (m *mockUserRepo) ListByColleges(_ context.Context, collegeIDs []int64) ([]model.User, error) {
	set := make(map[int64]struct{}, len(collegeIDs))
	for _, id := range collegeIDs {
		set[id] = struct{}{}
	}
	var result []model.User
	for _, u := range m.users {
		if u.IsDelete || u.CollegeID == nil {
			continue
		}
		if _, ok := set[*u.CollegeID]; ok {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUserRepo) RoleCodes(_ context.Context, userID int64) ([]string, error) {
	return m.roleCodes[userID], nil
}

func (m *mockUserRepo) PermissionCodes(_ context.Context, userID int64) ([]string, error) {
	return m.permCodes[userID], nil
}

func (m *mockUserRepo) AssignRole(_ context.Context, userID, roleID int64) error {
	if code, ok := m.roleCodeByID[roleID]; ok {
		m.roleCodes[userID] = append(m.roleCodes[userID], code)
	}
	return nil
}

func (m *mockUserRepo) RevokeRole(_ context.Context, userID, roleID int64) error {
	code := m.roleCodeByID[roleID]
	var kept []string
	for _, c := range m.roleCodes[userID] {
		if c != code {
			kept = append(kept, c)
		}
	}
	m.roleCodes[userID] = kept
	return nil
}

// ── Mock RoleRepository ──

type mockRoleRepo struct {
	roles  map[int64]*model.Role
	nextID int64
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{roles: make(map[int64]*model.Role), nextID: 1}
}

func (m *mockRoleRepo) Create(_ context.Context, role *model.Role) error {
	if role.ID == 0 {
		role.ID = m.nextID
		m.nextID++
	}
	m.roles[role.ID] = role
	return nil
}

func (m *mockRoleRepo) GetByID(_ context.Context, id int64) (*model.Role, error) {
	if r, ok := m.roles[id]; ok && !r.IsDelete {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoleRepo) GetByCode(_ context.Context, code string) (*model.Role, error) {
	for _, r := range m.roles {
		if !r.IsDelete && r.RoleCode == code {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoleRepo) List(_ context.Context, maxLevel *int) ([]model.Role, error) {
	var result []model.Role
	for _, r := range m.roles {
		if r.IsDelete {
			continue
		}
		if maxLevel != nil && r.RoleLevel < *maxLevel {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockRoleRepo) Update(_ context.Context, role *model.Role) error {
	m.roles[role.ID] = role
	return nil
}

func (m *mockRoleRepo) SoftDelete(_ context.Context, id int64) error {
	if r, ok := m.roles[id]; ok {
		r.IsDelete = true
	}
	return nil
}

func (m *mockRoleRepo) GrantPermission(_ context.Context, _, _ int64) error  { return nil }
func (m *mockRoleRepo) RevokePermission(_ context.Context, _, _ int64) error { return nil }

// ── Mock PermissionRepository ──

type mockPermissionRepo struct {
	perms  map[int64]*model.Permission
	nextID int64
}

func newMockPermissionRepo() *mockPermissionRepo {
	return &mockPermissionRepo{perms: make(map[int64]*model.Permission), nextID: 1}
}

func (m *mockPermissionRepo) Create(_ context.Context, perm *model.Permission) error {
	if perm.ID == 0 {
		perm.ID = m.nextID
		m.nextID++
	}
	m.perms[perm.ID] = perm
	return nil
}

func (m *mockPermissionRepo) GetByCode(_ context.Context, code string) (*model.Permission, error) {
	for _, p := range m.perms {
		if !p.IsDelete && p.PermissionCode == code {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPermissionRepo) List(_ context.Context) ([]model.Permission, error) {
	var result []model.Permission
	for _, p := range m.perms {
		if !p.IsDelete {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPermissionRepo) SoftDelete(_ context.Context, id int64) error {
	if p, ok := m.perms[id]; ok {
		p.IsDelete = true
	}
	return nil
}

// ── Mock SupervisorScopeRepository ──

type mockScopeRepo struct {
	scopes []*model.SupervisorScope
	nextID int64
}

func newMockScopeRepo() *mockScopeRepo {
	return &mockScopeRepo{nextID: 1}
}

func (m *mockScopeRepo) ListLive(_ context.Context, supervisorUserID int64) ([]model.SupervisorScope, error) {
	var result []model.SupervisorScope
	for _, s := range m.scopes {
		if !s.IsDelete && s.SupervisorUserID == supervisorUserID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockScopeRepo) Replace(_ context.Context, supervisorUserID int64, scopes []model.SupervisorScope) error {
	for _, s := range m.scopes {
		if s.SupervisorUserID == supervisorUserID {
			s.IsDelete = true
		}
	}
	for i := range scopes {
		sc := scopes[i]
		sc.ID = m.nextID
		m.nextID++
		sc.SupervisorUserID = supervisorUserID
		m.scopes = append(m.scopes, &sc)
	}
	return nil
}

// ── Mock CollegeRepository ──

type mockCollegeRepo struct {
	colleges map[int64]*model.College
	nextID   int64
}

func newMockCollegeRepo() *mockCollegeRepo {
	return &mockCollegeRepo{colleges: make(map[int64]*model.College), nextID: 1}
}

func (m *mockCollegeRepo) Create(_ context.Context, college *model.College) error {
	if college.ID == 0 {
		college.ID = m.nextID
		m.nextID++
	}
	m.colleges[college.ID] = college
	return nil
}

func (m *mockCollegeRepo) GetByID(_ context.Context, id int64) (*model.College, error) {
	if c, ok := m.colleges[id]; ok && !c.IsDelete {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCollegeRepo) GetByCode(_ context.Context, code string) (*model.College, error) {
	for _, c := range m.colleges {
		if !c.IsDelete && c.CollegeCode == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCollegeRepo) List(_ context.Context) ([]model.College, error) {
	var result []model.College
	for _, c := range m.colleges {
		if !c.IsDelete {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCollegeRepo) Update(_ context.Context, college *model.College) error {
	m.colleges[college.ID] = college
	return nil
}

func (m *mockCollegeRepo) SoftDelete(_ context.Context, id int64) error {
	if c, ok := m.colleges[id]; ok {
		c.IsDelete = true
	}
	return nil
}

// ── Mock ResearchRoomRepository ──

type mockResearchRoomRepo struct {
	rooms  map[int64]*model.ResearchRoom
	nextID int64
}

func newMockResearchRoomRepo() *mockResearchRoomRepo {
	return &mockResearchRoomRepo{rooms: make(map[int64]*model.ResearchRoom), nextID: 1}
}

func (m *mockResearchRoomRepo) Create(_ context.Context, room *model.ResearchRoom) error {
	if room.ID == 0 {
		room.ID = m.nextID
		m.nextID++
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *mockResearchRoomRepo) GetByID(_ context.Context, id int64) (*model.ResearchRoom, error) {
	if r, ok := m.rooms[id]; ok && !r.IsDelete {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResearchRoomRepo) GetByCode(_ context.Context, code string) (*model.ResearchRoom, error) {
	for _, r := range m.rooms {
		if !r.IsDelete && r.RoomCode == code {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResearchRoomRepo) ListByCollege(_ context.Context, collegeID int64) ([]model.ResearchRoom, error) {
	var result []model.ResearchRoom
	for _, r := range m.rooms {
		if r.IsDelete {
			continue
		}
		if collegeID != 0 && r.CollegeID != collegeID {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockResearchRoomRepo) Update(_ context.Context, room *model.ResearchRoom) error {
	m.rooms[room.ID] = room
	return nil
}

func (m *mockResearchRoomRepo) SoftDelete(_ context.Context, id int64) error {
	if r, ok := m.rooms[id]; ok {
		r.IsDelete = true
	}
	return nil
}

func (m *mockResearchRoomRepo) CollegeIDsOf(_ context.Context, roomIDs []int64) ([]int64, error) {
	seen := make(map[int64]struct{})
	var result []int64
	for _, id := range roomIDs {
		if r, ok := m.rooms[id]; ok && !r.IsDelete {
			if _, dup := seen[r.CollegeID]; !dup {
				seen[r.CollegeID] = struct{}{}
				result = append(result, r.CollegeID)
			}
		}
	}
	return result, nil
}

// ── Mock TimetableRepository ──

type mockTimetableRepo struct {
	timetables map[int64]*model.Timetable
	nextID     int64

	// createHook 非空时在 Create 入库前执行，用于模拟并发写入的撞键时序
	createHook func(tt *model.Timetable) error

	// 待评/已评列表需要查评教记录
	evalRepo *mockEvaluationRepo
}

func newMockTimetableRepo() *mockTimetableRepo {
	return &mockTimetableRepo{timetables: make(map[int64]*model.Timetable), nextID: 1}
}

func manualKeyOf(tt *model.Timetable) repository.TimetableManualKey {
	return repository.TimetableManualKey{
		AcademicYear: tt.AcademicYear,
		Semester:     tt.Semester,
		TeacherID:    tt.TeacherID,
		ClassName:    tt.ClassName,
		CourseName:   tt.CourseName,
		Weekday:      tt.Weekday,
		Period:       tt.Period,
		SectionTime:  tt.SectionTime,
		WeekInfo:     tt.WeekInfo,
		Classroom:    tt.Classroom,
	}
}

func (m *mockTimetableRepo) Create(_ context.Context, tt *model.Timetable) error {
	if m.createHook != nil {
		if err := m.createHook(tt); err != nil {
			return err
		}
	}
	// 模拟存活行上的部分唯一索引
	for _, existing := range m.timetables {
		if existing.IsDelete {
			continue
		}
		if tt.HasSyncIdentity() && existing.SyncSource == tt.SyncSource && existing.ExternalID == tt.ExternalID {
			return gorm.ErrDuplicatedKey
		}
		if !tt.HasSyncIdentity() && manualKeyOf(existing) == manualKeyOf(tt) {
			return gorm.ErrDuplicatedKey
		}
	}
	if tt.ID == 0 {
		tt.ID = m.nextID
		m.nextID++
	}
	m.timetables[tt.ID] = tt
	return nil
}

func (m *mockTimetableRepo) GetByID(_ context.Context, id int64) (*model.Timetable, error) {
	if tt, ok := m.timetables[id]; ok && !tt.IsDelete {
		return tt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) Update(_ context.Context, tt *model.Timetable) error {
	m.timetables[tt.ID] = tt
	return nil
}

func (m *mockTimetableRepo) SoftDelete(_ context.Context, id int64) error {
	if tt, ok := m.timetables[id]; ok {
		tt.IsDelete = true
	}
	return nil
}

func (m *mockTimetableRepo) FindBySyncIdentity(_ context.Context, syncSource int, externalID string) (*model.Timetable, error) {
	var deleted *model.Timetable
	for _, tt := range m.timetables {
		if tt.SyncSource == syncSource && tt.ExternalID == externalID {
			if !tt.IsDelete {
				return tt, nil
			}
			deleted = tt
		}
	}
	if deleted != nil {
		return deleted, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) FindByManualKey(_ context.Context, key repository.TimetableManualKey) (*model.Timetable, error) {
	var deleted *model.Timetable
	for _, tt := range m.timetables {
		if manualKeyOf(tt) == key {
			if !tt.IsDelete {
				return tt, nil
			}
			deleted = tt
		}
	}
	if deleted != nil {
		return deleted, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) List(_ context.Context, q repository.TimetableQuery) ([]model.Timetable, int64, error) {
	collegeSet := make(map[int64]struct{}, len(q.CollegeIDs))
	for _, id := range q.CollegeIDs {
		collegeSet[id] = struct{}{}
	}

	var all []model.Timetable
	for _, tt := range m.timetables {
		if tt.IsDelete {
			continue
		}
		if q.TeacherID != nil && tt.TeacherID != *q.TeacherID {
			continue
		}
		if len(collegeSet) > 0 {
			if _, ok := collegeSet[tt.CollegeID]; !ok {
				continue
			}
		}
		if q.AcademicYear != "" && tt.AcademicYear != q.AcademicYear {
			continue
		}
		if q.Semester != 0 && tt.Semester != q.Semester {
			continue
		}
		all = append(all, *tt)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	return pageSlice(all, q.Offset, q.Limit), total, nil
}

func (m *mockTimetableRepo) ListPendingForListener(ctx context.Context, listenerID int64, q repository.TimetableQuery) ([]model.Timetable, int64, error) {
	return m.listForListener(ctx, listenerID, q, false)
}

func (m *mockTimetableRepo) ListCompletedForListener(ctx context.Context, listenerID int64, q repository.TimetableQuery) ([]model.Timetable, int64, error) {
	return m.listForListener(ctx, listenerID, q, true)
}

func (m *mockTimetableRepo) listForListener(_ context.Context, listenerID int64, q repository.TimetableQuery, evaluated bool) ([]model.Timetable, int64, error) {
	var all []model.Timetable
	for _, tt := range m.timetables {
		if tt.IsDelete || tt.TeacherID == listenerID {
			continue
		}
		has := false
		if m.evalRepo != nil {
			for _, ev := range m.evalRepo.evaluations {
				if !ev.IsDelete && ev.TimetableID == tt.ID && ev.ListenTeacherID == listenerID {
					has = true
					break
				}
			}
		}
		if has != evaluated {
			continue
		}
		all = append(all, *tt)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	return pageSlice(all, q.Offset, q.Limit), total, nil
}

// ── Mock EvaluationRepository ──

type mockEvaluationRepo struct {
	evaluations map[int64]*model.TeachingEvaluation
	nextID      int64

	// createHook 非空时在 Create 入库前执行，用于模拟并发写入的撞键时序
	createHook func(ev *model.TeachingEvaluation) error

	// 预加载模拟用的数据源
	timetableRepo *mockTimetableRepo
	userRepo      *mockUserRepo
}

func newMockEvaluationRepo(ttRepo *mockTimetableRepo, userRepo *mockUserRepo) *mockEvaluationRepo {
	return &mockEvaluationRepo{
		evaluations:   make(map[int64]*model.TeachingEvaluation),
		nextID:        1,
		timetableRepo: ttRepo,
		userRepo:      userRepo,
	}
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (m *mockEvaluationRepo) preload(ev *model.TeachingEvaluation) *model.TeachingEvaluation {
	out := *ev
	if m.timetableRepo != nil {
		if tt, ok := m.timetableRepo.timetables[ev.TimetableID]; ok {
			ttCopy := *tt
			if m.userRepo != nil {
				if u, ok := m.userRepo.users[tt.TeacherID]; ok {
					ttCopy.Teacher = u
				}
			}
			out.Timetable = &ttCopy
		}
	}
	if m.userRepo != nil {
		if u, ok := m.userRepo.users[ev.TeachTeacherID]; ok {
			out.TeachTeacher = u
		}
		if u, ok := m.userRepo.users[ev.ListenTeacherID]; ok {
			out.ListenTeacher = u
		}
	}
	return &out
}

func (m *mockEvaluationRepo) Create(_ context.Context, ev *model.TeachingEvaluation) error {
	if m.createHook != nil {
		if err := m.createHook(ev); err != nil {
			return err
		}
	}
	for _, existing := range m.evaluations {
		if existing.EvaluationNo == ev.EvaluationNo {
			return gorm.ErrDuplicatedKey
		}
		if !existing.IsDelete &&
			existing.TimetableID == ev.TimetableID &&
			existing.ListenTeacherID == ev.ListenTeacherID &&
			sameDay(existing.ListenDate, ev.ListenDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	if ev.ID == 0 {
		ev.ID = m.nextID
		m.nextID++
	}
	m.evaluations[ev.ID] = ev
	return nil
}

func (m *mockEvaluationRepo) GetByID(_ context.Context, id int64) (*model.TeachingEvaluation, error) {
	if ev, ok := m.evaluations[id]; ok && !ev.IsDelete {
		return m.preload(ev), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEvaluationRepo) Update(_ context.Context, ev *model.TeachingEvaluation) error {
	stored := *ev
	stored.Timetable = nil
	stored.TeachTeacher = nil
	stored.ListenTeacher = nil
	m.evaluations[ev.ID] = &stored
	return nil
}

func (m *mockEvaluationRepo) SoftDelete(_ context.Context, id int64) error {
	if ev, ok := m.evaluations[id]; ok {
		ev.IsDelete = true
	}
	return nil
}

func (m *mockEvaluationRepo) ExistsLive(_ context.Context, timetableID, listenTeacherID int64, listenDate time.Time) (bool, error) {
	for _, ev := range m.evaluations {
		if !ev.IsDelete &&
			ev.TimetableID == timetableID &&
			ev.ListenTeacherID == listenTeacherID &&
			sameDay(ev.ListenDate, listenDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEvaluationRepo) FindPendingPlaceholder(_ context.Context, timetableID, listenTeacherID int64) (*model.TeachingEvaluation, error) {
	var found *model.TeachingEvaluation
	for _, ev := range m.evaluations {
		if ev.IsDelete || ev.TimetableID != timetableID || ev.ListenTeacherID != listenTeacherID {
			continue
		}
		if ev.Status != model.EvalStatusPendingReview || ev.TotalScore != 0 {
			continue
		}
		if found == nil || ev.ID < found.ID {
			found = ev
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (m *mockEvaluationRepo) List(_ context.Context, q repository.EvaluationListQuery) ([]model.TeachingEvaluation, int64, error) {
	var all []*model.TeachingEvaluation
	for _, ev := range m.evaluations {
		if ev.IsDelete {
			continue
		}
		if q.ListenTeacherID != nil && ev.ListenTeacherID != *q.ListenTeacherID {
			continue
		}
		if q.TeachTeacherID != nil && ev.TeachTeacherID != *q.TeachTeacherID {
			continue
		}
		if q.TimetableID != nil && ev.TimetableID != *q.TimetableID {
			continue
		}
		if q.Status != nil && ev.Status != *q.Status {
			continue
		}
		if q.ScoreLevel != "" && ev.ScoreLevel != q.ScoreLevel {
			continue
		}
		if q.EvalSource != "" && (ev.EvalSource == nil || *ev.EvalSource != q.EvalSource) {
			continue
		}
		if q.StartDate != nil && ev.ListenDate.Before(*q.StartDate) {
			continue
		}
		if q.EndDate != nil && ev.ListenDate.After(*q.EndDate) {
			continue
		}
		if q.AcademicYear != "" && q.Semester != 0 && m.timetableRepo != nil {
			tt, ok := m.timetableRepo.timetables[ev.TimetableID]
			if !ok || tt.AcademicYear != q.AcademicYear || tt.Semester != q.Semester {
				continue
			}
		}
		if len(q.CollegeIDs) > 0 && m.timetableRepo != nil {
			tt, ok := m.timetableRepo.timetables[ev.TimetableID]
			if !ok {
				continue
			}
			hit := false
			for _, id := range q.CollegeIDs {
				if tt.CollegeID == id {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		all = append(all, ev)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SubmitTime.After(all[j].SubmitTime) })

	total := int64(len(all))
	var result []model.TeachingEvaluation
	for i, ev := range all {
		if i < q.Offset {
			continue
		}
		if q.Limit > 0 && len(result) >= q.Limit {
			break
		}
		result = append(result, *m.preload(ev))
	}
	return result, total, nil
}

func (m *mockEvaluationRepo) ListForStats(_ context.Context, q repository.EvaluationStatsQuery) ([]model.TeachingEvaluation, error) {
	collegeSet := make(map[int64]struct{}, len(q.CollegeIDs))
	for _, id := range q.CollegeIDs {
		collegeSet[id] = struct{}{}
	}
	statusSet := make(map[int]struct{}, len(q.Statuses))
	for _, s := range q.Statuses {
		statusSet[s] = struct{}{}
	}

	var all []*model.TeachingEvaluation
	for _, ev := range m.evaluations {
		if ev.IsDelete {
			continue
		}
		var tt *model.Timetable
		if m.timetableRepo != nil {
			tt = m.timetableRepo.timetables[ev.TimetableID]
		}
		if tt == nil || tt.IsDelete {
			continue
		}
		if q.TeachTeacherID != nil && ev.TeachTeacherID != *q.TeachTeacherID {
			continue
		}
		if q.ListenTeacherID != nil && ev.ListenTeacherID != *q.ListenTeacherID {
			continue
		}
		if len(collegeSet) > 0 {
			if _, ok := collegeSet[tt.CollegeID]; !ok {
				continue
			}
		}
		if q.AcademicYear != "" && tt.AcademicYear != q.AcademicYear {
			continue
		}
		if q.Semester != 0 && tt.Semester != q.Semester {
			continue
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[ev.Status]; !ok {
				continue
			}
		}
		if q.SupervisorOnly && !ev.FromSupervisor() {
			continue
		}
		all = append(all, ev)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	result := make([]model.TeachingEvaluation, 0, len(all))
	for _, ev := range all {
		result = append(result, *m.preload(ev))
	}
	return result, nil
}

// ── Mock DimensionRepository ──

type mockDimensionRepo struct {
	dims map[int64]*model.EvaluationDimension
}

func newMockDimensionRepo() *mockDimensionRepo {
	return &mockDimensionRepo{dims: make(map[int64]*model.EvaluationDimension)}
}

func (m *mockDimensionRepo) ListActive(_ context.Context) ([]model.EvaluationDimension, error) {
	var result []model.EvaluationDimension
	for _, d := range m.dims {
		if !d.IsDelete && d.Status == 1 {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockDimensionRepo) GetByCode(_ context.Context, code string) (*model.EvaluationDimension, error) {
	for _, d := range m.dims {
		if !d.IsDelete && d.DimensionCode == code {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock EvaluationStatRepository ──

type mockStatRepo struct {
	teacherStats map[string]*model.TeacherEvaluationStat
	collegeStats map[string]*model.CollegeEvaluationStat
}

func newMockStatRepo() *mockStatRepo {
	return &mockStatRepo{
		teacherStats: make(map[string]*model.TeacherEvaluationStat),
		collegeStats: make(map[string]*model.CollegeEvaluationStat),
	}
}

func statKey(subject int64, year string, semester int) string {
	return fmt.Sprintf("%d#%s#%d", subject, year, semester)
}

func (m *mockStatRepo) UpsertTeacherStat(_ context.Context, stat *model.TeacherEvaluationStat) error {
	m.teacherStats[statKey(stat.TeacherID, stat.StatYear, stat.StatSemester)] = stat
	return nil
}

func (m *mockStatRepo) GetTeacherStat(_ context.Context, teacherID int64, statYear string, statSemester int) (*model.TeacherEvaluationStat, error) {
	if s, ok := m.teacherStats[statKey(teacherID, statYear, statSemester)]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStatRepo) UpsertCollegeStat(_ context.Context, stat *model.CollegeEvaluationStat) error {
	m.collegeStats[statKey(stat.CollegeID, stat.StatYear, stat.StatSemester)] = stat
	return nil
}

func (m *mockStatRepo) GetCollegeStat(_ context.Context, collegeID int64, statYear string, statSemester int) (*model.CollegeEvaluationStat, error) {
	if s, ok := m.collegeStats[statKey(collegeID, statYear, statSemester)]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── 组装 ──

// mockRepos 持有各 mock 实例，便于测试直接操作底层数据
type mockRepos struct {
	User       *mockUserRepo
	Role       *mockRoleRepo
	Permission *mockPermissionRepo
	Scope      *mockScopeRepo
	College    *mockCollegeRepo
	Room       *mockResearchRoomRepo
	Timetable  *mockTimetableRepo
	Evaluation *mockEvaluationRepo
	Dimension  *mockDimensionRepo
	Stat       *mockStatRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	timetables := newMockTimetableRepo()
	evaluations := newMockEvaluationRepo(timetables, users)
	timetables.evalRepo = evaluations
	m := &mockRepos{
		User:       users,
		Role:       newMockRoleRepo(),
		Permission: newMockPermissionRepo(),
		Scope:      newMockScopeRepo(),
		College:    newMockCollegeRepo(),
		Room:       newMockResearchRoomRepo(),
		Timetable:  timetables,
		Evaluation: evaluations,
		Dimension:  newMockDimensionRepo(),
		Stat:       newMockStatRepo(),
	}
	repo := &repository.Repository{
		User:         m.User,
		Role:         m.Role,
		Permission:   m.Permission,
		Scope:        m.Scope,
		College:      m.College,
		ResearchRoom: m.Room,
		Timetable:    m.Timetable,
		Evaluation:   m.Evaluation,
		Dimension:    m.Dimension,
		Stat:         m.Stat,
	}
	return repo, m
}

func pageSlice[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
