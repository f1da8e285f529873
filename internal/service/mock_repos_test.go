package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
	"intranet-cesfam/backend/pkg/storage"
)

// ── Test fixture ──

type mocks struct {
	repo         *repository.Repository
	users        *mockUserRepo
	depts        *mockDeptRepo
	refs         *mockReferenceRepo
	requests     *mockRequestRepo
	calendar     *mockCalendarRepo
	leaves       *mockLeaveRepo
	documents    *mockDocumentRepo
	profiles     *mockProfileRepo
	announcement *mockAnnouncementRepo
	messages     *mockMessageRepo
	logins       *mockLoginRecordRepo
	store        *mockStorage
}

func newMocks() *mocks {
	users := newMockUserRepo()
	depts := newMockDeptRepo(users)
	m := &mocks{
		users:        users,
		depts:        depts,
		refs:         newMockReferenceRepo(),
		requests:     &mockRequestRepo{users: users, items: map[int64]*model.Request{}},
		calendar:     &mockCalendarRepo{users: users, items: map[int64]*model.CalendarEvent{}},
		leaves:       &mockLeaveRepo{users: users, items: map[int64]*model.LeaveRecord{}},
		documents:    &mockDocumentRepo{users: users, items: map[int64]*model.Document{}},
		profiles:     &mockProfileRepo{items: map[int64]*model.Profile{}},
		announcement: &mockAnnouncementRepo{users: users, items: map[int64]*model.Announcement{}},
		messages:     &mockMessageRepo{users: users, items: map[int64]*model.Message{}},
		logins:       &mockLoginRecordRepo{},
		store:        newMockStorage(),
	}
	m.repo = &repository.Repository{
		User:         m.users,
		Department:   m.depts,
		Reference:    m.refs,
		Request:      m.requests,
		Calendar:     m.calendar,
		Leave:        m.leaves,
		Document:     m.documents,
		Profile:      m.profiles,
		Announcement: m.announcement,
		Message:      m.messages,
		LoginRecord:  m.logins,
	}
	return m
}

var nopLogger = zap.NewNop()

func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
	depts  *mockDeptRepo
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User), nextID: 100}
}

// add stores u as-is (fixtures)
func (m *mockUserRepo) add(u *model.User) *model.User {
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) withRefs(u *model.User) *model.User {
	cp := *u
	if cp.DepartmentID != nil && m.depts != nil {
		if d, ok := m.depts.depts[*cp.DepartmentID]; ok {
			dc := *d
			dc.Head = nil
			cp.Department = &dc
		}
	}
	return &cp
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.RUT == u.RUT {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return m.withRefs(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByRUT(_ context.Context, rut int) (*model.User, error) {
	for _, u := range m.users {
		if u.RUT == rut {
			return m.withRefs(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	cp.Department, cp.Position = nil, nil
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, f repository.UserListFilter, p repository.Page) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range m.users {
		if f.Initial != "" && !strings.HasPrefix(strings.ToLower(u.Name), strings.ToLower(f.Initial)) {
			continue
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.Keyword)) {
			continue
		}
		if f.DepartmentID > 0 && u.DeptID() != f.DepartmentID {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, *m.withRefs(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, p), int64(len(out)), nil
}

func (m *mockUserRepo) CountByDepartment(_ context.Context, deptID int64) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.DeptID() == deptID {
			n++
		}
	}
	return n, nil
}

func (m *mockUserRepo) deptOf(userID int64) int64 {
	if u, ok := m.users[userID]; ok {
		return u.DeptID()
	}
	return 0
}

func (m *mockUserRepo) ref(userID int64) *model.User {
	if u, ok := m.users[userID]; ok {
		return m.withRefs(u)
	}
	return nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts  map[int64]*model.Department
	nextID int64
	users  *mockUserRepo
}

func newMockDeptRepo(users *mockUserRepo) *mockDeptRepo {
	m := &mockDeptRepo{depts: make(map[int64]*model.Department), users: users}
	users.depts = m
	return m
}

func (m *mockDeptRepo) add(name string) *model.Department {
	m.nextID++
	d := &model.Department{ID: m.nextID, Name: name}
	m.depts[d.ID] = d
	return d
}

func (m *mockDeptRepo) withHead(d *model.Department) *model.Department {
	cp := *d
	if cp.HeadID != nil {
		if u, ok := m.users.users[*cp.HeadID]; ok {
			uc := *u
			cp.Head = &uc
		}
	}
	return &cp
}

func (m *mockDeptRepo) Create(_ context.Context, d *model.Department) error {
	m.nextID++
	d.ID = m.nextID
	cp := *d
	m.depts[d.ID] = &cp
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id int64) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		return m.withHead(d), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Name == name {
			return m.withHead(d), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByHead(_ context.Context, userID int64) (*model.Department, error) {
	for _, d := range m.depts {
		if d.HeadID != nil && *d.HeadID == userID {
			return m.withHead(d), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var out []model.Department
	for _, d := range m.depts {
		out = append(out, *m.withHead(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockDeptRepo) Update(_ context.Context, d *model.Department) error {
	cp := *d
	cp.Head = nil
	m.depts[d.ID] = &cp
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id int64) error {
	delete(m.depts, id)
	return nil
}

// SetHead enforces the unique head_id index like the database does
func (m *mockDeptRepo) SetHead(_ context.Context, deptID int64, userID *int64) error {
	d, ok := m.depts[deptID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if userID != nil {
		for _, other := range m.depts {
			if other.ID != deptID && other.HeadID != nil && *other.HeadID == *userID {
				return gorm.ErrDuplicatedKey
			}
		}
		v := *userID
		d.HeadID = &v
	} else {
		d.HeadID = nil
	}
	return nil
}

func (m *mockDeptRepo) ClearHeadship(_ context.Context, userID int64) error {
	for _, d := range m.depts {
		if d.HeadID != nil && *d.HeadID == userID {
			d.HeadID = nil
		}
	}
	return nil
}

// ── Mock ReferenceRepository ──

type mockReferenceRepo struct {
	positions    map[int64]*model.Position
	requestTypes map[int64]*model.RequestType
	eventTypes   map[int64]*model.EventType
}

func newMockReferenceRepo() *mockReferenceRepo {
	return &mockReferenceRepo{
		positions:    map[int64]*model.Position{1: {ID: 1, Name: "Enfermero(a)"}},
		requestTypes: map[int64]*model.RequestType{1: {ID: 1, Name: "Vacaciones"}, 2: {ID: 2, Name: "Permiso administrativo"}},
		eventTypes:   map[int64]*model.EventType{1: {ID: 1, Name: "Reunión"}},
	}
}

func (m *mockReferenceRepo) ListPositions(_ context.Context) ([]model.Position, error) {
	var out []model.Position
	for _, p := range m.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockReferenceRepo) GetPosition(_ context.Context, id int64) (*model.Position, error) {
	if p, ok := m.positions[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReferenceRepo) ListRequestTypes(_ context.Context) ([]model.RequestType, error) {
	var out []model.RequestType
	for _, t := range m.requestTypes {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockReferenceRepo) GetRequestType(_ context.Context, id int64) (*model.RequestType, error) {
	if t, ok := m.requestTypes[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReferenceRepo) ListEventTypes(_ context.Context) ([]model.EventType, error) {
	var out []model.EventType
	for _, t := range m.eventTypes {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockReferenceRepo) GetEventType(_ context.Context, id int64) (*model.EventType, error) {
	if t, ok := m.eventTypes[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RequestRepository ──

type mockRequestRepo struct {
	users  *mockUserRepo
	items  map[int64]*model.Request
	nextID int64
	// staleDecision makes the next UpdateDecision lose the version race
	staleDecision bool
}

func (m *mockRequestRepo) add(r *model.Request) *model.Request {
	m.nextID++
	r.ID = m.nextID
	if r.Status == "" {
		r.Status = model.RequestPending
	}
	m.items[r.ID] = r
	return r
}

func (m *mockRequestRepo) hydrate(r *model.Request) *model.Request {
	cp := *r
	cp.Requester = m.users.ref(r.RequesterID)
	cp.Type = &model.RequestType{ID: r.TypeID}
	return &cp
}

func (m *mockRequestRepo) Create(_ context.Context, r *model.Request) error {
	m.nextID++
	r.ID = m.nextID
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id int64) (*model.Request, error) {
	if r, ok := m.items[id]; ok {
		return m.hydrate(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequestRepo) Update(_ context.Context, r *model.Request) error {
	return m.versioned(r)
}

func (m *mockRequestRepo) UpdateDecision(_ context.Context, r *model.Request) error {
	if m.staleDecision {
		m.staleDecision = false
		return pkgerrors.ErrOptimisticLock
	}
	return m.versioned(r)
}

func (m *mockRequestRepo) versioned(r *model.Request) error {
	stored, ok := m.items[r.ID]
	if !ok || stored.Version != r.Version {
		return pkgerrors.ErrOptimisticLock
	}
	r.Version++
	cp := *r
	cp.Requester, cp.Type = nil, nil
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRequestRepo) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockRequestRepo) List(_ context.Context, f repository.RequestListFilter, p repository.Page) ([]model.Request, int64, error) {
	var out []model.Request
	for _, r := range m.items {
		if !f.Scope.Allows(r.RequesterID, m.users.deptOf(r.RequesterID), false) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.TypeID > 0 && r.TypeID != f.TypeID {
			continue
		}
		if f.Awaiting != "" && policy.AwaitingStage(r) != f.Awaiting {
			continue
		}
		if f.From != nil && r.StartDate.Before(*f.From) {
			continue
		}
		if f.To != nil && r.StartDate.After(*f.To) {
			continue
		}
		out = append(out, *m.hydrate(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, p), int64(len(out)), nil
}

// ── Mock CalendarRepository ──

type mockCalendarRepo struct {
	users  *mockUserRepo
	items  map[int64]*model.CalendarEvent
	nextID int64
}

func (m *mockCalendarRepo) Create(_ context.Context, e *model.CalendarEvent) error {
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockCalendarRepo) GetByID(_ context.Context, id int64) (*model.CalendarEvent, error) {
	if e, ok := m.items[id]; ok {
		cp := *e
		cp.Owner = m.users.ref(e.OwnerID)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCalendarRepo) Update(_ context.Context, e *model.CalendarEvent) error {
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockCalendarRepo) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockCalendarRepo) List(_ context.Context, f repository.CalendarListFilter) ([]model.CalendarEvent, error) {
	var out []model.CalendarEvent
	for _, e := range m.items {
		if !f.Scope.Allows(e.OwnerID, m.users.deptOf(e.OwnerID), e.IsGeneral) {
			continue
		}
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Date.After(*f.To) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Mock LeaveRepository ──

type mockLeaveRepo struct {
	users  *mockUserRepo
	items  map[int64]*model.LeaveRecord
	nextID int64
}

func (m *mockLeaveRepo) Create(_ context.Context, rec *model.LeaveRecord) error {
	m.nextID++
	rec.ID = m.nextID
	cp := *rec
	m.items[rec.ID] = &cp
	return nil
}

func (m *mockLeaveRepo) GetByID(_ context.Context, id int64) (*model.LeaveRecord, error) {
	if rec, ok := m.items[id]; ok {
		cp := *rec
		cp.Owner = m.users.ref(rec.OwnerID)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveRepo) Update(_ context.Context, rec *model.LeaveRecord) error {
	cp := *rec
	m.items[rec.ID] = &cp
	return nil
}

func (m *mockLeaveRepo) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockLeaveRepo) List(_ context.Context, f repository.LeaveListFilter, p repository.Page) ([]model.LeaveRecord, int64, error) {
	var out []model.LeaveRecord
	for _, rec := range m.items {
		if !f.Scope.Allows(rec.OwnerID, m.users.deptOf(rec.OwnerID), false) {
			continue
		}
		if f.OwnerID > 0 && rec.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, p), int64(len(out)), nil
}

// ── Mock DocumentRepository ──

type mockDocumentRepo struct {
	users     *mockUserRepo
	items     map[int64]*model.Document
	nextID    int64
	createErr error
}

func (m *mockDocumentRepo) Create(_ context.Context, d *model.Document) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	d.ID = m.nextID
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id int64) (*model.Document, error) {
	if d, ok := m.items[id]; ok {
		cp := *d
		cp.Uploader = m.users.ref(d.UploaderID)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) Update(_ context.Context, d *model.Document) error {
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDocumentRepo) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockDocumentRepo) List(_ context.Context, keyword string, p repository.Page) ([]model.Document, int64, error) {
	var out []model.Document
	for _, d := range m.items {
		if keyword != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(keyword)) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, p), int64(len(out)), nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	items     map[int64]*model.Profile
	updateErr error
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID int64) (*model.Profile, error) {
	if p, ok := m.items[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Create(_ context.Context, p *model.Profile) error {
	cp := *p
	m.items[p.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) Update(_ context.Context, p *model.Profile) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *p
	m.items[p.UserID] = &cp
	return nil
}

// ── Mock AnnouncementRepository ──

type mockAnnouncementRepo struct {
	users  *mockUserRepo
	items  map[int64]*model.Announcement
	nextID int64
}

func (m *mockAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAnnouncementRepo) GetByID(_ context.Context, id int64) (*model.Announcement, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		cp.Author = m.users.ref(a.AuthorID)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnnouncementRepo) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockAnnouncementRepo) List(_ context.Context, p repository.Page) ([]model.Announcement, int64, error) {
	var out []model.Announcement
	for _, a := range m.items {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, p), int64(len(out)), nil
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	users  *mockUserRepo
	items  map[int64]*model.Message
	nextID int64
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	m.nextID++
	msg.ID = m.nextID
	cp := *msg
	m.items[msg.ID] = &cp
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id int64) (*model.Message, error) {
	if msg, ok := m.items[id]; ok {
		cp := *msg
		cp.Sender = m.users.ref(msg.SenderID)
		cp.Recipient = m.users.ref(msg.RecipientID)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) ListInbox(_ context.Context, recipientID int64, unreadOnly bool, p repository.Page) ([]model.Message, int64, error) {
	return m.filter(p, func(msg *model.Message) bool {
		return msg.RecipientID == recipientID && (!unreadOnly || !msg.IsRead)
	})
}

func (m *mockMessageRepo) ListSent(_ context.Context, senderID int64, p repository.Page) ([]model.Message, int64, error) {
	return m.filter(p, func(msg *model.Message) bool { return msg.SenderID == senderID })
}

func (m *mockMessageRepo) filter(p repository.Page, keep func(*model.Message) bool) ([]model.Message, int64, error) {
	var out []model.Message
	for _, msg := range m.items {
		if keep(msg) {
			out = append(out, *msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, p), int64(len(out)), nil
}

func (m *mockMessageRepo) MarkRead(_ context.Context, id int64) error {
	if msg, ok := m.items[id]; ok {
		msg.IsRead = true
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) CountUnread(_ context.Context, recipientID int64) (int64, error) {
	var n int64
	for _, msg := range m.items {
		if msg.RecipientID == recipientID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

// ── Mock LoginRecordRepository ──

type mockLoginRecordRepo struct {
	items []model.LoginRecord
}

func (m *mockLoginRecordRepo) Create(_ context.Context, rec *model.LoginRecord) error {
	rec.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *rec)
	return nil
}

func (m *mockLoginRecordRepo) List(_ context.Context, userID int64, p repository.Page) ([]model.LoginRecord, int64, error) {
	var out []model.LoginRecord
	for _, r := range m.items {
		if userID == 0 || r.UserID == userID {
			out = append(out, r)
		}
	}
	return paginate(out, p), int64(len(out)), nil
}

// ── Mock Storage ──

type mockStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	seq     int
	deleted []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: make(map[string][]byte)}
}

func (m *mockStorage) Save(_ context.Context, dir, filename string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	ref := dir + "/" + string(rune('a'+m.seq)) + "-" + filename
	m.files[ref] = data
	return ref, nil
}

func (m *mockStorage) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStorage) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
	failErr error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.failErr != nil {
		return false, m.failErr
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── Fixtures ──

// addUser stores a user with a valid RUT derived from its id and a bcrypt hash of password.
func (m *mocks) addUser(name string, role model.Role, deptID int64, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m.users.nextID++
	id := m.users.nextID
	rut := 10000000 + int(id)
	u := &model.User{
		ID:           id,
		RUT:          rut,
		DV:           validation.CheckDigit(rut),
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@cesfam.cl",
		PasswordHash: string(hash),
		Role:         role,
		RegisteredAt: time.Now(),
	}
	if deptID > 0 {
		u.DepartmentID = int64Ptr(deptID)
	}
	return m.users.add(u)
}

// makeHead sets u as head of dept in both directions
func (m *mocks) makeHead(u *model.User, dept *model.Department) {
	dept.HeadID = int64Ptr(u.ID)
	u.DepartmentID = int64Ptr(dept.ID)
	u.Role = model.RoleDepartmentHead
}

func actorOf(u *model.User) policy.Actor {
	return policy.Actor{UserID: u.ID, Role: u.Role, DepartmentID: u.DeptID()}
}

func actorOfID(id int64, role model.Role) policy.Actor {
	return policy.Actor{UserID: id, Role: role}
}

func rutOf(u *model.User) string {
	return validation.FormatRUT(u.RUT, u.DV)
}

// ── helpers ──

func paginate[T any](items []T, p repository.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
