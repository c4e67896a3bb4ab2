package services

import (
	"context"
	"strings"
	"sync"

	"frameit/internal/domain"
)

type mockEventRepo struct {
	mu        sync.Mutex
	events    map[string]*domain.Event
	getErr    error
	createErr error
	deleteErr error
	deleted   []string
}

func newMockEventRepo(events ...*domain.Event) *mockEventRepo {
	m := &mockEventRepo{events: make(map[string]*domain.Event)}
	for _, ev := range events {
		m.events[ev.ID] = ev
	}
	return m
}

func (m *mockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *mockEventRepo) Update(ctx context.Context, id string, fields domain.EventUpdate) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if fields.Name != nil {
		ev.Name = *fields.Name
	}
	if fields.Description != nil {
		ev.Description = *fields.Description
	}
	if fields.Location != nil {
		ev.Location = *fields.Location
	}
	if fields.WelcomeMessage != nil {
		ev.WelcomeMessage = *fields.WelcomeMessage
	}
	if fields.CoverImageKey != nil {
		ev.CoverImageKey = *fields.CoverImageKey
	}
	if fields.Tags != nil {
		ev.Tags = fields.Tags
	}
	return ev, nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.events, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAttendeeRepo struct {
	mu        sync.Mutex
	byKey     map[string]*domain.Attendee
	conflicts int
	upsertErr error
	exists    bool
	existsErr error
	userIDs   []string
	listErr   error
}

func newMockAttendeeRepo() *mockAttendeeRepo {
	return &mockAttendeeRepo{byKey: make(map[string]*domain.Attendee)}
}

func (m *mockAttendeeRepo) Upsert(ctx context.Context, attendee *domain.Attendee) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return false, domain.ErrConflict
	}
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	key := attendee.EventID + ":" + attendee.Email
	if existing, ok := m.byKey[key]; ok {
		attendee.ID = existing.ID
		attendee.JoinedAt = existing.JoinedAt
		stored := *attendee
		m.byKey[key] = &stored
		return false, nil
	}
	stored := *attendee
	m.byKey[key] = &stored
	return true, nil
}

func (m *mockAttendeeRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Attendee
	for key, a := range m.byKey {
		if strings.HasPrefix(key, eventID+":") {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockAttendeeRepo) ExistsByIdentifier(ctx context.Context, eventID, identifier string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *mockAttendeeRepo) ListUserIDsByEventID(ctx context.Context, eventID string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.userIDs, nil
}

type mockMembershipRepo struct {
	mu           sync.Mutex
	refs         map[string]*domain.MembershipRef
	addErr       error
	removeErrFor map[string]error
	removed      []string
	listErr      error
}

func newMockMembershipRepo(refs ...*domain.MembershipRef) *mockMembershipRepo {
	m := &mockMembershipRepo{refs: make(map[string]*domain.MembershipRef)}
	for _, ref := range refs {
		m.refs[ref.UserID+":"+ref.EventID] = ref
	}
	return m
}

func (m *mockMembershipRepo) Add(ctx context.Context, ref *domain.MembershipRef) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ref.UserID + ":" + ref.EventID
	if _, ok := m.refs[key]; ok {
		return nil
	}
	m.refs[key] = ref
	return nil
}

func (m *mockMembershipRepo) Remove(ctx context.Context, userID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.removeErrFor[userID]; err != nil {
		return err
	}
	delete(m.refs, userID+":"+eventID)
	m.removed = append(m.removed, userID)
	return nil
}

func (m *mockMembershipRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.MembershipRef, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.MembershipRef
	for key, ref := range m.refs {
		if strings.HasPrefix(key, userID+":") {
			out = append(out, ref)
		}
	}
	return out, nil
}

type mockUserRepo struct {
	users map[string]*domain.User
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	if m.users == nil {
		m.users = make(map[string]*domain.User)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type mockInvitationRepo struct {
	mu           sync.Mutex
	created      []*domain.EventInvitation
	createErrFor map[string]error
	list         []*domain.EventInvitation
	listErr      error
}

func (m *mockInvitationRepo) Create(ctx context.Context, inv *domain.EventInvitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErrFor[inv.Email]; err != nil {
		return err
	}
	inv.ID = "inv-" + inv.Email
	m.created = append(m.created, inv)
	return nil
}

func (m *mockInvitationRepo) ListByEventID(ctx context.Context, eventID string, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.list, len(m.list), nil
}

type mockCredentialIssuer struct {
	code string
	err  error
}

func (m *mockCredentialIssuer) IssueCredentials(ctx context.Context, eventID string) (*domain.AccessCredentials, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.AccessCredentials{
		AccessCode: m.code,
		QRCodeKey:  QRCodeKey(eventID),
	}, nil
}

type mockBlobStore struct {
	mu              sync.Mutex
	objects         map[string][]byte
	contentTypes    map[string]string
	putErr          error
	presignErr      error
	deletePrefixErr error
	deletedPrefixes []string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *mockBlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return nil
}

func (m *mockBlobStore) PresignGetURL(ctx context.Context, key string) (string, error) {
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return "https://blobs.test/" + key, nil
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *mockBlobStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	if m.deletePrefixErr != nil {
		return m.deletePrefixErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedPrefixes = append(m.deletedPrefixes, prefix)
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
		}
	}
	return nil
}

type mockQRRenderer struct {
	payloads []string
	err      error
}

func (m *mockQRRenderer) Render(payload string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.payloads = append(m.payloads, payload)
	return []byte("png:" + payload), nil
}

type mockEmailService struct {
	mu     sync.Mutex
	sent   []*domain.EventInvitationEmailData
	errFor map[string]error
}

func (m *mockEmailService) SendEventInvitation(ctx context.Context, data *domain.EventInvitationEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errFor[data.Email]; err != nil {
		return err
	}
	m.sent = append(m.sent, data)
	return nil
}
