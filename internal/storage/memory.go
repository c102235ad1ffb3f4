package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/util"
)

// MemStorage 进程内存储，所有实体共用一个自增计数器
type MemStorage struct {
	emitter
	mu        sync.RWMutex
	users     map[uint]models.User
	protocols map[uint]models.EmergencyProtocol
	contacts  map[uint]models.EmergencyContact
	sessions  map[uint]models.UserSession
	nextID    uint
	now       func() time.Time
}

// NewMemStorage 创建并写入内置的规程与联系人
func NewMemStorage() *MemStorage {
	return NewMemStorageWithSignals(util.Sig())
}

func NewMemStorageWithSignals(sig *util.Signals) *MemStorage {
	s := &MemStorage{
		emitter:   emitter{sig: sig},
		users:     make(map[uint]models.User),
		protocols: make(map[uint]models.EmergencyProtocol),
		contacts:  make(map[uint]models.EmergencyContact),
		sessions:  make(map[uint]models.UserSession),
		nextID:    1,
		now:       time.Now,
	}
	now := s.now()
	for _, p := range models.SeedProtocols(now) {
		p.ID = s.allocID()
		s.protocols[p.ID] = p
	}
	for _, c := range models.SeedContacts() {
		c.ID = s.allocID()
		s.contacts[c.ID] = c
	}
	return s
}

// allocID 调用方需持有写锁
func (s *MemStorage) allocID() uint {
	id := s.nextID
	s.nextID++
	return id
}

func sortedByID[T any](m map[uint]T, keep func(T) bool) []T {
	ids := make([]uint, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, cmp.Compare[uint])
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (s *MemStorage) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u = u.Clone()
	return &u, nil
}

func (s *MemStorage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUsername(username), nil
}

// findUsername 调用方需持有锁
func (s *MemStorage) findUsername(username string) *models.User {
	for _, u := range sortedByID(s.users, nil) {
		if u.Username == username {
			u = u.Clone()
			return &u
		}
	}
	return nil
}

func (s *MemStorage) CreateUser(_ context.Context, in models.UserInsert) (*models.User, error) {
	s.mu.Lock()
	if s.findUsername(in.Username) != nil {
		s.mu.Unlock()
		return nil, ErrDuplicateUsername
	}
	u := in.NewUser(s.now())
	u.ID = s.allocID()
	s.users[u.ID] = u
	s.mu.Unlock()

	s.userCreated(u.Clone())
	out := u.Clone()
	return &out, nil
}

// UpdateUser 读取、合并、写回在同一把写锁内完成
func (s *MemStorage) UpdateUser(_ context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Username != nil && *patch.Username != u.Username {
		if other := s.findUsername(*patch.Username); other != nil {
			return nil, ErrDuplicateUsername
		}
	}
	patch.Apply(&u)
	s.users[id] = u
	out := u.Clone()
	return &out, nil
}

func (s *MemStorage) GetEmergencyProtocols(_ context.Context) ([]models.EmergencyProtocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := sortedByID(s.protocols, nil)
	for i := range list {
		list[i] = list[i].Clone()
	}
	return list, nil
}

// GetEmergencyProtocol type 可能重复，返回最早创建的一条
func (s *MemStorage) GetEmergencyProtocol(_ context.Context, protocolType string) (*models.EmergencyProtocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := sortedByID(s.protocols, func(p models.EmergencyProtocol) bool { return p.Type == protocolType })
	if len(matches) == 0 {
		return nil, nil
	}
	p := matches[0].Clone()
	return &p, nil
}

func (s *MemStorage) CreateEmergencyProtocol(_ context.Context, in models.ProtocolInsert) (*models.EmergencyProtocol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := in.NewProtocol(s.now())
	p.ID = s.allocID()
	s.protocols[p.ID] = p
	out := p.Clone()
	return &out, nil
}

func (s *MemStorage) GetEmergencyContacts(_ context.Context, country string) ([]models.EmergencyContact, error) {
	return s.contactsWhere(func(c models.EmergencyContact) bool { return c.Country == country }), nil
}

func (s *MemStorage) GetEmergencyContactsByType(_ context.Context, contactType, country string) ([]models.EmergencyContact, error) {
	return s.contactsWhere(func(c models.EmergencyContact) bool {
		return c.Type == contactType && c.Country == country
	}), nil
}

func (s *MemStorage) contactsWhere(keep func(models.EmergencyContact) bool) []models.EmergencyContact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := sortedByID(s.contacts, func(c models.EmergencyContact) bool { return c.IsActive && keep(c) })
	for i := range list {
		list[i] = list[i].Clone()
	}
	return list
}

func (s *MemStorage) CreateEmergencyContact(_ context.Context, in models.ContactInsert) (*models.EmergencyContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := in.NewContact()
	c.ID = s.allocID()
	s.contacts[c.ID] = c
	out := c.Clone()
	return &out, nil
}

func (s *MemStorage) CreateUserSession(_ context.Context, in models.SessionInsert) (*models.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := in.NewSession(s.now())
	sess.ID = s.allocID()
	s.sessions[sess.ID] = sess
	out := sess.Clone()
	return &out, nil
}

func (s *MemStorage) GetUserSession(_ context.Context, id uint) (*models.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	sess = sess.Clone()
	return &sess, nil
}

func (s *MemStorage) GetUserSessionsByUser(_ context.Context, userID uint) ([]models.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := sortedByID(s.sessions, func(sess models.UserSession) bool {
		return sess.UserID != nil && *sess.UserID == userID
	})
	for i := range list {
		list[i] = list[i].Clone()
	}
	return list, nil
}

func (s *MemStorage) UpdateUserSession(_ context.Context, id uint, patch models.SessionPatch) (*models.UserSession, error) {
	return s.mutateSession(id, patch.Apply)
}

func (s *MemStorage) AppendUserSessionAction(_ context.Context, id uint, action models.Action) (*models.UserSession, error) {
	return s.mutateSession(id, func(sess *models.UserSession) {
		sess.Actions = append(sess.Actions, action)
	})
}

func (s *MemStorage) EndUserSession(_ context.Context, id uint) (*models.UserSession, error) {
	return s.mutateSession(id, endSession(s.now))
}

func (s *MemStorage) mutateSession(id uint, mutate func(*models.UserSession)) (*models.UserSession, error) {
	s.mu.Lock()
	before, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	after := before.Clone()
	mutate(&after)
	s.sessions[id] = after
	s.mu.Unlock()

	s.sessionChanged(before, after.Clone())
	out := after.Clone()
	return &out, nil
}

func (s *MemStorage) CountActiveSessions(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, sess := range s.sessions {
		if sess.Active() {
			n++
		}
	}
	return n, nil
}

func (s *MemStorage) Ping(context.Context) error { return nil }
