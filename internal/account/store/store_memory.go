// Package store persists account records in memory or PostgreSQL. Both
// implementations return pkg/platform/sentinel errors.
package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"deales/internal/account/models"
	"deales/pkg/domain"
	"deales/pkg/platform/sentinel"
)

// InMemoryStore keeps every account table behind one mutex.
type InMemoryStore struct {
	mu          sync.RWMutex
	users       map[domain.UserID]*models.User
	byEmail     map[string]domain.UserID
	dealerships map[domain.DealershipID]*models.Dealership
	locations   map[domain.DealershipID][]models.Location
	profiles    map[domain.UserID]*models.SalespersonProfile
	memberships []models.Membership
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:       make(map[domain.UserID]*models.User),
		byEmail:     make(map[string]domain.UserID),
		dealerships: make(map[domain.DealershipID]*models.Dealership),
		locations:   make(map[domain.DealershipID][]models.Location),
		profiles:    make(map[domain.UserID]*models.SalespersonProfile),
	}
}

func (s *InMemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return sentinel.ErrConflict
	}
	u := *user
	s.users[u.ID] = &u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *InMemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (s *InMemoryStore) FindUserByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *InMemoryStore) CreateDealership(_ context.Context, d *models.Dealership, primary *models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[d.OwnerUserID]; !ok {
		return sentinel.ErrNotFound
	}
	dd := *d
	s.dealerships[dd.ID] = &dd
	if primary != nil {
		s.locations[dd.ID] = append(s.locations[dd.ID], *primary)
	}
	return nil
}

// Locations returns a dealership's locations, primary first.
func (s *InMemoryStore) Locations(_ context.Context, id domain.DealershipID) ([]models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.locations[id]), nil
}

func (s *InMemoryStore) UpsertProfile(_ context.Context, p *models.SalespersonProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.UserID]; !ok {
		return sentinel.ErrNotFound
	}
	pp := *p
	s.profiles[pp.UserID] = &pp
	return nil
}

func (s *InMemoryStore) FindProfile(_ context.Context, userID domain.UserID) (*models.SalespersonProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *p
	return &out, nil
}

// AddMembership links a salesperson to a dealership. Adding the same pair
// again replaces its status.
func (s *InMemoryStore) AddMembership(_ context.Context, m models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dealerships[m.DealershipID]; !ok {
		return sentinel.ErrNotFound
	}
	for i, existing := range s.memberships {
		if existing.SalespersonUserID == m.SalespersonUserID && existing.DealershipID == m.DealershipID {
			s.memberships[i].Status = m.Status
			return nil
		}
	}
	s.memberships = append(s.memberships, m)
	return nil
}

func (s *InMemoryStore) ListMemberships(_ context.Context, userID domain.UserID, statuses []models.MembershipStatus) ([]models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Membership, 0)
	for _, m := range s.memberships {
		if m.SalespersonUserID != userID || !slices.Contains(statuses, m.Status) {
			continue
		}
		if d, ok := s.dealerships[m.DealershipID]; ok {
			m.DealershipName = cmp.Or(d.OperatingName, d.LegalName)
		}
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b models.Membership) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}
