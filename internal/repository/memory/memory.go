// Package memory provides in-memory store implementations with the same
// semantics as the Postgres repositories. They back the service and handler
// tests and are safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-product-catalog/internal/model"
)

type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: map[int64]model.User{}}
}

func (s *UserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *UserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.ErrDuplicateEmail
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return model.ErrDuplicateUsername
		}
	}

	u.ID = s.nextID
	s.nextID++
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) Update(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}

	for id, existing := range s.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return model.ErrDuplicateEmail
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return model.ErrDuplicateUsername
		}
	}

	s.users[u.ID] = u
	return nil
}

type tokenRecord struct {
	userID    int64
	expiresAt time.Time
}

type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]tokenRecord
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: map[string]tokenRecord{}}
}

func (s *TokenStore) Store(_ context.Context, jti string, userID int64, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[jti] = tokenRecord{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *TokenStore) Delete(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tokens[jti]
	if !ok || !rec.expiresAt.After(time.Now()) {
		return false, nil
	}
	delete(s.tokens, jti)
	return true, nil
}

func (s *TokenStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	now := time.Now()
	for jti, rec := range s.tokens {
		if !rec.expiresAt.After(now) {
			delete(s.tokens, jti)
			purged++
		}
	}
	return purged, nil
}

type ProductStore struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]model.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{nextID: 1, products: map[int64]model.Product{}}
}

func (s *ProductStore) FindByID(_ context.Context, id int64) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	return p, nil
}

func (s *ProductStore) Create(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	s.products[p.ID] = *p
	return nil
}

func (s *ProductStore) Update(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return model.ErrProductNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *ProductStore) List(_ context.Context, query model.ProductQuery) ([]model.Product, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}
	if query.Limit > 100 {
		query.Limit = 100
	}

	s.mu.RLock()
	matched := make([]model.Product, 0)
	for _, p := range s.products {
		if matches(p, query) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	meta := model.NewMeta(query.Page, query.Limit, len(matched))

	start := (query.Page - 1) * query.Limit
	if start >= len(matched) {
		return []model.Product{}, meta, nil
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], meta, nil
}

func matches(p model.Product, query model.ProductQuery) bool {
	if query.Category != "" && string(p.Category) != query.Category {
		return false
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		haystack := strings.ToLower(p.Name + " " + p.Description)
		for _, word := range strings.Fields(strings.ToLower(search)) {
			if !strings.Contains(haystack, word) {
				return false
			}
		}
		return true
	}

	if query.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(query.Name)) {
		return false
	}
	if query.Description != "" && !strings.Contains(strings.ToLower(p.Description), strings.ToLower(query.Description)) {
		return false
	}
	return true
}
