package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adil-khursheed/mysterymessage/internal/model"
	"github.com/adil-khursheed/mysterymessage/internal/store"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	accounts map[string]model.Account
	messages map[string][]model.Message // account id -> owned messages

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]model.Account),
		messages: make(map[string][]model.Message),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func errWithCode(code string) error {
	return errors.New(code)
}

func (s *Store) CreateAccount(_ context.Context, a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.TrimSpace(a.Username)
	if username == "" {
		return model.Account{}, errWithCode("username_required")
	}

	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Username, username) {
			return model.Account{}, store.ErrConflict
		}
	}

	now := s.now()
	a.ID = uuid.NewString()
	a.Username = username
	a.CreatedAt = now
	a.UpdatedAt = now
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) GetAccountByID(_ context.Context, id string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) GetAccountByUsername(_ context.Context, username string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Username, username) {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) MarkVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return store.ErrNotFound
	}
	a.IsVerified = true
	a.VerifyCode = ""
	a.UpdatedAt = s.now()
	s.accounts[id] = a
	return nil
}

func (s *Store) AddMessage(_ context.Context, accountID string, content string) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return model.Message{}, store.ErrNotFound
	}

	m := model.Message{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: s.now(),
	}
	s.messages[accountID] = append(s.messages[accountID], m)
	return m, nil
}

func (s *Store) ListMessages(_ context.Context, accountID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, store.ErrNotFound
	}

	owned := s.messages[accountID]
	out := make([]model.Message, len(owned))
	copy(out, owned)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteMessage(_ context.Context, accountID string, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.messages[accountID]
	for i, m := range owned {
		if m.ID == messageID {
			s.messages[accountID] = append(owned[:i:i], owned[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
