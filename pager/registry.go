package pager

import (
	"encoding/json"
	"github.com/alexandre-normand/pagerscot/store"
	"github.com/pkg/errors"
	"strings"
	"sync"
)

const (
	// UsersKey is the storage key holding the registered users
	UsersKey = "pagerduty_users"

	userSubject = "user"
)

// UserRecord links a chat user to a PagerDuty user
type UserRecord struct {
	ChatID      string `json:"uid"`
	Email       string `json:"email"`
	PagerDutyID string `json:"pd_id"`
}

// Storer is implemented by any value that has the GetString and PutString methods. The registry
// relies on the store.ErrNotFound semantics of store.StringStorer
type Storer interface {
	GetString(key string) (value string, err error)
	PutString(key string, value string) (err error)
}

// Registry holds the chat users registered with their PagerDuty identity. The storer is the source
// of truth and is read on every call
type Registry struct {
	storer Storer
	mu     sync.Mutex
}

// userIndex holds lookup maps of a loaded collection of users
type userIndex struct {
	users         []UserRecord
	byChatID      map[string]UserRecord
	byEmail       map[string]UserRecord
	byPagerDutyID map[string]UserRecord
}

// NewRegistry returns a new Registry persisting users with the given storer
func NewRegistry(storer Storer) (r *Registry) {
	r = new(Registry)
	r.storer = storer

	return r
}

// ListUsers returns all registered users in registration order
func (r *Registry) ListUsers() (users []UserRecord, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.load()
	if err != nil {
		return nil, err
	}

	return idx.users, nil
}

// GetUser returns the user registered with the chat ID or a NotFoundError
func (r *Registry) GetUser(chatID string) (u UserRecord, err error) {
	return r.find("chat id", chatID, func(idx userIndex) (UserRecord, bool) {
		u, ok := idx.byChatID[chatID]
		return u, ok
	})
}

// FindByEmail returns the user registered with the email or a NotFoundError
func (r *Registry) FindByEmail(email string) (u UserRecord, err error) {
	return r.find("email", email, func(idx userIndex) (UserRecord, bool) {
		u, ok := idx.byEmail[normalizeEmail(email)]
		return u, ok
	})
}

// FindByPagerDutyID returns the user registered with the PagerDuty ID or a NotFoundError
func (r *Registry) FindByPagerDutyID(pagerDutyID string) (u UserRecord, err error) {
	return r.find("PagerDuty id", pagerDutyID, func(idx userIndex) (UserRecord, bool) {
		u, ok := idx.byPagerDutyID[pagerDutyID]
		return u, ok
	})
}

func (r *Registry) find(field string, value string, lookup func(idx userIndex) (UserRecord, bool)) (u UserRecord, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.load()
	if err != nil {
		return UserRecord{}, err
	}

	u, ok := lookup(idx)
	if !ok {
		return UserRecord{}, &NotFoundError{Subject: userSubject, Field: field, Value: value}
	}

	return u, nil
}

// AddUser registers a new user. A ConflictError is returned if the chat ID or the email is already registered
func (r *Registry) AddUser(chatID string, email string, pagerDutyID string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.load()
	if err != nil {
		return err
	}

	if existing, ok := idx.byChatID[chatID]; ok {
		return &ConflictError{Field: "chat id", Value: chatID, Existing: existing}
	}

	if existing, ok := idx.byEmail[normalizeEmail(email)]; ok {
		return &ConflictError{Field: "email", Value: email, Existing: existing}
	}

	users := append(idx.users, UserRecord{ChatID: chatID, Email: email, PagerDutyID: pagerDutyID})

	return r.persist(users)
}

// RemoveUser unregisters the user with the chat ID. A NotFoundError is returned if no such user is registered
func (r *Registry) RemoveUser(chatID string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.load()
	if err != nil {
		return err
	}

	if _, ok := idx.byChatID[chatID]; !ok {
		return &NotFoundError{Subject: userSubject, Field: "chat id", Value: chatID}
	}

	remaining := make([]UserRecord, 0, len(idx.users))
	for _, u := range idx.users {
		if u.ChatID != chatID {
			remaining = append(remaining, u)
		}
	}

	return r.persist(remaining)
}

// load reads the users from the storer and indexes them. A missing key is an empty collection.
// Must be called with the lock held
func (r *Registry) load() (idx userIndex, err error) {
	users := make([]UserRecord, 0)

	raw, err := r.storer.GetString(UsersKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return userIndex{}, errors.Wrapf(err, "failed to load [%s]", UsersKey)
	}

	if err == nil && raw != "" {
		if err = json.Unmarshal([]byte(raw), &users); err != nil {
			return userIndex{}, errors.Wrapf(err, "failed to decode [%s]", UsersKey)
		}
	}

	return indexUsers(users), nil
}

// persist replaces the stored users with the given collection. Must be called with the lock held
func (r *Registry) persist(users []UserRecord) (err error) {
	raw, err := json.Marshal(users)
	if err != nil {
		return errors.Wrapf(err, "failed to encode [%s]", UsersKey)
	}

	if err = r.storer.PutString(UsersKey, string(raw)); err != nil {
		return errors.Wrapf(err, "failed to persist [%s]", UsersKey)
	}

	return nil
}

// indexUsers builds the lookup maps of a user collection. When more than one user shares
// a PagerDuty ID, the first one in storage order wins
func indexUsers(users []UserRecord) (idx userIndex) {
	idx.users = users
	idx.byChatID = make(map[string]UserRecord, len(users))
	idx.byEmail = make(map[string]UserRecord, len(users))
	idx.byPagerDutyID = make(map[string]UserRecord, len(users))

	for _, u := range users {
		idx.byChatID[u.ChatID] = u
		idx.byEmail[normalizeEmail(u.Email)] = u

		if _, exists := idx.byPagerDutyID[u.PagerDutyID]; !exists {
			idx.byPagerDutyID[u.PagerDutyID] = u
		}
	}

	return idx
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
