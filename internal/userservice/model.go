package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/inkwell-app/inkwell/internal/common"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrNotFound          = errors.New("user not found")
)

// userRecord is the mirror representation of a User. The password hash is
// stripped from the public JSON shape and carried explicitly here.
type userRecord struct {
	User
	PasswordHash []byte `json:"password_hash,omitempty"`
}

// UserModel holds the user collection in memory and mirrors it to the
// key-value store under the "users" key on every mutation. The mirror is
// read back only by load at startup.
type UserModel struct {
	mu    sync.RWMutex
	kv    common.KVStore
	users []User
}

func newUserModel(ctx context.Context, kv common.KVStore) (*UserModel, error) {
	m := &UserModel{kv: kv}
	if err := m.load(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *UserModel) load(ctx context.Context) error {
	data, ok, err := m.kv.Get(ctx, common.KeyUsers)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	users := make([]User, 0, len(records))
	for _, r := range records {
		u := r.User
		u.Password = Password{hash: r.PasswordHash}
		users = append(users, u)
	}

	m.users = users
	return nil
}

// saveLocked writes the collection through to the mirror. Callers must hold mu.
func (m *UserModel) saveLocked(ctx context.Context) error {
	records := make([]userRecord, 0, len(m.users))
	for _, u := range m.users {
		records = append(records, userRecord{User: u, PasswordHash: u.Password.hash})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	return m.kv.Set(ctx, common.KeyUsers, data)
}

func (m *UserModel) insert(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
	}

	m.users = append(m.users, u.clone())

	return m.saveLocked(ctx)
}

func (m *UserModel) getByEmail(email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			user := u.clone()
			return &user, nil
		}
	}

	return nil, ErrNotFound
}

func (m *UserModel) getByID(id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			user := u.clone()
			return &user, nil
		}
	}

	return nil, ErrNotFound
}

func (m *UserModel) update(ctx context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == u.ID {
			m.users[i] = u.clone()
			return m.saveLocked(ctx)
		}
	}

	return ErrNotFound
}

func (m *UserModel) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users)
}

// clone copies the record deeply enough that callers cannot mutate store
// state without going through an update operation.
func (u User) clone() User {
	c := u
	if u.SocialLinks != nil {
		links := *u.SocialLinks
		c.SocialLinks = &links
	}
	return c
}
