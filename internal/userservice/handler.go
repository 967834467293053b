package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-app/inkwell/internal/common"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOperationInFlight  = errors.New("operation already in progress")
)

// NewUserService loads the mirrored user collection and returns the store.
func NewUserService(ctx context.Context, kv common.KVStore, cache *common.Cache, mb common.MessageProducer) (*UserService, error) {
	m, err := newUserModel(ctx, kv)
	if err != nil {
		return nil, err
	}

	return &UserService{
		m:        m,
		c:        cache,
		mb:       mb,
		inflight: make(map[string]struct{}),
	}, nil
}

// beginInflight marks a logical operation as in progress. It reports false
// when the same operation is already running, which is how a double-clicked
// register or login gets rejected instead of running twice.
func (s *UserService) beginInflight(key string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if _, ok := s.inflight[key]; ok {
		return false
	}

	s.inflight[key] = struct{}{}
	return true
}

func (s *UserService) endInflight(key string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	delete(s.inflight, key)
}

// Register creates a new user account, logs it in on the durable tier and
// publishes a user.registered event. Fails with ErrDuplicateEmail or
// ErrDuplicateUsername when another account already uses the email or
// username.
func (s *UserService) Register(ctx context.Context, fullName, username, email, password string) (*Session, error) {
	v := common.NewValidator()
	validateFullName(v, fullName)
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	key := "register:" + email
	if !s.beginInflight(key) {
		return nil, ErrOperationInFlight
	}
	defer s.endInflight(key)

	u := User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  fullName,
		CreatedAt: time.Now(),
	}

	if err := u.Password.set(password); err != nil {
		return nil, err
	}

	if err := s.m.insert(ctx, &u); err != nil {
		return nil, err
	}

	// Registration auto-logs-in on the durable tier.
	token, err := s.createSession(ctx, u, true)
	if err != nil {
		return nil, err
	}

	data := struct {
		Email    string
		FullName string
	}{
		Email:    u.Email,
		FullName: u.FullName,
	}

	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	if err := s.mb.Publish(ctx, eventData, common.UserRegisteredKey, common.UserExchange); err != nil {
		return nil, err
	}

	return &Session{Token: token, User: u}, nil
}

// Login authenticates by email and password. rememberMe picks the session
// tier: durable when true, session cache otherwise.
func (s *UserService) Login(ctx context.Context, email, password string, rememberMe bool) (*Session, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	key := "login:" + email
	if !s.beginInflight(key) {
		return nil, ErrOperationInFlight
	}
	defer s.endInflight(key)

	user, err := s.m.getByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.createSession(ctx, *user, rememberMe)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, User: *user}, nil
}

// Logout clears the session from both storage tiers. Idempotent.
func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.destroySession(ctx, token)
}

// CurrentUser resolves the session token to its user, checking the session
// cache first and the durable tier second.
func (s *UserService) CurrentUser(ctx context.Context, token string) (*User, error) {
	return s.resolveSession(ctx, token)
}

// UpdateUser merges the patch into the authenticated user's record, writes
// the collection through and refreshes the session copy.
func (s *UserService) UpdateUser(ctx context.Context, token string, patch *UpdateUserPatch) (*User, error) {
	sessionUser, err := s.resolveSession(ctx, token)
	if err != nil {
		return nil, err
	}

	// Merge into the authoritative record, not the session copy.
	user, err := s.m.getByID(sessionUser.ID)
	if err != nil {
		return nil, err
	}

	v := common.NewValidator()
	if patch.FullName != nil {
		validateFullName(v, *patch.FullName)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.Website != nil {
		user.Website = *patch.Website
	}
	if patch.SocialLinks != nil {
		links := *patch.SocialLinks
		user.SocialLinks = &links
	}

	if err := s.m.update(ctx, *user); err != nil {
		return nil, err
	}

	if err := s.refreshSession(ctx, token, *user); err != nil {
		return nil, err
	}

	return user, nil
}

func (u *User) IsAnonymous() bool {
	return u.ID == ""
}
