package userservice

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell-app/inkwell/internal/common"
)

type mockProducer struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *mockProducer) Publish(_ context.Context, msg []byte, _ common.BindingKey, _ common.Exchange) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, msg)
	return nil
}

func (p *mockProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.messages)
}

func strptr(s string) *string {
	return &s
}

func setupTestService(t *testing.T) (*UserService, common.KVStore, *mockProducer) {
	t.Helper()

	kv := common.NewMemoryStore()
	producer := &mockProducer{}

	s, err := NewUserService(context.Background(), kv, common.NewCache(0, 0), producer)
	assert.NoError(t, err)

	return s, kv, producer
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("valid registration", func(t *testing.T) {
		s, _, producer := setupTestService(t)

		session, err := s.Register(ctx, "Test User", "testuser", "testuser@example.com", "TestPassword!23")
		assert.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.NotEmpty(t, session.User.ID)
		assert.Equal(t, "testuser", session.User.Username)
		assert.Equal(t, 1, s.m.count())
		assert.Equal(t, 1, producer.count())

		// auto-login: the token resolves immediately
		user, err := s.CurrentUser(ctx, session.Token)
		assert.NoError(t, err)
		assert.Equal(t, session.User.ID, user.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s, _, _ := setupTestService(t)

		_, err := s.Register(ctx, "Test User", "testuser", "testuser@example.com", "TestPassword!23")
		assert.NoError(t, err)

		_, err = s.Register(ctx, "Other User", "otheruser", "testuser@example.com", "TestPassword!23")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.Equal(t, 1, s.m.count())
	})

	t.Run("duplicate username", func(t *testing.T) {
		s, _, _ := setupTestService(t)

		_, err := s.Register(ctx, "Test User", "testuser", "testuser@example.com", "TestPassword!23")
		assert.NoError(t, err)

		_, err = s.Register(ctx, "Other User", "testuser", "other@example.com", "TestPassword!23")
		assert.ErrorIs(t, err, ErrDuplicateUsername)
		assert.Equal(t, 1, s.m.count())
	})

	t.Run("invalid inputs", func(t *testing.T) {
		s, _, _ := setupTestService(t)

		_, err := s.Register(ctx, "", "", "", "")
		var validationErr common.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Errors, "email")
		assert.Contains(t, validationErr.Errors, "username")
		assert.Contains(t, validationErr.Errors, "password")
		assert.Contains(t, validationErr.Errors, "full_name")
		assert.Equal(t, 0, s.m.count())
	})

	t.Run("collection survives restart", func(t *testing.T) {
		s, kv, _ := setupTestService(t)

		_, err := s.Register(ctx, "Test User", "testuser", "testuser@example.com", "TestPassword!23")
		assert.NoError(t, err)

		reloaded, err := NewUserService(ctx, kv, common.NewCache(0, 0), &mockProducer{})
		assert.NoError(t, err)
		assert.Equal(t, 1, reloaded.m.count())

		// the password hash must survive the mirror round trip
		_, err = reloaded.Login(ctx, "testuser@example.com", "TestPassword!23", false)
		assert.NoError(t, err)
	})
}

func TestInflightGuard(t *testing.T) {
	s, _, _ := setupTestService(t)

	assert.True(t, s.beginInflight("register:a@b.com"))
	assert.False(t, s.beginInflight("register:a@b.com"))
	assert.True(t, s.beginInflight("register:c@d.com"))

	s.endInflight("register:a@b.com")
	assert.True(t, s.beginInflight("register:a@b.com"))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T) (*UserService, common.KVStore) {
		s, kv, _ := setupTestService(t)
		_, err := s.Register(ctx, "Test User", "testuser", "testuser@example.com", "TestPassword!23")
		assert.NoError(t, err)
		return s, kv
	}

	t.Run("valid credentials", func(t *testing.T) {
		s, _ := register(t)

		session, err := s.Login(ctx, "testuser@example.com", "TestPassword!23", false)
		assert.NoError(t, err)
		assert.NotEmpty(t, session.Token)

		user, err := s.CurrentUser(ctx, session.Token)
		assert.NoError(t, err)
		assert.Equal(t, "testuser", user.Username)
	})

	t.Run("unknown email", func(t *testing.T) {
		s, _ := register(t)

		_, err := s.Login(ctx, "nobody@example.com", "TestPassword!23", false)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		s, _ := register(t)

		_, err := s.Login(ctx, "testuser@example.com", "WrongPassword!23", false)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("remembered session survives restart", func(t *testing.T) {
		s, kv := register(t)

		session, err := s.Login(ctx, "testuser@example.com", "TestPassword!23", true)
		assert.NoError(t, err)

		reloaded, err := NewUserService(ctx, kv, common.NewCache(0, 0), &mockProducer{})
		assert.NoError(t, err)

		user, err := reloaded.CurrentUser(ctx, session.Token)
		assert.NoError(t, err)
		assert.Equal(t, "testuser", user.Username)
	})

	t.Run("session-tier login does not survive restart", func(t *testing.T) {
		s, kv := register(t)

		// clear the durable session left by registration's auto-login
		assert.NoError(t, kv.Delete(ctx, common.KeyUser))

		session, err := s.Login(ctx, "testuser@example.com", "TestPassword!23", false)
		assert.NoError(t, err)

		reloaded, err := NewUserService(ctx, kv, common.NewCache(0, 0), &mockProducer{})
		assert.NoError(t, err)

		_, err = reloaded.CurrentUser(ctx, session.Token)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setupTestService(t)

	session, err := s.Register(ctx, "Test User", "testuser", "testuser@example.com", "TestPassword!23")
	assert.NoError(t, err)

	err = s.Logout(ctx, session.Token)
	assert.NoError(t, err)

	_, err = s.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	// idempotent
	err = s.Logout(ctx, session.Token)
	assert.NoError(t, err)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("merges patch fields", func(t *testing.T) {
		s, kv, _ := setupTestService(t)

		session, err := s.Register(ctx, "Test User", "testuser", "testuser@example.com", "TestPassword!23")
		assert.NoError(t, err)

		updated, err := s.UpdateUser(ctx, session.Token, &UpdateUserPatch{
			Bio:         strptr("I write things."),
			SocialLinks: &SocialLinks{GitHub: "testuser"},
		})
		assert.NoError(t, err)
		assert.Equal(t, "I write things.", updated.Bio)
		assert.Equal(t, "testuser", updated.SocialLinks.GitHub)
		assert.Equal(t, "Test User", updated.FullName)

		// the collection entry, the session copy and the mirror all agree
		current, err := s.CurrentUser(ctx, session.Token)
		assert.NoError(t, err)
		assert.Equal(t, "I write things.", current.Bio)

		reloaded, err := NewUserService(ctx, kv, common.NewCache(0, 0), &mockProducer{})
		assert.NoError(t, err)
		fromMirror, err := reloaded.m.getByID(session.User.ID)
		assert.NoError(t, err)
		assert.Equal(t, "I write things.", fromMirror.Bio)
	})

	t.Run("no session", func(t *testing.T) {
		s, _, _ := setupTestService(t)

		_, err := s.UpdateUser(ctx, "BOGUSTOKEN", &UpdateUserPatch{Bio: strptr("x")})
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestIntroSeen(t *testing.T) {
	s, _, _ := setupTestService(t)

	assert.False(t, s.IntroSeen("sometoken"))
	s.MarkIntroSeen("sometoken")
	assert.True(t, s.IntroSeen("sometoken"))
	assert.False(t, s.IntroSeen("othertoken"))
}
