package userservice

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/json"
	"errors"

	"github.com/inkwell-app/inkwell/internal/common"
)

var ErrNoSession = errors.New("no active session")

func newSessionToken() (string, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes), nil
}

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

// sessionRecord is the durable tier's "user" entry: the remembered session.
type sessionRecord struct {
	TokenHash []byte `json:"token_hash"`
	User      User   `json:"user"`
}

// createSession issues a token for the user. Remembered sessions go to the
// durable store under the "user" key and survive restarts; others live in
// the session cache until it expires or the process exits.
func (s *UserService) createSession(ctx context.Context, user User, remember bool) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	hash := hashToken(token)

	if remember {
		data, err := json.Marshal(sessionRecord{TokenHash: hash, User: user})
		if err != nil {
			return "", err
		}

		if err := s.m.kv.Set(ctx, common.KeyUser, data); err != nil {
			return "", err
		}

		return token, nil
	}

	s.c.Set(common.CacheKeySession(hash), user, SessionTokenTime)
	return token, nil
}

func (s *UserService) resolveSession(ctx context.Context, token string) (*User, error) {
	hash := hashToken(token)

	if value, ok := s.c.Get(common.CacheKeySession(hash)); ok {
		if user, ok := value.(User); ok {
			user = user.clone()
			return &user, nil
		}
	}

	data, ok, err := s.m.kv.Get(ctx, common.KeyUser)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSession
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}

	if !bytes.Equal(record.TokenHash, hash) {
		return nil, ErrNoSession
	}

	user := record.User.clone()
	return &user, nil
}

// refreshSession replaces the session's user copy in whichever tier holds it.
func (s *UserService) refreshSession(ctx context.Context, token string, user User) error {
	hash := hashToken(token)

	if _, ok := s.c.Get(common.CacheKeySession(hash)); ok {
		s.c.Set(common.CacheKeySession(hash), user, SessionTokenTime)
		return nil
	}

	data, ok, err := s.m.kv.Get(ctx, common.KeyUser)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	if !bytes.Equal(record.TokenHash, hash) {
		return nil
	}

	record.User = user
	updated, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.m.kv.Set(ctx, common.KeyUser, updated)
}

// destroySession clears the session from both tiers. Idempotent.
func (s *UserService) destroySession(ctx context.Context, token string) error {
	hash := hashToken(token)

	s.c.Cache.Delete(common.CacheKeySession(hash))
	s.c.Cache.Delete(common.CacheKeyIntroSeen(hash))

	return s.m.kv.Delete(ctx, common.KeyUser)
}

// MarkIntroSeen records that the intro splash has played for this session.
// The flag is session-scoped and never persisted.
func (s *UserService) MarkIntroSeen(token string) {
	s.c.Set(common.CacheKeyIntroSeen(hashToken(token)), true, SessionTokenTime)
}

func (s *UserService) IntroSeen(token string) bool {
	_, ok := s.c.Get(common.CacheKeyIntroSeen(hashToken(token)))
	return ok
}
