package userservice

import (
	"sync"
	"time"

	"github.com/inkwell-app/inkwell/internal/common"
)

const (
	// SessionTokenTime bounds the session-tier login lifetime. Remembered
	// logins live in the durable store and do not expire on their own.
	SessionTokenTime time.Duration = 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

// UserService owns the registered-user collection and the authenticated
// session. The collection lives in memory and is mirrored to the key-value
// store on every mutation.
type UserService struct {
	m  *UserModel
	c  *common.Cache
	mb common.MessageProducer

	// inflight guards register/login against double submission of the same
	// logical operation.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

type User struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FullName    string       `json:"full_name"`
	Bio         string       `json:"bio,omitempty"`
	Avatar      string       `json:"avatar,omitempty"`
	Website     string       `json:"website,omitempty"`
	SocialLinks *SocialLinks `json:"social_links,omitempty"`
	Password    Password     `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Session pairs a plaintext token handed to the client with the user it
// authenticates. Only the token's hash is ever stored.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateUserPatch carries the optional profile fields a user may change.
// Nil fields are left untouched.
type UpdateUserPatch struct {
	FullName    *string      `json:"full_name"`
	Bio         *string      `json:"bio"`
	Avatar      *string      `json:"avatar"`
	Website     *string      `json:"website"`
	SocialLinks *SocialLinks `json:"social_links"`
}
