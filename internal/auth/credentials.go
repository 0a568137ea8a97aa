package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/portfolio/pkg"
)

var (
	ErrPlaintextInProduction = errors.New("plaintext admin credentials are not allowed in production")
	ErrCredentialsNotSet     = errors.New("admin credentials not set")
)

// dummyPasswordHash is compared against when the username is unknown,
// so unknown users and wrong passwords take the same time.
var dummyPasswordHash = "$2a$14$H5aVoE1YSTxBF63MLgBfo.u0W7vNcx5JQb7LUix.DicQv3WESnYuq"

// CredentialsVerifier answers whether a username/password pair belongs to the admin.
// Unknown user and wrong password are indistinguishable.
type CredentialsVerifier interface {
	Verify(ctx context.Context, username, password string) bool
}

type adminStore interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
}

var (
	_ CredentialsVerifier = (*StoreVerifier)(nil)
	_ CredentialsVerifier = (*StaticVerifier)(nil)
	_ CredentialsVerifier = (*PlaintextVerifier)(nil)
	_ adminStore          = (*AdminRepo)(nil)
)

// StoreVerifier checks credentials against the admin_user table.
type StoreVerifier struct {
	store adminStore
	now   func() time.Time
}

func NewStoreVerifier(store adminStore) *StoreVerifier {
	return &StoreVerifier{
		store: store,
		now:   time.Now,
	}
}

func (v *StoreVerifier) Verify(ctx context.Context, username, password string) bool {
	admin, err := v.store.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrAdminNotFound) {
			log.Errorf("credentials verify, get admin: %s", err)
		}
		pkg.CheckPasswordHash(password, dummyPasswordHash)
		return false
	}

	if !pkg.CheckPasswordHash(password, admin.PasswordHash) || !admin.Active {
		return false
	}

	if err := v.store.UpdateLastLogin(ctx, admin.ID, v.now()); err != nil {
		log.Errorf("credentials verify, update last login for %s: %s", username, err)
	}

	return true
}

// StaticVerifier checks credentials against a single configured username and bcrypt hash.
type StaticVerifier struct {
	username     string
	passwordHash string
}

func NewStaticVerifier(username, passwordHash string) (*StaticVerifier, error) {
	if username == "" || passwordHash == "" {
		return nil, ErrCredentialsNotSet
	}
	if !pkg.IsPasswordHash(passwordHash) {
		return nil, errors.New("admin password hash is not a bcrypt hash")
	}
	return &StaticVerifier{
		username:     username,
		passwordHash: passwordHash,
	}, nil
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) bool {
	if !usernamesEqual(username, v.username) {
		pkg.CheckPasswordHash(password, dummyPasswordHash)
		return false
	}
	return pkg.CheckPasswordHash(password, v.passwordHash)
}

// PlaintextVerifier compares against a plaintext pair from the environment.
// Development bootstrap only.
type PlaintextVerifier struct {
	username string
	password string
}

func NewPlaintextVerifier(username, password string, production bool) (*PlaintextVerifier, error) {
	if production {
		return nil, ErrPlaintextInProduction
	}
	if username == "" || password == "" {
		return nil, ErrCredentialsNotSet
	}
	return &PlaintextVerifier{
		username: username,
		password: password,
	}, nil
}

func (v *PlaintextVerifier) Verify(_ context.Context, username, password string) bool {
	userOk := usernamesEqual(username, v.username)
	passOk := subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	return userOk && passOk
}

func usernamesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type VerifierParams struct {
	// Source is either "store" or "env".
	Source        string
	Production    bool
	Store         adminStore
	Username      string
	PasswordHash  string
	PlainPassword string
}

// NewCredentialsVerifier picks the credentials mechanism once, at startup.
// With the "env" source, a bcrypt hash is preferred; a plaintext password is
// accepted only outside production.
func NewCredentialsVerifier(params VerifierParams) (CredentialsVerifier, error) {
	switch params.Source {
	case "store":
		if params.Store == nil {
			return nil, errors.New("admin store not provided")
		}
		return NewStoreVerifier(params.Store), nil
	case "env":
		if params.PasswordHash != "" {
			return NewStaticVerifier(params.Username, params.PasswordHash)
		}
		v, err := NewPlaintextVerifier(params.Username, params.PlainPassword, params.Production)
		if err != nil {
			return nil, err
		}
		log.Warnln("using plaintext admin credentials from the environment, development only")
		return v, nil
	default:
		return nil, fmt.Errorf("unknown credentials source: %s", params.Source)
	}
}
