// Package identitysvc implements identity.Provider for a single configured administrator
// plus the demo accounts of the portal.
package identitysvc

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/identity"
)

// userNamespace derives stable user ids from emails.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://schoolportal/users"))

// Account is a known set of credentials.
type Account struct {
	Email        string
	Name         string
	Role         identity.Role
	PasswordHash []byte
}

type LocalProvider struct {
	accounts    map[string]Account
	adminDomain string
	demo        bool
}

var (
	_ identity.Provider     = (*LocalProvider)(nil)
	_ identity.DemoProvider = (*LocalProvider)(nil)
)

// NewLocalProvider registers the administrator of conf; its password is hashed here when no hash is configured.
func NewLocalProvider(conf *core.Config, accounts ...Account) (*LocalProvider, error) {
	p := &LocalProvider{
		accounts:    make(map[string]Account),
		adminDomain: conf.Auth.AdminDomain,
		demo:        conf.Auth.DemoLogin,
	}

	if conf.Auth.AdminEmail != "" {
		hash := []byte(conf.Auth.AdminPasswordHash)
		if len(hash) == 0 && conf.Auth.AdminPassword != "" {
			var err error
			if hash, err = HashPassword(conf.Auth.AdminPassword); err != nil {
				return nil, err
			}
		}
		if len(hash) > 0 {
			accounts = append(accounts, Account{Email: conf.Auth.AdminEmail, Name: "Administrator", Role: identity.RoleAdmin, PasswordHash: hash})
		}
	}
	for _, acc := range accounts {
		acc.Email = core.CleanString(acc.Email, true /* lower */)
		p.accounts[acc.Email] = acc
	}
	return p, nil
}

// HashPassword returns the bcrypt hash of pwd.
func HashPassword(pwd string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	return hash, errors.Wrap(err, "hashing password")
}

func (p *LocalProvider) Authenticate(_ context.Context, email, password string) (identity.Session, error) {
	email = core.CleanString(email, true /* lower */)
	acc, ok := p.accounts[email]
	if !ok {
		// same cost as a real check
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return identity.Session{}, identity.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return identity.Session{}, identity.ErrInvalidCredentials
	}
	return p.session(acc.Email, acc.Name, acc.Role), nil
}

// QuickLogin returns a demo student, or a demo administrator when admin is set.
func (p *LocalProvider) QuickLogin(_ context.Context, admin bool) (identity.Session, error) {
	if !p.demo {
		return identity.Session{}, identity.ErrDemoDisabled
	}
	if admin {
		return p.session("demo"+p.adminDomain, "Demo Admin", identity.RoleAdmin), nil
	}
	return p.session("demo.student@school.ru", "Demo Student", identity.RoleStudent), nil
}

func (p *LocalProvider) session(email, name string, role identity.Role) identity.Session {
	return identity.Session{
		UserID: uuid.NewSHA1(userNamespace, []byte(email)).String(),
		Email:  email,
		Name:   name,
		Role:   identity.ResolveRole(role, email, p.adminDomain),
	}
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not a password"), bcrypt.MinCost)
