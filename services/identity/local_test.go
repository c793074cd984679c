package identitysvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/identity"
)

func newProvider(t *testing.T, demo bool) *LocalProvider {
	conf := core.NewTestConfig()
	conf.Auth.AdminEmail = "admin"
	conf.Auth.AdminPasswordHash = ""
	conf.Auth.AdminPassword = "admin123"
	conf.Auth.DemoLogin = demo

	teacherHash, err := bcrypt.GenerateFromPassword([]byte("chalk"), bcrypt.MinCost)
	require.NoError(t, err)
	p, err := NewLocalProvider(conf,
		Account{Email: "Ivanova@School.ru", Name: "Ivanova", Role: identity.RoleTeacher, PasswordHash: teacherHash},
		Account{Email: "head@admin.school.ru", Name: "Head", Role: identity.RoleTeacher, PasswordHash: teacherHash},
	)
	require.NoError(t, err)
	return p
}

func TestLocalProvider_Authenticate(t *testing.T) {
	p := newProvider(t, false)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantRole identity.Role
		wantErr  error
	}{
		{name: "admin", email: " Admin ", password: "admin123", wantRole: identity.RoleAdmin},
		{name: "teacher", email: "ivanova@school.ru", password: "chalk", wantRole: identity.RoleTeacher},
		{name: "admin domain", email: "head@admin.school.ru", password: "chalk", wantRole: identity.RoleAdmin},
		{name: "wrong password", email: "admin", password: "admin", wantErr: identity.ErrInvalidCredentials},
		{name: "unknown", email: "nobody@school.ru", password: "x", wantErr: identity.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := p.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, sess.Role)
			assert.NotEmpty(t, sess.UserID)
		})
	}

	first, _ := p.Authenticate(ctx, "admin", "admin123")
	second, _ := p.Authenticate(ctx, "ADMIN", "admin123")
	assert.Equal(t, first.UserID, second.UserID, "user ids must be stable")
}

func TestLocalProvider_QuickLogin(t *testing.T) {
	ctx := context.Background()

	_, err := newProvider(t, false).QuickLogin(ctx, true)
	assert.Equal(t, identity.ErrDemoDisabled, err)

	p := newProvider(t, true)
	admin, err := p.QuickLogin(ctx, true)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	student, err := p.QuickLogin(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleStudent, student.Role)
	assert.NotEqual(t, admin.UserID, student.UserID)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("s3cret")))
}
