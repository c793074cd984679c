package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRole(t *testing.T) {
	const domain = "@admin.school.ru"
	tests := []struct {
		name     string
		declared Role
		email    string
		want     Role
	}{
		{name: "declared admin", declared: RoleAdmin, email: "head@school.ru", want: RoleAdmin},
		{name: "admin domain", declared: RoleTeacher, email: "Ivanova@Admin.School.ru", want: RoleAdmin},
		{name: "teacher", declared: RoleTeacher, email: "ivanova@school.ru", want: RoleTeacher},
		{name: "no role", email: "pupil@school.ru", want: RoleStudent},
		{name: "lookalike domain", declared: RoleParent, email: "x@admin.school.ru.evil.com", want: RoleParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRole(tt.declared, tt.email, domain)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == RoleAdmin, Session{Role: got}.IsAdmin())
		})
	}
}
