package staff

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memRepo struct {
	byEmail map[string]*Staff
}

func (m *memRepo) Create(_ context.Context, s *Staff) error {
	if _, ok := m.byEmail[s.Email]; ok {
		return ErrEmailDuplicate
	}
	s.ID = uint(len(m.byEmail) + 1)
	m.byEmail[s.Email] = s
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id uint) (*Staff, error) {
	for _, s := range m.byEmail {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, ErrStaffNotFound
}

func (m *memRepo) FindByEmail(_ context.Context, email string) (*Staff, error) {
	if s, ok := m.byEmail[email]; ok {
		return s, nil
	}
	return nil, ErrStaffNotFound
}

func newTestService() Service {
	return NewServiceWithCost(&memRepo{byEmail: map[string]*Staff{}}, bcrypt.MinCost)
}

func TestService_Register(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	st, err := svc.Register(ctx, "Marie@Library.org", "secret123", "Marie")
	require.NoError(t, err)
	assert.Equal(t, "marie@library.org", st.Email)
	assert.NotEqual(t, "secret123", st.Password)

	_, err = svc.Register(ctx, "marie@library.org", "secret123", "Marie")
	assert.True(t, errors.Is(err, ErrEmailDuplicate))

	tests := []struct {
		name, email, password, staffName string
		want                              error
	}{
		{"邮箱格式错误", "not-an-email", "secret123", "Paul", ErrInvalidEmail},
		{"密码太短", "paul@library.org", "abc12", "Paul", ErrWeakPassword},
		{"密码无数字", "paul@library.org", "abcdefghij", "Paul", ErrWeakPassword},
		{"姓名太短", "paul@library.org", "secret123", "P", ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, tt.staffName)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestService_Login(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "marie@library.org", "secret123", "Marie")
	require.NoError(t, err)

	st, err := svc.Login(ctx, "MARIE@library.org", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Marie", st.Name)

	_, err = svc.Login(ctx, "marie@library.org", "wrong1234")
	assert.True(t, errors.Is(err, ErrInvalidPassword))

	_, err = svc.Login(ctx, "nobody@library.org", "secret123")
	assert.True(t, errors.Is(err, ErrStaffNotFound))
}
