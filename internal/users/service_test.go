package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
)

type memoryUserRepo struct {
	users  []auth.User
	nextID int64
}

func (m *memoryUserRepo) ListUsers(ctx context.Context) ([]auth.User, error) {
	return append([]auth.User(nil), m.users...), nil
}

func (m *memoryUserRepo) CreateUser(ctx context.Context, user auth.User) (int64, error) {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return 0, ErrUsernameTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users = append(m.users, user)
	return user.ID, nil
}

func TestCreateHashesPassword(t *testing.T) {
	repo := &memoryUserRepo{}
	svc := NewService(repo, nil)

	id, err := svc.Create(context.Background(), nil, CreateInput{
		Username: "amal",
		Password: "Str0ngPass!",
		Role:     rbac.RoleProcurement,
		Language: "ar",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	created := repo.users[0]
	require.NotEqual(t, "Str0ngPass!", created.PasswordHash)
	require.True(t, auth.VerifyPassword("Str0ngPass!", created.PasswordHash))
	require.Equal(t, "ar", created.Language)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := NewService(&memoryUserRepo{}, nil)

	_, err := svc.Create(context.Background(), nil, CreateInput{
		Username: "bad",
		Password: "Str0ngPass!",
		Role:     rbac.Role("superuser"),
	})
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := &memoryUserRepo{}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), nil, CreateInput{Username: "amal", Password: "Str0ngPass!", Role: rbac.RoleViewer})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), nil, CreateInput{Username: "amal", Password: "Other1234!", Role: rbac.RoleViewer})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"":      "en",
		"en":    "en",
		"en-US": "en",
		"ar":    "ar",
		"ar-SA": "ar",
		"fr":    "en",
		"??":    "en",
	}
	for input, want := range cases {
		require.Equal(t, want, NormalizeLanguage(input), "input %q", input)
	}
}
