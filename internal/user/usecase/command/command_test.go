package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/orderflow/internal/user/domain"
	"github.com/tair/orderflow/pkg/auth"
)

type fakeUserRepository struct {
	nextID uint
	users  map[uint]*domain.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[uint]*domain.User)}
}

func (r *fakeUserRepository) Create(user *domain.User) error {
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepository) FindByID(id uint) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepository) FindByUsername(username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepository) FindByEmail(email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepository) Update(user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func TestRegisterUser(t *testing.T) {
	cmd := RegisterUserCommand{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret1",
		FullName: "Alice Doe",
	}

	t.Run("registers with hashed password and default role", func(t *testing.T) {
		repo := newFakeUserRepository()
		handler := NewRegisterUserHandler(repo)

		user, err := handler.Handle(cmd)

		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "s3cret1", user.Password)
		assert.True(t, auth.CheckPassword(user.Password, "s3cret1"))
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		repo := newFakeUserRepository()
		handler := NewRegisterUserHandler(repo)

		_, err := handler.Handle(cmd)
		require.NoError(t, err)

		dup := cmd
		dup.Email = "other@example.com"
		_, err = handler.Handle(dup)
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		handler := NewRegisterUserHandler(newFakeUserRepository())

		short := cmd
		short.Password = "abc"
		_, err := handler.Handle(short)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		handler := NewRegisterUserHandler(newFakeUserRepository())

		bad := cmd
		bad.Role = "superuser"
		_, err := handler.Handle(bad)
		assert.Error(t, err)
	})
}

func TestLoginUser(t *testing.T) {
	setup := func(t *testing.T) (*LoginUserHandler, *fakeUserRepository) {
		t.Helper()
		repo := newFakeUserRepository()
		register := NewRegisterUserHandler(repo)
		_, err := register.Handle(RegisterUserCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "s3cret1",
			FullName: "Alice Doe",
		})
		require.NoError(t, err)
		return NewLoginUserHandler(repo), repo
	}

	t.Run("returns a valid token on correct credentials", func(t *testing.T) {
		handler, _ := setup(t)

		resp, err := handler.Handle(LoginUserCommand{Username: "alice", Password: "s3cret1"})

		require.NoError(t, err)
		require.NotEmpty(t, resp.Token)

		claims, err := auth.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		handler, _ := setup(t)

		_, err := handler.Handle(LoginUserCommand{Username: "alice", Password: "wrong"})
		assert.Error(t, err)
	})

	t.Run("rejects deactivated account", func(t *testing.T) {
		handler, repo := setup(t)
		user, _ := repo.FindByUsername("alice")
		user.IsActive = false

		_, err := handler.Handle(LoginUserCommand{Username: "alice", Password: "s3cret1"})
		assert.Error(t, err)
	})
}
