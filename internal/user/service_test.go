package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/portfolio-service/internal/user"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, id int64, patch user.Patch) (bool, error) {
	args := m.Called(ctx, id, patch)
	return args.Bool(0), args.Error(1)
}

func newTestService(repo user.Repository) user.Service {
	return user.NewServiceWithCost(repo, bcrypt.MinCost)
}

func hashPassword(t *testing.T, raw string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	input := user.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "a@x.com",
		Password:  "password123",
	}

	mockRepo.On("EmailExists", mock.Anything, input.Email).Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.Email == input.Email &&
			u.FirstName == input.FirstName &&
			u.LastName == input.LastName &&
			u.Timezone == user.DefaultTimezone &&
			u.UUID != uuid.Nil &&
			u.UUID.Version() == uuid.V4 &&
			u.PasswordHash != input.Password &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)) == nil
	})).Return(int64(1), nil).Once()

	created, err := userService.Register(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.Equal(t, user.DefaultTimezone, created.Timezone)
	require.NotEqual(t, uuid.Nil, created.UUID)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_KeepsExplicitTimezone(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	mockRepo.On("EmailExists", mock.Anything, "b@x.com").Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.Timezone == "America/New_York"
	})).Return(int64(2), nil).Once()

	_, err := userService.Register(context.Background(), user.RegisterInput{
		FirstName: "B", LastName: "C", Email: "b@x.com", Password: "password123", Timezone: "America/New_York",
	})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_DistinctUUIDs(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	var seen []uuid.UUID
	mockRepo.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Run(func(args mock.Arguments) {
			seen = append(seen, args.Get(1).(*user.User).UUID)
		}).
		Return(int64(1), nil)

	for _, email := range []string{"one@x.com", "two@x.com", "three@x.com"} {
		_, err := userService.Register(context.Background(), user.RegisterInput{Email: email, Password: "password123"})
		require.NoError(t, err)
	}

	require.Len(t, seen, 3)
	require.NotEqual(t, seen[0], seen[1])
	require.NotEqual(t, seen[1], seen[2])
	require.NotEqual(t, seen[0], seen[2])
}

func TestUserService_Register_EmailExists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	mockRepo.On("EmailExists", mock.Anything, "dup@x.com").Return(true, nil).Once()

	created, err := userService.Register(context.Background(), user.RegisterInput{Email: "dup@x.com", Password: "password123"})
	require.ErrorIs(t, err, user.ErrEmailExists)
	require.Nil(t, created)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_EmailRaceHitsConstraint(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	mockRepo.On("EmailExists", mock.Anything, "race@x.com").Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(int64(0), user.ErrEmailExists).Once()

	_, err := userService.Register(context.Background(), user.RegisterInput{Email: "race@x.com", Password: "password123"})
	require.ErrorIs(t, err, user.ErrEmailExists)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_EmptyPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	_, err := userService.Register(context.Background(), user.RegisterInput{Email: "a@x.com"})
	require.ErrorIs(t, err, user.ErrEmptyPassword)
	mockRepo.AssertNotCalled(t, "EmailExists", mock.Anything, mock.Anything)
}

func TestUserService_Register_StorageError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	storeErr := errors.New("connection reset")
	mockRepo.On("EmailExists", mock.Anything, "a@x.com").Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(int64(0), storeErr).Once()

	_, err := userService.Register(context.Background(), user.RegisterInput{Email: "a@x.com", Password: "password123"})
	require.Error(t, err)
	require.ErrorIs(t, err, storeErr)
	require.NotErrorIs(t, err, user.ErrEmailExists)
}

func TestUserService_Login_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	stored := user.User{
		ID:           1,
		UUID:         uuid.Must(uuid.NewV4()),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "a@x.com",
		PasswordHash: hashPassword(t, "password123"),
		Timezone:     user.DefaultTimezone,
		CreatedAt:    time.Now().Add(-time.Hour),
	}
	mockRepo.On("GetByEmail", mock.Anything, stored.Email).Return(&stored, nil).Once()

	found, err := userService.Login(context.Background(), stored.Email, "password123")
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(stored, *found))
	mockRepo.AssertExpectations(t)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	stored := user.User{ID: 1, Email: "a@x.com", PasswordHash: hashPassword(t, "password123")}
	mockRepo.On("GetByEmail", mock.Anything, stored.Email).Return(&stored, nil).Once()

	found, err := userService.Login(context.Background(), stored.Email, "wrong-password")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
	require.Nil(t, found)
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, user.ErrNotFound).Once()

	found, err := userService.Login(context.Background(), "nobody@x.com", "password123")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
	require.NotErrorIs(t, err, user.ErrNotFound)
	require.Nil(t, found)
}

func TestUserService_Login_StorageError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("timeout")).Once()

	_, err := userService.Login(context.Background(), "a@x.com", "password123")
	require.Error(t, err)
	require.NotErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, user.ErrNotFound).Once()

	found, err := userService.GetUserByID(context.Background(), 42)
	require.ErrorIs(t, err, user.ErrNotFound)
	require.Nil(t, found)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdatePassword_Rehashes(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	rawPassword := "newpassword123"
	mockRepo.On("UpdatePassword", mock.Anything, int64(1), mock.MatchedBy(func(hash string) bool {
		return hash != rawPassword && bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword)) == nil
	})).Return(nil).Once()

	err := userService.UpdatePassword(context.Background(), 1, rawPassword)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdatePassword_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	mockRepo.On("UpdatePassword", mock.Anything, int64(9), mock.AnythingOfType("string")).Return(user.ErrNotFound).Once()

	err := userService.UpdatePassword(context.Background(), 9, "newpassword123")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserService_UpdateUser_EmptyPatch(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	mockRepo.On("Update", mock.Anything, int64(1), user.Patch{}).Return(false, nil).Once()

	updated, err := userService.UpdateUser(context.Background(), 1, user.Patch{})
	require.NoError(t, err)
	require.False(t, updated)
}

func TestUserService_UpdateUser_EmailExists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(mockRepo)

	email := "taken@x.com"
	patch := user.Patch{Email: &email}
	mockRepo.On("Update", mock.Anything, int64(1), patch).Return(false, user.ErrEmailExists).Once()

	_, err := userService.UpdateUser(context.Background(), 1, patch)
	require.ErrorIs(t, err, user.ErrEmailExists)
}
