package user_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lara-shop/lara-api/internal/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
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

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) ListActive(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func TestUserService_Register_HashesPasswordAndStripsPrivileges(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(uuid.Must(uuid.NewV4()), nil).Once()

	registered, err := service.Register(context.Background(), &user.User{
		Name:    "Dana",
		Email:   "dana@example.com",
		IsAdmin: true, // must be ignored
	}, "s3cretpass")

	require.NoError(t, err)
	require.False(t, registered.IsAdmin)
	require.True(t, registered.IsApproved)
	require.NotEqual(t, "s3cretpass", registered.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(registered.PasswordHash), []byte("s3cretpass")))
}

func TestUserService_Register_VendorStartsUnapproved(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(uuid.Must(uuid.NewV4()), nil).Once()

	registered, err := service.Register(context.Background(), &user.User{
		Name:     "Vendor",
		Email:    "vendor@example.com",
		IsVendor: true,
	}, "s3cretpass")

	require.NoError(t, err)
	require.False(t, registered.IsApproved)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(uuid.Nil, user.ErrEmailExists).Once()

	_, err := service.Register(context.Background(), &user.User{
		Name:  "Dana",
		Email: "taken@example.com",
	}, "s3cretpass")

	require.ErrorIs(t, err, user.ErrEmailExists)
}

func TestUserService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := &user.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        "dana@example.com",
		PasswordHash: string(hash),
	}

	mockRepo.On("GetByEmail", mock.Anything, "dana@example.com").Return(stored, nil)

	u, err := service.Authenticate(context.Background(), "dana@example.com", "rightpass")
	require.NoError(t, err)
	require.Equal(t, stored.ID, u.ID)

	_, err = service.Authenticate(context.Background(), "dana@example.com", "wrongpass")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestUserService_Authenticate_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, user.ErrNotFound).Once()

	_, err := service.Authenticate(context.Background(), "ghost@example.com", "whatever")

	// Unknown email and wrong password are indistinguishable to callers.
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestUserService_Authenticate_BlockedAccount(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := &user.User{
		Email:        "blocked@example.com",
		PasswordHash: string(hash),
		IsBlocked:    true,
	}
	mockRepo.On("GetByEmail", mock.Anything, "blocked@example.com").Return(stored, nil).Once()

	_, err = service.Authenticate(context.Background(), "blocked@example.com", "rightpass")

	require.ErrorIs(t, err, user.ErrBlocked)
}

func TestUserService_ToggleBlock_AdminProtected(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)
	adminID := uuid.Must(uuid.NewV4())

	mockRepo.On("GetByID", mock.Anything, adminID).
		Return(&user.User{ID: adminID, IsAdmin: true}, nil).Once()

	_, err := service.ToggleBlock(context.Background(), adminID)

	require.ErrorIs(t, err, user.ErrCannotModifyAdmin)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_ApproveVendor(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)
	vendorID := uuid.Must(uuid.NewV4())

	mockRepo.On("GetByID", mock.Anything, vendorID).
		Return(&user.User{ID: vendorID, IsVendor: true}, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.IsApproved
	})).Return(nil).Once()

	approved, err := service.ApproveVendor(context.Background(), vendorID)

	require.NoError(t, err)
	require.True(t, approved.IsApproved)
}

func TestUserService_ApproveVendor_NotAVendor(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)
	customerID := uuid.Must(uuid.NewV4())

	mockRepo.On("GetByID", mock.Anything, customerID).
		Return(&user.User{ID: customerID, IsVendor: false}, nil).Once()

	_, err := service.ApproveVendor(context.Background(), customerID)

	require.ErrorIs(t, err, user.ErrNotVendor)
}

func TestUserService_SoftDelete_AdminProtected(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := user.NewService(mockRepo)
	adminID := uuid.Must(uuid.NewV4())

	mockRepo.On("GetByID", mock.Anything, adminID).
		Return(&user.User{ID: adminID, IsAdmin: true}, nil).Once()

	err := service.SoftDelete(context.Background(), adminID)

	require.ErrorIs(t, err, user.ErrCannotModifyAdmin)
}
