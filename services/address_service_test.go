package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddressAdd_FirstBecomesPrimary(t *testing.T) {
	users := new(MockUserRepo)
	svc := NewAddressService(users)
	user := &models.User{ID: primitive.NewObjectID()}

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
	users.On("SetAddresses", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(nil).Once()

	b, err := svc.Add(context.Background(), user.ID.Hex(), models.Address{FirstName: "Asha", City: "Pune"})
	require.NoError(t, err)
	require.Len(t, b.Addresses, 1)
	assert.NotEmpty(t, b.Addresses[0].ID)
	assert.Equal(t, b.Addresses[0].ID, b.PrimaryAddressID)
	users.AssertExpectations(t)
}

func TestAddressAdd_KeepsExistingPrimary(t *testing.T) {
	users := new(MockUserRepo)
	svc := NewAddressService(users)
	user := &models.User{ID: primitive.NewObjectID(), SavedAddresses: []models.Address{{ID: "a1"}}, PrimaryAddressID: "a1"}

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
	users.On("SetAddresses", mock.Anything, user.ID, mock.Anything, "a1").Return(nil).Once()

	b, err := svc.Add(context.Background(), user.ID.Hex(), models.Address{City: "Delhi"})
	require.NoError(t, err)
	assert.Len(t, b.Addresses, 2)
	assert.Equal(t, "a1", b.PrimaryAddressID)
}

func TestAddressRemove_PromotesNext(t *testing.T) {
	users := new(MockUserRepo)
	svc := NewAddressService(users)
	user := &models.User{
		ID:               primitive.NewObjectID(),
		SavedAddresses:   []models.Address{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}},
		PrimaryAddressID: "a1",
	}

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
	users.On("SetAddresses", mock.Anything, user.ID, []models.Address{{ID: "a2"}, {ID: "a3"}}, "a2").Return(nil).Once()

	b, err := svc.Remove(context.Background(), user.ID.Hex(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a2", b.PrimaryAddressID)
	users.AssertExpectations(t)
}

func TestAddressRemove_LastClearsPrimary(t *testing.T) {
	users := new(MockUserRepo)
	svc := NewAddressService(users)
	user := &models.User{ID: primitive.NewObjectID(), SavedAddresses: []models.Address{{ID: "a1"}}, PrimaryAddressID: "a1"}

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
	users.On("SetAddresses", mock.Anything, user.ID, []models.Address{}, "").Return(nil).Once()

	b, err := svc.Remove(context.Background(), user.ID.Hex(), "a1")
	require.NoError(t, err)
	assert.Empty(t, b.Addresses)
	assert.Empty(t, b.PrimaryAddressID)
}

func TestAddressUpdateAndSetPrimary(t *testing.T) {
	users := new(MockUserRepo)
	svc := NewAddressService(users)
	user := &models.User{ID: primitive.NewObjectID(), SavedAddresses: []models.Address{{ID: "a1", City: "Pune"}, {ID: "a2"}}, PrimaryAddressID: "a1"}

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	users.On("SetAddresses", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(nil)

	b, err := svc.Update(context.Background(), user.ID.Hex(), UpdateAddressRequest{AddressID: "a1", Address: models.Address{City: "Mumbai"}})
	require.NoError(t, err)
	assert.Equal(t, models.Address{ID: "a1", City: "Mumbai"}, b.Addresses[0])

	b, err = svc.SetPrimary(context.Background(), user.ID.Hex(), "a2")
	require.NoError(t, err)
	assert.Equal(t, "a2", b.PrimaryAddressID)

	_, err = svc.SetPrimary(context.Background(), user.ID.Hex(), "nope")
	assert.Equal(t, 404, apperrors.As(err).Code)
}
