package services

import (
	"context"
	"errors"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpdateAddressRequest struct {
	AddressID string         `json:"addressId" binding:"required"`
	Address   models.Address `json:"address" binding:"required"`
}

type AddressIDRequest struct {
	AddressID string `json:"addressId" binding:"required"`
}

// AddressBook is a user's saved addresses and which one is primary.
type AddressBook struct {
	Addresses        []models.Address `json:"addresses"`
	PrimaryAddressID string           `json:"primaryAddressId,omitempty"`
}

var errAddressNotFound = apperrors.ErrNotFound.WithMessage("Address not found")

type AddressService struct {
	users repository.UserRepo
}

func NewAddressService(users repository.UserRepo) *AddressService {
	return &AddressService{users: users}
}

func (s *AddressService) List(ctx context.Context, userID string) (*AddressBook, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return book(user), nil
}

// Add saves an address; the first one becomes primary.
func (s *AddressService) Add(ctx context.Context, userID string, addr models.Address) (*AddressBook, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	addr.ID = primitive.NewObjectID().Hex()
	user.SavedAddresses = append(user.SavedAddresses, addr)
	if user.PrimaryAddressID == "" {
		user.PrimaryAddressID = addr.ID
	}
	return s.save(ctx, user)
}

func (s *AddressService) Update(ctx context.Context, userID string, req UpdateAddressRequest) (*AddressBook, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, idx := user.AddressByID(req.AddressID)
	if idx < 0 {
		return nil, errAddressNotFound
	}
	req.Address.ID = req.AddressID
	user.SavedAddresses[idx] = req.Address
	return s.save(ctx, user)
}

// Remove deletes an address. Removing the primary promotes the first remaining one.
func (s *AddressService) Remove(ctx context.Context, userID, addressID string) (*AddressBook, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, idx := user.AddressByID(addressID)
	if idx < 0 {
		return nil, errAddressNotFound
	}
	user.SavedAddresses = append(user.SavedAddresses[:idx], user.SavedAddresses[idx+1:]...)
	if user.PrimaryAddressID == addressID {
		user.PrimaryAddressID = ""
		if len(user.SavedAddresses) > 0 {
			user.PrimaryAddressID = user.SavedAddresses[0].ID
		}
	}
	return s.save(ctx, user)
}

func (s *AddressService) SetPrimary(ctx context.Context, userID, addressID string) (*AddressBook, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a, _ := user.AddressByID(addressID); a == nil {
		return nil, errAddressNotFound
	}
	user.PrimaryAddressID = addressID
	return s.save(ctx, user)
}

func (s *AddressService) save(ctx context.Context, user *models.User) (*AddressBook, error) {
	if err := s.users.SetAddresses(ctx, user.ID, user.SavedAddresses, user.PrimaryAddressID); err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return book(user), nil
}

func (s *AddressService) user(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("User not found")
	}
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return user, nil
}

func book(user *models.User) *AddressBook {
	addrs := user.SavedAddresses
	if addrs == nil {
		addrs = []models.Address{}
	}
	return &AddressBook{Addresses: addrs, PrimaryAddressID: user.PrimaryAddressID}
}
