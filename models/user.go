package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a free-form address book entry. Orders store a copy of it.
type Address struct {
	ID        string `bson:"_id,omitempty" json:"_id,omitempty"`
	FirstName string `bson:"firstName" json:"firstName" binding:"required"`
	LastName  string `bson:"lastName" json:"lastName"`
	Email     string `bson:"email" json:"email" binding:"omitempty,email"`
	Street    string `bson:"street" json:"street" binding:"required"`
	City      string `bson:"city" json:"city" binding:"required"`
	State     string `bson:"state" json:"state"`
	Zipcode   string `bson:"zipcode" json:"zipcode" binding:"required"`
	Country   string `bson:"country" json:"country" binding:"required"`
	Phone     string `bson:"phone" json:"phone" binding:"required"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"`
	GoogleID string             `bson:"googleId,omitempty" json:"-"`

	IsVerified     bool       `bson:"isVerified" json:"isVerified"`
	EmailOTP       string     `bson:"emailOtp,omitempty" json:"-"`
	EmailOTPExpiry *time.Time `bson:"emailOtpExpiry,omitempty" json:"-"`
	ResetOTP       string     `bson:"resetOtp,omitempty" json:"-"`
	ResetOTPExpiry *time.Time `bson:"resetOtpExpiry,omitempty" json:"-"`

	SavedAddresses   []Address      `bson:"savedAddresses" json:"savedAddresses"`
	PrimaryAddressID string         `bson:"primaryAddressId,omitempty" json:"primaryAddressId,omitempty"`
	CartData         map[string]int `bson:"cartData" json:"cartData"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AddressByID finds a saved address.
func (u *User) AddressByID(id string) (*Address, int) {
	for i := range u.SavedAddresses {
		if u.SavedAddresses[i].ID == id {
			return &u.SavedAddresses[i], i
		}
	}
	return nil, -1
}
