package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/services"
)

type AddressController struct {
	addresses AddressServiceAPI
}

func NewAddressController(addresses AddressServiceAPI) *AddressController {
	return &AddressController{addresses: addresses}
}

func writeBook(c *gin.Context, b *services.AddressBook) {
	respondOK(c, http.StatusOK, gin.H{"addresses": b.Addresses, "primaryAddressId": b.PrimaryAddressID})
}

// List handles GET /api/address/list
func (ac *AddressController) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	b, err := ac.addresses.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeBook(c, b)
}

// Add handles POST /api/address/add
func (ac *AddressController) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var addr models.Address
	if !bindJSON(c, &addr) {
		return
	}
	b, err := ac.addresses.Add(c.Request.Context(), userID, addr)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeBook(c, b)
}

// Update handles POST /api/address/update
func (ac *AddressController) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.UpdateAddressRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := ac.addresses.Update(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeBook(c, b)
}

// Remove handles POST /api/address/remove
func (ac *AddressController) Remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.AddressIDRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := ac.addresses.Remove(c.Request.Context(), userID, req.AddressID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeBook(c, b)
}

// SetPrimary handles POST /api/address/primary
func (ac *AddressController) SetPrimary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.AddressIDRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := ac.addresses.SetPrimary(c.Request.Context(), userID, req.AddressID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeBook(c, b)
}
