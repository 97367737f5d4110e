package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yashrajoria/storefront-backend/models"
)

// MemoryCartRepository keeps carts in process. It backs the cart when Redis
// is unreachable at startup, so carts do not survive a restart.
type MemoryCartRepository struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: make(map[string][]byte)}
}

func (r *MemoryCartRepository) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	data, ok := r.carts[userID]
	r.mu.Unlock()
	if !ok {
		return &models.Cart{UserID: userID, Lines: []models.CartLine{}, Wishlist: []models.WishlistItem{}}, nil
	}

	// stored encoded so callers never share slices with the map
	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *MemoryCartRepository) SaveCart(_ context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.carts[cart.UserID] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryCartRepository) DeleteCart(_ context.Context, userID string) error {
	r.mu.Lock()
	delete(r.carts, userID)
	r.mu.Unlock()
	return nil
}
