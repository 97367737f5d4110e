package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartRequest struct {
	Key      string `json:"key" binding:"required"`
	Quantity int    `json:"quantity"`
}

type CartKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

type CartService struct {
	carts    repository.CartRepo
	products repository.ProductRepo
	users    repository.UserRepo
	log      *zap.Logger
}

func NewCartService(carts repository.CartRepo, products repository.ProductRepo, users repository.UserRepo, log *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, users: users, log: log}
}

// Totals derives the cart summary. Shipping is free.
func Totals(lines []models.CartLine) models.CartTotals {
	var t models.CartTotals
	for _, l := range lines {
		t.Subtotal += l.Price * float64(l.Quantity)
		t.ItemCount += l.Quantity
	}
	t.Total = t.Subtotal + t.ShippingCost
	return t
}

func view(cart *models.Cart, notice string) *models.CartView {
	return &models.CartView{Cart: *cart, CartTotals: Totals(cart.Lines), Notice: notice}
}

func (s *CartService) Get(ctx context.Context, userID string) (*models.CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return view(cart, ""), nil
}

// Add adds qty of a variant. The ceiling is the variant stock read now and
// kept on the line; exceeding it leaves the cart unchanged and sets Notice.
func (s *CartService) Add(ctx context.Context, userID string, req AddToCartRequest) (*models.CartView, error) {
	product, err := s.product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	variant, ok := product.VariantBySize(req.Size)
	if !ok {
		return nil, apperrors.ErrInvalidInput.WithMessage("Selected size is not available")
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := models.CartKey(req.ProductID, req.Size, req.Color)
	idx := lineIndex(cart.Lines, key)
	current := 0
	if idx >= 0 {
		current = cart.Lines[idx].Quantity
	}

	if current+req.Quantity > variant.Stock {
		return view(cart, stockNotice(variant.Stock)), nil
	}

	if idx >= 0 {
		cart.Lines[idx].Quantity += req.Quantity
		cart.Lines[idx].MaxStock = variant.Stock
		cart.Lines[idx].Price = variant.Price()
	} else {
		line := models.CartLine{
			ProductID: req.ProductID,
			Name:      product.Name,
			Size:      req.Size,
			Color:     req.Color,
			SKU:       variant.SKU,
			Price:     variant.Price(),
			Quantity:  req.Quantity,
			MaxStock:  variant.Stock,
		}
		if len(product.Images) > 0 {
			line.Image = product.Images[0]
		}
		cart.Lines = append(cart.Lines, line)
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return view(cart, ""), nil
}

func stockNotice(stock int) string {
	if stock <= 0 {
		return "Out of stock"
	}
	return fmt.Sprintf("Only %d left in stock", stock)
}

// UpdateQuantity sets a line's quantity, clamped to [1, stock seen at add time].
func (s *CartService) UpdateQuantity(ctx context.Context, userID string, req UpdateCartRequest) (*models.CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := lineIndex(cart.Lines, req.Key)
	if idx < 0 {
		return nil, apperrors.ErrNotFound.WithMessage("Item not in cart")
	}

	qty := req.Quantity
	if ceiling := cart.Lines[idx].MaxStock; qty > ceiling {
		qty = ceiling
	}
	if qty < 1 {
		qty = 1
	}
	cart.Lines[idx].Quantity = qty

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return view(cart, ""), nil
}

func (s *CartService) Remove(ctx context.Context, userID, key string) (*models.CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := lineIndex(cart.Lines, key)
	if idx < 0 {
		return nil, apperrors.ErrNotFound.WithMessage("Item not in cart")
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return view(cart, ""), nil
}

// MoveToWishlist removes a line and keeps its product on the wishlist once.
func (s *CartService) MoveToWishlist(ctx context.Context, userID, key string) (*models.CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := lineIndex(cart.Lines, key)
	if idx < 0 {
		return nil, apperrors.ErrNotFound.WithMessage("Item not in cart")
	}
	line := cart.Lines[idx]
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)

	inWishlist := false
	for _, w := range cart.Wishlist {
		if w.ProductID == line.ProductID {
			inWishlist = true
			break
		}
	}
	if !inWishlist {
		cart.Wishlist = append(cart.Wishlist, models.WishlistItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Price:     line.Price,
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return view(cart, ""), nil
}

func (s *CartService) Wishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.Wishlist, nil
}

// ValidateForCheckout compares every line to current stock.
func (s *CartService) ValidateForCheckout(ctx context.Context, userID string) ([]models.StockIssue, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	issues := []models.StockIssue{}
	for _, l := range cart.Lines {
		available := 0
		if p, err := s.product(ctx, l.ProductID); err == nil {
			if v, ok := p.VariantBySKU(l.SKU); ok {
				available = v.Stock
			}
		} else if apperrors.As(err).Code != http.StatusNotFound {
			return nil, err
		}
		if l.Quantity > available {
			issues = append(issues, models.StockIssue{
				Key:       l.Key(),
				Name:      l.Name,
				Size:      l.Size,
				Requested: l.Quantity,
				Available: available,
			})
		}
	}
	return issues, nil
}

// Clear empties the cart and the user's cartData snapshot. The snapshot is
// cleared even when the cart store is down.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	cart, err := s.load(ctx, userID)
	if err == nil {
		cart.Lines = []models.CartLine{}
		if err = s.save(ctx, cart); err == nil {
			return nil
		}
	}
	s.mirror(ctx, userID, nil)
	return err
}

func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrServiceUnavailable.WithMessage("Cart unavailable").Wrap(err)
	}
	cart.UserID = userID
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	if cart.Wishlist == nil {
		cart.Wishlist = []models.WishlistItem{}
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return apperrors.ErrServiceUnavailable.WithMessage("Cart unavailable").Wrap(err)
	}

	s.mirror(ctx, cart.UserID, cart.Lines)
	return nil
}

// mirror writes the line quantities to the user document's cartData.
func (s *CartService) mirror(ctx context.Context, userID string, lines []models.CartLine) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return
	}
	snapshot := make(map[string]int, len(lines))
	for _, l := range lines {
		snapshot[l.Key()] = l.Quantity
	}
	if err := s.users.SetCartData(ctx, id, snapshot); err != nil {
		s.log.Warn("failed to mirror cart data", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *CartService) product(ctx context.Context, productID string) (*models.Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput.WithMessage("Invalid product id")
	}
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("Product not found")
	}
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return p, nil
}

func lineIndex(lines []models.CartLine, key string) int {
	for i := range lines {
		if lines[i].Key() == key {
			return i
		}
	}
	return -1
}
