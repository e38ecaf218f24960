package service

import (
	"context"
	"errors"

	"github.com/seedstoroots/seeds-backend/internal/app/model"
	"github.com/seedstoroots/seeds-backend/internal/app/repository"
	"github.com/seedstoroots/seeds-backend/pkg/logger"
	"github.com/seedstoroots/seeds-backend/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

// CartNotifier receives a signal after every successful cart mutation
// so a user's other sessions can resync.
type CartNotifier interface {
	NotifyCartChanged(userID uint, action string)
}

type CartService interface {
	GetUserCart(userID uint) ([]model.CartItem, error)
	AddToCart(userID, productID uint, quantity int) ([]model.CartItem, error)
	UpdateCartItem(userID, productID uint, quantity int) ([]model.CartItem, error)
	RemoveFromCart(userID, productID uint) ([]model.CartItem, error)
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	notifier    CartNotifier
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	notifier ...CartNotifier,
) CartService {
	var n CartNotifier
	if len(notifier) > 0 {
		n = notifier[0]
	}
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		notifier:    n,
	}
}

func (s *cartService) GetUserCart(userID uint) ([]model.CartItem, error) {
	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cartItems, nil
}

func (s *cartService) AddToCart(userID, productID uint, quantity int) ([]model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	existingItem, err := s.cartRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	requestedQuantity := quantity
	if existingItem != nil {
		requestedQuantity = existingItem.Quantity + quantity
	}

	if product.StockQuantity < requestedQuantity {
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  requestedQuantity,
			"available":  product.StockQuantity,
		})
		return nil, ErrInsufficientStock
	}

	if existingItem != nil {
		// Unit price stays as captured on first add
		existingItem.Quantity = requestedQuantity
		if err := s.cartRepo.Update(existingItem); err != nil {
			return nil, err
		}
	} else {
		cartItem := &model.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		if err := s.cartRepo.Create(cartItem); err != nil {
			return nil, err
		}
	}

	s.afterMutation(userID, "add")
	return s.GetUserCart(userID)
}

func (s *cartService) UpdateCartItem(userID, productID uint, quantity int) ([]model.CartItem, error) {
	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cartItem, err := s.cartRepo.FindByUserAndProduct(userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	product, err := s.productRepo.FindByID(cartItem.ProductID)
	if err != nil {
		logger.Error("Failed to fetch product for stock check", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	if product.StockQuantity < quantity {
		logger.Warn("Cannot update cart item: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  quantity,
			"available":  product.StockQuantity,
		})
		return nil, ErrInsufficientStock
	}

	cartItem.Quantity = quantity
	if err := s.cartRepo.Update(cartItem); err != nil {
		return nil, err
	}

	s.afterMutation(userID, "update")
	return s.GetUserCart(userID)
}

func (s *cartService) RemoveFromCart(userID, productID uint) ([]model.CartItem, error) {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	// Removal is idempotent: deleting an absent item is not an error
	if err := s.cartRepo.DeleteByUserAndProduct(userID, productID); err != nil {
		return nil, err
	}

	s.afterMutation(userID, "remove")
	return s.GetUserCart(userID)
}

func (s *cartService) ClearCart(userID uint) error {
	logger.Info("Clearing user cart", map[string]interface{}{
		"user_id": userID,
	})

	if err := s.cartRepo.DeleteByUserID(userID); err != nil {
		return err
	}

	s.afterMutation(userID, "clear")
	return nil
}

func (s *cartService) afterMutation(userID uint, action string) {
	if err := redis.InvalidateCart(context.Background(), userID); err != nil {
		logger.Warn("Cart cache invalidation failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	if s.notifier != nil {
		s.notifier.NotifyCartChanged(userID, action)
	}
}
