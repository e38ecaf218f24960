package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/seedstoroots/seeds-backend/internal/auth"
	"github.com/seedstoroots/seeds-backend/internal/pricing"
	"github.com/seedstoroots/seeds-backend/pkg/cartapi"
	"github.com/seedstoroots/seeds-backend/pkg/logger"
)

var (
	// ErrInvalidQuantity is returned for quantity requests below 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrStockExceeded is returned when a mutation would push an item
	// past its stock cap
	ErrStockExceeded = errors.New("quantity exceeds available stock")

	// ErrItemNotFound is returned when updating a product that is not
	// in the cart
	ErrItemNotFound = errors.New("item not in cart")
)

// RemoteCart is the persisted cart service surface the store reconciles
// against. *cartapi.Client satisfies it.
type RemoteCart interface {
	Get(ctx context.Context, userID uint) (*cartapi.CartResponse, error)
	Add(ctx context.Context, userID uint, req cartapi.AddItemRequest) (*cartapi.CartResponse, error)
	Update(ctx context.Context, userID uint, req cartapi.UpdateItemRequest) (*cartapi.CartResponse, error)
	Remove(ctx context.Context, userID, productID uint) (*cartapi.CartResponse, error)
	Clear(ctx context.Context, userID uint) error
}

// Store holds the current cart line items and reconciles every
// mutation against the remote service when a session owner is present.
// Mutations are serialized by the store mutex, so two rapid updates on
// the same product cannot interleave their remote round trips.
//
// When the remote call fails the mutation falls through to local state
// so the cart keeps working offline; that local state is not durable
// and is replaced wholesale by the next successful server sync.
type Store struct {
	mu      sync.Mutex
	remote  RemoteCart
	engine  *pricing.Engine
	ownerID *uint
	items   []LineItem
	coupon  pricing.CouponState
}

// NewStore creates a cart store. A nil remote keeps the store
// local-only regardless of owner.
func NewStore(remote RemoteCart, engine *pricing.Engine) *Store {
	if engine == nil {
		engine = pricing.NewEngine(0, 0)
	}
	return &Store{
		remote: remote,
		engine: engine,
	}
}

// BindAuth wires the store to a session context: the current owner is
// adopted immediately and future login/logout transitions arrive via
// subscription.
func (s *Store) BindAuth(authCtx *auth.Context) {
	s.SetOwner(context.Background(), authCtx.OwnerID())
	authCtx.Subscribe(func(ownerID *uint) {
		s.SetOwner(context.Background(), ownerID)
	})
}

// SetOwner switches the cart owner. Logging out (owner becomes nil)
// drops all local items and the applied coupon: a guest cart never
// inherits a previous user's cart. Logging in triggers a fetch-and-
// replace from the persisted cart.
func (s *Store) SetOwner(ctx context.Context, ownerID *uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sameOwner(s.ownerID, ownerID) {
		return
	}
	s.ownerID = ownerID

	if ownerID == nil {
		logger.Debug("Cart owner cleared, resetting to guest cart", nil)
		s.items = nil
		s.coupon = pricing.CouponState{}
		return
	}

	s.items = nil
	s.refreshLocked(ctx)
}

// Refresh re-fetches the persisted cart for the current owner. No-op
// for guest carts.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerID == nil || s.remote == nil {
		return nil
	}
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	resp, err := s.remote.Get(ctx, *s.ownerID)
	if err != nil {
		logger.Warn("Failed to load persisted cart, starting empty", map[string]interface{}{
			"user_id": *s.ownerID,
			"error":   err.Error(),
		})
		return err
	}
	s.items = itemsFromRemote(resp.Items)
	return nil
}

// AddItem adds one unit of a product. If the product is already in the
// cart its quantity is incremented instead of appending a second row.
func (s *Store) AddItem(ctx context.Context, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp, ok := s.tryRemote(ctx, "add", func(userID uint) (*cartapi.CartResponse, error) {
		return s.remote.Add(ctx, userID, cartapi.AddItemRequest{
			ProductID: product.ProductID,
			Quantity:  1,
		})
	}); ok {
		s.items = itemsFromRemote(resp.Items)
		return nil
	}

	if existing := s.find(product.ProductID); existing != nil {
		if existing.Quantity >= existing.StockCap {
			return ErrStockExceeded
		}
		existing.Quantity++
		existing.serverSubtotal = nil
		return nil
	}

	s.items = append(s.items, newLineItem(product))
	return nil
}

// UpdateQuantity sets the quantity of a product already in the cart.
// Requests below 1 or above the stock cap are rejected and leave the
// cart untouched.
func (s *Store) UpdateQuantity(ctx context.Context, productID uint, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	existing := s.find(productID)
	if existing == nil {
		return ErrItemNotFound
	}
	if quantity > existing.StockCap {
		return ErrStockExceeded
	}

	if resp, ok := s.tryRemote(ctx, "update", func(userID uint) (*cartapi.CartResponse, error) {
		return s.remote.Update(ctx, userID, cartapi.UpdateItemRequest{
			ProductID: productID,
			Quantity:  quantity,
		})
	}); ok {
		s.items = itemsFromRemote(resp.Items)
		return nil
	}

	existing.Quantity = quantity
	existing.serverSubtotal = nil
	return nil
}

// RemoveItem deletes a product from the cart. Removing a product that
// is not present is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp, ok := s.tryRemote(ctx, "remove", func(userID uint) (*cartapi.CartResponse, error) {
		return s.remote.Remove(ctx, userID, productID)
	}); ok {
		s.items = itemsFromRemote(resp.Items)
		return nil
	}

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the cart and resets the applied coupon. For a session
// cart the remote clear must succeed first; a failed remote clear
// leaves local state intact rather than silently diverging from the
// server.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerID != nil && s.remote != nil {
		if err := s.remote.Clear(ctx, *s.ownerID); err != nil {
			logger.Error("Remote cart clear failed, keeping local items", err, map[string]interface{}{
				"user_id": *s.ownerID,
			})
			return fmt.Errorf("remote clear failed: %w", err)
		}
	}

	s.items = nil
	s.coupon = pricing.CouponState{}
	return nil
}

// ApplyCoupon validates and applies a coupon code. An invalid code
// clears any previously applied coupon.
func (s *Store) ApplyCoupon(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coupon, err := s.engine.LookupCoupon(code)
	if err != nil {
		s.coupon = pricing.CouponState{}
		return err
	}
	s.coupon = coupon
	return nil
}

// ClearCoupon removes the applied coupon
func (s *Store) ClearCoupon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupon = pricing.CouponState{}
}

// Coupon returns the currently applied coupon state
func (s *Store) Coupon() pricing.CouponState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupon
}

// Items returns a copy of the current line items
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LineItem(nil), s.items...)
}

// Count returns the displayed cart count: the sum of quantities across
// all line items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, li := range s.items {
		count += li.Quantity
	}
	return count
}

// Totals computes the checkout pricing breakdown for the current items
// and coupon.
func (s *Store) Totals() pricing.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Quote(priceItems(s.items), s.coupon)
}

// OwnerID returns the current cart owner, nil for guest carts
func (s *Store) OwnerID() *uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == nil {
		return nil
	}
	id := *s.ownerID
	return &id
}

// tryRemote runs a remote mutation for the current owner. Returns the
// server's item list on success; any failure is logged and reported as
// not persisted so the caller falls back to a local mutation.
func (s *Store) tryRemote(ctx context.Context, op string, call func(userID uint) (*cartapi.CartResponse, error)) (*cartapi.CartResponse, bool) {
	if s.ownerID == nil || s.remote == nil {
		return nil, false
	}

	resp, err := call(*s.ownerID)
	if err != nil {
		logger.Warn("Cart mutation not persisted, falling back to local state", map[string]interface{}{
			"user_id":   *s.ownerID,
			"operation": op,
			"error":     err.Error(),
		})
		return nil, false
	}
	return resp, true
}

func (s *Store) find(productID uint) *LineItem {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return &s.items[i]
		}
	}
	return nil
}

func sameOwner(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
