package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	apperrors "github.com/seedstoroots/seeds-backend/internal/errors"
	"github.com/seedstoroots/seeds-backend/internal/app/model"
	"github.com/seedstoroots/seeds-backend/internal/app/service"
	"github.com/seedstoroots/seeds-backend/internal/middleware"
	"github.com/seedstoroots/seeds-backend/internal/pricing"
	"github.com/seedstoroots/seeds-backend/internal/websocket"
	"github.com/seedstoroots/seeds-backend/pkg/redis"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the router middleware
	},
}

type CartController struct {
	cartService service.CartService
	engine      *pricing.Engine
	hub         *websocket.Hub
	cacheTTL    time.Duration
}

func NewCartController(
	cartService service.CartService,
	engine *pricing.Engine,
	hub *websocket.Hub,
	cacheTTL time.Duration,
) *CartController {
	return &CartController{
		cartService: cartService,
		engine:      engine,
		hub:         hub,
		cacheTTL:    cacheTTL,
	}
}

type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type QuoteRequest struct {
	CouponCode string `json:"coupon_code"`
}

// cartPayload is the response body shared by every cart endpoint: the
// full item list plus derived count and totals. Clients always replace
// their whole local list with it.
func (ctrl *CartController) cartPayload(items []model.CartItem) gin.H {
	views := make([]model.CartItemView, 0, len(items))
	priced := make([]pricing.Item, 0, len(items))
	count := 0
	for _, item := range items {
		view := item.ToView()
		views = append(views, view)
		priced = append(priced, pricing.Item{UnitPrice: view.UnitPrice, Quantity: view.Quantity})
		count += view.Quantity
	}

	return gin.H{
		"items":  views,
		"count":  count,
		"totals": ctrl.engine.Quote(priced, pricing.CouponState{}),
	}
}

// cartOwner resolves the path user id and checks it against the
// authenticated user. A cart is only visible to its owner.
func cartOwner(c *gin.Context) (uint, bool) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthenticated cart access", nil)
		apperrors.Unauthorized(c, "")
		return 0, false
	}

	pathID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		log.Warn("Invalid user ID in cart path", map[string]interface{}{
			"user_id_param": c.Param("userId"),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid user ID")
		return 0, false
	}

	if uint(pathID) != userID {
		log.Warn("Cart access denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"path_user_id": pathID,
		})
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "Cart belongs to another user")
		return 0, false
	}

	return userID, true
}

// GetCart returns the user's persisted cart
// GET /api/v1/cart/:userId
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := cartOwner(c)
	if !ok {
		return
	}

	if cached, err := redis.GetCachedCart(c.Request.Context(), userID); err == nil && cached != nil {
		log.Debug("Serving cart from cache", map[string]interface{}{
			"user_id": userID,
		})
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	items, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	payload := ctrl.cartPayload(items)
	if encoded, err := json.Marshal(payload); err == nil {
		redis.CacheCart(c.Request.Context(), userID, encoded, ctrl.cacheTTL)
	}

	c.JSON(http.StatusOK, payload)
}

// AddToCart adds a product to the cart
// POST /api/v1/cart/:userId/add
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := cartOwner(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	items, err := ctrl.cartService.AddToCart(userID, req.ProductID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err, userID, req.ProductID)
		return
	}

	c.JSON(http.StatusOK, ctrl.cartPayload(items))
}

// UpdateCartItem sets the quantity of a product already in the cart
// PUT /api/v1/cart/:userId/update
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := cartOwner(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	items, err := ctrl.cartService.UpdateCartItem(userID, req.ProductID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err, userID, req.ProductID)
		return
	}

	c.JSON(http.StatusOK, ctrl.cartPayload(items))
}

// RemoveFromCart deletes a product from the cart
// DELETE /api/v1/cart/:userId/remove/:productId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := cartOwner(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"user_id":    userID,
			"product_id": c.Param("productId"),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	items, err := ctrl.cartService.RemoveFromCart(userID, uint(productID))
	if err != nil {
		ctrl.respondCartError(c, err, userID, uint(productID))
		return
	}

	c.JSON(http.StatusOK, ctrl.cartPayload(items))
}

// ClearCart empties the cart
// DELETE /api/v1/cart/:userId/clear
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := cartOwner(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.CartClearFailed, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// QuoteCart prices the current cart with an optional coupon code
// POST /api/v1/cart/:userId/quote
func (ctrl *CartController) QuoteCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := cartOwner(c)
	if !ok {
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	var coupon pricing.CouponState
	if req.CouponCode != "" {
		var err error
		coupon, err = ctrl.engine.LookupCoupon(req.CouponCode)
		if err != nil {
			log.Warn("Coupon rejected", map[string]interface{}{
				"user_id": userID,
				"code":    req.CouponCode,
			})
			if errors.Is(err, pricing.ErrEmptyCouponCode) {
				apperrors.BadRequest(c, apperrors.CouponMissingCode, "Coupon code is required")
			} else {
				apperrors.BadRequest(c, apperrors.CouponInvalid, "Coupon code is not valid")
			}
			return
		}
	}

	items, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart for quote", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	priced := make([]pricing.Item, 0, len(items))
	for _, item := range items {
		priced = append(priced, pricing.Item{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}

	c.JSON(http.StatusOK, gin.H{
		"coupon": coupon,
		"totals": ctrl.engine.Quote(priced, coupon),
	})
}

// ServeEvents upgrades to a websocket that streams cart_changed events
// for the authenticated user's other sessions
// GET /api/v1/cart/:userId/events
func (ctrl *CartController) ServeEvents(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := cartOwner(c)
	if !ok {
		return
	}

	if ctrl.hub == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalServerError, "Event stream not available")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade cart event connection", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &websocket.Client{
		Hub:    ctrl.hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 64),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error, userID, productID uint) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		log.Warn("Product not found for cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrCartItemNotFound):
		log.Warn("Cart item not found", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
	case errors.Is(err, service.ErrInvalidQuantity):
		log.Warn("Invalid cart quantity", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "Quantity must be at least 1")
	case errors.Is(err, service.ErrInsufficientStock):
		log.Warn("Insufficient stock for cart mutation", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apperrors.BadRequest(c, apperrors.CartStockExceeded, "Insufficient stock")
	default:
		log.Error("Cart mutation failed", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		info := apperrors.ParseError(err, "cart")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
	}
}
