package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/seedstoroots/seeds-backend/internal/app/model"
	"github.com/seedstoroots/seeds-backend/internal/app/repository"
	"github.com/seedstoroots/seeds-backend/internal/app/service"
	"github.com/seedstoroots/seeds-backend/internal/db"
	"github.com/seedstoroots/seeds-backend/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartControllerTest(t *testing.T) (*CartController, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(cartRepo, productRepo)
	engine := pricing.NewEngine(50000, 5000)
	cartController := NewCartController(cartService, engine, nil, 0)

	user := &model.User{
		Email: "test@example.com",
		Name:  "Test User",
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Tomato seedling",
		Price:         1000,
		StockQuantity: 10,
	}
	testDB.Create(product)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return cartController, router, testDB, user, product
}

// Helper function to set user ID in context
func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}

func registerCartRoutes(router *gin.Engine, controller *CartController, userID uint) {
	authed := func(handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			setUserIDInContext(c, userID)
			handler(c)
		}
	}

	router.GET("/cart/:userId", authed(controller.GetCart))
	router.POST("/cart/:userId/add", authed(controller.AddToCart))
	router.PUT("/cart/:userId/update", authed(controller.UpdateCartItem))
	router.DELETE("/cart/:userId/remove/:productId", authed(controller.RemoveFromCart))
	router.DELETE("/cart/:userId/clear", authed(controller.ClearCart))
	router.POST("/cart/:userId/quote", authed(controller.QuoteCart))
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestCartController_GetCart_Success(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		UnitPrice: product.Price,
	})

	registerCartRoutes(router, controller, user.ID)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/cart/%d", user.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	assert.Equal(t, float64(2), response["count"])

	totals := response["totals"].(map[string]interface{})
	assert.Equal(t, float64(2000), totals["subtotal"])
	assert.Equal(t, float64(5000), totals["shipping"])
	assert.Equal(t, float64(7000), totals["total"])
}

func TestCartController_GetCart_Empty(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/cart/%d", user.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	assert.Equal(t, float64(0), response["count"])
	assert.Len(t, response["items"], 0)
}

func TestCartController_GetCart_OwnershipMismatch(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	// Authenticated as user but requesting someone else's cart
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/cart/%d", user.ID+1), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "AUTHZ_OWNER_ONLY", response["error"])
}

func TestCartController_GetCart_InvalidUserID(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/cart/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "VALIDATION_INVALID_ID", response["error"])
}

func TestCartController_AddToCart_Success(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	body, _ := json.Marshal(CartItemRequest{ProductID: product.ID, Quantity: 2})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/%d/add", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// The full resulting item list comes back
	response := decodeResponse(t, w)
	assert.Equal(t, float64(2), response["count"])
	items := response["items"].([]interface{})
	require.Len(t, items, 1)
}

func TestCartController_AddToCart_ProductNotFound(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	body, _ := json.Marshal(CartItemRequest{ProductID: 9999, Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/%d/add", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "PRODUCT_NOT_FOUND", response["error"])
}

func TestCartController_AddToCart_InsufficientStock(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	body, _ := json.Marshal(CartItemRequest{ProductID: product.ID, Quantity: 100})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/%d/add", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "CART_STOCK_EXCEEDED", response["error"])
}

func TestCartController_AddToCart_InvalidBody(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/%d/add", user.ID), bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "VALIDATION_INVALID_INPUT", response["error"])
}

func TestCartController_UpdateCartItem_Success(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	cartRepo := repository.NewCartRepository(testDB)
	cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  1,
		UnitPrice: product.Price,
	})

	body, _ := json.Marshal(CartItemRequest{ProductID: product.ID, Quantity: 5})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/cart/%d/update", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, float64(5), response["count"])
}

func TestCartController_UpdateCartItem_NotFound(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	body, _ := json.Marshal(CartItemRequest{ProductID: product.ID, Quantity: 2})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/cart/%d/update", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "CART_ITEM_NOT_FOUND", response["error"])
}

func TestCartController_RemoveFromCart(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	cartRepo := repository.NewCartRepository(testDB)
	cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		UnitPrice: product.Price,
	})

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cart/%d/remove/%d", user.ID, product.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, float64(0), response["count"])
	assert.Len(t, response["items"], 0)
}

func TestCartController_RemoveFromCart_AbsentItemSucceeds(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cart/%d/remove/%d", user.ID, product.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartController_ClearCart(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	cartRepo := repository.NewCartRepository(testDB)
	cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		UnitPrice: product.Price,
	})

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cart/%d/clear", user.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	items, err := cartRepo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 0)
}

func TestCartController_QuoteCart_WithCoupon(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	cartRepo := repository.NewCartRepository(testDB)
	cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		UnitPrice: product.Price, // 1000
	})

	body, _ := json.Marshal(QuoteRequest{CouponCode: "DESCUENTO20"})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/%d/quote", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	totals := response["totals"].(map[string]interface{})
	assert.Equal(t, float64(2000), totals["subtotal"])
	assert.Equal(t, float64(400), totals["discount_amount"])
	assert.Equal(t, float64(5000), totals["shipping"])
	assert.Equal(t, float64(6600), totals["total"])

	coupon := response["coupon"].(map[string]interface{})
	assert.Equal(t, "DESCUENTO20", coupon["code"])
	assert.Equal(t, true, coupon["applied"])
}

func TestCartController_QuoteCart_LowercaseCouponNormalized(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	body, _ := json.Marshal(QuoteRequest{CouponCode: "enviogratis"})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/%d/quote", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	coupon := response["coupon"].(map[string]interface{})
	assert.Equal(t, "ENVIOGRATIS", coupon["code"])
}

func TestCartController_QuoteCart_InvalidCoupon(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	body, _ := json.Marshal(QuoteRequest{CouponCode: "NOPE"})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/%d/quote", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "COUPON_INVALID", response["error"])
}

func TestCartController_QuoteCart_NoCoupon(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)
	registerCartRoutes(router, controller, user.ID)

	cartRepo := repository.NewCartRepository(testDB)
	cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  1,
		UnitPrice: product.Price,
	})

	body, _ := json.Marshal(QuoteRequest{})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/%d/quote", user.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	totals := response["totals"].(map[string]interface{})
	assert.Equal(t, float64(0), totals["discount_amount"])
	assert.Equal(t, float64(6000), totals["total"])
}
