package controller

import (
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductControllerTest(t *testing.T) (*gin.Engine, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	productService := service.NewProductService(productRepo)
	productController := NewProductController(productService)

	product := &model.Product{
		Name:          "Basil pot",
		Price:         900,
		StockQuantity: 5,
	}
	testDB.Create(product)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/products", productController.GetAllProducts)
	router.GET("/products/:id", productController.GetProductByID)

	return router, product
}

func TestProductController_GetAllProducts(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestProductController_GetProductByID(t *testing.T) {
	router, product := setupProductControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/products/%d", product.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	found := response["product"].(map[string]interface{})
	assert.Equal(t, "Basil pot", found["name"])
}

func TestProductController_GetProductByID_NotFound(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/products/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_GetProductByID_InvalidID(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/products/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
