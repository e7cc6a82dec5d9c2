package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/farmavida/farmavida-backend/internal/app/service"
	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCheckoutControllerTest(t *testing.T) (*gin.Engine, *cartstore.Manager) {
	manager := cartstore.NewManager(func(string) cartstore.Storage {
		return cartstore.NewMemoryBackend().Storage()
	}, 20*time.Millisecond)
	t.Cleanup(manager.Shutdown)

	checkoutController := NewCheckoutController(service.NewCheckoutService(manager))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/checkout/summary", func(c *gin.Context) {
		setSessionInContext(c, "sess")
		checkoutController.GetSummary(c)
	})

	return router, manager
}

func TestCheckoutController_GetSummary(t *testing.T) {
	router, manager := setupCheckoutControllerTest(t)

	store := manager.GetOrCreate(context.Background(), "sess")
	store.Add(cartstore.Line{ID: "cough-syrup", Name: "Cough Syrup", Price: 9.5, Quantity: 2})

	req := httptest.NewRequest(http.MethodGet, "/checkout/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	summary := response["summary"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(summary["reference"].(string), "FV-"))
	assert.Equal(t, float64(19), summary["total"])
	assert.Equal(t, float64(2), summary["item_count"])
}

func TestCheckoutController_GetSummary_EmptyCart(t *testing.T) {
	router, _ := setupCheckoutControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/checkout/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Cart is empty", response["error"])
}
