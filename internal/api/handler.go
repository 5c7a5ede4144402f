package api

import (
	"net/http"
	"strconv"
	"time"

	"cart-service/internal/catalog"
	"cart-service/internal/models"
	"cart-service/internal/service"
	"cart-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionHeader = "X-Session-ID"

// Handler contains HTTP handlers
type Handler struct {
	carts    *service.CartService
	checkout *service.CheckoutService
	catalog  *catalog.Supplier
}

// NewHandler creates a new HTTP handler
func NewHandler(carts *service.CartService, checkout *service.CheckoutService, catalog *catalog.Supplier) *Handler {
	return &Handler{
		carts:    carts,
		checkout: checkout,
		catalog:  catalog,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addItem)
		v1.PATCH("/cart/items/:productId", h.updateQuantity)
		v1.DELETE("/cart/items/:productId", h.removeItem)
		v1.POST("/cart/promo", h.applyPromo)
		v1.GET("/cart/summary", h.checkoutSummary)

		v1.POST("/checkout", h.placeOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts returns catalog records, optionally filtered
func (h *Handler) listProducts(c *gin.Context) {
	var (
		products []models.Product
		err      error
	)

	switch c.Query("collection") {
	case "new":
		products, err = h.catalog.NewArrivals(c.Request.Context())
	case "bestsellers":
		products, err = h.catalog.Bestsellers(c.Request.Context())
	case "sale":
		products, err = h.catalog.SaleProducts(c.Request.Context())
	default:
		products, err = h.catalog.ListProducts(c.Request.Context(), c.Query("category"))
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load products",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns a single catalog record
func (h *Handler) getProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, product)
}

func sessionID(c *gin.Context) (string, bool) {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + sessionHeader + " header"})
		return "", false
	}
	return id, true
}

// getCart returns the cart-page summary for the session
func (h *Handler) getCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.carts.CartSummary(c.Request.Context(), sid))
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// addItem adds one unit of a product to the session cart
func (h *Handler) addItem(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	line, err := h.carts.AddItem(c.Request.Context(), sid, req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Failed to add item",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, line)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// updateQuantity sets an absolute quantity; zero or below removes the item.
// Unknown product IDs are a no-op, not an error.
func (h *Handler) updateQuantity(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.carts.UpdateQuantity(c.Request.Context(), sid, productID, req.Quantity)
	c.JSON(http.StatusOK, h.carts.CartSummary(c.Request.Context(), sid))
}

// removeItem removes a product from the session cart
func (h *Handler) removeItem(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	h.carts.RemoveItem(c.Request.Context(), sid, productID)
	c.JSON(http.StatusOK, h.carts.CartSummary(c.Request.Context(), sid))
}

type applyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// applyPromo tries to activate a promo code. Unrecognized codes come back
// as applied=false with no error body.
func (h *Handler) applyPromo(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req applyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	applied := h.carts.ApplyPromo(c.Request.Context(), sid, req.Code)
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// checkoutSummary returns the checkout-page summary for a delivery method
func (h *Handler) checkoutSummary(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	delivery := c.DefaultQuery("delivery", models.DeliveryStandard)
	c.JSON(http.StatusOK, h.carts.CheckoutSummary(c.Request.Context(), sid, delivery))
}

// placeOrder runs the checkout flow for the session cart
func (h *Handler) placeOrder(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), sid, &req)
	if err != nil {
		status := http.StatusInternalServerError
		if err == service.ErrEmptyCart {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":   "Failed to place order",
			"details": err.Error(),
		})
		return
	}

	switch resp.Status {
	case models.CheckoutStatusFailed:
		c.JSON(http.StatusPaymentRequired, resp)
	case models.CheckoutStatusDuplicate:
		c.JSON(http.StatusConflict, resp)
	default:
		c.JSON(http.StatusCreated, resp)
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
