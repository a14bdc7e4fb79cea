package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

func getCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.GetOrCreateActive(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Failed to load cart")
			return
		}
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

func addToCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		cart, err := carts.Add(c.Request.Context(), currentUser(c).ID, req.ProductID, qty)
		if err != nil {
			respondMessage(c, cartErrorStatus(err), cartErrorMessage(err, "Failed to add to cart"))
			return
		}
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

type updateCartLineRequest struct {
	Quantity int `json:"quantity"`
}

func updateCartLineHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid cart item id")
			return
		}
		var req updateCartLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		cart, err := carts.UpdateLine(c.Request.Context(), currentUser(c).ID, lineID, req.Quantity)
		if err != nil {
			respondMessage(c, cartErrorStatus(err), cartErrorMessage(err, "Failed to update cart item"))
			return
		}
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

func removeCartLineHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid cart item id")
			return
		}
		cart, err := carts.RemoveLine(c.Request.Context(), currentUser(c).ID, lineID)
		if err != nil {
			respondMessage(c, cartErrorStatus(err), cartErrorMessage(err, "Failed to remove cart item"))
			return
		}
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

func clearCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.Clear(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondMessage(c, cartErrorStatus(err), cartErrorMessage(err, "Failed to clear cart"))
			return
		}
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

func cartErrorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, cartsvc.ErrProductUnknown):
		return "Product not found"
	case errors.Is(err, domain.ErrNotFound):
		return "Cart item not found"
	case errors.Is(err, cartsvc.ErrQuantityInvalid):
		return "Quantity must be at least 1"
	default:
		return fallback
	}
}
