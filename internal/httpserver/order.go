package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	ordersvc "storefront/internal/service/order"

	"github.com/gin-gonic/gin"
)

func placeOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.PlaceFromCart(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			if errors.Is(err, ordersvc.ErrCartEmpty) {
				respondMessage(c, 422, "Your cart is empty")
				return
			}
			respondMessage(c, http.StatusInternalServerError, "Failed to place order")
			return
		}
		c.JSON(http.StatusCreated, toOrderResponse(*o))
	}
}

func listOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListForUser(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Failed to load orders")
			return
		}
		out := make([]orderResponse, 0, len(list))
		for _, o := range list {
			out = append(out, toOrderResponse(o))
		}
		c.JSON(http.StatusOK, out)
	}
}

func getOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid order id")
			return
		}
		o, err := orders.Get(c.Request.Context(), currentUser(c).ID, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondMessage(c, http.StatusNotFound, "Order not found")
				return
			}
			respondMessage(c, http.StatusInternalServerError, "Failed to load order")
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(*o))
	}
}
