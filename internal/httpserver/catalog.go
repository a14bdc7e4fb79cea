package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

func productsHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			products []domain.Product
			err      error
		)
		if slug := c.Query("category"); slug != "" {
			products, err = catalog.ProductsByCategory(c.Request.Context(), slug)
		} else {
			products, err = catalog.Products(c.Request.Context())
		}
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondMessage(c, http.StatusNotFound, "Category not found")
				return
			}
			respondMessage(c, http.StatusInternalServerError, "Failed to load products")
			return
		}
		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			out = append(out, toProductResponse(p))
		}
		c.JSON(http.StatusOK, out)
	}
}

func productHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid product id")
			return
		}
		p, err := catalog.Product(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondMessage(c, http.StatusNotFound, "Product not found")
				return
			}
			respondMessage(c, http.StatusInternalServerError, "Failed to load product")
			return
		}
		c.JSON(http.StatusOK, toProductResponse(*p))
	}
}

func categoriesHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := catalog.Categories(c.Request.Context())
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Failed to load categories")
			return
		}
		out := make([]categoryResponse, 0, len(categories))
		for _, cat := range categories {
			out = append(out, categoryResponse{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
		}
		c.JSON(http.StatusOK, out)
	}
}
