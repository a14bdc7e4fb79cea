package httpserver

import (
	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

// The API mirrors the body shapes the mobile client already parses:
// plain errors as {"message": ...} and validation failures as
// {"message": ..., "errors": {field: [msg, ...]}}.

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func respondFieldErrors(c *gin.Context, fieldErrors map[string][]string) {
	c.JSON(422, gin.H{
		"message": "The given data was invalid.",
		"errors":  fieldErrors,
	})
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone_number"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

type productResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         string `json:"price"`
	MainImagePath string `json:"main_image_path,omitempty"`
	CategoryID    *int64 `json:"category_id,omitempty"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         domain.FormatCents(p.PriceCents),
		MainImagePath: p.ImagePath,
		CategoryID:    p.CategoryID,
	}
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type cartItemProduct struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	MainImagePath string `json:"main_image_path,omitempty"`
}

type cartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   cartItemProduct `json:"product"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total string             `json:"total"`
}

func toCartResponse(cart domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, cartItemResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Product: cartItemProduct{
				ID:            l.ProductID,
				Name:          l.ProductName,
				Price:         domain.FormatCents(l.UnitPriceCents),
				MainImagePath: l.ImagePath,
			},
		})
	}
	return cartResponse{
		Items: items,
		Total: domain.FormatCents(cart.TotalCents),
	}
}

type orderItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

type orderResponse struct {
	ID       int64               `json:"id"`
	Number   string              `json:"number"`
	Subtotal string              `json:"subtotal"`
	Tax      string              `json:"tax"`
	Total    string              `json:"total"`
	Status   string              `json:"status"`
	Items    []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orderItemResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   domain.FormatCents(l.UnitPriceCents),
			Total:       domain.FormatCents(l.TotalCents),
		})
	}
	return orderResponse{
		ID:       o.ID,
		Number:   o.Number,
		Subtotal: domain.FormatCents(o.SubtotalCents),
		Tax:      domain.FormatCents(o.TaxCents),
		Total:    domain.FormatCents(o.TotalCents),
		Status:   o.Status,
		Items:    items,
	}
}
