package httpserver

import (
	"context"
	"errors"
	"log"

	"storefront/internal/domain"
	"storefront/internal/service/account"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountService is the slice of the account service the handlers need.
type AccountService interface {
	Register(ctx context.Context, in account.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, identifier, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, name, email string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, current, newPassword, confirmation string) error
}

type CatalogService interface {
	Products(ctx context.Context) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type CartService interface {
	GetOrCreateActive(ctx context.Context, userID int64) (*domain.Cart, error)
	Add(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error)
	UpdateLine(ctx context.Context, userID, lineID int64, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, userID, lineID int64) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) (*domain.Cart, error)
}

type OrderService interface {
	PlaceFromCart(ctx context.Context, userID int64) (*domain.Order, error)
	Get(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

// Deps bundles everything the router needs.
type Deps struct {
	AccountSvc AccountService
	CatalogSvc CatalogService
	CartSvc    CartService
	OrderSvc   OrderService
}

func (d Deps) validate() error {
	if d.AccountSvc == nil || d.CatalogSvc == nil || d.CartSvc == nil || d.OrderSvc == nil {
		return errors.New("httpserver: all services are required")
	}
	return nil
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	{
		api.POST("/login", loginHandler(deps.AccountSvc))
		api.POST("/register", registerHandler(deps.AccountSvc))
		api.GET("/products", productsHandler(deps.CatalogSvc))
		api.GET("/products/:id", productHandler(deps.CatalogSvc))
		api.GET("/categories", categoriesHandler(deps.CatalogSvc))

		authed := api.Group("")
		authed.Use(authMiddleware(deps.AccountSvc))
		{
			authed.POST("/logout", logoutHandler(deps.AccountSvc))
			authed.GET("/user", currentUserHandler())
			authed.PUT("/profile", updateProfileHandler(deps.AccountSvc))
			authed.PUT("/user/password", changePasswordHandler(deps.AccountSvc))

			authed.GET("/cart", getCartHandler(deps.CartSvc))
			authed.POST("/cart/add", addToCartHandler(deps.CartSvc))
			authed.PUT("/cart/items/:id", updateCartLineHandler(deps.CartSvc))
			authed.DELETE("/cart/items/:id", removeCartLineHandler(deps.CartSvc))
			authed.DELETE("/cart/clear", clearCartHandler(deps.CartSvc))

			authed.POST("/orders", placeOrderHandler(deps.OrderSvc))
			authed.GET("/orders", listOrdersHandler(deps.OrderSvc))
			authed.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
		}
	}

	return router, nil
}

// cartErrorStatus maps cart service failures onto API statuses.
func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, cartsvc.ErrQuantityInvalid):
		return 422
	case errors.Is(err, cartsvc.ErrProductUnknown), errors.Is(err, domain.ErrNotFound):
		return 404
	default:
		return 500
	}
}
