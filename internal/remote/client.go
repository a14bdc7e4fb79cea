// Package remote is the HTTP client for the storefront API. Every
// method returns a typed *Error on failure so callers can branch on
// the failure kind without inspecting status codes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for outgoing requests. An
// empty token means the request goes out unauthenticated.
type TokenSource interface {
	Load(ctx context.Context) (string, error)
}

// Client talks to the storefront API over HTTP.
type Client struct {
	baseURL          string
	http             *http.Client
	tokens           TokenSource
	logger           *log.Logger
	onSessionExpired func()
}

// New builds a client rooted at baseURL. The token source is consulted
// on every request, so a token saved after construction is picked up
// automatically.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// SetSessionExpiredHook installs fn to run whenever an authenticated
// call is answered with 401. Call it before issuing requests; it is
// not safe to swap concurrently with in-flight calls.
func (c *Client) SetSessionExpiredHook(fn func()) {
	c.onSessionExpired = fn
}

// User is the wire shape of an account.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone_number"`
}

// LoginResult carries the issued token and the account it belongs to.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone_number"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Product is the wire shape of a catalog entry. Price is a decimal
// string such as "10.00".
type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	MainImagePath string `json:"main_image_path"`
}

// Category is the wire shape of a catalog category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CartItem is one raw cart line as the server reports it. Quantity and
// the nested product may be missing; callers normalise them.
type CartItem struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// Cart is the raw server-side cart.
type Cart struct {
	Items []CartItem `json:"items"`
	Total string     `json:"total"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

// Order is the wire shape of a placed order.
type Order struct {
	ID       int64       `json:"id"`
	Number   string      `json:"number"`
	Status   string      `json:"status"`
	Subtotal string      `json:"subtotal"`
	Tax      string      `json:"tax"`
	Total    string      `json:"total"`
	Items    []OrderItem `json:"items"`
}

// Login exchanges credentials for a token. Exactly one of email or
// phone should be set.
func (c *Client) Login(ctx context.Context, email, phone, password string) (LoginResult, error) {
	payload := map[string]string{"password": password}
	if email != "" {
		payload["email"] = email
	} else {
		payload["phone_number"] = phone
	}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", payload, &out, false); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in RegisterInput) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/register", in, &out, false); err != nil {
		return User{}, err
	}
	return out.User, nil
}

// Logout revokes the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, true)
}

// WhoAmI fetches the account behind the current token.
func (c *Client) WhoAmI(ctx context.Context) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/user", nil, &out, true); err != nil {
		return User{}, err
	}
	return out, nil
}

// UpdateProfile changes the account's name and email.
func (c *Client) UpdateProfile(ctx context.Context, name, email string) (User, error) {
	payload := map[string]string{"name": name, "email": email}
	var out User
	if err := c.do(ctx, http.MethodPut, "/profile", payload, &out, true); err != nil {
		return User{}, err
	}
	return out, nil
}

// ChangePassword rotates the account password. All other tokens are
// revoked server-side on success.
func (c *Client) ChangePassword(ctx context.Context, current, next, confirmation string) error {
	payload := map[string]string{
		"current_password":          current,
		"new_password":              next,
		"new_password_confirmation": confirmation,
	}
	return c.do(ctx, http.MethodPut, "/user/password", payload, nil, true)
}

// Products lists the catalog, optionally filtered by category slug.
func (c *Client) Products(ctx context.Context, categorySlug string) ([]Product, error) {
	path := "/products"
	if categorySlug != "" {
		path += "?category=" + categorySlug
	}
	var out []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductByID fetches a single catalog entry.
func (c *Client) ProductByID(ctx context.Context, id int64) (Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &out, false); err != nil {
		return Product{}, err
	}
	return out, nil
}

// Categories lists the catalog categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCart fetches the active cart.
func (c *Client) GetCart(ctx context.Context) (Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &out, true); err != nil {
		return Cart{}, err
	}
	return out, nil
}

// AddToCart adds quantity units of a product and returns the updated cart.
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (Cart, error) {
	payload := map[string]any{"product_id": productID, "quantity": quantity}
	var out Cart
	if err := c.do(ctx, http.MethodPost, "/cart/add", payload, &out, true); err != nil {
		return Cart{}, err
	}
	return out, nil
}

// UpdateCartLine replaces a line's quantity and returns the updated cart.
func (c *Client) UpdateCartLine(ctx context.Context, lineID int64, quantity int) (Cart, error) {
	payload := map[string]any{"quantity": quantity}
	var out Cart
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/items/%d", lineID), payload, &out, true); err != nil {
		return Cart{}, err
	}
	return out, nil
}

// RemoveCartLine deletes a line and returns the updated cart.
func (c *Client) RemoveCartLine(ctx context.Context, lineID int64) (Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", lineID), nil, &out, true); err != nil {
		return Cart{}, err
	}
	return out, nil
}

// ClearCart empties the cart and returns it.
func (c *Client) ClearCart(ctx context.Context) (Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodDelete, "/cart/clear", nil, &out, true); err != nil {
		return Cart{}, err
	}
	return out, nil
}

// PlaceOrder turns the active cart into an order.
func (c *Client) PlaceOrder(ctx context.Context) (Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, &out, true); err != nil {
		return Order{}, err
	}
	return out, nil
}

// Orders lists the account's placed orders.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "invalid request payload", cause: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindValidation, Message: "invalid request", cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := c.tokens.Load(ctx); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("%s %s: %v", method, path, err)
		return &Error{Kind: KindNetwork, Message: "could not reach the server", cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "could not read the server response", cause: err}
	}

	if resp.StatusCode >= 400 {
		return c.statusError(resp.StatusCode, raw, authed)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "malformed server response", cause: err}
		}
	}
	return nil
}

func (c *Client) statusError(status int, body []byte, authed bool) *Error {
	message, fields := flattenBody(body)
	if status == http.StatusUnauthorized && authed {
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		if message == "" {
			message = "Your session has expired. Please log in again."
		}
		return &Error{Kind: KindSessionExpired, Status: status, Message: message}
	}
	kind := KindRejected
	if status == http.StatusUnprocessableEntity {
		kind = KindValidation
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: kind, Status: status, Message: message, Fields: fields}
}
