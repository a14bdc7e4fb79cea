// Command storefront is a terminal client for the storefront API. It
// keeps the session token in a local database so logins survive
// between invocations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/ledger"
	"storefront/internal/remote"
	"storefront/internal/session"
	"storefront/internal/tokenstore"
)

const usage = `Usage: storefront <command> [arguments]

Commands:
  login <identifier> <password>   log in with an email or phone number
  logout                          log out and forget the session
  whoami                          show the logged-in user
  register <name> <email> <password>
  products [category-slug]        list the catalog
  categories                      list categories
  cart                            show the cart
  add <product-id> [quantity]     add a product to the cart
  quantity <line-id> <quantity>   change a cart line's quantity
  remove <line-id>                remove a cart line
  clear                           empty the cart
  checkout                        place an order from the cart
  orders                          list placed orders
`

type app struct {
	cfg     config.Config
	manager *session.Manager
	cart    *ledger.Ledger
	client  *remote.Client
	out     io.Writer
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[storefront] ", 0)

	store, err := tokenstore.OpenSQLite(cfg.TokenDBPath)
	if err != nil {
		logger.Fatalf("open token store: %v", err)
	}
	defer store.Close()

	client := remote.New(cfg.APIBaseURL, cfg.RequestTimeout, store, logger)
	manager := session.New(client, store, logger)
	client.SetSessionExpiredHook(manager.HandleSessionExpired)

	a := &app{
		cfg:     cfg,
		manager: manager,
		cart:    ledger.New(client, cfg.TaxRate, logger),
		client:  client,
		out:     os.Stdout,
	}

	ctx := context.Background()
	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, remote.UserMessage(err, err.Error()))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.manager.Bootstrap(ctx)
		a.manager.Logout(ctx)
		fmt.Fprintln(a.out, "Logged out.")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "register":
		return a.register(ctx, args)
	case "products":
		return a.products(ctx, args)
	case "categories":
		return a.categories(ctx)
	case "cart":
		return a.showCart(ctx)
	case "add":
		return a.addToCart(ctx, args)
	case "quantity":
		return a.changeQuantity(ctx, args)
	case "remove":
		return a.removeLine(ctx, args)
	case "clear":
		return a.clearCart(ctx)
	case "checkout":
		return a.checkout(ctx)
	case "orders":
		return a.orders(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <identifier> <password>")
	}
	user, err := a.manager.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	a.manager.Bootstrap(ctx)
	cur := a.manager.Current()
	if !cur.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", cur.User.Name, cur.User.Email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: register <name> <email> <password>")
	}
	user, err := a.client.Register(ctx, remote.RegisterInput{
		Name:                 args[0],
		Email:                args[1],
		Password:             args[2],
		PasswordConfirmation: args[2],
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s <%s>. Log in to continue.\n", user.Name, user.Email)
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	slug := ""
	if len(args) > 0 {
		slug = args[0]
	}
	products, err := a.client.Products(ctx, slug)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Price)
	}
	return w.Flush()
}

func (a *app) categories(ctx context.Context) error {
	categories, err := a.client.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Fprintf(a.out, "%s\t%s\n", c.Slug, c.Name)
	}
	return nil
}

func (a *app) showCart(ctx context.Context) error {
	cart, err := a.cart.Fetch(ctx)
	if err != nil {
		return err
	}
	a.printCart(cart)
	return nil
}

func (a *app) addToCart(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: add <product-id> [quantity]")
	}
	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad product id %q", args[0])
	}
	quantity := 1
	if len(args) == 2 {
		if quantity, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("bad quantity %q", args[1])
		}
	}
	cart, err := a.cart.Add(ctx, productID, quantity)
	if err != nil {
		return err
	}
	a.printCart(cart)
	return nil
}

func (a *app) changeQuantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: quantity <line-id> <quantity>")
	}
	lineID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad line id %q", args[0])
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad quantity %q", args[1])
	}
	cart, err := a.cart.ChangeQuantity(ctx, lineID, quantity)
	if err != nil {
		return err
	}
	a.printCart(cart)
	return nil
}

func (a *app) removeLine(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remove <line-id>")
	}
	lineID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad line id %q", args[0])
	}
	cart, err := a.cart.RemoveLine(ctx, lineID)
	if err != nil {
		return err
	}
	a.printCart(cart)
	return nil
}

func (a *app) clearCart(ctx context.Context) error {
	cart, err := a.cart.Clear(ctx)
	if err != nil {
		return err
	}
	a.printCart(cart)
	return nil
}

func (a *app) checkout(ctx context.Context) error {
	order, err := a.cart.Checkout(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s placed. Total %s (subtotal %s, tax %s)\n",
		order.Number, order.Total, order.Subtotal, order.Tax)
	return nil
}

func (a *app) orders(ctx context.Context) error {
	orders, err := a.client.Orders(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tSTATUS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\n", o.Number, o.Status, o.Total)
	}
	return w.Flush()
}

func (a *app) printCart(cart ledger.Cart) {
	if cart.IsEmpty() {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, line := range cart.Lines {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			line.ID, line.ProductName, line.Quantity,
			domain.FormatCents(line.UnitPriceCents), domain.FormatCents(line.SubtotalCents))
	}
	w.Flush()
	fmt.Fprintf(a.out, "Subtotal %s\nTax      %s\nTotal    %s\n",
		domain.FormatCents(cart.SubtotalCents),
		domain.FormatCents(cart.TaxCents),
		domain.FormatCents(cart.TotalCents))
}
