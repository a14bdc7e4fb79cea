package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	ImagePath   string
	Category    string
}

type categorySeed struct {
	Name string
	Slug string
}

// Apply inserts demo data for manual testing. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []categorySeed{
		{Name: "Kitchen", Slug: "kitchen"},
		{Name: "Apparel", Slug: "apparel"},
	}
	ids := make(map[string]int64, len(categories))
	for _, c := range categories {
		id, err := ensureCategory(ctx, pool, c)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", c.Slug, err)
		}
		ids[c.Slug] = id
	}

	products := []productSeed{
		{
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1000,
			ImagePath:   "/images/demo-mug.jpg",
			Category:    "kitchen",
		},
		{
			Name:        "Demo Spoon",
			Description: "Stainless steel spoon",
			PriceCents:  500,
			ImagePath:   "/images/demo-spoon.jpg",
			Category:    "kitchen",
		},
		{
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			ImagePath:   "/images/demo-shirt.jpg",
			Category:    "apparel",
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, ids[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	if err := ensureUser(ctx, pool, "Demo User", "demo@example.com", "5550100", "password123"); err != nil {
		return fmt.Errorf("ensure demo user: %w", err)
	}

	return nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, c categorySeed) (int64, error) {
	const q = `
INSERT INTO categories (name, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`
	var id int64
	if err := pool.QueryRow(ctx, q, c.Name, c.Slug).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID int64, p productSeed) error {
	const q = `
INSERT INTO products (name, description, price_cents, main_image_path, category_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (lower(name)) DO UPDATE
SET description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    main_image_path = EXCLUDED.main_image_path,
    category_id = EXCLUDED.category_id
`
	_, err := pool.Exec(ctx, q, p.Name, p.Description, p.PriceCents, p.ImagePath, categoryID)
	return err
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, name, email, phone, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (name, email, phone_number, password_hash)
VALUES ($1, $2, $3, $4)
ON CONFLICT (lower(email)) DO NOTHING
`
	_, err = pool.Exec(ctx, q, name, email, phone, hash)
	return err
}
