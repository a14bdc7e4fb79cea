package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Ensure(ctx context.Context, name, slug string) (*domain.Category, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products,
// creating categories on the fly.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
	}
}

// Run parses CSV rows and upserts one product per row. It returns the
// number of products imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	categoryIDs := map[string]int64{}
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		name := pick(record, index, "name")
		if name == "" {
			continue
		}
		priceCents, err := domain.ParsePrice(pick(record, index, "price"))
		if err != nil {
			return imported, fmt.Errorf("product %q: bad price: %w", name, err)
		}

		p := domain.Product{
			Name:        name,
			Description: pick(record, index, "description"),
			PriceCents:  priceCents,
			ImagePath:   pick(record, index, "image"),
		}

		if slug := pick(record, index, "category"); slug != "" {
			id, ok := categoryIDs[slug]
			if !ok {
				cat, err := i.categories.Ensure(ctx, categoryName(slug), slug)
				if err != nil {
					return imported, fmt.Errorf("ensure category %q: %w", slug, err)
				}
				id = cat.ID
				categoryIDs[slug] = id
			}
			p.CategoryID = &id
		}

		if _, err := i.products.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", name, err)
		}
		imported++
	}

	return imported, nil
}

// categoryName turns a slug like "kitchen-tools" into "Kitchen Tools".
func categoryName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
