package store

import (
	"context"
	"fmt"

	"github.com/abgdnv/gostorefront/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ catalog.Loader = (*PgLoader)(nil)

const (
	selectCategories = `SELECT id, name, slug FROM categories ORDER BY position, id`
	selectProducts   = `SELECT id, name, description, price, category, image, seller, rating, reviews,
       featured, discount, tags, stock
FROM products
ORDER BY position, id`
)

// PgLoader reads the catalog from PostgreSQL.
type PgLoader struct {
	db *pgxpool.Pool
}

// NewPgLoader creates a loader backed by the given connection pool.
func NewPgLoader(dbp *pgxpool.Pool) *PgLoader {
	return &PgLoader{db: dbp}
}

// Load reads all categories and products in their stored order.
func (l *PgLoader) Load(ctx context.Context) ([]catalog.Product, []catalog.Category, error) {
	categories, err := l.categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	products, err := l.products(ctx)
	if err != nil {
		return nil, nil, err
	}
	return products, categories, nil
}

func (l *PgLoader) categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := l.db.Query(ctx, selectCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.Name, &c.Slug)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

func (l *PgLoader) products(ctx context.Context) ([]catalog.Product, error) {
	rows, err := l.db.Query(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Product, error) {
		var p catalog.Product
		err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Image, &p.Seller,
			&p.Rating, &p.Reviews, &p.Featured, &p.Discount, &p.Tags, &p.Stock)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}
