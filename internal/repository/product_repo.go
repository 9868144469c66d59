package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"go-product-catalog/internal/model"
)

const searchVector = `to_tsvector('english', name || ' ' || description)`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	var price string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Category, &p.Image,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Product{}, err
	}

	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return model.Product{}, fmt.Errorf("parse stored price %q: %w", price, err)
	}
	return p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT id, name, description, price::text, category, image, created_at, updated_at
		 FROM products WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, model.ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, price, category, image, created_at, updated_at)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
		 RETURNING id`,
		p.Name, p.Description, p.Price.String(), p.Category, p.Image,
		p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p model.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $2, description = $3, price = $4::numeric,
		                     category = $5, image = $6, updated_at = $7
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price.String(), p.Category, p.Image, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// List applies the query filters and returns one page of products. A search
// term switches name/description matching to ranked full text and overrides
// the substring filters for those fields.
func (r *ProductRepository) List(ctx context.Context, query model.ProductQuery) ([]model.Product, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}
	if query.Limit > 100 {
		query.Limit = 100
	}

	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if category := strings.TrimSpace(query.Category); category != "" {
		where = append(where, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, category)
		argIdx++
	}

	search := strings.TrimSpace(query.Search)
	orderBy := "ORDER BY id"
	if search != "" {
		where = append(where, fmt.Sprintf("%s @@ plainto_tsquery('english', $%d)", searchVector, argIdx))
		orderBy = fmt.Sprintf("ORDER BY ts_rank(%s, plainto_tsquery('english', $%d)) DESC, id", searchVector, argIdx)
		args = append(args, search)
		argIdx++
	} else {
		if name := strings.TrimSpace(query.Name); name != "" {
			where = append(where, fmt.Sprintf("name ILIKE $%d", argIdx))
			args = append(args, "%"+name+"%")
			argIdx++
		}
		if description := strings.TrimSpace(query.Description); description != "" {
			where = append(where, fmt.Sprintf("description ILIKE $%d", argIdx))
			args = append(args, "%"+description+"%")
			argIdx++
		}
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count products: %w", err)
	}

	meta := model.NewMeta(query.Page, query.Limit, total)

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT id, name, description, price::text, category, image, created_at, updated_at
		 FROM products %s
		 %s
		 LIMIT $%d OFFSET $%d`, whereClause, orderBy, argIdx, argIdx+1)
	args = append(args, query.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, meta, rows.Err()
}
