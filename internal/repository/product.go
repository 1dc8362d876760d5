package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daffodils/florist-api/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DecrementStock subtracts quantity in a single conditional update and
	// returns ErrInsufficientStock when the remaining stock cannot cover it.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	LowStock(ctx context.Context, threshold int) ([]model.Product, error)
	Count(ctx context.Context) (int, error)
}

const productColumns = `id, name, description, price, category, product_type, image,
	in_stock, stock_quantity, featured, tags, created_by, updated_by, created_at, updated_at`

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	query := `INSERT INTO products (id, name, description, price, category, product_type, image,
				in_stock, stock_quantity, featured, tags, created_by, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := queryFrom(ctx, r.pool).QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Category,
		product.ProductType, product.Image, product.InStock, product.StockQuantity,
		product.Featured, product.Tags, product.CreatedBy,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p := &model.Product{}
	err := scanProduct(queryFrom(ctx, r.pool).QueryRow(ctx, query, id), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

var productSortColumns = map[string]string{
	"name":          "name",
	"price":         "price",
	"createdAt":     "created_at",
	"stockQuantity": "stock_quantity",
}

func (r *pgProductRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	sort, ok := productSortColumns[f.SortBy]
	if !ok {
		sort = "created_at"
	}
	order := "DESC"
	if f.SortOrder == "asc" {
		order = "ASC"
	}

	where := `WHERE ($1 = '' OR category = $1)
		AND ($2 = '' OR product_type = $2)
		AND ($3::boolean IS NULL OR featured = $3)
		AND ($4::boolean IS NULL OR in_stock = $4)
		AND ($5 = '' OR name ILIKE '%' || $5 || '%' OR description ILIKE '%' || $5 || '%')`
	args := []any{f.Category, f.ProductType, f.Featured, f.InStock, f.Search}

	var total int
	if err := queryFrom(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s %s LIMIT $6 OFFSET $7`,
		productColumns, where, sort, order)
	rows, err := queryFrom(ctx, r.pool).Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET name=$2, description=$3, price=$4, category=$5, product_type=$6,
				image=$7, in_stock=$8, stock_quantity=$9, featured=$10, tags=$11, updated_by=$12,
				updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := queryFrom(ctx, r.pool).QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Category,
		product.ProductType, product.Image, product.InStock, product.StockQuantity,
		product.Featured, product.Tags, product.UpdatedBy,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := queryFrom(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	ct, err := queryFrom(ctx, r.pool).Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		 WHERE id = $1 AND stock_quantity >= $2`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *pgProductRepo) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock_quantity < $1 ORDER BY stock_quantity ASC`
	rows, err := queryFrom(ctx, r.pool).Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *pgProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := queryFrom(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ProductType, &p.Image,
		&p.InStock, &p.StockQuantity, &p.Featured, &p.Tags, &p.CreatedBy, &p.UpdatedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
}
