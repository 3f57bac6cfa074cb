package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/catalog/domain/model"
)

type productRow struct {
	ID          uuid.UUID       `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Discount    decimal.Decimal `db:"discount"`
	Category    string          `db:"category"`
	Image       string          `db:"image"`
	Stock       int             `db:"stock"`
	Sizes       []byte          `db:"sizes"`
	Colors      []byte          `db:"colors"`
	Version     int             `db:"version"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func NewProductRepository(db *sqlx.DB) model.ProductRepository {
	return &productRepository{db: db}
}

type productRepository struct {
	db *sqlx.DB
}

func (r *productRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	row, err := toProductRow(product)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO products (id, name, description, price, discount, category, image, stock, sizes, colors, version, created_at, updated_at)
		VALUES (:id, :name, :description, :price, :discount, :category, :image, :stock, :sizes, :colors, :version, :created_at, :updated_at)`,
		row,
	)
	return errors.Wrap(err, "insert product")
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	row, err := toProductRow(product)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, discount = ?, category = ?, image = ?, stock = ?, sizes = ?, colors = ?,
		    version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		row.Name, row.Description, row.Price, row.Discount, row.Category, row.Image, row.Stock, row.Sizes, row.Colors,
		row.Version, row.UpdatedAt,
		row.ID, row.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	return r.checkUpdated(ctx, res, product.ID)
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if affected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select product")
	}
	return fromProductRow(row)
}

func (r *productRepository) FindAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query := `SELECT * FROM products`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(filter.Category))
	}
	switch filter.Sort {
	case model.SortPriceAsc:
		query += ` ORDER BY price ASC`
	case model.SortPriceDesc:
		query += ` ORDER BY price DESC`
	default:
		query += ` ORDER BY created_at DESC`
	}

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "select products")
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		product, err := fromProductRow(row)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}

func (r *productRepository) checkUpdated(ctx context.Context, res sql.Result, id uuid.UUID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, id); err != nil {
		return errors.Wrap(err, "check product")
	}
	if !exists {
		return model.ErrProductNotFound
	}
	return model.ErrOptimisticLock
}

func toProductRow(p *model.Product) (productRow, error) {
	sizes, err := json.Marshal(nonNil(p.Sizes))
	if err != nil {
		return productRow{}, errors.Wrap(err, "encode sizes")
	}
	colors, err := json.Marshal(nonNil(p.Colors))
	if err != nil {
		return productRow{}, errors.Wrap(err, "encode colors")
	}
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Discount:    p.Discount,
		Category:    string(p.Category),
		Image:       p.Image,
		Stock:       p.Stock,
		Sizes:       sizes,
		Colors:      colors,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func fromProductRow(row productRow) (*model.Product, error) {
	p := &model.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		Discount:    row.Discount,
		Category:    model.Category(row.Category),
		Image:       row.Image,
		Stock:       row.Stock,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Sizes, &p.Sizes); err != nil {
		return nil, errors.Wrap(err, "decode sizes")
	}
	if err := json.Unmarshal(row.Colors, &p.Colors); err != nil {
		return nil, errors.Wrap(err, "decode colors")
	}
	return p, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
