package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/commerce-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

const (
	productsTable = "products p"
)

type ProductRepository interface {
	ListAll() ([]*domain.Product, error)
	GetByIDs(ids []int) (map[int]*domain.Product, error)
	Count() (int, error)
	CountCategories() (int, error)
	ListCategories() ([]*domain.Category, error)
}

type productRepository struct {
	conn *postgres.Connection
}

func NewProductRepository(conn *postgres.Connection) ProductRepository {
	return &productRepository{
		conn: conn,
	}
}

func (r *productRepository) ListAll() ([]*domain.Product, error) {
	return r.query(nil)
}

// GetByIDs retorna um índice id → produto (com categoria resolvida) para os
// ids informados. Ids inexistentes simplesmente não aparecem no mapa.
func (r *productRepository) GetByIDs(ids []int) (map[int]*domain.Product, error) {
	lookup := make(map[int]*domain.Product, len(ids))
	if len(ids) == 0 {
		return lookup, nil
	}

	products, err := r.query(squirrel.Eq{"p.id": ids})
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		lookup[product.ID] = product
	}
	return lookup, nil
}

func (r *productRepository) query(where interface{}) ([]*domain.Product, error) {
	builder := squirrel.
		Select(`p.id, p.name, p.description, p.price, p.stock, p.category_id,
			c.name, c.description, p.image_url`).
		From(productsTable).
		LeftJoin("categories c ON c.id = p.category_id").
		OrderBy("p.id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query de produtos")
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "erro ao executar a query de produtos")
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao escanear produto")
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante a iteração de produtos")
	}

	return products, nil
}

func (r *productRepository) Count() (int, error) {
	var count int
	if err := r.conn.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "erro ao contar produtos")
	}
	return count, nil
}

func (r *productRepository) CountCategories() (int, error) {
	var count int
	if err := r.conn.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "erro ao contar categorias")
	}
	return count, nil
}

func (r *productRepository) ListCategories() ([]*domain.Category, error) {
	query, args, err := squirrel.
		Select("c.id, c.name, c.description").
		From("categories c").
		OrderBy("c.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query de categorias")
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao executar a query de categorias")
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		category := &domain.Category{}
		var description sql.NullString
		if err := rows.Scan(&category.ID, &category.Name, &description); err != nil {
			return nil, errors.Wrap(err, "erro ao escanear categoria")
		}
		category.Description = description.String
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante a iteração de categorias")
	}

	return categories, nil
}

func (r *productRepository) scanProduct(rows *sql.Rows) (*domain.Product, error) {
	product := &domain.Product{}
	var priceStr string
	var description sql.NullString
	var categoryName, categoryDescription sql.NullString

	err := rows.Scan(
		&product.ID,
		&product.Name,
		&description,
		&priceStr,
		&product.Stock,
		&product.CategoryID,
		&categoryName,
		&categoryDescription,
		&product.ImageURL,
	)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao converter preço do produto")
	}
	product.Price = price
	product.Description = description.String

	if product.CategoryID != nil && categoryName.Valid {
		product.Category = &domain.Category{
			ID:          *product.CategoryID,
			Name:        categoryName.String,
			Description: categoryDescription.String,
		}
	}

	return product, nil
}
