package catalog

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const listByIDsQuery = `
        SELECT p.product_id, p.product_name, c.category_name, b.brand_name, p.product_price, p.available
        FROM products p
        LEFT JOIN categories c ON c.category_id = p.category_id
        LEFT JOIN brands b ON b.brand_id = p.brand_id
        WHERE p.product_id = ANY($1::int[])
        ORDER BY array_position($1::int[], p.product_id)
    `

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetPrice(productID int) (Price, error) {
	var p Price
	err := r.db.QueryRow(`SELECT product_price, available FROM products WHERE product_id = $1`, productID).
		Scan(&p.Price, &p.Available)
	if err == sql.ErrNoRows {
		return Price{}, ErrNotFound
	}
	if err != nil {
		return Price{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	rows, err := r.db.Query(listByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.CategoryName, &p.BrandName, &p.Price, &p.Available); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
