package cart

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getItemsQuery = `
        SELECT ci.product_id, COALESCE(p.product_name, ''), c.category_name, b.brand_name,
               ci.quantity, COALESCE(p.product_price, 0),
               ci.quantity * COALESCE(p.product_price, 0)
        FROM cart_items ci
        LEFT JOIN products p ON p.product_id = ci.product_id
        LEFT JOIN categories c ON c.category_id = p.category_id
        LEFT JOIN brands b ON b.brand_id = p.brand_id
        WHERE ci.customer_id = $1
        ORDER BY ci.product_id DESC
    `
	getSummaryQuery = `
        SELECT COUNT(*), COALESCE(SUM(ci.quantity), 0),
               COALESCE(SUM(ci.quantity * p.product_price), 0)
        FROM cart_items ci
        JOIN products p ON p.product_id = ci.product_id
        WHERE ci.customer_id = $1
    `
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(customerID, productID int) (Line, error) {
	line := Line{CustomerID: customerID, ProductID: productID}
	err := r.db.QueryRow(`SELECT quantity FROM cart_items WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID).Scan(&line.Quantity)
	if err == sql.ErrNoRows {
		return Line{}, ErrLineNotFound
	}
	if err != nil {
		return Line{}, err
	}
	return line, nil
}

func (r *PostgresRepository) Add(customerID, productID, qty int) (Line, error) {
	existing, err := r.Get(customerID, productID)
	if err != nil && err != ErrLineNotFound {
		return Line{}, err
	}

	if err == nil {
		// merge-on-add: one line per (customer, product), quantities summed
		newQty := existing.Quantity + qty
		if _, err := r.SetQuantity(customerID, productID, newQty); err != nil {
			return Line{}, err
		}
		if newQty <= 0 {
			return Line{}, ErrLineNotFound
		}
		return Line{CustomerID: customerID, ProductID: productID, Quantity: newQty}, nil
	}

	if _, err := r.db.Exec(`INSERT INTO cart_items (customer_id, product_id, quantity) VALUES ($1, $2, $3)`,
		customerID, productID, qty); err != nil {
		return Line{}, err
	}
	return Line{CustomerID: customerID, ProductID: productID, Quantity: qty}, nil
}

func (r *PostgresRepository) SetQuantity(customerID, productID, qty int) (bool, error) {
	if qty <= 0 {
		return r.Remove(customerID, productID)
	}
	res, err := r.db.Exec(`UPDATE cart_items SET quantity = $1 WHERE customer_id = $2 AND product_id = $3`,
		qty, customerID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) Remove(customerID, productID int) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) Items(customerID int) ([]LineView, error) {
	rows, err := r.db.Query(getItemsQuery, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LineView, 0)
	for rows.Next() {
		var v LineView
		if err := rows.Scan(&v.ProductID, &v.ProductName, &v.CategoryName, &v.BrandName,
			&v.Quantity, &v.UnitPrice, &v.LineTotal); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Summary(customerID int) (Summary, error) {
	var s Summary
	err := r.db.QueryRow(getSummaryQuery, customerID).Scan(&s.Count, &s.TotalQty, &s.TotalPrice)
	if err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (r *PostgresRepository) Empty(customerID int) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE customer_id = $1`, customerID)
	return err
}

func (r *PostgresRepository) Count(customerID int) (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM cart_items WHERE customer_id = $1`, customerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
