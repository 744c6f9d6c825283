package order

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Commit(customerID int, lines []Line, total float64, currency, invoiceNo string) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, &TxError{Step: StepOrder, Err: err}
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	ord := Order{
		CustomerID: customerID,
		InvoiceNo:  invoiceNo,
		OrderDate:  now,
		Status:     StatusPending,
	}

	err = tx.QueryRow(`INSERT INTO orders (customer_id, invoice_no, order_date, status)
        VALUES ($1, $2, $3, $4)
        RETURNING order_id`,
		customerID, invoiceNo, now, StatusPending).Scan(&ord.OrderID)
	if err != nil {
		if isUniqueViolation(err) {
			return Order{}, &TxError{Step: StepOrder, Err: ErrInvoiceConflict}
		}
		return Order{}, &TxError{Step: StepOrder, Err: err}
	}

	for _, ln := range lines {
		if _, err := tx.Exec(`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)`,
			ord.OrderID, ln.ProductID, ln.Quantity); err != nil {
			return Order{}, &TxError{Step: StepLines, Err: err}
		}
	}

	pay := Payment{
		OrderID:     ord.OrderID,
		CustomerID:  customerID,
		Amount:      total,
		Currency:    currency,
		PaymentDate: now,
	}
	err = tx.QueryRow(`INSERT INTO payments (order_id, customer_id, amount, currency, payment_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING payment_id`,
		ord.OrderID, customerID, total, currency, now).Scan(&pay.PaymentID)
	if err != nil {
		return Order{}, &TxError{Step: StepPayment, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, &TxError{Step: StepPayment, Err: err}
	}

	ord.Lines = append([]Line(nil), lines...)
	ord.Payment = &pay
	return ord, nil
}

func (r *PostgresRepository) ListByCustomer(customerID int) ([]Order, error) {
	rows, err := r.db.Query(`SELECT o.order_id, o.customer_id, o.invoice_no, o.order_date, o.status,
               p.payment_id, p.amount, p.currency, p.payment_date
        FROM orders o
        LEFT JOIN payments p ON p.order_id = o.order_id
        WHERE o.customer_id = $1
        ORDER BY o.order_id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int, 0)
	for rows.Next() {
		var ord Order
		var paymentID sql.NullInt64
		var amount sql.NullFloat64
		var currency, paymentDate sql.NullString
		if err := rows.Scan(&ord.OrderID, &ord.CustomerID, &ord.InvoiceNo, &ord.OrderDate, &ord.Status,
			&paymentID, &amount, &currency, &paymentDate); err != nil {
			return nil, err
		}
		if paymentID.Valid {
			ord.Payment = &Payment{
				PaymentID:   int(paymentID.Int64),
				OrderID:     ord.OrderID,
				CustomerID:  ord.CustomerID,
				Amount:      amount.Float64,
				Currency:    currency.String,
				PaymentDate: paymentDate.String,
			}
		}
		orders = append(orders, ord)
		ids = append(ids, ord.OrderID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lineRows, err := r.db.Query(`SELECT order_id, product_id, quantity
        FROM order_items
        WHERE order_id = ANY($1::int[])
        ORDER BY array_position($1::int[], order_id)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	byOrder := make(map[int][]Line, len(orders))
	for lineRows.Next() {
		var orderID int
		var ln Line
		if err := lineRows.Scan(&orderID, &ln.ProductID, &ln.Quantity); err != nil {
			return nil, err
		}
		byOrder[orderID] = append(byOrder[orderID], ln)
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Lines = byOrder[orders[i].OrderID]
	}
	return orders, nil
}

// isUniqueViolation matches Postgres error 23505 from the pgx driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
