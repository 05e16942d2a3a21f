package order

import (
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	CreateTable = `CREATE TABLE IF NOT EXISTS orders (
        "orderID" SERIAL PRIMARY KEY,
        "remoteOrderID" TEXT,
        "buyerID" TEXT NOT NULL,
        "sellerID" TEXT,
        cart jsonb NOT NULL DEFAULT '{}',
        quantity INT NOT NULL DEFAULT 0,
        "totalPrice" numeric NOT NULL DEFAULT 0,
        "discountAmount" numeric NOT NULL DEFAULT 0,
        "grandPrice" numeric NOT NULL DEFAULT 0,
        "pointsUsed" INT NOT NULL DEFAULT 0,
        "ecoPointsAwarded" INT NOT NULL DEFAULT 0,
        "shippingAddress" TEXT,
        status TEXT,
        "createdAt" TEXT,
        "updatedAt" TEXT
    )`

	receiptColumns = `"orderID", "remoteOrderID", "buyerID", "sellerID", cart, quantity, "totalPrice", "discountAmount", "grandPrice", "pointsUsed", "ecoPointsAwarded", "shippingAddress", status, "createdAt", "updatedAt"`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(rec Receipt) (Receipt, error) {
	cartJSON, err := json.Marshal(rec.Cart)
	if err != nil {
		return Receipt{}, err
	}

	err = r.db.QueryRow(`INSERT INTO orders ("remoteOrderID", "buyerID", "sellerID", cart, quantity, "totalPrice", "discountAmount", "grandPrice", "pointsUsed", "ecoPointsAwarded", "shippingAddress", status, "createdAt", "updatedAt")
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING "orderID"`,
		rec.RemoteOrderID, rec.BuyerID, rec.SellerID, string(cartJSON), rec.Quantity, rec.TotalPrice, rec.DiscountAmount, rec.GrandPrice,
		rec.PointsUsed, rec.EcoPointsAwarded, rec.ShippingAddress, rec.Status, rec.CreatedAt, rec.UpdatedAt).Scan(&rec.OrderID)
	if err != nil {
		return Receipt{}, err
	}
	return rec, nil
}

// ListByIDs returns receipts matching the given orderIDs, ordered like ids.
func (r *PostgresRepository) ListByIDs(ids []int) ([]Receipt, error) {
	if len(ids) == 0 {
		return []Receipt{}, nil
	}

	query := `SELECT ` + receiptColumns + `
		FROM orders
		WHERE "orderID" = ANY($1::int[])
		ORDER BY array_position($1::int[], "orderID")`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReceipts(rows)
}

func (r *PostgresRepository) ListByBuyer(buyerID string) ([]Receipt, error) {
	rows, err := r.db.Query(`SELECT `+receiptColumns+`
		FROM orders
		WHERE "buyerID" = $1
		ORDER BY "orderID" DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReceipts(rows)
}

func scanReceipts(rows *sql.Rows) ([]Receipt, error) {
	out := make([]Receipt, 0)
	for rows.Next() {
		var (
			rec      Receipt
			remoteID sql.NullString
			sellerID sql.NullString
			address  sql.NullString
			status   sql.NullString
			cartJSON []byte
		)
		if err := rows.Scan(&rec.OrderID, &remoteID, &rec.BuyerID, &sellerID, &cartJSON, &rec.Quantity,
			&rec.TotalPrice, &rec.DiscountAmount, &rec.GrandPrice, &rec.PointsUsed, &rec.EcoPointsAwarded,
			&address, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.RemoteOrderID = remoteID.String
		rec.SellerID = sellerID.String
		rec.ShippingAddress = address.String
		rec.Status = status.String
		if err := json.Unmarshal(cartJSON, &rec.Cart); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
