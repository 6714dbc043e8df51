package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"chip-quotation-backend/models"
	"chip-quotation-backend/utils"

	"github.com/lib/pq"
)

// quoteTypeCodes map each quote type to the two-letter code inside a
// quote number.
var quoteTypeCodes = map[string]string{
	"inquiry":         "XJ",
	"tooling":         "GZ",
	"engineering":     "GC",
	"mass_production": "LC",
	"process":         "GX",
	"combined":        "ZH",
}

// quoteNumberPrefix builds the per-day number prefix for a type:
// "CIS-<code><yyyymmdd>". Unknown types fall back to the KS site code.
func quoteNumberPrefix(quoteType string, day time.Time) string {
	code, ok := quoteTypeCodes[quoteType]
	if !ok {
		code = "KS"
	}
	return fmt.Sprintf("CIS-%s%s", code, day.Format("20060102"))
}

// nextQuoteNumber assigns the next number for a type, the prefix plus
// a three-digit sequence counting the quotes created today. It runs
// on the insert transaction; the unique index on quote_number catches
// a concurrent create racing the same count.
func nextQuoteNumber(ctx context.Context, tx *sql.Tx, quoteType string) (string, error) {
	prefix := quoteNumberPrefix(quoteType, time.Now())
	var count int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM quote WHERE quote_number LIKE $1`, prefix+"%").Scan(&count)
	if err != nil {
		return "", fmt.Errorf("failed to count today's quotes: %v", err)
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}

// isUniqueViolation reports a postgres unique-index violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateQuote inserts a quote and all its items in one transaction and
// returns the new quote ID. The quote number is generated inside that
// transaction; when a concurrent create of the same type lands the
// same number first, the insert is retried once with a fresh count.
// The total is recomputed from the items, never taken from the client.
func CreateQuote(ctx context.Context, db *sql.DB, quote *models.Quote) (int, error) {
	qctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()

	quote.TotalAmount = sumItems(quote.Items)

	quoteID, err := insertNumberedQuote(qctx, db, quote)
	if isUniqueViolation(err) {
		quoteID, err = insertNumberedQuote(qctx, db, quote)
	}
	return quoteID, err
}

func insertNumberedQuote(ctx context.Context, db *sql.DB, quote *models.Quote) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	number, err := nextQuoteNumber(ctx, tx, quote.QuoteType)
	if err != nil {
		return 0, err
	}
	quote.QuoteNumber = number

	var quoteID int
	insertQuery := `INSERT INTO quote (quote_number, title, quote_type, customer_name, customer_contact,
	                    customer_phone, customer_email, currency, exchange_rate, description, notes,
	                    total_amount, status, created_by, valid_until, created_at, updated_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	                RETURNING id`
	err = tx.QueryRowContext(ctx, insertQuery,
		quote.QuoteNumber, quote.Title, quote.QuoteType, quote.CustomerName, quote.CustomerContact,
		quote.CustomerPhone, quote.CustomerEmail, quote.Currency, quote.ExchangeRate, quote.Description,
		quote.Notes, quote.TotalAmount, quote.Status, quote.CreatedBy, quote.ValidUntil,
	).Scan(&quoteID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quote: %w", err)
	}

	if err := insertItems(ctx, tx, quoteID, quote.Items); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit quote: %w", err)
	}
	return quoteID, nil
}

// UpdateQuote replaces a quote's header fields and its entire item set
// in one transaction. Partial item updates are not supported: the
// client always sends the full list.
func UpdateQuote(ctx context.Context, db *sql.DB, quoteID int, req *models.UpdateQuoteRequest) error {
	qctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()

	tx, err := db.BeginTx(qctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	updateQuery := `UPDATE quote SET title = $1, customer_name = $2, customer_contact = $3,
	                    customer_phone = $4, customer_email = $5, currency = $6, exchange_rate = $7,
	                    description = $8, notes = $9, total_amount = $10, valid_until = $11, updated_at = NOW()
	                WHERE id = $12`
	result, err := tx.ExecContext(qctx, updateQuery,
		req.Title, req.CustomerName, req.CustomerContact, req.CustomerPhone, req.CustomerEmail,
		req.Currency, req.ExchangeRate, req.Description, req.Notes, sumItems(req.Items),
		req.ValidUntil, quoteID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %v", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(qctx, `DELETE FROM quote_item WHERE quote_id = $1`, quoteID); err != nil {
		return fmt.Errorf("failed to delete old items: %v", err)
	}
	if err := insertItems(qctx, tx, quoteID, req.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quote update: %v", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, quoteID int, items []models.QuoteItem) error {
	insertQuery := `INSERT INTO quote_item (quote_id, item_name, item_description, machine_type,
	                    supplier, machine_model, machine_id, configuration, card_info, quantity,
	                    unit, unit_price, total_price)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, item := range items {
		var cardInfo interface{}
		if item.CardInfo != nil {
			data, err := json.Marshal(item.CardInfo)
			if err != nil {
				return fmt.Errorf("failed to marshal card_info: %v", err)
			}
			cardInfo = data
		}
		var machineID interface{}
		if item.MachineID != 0 {
			machineID = item.MachineID
		}
		_, err := tx.ExecContext(ctx, insertQuery,
			quoteID, item.ItemName, item.ItemDescription, item.MachineType, item.Supplier,
			item.MachineModel, machineID, item.Configuration, cardInfo, item.Quantity,
			item.Unit, item.UnitPrice, item.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to insert quote item: %v", err)
		}
	}
	return nil
}

func sumItems(items []models.QuoteItem) float64 {
	var total float64
	for _, item := range items {
		total += item.TotalPrice
	}
	return total
}

// GetQuoteByID loads one quote with its full item list.
func GetQuoteByID(ctx context.Context, db *sql.DB, quoteID int) (*models.Quote, error) {
	qctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()

	query := `SELECT id, quote_number, title, quote_type, customer_name, customer_contact,
	              customer_phone, customer_email, currency, exchange_rate, description, notes,
	              total_amount, status, created_by, created_at, updated_at, valid_until
	          FROM quote WHERE id = $1`

	var quote models.Quote
	var contact, phone, email, description, notes sql.NullString
	var validUntil sql.NullTime
	err := db.QueryRowContext(qctx, query, quoteID).Scan(
		&quote.ID, &quote.QuoteNumber, &quote.Title, &quote.QuoteType, &quote.CustomerName,
		&contact, &phone, &email, &quote.Currency, &quote.ExchangeRate, &description,
		&notes, &quote.TotalAmount, &quote.Status, &quote.CreatedBy,
		&quote.CreatedAt, &quote.UpdatedAt, &validUntil,
	)
	if err != nil {
		return nil, err
	}
	quote.CustomerContact = contact.String
	quote.CustomerPhone = phone.String
	quote.CustomerEmail = email.String
	quote.Description = description.String
	quote.Notes = notes.String
	if validUntil.Valid {
		quote.ValidUntil = &validUntil.Time
	}

	items, err := fetchQuoteItems(qctx, db, quoteID)
	if err != nil {
		return nil, err
	}
	quote.Items = items
	return &quote, nil
}

func fetchQuoteItems(ctx context.Context, db *sql.DB, quoteID int) ([]models.QuoteItem, error) {
	query := `SELECT id, quote_id, item_name, item_description, machine_type, supplier,
	              machine_model, machine_id, configuration, card_info, quantity, unit,
	              unit_price, total_price
	          FROM quote_item WHERE quote_id = $1 ORDER BY id`

	rows, err := db.QueryContext(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote items: %v", err)
	}
	defer rows.Close()

	var items []models.QuoteItem
	for rows.Next() {
		var item models.QuoteItem
		var description, machineType, supplier, machineModel, configuration, unit sql.NullString
		var machineID sql.NullInt64
		var cardInfoJSON []byte
		err := rows.Scan(
			&item.ID, &item.QuoteID, &item.ItemName, &description, &machineType, &supplier,
			&machineModel, &machineID, &configuration, &cardInfoJSON, &item.Quantity, &unit,
			&item.UnitPrice, &item.TotalPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %v", err)
		}
		item.ItemDescription = description.String
		item.MachineType = machineType.String
		item.Supplier = supplier.String
		item.MachineModel = machineModel.String
		item.MachineID = int(machineID.Int64)
		item.Configuration = configuration.String
		item.Unit = unit.String
		if len(cardInfoJSON) > 0 {
			var snap models.CardSnapshot
			if err := json.Unmarshal(cardInfoJSON, &snap); err == nil {
				item.CardInfo = &snap
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// QuoteFilter narrows and pages the quote list.
type QuoteFilter struct {
	Status    string
	QuoteType string
	Customer  string
	CreatedBy int
	Page      int
	PageSize  int
}

// ListQuotes returns one page of quote headers plus the total count
// for the filter. Items are not loaded here.
func ListQuotes(ctx context.Context, db *sql.DB, filter QuoteFilter) ([]models.Quote, int, error) {
	qctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()

	var conditions []string
	var args []interface{}
	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.QuoteType != "" {
		addCondition("quote_type = $%d", filter.QuoteType)
	}
	if filter.Customer != "" {
		addCondition("customer_name ILIKE $%d", "%"+filter.Customer+"%")
	}
	if filter.CreatedBy != 0 {
		addCondition("created_by = $%d", filter.CreatedBy)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := db.QueryRowContext(qctx, "SELECT COUNT(*) FROM quote"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count quotes: %v", err)
	}

	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.PageSize

	query := fmt.Sprintf(`SELECT id, quote_number, title, quote_type, customer_name, currency,
	              exchange_rate, total_amount, status, created_by, created_at, updated_at
	          FROM quote%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := db.QueryContext(qctx, query, append(args, filter.PageSize, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query quotes: %v", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var quote models.Quote
		err := rows.Scan(
			&quote.ID, &quote.QuoteNumber, &quote.Title, &quote.QuoteType, &quote.CustomerName,
			&quote.Currency, &quote.ExchangeRate, &quote.TotalAmount, &quote.Status,
			&quote.CreatedBy, &quote.CreatedAt, &quote.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan quote: %v", err)
		}
		quotes = append(quotes, quote)
	}
	return quotes, total, rows.Err()
}

// UpdateQuoteStatus moves a quote through the approval workflow.
func UpdateQuoteStatus(ctx context.Context, db *sql.DB, quoteID int, status string) error {
	qctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()

	result, err := db.ExecContext(qctx, `UPDATE quote SET status = $1, updated_at = NOW() WHERE id = $2`, status, quoteID)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %v", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteQuote removes a quote and its items.
func DeleteQuote(ctx context.Context, db *sql.DB, quoteID int) error {
	qctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()

	tx, err := db.BeginTx(qctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(qctx, `DELETE FROM quote_item WHERE quote_id = $1`, quoteID); err != nil {
		return fmt.Errorf("failed to delete quote items: %v", err)
	}
	result, err := tx.ExecContext(qctx, `DELETE FROM quote WHERE id = $1`, quoteID)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %v", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// DeleteStaleDrafts removes draft quotes untouched for the given
// number of days. Run from the maintenance cron.
func DeleteStaleDrafts(db *sql.DB, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays)
	_, err := db.Exec(`DELETE FROM quote_item WHERE quote_id IN
	        (SELECT id FROM quote WHERE status = 'draft' AND updated_at < $1)`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale draft items: %v", err)
	}
	result, err := db.Exec(`DELETE FROM quote WHERE status = 'draft' AND updated_at < $1`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale drafts: %v", err)
	}
	return result.RowsAffected()
}
