package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/models"
	"github.com/hotelonline/veraclub-invoicer/pkg/database"
)

// InvoiceRepository handles invoice database operations
type InvoiceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *database.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

// Create persists an invoice and its line items in one transaction
func (r *InvoiceRepository) Create(invoice *models.Invoice) error {
	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO invoices (
				id, invoice_number, reservation_number, hotel_id,
				customer_name, customer_email, property_name,
				issue_date, due_date, subtotal, tax, total, vat_rate,
				notes, status, pdf_path, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			invoice.ID,
			invoice.InvoiceNumber,
			invoice.ReservationNumber,
			invoice.HotelID,
			invoice.CustomerName,
			invoice.CustomerEmail,
			invoice.Property,
			invoice.Date,
			invoice.DueDate,
			invoice.Subtotal,
			invoice.Tax,
			invoice.Total,
			invoice.VATRate,
			invoice.Notes,
			invoice.Status,
			invoice.PDFPath,
			invoice.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		for position, item := range invoice.Items {
			_, err := tx.Exec(`
				INSERT INTO invoice_items (
					invoice_id, position, description, check_in, check_out,
					nights, rate_per_night, subtotal, tax, total
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				invoice.ID,
				position,
				item.Description,
				item.CheckIn,
				item.CheckOut,
				item.Nights,
				item.RatePerNight,
				item.Subtotal,
				item.Tax,
				item.Total,
			)
			if err != nil {
				return fmt.Errorf("failed to insert invoice item %d: %w", position, err)
			}
		}
		return nil
	})

	if err != nil {
		r.logger.Error("Failed to create invoice",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return err
	}
	return nil
}

// GetByID retrieves one invoice with its line items; nil when absent
func (r *InvoiceRepository) GetByID(id string) (*models.Invoice, error) {
	row := r.db.QueryRow(`
		SELECT id, invoice_number, reservation_number, hotel_id,
			customer_name, customer_email, property_name,
			issue_date, due_date, subtotal, tax, total, vat_rate,
			notes, status, pdf_path, sent_at, created_at
		FROM invoices WHERE id = ?`, id)

	invoice, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := r.itemsFor(invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

// List returns stored invoices, newest first
func (r *InvoiceRepository) List(limit, offset int) ([]models.Invoice, error) {
	rows, err := r.db.Query(`
		SELECT id, invoice_number, reservation_number, hotel_id,
			customer_name, customer_email, property_name,
			issue_date, due_date, subtotal, tax, total, vat_rate,
			notes, status, pdf_path, sent_at, created_at
		FROM invoices
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range invoices {
		items, err := r.itemsFor(invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Items = items
	}
	return invoices, nil
}

// MarkSent records a successful email dispatch
func (r *InvoiceRepository) MarkSent(id string, sentAt time.Time) error {
	_, err := r.db.Exec(
		"UPDATE invoices SET status = ?, sent_at = ? WHERE id = ?",
		models.InvoiceStatusSent, sentAt, id,
	)
	if err != nil {
		r.logger.Error("Failed to mark invoice sent", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark invoice sent: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) itemsFor(invoiceID string) ([]models.LineItem, error) {
	rows, err := r.db.Query(`
		SELECT description, check_in, check_out, nights,
			rate_per_night, subtotal, tax, total
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(
			&item.Description,
			&item.CheckIn,
			&item.CheckOut,
			&item.Nights,
			&item.RatePerNight,
			&item.Subtotal,
			&item.Tax,
			&item.Total,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var invoice models.Invoice
	var notes, pdfPath sql.NullString
	var sentAt sql.NullTime

	err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.ReservationNumber,
		&invoice.HotelID,
		&invoice.CustomerName,
		&invoice.CustomerEmail,
		&invoice.Property,
		&invoice.Date,
		&invoice.DueDate,
		&invoice.Subtotal,
		&invoice.Tax,
		&invoice.Total,
		&invoice.VATRate,
		&notes,
		&invoice.Status,
		&pdfPath,
		&sentAt,
		&invoice.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.Notes = notes.String
	invoice.PDFPath = pdfPath.String
	if sentAt.Valid {
		invoice.SentAt = &sentAt.Time
	}
	return &invoice, nil
}
