package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/pkg/database"
)

// RecipientRepository handles the notification address table
type RecipientRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRecipientRepository creates a new recipient repository
func NewRecipientRepository(db *database.DB, logger *zap.Logger) *RecipientRepository {
	return &RecipientRepository{db: db, logger: logger}
}

// List returns all configured addresses in insertion order
func (r *RecipientRepository) List() ([]string, error) {
	rows, err := r.db.Query("SELECT email FROM recipients ORDER BY created_at, email")
	if err != nil {
		r.logger.Error("Failed to list recipients", zap.Error(err))
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// Add inserts an address; adding an existing address is a no-op
func (r *RecipientRepository) Add(email string) error {
	_, err := r.db.Exec("INSERT OR IGNORE INTO recipients (email) VALUES (?)", email)
	if err != nil {
		r.logger.Error("Failed to add recipient", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("failed to add recipient: %w", err)
	}
	return nil
}

// Remove deletes an address, reporting whether it existed
func (r *RecipientRepository) Remove(email string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM recipients WHERE email = ?", email)
	if err != nil {
		r.logger.Error("Failed to remove recipient", zap.String("email", email), zap.Error(err))
		return false, fmt.Errorf("failed to remove recipient: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Replace swaps the whole list for the given addresses
func (r *RecipientRepository) Replace(emails []string) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM recipients"); err != nil {
			return fmt.Errorf("failed to clear recipients: %w", err)
		}
		for _, email := range emails {
			if _, err := tx.Exec("INSERT OR IGNORE INTO recipients (email) VALUES (?)", email); err != nil {
				return fmt.Errorf("failed to insert recipient %s: %w", email, err)
			}
		}
		return nil
	})
}
