// Package recipient manages the configured set of invoice notification
// addresses. Writes are last-writer-wins; the expected usage is a single
// operator editing the list from the settings page.
package recipient

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/repository"
	"github.com/hotelonline/veraclub-invoicer/pkg/utils"
)

var (
	// ErrInvalidEmail rejects a malformed address
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrNotFound reports removal of an address that is not configured
	ErrNotFound = errors.New("email address not found")
)

// Rejection explains why one address of a bulk request was refused
type Rejection struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// Store validates and persists recipient addresses
type Store struct {
	repo   *repository.RecipientRepository
	logger *zap.Logger
}

// NewStore creates a recipient store over the given repository
func NewStore(repo *repository.RecipientRepository, logger *zap.Logger) *Store {
	return &Store{repo: repo, logger: logger}
}

// List returns every configured address
func (s *Store) List() ([]string, error) {
	return s.repo.List()
}

// Add validates and stores one address
func (s *Store) Add(email string) error {
	email = strings.TrimSpace(email)
	if err := utils.ValidateEmail(email); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	if err := s.repo.Add(email); err != nil {
		return err
	}
	s.logger.Info("Recipient added", zap.String("email", email))
	return nil
}

// AddBulk partitions the addresses into accepted and rejected. Valid
// addresses are stored even when others in the batch are refused.
func (s *Store) AddBulk(emails []string) (added []string, rejected []Rejection, err error) {
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if vErr := utils.ValidateEmail(email); vErr != nil {
			rejected = append(rejected, Rejection{Email: email, Error: "Invalid email format"})
			continue
		}
		if err := s.repo.Add(email); err != nil {
			return added, rejected, err
		}
		added = append(added, email)
	}

	s.logger.Info("Bulk recipient add",
		zap.Int("added", len(added)),
		zap.Int("rejected", len(rejected)))
	return added, rejected, nil
}

// Remove deletes one address; ErrNotFound when it was not configured
func (s *Store) Remove(email string) error {
	existed, err := s.repo.Remove(strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("%w: %s", ErrNotFound, email)
	}
	s.logger.Info("Recipient removed", zap.String("email", email))
	return nil
}

// Update replaces one address with another in a single operation
func (s *Store) Update(oldEmail, newEmail string) error {
	newEmail = strings.TrimSpace(newEmail)
	if err := utils.ValidateEmail(newEmail); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, newEmail)
	}
	if err := s.Remove(oldEmail); err != nil {
		return err
	}
	return s.repo.Add(newEmail)
}

// ReplaceAll overwrites the list, keeping only valid addresses. Used by the
// legacy plain-text settings endpoint which posts the whole list at once.
func (s *Store) ReplaceAll(emails []string) ([]string, error) {
	var valid []string
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if err := utils.ValidateEmail(email); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
		}
		valid = append(valid, email)
	}

	if err := s.repo.Replace(valid); err != nil {
		return nil, err
	}
	s.logger.Info("Recipient list replaced", zap.Int("count", len(valid)))
	return valid, nil
}
