package recipient

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/repository"
	"github.com/hotelonline/veraclub-invoicer/pkg/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE recipients (
			email TEXT PRIMARY KEY,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	require.NoError(t, err)

	return NewStore(repository.NewRecipientRepository(db, zap.NewNop()), zap.NewNop())
}

func TestStore_AddListRemoveRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Add("accounts@veraclub.example"))

	emails, err := store.List()
	require.NoError(t, err)
	assert.Contains(t, emails, "accounts@veraclub.example")

	require.NoError(t, store.Remove("accounts@veraclub.example"))

	emails, err = store.List()
	require.NoError(t, err)
	assert.NotContains(t, emails, "accounts@veraclub.example")
}

func TestStore_AddRejectsInvalidEmail(t *testing.T) {
	store := newTestStore(t)

	tests := []string{"not-an-email", "missing-domain@", "@no-local.example", "", "two words@x.example"}
	for _, email := range tests {
		t.Run(email, func(t *testing.T) {
			err := store.Add(email)
			assert.ErrorIs(t, err, ErrInvalidEmail)
		})
	}

	// the store is unchanged after rejected adds
	emails, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestStore_AddIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Add("one@veraclub.example"))
	require.NoError(t, store.Add("one@veraclub.example"))

	emails, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"one@veraclub.example"}, emails)
}

func TestStore_RemoveMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.Remove("ghost@veraclub.example")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_AddBulkPartitions(t *testing.T) {
	store := newTestStore(t)

	added, rejected, err := store.AddBulk([]string{
		"one@veraclub.example",
		"not-an-email",
		" two@veraclub.example ",
		"@bad",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"one@veraclub.example", "two@veraclub.example"}, added)
	require.Len(t, rejected, 2)
	assert.Equal(t, "not-an-email", rejected[0].Email)
	assert.Equal(t, "@bad", rejected[1].Email)

	emails, err := store.List()
	require.NoError(t, err)
	assert.Len(t, emails, 2)
}

func TestStore_Update(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Add("old@veraclub.example"))
	require.NoError(t, store.Update("old@veraclub.example", "new@veraclub.example"))

	emails, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"new@veraclub.example"}, emails)

	assert.ErrorIs(t, store.Update("absent@veraclub.example", "x@veraclub.example"), ErrNotFound)
	assert.ErrorIs(t, store.Update("new@veraclub.example", "junk"), ErrInvalidEmail)
}

func TestStore_ReplaceAll(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Add("old@veraclub.example"))

	kept, err := store.ReplaceAll([]string{"a@veraclub.example", "", "b@veraclub.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@veraclub.example", "b@veraclub.example"}, kept)

	emails, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, kept, emails)

	_, err = store.ReplaceAll([]string{"fine@veraclub.example", "broken"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}
