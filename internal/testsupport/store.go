package testsupport

import (
	"path/filepath"
	"testing"

	"mediatidy/internal/ledger"
)

// MustOpenStore opens a ledger store backed by a per-test database and
// registers cleanup.
func MustOpenStore(t testing.TB) *ledger.Store {
	t.Helper()
	return MustOpenStoreAt(t, filepath.Join(t.TempDir(), "ledger.db"))
}

// MustOpenStoreAt opens a ledger store at the given path.
func MustOpenStoreAt(t testing.TB, path string) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
