package testhelper

import (
	"context"
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	for _, table := range []string{"dictionary", "dictionary_entry", "definition_tag"} {
		var exists bool
		err := pool.QueryRow(context.Background(),
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
			table,
		).Scan(&exists)
		if err != nil {
			t.Fatalf("query information_schema: %v", err)
		}
		if !exists {
			t.Errorf("expected table %q to exist after migrations", table)
		}
	}
}
