package db

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"memory", MemoryPath},
		{"file", filepath.Join(t.TempDir(), "lightcmd.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Open(tt.path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer d.Close()

			var name string
			err = d.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'command_ledger'`).Scan(&name)
			if err != nil {
				t.Fatalf("command_ledger missing: %v", err)
			}
		})
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightcmd.db")
	for i := 0; i < 2; i++ {
		d, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		d.Close()
	}
}
