package db

import "testing"

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	migrations, err := LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 embedded migrations, got %d", len(migrations))
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Errorf("migrations not sorted: version %d follows %d",
				migrations[i].Version, migrations[i-1].Version)
		}
	}
	for _, m := range migrations {
		if m.SQL == "" {
			t.Errorf("migration %d_%s has empty SQL", m.Version, m.Name)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		filename string
		version  int
		ok       bool
	}{
		{"001_core.sql", 1, true},
		{"002_diagnosis_report.sql", 2, true},
		{"010_later.sql", 10, true},
		{"notes.sql", 0, false},
		{"_underscore.sql", 0, false},
	}

	for _, tt := range tests {
		version, ok := parseVersion(tt.filename)
		if ok != tt.ok || version != tt.version {
			t.Errorf("parseVersion(%q) = (%d, %v), want (%d, %v)",
				tt.filename, version, ok, tt.version, tt.ok)
		}
	}
}
