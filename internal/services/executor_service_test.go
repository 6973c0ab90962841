package services

import (
	"testing"
)

func TestSplitStatements(t *testing.T) {
	script := `-- Generated database schema (postgresql)
CREATE TABLE library (
    id INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL
);

-- Indexes
CREATE INDEX idx_book_library_id ON book (library_id);
`
	statements := splitStatements(script)
	if len(statements) != 2 {
		t.Fatalf("got %d statements, want 2: %q", len(statements), statements)
	}
	if statements[0][:12] != "CREATE TABLE" {
		t.Errorf("first statement = %q", statements[0])
	}
	if statements[1][:12] != "CREATE INDEX" {
		t.Errorf("second statement = %q", statements[1])
	}
}

func TestCreatedTables(t *testing.T) {
	statements := []string{
		"CREATE TABLE library (\n    id INTEGER PRIMARY KEY\n)",
		"CREATE TABLE book (id INTEGER)",
		"CREATE INDEX idx_x ON book (id)",
		"ALTER TABLE book ADD CONSTRAINT c FOREIGN KEY (id) REFERENCES library(id)",
	}
	tables := createdTables(statements)
	if len(tables) != 2 || tables[0] != "library" || tables[1] != "book" {
		t.Errorf("tables = %v, want [library book]", tables)
	}
}
