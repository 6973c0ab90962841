package services

import (
	"context"
	"strings"
	"testing"

	"schemadesigner/internal/utils"
)

func TestHeuristicExtract(t *testing.T) {
	svc := NewExtractorService(nil, utils.SetupLogging("error"))

	result, err := svc.Extract(context.Background(), "A library where users borrow books from libraries")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Entities) == 0 {
		t.Fatal("no entities extracted")
	}

	names := make(map[string]bool)
	for _, entity := range result.Entities {
		if names[entity.Name] {
			t.Errorf("duplicate entity %q", entity.Name)
		}
		names[entity.Name] = true

		if len(entity.Attributes) != 2 {
			t.Fatalf("entity %s: %d attributes", entity.Name, len(entity.Attributes))
		}
		id := entity.Attributes[0]
		if id.Name != "id" || id.IsPrimaryKey == nil || !*id.IsPrimaryKey {
			t.Errorf("entity %s: bad id attribute %+v", entity.Name, id)
		}
	}
	// "users" and "books" singularize, "libraries" goes through ies->y.
	if !names["User"] || !names["Book"] || !names["Library"] {
		t.Errorf("entities = %v", names)
	}

	if len(result.Relationships) != len(result.Entities)-1 {
		t.Errorf("relationships = %d, want %d", len(result.Relationships), len(result.Entities)-1)
	}
	for _, rel := range result.Relationships {
		if rel.Cardinality != "one_to_many" {
			t.Errorf("cardinality = %s", rel.Cardinality)
		}
		if !names[rel.SourceEntity] || !names[rel.TargetEntity] {
			t.Errorf("relationship references unknown entity: %+v", rel)
		}
	}
}

func TestHeuristicExtractSkipsGenericWords(t *testing.T) {
	svc := NewExtractorService(nil, utils.SetupLogging("error"))

	result, err := svc.Extract(context.Background(), "a database with some tables and entities in it")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, entity := range result.Entities {
		lower := strings.ToLower(entity.Name)
		if lower == "table" || lower == "entity" {
			t.Errorf("generic word kept as entity: %s", entity.Name)
		}
	}
}

func TestEntityName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"books", "Book"},
		{"libraries", "Library"},
		{"user", "User"},
		{"address", "Address"},
		{"tables", ""},
		{"  orders ", "Order"},
	}
	for _, tt := range tests {
		if got := entityName(tt.in); got != tt.want {
			t.Errorf("entityName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
