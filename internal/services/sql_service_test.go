package services

import (
	"strings"
	"testing"

	"schemadesigner/internal/models"
	"schemadesigner/internal/utils"
)

func sqlModel() *models.Metamodel {
	length := 120
	return &models.Metamodel{
		Entities: []models.Entity{
			{
				Name: "Library",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true, IsUnique: true},
					{Name: "name", DataType: models.TypeVarchar, Length: &length},
				},
			},
			{
				Name: "Book",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true, IsUnique: true},
					{Name: "title", DataType: models.TypeVarchar, IsNullable: true},
					{Name: "published", DataType: models.TypeBoolean},
				},
			},
			{
				Name: "Member",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true, IsUnique: true},
				},
			},
		},
		Relationships: []models.Relationship{
			{Name: "library_books", SourceEntity: "Library", TargetEntity: "Book", Cardinality: models.OneToMany},
			{Name: "member_books", SourceEntity: "Member", TargetEntity: "Book", Cardinality: models.ManyToMany},
		},
	}
}

func generate(t *testing.T, dialect string, opts models.ScriptOptions) *models.GeneratedScript {
	t.Helper()
	svc := NewSQLService(utils.SetupLogging("error"))
	script, err := svc.Generate(sqlModel(), dialect, opts)
	if err != nil {
		t.Fatalf("Generate(%s): %v", dialect, err)
	}
	return script
}

func TestGeneratePostgres(t *testing.T) {
	script := generate(t, "postgresql", models.DefaultScriptOptions())
	sql := script.Script

	for _, want := range []string{
		"CREATE TABLE library (",
		"CREATE TABLE book (",
		"CREATE TABLE member (",
		"id INTEGER PRIMARY KEY",
		"name VARCHAR(120) NOT NULL",
		"title VARCHAR(255)",
		"published BOOLEAN NOT NULL",
		"library_id INTEGER",
		"CREATE TABLE member_book (",
		"PRIMARY KEY (member_id, book_id)",
		"ALTER TABLE book ADD CONSTRAINT fk_book_library_id FOREIGN KEY (library_id) REFERENCES library(id);",
		"CREATE INDEX idx_book_library_id ON book (library_id);",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("script missing %q:\n%s", want, sql)
		}
	}

	if script.Dialect != "postgresql" {
		t.Errorf("dialect = %s", script.Dialect)
	}
	if script.Statistics.Tables != 4 {
		t.Errorf("tables = %d, want 4 (3 entities + 1 junction)", script.Statistics.Tables)
	}
	if script.Statistics.Relationships != 2 {
		t.Errorf("relationships = %d", script.Statistics.Relationships)
	}
	if script.Statistics.LinesOfCode == 0 {
		t.Error("lines of code not counted")
	}
}

func TestGenerateDialectTypeMapping(t *testing.T) {
	tests := []struct {
		dialect string
		want    []string
	}{
		{"mysql", []string{"id INT PRIMARY KEY", "published TINYINT(1) NOT NULL"}},
		{"sqlserver", []string{"id INT PRIMARY KEY", "published BIT NOT NULL"}},
		{"oracle", []string{"id NUMBER(10) PRIMARY KEY", "name VARCHAR2(120) NOT NULL", "published NUMBER(1) NOT NULL"}},
		{"sqlite", []string{"id INTEGER PRIMARY KEY", "library_id INTEGER REFERENCES library(id)"}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			sql := generate(t, tt.dialect, models.DefaultScriptOptions()).Script
			for _, want := range tt.want {
				if !strings.Contains(sql, want) {
					t.Errorf("%s script missing %q:\n%s", tt.dialect, want, sql)
				}
			}
		})
	}
}

func TestGenerateSqliteHasNoAlterTable(t *testing.T) {
	sql := generate(t, "sqlite", models.DefaultScriptOptions()).Script
	if strings.Contains(sql, "ALTER TABLE") {
		t.Errorf("sqlite script must inline constraints:\n%s", sql)
	}
}

func TestGenerateUnknownDialectFallsBack(t *testing.T) {
	script := generate(t, "cobol-db", models.DefaultScriptOptions())
	if script.Dialect != "postgresql" {
		t.Errorf("dialect = %s, want postgresql fallback", script.Dialect)
	}
}

func TestGenerateOptions(t *testing.T) {
	t.Run("no constraints", func(t *testing.T) {
		sql := generate(t, "postgresql", models.ScriptOptions{AddIndexes: true}).Script
		if strings.Contains(sql, "ADD CONSTRAINT") || strings.Contains(sql, "FOREIGN KEY") {
			t.Errorf("constraints emitted despite being disabled:\n%s", sql)
		}
		if !strings.Contains(sql, "CREATE INDEX") {
			t.Error("indexes missing")
		}
	})

	t.Run("no indexes", func(t *testing.T) {
		sql := generate(t, "postgresql", models.ScriptOptions{AddConstraints: true}).Script
		if strings.Contains(sql, "CREATE INDEX") {
			t.Errorf("indexes emitted despite being disabled:\n%s", sql)
		}
	})

	t.Run("no comments", func(t *testing.T) {
		sql := generate(t, "postgresql", models.ScriptOptions{AddIndexes: true, AddConstraints: true}).Script
		for _, line := range strings.Split(sql, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				t.Errorf("comment line emitted with comments disabled: %q", line)
			}
		}
	})
}

func TestGenerateDefaultValues(t *testing.T) {
	svc := NewSQLService(utils.SetupLogging("error"))
	now := "CURRENT_TIMESTAMP"
	status := "active"
	m := &models.Metamodel{
		Entities: []models.Entity{
			{
				Name: "Order",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true},
					{Name: "created_at", DataType: models.TypeTimestamp, DefaultValue: &now},
					{Name: "status", DataType: models.TypeVarchar, IsNullable: true, DefaultValue: &status},
				},
			},
		},
	}

	script, err := svc.Generate(m, "postgresql", models.DefaultScriptOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(script.Script, "DEFAULT CURRENT_TIMESTAMP") {
		t.Errorf("keyword default quoted:\n%s", script.Script)
	}
	if !strings.Contains(script.Script, "DEFAULT 'active'") {
		t.Errorf("text default not quoted:\n%s", script.Script)
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Book", "book"},
		{"OrderItem", "order_item"},
		{"library", "library"},
		{"Book Shelf", "book_shelf"},
	}
	for _, tt := range tests {
		if got := tableName(tt.in); got != tt.want {
			t.Errorf("tableName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
