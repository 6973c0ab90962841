package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"schemadesigner/internal/models"
)

// SQLService generates DDL scripts from the metamodel for the supported
// dialects. Like the diagram renderer it is a pure function of the schema.
type SQLService struct {
	logger *logrus.Logger
}

func NewSQLService(logger *logrus.Logger) *SQLService {
	return &SQLService{logger: logger}
}

var supportedDialects = map[string]bool{
	"postgresql": true,
	"mysql":      true,
	"sqlite":     true,
	"sqlserver":  true,
	"oracle":     true,
}

// Generate renders the schema as a DDL script. Unknown dialects fall back to
// postgresql rather than failing, matching how the product behaves when a
// dialect template is missing.
func (s *SQLService) Generate(m *models.Metamodel, dialect string, opts models.ScriptOptions) (*models.GeneratedScript, error) {
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	if !supportedDialects[dialect] {
		s.logger.Warnf("unknown SQL dialect %q, falling back to postgresql", dialect)
		dialect = "postgresql"
	}

	var sb strings.Builder

	if opts.IncludeComments {
		sb.WriteString(fmt.Sprintf("-- Generated database schema (%s)\n", dialect))
		sb.WriteString(fmt.Sprintf("-- Entities: %d, relationships: %d\n", len(m.Entities), len(m.Relationships)))
		sb.WriteString(fmt.Sprintf("-- Generated at: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05")))
	}

	fkColumns := foreignKeyColumns(m)

	for _, entity := range m.Entities {
		writeCreateTable(&sb, entity, fkColumns[entity.Name], dialect, opts)
	}

	if junctions := junctionTables(m); len(junctions) > 0 {
		if opts.IncludeComments {
			sb.WriteString("-- Junction tables for many-to-many relationships\n\n")
		}
		for _, junction := range junctions {
			writeJunctionTable(&sb, junction, dialect, opts)
		}
	}

	if opts.AddConstraints && dialect != "sqlite" {
		writeForeignKeyConstraints(&sb, m, fkColumns, opts)
	}

	if opts.AddIndexes {
		writeIndexes(&sb, m, fkColumns, opts)
	}

	script := sb.String()
	return &models.GeneratedScript{
		Script:  script,
		Dialect: dialect,
		Statistics: models.SQLStatistics{
			Tables:        len(m.Entities) + len(junctionTables(m)),
			Relationships: len(m.Relationships),
			LinesOfCode:   strings.Count(script, "\n"),
		},
	}, nil
}

// foreignKeyColumn describes a column a relationship adds to a table.
type foreignKeyColumn struct {
	Name       string
	References string // referenced table
	RefColumn  string
	Unique     bool
}

// foreignKeyColumns derives the FK columns each entity needs from the
// non-many-to-many relationships. The "many" side carries the column; the
// relationship's key hints override the derived name.
func foreignKeyColumns(m *models.Metamodel) map[string][]foreignKeyColumn {
	columns := make(map[string][]foreignKeyColumn)
	for _, rel := range m.Relationships {
		var owner, referenced, hint string
		unique := false

		switch rel.Cardinality {
		case models.OneToMany:
			owner, referenced, hint = rel.TargetEntity, rel.SourceEntity, rel.TargetForeignKey
		case models.ManyToOne:
			owner, referenced, hint = rel.SourceEntity, rel.TargetEntity, rel.SourceForeignKey
		case models.OneToOne:
			owner, referenced, hint = rel.TargetEntity, rel.SourceEntity, rel.TargetForeignKey
			unique = true
		default:
			continue // many_to_many becomes a junction table
		}

		name := hint
		if name == "" {
			name = tableName(referenced) + "_id"
		}

		ownerEntity := m.FindEntity(owner)
		if ownerEntity != nil && hasAttribute(ownerEntity, name) {
			continue // the column is already modelled as an attribute
		}

		columns[owner] = append(columns[owner], foreignKeyColumn{
			Name:       name,
			References: tableName(referenced),
			RefColumn:  primaryKeyColumn(m.FindEntity(referenced)),
			Unique:     unique,
		})
	}
	return columns
}

type junctionTable struct {
	Name          string
	LeftTable     string
	LeftPKColumn  string
	RightTable    string
	RightPKColumn string
}

func junctionTables(m *models.Metamodel) []junctionTable {
	var junctions []junctionTable
	for _, rel := range m.Relationships {
		if rel.Cardinality != models.ManyToMany {
			continue
		}
		junctions = append(junctions, junctionTable{
			Name:          tableName(rel.SourceEntity) + "_" + tableName(rel.TargetEntity),
			LeftTable:     tableName(rel.SourceEntity),
			LeftPKColumn:  primaryKeyColumn(m.FindEntity(rel.SourceEntity)),
			RightTable:    tableName(rel.TargetEntity),
			RightPKColumn: primaryKeyColumn(m.FindEntity(rel.TargetEntity)),
		})
	}
	return junctions
}

func writeCreateTable(sb *strings.Builder, entity models.Entity, fks []foreignKeyColumn, dialect string, opts models.ScriptOptions) {
	if opts.IncludeComments && entity.Description != "" {
		sb.WriteString(fmt.Sprintf("-- %s\n", entity.Description))
	}
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", tableName(entity.Name)))

	var lines []string
	for _, attr := range entity.Attributes {
		lines = append(lines, "    "+columnDefinition(attr, dialect))
	}
	for _, fk := range fks {
		line := fmt.Sprintf("    %s %s", fk.Name, mapType(models.TypeInteger, nil, dialect))
		if fk.Unique {
			line += " UNIQUE"
		}
		if dialect == "sqlite" && opts.AddConstraints {
			line += fmt.Sprintf(" REFERENCES %s(%s)", fk.References, fk.RefColumn)
		}
		lines = append(lines, line)
	}

	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);\n\n")
}

func writeJunctionTable(sb *strings.Builder, junction junctionTable, dialect string, opts models.ScriptOptions) {
	leftCol := junction.LeftTable + "_id"
	rightCol := junction.RightTable + "_id"
	intType := mapType(models.TypeInteger, nil, dialect)

	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", junction.Name))
	lines := []string{
		fmt.Sprintf("    %s %s NOT NULL", leftCol, intType),
		fmt.Sprintf("    %s %s NOT NULL", rightCol, intType),
		fmt.Sprintf("    PRIMARY KEY (%s, %s)", leftCol, rightCol),
	}
	if opts.AddConstraints {
		lines = append(lines,
			fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)", leftCol, junction.LeftTable, junction.LeftPKColumn),
			fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)", rightCol, junction.RightTable, junction.RightPKColumn),
		)
	}
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);\n\n")
}

func writeForeignKeyConstraints(sb *strings.Builder, m *models.Metamodel, fkColumns map[string][]foreignKeyColumn, opts models.ScriptOptions) {
	wrote := false
	for _, entity := range m.Entities {
		for _, fk := range fkColumns[entity.Name] {
			if !wrote && opts.IncludeComments {
				sb.WriteString("-- Foreign key constraints\n")
			}
			wrote = true
			table := tableName(entity.Name)
			sb.WriteString(fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT fk_%s_%s FOREIGN KEY (%s) REFERENCES %s(%s);\n",
				table, table, fk.Name, fk.Name, fk.References, fk.RefColumn))
		}
	}
	if wrote {
		sb.WriteString("\n")
	}
}

func writeIndexes(sb *strings.Builder, m *models.Metamodel, fkColumns map[string][]foreignKeyColumn, opts models.ScriptOptions) {
	wrote := false
	header := func() {
		if !wrote && opts.IncludeComments {
			sb.WriteString("-- Indexes\n")
		}
		wrote = true
	}
	for _, entity := range m.Entities {
		table := tableName(entity.Name)
		for _, fk := range fkColumns[entity.Name] {
			header()
			sb.WriteString(fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);\n", table, fk.Name, table, fk.Name))
		}
		for _, attr := range entity.Attributes {
			if attr.IsForeignKey && !attr.IsPrimaryKey {
				header()
				sb.WriteString(fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);\n", table, attr.Name, table, attr.Name))
			}
		}
	}
	if wrote {
		sb.WriteString("\n")
	}
}

func columnDefinition(attr models.Attribute, dialect string) string {
	parts := []string{attr.Name, mapType(attr.DataType, attr.Length, dialect)}

	if attr.IsPrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	} else {
		if !attr.IsNullable {
			parts = append(parts, "NOT NULL")
		}
		if attr.IsUnique {
			parts = append(parts, "UNIQUE")
		}
	}
	if attr.DefaultValue != nil {
		parts = append(parts, "DEFAULT "+defaultLiteral(attr))
	}

	return strings.Join(parts, " ")
}

// defaultLiteral quotes textual defaults and passes numeric/keyword defaults
// through unchanged.
func defaultLiteral(attr models.Attribute) string {
	value := *attr.DefaultValue
	switch attr.DataType {
	case models.TypeVarchar, models.TypeText, models.TypeChar, models.TypeDate, models.TypeTimestamp:
		upper := strings.ToUpper(value)
		if upper == "CURRENT_TIMESTAMP" || upper == "CURRENT_DATE" || upper == "NOW()" {
			return value
		}
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}
	return value
}

var typeOverrides = map[string]map[models.DataType]string{
	"mysql": {
		models.TypeInteger: "INT",
		models.TypeBoolean: "TINYINT(1)",
	},
	"sqlserver": {
		models.TypeInteger:   "INT",
		models.TypeText:      "NVARCHAR(MAX)",
		models.TypeTimestamp: "DATETIME2",
		models.TypeBoolean:   "BIT",
		models.TypeFloat:     "FLOAT",
	},
	"oracle": {
		models.TypeInteger: "NUMBER(10)",
		models.TypeBigint:  "NUMBER(19)",
		models.TypeText:    "CLOB",
		models.TypeVarchar: "VARCHAR2",
		models.TypeBoolean: "NUMBER(1)",
		models.TypeFloat:   "BINARY_FLOAT",
	},
}

func mapType(dataType models.DataType, length *int, dialect string) string {
	mapped := string(dataType)
	if overrides, ok := typeOverrides[dialect]; ok {
		if override, ok := overrides[dataType]; ok {
			mapped = override
		}
	}

	switch dataType {
	case models.TypeVarchar, models.TypeChar:
		n := 255
		if length != nil {
			n = *length
		}
		return fmt.Sprintf("%s(%d)", mapped, n)
	case models.TypeDecimal:
		if length != nil {
			return fmt.Sprintf("%s(%d,2)", mapped, *length)
		}
		return mapped + "(10,2)"
	}
	return mapped
}

func primaryKeyColumn(entity *models.Entity) string {
	if entity != nil {
		if i := entity.PrimaryKeyIndex(); i >= 0 {
			return entity.Attributes[i].Name
		}
	}
	return "id"
}

func hasAttribute(entity *models.Entity, name string) bool {
	for _, attr := range entity.Attributes {
		if attr.Name == name {
			return true
		}
	}
	return false
}

// tableName lowercases the entity name and converts camel case to snake
// case: "OrderItem" becomes "order_item".
func tableName(entityName string) string {
	var sb strings.Builder
	last := rune(0)
	for _, r := range entityName {
		switch {
		case r >= 'A' && r <= 'Z':
			if sb.Len() > 0 && last != '_' {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
			sb.WriteRune(r)
			last = r
		case r == ' ' || r == '-':
			if sb.Len() > 0 && last != '_' {
				sb.WriteByte('_')
				last = '_'
			}
		default:
			sb.WriteRune(r)
			last = r
		}
	}
	return sb.String()
}
