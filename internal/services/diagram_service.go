package services

import (
	"fmt"
	"strings"

	"schemadesigner/internal/models"
)

// DiagramService renders the metamodel into textual diagram dialects. It is
// a pure function of the schema and never modifies it.
type DiagramService struct{}

func NewDiagramService() *DiagramService {
	return &DiagramService{}
}

func (s *DiagramService) Render(m *models.Metamodel) (*models.DiagramSet, error) {
	return &models.DiagramSet{
		MermaidER:    generateMermaidER(m),
		MermaidClass: generateMermaidClass(m),
		PlantUML:     generatePlantUML(m),
	}, nil
}

var erGlyphs = map[models.Cardinality]string{
	models.OneToOne:   "||--||",
	models.OneToMany:  "||--o{",
	models.ManyToOne:  "}o--||",
	models.ManyToMany: "}o--o{",
}

func generateMermaidER(m *models.Metamodel) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	if len(m.Relationships) > 0 {
		// Deduplicate edges: the same pair can appear under several names.
		seen := make(map[string]bool)
		for _, rel := range m.Relationships {
			glyph, ok := erGlyphs[rel.Cardinality]
			if !ok {
				glyph = erGlyphs[models.OneToMany]
			}
			key := fmt.Sprintf("%s:%s:%s", rel.SourceEntity, glyph, rel.TargetEntity)
			if seen[key] {
				continue
			}
			seen[key] = true

			sb.WriteString(fmt.Sprintf("    %s %s %s : \"%s\"\n",
				strings.ToUpper(rel.SourceEntity),
				glyph,
				strings.ToUpper(rel.TargetEntity),
				rel.Name))
		}
		sb.WriteString("\n")
	}

	for _, entity := range m.Entities {
		sb.WriteString(fmt.Sprintf("    %s {\n", strings.ToUpper(entity.Name)))

		for _, attr := range entity.Attributes {
			annotations := ""
			if attr.IsPrimaryKey {
				annotations = " PK"
			}
			if attr.IsForeignKey {
				annotations += " FK"
			}
			if attr.IsUnique && !attr.IsPrimaryKey {
				annotations += " UK"
			}

			sb.WriteString(fmt.Sprintf("        %s %s%s\n",
				strings.ToLower(string(attr.DataType)),
				attr.Name,
				annotations))
		}

		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

var classGlyphs = map[models.Cardinality]string{
	models.OneToOne:   `"1" -- "1"`,
	models.OneToMany:  `"1" --> "*"`,
	models.ManyToOne:  `"*" --> "1"`,
	models.ManyToMany: `"*" --> "*"`,
}

func generateMermaidClass(m *models.Metamodel) string {
	lines := []string{"classDiagram"}

	for _, entity := range m.Entities {
		lines = append(lines, fmt.Sprintf("    class %s {", entity.Name))

		for _, attr := range entity.Attributes {
			var markers []string
			if attr.IsPrimaryKey {
				markers = append(markers, "PK")
			}
			if attr.IsForeignKey {
				markers = append(markers, "FK")
			}
			if attr.IsUnique && !attr.IsPrimaryKey {
				markers = append(markers, "UNIQUE")
			}

			markerStr := ""
			if len(markers) > 0 {
				markerStr = fmt.Sprintf(" <<%s>>", strings.Join(markers, ","))
			}
			lines = append(lines, fmt.Sprintf("        +%s %s%s", typeWithLength(attr), attr.Name, markerStr))
		}

		lines = append(lines, "    }", "")
	}

	for _, rel := range m.Relationships {
		glyph, ok := classGlyphs[rel.Cardinality]
		if !ok {
			glyph = classGlyphs[models.ManyToMany]
		}
		lines = append(lines, fmt.Sprintf("    %s %s %s : %s", rel.SourceEntity, glyph, rel.TargetEntity, rel.Name))
	}

	return strings.Join(lines, "\n")
}

var umlGlyphs = map[models.Cardinality]string{
	models.OneToOne:   `"1" -- "1"`,
	models.OneToMany:  `"1" --o{ "*"`,
	models.ManyToOne:  `"*" }o-- "1"`,
	models.ManyToMany: `"*" }o--o{ "*"`,
}

func generatePlantUML(m *models.Metamodel) string {
	lines := []string{
		"@startuml",
		"",
		"skinparam classAttributeIconSize 0",
		"skinparam classFontSize 12",
		"skinparam packageStyle rectangle",
		"",
	}

	for _, entity := range m.Entities {
		lines = append(lines, fmt.Sprintf("class %s {", entity.Name))
		for _, attr := range entity.Attributes {
			lines = append(lines, "    "+plantUMLAttribute(attr))
		}
		lines = append(lines, "}")
		if entity.Description != "" {
			lines = append(lines,
				fmt.Sprintf("note right of %s", entity.Name),
				"  "+entity.Description,
				"end note")
		}
		lines = append(lines, "")
	}

	for _, rel := range m.Relationships {
		glyph, ok := umlGlyphs[rel.Cardinality]
		if !ok {
			glyph = umlGlyphs[models.OneToMany]
		}
		lines = append(lines, fmt.Sprintf("%s %s %s : %s", rel.SourceEntity, glyph, rel.TargetEntity, rel.Name))
	}

	lines = append(lines, "", "@enduml")
	return strings.Join(lines, "\n")
}

func plantUMLAttribute(attr models.Attribute) string {
	visibility := "-"
	marker := ""
	switch {
	case attr.IsPrimaryKey:
		visibility = "+"
		marker = " <<PK>>"
	case attr.IsForeignKey:
		visibility = "#"
		marker = " <<FK>>"
	}

	nullable := ""
	if !attr.IsNullable {
		nullable = " {not null}"
	}

	return fmt.Sprintf("%s%s %s%s%s", visibility, typeWithLength(attr), attr.Name, marker, nullable)
}

func typeWithLength(attr models.Attribute) string {
	if attr.Length != nil && lengthBearing(attr.DataType) {
		return fmt.Sprintf("%s(%d)", attr.DataType, *attr.Length)
	}
	return string(attr.DataType)
}

func lengthBearing(t models.DataType) bool {
	switch t {
	case models.TypeVarchar, models.TypeChar, models.TypeDecimal:
		return true
	}
	return false
}
