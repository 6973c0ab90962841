package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"schemadesigner/internal/models"
	"schemadesigner/internal/utils"
)

const extractionPrompt = `Extract the database structure from this description.

DESCRIPTION: %s

Return JSON with exactly this shape:
{
  "entities": [
    {
      "name": "Entity",
      "attributes": [
        {"name": "id", "data_type": "INTEGER", "is_primary_key": true, "is_nullable": false},
        {"name": "title", "data_type": "VARCHAR", "length": 255}
      ]
    }
  ],
  "relationships": [
    {"name": "has", "source_entity": "Entity", "target_entity": "Other", "cardinality": "one_to_many"}
  ]
}

Rules: every entity gets an INTEGER primary key named "id"; use data types from
INTEGER, VARCHAR, TEXT, DATE, TIMESTAMP, BOOLEAN, DECIMAL, FLOAT, CHAR, BIGINT;
cardinality is one of one_to_one, one_to_many, many_to_one, many_to_many.`

// ExtractorService turns a draft into a raw extraction payload. With no LLM
// configured it falls back to a keyword heuristic so the workflow stays
// usable offline.
type ExtractorService struct {
	llm    *LLMService
	logger *logrus.Logger
}

func NewExtractorService(llm *LLMService, logger *logrus.Logger) *ExtractorService {
	return &ExtractorService{llm: llm, logger: logger}
}

func (s *ExtractorService) Extract(ctx context.Context, draft string) (*models.ExtractionResult, error) {
	if s.llm != nil && s.llm.Available() {
		var result models.ExtractionResult
		if err := s.llm.GenerateJSON(ctx, "", fmt.Sprintf(extractionPrompt, draft), &result); err != nil {
			return nil, fmt.Errorf("entity extraction failed: %w", err)
		}
		s.logger.Infof("extraction found %d entities, %d relationships", len(result.Entities), len(result.Relationships))
		return &result, nil
	}
	return s.heuristicExtract(draft), nil
}

// heuristicExtract builds a minimal structure out of the keyword detections:
// one entity per detected entity noun, seeded with an id primary key and a
// name column, chained with one_to_many relationships in detection order.
func (s *ExtractorService) heuristicExtract(draft string) *models.ExtractionResult {
	assessment := NewValidatorService(nil, s.logger).Analyze(draft)

	result := &models.ExtractionResult{}
	seen := []string{}
	for _, detected := range assessment.Detected.Entities {
		name := entityName(detected)
		if name == "" || utils.Contains(seen, name) {
			continue
		}
		seen = append(seen, name)

		length := 255
		result.Entities = append(result.Entities, models.ExtractedEntity{
			Name: name,
			Attributes: []models.ExtractedAttribute{
				{Name: "id", DataType: "INTEGER", IsPrimaryKey: boolPtr(true), IsNullable: boolPtr(false)},
				{Name: "name", DataType: "VARCHAR", Length: &length},
			},
		})
	}

	for i := 1; i < len(result.Entities); i++ {
		source := result.Entities[i-1].Name
		target := result.Entities[i].Name
		result.Relationships = append(result.Relationships, models.ExtractedRelationship{
			Name:         fmt.Sprintf("%s_has_%s", strings.ToLower(source), strings.ToLower(target)),
			SourceEntity: source,
			TargetEntity: target,
			Cardinality:  string(models.OneToMany),
		})
	}

	return result
}

// entityName normalizes a detected noun into an entity name: singularized
// naively and capitalized. Generic words like "table" are skipped.
func entityName(detected string) string {
	word := strings.ToLower(strings.TrimSpace(detected))
	switch word {
	case "table", "tables", "entity", "entities":
		return ""
	}
	if strings.HasSuffix(word, "ies") {
		word = strings.TrimSuffix(word, "ies") + "y"
	} else if strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		word = strings.TrimSuffix(word, "s")
	}
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func boolPtr(v bool) *bool {
	return &v
}
