package services

import (
	"fmt"
	"strings"

	"schemadesigner/internal/models"
)

// OptimizerService inspects a schema and reports improvement suggestions
// across indexing, normalization, data types, security, and performance.
// The analysis is entirely rule based and runs in process.
type OptimizerService struct{}

func NewOptimizerService() *OptimizerService {
	return &OptimizerService{}
}

// wideEntityThreshold is the column count above which an entity is flagged
// as a normalization candidate.
const wideEntityThreshold = 15

func (s *OptimizerService) Analyze(m *models.Metamodel) *models.OptimizationReport {
	report := &models.OptimizationReport{
		IndexSuggestions:         s.analyzeIndexes(m),
		NormalizationSuggestions: s.analyzeNormalization(m),
		DatatypeSuggestions:      s.analyzeDatatypes(m),
		SecuritySuggestions:      s.analyzeSecurity(m),
		PerformanceSuggestions:   s.analyzePerformance(m),
	}

	report.OverallScore = 100 - report.Total()*5
	if report.OverallScore < 0 {
		report.OverallScore = 0
	}

	switch {
	case report.OverallScore >= 90:
		report.Summary = "Excellent schema design! Minor improvements suggested."
	case report.OverallScore >= 75:
		report.Summary = "Good schema with room for optimization."
	case report.OverallScore >= 50:
		report.Summary = "Schema needs several improvements for better performance."
	default:
		report.Summary = "Schema requires significant optimization."
	}

	return report
}

func (s *OptimizerService) analyzeIndexes(m *models.Metamodel) []models.OptimizationSuggestion {
	var suggestions []models.OptimizationSuggestion
	for _, entity := range m.Entities {
		for _, attr := range entity.Attributes {
			if attr.IsForeignKey && !attr.IsPrimaryKey {
				suggestions = append(suggestions, models.OptimizationSuggestion{
					Type:       "index",
					Severity:   "medium",
					Entity:     entity.Name,
					Column:     attr.Name,
					Suggestion: fmt.Sprintf("Add index on %s.%s for better JOIN performance", entity.Name, attr.Name),
					Code:       fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s(%s);", entity.Name, attr.Name, entity.Name, attr.Name),
				})
			}
			if attr.IsUnique && !attr.IsPrimaryKey {
				suggestions = append(suggestions, models.OptimizationSuggestion{
					Type:       "index",
					Severity:   "low",
					Entity:     entity.Name,
					Column:     attr.Name,
					Suggestion: fmt.Sprintf("Consider unique index on %s.%s", entity.Name, attr.Name),
					Code:       fmt.Sprintf("CREATE UNIQUE INDEX idx_%s_%s ON %s(%s);", entity.Name, attr.Name, entity.Name, attr.Name),
				})
			}
		}
	}
	return suggestions
}

func (s *OptimizerService) analyzeNormalization(m *models.Metamodel) []models.OptimizationSuggestion {
	var suggestions []models.OptimizationSuggestion
	for _, entity := range m.Entities {
		if len(entity.Attributes) > wideEntityThreshold {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type:       "normalization",
				Severity:   "medium",
				Entity:     entity.Name,
				Suggestion: fmt.Sprintf("%s has %d columns. Consider splitting into multiple related tables.", entity.Name, len(entity.Attributes)),
			})
		}

		hasPK := false
		for _, attr := range entity.Attributes {
			if attr.IsPrimaryKey {
				hasPK = true
				break
			}
		}
		if !hasPK {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type:       "normalization",
				Severity:   "high",
				Entity:     entity.Name,
				Suggestion: fmt.Sprintf("%s is missing a primary key. Add an 'id' column.", entity.Name),
			})
		}
	}
	return suggestions
}

func (s *OptimizerService) analyzeDatatypes(m *models.Metamodel) []models.OptimizationSuggestion {
	var suggestions []models.OptimizationSuggestion
	for _, entity := range m.Entities {
		for _, attr := range entity.Attributes {
			name := strings.ToLower(attr.Name)

			if strings.Contains(name, "created") || strings.Contains(name, "updated") || strings.Contains(name, "deleted") {
				if attr.DataType != models.TypeTimestamp && attr.DataType != "DATETIME" {
					suggestions = append(suggestions, models.OptimizationSuggestion{
						Type:       "datatype",
						Severity:   "low",
						Entity:     entity.Name,
						Column:     attr.Name,
						Suggestion: fmt.Sprintf("Use TIMESTAMP for %s instead of %s", attr.Name, attr.DataType),
					})
				}
			}

			if attr.DataType == models.TypeVarchar && attr.Length == nil {
				suggestions = append(suggestions, models.OptimizationSuggestion{
					Type:       "datatype",
					Severity:   "medium",
					Entity:     entity.Name,
					Column:     attr.Name,
					Suggestion: fmt.Sprintf("Specify length for VARCHAR column %s (e.g., VARCHAR(255))", attr.Name),
				})
			}

			if strings.Contains(name, "description") || strings.Contains(name, "content") || strings.Contains(name, "bio") {
				if attr.DataType != models.TypeText {
					suggestions = append(suggestions, models.OptimizationSuggestion{
						Type:       "datatype",
						Severity:   "low",
						Entity:     entity.Name,
						Column:     attr.Name,
						Suggestion: fmt.Sprintf("Consider TEXT type for %s to store longer content", attr.Name),
					})
				}
			}
		}
	}
	return suggestions
}

var sensitiveColumnKeywords = []string{"ssn", "social_security", "credit_card", "card_number"}

func (s *OptimizerService) analyzeSecurity(m *models.Metamodel) []models.OptimizationSuggestion {
	var suggestions []models.OptimizationSuggestion
	for _, entity := range m.Entities {
		for _, attr := range entity.Attributes {
			name := strings.ToLower(attr.Name)

			if strings.Contains(name, "password") || strings.Contains(name, "passwd") {
				suggestions = append(suggestions, models.OptimizationSuggestion{
					Type:           "security",
					Severity:       "high",
					Entity:         entity.Name,
					Column:         attr.Name,
					Suggestion:     "IMPORTANT: Hash passwords before storing. Never store plain text passwords!",
					Recommendation: "Use bcrypt, Argon2, or similar for password hashing",
				})
			}

			for _, keyword := range sensitiveColumnKeywords {
				if strings.Contains(name, keyword) {
					suggestions = append(suggestions, models.OptimizationSuggestion{
						Type:           "security",
						Severity:       "high",
						Entity:         entity.Name,
						Column:         attr.Name,
						Suggestion:     fmt.Sprintf("Encrypt sensitive data in %s at rest and in transit", attr.Name),
						Recommendation: "Consider using database encryption or application-level encryption",
					})
					break
				}
			}

			if strings.Contains(name, "email") {
				suggestions = append(suggestions, models.OptimizationSuggestion{
					Type:           "security",
					Severity:       "low",
					Entity:         entity.Name,
					Column:         attr.Name,
					Suggestion:     fmt.Sprintf("Add email validation constraint on %s", attr.Name),
					Recommendation: "Use CHECK constraint or application-level validation",
				})
			}
		}
	}
	return suggestions
}

func (s *OptimizerService) analyzePerformance(m *models.Metamodel) []models.OptimizationSuggestion {
	var suggestions []models.OptimizationSuggestion

	for _, rel := range m.Relationships {
		if rel.Cardinality != models.ManyToMany {
			continue
		}
		junction := strings.ToLower(rel.SourceEntity + "_" + rel.TargetEntity)
		found := false
		for _, entity := range m.Entities {
			if strings.Contains(strings.ToLower(entity.Name), junction) {
				found = true
				break
			}
		}
		if !found {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type:           "performance",
				Severity:       "medium",
				Suggestion:     fmt.Sprintf("Create junction table for many-to-many relationship between %s and %s", rel.SourceEntity, rel.TargetEntity),
				Recommendation: fmt.Sprintf("Create table %s_%s with foreign keys to both tables", rel.SourceEntity, rel.TargetEntity),
			})
		}
	}

	for _, rel := range m.Relationships {
		if rel.SourceEntity == rel.TargetEntity {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type:       "performance",
				Severity:   "low",
				Entity:     rel.SourceEntity,
				Suggestion: fmt.Sprintf("Self-referencing relationship in %s. Ensure proper indexes to avoid slow queries.", rel.SourceEntity),
			})
		}
	}

	return suggestions
}
