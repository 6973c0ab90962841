package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"schemadesigner/internal/models"
	"schemadesigner/internal/utils"
)

const (
	minDraftLength    = 10
	completenessScore = 70.0
	colorEntity       = "green"
	colorRelationship = "green"
	colorAttribute    = "green"
	colorDomain       = "blue"
)

var entityPatterns = compilePatterns([]string{
	`\b(table|tables|entity|entities)\b`,
	`\b(user|users|customer|customers|client|clients)\b`,
	`\b(product|products|item|items)\b`,
	`\b(order|orders|purchase|purchases)\b`,
	`\b(book|books|author|authors)\b`,
	`\b(student|students|teacher|teachers|course|courses)\b`,
	`\b(patient|patients|doctor|doctors|appointment|appointments)\b`,
	`\b(invoice|invoices|payment|payments)\b`,
	`\b(library|libraries)\b`,
})

var relationshipPatterns = compilePatterns([]string{
	`\b(has|have|contains?|includes?)\b`,
	`\b(belongs? to|associated with|related to|linked to)\b`,
	`\b(one-to-many|many-to-one|one-to-one|many-to-many)\b`,
	`\b(foreign key|reference|references)\b`,
})

var attributePatterns = compilePatterns([]string{
	`\b(with|having)\b`,
	`\b(name|title|description|email|phone|address)\b`,
	`\b(date|time|timestamp|created|updated)\b`,
	`\b(id|identifier|primary key|key)\b`,
	`\b(price|cost|amount|quantity|total)\b`,
	`\b(status|state|active|inactive|enabled|disabled)\b`,
})

var domainPatterns = compilePatterns([]string{
	`\b(library|bookstore|book management)\b`,
	`\b(e-commerce|shop|store|retail)\b`,
	`\b(hospital|clinic|medical|healthcare)\b`,
	`\b(school|university|education|learning)\b`,
	`\b(social media|social network|forum)\b`,
	`\b(bank|banking|finance|financial)\b`,
	`\b(hotel|reservation|booking)\b`,
	`\b(restaurant|food|menu)\b`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, pattern := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + pattern)
	}
	return compiled
}

// ValidatorService is both the live scorer (fast, local keyword analysis)
// and the draft validator. Validation prefers the LLM collaborator when one
// is configured and falls back to the local analysis otherwise.
type ValidatorService struct {
	llm    *LLMService
	logger *logrus.Logger
}

func NewValidatorService(llm *LLMService, logger *logrus.Logger) *ValidatorService {
	return &ValidatorService{llm: llm, logger: logger}
}

// Score implements the live scorer contract over the local analysis.
func (s *ValidatorService) Score(ctx context.Context, text string) (*models.QualityAssessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Analyze(text), nil
}

// Analyze runs the keyword analysis and builds a quality assessment with
// highlight spans over the original text. Spans are byte offsets, half-open.
func (s *ValidatorService) Analyze(text string) *models.QualityAssessment {
	assessment := &models.QualityAssessment{
		Highlights: []models.Highlight{},
		Detected: models.Detections{
			Entities:      []string{},
			Relationships: []string{},
			Attributes:    []string{},
		},
		Suggestions: []string{},
	}

	if len(strings.TrimSpace(text)) < minDraftLength {
		assessment.Missing = models.MissingParts{
			NeedsEntities:      true,
			NeedsRelationships: true,
			NeedsAttributes:    true,
		}
		assessment.Suggestions = []string{
			"The description is too short",
			"Describe the domain (library, e-commerce, ...)",
			"Mention the main entities (tables)",
			"Describe how the entities relate to each other",
		}
		return assessment
	}

	detect(text, domainPatterns, models.HighlightDomain, colorDomain, assessment, func(match string) {
		assessment.Detected.Domain = match
	})
	detect(text, entityPatterns, models.HighlightEntity, colorEntity, assessment, func(match string) {
		if !utils.Contains(assessment.Detected.Entities, match) {
			assessment.Detected.Entities = append(assessment.Detected.Entities, match)
		}
	})
	detect(text, relationshipPatterns, models.HighlightRelationship, colorRelationship, assessment, func(match string) {
		if !utils.Contains(assessment.Detected.Relationships, match) {
			assessment.Detected.Relationships = append(assessment.Detected.Relationships, match)
		}
	})
	detect(text, attributePatterns, models.HighlightAttribute, colorAttribute, assessment, func(match string) {
		if !utils.Contains(assessment.Detected.Attributes, match) {
			assessment.Detected.Attributes = append(assessment.Detected.Attributes, match)
		}
	})

	sort.SliceStable(assessment.Highlights, func(i, j int) bool {
		return assessment.Highlights[i].Start < assessment.Highlights[j].Start
	})

	assessment.Score = calculateScore(
		len(assessment.Detected.Entities),
		len(assessment.Detected.Relationships),
		len(assessment.Detected.Attributes),
		assessment.Detected.Domain != "",
		len(text),
	)
	assessment.Missing = models.MissingParts{
		NeedsEntities:      len(assessment.Detected.Entities) < 2,
		NeedsRelationships: len(assessment.Detected.Relationships) == 0,
		NeedsAttributes:    len(assessment.Detected.Attributes) < 3,
	}
	assessment.Suggestions = buildSuggestions(assessment)

	return assessment
}

// Validate turns a draft into the validator verdict. With an LLM configured
// the verdict comes from the model; any collaborator failure falls back to
// the local analysis so validation never blocks the workflow on its own.
func (s *ValidatorService) Validate(ctx context.Context, text string) (*models.DraftValidation, error) {
	if s.llm != nil && s.llm.Available() {
		validation, err := s.validateWithLLM(ctx, text)
		if err == nil {
			return validation, nil
		}
		s.logger.Warnf("LLM validation failed, using local analysis: %v", err)
	}
	return s.localValidation(text), nil
}

func (s *ValidatorService) validateWithLLM(ctx context.Context, text string) (*models.DraftValidation, error) {
	prompt := fmt.Sprintf(`Analyze this database description and decide whether it is complete enough to design a schema from.

DESCRIPTION: %s

Return JSON with exactly these fields:
{"is_complete": bool, "confidence": number between 0 and 1, "detected_domain": string or null, "detected_entities": [string], "inferred_entities": [string], "missing_info": [string], "suggestions": [string]}`, text)

	var validation models.DraftValidation
	if err := s.llm.GenerateJSON(ctx, "", prompt, &validation); err != nil {
		return nil, err
	}

	// Clamp whatever the model returned into the contract.
	if validation.Confidence < 0 {
		validation.Confidence = 0
	}
	if validation.Confidence > 1 {
		validation.Confidence = 1
	}
	if validation.DetectedEntities == nil {
		validation.DetectedEntities = []string{}
	}
	return &validation, nil
}

func (s *ValidatorService) localValidation(text string) *models.DraftValidation {
	assessment := s.Analyze(text)
	return &models.DraftValidation{
		IsComplete:       assessment.Score >= completenessScore,
		Confidence:       assessment.Score / 100,
		DetectedDomain:   assessment.Detected.Domain,
		DetectedEntities: assessment.Detected.Entities,
		InferredEntities: []string{},
		MissingInfo:      missingInfo(assessment.Missing),
		Suggestions:      assessment.Suggestions,
	}
}

func detect(text string, patterns []*regexp.Regexp, kind models.HighlightKind, color string, assessment *models.QualityAssessment, record func(match string)) {
	for _, pattern := range patterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			match := text[loc[0]:loc[1]]
			assessment.Highlights = append(assessment.Highlights, models.Highlight{
				Kind:  kind,
				Text:  match,
				Start: loc[0],
				End:   loc[1],
				Color: color,
			})
			record(strings.ToLower(match))
		}
	}
}

func calculateScore(entityCount, relationshipCount, attributeCount int, hasDomain bool, draftLength int) float64 {
	score := 0.0

	if hasDomain {
		score += 20
	}

	switch {
	case entityCount >= 3:
		score += 30
	case entityCount == 2:
		score += 20
	case entityCount == 1:
		score += 10
	}

	switch {
	case relationshipCount >= 2:
		score += 25
	case relationshipCount == 1:
		score += 15
	}

	switch {
	case attributeCount >= 5:
		score += 20
	case attributeCount >= 3:
		score += 15
	case attributeCount >= 1:
		score += 10
	}

	switch {
	case draftLength >= 100:
		score += 5
	case draftLength >= 50:
		score += 3
	}

	if score > 100 {
		score = 100
	}
	return score
}

func buildSuggestions(assessment *models.QualityAssessment) []string {
	var suggestions []string
	if assessment.Missing.NeedsEntities {
		suggestions = append(suggestions, "Mention at least 2-3 main entities (e.g. users, products, orders)")
	}
	if assessment.Missing.NeedsRelationships {
		suggestions = append(suggestions, "Describe how the entities are linked (e.g. 'a user has many orders')")
	}
	if assessment.Missing.NeedsAttributes {
		suggestions = append(suggestions, "Add details about attributes (e.g. name, email, date, price)")
	}
	if assessment.Detected.Domain == "" {
		suggestions = append(suggestions, "State the domain (e.g. library, e-commerce, hospital, school)")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Your description looks complete, you can continue")
	}
	return suggestions
}

func missingInfo(missing models.MissingParts) []string {
	var info []string
	if missing.NeedsEntities {
		info = append(info, "entities")
	}
	if missing.NeedsRelationships {
		info = append(info, "relationships")
	}
	if missing.NeedsAttributes {
		info = append(info, "attributes")
	}
	if info == nil {
		info = []string{}
	}
	return info
}
