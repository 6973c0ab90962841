package models

// HighlightKind tags what a highlighted span of the draft was recognized as.
type HighlightKind string

const (
	HighlightEntity       HighlightKind = "entity"
	HighlightRelationship HighlightKind = "relationship"
	HighlightAttribute    HighlightKind = "attribute"
	HighlightDomain       HighlightKind = "domain"
	HighlightMissing      HighlightKind = "missing"
)

// Highlight is a half-open [Start, End) span over the original draft text.
type Highlight struct {
	Kind  HighlightKind `json:"type"`
	Text  string        `json:"text"`
	Start int           `json:"start"`
	End   int           `json:"end"`
	Color string        `json:"color"`
}

type Detections struct {
	Entities      []string `json:"entities"`
	Relationships []string `json:"relationships"`
	Attributes    []string `json:"attributes"`
	Domain        string   `json:"domain,omitempty"`
}

type MissingParts struct {
	NeedsEntities      bool `json:"needs_entities"`
	NeedsRelationships bool `json:"needs_relationships"`
	NeedsAttributes    bool `json:"needs_attributes"`
}

// QualityAssessment is the live analysis of a draft. It is recomputed from
// the draft text and never persisted with the schema.
type QualityAssessment struct {
	Score       float64      `json:"score"`
	Highlights  []Highlight  `json:"highlights"`
	Detected    Detections   `json:"detected"`
	Missing     MissingParts `json:"missing"`
	Suggestions []string     `json:"suggestions"`
}

// Segment is one piece of the draft after folding highlights into
// alternating plain and highlighted runs.
type Segment struct {
	Text        string        `json:"text"`
	Highlighted bool          `json:"highlighted"`
	Kind        HighlightKind `json:"kind,omitempty"`
	Color       string        `json:"color,omitempty"`
}

// DraftValidation is the validator collaborator's verdict on a draft.
type DraftValidation struct {
	IsComplete       bool     `json:"is_complete"`
	Confidence       float64  `json:"confidence"`
	DetectedDomain   string   `json:"detected_domain,omitempty"`
	DetectedEntities []string `json:"detected_entities"`
	InferredEntities []string `json:"inferred_entities"`
	MissingInfo      []string `json:"missing_info"`
	Suggestions      []string `json:"suggestions"`
}

// ExtractedAttribute is the raw extractor payload for one attribute. All
// boolean flags are optional on the wire; defaulting happens at the boundary
// (is_nullable defaults to true, everything else to false).
type ExtractedAttribute struct {
	Name         string  `json:"name"`
	DataType     string  `json:"data_type"`
	Length       *int    `json:"length,omitempty"`
	IsPrimaryKey *bool   `json:"is_primary_key,omitempty"`
	IsForeignKey *bool   `json:"is_foreign_key,omitempty"`
	IsUnique     *bool   `json:"is_unique,omitempty"`
	IsNullable   *bool   `json:"is_nullable,omitempty"`
	DefaultValue *string `json:"default_value,omitempty"`
}

type ExtractedEntity struct {
	Name       string               `json:"name"`
	Attributes []ExtractedAttribute `json:"attributes"`
}

type ExtractedRelationship struct {
	Name         string `json:"name"`
	SourceEntity string `json:"source_entity"`
	TargetEntity string `json:"target_entity"`
	Cardinality  string `json:"cardinality"`
}

// ExtractionResult is the raw entity/attribute payload returned by the
// extraction collaborator before boundary conversion into the metamodel.
type ExtractionResult struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
}
