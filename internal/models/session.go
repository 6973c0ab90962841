package models

import (
	"time"

	"github.com/google/uuid"
)

// Stage is one phase of the design workflow. Transitions move forward by
// default; Back and Reset are always permitted.
type Stage string

const (
	StageDraftEntry      Stage = "draft_entry"
	StageRefinement      Stage = "refinement"
	StageAttributeReview Stage = "attribute_review"
	StageDiagramReview   Stage = "diagram_review"
	StageScriptReady     Stage = "script_ready"
)

var stageOrder = []Stage{
	StageDraftEntry,
	StageRefinement,
	StageAttributeReview,
	StageDiagramReview,
	StageScriptReady,
}

// Previous returns the stage before s; DraftEntry is its own previous stage.
func (s Stage) Previous() Stage {
	for i, stage := range stageOrder {
		if stage == s && i > 0 {
			return stageOrder[i-1]
		}
	}
	return StageDraftEntry
}

type ScriptOptions struct {
	AddIndexes      bool `json:"add_indexes"`
	AddConstraints  bool `json:"add_constraints"`
	IncludeComments bool `json:"include_comments"`
}

func DefaultScriptOptions() ScriptOptions {
	return ScriptOptions{AddIndexes: true, AddConstraints: true, IncludeComments: true}
}

// DiagramSet holds the textual diagram dialects rendered for a schema.
type DiagramSet struct {
	MermaidER    string `json:"mermaid_er"`
	MermaidClass string `json:"mermaid_class"`
	PlantUML     string `json:"plantuml"`
}

type SQLStatistics struct {
	Tables        int `json:"tables"`
	Relationships int `json:"relationships"`
	LinesOfCode   int `json:"lines_of_code"`
}

type GeneratedScript struct {
	Script     string        `json:"script"`
	Dialect    string        `json:"dialect"`
	Statistics SQLStatistics `json:"statistics"`
}

// Session is the whole state of one design workflow run. Published sessions
// are read concurrently without locking, so the workflow service never
// mutates one in place: every change clones the current value, modifies the
// clone, and publishes it under the per-session lock.
type Session struct {
	ID               uuid.UUID          `json:"id"`
	Stage            Stage              `json:"stage"`
	Draft            string             `json:"draft"`
	RefinedDraft     string             `json:"refined_draft,omitempty"`
	Validation       *DraftValidation   `json:"validation,omitempty"`
	Assessment       *QualityAssessment `json:"assessment,omitempty"`
	Schema           *Metamodel         `json:"schema,omitempty"`
	SelectedEntities []string           `json:"selected_entities,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	Diagrams         *DiagramSet        `json:"diagrams,omitempty"`
	Dialect          string             `json:"dialect"`
	Options          ScriptOptions      `json:"options"`
	Script           *GeneratedScript   `json:"script,omitempty"`
	Statistics       *SQLStatistics     `json:"statistics,omitempty"`
	LastError        string             `json:"last_error,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Clone returns a shallow copy. Mutation paths replace field values on the
// clone rather than editing nested objects, so sharing the pointers with the
// published original is safe.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}

func (s *Session) Prepare() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Stage == "" {
		s.Stage = StageDraftEntry
	}
	if s.Dialect == "" {
		s.Dialect = "postgresql"
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
}
