package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"schemadesigner/internal/models"
	"schemadesigner/internal/repositories"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrTransitionInFlight = errors.New("another transition is already in progress")
)

// StageError reports an operation attempted in a stage that does not allow it.
type StageError struct {
	Stage models.Stage
	Op    string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("operation %q is not allowed in stage %q", e.Op, e.Stage)
}

// CollaboratorError wraps a failure from an external collaborator. The
// session stays in its current stage when one occurs.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// DraftValidator judges whether a draft is complete enough to skip refinement.
type DraftValidator interface {
	Validate(ctx context.Context, text string) (*models.DraftValidation, error)
}

// EntityExtractor turns a draft into a structured extraction result.
type EntityExtractor interface {
	Extract(ctx context.Context, draft string) (*models.ExtractionResult, error)
}

// DiagramRenderer produces diagram text from a schema.
type DiagramRenderer interface {
	Render(m *models.Metamodel) (*models.DiagramSet, error)
}

// ScriptGenerator produces a DDL script from a schema.
type ScriptGenerator interface {
	Generate(m *models.Metamodel, dialect string, opts models.ScriptOptions) (*models.GeneratedScript, error)
}

// SnapshotStore persists session snapshots outside the process so a
// restarted instance can pick sessions back up.
type SnapshotStore interface {
	StoreSnapshot(ctx context.Context, session *models.Session) error
	GetSnapshot(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// HistoryStore keeps the append-only record of generated scripts.
type HistoryStore interface {
	Create(record *models.GenerationRecord) error
	GetBySessionID(sessionID uuid.UUID, limit int) ([]models.GenerationRecord, error)
}

// confidenceGate is the threshold above which a complete draft skips the
// refinement stage.
const confidenceGate = 0.7

// sessionRuntime holds the per-session state that never leaves the process:
// the lock serializing session publishes and the live draft analyzer.
type sessionRuntime struct {
	mu       sync.Mutex
	inFlight bool
	analyzer *DraftAnalyzer
}

// WorkflowService drives sessions through the design pipeline. Published
// *models.Session values are immutable; every mutation clones the current
// session, applies the change to the clone, and publishes it under the
// per-session lock, so handlers can marshal a session they were handed
// while later operations run. Stage transitions are additionally serialized
// per session; a transition that arrives while another is running is
// rejected rather than queued.
type WorkflowService struct {
	sessions  *repositories.SessionRepository
	snapshots SnapshotStore
	history   HistoryStore

	validator DraftValidator
	extractor EntityExtractor
	scorer    LiveScorer
	renderer  DiagramRenderer
	generator ScriptGenerator
	engine    *MetamodelService
	optimizer *OptimizerService

	debounce time.Duration
	logger   *logrus.Logger

	mu       sync.Mutex
	runtimes map[uuid.UUID]*sessionRuntime
}

func NewWorkflowService(
	sessions *repositories.SessionRepository,
	snapshots SnapshotStore,
	history HistoryStore,
	validator DraftValidator,
	extractor EntityExtractor,
	scorer LiveScorer,
	renderer DiagramRenderer,
	generator ScriptGenerator,
	engine *MetamodelService,
	optimizer *OptimizerService,
	debounce time.Duration,
	logger *logrus.Logger,
) *WorkflowService {
	return &WorkflowService{
		sessions:  sessions,
		snapshots: snapshots,
		history:   history,
		validator: validator,
		extractor: extractor,
		scorer:    scorer,
		renderer:  renderer,
		generator: generator,
		engine:    engine,
		optimizer: optimizer,
		debounce:  debounce,
		logger:    logger,
		runtimes:  make(map[uuid.UUID]*sessionRuntime),
	}
}

// CreateSession starts a new session at the draft entry stage with a live
// analyzer attached.
func (s *WorkflowService) CreateSession() *models.Session {
	session := &models.Session{}
	session.Prepare()
	s.sessions.Save(session)

	rt := s.runtime(session.ID)
	rt.mu.Lock()
	rt.analyzer = s.newAnalyzer(session.ID)
	rt.mu.Unlock()

	s.logger.Infof("created session %s", session.ID)
	return session
}

// GetSession returns the current session state, reloading it from a snapshot
// when this instance has never seen the ID.
func (s *WorkflowService) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if session := s.sessions.Get(id); session != nil {
		return session, nil
	}
	return s.restoreSnapshot(ctx, id)
}

// restoreSnapshot brings a snapshotted session back into memory so a
// restarted API can resume displaying recent work.
func (s *WorkflowService) restoreSnapshot(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if s.snapshots == nil {
		return nil, ErrSessionNotFound
	}
	session, err := s.snapshots.GetSnapshot(ctx, id.String())
	if err != nil {
		s.logger.Warnf("session %s: snapshot lookup failed: %v", id, err)
		return nil, ErrSessionNotFound
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	rt := s.runtime(id)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if existing := s.sessions.Get(id); existing != nil {
		// Another request restored it first.
		return existing, nil
	}
	s.sessions.Save(session)
	if rt.analyzer == nil {
		rt.analyzer = s.newAnalyzer(id)
	}
	s.logger.Infof("session %s restored from snapshot", id)
	return session, nil
}

// UpdateDraft records the latest draft text and feeds it to the session's
// debounced analyzer. Allowed only while drafting or refining.
func (s *WorkflowService) UpdateDraft(ctx context.Context, id uuid.UUID, text string) (*models.Session, error) {
	rt := s.runtime(id)
	rt.mu.Lock()

	session := s.sessions.Get(id)
	if session == nil {
		rt.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if rt.inFlight {
		rt.mu.Unlock()
		return nil, ErrTransitionInFlight
	}
	if session.Stage != models.StageDraftEntry && session.Stage != models.StageRefinement {
		rt.mu.Unlock()
		return nil, &StageError{Stage: session.Stage, Op: "update_draft"}
	}

	next := session.Clone()
	next.Draft = text
	next.UpdatedAt = time.Now()
	s.sessions.Save(next)

	if rt.analyzer != nil {
		rt.analyzer.Update(text)
	}
	rt.mu.Unlock()

	s.snapshot(ctx, next)
	return next, nil
}

// SubmitDraft validates the draft and either moves straight to attribute
// review, when the validator judges it complete with high confidence, or
// into the refinement stage with the validator's feedback.
func (s *WorkflowService) SubmitDraft(ctx context.Context, id uuid.UUID, draft string) (*models.Session, error) {
	return s.transition(ctx, id, "submit_draft", models.StageDraftEntry, func(session *models.Session) error {
		draft = strings.TrimSpace(draft)
		if draft == "" {
			draft = strings.TrimSpace(session.Draft)
		}
		if draft == "" {
			return &StageError{Stage: session.Stage, Op: "submit empty draft"}
		}
		session.Draft = draft

		validation, err := s.validator.Validate(ctx, draft)
		if err != nil {
			return &CollaboratorError{Op: "draft validation", Err: err}
		}
		session.Validation = validation

		if validation.IsComplete && validation.Confidence > confidenceGate {
			if err := s.extractInto(ctx, session, draft); err != nil {
				return err
			}
			session.Stage = models.StageAttributeReview
			s.logger.Infof("session %s: draft accepted directly (confidence %.2f)", id, validation.Confidence)
			return nil
		}

		session.Stage = models.StageRefinement
		session.SelectedEntities = append(validation.DetectedEntities, validation.InferredEntities...)
		return nil
	})
}

// ConfirmRefinement folds the selected entities and free-form notes into the
// draft, re-validates the result for display, and extracts the schema.
func (s *WorkflowService) ConfirmRefinement(ctx context.Context, id uuid.UUID, selected []string, notes string) (*models.Session, error) {
	return s.transition(ctx, id, "confirm_refinement", models.StageRefinement, func(session *models.Session) error {
		if len(selected) > 0 {
			session.SelectedEntities = selected
		}
		session.Notes = strings.TrimSpace(notes)

		refined := session.Draft
		if len(session.SelectedEntities) > 0 {
			refined += " with entities: " + strings.Join(session.SelectedEntities, ", ")
		}
		if session.Notes != "" {
			refined += ". " + session.Notes
		}
		session.RefinedDraft = refined

		// Re-validation here is informational only; the user already
		// chose to proceed.
		if validation, err := s.validator.Validate(ctx, refined); err == nil {
			session.Validation = validation
		} else {
			s.logger.Warnf("session %s: refinement re-validation failed: %v", id, err)
		}

		if err := s.extractInto(ctx, session, refined); err != nil {
			return err
		}
		session.Stage = models.StageAttributeReview
		return nil
	})
}

// SkipRefinement extracts from the original draft as-is.
func (s *WorkflowService) SkipRefinement(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return s.transition(ctx, id, "skip_refinement", models.StageRefinement, func(session *models.Session) error {
		if err := s.extractInto(ctx, session, session.Draft); err != nil {
			return err
		}
		session.Stage = models.StageAttributeReview
		return nil
	})
}

// EditRequest carries a single schema edit. Op selects the operation and the
// remaining fields supply its arguments.
type EditRequest struct {
	Op string `json:"op" binding:"required"`

	EntityName string `json:"entity_name,omitempty"`
	NewName    string `json:"new_name,omitempty"`
	FromIndex  int    `json:"from_index,omitempty"`
	ToIndex    int    `json:"to_index,omitempty"`
	Index      int    `json:"index,omitempty"`

	Entity           *models.Entity       `json:"entity,omitempty"`
	Attribute        *models.Attribute    `json:"attribute,omitempty"`
	Relationship     *models.Relationship `json:"relationship,omitempty"`
	RelationshipName string               `json:"relationship_name,omitempty"`
}

// ApplyEdit runs one schema edit during review. The schema is replaced only
// when the edit succeeds; a failed edit leaves it untouched.
func (s *WorkflowService) ApplyEdit(ctx context.Context, id uuid.UUID, edit EditRequest) (*models.Session, error) {
	rt := s.runtime(id)
	rt.mu.Lock()

	session := s.sessions.Get(id)
	if session == nil {
		rt.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if rt.inFlight {
		rt.mu.Unlock()
		return nil, ErrTransitionInFlight
	}
	if session.Stage != models.StageAttributeReview && session.Stage != models.StageDiagramReview {
		rt.mu.Unlock()
		return nil, &StageError{Stage: session.Stage, Op: edit.Op}
	}

	updated, err := s.dispatchEdit(session.Schema, edit)
	if err != nil {
		rt.mu.Unlock()
		return nil, err
	}

	next := session.Clone()
	next.Schema = updated
	next.UpdatedAt = time.Now()

	// Editing the schema during diagram review invalidates the rendered
	// diagrams until the next advance.
	if next.Stage == models.StageDiagramReview {
		if diagrams, err := s.renderer.Render(updated); err == nil {
			next.Diagrams = diagrams
		} else {
			s.logger.Warnf("session %s: diagram refresh after edit failed: %v", id, err)
		}
	}

	s.sessions.Save(next)
	rt.mu.Unlock()

	s.snapshot(ctx, next)
	return next, nil
}

func (s *WorkflowService) dispatchEdit(m *models.Metamodel, edit EditRequest) (*models.Metamodel, error) {
	switch edit.Op {
	case "add_entity":
		entity := models.Entity{Name: edit.EntityName}
		if edit.Entity != nil {
			entity = *edit.Entity
		}
		return s.engine.AddEntity(m, entity)
	case "rename_entity":
		return s.engine.RenameEntity(m, edit.EntityName, edit.NewName)
	case "delete_entity":
		return s.engine.DeleteEntity(m, edit.EntityName)
	case "reorder_entities":
		return s.engine.ReorderEntities(m, edit.FromIndex, edit.ToIndex)
	case "reorder_attributes":
		return s.engine.ReorderAttributes(m, edit.EntityName, edit.FromIndex, edit.ToIndex)
	case "upsert_attribute":
		if edit.Attribute == nil {
			return nil, fmt.Errorf("upsert_attribute requires an attribute payload")
		}
		return s.engine.UpsertAttribute(m, edit.EntityName, *edit.Attribute)
	case "delete_attribute":
		return s.engine.DeleteAttribute(m, edit.EntityName, edit.Index)
	case "set_primary_key":
		return s.engine.SetPrimaryKey(m, edit.EntityName, edit.Index)
	case "upsert_relationship":
		if edit.Relationship == nil {
			return nil, fmt.Errorf("upsert_relationship requires a relationship payload")
		}
		return s.engine.UpsertRelationship(m, *edit.Relationship)
	case "delete_relationship":
		return s.engine.DeleteRelationship(m, edit.RelationshipName)
	default:
		return nil, fmt.Errorf("unknown edit operation %q", edit.Op)
	}
}

// Advance moves the session to the next stage. Attribute review requires a
// non-empty schema; diagram review enforces the generation invariants before
// a script is produced.
func (s *WorkflowService) Advance(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session := s.sessions.Get(id)
	if session == nil {
		return nil, ErrSessionNotFound
	}

	switch session.Stage {
	case models.StageAttributeReview:
		return s.transition(ctx, id, "advance", models.StageAttributeReview, func(session *models.Session) error {
			if session.Schema == nil || len(session.Schema.Entities) == 0 {
				return &StageError{Stage: session.Stage, Op: "advance with empty schema"}
			}
			diagrams, err := s.renderer.Render(session.Schema)
			if err != nil {
				return &CollaboratorError{Op: "diagram rendering", Err: err}
			}
			session.Diagrams = diagrams
			session.Stage = models.StageDiagramReview
			return nil
		})

	case models.StageDiagramReview:
		return s.transition(ctx, id, "advance", models.StageDiagramReview, func(session *models.Session) error {
			if err := s.engine.ValidateForGeneration(session.Schema); err != nil {
				return err
			}
			script, err := s.generator.Generate(session.Schema, session.Dialect, session.Options)
			if err != nil {
				return &CollaboratorError{Op: "script generation", Err: err}
			}
			session.Script = script
			session.Statistics = &script.Statistics
			session.Stage = models.StageScriptReady
			s.recordGeneration(session)
			return nil
		})

	default:
		return nil, &StageError{Stage: session.Stage, Op: "advance"}
	}
}

// Back moves one stage toward draft entry, keeping the work done so far so
// the user can return without redoing it.
func (s *WorkflowService) Back(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	rt := s.runtime(id)
	rt.mu.Lock()

	session := s.sessions.Get(id)
	if session == nil {
		rt.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if rt.inFlight {
		rt.mu.Unlock()
		return nil, ErrTransitionInFlight
	}

	previous := session.Stage.Previous()
	if previous == session.Stage {
		rt.mu.Unlock()
		return nil, &StageError{Stage: session.Stage, Op: "back"}
	}

	next := session.Clone()
	next.Stage = previous
	next.LastError = ""
	next.UpdatedAt = time.Now()
	s.sessions.Save(next)
	rt.mu.Unlock()

	s.snapshot(ctx, next)
	return next, nil
}

// Reset returns the session to a blank draft entry state under the same ID
// and drops its snapshot.
func (s *WorkflowService) Reset(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	rt := s.runtime(id)
	rt.mu.Lock()

	session := s.sessions.Get(id)
	if session == nil {
		rt.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if rt.inFlight {
		rt.mu.Unlock()
		return nil, ErrTransitionInFlight
	}

	if rt.analyzer != nil {
		rt.analyzer.Stop()
	}
	rt.analyzer = s.newAnalyzer(id)

	fresh := &models.Session{ID: session.ID, CreatedAt: session.CreatedAt}
	fresh.Stage = models.StageDraftEntry
	fresh.Dialect = session.Dialect
	fresh.Options = models.DefaultScriptOptions()
	fresh.UpdatedAt = time.Now()
	s.sessions.Save(fresh)
	rt.mu.Unlock()

	s.deleteSnapshot(ctx, id)
	return fresh, nil
}

// SetScriptOptions updates dialect and generation options. In the script
// ready stage the script is regenerated immediately.
func (s *WorkflowService) SetScriptOptions(ctx context.Context, id uuid.UUID, dialect string, opts models.ScriptOptions) (*models.Session, error) {
	rt := s.runtime(id)
	rt.mu.Lock()

	session := s.sessions.Get(id)
	if session == nil {
		rt.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if rt.inFlight {
		rt.mu.Unlock()
		return nil, ErrTransitionInFlight
	}

	next := session.Clone()
	if dialect != "" {
		next.Dialect = strings.ToLower(dialect)
	}
	next.Options = opts
	next.UpdatedAt = time.Now()

	if next.Stage == models.StageScriptReady {
		script, err := s.generator.Generate(next.Schema, next.Dialect, next.Options)
		if err != nil {
			rt.mu.Unlock()
			return nil, &CollaboratorError{Op: "script generation", Err: err}
		}
		next.Script = script
		next.Statistics = &script.Statistics
		s.recordGeneration(next)
	}

	s.sessions.Save(next)
	rt.mu.Unlock()

	s.snapshot(ctx, next)
	return next, nil
}

// Assessment returns the analyzer's latest result for the session, which may
// lag the draft by up to the debounce window.
func (s *WorkflowService) Assessment(id uuid.UUID) (*models.QualityAssessment, error) {
	if s.sessions.Get(id) == nil {
		return nil, ErrSessionNotFound
	}
	rt := s.runtime(id)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.analyzer == nil {
		return nil, nil
	}
	return rt.analyzer.Assessment(), nil
}

// Suggestions runs the optimizer over the session's current schema.
func (s *WorkflowService) Suggestions(id uuid.UUID) (*models.OptimizationReport, error) {
	session := s.sessions.Get(id)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Schema == nil {
		return nil, &StageError{Stage: session.Stage, Op: "suggestions"}
	}
	return s.optimizer.Analyze(session.Schema), nil
}

// History lists past script generations for the session, newest first. The
// records outlive the session itself, so no existence check is made.
func (s *WorkflowService) History(id uuid.UUID, limit int) ([]models.GenerationRecord, error) {
	if s.history == nil {
		return []models.GenerationRecord{}, nil
	}
	return s.history.GetBySessionID(id, limit)
}

// transition runs fn as a serialized stage transition. fn receives a private
// clone of the session and the lock is released while it runs, so reads are
// not blocked behind slow collaborators; the inFlight flag rejects concurrent
// transitions instead, and the clone is published once fn returns.
func (s *WorkflowService) transition(ctx context.Context, id uuid.UUID, op string, required models.Stage, fn func(*models.Session) error) (*models.Session, error) {
	rt := s.runtime(id)
	rt.mu.Lock()

	session := s.sessions.Get(id)
	if session == nil {
		rt.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if rt.inFlight {
		rt.mu.Unlock()
		return nil, ErrTransitionInFlight
	}
	if session.Stage != required {
		rt.mu.Unlock()
		return nil, &StageError{Stage: session.Stage, Op: op}
	}
	rt.inFlight = true
	work := session.Clone()
	rt.mu.Unlock()

	err := fn(work)
	if err != nil {
		work.LastError = err.Error()
	} else {
		work.LastError = ""
	}
	work.UpdatedAt = time.Now()

	rt.mu.Lock()
	rt.inFlight = false
	s.sessions.Save(work)
	rt.mu.Unlock()

	if err != nil {
		return nil, err
	}
	s.snapshot(ctx, work)
	return work, nil
}

// extractInto runs entity extraction and installs the resulting schema.
func (s *WorkflowService) extractInto(ctx context.Context, session *models.Session, draft string) error {
	result, err := s.extractor.Extract(ctx, draft)
	if err != nil {
		return &CollaboratorError{Op: "entity extraction", Err: err}
	}
	session.Schema = buildMetamodel(result)
	return nil
}

// buildMetamodel converts an extraction result into the internal schema,
// filling in the defaults the extractor is allowed to omit. Omitted
// nullability defaults to true; the flag booleans default to false; an empty
// data type becomes VARCHAR.
func buildMetamodel(result *models.ExtractionResult) *models.Metamodel {
	m := &models.Metamodel{}

	for _, extracted := range result.Entities {
		entity := models.Entity{Name: strings.TrimSpace(extracted.Name)}
		for _, attr := range extracted.Attributes {
			dataType := models.DataType(strings.ToUpper(strings.TrimSpace(attr.DataType)))
			if dataType == "" {
				dataType = models.TypeVarchar
			}
			entity.Attributes = append(entity.Attributes, models.Attribute{
				Name:         strings.TrimSpace(attr.Name),
				DataType:     dataType,
				Length:       attr.Length,
				IsPrimaryKey: boolOr(attr.IsPrimaryKey, false),
				IsForeignKey: boolOr(attr.IsForeignKey, false),
				IsUnique:     boolOr(attr.IsUnique, false),
				IsNullable:   boolOr(attr.IsNullable, true),
				DefaultValue: attr.DefaultValue,
			})
		}
		m.Entities = append(m.Entities, entity)
	}

	for _, rel := range result.Relationships {
		cardinality := models.Cardinality(strings.ToLower(strings.TrimSpace(rel.Cardinality)))
		if cardinality == "" {
			cardinality = models.OneToMany
		}
		m.Relationships = append(m.Relationships, models.Relationship{
			Name:         rel.Name,
			SourceEntity: rel.SourceEntity,
			TargetEntity: rel.TargetEntity,
			Cardinality:  cardinality,
		})
	}

	return m
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func (s *WorkflowService) runtime(id uuid.UUID) *sessionRuntime {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.runtimes[id]
	if !ok {
		rt = &sessionRuntime{}
		s.runtimes[id] = rt
	}
	return rt
}

// newAnalyzer builds the debounced analyzer whose notify callback publishes
// accepted assessments. The callback runs on a timer goroutine, so it takes
// the runtime lock and goes through the same clone-and-publish path as the
// HTTP operations. While a transition is in flight its clone would overwrite
// this publish anyway, so the assessment is dropped.
func (s *WorkflowService) newAnalyzer(id uuid.UUID) *DraftAnalyzer {
	return NewDraftAnalyzer(s.scorer, s.debounce, s.logger, func(draft string, assessment *models.QualityAssessment) {
		rt := s.runtime(id)
		rt.mu.Lock()
		defer rt.mu.Unlock()

		session := s.sessions.Get(id)
		if session == nil || rt.inFlight || session.Draft != draft {
			return
		}
		next := session.Clone()
		next.Assessment = assessment
		s.sessions.Save(next)
	})
}

// snapshot persists the session to redis on a best-effort basis. The in
// memory copy is authoritative; a failed snapshot is only logged.
func (s *WorkflowService) snapshot(ctx context.Context, session *models.Session) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.StoreSnapshot(ctx, session); err != nil {
		s.logger.Warnf("session %s: snapshot failed: %v", session.ID, err)
	}
}

func (s *WorkflowService) deleteSnapshot(ctx context.Context, id uuid.UUID) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.DeleteSnapshot(ctx, id.String()); err != nil {
		s.logger.Warnf("session %s: snapshot delete failed: %v", id, err)
	}
}

func (s *WorkflowService) recordGeneration(session *models.Session) {
	if s.history == nil || session.Script == nil {
		return
	}
	record := &models.GenerationRecord{
		SessionID:         session.ID,
		Draft:             session.Draft,
		Dialect:           session.Script.Dialect,
		Script:            session.Script.Script,
		EntityCount:       session.Script.Statistics.Tables,
		RelationshipCount: session.Script.Statistics.Relationships,
	}
	if err := s.history.Create(record); err != nil {
		s.logger.Warnf("session %s: failed to record generation: %v", session.ID, err)
	}
}
