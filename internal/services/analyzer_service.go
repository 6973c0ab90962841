package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"schemadesigner/internal/models"
)

// LiveScorer is the external scoring collaborator of the analyzer.
type LiveScorer interface {
	Score(ctx context.Context, text string) (*models.QualityAssessment, error)
}

// DraftAnalyzer debounces a stream of draft updates into scorer calls. Every
// update restarts the delay timer; the scorer runs only once the draft has
// been stable for the full delay. A generation counter guarantees that a
// response computed for a superseded draft is discarded, never applied.
type DraftAnalyzer struct {
	scorer LiveScorer
	delay  time.Duration
	logger *logrus.Logger
	notify func(draft string, assessment *models.QualityAssessment)

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	draft      string
	assessment *models.QualityAssessment
}

// NewDraftAnalyzer creates an analyzer. notify is called with each accepted
// assessment and may be nil.
func NewDraftAnalyzer(scorer LiveScorer, delay time.Duration, logger *logrus.Logger, notify func(string, *models.QualityAssessment)) *DraftAnalyzer {
	return &DraftAnalyzer{
		scorer: scorer,
		delay:  delay,
		logger: logger,
		notify: notify,
	}
}

// Update records a new draft value and restarts the debounce timer,
// cancelling any pending scoring for earlier values.
func (a *DraftAnalyzer) Update(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	a.draft = text
	generation := a.generation

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, func() {
		a.score(generation, text)
	})
}

// Stop cancels any pending scoring. Used on session reset and teardown.
func (a *DraftAnalyzer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Assessment returns the latest accepted assessment, or nil before the first
// scoring completes.
func (a *DraftAnalyzer) Assessment() *models.QualityAssessment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.assessment
}

func (a *DraftAnalyzer) score(generation uint64, text string) {
	assessment, err := a.scorer.Score(context.Background(), text)
	if err != nil {
		a.logger.Warnf("draft scoring failed: %v", err)
		return
	}

	a.mu.Lock()
	if generation != a.generation {
		// The draft changed while this call was in flight.
		a.mu.Unlock()
		return
	}
	a.assessment = assessment
	notify := a.notify
	a.mu.Unlock()

	if notify != nil {
		notify(text, assessment)
	}
}

// FoldHighlights slices the draft into alternating plain and highlighted
// segments. Scorer spans are supposed to arrive ordered and non-overlapping,
// but that is an input contract over a network boundary: spans are sorted,
// clamped to the text, and overlapping or inverted ones dropped before the
// fold so the concatenation of all segments always equals the draft.
func FoldHighlights(draft string, highlights []models.Highlight) []models.Segment {
	spans := make([]models.Highlight, len(highlights))
	copy(spans, highlights)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	var segments []models.Segment
	lastEnd := 0
	for _, span := range spans {
		start, end := span.Start, span.End
		if start < 0 {
			start = 0
		}
		if end > len(draft) {
			end = len(draft)
		}
		if start < lastEnd || end <= start {
			continue
		}
		if start > lastEnd {
			segments = append(segments, models.Segment{Text: draft[lastEnd:start]})
		}
		segments = append(segments, models.Segment{
			Text:        draft[start:end],
			Highlighted: true,
			Kind:        span.Kind,
			Color:       span.Color,
		})
		lastEnd = end
	}
	if lastEnd < len(draft) {
		segments = append(segments, models.Segment{Text: draft[lastEnd:]})
	}
	return segments
}
