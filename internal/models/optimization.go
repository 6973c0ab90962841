package models

// OptimizationSuggestion is one finding from the schema optimizer.
type OptimizationSuggestion struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Entity         string `json:"entity,omitempty"`
	Column         string `json:"column,omitempty"`
	Suggestion     string `json:"suggestion"`
	Recommendation string `json:"recommendation,omitempty"`
	Code           string `json:"code,omitempty"`
}

// OptimizationReport groups optimizer findings by concern. The overall score
// starts at 100 and loses five points per finding.
type OptimizationReport struct {
	IndexSuggestions         []OptimizationSuggestion `json:"index_suggestions"`
	NormalizationSuggestions []OptimizationSuggestion `json:"normalization_suggestions"`
	DatatypeSuggestions      []OptimizationSuggestion `json:"datatype_suggestions"`
	SecuritySuggestions      []OptimizationSuggestion `json:"security_suggestions"`
	PerformanceSuggestions   []OptimizationSuggestion `json:"performance_suggestions"`
	OverallScore             int                      `json:"overall_score"`
	Summary                  string                   `json:"summary"`
}

// Total counts the findings across all concern groups.
func (r *OptimizationReport) Total() int {
	return len(r.IndexSuggestions) +
		len(r.NormalizationSuggestions) +
		len(r.DatatypeSuggestions) +
		len(r.SecuritySuggestions) +
		len(r.PerformanceSuggestions)
}
