package services

import (
	"strings"
	"testing"

	"schemadesigner/internal/models"
)

func optimizerModel() *models.Metamodel {
	length := 255
	return &models.Metamodel{
		Entities: []models.Entity{
			{
				Name: "User",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true},
					{Name: "email", DataType: models.TypeVarchar, Length: &length, IsUnique: true},
					{Name: "password", DataType: models.TypeVarchar, Length: &length},
					{Name: "created_at", DataType: models.TypeTimestamp},
				},
			},
			{
				Name: "Post",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true},
					{Name: "user_id", DataType: models.TypeInteger, IsForeignKey: true},
					{Name: "content", DataType: models.TypeVarchar},
				},
			},
		},
		Relationships: []models.Relationship{
			{Name: "user_posts", SourceEntity: "User", TargetEntity: "Post", Cardinality: models.OneToMany},
		},
	}
}

func findSuggestions(suggestions []models.OptimizationSuggestion, column string) []models.OptimizationSuggestion {
	var out []models.OptimizationSuggestion
	for _, s := range suggestions {
		if s.Column == column {
			out = append(out, s)
		}
	}
	return out
}

func TestAnalyzeIndexSuggestions(t *testing.T) {
	report := NewOptimizerService().Analyze(optimizerModel())

	fk := findSuggestions(report.IndexSuggestions, "user_id")
	if len(fk) != 1 {
		t.Fatalf("foreign key suggestions = %+v", report.IndexSuggestions)
	}
	if fk[0].Severity != "medium" {
		t.Errorf("severity = %s", fk[0].Severity)
	}
	if want := "CREATE INDEX idx_Post_user_id ON Post(user_id);"; fk[0].Code != want {
		t.Errorf("code = %q, want %q", fk[0].Code, want)
	}

	unique := findSuggestions(report.IndexSuggestions, "email")
	if len(unique) != 1 || !strings.Contains(unique[0].Code, "CREATE UNIQUE INDEX") {
		t.Errorf("unique index suggestions = %+v", unique)
	}
}

func TestAnalyzeNormalization(t *testing.T) {
	m := &models.Metamodel{
		Entities: []models.Entity{
			{Name: "Orphan", Attributes: []models.Attribute{{Name: "name", DataType: models.TypeText}}},
		},
	}
	wide := models.Entity{Name: "Blob"}
	for i := 0; i < 16; i++ {
		wide.Attributes = append(wide.Attributes, models.Attribute{Name: "c" + strings.Repeat("x", i), DataType: models.TypeText})
	}
	wide.Attributes[0].IsPrimaryKey = true
	m.Entities = append(m.Entities, wide)

	report := NewOptimizerService().Analyze(m)
	var missingPK, tooWide bool
	for _, s := range report.NormalizationSuggestions {
		if s.Entity == "Orphan" && s.Severity == "high" && strings.Contains(s.Suggestion, "missing a primary key") {
			missingPK = true
		}
		if s.Entity == "Blob" && strings.Contains(s.Suggestion, "16 columns") {
			tooWide = true
		}
	}
	if !missingPK {
		t.Errorf("missing-PK finding absent: %+v", report.NormalizationSuggestions)
	}
	if !tooWide {
		t.Errorf("wide-entity finding absent: %+v", report.NormalizationSuggestions)
	}
}

func TestAnalyzeDatatypes(t *testing.T) {
	m := &models.Metamodel{
		Entities: []models.Entity{
			{
				Name: "Article",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true},
					{Name: "created_at", DataType: models.TypeVarchar},
					{Name: "title", DataType: models.TypeVarchar},
					{Name: "content", DataType: models.TypeVarchar},
				},
			},
		},
	}

	report := NewOptimizerService().Analyze(m)

	if got := findSuggestions(report.DatatypeSuggestions, "created_at"); len(got) == 0 ||
		!strings.Contains(got[0].Suggestion, "Use TIMESTAMP") {
		t.Errorf("timestamp finding = %+v", got)
	}
	// title is VARCHAR without a length.
	if got := findSuggestions(report.DatatypeSuggestions, "title"); len(got) != 1 ||
		!strings.Contains(got[0].Suggestion, "Specify length") {
		t.Errorf("varchar length finding = %+v", got)
	}
	var text bool
	for _, s := range findSuggestions(report.DatatypeSuggestions, "content") {
		if strings.Contains(s.Suggestion, "TEXT") {
			text = true
		}
	}
	if !text {
		t.Errorf("text finding absent: %+v", report.DatatypeSuggestions)
	}
}

func TestAnalyzeSecurity(t *testing.T) {
	report := NewOptimizerService().Analyze(optimizerModel())

	password := findSuggestions(report.SecuritySuggestions, "password")
	if len(password) != 1 || password[0].Severity != "high" {
		t.Fatalf("password findings = %+v", report.SecuritySuggestions)
	}
	if !strings.Contains(password[0].Recommendation, "bcrypt") {
		t.Errorf("recommendation = %q", password[0].Recommendation)
	}

	email := findSuggestions(report.SecuritySuggestions, "email")
	if len(email) != 1 || email[0].Severity != "low" {
		t.Errorf("email findings = %+v", email)
	}
}

func TestAnalyzePerformance(t *testing.T) {
	m := &models.Metamodel{
		Entities: []models.Entity{
			{Name: "Student", Attributes: []models.Attribute{{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true}}},
			{Name: "Course", Attributes: []models.Attribute{{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true}}},
			{Name: "Employee", Attributes: []models.Attribute{{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true}}},
		},
		Relationships: []models.Relationship{
			{Name: "enrollment", SourceEntity: "Student", TargetEntity: "Course", Cardinality: models.ManyToMany},
			{Name: "manager", SourceEntity: "Employee", TargetEntity: "Employee", Cardinality: models.ManyToOne},
		},
	}

	report := NewOptimizerService().Analyze(m)

	var junction, selfRef bool
	for _, s := range report.PerformanceSuggestions {
		if strings.Contains(s.Suggestion, "junction table") && strings.Contains(s.Suggestion, "Student") {
			junction = true
		}
		if s.Entity == "Employee" && strings.Contains(s.Suggestion, "Self-referencing") {
			selfRef = true
		}
	}
	if !junction {
		t.Errorf("junction finding absent: %+v", report.PerformanceSuggestions)
	}
	if !selfRef {
		t.Errorf("self-reference finding absent: %+v", report.PerformanceSuggestions)
	}

	// A junction entity silences the many-to-many finding.
	m.Entities = append(m.Entities, models.Entity{
		Name:       "student_course",
		Attributes: []models.Attribute{{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true}},
	})
	report = NewOptimizerService().Analyze(m)
	for _, s := range report.PerformanceSuggestions {
		if strings.Contains(s.Suggestion, "junction table") {
			t.Errorf("junction finding should be silenced: %+v", s)
		}
	}
}

func TestAnalyzeScoreAndSummary(t *testing.T) {
	clean := &models.Metamodel{
		Entities: []models.Entity{
			{Name: "Item", Attributes: []models.Attribute{{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true}}},
		},
	}
	report := NewOptimizerService().Analyze(clean)
	if report.OverallScore != 100 {
		t.Errorf("score = %d, want 100", report.OverallScore)
	}
	if !strings.Contains(report.Summary, "Excellent") {
		t.Errorf("summary = %q", report.Summary)
	}

	report = NewOptimizerService().Analyze(optimizerModel())
	if want := 100 - report.Total()*5; report.OverallScore != want {
		t.Errorf("score = %d, want %d", report.OverallScore, want)
	}

	// A pathological schema bottoms out at zero.
	var awful models.Metamodel
	for i := 0; i < 25; i++ {
		awful.Entities = append(awful.Entities, models.Entity{
			Name:       "E" + strings.Repeat("e", i),
			Attributes: []models.Attribute{{Name: "password", DataType: models.TypeVarchar}},
		})
	}
	report = NewOptimizerService().Analyze(&awful)
	if report.OverallScore != 0 {
		t.Errorf("score = %d, want 0", report.OverallScore)
	}
	if !strings.Contains(report.Summary, "significant") {
		t.Errorf("summary = %q", report.Summary)
	}
}
