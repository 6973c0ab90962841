package services

import (
	"errors"
	"testing"

	"schemadesigner/internal/models"
)

func libraryModel() *models.Metamodel {
	return &models.Metamodel{
		Entities: []models.Entity{
			{
				Name: "Library",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true, IsUnique: true},
					{Name: "name", DataType: models.TypeVarchar},
				},
			},
			{
				Name: "Book",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true, IsUnique: true},
					{Name: "title", DataType: models.TypeVarchar},
					{Name: "isbn", DataType: models.TypeVarchar, IsUnique: true},
				},
			},
			{
				Name: "Member",
				Attributes: []models.Attribute{
					{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true, IsUnique: true},
				},
			},
		},
		Relationships: []models.Relationship{
			{Name: "library_books", SourceEntity: "Library", TargetEntity: "Book", Cardinality: models.OneToMany},
			{Name: "member_books", SourceEntity: "Member", TargetEntity: "Book", Cardinality: models.ManyToMany},
		},
	}
}

func entityNames(m *models.Metamodel) []string {
	names := make([]string, len(m.Entities))
	for i, e := range m.Entities {
		names[i] = e.Name
	}
	return names
}

func TestAddEntitySeedsPrimaryKey(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.AddEntity(m, models.Entity{Name: "Loan"})
	if err != nil {
		t.Fatalf("AddEntity: %v", err)
	}

	loan := next.FindEntity("Loan")
	if loan == nil {
		t.Fatal("Loan entity missing after add")
	}
	if len(loan.Attributes) != 1 {
		t.Fatalf("expected seeded attribute, got %d", len(loan.Attributes))
	}
	seeded := loan.Attributes[0]
	if seeded.Name != "id" || !seeded.IsPrimaryKey || seeded.IsNullable {
		t.Errorf("unexpected seeded attribute: %+v", seeded)
	}

	if m.FindEntity("Loan") != nil {
		t.Error("input schema was mutated")
	}
}

func TestAddEntityDuplicateName(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.AddEntity(m, models.Entity{Name: "Book"})
	if next != nil {
		t.Error("expected nil schema on error")
	}
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
}

func TestRenameEntityRewritesRelationships(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.RenameEntity(m, "Book", "Publication")
	if err != nil {
		t.Fatalf("RenameEntity: %v", err)
	}

	if next.FindEntity("Book") != nil {
		t.Error("old name still present")
	}
	if next.FindEntity("Publication") == nil {
		t.Fatal("new name missing")
	}
	for _, rel := range next.Relationships {
		if rel.Touches("Book") {
			t.Errorf("relationship %q still references old name", rel.Name)
		}
	}
	if len(next.RelationshipsTouching("Publication")) != 2 {
		t.Errorf("expected 2 relationships touching Publication, got %d",
			len(next.RelationshipsTouching("Publication")))
	}

	// Renaming back restores the original graph.
	back, err := svc.RenameEntity(next, "Publication", "Book")
	if err != nil {
		t.Fatalf("rename back: %v", err)
	}
	if len(back.RelationshipsTouching("Book")) != 2 {
		t.Error("round-trip rename lost relationship endpoints")
	}
}

func TestRenameEntityErrors(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	tests := []struct {
		name    string
		oldName string
		newName string
		wantErr interface{}
	}{
		{"unknown source", "Ghost", "Phantom", &UnknownEntityError{}},
		{"collision", "Book", "Member", &DuplicateNameError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RenameEntity(m, tt.oldName, tt.newName)
			if err == nil {
				t.Fatal("expected error")
			}
			switch tt.wantErr.(type) {
			case *UnknownEntityError:
				var target *UnknownEntityError
				if !errors.As(err, &target) {
					t.Errorf("expected UnknownEntityError, got %v", err)
				}
			case *DuplicateNameError:
				var target *DuplicateNameError
				if !errors.As(err, &target) {
					t.Errorf("expected DuplicateNameError, got %v", err)
				}
			}
		})
	}
}

func TestRenameEntitySameNameIsNoop(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.RenameEntity(m, "Book", "Book")
	if err != nil {
		t.Fatalf("RenameEntity: %v", err)
	}
	if len(next.Entities) != len(m.Entities) {
		t.Error("no-op rename changed the entity list")
	}
}

func TestDeleteEntityCascades(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.DeleteEntity(m, "Book")
	if err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}
	if next.FindEntity("Book") != nil {
		t.Error("entity still present")
	}
	if len(next.Relationships) != 0 {
		t.Errorf("expected all relationships cascaded, got %d", len(next.Relationships))
	}

	// The untouched entities survive.
	if next.FindEntity("Library") == nil || next.FindEntity("Member") == nil {
		t.Error("unrelated entities were removed")
	}
}

func TestDeleteEntityUnknownIsNoop(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.DeleteEntity(m, "Ghost")
	if err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}
	if len(next.Entities) != 3 || len(next.Relationships) != 2 {
		t.Error("no-op delete changed the schema")
	}
}

func TestReorderEntities(t *testing.T) {
	svc := NewMetamodelService()

	tests := []struct {
		name      string
		fromIndex int
		toIndex   int
		want      []string
	}{
		{"forward", 0, 2, []string{"Book", "Member", "Library"}},
		{"backward", 2, 0, []string{"Member", "Library", "Book"}},
		{"same position", 1, 1, []string{"Library", "Book", "Member"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := svc.ReorderEntities(libraryModel(), tt.fromIndex, tt.toIndex)
			if err != nil {
				t.Fatalf("ReorderEntities: %v", err)
			}
			got := entityNames(next)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("order = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestReorderEntitiesOutOfRange(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	for _, pair := range [][2]int{{-1, 0}, {0, 3}, {3, 0}} {
		_, err := svc.ReorderEntities(m, pair[0], pair[1])
		var oob *IndexOutOfRangeError
		if !errors.As(err, &oob) {
			t.Errorf("ReorderEntities(%d, %d): expected IndexOutOfRangeError, got %v", pair[0], pair[1], err)
		}
	}
}

func TestReorderAttributesPreservesSet(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.ReorderAttributes(m, "Book", 2, 0)
	if err != nil {
		t.Fatalf("ReorderAttributes: %v", err)
	}
	book := next.FindEntity("Book")
	want := []string{"isbn", "id", "title"}
	for i, attr := range book.Attributes {
		if attr.Name != want[i] {
			t.Fatalf("attribute order = %v, want %v", book.Attributes, want)
		}
	}
}

func TestUpsertAttributePrimaryKeyStaysSingle(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.UpsertAttribute(m, "Book", models.Attribute{
		Name:         "isbn",
		DataType:     models.TypeVarchar,
		IsPrimaryKey: true,
		IsNullable:   true,
	})
	if err != nil {
		t.Fatalf("UpsertAttribute: %v", err)
	}

	book := next.FindEntity("Book")
	pkCount := 0
	for _, attr := range book.Attributes {
		if attr.IsPrimaryKey {
			pkCount++
			if attr.Name != "isbn" {
				t.Errorf("wrong primary key: %s", attr.Name)
			}
			if attr.IsNullable {
				t.Error("primary key left nullable")
			}
			if !attr.IsUnique {
				t.Error("primary key not unique")
			}
		}
	}
	if pkCount != 1 {
		t.Errorf("expected exactly one primary key, got %d", pkCount)
	}
}

func TestUpsertAttributeAppendsNew(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.UpsertAttribute(m, "Member", models.Attribute{Name: "email", DataType: models.TypeVarchar, IsNullable: true})
	if err != nil {
		t.Fatalf("UpsertAttribute: %v", err)
	}
	if next.AttributeCount("Member") != 2 {
		t.Errorf("expected 2 attributes, got %d", next.AttributeCount("Member"))
	}
}

func TestSetPrimaryKey(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.SetPrimaryKey(m, "Book", 1)
	if err != nil {
		t.Fatalf("SetPrimaryKey: %v", err)
	}
	book := next.FindEntity("Book")
	if book.PrimaryKeyIndex() != 1 {
		t.Errorf("primary key index = %d, want 1", book.PrimaryKeyIndex())
	}
	title := book.Attributes[1]
	if title.IsNullable || !title.IsUnique {
		t.Errorf("new primary key flags are wrong: %+v", title)
	}
	if book.Attributes[0].IsPrimaryKey {
		t.Error("old primary key flag not cleared")
	}
}

func TestDeletePrimaryKeyThenValidate(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	// Deleting the primary key attribute succeeds, generation is blocked.
	next, err := svc.DeleteAttribute(m, "Member", 0)
	if err != nil {
		t.Fatalf("DeleteAttribute: %v", err)
	}

	err = svc.ValidateForGeneration(next)
	var validation *SchemaValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected SchemaValidationError, got %v", err)
	}
	if len(validation.MissingAttributes) != 1 || validation.MissingAttributes[0] != "Member" {
		t.Errorf("missing attributes = %v, want [Member]", validation.MissingAttributes)
	}
}

func TestValidateForGenerationListsAllOffenders(t *testing.T) {
	svc := NewMetamodelService()
	m := &models.Metamodel{
		Entities: []models.Entity{
			{Name: "NoAttrs"},
			{Name: "NoPK", Attributes: []models.Attribute{{Name: "name", DataType: models.TypeVarchar}}},
			{Name: "Fine", Attributes: []models.Attribute{{Name: "id", DataType: models.TypeInteger, IsPrimaryKey: true}}},
		},
	}

	err := svc.ValidateForGeneration(m)
	var validation *SchemaValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected SchemaValidationError, got %v", err)
	}
	if len(validation.MissingAttributes) != 1 || validation.MissingAttributes[0] != "NoAttrs" {
		t.Errorf("missing attributes = %v", validation.MissingAttributes)
	}
	if len(validation.MissingPrimaryKey) != 1 || validation.MissingPrimaryKey[0] != "NoPK" {
		t.Errorf("missing primary keys = %v", validation.MissingPrimaryKey)
	}
}

func TestUpsertRelationshipRequiresEndpoints(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	_, err := svc.UpsertRelationship(m, models.Relationship{
		Name: "ghost", SourceEntity: "Library", TargetEntity: "Ghost", Cardinality: models.OneToMany,
	})
	var unknown *UnknownEntityError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownEntityError, got %v", err)
	}

	next, err := svc.UpsertRelationship(m, models.Relationship{
		Name: "library_books", SourceEntity: "Library", TargetEntity: "Book", Cardinality: models.ManyToMany,
	})
	if err != nil {
		t.Fatalf("UpsertRelationship: %v", err)
	}
	if len(next.Relationships) != 2 {
		t.Errorf("upsert by name should replace, got %d relationships", len(next.Relationships))
	}
	if next.Relationships[0].Cardinality != models.ManyToMany {
		t.Error("replacement did not take effect")
	}
}

func TestDeleteRelationshipUnknownIsNoop(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	next, err := svc.DeleteRelationship(m, "no_such_link")
	if err != nil {
		t.Fatalf("DeleteRelationship: %v", err)
	}
	if len(next.Relationships) != 2 {
		t.Errorf("no-op delete changed relationships: %d", len(next.Relationships))
	}

	next, err = svc.DeleteRelationship(m, "member_books")
	if err != nil {
		t.Fatalf("DeleteRelationship: %v", err)
	}
	if len(next.Relationships) != 1 || next.Relationships[0].Name != "library_books" {
		t.Errorf("unexpected relationships after delete: %+v", next.Relationships)
	}
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	svc := NewMetamodelService()
	m := libraryModel()

	if _, err := svc.SetPrimaryKey(m, "Book", 1); err != nil {
		t.Fatalf("SetPrimaryKey: %v", err)
	}
	if m.FindEntity("Book").PrimaryKeyIndex() != 0 {
		t.Error("SetPrimaryKey mutated the input schema")
	}

	if _, err := svc.ReorderEntities(m, 0, 2); err != nil {
		t.Fatalf("ReorderEntities: %v", err)
	}
	if m.Entities[0].Name != "Library" {
		t.Error("ReorderEntities mutated the input schema")
	}
}
