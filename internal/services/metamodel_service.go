package services

import (
	"fmt"
	"strings"

	"schemadesigner/internal/models"
)

// MetamodelService applies user edits to a metamodel. Every operation is
// copy-on-write: it validates against the input, builds the result on a deep
// clone, and returns it. On error the input schema is untouched and the
// returned schema is nil, so a caller simply keeps the prior value.
type MetamodelService struct{}

func NewMetamodelService() *MetamodelService {
	return &MetamodelService{}
}

type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("an entity named %q already exists", e.Name)
}

type UnknownEntityError struct {
	Name string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("entity %q does not exist", e.Name)
}

type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d is out of range for a list of %d", e.Index, e.Length)
}

// SchemaValidationError lists every entity that blocks script generation,
// not just the first offender.
type SchemaValidationError struct {
	MissingPrimaryKey []string
	MissingAttributes []string
}

func (e *SchemaValidationError) Error() string {
	var parts []string
	if len(e.MissingPrimaryKey) > 0 {
		parts = append(parts, fmt.Sprintf("entities without a primary key: %s", strings.Join(e.MissingPrimaryKey, ", ")))
	}
	if len(e.MissingAttributes) > 0 {
		parts = append(parts, fmt.Sprintf("entities without attributes: %s", strings.Join(e.MissingAttributes, ", ")))
	}
	return strings.Join(parts, "; ")
}

// AddEntity appends a new entity. An entity arriving without attributes is
// seeded with an "id" INTEGER primary key so it satisfies the schema
// invariants immediately.
func (s *MetamodelService) AddEntity(m *models.Metamodel, entity models.Entity) (*models.Metamodel, error) {
	if m.FindEntity(entity.Name) != nil {
		return nil, &DuplicateNameError{Name: entity.Name}
	}

	next := m.Clone()
	if len(entity.Attributes) == 0 {
		entity.Attributes = []models.Attribute{{
			Name:         "id",
			DataType:     models.TypeInteger,
			IsPrimaryKey: true,
			IsUnique:     true,
			IsNullable:   false,
		}}
	}
	next.Entities = append(next.Entities, entity)
	return next, nil
}

// RenameEntity renames an entity and rewrites every relationship endpoint
// referencing the old name in the same operation.
func (s *MetamodelService) RenameEntity(m *models.Metamodel, oldName, newName string) (*models.Metamodel, error) {
	if m.FindEntity(oldName) == nil {
		return nil, &UnknownEntityError{Name: oldName}
	}
	if oldName == newName {
		return m.Clone(), nil
	}
	if m.FindEntity(newName) != nil {
		return nil, &DuplicateNameError{Name: newName}
	}

	next := m.Clone()
	next.FindEntity(oldName).Name = newName
	for i := range next.Relationships {
		if next.Relationships[i].SourceEntity == oldName {
			next.Relationships[i].SourceEntity = newName
		}
		if next.Relationships[i].TargetEntity == oldName {
			next.Relationships[i].TargetEntity = newName
		}
	}
	return next, nil
}

// DeleteEntity removes the entity and cascades to every relationship that
// references it. Deleting a name that does not exist is a no-op success.
func (s *MetamodelService) DeleteEntity(m *models.Metamodel, name string) (*models.Metamodel, error) {
	next := m.Clone()

	entities := next.Entities[:0]
	for _, entity := range next.Entities {
		if entity.Name != name {
			entities = append(entities, entity)
		}
	}
	next.Entities = entities

	relationships := next.Relationships[:0]
	for _, rel := range next.Relationships {
		if !rel.Touches(name) {
			relationships = append(relationships, rel)
		}
	}
	next.Relationships = relationships

	return next, nil
}

// ReorderEntities moves the entity at fromIndex to toIndex as one atomic
// splice; the entities in between shift by one.
func (s *MetamodelService) ReorderEntities(m *models.Metamodel, fromIndex, toIndex int) (*models.Metamodel, error) {
	if err := checkIndex(fromIndex, len(m.Entities)); err != nil {
		return nil, err
	}
	if err := checkIndex(toIndex, len(m.Entities)); err != nil {
		return nil, err
	}

	next := m.Clone()
	next.Entities = moveElement(next.Entities, fromIndex, toIndex)
	return next, nil
}

// ReorderAttributes moves one attribute of the named entity to a new
// position, preserving the rest of the order.
func (s *MetamodelService) ReorderAttributes(m *models.Metamodel, entityName string, fromIndex, toIndex int) (*models.Metamodel, error) {
	entity := m.FindEntity(entityName)
	if entity == nil {
		return nil, &UnknownEntityError{Name: entityName}
	}
	if err := checkIndex(fromIndex, len(entity.Attributes)); err != nil {
		return nil, err
	}
	if err := checkIndex(toIndex, len(entity.Attributes)); err != nil {
		return nil, err
	}

	next := m.Clone()
	target := next.FindEntity(entityName)
	target.Attributes = moveElement(target.Attributes, fromIndex, toIndex)
	return next, nil
}

// UpsertAttribute replaces the attribute with the same name in place, or
// appends it. Marking the attribute as primary key clears the flag on every
// other attribute of the entity.
func (s *MetamodelService) UpsertAttribute(m *models.Metamodel, entityName string, attr models.Attribute) (*models.Metamodel, error) {
	if m.FindEntity(entityName) == nil {
		return nil, &UnknownEntityError{Name: entityName}
	}

	next := m.Clone()
	entity := next.FindEntity(entityName)

	if attr.IsPrimaryKey {
		attr.IsNullable = false
		attr.IsUnique = true
		for i := range entity.Attributes {
			entity.Attributes[i].IsPrimaryKey = false
		}
	}

	replaced := false
	for i := range entity.Attributes {
		if entity.Attributes[i].Name == attr.Name {
			entity.Attributes[i] = attr
			replaced = true
			break
		}
	}
	if !replaced {
		entity.Attributes = append(entity.Attributes, attr)
	}
	return next, nil
}

// DeleteAttribute removes the attribute at the given index. Removing the
// current primary key succeeds and leaves the entity in a warning state that
// ValidateForGeneration rejects later.
func (s *MetamodelService) DeleteAttribute(m *models.Metamodel, entityName string, attributeIndex int) (*models.Metamodel, error) {
	entity := m.FindEntity(entityName)
	if entity == nil {
		return nil, &UnknownEntityError{Name: entityName}
	}
	if err := checkIndex(attributeIndex, len(entity.Attributes)); err != nil {
		return nil, err
	}

	next := m.Clone()
	target := next.FindEntity(entityName)
	target.Attributes = append(target.Attributes[:attributeIndex], target.Attributes[attributeIndex+1:]...)
	return next, nil
}

// SetPrimaryKey designates the attribute at the given index as the single
// primary key of the entity, forcing it non-nullable and unique.
func (s *MetamodelService) SetPrimaryKey(m *models.Metamodel, entityName string, attributeIndex int) (*models.Metamodel, error) {
	entity := m.FindEntity(entityName)
	if entity == nil {
		return nil, &UnknownEntityError{Name: entityName}
	}
	if err := checkIndex(attributeIndex, len(entity.Attributes)); err != nil {
		return nil, err
	}

	next := m.Clone()
	target := next.FindEntity(entityName)
	for i := range target.Attributes {
		target.Attributes[i].IsPrimaryKey = i == attributeIndex
	}
	target.Attributes[attributeIndex].IsNullable = false
	target.Attributes[attributeIndex].IsUnique = true
	return next, nil
}

// UpsertRelationship replaces the relationship with the same name or appends
// it. Both endpoints must resolve to existing entities.
func (s *MetamodelService) UpsertRelationship(m *models.Metamodel, rel models.Relationship) (*models.Metamodel, error) {
	if m.FindEntity(rel.SourceEntity) == nil {
		return nil, &UnknownEntityError{Name: rel.SourceEntity}
	}
	if m.FindEntity(rel.TargetEntity) == nil {
		return nil, &UnknownEntityError{Name: rel.TargetEntity}
	}

	next := m.Clone()
	for i := range next.Relationships {
		if next.Relationships[i].Name == rel.Name {
			next.Relationships[i] = rel
			return next, nil
		}
	}
	next.Relationships = append(next.Relationships, rel)
	return next, nil
}

// DeleteRelationship removes the named relationship; unknown names are a
// no-op success, matching DeleteEntity.
func (s *MetamodelService) DeleteRelationship(m *models.Metamodel, name string) (*models.Metamodel, error) {
	next := m.Clone()
	relationships := next.Relationships[:0]
	for _, rel := range next.Relationships {
		if rel.Name != name {
			relationships = append(relationships, rel)
		}
	}
	next.Relationships = relationships
	return next, nil
}

// ValidateForGeneration checks the save-time invariants: every entity has at
// least one attribute and exactly one primary key. Editing may leave the
// schema transiently invalid; this is the boundary where that ends.
func (s *MetamodelService) ValidateForGeneration(m *models.Metamodel) error {
	var validation SchemaValidationError
	for _, entity := range m.Entities {
		if len(entity.Attributes) == 0 {
			validation.MissingAttributes = append(validation.MissingAttributes, entity.Name)
			continue
		}
		pkCount := 0
		for _, attr := range entity.Attributes {
			if attr.IsPrimaryKey {
				pkCount++
			}
		}
		if pkCount != 1 {
			validation.MissingPrimaryKey = append(validation.MissingPrimaryKey, entity.Name)
		}
	}
	if len(validation.MissingPrimaryKey) > 0 || len(validation.MissingAttributes) > 0 {
		return &validation
	}
	return nil
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return &IndexOutOfRangeError{Index: index, Length: length}
	}
	return nil
}

// moveElement removes the element at fromIndex and re-inserts it at toIndex
// in a single splice, so no intermediate ordering is ever observable.
func moveElement[T any](list []T, fromIndex, toIndex int) []T {
	moved := list[fromIndex]
	rest := append(list[:fromIndex:fromIndex], list[fromIndex+1:]...)
	out := make([]T, 0, len(rest)+1)
	out = append(out, rest[:toIndex]...)
	out = append(out, moved)
	out = append(out, rest[toIndex:]...)
	return out
}
