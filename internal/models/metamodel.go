package models

// DataType is the generic column type carried by the metamodel. The set below
// covers what the extractor normally emits; unknown types coming from the
// boundary are kept verbatim and mapped by the SQL generator as-is.
type DataType string

const (
	TypeInteger   DataType = "INTEGER"
	TypeVarchar   DataType = "VARCHAR"
	TypeText      DataType = "TEXT"
	TypeDate      DataType = "DATE"
	TypeTimestamp DataType = "TIMESTAMP"
	TypeBoolean   DataType = "BOOLEAN"
	TypeDecimal   DataType = "DECIMAL"
	TypeFloat     DataType = "FLOAT"
	TypeChar      DataType = "CHAR"
	TypeBigint    DataType = "BIGINT"
)

type Cardinality string

const (
	OneToOne   Cardinality = "one_to_one"
	OneToMany  Cardinality = "one_to_many"
	ManyToOne  Cardinality = "many_to_one"
	ManyToMany Cardinality = "many_to_many"
)

type Attribute struct {
	Name         string   `json:"name"`
	DataType     DataType `json:"data_type"`
	Length       *int     `json:"length,omitempty"`
	IsPrimaryKey bool     `json:"is_primary_key"`
	IsForeignKey bool     `json:"is_foreign_key"`
	IsUnique     bool     `json:"is_unique"`
	IsNullable   bool     `json:"is_nullable"`
	DefaultValue *string  `json:"default_value,omitempty"`
	Description  string   `json:"description,omitempty"`
}

type Entity struct {
	Name        string      `json:"name"`
	Attributes  []Attribute `json:"attributes"`
	Description string      `json:"description,omitempty"`
}

// PrimaryKeyIndex returns the index of the primary-key attribute, or -1.
func (e *Entity) PrimaryKeyIndex() int {
	for i, attr := range e.Attributes {
		if attr.IsPrimaryKey {
			return i
		}
	}
	return -1
}

type Relationship struct {
	Name             string      `json:"name"`
	SourceEntity     string      `json:"source_entity"`
	TargetEntity     string      `json:"target_entity"`
	Cardinality      Cardinality `json:"cardinality"`
	SourceForeignKey string      `json:"source_foreign_key,omitempty"`
	TargetForeignKey string      `json:"target_foreign_key,omitempty"`
	Description      string      `json:"description,omitempty"`
}

// Touches reports whether the relationship references the entity name as
// either endpoint.
func (r *Relationship) Touches(entityName string) bool {
	return r.SourceEntity == entityName || r.TargetEntity == entityName
}

// Metamodel is the entity/attribute/relationship graph being designed.
// Entity order is user-significant and preserved across edits. All mutation
// goes through the metamodel service; the model itself only answers queries.
type Metamodel struct {
	Entities      []Entity          `json:"entities"`
	Relationships []Relationship    `json:"relationships"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// FindEntity returns the entity with the given name, or nil.
func (m *Metamodel) FindEntity(name string) *Entity {
	for i := range m.Entities {
		if m.Entities[i].Name == name {
			return &m.Entities[i]
		}
	}
	return nil
}

// AttributeCount returns the number of attributes of the named entity, or 0
// when the entity does not exist.
func (m *Metamodel) AttributeCount(entityName string) int {
	if e := m.FindEntity(entityName); e != nil {
		return len(e.Attributes)
	}
	return 0
}

// RelationshipsTouching returns every relationship whose source or target is
// the named entity.
func (m *Metamodel) RelationshipsTouching(entityName string) []Relationship {
	var touching []Relationship
	for _, rel := range m.Relationships {
		if rel.Touches(entityName) {
			touching = append(touching, rel)
		}
	}
	return touching
}

// Clone returns a deep copy. Edit operations clone first and mutate the copy
// so a failed operation never leaves the original half-changed.
func (m *Metamodel) Clone() *Metamodel {
	next := &Metamodel{}

	if m.Entities != nil {
		next.Entities = make([]Entity, len(m.Entities))
		for i, entity := range m.Entities {
			next.Entities[i] = entity
			next.Entities[i].Attributes = cloneAttributes(entity.Attributes)
		}
	}

	if m.Relationships != nil {
		next.Relationships = make([]Relationship, len(m.Relationships))
		copy(next.Relationships, m.Relationships)
	}

	if m.Metadata != nil {
		next.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			next.Metadata[k] = v
		}
	}

	return next
}

func cloneAttributes(attrs []Attribute) []Attribute {
	if attrs == nil {
		return nil
	}
	cloned := make([]Attribute, len(attrs))
	for i, attr := range attrs {
		cloned[i] = attr
		if attr.Length != nil {
			length := *attr.Length
			cloned[i].Length = &length
		}
		if attr.DefaultValue != nil {
			value := *attr.DefaultValue
			cloned[i].DefaultValue = &value
		}
	}
	return cloned
}
