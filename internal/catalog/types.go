package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/apache/arrow/go/v16/arrow"
)

type LifecycleState string

const (
	LifecycleUnreleased LifecycleState = "UNRELEASED"
	LifecycleCreated    LifecycleState = "CREATED"
	LifecycleActive     LifecycleState = "ACTIVE"
	LifecycleBeta       LifecycleState = "BETA"
	LifecycleDeprecated LifecycleState = "DEPRECATED"
	LifecycleDeleted    LifecycleState = "DELETED"
)

var LifecycleStates = []string{
	string(LifecycleUnreleased),
	string(LifecycleCreated),
	string(LifecycleActive),
	string(LifecycleBeta),
	string(LifecycleDeprecated),
	string(LifecycleDeleted),
}

// ParseLifecycleState is case insensitive.
func ParseLifecycleState(value string) (LifecycleState, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, state := range LifecycleStates {
		if upper == state {
			return LifecycleState(state), nil
		}
	}
	return "", fmt.Errorf("invalid lifecycle state %q, expected one of %s", value, strings.Join(LifecycleStates, ", "))
}

type Namespace struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type Table struct {
	ID                  string          `json:"id"`
	Namespace           string          `json:"namespace"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Properties          TableProperties `json:"properties"`
	LatestVersion       string          `json:"latest_version"`
	LatestActiveVersion string          `json:"latest_active_version,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type DataFile struct {
	// Path is relative to the table version directory.
	Path string `json:"path"`
	Rows int64  `json:"rows"`
	Size int64  `json:"size"`
}

type TableVersion struct {
	Namespace      string         `json:"namespace"`
	Table          string         `json:"table"`
	Version        string         `json:"version"`
	Description    string         `json:"description,omitempty"`
	LifecycleState LifecycleState `json:"lifecycle_state"`
	Schema         *Schema        `json:"schema,omitempty"`
	DataFiles      []DataFile     `json:"data_files"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (v *TableVersion) NumRows() int64 {
	total := int64(0)
	for _, file := range v.DataFiles {
		total += file.Rows
	}
	return total
}

type TableDefinition struct {
	Table        *Table        `json:"table"`
	TableVersion *TableVersion `json:"table_version"`
}

type Field struct {
	Name     string         `json:"name"`
	Type     arrow.DataType `json:"-"`
	MergeKey bool           `json:"merge_key"`
	Nullable bool           `json:"nullable"`
}

type jsonField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	MergeKey bool   `json:"merge_key"`
	Nullable bool   `json:"nullable"`
}

func (f Field) MarshalJSON() ([]byte, error) {
	if f.Type == nil {
		return nil, fmt.Errorf("field %q has no type", f.Name)
	}
	return json.Marshal(jsonField{
		Name:     f.Name,
		Type:     f.Type.String(),
		MergeKey: f.MergeKey,
		Nullable: f.Nullable,
	})
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var raw jsonField
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	dataType, ok := typesByName[raw.Type]
	if !ok {
		return fmt.Errorf("unsupported type %q for field %q", raw.Type, raw.Name)
	}
	*f = Field{Name: raw.Name, Type: dataType, MergeKey: raw.MergeKey, Nullable: raw.Nullable}
	return nil
}

type Schema struct {
	ID     int     `json:"id"`
	Fields []Field `json:"fields"`
}

func (s *Schema) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func (s *Schema) MergeKeys() []string {
	keys := []string{}
	for _, field := range s.Fields {
		if field.MergeKey {
			keys = append(keys, field.Name)
		}
	}
	return keys
}

func (s *Schema) Arrow() *arrow.Schema {
	fields := make([]arrow.Field, len(s.Fields))
	for i, field := range s.Fields {
		fields[i] = arrow.Field{Name: field.Name, Type: field.Type, Nullable: field.Nullable}
	}
	return arrow.NewSchema(fields, nil)
}

// SchemaFromArrow converts an arrow schema into a catalog schema with no
// merge keys.  Only the supported types are accepted.
func SchemaFromArrow(schema *arrow.Schema) (*Schema, error) {
	fields := make([]Field, schema.NumFields())
	for i, field := range schema.Fields() {
		if !SupportedType(field.Type) {
			return nil, fmt.Errorf("unsupported type %s for field %q", field.Type, field.Name)
		}
		fields[i] = Field{Name: field.Name, Type: field.Type, Nullable: field.Nullable}
	}
	return &Schema{Fields: fields}, nil
}

var SupportedTypes = []arrow.DataType{
	arrow.PrimitiveTypes.Int64,
	arrow.PrimitiveTypes.Int32,
	arrow.PrimitiveTypes.Float64,
	arrow.PrimitiveTypes.Float32,
	arrow.BinaryTypes.LargeString,
	arrow.BinaryTypes.String,
	arrow.FixedWidthTypes.Boolean,
	arrow.FixedWidthTypes.Date32,
	&arrow.TimestampType{Unit: arrow.Second, TimeZone: "UTC"},
	&arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"},
	&arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"},
	&arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"},
	arrow.FixedWidthTypes.Time32s,
	arrow.FixedWidthTypes.Time32ms,
	arrow.FixedWidthTypes.Time64us,
	arrow.FixedWidthTypes.Time64ns,
}

var typesByName = map[string]arrow.DataType{}

func init() {
	for _, dataType := range SupportedTypes {
		typesByName[dataType.String()] = dataType
	}
}

func SupportedType(dataType arrow.DataType) bool {
	supported, ok := typesByName[dataType.String()]
	return ok && arrow.TypeEqual(supported, dataType)
}
