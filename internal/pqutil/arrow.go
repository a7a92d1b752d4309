package pqutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"
)

// ArrowSchemaBuilder derives a flat arrow schema from decoded JSON rows.
// Fields that have only been seen with null values stay unresolved.
type ArrowSchemaBuilder struct {
	fields map[string]*arrow.Field
}

func NewArrowSchemaBuilder() *ArrowSchemaBuilder {
	return &ArrowSchemaBuilder{
		fields: map[string]*arrow.Field{},
	}
}

func (b *ArrowSchemaBuilder) Has(name string) bool {
	_, has := b.fields[name]
	return has
}

func (b *ArrowSchemaBuilder) Add(row map[string]any) error {
	for name, value := range row {
		if b.fields[name] != nil {
			continue
		}
		if value == nil {
			b.fields[name] = nil
			continue
		}
		field, err := fieldFromValue(name, value)
		if err != nil {
			return fmt.Errorf("error converting value for %s: %w", name, err)
		}
		b.fields[name] = field
	}
	return nil
}

func fieldFromValue(name string, value any) (*arrow.Field, error) {
	switch v := value.(type) {
	case bool:
		return &arrow.Field{Name: name, Type: arrow.FixedWidthTypes.Boolean, Nullable: true}, nil
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return &arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}, nil
		}
		return &arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}, nil
	case int, int64:
		return &arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}, nil
	case int32:
		return &arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int32, Nullable: true}, nil
	case float32:
		return &arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float32, Nullable: true}, nil
	case float64:
		return &arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}, nil
	case string:
		return &arrow.Field{Name: name, Type: arrow.BinaryTypes.LargeString, Nullable: true}, nil
	case []any, map[string]any:
		return nil, errors.New("nested values are not supported")
	default:
		return nil, fmt.Errorf("cannot convert value: %v", v)
	}
}

func (b *ArrowSchemaBuilder) Ready() bool {
	for _, field := range b.fields {
		if field == nil {
			return false
		}
	}
	return true
}

func (b *ArrowSchemaBuilder) Schema() (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(b.fields))
	for i, name := range sortedKeys(b.fields) {
		field := b.fields[name]
		if field == nil {
			return nil, fmt.Errorf("could not derive type for field: %s", name)
		}
		fields[i] = *field
	}
	return arrow.NewSchema(fields, nil), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, len(m))
	i := 0
	for k := range m {
		keys[i] = k
		i += 1
	}
	sort.Strings(keys)
	return keys
}

// DecodeRows reads either a JSON array of objects or newline delimited
// objects.
func DecodeRows(input io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("no rows in input")
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	rows := []map[string]any{}
	if data[0] == '[' {
		if err := decoder.Decode(&rows); err != nil {
			return nil, fmt.Errorf("invalid JSON rows: %w", err)
		}
		return rows, nil
	}

	for {
		row := map[string]any{}
		err := decoder.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid JSON row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RecordFromRows builds a record with the given schema.  Row keys that are
// not in the schema are an error; missing keys become nulls.
func RecordFromRows(schema *arrow.Schema, rows []map[string]any) (arrow.Record, error) {
	for i, row := range rows {
		for name := range row {
			if len(schema.FieldIndices(name)) == 0 {
				return nil, fmt.Errorf("row %d has unknown column %q", i+1, name)
			}
		}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}

	record, _, err := array.RecordFromJSON(memory.DefaultAllocator, schema, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("rows do not match the table schema: %w", err)
	}
	return record, nil
}
