// Package schema converts the "name:type,name:type" notation used on the
// command line into catalog schemas.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/IvanPartsunev/deltacat-cli/internal/catalog"
	"github.com/apache/arrow/go/v16/arrow"
)

// DefaultToken is used for unknown type tokens.
const DefaultToken = "string"

var typeMapping = map[string]arrow.DataType{
	"int64":         arrow.PrimitiveTypes.Int64,
	"int32":         arrow.PrimitiveTypes.Int32,
	"float64":       arrow.PrimitiveTypes.Float64,
	"float32":       arrow.PrimitiveTypes.Float32,
	"string":        arrow.BinaryTypes.LargeString,
	"bool":          arrow.FixedWidthTypes.Boolean,
	"date":          arrow.FixedWidthTypes.Date32,
	"timestamp[s]":  &arrow.TimestampType{Unit: arrow.Second, TimeZone: "UTC"},
	"timestamp[ms]": &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"},
	"timestamp[us]": &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"},
	"timestamp[ns]": &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"},
	"time[s]":       arrow.FixedWidthTypes.Time32s,
	"time[ms]":      arrow.FixedWidthTypes.Time32ms,
	"time[us]":      arrow.FixedWidthTypes.Time64us,
	"time[ns]":      arrow.FixedWidthTypes.Time64ns,
}

type Column struct {
	Name string
	Type string
}

// ParseColumns splits "name:type" pairs.  Pairs without a colon are
// skipped; a repeated name keeps its first position and takes the last type.
func ParseColumns(value string) []Column {
	columns := []Column{}
	positions := map[string]int{}
	for _, pair := range strings.Split(value, ",") {
		name, dataType, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		column := Column{Name: strings.TrimSpace(name), Type: strings.TrimSpace(dataType)}
		if i, seen := positions[column.Name]; seen {
			columns[i] = column
			continue
		}
		positions[column.Name] = len(columns)
		columns = append(columns, column)
	}
	return columns
}

// ParseList splits a comma separated list, dropping blank entries.
func ParseList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// ArrowType maps a type token to its arrow type.  Unknown tokens map to
// the text type.
func ArrowType(token string) arrow.DataType {
	if dataType, ok := typeMapping[strings.TrimSpace(token)]; ok {
		return dataType
	}
	return typeMapping[DefaultToken]
}

func KnownType(token string) bool {
	_, ok := typeMapping[strings.TrimSpace(token)]
	return ok
}

func TypeTokens() []string {
	tokens := make([]string, 0, len(typeMapping))
	for token := range typeMapping {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

func Build(columns []Column, mergeKeys []string) (*catalog.Schema, error) {
	fields := make([]catalog.Field, len(columns))
	for i, column := range columns {
		if column.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i+1)
		}
		fields[i] = catalog.Field{Name: column.Name, Type: ArrowType(column.Type), Nullable: true}
	}

	s := &catalog.Schema{Fields: fields}
	if err := setMergeKeys(s, mergeKeys); err != nil {
		return nil, err
	}
	return s, nil
}

func setMergeKeys(s *catalog.Schema, mergeKeys []string) error {
	keys := map[string]bool{}
	for _, key := range mergeKeys {
		if _, ok := s.Field(key); !ok {
			return fmt.Errorf("merge key %q is not a column of the schema", key)
		}
		keys[key] = true
	}
	for i := range s.Fields {
		s.Fields[i].MergeKey = keys[s.Fields[i].Name]
	}
	return nil
}

// Update applies column updates to a copy of the original schema.  Updated
// columns keep their position and new columns are appended.  A non-empty
// merge key list replaces the merge keys.  The schema id is incremented.
func Update(original *catalog.Schema, updates []Column, removeColumns []string, mergeKeys []string) (*catalog.Schema, error) {
	updated := &catalog.Schema{}
	if original != nil {
		updated.ID = original.ID + 1
		updated.Fields = append([]catalog.Field{}, original.Fields...)
	}

	for _, column := range updates {
		if column.Name == "" {
			return nil, fmt.Errorf("schema update has a column with no name")
		}
		dataType := ArrowType(column.Type)
		replaced := false
		for i := range updated.Fields {
			if updated.Fields[i].Name == column.Name {
				updated.Fields[i].Type = dataType
				replaced = true
				break
			}
		}
		if !replaced {
			updated.Fields = append(updated.Fields, catalog.Field{Name: column.Name, Type: dataType, Nullable: true})
		}
	}

	for _, name := range removeColumns {
		index := -1
		for i, field := range updated.Fields {
			if field.Name == name {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, fmt.Errorf("cannot remove column %q, it is not in the schema", name)
		}
		updated.Fields = append(updated.Fields[:index], updated.Fields[index+1:]...)
	}

	if len(mergeKeys) > 0 {
		if err := setMergeKeys(updated, mergeKeys); err != nil {
			return nil, err
		}
	}
	return updated, nil
}
