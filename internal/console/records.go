package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/tidwall/pretty"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

var Formats = []string{FormatText, FormatMarkdown, FormatJSON}

const nullValue = "null"

// Records renders rows of the given schema.  Records that lack a column of
// the schema show it as null.
func (c *Console) Records(schema *arrow.Schema, records []arrow.Record, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		c.recordTable(schema, records).Render()
	case FormatMarkdown:
		c.recordTable(schema, records).RenderMarkdown()
	case FormatJSON:
		data, err := recordsJSON(schema, records)
		if err != nil {
			return err
		}
		data = pretty.Pretty(data)
		if c.color {
			data = pretty.Color(data, nil)
		}
		if _, err := c.out.Write(data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q, expected one of %s", format, strings.Join(Formats, ", "))
	}
	return nil
}

func (c *Console) recordTable(schema *arrow.Schema, records []arrow.Record) table.Writer {
	tbl := c.newTable()

	header := make(table.Row, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	tbl.AppendHeader(header)

	total := int64(0)
	for _, record := range records {
		columns := recordColumns(schema, record)
		for row := 0; row < int(record.NumRows()); row += 1 {
			values := make(table.Row, len(columns))
			for i, column := range columns {
				values[i] = cellText(column, row)
			}
			tbl.AppendRow(values)
		}
		total += record.NumRows()
	}

	if schema.NumFields() > 0 {
		footer := make(table.Row, schema.NumFields())
		footer[0] = "Rows"
		if len(footer) > 1 {
			footer[1] = Count(total)
		} else {
			footer[0] = "Rows: " + Count(total)
		}
		for i := 2; i < len(footer); i += 1 {
			footer[i] = ""
		}
		tbl.AppendFooter(footer, table.RowConfig{AutoMerge: true, AutoMergeAlign: text.AlignLeft})
	}
	return tbl
}

// recordColumns lines up the record columns with the schema fields, nil
// where the record has no such column.
func recordColumns(schema *arrow.Schema, record arrow.Record) []arrow.Array {
	columns := make([]arrow.Array, schema.NumFields())
	for i, field := range schema.Fields() {
		indices := record.Schema().FieldIndices(field.Name)
		if len(indices) > 0 {
			columns[i] = record.Column(indices[0])
		}
	}
	return columns
}

func cellText(column arrow.Array, row int) string {
	if column == nil || column.IsNull(row) {
		return nullValue
	}
	return column.ValueStr(row)
}

func recordsJSON(schema *arrow.Schema, records []arrow.Record) ([]byte, error) {
	names := make([][]byte, schema.NumFields())
	for i, field := range schema.Fields() {
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}

	buf := &bytes.Buffer{}
	buf.WriteByte('[')
	first := true
	for _, record := range records {
		columns := recordColumns(schema, record)
		for row := 0; row < int(record.NumRows()); row += 1 {
			if !first {
				buf.WriteByte(',')
			}
			first = false

			buf.WriteByte('{')
			for i, column := range columns {
				if i > 0 {
					buf.WriteByte(',')
				}
				buf.Write(names[i])
				buf.WriteByte(':')

				var value any
				if column != nil {
					value = column.GetOneForMarshal(row)
				}
				data, err := json.Marshal(value)
				if err != nil {
					return nil, fmt.Errorf("failed to encode column %s: %w", schema.Field(i).Name, err)
				}
				buf.Write(data)
			}
			buf.WriteByte('}')
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
