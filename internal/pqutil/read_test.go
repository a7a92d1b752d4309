package pqutil_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/IvanPartsunev/deltacat-cli/internal/pqutil"
	"github.com/IvanPartsunev/deltacat-cli/internal/test"
	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/parquet/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rows = `[
	{"id": 1, "name": "one", "score": 1.5},
	{"id": 2, "name": "two", "score": 2.5},
	{"id": 3, "name": "three", "score": 3.5}
]`

func TestReadRecords(t *testing.T) {
	data := test.ParquetFromJSON(t, rows, nil)

	cases := []struct {
		name     string
		config   *pqutil.ReadConfig
		columns  []string
		expected string
		err      string
	}{
		{
			name:     "all columns",
			columns:  []string{"id", "name", "score"},
			expected: rows,
		},
		{
			name:     "projection",
			config:   &pqutil.ReadConfig{Columns: []string{"id", "score"}},
			columns:  []string{"id", "score"},
			expected: `[{"id": 1, "score": 1.5}, {"id": 2, "score": 2.5}, {"id": 3, "score": 3.5}]`,
		},
		{
			name:     "limit",
			config:   &pqutil.ReadConfig{Limit: 2},
			columns:  []string{"id", "name", "score"},
			expected: `[{"id": 1, "name": "one", "score": 1.5}, {"id": 2, "name": "two", "score": 2.5}]`,
		},
		{
			name:     "limit across batches",
			config:   &pqutil.ReadConfig{Limit: 2, BatchSize: 1},
			columns:  []string{"id", "name", "score"},
			expected: `[{"id": 1, "name": "one", "score": 1.5}, {"id": 2, "name": "two", "score": 2.5}]`,
		},
		{
			name:   "unknown column",
			config: &pqutil.ReadConfig{Columns: []string{"nope"}},
			err:    `column "nope" not found`,
		},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("%s (case %d)", c.name, i), func(t *testing.T) {
			schema, records, err := pqutil.ReadRecords(context.Background(), bytes.NewReader(data), c.config)
			if c.err != "" {
				assert.ErrorContains(t, err, c.err)
				return
			}
			require.NoError(t, err)
			defer func() {
				for _, record := range records {
					record.Release()
				}
			}()

			names := make([]string, schema.NumFields())
			for i, field := range schema.Fields() {
				names[i] = field.Name
			}
			assert.Equal(t, c.columns, names)
			assert.JSONEq(t, c.expected, test.RecordsToJSON(t, records))
		})
	}
}

func TestWriteRecordsStoresArrowSchema(t *testing.T) {
	data := test.ParquetFromJSON(t, rows, &pqutil.WriteConfig{Compression: "snappy", RowGroupLength: 2})

	schema, records, err := pqutil.ReadRecords(context.Background(), bytes.NewReader(data), nil)
	require.NoError(t, err)
	for _, record := range records {
		record.Release()
	}

	field, ok := schema.FieldsByName("name")
	require.True(t, ok)
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.LargeString, field[0].Type))

	fileReader, err := file.NewParquetReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer fileReader.Close()
	assert.Equal(t, 2, fileReader.NumRowGroups())

	numRows, err := pqutil.NumRows(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(3), numRows)
}

func TestWriteRecordsSchemaMismatch(t *testing.T) {
	record := test.RecordFromJSON(t, rows)
	defer record.Release()

	other := arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Int64}}, nil)
	err := pqutil.WriteRecords(&bytes.Buffer{}, other, []arrow.Record{record}, nil)
	assert.EqualError(t, err, "record schema does not match the file schema")
}

func TestGetCompression(t *testing.T) {
	for _, codec := range pqutil.CompressionCodecs {
		_, err := pqutil.GetCompression(codec)
		assert.NoError(t, err, codec)
	}

	_, err := pqutil.GetCompression("")
	assert.NoError(t, err)

	_, err = pqutil.GetCompression("rar")
	assert.EqualError(t, err, "invalid compression codec rar")
}

func TestReadRecordsSkipMissingColumns(t *testing.T) {
	data := test.ParquetFromJSON(t, rows, nil)

	config := &pqutil.ReadConfig{Columns: []string{"id", "added_later"}, SkipMissingColumns: true}
	schema, records, err := pqutil.ReadRecords(context.Background(), bytes.NewReader(data), config)
	require.NoError(t, err)
	defer func() {
		for _, record := range records {
			record.Release()
		}
	}()
	assert.Equal(t, 1, schema.NumFields())
	assert.JSONEq(t, `[{"id": 1}, {"id": 2}, {"id": 3}]`, test.RecordsToJSON(t, records))

}

func TestReadRecordsOnlyMissingColumns(t *testing.T) {
	data := test.ParquetFromJSON(t, rows, nil)

	cases := []struct {
		name  string
		limit int64
		rows  int64
	}{
		{name: "all rows", rows: 3},
		{name: "limit", limit: 2, rows: 2},
		{name: "limit past end", limit: 10, rows: 3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			config := &pqutil.ReadConfig{Columns: []string{"added_later"}, SkipMissingColumns: true, Limit: c.limit}
			schema, records, err := pqutil.ReadRecords(context.Background(), bytes.NewReader(data), config)
			require.NoError(t, err)
			assert.Equal(t, 0, schema.NumFields())

			require.Len(t, records, 1)
			defer records[0].Release()
			assert.Equal(t, c.rows, records[0].NumRows(), "rows without the requested columns are kept")
			assert.Equal(t, int64(0), records[0].NumCols())
		})
	}
}
