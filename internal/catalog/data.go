package catalog

import (
	"bytes"
	"context"
	"fmt"

	"github.com/IvanPartsunev/deltacat-cli/internal/pqutil"
	"github.com/IvanPartsunev/deltacat-cli/internal/storage"
	"github.com/apache/arrow/go/v16/arrow"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const contentTypeParquet = "application/vnd.apache.parquet"

type ReadOptions struct {
	Namespace string
	Table     string
	Version   string
	Columns   []string

	// Limit caps the number of rows read.  No limit when zero or less.
	Limit int64
}

// Dataset holds the rows read from a table version.  Records from data
// files written before a schema change may carry fewer columns than Schema.
type Dataset struct {
	Definition *TableDefinition
	Schema     *arrow.Schema
	Records    []arrow.Record
}

func (d *Dataset) NumRows() int64 {
	total := int64(0)
	for _, record := range d.Records {
		total += record.NumRows()
	}
	return total
}

func (d *Dataset) Release() {
	for _, record := range d.Records {
		record.Release()
	}
	d.Records = nil
}

func (c *Catalog) ReadTable(ctx context.Context, opts ReadOptions) (*Dataset, error) {
	definition, err := c.resolve(ctx, opts.Namespace, opts.Table, opts.Version)
	if err != nil {
		return nil, err
	}
	tableVersion := definition.TableVersion

	dataset := &Dataset{Definition: definition, Records: []arrow.Record{}}
	if tableVersion.Schema != nil {
		schema, err := projectSchema(tableVersion.Schema.Arrow(), opts.Columns)
		if err != nil {
			return nil, err
		}
		dataset.Schema = schema
	}

	prefix := versionPrefix(opts.Namespace, opts.Table, tableVersion.Version)
	remaining := opts.Limit
	for _, dataFile := range tableVersion.DataFiles {
		if opts.Limit > 0 && remaining <= 0 {
			break
		}

		reader, err := storage.NewBlobReader(ctx, c.bucket, prefix+dataFile.Path)
		if err != nil {
			dataset.Release()
			return nil, err
		}

		config := &pqutil.ReadConfig{Columns: opts.Columns, Limit: remaining, SkipMissingColumns: true}
		schema, records, err := pqutil.ReadRecords(ctx, reader, config)
		_ = reader.Close()
		if err != nil {
			dataset.Release()
			return nil, fmt.Errorf("failed to read %s: %w", dataFile.Path, err)
		}

		if dataset.Schema == nil {
			dataset.Schema = schema
		}
		for _, record := range records {
			remaining -= record.NumRows()
			dataset.Records = append(dataset.Records, record)
		}
	}

	if dataset.Schema == nil {
		dataset.Schema = arrow.NewSchema([]arrow.Field{}, nil)
	}

	log.Debug().Str("namespace", opts.Namespace).Str("table", opts.Table).Int64("rows", dataset.NumRows()).Msg("read table")
	return dataset, nil
}

func projectSchema(schema *arrow.Schema, columns []string) (*arrow.Schema, error) {
	if len(columns) == 0 {
		return schema, nil
	}
	fields := make([]arrow.Field, len(columns))
	for i, name := range columns {
		indices := schema.FieldIndices(name)
		if len(indices) == 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		fields[i] = schema.Field(indices[0])
	}
	return arrow.NewSchema(fields, nil), nil
}

// AppendRecords writes the records as one parquet data file of the table
// version and adds the file to the version manifest.  A version without a
// schema takes the schema of the records unless schema evolution is
// disabled.
func (c *Catalog) AppendRecords(ctx context.Context, namespace string, table string, version string, records []arrow.Record, compression string) (*DataFile, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to append")
	}

	definition, err := c.resolve(ctx, namespace, table, version)
	if err != nil {
		return nil, err
	}
	tableVersion := definition.TableVersion

	schema := records[0].Schema()
	if tableVersion.Schema == nil {
		if mode := definition.Table.Properties.SchemaEvolutionMode; mode != nil && *mode == SchemaEvolutionDisabled {
			return nil, fmt.Errorf("%w: %s.%s has no schema", ErrSchemaEvolutionDisabled, namespace, table)
		}
		inferred, err := SchemaFromArrow(schema)
		if err != nil {
			return nil, err
		}
		tableVersion.Schema = inferred
	} else if !schema.Equal(tableVersion.Schema.Arrow()) {
		return nil, fmt.Errorf("record schema does not match the schema of %s.%s", namespace, table)
	}

	data := &bytes.Buffer{}
	config := &pqutil.WriteConfig{Compression: compression}
	if err := pqutil.WriteRecords(data, schema, records, config); err != nil {
		return nil, fmt.Errorf("failed to encode data file: %w", err)
	}

	rows := int64(0)
	for _, record := range records {
		rows += record.NumRows()
	}
	dataFile := DataFile{
		Path: dataDir + "/" + uuid.NewString() + ".parquet",
		Rows: rows,
		Size: int64(data.Len()),
	}

	prefix := versionPrefix(namespace, table, tableVersion.Version)
	if err := c.write(ctx, prefix+dataFile.Path, data, contentTypeParquet); err != nil {
		return nil, err
	}

	tableVersion.DataFiles = append(tableVersion.DataFiles, dataFile)
	tableVersion.UpdatedAt = c.now()
	if err := c.writeJSON(ctx, versionKey(namespace, table, tableVersion.Version), tableVersion); err != nil {
		return nil, err
	}

	log.Debug().Str("namespace", namespace).Str("table", table).Str("file", dataFile.Path).Int64("rows", rows).Msg("appended data file")
	return &dataFile, nil
}
