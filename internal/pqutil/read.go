package pqutil

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"
	"github.com/apache/arrow/go/v16/parquet"
	"github.com/apache/arrow/go/v16/parquet/file"
	"github.com/apache/arrow/go/v16/parquet/pqarrow"
)

const defaultBatchSize = 1024

type ReadConfig struct {
	// Columns limits the output to the named top-level columns.  All
	// columns are read when empty.
	Columns []string

	// SkipMissingColumns ignores requested columns that are not in the file
	// instead of failing.
	SkipMissingColumns bool

	// Limit caps the number of rows returned.  No limit when zero or less.
	Limit int64

	BatchSize int64
}

// ReadRecords reads the parquet input into memory.  Callers must release the
// returned records.
func ReadRecords(ctx context.Context, input parquet.ReaderAtSeeker, config *ReadConfig) (*arrow.Schema, []arrow.Record, error) {
	if input == nil {
		return nil, nil, errors.New("reader is required")
	}
	if config == nil {
		config = &ReadConfig{}
	}

	fileReader, err := file.NewParquetReader(input)
	if err != nil {
		return nil, nil, err
	}
	defer fileReader.Close()

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	arrowReader, err := pqarrow.NewFileReader(fileReader, pqarrow.ArrowReadProperties{BatchSize: batchSize}, memory.DefaultAllocator)
	if err != nil {
		return nil, nil, err
	}

	var columnIndices []int
	if len(config.Columns) > 0 {
		parquetSchema := fileReader.MetaData().Schema
		columnIndices = make([]int, 0, len(config.Columns))
		for _, name := range config.Columns {
			index := parquetSchema.ColumnIndexByName(name)
			if index < 0 {
				if config.SkipMissingColumns {
					continue
				}
				return nil, nil, fmt.Errorf("column %q not found", name)
			}
			columnIndices = append(columnIndices, index)
		}
		if len(columnIndices) == 0 {
			schema, records := emptyProjection(fileReader.NumRows(), config.Limit)
			return schema, records, nil
		}
	}

	recordReader, err := arrowReader.GetRecordReader(ctx, columnIndices, nil)
	if err != nil {
		return nil, nil, err
	}
	defer recordReader.Release()

	schema := recordReader.Schema()
	records := []arrow.Record{}
	total := int64(0)
	for recordReader.Next() {
		if config.Limit > 0 && total >= config.Limit {
			break
		}
		record := recordReader.Record()
		numRows := record.NumRows()
		if config.Limit > 0 && total+numRows > config.Limit {
			numRows = config.Limit - total
			records = append(records, record.NewSlice(0, numRows))
		} else {
			record.Retain()
			records = append(records, record)
		}
		total += numRows
	}
	if err := recordReader.Err(); err != nil && !errors.Is(err, io.EOF) {
		for _, record := range records {
			record.Release()
		}
		return nil, nil, err
	}

	return schema, records, nil
}

// emptyProjection keeps the row count of a file that has none of the
// requested columns.  The records have no columns.
func emptyProjection(numRows int64, limit int64) (*arrow.Schema, []arrow.Record) {
	schema := arrow.NewSchema([]arrow.Field{}, nil)
	if limit > 0 && numRows > limit {
		numRows = limit
	}
	if numRows <= 0 {
		return schema, []arrow.Record{}
	}
	return schema, []arrow.Record{array.NewRecord(schema, nil, numRows)}
}

// NumRows reports the row count from the file footer.
func NumRows(input parquet.ReaderAtSeeker) (int64, error) {
	fileReader, err := file.NewParquetReader(input)
	if err != nil {
		return 0, err
	}
	defer fileReader.Close()
	return fileReader.NumRows(), nil
}
