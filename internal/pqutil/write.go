package pqutil

import (
	"errors"
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/parquet"
	"github.com/apache/arrow/go/v16/parquet/pqarrow"
)

type WriteConfig struct {
	Compression    string
	RowGroupLength int
}

func getWriterProperties(config *WriteConfig) (*parquet.WriterProperties, error) {
	codec, err := GetCompression(config.Compression)
	if err != nil {
		return nil, err
	}

	writerProperties := []parquet.WriterProperty{parquet.WithCompression(codec)}
	if config.RowGroupLength > 0 {
		writerProperties = append(writerProperties, parquet.WithMaxRowGroupLength(int64(config.RowGroupLength)))
	}

	return parquet.NewWriterProperties(writerProperties...), nil
}

// WriteRecords writes the records as a single parquet file.  The arrow schema
// is stored in the file metadata so that types without a direct parquet
// equivalent (large strings, zoned timestamps) survive a round trip.
func WriteRecords(w io.Writer, schema *arrow.Schema, records []arrow.Record, config *WriteConfig) error {
	if w == nil {
		return errors.New("writer is required")
	}
	if config == nil {
		config = &WriteConfig{}
	}

	writerProperties, err := getWriterProperties(config)
	if err != nil {
		return err
	}

	arrowProperties := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	fileWriter, err := pqarrow.NewFileWriter(schema, w, writerProperties, arrowProperties)
	if err != nil {
		return err
	}

	for _, record := range records {
		if !record.Schema().Equal(schema) {
			_ = fileWriter.Close()
			return errors.New("record schema does not match the file schema")
		}
		if err := fileWriter.Write(record); err != nil {
			_ = fileWriter.Close()
			return err
		}
	}

	return fileWriter.Close()
}
