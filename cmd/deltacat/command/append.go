package command

import (
	"fmt"
	"io"
	"os"

	"github.com/IvanPartsunev/deltacat-cli/internal/console"
	"github.com/IvanPartsunev/deltacat-cli/internal/pqutil"
	"github.com/apache/arrow/go/v16/arrow"
)

type TableAppendCmd struct {
	Name         string `required:"" help:"Table name to append to."`
	Namespace    string `required:"" help:"Namespace of the table."`
	TableVersion string `help:"Table version to append to.  Defaults to the latest active version."`
	File         string `help:"JSON array or newline delimited JSON rows.  Read from stdin when not provided." type:"existingfile" predictor:"path"`
	Compression  string `help:"Data file compression.  Possible values: ${enum}." enum:"${compressionCodecs}" default:"${defaultCompression}"`
}

func (c *TableAppendCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	var input io.Reader = os.Stdin
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return NewCommandError("appending to table", fmt.Errorf("failed to read from %q: %w", c.File, err))
		}
		defer f.Close()
		input = f
	}

	rows, err := pqutil.DecodeRows(input)
	if err != nil {
		return NewCommandError("appending to table", err)
	}

	definition, err := handle.GetTable(rt.Context, c.Namespace, c.Name, c.TableVersion)
	if err != nil {
		return NewCommandError("appending to table", err)
	}
	if definition == nil {
		return NewCommandError("appending to table", tableNotFound(c.Namespace, c.Name, c.TableVersion))
	}

	out := rt.Console
	out.Loading("Appending %s row(s) to table %q", console.Count(int64(len(rows))), c.Name)

	var recordSchema *arrow.Schema
	if definition.TableVersion.Schema != nil {
		recordSchema = definition.TableVersion.Schema.Arrow()
	} else {
		recordSchema, err = inferSchema(rows)
		if err != nil {
			return NewCommandError("appending to table", err)
		}
	}

	record, err := pqutil.RecordFromRows(recordSchema, rows)
	if err != nil {
		return NewCommandError("appending to table", err)
	}
	defer record.Release()

	dataFile, err := handle.AppendRecords(rt.Context, c.Namespace, c.Name, definition.TableVersion.Version, []arrow.Record{record}, c.Compression)
	if err != nil {
		return NewCommandError("appending to table", err)
	}
	out.Success("Appended %s row(s) to table %q (%s)", console.Count(dataFile.Rows), c.Name, console.Size(dataFile.Size))
	return nil
}

func inferSchema(rows []map[string]any) (*arrow.Schema, error) {
	builder := pqutil.NewArrowSchemaBuilder()
	for _, row := range rows {
		if err := builder.Add(row); err != nil {
			return nil, err
		}
	}
	if !builder.Ready() {
		return nil, fmt.Errorf("could not infer a type for columns that only hold nulls")
	}
	return builder.Schema()
}
