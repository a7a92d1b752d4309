package command

import (
	"github.com/IvanPartsunev/deltacat-cli/internal/catalog"
	"github.com/IvanPartsunev/deltacat-cli/internal/console"
	"github.com/IvanPartsunev/deltacat-cli/internal/schema"
)

type TableReadCmd struct {
	Name         string `required:"" help:"Table name to read."`
	Namespace    string `required:"" help:"Namespace of the table."`
	Columns      string `help:"Comma separated column names to include."`
	TableVersion string `help:"Table version to read.  Defaults to the latest active version."`
	NumRows      int    `help:"Number of rows to show.  All rows when zero." default:"20"`
	Format       string `help:"Output format.  Possible values: ${enum}." enum:"${formats}" default:"text"`
}

func (c *TableReadCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	// json output carries no status lines
	out := rt.Console
	quiet := c.Format == console.FormatJSON
	if !quiet {
		out.Loading("Read table %q", c.Name)
	}

	dataset, err := handle.ReadTable(rt.Context, catalog.ReadOptions{
		Namespace: c.Namespace,
		Table:     c.Name,
		Version:   c.TableVersion,
		Columns:   schema.ParseList(c.Columns),
		Limit:     int64(c.NumRows),
	})
	if err != nil {
		return NewCommandError("reading table", err)
	}
	defer dataset.Release()

	if !quiet {
		out.Success("Table %q read successfully", c.Name)
	}
	if dataset.Definition.TableVersion.Schema == nil && !quiet {
		out.Empty("Table %s has no schema yet", c.Name)
		return nil
	}
	if dataset.NumRows() == 0 && !quiet {
		out.Empty("No rows found in table %s", c.Name)
		return nil
	}
	if err := out.Records(dataset.Schema, dataset.Records, c.Format); err != nil {
		return NewCommandError("reading table", err)
	}
	return nil
}
