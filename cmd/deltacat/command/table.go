package command

import (
	"fmt"

	"github.com/IvanPartsunev/deltacat-cli/internal/catalog"
	"github.com/IvanPartsunev/deltacat-cli/internal/console"
	"github.com/IvanPartsunev/deltacat-cli/internal/schema"
)

type TableCmd struct {
	Create TableCreateCmd `cmd:"" help:"Create an empty table with the given name in the given namespace."`
	Alter  TableAlterCmd  `cmd:"" help:"Alter the table or table version definition."`
	Drop   TableDropCmd   `cmd:"" help:"Drop the table with the given name in the given namespace."`
	Get    TableGetCmd    `cmd:"" help:"Get the table definition with the given name in the given namespace."`
	List   TableListCmd   `cmd:"" help:"List the tables of a namespace, or the versions of one table."`
	Read   TableReadCmd   `cmd:"" help:"Read the rows of a table."`
	Append TableAppendCmd `cmd:"" help:"Append JSON rows to a table as a new data file."`
}

// PropertyFlags are the table property flags shared by create and alter.
type PropertyFlags struct {
	ReadOptimizationLevel               *string `help:"Read optimization level (${readOptimization}).  NONE disables automatic compaction." placeholder:"LEVEL"`
	DefaultCompactionHashBucketCount    *int    `help:"Default hash bucket count for compaction." placeholder:"N"`
	RecordsPerCompactedFile             *int    `help:"Maximum number of records per compacted file." placeholder:"N"`
	AppendedFileCountCompactionTrigger  *int    `help:"Number of appended files that triggers compaction." placeholder:"N"`
	AppendedDeltaCountCompactionTrigger *int    `help:"Number of appended deltas that triggers compaction." placeholder:"N"`
	SchemaEvolutionMode                 *string `help:"Schema evolution mode (${schemaEvolution})." placeholder:"MODE"`
	DefaultSchemaConsistencyType        *string `help:"Default schema consistency type (${schemaConsistency})." placeholder:"TYPE"`
}

func (f PropertyFlags) options() schema.PropertyOptions {
	return schema.PropertyOptions{
		ReadOptimizationLevel:               f.ReadOptimizationLevel,
		DefaultCompactionHashBucketCount:    f.DefaultCompactionHashBucketCount,
		RecordsPerCompactedFile:             f.RecordsPerCompactedFile,
		AppendedFileCountCompactionTrigger:  f.AppendedFileCountCompactionTrigger,
		AppendedDeltaCountCompactionTrigger: f.AppendedDeltaCountCompactionTrigger,
		SchemaEvolutionMode:                 f.SchemaEvolutionMode,
		DefaultSchemaConsistencyType:        f.DefaultSchemaConsistencyType,
	}
}

func tableNotFound(namespace string, name string, version string) error {
	if version != "" {
		return fmt.Errorf("%w: %s.%s version %s", catalog.ErrTableNotFound, namespace, name, version)
	}
	return fmt.Errorf("%w: %s.%s", catalog.ErrTableNotFound, namespace, name)
}

type TableCreateCmd struct {
	Name                    string `help:"Table name to create."`
	Namespace               string `help:"Namespace of the table.  Created when missing."`
	TableDescription        string `help:"Description for the table."`
	TableVersion            string `help:"Table version.  Defaults to ${defaultTableVersion}."`
	TableVersionDescription string `help:"Description for the table version."`
	Schema                  string `help:"Schema as name:type pairs, e.g. \"id:int64,name:string\"."`
	MergeKeys               string `help:"Comma separated column names used as merge keys."`
	LifecycleState          string `help:"Lifecycle state (${lifecycleStates})." default:"ACTIVE"`
	Compaction              bool   `help:"Allow automatic compaction.  Without it merge keys are dropped and the read optimization level is NONE." default:"true" negatable:""`
	ShowTypesHelp           bool   `help:"Show the supported schema types and exit."`

	PropertyFlags `embed:""`
}

func (c *TableCreateCmd) Run(rt *Runtime) error {
	out := rt.Console
	if c.ShowTypesHelp {
		showTypesHelp(out)
		return nil
	}
	if err := missingFlags(map[string]string{"name": c.Name, "namespace": c.Namespace}); err != nil {
		return NewCommandError("creating table", err)
	}

	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	state, err := catalog.ParseLifecycleState(c.LifecycleState)
	if err != nil {
		return NewCommandError("creating table", err)
	}

	options := c.options()
	mergeKeys := schema.ParseList(c.MergeKeys)
	if !c.Compaction {
		mergeKeys = nil
		level := string(catalog.ReadOptimizationNone)
		options.ReadOptimizationLevel = &level
		out.Warn("Compaction is disabled, merge keys are not set")
	}

	var tableSchema *catalog.Schema
	if columns := schema.ParseColumns(c.Schema); len(columns) > 0 {
		tableSchema, err = schema.Build(columns, mergeKeys)
		if err != nil {
			return NewCommandError("creating table", err)
		}
	} else if len(mergeKeys) > 0 {
		return NewCommandError("creating table", fmt.Errorf("merge keys require a schema"))
	}

	out.Loading("Creating table %q", c.Name)
	definition, err := handle.CreateTable(rt.Context, catalog.CreateTableOptions{
		Namespace:           c.Namespace,
		Table:               c.Name,
		Version:             c.TableVersion,
		Description:         c.TableDescription,
		VersionDescription:  c.TableVersionDescription,
		Schema:              tableSchema,
		LifecycleState:      state,
		Properties:          schema.Properties(options, catalog.TableProperties{}),
		FailIfExists:        true,
		AutoCreateNamespace: true,
	})
	if err != nil {
		return NewCommandError("creating table", err)
	}
	if err := out.JSON(out.Symbol(console.Table)+" Table", definition); err != nil {
		return err
	}
	out.Success("Table %q created successfully", c.Name)
	return nil
}

func showTypesHelp(out *console.Console) {
	rows := [][]string{}
	for _, token := range schema.TypeTokens() {
		rows = append(rows, []string{token, schema.ArrowType(token).String()})
	}
	out.Rows([]string{"Type", "Stored as"}, rows)
	out.Info("Unknown types are stored as %s", schema.ArrowType(schema.DefaultToken))
}

type TableAlterCmd struct {
	Name                    string  `required:"" help:"Name of the table to alter."`
	Namespace               string  `required:"" help:"Namespace of the table."`
	TableVersion            string  `help:"Table version to alter.  Defaults to the latest active version."`
	LifecycleState          string  `help:"New lifecycle state (${lifecycleStates})."`
	SchemaUpdates           string  `help:"Columns to add or retype as name:type pairs, e.g. \"last_login:timestamp[s],status:string\"."`
	RemoveColumns           string  `help:"Comma separated column names to remove."`
	MergeKeys               string  `help:"Comma separated column names that replace the merge keys."`
	TableDescription        *string `help:"New description for the table."`
	TableVersionDescription *string `help:"New description for the table version.  Defaults to the table description."`

	PropertyFlags `embed:""`
}

func (c *TableAlterCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	out := rt.Console
	out.Loading("Altering table %q...", c.Name)
	definition, err := handle.GetTable(rt.Context, c.Namespace, c.Name, c.TableVersion)
	if err != nil {
		return NewCommandError("altering table", err)
	}
	if definition == nil {
		return NewCommandError("altering table", tableNotFound(c.Namespace, c.Name, c.TableVersion))
	}

	opts := catalog.AlterTableOptions{
		Namespace:          c.Namespace,
		Table:              c.Name,
		Version:            c.TableVersion,
		Description:        c.TableDescription,
		VersionDescription: c.TableVersionDescription,
	}
	if c.LifecycleState != "" {
		state, err := catalog.ParseLifecycleState(c.LifecycleState)
		if err != nil {
			return NewCommandError("altering table", err)
		}
		opts.LifecycleState = state
	}

	updates := schema.ParseColumns(c.SchemaUpdates)
	removeColumns := schema.ParseList(c.RemoveColumns)
	mergeKeys := schema.ParseList(c.MergeKeys)
	if len(updates) > 0 || len(removeColumns) > 0 || len(mergeKeys) > 0 {
		opts.Schema, err = schema.Update(definition.TableVersion.Schema, updates, removeColumns, mergeKeys)
		if err != nil {
			return NewCommandError("altering table", err)
		}
	}

	if options := c.options(); options.Any() {
		opts.Properties = schema.Properties(options, definition.Table.Properties)
	}

	altered, err := handle.AlterTable(rt.Context, opts)
	if err != nil {
		return NewCommandError("altering table", err)
	}
	out.Success("Table %q altered successfully.", c.Name)
	return out.JSON(out.Symbol(console.Table)+" Table", altered)
}

type TableDropCmd struct {
	Name      string `required:"" help:"Table name to drop."`
	Namespace string `required:"" help:"Namespace of the table."`
	Purge     bool   `help:"Also delete the data files of the table."`
	Yes       bool   `short:"y" help:"Drop without asking for confirmation."`
}

func (c *TableDropCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}
	if err := confirm(rt, c.Yes, fmt.Sprintf("Drop table %q in namespace %q?", c.Name, c.Namespace)); err != nil {
		return err
	}

	out := rt.Console
	out.Loading("Dropping table %q in namespace %q. Purge: %t...", c.Name, c.Namespace, c.Purge)
	if err := handle.DropTable(rt.Context, c.Namespace, c.Name, c.Purge); err != nil {
		return NewCommandError("dropping table", err)
	}
	out.Success("Table %q dropped successfully", c.Name)
	return nil
}

type TableGetCmd struct {
	Name         string `arg:"" help:"Table name to get."`
	Namespace    string `required:"" help:"Namespace of the table."`
	TableVersion string `help:"Table version to get.  Defaults to the latest active version."`
}

func (c *TableGetCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	out := rt.Console
	out.Loading("Get table %q", c.Name)
	definition, err := handle.GetTable(rt.Context, c.Namespace, c.Name, c.TableVersion)
	if err != nil {
		return NewCommandError("getting table", err)
	}
	if definition == nil {
		out.Empty("No table with name %s found in namespace: %s in catalog: %s", c.Name, c.Namespace, handle.Name())
		return nil
	}
	if err := out.JSON(out.Symbol(console.Table)+" Table", definition); err != nil {
		return err
	}
	out.Success("Table %q retrieved successfully", c.Name)
	return nil
}

type TableListCmd struct {
	Namespace string `required:"" help:"Namespace to list tables from."`
	Table     string `help:"List the versions of this table instead of the latest version of each table."`
}

func (c *TableListCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	out := rt.Console
	out.Loading("List tables in namespace: %s", c.Namespace)
	definitions, err := handle.ListTables(rt.Context, c.Namespace, c.Table)
	if err != nil {
		return NewCommandError("listing tables", err)
	}
	if len(definitions) == 0 {
		out.Empty("No tables found in namespace: %s in catalog: %s", c.Namespace, handle.Name())
		return nil
	}
	for _, definition := range definitions {
		if err := out.JSON(out.Symbol(console.Table)+" Table", definition); err != nil {
			return err
		}
	}
	if c.Table != "" {
		out.Success("Found %d version(s) of table %q", len(definitions), c.Table)
	} else {
		out.Success("Found %d table(s)", len(definitions))
	}
	return nil
}
