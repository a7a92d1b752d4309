package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultTableVersion = "1"

type CreateTableOptions struct {
	Namespace          string
	Table              string
	Version            string
	Description        string
	VersionDescription string
	Schema             *Schema
	LifecycleState     LifecycleState
	Properties         TableProperties

	// FailIfExists makes an existing table an error.  Otherwise a new
	// version is added to it.
	FailIfExists        bool
	AutoCreateNamespace bool
}

type AlterTableOptions struct {
	Namespace string
	Table     string

	// Version defaults to the latest active version.
	Version            string
	LifecycleState     LifecycleState
	Schema             *Schema
	Description        *string
	VersionDescription *string
	Properties         TableProperties
}

func (c *Catalog) CreateTable(ctx context.Context, opts CreateTableOptions) (*TableDefinition, error) {
	if err := validateName("namespace", opts.Namespace); err != nil {
		return nil, err
	}
	if err := validateName("table", opts.Table); err != nil {
		return nil, err
	}
	version := opts.Version
	if version == "" {
		version = DefaultTableVersion
	}
	if err := validateName("table version", version); err != nil {
		return nil, err
	}
	state := opts.LifecycleState
	if state == "" {
		state = LifecycleActive
	}
	if _, err := ParseLifecycleState(string(state)); err != nil {
		return nil, err
	}
	if opts.Schema != nil {
		if err := validateSchema(opts.Schema); err != nil {
			return nil, err
		}
	}

	exists, err := c.NamespaceExists(ctx, opts.Namespace)
	if err != nil {
		return nil, err
	}
	if !exists {
		if !opts.AutoCreateNamespace {
			return nil, fmt.Errorf("%w: %s", ErrNamespaceNotFound, opts.Namespace)
		}
		if _, err := c.CreateNamespace(ctx, opts.Namespace, nil); err != nil {
			return nil, err
		}
	}

	now := c.now()
	table, err := c.loadTable(ctx, opts.Namespace, opts.Table)
	if err != nil {
		return nil, err
	}

	if table != nil {
		if opts.FailIfExists {
			return nil, fmt.Errorf("%w: %s.%s", ErrTableAlreadyExists, opts.Namespace, opts.Table)
		}
		versionExists, err := c.exists(ctx, versionKey(opts.Namespace, opts.Table, version))
		if err != nil {
			return nil, err
		}
		if versionExists {
			return nil, fmt.Errorf("%w: %s.%s version %s", ErrTableAlreadyExists, opts.Namespace, opts.Table, version)
		}
		if !opts.Properties.IsEmpty() {
			table.Properties = table.Properties.Merge(opts.Properties)
		}
	} else {
		table = &Table{
			ID:          uuid.NewString(),
			Namespace:   opts.Namespace,
			Name:        opts.Table,
			Description: opts.Description,
			Properties:  DefaultTableProperties().Merge(opts.Properties),
			CreatedAt:   now,
		}
	}
	if err := table.Properties.Validate(); err != nil {
		return nil, err
	}

	tableVersion := &TableVersion{
		Namespace:      opts.Namespace,
		Table:          opts.Table,
		Version:        version,
		Description:    opts.VersionDescription,
		LifecycleState: state,
		Schema:         opts.Schema,
		DataFiles:      []DataFile{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	table.LatestVersion = version
	if state == LifecycleActive {
		table.LatestActiveVersion = version
	}
	table.UpdatedAt = now

	if err := c.writeJSON(ctx, versionKey(opts.Namespace, opts.Table, version), tableVersion); err != nil {
		return nil, err
	}
	if err := c.writeJSON(ctx, tableKey(opts.Namespace, opts.Table), table); err != nil {
		return nil, err
	}

	log.Debug().Str("namespace", opts.Namespace).Str("table", opts.Table).Str("version", version).Msg("created table")
	return &TableDefinition{Table: table, TableVersion: tableVersion}, nil
}

func validateSchema(schema *Schema) error {
	seen := map[string]bool{}
	for _, field := range schema.Fields {
		if field.Name == "" {
			return fmt.Errorf("schema has a field with no name")
		}
		if seen[field.Name] {
			return fmt.Errorf("schema has a duplicate field %q", field.Name)
		}
		seen[field.Name] = true
		if field.Type == nil || !SupportedType(field.Type) {
			return fmt.Errorf("unsupported type for field %q", field.Name)
		}
	}
	return nil
}

func (c *Catalog) loadTable(ctx context.Context, namespace string, name string) (*Table, error) {
	table := &Table{}
	found, err := c.readJSON(ctx, tableKey(namespace, name), table)
	if err != nil || !found {
		return nil, err
	}
	return table, nil
}

func (c *Catalog) loadVersion(ctx context.Context, namespace string, table string, version string) (*TableVersion, error) {
	tableVersion := &TableVersion{}
	found, err := c.readJSON(ctx, versionKey(namespace, table, version), tableVersion)
	if err != nil || !found {
		return nil, err
	}
	if tableVersion.DataFiles == nil {
		tableVersion.DataFiles = []DataFile{}
	}
	return tableVersion, nil
}

func defaultVersion(table *Table) string {
	if table.LatestActiveVersion != "" {
		return table.LatestActiveVersion
	}
	return table.LatestVersion
}

// resolve loads a table and one of its versions, failing when either is
// missing.
func (c *Catalog) resolve(ctx context.Context, namespace string, name string, version string) (*TableDefinition, error) {
	if err := validateName("namespace", namespace); err != nil {
		return nil, err
	}
	if err := validateName("table", name); err != nil {
		return nil, err
	}

	table, err := c.loadTable(ctx, namespace, name)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, namespace, name)
	}

	if version == "" {
		version = defaultVersion(table)
	}
	tableVersion, err := c.loadVersion(ctx, namespace, name, version)
	if err != nil {
		return nil, err
	}
	if tableVersion == nil {
		return nil, fmt.Errorf("%w: %s.%s version %s", ErrTableVersionNotFound, namespace, name, version)
	}
	return &TableDefinition{Table: table, TableVersion: tableVersion}, nil
}

// GetTable returns nil when the table or the requested version does not
// exist.  An empty version selects the latest active version.
func (c *Catalog) GetTable(ctx context.Context, namespace string, name string, version string) (*TableDefinition, error) {
	definition, err := c.resolve(ctx, namespace, name, version)
	if err != nil {
		if errorIs(err, ErrTableNotFound, ErrTableVersionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return definition, nil
}

func (c *Catalog) TableExists(ctx context.Context, namespace string, name string) (bool, error) {
	if err := validateName("table", name); err != nil {
		return false, err
	}
	return c.exists(ctx, tableKey(namespace, name))
}

// ListTables returns the default version of every table in the namespace,
// or every version of one table when name is set.
func (c *Catalog) ListTables(ctx context.Context, namespace string, name string) ([]*TableDefinition, error) {
	exists, err := c.NamespaceExists(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceNotFound, namespace)
	}

	definitions := []*TableDefinition{}
	if name != "" {
		table, err := c.loadTable(ctx, namespace, name)
		if err != nil || table == nil {
			return definitions, err
		}
		versions, err := c.listDirs(ctx, versionsPrefix(namespace, name))
		if err != nil {
			return nil, err
		}
		sortVersions(versions)
		for _, version := range versions {
			tableVersion, err := c.loadVersion(ctx, namespace, name, version)
			if err != nil {
				return nil, err
			}
			if tableVersion != nil {
				definitions = append(definitions, &TableDefinition{Table: table, TableVersion: tableVersion})
			}
		}
		return definitions, nil
	}

	names, err := c.tableNames(ctx, namespace)
	if err != nil {
		return nil, err
	}
	for _, tableName := range names {
		definition, err := c.GetTable(ctx, namespace, tableName, "")
		if err != nil {
			return nil, err
		}
		if definition != nil {
			definitions = append(definitions, definition)
		}
	}
	return definitions, nil
}

// tableNames lists the tables of a namespace that still have metadata.
func (c *Catalog) tableNames(ctx context.Context, namespace string) ([]string, error) {
	dirs, err := c.listDirs(ctx, tablesPrefix(namespace))
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)

	names := []string{}
	for _, dir := range dirs {
		exists, err := c.exists(ctx, tableKey(namespace, dir))
		if err != nil {
			return nil, err
		}
		if exists {
			names = append(names, dir)
		}
	}
	return names, nil
}

// sortVersions orders numeric versions numerically and everything else
// lexically after them.
func sortVersions(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		a, aErr := strconv.Atoi(versions[i])
		b, bErr := strconv.Atoi(versions[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return strings.Compare(versions[i], versions[j]) < 0
		}
	})
}

func (c *Catalog) AlterTable(ctx context.Context, opts AlterTableOptions) (*TableDefinition, error) {
	definition, err := c.resolve(ctx, opts.Namespace, opts.Table, opts.Version)
	if err != nil {
		return nil, err
	}
	table := definition.Table
	tableVersion := definition.TableVersion
	now := c.now()

	if opts.Schema != nil {
		if mode := table.Properties.SchemaEvolutionMode; mode != nil && *mode == SchemaEvolutionDisabled {
			return nil, fmt.Errorf("%w: %s.%s", ErrSchemaEvolutionDisabled, opts.Namespace, opts.Table)
		}
		if err := validateSchema(opts.Schema); err != nil {
			return nil, err
		}
		tableVersion.Schema = opts.Schema
	}

	if !opts.Properties.IsEmpty() {
		properties := table.Properties.Merge(opts.Properties)
		if err := properties.Validate(); err != nil {
			return nil, err
		}
		table.Properties = properties
	}

	if opts.Description != nil {
		table.Description = *opts.Description
	}
	switch {
	case opts.VersionDescription != nil:
		tableVersion.Description = *opts.VersionDescription
	case opts.Description != nil:
		tableVersion.Description = *opts.Description
	}

	if opts.LifecycleState != "" {
		state, err := ParseLifecycleState(string(opts.LifecycleState))
		if err != nil {
			return nil, err
		}
		tableVersion.LifecycleState = state
		if err := c.updateLatestActive(ctx, table, tableVersion); err != nil {
			return nil, err
		}
	}

	tableVersion.UpdatedAt = now
	table.UpdatedAt = now

	if err := c.writeJSON(ctx, versionKey(opts.Namespace, opts.Table, tableVersion.Version), tableVersion); err != nil {
		return nil, err
	}
	if err := c.writeJSON(ctx, tableKey(opts.Namespace, opts.Table), table); err != nil {
		return nil, err
	}

	log.Debug().Str("namespace", opts.Namespace).Str("table", opts.Table).Str("version", tableVersion.Version).Msg("altered table")
	return definition, nil
}

// updateLatestActive keeps the table's latest active version pointing at
// the highest version in the ACTIVE state.
func (c *Catalog) updateLatestActive(ctx context.Context, table *Table, changed *TableVersion) error {
	versions, err := c.listDirs(ctx, versionsPrefix(table.Namespace, table.Name))
	if err != nil {
		return err
	}
	sortVersions(versions)

	latestActive := ""
	for _, version := range versions {
		state := LifecycleState("")
		if version == changed.Version {
			state = changed.LifecycleState
		} else {
			tableVersion, err := c.loadVersion(ctx, table.Namespace, table.Name, version)
			if err != nil {
				return err
			}
			if tableVersion == nil {
				continue
			}
			state = tableVersion.LifecycleState
		}
		if state == LifecycleActive {
			latestActive = version
		}
	}
	table.LatestActiveVersion = latestActive
	return nil
}

// DropTable deletes the table metadata.  Data files are only deleted when
// purge is set.
func (c *Catalog) DropTable(ctx context.Context, namespace string, name string, purge bool) error {
	if err := validateName("namespace", namespace); err != nil {
		return err
	}
	exists, err := c.TableExists(ctx, namespace, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s.%s", ErrTableNotFound, namespace, name)
	}

	if purge {
		if err := c.deletePrefix(ctx, tablePrefix(namespace, name)); err != nil {
			return err
		}
	} else {
		keys, err := c.listKeys(ctx, tablePrefix(namespace, name))
		if err != nil {
			return err
		}
		for _, key := range keys {
			if !strings.HasSuffix(key, "/"+tableFile) && !strings.HasSuffix(key, "/"+versionFile) {
				continue
			}
			if err := c.bucket.Delete(ctx, key); err != nil && !isNotFound(err) {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}
	}

	log.Debug().Str("namespace", namespace).Str("table", name).Bool("purge", purge).Msg("dropped table")
	return nil
}
