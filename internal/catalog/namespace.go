package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

func (c *Catalog) CreateNamespace(ctx context.Context, name string, properties map[string]string) (*Namespace, error) {
	if err := validateName("namespace", name); err != nil {
		return nil, err
	}

	exists, err := c.NamespaceExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceAlreadyExists, name)
	}

	now := c.now()
	namespace := &Namespace{
		Name:       name,
		Properties: properties,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.writeJSON(ctx, namespaceKey(name), namespace); err != nil {
		return nil, err
	}
	log.Debug().Str("namespace", name).Msg("created namespace")
	return namespace, nil
}

// GetNamespace returns nil when the namespace does not exist.
func (c *Catalog) GetNamespace(ctx context.Context, name string) (*Namespace, error) {
	if err := validateName("namespace", name); err != nil {
		return nil, err
	}

	namespace := &Namespace{}
	found, err := c.readJSON(ctx, namespaceKey(name), namespace)
	if err != nil || !found {
		return nil, err
	}
	return namespace, nil
}

func (c *Catalog) NamespaceExists(ctx context.Context, name string) (bool, error) {
	if err := validateName("namespace", name); err != nil {
		return false, err
	}
	return c.exists(ctx, namespaceKey(name))
}

func (c *Catalog) ListNamespaces(ctx context.Context) ([]*Namespace, error) {
	names, err := c.listDirs(ctx, namespacesDir+"/")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	namespaces := []*Namespace{}
	for _, name := range names {
		namespace := &Namespace{}
		found, err := c.readJSON(ctx, namespaceKey(name), namespace)
		if err != nil {
			return nil, err
		}
		if found {
			namespaces = append(namespaces, namespace)
		}
	}
	return namespaces, nil
}

// AlterNamespace renames the namespace when newName is set and replaces its
// properties when properties is non-nil.
func (c *Catalog) AlterNamespace(ctx context.Context, name string, newName string, properties map[string]string) (*Namespace, error) {
	namespace, err := c.GetNamespace(ctx, name)
	if err != nil {
		return nil, err
	}
	if namespace == nil {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceNotFound, name)
	}

	if properties != nil {
		namespace.Properties = properties
	}
	namespace.UpdatedAt = c.now()

	if newName == "" || newName == name {
		if err := c.writeJSON(ctx, namespaceKey(name), namespace); err != nil {
			return nil, err
		}
		return namespace, nil
	}

	if err := validateName("namespace", newName); err != nil {
		return nil, err
	}
	exists, err := c.NamespaceExists(ctx, newName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceAlreadyExists, newName)
	}

	if err := c.renameNamespace(ctx, name, newName); err != nil {
		return nil, err
	}

	namespace.Name = newName
	if err := c.writeJSON(ctx, namespaceKey(newName), namespace); err != nil {
		return nil, err
	}
	if err := c.deletePrefix(ctx, namespacePrefix(name)); err != nil {
		return nil, err
	}
	log.Debug().Str("namespace", name).Str("new_name", newName).Msg("renamed namespace")
	return namespace, nil
}

// renameNamespace copies every table object to the new namespace, rewriting
// the documents that carry the namespace name.
func (c *Catalog) renameNamespace(ctx context.Context, from string, to string) error {
	oldPrefix := namespacePrefix(from)
	keys, err := c.listKeys(ctx, tablesPrefix(from))
	if err != nil {
		return err
	}

	for _, key := range keys {
		newKey := namespacePrefix(to) + strings.TrimPrefix(key, oldPrefix)
		switch {
		case strings.HasSuffix(key, "/"+tableFile):
			table := &Table{}
			if _, err := c.readJSON(ctx, key, table); err != nil {
				return err
			}
			table.Namespace = to
			if err := c.writeJSON(ctx, newKey, table); err != nil {
				return err
			}
		case strings.HasSuffix(key, "/"+versionFile):
			version := &TableVersion{}
			if _, err := c.readJSON(ctx, key, version); err != nil {
				return err
			}
			version.Namespace = to
			if err := c.writeJSON(ctx, newKey, version); err != nil {
				return err
			}
		default:
			if err := c.bucket.Copy(ctx, newKey, key, nil); err != nil {
				return fmt.Errorf("failed to copy %s: %w", key, err)
			}
		}
	}
	return nil
}

// DropNamespace refuses to drop a namespace that still has tables unless
// purge is set, in which case the tables and their data are deleted too.
func (c *Catalog) DropNamespace(ctx context.Context, name string, purge bool) error {
	exists, err := c.NamespaceExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNamespaceNotFound, name)
	}

	if !purge {
		tables, err := c.tableNames(ctx, name)
		if err != nil {
			return err
		}
		if len(tables) > 0 {
			return fmt.Errorf("%w: %s has %d table(s), use purge to drop them", ErrNamespaceNotEmpty, name, len(tables))
		}
	}

	if err := c.deletePrefix(ctx, namespacePrefix(name)); err != nil {
		return err
	}
	log.Debug().Str("namespace", name).Bool("purge", purge).Msg("dropped namespace")
	return nil
}
