// Package catalog stores namespaces, tables and table versions as JSON
// documents in a blob bucket rooted at <root>/<name>.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/IvanPartsunev/deltacat-cli/internal/storage"
	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

var (
	ErrNamespaceNotFound       = errors.New("namespace not found")
	ErrNamespaceAlreadyExists  = errors.New("namespace already exists")
	ErrNamespaceNotEmpty       = errors.New("namespace is not empty")
	ErrTableNotFound           = errors.New("table not found")
	ErrTableAlreadyExists      = errors.New("table already exists")
	ErrTableVersionNotFound    = errors.New("table version not found")
	ErrSchemaEvolutionDisabled = errors.New("schema evolution is disabled")
	ErrInvalidName             = errors.New("invalid name")
	ErrNotInitialized          = errors.New("catalog not initialized")
)

const (
	catalogKey      = "catalog.json"
	namespacesDir   = "namespaces"
	namespaceFile   = "namespace.json"
	tablesDir       = "tables"
	tableFile       = "table.json"
	versionsDir     = "versions"
	versionFile     = "version.json"
	dataDir         = "data"
	contentTypeJSON = "application/json"
)

type Info struct {
	Name      string    `json:"name"`
	Root      string    `json:"root"`
	CreatedAt time.Time `json:"created_at"`
}

type Catalog struct {
	name   string
	root   string
	bucket *blob.Bucket
	now    func() time.Time
}

// Open connects to an initialized catalog.  It fails with ErrNotInitialized
// when the catalog marker is missing.
func Open(ctx context.Context, name string, root string) (*Catalog, error) {
	c, err := connect(ctx, name, root, false)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s at %s", ErrNotInitialized, name, root)
	}
	if err != nil {
		return nil, err
	}
	if _, err := c.Info(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Create connects to the catalog location and writes the catalog marker if
// it does not exist yet.  It reports whether the catalog was created.
func Create(ctx context.Context, name string, root string) (*Catalog, bool, error) {
	c, err := connect(ctx, name, root, true)
	if err != nil {
		return nil, false, err
	}

	_, err = c.Info(ctx)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, ErrNotInitialized) {
		_ = c.Close()
		return nil, false, err
	}

	info := &Info{Name: c.name, Root: c.root, CreatedAt: c.now()}
	if err := c.writeJSON(ctx, catalogKey, info); err != nil {
		_ = c.Close()
		return nil, false, err
	}
	log.Debug().Str("catalog", c.name).Msg("initialized catalog")
	return c, true, nil
}

func connect(ctx context.Context, name string, root string, create bool) (*Catalog, error) {
	if err := validateName("catalog", name); err != nil {
		return nil, err
	}

	loc, err := storage.ParseLocation(root)
	if err != nil {
		return nil, err
	}
	loc = loc.Join(name)

	open := storage.OpenBucket
	if create {
		open = storage.CreateBucket
	}
	bucket, err := open(ctx, loc)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("catalog", name).Str("location", loc.String()).Msg("opened catalog")
	return &Catalog{
		name:   name,
		root:   root,
		bucket: bucket,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (c *Catalog) Name() string {
	return c.name
}

func (c *Catalog) Root() string {
	return c.root
}

func (c *Catalog) Close() error {
	return c.bucket.Close()
}

// Info reads the catalog marker.
func (c *Catalog) Info(ctx context.Context) (*Info, error) {
	info := &Info{}
	found, err := c.readJSON(ctx, catalogKey, info)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s at %s", ErrNotInitialized, c.name, c.root)
	}
	return info, nil
}

func validateName(kind string, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalidName, kind)
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("%w: %s name %q", ErrInvalidName, kind, name)
	}
	return nil
}

func errorIs(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}

// readJSON decodes the object at key into v.  A missing object is not an
// error.
func (c *Catalog) readJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.bucket.ReadAll(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Catalog) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.write(ctx, key, bytes.NewReader(data), contentTypeJSON)
}

func (c *Catalog) write(ctx context.Context, key string, r io.Reader, contentType string) error {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := c.bucket.Upload(ctx, key, r, opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (c *Catalog) exists(ctx context.Context, key string) (bool, error) {
	exists, err := c.bucket.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return exists, nil
}

// listDirs returns the names of the immediate children of prefix.
func (c *Catalog) listDirs(ctx context.Context, prefix string) ([]string, error) {
	names := []string{}
	iter := c.bucket.List(&blob.ListOptions{Prefix: prefix, Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		if !obj.IsDir {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/"))
	}
	return names, nil
}

// listKeys returns every object key below prefix.
func (c *Catalog) listKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	iter := c.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (c *Catalog) deletePrefix(ctx context.Context, prefix string) error {
	keys, err := c.listKeys(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := c.bucket.Delete(ctx, key); err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	log.Debug().Str("prefix", prefix).Int("objects", len(keys)).Msg("deleted objects")
	return nil
}

func namespacePrefix(namespace string) string {
	return namespacesDir + "/" + namespace + "/"
}

func namespaceKey(namespace string) string {
	return namespacePrefix(namespace) + namespaceFile
}

func tablesPrefix(namespace string) string {
	return namespacePrefix(namespace) + tablesDir + "/"
}

func tablePrefix(namespace string, table string) string {
	return tablesPrefix(namespace) + table + "/"
}

func tableKey(namespace string, table string) string {
	return tablePrefix(namespace, table) + tableFile
}

func versionsPrefix(namespace string, table string) string {
	return tablePrefix(namespace, table) + versionsDir + "/"
}

func versionPrefix(namespace string, table string, version string) string {
	return versionsPrefix(namespace, table) + version + "/"
}

func versionKey(namespace string, table string, version string) string {
	return versionPrefix(namespace, table, version) + versionFile
}
