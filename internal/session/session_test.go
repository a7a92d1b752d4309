package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/IvanPartsunev/deltacat-cli/internal/catalog"
	"github.com/IvanPartsunev/deltacat-cli/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, mode session.ErrorMode) *session.Store {
	return session.NewStore(filepath.Join(t.TempDir(), "session.json"), mode)
}

func TestSetThenCurrent(t *testing.T) {
	store := newStore(t, session.ErrorModeStrict)

	_, err := store.Current()
	assert.ErrorIs(t, err, session.ErrNotConfigured)

	require.NoError(t, store.Set("c", "r"))
	pointer, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, session.Pointer{Name: "c", Root: "r"}, pointer)

	require.NoError(t, store.Set("d", "s3://bucket/root"))
	pointer, err = store.Current()
	require.NoError(t, err)
	assert.Equal(t, session.Pointer{Name: "d", Root: "s3://bucket/root"}, pointer, "last write wins")

	assert.Error(t, store.Set("", "r"))
	assert.Error(t, store.Set("c", "  "))
}

func TestClear(t *testing.T) {
	store := newStore(t, session.ErrorModeStrict)

	require.NoError(t, store.Clear(), "clearing an empty session is not an error")

	require.NoError(t, store.Set("c", "r"))
	require.NoError(t, store.Clear())

	_, err := store.Current()
	assert.ErrorIs(t, err, session.ErrNotConfigured)

	pointers, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []session.Pointer{{Name: "c", Root: "r"}}, pointers, "registry survives a clear")
}

func TestClearRemovesEmptyFile(t *testing.T) {
	store := newStore(t, session.ErrorModeStrict)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"name": "c", "root": "r"}`), 0o644))

	require.NoError(t, store.Clear())
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestMissingField(t *testing.T) {
	store := newStore(t, session.ErrorModeStrict)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"name": "c"}`), 0o644))

	_, err := store.Current()
	assert.ErrorIs(t, err, session.ErrNotConfigured)
}

func TestRegistry(t *testing.T) {
	store := newStore(t, session.ErrorModeStrict)

	require.NoError(t, store.Set("prod", "s3://prod"))
	require.NoError(t, store.Set("dev", "/tmp/dev"))
	require.NoError(t, store.Set("staging", "gs://staging"))

	pointers, err := store.List()
	require.NoError(t, err)
	require.Len(t, pointers, 3)
	assert.Equal(t, "dev", pointers[0].Name)
	assert.Equal(t, "staging", pointers[2].Name)

	pointer, err := store.Switch("prod")
	require.NoError(t, err)
	assert.Equal(t, "s3://prod", pointer.Root)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "prod", current.Name)

	_, err = store.Switch("missing")
	assert.ErrorIs(t, err, session.ErrUnknownCatalog)

	next, err := store.Remove("prod")
	require.NoError(t, err)
	assert.Equal(t, session.Pointer{Name: "dev", Root: "/tmp/dev"}, next, "first remaining catalog becomes current")

	next, err = store.Remove("staging")
	require.NoError(t, err)
	assert.Equal(t, "dev", next.Name, "removing another catalog keeps the current one")

	next, err = store.Remove("dev")
	require.NoError(t, err)
	assert.False(t, next.Configured())

	_, err = store.Current()
	assert.ErrorIs(t, err, session.ErrNotConfigured)

	_, err = store.Remove("dev")
	assert.ErrorIs(t, err, session.ErrUnknownCatalog)
}

func TestErrorModes(t *testing.T) {
	cases := []struct {
		name    string
		mode    session.ErrorMode
		content string
		err     string
	}{
		{
			name:    "strict invalid json",
			mode:    session.ErrorModeStrict,
			content: `{"name": `,
			err:     "invalid session file",
		},
		{
			name:    "strict wrong type",
			mode:    session.ErrorModeStrict,
			content: `{"name": 42, "root": "r"}`,
			err:     "name is invalid",
		},
		{
			name:    "strict incomplete registry entry",
			mode:    session.ErrorModeStrict,
			content: `{"catalogs": {"a": {"name": "a"}}}`,
			err:     "invalid session file",
		},
		{
			name:    "warn",
			mode:    session.ErrorModeWarn,
			content: `{"name": `,
		},
		{
			name:    "silent",
			mode:    session.ErrorModeSilent,
			content: `[]`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := newStore(t, c.mode)
			require.NoError(t, os.WriteFile(store.Path(), []byte(c.content), 0o644))

			_, err := store.Current()
			if c.err != "" {
				assert.ErrorIs(t, err, session.ErrInvalidFile)
				assert.ErrorContains(t, err, c.err)
				return
			}
			assert.ErrorIs(t, err, session.ErrNotConfigured)
		})
	}
}

func TestSetCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	store := session.NewStore(path, "")

	require.NoError(t, store.Set("c", "r"))
	_, err := os.Stat(path)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestContextCachesHandle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, session.ErrorModeStrict)

	root := t.TempDir()
	for _, name := range []string{"one", "two"} {
		c, _, err := catalog.Create(ctx, name, root)
		require.NoError(t, err)
		require.NoError(t, c.Close())
	}

	opened := 0
	opener := func(ctx context.Context, name string, root string) (*catalog.Catalog, error) {
		opened += 1
		return catalog.Open(ctx, name, root)
	}
	sessionContext := session.NewContext(store, opener)
	defer sessionContext.Close()

	_, err := sessionContext.Catalog(ctx)
	assert.ErrorIs(t, err, session.ErrNotConfigured)
	assert.Equal(t, 0, opened, "no catalog is opened without a pointer")

	require.NoError(t, sessionContext.Set("one", root))

	first, err := sessionContext.Catalog(ctx)
	require.NoError(t, err)
	second, err := sessionContext.Catalog(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, opened)

	require.NoError(t, sessionContext.Set("one", root))
	third, err := sessionContext.Catalog(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "set replaces the cached handle")
	assert.Equal(t, 2, opened)

	require.NoError(t, store.Set("two", root))
	fourth, err := sessionContext.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", fourth.Name(), "a changed pointer replaces the cached handle")
	assert.Equal(t, 3, opened)

	require.NoError(t, sessionContext.Clear())
	_, err = sessionContext.Catalog(ctx)
	assert.ErrorIs(t, err, session.ErrNotConfigured)
}

func TestContextUninitializedCatalog(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	sessionContext := session.NewContext(newStore(t, session.ErrorModeStrict), nil)
	defer sessionContext.Close()

	require.NoError(t, sessionContext.Set("ghost", root))
	_, err := sessionContext.Catalog(ctx)
	assert.ErrorIs(t, err, catalog.ErrNotInitialized)

	_, err = os.Stat(filepath.Join(root, "ghost"))
	assert.True(t, os.IsNotExist(err), "resolving the catalog does not create it")
}
