package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Location identifies a directory-like prefix in a bucket.  Local paths and
// file:// URLs have an empty Scheme and a Dir; everything else is opened
// through the gocloud URL mux.
type Location struct {
	Scheme string
	Bucket string
	Query  string
	Prefix string
	Dir    string
}

// ParseLocation accepts a local path or a URL of the form
// <scheme>://<bucket>/<prefix>[?<options>].
func ParseLocation(root string) (*Location, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("empty location")
	}

	if !strings.Contains(root, "://") {
		dir, err := expandHome(root)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", root, err)
		}
		return &Location{Dir: abs}, nil
	}

	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", root, err)
	}

	if u.Scheme == "file" {
		return &Location{Dir: filepath.FromSlash(u.Path)}, nil
	}

	return &Location{
		Scheme: u.Scheme,
		Bucket: u.Host,
		Query:  u.RawQuery,
		Prefix: strings.Trim(u.Path, "/"),
	}, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Join returns a new location nested below this one.
func (l *Location) Join(elem ...string) *Location {
	joined := *l
	if l.Dir != "" {
		joined.Dir = filepath.Join(append([]string{l.Dir}, elem...)...)
		return &joined
	}
	joined.Prefix = strings.Trim(path.Join(append([]string{l.Prefix}, elem...)...), "/")
	return &joined
}

func (l *Location) String() string {
	if l.Dir != "" {
		return l.Dir
	}
	s := fmt.Sprintf("%s://%s", l.Scheme, l.Bucket)
	if l.Prefix != "" {
		s += "/" + l.Prefix
	}
	if l.Query != "" {
		s += "?" + l.Query
	}
	return s
}

// ResolveRoot returns the canonical form of a catalog root so that a
// relative local path means the same directory from any working directory.
func ResolveRoot(root string) (string, error) {
	loc, err := ParseLocation(root)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// CreateBucket is OpenBucket for a location that may not exist yet.  Local
// directories are created when missing.
func CreateBucket(ctx context.Context, loc *Location) (*blob.Bucket, error) {
	if loc.Dir != "" {
		if err := os.MkdirAll(loc.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s, %w", loc.Dir, err)
		}
	}
	return OpenBucket(ctx, loc)
}

// OpenBucket opens a bucket whose keys are relative to the location.  A
// missing local directory is an error wrapping os.ErrNotExist.
func OpenBucket(ctx context.Context, loc *Location) (*blob.Bucket, error) {
	if loc.Dir != "" {
		if _, err := os.Stat(loc.Dir); err != nil {
			return nil, fmt.Errorf("failed to open bucket %s, %w", loc.Dir, err)
		}
		bucket, err := fileblob.OpenBucket(loc.Dir, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open bucket %s, %w", loc.Dir, err)
		}
		return bucket, nil
	}

	bucketURL := fmt.Sprintf("%s://%s", loc.Scheme, loc.Bucket)
	if loc.Query != "" {
		bucketURL += "?" + loc.Query
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s, %w", bucketURL, err)
	}
	if loc.Prefix == "" {
		return bucket, nil
	}
	return blob.PrefixedBucket(bucket, loc.Prefix+"/"), nil
}
