package storage

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
)

// BlobReader gives random access to a single object so that parquet
// footers can be read without downloading the whole file.
type BlobReader struct {
	ctx    context.Context
	bucket *blob.Bucket
	key    string
	size   int64
	offset int64
}

func NewBlobReader(ctx context.Context, bucket *blob.Bucket, key string) (*BlobReader, error) {
	attrs, err := bucket.Attributes(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get attributes for %s, %w", key, err)
	}

	reader := &BlobReader{
		ctx:    ctx,
		bucket: bucket,
		key:    key,
		size:   attrs.Size,
	}

	return reader, nil
}

func (r *BlobReader) Size() int64 {
	return r.size
}

func (r *BlobReader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekCurrent:
		offset = r.offset + offset
	case io.SeekEnd:
		offset = r.size + offset
	}

	if offset < 0 {
		return 0, fmt.Errorf("attempt to seek to a negative offset: %d", offset)
	}
	r.offset = offset
	return offset, nil
}

func (r *BlobReader) ReadAt(data []byte, offset int64) (int, error) {
	_, err := r.Seek(offset, io.SeekStart)
	if err != nil {
		return 0, err
	}
	return r.readFull(data)
}

func (r *BlobReader) Read(data []byte) (int, error) {
	return r.readFull(data)
}

func (r *BlobReader) readFull(data []byte) (int, error) {
	if r.offset >= r.size {
		return 0, io.EOF
	}
	rangeReader, err := r.bucket.NewRangeReader(r.ctx, r.key, r.offset, int64(len(data)), nil)
	if err != nil {
		return 0, err
	}
	defer rangeReader.Close()

	total := 0
	for {
		n, err := rangeReader.Read(data[total:])
		total = total + n
		r.offset += int64(n)
		if total >= len(data) {
			break
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Close is a no-op; the bucket belongs to the caller.
func (r *BlobReader) Close() error {
	return nil
}
