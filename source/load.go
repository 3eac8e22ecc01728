package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/termcluster/blobstore"
	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/resource"
)

type options struct {
	builder     []centroid.BuilderOption
	controller  *resource.Controller
	compression *Compression
}

// Option configures Load.
type Option func(*options)

// WithNormalizer sets the term normalizer bound to the loaded table.
func WithNormalizer(n centroid.Normalizer) Option {
	return func(o *options) {
		o.builder = append(o.builder, centroid.WithNormalizer(n))
	}
}

// WithStrictCoverage fails the load when any cluster has no records.
func WithStrictCoverage() Option {
	return func(o *options) {
		o.builder = append(o.builder, centroid.WithStrictCoverage())
	}
}

// WithController throttles reads through the controller's IO limit.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithCompression overrides the compression inferred from the blob name.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = &c
	}
}

// Load reads the named centroid file from store and builds a k-cluster table.
// Any failure (missing blob, unreadable data, malformed record, out-of-range
// cluster) is returned; callers treat it as fatal for the worker.
func Load(ctx context.Context, store blobstore.BlobStore, name string, k int, optFns ...Option) (*centroid.Table, error) {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	comp := CompressionFor(name)
	if o.compression != nil {
		comp = *o.compression
	}

	r, closeBlob, err := open(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer closeBlob()

	if o.controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, o.controller)
	}

	dr, closeDec, err := decompress(r, comp)
	if err != nil {
		return nil, fmt.Errorf("%s decoder for %s: %w", comp, name, err)
	}
	defer closeDec()

	return Read(dr, k, o.builder...)
}

// Read parses an uncompressed centroid stream into a k-cluster table.
func Read(r io.Reader, k int, optFns ...centroid.BuilderOption) (*centroid.Table, error) {
	b := centroid.NewBuilder(k, optFns...)
	if _, err := Parse(r, b); err != nil {
		return nil, err
	}
	return b.Build()
}

func open(ctx context.Context, store blobstore.BlobStore, name string) (io.Reader, func(), error) {
	if d, ok := store.(blobstore.Downloader); ok {
		data, err := d.Download(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		return bytes.NewReader(data), func() {}, nil
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return blobstore.NewReader(ctx, blob), func() { _ = blob.Close() }, nil
}

// NewProvider returns a provider that loads the named table from store on
// first use. The load happens at most once per provider.
func NewProvider(store blobstore.BlobStore, name string, k int, optFns ...Option) *centroid.Provider {
	return centroid.NewProvider(func(ctx context.Context) (*centroid.Table, error) {
		return Load(ctx, store, name, k, optFns...)
	})
}
