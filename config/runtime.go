package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/termcluster"
	"github.com/hupe1980/termcluster/blobstore"
	"github.com/hupe1980/termcluster/blobstore/minio"
	s3store "github.com/hupe1980/termcluster/blobstore/s3"
	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/codec"
	"github.com/hupe1980/termcluster/engine"
	"github.com/hupe1980/termcluster/resource"
	"github.com/hupe1980/termcluster/source"
)

// Versions resolves the current centroid blob.
type Versions interface {
	Current(ctx context.Context) (s3store.Version, error)
}

// Runtime is a worker wired from a Config.
type Runtime struct {
	Store      blobstore.BlobStore
	Versions   *s3store.VersionStore // nil unless source.version_table is set
	Controller *resource.Controller
	Logger     *termcluster.Logger
	Worker     *termcluster.Worker
	Plan       engine.Plan
}

// Open connects the configured store and builds a worker. No centroid data is
// read until the worker first needs the table.
func (c *Config) Open(ctx context.Context, optFns ...termcluster.Option) (*Runtime, error) {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Store:      store,
		Controller: c.Controller(),
		Logger:     c.Logger(),
	}

	var versions Versions
	if c.Source.VersionTable != "" {
		awsCfg, err := s3store.LoadConfig(ctx, c.Source.Region)
		if err != nil {
			return nil, err
		}
		rt.Versions = s3store.NewVersionStoreFromConfig(awsCfg, c.Source.VersionTable, c.Namespace())
		versions = rt.Versions
	}

	rt.Plan, err = c.Plan()
	if err != nil {
		return nil, err
	}
	rt.Plan.Controller = rt.Controller

	opts := append([]termcluster.Option{
		termcluster.WithLogger(rt.Logger),
		termcluster.WithController(rt.Controller),
		termcluster.WithCodec(rt.Plan.Codec),
	}, optFns...)

	rt.Worker, err = termcluster.New(c.Provider(store, versions, rt.Controller), opts...)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// OpenStore connects the configured blob store.
func (c *Config) OpenStore(ctx context.Context) (blobstore.BlobStore, error) {
	src := c.Source
	switch src.Kind {
	case KindLocal:
		return blobstore.NewLocalStore(src.Path), nil
	case KindS3:
		store, err := s3store.New(ctx, src.Bucket,
			s3store.WithPrefix(src.Prefix),
			s3store.WithRegion(src.Region),
			s3store.WithEndpoint(src.Endpoint),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	case KindMinIO:
		store, err := minio.Dial(src.Endpoint, src.AccessKey, src.SecretKey, src.Secure, src.Bucket, src.Prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("config: unknown source kind %q", src.Kind)
	}
}

// Namespace identifies the configured blob location in the version table.
func (c *Config) Namespace() string {
	return fmt.Sprintf("s3://%s/%s", c.Source.Bucket, c.Source.Prefix)
}

// Provider returns a lazy provider for the configured table. When versions is
// non-nil, the blob name is resolved from the current version at load time.
func (c *Config) Provider(store blobstore.BlobStore, versions Versions, rc *resource.Controller) *centroid.Provider {
	return centroid.NewProvider(func(ctx context.Context) (*centroid.Table, error) {
		name := c.Source.Name
		if versions != nil {
			v, err := versions.Current(ctx)
			if err != nil {
				return nil, err
			}
			if v.Clusters != 0 && v.Clusters != c.Clusters {
				return nil, fmt.Errorf("config: version %d has %d clusters, configured %d", v.Number, v.Clusters, c.Clusters)
			}
			name = v.Blob
		}
		return source.Load(ctx, store, name, c.Clusters, c.SourceOptions(rc)...)
	})
}

// SourceOptions translates the table settings into source.Load options.
func (c *Config) SourceOptions(rc *resource.Controller) []source.Option {
	opts := []source.Option{source.WithNormalizer(c.normalizer()), source.WithController(rc)}
	if c.StrictCoverage {
		opts = append(opts, source.WithStrictCoverage())
	}
	return opts
}

// BuilderOptions translates the table settings into centroid builder options.
func (c *Config) BuilderOptions() []centroid.BuilderOption {
	opts := []centroid.BuilderOption{centroid.WithNormalizer(c.normalizer())}
	if c.StrictCoverage {
		opts = append(opts, centroid.WithStrictCoverage())
	}
	return opts
}

func (c *Config) normalizer() centroid.Normalizer {
	n, ok := centroid.NormalizerByName(c.Normalizer)
	if !ok {
		return centroid.DefaultNormalizer
	}
	return n
}

// Controller builds the resource controller.
func (c *Config) Controller() *resource.Controller {
	return resource.NewController(resource.Config{
		MaxWorkers:         c.Resources.Workers,
		MemoryLimitBytes:   c.Resources.MemoryLimitBytes,
		IOLimitBytesPerSec: c.Resources.IOLimitBytesPerSec,
	})
}

// Plan builds the default run plan. The controller is left unset.
func (c *Config) Plan() (engine.Plan, error) {
	shape, err := engine.ParseMergeShape(c.Run.Shape)
	if err != nil {
		return engine.Plan{}, err
	}
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return engine.Plan{}, fmt.Errorf("config: unknown codec %q", c.Codec)
	}
	return engine.Plan{
		Partitions: c.Run.Partitions,
		Shape:      shape,
		Seed:       c.Run.Seed,
		Codec:      cd,
	}, nil
}

// Logger builds the configured logger writing to stderr.
func (c *Config) Logger() *termcluster.Logger {
	level, err := c.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return termcluster.NewLogger(slog.NewJSONHandler(os.Stderr, opts))
	}
	return termcluster.NewLogger(slog.NewTextHandler(os.Stderr, opts))
}
