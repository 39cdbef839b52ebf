package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/blobstore/minio"
	"github.com/hupe1980/texdedup/blobstore/s3"
	"github.com/hupe1980/texdedup/internal/config"
	"github.com/hupe1980/texdedup/pixel"
)

func openStore(ctx context.Context, cfg *config.Config, location string) (blobstore.BlobStore, error) {
	loc, err := config.ParseLocation(location)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case config.SchemeLocal:
		return blobstore.NewLocalStore(loc.Dir), nil
	case config.SchemeMinIO:
		m := cfg.MinIO
		store, err := minio.Dial(m.Endpoint, m.AccessKey, m.SecretKey, m.Secure, loc.Bucket, loc.Prefix)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc, err)
		}
		return store, nil
	case config.SchemeS3:
		opts := []s3.Option{s3.WithPrefix(loc.Prefix)}
		if cfg.S3.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Profile != "" {
			opts = append(opts, s3.WithProfile(cfg.S3.Profile))
		}
		store, err := s3.New(ctx, loc.Bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc, err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store %q", location)
}

// listTextures returns the decodable blobs of store, sorted.
func listTextures(ctx context.Context, store blobstore.BlobStore, prefix string) ([]string, error) {
	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	files := names[:0]
	for _, name := range names {
		if pixel.IsSupported(name) {
			files = append(files, name)
		}
	}
	return files, nil
}
