package config

import (
	"fmt"
	"strings"
)

// Scheme identifies a store backend.
type Scheme string

const (
	SchemeLocal Scheme = "local"
	SchemeMinIO Scheme = "minio"
	SchemeS3    Scheme = "s3"
)

// Location is a parsed store address.
type Location struct {
	Scheme Scheme
	// Dir is the root directory of a local store.
	Dir string
	// Bucket and Prefix address an object store.
	Bucket string
	Prefix string
}

// ParseLocation parses local:<dir>, minio://bucket/prefix and
// s3://bucket/prefix.
func ParseLocation(s string) (Location, error) {
	switch {
	case strings.HasPrefix(s, "local:"):
		dir := strings.TrimPrefix(s, "local:")
		if dir == "" {
			return Location{}, fmt.Errorf("location %q: empty directory", s)
		}
		return Location{Scheme: SchemeLocal, Dir: dir}, nil
	case strings.HasPrefix(s, "minio://"):
		return parseBucket(SchemeMinIO, s, strings.TrimPrefix(s, "minio://"))
	case strings.HasPrefix(s, "s3://"):
		return parseBucket(SchemeS3, s, strings.TrimPrefix(s, "s3://"))
	}
	return Location{}, fmt.Errorf("location %q: want local:<dir>, minio://bucket[/prefix] or s3://bucket[/prefix]", s)
}

func parseBucket(scheme Scheme, raw, rest string) (Location, error) {
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("location %q: empty bucket", raw)
	}
	return Location{
		Scheme: scheme,
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (l Location) String() string {
	if l.Scheme == SchemeLocal {
		return "local:" + l.Dir
	}
	s := string(l.Scheme) + "://" + l.Bucket
	if l.Prefix != "" {
		s += "/" + l.Prefix
	}
	return s
}
