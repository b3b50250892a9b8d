package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/faultkit/blobstore"
	miniostore "github.com/hupe1980/faultkit/blobstore/minio"
	s3store "github.com/hupe1980/faultkit/blobstore/s3"
)

// Environment variables read for minio:// stores.
const (
	envMinioAccessKey = "FAULTKIT_MINIO_ACCESS_KEY"
	envMinioSecretKey = "FAULTKIT_MINIO_SECRET_KEY"
	envMinioInsecure  = "FAULTKIT_MINIO_INSECURE"
)

// storeSpec is a parsed --store value.
type storeSpec struct {
	scheme   string // file, s3 or minio
	endpoint string // minio only
	bucket   string
	prefix   string // root directory for file
}

// parseStoreSpec accepts:
//
//	file | file://DIR
//	s3://BUCKET[/PREFIX]
//	minio://ENDPOINT/BUCKET[/PREFIX]
func parseStoreSpec(raw string) (storeSpec, error) {
	if raw == "" || raw == "file" {
		return storeSpec{scheme: "file"}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return storeSpec{}, fmt.Errorf("invalid --store %q: %w", raw, err)
	}

	switch u.Scheme {
	case "file":
		return storeSpec{scheme: "file", prefix: u.Host + u.Path}, nil
	case "s3":
		if u.Host == "" {
			return storeSpec{}, fmt.Errorf("invalid --store %q: missing bucket", raw)
		}
		return storeSpec{scheme: "s3", bucket: u.Host, prefix: strings.Trim(u.Path, "/")}, nil
	case "minio":
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" {
			return storeSpec{}, fmt.Errorf("invalid --store %q: want minio://endpoint/bucket[/prefix]", raw)
		}
		return storeSpec{scheme: "minio", endpoint: u.Host, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
	default:
		return storeSpec{}, fmt.Errorf("invalid --store %q: unsupported scheme %q (supported: file, s3, minio)", raw, u.Scheme)
	}
}

// openStore builds the store named by spec. S3 credentials and region come
// from the default AWS configuration chain.
func openStore(ctx context.Context, spec storeSpec) (blobstore.Store, error) {
	switch spec.scheme {
	case "s3":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return s3store.NewStore(s3.NewFromConfig(cfg), spec.bucket, spec.prefix), nil
	case "minio":
		client, err := minio.New(spec.endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv(envMinioAccessKey), os.Getenv(envMinioSecretKey), ""),
			Secure: os.Getenv(envMinioInsecure) == "",
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return miniostore.NewStore(client, spec.bucket, spec.prefix), nil
	default:
		return blobstore.NewLocalStore(spec.prefix), nil
	}
}
