// Package blobstore is the whole-object storage layer the corruption
// operations read from and write to.
//
// A Store holds named, opaque byte blobs. Reads go through Open and a Blob;
// writes replace a blob in one Put, so a failed write never leaves a partial
// object behind.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem; mmap reads, temp-file + rename writes
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 via aws-sdk-go-v2
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Use [ReadAll] to load a whole blob into an owned buffer.
package blobstore
