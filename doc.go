// Package faultkit damages files and blobs in controlled ways so that the
// readers consuming them can be tested for robustness.
//
// A Corruptor reads a whole input from a blobstore.Store, builds one new
// buffer and writes it as the output. Three transforms are available:
//
//	c := faultkit.New()
//	rep, err := c.CorruptByDeletion(ctx, "doc.pdf", "doc-cut.pdf", 0.5, 0.2)
//	rep, err := c.CorruptByMutation(ctx, "doc.pdf", "doc-mut.pdf", 0.1, 0.01)
//	rep, err := c.ReplaceBytes(ctx, "doc.pdf", "doc-rep.pdf", 86, 12, []byte("000000000000"))
//
// # Addressing
//
// Deletion and mutation address a region by fractions of the input length:
// loc in [0, 1) picks the first byte and size > 0 the extent. Both are
// rounded half-up to whole bytes, the region is at least one byte long, and
// a region that would run past the end is cut at the end. See
// corrupt.Resolve.
//
// # Storage
//
// The default store is a LocalStore with an empty root, so names are file
// paths. Outputs are written through a temporary file and renamed into
// place. S3 and MinIO stores live in blobstore/s3 and blobstore/minio:
//
//	store := s3.NewStore(client, "bucket", "fixtures/")
//	c := faultkit.New(faultkit.WithStore(store))
//
// # Randomness
//
// Mutation draws bytes from a random.Source. By default the process-wide
// random.Default() is used; pass WithRandom(random.New(seed)) for a
// reproducible, goroutine-confined source.
//
// # Logging
//
// Operations log through a Logger (log/slog). Failures are logged at error
// level, advisories at warn and completed operations at info, each with an
// "op" attribute. The destination can be swapped at runtime with
// Logger.SetHandler and the threshold read from FAULTKIT_LOG_LEVEL with
// LevelFromEnv.
package faultkit
