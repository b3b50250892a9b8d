// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "fixtures/")
//
//	c := faultkit.New(faultkit.WithStore(store))
//	report, err := c.CorruptByMutation(ctx, "good.zst", "bad.zst", 0.4, 0.01)
//
// Reads are single ranged GETs; writes go through the s3 manager uploader,
// which switches to multipart uploads for large blobs.
package s3
