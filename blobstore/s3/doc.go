// Package s3 provides an Amazon S3 implementation of the
// blobstore.BlobStore interface, for keeping quad-tree snapshots in
// object storage instead of a local directory.
//
// # Usage
//
//	store, err := s3.NewFromDefaultConfig(ctx, "my-bucket", "geoindex/")
//	if err != nil { ... }
//
//	err = tree.Save(ctx, store)
//	tree, err = geoquad.Load(ctx, store)
//
// # Features
//
//   - Managed multipart uploads via the s3 transfer manager
//   - Automatic pagination for listing
//   - Configurable key prefix for sharing a bucket between trees
package s3
