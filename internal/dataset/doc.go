// Package dataset opens Zarr datasets from object storage.
//
// Only what metadata extraction needs is read: the consolidated metadata
// (.zmetadata), every attribute, and the values of coordinate arrays.
// Data variable chunks are never fetched.
//
// Stores are tried in order by an [Opener]. The default order is the public
// bucket with anonymous access, then a user bucket with credentials taken
// from the environment. When every store fails the failures are reported
// together in an [*OpenError].
package dataset
