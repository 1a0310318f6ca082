// Package registry holds the named regions of a cache and is the only way to
// create, mutate and query them.
//
// The registry is an explicitly constructed value: a process normally owns
// one, tests create as many as they need. Region names are unique; looking up
// an unknown name fails with ErrRegionNotFound (as a *NotFoundError carrying
// the closest registered name). Every successful Put publishes the region's
// full contents through the configured notify.Publisher, while the bulk
// LoadFrom path leaves publishing to the caller.
package registry
