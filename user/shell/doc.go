// Package shell contains the infrastructure around the user domain core: mapping
// between domain events and storable events, event metadata with trace context,
// the aggregate repository, the queryable snapshot stores, the read-side cache,
// the unit-of-work abstraction and the opt-in concurrency-conflict retry helper.
//
// The shell depends on the core, never the other way around.
package shell
