// Package runmeta resolves per-run acquisition metadata from BIDS bold
// sidecars.
//
// The Resolver caches by canonicalized path, so aliases of one sidecar
// (duplicate run identifiers, symlinks) resolve once and return a tagged
// already-resolved result afterwards. Callers must branch on that tag
// explicitly instead of relying on nil checks.
package runmeta
