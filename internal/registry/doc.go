// Package registry owns the set of tasks known to a run. Tasks are built
// once at load time from explicit descriptor declarations plus either a
// handler function or a construct-then-run factory, and are immutable
// afterwards. The registry also holds the named Go handlers that extension
// manifests bind to.
package registry
