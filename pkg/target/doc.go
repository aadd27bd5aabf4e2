// Package target models the graph of known microarchitectures.
//
// Each microarchitecture is an immutable node that points at its parents;
// the transitive closure over parents forms a DAG whose roots are the
// architecture families (x86_64, aarch64, ppc64le, ...). Nodes are built
// once per process from the embedded catalog and shared by pointer; no node
// is ever mutated or rebuilt after construction, so reads need no locking.
package target
