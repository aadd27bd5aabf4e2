// Package schema loads and validates the embedded microarchitecture catalog.
//
// The catalog is shipped with the binary as two YAML datasets:
//
//   - microarchitectures.yaml: known microarchitectures, feature aliases,
//     and conversion tables (ARM implementer codes, Darwin feature flags)
//   - cpuid.yaml: CPUID leaf and bit definitions for x86 feature detection
//
// Both datasets are parsed once per process and shared read-only. A
// structurally invalid catalog (a reference to a parent that is not defined,
// or a parent chain that loops back on itself) is a fatal configuration
// error reported at load time, never a recoverable detection failure.
package schema
