// Package cpuid decodes x86 CPUID feature flags into named CPU features.
//
// Which leaves and bits to read is driven entirely by the embedded CPUID
// catalog, not hard-coded. The Provider interface abstracts the CPUID
// instruction itself so that detection logic can run against recorded
// register values in tests; Hardware issues the real instruction and is
// only functional on x86 and x86_64.
package cpuid
