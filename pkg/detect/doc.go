// Package detect resolves the microarchitecture of the host machine.
//
// Raw platform signals (CPUID flags, /proc/cpuinfo, macOS sysctl values)
// are first shaped into a draft node describing the literal host; the draft
// is then matched against the graph of known microarchitectures and the
// most specific provably compatible node wins. Every OS and hardware
// interface is injectable, so the full resolution path runs against
// recorded inputs in tests.
//
// Detection is synchronous and bounded: one file read, one sysctl query, or
// a handful of CPUID instructions. Failures are coerced into the single
// recoverable unsupported-microarchitecture outcome; there is nothing to
// retry, an unsupported environment stays unsupported.
package detect
