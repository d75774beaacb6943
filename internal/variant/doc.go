// Package variant classifies VCF alt alleles into variant categories,
// constructs the corresponding Variant records, derives breakend pairs for
// structural variants, and extracts per-sample fields from FORMAT/SAMPLE
// columns. It has no I/O of its own: callers are responsible for splitting a
// VCF line into its columns.
package variant
