// Package jsonstitch merges BGZF-compressed, per-shard annotated JSON output
// (a header, a positions array, and a trailing genes array) into one
// well-formed JSON document without ever inflating the positions blocks it
// splices through verbatim.
package jsonstitch
