// Package queryir defines the QueryPlan, the typed output of the HQL
// compiler and the contract with downstream query builders.
//
// ARCHITECTURE:
//
// The plan sits between semantic analysis and whatever turns it into
// storage predicates:
//
//	[query text] → [tokens] → [query tree] → [QueryPlan] → [SQL builder]
//	                                                      → [other backends]
//
// A plan has three parts, all implicitly AND'd:
//   - Sorts: ordered sort keys with direction
//   - Filters: one FilterGroup per query item, an OR of typed sub-filters
//   - Elements: meta-tag terms (author, topic, tag, source tag, comment,
//     name) that a backend resolves against its metadata registry
//
// SEALED INTERFACES:
//
// Filter, FilterValue and MetaValue are sealed interfaces using the marker
// method pattern. Only types in this package implement them, so backends
// can type switch exhaustively:
//
//	switch f := filter.(type) {
//	case Equal:
//	case Match:
//	case Range:
//	case Flag:
//	}
//
// JSON ENCODING:
//
// Every variant marshals with a "type" discriminator next to its fields,
// so a plan is self-describing on the wire. Dates marshal as YYYY-MM-DD.
//
// IDENTITY:
//
// Fingerprint hashes the canonical JSON of a plan with domain separation.
// Two queries that compile to the same plan share a fingerprint regardless
// of spacing, quoting of fuzzy strings or alias spelling, which makes it a
// usable cache key.
package queryir
