// Package harness runs HQL conformance scenarios.
//
// A scenario is a YAML file naming a dialect, a fixed "today" and a list of
// cases. Each case is one query plus assertions on the compile result:
//
//	name: image_dates
//	description: Partial dates expand to ranges
//	dialect: image
//	today: 2024-06-15
//	cases:
//	  - query: "pt:2021-01"
//	    assertions:
//	      - type: ok
//	      - type: filter_fields
//	        values: [partition]
//	  - query: "pt:13"
//	    assertions:
//	      - type: errors
//	        values: [TypeCastError]
//	      - type: span
//	        kind: TypeCastError
//	        begin: 3
//	        end: 5
//
// Assertion types:
//   - ok: the compile produced a plan
//   - errors, warnings: exact diagnostic kinds, in order
//   - sorts: sort keys in order, "-" marking descending
//   - filter_fields: the field of every filter, group by group
//   - element_kinds: the kind of every meta element, in order
//   - span: the first diagnostic of kind covers [begin, end)
//
// Run compiles every case with the shared syntax table and a silent logger,
// so results depend only on the scenario. RunWithGolden additionally snapshots
// the compiled plans and diagnostics with goldie; regenerate snapshots with
//
//	go test ./internal/harness -update
package harness
