// Package ir provides the intermediate representation of record definitions loaded
// from schema files.
//
// This package contains plain data types and value normalization only. The
// compiler package produces ir definitions from CUE or YAML and turns them into
// stricttuple Record Types; ir imports nothing internal.
//
// Key design constraints:
//   - Field order is declaration order in the source file, never map order
//   - Rule arguments and record values are normalized to int, float64, string,
//     bool, nil, []any and map[string]any before any rule sees them
//   - All JSON tags use snake_case
package ir
