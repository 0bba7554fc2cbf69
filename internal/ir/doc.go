// Package ir defines the model the synthesiser consumes and produces: unit
// categories, conversion endpoints, conversion specs and test cases.
//
// ir imports only numeric. Everything here is plain data fixed at
// generation time; nothing is mutated once built.
//
// Key design constraints:
//   - Formula operands are kept as decimal text, never floats, so specs
//     hash and render byte-identically across runs
//   - All JSON tags use snake_case
//   - Content digests go through MarshalCanonical only
package ir
