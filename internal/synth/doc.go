// Package synth produces the complete set of conversion functions of a
// category.
//
// For every unit endpoint (unit, sign) of a category the synthesiser builds
//   - a conversion to every other unit endpoint of the category,
//   - a conversion to every bare numeric kind,
//   - a conversion from every bare numeric kind.
//
// Unit to unit conversions go through the category strategy; the rest are
// plain safe casts. Endpoints are processed in parallel and merged into a
// set keyed by signature. Two conversions with one signature and equal
// bodies collapse; different bodies abort the category with an
// InvariantError. The result is sorted by signature, so two runs over the
// same categories produce identical output.
//
// Categories are validated before synthesis starts. A category that fails
// validation produces no conversions at all.
package synth
