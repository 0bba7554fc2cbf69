// Package oracle derives literal input/output pairs for conversion
// functions.
//
// The oracle never looks at synthesised expression trees. It recomputes
// each conversion from the category model: exactly with big integers on
// integer paths, and in float64 on paths the generated code takes through
// double. Clamping saturates to the destination limits and float to integer
// conversion rounds half away from zero before clamping.
//
// Inputs cover the source limits, the destination limits mapped back into
// the source unit with their neighbours, and a few small values. Inputs
// whose result C leaves undefined are skipped.
package oracle
