// Package numeric models the primitive numeric kinds conversions are
// synthesised between, and the four storage signs unit values use.
//
// Kinds carry their width, signedness group, inclusive limits and the
// tokens used when rendering C. Ordering (SmallerThan, LargerThan) is a
// strict partial order defined only inside a group; asking across groups
// returns an *OrderError.
//
// Value is a small evaluator-side scalar with C conversion semantics. Cast
// reports the conversions C leaves undefined, so tests can prove that
// synthesised code never reaches them.
package numeric
