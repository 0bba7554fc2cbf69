// Package harness runs conversion scenarios: YAML files of literal checks
// evaluated against synthesized conversions, optionally followed by a full
// oracle cross-check of named categories.
//
// A scenario looks like:
//
//	name: conversion_examples
//	description: documented conversions
//	checks:
//	  - category: distance
//	    function: mm_t_to_cm_t
//	    input: "25"
//	    expect: "2"
//	oracle: [percentage]
//
// Inputs and expectations are C literals or limit macros, parsed as the
// source and destination kinds of the named function. RunWithGolden
// snapshots the outcome in canonical JSON under testdata/golden.
package harness
