// Package testcase models the inputs of a harness run. A TestCase is a
// single scop file found under the test root; its output path is derived
// from the input path by swapping the input suffix for the output suffix.
package testcase
