// Package runner invokes the built generator once per test case.
//
// Invocations are independent and run over a bounded pool of workers. A
// failing invocation is recorded as a *GenerationError on that case's
// Outcome and never stops the remaining cases.
package runner
