// Package trace records span and point events for the build pipeline and the
// code generator.
//
// Tracers are goroutine-safe. A disabled tracer (Nop, or any tracer at
// LevelOff) makes Begin return an inert span, so call sites do not need to
// guard their instrumentation.
//
// Scopes nest from coarse to fine:
//
//   - ScopeDriver: one span per CLI invocation or build.
//   - ScopePass: read, lower, verify and emit stages of one file.
//   - ScopeFunction: lowering of one function body.
//
// The tracer travels through context.Context; see WithTracer and FromContext.
package trace
