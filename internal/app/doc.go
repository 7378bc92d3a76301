// Package app wires the FaultGate service together: configuration,
// logging, tracing, metrics, the fault handlers, the error feed hub, and
// the HTTP router. The /api/admin subtree deliberately runs behind its
// own stricter fault handler to show handler scoping.
package app
