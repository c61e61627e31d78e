// Package tool is the capability layer the agent loop dispatches to.
//
// A [Capability] takes one string argument and answers with text, never an
// error: faults such as a rejected expression or a failed HTTP request are
// described in the text so the model can relay them. Each capability
// advertises a JSON schema generated from a one-field argument struct and
// accepts the model's JSON arguments leniently through [Capability.Call].
//
// The [Catalog] keeps capabilities in registration order and resolves names
// case-insensitively. The sentinel errors in errors.go are shared by the
// adapters' typed layers.
package tool
