// Package sandbox derives the full backend protocol from a single
// command-execution primitive.
//
// A concrete sandbox only has to run one command and report combined
// output plus an exit code. Adapter builds every file operation on top of
// that: each call renders one self-contained script with shell-escaped
// (or base64-carried) arguments and runs it as a single execute round
// trip. The primitive is stateless request/response, so no operation may
// assume a persistent session, stdin, or a second step.
//
// Outcome mapping is deterministic: scripts encode their result in the
// exit code and, where structure is needed, emit one JSON object per
// line. Free text is never parsed for control flow.
//
// Failure Semantics:
//   - list/glob/search degrade to an empty result
//   - read degrades to a textual sentinel
//   - write/edit report through the result's Error field
//
// The adapter returns Go errors only when the transport itself fails.
package sandbox
