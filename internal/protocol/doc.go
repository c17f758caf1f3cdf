// Package protocol defines the backend capability contract shared by all
// storage and execution substrates.
//
// A Backend exposes six file operations (list, read, search, glob, write,
// edit); a SandboxBackend additionally exposes a raw command-execution
// primitive and bulk file transfer. Result shapes live here so every
// backend reports identical outcomes to the tool loop.
//
// Error Policy:
//   - Conditions a tool loop can recover from (missing file, write
//     collision, ambiguous edit) are returned as data in result fields,
//     never as Go errors.
//   - Go errors are reserved for transport failures and integration
//     misuse (for example calling an unsupported operation).
//
// Example Usage:
//
//	res := backend.Write(ctx, "/notes.md", "hello\n")
//	if res.Error != "" {
//		// surface res.Error to the model and let it retry
//	}
package protocol
