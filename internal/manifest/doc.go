// Package manifest provides the core model for pip-style dependency
// manifests: an ordered sequence of declaration, comment, and blank lines.
//
// This package contains type definitions and pure transformations only.
// All other internal packages import manifest; manifest imports nothing
// internal. This ensures it remains the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Line order is semantically significant and is NEVER changed by any
//     operation in this package. Installation order affects downstream
//     integration, so reordering is treated as a correctness bug.
//   - Every line keeps its raw text, so an unedited manifest serializes
//     back byte-for-byte.
//   - All JSON tags use snake_case.
package manifest
