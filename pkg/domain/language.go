// Package domain defines shared low-level types used across the
// discovery and scheduling packages.
package domain

// Language represents a source language recognized by the parser pool.
// This module discovers Python tests exclusively; the type remains
// distinct from a bare string constant so call sites read clearly and
// so a future language could be added without renaming callers.
type Language string

// LanguagePython is the only language this module's discoverers parse.
const LanguagePython Language = "python"
