package anticheat

import (
	"fmt"
	"strings"
)

// KeyPrefix namespaces every cheating record in the shared store.
const KeyPrefix = "cheating:"

// Identity scopes a monitoring session and its persisted record. One active
// Monitor per identity at a time is the host's responsibility.
type Identity struct {
	StudentID string
	TestType  string
	TestID    string
}

// RecordKey returns the store key for an identity's cheating record.
// The test-type segment is lowercased with hyphens replaced by underscores
// so "Word-Matching" and "word_matching" land on the same key.
func RecordKey(id Identity) string {
	return fmt.Sprintf("%s%s:%s:%s", KeyPrefix, id.StudentID, NormalizeTestType(id.TestType), id.TestID)
}

// NormalizeTestType canonicalizes a test-type string for key derivation.
func NormalizeTestType(testType string) string {
	return strings.ReplaceAll(strings.ToLower(testType), "-", "_")
}
