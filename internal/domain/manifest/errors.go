package manifest

import "fmt"

// ParseError indicates the manifest document itself is unusable: malformed
// JSON, a missing required top-level key, or an unsupported schema version.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing manifest: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parsing manifest: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DanglingDependencyError indicates a node declares a dependency on an id
// that does not exist in the manifest. A broken graph must never reach rule
// evaluation, so this aborts the build.
type DanglingDependencyError struct {
	NodeID string
	Ref    string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("node %s depends on unknown node %s", e.NodeID, e.Ref)
}
