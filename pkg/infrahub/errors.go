package infrahub

import (
	"errors"
	"strings"
)

// Sentinel errors for failure classes that tools translate into remediation hints
var (
	// ErrSchemaNotFound indicates the requested kind does not exist on the branch
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrBranchNotFound indicates the requested branch does not exist
	ErrBranchNotFound = errors.New("branch not found")
	// ErrNodeNotFound indicates no node matched the given filters
	ErrNodeNotFound = errors.New("node not found")
)

// IsPermissionError reports whether an error from Infrahub looks like an
// authorization failure
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"permission", "not authorized", "forbidden", "unauthorized"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsDuplicateError reports whether an error from Infrahub indicates the
// target object already exists
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"already exists", "duplicate", "conflict"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// BranchCreateRemediation classifies a branch creation failure into a
// remediation hint for the calling agent
func BranchCreateRemediation(err error) string {
	switch {
	case IsPermissionError(err):
		return "Validate that the API token has branch management rights. " +
			"If running locally, ensure INFRAHUB_API_TOKEN belongs to an admin or a role with branch:create."
	case IsDuplicateError(err):
		return "Choose a different branch name; it already exists."
	default:
		return "Re-run with debug logging; inspect server logs for details."
	}
}
