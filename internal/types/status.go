package types

import "strings"

type SubmissionStatus string

const (
	SubmissionStatusPending    SubmissionStatus = "pending"    // Initial state of every report
	SubmissionStatusTriaged    SubmissionStatus = "triaged"    // Triage team confirmed the report is readable and in scope
	SubmissionStatusAccepted   SubmissionStatus = "accepted"   // Report accepted as a valid finding
	SubmissionStatusRejected   SubmissionStatus = "rejected"   // Report rejected as invalid or out of scope
	SubmissionStatusDuplicated SubmissionStatus = "duplicated" // Report duplicates an earlier finding
	SubmissionStatusResolved   SubmissionStatus = "resolved"   // Underlying issue fixed by the organization
	SubmissionStatusUnresolved SubmissionStatus = "unresolved" // Accepted but closed without a fix
)

// ParseSubmissionStatus normalizes case-insensitive input into the canonical
// vocabulary. "duplicate" is accepted as an alias for "duplicated" since both
// spellings are seen in the wild.
func ParseSubmissionStatus(raw string) (SubmissionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return SubmissionStatusPending, true
	case "triaged":
		return SubmissionStatusTriaged, true
	case "accepted":
		return SubmissionStatusAccepted, true
	case "rejected":
		return SubmissionStatusRejected, true
	case "duplicate", "duplicated":
		return SubmissionStatusDuplicated, true
	case "resolved":
		return SubmissionStatusResolved, true
	case "unresolved":
		return SubmissionStatusUnresolved, true
	default:
		return "", false
	}
}
