package types

import "strings"

// Severity is the fixed P1..P5 criticality vocabulary. The zero value means
// the report has not been rated yet.
type Severity string

const (
	SeverityUnset Severity = ""
	SeverityP1    Severity = "P1"
	SeverityP2    Severity = "P2"
	SeverityP3    Severity = "P3"
	SeverityP4    Severity = "P4"
	SeverityP5    Severity = "P5"
)

// ParseSeverity normalizes case-insensitive input ("p2", "P2") into the
// canonical vocabulary. Returns false for anything outside P1..P5.
func ParseSeverity(raw string) (Severity, bool) {
	switch Severity(strings.ToUpper(strings.TrimSpace(raw))) {
	case SeverityP1:
		return SeverityP1, true
	case SeverityP2:
		return SeverityP2, true
	case SeverityP3:
		return SeverityP3, true
	case SeverityP4:
		return SeverityP4, true
	case SeverityP5:
		return SeverityP5, true
	default:
		return SeverityUnset, false
	}
}
