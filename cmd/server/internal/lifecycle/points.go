package lifecycle

import (
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

// PointsForSeverity maps the P1..P5 vocabulary onto reputation points. Unset
// and unrecognized severities score zero.
func PointsForSeverity(severity types.Severity) int {
	switch severity {
	case types.SeverityP1:
		return 40
	case types.SeverityP2:
		return 20
	case types.SeverityP3:
		return 10
	case types.SeverityP4:
		return 5
	case types.SeverityP5:
		return 0
	case types.SeverityUnset:
		return 0
	default:
		return 0
	}
}
