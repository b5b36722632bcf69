package types

type (
	// Aggregate reputation and earnings counters for one researcher. All
	// counters are monotonically increased by lifecycle side effects.
	ResearcherLedgerResponse struct {
		ID               string  `json:"id"       validate:"required,uuid_rfc4122" format:"uuid"`
		Username         string  `json:"username" validate:"required"`
		Email            string  `json:"email"    validate:"required,email"`
		ReputationScore  int64   `json:"reputation_score"`
		ReportsSubmitted int64   `json:"reports_submitted"`
		ReportsAccepted  int64   `json:"reports_accepted"`
		ReportsRejected  int64   `json:"reports_rejected"`
		DuplicateReports int64   `json:"duplicate_reports"`
		BountiesEarned   float64 `json:"bounties_earned"`
	}

	// One leaderboard row. Only researchers above the listing threshold
	// appear, so the public surface never carries zero-score accounts.
	ResearcherRankResponse struct {
		Username        string `json:"username" validate:"required"`
		Email           string `json:"email"    validate:"required,email"`
		ReputationScore int64  `json:"reputation_score"`
	}

	PingResponse struct {
		Status string `json:"status" validate:"required"`
	}
)
