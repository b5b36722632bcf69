package types

type ProgramType string

const (
	ProgramTypeBugBounty  ProgramType = "bug_bounty"
	ProgramTypeDisclosure ProgramType = "disclosure"
)

type ProgramVisibility string

const (
	ProgramVisibilityPublic  ProgramVisibility = "public"
	ProgramVisibilityPrivate ProgramVisibility = "private"
)

type (
	RewardBand struct {
		Min float64 `json:"min" validate:"gte=0"`
		Max float64 `json:"max" validate:"gte=0,gtefield=Min"`
	}

	// Payout bands per severity. Disclosure programs carry all zero bands.
	RewardRange struct {
		P1 RewardBand `json:"p1"`
		P2 RewardBand `json:"p2"`
		P3 RewardBand `json:"p3"`
		P4 RewardBand `json:"p4"`
		P5 RewardBand `json:"p5"`
	}

	ProgramCreate struct {
		Name        string            `json:"name"        validate:"required"`
		Description string            `json:"description" validate:"required"`
		Type        ProgramType       `json:"type"        validate:"required,oneof=bug_bounty disclosure"`
		Visibility  ProgramVisibility `json:"visibility"  validate:"omitempty,oneof=public private"`
		Scope       []string          `json:"scope"       validate:"required,min=1"`
		OutOfScope  []string          `json:"out_of_scope"`
		RewardRange *RewardRange      `json:"reward_range"`
	}

	ProgramUpdate struct {
		Name        Optional[string]      `json:"name"         validate:"omitempty"`
		Description Optional[string]      `json:"description"  validate:"omitempty"`
		Visibility  Optional[string]      `json:"visibility"   validate:"omitempty"`
		Scope       Optional[[]string]    `json:"scope"        validate:"omitempty"`
		OutOfScope  Optional[[]string]    `json:"out_of_scope" validate:"omitempty"`
		RewardRange Optional[RewardRange] `json:"reward_range" validate:"omitempty"`
		Status      Optional[string]      `json:"status"       validate:"omitempty"`
	}

	ProgramInvite struct {
		Email string `json:"email" validate:"required,email"`
	}

	ProgramResponse struct {
		ID               string            `json:"id"              validate:"required,uuid_rfc4122" format:"uuid"`
		OrganizationID   string            `json:"organization_id" validate:"required,uuid_rfc4122" format:"uuid"`
		OrganizationName string            `json:"organization_name,omitempty"`
		Name             string            `json:"name"            validate:"required"`
		Description      string            `json:"description"     validate:"required"`
		Type             ProgramType       `json:"type"`
		Visibility       ProgramVisibility `json:"visibility"`
		Scope            []string          `json:"scope"`
		OutOfScope       []string          `json:"out_of_scope,omitempty"`
		RewardRange      *RewardRange      `json:"reward_range,omitempty"`
		ReportCount      int64             `json:"report_count"`
		ResolvedReports  int64             `json:"resolved_reports"`
		DuplicateReports int64             `json:"duplicate_reports"`
		Status           string            `json:"status"`
	}

	ProgramSummary struct {
		ID          string  `json:"id"          validate:"required,uuid_rfc4122" format:"uuid"`
		Name        string  `json:"name"        validate:"required"`
		Description string  `json:"description"`
		MinReward   float64 `json:"min_reward"`
		MaxReward   float64 `json:"max_reward"`
	}
)
