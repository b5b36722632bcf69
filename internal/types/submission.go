package types

import "time"

type (
	// An evidence file carried inline in a submission payload.
	EvidenceUpload struct {
		FileName string `json:"file_name" validate:"required"`
		// base64 encoded file contents
		Data string `json:"data"      validate:"required"`
	}

	SubmissionCreate struct {
		Title         string           `json:"title"          validate:"required"`
		Description   string           `json:"description"    validate:"required"`
		Target        string           `json:"target"         validate:"omitempty"`
		Category      string           `json:"category"       validate:"required"`
		VulnerableURL string           `json:"vulnerable_url" validate:"omitempty,url"`
		Collaborators []string         `json:"collaborators"  validate:"omitempty,dive,email"`
		Files         []EvidenceUpload `json:"files"          validate:"omitempty,dive"`
	}

	// Partial update. Absent fields are left untouched; points are derived
	// from severity and are never accepted from the client.
	SubmissionUpdate struct {
		Title         Optional[string]           `json:"title"          validate:"omitempty"`
		Description   Optional[string]           `json:"description"    validate:"omitempty"`
		Reward        Optional[float64]          `json:"reward"         validate:"omitempty"`
		Target        Optional[string]           `json:"target"         validate:"omitempty"`
		Category      Optional[string]           `json:"category"       validate:"omitempty"`
		Severity      Optional[string]           `json:"severity"       validate:"omitempty"`
		Status        Optional[string]           `json:"status"         validate:"omitempty"`
		Files         Optional[[]EvidenceUpload] `json:"files"          validate:"omitempty"`
	}

	MessageCreate struct {
		Message string `json:"message" validate:"required"`
	}

	MessageResponse struct {
		ID         string    `json:"id"          validate:"required,uuid_rfc4122" format:"uuid"`
		SenderID   string    `json:"sender_id"   validate:"required,uuid_rfc4122" format:"uuid"`
		SenderKind ActorKind `json:"sender_kind" validate:"required"`
		SenderName string    `json:"sender_name"`
		Message    string    `json:"message"     validate:"required"`
		SentAt     time.Time `json:"sent_at"     validate:"required"`
	}

	EvidenceFileResponse struct {
		FileName string `json:"file_name" validate:"required"`
		FileSize int64  `json:"file_size"`
		// Presigned, time limited download URL
		FileURL string `json:"file_url"`
	}

	SubmissionResponse struct {
		ID            string                 `json:"id"             validate:"required,uuid_rfc4122" format:"uuid"`
		ProgramID     string                 `json:"program_id"     validate:"required,uuid_rfc4122" format:"uuid"`
		ResearcherID  string                 `json:"researcher_id"  validate:"required,uuid_rfc4122" format:"uuid"`
		Title         string                 `json:"title"          validate:"required"`
		Description   string                 `json:"description"    validate:"required"`
		Target        string                 `json:"target,omitempty"`
		Category      string                 `json:"category"       validate:"required"`
		VulnerableURL string                 `json:"vulnerable_url,omitempty"`
		Severity      Severity               `json:"severity,omitempty"`
		Status        SubmissionStatus       `json:"status"         validate:"required"`
		Reward        *float64               `json:"reward,omitempty"`
		Points        int                    `json:"points"`
		Collaborators []string               `json:"collaborators,omitempty"`
		Files         []EvidenceFileResponse `json:"files"`
		Messages      []MessageResponse      `json:"messages,omitempty"`
		SubmittedAt   time.Time              `json:"submitted_at"   validate:"required"`
		ResolvedAt    *time.Time             `json:"resolved_at,omitempty"`
	}
)
