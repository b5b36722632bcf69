package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/upload"
)

type (
	// EvidenceFile records one stored attachment. ObjectName is the
	// content hash the file was uploaded under.
	EvidenceFile struct {
		FileName   string `json:"file_name"`
		ObjectName string `json:"object_name"`
		FileSize   int64  `json:"file_size"`
	}

	Submission struct {
		Title         string
		Description   string
		Target        string
		Category      string
		VulnerableURL string
		Model
		ProgramID     uuid.UUID // TODO: figure out gorm associations. the database has the constraints from manual migrations
		ResearcherID  uuid.UUID // TODO: figure out gorm associations. the database has the constraints from manual migrations
		Severity      types.Severity         `gorm:"type:text"`
		Status        types.SubmissionStatus `gorm:"type:text"`
		Points        int
		Reward        datatypes.Null[float64]
		ResolvedAt    datatypes.Null[time.Time]
		Collaborators datatypes.JSONSlice[string]
		Evidence      datatypes.JSONSlice[EvidenceFile]
	}
)

func (Submission) TableName() string {
	return "submission"
}

func (s Submission) GetID() uuid.UUID {
	return s.ID
}

// Gets presigned download urls for all evidence attached to a submission
func (s *Submission) GetEvidenceURLs(
	ctx context.Context,
	u upload.Uploader,
	duration time.Duration,
) ([]types.EvidenceFileResponse, error) {
	ctx, span := tracer.Start(ctx, "Submission.GetEvidenceURLs")
	defer span.End()

	files := make([]types.EvidenceFileResponse, 0, len(s.Evidence))
	for _, evidence := range s.Evidence {
		url, err := u.PresignedReadURL(ctx, evidence.ObjectName, duration)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to make evidence url")
			return nil, err
		}

		files = append(files, types.EvidenceFileResponse{
			FileName: evidence.FileName,
			FileSize: evidence.FileSize,
			FileURL:  url,
		})
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "generated evidence urls")
	return files, nil
}
