package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
)

func (s *ServerTestSuite) submissionJSON(method, url, payload string, auth *clientAuth) (*resp, map[string]any) {
	var body *strings.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequest(method, url, body)
	s.Require().NoError(err, "failed to construct http request")

	req.Header.Add("Content-Type", "application/json")

	if auth != nil {
		req.SetBasicAuth(auth.id, auth.token)
	}

	res, err := doRequest(s.T(), req)
	s.Require().NoError(err)

	parsed := make(map[string]any)
	s.Require().NoError(json.Unmarshal([]byte(res.body), &parsed))

	return res, parsed
}

func (s *ServerTestSuite) Test_SubmissionCreate() {
	tests := []struct {
		name           string
		auth           *clientAuth
		bodyTester     func(t *testing.T, body map[string]any)
		programID      string
		title          string
		category       string
		target         string
		files          string
		expectedStatus int
	}{
		{
			name:           "Valid",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "reflected xss in search",
			category:       "XSS",
			target:         "acme.example.com",
			expectedStatus: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["status"], "pending")
				assert.EqualValues(t, 0, body["points"], "new reports carry no points")
				assert.NotContains(t, body, "severity", "new reports are unrated")
			},
		},
		{
			name:           "ValidCategoryCaseInsensitive",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "sqli in login",
			category:       "sql injection",
			target:         "acme.example.com",
			expectedStatus: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["category"], "SQL Injection", "category is canonicalized")
			},
		},
		{
			name:           "ValidWithEvidence",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "idor on invoice download",
			category:       "IDOR",
			target:         "api.acme.example.com",
			files:          fmt.Sprintf(`, "files": [{"file_name": "poc.txt", "data": "%s"}]`, base64String(64)),
			expectedStatus: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				files, ok := body["files"].([]any)
				assert.True(t, ok, "files key present")
				assert.Len(t, files, 1)
			},
		},
		{
			name:           "ValidPrivateInvited",
			programID:      programPrivate.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "ssrf in importer",
			category:       "SSRF",
			target:         "internal.acme.example.com",
			expectedStatus: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["status"], "pending")
			},
		},
		{
			name:           "InvalidPrivateUninvited",
			programID:      programPrivate.ID.String(),
			auth:           &clientAuth{authOutsider.ID.String(), authToken},
			title:          "ssrf in importer",
			category:       "SSRF",
			target:         "internal.acme.example.com",
			expectedStatus: http.StatusNotFound,
			bodyTester:     notFoundBodyTester,
		},
		{
			name:           "InvalidProgramInactive",
			programID:      programInactive.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "csrf on settings",
			category:       "CSRF",
			target:         "paused.acme.example.com",
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["message"], "not accepting reports")
			},
		},
		{
			name:           "InvalidUnknownCategory",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "something weird",
			category:       "quantum entanglement",
			target:         "acme.example.com",
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assertErrorBodyWithFields(t, body)
				assert.Contains(t, body["fields"].(map[string]any)["category"], "unknown vulnerability category")
			},
		},
		{
			name:           "InvalidTargetOutOfScope",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "xss on legacy host",
			category:       "XSS",
			target:         "legacy.acme.example.com",
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assertErrorBodyWithFields(t, body)
				assert.Contains(t, body["fields"].(map[string]any)["target"], "not in the program scope")
			},
		},
		{
			name:           "InvalidMissingTitle",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "",
			category:       "XSS",
			target:         "acme.example.com",
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assertErrorBodyWithFields(t, body)
				assert.Contains(
					t,
					body["fields"].(map[string]any)["title"],
					"Failed to validate while checking condition: required",
				)
			},
		},
		{
			name:           "InvalidEvidenceNotBase64",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			title:          "idor with bad evidence",
			category:       "IDOR",
			target:         "acme.example.com",
			files:          `, "files": [{"file_name": "poc.txt", "data": "not base64!!!"}]`,
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assertErrorBodyWithFields(t, body)
				assert.Contains(t, body["fields"].(map[string]any)["files"], "must be valid base64")
			},
		},
		{
			name:           "InvalidOrganizationCannotSubmit",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authOrg.ID.String(), authToken},
			title:          "self report",
			category:       "XSS",
			target:         "acme.example.com",
			expectedStatus: http.StatusForbidden,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body, "message", "contains message key")
			},
		},
		{
			// Admins pass the kind gate but have no researcher ledger
			// row to attribute a report to.
			name:           "InvalidAdminCannotSubmit",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authAdmin.ID.String(), authToken},
			title:          "admin filed report",
			category:       "XSS",
			target:         "acme.example.com",
			expectedStatus: http.StatusNotFound,
			bodyTester:     notFoundBodyTester,
		},
		{
			name:           "InvalidInactiveAuth",
			programID:      programPublic.ID.String(),
			auth:           &clientAuth{authInactive.ID.String(), authToken},
			title:          "ghost report",
			category:       "XSS",
			target:         "acme.example.com",
			expectedStatus: http.StatusUnauthorized,
			bodyTester:     unauthorizedBodyTester,
		},
		{
			name:           "InvalidNoAuth",
			programID:      programPublic.ID.String(),
			auth:           nil,
			title:          "anonymous report",
			category:       "XSS",
			target:         "acme.example.com",
			expectedStatus: http.StatusUnauthorized,
			bodyTester:     unauthorizedBodyTester,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			payload := fmt.Sprintf(
				`{"title": "%s", "description": "details", "category": "%s", "target": "%s"%s}`,
				tt.title,
				tt.category,
				tt.target,
				tt.files,
			)

			res, body := s.submissionJSON(
				http.MethodPost,
				fmt.Sprintf("%s/v1/program/%s/submission/", s.server.URL, tt.programID),
				payload,
				tt.auth,
			)

			s.Equal(tt.expectedStatus, res.code, "incorrect status code")
			tt.bodyTester(s.T(), body)
		})
	}
}

func (s *ServerTestSuite) Test_SubmissionCreateMovesCounters() {
	var before models.Researcher
	s.Require().NoError(s.tx.First(&before, authResearcher.ID).Error)

	var programBefore models.Program
	s.Require().NoError(s.tx.First(&programBefore, programPublic.ID).Error)

	res, _ := s.submissionJSON(
		http.MethodPost,
		fmt.Sprintf("%s/v1/program/%s/submission/", s.server.URL, programPublic.ID),
		`{"title": "open redirect on logout", "description": "details", "category": "Open Redirect", "target": "acme.example.com"}`,
		&clientAuth{authResearcher.ID.String(), authToken},
	)
	s.Require().Equal(http.StatusOK, res.code)

	var after models.Researcher
	s.Require().NoError(s.tx.First(&after, authResearcher.ID).Error)
	s.Equal(before.ReportsSubmitted+1, after.ReportsSubmitted)
	s.Equal(before.ReputationScore, after.ReputationScore, "filing alone moves no reputation")

	var programAfter models.Program
	s.Require().NoError(s.tx.First(&programAfter, programPublic.ID).Error)
	s.Equal(programBefore.ReportCount+1, programAfter.ReportCount)
}

func (s *ServerTestSuite) Test_SubmissionGet() {
	tests := []struct {
		name         string
		auth         *clientAuth
		bodyTester   func(t *testing.T, body map[string]any)
		submissionID string
		expectedCode int
	}{
		{
			name:         "Author",
			submissionID: submission.ID.String(),
			auth:         &clientAuth{authResearcher.ID.String(), authToken},
			expectedCode: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["title"], "stored xss")
			},
		},
		{
			name:         "Collaborator",
			submissionID: submission.ID.String(),
			auth:         &clientAuth{authCollaborator.ID.String(), authToken},
			expectedCode: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["title"], "stored xss")
			},
		},
		{
			name:         "OwningOrganization",
			submissionID: submission.ID.String(),
			auth:         &clientAuth{authOrg.ID.String(), authToken},
			expectedCode: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["title"], "stored xss")
			},
		},
		{
			name:         "Admin",
			submissionID: submission.ID.String(),
			auth:         &clientAuth{authAdmin.ID.String(), authToken},
			expectedCode: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["title"], "stored xss")
			},
		},
		{
			name:         "OutsiderSeesNotFound",
			submissionID: submission.ID.String(),
			auth:         &clientAuth{authOutsider.ID.String(), authToken},
			expectedCode: http.StatusNotFound,
			bodyTester:   notFoundBodyTester,
		},
		{
			name:         "OtherOrganizationSeesNotFound",
			submissionID: submission.ID.String(),
			auth:         &clientAuth{authOtherOrg.ID.String(), authToken},
			expectedCode: http.StatusNotFound,
			bodyTester:   notFoundBodyTester,
		},
		{
			name:         "UnknownID",
			submissionID: "e7b8ddcb-0b07-4f31-b1b5-000000000000",
			auth:         &clientAuth{authResearcher.ID.String(), authToken},
			expectedCode: http.StatusNotFound,
			bodyTester:   notFoundBodyTester,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			res, body := s.submissionJSON(
				http.MethodGet,
				fmt.Sprintf("%s/v1/submission/%s/", s.server.URL, tt.submissionID),
				"",
				tt.auth,
			)

			s.Equal(tt.expectedCode, res.code, "incorrect status code")
			tt.bodyTester(s.T(), body)
		})
	}
}

func (s *ServerTestSuite) Test_SubmissionLifecycle() {
	orgAuth := &clientAuth{authOrg.ID.String(), authToken}
	url := fmt.Sprintf("%s/v1/submission/%s/", s.server.URL, submission.ID)

	ledger := func() models.Researcher {
		var r models.Researcher
		s.Require().NoError(s.tx.First(&r, authResearcher.ID).Error)
		return r
	}

	s.Run("ResearcherCannotRate", func() {
		res, body := s.submissionJSON(
			http.MethodPatch,
			url,
			`{"severity": "P1"}`,
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Equal(http.StatusNotFound, res.code, "reclassification by the author is hidden as not found")
		notFoundBodyTester(s.T(), body)
	})

	s.Run("FirstRating", func() {
		res, body := s.submissionJSON(http.MethodPatch, url, `{"severity": "P1"}`, orgAuth)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["severity"], "P1")
		s.EqualValues(40, body["points"])

		s.EqualValues(40, ledger().ReputationScore)
	})

	s.Run("DowngradeRefundsDifference", func() {
		res, body := s.submissionJSON(http.MethodPatch, url, `{"severity": "P3"}`, orgAuth)

		s.Require().Equal(http.StatusOK, res.code)
		s.EqualValues(10, body["points"])

		s.EqualValues(10, ledger().ReputationScore)
	})

	s.Run("SameSeverityIsNoop", func() {
		res, _ := s.submissionJSON(http.MethodPatch, url, `{"severity": "P3"}`, orgAuth)

		s.Require().Equal(http.StatusOK, res.code)
		s.EqualValues(10, ledger().ReputationScore)
	})

	s.Run("Resolve", func() {
		res, body := s.submissionJSON(http.MethodPatch, url, `{"status": "resolved"}`, orgAuth)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["status"], "resolved")
		s.Contains(body, "resolved_at")

		s.EqualValues(1, ledger().ReportsAccepted)

		var program models.Program
		s.Require().NoError(s.tx.First(&program, programPublic.ID).Error)
		s.EqualValues(1, program.ResolvedReports)
	})

	s.Run("ResolveAgainKeepsCounters", func() {
		res, _ := s.submissionJSON(http.MethodPatch, url, `{"status": "resolved"}`, orgAuth)

		s.Require().Equal(http.StatusOK, res.code)
		s.EqualValues(1, ledger().ReportsAccepted)

		var program models.Program
		s.Require().NoError(s.tx.First(&program, programPublic.ID).Error)
		s.EqualValues(1, program.ResolvedReports)
	})

	s.Run("FirstReward", func() {
		res, body := s.submissionJSON(http.MethodPatch, url, `{"reward": 500}`, orgAuth)

		s.Require().Equal(http.StatusOK, res.code)
		s.EqualValues(500, body["reward"])

		s.EqualValues(500, ledger().BountiesEarned)
	})

	s.Run("LoweredRewardSubtractsDelta", func() {
		res, _ := s.submissionJSON(http.MethodPatch, url, `{"reward": 300}`, orgAuth)

		s.Require().Equal(http.StatusOK, res.code)
		s.EqualValues(300, ledger().BountiesEarned)
	})

	s.Run("NegativeRewardRejected", func() {
		res, body := s.submissionJSON(http.MethodPatch, url, `{"reward": -100}`, orgAuth)

		s.Equal(http.StatusBadRequest, res.code)
		assertErrorBodyWithFields(s.T(), body)
	})

	s.Run("UnknownSeverityRejected", func() {
		res, body := s.submissionJSON(http.MethodPatch, url, `{"severity": "P9"}`, orgAuth)

		s.Equal(http.StatusBadRequest, res.code)
		assertErrorBodyWithFields(s.T(), body)
	})

	s.Run("UnknownStatusRejected", func() {
		res, body := s.submissionJSON(http.MethodPatch, url, `{"status": "maybe"}`, orgAuth)

		s.Equal(http.StatusBadRequest, res.code)
		assertErrorBodyWithFields(s.T(), body)
	})

	s.Run("AuthorEditsContent", func() {
		res, body := s.submissionJSON(
			http.MethodPatch,
			url,
			`{"description": "updated reproduction steps"}`,
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["description"], "updated reproduction")
	})
}

func (s *ServerTestSuite) Test_SubmissionDuplicateTouchesOnlyDuplicateCounter() {
	orgAuth := &clientAuth{authOrg.ID.String(), authToken}

	res, body := s.submissionJSON(
		http.MethodPost,
		fmt.Sprintf("%s/v1/program/%s/submission/", s.server.URL, programPublic.ID),
		`{"title": "dupe of stored xss", "description": "details", "category": "XSS", "target": "acme.example.com"}`,
		&clientAuth{authResearcher.ID.String(), authToken},
	)
	s.Require().Equal(http.StatusOK, res.code)
	dupeID := body["id"].(string)

	var before models.Researcher
	s.Require().NoError(s.tx.First(&before, authResearcher.ID).Error)

	res, _ = s.submissionJSON(
		http.MethodPatch,
		fmt.Sprintf("%s/v1/submission/%s/", s.server.URL, dupeID),
		`{"status": "duplicated"}`,
		orgAuth,
	)
	s.Require().Equal(http.StatusOK, res.code)

	var after models.Researcher
	s.Require().NoError(s.tx.First(&after, authResearcher.ID).Error)
	s.Equal(before.DuplicateReports+1, after.DuplicateReports)
	s.Equal(before.ReportsAccepted, after.ReportsAccepted)
	s.Equal(before.ReportsRejected, after.ReportsRejected)
	s.Equal(before.ReputationScore, after.ReputationScore)
}

func (s *ServerTestSuite) Test_SubmissionRewardOnDisclosureProgram() {
	res, body := s.submissionJSON(
		http.MethodPost,
		fmt.Sprintf("%s/v1/program/%s/submission/", s.server.URL, programNoBounty.ID),
		`{"title": "info leak in error page", "description": "details", "category": "Information Disclosure", "target": "globex.example.com"}`,
		&clientAuth{authResearcher.ID.String(), authToken},
	)
	s.Require().Equal(http.StatusOK, res.code)
	id := body["id"].(string)

	res, body = s.submissionJSON(
		http.MethodPatch,
		fmt.Sprintf("%s/v1/submission/%s/", s.server.URL, id),
		`{"reward": 100}`,
		&clientAuth{authOtherOrg.ID.String(), authToken},
	)

	s.Equal(http.StatusBadRequest, res.code)
	assertErrorBodyWithFields(s.T(), body)
	s.Contains(body["fields"].(map[string]any)["reward"], "does not pay bounties")
}

func (s *ServerTestSuite) Test_ProgramSubmissionsListing() {
	listURL := fmt.Sprintf("%s/v1/program/%s/submission/", s.server.URL, programPublic.ID)

	list := func(auth clientAuth) *resp {
		req, err := http.NewRequest(http.MethodGet, listURL, nil)
		s.Require().NoError(err)
		req.SetBasicAuth(auth.id, auth.token)

		r, err := doRequest(s.T(), req)
		s.Require().NoError(err)
		return r
	}

	s.Run("OwningOrganizationSeesReports", func() {
		r := list(clientAuth{authOrg.ID.String(), authToken})
		s.Require().Equal(http.StatusOK, r.code)

		var submissions []map[string]any
		s.Require().NoError(json.Unmarshal([]byte(r.body), &submissions))

		s.Require().NotEmpty(submissions)
		for _, entry := range submissions {
			s.Equal(programPublic.ID.String(), entry["program_id"])
		}
	})

	s.Run("AdminSeesReports", func() {
		r := list(clientAuth{authAdmin.ID.String(), authToken})
		s.Require().Equal(http.StatusOK, r.code)

		var submissions []map[string]any
		s.Require().NoError(json.Unmarshal([]byte(r.body), &submissions))
		s.NotEmpty(submissions)
	})

	s.Run("OtherOrganizationGetsNotFound", func() {
		r := list(clientAuth{authOtherOrg.ID.String(), authToken})
		s.Require().Equal(http.StatusNotFound, r.code)

		var body map[string]any
		s.Require().NoError(json.Unmarshal([]byte(r.body), &body))
		notFoundBodyTester(s.T(), body)
	})

	s.Run("ResearcherGetsNotFound", func() {
		// Per-submission participant access does not extend to the
		// program-wide listing, author or not.
		r := list(clientAuth{authResearcher.ID.String(), authToken})
		s.Require().Equal(http.StatusNotFound, r.code)

		var body map[string]any
		s.Require().NoError(json.Unmarshal([]byte(r.body), &body))
		notFoundBodyTester(s.T(), body)
	})
}
