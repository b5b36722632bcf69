package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func (s *ServerTestSuite) Test_ProgramCreate() {
	tests := []struct {
		name           string
		auth           *clientAuth
		bodyTester     func(t *testing.T, body map[string]any)
		payload        string
		expectedStatus int
	}{
		{
			name:           "Valid",
			auth:           &clientAuth{authOrg.ID.String(), authToken},
			payload:        `{"name": "acme mobile", "description": "android and ios apps", "type": "bug_bounty", "scope": ["mobile.acme.example.com"], "reward_range": {"p1": {"min": 100, "max": 1000}, "p2": {"min": 50, "max": 100}, "p3": {"min": 10, "max": 50}, "p4": {"min": 0, "max": 10}, "p5": {"min": 0, "max": 0}}}`,
			expectedStatus: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["name"], "acme mobile")
				assert.Contains(t, body["visibility"], "public", "visibility defaults to public")
				assert.Contains(t, body["status"], "active", "new programs start active")
			},
		},
		{
			name:           "ValidDisclosure",
			auth:           &clientAuth{authOtherOrg.ID.String(), authToken},
			payload:        `{"name": "globex vdp", "description": "thanks only", "type": "disclosure", "scope": ["vdp.globex.example.com"]}`,
			expectedStatus: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.NotContains(t, body, "reward_range", "disclosure programs carry no payout bands")
			},
		},
		{
			name:           "InvalidType",
			auth:           &clientAuth{authOrg.ID.String(), authToken},
			payload:        `{"name": "bad", "description": "bad", "type": "charity", "scope": ["x.example.com"]}`,
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assertErrorBodyWithFields(t, body)
			},
		},
		{
			name:           "InvalidEmptyScope",
			auth:           &clientAuth{authOrg.ID.String(), authToken},
			payload:        `{"name": "bad", "description": "bad", "type": "disclosure", "scope": []}`,
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assertErrorBodyWithFields(t, body)
			},
		},
		{
			name:           "InvalidRewardRangeOnDisclosure",
			auth:           &clientAuth{authOtherOrg.ID.String(), authToken},
			payload:        `{"name": "bad", "description": "bad", "type": "disclosure", "scope": ["x.example.com"], "reward_range": {"p1": {"min": 1, "max": 2}, "p2": {"min": 0, "max": 0}, "p3": {"min": 0, "max": 0}, "p4": {"min": 0, "max": 0}, "p5": {"min": 0, "max": 0}}}`,
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assertErrorBodyWithFields(t, body)
			},
		},
		{
			name:           "InvalidResearcherCannotCreate",
			auth:           &clientAuth{authResearcher.ID.String(), authToken},
			payload:        `{"name": "sneaky", "description": "bad", "type": "disclosure", "scope": ["x.example.com"]}`,
			expectedStatus: http.StatusForbidden,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body, "message", "contains message key")
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			res, body := s.submissionJSON(
				http.MethodPost,
				fmt.Sprintf("%s/v1/program/", s.server.URL),
				tt.payload,
				tt.auth,
			)

			s.Equal(tt.expectedStatus, res.code, "incorrect status code")
			tt.bodyTester(s.T(), body)
		})
	}
}

func (s *ServerTestSuite) Test_ProgramList() {
	list := func(auth *clientAuth) []any {
		req, err := http.NewRequest(
			http.MethodGet,
			fmt.Sprintf("%s/v1/program/", s.server.URL),
			nil,
		)
		s.Require().NoError(err)
		req.SetBasicAuth(auth.id, auth.token)

		res, err := doRequest(s.T(), req)
		s.Require().NoError(err)
		s.Require().Equal(http.StatusOK, res.code)

		var parsed []any
		s.Require().NoError(json.Unmarshal([]byte(res.body), &parsed))
		return parsed
	}

	names := func(entries []any) []string {
		out := make([]string, 0, len(entries))
		for _, entry := range entries {
			out = append(out, entry.(map[string]any)["name"].(string))
		}
		return out
	}

	s.Run("InvitedResearcherSeesPrivate", func() {
		got := names(list(&clientAuth{authResearcher.ID.String(), authToken}))
		s.Contains(got, programPublic.Name)
		s.Contains(got, programPrivate.Name)
	})

	s.Run("UninvitedResearcherDoesNotSeePrivate", func() {
		got := names(list(&clientAuth{authOutsider.ID.String(), authToken}))
		s.Contains(got, programPublic.Name)
		s.NotContains(got, programPrivate.Name)
	})

	s.Run("OwningOrganizationSeesItsPrivate", func() {
		got := names(list(&clientAuth{authOrg.ID.String(), authToken}))
		s.Contains(got, programPrivate.Name)
	})

	s.Run("AdminSeesEverything", func() {
		got := names(list(&clientAuth{authAdmin.ID.String(), authToken}))
		s.Contains(got, programPublic.Name)
		s.Contains(got, programPrivate.Name)
		s.Contains(got, programInactive.Name)
	})
}

func (s *ServerTestSuite) Test_ProgramGet() {
	s.Run("PublicVisibleToAnyone", func() {
		res, body := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/program/%s/", s.server.URL, programPublic.ID),
			"",
			&clientAuth{authOutsider.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["name"], programPublic.Name)
		s.Contains(body, "reward_range")
	})

	s.Run("PrivateHiddenFromUninvited", func() {
		res, body := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/program/%s/", s.server.URL, programPrivate.ID),
			"",
			&clientAuth{authOutsider.ID.String(), authToken},
		)

		s.Equal(http.StatusNotFound, res.code)
		notFoundBodyTester(s.T(), body)
	})

	s.Run("PrivateVisibleToInvited", func() {
		res, body := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/program/%s/", s.server.URL, programPrivate.ID),
			"",
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["name"], programPrivate.Name)
	})
}

func (s *ServerTestSuite) Test_ProgramUpdate() {
	s.Run("OwnerDeactivates", func() {
		res, body := s.submissionJSON(
			http.MethodPatch,
			fmt.Sprintf("%s/v1/program/%s/", s.server.URL, programPublic.ID),
			`{"status": "inactive"}`,
			&clientAuth{authOrg.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["status"], "inactive")
	})

	s.Run("DeactivatedProgramRejectsReports", func() {
		res, body := s.submissionJSON(
			http.MethodPost,
			fmt.Sprintf("%s/v1/program/%s/submission/", s.server.URL, programPublic.ID),
			`{"title": "late report", "description": "details", "category": "XSS", "target": "acme.example.com"}`,
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Equal(http.StatusBadRequest, res.code)
		s.Contains(body["message"], "not accepting reports")
	})

	s.Run("OtherOrganizationCannotUpdate", func() {
		res, body := s.submissionJSON(
			http.MethodPatch,
			fmt.Sprintf("%s/v1/program/%s/", s.server.URL, programPublic.ID),
			`{"status": "active"}`,
			&clientAuth{authOtherOrg.ID.String(), authToken},
		)

		s.Equal(http.StatusNotFound, res.code)
		notFoundBodyTester(s.T(), body)
	})

	s.Run("UnknownStatusRejected", func() {
		res, body := s.submissionJSON(
			http.MethodPatch,
			fmt.Sprintf("%s/v1/program/%s/", s.server.URL, programPublic.ID),
			`{"status": "hibernating"}`,
			&clientAuth{authOrg.ID.String(), authToken},
		)

		s.Equal(http.StatusBadRequest, res.code)
		assertErrorBodyWithFields(s.T(), body)
	})
}

func (s *ServerTestSuite) Test_ProgramInvite() {
	s.Run("OwnerInvites", func() {
		res, _ := s.submissionJSON(
			http.MethodPost,
			fmt.Sprintf("%s/v1/program/%s/invite/", s.server.URL, programPrivate.ID),
			fmt.Sprintf(`{"email": "%s"}`, authOutsider.Email),
			&clientAuth{authOrg.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
	})

	s.Run("InvitedResearcherCanNowSubmit", func() {
		res, _ := s.submissionJSON(
			http.MethodPost,
			fmt.Sprintf("%s/v1/program/%s/submission/", s.server.URL, programPrivate.ID),
			`{"title": "ssrf via webhook", "description": "details", "category": "SSRF", "target": "internal.acme.example.com"}`,
			&clientAuth{authOutsider.ID.String(), authToken},
		)

		s.Equal(http.StatusOK, res.code)
	})

	s.Run("DuplicateInviteRejected", func() {
		res, body := s.submissionJSON(
			http.MethodPost,
			fmt.Sprintf("%s/v1/program/%s/invite/", s.server.URL, programPrivate.ID),
			fmt.Sprintf(`{"email": "%s"}`, authOutsider.Email),
			&clientAuth{authOrg.ID.String(), authToken},
		)

		s.Equal(http.StatusBadRequest, res.code)
		assertErrorBodyWithFields(s.T(), body)
	})

	s.Run("InviteOnPublicProgramRejected", func() {
		res, body := s.submissionJSON(
			http.MethodPost,
			fmt.Sprintf("%s/v1/program/%s/invite/", s.server.URL, programPublic.ID),
			`{"email": "anyone@example.com"}`,
			&clientAuth{authOrg.ID.String(), authToken},
		)

		s.Equal(http.StatusBadRequest, res.code)
		s.Contains(body["message"], "invite list")
	})

	s.Run("ResearcherCannotInvite", func() {
		res, body := s.submissionJSON(
			http.MethodPost,
			fmt.Sprintf("%s/v1/program/%s/invite/", s.server.URL, programPrivate.ID),
			`{"email": "friend@example.com"}`,
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Equal(http.StatusNotFound, res.code)
		notFoundBodyTester(s.T(), body)
	})
}
