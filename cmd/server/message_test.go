package main

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func (s *ServerTestSuite) Test_MessageThread() {
	url := fmt.Sprintf("%s/v1/submission/%s/message/", s.server.URL, submission.ID)

	s.Run("AuthorPosts", func() {
		res, body := s.submissionJSON(
			http.MethodPost,
			url,
			`{"message": "any update on triage?"}`,
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["message"], "any update")
		s.Contains(body["sender_kind"], "researcher")
		s.Contains(body["sender_name"], authResearcher.Name)
	})

	s.Run("OrganizationReplies", func() {
		res, body := s.submissionJSON(
			http.MethodPost,
			url,
			`{"message": "triage in progress"}`,
			&clientAuth{authOrg.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["sender_kind"], "organization")
	})

	s.Run("CollaboratorReadsThreadInOrder", func() {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		s.Require().NoError(err)
		req.SetBasicAuth(authCollaborator.ID.String(), authToken)

		res, err := doRequest(s.T(), req)
		s.Require().NoError(err)
		s.Require().Equal(http.StatusOK, res.code)

		var messages []map[string]any
		s.Require().NoError(json.Unmarshal([]byte(res.body), &messages))

		s.Require().Len(messages, 2)
		s.Contains(messages[0]["message"], "any update")
		s.Contains(messages[1]["message"], "triage in progress")
	})

	s.Run("BlankMessageRejected", func() {
		res, body := s.submissionJSON(
			http.MethodPost,
			url,
			`{"message": "   "}`,
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Equal(http.StatusBadRequest, res.code)
		assertErrorBodyWithFields(s.T(), body)
	})

	s.Run("OutsiderCannotPost", func() {
		res, body := s.submissionJSON(
			http.MethodPost,
			url,
			`{"message": "let me in"}`,
			&clientAuth{authOutsider.ID.String(), authToken},
		)

		s.Equal(http.StatusNotFound, res.code)
		notFoundBodyTester(s.T(), body)
	})

	s.Run("OutsiderCannotRead", func() {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		s.Require().NoError(err)
		req.SetBasicAuth(authOutsider.ID.String(), authToken)

		res, err := doRequest(s.T(), req)
		s.Require().NoError(err)
		s.Equal(http.StatusNotFound, res.code)
	})

	s.Run("ThreadIncludedInSubmissionGet", func() {
		res, body := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/submission/%s/", s.server.URL, submission.ID),
			"",
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		messages, ok := body["messages"].([]any)
		s.Require().True(ok, "messages key present")
		s.Len(messages, 2)
	})
}
