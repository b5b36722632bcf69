package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
)

func (s *ServerTestSuite) Test_ResearcherMe() {
	s.Run("Valid", func() {
		res, body := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/researcher/me/", s.server.URL),
			"",
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		s.Contains(body["username"], authResearcher.Name)
		s.Contains(body, "reputation_score")
		s.Contains(body, "bounties_earned")
	})

	s.Run("LedgerReflectsLifecycle", func() {
		orgAuth := &clientAuth{authOrg.ID.String(), authToken}
		url := fmt.Sprintf("%s/v1/submission/%s/", s.server.URL, submission.ID)

		res, _ := s.submissionJSON(http.MethodPatch, url, `{"severity": "P2", "status": "resolved"}`, orgAuth)
		s.Require().Equal(http.StatusOK, res.code)

		res, body := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/researcher/me/", s.server.URL),
			"",
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Require().Equal(http.StatusOK, res.code)
		s.EqualValues(20, body["reputation_score"])
		s.EqualValues(1, body["reports_accepted"])
	})

	s.Run("OrganizationGetsForbidden", func() {
		res, _ := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/researcher/me/", s.server.URL),
			"",
			&clientAuth{authOrg.ID.String(), authToken},
		)

		s.Equal(http.StatusForbidden, res.code)
	})
}

func (s *ServerTestSuite) Test_ResearcherMySubmissions() {
	req, err := http.NewRequest(
		http.MethodGet,
		fmt.Sprintf("%s/v1/researcher/me/submissions/", s.server.URL),
		nil,
	)
	s.Require().NoError(err)
	req.SetBasicAuth(authResearcher.ID.String(), authToken)

	r, err := doRequest(s.T(), req)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, r.code)

	var submissions []map[string]any
	s.Require().NoError(json.Unmarshal([]byte(r.body), &submissions))

	s.Require().NotEmpty(submissions)
	for _, entry := range submissions {
		s.Equal(authResearcher.ID.String(), entry["researcher_id"])
	}
}

func (s *ServerTestSuite) Test_AdminListSubmissions() {
	s.Run("AdminSeesAll", func() {
		req, err := http.NewRequest(
			http.MethodGet,
			fmt.Sprintf("%s/v1/admin/submissions/", s.server.URL),
			nil,
		)
		s.Require().NoError(err)
		req.SetBasicAuth(authAdmin.ID.String(), authToken)

		res, err := doRequest(s.T(), req)
		s.Require().NoError(err)
		s.Require().Equal(http.StatusOK, res.code)

		var submissions []map[string]any
		s.Require().NoError(json.Unmarshal([]byte(res.body), &submissions))
		s.NotEmpty(submissions)
	})

	s.Run("FilterByStatus", func() {
		req, err := http.NewRequest(
			http.MethodGet,
			fmt.Sprintf("%s/v1/admin/submissions/?status=pending", s.server.URL),
			nil,
		)
		s.Require().NoError(err)
		req.SetBasicAuth(authAdmin.ID.String(), authToken)

		res, err := doRequest(s.T(), req)
		s.Require().NoError(err)
		s.Require().Equal(http.StatusOK, res.code)

		var submissions []map[string]any
		s.Require().NoError(json.Unmarshal([]byte(res.body), &submissions))
		for _, entry := range submissions {
			s.Equal("pending", entry["status"])
		}
	})

	s.Run("UnknownStatusFilterRejected", func() {
		res, body := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/admin/submissions/?status=bogus", s.server.URL),
			"",
			&clientAuth{authAdmin.ID.String(), authToken},
		)

		s.Equal(http.StatusBadRequest, res.code)
		assertErrorBodyWithFields(s.T(), body)
	})

	s.Run("ResearcherGetsForbidden", func() {
		res, _ := s.submissionJSON(
			http.MethodGet,
			fmt.Sprintf("%s/v1/admin/submissions/", s.server.URL),
			"",
			&clientAuth{authResearcher.ID.String(), authToken},
		)

		s.Equal(http.StatusForbidden, res.code)
	})
}

func (s *ServerTestSuite) Test_ResearcherLeaderboard() {
	topURL := fmt.Sprintf("%s/v1/researcher/top/", s.server.URL)

	setScore := func(id string, score int) {
		err := s.tx.Model(&models.Researcher{}).
			Where("id = ?", id).
			UpdateColumn("reputation_score", score).Error
		s.Require().NoError(err)
	}

	s.Run("EmptyBeforeAnyoneScores", func() {
		res, err := doRequest(s.T(), s.authedGet(topURL, authOrg))
		s.Require().NoError(err)
		s.Require().Equal(http.StatusOK, res.code)

		var ranks []map[string]any
		s.Require().NoError(json.Unmarshal([]byte(res.body), &ranks))
		s.Empty(ranks)
	})

	s.Run("OrderedAboveThreshold", func() {
		setScore(authResearcher.ID.String(), 20)
		setScore(authCollaborator.ID.String(), 40)
		// a score of exactly 10 stays below the listing threshold
		setScore(authOutsider.ID.String(), 10)

		res, err := doRequest(s.T(), s.authedGet(topURL, authOrg))
		s.Require().NoError(err)
		s.Require().Equal(http.StatusOK, res.code)

		var ranks []map[string]any
		s.Require().NoError(json.Unmarshal([]byte(res.body), &ranks))

		s.Require().Len(ranks, 2)
		s.Equal(authCollaborator.Email, ranks[0]["email"])
		s.EqualValues(40, ranks[0]["reputation_score"])
		s.Equal(authResearcher.Email, ranks[1]["email"])
		s.EqualValues(20, ranks[1]["reputation_score"])
	})

	s.Run("VisibleToResearchers", func() {
		setScore(authCollaborator.ID.String(), 40)

		res, err := doRequest(s.T(), s.authedGet(topURL, authResearcher))
		s.Require().NoError(err)
		s.Equal(http.StatusOK, res.code)
	})

	s.Run("RequiresAuth", func() {
		req, err := http.NewRequest(http.MethodGet, topURL, nil)
		s.Require().NoError(err)

		res, err := doRequest(s.T(), req)
		s.Require().NoError(err)
		s.Equal(http.StatusUnauthorized, res.code)
	})
}
