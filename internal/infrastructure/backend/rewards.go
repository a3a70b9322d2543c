package backend

import (
	"context"
	"net/http"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

// ── Predictions ──

func (c *Client) ListPredictions(ctx context.Context, credential string) ([]domain.Prediction, error) {
	var predictions []domain.Prediction
	err := c.do(ctx, request{method: http.MethodGet, path: "/predictions", credential: credential}, &predictions)
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

type predictionDetailPayload struct {
	Prediction      domain.Prediction       `json:"prediction"`
	UserPredictions []domain.UserPrediction `json:"userPredictions"`
}

func (c *Client) GetPrediction(ctx context.Context, credential, id string) (*domain.Prediction, []domain.UserPrediction, error) {
	var payload predictionDetailPayload
	err := c.do(ctx, request{method: http.MethodGet, path: "/predictions/" + id, credential: credential}, &payload)
	if err != nil {
		return nil, nil, err
	}
	return &payload.Prediction, payload.UserPredictions, nil
}

func (c *Client) SubmitPrediction(ctx context.Context, credential, id, guess string) (*domain.PredictionResult, error) {
	var result domain.PredictionResult
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/predictions/" + id + "/submit",
		credential: credential,
		body:       map[string]string{"guess": guess},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ── Voting ──

type campaignListPayload struct {
	Data       []domain.VotingCampaign `json:"data"`
	Pagination domain.Pagination       `json:"pagination"`
}

func (c *Client) ListCampaigns(ctx context.Context, page ports.ListPage) ([]domain.VotingCampaign, *domain.Pagination, error) {
	var payload campaignListPayload
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/voting/campaigns",
		query:  listQuery(page.Page, page.Limit, page.Search),
	}, &payload)
	if err != nil {
		return nil, nil, err
	}
	return payload.Data, &payload.Pagination, nil
}

type campaignDetailPayload struct {
	Campaign domain.VotingCampaign `json:"campaign"`
	Entries  []domain.VotingEntry  `json:"entries"`
}

func (c *Client) GetCampaign(ctx context.Context, credential, id string) (*domain.VotingCampaign, []domain.VotingEntry, error) {
	var payload campaignDetailPayload
	err := c.do(ctx, request{method: http.MethodGet, path: "/voting/campaigns/" + id, credential: credential}, &payload)
	if err != nil {
		return nil, nil, err
	}
	return &payload.Campaign, payload.Entries, nil
}

func (c *Client) Vote(ctx context.Context, credential, campaignID, entryID string) (*domain.VoteResult, error) {
	var result domain.VoteResult
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/voting/campaigns/" + campaignID + "/entries/" + entryID + "/vote",
		credential: credential,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RemoveVote(ctx context.Context, credential, campaignID, entryID string) error {
	return c.do(ctx, request{
		method:     http.MethodDelete,
		path:       "/voting/campaigns/" + campaignID + "/entries/" + entryID + "/vote",
		credential: credential,
	}, nil)
}

type myVotesPayload struct {
	Data       []domain.VotingEntry `json:"data"`
	Pagination domain.Pagination    `json:"pagination"`
}

func (c *Client) MyVotes(ctx context.Context, credential string, page ports.ListPage) ([]domain.VotingEntry, *domain.Pagination, error) {
	var payload myVotesPayload
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/voting/my-votes",
		credential: credential,
		query:      listQuery(page.Page, page.Limit, ""),
	}, &payload)
	if err != nil {
		return nil, nil, err
	}
	return payload.Data, &payload.Pagination, nil
}

// ── Check-in ──

func (c *Client) CheckInStatus(ctx context.Context, credential string) (*domain.CheckInStatus, error) {
	var status domain.CheckInStatus
	err := c.do(ctx, request{method: http.MethodGet, path: "/check-in/status", credential: credential}, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) CheckInQuestion(ctx context.Context, credential string) (*domain.Question, error) {
	var question domain.Question
	err := c.do(ctx, request{method: http.MethodGet, path: "/check-in/question", credential: credential}, &question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (c *Client) SubmitCheckIn(ctx context.Context, credential, questionID, answer string) (*domain.CheckInResult, error) {
	var result domain.CheckInResult
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/check-in/submit",
		credential: credential,
		body:       map[string]string{"questionId": questionID, "answer": answer},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ── Surveys ──

func (c *Client) ListSurveys(ctx context.Context, credential string) ([]domain.Survey, error) {
	var surveys []domain.Survey
	err := c.do(ctx, request{method: http.MethodGet, path: "/surveys", credential: credential}, &surveys)
	if err != nil {
		return nil, err
	}
	return surveys, nil
}

func (c *Client) GetSurvey(ctx context.Context, credential, id string) (*domain.Survey, error) {
	var survey domain.Survey
	err := c.do(ctx, request{method: http.MethodGet, path: "/surveys/" + id, credential: credential}, &survey)
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (c *Client) SubmitSurvey(ctx context.Context, credential, id string, answers []domain.SurveyAnswer) (*domain.SurveyResult, error) {
	var result domain.SurveyResult
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/surveys/" + id + "/submit",
		credential: credential,
		body:       map[string]any{"answers": answers},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ── Feedback ──

func (c *Client) SubmitFeedback(ctx context.Context, credential, text string) (*domain.Feedback, error) {
	var fb domain.Feedback
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/feedback",
		credential: credential,
		body:       map[string]string{"feedbackText": text},
	}, &fb)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (c *Client) MyFeedback(ctx context.Context, credential string) ([]domain.Feedback, error) {
	var fbs []domain.Feedback
	err := c.do(ctx, request{method: http.MethodGet, path: "/feedback/my", credential: credential}, &fbs)
	if err != nil {
		return nil, err
	}
	return fbs, nil
}
