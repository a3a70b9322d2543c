package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pointplay/rewards-gateway/internal/api/metrics"
	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
	"github.com/pointplay/rewards-gateway/internal/core/service"
)

// RewardsHandler fronts all point-earning and point-spending gameplay:
// predictions, voting, check-in, surveys, and feedback. Every point-affecting
// route goes through the action orchestrator so the snapshot refresh is never
// skipped.
type RewardsHandler struct {
	backend ports.Backend
	actions *service.ActionService
}

func NewRewardsHandler(backend ports.Backend, actions *service.ActionService) *RewardsHandler {
	return &RewardsHandler{backend: backend, actions: actions}
}

// actionResponse is the uniform envelope for orchestrated mutations: the
// backend's verdict plus the refreshed snapshot. User is absent when the
// refresh failed; the client keeps its last snapshot until the next refresh.
type actionResponse struct {
	Result any                  `json:"result,omitempty"`
	User   *domain.UserSnapshot `json:"user,omitempty"`
}

func countAction(action string, err error) {
	switch {
	case err == nil:
		metrics.ActionsTotal.WithLabelValues(action, "success").Inc()
	case errors.Is(err, domain.ErrActionInFlight):
		metrics.ActionsTotal.WithLabelValues(action, "in_flight").Inc()
	case errors.Is(err, domain.ErrRejected):
		metrics.ActionsTotal.WithLabelValues(action, "rejected").Inc()
	default:
		metrics.ActionsTotal.WithLabelValues(action, "error").Inc()
	}
}

func outcomeUser(outcome *service.ActionOutcome) *domain.UserSnapshot {
	if outcome == nil {
		return nil
	}
	if outcome.User == nil {
		metrics.RefreshFailuresTotal.Inc()
		return nil
	}
	return outcome.User
}

// ── Predictions ──

// ListPredictions returns the open prediction games.
//
// @Summary      List predictions
// @Tags         predictions
// @Produce      json
// @Success      200 {array} domain.Prediction
// @Router       /predictions [get]
func (h *RewardsHandler) ListPredictions(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	predictions, err := h.backend.ListPredictions(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, predictions)
}

type predictionDetailResponse struct {
	Prediction      *domain.Prediction      `json:"prediction"`
	UserPredictions []domain.UserPrediction `json:"userPredictions"`
}

// GetPrediction returns one prediction with the user's submission history.
func (h *RewardsHandler) GetPrediction(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	prediction, userPredictions, err := h.backend.GetPrediction(c.Request().Context(), sess.Credential, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, predictionDetailResponse{Prediction: prediction, UserPredictions: userPredictions})
}

type submitPredictionRequest struct {
	Guess string `json:"guess" validate:"required"`
}

// SubmitPrediction submits a guess; points are deducted by the backend and
// the refreshed snapshot is returned alongside the verdict.
//
// @Summary      Submit a prediction guess
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        id   path string true "Prediction id"
// @Param        body body submitPredictionRequest true "Guess"
// @Success      200 {object} actionResponse
// @Failure      409 {object} map[string]string
// @Router       /predictions/{id}/submit [post]
func (h *RewardsHandler) SubmitPrediction(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}

	var req submitPredictionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, outcome, err := h.actions.SubmitPrediction(c.Request().Context(), sess, c.Param("id"), req.Guess)
	countAction(service.ActionSubmitPrediction, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{Result: result, User: outcomeUser(outcome)})
}

// ── Voting ──

type campaignListResponse struct {
	Data       []domain.VotingCampaign `json:"data"`
	Pagination *domain.Pagination      `json:"pagination"`
}

// ListCampaigns is public: guests can browse campaigns.
func (h *RewardsHandler) ListCampaigns(c echo.Context) error {
	campaigns, pagination, err := h.backend.ListCampaigns(c.Request().Context(), pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, campaignListResponse{Data: campaigns, Pagination: pagination})
}

type campaignDetailResponse struct {
	Campaign *domain.VotingCampaign `json:"campaign"`
	Entries  []domain.VotingEntry   `json:"entries"`
}

func (h *RewardsHandler) GetCampaign(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	campaign, entries, err := h.backend.GetCampaign(c.Request().Context(), sess.Credential, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, campaignDetailResponse{Campaign: campaign, Entries: entries})
}

// Vote casts a vote for an entry. Vote limits live upstream; the gateway
// only relays the refusal message when one is hit.
//
// @Summary      Vote for a campaign entry
// @Tags         voting
// @Produce      json
// @Param        id      path string true "Campaign id"
// @Param        entryId path string true "Entry id"
// @Success      200 {object} actionResponse
// @Failure      409 {object} map[string]string
// @Router       /voting/campaigns/{id}/entries/{entryId}/vote [post]
func (h *RewardsHandler) Vote(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	result, outcome, err := h.actions.Vote(c.Request().Context(), sess, c.Param("id"), c.Param("entryId"))
	countAction(service.ActionVote, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{Result: result, User: outcomeUser(outcome)})
}

// RemoveVote withdraws a previously cast vote.
func (h *RewardsHandler) RemoveVote(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	outcome, err := h.actions.RemoveVote(c.Request().Context(), sess, c.Param("id"), c.Param("entryId"))
	countAction(service.ActionRemoveVote, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{User: outcomeUser(outcome)})
}

type myVotesResponse struct {
	Data       []domain.VotingEntry `json:"data"`
	Pagination *domain.Pagination   `json:"pagination"`
}

func (h *RewardsHandler) MyVotes(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	votes, pagination, err := h.backend.MyVotes(c.Request().Context(), sess.Credential, pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, myVotesResponse{Data: votes, Pagination: pagination})
}

// ── Check-in ──

func (h *RewardsHandler) CheckInStatus(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	status, err := h.backend.CheckInStatus(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

func (h *RewardsHandler) CheckInQuestion(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	question, err := h.backend.CheckInQuestion(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, question)
}

type checkInRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}

// SubmitCheckIn answers today's quiz question.
func (h *RewardsHandler) SubmitCheckIn(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}

	var req checkInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, outcome, err := h.actions.SubmitCheckIn(c.Request().Context(), sess, req.QuestionID, req.Answer)
	countAction(service.ActionCheckIn, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{Result: result, User: outcomeUser(outcome)})
}

// ── Surveys ──

func (h *RewardsHandler) ListSurveys(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	surveys, err := h.backend.ListSurveys(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, surveys)
}

func (h *RewardsHandler) GetSurvey(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	survey, err := h.backend.GetSurvey(c.Request().Context(), sess.Credential, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, survey)
}

type submitSurveyRequest struct {
	Answers []domain.SurveyAnswer `json:"answers" validate:"required,min=1"`
}

// SubmitSurvey completes a survey for points.
func (h *RewardsHandler) SubmitSurvey(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}

	var req submitSurveyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, outcome, err := h.actions.SubmitSurvey(c.Request().Context(), sess, c.Param("id"), req.Answers)
	countAction(service.ActionSubmitSurvey, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{Result: result, User: outcomeUser(outcome)})
}

// ── Feedback & history ──

type feedbackRequest struct {
	FeedbackText string `json:"feedbackText" validate:"required"`
}

// SubmitFeedback relays a suggestion. Points, if any, are awarded later on
// approval; no refresh is triggered here.
func (h *RewardsHandler) SubmitFeedback(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}

	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fb, err := h.backend.SubmitFeedback(c.Request().Context(), sess.Credential, req.FeedbackText)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fb)
}

func (h *RewardsHandler) MyFeedback(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	fbs, err := h.backend.MyFeedback(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fbs)
}

func (h *RewardsHandler) Transactions(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	txs, err := h.backend.GetTransactions(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txs)
}

func pageFromQuery(c echo.Context) ports.ListPage {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return ports.ListPage{Page: page, Limit: limit, Search: c.QueryParam("search")}
}
