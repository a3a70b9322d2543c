package domain

import "time"

// Prediction is a guessing game the backend runs. PointsCost is charged by
// the backend on submission; the gateway never debits locally.
type Prediction struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
	PointsCost  int    `json:"pointsCost"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// UserPrediction is one submitted guess, as reported by the backend.
type UserPrediction struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	PredictionID string `json:"predictionId"`
	Guess        string `json:"guess"`
	IsCorrect    bool   `json:"isCorrect"`
	PointsSpent  int    `json:"pointsSpent"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// PredictionResult is the backend's verdict on a submitted guess.
type PredictionResult struct {
	IsCorrect   bool `json:"isCorrect"`
	BonusPoints int  `json:"bonusPoints,omitempty"`
}

// VotingCampaign is a public voting contest. Vote limits and point awards
// are enforced upstream; the gateway only relays them for display.
type VotingCampaign struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ImageURL        string `json:"imageUrl,omitempty"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	PointsPerVote   int    `json:"pointsPerVote"`
	MaxVotesPerUser int    `json:"maxVotesPerUser"`
	VotingFrequency string `json:"votingFrequency"`
	Status          string `json:"status"`
}

// VotingEntry is a candidate within a campaign.
type VotingEntry struct {
	ID          string `json:"id"`
	CampaignID  string `json:"campaignId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VoteCount   int    `json:"voteCount"`
	HasVoted    bool   `json:"hasVoted,omitempty"`
}

// VoteResult reports the points the backend credited for a vote.
type VoteResult struct {
	PointsEarned int `json:"pointsEarned"`
}

// Question is a daily check-in quiz question.
type Question struct {
	ID           string `json:"id"`
	QuestionText string `json:"questionText"`
	ImageURL     string `json:"imageUrl,omitempty"`
	Points       int    `json:"points"`
}

// CheckInStatus describes whether today's check-in has been completed.
type CheckInStatus struct {
	HasCheckedIn bool `json:"hasCheckedIn"`
	IsCorrect    bool `json:"isCorrect,omitempty"`
	PointsEarned int  `json:"pointsEarned,omitempty"`
}

// CheckInResult is the backend's grading of a check-in answer.
type CheckInResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	PointsEarned  int    `json:"pointsEarned"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

// Survey is a point-granting questionnaire fetched per view.
type Survey struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Points      int              `json:"points"`
	Status      string           `json:"status"`
	Questions   []SurveyQuestion `json:"questions,omitempty"`
}

// SurveyQuestion is one question inside a survey.
type SurveyQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// SurveyAnswer pairs a survey question with the user's response.
type SurveyAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// SurveyResult reports points granted for a completed survey.
type SurveyResult struct {
	PointsEarned int `json:"pointsEarned"`
}

// Feedback is a user-submitted suggestion, point-rewarded on approval.
type Feedback struct {
	ID            string `json:"id"`
	FeedbackText  string `json:"feedbackText"`
	Status        string `json:"status"`
	AwardedPoints int    `json:"awardedPoints,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// PointTransaction is one ledger entry, displayed read-only.
type PointTransaction struct {
	ID        string `json:"id"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// DashboardStats is the staff/admin overview payload, relayed verbatim.
type DashboardStats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalPredictions  int `json:"totalPredictions"`
	ActivePredictions int `json:"activePredictions"`
	TotalPoints       int `json:"totalPoints"`
}

// GrantPoints is an admin request to credit a user.
type GrantPoints struct {
	UserID string `json:"userId"`
	Amount int    `json:"amount"`
	Notes  string `json:"notes,omitempty"`
}

// Pagination mirrors the backend's list envelopes.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ChatMessage is one message in a support conversation. The gateway caches
// polled messages so multiple clients reading the same conversation do not
// multiply upstream requests.
type ChatMessage struct {
	ID             string    `json:"id" bson:"_id"`
	ConversationID string    `json:"conversationId" bson:"conversation_id"`
	SenderID       string    `json:"senderId" bson:"sender_id"`
	SenderRole     string    `json:"senderRole" bson:"sender_role"`
	Body           string    `json:"body" bson:"body"`
	SentAt         time.Time `json:"sentAt" bson:"sent_at"`
}
