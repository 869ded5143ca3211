package models

import "time"

type SurveyQuestion struct {
	ID        int64     `json:"id"`
	SurveyID  int64     `json:"survey_id"`
	Question  string    `json:"question"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SurveyMapping ties a survey to the academic event that triggers it.
type SurveyMapping struct {
	ID          int64     `json:"id"`
	Event       string    `json:"event"`
	SurveyID    int64     `json:"survey_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Survey struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Questions   []SurveyQuestion `json:"questions"`
	Mapping     SurveyMapping    `json:"mapping"`
}

// Group is an enrolled academic group as returned by the academic API.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Status      string   `json:"status"`
	Progress    *float64 `json:"progress,omitempty"`
}

// SurveyState is the per-card status shown to the student.
type SurveyState string

const (
	SurveyPending    SurveyState = "pending"
	SurveyInProgress SurveyState = "in-progress"
	SurveyCompleted  SurveyState = "completed"
)

// GroupSurvey is a survey as offered to one group.
type GroupSurvey struct {
	Survey
	State         SurveyState `json:"state"`
	QuestionCount int         `json:"question_count"`
}

type GroupWithSurveys struct {
	Group   Group         `json:"group"`
	Surveys []GroupSurvey `json:"surveys"`
}

type SurveyStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

type SurveyAnswer struct {
	QuestionID int64  `json:"question_id" binding:"required,gt=0"`
	Answer     string `json:"answer" binding:"required"`
}

// SurveyResponse is one completed survey submission.
type SurveyResponse struct {
	ID        int64          `json:"id" db:"id"`
	SurveyID  int64          `json:"survey_id" db:"survey_id"`
	GroupID   string         `json:"group_id" db:"group_id" binding:"required"`
	UserID    int64          `json:"user_id" db:"user_id"`
	Answers   []SurveyAnswer `json:"answers" db:"-" binding:"required,min=1,dive"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
