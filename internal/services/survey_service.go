package services

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/repositories"
	"backoffice/internal/utils"

	"golang.org/x/sync/errgroup"
)

type GroupSource interface {
	ListEnrolledGroups(ctx context.Context, token string) ([]models.Group, error)
}

type SurveySource interface {
	ListSurveys(ctx context.Context, token string) ([]models.Survey, error)
}

// ResponseStore records survey submissions.
type ResponseStore interface {
	SaveResponse(ctx context.Context, resp models.SurveyResponse) (int64, error)
	CompletedKeys(ctx context.Context, userID int64) (map[string]bool, error)
}

// SurveyService backs the student surveys screen.
type SurveyService struct {
	Groups    GroupSource
	Surveys   SurveySource
	Responses ResponseStore
	RequestID string
}

// SurveyOverview is the full payload of the surveys screen.
type SurveyOverview struct {
	Groups []models.GroupWithSurveys `json:"groups"`
	Stats  models.SurveyStats        `json:"stats"`
}

// fetch runs the groups and surveys requests concurrently. The first
// failure cancels the other request and is the only error reported.
func (s SurveyService) fetch(ctx context.Context, token string) ([]models.Group, []models.Survey, error) {
	var (
		groups  []models.Group
		surveys []models.Survey
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = s.Groups.ListEnrolledGroups(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		surveys, err = s.Surveys.ListSurveys(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return groups, surveys, nil
}

// LoadGroupsWithSurveys pairs every enrolled group with every available
// survey and marks the ones userID has already answered.
func (s SurveyService) LoadGroupsWithSurveys(ctx context.Context, token string, userID int64) (SurveyOverview, error) {
	groups, surveys, err := s.fetch(ctx, token)
	if err != nil {
		utils.LogError(s.RequestID, "surveys", "load", err)
		return SurveyOverview{}, err
	}

	done := map[string]bool{}
	if s.Responses != nil && userID > 0 {
		done, err = s.Responses.CompletedKeys(ctx, userID)
		if err != nil {
			utils.LogError(s.RequestID, "surveys", "completed_keys", err)
			return SurveyOverview{}, err
		}
	}

	out := SurveyOverview{Groups: make([]models.GroupWithSurveys, 0, len(groups))}
	for _, g := range groups {
		item := models.GroupWithSurveys{Group: g, Surveys: make([]models.GroupSurvey, 0, len(surveys))}
		for _, sv := range surveys {
			state := models.SurveyPending
			if done[repositories.CompletionKey(g.ID, sv.ID)] {
				state = models.SurveyCompleted
			}
			item.Surveys = append(item.Surveys, models.GroupSurvey{
				Survey:        sv,
				State:         state,
				QuestionCount: len(sv.Questions),
			})
		}
		out.Groups = append(out.Groups, item)
	}
	out.Stats = ComputeSurveyStats(out.Groups)

	utils.LogEvent(s.RequestID, "surveys", "load",
		fmt.Sprintf("groups=%d surveys=%d completed=%d", len(groups), len(surveys), out.Stats.Completed))
	return out, nil
}

// ComputeSurveyStats counts group/survey pairs. Nothing is tracked as
// partially answered, so in_progress stays zero.
func ComputeSurveyStats(groups []models.GroupWithSurveys) models.SurveyStats {
	var st models.SurveyStats
	for _, g := range groups {
		for _, sv := range g.Surveys {
			st.Total++
			if sv.State == models.SurveyCompleted {
				st.Completed++
			}
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

// Submit stores a response after checking that the group is one of the
// caller's and every answered question belongs to the survey.
func (s SurveyService) Submit(ctx context.Context, token string, userID, surveyID int64, resp models.SurveyResponse) (int64, error) {
	if s.Responses == nil {
		return 0, domain.InternalError{Msg: "survey responses are not configured"}
	}
	resp.GroupID = strings.TrimSpace(resp.GroupID)
	if resp.GroupID == "" {
		return 0, domain.ValidationError{Field: "group_id", Msg: "group_id is required"}
	}
	if len(resp.Answers) == 0 {
		return 0, domain.ValidationError{Field: "answers", Msg: "at least one answer is required"}
	}

	groups, surveys, err := s.fetch(ctx, token)
	if err != nil {
		return 0, err
	}

	enrolled := false
	for _, g := range groups {
		if g.ID == resp.GroupID {
			enrolled = true
			break
		}
	}
	if !enrolled {
		return 0, domain.ValidationError{Field: "group_id", Msg: "not enrolled in group " + resp.GroupID}
	}

	var survey *models.Survey
	for i := range surveys {
		if surveys[i].ID == surveyID {
			survey = &surveys[i]
			break
		}
	}
	if survey == nil {
		return 0, domain.NotFoundError{Resource: fmt.Sprintf("survey %d", surveyID)}
	}

	questions := make(map[int64]bool, len(survey.Questions))
	for _, q := range survey.Questions {
		questions[q.ID] = true
	}
	answers := make([]models.SurveyAnswer, len(resp.Answers))
	for i, a := range resp.Answers {
		a.Answer = strings.TrimSpace(a.Answer)
		if !questions[a.QuestionID] {
			return 0, domain.ValidationError{
				Field: "answers",
				Msg:   fmt.Sprintf("question %d does not belong to survey %d", a.QuestionID, surveyID),
			}
		}
		if a.Answer == "" {
			return 0, domain.ValidationError{Field: "answers", Msg: fmt.Sprintf("answer for question %d is empty", a.QuestionID)}
		}
		answers[i] = a
	}

	resp.Answers = answers
	resp.SurveyID = surveyID
	resp.UserID = userID
	id, err := s.Responses.SaveResponse(ctx, resp)
	if err != nil {
		utils.LogError(s.RequestID, "surveys", "submit", err)
		return 0, err
	}
	utils.LogEvent(s.RequestID, "surveys", "submit",
		fmt.Sprintf("response_id=%d survey_id=%d group_id=%s", id, surveyID, resp.GroupID))
	return id, nil
}
