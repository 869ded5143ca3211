package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intdb "backoffice/internal/db"
	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
)

type SurveyResponseRepository struct {
	DB *sql.DB
}

// CompletionKey identifies one survey answered for one group.
func CompletionKey(groupID string, surveyID int64) string {
	return fmt.Sprintf("%s:%d", groupID, surveyID)
}

// SaveResponse stores a submission and its answers in one transaction.
func (r SurveyResponseRepository) SaveResponse(ctx context.Context, resp models.SurveyResponse) (int64, error) {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return 0, err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin survey response tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO survey_responses (survey_id, group_id, user_id, created_at)
		VALUES (?, ?, ?, NOW())
	`, resp.SurveyID, resp.GroupID, resp.UserID)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "survey response", Msg: "survey already answered for this group", Err: err}
		}
		return 0, fmt.Errorf("insert survey response: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, a := range resp.Answers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO survey_answers (response_id, question_id, answer)
			VALUES (?, ?, ?)
		`, id, a.QuestionID, a.Answer); err != nil {
			return 0, fmt.Errorf("insert survey answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit survey response: %w", err)
	}
	return id, nil
}

// CompletedKeys returns the CompletionKeys answered by userID.
// A schema without survey_responses yields no completions.
func (r SurveyResponseRepository) CompletedKeys(ctx context.Context, userID int64) (map[string]bool, error) {
	out := map[string]bool{}
	db, err := sqlxDB(r.DB)
	if err != nil {
		return out, err
	}
	if !intdb.HasTable(ctx, db, "survey_responses") {
		return out, nil
	}

	rows, err := db.QueryxContext(ctx, `
		SELECT survey_id, group_id FROM survey_responses WHERE user_id = ?
	`, userID)
	if err != nil {
		return out, fmt.Errorf("list survey responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			surveyID int64
			groupID  string
		)
		if err := rows.Scan(&surveyID, &groupID); err != nil {
			return out, err
		}
		out[CompletionKey(groupID, surveyID)] = true
	}
	return out, rows.Err()
}
