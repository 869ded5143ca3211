package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
)

type CourseRepository struct {
	DB *sql.DB
}

// ListCourses returns every course ordered by id.
func (r CourseRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return nil, err
	}
	out := []models.Course{}
	if err := db.SelectContext(ctx, &out, `
		SELECT id, name, COALESCE(category,'') AS category
		FROM courses
		ORDER BY id ASC
	`); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

func (r CourseRepository) GetCourse(ctx context.Context, id int64) (models.Course, error) {
	var c models.Course
	db, err := sqlxDB(r.DB)
	if err != nil {
		return c, err
	}
	err = db.GetContext(ctx, &c, `
		SELECT id, name, COALESCE(category,'') AS category
		FROM courses
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, domain.NotFoundError{Resource: "course", Err: err}
	}
	if err != nil {
		return c, fmt.Errorf("get course %d: %w", id, err)
	}
	return c, nil
}
