package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
)

type CourseVersionRepository struct {
	DB *sql.DB
}

const selectVersions = `
	SELECT
		v.id,
		v.course_id,
		v.version,
		v.name,
		v.price,
		v.status,
		v.created_at,
		v.updated_at,
		(SELECT COUNT(*) FROM course_modules m WHERE m.course_version_id = v.id) AS modules_count,
		(SELECT COUNT(*) FROM academic_groups g WHERE g.course_version_id = v.id) AS groups_count,
		(SELECT COUNT(*) FROM enrollments e WHERE e.course_version_id = v.id) AS students_count
	FROM course_versions v
`

// ListVersions returns every version in insertion (id) order.
func (r CourseVersionRepository) ListVersions(ctx context.Context) ([]models.CourseVersion, error) {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return nil, err
	}
	out := []models.CourseVersion{}
	if err := db.SelectContext(ctx, &out, selectVersions+` ORDER BY v.id ASC`); err != nil {
		return nil, fmt.Errorf("list course versions: %w", err)
	}
	return out, nil
}

func (r CourseVersionRepository) GetVersion(ctx context.Context, id int64) (models.CourseVersion, error) {
	var v models.CourseVersion
	db, err := sqlxDB(r.DB)
	if err != nil {
		return v, err
	}
	err = db.GetContext(ctx, &v, selectVersions+` WHERE v.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return v, domain.NotFoundError{Resource: "course version", Err: err}
	}
	if err != nil {
		return v, fmt.Errorf("get course version %d: %w", id, err)
	}
	return v, nil
}

func (r CourseVersionRepository) CreateVersion(ctx context.Context, in models.VersionInput) (int64, error) {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO course_versions (course_id, version, name, price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())
	`, in.CourseID, in.Version, in.Name, in.Price, string(in.Status))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "course version", Msg: "name already exists", Err: err}
		}
		return 0, fmt.Errorf("insert course version: %w", err)
	}
	return res.LastInsertId()
}

func (r CourseVersionRepository) UpdateVersion(ctx context.Context, id int64, in models.VersionInput) error {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		UPDATE course_versions
		SET course_id = ?, version = ?, name = ?, price = ?, status = ?, updated_at = NOW()
		WHERE id = ?
	`, in.CourseID, in.Version, in.Name, in.Price, string(in.Status), id)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ConflictError{Resource: "course version", Msg: "name already exists", Err: err}
		}
		return fmt.Errorf("update course version %d: %w", id, err)
	}
	return nil
}

func (r CourseVersionRepository) UpdateVersionStatus(ctx context.Context, id int64, status models.VersionStatus) error {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		UPDATE course_versions SET status = ?, updated_at = NOW() WHERE id = ?
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("update course version status %d: %w", id, err)
	}
	return nil
}

func (r CourseVersionRepository) DeleteVersion(ctx context.Context, id int64) error {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM course_versions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete course version %d: %w", id, err)
	}
	return requireAffected(res, "course version")
}

func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
