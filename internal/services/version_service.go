package services

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/listview"
	"backoffice/internal/utils"

	"golang.org/x/sync/errgroup"
)

// CourseLister is the read side of the course catalogue.
type CourseLister interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, id int64) (models.Course, error)
}

// VersionStore persists course versions.
type VersionStore interface {
	ListVersions(ctx context.Context) ([]models.CourseVersion, error)
	GetVersion(ctx context.Context, id int64) (models.CourseVersion, error)
	CreateVersion(ctx context.Context, in models.VersionInput) (int64, error)
	UpdateVersion(ctx context.Context, id int64, in models.VersionInput) error
	UpdateVersionStatus(ctx context.Context, id int64, status models.VersionStatus) error
	DeleteVersion(ctx context.Context, id int64) error
}

// Filter fields of the versions table.
const (
	FilterStatus   = "status"
	FilterCourseID = "course_id"
)

// VersionService backs the course-versions management screen.
type VersionService struct {
	Courses   CourseLister
	Versions  VersionStore
	RequestID string
}

// VersionPage is one rendered page of the versions table.
type VersionPage struct {
	Data             []models.CourseVersion `json:"data"`
	Meta             listview.Meta          `json:"meta"`
	Stats            models.VersionStats    `json:"stats"`
	State            listview.ViewState     `json:"state"`
	HasActiveFilters bool                   `json:"has_active_filters"`
	Courses          []models.Course        `json:"courses"`
}

// NewVersionViewState is the initial state of the versions screen.
func NewVersionViewState() listview.ViewState {
	return listview.NewViewState(FilterStatus, FilterCourseID)
}

// VersionTransformer searches name, version and the course's display name,
// and filters by status and course id.
func VersionTransformer(courses []models.Course) listview.Transformer[models.CourseVersion] {
	names := make(map[int64]string, len(courses))
	for _, c := range courses {
		names[c.ID] = c.Name
	}
	return listview.Transformer[models.CourseVersion]{
		Searchable: []string{"name", "version", "course_name"},
		Filterable: []string{FilterStatus, FilterCourseID},
		Value: func(v models.CourseVersion, field string) any {
			if field == "course_name" {
				return courseName(names, v.CourseID)
			}
			val, _ := v.Field(field)
			return val
		},
	}
}

func courseName(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok {
		return n
	}
	return models.UnknownCourseName
}

// load fetches courses and versions concurrently; the first failure
// cancels the other fetch and is the error returned.
func (s VersionService) load(ctx context.Context) ([]models.Course, []models.CourseVersion, error) {
	var (
		courses  []models.Course
		versions []models.CourseVersion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = s.Courses.ListCourses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		versions, err = s.Versions.ListVersions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byID := make(map[int64]models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	for i := range versions {
		if c, ok := byID[versions[i].CourseID]; ok {
			c := c
			versions[i].Course = &c
		}
	}
	return courses, versions, nil
}

// List renders the page described by state.
func (s VersionService) List(ctx context.Context, state listview.ViewState) (VersionPage, error) {
	courses, versions, err := s.load(ctx)
	if err != nil {
		utils.LogError(s.RequestID, "versions", "list", err)
		return VersionPage{}, err
	}

	rows := VersionTransformer(courses).Apply(versions, state.Params())
	page, meta := listview.Paginate(rows, state.Page, state.PerPage)
	state.Page = meta.CurrentPage
	state.PerPage = meta.PerPage

	return VersionPage{
		Data:             page,
		Meta:             meta,
		Stats:            ComputeVersionStats(versions),
		State:            state,
		HasActiveFilters: state.HasActiveFilters(),
		Courses:          courses,
	}, nil
}

// Filtered returns every version matching params, unpaginated.
func (s VersionService) Filtered(ctx context.Context, params listview.Params) ([]models.CourseVersion, []models.Course, error) {
	courses, versions, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return VersionTransformer(courses).Apply(versions, params), courses, nil
}

// ComputeVersionStats counts versions per status over the whole collection.
func ComputeVersionStats(versions []models.CourseVersion) models.VersionStats {
	st := models.VersionStats{TotalVersions: len(versions)}
	for _, v := range versions {
		switch v.Status {
		case models.VersionPublished:
			st.PublishedVersions++
		case models.VersionDraft:
			st.DraftVersions++
		case models.VersionArchived:
			st.ArchivedVersions++
		}
	}
	return st
}

func (s VersionService) Get(ctx context.Context, id int64) (models.CourseVersion, error) {
	v, err := s.Versions.GetVersion(ctx, id)
	if err != nil {
		return v, err
	}
	if c, err := s.Courses.GetCourse(ctx, v.CourseID); err == nil {
		v.Course = &c
	}
	return v, nil
}

func (s VersionService) validate(ctx context.Context, in models.VersionInput) (models.VersionInput, error) {
	in.Version = utils.NormalizeSpace(in.Version)
	in.Name = utils.NormalizeSpace(in.Name)
	if in.Status == "" {
		in.Status = models.VersionDraft
	}

	switch {
	case in.CourseID <= 0:
		return in, domain.ValidationError{Field: "course_id", Msg: "course_id is required"}
	case in.Version == "":
		return in, domain.ValidationError{Field: "version", Msg: "version is required"}
	case in.Name == "":
		return in, domain.ValidationError{Field: "name", Msg: "name is required"}
	case in.Price < 0:
		return in, domain.ValidationError{Field: "price", Msg: "price must not be negative"}
	case !in.Status.Valid():
		return in, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", in.Status)}
	}

	if _, err := s.Courses.GetCourse(ctx, in.CourseID); err != nil {
		if domain.IsNotFound(err) {
			return in, domain.ValidationError{Field: "course_id", Msg: "course does not exist", Err: err}
		}
		return in, err
	}
	return in, nil
}

func (s VersionService) Create(ctx context.Context, in models.VersionInput) (models.CourseVersion, error) {
	in, err := s.validate(ctx, in)
	if err != nil {
		return models.CourseVersion{}, err
	}
	id, err := s.Versions.CreateVersion(ctx, in)
	if err != nil {
		utils.LogError(s.RequestID, "versions", "create", err)
		return models.CourseVersion{}, err
	}
	utils.LogEvent(s.RequestID, "versions", "create", fmt.Sprintf("version_id=%d name=%s", id, in.Name))
	return s.Get(ctx, id)
}

func (s VersionService) Update(ctx context.Context, id int64, in models.VersionInput) (models.CourseVersion, error) {
	if _, err := s.Versions.GetVersion(ctx, id); err != nil {
		return models.CourseVersion{}, err
	}
	in, err := s.validate(ctx, in)
	if err != nil {
		return models.CourseVersion{}, err
	}
	if err := s.Versions.UpdateVersion(ctx, id, in); err != nil {
		utils.LogError(s.RequestID, "versions", "update", err)
		return models.CourseVersion{}, err
	}
	utils.LogEvent(s.RequestID, "versions", "update", fmt.Sprintf("version_id=%d", id))
	return s.Get(ctx, id)
}

func (s VersionService) ChangeStatus(ctx context.Context, id int64, status models.VersionStatus) (models.CourseVersion, error) {
	status = models.VersionStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return models.CourseVersion{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", status)}
	}
	if _, err := s.Versions.GetVersion(ctx, id); err != nil {
		return models.CourseVersion{}, err
	}
	if err := s.Versions.UpdateVersionStatus(ctx, id, status); err != nil {
		utils.LogError(s.RequestID, "versions", "change_status", err)
		return models.CourseVersion{}, err
	}
	utils.LogEvent(s.RequestID, "versions", "change_status", fmt.Sprintf("version_id=%d status=%s", id, status))
	return s.Get(ctx, id)
}

func (s VersionService) Delete(ctx context.Context, id int64) error {
	if err := s.Versions.DeleteVersion(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "versions", "delete", fmt.Sprintf("version_id=%d", id))
	return nil
}

// DuplicateDraft prefills the create form from an existing version:
// same course and price, a "(Copia)" name, empty version code, draft status.
func (s VersionService) DuplicateDraft(ctx context.Context, id int64) (models.VersionInput, error) {
	v, err := s.Versions.GetVersion(ctx, id)
	if err != nil {
		return models.VersionInput{}, err
	}
	return models.VersionInput{
		CourseID: v.CourseID,
		Version:  "",
		Name:     v.Name + " (Copia)",
		Price:    v.Price,
		Status:   models.VersionDraft,
	}, nil
}
