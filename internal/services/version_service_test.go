package services

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"sync"
	"testing"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/listview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCourses struct {
	courses []models.Course
	err     error
}

func (f fakeCourses) ListCourses(ctx context.Context) ([]models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Course(nil), f.courses...), nil
}

func (f fakeCourses) GetCourse(ctx context.Context, id int64) (models.Course, error) {
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Course{}, domain.NotFoundError{Resource: "course"}
}

type fakeVersions struct {
	mu       sync.Mutex
	versions []models.CourseVersion
	listErr  error
	nextID   int64
}

func (f *fakeVersions) ListVersions(ctx context.Context) ([]models.CourseVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.CourseVersion(nil), f.versions...), nil
}

func (f *fakeVersions) GetVersion(ctx context.Context, id int64) (models.CourseVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.versions {
		if v.ID == id {
			return v, nil
		}
	}
	return models.CourseVersion{}, domain.NotFoundError{Resource: "course version"}
}

func (f *fakeVersions) CreateVersion(ctx context.Context, in models.VersionInput) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.versions {
		if v.Name == in.Name {
			return 0, domain.ConflictError{Resource: "course version", Msg: "name already exists"}
		}
	}
	f.nextID++
	f.versions = append(f.versions, models.CourseVersion{
		ID: f.nextID, CourseID: in.CourseID, Version: in.Version, Name: in.Name, Price: in.Price, Status: in.Status,
	})
	return f.nextID, nil
}

func (f *fakeVersions) UpdateVersion(ctx context.Context, id int64, in models.VersionInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.versions {
		if f.versions[i].ID == id {
			f.versions[i].CourseID = in.CourseID
			f.versions[i].Version = in.Version
			f.versions[i].Name = in.Name
			f.versions[i].Price = in.Price
			f.versions[i].Status = in.Status
			return nil
		}
	}
	return domain.NotFoundError{Resource: "course version"}
}

func (f *fakeVersions) UpdateVersionStatus(ctx context.Context, id int64, status models.VersionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.versions {
		if f.versions[i].ID == id {
			f.versions[i].Status = status
			return nil
		}
	}
	return domain.NotFoundError{Resource: "course version"}
}

func (f *fakeVersions) DeleteVersion(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.versions {
		if f.versions[i].ID == id {
			f.versions = append(f.versions[:i], f.versions[i+1:]...)
			return nil
		}
	}
	return domain.NotFoundError{Resource: "course version"}
}

func newVersionService() (VersionService, *fakeVersions) {
	store := &fakeVersions{
		nextID: 3,
		versions: []models.CourseVersion{
			{ID: 1, CourseID: 1, Version: "2025-01", Name: "IA-DS-2025-01", Price: 350, Status: models.VersionPublished, StudentsCount: 45},
			{ID: 2, CourseID: 2, Version: "2025-02", Name: "GP-TD-2025-02", Price: 280, Status: models.VersionDraft, StudentsCount: 0},
			{ID: 3, CourseID: 9, Version: "2024-02", Name: "OLD-2024-02", Price: 120, Status: models.VersionArchived},
		},
	}
	courses := fakeCourses{courses: []models.Course{
		{ID: 1, Name: "Inteligencia Artificial y Data Science"},
		{ID: 2, Name: "Gestión de Proyectos"},
	}}
	return VersionService{Courses: courses, Versions: store}, store
}

func ids(vs []models.CourseVersion) []int64 {
	out := make([]int64, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

func TestVersionServiceList_FilterByStatus(t *testing.T) {
	svc, _ := newVersionService()
	state := listview.Reduce(NewVersionViewState(), listview.SetFilter{Field: FilterStatus, Value: "draft"})

	page, err := svc.List(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(page.Data))
	assert.True(t, page.HasActiveFilters)
	assert.Equal(t, 1, page.Meta.Total)
	assert.Equal(t, models.VersionStats{TotalVersions: 3, PublishedVersions: 1, DraftVersions: 1, ArchivedVersions: 1}, page.Stats)
}

func TestVersionServiceList_SortByNameAsc(t *testing.T) {
	svc, _ := newVersionService()
	state := NewVersionViewState()
	state = listview.Reduce(state, listview.ToggleSort{Field: "name"})
	state = listview.Reduce(state, listview.ToggleSort{Field: "name"})
	require.Equal(t, listview.Asc, state.SortDirection)

	page, err := svc.List(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 3}, ids(page.Data))
}

func TestVersionServiceList_SearchesCourseName(t *testing.T) {
	svc, _ := newVersionService()
	state := listview.Reduce(NewVersionViewState(), listview.ApplyDebouncedQuery{Query: "gestión"})

	page, err := svc.List(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(page.Data))
	require.NotNil(t, page.Data[0].Course)
	assert.Equal(t, "Gestión de Proyectos", page.Data[0].Course.Name)
}

func TestVersionServiceList_UnknownCourseIsSearchable(t *testing.T) {
	svc, _ := newVersionService()
	state := listview.Reduce(NewVersionViewState(), listview.ApplyDebouncedQuery{Query: "no encontrado"})

	page, err := svc.List(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(page.Data))
	assert.Nil(t, page.Data[0].Course)
}

func TestVersionServiceList_FailFast(t *testing.T) {
	boom := errors.New("Error 500: Internal Server Error")
	svc, store := newVersionService()
	store.listErr = boom

	_, err := svc.List(context.Background(), NewVersionViewState())
	assert.ErrorIs(t, err, boom)

	svc.Courses = fakeCourses{err: boom}
	store.listErr = nil
	_, err = svc.List(context.Background(), NewVersionViewState())
	assert.ErrorIs(t, err, boom)
}

func TestVersionServiceCreate_Validation(t *testing.T) {
	svc, _ := newVersionService()
	ctx := context.Background()

	cases := []struct {
		name  string
		in    models.VersionInput
		field string
	}{
		{"missing course", models.VersionInput{Version: "v1", Name: "X"}, "course_id"},
		{"unknown course", models.VersionInput{CourseID: 42, Version: "v1", Name: "X"}, "course_id"},
		{"blank version", models.VersionInput{CourseID: 1, Version: "  ", Name: "X"}, "version"},
		{"blank name", models.VersionInput{CourseID: 1, Version: "v1"}, "name"},
		{"negative price", models.VersionInput{CourseID: 1, Version: "v1", Name: "X", Price: -1}, "price"},
		{"bad status", models.VersionInput{CourseID: 1, Version: "v1", Name: "X", Status: "live"}, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			var verr domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestVersionServiceCreate_DefaultsToDraft(t *testing.T) {
	svc, _ := newVersionService()

	v, err := svc.Create(context.Background(), models.VersionInput{CourseID: 1, Version: " 2025-03 ", Name: "IA-DS-2025-03", Price: 390})
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.ID)
	assert.Equal(t, "2025-03", v.Version)
	assert.Equal(t, models.VersionDraft, v.Status)
	require.NotNil(t, v.Course)
	assert.Equal(t, int64(1), v.Course.ID)

	_, err = svc.Create(context.Background(), models.VersionInput{CourseID: 1, Version: "x", Name: "IA-DS-2025-03"})
	assert.True(t, domain.IsConflict(err))
}

func TestVersionServiceChangeStatus(t *testing.T) {
	svc, store := newVersionService()

	v, err := svc.ChangeStatus(context.Background(), 2, " Published ")
	require.NoError(t, err)
	assert.Equal(t, models.VersionPublished, v.Status)
	assert.Equal(t, models.VersionPublished, store.versions[1].Status)

	_, err = svc.ChangeStatus(context.Background(), 2, "gone")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.ChangeStatus(context.Background(), 99, models.VersionDraft)
	assert.True(t, domain.IsNotFound(err))
}

func TestVersionServiceUpdateAndDelete(t *testing.T) {
	svc, store := newVersionService()
	ctx := context.Background()

	v, err := svc.Update(ctx, 1, models.VersionInput{CourseID: 2, Version: "2025-01", Name: "IA-DS-2025-01", Price: 400, Status: models.VersionPublished})
	require.NoError(t, err)
	assert.Equal(t, 400.0, v.Price)
	assert.Equal(t, int64(2), v.CourseID)

	_, err = svc.Update(ctx, 77, models.VersionInput{CourseID: 1, Version: "a", Name: "b"})
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, 1))
	assert.Len(t, store.versions, 2)
	assert.True(t, domain.IsNotFound(svc.Delete(ctx, 1)))
}

func TestVersionServiceDuplicateDraft(t *testing.T) {
	svc, _ := newVersionService()

	in, err := svc.DuplicateDraft(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.VersionInput{
		CourseID: 1,
		Version:  "",
		Name:     "IA-DS-2025-01 (Copia)",
		Price:    350,
		Status:   models.VersionDraft,
	}, in)
}

func TestVersionServiceExportCSV(t *testing.T) {
	svc, _ := newVersionService()

	data, name, err := svc.ExportCSV(context.Background(), listview.Params{SortField: "price", SortDirection: listview.Desc})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "versiones_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"ID", "Nombre", "Curso", "Versión", "Precio", "Módulos", "Grupos", "Estudiantes", "Estado"}, rows[0])
	assert.Equal(t, []string{"1", "IA-DS-2025-01", "Inteligencia Artificial y Data Science", "2025-01", "350.00", "0", "0", "45", "Publicado"}, rows[1])
	assert.Equal(t, models.UnknownCourseName, rows[3][2])
}

func TestVersionServiceExportPDF(t *testing.T) {
	svc, _ := newVersionService()

	data, name, err := svc.ExportPDF(context.Background(), listview.Params{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}
