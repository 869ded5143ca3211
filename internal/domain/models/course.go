package models

import "time"

// VersionStatus is the publication state of a course version.
type VersionStatus string

const (
	VersionDraft     VersionStatus = "draft"
	VersionPublished VersionStatus = "published"
	VersionArchived  VersionStatus = "archived"
)

// VersionStatuses lists every valid status in display order.
var VersionStatuses = []VersionStatus{VersionPublished, VersionDraft, VersionArchived}

// Valid reports whether s is a known status.
func (s VersionStatus) Valid() bool {
	switch s {
	case VersionDraft, VersionPublished, VersionArchived:
		return true
	}
	return false
}

// Label is the Spanish badge text shown in the back office.
func (s VersionStatus) Label() string {
	switch s {
	case VersionPublished:
		return "Publicado"
	case VersionDraft:
		return "Borrador"
	case VersionArchived:
		return "Archivado"
	}
	return ""
}

// UnknownCourseName is displayed when a version points at a missing course.
const UnknownCourseName = "Curso no encontrado"

type Course struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category,omitempty" db:"category"`
}

// CourseVersion is one edition of a course with its own price and status.
type CourseVersion struct {
	ID            int64         `json:"id" db:"id"`
	CourseID      int64         `json:"course_id" db:"course_id"`
	Version       string        `json:"version" db:"version"`
	Name          string        `json:"name" db:"name"`
	Price         float64       `json:"price" db:"price"`
	Status        VersionStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
	Course        *Course       `json:"course,omitempty" db:"-"`
	ModulesCount  int           `json:"modules_count" db:"modules_count"`
	GroupsCount   int           `json:"groups_count" db:"groups_count"`
	StudentsCount int           `json:"students_count" db:"students_count"`
}

// Field exposes the version's columns by their JSON names.
func (v CourseVersion) Field(name string) (any, bool) {
	switch name {
	case "id":
		return v.ID, true
	case "course_id":
		return v.CourseID, true
	case "version":
		return v.Version, true
	case "name":
		return v.Name, true
	case "price":
		return v.Price, true
	case "status":
		return string(v.Status), true
	case "created_at":
		return v.CreatedAt.UTC().Format(time.RFC3339), true
	case "updated_at":
		return v.UpdatedAt.UTC().Format(time.RFC3339), true
	case "modules_count":
		return v.ModulesCount, true
	case "groups_count":
		return v.GroupsCount, true
	case "students_count":
		return v.StudentsCount, true
	}
	return nil, false
}

// VersionInput is the create/edit form payload.
type VersionInput struct {
	CourseID int64         `json:"course_id" binding:"required,gt=0"`
	Version  string        `json:"version" binding:"required"`
	Name     string        `json:"name" binding:"required"`
	Price    float64       `json:"price" binding:"gte=0"`
	Status   VersionStatus `json:"status" binding:"omitempty,version_status"`
}

type VersionStats struct {
	TotalVersions     int `json:"total_versions"`
	PublishedVersions int `json:"published_versions"`
	DraftVersions     int `json:"draft_versions"`
	ArchivedVersions  int `json:"archived_versions"`
}
