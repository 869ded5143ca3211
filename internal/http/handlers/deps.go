package handlers

import (
	"context"
	"sync"
	"time"

	intconfig "backoffice/internal/config"
	"backoffice/internal/domain/models"
	"backoffice/internal/gateway"
	"backoffice/internal/repositories"
	"backoffice/internal/services"
)

// UserFinder resolves login identifiers.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// Deps are the collaborators handlers build services from.
type Deps struct {
	Courses   services.CourseLister
	Versions  services.VersionStore
	Finance   services.FinanceSource
	Groups    services.GroupSource
	Surveys   services.SurveySource
	Responses services.ResponseStore
	Users     UserFinder

	JWTSecret      []byte
	JWTTTL         time.Duration
	Debounce       time.Duration
	AllowedOrigins []string
}

var (
	depsMu sync.RWMutex
	deps   Deps
)

// Configure installs the handler dependencies.
func Configure(d Deps) {
	depsMu.Lock()
	defer depsMu.Unlock()
	deps = d
}

func current() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

// DepsFromEnv wires the MySQL repositories (on the shared connection) and
// the upstream API clients.
func DepsFromEnv(env intconfig.Env) Deps {
	return Deps{
		Courses:   repositories.CourseRepository{},
		Versions:  repositories.CourseVersionRepository{},
		Finance:   repositories.FinanceRepository{},
		Responses: repositories.SurveyResponseRepository{},
		Users:     repositories.UserRepository{},
		Groups: gateway.AcademicAPI{
			Client:     gateway.NewClient(env.AcademicAPIURL, env.UpstreamTimeout),
			GroupsPath: env.GroupsEndpoint,
		},
		Surveys: gateway.EvaluationAPI{
			Client:      gateway.NewClient(env.EvaluationAPIURL, env.UpstreamTimeout),
			SurveysPath: env.SurveysEndpoint,
		},
		JWTSecret:      []byte(env.JWTSecret),
		JWTTTL:         env.JWTTTL,
		Debounce:       env.SearchDebounce,
		AllowedOrigins: env.CORSOrigins,
	}
}

func versionService(requestID string) services.VersionService {
	d := current()
	return services.VersionService{Courses: d.Courses, Versions: d.Versions, RequestID: requestID}
}

func surveyService(requestID string) services.SurveyService {
	d := current()
	return services.SurveyService{Groups: d.Groups, Surveys: d.Surveys, Responses: d.Responses, RequestID: requestID}
}

func reportsService(requestID string) services.ReportsService {
	return services.ReportsService{Finance: current().Finance, RequestID: requestID}
}
