package student

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rryowa/campus_session/internal/cache"
	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/util"
)

const profileKey = "profile"

// Client is the slice of the session client the data service needs.
type Client interface {
	Profile(ctx context.Context) (models.Profile, error)
	Courses(ctx context.Context, q models.CourseQuery) (models.CourseList, error)
	Grades(ctx context.Context) ([]models.Grade, error)
	Attendance(ctx context.Context) ([]models.Attendance, error)
	Messages(ctx context.Context) ([]models.Message, error)
}

// DataService fronts the student endpoints with per-resource TTL caches.
type DataService struct {
	client       Client
	cfg          *util.CacheConfig
	defaultQuery models.CourseQuery
	profiles     *cache.TTLCache[models.Profile]
	courses      *cache.TTLCache[models.CourseList]
	log          *zap.SugaredLogger
}

func NewDataService(
	client Client,
	cfg *util.CacheConfig,
	defaultQuery models.CourseQuery,
	observer cache.Observer,
	log *zap.SugaredLogger,
) *DataService {
	return &DataService{
		client:       client,
		cfg:          cfg,
		defaultQuery: defaultQuery,
		profiles:     cache.New[models.Profile]("profile", observer),
		courses:      cache.New[models.CourseList]("courses", observer),
		log:          log,
	}
}

// WithClock replaces the wall clock of both caches, for tests.
func (s *DataService) WithClock(now func() time.Time) *DataService {
	s.profiles.WithClock(now)
	s.courses.WithClock(now)
	return s
}

func (s *DataService) Profile(ctx context.Context, forceRefresh bool) (models.Profile, error) {
	return s.profiles.Get(ctx, profileKey, s.cfg.ProfileTTL, s.client.Profile, forceRefresh)
}

// Courses caches each distinct query separately.
func (s *DataService) Courses(ctx context.Context, forceRefresh bool) (models.CourseList, error) {
	return s.CoursesWithQuery(ctx, s.defaultQuery, forceRefresh)
}

func (s *DataService) CoursesWithQuery(ctx context.Context, q models.CourseQuery, forceRefresh bool) (models.CourseList, error) {
	fetch := func(ctx context.Context) (models.CourseList, error) {
		list, err := s.client.Courses(ctx, q)
		if err != nil {
			return models.CourseList{}, err
		}
		s.log.Debugw("courses fetched", "count", list.Count, "returned", len(list.Data))
		return list, nil
	}
	return s.courses.Get(ctx, coursesKey(q), s.cfg.CoursesTTL, fetch, forceRefresh)
}

// CurrentCourses filters the cached list; it never fetches on its own.
func (s *DataService) CurrentCourses(ctx context.Context, forceRefresh bool) ([]models.Course, error) {
	list, err := s.Courses(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return list.ByStatus(models.CourseStatusCurrent), nil
}

func (s *DataService) CompletedCourses(ctx context.Context, forceRefresh bool) ([]models.Course, error) {
	list, err := s.Courses(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return list.ByStatus(models.CourseStatusPast), nil
}

func (s *DataService) Grades(ctx context.Context) ([]models.Grade, error) {
	return s.client.Grades(ctx)
}

func (s *DataService) Attendance(ctx context.Context) ([]models.Attendance, error) {
	return s.client.Attendance(ctx)
}

func (s *DataService) Messages(ctx context.Context) ([]models.Message, error) {
	return s.client.Messages(ctx)
}

// Dashboard fetches everything in parallel. Profile or courses failing fails
// the whole call; grades and attendance degrade to empty lists.
func (s *DataService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var (
		profile    models.Profile
		courses    models.CourseList
		grades     []models.Grade
		attendance []models.Attendance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.Profile(gctx, false)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		courses, err = s.Courses(gctx, false)
		if err != nil {
			return fmt.Errorf("courses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if grades, err = s.Grades(gctx); err != nil {
			s.log.Warnw("grades unavailable for dashboard", "error", err)
			grades = []models.Grade{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if attendance, err = s.Attendance(gctx); err != nil {
			s.log.Warnw("attendance unavailable for dashboard", "error", err)
			attendance = []models.Attendance{}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}

	d := models.Dashboard{
		Profile:          profile,
		CurrentCourses:   courses.ByStatus(models.CourseStatusCurrent),
		CompletedCourses: courses.ByStatus(models.CourseStatusPast),
		Grades:           grades,
		Attendance:       attendance,
	}
	s.log.Debugw("dashboard assembled",
		"current", len(d.CurrentCourses),
		"completed", len(d.CompletedCourses),
		"grades", len(d.Grades),
		"attendance", len(d.Attendance),
	)
	return d, nil
}

func (s *DataService) ClearCache() {
	s.profiles.Clear()
	s.courses.Clear()
}

func (s *DataService) ClearCoursesCache() { s.courses.Clear() }

func (s *DataService) ClearProfileCache() { s.profiles.Invalidate(profileKey) }

func coursesKey(q models.CourseQuery) string {
	return "courses?" + q.Values().Encode()
}
