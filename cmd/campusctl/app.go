package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/metrics"
	"github.com/rryowa/campus_session/internal/migrations"
	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/service"
	"github.com/rryowa/campus_session/internal/storage"
	"github.com/rryowa/campus_session/internal/storage/file"
	"github.com/rryowa/campus_session/internal/storage/memory"
	"github.com/rryowa/campus_session/internal/storage/postgres"
	"github.com/rryowa/campus_session/internal/storage/redis"
	"github.com/rryowa/campus_session/internal/student"
	"github.com/rryowa/campus_session/internal/util"
)

type options struct {
	baseURL   string
	store     string
	tokenFile string
	verbose   bool
}

type app struct {
	log      *zap.SugaredLogger
	session  *service.SessionClient
	data     *student.DataService
	registry *prometheus.Registry
	cleanups []func()
}

func newApp(ctx context.Context, opts *options) (*app, error) {
	log := util.NewCLILogger(opts.verbose)

	clientCfg := util.NewClientConfig()
	if opts.baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(opts.baseURL, "/")
	}

	storeCfg := util.NewStoreConfig()
	if opts.store != "" {
		storeCfg.Backend = util.StoreBackend(strings.ToLower(opts.store))
	}
	if opts.tokenFile != "" {
		storeCfg.FilePath = opts.tokenFile
	}

	a := &app{log: log, registry: prometheus.NewRegistry()}

	store, cleanup, err := buildStore(ctx, log, storeCfg)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		a.cleanups = append(a.cleanups, cleanup)
	}

	m := metrics.New(a.registry)
	a.session = service.NewSessionClient(clientCfg, store, log, service.SessionOptions{Metrics: m})
	if err := a.session.Restore(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	a.data = student.NewDataService(a.session, util.NewCacheConfig(), courseQuery(clientCfg), m, log)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.log.Debugw("metrics", "refreshes", gatherCount(a.registry, "campus_session_token_refreshes_total"))
	_ = a.log.Sync()
}

func buildStore(ctx context.Context, log *zap.SugaredLogger, cfg *util.StoreConfig) (storage.TokenStore, func(), error) {
	switch cfg.Backend {
	case util.StoreMemory:
		return memory.NewTokenStorage(), nil, nil
	case util.StoreFile:
		return file.NewTokenStorage(cfg.FilePath), nil, nil
	case util.StoreRedis:
		client, cleanup, err := util.NewRedisClient(ctx, log, util.NewRedisConfig())
		if err != nil {
			return nil, nil, err
		}
		return redis.NewTokenStorage(client, cfg.Namespace), cleanup, nil
	case util.StorePostgres:
		db, cleanup, err := util.NewDBConnection(log, util.NewDBConfig())
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunMigrations(db, log); err != nil {
			cleanup()
			return nil, nil, err
		}
		return postgres.NewTokenStorage(db, cfg.Namespace), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store %q", cfg.Backend)
	}
}

func courseQuery(cfg *util.ClientConfig) models.CourseQuery {
	q := models.DefaultCourseQuery()
	if cfg.CoursesLang != "" {
		q.Lang = cfg.CoursesLang
	}
	if cfg.CoursesPageSize > 0 {
		q.PageSize = cfg.CoursesPageSize
		q.Take = cfg.CoursesPageSize
	}
	return q
}

func gatherCount(g prometheus.Gatherer, name string) float64 {
	families, err := g.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
