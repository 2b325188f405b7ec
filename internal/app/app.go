// Package app wires configuration, session state, the API client and the
// optional offline components into one object the commands share.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gosshub/client/internal/api"
	"gosshub/client/internal/archive"
	"gosshub/client/internal/config"
	"gosshub/client/internal/export"
	"gosshub/client/internal/gitrepo"
	"gosshub/client/internal/guard"
	"gosshub/client/internal/logger"
	"gosshub/client/internal/model"
	"gosshub/client/internal/search"
	"gosshub/client/internal/session"
	"gosshub/client/internal/state"
	"gosshub/client/internal/store"
	"gosshub/client/internal/view"
)

type App struct {
	Config config.Config
	Log    *logrus.Logger
	Store  *state.Store
	Tokens state.TokenStore
	API    *api.Client
	Export *export.Service
	Git    *gitrepo.Service
	Search *search.Service
	// Mirror and Archive are nil when not configured.
	Mirror  *store.Mirror
	Archive *archive.Archive

	meili   *search.Meili
	closers []func() error
}

// New builds the application from cfg. Optional components that fail to
// start are logged and left disabled; only the token backend is required.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.Setup(cfg.LogLevel, os.Stderr)
	a := &App{Config: cfg, Log: log}

	tokens, err := a.openTokens(cfg)
	if err != nil {
		return nil, err
	}
	if err := a.init(cfg, tokens, &http.Client{Timeout: cfg.Timeout}); err != nil {
		_ = a.Close()
		return nil, err
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		mirror, err := store.OpenMirror(ctx, cfg.DatabaseURL, cfg.MigrationsDir)
		if err != nil {
			log.WithError(err).Warn("offline mirror disabled")
		} else {
			a.Mirror = mirror
			a.closers = append(a.closers, mirror.Close)
		}
	}

	var primary search.Backend
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		a.meili = search.NewMeili(ctx, cfg.MeiliURL, cfg.MeiliMasterKey)
		primary = a.meili
	}
	var fallback search.Searcher
	if a.Mirror != nil {
		fallback = search.NewPgFTS(a.Mirror.DB())
	}
	a.Search = search.NewService(primary, fallback)

	if strings.TrimSpace(cfg.S3Endpoint) != "" {
		arc, err := archive.New(archive.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			log.WithError(err).Warn("export archive disabled")
		} else {
			a.Archive = arc
		}
	}
	return a, nil
}

// NewWithTokens builds an application with only the API side wired, for
// callers that bring their own token store.
func NewWithTokens(cfg config.Config, tokens state.TokenStore, httpClient *http.Client) (*App, error) {
	a := &App{Config: cfg, Log: logger.Base()}
	if err := a.init(cfg, tokens, httpClient); err != nil {
		return nil, err
	}
	a.Search = search.NewService(nil, nil)
	return a, nil
}

func (a *App) init(cfg config.Config, tokens state.TokenStore, httpClient *http.Client) error {
	a.Tokens = tokens
	a.Store = state.NewStore(tokens)
	client, err := api.New(cfg.APIURL, httpClient, a.Store)
	if err != nil {
		return err
	}
	a.API = client
	a.Export = export.NewService()
	if cfg.ReposDir != "" {
		a.Git = gitrepo.New(cfg.ReposDir)
	}
	return nil
}

func (a *App) openTokens(cfg config.Config) (state.TokenStore, error) {
	switch cfg.TokenBackend {
	case config.TokenBackendRedis:
		tokens, err := session.NewRedisStore(cfg.RedisURL, cfg.Profile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, tokens.Close)
		return tokens, nil
	case config.TokenBackendFile, "":
		return session.NewFileStore(tokenPath(cfg.TokenFile, cfg.Profile), cfg.TokenKey), nil
	default:
		return nil, fmt.Errorf("unknown token backend %q", cfg.TokenBackend)
	}
}

// tokenPath keeps one token file per profile next to the configured one.
func tokenPath(path, profile string) string {
	if profile == "" || profile == "default" {
		return path
	}
	return path + "-" + profile
}

// Start restores the saved token and, when there is one, checks it against the API to
// decide whether the session is still logged in. A rejected token is not an
// error; the session simply ends up logged out. When the API cannot be
// reached the token stays saved and the session is logged out for this run
// only, so offline commands keep working.
func (a *App) Start(ctx context.Context) error {
	if err := a.Store.Restore(ctx); err != nil {
		return err
	}
	if a.Store.Token() == "" {
		return nil
	}
	if a.Store.Expired() {
		_, err := a.Store.Dispatch(ctx, state.Logout())
		return err
	}
	err := a.API.CheckSession(ctx)
	if err == nil || errors.Is(err, api.ErrUnauthorized) {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	logger.For(ctx).WithError(err).Warn("session check failed, continuing offline")
	return nil
}

// WithLogger returns ctx carrying the app's logger tagged with the running
// command, so everything logged under ctx names it.
func (a *App) WithLogger(ctx context.Context, command string) context.Context {
	return logger.NewContextWithLogger(ctx, logrus.NewEntry(a.Log).WithFields(logrus.Fields{
		"command": command,
		"profile": a.Config.Profile,
	}))
}

// Require applies the command guard to the current state.
func (a *App) Require(access guard.Access) error {
	decision := guard.Check(a.Store.State(), access)
	if decision.Allow {
		return nil
	}
	return accessError(access, decision)
}

func (a *App) Username() string {
	return a.Store.State().User.Username
}

// OpenDocument starts a viewing session whose loads are copied into the
// offline mirror and the search index.
func (a *App) OpenDocument(ctx context.Context, uuid string) *view.DocumentView {
	v := view.OpenDocument(ctx, a.API, uuid)
	v.OnLoad = a.sync
	return v
}

func (a *App) sync(ctx context.Context, document model.Document) {
	if a.Mirror != nil {
		if err := a.Mirror.SaveDocument(ctx, document); err != nil {
			logger.For(ctx).WithError(err).Warn("mirror document")
		}
	}
	a.Search.Index(ctx, document)
}

// MirrorResult reports what a full mirror of one document wrote.
type MirrorResult struct {
	Git      gitrepo.MirrorResult
	Database bool
}

// MirrorDocument fetches a document and copies it into every configured
// offline store: the git repository, Postgres and the search index.
func (a *App) MirrorDocument(ctx context.Context, uuid string) (MirrorResult, error) {
	if a.Git == nil && a.Mirror == nil {
		return MirrorResult{}, disabled("offline mirror", "repos_dir or database_url")
	}
	document, err := a.API.GetDocument(ctx, uuid)
	if err != nil {
		return MirrorResult{}, err
	}
	var result MirrorResult
	if a.Git != nil {
		if result.Git, err = a.Git.Mirror(document); err != nil {
			return result, fmt.Errorf("git mirror: %w", err)
		}
	}
	if a.Mirror != nil {
		if err := a.Mirror.SaveDocument(ctx, document); err != nil {
			return result, err
		}
		result.Database = true
	}
	a.Search.Index(ctx, document)
	return result, nil
}

// ExportDocument renders a document version and, when archive is set,
// uploads it to object storage.
func (a *App) ExportDocument(ctx context.Context, uuid string, req export.Request, upload bool) (*export.Result, *archive.Object, error) {
	if upload && a.Archive == nil {
		return nil, nil, disabled("export archive", "s3_endpoint")
	}
	document, err := a.API.GetDocument(ctx, uuid)
	if err != nil {
		return nil, nil, err
	}
	result, err := a.Export.Export(ctx, document, req)
	if err != nil {
		return nil, nil, err
	}
	if !upload {
		return result, nil, nil
	}
	obj, err := a.Archive.Upload(ctx, uuid, result)
	if err != nil {
		return result, nil, err
	}
	return result, &obj, nil
}

// Reindex pushes the whole offline mirror to the search index.
func (a *App) Reindex(ctx context.Context) (int, int, error) {
	if a.Mirror == nil {
		return 0, 0, disabled("offline mirror", "database_url")
	}
	return a.Search.Reindex(ctx, a.Mirror)
}

// Check is one line of the readiness report.
type Check struct {
	Name   string
	Status string
	Error  string
}

// Ready checks every configured dependency, the way the API's readiness
// endpoint reports its database.
func (a *App) Ready(ctx context.Context) []Check {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	checks := []Check{result("api", a.API.Ping(ctx))}
	if pinger, ok := a.Tokens.(interface{ Ping(context.Context) error }); ok {
		checks = append(checks, result("tokens", pinger.Ping(ctx)))
	}
	if a.Mirror != nil {
		checks = append(checks, result("mirror", a.Mirror.Ping(ctx)))
	} else {
		checks = append(checks, Check{Name: "mirror", Status: "disabled"})
	}
	switch {
	case a.meili == nil:
		checks = append(checks, Check{Name: "search", Status: "disabled"})
	case a.meili.Healthy():
		checks = append(checks, Check{Name: "search", Status: "ok"})
	default:
		checks = append(checks, Check{Name: "search", Status: "error", Error: "meilisearch unreachable"})
	}
	if a.Archive != nil {
		checks = append(checks, result("archive", a.Archive.EnsureBucket(ctx)))
	} else {
		checks = append(checks, Check{Name: "archive", Status: "disabled"})
	}
	return checks
}

func result(name string, err error) Check {
	if err != nil {
		return Check{Name: name, Status: "error", Error: err.Error()}
	}
	return Check{Name: name, Status: "ok"}
}

// Close flushes background indexing and releases connections.
func (a *App) Close() error {
	if a.Search != nil {
		a.Search.Wait()
	}
	if a.meili != nil {
		a.meili.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
