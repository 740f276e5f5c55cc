// Command warden is the boot entrypoint for the local coding agent's
// security-enforcing runtime core: it verifies boot integrity, wires
// together the sandbox, permission arbitrator, provenance tracker,
// audit sink, and tool registry. The turn loop itself is not started:
// run returns once the dispatcher is built.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wardencore/warden/internal/adminapi"
	"github.com/wardencore/warden/internal/audit"
	"github.com/wardencore/warden/internal/auditread"
	"github.com/wardencore/warden/internal/boot"
	"github.com/wardencore/warden/internal/pathguard"
	"github.com/wardencore/warden/internal/permission"
	"github.com/wardencore/warden/internal/protocol"
	"github.com/wardencore/warden/internal/provenance"
	"github.com/wardencore/warden/internal/sandbox"
	"github.com/wardencore/warden/internal/tools"
)

var cfg boot.Config

func main() {
	root := &cobra.Command{
		Use:   "warden",
		Short: "security-enforcing runtime core for a local coding agent",
		RunE:  run,
	}

	flags := root.Flags()
	flags.BoolVar(&cfg.GenerateManifest, "generate-manifest", false, "compute and write the boot-integrity manifest, then exit")
	flags.BoolVar(&cfg.VerifyOnly, "verify-only", false, "verify the boot-integrity manifest, then exit")
	flags.StringVar(&cfg.ExpectedModel, "expected-model", "", "model backend id (recorded in the boot config; not checked against the backend)")
	flags.StringVar(&cfg.ModelBackendEndpoint, "model-backend-endpoint", envOrDefault("WARDEN_MODEL_ENDPOINT", ""), "endpoint of the local model backend subprocess, passed through the sanitized environment")
	flags.BoolVar(&cfg.StrictSandbox, "strict-sandbox", false, "disallow interpreter commands entirely, not just inline-eval flags")
	flags.StringVar(&cfg.PluginsDir, "plugins-dir", "", "plugin directory (recorded in the boot config; no plugins are loaded from it)")
	flags.BoolVar(&cfg.DangerouslySkipPerms, "dangerously-skip-permissions", false, "promote ask-class tools to allow; never promotes deny")
	flags.StringVar(&cfg.AdminAddr, "admin-addr", envOrDefault("WARDEN_ADMIN_ADDR", ""), "loopback address to serve the admin API on (disabled if empty)")
	flags.StringVar(&cfg.PostgresDSN, "postgres-dsn", envOrDefault("POSTGRES_DSN", ""), "Postgres DSN backing durable policy overrides and the admin API")
	flags.StringVar(&cfg.ClickHouseDSN, "clickhouse-dsn", envOrDefault("CLICKHOUSE_DSN", ""), "ClickHouse DSN backing the audit sink and admin event history")
	flags.StringVar(&cfg.LogLevel, "log-level", envOrDefault("WARDEN_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flags.StringVar(&cfg.ManifestPath, "manifest-path", "warden.manifest.json", "path to the boot-integrity manifest")
	flags.StringVar(&cfg.ManifestPassphraseEnv, "manifest-passphrase-env", "WARDEN_MANIFEST_PASSPHRASE", "environment variable holding the manifest HMAC passphrase")
	flags.StringSliceVar(&cfg.TrustRoots, "trust-root", nil, "trust-root file covered by the boot manifest (repeatable)")
	flags.StringSliceVar(&cfg.AllowedDirs, "allowed-dir", []string{"."}, "directory the sandbox and path guard confine operations to (repeatable)")

	if err := root.Execute(); err != nil {
		os.Exit(int(exitCodeFor(err)))
	}
}

// envOrDefault reads an allowlisted environment variable for a flag's
// default, letting operators configure warden without repeating flags
// across every invocation while keeping the flag as the source of truth.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// exitCodeFor maps a run error to the boot CLI's exit-code contract.
func exitCodeFor(err error) boot.ExitCode {
	if ec, ok := err.(exitCodeError); ok {
		return ec.code
	}
	return boot.ExitConfigError
}

type exitCodeError struct {
	code boot.ExitCode
	err  error
}

func (e exitCodeError) Error() string { return e.err.Error() }

func run(cmd *cobra.Command, args []string) error {
	logger := mustBuildLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	passphrase := os.Getenv(cfg.ManifestPassphraseEnv)

	if cfg.GenerateManifest {
		if err := boot.GenerateAndSave(cfg.TrustRoots, passphrase, cfg.ManifestPath); err != nil {
			return exitCodeError{boot.ExitConfigError, err}
		}
		logger.Info("manifest generated", zap.String("path", cfg.ManifestPath))
		return nil
	}

	code, err := boot.VerifyOrExit(cfg.ManifestPath, passphrase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boot integrity check failed: %v\n", err)
		return exitCodeError{code, err}
	}
	if cfg.VerifyOnly {
		logger.Info("manifest verified")
		return nil
	}

	binaries, err := boot.ResolveBinaries([]string{"git", "python3", "node"})
	if err != nil {
		return exitCodeError{boot.ExitConfigError, err}
	}
	logger.Info("resolved spawn binaries at boot", zap.Any("binaries", binaries))

	sandboxPolicy := sandbox.DefaultPolicy(cfg.AllowedDirs, sanitizedEnv(binaries, cfg.ModelBackendEndpoint))
	if cfg.StrictSandbox {
		sandboxPolicy.Blocklist = append(sandboxPolicy.Blocklist, sandboxPolicy.Interpreters...)
	}
	protectedPaths := append(append([]string{}, cfg.TrustRoots...), cfg.ManifestPath)
	sb, err := sandbox.New(sandboxPolicy, protectedPaths)
	if err != nil {
		return exitCodeError{boot.ExitConfigError, err}
	}

	pathGuard, err := pathguard.New(cfg.AllowedDirs, sandboxPolicy.BlockedWriteExtensions, protectedPaths)
	if err != nil {
		return exitCodeError{boot.ExitConfigError, err}
	}

	overrideStore, db, err := buildOverrideStore(cfg, logger)
	if err != nil {
		return exitCodeError{boot.ExitConfigError, err}
	}
	if db != nil {
		defer db.Close()
	}

	sink, err := buildAuditSink(cfg, logger)
	if err != nil {
		return exitCodeError{boot.ExitConfigError, err}
	}
	defer sink.Close()

	arbitrator := permission.New(overrideStore, nil, cfg.DangerouslySkipPerms)
	tracker := provenance.New()
	trust := tools.NewTrustRegistry()
	backups := tools.NewBackupStore()

	registry := protocol.NewRegistry()
	registerTools(registry, pathGuard, sb, trust, backups, cfg.AllowedDirs)

	var currentTurn string
	dispatcher := protocol.New(registry, arbitrator, tracker, sink, func() string { return currentTurn })

	if cfg.AdminAddr != "" {
		stopAdmin, err := startAdminAPI(cfg, overrideStore, logger)
		if err != nil {
			return exitCodeError{boot.ExitConfigError, err}
		}
		defer stopAdmin()
	}

	logger.Info("warden boot complete, entering turn loop")
	_ = dispatcher // the turn loop's transport (stdio/model backend) is out of scope
	return nil
}

// sanitizedEnv builds the allowlisted environment passed to every
// spawned process: locale, home, the configured model-backend endpoint
// (when the backend runs as a subprocess), and a PATH rebuilt from the
// absolute binary locations resolved at boot, rather than the
// process's own (poisonable) PATH.
func sanitizedEnv(binaries boot.ResolvedBinaries, modelBackendEndpoint string) []string {
	env := []string{}
	for _, key := range []string{"LANG", "LC_ALL", "HOME"} {
		if v := os.Getenv(key); v != "" {
			env = append(env, key+"="+v)
		}
	}
	if modelBackendEndpoint != "" {
		env = append(env, "WARDEN_MODEL_ENDPOINT="+modelBackendEndpoint)
	}
	dirs := make(map[string]bool)
	for _, path := range binaries {
		dirs[filepath.Dir(path)] = true
	}
	pathVal := ""
	for dir := range dirs {
		if pathVal != "" {
			pathVal += ":"
		}
		pathVal += dir
	}
	if pathVal != "" {
		env = append(env, "PATH="+pathVal)
	}
	return env
}

func registerTools(reg *protocol.Registry, paths *pathguard.Guard, sb *sandbox.Sandbox, trust *tools.TrustRegistry, backups *tools.BackupStore, allowedDirs []string) {
	reg.Register(protocol.Tool{Name: "file_read", Class: protocol.ClassRead, Handler: &tools.FileRead{Paths: paths, Trust: trust}})
	reg.Register(protocol.Tool{Name: "file_write", Class: protocol.ClassAction, Handler: &tools.FileWrite{Paths: paths, Backups: backups}})
	reg.Register(protocol.Tool{Name: "file_edit", Class: protocol.ClassAction, Handler: &tools.FileEdit{Paths: paths, Backups: backups}})
	reg.Register(protocol.Tool{Name: "glob_search", Class: protocol.ClassRead, Handler: &tools.GlobSearch{AllowedDirs: allowedDirs}})
	reg.Register(protocol.Tool{Name: "grep_search", Class: protocol.ClassRead, Handler: &tools.GrepSearch{Paths: paths, Trust: trust}})
	reg.Register(protocol.Tool{Name: "bash_exec", Class: protocol.ClassAction, Handler: &tools.BashExec{Sandbox: sb}})
	reg.Register(protocol.Tool{Name: "git_status", Class: protocol.ClassRead, Handler: &tools.GitRead{Sandbox: sb, Subcommand: "status"}})
	reg.Register(protocol.Tool{Name: "git_diff", Class: protocol.ClassRead, Handler: &tools.GitRead{Sandbox: sb, Subcommand: "diff"}})
	reg.Register(protocol.Tool{Name: "git_log", Class: protocol.ClassRead, Handler: &tools.GitRead{Sandbox: sb, Subcommand: "log"}})
	reg.Register(protocol.Tool{Name: "git_add", Class: protocol.ClassAction, Handler: &tools.GitAction{Sandbox: sb, Subcommand: "add"}})
	reg.Register(protocol.Tool{Name: "git_commit", Class: protocol.ClassAction, Handler: &tools.GitAction{Sandbox: sb, Subcommand: "commit"}})
}

func buildOverrideStore(cfg boot.Config, logger *zap.Logger) (permission.OverrideStore, *sql.DB, error) {
	if cfg.PostgresDSN == "" {
		store, err := permission.NewFileOverrideStore("warden-overrides")
		if err != nil {
			return nil, nil, err
		}
		logger.Info("no postgres-dsn set, using file-backed policy overrides")
		return store, nil, nil
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("pinging postgres: %w", err)
	}
	logger.Info("postgres connected")
	return permission.NewPostgresOverrideStore(db), db, nil
}

func buildAuditSink(cfg boot.Config, logger *zap.Logger) (audit.Sink, error) {
	if cfg.ClickHouseDSN == "" {
		logger.Info("no clickhouse-dsn set, using log-backed audit sink")
		return audit.NewLogSink(logger), nil
	}
	sink, err := audit.NewClickHouseSink(cfg.ClickHouseDSN, logger)
	if err != nil {
		logger.Warn("clickhouse audit sink failed, falling back to log sink", zap.Error(err))
		return audit.NewLogSink(logger), nil
	}
	logger.Info("clickhouse audit sink connected")
	return sink, nil
}

func startAdminAPI(cfg boot.Config, overrides permission.OverrideStore, logger *zap.Logger) (func(), error) {
	token := os.Getenv("WARDEN_ADMIN_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("admin-addr set but WARDEN_ADMIN_TOKEN is empty")
	}
	tokenStore, err := adminapi.NewStaticTokenStore(token)
	if err != nil {
		return nil, err
	}

	var reader *auditread.Reader
	if cfg.ClickHouseDSN != "" {
		reader, err = auditread.NewReader(cfg.ClickHouseDSN, logger)
		if err != nil {
			logger.Warn("admin audit reader unavailable", zap.Error(err))
			reader = nil
		}
	}

	deps := &adminapi.Dependencies{
		Overrides: overrides,
		Audit:     reader,
		Tokens:    tokenStore,
		Logger:    logger,
		CacheTTL:  30 * time.Second,
	}

	server := &http.Server{
		Addr:         cfg.AdminAddr,
		Handler:      adminapi.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("admin http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin http server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		if reader != nil {
			_ = reader.Close()
		}
	}, nil
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	logCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := logCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
