package startup

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"media-tags/internal/config"
	"media-tags/internal/database"
	"media-tags/internal/logging"
	"media-tags/internal/metrics"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"build_time"`
	GoVersion string `json:"goVersion" yaml:"go_version"`
	OS        string `json:"os" yaml:"os"`
	Arch      string `json:"arch" yaml:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RecordBuildInfo publishes the build information as the app info metric.
func RecordBuildInfo() {
	metrics.SetAppInfo(Version, Commit, GoVersion)
}

// ServerConfig holds the values reported once the metrics server is up.
type ServerConfig struct {
	Addr            string
	StartupDuration time.Duration
}

// LogStartup prints the banner, system information and the resolved
// configuration. Long-running commands call it once before serving.
func LogStartup(w io.Writer, cfg *config.Config) {
	printBanner(w)
	logSystemInfo()
	LogConfiguration(cfg)
}

// LogConfiguration logs the resolved configuration. The PostgreSQL DSN is
// not logged since it may carry credentials.
func LogConfiguration(cfg *config.Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  DB driver:         %s", cfg.Database.Driver)
	if cfg.Database.Driver == database.DriverPostgres {
		logging.Info("  DB DSN:            %s", redact(cfg.Database.DSN))
	} else {
		logging.Info("  DB path:           %s", cfg.Database.Path)
	}
	logging.Info("  Max open conns:    %d", cfg.Database.MaxOpenConns)
	logging.Info("  Random strategy:   %s", cfg.Query.RandomStrategy)
	logging.Info("  Default limit:     %d", cfg.Query.DefaultLimit)
	logging.Info("  Collect interval:  %s", cfg.Metrics.CollectInterval)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())
	logging.Info("")
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogCollectorStarted logs the start of the stats collector
func LogCollectorStarted(interval time.Duration) {
	logging.Info("  [OK] Stats collector started (every %v)", interval)
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Metrics:       http://%s/metrics", config.Addr)
	logging.Info("    Health:        http://%s/healthz", config.Addr)
	logging.Info("    Version:       http://%s/version", config.Addr)
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...any) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner(w io.Writer) {
	banner := `
------------------------------------------------------------
  __              __  __
 / /_____ _____ _/ /_/ /
/ __/ __ '/ __ '/ __/ /
/ /_/ /_/ / /_/ / /_/ /
\__/\__,_/\__, /\__/_/
         /____/
------------------------------------------------------------`
	_, _ = fmt.Fprintln(w, banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// redact hides the userinfo of a URL-style connection string.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.Index(rest, "@"); at >= 0 {
		return scheme + "://***" + rest[at:]
	}
	return dsn
}
