// Package startup holds build information and the lifecycle logging used by
// tagctl's long-running commands.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
//   - [LogStartup]: banner, system information and resolved configuration
//   - [LogDatabaseInit]: Database initialization timing
//   - [LogCollectorStarted]: Stats collector interval
//   - [LogServerStarted]: Metrics server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownStep], [LogShutdownComplete]
//
// # Example Usage
//
//	startup.LogStartup(os.Stderr, cfg)
//
//	dbStart := time.Now()
//	db, err := database.New(ctx, cfg.DatabaseOptions())
//	if err != nil {
//	    startup.LogFatal("Failed to initialize database: %v", err)
//	}
//	startup.LogDatabaseInit(time.Since(dbStart))
//
//	// On shutdown...
//	startup.LogShutdownInitiated("SIGTERM")
//	// ... cleanup ...
//	startup.LogShutdownComplete()
package startup
