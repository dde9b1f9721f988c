// Package app wires the WIP reconciliation web service together: it loads
// configuration, builds the logger, telemetry, user directory, artifact
// store, WebSocket hub and workflow service, mounts the HTTP routes and
// runs the server until its context is cancelled.
//
// # Routes
//
//	/ws                  event feed (login required)
//	/metrics             Prometheus scrape endpoint
//	/api/health[...]     probes, open
//	/api/me              login required
//	/api/wip/...         workflow uploads, login required
//	/api/artifacts/...   downloads, login required
//
// Middleware order on the API group is RequestID, RealIP, OTel,
// StructuredLogger, Recoverer, SecurityHeaders, CORS, then the rate
// limiter. The WebSocket route only sees the middleware that leaves the
// ResponseWriter unwrapped.
//
// # Usage
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	a, err := app.NewApplication(ctx)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// Initialization errors are returned to the caller; the package never
// calls os.Exit.
package app
