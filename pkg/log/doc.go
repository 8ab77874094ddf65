// Package log is a small wrapper around the standard library logger that
// gives every component of amosearch its own named logger.
//
// Every line carries a `[name>]` marker after the level, e.g.
//
//	INFO [api>] listening on 127.0.0.1:8080
//
// Debug output is off by default. It can be switched on for everything with
// SetGlobalDebug or for selected components with EnableDebugFor, which is
// what the --debug and --debug-for flags of the CLI do:
//
//	log.EnableDebugFor("dispatcher")
//	log.ForService("dispatcher").Debugf("visible")
//	log.ForService("api").Debugf("not visible")
//
// SetOutput redirects every logger, existing ones included. Tests use it with
// a bytes.Buffer to assert on log contents.
//
// Structured or JSON output is out of scope; add it only when something
// consumes it.
package log
