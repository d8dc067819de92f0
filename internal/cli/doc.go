// Parses flags and dispatches subcommands for the stowd daemon.
//
// The CLI accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity.
//
// The start command runs the daemon in the foreground. The build, status,
// and version commands act as clients: build and status connect to a running
// daemon over its Unix socket, version prints build information locally.
package cli
