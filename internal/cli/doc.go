// Package cli implements the pidash command-line interface.
//
// The root command opens the dashboard. Subcommands cover one-shot reads
// and the same actions the dashboard offers:
//
//	pidash [dashboard]          - Interactive dashboard
//	pidash stats                - Global and Pi hardware stats
//	pidash container <action>   - list, start, stop, restart, info, logs, stats
//	pidash service <action>     - list, start, stop, restart
//	pidash project <action>     - list, status, pull
//	pidash gpio <action>        - list, toggle
//	pidash doctor               - Diagnose config, network and API problems
//	pidash init                 - Create a config file
//
// Resource commands are generated from the action dispatch table, so a
// new route there shows up as a subcommand.
//
// Global flags (--config, --api, --verbose, --no-color) are defined on the
// root command. Commands that support --json wrap their output in the
// same success/error envelope the management API uses.
package cli
