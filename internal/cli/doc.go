// Package cli implements the watchdog command-line interface.
//
// Each Cobra command delegates to a xxxCommand function that takes its
// output writer and options explicitly, so tests can drive it without the
// command tree.
//
// # Command Structure
//
//	watchdog monitor         - Live dashboard (headless when not a TTY)
//	watchdog run             - Headless loop, logs readings and alerts
//	watchdog parse [file|-]  - Dry-run the parser over a capture
//	watchdog notify-test     - Send one test notification
//	watchdog init            - Create .watchdog.yaml
//	watchdog config check|set|show
//	watchdog ports           - List serial devices
//	watchdog captures [clean] - List or prune --record captures
//	watchdog doctor          - Diagnose issues
//
// # Monitoring
//
// monitor and run share prepareRun: load config, apply the source flags,
// validate with a source required, then build the notifier, session and
// metrics. A serial port is locked for the life of the run so a second
// watchdog can't read from it. With --record every line also goes to a
// capture file, and old captures are pruned when the run ends. The
// dashboard receives transport events through tea.Program.Send; the
// headless loop logs them.
//
// # Exit Codes
//
// Structured errors map to exit statuses by code: CONFIG exits 2,
// TRANSPORT 3, NOTIFY 4, anything else 1.
package cli
