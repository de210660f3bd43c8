// Package ui provides terminal output components for watchdog's CLI.
//
// # Components Overview
//
//	Spinner          - Animated status line for one-shot operations
//	SpinnerComponent - Bubble Tea spinner embedded in the dashboard
//	Sparkline        - Mini bar graphs for a metric's rolling series
//	Tables           - Port listings, check reports and key/value dumps
//	Header           - Branded title block for CLI commands
//
// # Color Scheme
//
// Colors are hex values from the dashboard palette:
//
//	ColorSuccess (green)  - Values inside their threshold range
//	ColorError   (red)    - Alerting values and failures
//	ColorWarning (amber)  - Warnings, retries
//	ColorInfo    (cyan)   - Informational messages
//	ColorMuted   (gray)   - Secondary text, timing info
//
// Use DisableColors() to switch to monochrome output.
package ui
