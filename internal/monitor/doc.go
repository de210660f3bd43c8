// Package monitor runs a watchdog session: it polls a transport.Source,
// parses each line into readings, keeps the rolling series, and applies the
// alert policy.
//
// # Architecture
//
//	Session  - Owns the parser, series store and alert policy. Process turns
//	           one line into an Outcome; Snapshot copies state for display.
//	Loop     - Polls the source every poll_interval, feeds lines to the
//	           session and hands each Outcome to observers. Transport errors
//	           go to OnError; the source is reopened after reconnect_backoff.
//	Metrics  - Prometheus collectors, itself an Observer.
//	Headless - Observer that logs readings, alerts and failures.
//	Model    - Bubble Tea dashboard reading session snapshots.
//
// The dashboard never drives the loop. It redraws from Snapshot on a tick
// and receives connection events through tea.Program.Send, so alerts keep
// flowing while the display is paused.
//
// # Layout Modes
//
// The dashboard adapts to terminal width:
//
//	LayoutMinimal  (<80 cols)  - One line per metric
//	LayoutCompact  (80-120)    - One card per row
//	LayoutStandard (120-160)   - Two cards per row
//	LayoutWide     (160+)      - Up to four cards per row
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	p           - Pause / resume the display
//	c           - Clear the series
//	?           - Toggle help overlay
package monitor
