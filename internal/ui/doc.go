// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single sync run:
//  1. [PlanView] : Preview the tracks this run would acquire, numbered as they will be written
//  2. [SyncView] : Monitor real-time progress while tracks are downloaded and tagged
//  3. [ResultView] : Display the run summary and the tracks that failed
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the sync engine, providing non-blocking status reporting during a run.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
