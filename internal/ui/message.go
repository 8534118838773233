package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlanReady MsgKind = iota
	MsgProgressUpdate
	MsgSyncComplete
)

type planData struct {
	plan *tasks.PlanResult
	err  error
}

type syncData struct {
	summary *models.RunSummary
	err     error
}

// planReadyMsg is the constructor for [MsgPlanReady]
func planReadyMsg(plan *tasks.PlanResult, err error) Msg {
	return Msg{kind: MsgPlanReady, data: planData{plan, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(summary *models.RunSummary, err error) Msg {
	return Msg{kind: MsgSyncComplete, data: syncData{summary, err}}
}
