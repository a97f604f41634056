package controller

import "github.com/hyperjump/docassist/internal/models"

// StatusKind classifies a status line.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// View renders controller output. Methods are called with the controller lock held,
// so implementations must not call back into the controller.
type View interface {
	ShowStatus(kind StatusKind, text string)
	ShowState(state models.State, panel models.Panel)
	ShowProcessing(active bool)
	ShowExplanation(e *models.Explanation)
	ShowMessage(m models.Message)
	ShowTyping(active bool)
	ResetTranscript()
	ClearInput()
}

// NopView discards everything. Embed it to implement only part of View.
type NopView struct{}

func (NopView) ShowStatus(StatusKind, string) {}
func (NopView) ShowState(models.State, models.Panel) {}
func (NopView) ShowProcessing(bool) {}
func (NopView) ShowExplanation(*models.Explanation) {}
func (NopView) ShowMessage(models.Message) {}
func (NopView) ShowTyping(bool) {}
func (NopView) ResetTranscript() {}
func (NopView) ClearInput() {}
