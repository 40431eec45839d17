package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ember/internal/analysis"
	"ember/internal/feedback"
	"ember/internal/ui"
)

// analyzeWithUI runs a full analysis while a progress view renders the
// events engine reports on events.
func analyzeWithUI(ctx context.Context, title string, engine *analysis.Engine, events chan analysis.Event) (feedback.Feedback, error) {
	result := make(chan feedback.Feedback, 1)
	go func() {
		fb := engine.RunFullAnalysis(ctx)
		close(events)
		result <- fb
	}()

	model := ui.NewProgressModel(title, engine.Manifest().Root, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// the view may quit early; keep the workers from blocking on send
	go func() {
		for range events {
		}
	}()
	fb := <-result
	if uiErr != nil && ctx.Err() == nil {
		return fb, uiErr
	}
	return fb, nil
}
