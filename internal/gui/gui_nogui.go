//go:build nogui
// +build nogui

package gui

import (
	"fmt"

	"imglabel/internal/config"
	"imglabel/internal/session"
	"imglabel/internal/watch"
)

// App is a stub for builds with the GUI disabled.
type App struct{}

// NewApp returns the stub App.
func NewApp(cfg *config.Config, opts ...Option) *App {
	return &App{}
}

// Available returns whether the GUI is available in this build
func Available() bool {
	return false
}

// Attach is a no-op.
func (a *App) Attach(s *session.Session) {}

// Run always fails: there is no window to show.
func (a *App) Run() error {
	return fmt.Errorf("GUI not available in this build, use --tui")
}

func (a *App) Notify(n watch.Notice) {}
func (a *App) OnDisplay(index int, filename string) {}
func (a *App) OnProgress(p session.Progress) {}
func (a *App) OnFinished() {}
