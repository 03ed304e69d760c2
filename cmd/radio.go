package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/shared"
	"github.com/desertthunder/reload/internal/ui"
	"github.com/urfave/cli/v3"
)

// Radio launches the terminal radio over the catalog songs.
func (r *Runner) Radio(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model, err := r.newRadioModel()
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// newRadioModel builds the TUI model with a player that acknowledges loads without audio.
func (r *Runner) newRadioModel() (*ui.Model, error) {
	cat, err := r.loadCatalog()
	if err != nil {
		return nil, err
	}

	player := &playback.EchoPlayer{}
	notices := ui.NewNotices(8)
	volume := r.config.Player.DefaultVolume

	controller := playback.New(cat.Songs, playback.Options{
		Player:       player,
		Notifier:     notices,
		Logger:       shared.WithLogger(r.logger, "component", "radio"),
		Volume:       &volume,
		MuteFallback: r.config.Player.MuteFallback,
	})
	player.Attach(controller)

	return ui.NewModel(controller, notices, cat.Servers, r.weights()), nil
}
