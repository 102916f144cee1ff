package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alkime/intervals/internal/audio"
	"github.com/alkime/intervals/internal/config"
	"github.com/alkime/intervals/internal/cue"
	"github.com/alkime/intervals/internal/speech"
	"github.com/alkime/intervals/pkg/uictl"
)

// newCues wires the playback device and speech engine into a dispatcher
// and starts it. The device is only opened when the dispatcher is armed.
func newCues(ctx context.Context, cfg *config.Config, log *slog.Logger, voice bool) (*cue.Dispatcher, func()) {
	player := audio.NewPlayer(audio.DefaultDeviceConfig(cfg.SampleRate), audio.WithLogger(log))

	opts := []cue.Option{cue.WithArm(player.Open), cue.WithLogger(log)}

	speaker, err := speech.New(cfg.SpeechCommand, speech.WithLogger(log))
	switch {
	case err == nil:
		opts = append(opts, cue.WithSpeaker(speaker))
	case errors.Is(err, speech.ErrUnavailable):
		log.Info("speech disabled", "reason", err)
	default:
		log.Warn("speech engine failed", "error", err)
	}

	d := cue.New(player, uictl.NewSwitch(voice), opts...)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		d.Run(runCtx)
	}()

	return d, func() {
		cancel()
		<-done

		if speaker != nil {
			speaker.Cancel()
		}

		player.Close(context.Background())
	}
}
