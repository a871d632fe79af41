package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/cmdgrid/internal/console"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/remote"
)

// Run serves command lines with the configured host until it stops or ctx
// is done. in feeds the console host and is ignored by the remote one.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.", "host", a.config.Host)

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
		defer func() {
			if err := a.closeHealthcheckServer(); err != nil {
				a.logger.Error("Health check server shutdown failed.", "error", err)
			}
		}()
	}

	var err error
	switch a.config.Host {
	case HostRemote:
		host := remote.New(a.registry, remote.Config{
			URL:                a.config.RemoteURL,
			Namespace:          a.config.RemoteNamespace,
			InsecureSkipVerify: a.config.InsecureSkipVerify,
			RatePerSecond:      a.config.RatePerSecond,
			Burst:              a.config.Burst,
		}, a.logger)
		a.logger.Info("Serving commands from remote server.", "url", a.config.RemoteURL)
		err = host.Run(ctx)
	default:
		host := console.New(a.registry, console.Config{
			Caller:        a.config.Caller,
			Operator:      a.config.Operator,
			Color:         a.config.Color,
			Prompt:        a.config.Prompt,
			RatePerSecond: a.config.RatePerSecond,
			Burst:         a.config.Burst,
		}, a.outW, a.logger)
		err = host.Run(ctx, in)
	}
	if err != nil {
		return fmt.Errorf("%s host failed: %w", a.config.Host, err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
