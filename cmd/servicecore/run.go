package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/internal/demo"
	"github.com/kbukum/servicecore/logger"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the running services and block until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			app, err := newApp(cfg)
			if err != nil {
				return err
			}

			if err := app.WhenAllReady(func() {
				app.Logger.Info("All services ready", logger.Fields("count", len(app.Registry.Running())))
			}); err != nil {
				return err
			}
			if app.Registry.IsConfigured("patcher") {
				if err := app.WhenReady("patcher", func(svc component.Service) {
					p := svc.(*demo.Patcher)
					if latest, err := p.Latest(); err == nil && p.UpdateAvailable() {
						app.Logger.Info("Newer version published", logger.Fields("latest", latest))
					}
				}); err != nil {
					return err
				}
			}

			return app.Run(cmd.Context())
		},
	}
}
