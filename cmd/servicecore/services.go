package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/servicecore/bootstrap"
	"github.com/kbukum/servicecore/logger"
)

type serviceRow struct {
	Order int    `json:"order"`
	Key   string `json:"key"`
	Kind  string `json:"kind"`
}

type servicesOutput struct {
	CreationOrder string       `json:"creation_order"`
	Running       []string     `json:"running_services"`
	Services      []serviceRow `json:"services"`
}

func newServicesCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "services",
		Short: "Print the running services in creation order without starting them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			app, err := newApp(cfg, bootstrap.WithLogger(logger.Nop()))
			if err != nil {
				return err
			}

			out := servicesOutput{
				CreationOrder: cfg.Registry.CreationOrder,
				Running:       app.Registry.Running(),
			}
			for i, key := range app.CreationOrder() {
				kind := "plain"
				if app.IsHosted(key) {
					kind = "hosted"
				}
				if !app.Container.Has(key) {
					kind = "missing factory"
				}
				out.Services = append(out.Services, serviceRow{Order: i + 1, Key: key, Kind: kind})
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintf(w, "creation order: %s\n\n", out.CreationOrder)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tKEY\tKIND")
			for _, row := range out.Services {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Order, row.Key, row.Kind)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
