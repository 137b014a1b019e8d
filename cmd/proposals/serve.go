package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/config"
)

type serveClient interface {
	Serve(ctx context.Context, addr string) error
}

// NewServeCmd creates the serve command with explicit dependencies.
func NewServeCmd(client serveClient) *cobra.Command {
	if client == nil {
		panic("NewServeCmd: client dependency cannot be nil")
	}

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the proposals API over HTTP",
		Long: `Serve the proposals API over HTTP until interrupted.

ROUTES:
    GET    /api/v1/proposals               List with the same filters as 'list'
    POST   /api/v1/proposals               Create
    PUT    /api/v1/proposals/{id}          Update the given fields
    DELETE /api/v1/proposals/{id}          Delete
    POST   /api/v1/proposals/bulk/status   Set the status of many proposals
    POST   /api/v1/proposals/bulk/archive  Archive or restore many proposals
    GET    /api/v1/summary                 Dashboard totals
    GET    /health/live, /health/ready     Probes
    GET    /metrics                        Prometheus metrics

When jwks_url is configured (derived from supabase_url by default), API
routes require a bearer token signed by the identity provider.

OPTIONS:
    --addr <addr>   Listen address (default: listen_addr setting)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = config.Get("listen_addr", ":8080")
			}
			return client.Serve(cmd.Context(), addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address")
	return serveCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewServeCmd(client))
}
