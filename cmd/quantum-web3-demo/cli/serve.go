package cli

import (
	"github.com/spf13/cobra"

	clienthttp "github.com/quantumauth-io/quantum-web3-demo/internal/http"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := flags.openSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.Refresh(ctx)
			go sess.Watch(ctx, cfg.RefreshInterval())

			router := clienthttp.NewRouter(clienthttp.NewHandler(sess, cfg.Demo), origins)
			server := clienthttp.NewServer(cfg.ClientSettings.LocalHost, cfg.ClientSettings.Port, router)
			return server.Run(ctx)
		},
	}
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "browser origins allowed to call the API")
	return cmd
}
