package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-web3-demo/internal/config"
	"github.com/quantumauth-io/quantum-web3-demo/internal/session"
)

func newTokenCmd(flags *rootFlags) *cobra.Command {
	var contract, owner string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Show a token's metadata and an account's balance of it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), flags, func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				tokenAddr, err := parseAddr("contract", or(contract, cfg.Demo.TokenAddress))
				if err != nil {
					return err
				}
				holder, err := fromOrCoinbase(ctx, sess, owner)
				if err != nil {
					return err
				}

				h, err := sess.Assets.Holding(ctx, sess.NetworkKey(ctx), tokenAddr, holder)
				if err != nil {
					return err
				}
				chain, _ := sess.Chain()

				return newPrinter(cmd.OutOrStdout(), flags.json).emit(h, func(w io.Writer) {
					name := h.Asset.Symbol
					if h.Asset.Name != "" {
						name = fmt.Sprintf("%s (%s)", h.Asset.Name, h.Asset.Symbol)
					}
					fmt.Fprintf(w, "Token:    %s\n", name)
					fmt.Fprintf(w, "Contract: %s\n", h.Asset.Address.Hex())
					if chain.ExplorerBaseURL != "" {
						fmt.Fprintf(w, "          %s\n", chain.TokenURL(h.Asset.Address.Hex()))
					}
					fmt.Fprintf(w, "Decimals: %d\n", h.Asset.Decimals)
					fmt.Fprintf(w, "Owner:    %s\n", h.Owner.Hex())
					fmt.Fprintf(w, "Balance:  %s %s\n", h.Display, h.Asset.Symbol)
				})
			})
		},
	}
	cmd.Flags().StringVar(&contract, "contract", "", "token contract (defaults to the demo token)")
	cmd.Flags().StringVar(&owner, "owner", "", "account to check (defaults to the first account)")
	return cmd
}
