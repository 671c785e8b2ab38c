package cli

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-web3-demo/internal/chains"
	"github.com/quantumauth-io/quantum-web3-demo/internal/qr"
	"github.com/quantumauth-io/quantum-web3-demo/internal/session"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	var showQR bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show provider, network, gas price and account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := flags.openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			snap := sess.Refresh(cmd.Context())
			return newPrinter(cmd.OutOrStdout(), flags.json).emit(snap, func(w io.Writer) {
				printSnapshot(w, snap)
				if showQR && snap.Account.Found {
					printAccountQR(w, snap)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&showQR, "qr", false, "print the account as a QR code")
	return cmd
}

func printAccountQR(w io.Writer, snap session.Snapshot) {
	code, err := qr.Terminal(qr.AddressURI(common.HexToAddress(snap.Account.Address), snap.Network.ID))
	if err != nil {
		fmt.Fprintf(w, "QR code unavailable: %v\n", err)
		return
	}
	fmt.Fprint(w, code)
}

func printSnapshot(w io.Writer, snap session.Snapshot) {
	if snap.ExistingProvider {
		fmt.Fprintln(w, "Using the wallet that was already running; --chain selects the built-in one instead.")
	}
	fmt.Fprintf(w, "Provider:  %s\n", snap.Origin)
	if snap.Chain != "" {
		fmt.Fprintf(w, "Chain:     %s\n", snap.Chain)
	}
	fmt.Fprintf(w, "Network:   %s\n", snap.Network.Label)
	fmt.Fprintf(w, "Gas price: %s gwei\n", snap.GasPrice.Gwei)
	fmt.Fprintf(w, "Account:   %s\n", snap.Account.Address)
	if snap.Account.Found {
		fmt.Fprintf(w, "Balance:   %s ETH\n", snap.Account.Balance)
		if snap.Account.ExplorerURL != "" {
			fmt.Fprintf(w, "Explorer:  %s\n", snap.Account.ExplorerURL)
		}
	}
}

func newChainsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List known chains and how to select them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := cfg.Registry()
			if err != nil {
				return err
			}

			rows := registry.List()
			return newPrinter(cmd.OutOrStdout(), flags.json).emit(rows, func(w io.Writer) {
				printChains(w, rows)
			})
		},
	}
}

func printChains(w io.Writer, rows []chains.ChainDescriptor) {
	for _, c := range rows {
		fmt.Fprintf(w, "%-8s %-4s %-24s --chain %s\n", c.Slug, c.RawID, c.Name, c.Slug)
	}
}
