package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
)

type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.Commit, b.BuildDate)
}

// rootFlags are read once at startup and turned into session overrides.
type rootFlags struct {
	query    string
	chain    string
	local    bool
	injected string
	json     bool
	yes      bool
}

func newRootCmd(info BuildInfo) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Version: info.String(),
		Use:     constants.AppName,
		Short:   "Web3 wallet demo: provider selection, signing checks and transfers",
		Long: `quantum-web3-demo picks a signing provider once per run, shows the live
chain state, and runs the demo signing and transfer flows. Every signature a
wallet returns is checked against the account that supposedly produced it.

An already running wallet is used when --injected (or QW3_INJECTED_RPC) points
at it, unless a chain override is given: --chain, --query "chain=kovan&local"
or QW3_CHAIN/QW3_LOCAL force the built-in fallback wallet service.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.query, "query", "", `session overrides as a query string, e.g. "chain=kovan&local"`)
	pf.StringVar(&flags.chain, "chain", "", "chain slug or id; forces the fallback wallet service")
	pf.BoolVar(&flags.local, "local", false, "use the local fallback wallet service")
	pf.StringVar(&flags.injected, "injected", "", "JSON-RPC endpoint of an already running wallet")
	pf.BoolVar(&flags.json, "json", false, "print JSON even on a terminal")
	pf.BoolVarP(&flags.yes, "yes", "y", false, "send transactions without asking")

	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.AddCommand(
		newStatusCmd(flags),
		newChainsCmd(flags),
		newTokenCmd(flags),
		newSignMessageCmd(flags),
		newSignTypedCmd(flags),
		newSendEthCmd(flags),
		newBuyTokenCmd(flags),
		newSendTokenCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// Execute is called by main.main. It only needs to happen once.
func Execute(info BuildInfo) {
	log.Info(constants.AppName,
		"version", info.Version,
		"commit", info.Commit,
		"build_date", info.BuildDate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(info).ExecuteContext(ctx); err != nil {
		log.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
