package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-web3-demo/internal/config"
	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
	"github.com/quantumauth-io/quantum-web3-demo/internal/session"
	"github.com/quantumauth-io/quantum-web3-demo/internal/transfer"
)

func newSendEthCmd(flags *rootFlags) *cobra.Command {
	var to, amount, from string

	cmd := &cobra.Command{
		Use:   "send-eth",
		Short: "Send ether and follow the transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), flags, func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				return sendEth(ctx, cmd, flags, sess, from, or(to, cfg.Demo.TargetAddress), or(amount, cfg.Demo.SendAmountEther))
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient (defaults to the demo target)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in ether (defaults to 0.002)")
	cmd.Flags().StringVar(&from, "from", "", "sending account (defaults to the first account)")
	return cmd
}

func newBuyTokenCmd(flags *rootFlags) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "buy-token",
		Short: "Pay ether into the demo token contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), flags, func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				return sendEth(ctx, cmd, flags, sess, from, cfg.Demo.TokenAddress, cfg.Demo.BuyAmountEther)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "sending account (defaults to the first account)")
	return cmd
}

func newSendTokenCmd(flags *rootFlags) *cobra.Command {
	var to, amount, contract, from string

	cmd := &cobra.Command{
		Use:   "send-token",
		Short: "Send demo tokens, priced with the gas fee feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), flags, func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				sender, err := fromOrCoinbase(ctx, sess, from)
				if err != nil {
					return err
				}
				tokenAddr, err := parseAddr("contract", or(contract, cfg.Demo.TokenAddress))
				if err != nil {
					return err
				}
				recipient, err := parseAddr("to", or(to, cfg.Demo.TargetAddress))
				if err != nil {
					return err
				}
				decimals := cfg.Demo.TokenDecimals
				symbol := "tokens"
				if a, err := sess.Assets.FetchAsset(ctx, sess.NetworkKey(ctx), tokenAddr); err == nil {
					decimals, symbol = a.Decimals, a.Symbol
				} else {
					log.Warn("token metadata unavailable, using configured decimals", "contract", tokenAddr.Hex(), "error", err)
				}
				value := or(amount, cfg.Demo.TokenAmount)
				units, err := eth.ParseUnits(value, decimals)
				if err != nil {
					return err
				}

				msg := fmt.Sprintf("Send %s %s to %s from %s?", value, symbol, recipient.Hex(), sender.Hex())
				if err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), flags.yes, msg); err != nil {
					return err
				}

				st := sess.Submitter.SubmitToken(ctx, sender, transfer.TokenTransfer{
					Contract: tokenAddr,
					To:       recipient,
					Amount:   units,
				})
				return follow(ctx, cmd.OutOrStdout(), flags, sess, st)
			})
		},
	}
	cmd.Flags().StringVar(&contract, "contract", "", "token contract (defaults to the demo token)")
	cmd.Flags().StringVar(&to, "to", "", "recipient (defaults to the demo target)")
	cmd.Flags().StringVar(&amount, "amount", "", "token amount (defaults to 3)")
	cmd.Flags().StringVar(&from, "from", "", "sending account (defaults to the first account)")
	return cmd
}

func sendEth(ctx context.Context, cmd *cobra.Command, flags *rootFlags, sess *session.Session, from, to, amount string) error {
	sender, err := fromOrCoinbase(ctx, sess, from)
	if err != nil {
		return err
	}
	recipient, err := parseAddr("to", to)
	if err != nil {
		return err
	}
	value, err := eth.ToWei(amount, eth.Ether)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Send %s ETH to %s from %s?", amount, recipient.Hex(), sender.Hex())
	if err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), flags.yes, msg); err != nil {
		return err
	}

	st := sess.Submitter.Submit(ctx, transfer.TransferRequest{From: sender, To: recipient, Value: value})
	return follow(ctx, cmd.OutOrStdout(), flags, sess, st)
}

// follow prints events until the stream ends and returns the failure, if any.
// Interrupting only stops following: the transaction is already out.
func follow(ctx context.Context, w io.Writer, flags *rootFlags, sess *session.Session, st *transfer.Stream) error {
	p := newPrinter(w, flags.json)
	chain, ok := sess.Chain()
	if !ok {
		sess.RefreshNetwork(ctx)
		chain, _ = sess.Chain()
	}

	var failure error
	for ev := range st.Events() {
		if ev.Kind == transfer.EventFailed {
			failure = ev.Err
		}
		if err := p.emit(ev, func(w io.Writer) { printEvent(w, chain.ExplorerBaseURL, ev) }); err != nil {
			return err
		}
	}
	return failure
}

func printEvent(w io.Writer, explorer string, ev transfer.Event) {
	switch ev.Kind {
	case transfer.EventSubmitted:
		fmt.Fprintf(w, "submitted %s\n", ev.Hash.Hex())
		if explorer != "" {
			fmt.Fprintf(w, "  %s%s\n", strings.Replace(explorer, "/address/", "/tx/", 1), ev.Hash.Hex())
		}
	case transfer.EventConfirmed:
		fmt.Fprintf(w, "mined in block %s (status %d)\n", ev.Receipt.BlockNumber, ev.Receipt.Status)
	case transfer.EventConfirmationCount:
		fmt.Fprintf(w, "confirmation %d\n", ev.Confirmations)
	case transfer.EventFailed:
		fmt.Fprintf(w, "failed: %v\n", ev.Err)
	}
}

func parseAddr(name, raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid --%s address %q", name, raw)
	}
	return common.HexToAddress(raw), nil
}

func or(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
