package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-web3-demo/internal/config"
	"github.com/quantumauth-io/quantum-web3-demo/internal/session"
	"github.com/quantumauth-io/quantum-web3-demo/internal/signing"
)

func newSignMessageCmd(flags *rootFlags) *cobra.Command {
	var message, from string

	cmd := &cobra.Command{
		Use:   "sign-message",
		Short: "Sign a plain message and check who signed it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), flags, func(ctx context.Context, cfg *config.Config, sess *session.Session) error {
				signer, err := fromOrCoinbase(ctx, sess, from)
				if err != nil {
					return err
				}
				text := message
				if !cmd.Flags().Changed("message") {
					text = cfg.Demo.Message
				}
				a := sess.Signer.SignPlainMessage(ctx, text, signer)
				return reportAttempt(cmd.OutOrStdout(), flags, a)
			})
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "text to sign (defaults to the Constitution preamble)")
	cmd.Flags().StringVar(&from, "from", "", "signing account (defaults to the first account)")
	return cmd
}

func newSignTypedCmd(flags *rootFlags) *cobra.Command {
	var from, v4File string

	cmd := &cobra.Command{
		Use:   "sign-typed",
		Short: `Sign [{string message "Hi, Alice!"}, {uint value 42}] as typed data`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), flags, func(ctx context.Context, _ *config.Config, sess *session.Session) error {
				signer, err := fromOrCoinbase(ctx, sess, from)
				if err != nil {
					return err
				}
				if v4File == "" {
					a := sess.Signer.SignTypedData(ctx, config.DemoTypedFields(), signer)
					return reportAttempt(cmd.OutOrStdout(), flags, a)
				}

				raw, err := os.ReadFile(v4File)
				if err != nil {
					return err
				}
				td, err := signing.ParseTypedDataV4(raw)
				if err != nil {
					return err
				}
				return reportAttempt(cmd.OutOrStdout(), flags, sess.Signer.SignTypedDataV4(ctx, td, signer))
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "signing account (defaults to the first account)")
	cmd.Flags().StringVar(&v4File, "v4", "", "sign this EIP-712 JSON file with eth_signTypedData_v4 instead")
	return cmd
}

func withSession(ctx context.Context, flags *rootFlags, fn func(context.Context, *config.Config, *session.Session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, err := flags.openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(ctx, cfg, sess)
}

func fromOrCoinbase(ctx context.Context, sess *session.Session, raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if !common.IsHexAddress(raw) {
			return common.Address{}, fmt.Errorf("invalid --from address %q", raw)
		}
		return common.HexToAddress(raw), nil
	}
	return sess.Client.Coinbase(ctx)
}

// reportAttempt prints the attempt and turns every non-verified state into an
// error so the exit code reflects it.
func reportAttempt(w io.Writer, flags *rootFlags, a *signing.Attempt) error {
	err := newPrinter(w, flags.json).emit(a, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %s\n", a.Method, a.State)
		if a.Signature != "" {
			fmt.Fprintf(w, "Signature: %s\n", a.Signature)
		}
		if a.Outcome != nil {
			fmt.Fprintf(w, "Expected:  %s\n", a.Outcome.Expected.Hex())
			fmt.Fprintf(w, "Recovered: %s\n", a.Outcome.Recovered.Hex())
		}
	})
	if err != nil {
		return err
	}

	switch a.State {
	case signing.StateVerified:
		return nil
	case signing.StateRejected:
		return errors.New("signature request was rejected")
	default:
		return a.Err
	}
}
