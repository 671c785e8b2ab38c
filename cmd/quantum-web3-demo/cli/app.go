package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"golang.org/x/term"

	clientconfig "github.com/quantumauth-io/quantum-web3-demo/cmd/quantum-web3-demo/config"
	"github.com/quantumauth-io/quantum-web3-demo/internal/assets"
	"github.com/quantumauth-io/quantum-web3-demo/internal/config"
	"github.com/quantumauth-io/quantum-web3-demo/internal/gasfeed"
	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
	"github.com/quantumauth-io/quantum-web3-demo/internal/session"
	"github.com/quantumauth-io/quantum-web3-demo/internal/transfer"
)

// overrides merges, in order of precedence, --query, --chain/--local and the
// QW3_CHAIN/QW3_LOCAL environment.
func (f *rootFlags) overrides() (provider.Overrides, error) {
	ov := provider.ParseOverrides(f.query)
	ov = ov.Merge(provider.Overrides{Chain: f.chain, Local: f.local})

	env, err := provider.OverridesFromEnv()
	if err != nil {
		return provider.Overrides{}, err
	}
	return ov.Merge(env), nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := clientconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// openSession resolves the provider for this run. Callers must Close it.
func (f *rootFlags) openSession(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	ov, err := f.overrides()
	if err != nil {
		return nil, err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	resolver := provider.NewResolver(registry)
	resolver.DefaultChain = cfg.Session.DefaultChain
	resolver.ProductionServiceURL = cfg.Session.FallbackServiceURL
	resolver.LocalServiceURL = cfg.Session.LocalFallbackServiceURL

	injectedURL := strings.TrimSpace(f.injected)
	if injectedURL == "" {
		injectedURL = cfg.Session.InjectedRPCURL
	}
	env := provider.DetectEnvironment(ctx, injectedURL, nil)

	assetsPath, err := assets.DefaultPath()
	if err != nil {
		log.Warn("token cache disabled", "error", err)
		assetsPath = ""
	}

	return session.New(ctx, session.Options{
		Registry:    registry,
		Resolver:    resolver,
		Environment: env,
		Overrides:   ov,
		Fees:        gasfeed.NewClient(cfg.GasFeed.URL, cfg.GasFeedTimeout()),
		Transfer: transfer.Options{
			PollInterval:       cfg.PollInterval(),
			ConfirmationBlocks: cfg.Transfer.ConfirmationBlocks,
		},
		BalanceRetryTimeout: cfg.BalanceRetryTimeout(),
		AssetsPath:          assetsPath,
	})
}

// printer writes human text on a terminal and JSON everywhere else.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, forceJSON bool) *printer {
	asJSON := forceJSON
	if !asJSON {
		if f, ok := w.(*os.File); ok {
			asJSON = !term.IsTerminal(int(f.Fd()))
		}
	}
	return &printer{w: w, json: asJSON}
}

func (p *printer) emit(v any, human func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human(p.w)
	return nil
}
