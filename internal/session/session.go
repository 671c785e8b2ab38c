package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/quantumauth-io/quantum-go-utils/retry"
	"golang.org/x/sync/errgroup"

	"github.com/quantumauth-io/quantum-web3-demo/internal/assets"
	"github.com/quantumauth-io/quantum-web3-demo/internal/chains"
	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
	"github.com/quantumauth-io/quantum-web3-demo/internal/metrics"
	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
	"github.com/quantumauth-io/quantum-web3-demo/internal/signing"
	"github.com/quantumauth-io/quantum-web3-demo/internal/transfer"
)

type Options struct {
	Registry    *chains.Registry
	Resolver    *provider.Resolver
	Environment provider.Environment
	Overrides   provider.Overrides

	Fees     transfer.FeeSource
	Transfer transfer.Options

	// BalanceRetryTimeout bounds the retried balance read in RefreshAccount.
	BalanceRetryTimeout time.Duration

	// AssetsPath is the token metadata cache file. Empty keeps it in memory.
	AssetsPath string
}

// Session owns the provider handle chosen at startup and the services built on
// top of it. All of them share that one handle.
type Session struct {
	handle   provider.Handle
	registry *chains.Registry

	Client    *eth.Client
	Signer    *signing.Service
	Submitter *transfer.Submitter
	Assets    *assets.Manager

	balanceTimeout time.Duration

	mu   sync.RWMutex
	snap Snapshot
	// chain the session is known to be on, once established
	chain *chains.ChainDescriptor

	subMu  sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
}

// New resolves the provider exactly once. On failure nothing is left open.
func New(ctx context.Context, opts Options) (*Session, error) {
	registry := opts.Registry
	if registry == nil {
		registry = chains.MustDefaultRegistry()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = provider.NewResolver(registry)
	}

	h, err := resolver.Resolve(ctx, opts.Environment, opts.Overrides)
	if err != nil {
		if opts.Environment.HasInjected() {
			opts.Environment.Injected.Close()
		}
		return nil, err
	}
	if h.Origin() != provider.OriginInjected && opts.Environment.HasInjected() {
		opts.Environment.Injected.Close()
	}

	client := eth.NewClient(h)
	s := &Session{
		handle:         h,
		registry:       registry,
		Client:         client,
		Signer:         signing.NewService(client),
		Submitter:      transfer.NewSubmitter(client, opts.Fees, opts.Transfer),
		Assets:         assets.NewManager(client, opts.AssetsPath),
		balanceTimeout: opts.BalanceRetryTimeout,
	}
	if s.balanceTimeout <= 0 {
		s.balanceTimeout = 10 * time.Second
	}
	if err := s.Assets.Load(); err != nil {
		log.Warn("token cache ignored", "path", opts.AssetsPath, "error", err)
	}

	s.snap = Snapshot{
		Origin:           h.Origin(),
		ExistingProvider: h.Origin() == provider.OriginInjected,
		Network:          NetworkView{Label: constants.LoadingText},
		GasPrice:         GasPriceView{Gwei: constants.LoadingText},
		Account:          AccountView{Address: constants.LoadingText, Balance: constants.LoadingText},
	}
	if aware, ok := h.(provider.ChainAware); ok {
		chain := aware.Chain()
		s.chain = &chain
		s.snap.Chain = chain.Slug
	}

	log.Info("session started", "origin", h.Origin(), "chain", s.snap.Chain)
	return s, nil
}

func (s *Session) Handle() provider.Handle { return s.handle }

func (s *Session) Origin() provider.Origin { return s.handle.Origin() }

// ExistingProvider reports whether a pre-existing injected provider is in use.
func (s *Session) ExistingProvider() bool { return s.handle.Origin() == provider.OriginInjected }

// Chain returns the chain the session is on, if known.
func (s *Session) Chain() (chains.ChainDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.chain == nil {
		return chains.ChainDescriptor{}, false
	}
	return *s.chain, true
}

func (s *Session) Registry() *chains.Registry { return s.registry }

// NetworkKey names the session's network for per-network caches: the chain
// slug when known, else the raw network id.
func (s *Session) NetworkKey(ctx context.Context) string {
	if chain, ok := s.Chain(); ok {
		return chain.Slug
	}
	id := s.RefreshNetwork(ctx).ID
	if chain, ok := s.Chain(); ok {
		return chain.Slug
	}
	return id
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	if snap.Account.Found && s.chain != nil {
		snap.Account.ExplorerURL = s.chain.AddressURL(snap.Account.Address)
	}
	return snap
}

// Close ends every subscription and releases the provider.
func (s *Session) Close() {
	s.subMu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subMu.Unlock()

	s.handle.Close()
}

// Refresh updates every part of the snapshot concurrently. Parts do not depend
// on each other and none of them fail the whole refresh.
func (s *Session) Refresh(ctx context.Context) Snapshot {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { s.RefreshNetwork(gctx); return nil })
	g.Go(func() error { s.RefreshGasPrice(gctx); return nil })
	g.Go(func() error { s.RefreshAccount(gctx); return nil })
	_ = g.Wait()
	return s.Snapshot()
}

func (s *Session) RefreshNetwork(ctx context.Context) NetworkView {
	id := s.Client.NetworkIdentity(ctx)
	view := NetworkView{ID: id.ID, Label: id.Label}
	if id.ID == "" {
		metrics.RefreshFailure("network")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Network = view
	if s.chain == nil && id.ID != "" {
		if chain, ok := s.registry.Lookup(id.ID); ok {
			s.chain = &chain
			s.snap.Chain = chain.Slug
		}
	}
	s.touch()
	return view
}

func (s *Session) RefreshGasPrice(ctx context.Context) GasPriceView {
	view := GasPriceView{Gwei: constants.LoadingText}
	price, err := s.Client.GasPrice(ctx)
	if err != nil {
		log.Warn("gas price read failed", "error", err)
		metrics.RefreshFailure("gasPrice")
	} else {
		view.Gwei = price.Gwei()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.GasPrice = view
	s.touch()
	return view
}

// RefreshAccount reads the coinbase and its balance. The balance read is
// retried until BalanceRetryTimeout; account listing is not.
func (s *Session) RefreshAccount(ctx context.Context) AccountView {
	view := AccountView{Address: constants.LoadingText, Balance: constants.LoadingText}

	addr, err := s.Client.Coinbase(ctx)
	switch {
	case errors.Is(err, eth.ErrNoAccount):
		view = AccountView{Address: constants.NoAccountFoundText}
	case err != nil:
		log.Warn("account read failed", "error", err)
		metrics.RefreshFailure("account")
	default:
		view.Address = addr.Hex()
		view.Found = true
		if bal, err := s.balanceWithRetry(ctx, addr); err != nil {
			log.Warn("balance read failed", "address", addr.Hex(), "error", err)
			metrics.RefreshFailure("balance")
		} else {
			view.Balance = bal.Ether()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Account = view
	s.touch()
	return view
}

func (s *Session) balanceWithRetry(ctx context.Context, addr common.Address) (eth.Amount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.balanceTimeout)
	defer cancel()

	cfg := retry.DefaultConfig()
	cfg.MaxDelayBeforeRetrying = s.balanceTimeout / 4
	cfg.InitialDelayBeforeRetrying = s.balanceTimeout / 40

	res, err := retry.Retry(ctx, cfg,
		func(ctx context.Context) ([]interface{}, error) {
			bal, err := s.Client.Balance(ctx, addr)
			if err != nil {
				return nil, err
			}
			return []interface{}{bal}, nil
		},
		nil, // always retry
		"get account balance")
	if err != nil {
		return eth.Amount{}, err
	}
	if len(res) != 1 {
		return eth.Amount{}, errors.New("session: balance retry returned no value")
	}
	bal, ok := res[0].(eth.Amount)
	if !ok {
		return eth.Amount{}, errors.New("session: balance retry returned unexpected value")
	}
	return bal, nil
}

// caller holds s.mu
func (s *Session) touch() {
	s.snap.UpdatedAt = time.Now().UTC()
}

// Watch refreshes the snapshot every interval until ctx is done.
func (s *Session) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Duration(constants.DefaultPollIntervalMs) * time.Millisecond
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()
	numRefreshes := 0
	for {
		timer.Reset(interval)
		select {
		case <-ctx.Done():
			log.Info("session watch exiting", "numRefreshes", numRefreshes)
			return
		case <-timer.C:
			numRefreshes++
			s.publish(s.Refresh(ctx))
		}
	}
}

// Subscribe returns a channel that receives the snapshot after every Watch
// refresh. A slow reader only ever sees the newest snapshot. cancel closes the
// channel, as does Close.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subMu.Lock()
	if s.subs == nil {
		s.subs = map[int]chan Snapshot{}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Session) publish(snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		// drop the stale snapshot, if any
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
