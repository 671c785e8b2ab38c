package assets

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
	"github.com/quantumauth-io/quantum-web3-demo/internal/filestore"
)

// Manager looks up token metadata and balances through the session's client
// and caches metadata per network. With a path the cache survives restarts.
type Manager struct {
	client *eth.Client
	path   string

	mu    sync.Mutex
	store Store
}

// NewManager returns a manager. An empty path keeps the cache in memory.
func NewManager(client *eth.Client, path string) *Manager {
	return &Manager{
		client: client,
		path:   strings.TrimSpace(path),
		store:  Store{Schema: schemaV1, Networks: map[string]map[string]Asset{}},
	}
}

// DefaultPath is assets.json in the user's config directory.
func DefaultPath() (string, error) {
	return filestore.Resolve(constants.AppName, "assets.json")
}

func (m *Manager) Path() string { return m.path }

// Load reads the cache file. A missing file is not an error.
func (m *Manager) Load() error {
	if m.path == "" {
		return nil
	}

	s, err := filestore.ReadJSON[Store](m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	if s.Schema == 0 {
		s.Schema = schemaV1
	}

	normalized := Store{Schema: s.Schema, Networks: map[string]map[string]Asset{}}
	for netKey, assets := range s.Networks {
		nk := normalizeNetworkKey(netKey)
		if nk == "" {
			continue
		}
		if normalized.Networks[nk] == nil {
			normalized.Networks[nk] = map[string]Asset{}
		}
		for _, a := range assets {
			normalized.Networks[nk][a.Address.Hex()] = a
		}
	}

	m.mu.Lock()
	m.store = normalized
	m.mu.Unlock()
	return nil
}

// Assets lists the cached assets of a network.
func (m *Manager) Assets(network string) []Asset {
	m.mu.Lock()
	defer m.mu.Unlock()

	cached := m.store.Networks[normalizeNetworkKey(network)]
	out := make([]Asset, 0, len(cached))
	for _, a := range cached {
		out = append(out, a)
	}
	return out
}

// FetchAsset returns the token's metadata, from the cache when possible.
func (m *Manager) FetchAsset(ctx context.Context, network string, token common.Address) (Asset, error) {
	if token == (common.Address{}) {
		return nativeAsset, nil
	}

	nk := normalizeNetworkKey(network)

	m.mu.Lock()
	cached, ok := m.store.Networks[nk][token.Hex()]
	m.mu.Unlock()
	if ok {
		return cached, nil
	}

	a, err := m.fetchAsset(ctx, token)
	if err != nil {
		return Asset{}, err
	}

	m.mu.Lock()
	if m.store.Networks[nk] == nil {
		m.store.Networks[nk] = map[string]Asset{}
	}
	m.store.Networks[nk][token.Hex()] = a
	snapshot := m.copyStoreLocked()
	m.mu.Unlock()

	if err := m.persist(snapshot); err != nil {
		log.Warn("assets cache not written", "path", m.path, "error", err)
	}
	return a, nil
}

func (m *Manager) fetchAsset(ctx context.Context, token common.Address) (Asset, error) {
	if m.client == nil {
		return Asset{}, errors.New("assets: eth client is nil")
	}

	erc, err := m.client.BindERC20(token)
	if err != nil {
		return Asset{}, fmt.Errorf("assets: bind erc20: %w", err)
	}

	sym, err := callOne[string](ctx, erc, "symbol")
	if err != nil {
		return Asset{}, err
	}
	dec, err := callOne[uint8](ctx, erc, "decimals")
	if err != nil {
		return Asset{}, err
	}

	// name is optional in ERC20
	name, err := callOne[string](ctx, erc, "name")
	if err != nil {
		name = ""
	}

	return Asset{Address: token, Symbol: sym, Decimals: dec, Name: name}, nil
}

// BalanceOf returns the owner's balance in base units. The zero address as
// token means the native coin.
func (m *Manager) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	if m.client == nil {
		return nil, errors.New("assets: eth client is nil")
	}
	if owner == (common.Address{}) {
		return big.NewInt(0), nil
	}

	if token == (common.Address{}) {
		bal, err := m.client.Balance(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("assets: native balance: %w", err)
		}
		return bal.Wei, nil
	}

	erc, err := m.client.BindERC20(token)
	if err != nil {
		return nil, fmt.Errorf("assets: bind erc20: %w", err)
	}
	return callOne[*big.Int](ctx, erc, "balanceOf", owner)
}

// Holding combines metadata and balance.
func (m *Manager) Holding(ctx context.Context, network string, token, owner common.Address) (Holding, error) {
	a, err := m.FetchAsset(ctx, network, token)
	if err != nil {
		return Holding{}, err
	}
	raw, err := m.BalanceOf(ctx, token, owner)
	if err != nil {
		return Holding{}, err
	}
	return Holding{
		Asset:   a,
		Owner:   owner,
		Raw:     raw,
		Display: eth.FormatUnits(raw, a.Decimals, constants.DisplayMaxFrac),
	}, nil
}

func (m *Manager) copyStoreLocked() Store {
	out := Store{Schema: m.store.Schema, Networks: make(map[string]map[string]Asset, len(m.store.Networks))}
	for nk, assets := range m.store.Networks {
		inner := make(map[string]Asset, len(assets))
		for k, a := range assets {
			inner[k] = a
		}
		out.Networks[nk] = inner
	}
	return out
}

func (m *Manager) persist(s Store) error {
	if m.path == "" {
		return nil
	}
	return filestore.WriteJSON(m.path, s)
}

func callOne[T any](ctx context.Context, c *eth.Contract, method string, args ...any) (T, error) {
	var zero T

	out, err := c.Call(ctx, method, args...)
	if err != nil {
		return zero, fmt.Errorf("assets: %s: %w", method, err)
	}
	if len(out) != 1 {
		return zero, fmt.Errorf("assets: %s: expected 1 output, got %d", method, len(out))
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("assets: %s: unexpected output type %T", method, out[0])
	}
	return v, nil
}

func normalizeNetworkKey(network string) string {
	return strings.ToLower(strings.TrimSpace(network))
}
