package session

import (
	"time"

	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
)

type NetworkView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type GasPriceView struct {
	Gwei string `json:"gwei"`
}

type AccountView struct {
	// Address is the coinbase or one of the placeholder texts.
	Address     string `json:"address"`
	Found       bool   `json:"found"`
	Balance     string `json:"balance"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// Snapshot is what the dashboard shows. Each part is refreshed on its own and
// falls back to a placeholder when its read fails.
type Snapshot struct {
	Origin           provider.Origin `json:"origin"`
	ExistingProvider bool            `json:"existingProvider"`
	Chain            string          `json:"chain,omitempty"`

	Network  NetworkView  `json:"network"`
	GasPrice GasPriceView `json:"gasPrice"`
	Account  AccountView  `json:"account"`

	UpdatedAt time.Time `json:"updatedAt"`
}
