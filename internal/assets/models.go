package assets

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Asset is the metadata of a token contract, or of the chain's native coin
// when Address is the zero address.
type Asset struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	Name     string         `json:"name,omitempty"`
}

func (a Asset) Native() bool { return a.Address == (common.Address{}) }

// Holding is an owner's balance of one asset.
type Holding struct {
	Asset   Asset          `json:"asset"`
	Owner   common.Address `json:"owner"`
	Raw     *big.Int       `json:"raw"`
	Display string         `json:"display"`
}

// Store is the on-disk cache layout.
type Store struct {
	// network -> checksummed address -> asset
	Networks map[string]map[string]Asset `json:"networks"`
	Schema   int                         `json:"schema"`
}

const schemaV1 = 1

var nativeAsset = Asset{Symbol: "ETH", Decimals: 18, Name: "Ether"}
