package chains

import "github.com/quantumauth-io/quantum-web3-demo/internal/constants"

var networkLabels = map[ChainID]string{
	1:  "Ethereum Main Network",
	2:  "Morden",
	3:  "Ropsten Test Network",
	4:  "Rinkeby Test Network",
	42: "Kovan Test Network",
}

// NetworkLabel maps a network id (as returned by net_version) to a label.
func NetworkLabel(networkID string) string {
	id, ok := ParseChainID(networkID)
	if !ok {
		return constants.UnknownNetworkLabel
	}
	if label, ok := networkLabels[id]; ok {
		return label
	}
	return constants.UnknownNetworkLabel
}
