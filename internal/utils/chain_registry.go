package utils

import "fmt"

// ChainInfo static metadata for an EVM chain
type ChainInfo struct {
	ChainID     uint64 `json:"chain_id"`     // EIP-155 chain id
	Name        string `json:"name"`         // network name as reported to clients
	DisplayName string `json:"display_name"` // human readable
	Symbol      string `json:"symbol"`       // native token symbol
	ExplorerURL string `json:"explorer_url"`
}

// ChainRegistry chain metadata keyed by chain id
type ChainRegistry struct {
	byChainID map[uint64]*ChainInfo
}

// GlobalChainRegistry registry of known chains
var GlobalChainRegistry = NewChainRegistry(
	&ChainInfo{ChainID: 1, Name: "homestead", DisplayName: "Ethereum", Symbol: "ETH", ExplorerURL: "https://etherscan.io"},
	&ChainInfo{ChainID: 10, Name: "optimism", DisplayName: "Optimism", Symbol: "ETH", ExplorerURL: "https://optimistic.etherscan.io"},
	&ChainInfo{ChainID: 56, Name: "bnb", DisplayName: "BSC", Symbol: "BNB", ExplorerURL: "https://bscscan.com"},
	&ChainInfo{ChainID: 137, Name: "matic", DisplayName: "Polygon", Symbol: "POL", ExplorerURL: "https://polygonscan.com"},
	&ChainInfo{ChainID: 8453, Name: "base", DisplayName: "Base", Symbol: "ETH", ExplorerURL: "https://basescan.org"},
	&ChainInfo{ChainID: 42161, Name: "arbitrum", DisplayName: "Arbitrum", Symbol: "ETH", ExplorerURL: "https://arbiscan.io"},
	&ChainInfo{ChainID: 43114, Name: "avalanche", DisplayName: "Avalanche", Symbol: "AVAX", ExplorerURL: "https://snowtrace.io"},
	&ChainInfo{ChainID: 80002, Name: "amoy", DisplayName: "Polygon Amoy", Symbol: "POL", ExplorerURL: "https://amoy.polygonscan.com"},
	&ChainInfo{ChainID: 11155111, Name: "sepolia", DisplayName: "Sepolia", Symbol: "ETH", ExplorerURL: "https://sepolia.etherscan.io"},
)

// NewChainRegistry builds a registry from chains
func NewChainRegistry(chains ...*ChainInfo) *ChainRegistry {
	r := &ChainRegistry{byChainID: make(map[uint64]*ChainInfo, len(chains))}
	for _, chain := range chains {
		r.byChainID[chain.ChainID] = chain
	}
	return r
}

// Get looks up a chain by id
func (r *ChainRegistry) Get(chainID uint64) (*ChainInfo, bool) {
	info, ok := r.byChainID[chainID]
	return info, ok
}

// Name returns the network name, "unknown" for unregistered chains
func (r *ChainRegistry) Name(chainID uint64) string {
	if info, ok := r.Get(chainID); ok {
		return info.Name
	}
	return "unknown"
}

// TxURL explorer link for a transaction, empty when the chain is unknown
func (r *ChainRegistry) TxURL(chainID uint64, txHash string) string {
	info, ok := r.Get(chainID)
	if !ok || info.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", info.ExplorerURL, txHash)
}

// NativeSymbol native token symbol, "ETH" for unregistered chains
func (r *ChainRegistry) NativeSymbol(chainID uint64) string {
	if info, ok := r.Get(chainID); ok {
		return info.Symbol
	}
	return "ETH"
}

// EVMChainName network name for chainID
func EVMChainName(chainID uint64) string {
	return GlobalChainRegistry.Name(chainID)
}
