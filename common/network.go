package common

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
)

var supportedNetworks = map[Network]struct{}{
	NetworkMainnet: {},
	NetworkTestnet: {},
	NetworkDevnet:  {},
}

// chainIds identify each network to reject cross-network replay of
// signed messages carried by collaborator services.
var chainIds = map[Network]uint64{
	NetworkMainnet: 1,
	NetworkTestnet: 2,
	NetworkDevnet:  1337,
}

func (n Network) IsSupported() bool {
	_, ok := supportedNetworks[n]
	return ok
}

func (n Network) ChainID() uint64 {
	return chainIds[n]
}

func (n Network) String() string {
	return string(n)
}
