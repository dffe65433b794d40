package swap

import "context"

const (
	MethodRequestAccounts = "eth_requestAccounts"
	MethodEnable          = "enable"
	MethodAccounts        = "eth_accounts"
	MethodChainID         = "eth_chainId"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodSendTransaction = "eth_sendTransaction"
	MethodPersonalSign    = "personal_sign"
)

// WalletProvider is the external agent holding keys. It is acquired
// lazily, absence is a recoverable condition reported over RPC.
type WalletProvider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (string, error)
	SwitchChain(ctx context.Context, chainID string) error
	SendTransaction(ctx context.Context, tx map[string]any) (string, error)
	PersonalSign(ctx context.Context, message, address string) (string, error)

	Close()
}

// Channel is a duplex message transport toward the embedded frame.
// Implementations must refuse wildcard target origins.
type Channel interface {
	Post(data []byte, targetOrigin string) error
	Close() error
}

type Messager interface {
	Notify(ctx context.Context, message string) error
	NotifyError(ctx context.Context, errorMessage error) error
}
