package walletprovider

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/rpc"
)

const (
	ETHRequestAccounts = "eth_requestAccounts"
	ETHChainID         = "eth_chainId"
	ETHSendTransaction = "eth_sendTransaction"
	PersonalSign       = "personal_sign"
	WalletSwitchChain  = "wallet_switchEthereumChain"
)

type EthProvider struct {
	rpc *rpc.Client
	ctx context.Context
}

func (e *EthProvider) Context() context.Context {
	return e.ctx
}

func NewEthProvider(ctx context.Context, endpoint string) (*EthProvider, error) {
	rpc, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	return &EthProvider{rpc, ctx}, nil
}

func (e *EthProvider) Close() {
	e.rpc.Close()
}

func (e *EthProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	err := e.rpc.CallContext(ctx, &accounts, ETHRequestAccounts)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func (e *EthProvider) ChainID(ctx context.Context) (string, error) {
	var id string
	err := e.rpc.CallContext(ctx, &id, ETHChainID)
	if err != nil {
		return "", err
	}

	return id, nil
}

// ChainIDInt resolves the chain id as an integer, used at startup for
// logging which chain the provider is on.
func (e *EthProvider) ChainIDInt(ctx context.Context) (*big.Int, error) {
	id, err := e.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	chid, ok := big.NewInt(0).SetString(strip0x(id), 16)
	if !ok {
		return nil, errors.New("invalid chain id")
	}

	return chid, nil
}

func (e *EthProvider) SwitchChain(ctx context.Context, chainID string) error {
	return e.rpc.CallContext(ctx, nil, WalletSwitchChain, map[string]any{"chainId": chainID})
}

func (e *EthProvider) SendTransaction(ctx context.Context, tx map[string]any) (string, error) {
	var hash string
	err := e.rpc.CallContext(ctx, &hash, ETHSendTransaction, tx)
	if err != nil {
		return "", err
	}

	return hash, nil
}

func (e *EthProvider) PersonalSign(ctx context.Context, message, address string) (string, error) {
	var sig string
	err := e.rpc.CallContext(ctx, &sig, PersonalSign, message, address)
	if err != nil {
		return "", err
	}

	return sig, nil
}

func strip0x(h string) string {
	if len(h) > 2 && h[:2] == "0x" {
		return h[2:]
	}

	return h
}
