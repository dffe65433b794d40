package walletprovider

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
)

type ethAPI struct{}

func (a *ethAPI) RequestAccounts() ([]string, error) {
	return []string{"0x480Fbe37526226b6c6E2a7AfA449cDf661939D2f"}, nil
}

func (a *ethAPI) ChainId() (string, error) {
	return "0x89", nil
}

func (a *ethAPI) SendTransaction(tx map[string]any) (string, error) {
	if len(tx) == 0 {
		return "", errors.New("empty transaction")
	}

	return "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b", nil
}

type walletAPI struct {
	switched []string
}

func (a *walletAPI) SwitchEthereumChain(param map[string]any) error {
	chainID, ok := param["chainId"].(string)
	if !ok || chainID == "" {
		return errors.New("chainId is required")
	}

	a.switched = append(a.switched, chainID)

	return nil
}

type personalAPI struct{}

func (a *personalAPI) Sign(message, address string) (string, error) {
	if message == "" {
		return "", errors.New("empty message")
	}

	return "0xsigned:" + address, nil
}

func newTestProvider(t *testing.T) (*EthProvider, *walletAPI) {
	t.Helper()

	srv := rpc.NewServer()
	t.Cleanup(srv.Stop)

	wallet := &walletAPI{}

	if err := srv.RegisterName("eth", &ethAPI{}); err != nil {
		t.Fatal(err)
	}
	if err := srv.RegisterName("wallet", wallet); err != nil {
		t.Fatal(err)
	}
	if err := srv.RegisterName("personal", &personalAPI{}); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	p, err := NewEthProvider(context.Background(), ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)

	return p, wallet
}

func TestEthProvider(t *testing.T) {
	p, wallet := newTestProvider(t)
	ctx := context.Background()

	t.Run("eth_requestAccounts", func(t *testing.T) {
		accounts, err := p.RequestAccounts(ctx)
		if err != nil {
			t.Fatal(err)
		}

		if len(accounts) != 1 || accounts[0] != "0x480Fbe37526226b6c6E2a7AfA449cDf661939D2f" {
			t.Errorf("unexpected accounts: %v", accounts)
		}
	})

	t.Run("eth_chainId", func(t *testing.T) {
		id, err := p.ChainID(ctx)
		if err != nil {
			t.Fatal(err)
		}

		if id != "0x89" {
			t.Errorf("expected 0x89, got %s", id)
		}
	})

	t.Run("chain id as integer", func(t *testing.T) {
		id, err := p.ChainIDInt(ctx)
		if err != nil {
			t.Fatal(err)
		}

		if id.Int64() != 137 {
			t.Errorf("expected 137, got %s", id)
		}
	})

	t.Run("wallet_switchEthereumChain", func(t *testing.T) {
		if err := p.SwitchChain(ctx, "0x1"); err != nil {
			t.Fatal(err)
		}

		if len(wallet.switched) != 1 || wallet.switched[0] != "0x1" {
			t.Errorf("unexpected switch calls: %v", wallet.switched)
		}
	})

	t.Run("eth_sendTransaction", func(t *testing.T) {
		hash, err := p.SendTransaction(ctx, map[string]any{"from": "0xabc", "to": "0xdef"})
		if err != nil {
			t.Fatal(err)
		}

		if hash != "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b" {
			t.Errorf("unexpected hash: %s", hash)
		}
	})

	t.Run("personal_sign", func(t *testing.T) {
		sig, err := p.PersonalSign(ctx, "hello", "0xabc")
		if err != nil {
			t.Fatal(err)
		}

		if sig != "0xsigned:0xabc" {
			t.Errorf("unexpected signature: %s", sig)
		}
	})

	t.Run("provider error is surfaced", func(t *testing.T) {
		_, err := p.PersonalSign(ctx, "", "0xabc")
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestNewEthProviderBadEndpoint(t *testing.T) {
	_, err := NewEthProvider(context.Background(), "not-a-url")
	if err == nil {
		t.Fatal("expected an error for an unreachable endpoint")
	}
}
