package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

func resultResponse(id json.RawMessage, result any) *swap.JsonRPCResponse {
	return &swap.JsonRPCResponse{
		Version: swap.JsonRPCVersion,
		ID:      id,
		Result:  result,
	}
}

func errorResponse(id json.RawMessage, code int, message string) *swap.JsonRPCResponse {
	return &swap.JsonRPCResponse{
		Version: swap.JsonRPCVersion,
		ID:      id,
		Error: &swap.JSONRPCError{
			Code:    code,
			Message: message,
		},
	}
}

// dispatch maps a request to a handler over the closed set of supported
// methods. Every branch converts its own failures into an RPC error
// response, one failing call never aborts dispatch of later requests.
func (r *Relay) dispatch(ctx context.Context, req *swap.JsonRPCRequest) (resp *swap.JsonRPCResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = errorResponse(req.ID, swap.ErrCodeServer, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	switch req.Method {
	case swap.MethodRequestAccounts, swap.MethodEnable:
		return r.handleRequestAccounts(ctx, req)
	case swap.MethodAccounts:
		// cached-address policy: the provider is never consulted,
		// the list is empty until eth_requestAccounts succeeds
		return resultResponse(req.ID, r.cachedAccounts())
	case swap.MethodChainID:
		return r.handleChainID(ctx, req)
	case swap.MethodSwitchChain:
		return r.handleSwitchChain(ctx, req)
	case swap.MethodSendTransaction:
		return r.handleSendTransaction(ctx, req)
	case swap.MethodPersonalSign:
		return r.handlePersonalSign(ctx, req)
	}

	return errorResponse(req.ID, swap.ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
}

func (r *Relay) handleRequestAccounts(ctx context.Context, req *swap.JsonRPCRequest) *swap.JsonRPCResponse {
	p, err := r.provider(ctx)
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, fmt.Sprintf("no wallet provider available: %s", err))
	}

	accounts, err := p.RequestAccounts(ctx)
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, err.Error())
	}

	r.setAccounts(accounts)

	return resultResponse(req.ID, accounts)
}

func (r *Relay) handleChainID(ctx context.Context, req *swap.JsonRPCRequest) *swap.JsonRPCResponse {
	p, err := r.provider(ctx)
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, fmt.Sprintf("no wallet provider available: %s", err))
	}

	chainID, err := p.ChainID(ctx)
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, err.Error())
	}

	return resultResponse(req.ID, chainID)
}

func (r *Relay) handleSwitchChain(ctx context.Context, req *swap.JsonRPCRequest) *swap.JsonRPCResponse {
	var params []struct {
		ChainID string `json:"chainId"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) == 0 || params[0].ChainID == "" {
		return errorResponse(req.ID, swap.ErrCodeServer, "invalid params: chainId is required")
	}

	p, err := r.provider(ctx)
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, fmt.Sprintf("no wallet provider available: %s", err))
	}

	if err := p.SwitchChain(ctx, params[0].ChainID); err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, err.Error())
	}

	return resultResponse(req.ID, nil)
}

func (r *Relay) handleSendTransaction(ctx context.Context, req *swap.JsonRPCRequest) *swap.JsonRPCResponse {
	var params []map[string]any
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) == 0 || len(params[0]) == 0 {
		return errorResponse(req.ID, swap.ErrCodeServer, "invalid params: transaction object is required")
	}

	p, err := r.provider(ctx)
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, fmt.Sprintf("no wallet provider available: %s", err))
	}

	hash, err := p.SendTransaction(ctx, params[0])
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, err.Error())
	}

	return resultResponse(req.ID, hash)
}

func (r *Relay) handlePersonalSign(ctx context.Context, req *swap.JsonRPCRequest) *swap.JsonRPCResponse {
	var params []string
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) == 0 || params[0] == "" {
		return errorResponse(req.ID, swap.ErrCodeServer, "invalid params: message is required")
	}

	signer := ""
	if len(params) > 1 {
		signer = params[1]
	}
	if signer == "" {
		if accounts := r.cachedAccounts(); len(accounts) > 0 {
			signer = accounts[0]
		}
	}

	p, err := r.provider(ctx)
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, fmt.Sprintf("no wallet provider available: %s", err))
	}

	sig, err := p.PersonalSign(ctx, params[0], signer)
	if err != nil {
		return errorResponse(req.ID, swap.ErrCodeServer, err.Error())
	}

	return resultResponse(req.ID, sig)
}
