package ethereum

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/config"
)

// ErrNoClient is returned for chains without a configured RPC endpoint
var ErrNoClient = errors.New("no rpc client configured for chain")

// Registry routes broadcast and receipt calls to the per-chain client
type Registry struct {
	clients map[chain.Chain]*Client
}

// NewRegistry dials every configured EVM chain. Non-EVM entries are skipped
// with a warning since their submission goes through external relays.
func NewRegistry(ctx context.Context, chains map[string]config.ChainConfig, logger *zap.Logger) (*Registry, error) {
	r := &Registry{clients: make(map[chain.Chain]*Client)}
	for name, cfg := range chains {
		c, err := chain.Normalize(name)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("chains.%s: %w", name, err)
		}
		if !c.IsEVM() {
			logger.Warn("No broadcast client for non-EVM chain", zap.String("chain", string(c)))
			continue
		}
		client, err := NewClient(ctx, c, cfg, logger)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.clients[c] = client
	}
	return r, nil
}

// Register adds or replaces the client for c
func (r *Registry) Register(c chain.Chain, client *Client) {
	r.clients[c] = client
}

func (r *Registry) client(c chain.Chain) (*Client, error) {
	client, ok := r.clients[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoClient, c)
	}
	return client, nil
}

// Broadcast submits raw on chain c
func (r *Registry) Broadcast(ctx context.Context, c chain.Chain, raw string) (string, error) {
	client, err := r.client(c)
	if err != nil {
		return "", err
	}
	return client.SendRawTransaction(ctx, raw)
}

// Receipt looks up hash on chain c
func (r *Registry) Receipt(ctx context.Context, c chain.Chain, hash string) (*chain.Receipt, error) {
	client, err := r.client(c)
	if err != nil {
		return nil, err
	}
	return client.Receipt(ctx, hash)
}

// Close closes all clients
func (r *Registry) Close() {
	for _, client := range r.clients {
		client.Close()
	}
}
