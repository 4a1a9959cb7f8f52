package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/txpool"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/config"
)

// ErrInvalidRawTransaction is returned when a signed blob cannot be decoded for submission
var ErrInvalidRawTransaction = errors.New("invalid raw transaction")

// Client submits client-signed transactions to one EVM chain and reads receipts.
// It never signs anything itself.
type Client struct {
	chain   chain.Chain
	client  *ethclient.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient dials the chain's RPC endpoint
func NewClient(ctx context.Context, c chain.Chain, cfg config.ChainConfig, logger *zap.Logger) (*Client, error) {
	rpcClient, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s RPC: %w", c, err)
	}

	client := newClient(c, rpcClient, newLimiter(cfg), logger)

	// a mismatched endpoint would accept transactions signed for another network
	if cfg.ChainID != 0 {
		id, err := rpcClient.ChainID(ctx)
		if err != nil {
			logger.Warn("Failed to read chain id from RPC", zap.String("chain", string(c)), zap.Error(err))
		} else if id.Cmp(big.NewInt(cfg.ChainID)) != 0 {
			rpcClient.Close()
			return nil, fmt.Errorf("%s RPC reports chain id %s, expected %d", c, id, cfg.ChainID)
		}
	}

	logger.Info("Connected to EVM chain",
		zap.String("chain", string(c)),
		zap.String("rpc_url", cfg.RPCURL),
		zap.Int64("chain_id", cfg.ChainID))

	return client, nil
}

func newClient(c chain.Chain, rpcClient *ethclient.Client, limiter *rate.Limiter, logger *zap.Logger) *Client {
	return &Client{
		chain:   c,
		client:  rpcClient,
		limiter: limiter,
		logger:  logger,
	}
}

func newLimiter(cfg config.ChainConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// Close closes the RPC connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// wait blocks on the rate limiter. The limiter refuses up front when the next
// token lies beyond ctx's deadline; that is reported as context.DeadlineExceeded.
func (c *Client) wait(ctx context.Context) error {
	err := c.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
		return fmt.Errorf("rate limiter: %w: %v", context.DeadlineExceeded, err)
	}
	return fmt.Errorf("rate limiter: %w", err)
}

// SendRawTransaction submits a signed legacy or typed transaction and returns its hash
func (c *Client) SendRawTransaction(ctx context.Context, raw string) (string, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(common.FromHex(raw)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRawTransaction, err)
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	if err := c.client.SendTransaction(ctx, tx); err != nil {
		// a re-dispatch of a transaction the node already holds
		if !strings.Contains(err.Error(), txpool.ErrAlreadyKnown.Error()) {
			return "", fmt.Errorf("failed to send transaction: %w", err)
		}
		c.logger.Info("Transaction already known to node",
			zap.String("chain", string(c.chain)),
			zap.String("tx_hash", tx.Hash().Hex()))
		return tx.Hash().Hex(), nil
	}

	c.logger.Debug("Submitted transaction",
		zap.String("chain", string(c.chain)),
		zap.String("tx_hash", tx.Hash().Hex()))
	return tx.Hash().Hex(), nil
}

// Receipt returns the execution status and confirmation depth of a transaction
func (c *Client) Receipt(ctx context.Context, hash string) (*chain.Receipt, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(hash))
	if err != nil {
		if errors.Is(err, geth.NotFound) {
			return &chain.Receipt{Status: chain.ReceiptPending}, nil
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	head, err := c.GetLatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	out := &chain.Receipt{Status: chain.ReceiptSuccess}
	if receipt.Status != types.ReceiptStatusSuccessful {
		out.Status = chain.ReceiptFailed
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
		if head >= out.BlockNumber {
			out.Confirmations = head - out.BlockNumber + 1
		}
	}
	return out, nil
}

// GetLatestBlockNumber gets the latest block number
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	n, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return n, nil
}
