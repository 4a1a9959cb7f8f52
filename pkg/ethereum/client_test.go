package ethereum

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
)

const signedFixture = "0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"

// fakeEth serves the subset of the eth namespace the client uses
type fakeEth struct {
	mu       sync.Mutex
	sent     []hexutil.Bytes
	receipts map[common.Hash]*types.Receipt
	head     uint64
	sendErr  error
}

func (f *fakeEth) SendRawTransaction(_ context.Context, input hexutil.Bytes) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sent = append(f.sent, input)
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (f *fakeEth) GetTransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipts[hash], nil
}

func (f *fakeEth) BlockNumber() hexutil.Uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hexutil.Uint64(f.head)
}

func newTestClient(t *testing.T, svc *fakeEth) *Client {
	t.Helper()

	server := rpc.NewServer()
	if err := server.RegisterName("eth", svc); err != nil {
		t.Fatalf("failed to register fake eth service: %v", err)
	}
	t.Cleanup(server.Stop)

	client := newClient(chain.Ethereum, ethclient.NewClient(rpc.DialInProc(server)), rate.NewLimiter(rate.Inf, 0), zap.NewNop())
	t.Cleanup(client.Close)
	return client
}

func fixtureHash(t *testing.T) common.Hash {
	t.Helper()
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(common.FromHex(signedFixture)); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return tx.Hash()
}

func TestClient_SendRawTransaction(t *testing.T) {
	svc := &fakeEth{receipts: map[common.Hash]*types.Receipt{}}
	client := newTestClient(t, svc)

	hash, err := client.SendRawTransaction(context.Background(), signedFixture)
	if err != nil {
		t.Fatalf("SendRawTransaction failed: %v", err)
	}
	if hash != fixtureHash(t).Hex() {
		t.Fatalf("unexpected hash %s", hash)
	}
	if len(svc.sent) != 1 {
		t.Fatalf("expected one submission, got %d", len(svc.sent))
	}
}

func TestClient_SendRawTransactionErrors(t *testing.T) {
	svc := &fakeEth{sendErr: errors.New("nonce too low")}
	client := newTestClient(t, svc)

	if _, err := client.SendRawTransaction(context.Background(), "0xdeadbeef"); !errors.Is(err, ErrInvalidRawTransaction) {
		t.Fatalf("expected ErrInvalidRawTransaction, got %v", err)
	}
	if _, err := client.SendRawTransaction(context.Background(), signedFixture); err == nil {
		t.Fatalf("expected node rejection to surface")
	}
}

func TestClient_SendRawTransactionAlreadyKnown(t *testing.T) {
	svc := &fakeEth{sendErr: errors.New("already known")}
	client := newTestClient(t, svc)

	hash, err := client.SendRawTransaction(context.Background(), signedFixture)
	if err != nil {
		t.Fatalf("expected a known transaction to count as submitted, got %v", err)
	}
	if hash != fixtureHash(t).Hex() {
		t.Fatalf("unexpected hash %s", hash)
	}
}

func TestClient_RateLimitBeyondDeadline(t *testing.T) {
	svc := &fakeEth{receipts: map[common.Hash]*types.Receipt{}}
	server := rpc.NewServer()
	if err := server.RegisterName("eth", svc); err != nil {
		t.Fatalf("failed to register fake eth service: %v", err)
	}
	t.Cleanup(server.Stop)

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()
	client := newClient(chain.Ethereum, ethclient.NewClient(rpc.DialInProc(server)), limiter, zap.NewNop())
	t.Cleanup(client.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.SendRawTransaction(ctx, signedFixture)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if len(svc.sent) != 0 {
		t.Fatalf("expected nothing submitted, got %d", len(svc.sent))
	}
}

func TestClient_Receipt(t *testing.T) {
	hash := fixtureHash(t)
	svc := &fakeEth{receipts: map[common.Hash]*types.Receipt{}, head: 110}
	client := newTestClient(t, svc)
	ctx := context.Background()

	pending, err := client.Receipt(ctx, hash.Hex())
	if err != nil {
		t.Fatalf("Receipt failed: %v", err)
	}
	if pending.Status != chain.ReceiptPending {
		t.Fatalf("expected pending, got %s", pending.Status)
	}

	svc.mu.Lock()
	svc.receipts[hash] = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      hash,
		BlockNumber: big.NewInt(100),
		Logs:        []*types.Log{},
	}
	svc.mu.Unlock()

	mined, err := client.Receipt(ctx, hash.Hex())
	if err != nil {
		t.Fatalf("Receipt failed: %v", err)
	}
	if mined.Status != chain.ReceiptSuccess || mined.BlockNumber != 100 || mined.Confirmations != 11 {
		t.Fatalf("unexpected receipt %+v", mined)
	}

	svc.mu.Lock()
	svc.receipts[hash].Status = types.ReceiptStatusFailed
	svc.mu.Unlock()

	reverted, err := client.Receipt(ctx, hash.Hex())
	if err != nil {
		t.Fatalf("Receipt failed: %v", err)
	}
	if reverted.Status != chain.ReceiptFailed {
		t.Fatalf("expected failed, got %s", reverted.Status)
	}
}

func TestRegistry_UnknownChain(t *testing.T) {
	r := &Registry{clients: map[chain.Chain]*Client{}}
	if _, err := r.Broadcast(context.Background(), chain.Polygon, signedFixture); !errors.Is(err, ErrNoClient) {
		t.Fatalf("expected ErrNoClient, got %v", err)
	}

	svc := &fakeEth{receipts: map[common.Hash]*types.Receipt{}}
	r.Register(chain.Ethereum, newTestClient(t, svc))
	if _, err := r.Broadcast(context.Background(), chain.Ethereum, signedFixture); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
}
