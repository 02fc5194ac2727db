package contracttransmitter

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/integration/pkg/gobindings/basexoracle"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const (
	// DefaultGasLimit is the gas limit used for oracle transactions when none is configured.
	DefaultGasLimit uint64 = 500_000
	// DefaultConfirmationTimeout bounds the wait for a transaction receipt.
	DefaultConfirmationTimeout = 10 * time.Minute
)

var errReadOnly = errors.New("connection has no signing key")

// EVMContractTransmitter sends oracle transactions for one network with a single signing key.
type EVMContractTransmitter struct {
	lggr                logger.Logger
	network             string
	backend             chainconn.Backend
	contract            *basexoracle.BaseXOracle
	key                 *ecdsa.PrivateKey
	from                common.Address
	chainID             *big.Int
	gasLimit            uint64
	confirmationTimeout time.Duration
	mu                  sync.Mutex
}

// NewEVMContractTransmitter creates a transmitter over a verified, signing connection.
// A zero gasLimit selects DefaultGasLimit. A zero confirmationTimeout disables the
// receipt wait bound and a negative one selects DefaultConfirmationTimeout.
func NewEVMContractTransmitter(lggr logger.Logger, conn *chainconn.Connection, gasLimit uint64, confirmationTimeout time.Duration) (*EVMContractTransmitter, error) {
	if lggr == nil {
		return nil, errors.New("logger cannot be nil")
	}
	key, from, ok := conn.Signer()
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", protocol.ErrConfiguration, conn.Name(), errReadOnly)
	}
	backend, err := conn.Backend()
	if err != nil {
		return nil, err
	}
	contract, err := conn.Contract()
	if err != nil {
		return nil, err
	}
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}
	if confirmationTimeout < 0 {
		confirmationTimeout = DefaultConfirmationTimeout
	}

	return &EVMContractTransmitter{
		lggr:                logger.With(logger.Named(lggr, "ContractTransmitter"), "network", conn.Name(), "from", from.Hex()),
		network:             conn.Name(),
		backend:             backend,
		contract:            contract,
		key:                 key,
		from:                from,
		chainID:             new(big.Int).SetUint64(conn.Config().ChainID),
		gasLimit:            gasLimit,
		confirmationTimeout: confirmationTimeout,
	}, nil
}

// From returns the sender address.
func (ct *EVMContractTransmitter) From() common.Address {
	return ct.from
}

func (ct *EVMContractTransmitter) getTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	nonce, err := ct.backend.PendingNonceAt(ctx, ct.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending nonce: %w", err)
	}

	gasPrice, err := ct.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(ct.key, ct.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx
	auth.Nonce = new(big.Int).SetUint64(nonce)
	auth.GasPrice = gasPrice
	auth.GasLimit = ct.gasLimit
	auth.Value = big.NewInt(0)
	return auth, nil
}

// SubmitResult sends submitAnalysis(videoID, metadata, score) and waits for it to be mined.
func (ct *EVMContractTransmitter) SubmitResult(ctx context.Context, videoID string, result protocol.AnalysisResult) (*protocol.TxReceipt, error) {
	tx, err := ct.send(ctx, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return ct.contract.SubmitAnalysis(opts, videoID, result.Metadata, new(big.Int).SetUint64(result.Score))
	})
	if err != nil {
		return nil, err
	}

	ct.lggr.Infow("submitted tx to chain", "videoID", videoID, "score", result.Score, "txHash", tx.Hash().Hex())

	return ct.waitMined(ctx, tx)
}

// RequestAnalysis sends requestAnalysis(videoID) and returns the transaction hash without waiting.
func (ct *EVMContractTransmitter) RequestAnalysis(ctx context.Context, videoID string) (string, error) {
	tx, err := ct.send(ctx, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return ct.contract.RequestAnalysis(opts, videoID)
	})
	if err != nil {
		return "", err
	}

	ct.lggr.Infow("submitted analysis request to chain", "videoID", videoID, "txHash", tx.Hash().Hex())
	return tx.Hash().Hex(), nil
}

// send serializes nonce acquisition and broadcast for the signing key.
func (ct *EVMContractTransmitter) send(ctx context.Context, transact func(*bind.TransactOpts) (*types.Transaction, error)) (*types.Transaction, error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	opts, err := ct.getTransactOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", protocol.ErrTransaction, ct.network, err)
	}
	tx, err := transact(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: send failed: %w", protocol.ErrTransaction, ct.network, err)
	}
	return tx, nil
}

func (ct *EVMContractTransmitter) waitMined(ctx context.Context, tx *types.Transaction) (*protocol.TxReceipt, error) {
	waitCtx := ctx
	if ct.confirmationTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, ct.confirmationTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(waitCtx, ct.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: waiting for %s: %w", protocol.ErrTransaction, ct.network, tx.Hash().Hex(), err)
	}

	result := &protocol.TxReceipt{
		Network: ct.network,
		TxHash:  receipt.TxHash.Hex(),
		GasUsed: receipt.GasUsed,
		Status:  protocol.TxStatus(receipt.Status),
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return result, fmt.Errorf("%w: %s: transaction %s reverted", protocol.ErrTransaction, ct.network, result.TxHash)
	}

	ct.lggr.Infow("transaction confirmed",
		"txHash", result.TxHash,
		"blockNumber", result.BlockNumber,
		"gasUsed", result.GasUsed)
	return result, nil
}
