package protocol

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// NetworkConfig describes one EVM network the oracle contract is deployed on.
type NetworkConfig struct {
	// Name is the registry key, e.g. "sepolia".
	Name string `toml:"name"`
	// RPCEndpoint is an http(s) or ws(s) JSON-RPC URL.
	RPCEndpoint string `toml:"rpc_url"`
	// ContractAddress is the hex address of the BaseXOracle contract.
	ContractAddress string `toml:"contract_address"`
	// ChainID is the expected EVM chain id, checked against the endpoint when connecting.
	ChainID uint64 `toml:"chain_id"`
	// EnvPrefix is the prefix of the environment variables that override this network, e.g. "SEPOLIA".
	EnvPrefix string `toml:"env_prefix"`
}

// Validate checks every field is present and well formed.
func (c NetworkConfig) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("network name is required"))
	}
	if c.RPCEndpoint == "" {
		errs = append(errs, errors.New("rpc endpoint is required"))
	} else if u, err := url.Parse(c.RPCEndpoint); err != nil {
		errs = append(errs, fmt.Errorf("invalid rpc endpoint: %w", err))
	} else {
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			errs = append(errs, fmt.Errorf("unsupported rpc endpoint scheme %q", u.Scheme))
		}
	}
	if c.ContractAddress == "" {
		errs = append(errs, errors.New("contract address is required"))
	} else if !common.IsHexAddress(c.ContractAddress) {
		errs = append(errs, fmt.Errorf("invalid contract address %q", c.ContractAddress))
	}
	if c.ChainID == 0 {
		errs = append(errs, errors.New("chain id is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: network %q: %w", ErrConfiguration, c.Name, errors.Join(errs...))
	}
	return nil
}

// Address returns the parsed contract address. Callers should Validate first.
func (c NetworkConfig) Address() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

// AnalysisRequestEvent is an AnalysisRequested log decoded from a network.
type AnalysisRequestEvent struct {
	VideoID     string
	Timestamp   uint64
	Network     string
	TxHash      string
	BlockNumber uint64
	LogIndex    uint
}

// AnalysisReceivedEvent is an AnalysisReceived log decoded from a network.
type AnalysisReceivedEvent struct {
	VideoID     string
	Metadata    string
	Score       uint64
	Network     string
	TxHash      string
	BlockNumber uint64
}

// AnalysisResult is the parsed output of the analysis endpoint.
type AnalysisResult struct {
	Metadata string
	Score    uint64
}

func (r AnalysisResult) String() string {
	return FormatAnalysisPayload(r.Metadata, r.Score)
}

// AnalysisRecord is the value stored on chain for a video.
type AnalysisRecord struct {
	Metadata string `json:"metadata"`
	Score    uint64 `json:"score"`
	Exists   bool   `json:"exists"`
}

// TxStatus mirrors the EVM receipt status.
type TxStatus uint64

const (
	TxStatusFailed  TxStatus = 0
	TxStatusSuccess TxStatus = 1
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusSuccess:
		return "success"
	case TxStatusFailed:
		return "failed"
	default:
		return "TxStatus(" + strconv.FormatUint(uint64(s), 10) + ")"
	}
}

// TxReceipt summarizes a mined transaction.
type TxReceipt struct {
	Network     string
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	Status      TxStatus
}

// Video is the metadata of a YouTube video used to build an analysis prompt.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelTitle string    `json:"channelTitle"`
	PublishedAt  time.Time `json:"publishedAt"`
	ViewCount    uint64    `json:"viewCount"`
	LikeCount    uint64    `json:"likeCount"`
	CommentCount uint64    `json:"commentCount"`
}
