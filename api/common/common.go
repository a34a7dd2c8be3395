package common

import (
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/block"
	"github.com/nknorg/powledger/transaction"
)

// Request and response bodies shared by the REST server and its client.
// Pointer fields in requests let binding tell a missing field from a zero
// value.

type ErrorResponse struct {
	Message string          `json:"message"`
	Error   errcode.ErrCode `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ChainResponse struct {
	Chain  []*block.Block `json:"chain"`
	Length uint64         `json:"length"`
}

// BlockResponse describes a freshly forged block.
type BlockResponse struct {
	Message      string                     `json:"message"`
	Index        uint64                     `json:"index"`
	Transactions []*transaction.Transaction `json:"transactions"`
	Proof        uint64                     `json:"proof"`
	PreviousHash string                     `json:"previous_hash"`
}

func NewBlockResponse(message string, b *block.Block) *BlockResponse {
	txns := b.Transactions
	if txns == nil {
		txns = []*transaction.Transaction{}
	}
	return &BlockResponse{
		Message:      message,
		Index:        b.Index,
		Transactions: txns,
		Proof:        b.Proof,
		PreviousHash: b.PreviousHash,
	}
}

type TransactionRequest struct {
	Sender    *string  `json:"sender" binding:"required"`
	Recipient *string  `json:"recipient" binding:"required"`
	Amount    *float64 `json:"amount" binding:"required"`
}

type NodesResponse struct {
	Nodes  []string `json:"nodes"`
	Length int      `json:"length"`
}

type RegisterNodesRequest struct {
	Nodes []string `json:"nodes" binding:"required"`
}

type RegisterNodesResponse struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

// ResolveResponse always carries the local chain after resolution. NewChain
// is only set when it was replaced.
type ResolveResponse struct {
	Message  string         `json:"message"`
	Chain    []*block.Block `json:"chain"`
	NewChain []*block.Block `json:"new_chain,omitempty"`
}

type WorkResponse struct {
	LastIndex uint64 `json:"lastindex"`
	LastHash  string `json:"lasthash"`
	LastProof uint64 `json:"lastproof"`
}

type DifficultyResponse struct {
	Difficulty int     `json:"difficulty"`
	BlockTime  float64 `json:"blockTime"`
}

type SetDifficultyRequest struct {
	Diff *int `json:"diff" binding:"required"`
}

type SubmitWorkRequest struct {
	Index   *uint64 `json:"index" binding:"required"`
	Proof   *uint64 `json:"proof" binding:"required"`
	Address *string `json:"address" binding:"required"`
}
