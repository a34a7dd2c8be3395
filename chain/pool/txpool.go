package pool

import (
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/nknorg/powledger/transaction"
)

// TxnPool is the ordered list of txns waiting to be forged into the next
// block. It is not safe for concurrent use; the ledger lock guards it.
type TxnPool struct {
	txns *arraylist.List
}

func NewTxPool() *TxnPool {
	return &TxnPool{txns: arraylist.New()}
}

// AppendTxnPool adds a copy of txn to the end of the pool. No validation is
// done on sender, recipient or amount.
func (tp *TxnPool) AppendTxnPool(txn *transaction.Transaction) {
	tp.txns.Add(txn.Copy())
}

// GetAllTransactions returns copies of the pooled txns in insertion order.
func (tp *TxnPool) GetAllTransactions() []*transaction.Transaction {
	txns := make([]*transaction.Transaction, 0, tp.txns.Size())
	tp.txns.Each(func(_ int, value interface{}) {
		txns = append(txns, value.(*transaction.Transaction).Copy())
	})
	return txns
}

func (tp *TxnPool) Len() int {
	return tp.txns.Size()
}

// CleanSubmittedTransactions empties the pool once its txns are in a block.
func (tp *TxnPool) CleanSubmittedTransactions() {
	tp.txns.Clear()
}
