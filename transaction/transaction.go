package transaction

import "fmt"

// CoinbaseSender is the sender of a mining reward. Coins sent from it are
// newly minted.
const CoinbaseSender = "0"

// Transaction is a plain value transfer record. Sender and recipient are
// opaque identifiers and amount is not checked against any balance.
//
// Fields are declared in lexicographic order of their json keys so that the
// encoded form is canonical.
type Transaction struct {
	Amount    float64 `json:"amount"`
	Recipient string  `json:"recipient"`
	Sender    string  `json:"sender"`
}

func NewTransaction(sender, recipient string, amount float64) *Transaction {
	return &Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}
}

// NewCoinbase creates the reward transaction for a mined block.
func NewCoinbase(recipient string, reward float64) *Transaction {
	return NewTransaction(CoinbaseSender, recipient, reward)
}

func (txn *Transaction) IsCoinbase() bool {
	return txn.Sender == CoinbaseSender
}

func (txn *Transaction) Copy() *Transaction {
	if txn == nil {
		return nil
	}
	c := *txn
	return &c
}

func (txn *Transaction) String() string {
	return fmt.Sprintf("%s -> %s: %v", txn.Sender, txn.Recipient, txn.Amount)
}
