package chain

// ReceiptStatus is the execution outcome of a transaction as reported by a node
type ReceiptStatus string

const (
	// ReceiptPending means the node does not know the transaction in a block yet
	ReceiptPending ReceiptStatus = "pending"
	ReceiptSuccess ReceiptStatus = "success"
	ReceiptFailed  ReceiptStatus = "failed"
)

// Receipt is the chain-agnostic view of a transaction receipt
type Receipt struct {
	Status        ReceiptStatus
	BlockNumber   uint64
	Confirmations uint64
}
