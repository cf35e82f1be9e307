package models

// Transaction kinds written to the append-only log.
const (
	TxCredit          = "credit"
	TxDebit           = "debit"
	TxTransfer        = "transfer"
	TxDaily           = "daily"
	TxGamble          = "gamble"
	TxWork            = "work"
	TxBuy             = "buy"
	TxStockBuy        = "stock_buy"
	TxStockSell       = "stock_sell"
	TxDeposit         = "deposit"
	TxWithdraw        = "withdraw"
	TxSavingsDeposit  = "savings_deposit"
	TxSavingsWithdraw = "savings_withdraw"
	TxSavingsInterest = "savings_interest"
	TxJobAction       = "job_action"
)

// Transaction is one append-only log entry. Amount is signed: positive
// for money in, negative for money out.
type Transaction struct {
	ID        string `bson:"_id" json:"id"`
	UserID    int64  `bson:"user_id" json:"user_id"`
	Type      string `bson:"type" json:"type"`
	Amount    int64  `bson:"amount" json:"amount"`
	Details   string `bson:"details" json:"details"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}
