// internal/bank/transaction.go
//
// Transaction 為一筆金流紀錄：建構後不可變，唯一的修改入口 SetAmount 仍受正負號政策保護。
// 建構分兩條路徑：
//   - NewTransaction：公開、驗證正負號。
//   - newTransaction：套件內部使用，不驗證（帳戶自行保證金額已正規化）。

package bank

import (
	"encoding/json"
	"time"
)

// Transaction 欄位不匯出，外部只能透過 getter 讀取。
type Transaction struct {
	typ    TransactionType
	amount float64
	date   time.Time
}

// DefaultTransaction 回傳 Unknown 類型、金額 1.0、時間為現在的交易。
func DefaultTransaction() *Transaction {
	return &Transaction{typ: Unknown, amount: 1.0, date: time.Now()}
}

// NewTransaction 依正負號政策驗證後建立交易；不符時回傳 *AmountSignError。
func NewTransaction(typ TransactionType, amount float64, date time.Time) (*Transaction, error) {
	if err := checkSign(typ, amount); err != nil {
		return nil, err
	}
	return newTransaction(typ, amount, date), nil
}

// newTransaction 不做驗證，僅供帳戶內部建立已正規化的交易（含系統產生的透支費）。
func newTransaction(typ TransactionType, amount float64, date time.Time) *Transaction {
	// Unknown 的 0 元交易一律視為 1.0，避免無意義的空交易
	if typ == Unknown && amount == 0 {
		amount = 1.0
	}
	return &Transaction{typ: typ, amount: amount, date: date}
}

func checkSign(typ TransactionType, amount float64) error {
	if typ.matchesSign(amount) {
		return nil
	}
	return &AmountSignError{
		Field:        "amount",
		Type:         typ,
		Amount:       amount,
		WantNegative: typ.IndicatesNegativeAmount(),
	}
}

func (t Transaction) Type() TransactionType { return t.typ }
func (t Transaction) Amount() float64       { return t.amount }
func (t Transaction) Date() time.Time       { return t.date }

// SetAmount 修改金額；同樣套用正負號政策，失敗時原值不變。
func (t *Transaction) SetAmount(amount float64) error {
	if err := checkSign(t.typ, amount); err != nil {
		return err
	}
	t.amount = amount
	return nil
}

// transactionJSON 為對外序列化格式。
type transactionJSON struct {
	Type   TransactionType `json:"type"`
	Amount float64         `json:"amount"`
	Date   time.Time       `json:"date"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{Type: t.typ, Amount: t.amount, Date: t.date})
}
