// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account：一個只增不減的交易序列，加上一組費用設定。
// Account 本身不加鎖；同時有多個寫入者時，須由擁有者（例如 Bank）自行同步。

package bank

import "time"

// Candidate 是呼叫端提出、尚待帳戶准入的交易。
// Deposit / Withdraw 請填正的金額，最終正負號由帳戶決定。
type Candidate struct {
	Type   TransactionType
	Amount float64
	Date   time.Time
}

// Account represents a ledger account.
type Account struct {
	transactions []Transaction
	settings     Settings
	now          func() time.Time
}

// NewAccount 建立空帳戶；settings 為 nil 時採預設費用。
func NewAccount(settings *Settings) *Account {
	a := &Account{now: time.Now}
	a.SetSettings(settings)
	return a
}

// RestoreAccount 以既有歷史重建帳戶（僅供快照還原），不經過准入流程。
func RestoreAccount(settings *Settings, history []Transaction) *Account {
	a := NewAccount(settings)
	a.transactions = append([]Transaction(nil), history...)
	return a
}

// Settings 回傳目前費用設定的拷貝。
func (a *Account) Settings() Settings {
	return a.settings
}

// SetSettings 整組替換費用設定；傳入 nil 則重設為預設值。
func (a *Account) SetSettings(s *Settings) {
	if s == nil {
		a.settings = DefaultSettings()
		return
	}
	a.settings = *s
}

// Balance 每次重新加總所有交易金額，不做快取。
func (a *Account) Balance() float64 {
	var sum float64
	for _, t := range a.transactions {
		sum += t.amount
	}
	return sum
}

// Transactions 依插入順序回傳交易序列的拷貝，呼叫端無法藉此改動帳戶內部。
func (a *Account) Transactions() []Transaction {
	out := make([]Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// TryAddTransaction 判斷候選交易能否入帳：
//  1. nil、Unknown、Interest、FeeOverdraft 一律拒絕。
//  2. Deposit / Withdraw 金額須 > 0。
//  3. FeeManagement 改用設定的管理費；其餘類型依正負號政策翻轉金額。
//  4. Withdraw 若使餘額變負：只記一筆透支費，提款本身不入帳，並回傳 false。
//
// 所有拒絕都只以 false 表示，不會 panic 或回傳錯誤。
func (a *Account) TryAddTransaction(c *Candidate) bool {
	if c == nil {
		return false
	}
	switch c.Type {
	case Unknown, Interest, FeeOverdraft:
		return false
	case Deposit, Withdraw:
		if c.Amount <= 0 {
			return false
		}
	}

	adjusted := c.Amount
	if c.Type == FeeManagement {
		// 呼叫端金額只用來表明類型，實際金額以設定為準
		adjusted = a.settings.managementCharge()
	} else if !c.Type.matchesSign(adjusted) {
		adjusted = -adjusted
	}
	if !c.Type.matchesSign(adjusted) {
		return false
	}

	final := newTransaction(c.Type, adjusted, c.Date)

	if final.typ == Withdraw && a.Balance()+final.amount < 0 {
		fee := newTransaction(FeeOverdraft, a.settings.overdraftCharge(), a.now())
		a.transactions = append(a.transactions, *fee)
		return false
	}

	a.transactions = append(a.transactions, *final)
	return true
}
