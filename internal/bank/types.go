// internal/bank/types.go
//
// 本檔定義交易類型 (TransactionType) 與其「正負號政策」(sign policy)。
// 正負號政策是整個帳本唯一的判斷表：哪些類型的金額必須為負、哪些必須為非負。

package bank

import (
	"fmt"
	"strings"
)

// TransactionType 為封閉列舉，不接受外部擴充。
type TransactionType int

const (
	Unknown TransactionType = iota
	Deposit
	Withdraw
	Interest
	FeeOverdraft
	FeeManagement
)

var typeNames = map[TransactionType]string{
	Unknown:       "Unknown",
	Deposit:       "Deposit",
	Withdraw:      "Withdraw",
	Interest:      "Interest",
	FeeOverdraft:  "Fee_Overdraft",
	FeeManagement: "Fee_Management",
}

// IndicatesNegativeAmount 回傳該類型的金額是否應為負數。
//
//	Withdraw / FeeOverdraft / FeeManagement → true
//	Deposit / Interest / Unknown            → false
func (t TransactionType) IndicatesNegativeAmount() bool {
	switch t {
	case Withdraw, FeeOverdraft, FeeManagement:
		return true
	default:
		return false
	}
}

// matchesSign 檢查金額是否符合類型的正負號政策（負類型須 < 0；其餘須 >= 0）。
func (t TransactionType) matchesSign(amount float64) bool {
	if t.IndicatesNegativeAmount() {
		return amount < 0
	}
	return amount >= 0
}

func (t TransactionType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("TransactionType(%d)", int(t))
}

// ParseTransactionType 將文字轉回列舉值，不分大小寫。
func ParseTransactionType(s string) (TransactionType, error) {
	for t, n := range typeNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownTransactionType, s)
}

// MarshalText 讓 JSON / 快照以原始名稱輸出類型。
func (t TransactionType) MarshalText() ([]byte, error) {
	n, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTransactionType, int(t))
	}
	return []byte(n), nil
}

func (t *TransactionType) UnmarshalText(b []byte) error {
	v, err := ParseTransactionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
