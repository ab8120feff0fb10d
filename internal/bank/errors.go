// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 帳本核心只有建構交易時會回傳錯誤；帳戶的交易准入一律以 bool 表示成敗。
// Bank（多帳戶登錄）層的錯誤則由上層 HTTP handler 轉換成適當的 HTTP 狀態碼。

package bank

import (
	"errors"
	"fmt"
)

var (
	// ErrAmountSignMismatch 代表金額正負號與交易類型不符。
	ErrAmountSignMismatch = errors.New("amount sign does not match transaction type")

	// ErrUnknownTransactionType 代表無法辨識的交易類型名稱。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrNotFound 代表帳戶不存在。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrNotFound = errors.New("account not found")

	// ErrBadName 代表帳戶名稱為空白。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrBadName = errors.New("account name must not be blank")
)

// AmountSignError 描述哪個欄位、哪個類型、需要哪個方向。
// 以 errors.Is(err, ErrAmountSignMismatch) 判斷。
type AmountSignError struct {
	Field        string
	Type         TransactionType
	Amount       float64
	WantNegative bool
}

func (e *AmountSignError) Error() string {
	dir := "non-negative"
	if e.WantNegative {
		dir = "negative"
	}
	return fmt.Sprintf("%s must be %s for %s transaction (got %g)", e.Field, dir, e.Type, e.Amount)
}

func (e *AmountSignError) Unwrap() error {
	return ErrAmountSignMismatch
}
