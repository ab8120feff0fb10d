// internal/bank/settings.go

package bank

import "math"

const (
	DefaultOverdraftFee  = 35.00
	DefaultManagementFee = -5.00
)

// Settings 為帳戶的費用設定。兩項費用不論設定時的正負號，套用時一律取負的絕對值。
type Settings struct {
	OverdraftFee  float64 `json:"overdraft_fee" mapstructure:"overdraft"`
	ManagementFee float64 `json:"management_fee" mapstructure:"management"`
}

// DefaultSettings 回傳預設費用：透支費 35.00、管理費 -5.00。
func DefaultSettings() Settings {
	return Settings{OverdraftFee: DefaultOverdraftFee, ManagementFee: DefaultManagementFee}
}

func (s Settings) overdraftCharge() float64  { return -math.Abs(s.OverdraftFee) }
func (s Settings) managementCharge() float64 { return -math.Abs(s.ManagementFee) }
