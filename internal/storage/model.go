// internal/storage/model.go
//
// 定義「資料持久化層 (storage layer)」的結構模型。
// 帳本核心本身不做持久化；此層由嵌入的服務程式使用，將所有帳戶的交易歷史存成快照。
// 快照格式與儲存後端無關，JSON 與 SQLite 兩種實作共用同一組結構。
package storage

import "time"

// Meta 為所有持久化快照的中繼資料 (metadata)。
type Meta struct {
	Storage   string    `json:"storage"`        // 儲存類型，例如 "json_snapshot"、"sqlite"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 快照建立時間
	Note      string    `json:"note,omitempty"` // 備註欄
}

// PersistSettings 為帳戶費用設定的序列化格式。
type PersistSettings struct {
	OverdraftFee  float64 `json:"overdraft_fee"`
	ManagementFee float64 `json:"management_fee"`
}

// PersistTransaction 為單筆交易的序列化格式。
// Type 以文字保存（例如 "Fee_Overdraft"），還原時由 bank 層解析。
type PersistTransaction struct {
	Type   string    `json:"type"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// PersistAccount 為帳戶在儲存層的序列化格式，只保存資料狀態。
type PersistAccount struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Settings     PersistSettings      `json:"settings"`
	Transactions []PersistTransaction `json:"transactions"`
}

// Snapshot 為 Bank 狀態的完整快照。
type Snapshot struct {
	Meta     Meta             `json:"_meta"`
	NextID   int64            `json:"next_id"`
	Accounts []PersistAccount `json:"accounts"`
}
