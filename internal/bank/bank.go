// internal/bank/bank.go
//
// Bank 為多帳戶登錄：以單一互斥鎖 (sync.Mutex) 序列化對所有 Account 的讀寫。
// Account 本身不加鎖，因此由 Bank 擔任「外部同步者」，讓 HTTP 等並行呼叫端可以安全共用。

package bank

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ledger/internal/storage"
)

// Bank 為聚合根 (Aggregate Root)：管理全系統帳戶。
// - mu：序列化所有讀寫。
// - nextID：以原子遞增產生帳戶 ID。
// - defaults：新帳戶與「重設設定」時採用的費用。
type Bank struct {
	mu       sync.Mutex
	nextID   int64
	accts    map[string]*entry
	defaults Settings
}

type entry struct {
	name    string
	account *Account
}

// AccountInfo 為帳戶的唯讀摘要。
type AccountInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Balance  float64  `json:"balance"`
	Settings Settings `json:"settings"`
}

// Result 為一次准入的結果。
// FeeCharged 只在透支時為 true：此時 Accepted 為 false，但序列多了一筆透支費。
// Transactions 為准入後（同一把鎖內取得）的交易序列拷貝。
type Result struct {
	Accepted     bool          `json:"accepted"`
	FeeCharged   bool          `json:"fee_charged"`
	Balance      float64       `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

// NewBank 建立空白銀行實例；defaults 為新帳戶的費用設定。
func NewBank(defaults Settings) *Bank {
	return &Bank{accts: make(map[string]*entry), defaults: defaults}
}

func (b *Bank) newID() string {
	id := atomic.AddInt64(&b.nextID, 1)
	return strconv.FormatInt(id, 10)
}

// Create 以名稱建立空帳戶；名稱不得為空白。
func (b *Bank) Create(name string) (AccountInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AccountInfo{}, ErrBadName
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.newID()
	defaults := b.defaults
	e := &entry{name: name, account: NewAccount(&defaults)}
	b.accts[id] = e
	return e.info(id), nil
}

// Get 依 ID 取得帳戶摘要；若不存在回傳 ErrNotFound。
func (b *Bank) Get(id string) (AccountInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.accts[id]
	if !ok {
		return AccountInfo{}, ErrNotFound
	}
	return e.info(id), nil
}

// List 依 ID 數值順序回傳所有帳戶摘要。
func (b *Bank) List() []AccountInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]AccountInfo, 0, len(b.accts))
	for _, id := range b.sortedIDs() {
		out = append(out, b.accts[id].info(id))
	}
	return out
}

// AddTransaction 將候選交易交給帳戶准入，並回報是否因透支被收費。
func (b *Bank) AddTransaction(id string, c Candidate) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.accts[id]
	if !ok {
		return Result{}, ErrNotFound
	}
	before := len(e.account.transactions)
	accepted := e.account.TryAddTransaction(&c)
	return Result{
		Accepted:     accepted,
		FeeCharged:   !accepted && len(e.account.transactions) > before,
		Balance:      e.account.Balance(),
		Transactions: e.account.Transactions(),
	}, nil
}

// Transactions 回傳指定帳戶的交易序列拷貝。
func (b *Bank) Transactions(id string) ([]Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.accts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.account.Transactions(), nil
}

// Settings 回傳指定帳戶目前的費用設定。
func (b *Bank) Settings(id string) (Settings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.accts[id]
	if !ok {
		return Settings{}, ErrNotFound
	}
	return e.account.Settings(), nil
}

// SetSettings 整組替換費用設定；s 為 nil 時回到 Bank 的預設值。
func (b *Bank) SetSettings(id string, s *Settings) (Settings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.accts[id]
	if !ok {
		return Settings{}, ErrNotFound
	}
	if s == nil {
		defaults := b.defaults
		s = &defaults
	}
	e.account.SetSettings(s)
	return e.account.Settings(), nil
}

// Snapshot 匯出銀行狀態到可持久化的 storage.Snapshot。
func (b *Bank) Snapshot() storage.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := storage.Snapshot{
		Meta: storage.Meta{
			Version: storage.SnapshotVersion,
			Note:    "ledger accounts with full transaction history",
		},
		NextID: atomic.LoadInt64(&b.nextID),
	}
	for _, id := range b.sortedIDs() {
		e := b.accts[id]
		st := e.account.Settings()
		pa := storage.PersistAccount{
			ID:   id,
			Name: e.name,
			Settings: storage.PersistSettings{
				OverdraftFee:  st.OverdraftFee,
				ManagementFee: st.ManagementFee,
			},
			Transactions: make([]storage.PersistTransaction, 0, len(e.account.transactions)),
		}
		for _, t := range e.account.transactions {
			pa.Transactions = append(pa.Transactions, storage.PersistTransaction{
				Type: t.typ.String(), Amount: t.amount, Date: t.date,
			})
		}
		s.Accounts = append(s.Accounts, pa)
	}
	return s
}

// Restore 由 storage.Snapshot 還原銀行狀態。
// 每筆交易都重新驗證正負號；任何一筆不合法即整體失敗，原狀態不變。
// nextID 取快照值與既有最大數字 ID 的較大者，避免之後 Create 覆蓋已還原的帳戶。
func (b *Bank) Restore(s storage.Snapshot) error {
	accts := make(map[string]*entry, len(s.Accounts))
	nextID := s.NextID
	for _, pa := range s.Accounts {
		if n, err := strconv.ParseInt(pa.ID, 10, 64); err == nil && n > nextID {
			nextID = n
		}
		history := make([]Transaction, 0, len(pa.Transactions))
		for i, pt := range pa.Transactions {
			typ, err := ParseTransactionType(pt.Type)
			if err != nil {
				return fmt.Errorf("account %s transaction %d: %w", pa.ID, i, err)
			}
			t, err := restoreTransaction(typ, pt.Amount, pt.Date)
			if err != nil {
				return fmt.Errorf("account %s transaction %d: %w", pa.ID, i, err)
			}
			history = append(history, *t)
		}
		settings := Settings{OverdraftFee: pa.Settings.OverdraftFee, ManagementFee: pa.Settings.ManagementFee}
		accts[pa.ID] = &entry{name: pa.Name, account: RestoreAccount(&settings, history)}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	atomic.StoreInt64(&b.nextID, nextID)
	b.accts = accts
	return nil
}

// restoreTransaction 以 NewTransaction 驗證持久化的交易。
// 費用類交易由系統以 -|fee| 產生，費用設為 0 時金額為 0（或 -0），照原樣接受。
func restoreTransaction(typ TransactionType, amount float64, date time.Time) (*Transaction, error) {
	if (typ == FeeOverdraft || typ == FeeManagement) && amount == 0 {
		return newTransaction(typ, amount, date), nil
	}
	return NewTransaction(typ, amount, date)
}

// sortedIDs 須在持有 mu 時呼叫。
func (b *Bank) sortedIDs() []string {
	ids := make([]string, 0, len(b.accts))
	for id := range b.accts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (e *entry) info(id string) AccountInfo {
	return AccountInfo{ID: id, Name: e.name, Balance: e.account.Balance(), Settings: e.account.Settings()}
}
