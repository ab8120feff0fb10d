// internal/bank/bank_test.go
//
// Bank（多帳戶登錄）的單元與整合測試：建立/查詢、交易准入結果、並行安全、快照與還原。

package bank

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/storage"
)

// TestCreateAndListGet 驗證帳戶建立、查詢與列出功能。
func TestCreateAndListGet(t *testing.T) {
	b := NewBank(DefaultSettings())
	a1, err := b.Create("A")
	require.NoError(t, err)
	a2, err := b.Create("  B  ")
	require.NoError(t, err)

	assert.NotEqual(t, a1.ID, a2.ID)
	assert.NotEmpty(t, a1.ID)
	assert.Equal(t, "B", a2.Name)
	assert.Equal(t, 0.0, a1.Balance)
	assert.Equal(t, DefaultSettings(), a1.Settings)

	all := b.List()
	require.Len(t, all, 2)
	assert.Equal(t, a1.ID, all[0].ID)
	assert.Equal(t, a2.ID, all[1].ID)

	got, err := b.Get(a1.ID)
	require.NoError(t, err)
	assert.Equal(t, a1, got)
}

func TestCreateBlankName(t *testing.T) {
	b := NewBank(DefaultSettings())
	_, err := b.Create("   ")
	assert.ErrorIs(t, err, ErrBadName)
	assert.Empty(t, b.List())
}

func TestUnknownAccount(t *testing.T) {
	b := NewBank(DefaultSettings())
	_, err := b.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.AddTransaction("nope", Candidate{Type: Deposit, Amount: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.Transactions("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.Settings("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.SetSettings("nope", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestAddTransactionResult 驗證准入結果：成功、透支收費、單純拒絕。
func TestAddTransactionResult(t *testing.T) {
	b := NewBank(DefaultSettings())
	a, _ := b.Create("A")

	tests := []struct {
		name           string
		c              Candidate
		wantAccepted   bool
		wantFeeCharged bool
		wantBalance    float64
		wantLen        int
	}{
		{"deposit", Candidate{Type: Deposit, Amount: 200}, true, false, 200, 1},
		{"withdraw", Candidate{Type: Withdraw, Amount: 50}, true, false, 150, 2},
		{"overdraft", Candidate{Type: Withdraw, Amount: 200}, false, true, 115, 3},
		{"rejected", Candidate{Type: Interest, Amount: 10}, false, false, 115, 3},
	}
	for _, tt := range tests {
		tt.c.Date = time.Now()
		res, err := b.AddTransaction(a.ID, tt.c)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.wantAccepted, res.Accepted, tt.name)
		assert.Equal(t, tt.wantFeeCharged, res.FeeCharged, tt.name)
		assert.Equal(t, tt.wantBalance, res.Balance, tt.name)
		assert.Len(t, res.Transactions, tt.wantLen, tt.name)
	}

	txs, err := b.Transactions(a.ID)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, FeeOverdraft, txs[2].Type())
}

func TestBankSettings(t *testing.T) {
	defaults := Settings{OverdraftFee: 20, ManagementFee: -2}
	b := NewBank(defaults)
	a, _ := b.Create("A")

	st, err := b.Settings(a.ID)
	require.NoError(t, err)
	assert.Equal(t, defaults, st)

	st, err = b.SetSettings(a.ID, &Settings{OverdraftFee: 50, ManagementFee: -10})
	require.NoError(t, err)
	assert.Equal(t, Settings{OverdraftFee: 50, ManagementFee: -10}, st)

	res, err := b.AddTransaction(a.ID, Candidate{Type: FeeManagement, Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, -10.0, res.Balance)

	// nil 回到 Bank 的預設值（而非套件預設）
	st, err = b.SetSettings(a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, defaults, st)
}

// TestConcurrentAdmissions 驗證高併發下所有准入都被序列化：
// 存款總額正確，且任何時刻餘額都不會因提款變負。
func TestConcurrentAdmissions(t *testing.T) {
	b := NewBank(DefaultSettings())
	a, _ := b.Create("A")

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = b.AddTransaction(a.ID, Candidate{Type: Deposit, Amount: 10, Date: time.Now()})
		}()
		go func() {
			defer wg.Done()
			_, _ = b.AddTransaction(a.ID, Candidate{Type: Withdraw, Amount: 5, Date: time.Now()})
		}()
	}
	wg.Wait()

	txs, err := b.Transactions(a.ID)
	require.NoError(t, err)

	var deposits, withdrawals, fees int
	var running float64
	for _, tx := range txs {
		running += tx.Amount()
		switch tx.Type() {
		case Deposit:
			deposits++
		case Withdraw:
			withdrawals++
			assert.GreaterOrEqual(t, running, 0.0)
		case FeeOverdraft:
			fees++
		}
	}
	assert.Equal(t, n, deposits)
	assert.Equal(t, n, withdrawals+fees)

	got, err := b.Get(a.ID)
	require.NoError(t, err)
	assert.InDelta(t, running, got.Balance, 1e-9)
}

// TestSnapshotRestore 驗證快照匯出後可完整還原（含透支費與自訂設定）。
func TestSnapshotRestore(t *testing.T) {
	b := NewBank(DefaultSettings())
	a1, _ := b.Create("A")
	a2, _ := b.Create("B")
	_, _ = b.AddTransaction(a1.ID, Candidate{Type: Deposit, Amount: 100, Date: time.Now()})
	_, _ = b.AddTransaction(a1.ID, Candidate{Type: FeeManagement, Amount: 0, Date: time.Now()})
	_, _ = b.AddTransaction(a2.ID, Candidate{Type: Withdraw, Amount: 1, Date: time.Now()})
	_, _ = b.SetSettings(a2.ID, &Settings{OverdraftFee: 99, ManagementFee: -1})

	snap := b.Snapshot()
	assert.Equal(t, int64(2), snap.NextID)
	assert.Equal(t, storage.SnapshotVersion, snap.Meta.Version)
	require.Len(t, snap.Accounts, 2)
	assert.Equal(t, "Fee_Management", snap.Accounts[0].Transactions[1].Type)
	assert.Equal(t, "Fee_Overdraft", snap.Accounts[1].Transactions[0].Type)

	r := NewBank(DefaultSettings())
	require.NoError(t, r.Restore(snap))
	assert.Equal(t, b.List(), r.List())

	orig, _ := b.Transactions(a1.ID)
	restored, _ := r.Transactions(a1.ID)
	assert.Equal(t, orig, restored)

	// 還原後產生的新 ID 接續 nextID
	a3, err := r.Create("C")
	require.NoError(t, err)
	assert.Equal(t, "3", a3.ID)
}

func TestRestoreRejectsInvalidHistory(t *testing.T) {
	b := NewBank(DefaultSettings())
	a, _ := b.Create("keep")

	tests := []struct {
		name string
		tx   storage.PersistTransaction
	}{
		{"unknown type", storage.PersistTransaction{Type: "Transfer", Amount: 1}},
		{"wrong sign", storage.PersistTransaction{Type: "Withdraw", Amount: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Restore(storage.Snapshot{
				NextID: 1,
				Accounts: []storage.PersistAccount{
					{ID: "1", Name: "X", Transactions: []storage.PersistTransaction{tt.tx}},
				},
			})
			require.Error(t, err)

			// 失敗時原狀態不變
			got, err := b.Get(a.ID)
			require.NoError(t, err)
			assert.Equal(t, "keep", got.Name)
		})
	}
}

// TestSnapshotRestoreZeroOverdraftFee 驗證透支費設為 0 時，產生的 0 元透支費仍可還原。
func TestSnapshotRestoreZeroOverdraftFee(t *testing.T) {
	b := NewBank(DefaultSettings())
	a, _ := b.Create("A")
	_, err := b.SetSettings(a.ID, &Settings{OverdraftFee: 0, ManagementFee: -5})
	require.NoError(t, err)

	res, err := b.AddTransaction(a.ID, Candidate{Type: Withdraw, Amount: 10, Date: time.Now()})
	require.NoError(t, err)
	assert.True(t, res.FeeCharged)
	assert.Zero(t, res.Balance)

	r := NewBank(DefaultSettings())
	require.NoError(t, r.Restore(b.Snapshot()))
	txs, err := r.Transactions(a.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, FeeOverdraft, txs[0].Type())
	assert.Zero(t, txs[0].Amount())

	// 0 元只對系統產生的費用放行，提款仍須為負
	err = r.Restore(storage.Snapshot{Accounts: []storage.PersistAccount{
		{ID: "1", Name: "X", Transactions: []storage.PersistTransaction{{Type: "Withdraw", Amount: 0}}},
	}})
	assert.ErrorIs(t, err, ErrAmountSignMismatch)
}

// TestRestoreNextIDBelowAccounts 驗證快照的 next_id 落後時，新帳戶不會覆蓋既有帳戶。
func TestRestoreNextIDBelowAccounts(t *testing.T) {
	b := NewBank(DefaultSettings())
	require.NoError(t, b.Restore(storage.Snapshot{
		NextID: 1,
		Accounts: []storage.PersistAccount{
			{ID: "1", Name: "A"},
			{ID: "5", Name: "B"},
		},
	}))

	c, err := b.Create("C")
	require.NoError(t, err)
	assert.Equal(t, "6", c.ID)

	got, err := b.Get("5")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
	assert.Len(t, b.List(), 3)
}
