// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP RESTful 介面，作為 bank 模組的應用層 (Application Layer)。
// 每個 handler 僅負責：
//  1. 接收與驗證 HTTP 請求
//  2. 呼叫 bank 層執行商業邏輯
//  3. 回傳標準化 JSON 回應
//  4. 成功變更狀態後呼叫 s.persist()，將當前銀行狀態寫入快照
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"ledger/internal/bank"
)

// Server 為 HTTP 層核心結構：
// - Bank：注入商業邏輯層（多帳戶登錄）。
// - persist：注入持久化鉤子，讓 server 不需關心儲存實作細節。
type Server struct {
	Bank    *bank.Bank
	persist func() error
	logger  *log.Logger
	now     func() time.Time
}

// NewServer 建立新的 HTTP 伺服器。
// persist 可為 nil；logger 為 nil 時使用全域預設 logger。
func NewServer(b *bank.Bank, persist func() error, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Bank: b, persist: persist, logger: logger, now: time.Now}
}

// transactionRequest 為新增交易的請求內容；date 省略時以伺服器時間為準。
type transactionRequest struct {
	Type   bank.TransactionType `json:"type"`
	Amount float64              `json:"amount"`
	Date   *time.Time           `json:"date"`
}

// health 回傳服務狀態。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// accounts 處理：
//   - POST /accounts  → 建立帳戶
//   - GET  /accounts  → 列出所有帳戶
func (s *Server) accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, err, http.StatusBadRequest)
			return
		}
		a, err := s.Bank.Create(req.Name)
		if err != nil {
			writeErr(w, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusCreated, a)
		s.save(r)

	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Bank.List())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// accountSubroutes 處理子路徑：
//
//	GET      /accounts/{id}               → 查詢帳戶
//	GET/POST /accounts/{id}/transactions  → 交易列表 / 新增交易
//	GET/PUT  /accounts/{id}/settings      → 費用設定
func (s *Server) accountSubroutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/accounts/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		a, err := s.Bank.Get(id)
		if err != nil {
			writeErr(w, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}

	switch parts[1] {
	case "transactions":
		s.transactions(w, r, id)
	case "settings":
		s.settings(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) transactions(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		txs, err := s.Bank.Transactions(id)
		if err != nil {
			writeErr(w, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, txs)

	case http.MethodPost:
		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, err, statusFor(err))
			return
		}
		c := bank.Candidate{Type: req.Type, Amount: req.Amount, Date: s.now()}
		if req.Date != nil {
			c.Date = *req.Date
		}

		res, err := s.Bank.AddTransaction(id, c)
		if err != nil {
			writeErr(w, err, statusFor(err))
			return
		}
		switch {
		case res.Accepted:
			writeJSON(w, http.StatusCreated, res)
			s.save(r)
		case res.FeeCharged:
			// 透支：提款未入帳，但透支費已記入，仍需持久化
			s.logger.Info("overdraft fee charged", "account", id, "amount", req.Amount, "balance", res.Balance)
			writeJSON(w, http.StatusConflict, res)
			s.save(r)
		default:
			s.logger.Debug("transaction rejected", "account", id, "type", req.Type, "amount", req.Amount)
			writeJSON(w, http.StatusUnprocessableEntity, res)
		}

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) settings(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		st, err := s.Bank.Settings(id)
		if err != nil {
			writeErr(w, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, st)

	case http.MethodPut:
		// body 為 null 時 req 保持 nil → 重設為預設值
		var req *bank.Settings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, err, http.StatusBadRequest)
			return
		}
		st, err := s.Bank.SetSettings(id, req)
		if err != nil {
			writeErr(w, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, st)
		s.save(r)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// save 觸發持久化鉤子；失敗只記錄，不影響已送出的回應。
func (s *Server) save(r *http.Request) {
	if s.persist == nil {
		return
	}
	if err := s.persist(); err != nil {
		s.logger.Error("persist snapshot failed", "err", err, "request_id", requestID(r.Context()))
	}
}

// statusFor 將領域錯誤映射為 HTTP 狀態碼：帳戶不存在為 404，其餘（名稱空白、未知類型、壞 JSON）為 400。
func statusFor(err error) int {
	if errors.Is(err, bank.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
