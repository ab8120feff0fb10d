// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊。
// handler.go 定義「如何處理請求」，router.go 定義「請求如何被導向」。
package server

import "net/http"

// Router 建立並回傳整個 HTTP 處理鏈（含 request ID 與存取日誌 middleware）。
func (s *Server) Router() http.Handler {
	v1 := http.NewServeMux()

	// 健康檢查
	v1.HandleFunc("/health", s.health)

	// 帳戶操作：
	//   - GET  /accounts          → 列出帳戶
	//   - POST /accounts          → 建立帳戶
	v1.HandleFunc("/accounts", s.accounts)

	// 帳戶子操作：
	//   - GET      /accounts/{id}
	//   - GET/POST /accounts/{id}/transactions
	//   - GET/PUT  /accounts/{id}/settings
	v1.HandleFunc("/accounts/", s.accountSubroutes)

	// 所有端點掛在 /api/v1/ 下，同時保留根路徑方便本地開發。
	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", v1))
	root.Handle("/", v1)

	return s.withRequestLog(root)
}
