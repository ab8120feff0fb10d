// internal/server/response.go
//
// 本檔負責統一 HTTP 回應格式：成功與錯誤皆輸出 JSON。
package server

import (
	"encoding/json"
	"net/http"
)

// writeJSON 統一輸出成功回應。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody 為錯誤回應格式：{"error": "..."}。
type errorBody struct {
	Error string `json:"error"`
}

// writeErr 統一輸出錯誤回應。
func writeErr(w http.ResponseWriter, err error, code int) {
	writeJSON(w, code, errorBody{Error: err.Error()})
}
