package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/livp123/netxconf/internal/iptables"
	"github.com/livp123/netxconf/internal/ruleset"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/internal/version"
)

// maxBodyBytes bounds uploaded documents.
const maxBodyBytes = 4 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
}

// handleGetRules returns the rule document as an ordered list of tables.
// handleGetRules 以有序表列表的形式返回规则文档。
func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	doc, err := s.rules.GetRules(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleGetRawRules returns the stored iptables-save text untouched.
func (s *Server) handleGetRawRules(w http.ResponseWriter, r *http.Request) {
	text, err := s.rules.LoadText(r.Context(), s.rules.Key())
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, text)
}

type saveResult struct {
	Tables int `json:"tables"`
	Rules  int `json:"rules"`
}

// handlePutRules replaces the rule document. A text/plain body is parsed as
// iptables-save output; anything else is decoded as the JSON form GET
// returns.
// handlePutRules 替换规则文档，支持 text/plain 与 JSON 两种请求体。
func (s *Server) handlePutRules(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeAPIError(w, http.StatusRequestEntityTooLarge, ErrCodeInvalidRequest, "request body too large")
		return
	}

	var doc *iptables.Document
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		doc, err = iptables.ParseDocument(string(body))
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		doc = iptables.NewDocument()
		if err := json.Unmarshal(body, doc); err != nil {
			writeAPIError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON document: "+err.Error())
			return
		}
	}
	for _, name := range doc.DuplicateTables {
		logger.Get(r.Context()).Warnf("[RULES] Upload repeats table %q; the last block wins", name)
	}

	if err := s.rules.SetRules(r.Context(), doc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResult{Tables: doc.Len(), Rules: doc.RuleCount()})
}

// handleQueryRules filters rules with the expression in ?where=.
// handleQueryRules 使用 ?where= 表达式过滤规则。
func (s *Server) handleQueryRules(w http.ResponseWriter, r *http.Request) {
	where := r.URL.Query().Get("where")
	if where == "" {
		writeAPIError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "missing where parameter")
		return
	}
	q, err := ruleset.CompileQuery(where)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.rules.GetRules(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	matches := q.Filter(doc)
	if matches == nil {
		matches = []ruleset.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}
