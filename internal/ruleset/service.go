// Package ruleset loads and stores iptables-save documents through a Store.
// Package ruleset 通过存储层加载和保存 iptables-save 文档。
package ruleset

import (
	"context"

	"github.com/livp123/netxconf/internal/iptables"
	"github.com/livp123/netxconf/internal/metrics"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/livp123/netxconf/pkg/storage"
)

// Service is the document assembler: storage text in, Document out, and back.
// It holds no state besides its collaborators. Two load-mutate-save cycles on
// the same key race and the later save wins.
// Service 负责在存储文本与 Document 之间转换，不持有额外状态。
// 同一键上并发的 读取-修改-保存 没有顺序保证，后保存者覆盖先保存者。
type Service struct {
	store storage.Store
	key   string
}

// NewService returns a Service whose GetRules/SetRules use key.
// NewService 创建一个 Service，GetRules/SetRules 使用 key。
func NewService(store storage.Store, key string) *Service {
	return &Service{store: store, key: key}
}

// Key returns the configured rule document key.
func (s *Service) Key() string { return s.key }

// Load reads key and parses it. Storage errors are returned unchanged.
// Load 读取并解析 key 对应的文档，存储错误原样返回。
func (s *Service) Load(ctx context.Context, key string) (*iptables.Document, error) {
	text, err := s.LoadText(ctx, key)
	if err != nil {
		return nil, err
	}

	doc, stats, err := iptables.ParseDocumentWithStats(text)
	if err != nil {
		metrics.DocumentsParsed.WithLabelValues(metrics.ResultError).Inc()
		logger.Get(ctx).Warnf("[RULES] Failed to parse %s: %v", key, err)
		return nil, err
	}
	metrics.DocumentsParsed.WithLabelValues(metrics.ResultOK).Inc()
	metrics.RulesParsed.Add(float64(stats.Rules))
	metrics.TokensDropped.Add(float64(stats.UnparsedTokens))
	metrics.DuplicateTables.Add(float64(stats.DuplicateTables))
	recordSizes(doc)

	log := logger.Get(ctx)
	for _, name := range doc.DuplicateTables {
		log.Warnf("[RULES] Table %q appears more than once in %s; the last block wins", name, key)
	}
	if stats.UnparsedTokens > 0 {
		log.Debugf("[RULES] %d unrecognised tokens in %s will not be written back", stats.UnparsedTokens, key)
	}
	log.Debugf("[RULES] Loaded %s: %d tables, %d chains, %d rules", key, stats.Tables, stats.Chains, stats.Rules)
	return doc, nil
}

// LoadText returns the stored text for key without parsing it.
func (s *Service) LoadText(ctx context.Context, key string) (string, error) {
	text, err := s.store.Get(ctx, key)
	recordStore("get", err)
	return text, err
}

// Save encodes doc and writes it under key. A document that would not parse
// back into the same tables is rejected with ErrFormat before anything is
// written. Storage errors are returned unchanged.
// Save 编码 doc 并写入 key；无法原样解析回来的文档以 ErrFormat 拒绝，存储错误原样返回。
func (s *Service) Save(ctx context.Context, key string, doc *iptables.Document) error {
	if err := iptables.ValidateDocument(doc); err != nil {
		logger.Get(ctx).Warnf("[RULES] Refusing to save %s: %v", key, err)
		return err
	}
	text := iptables.EncodeDocument(doc)
	err := s.store.Put(ctx, key, text)
	recordStore("put", err)
	if err != nil {
		return err
	}
	recordSizes(doc)
	logger.Get(ctx).Infof("[RULES] Saved %s: %d tables, %d rules", key, doc.Len(), doc.RuleCount())
	return nil
}

// GetRules loads the configured rule document.
// GetRules 加载配置的规则文档。
func (s *Service) GetRules(ctx context.Context) (*iptables.Document, error) {
	return s.Load(ctx, s.key)
}

// SetRules saves doc as the configured rule document.
// SetRules 将 doc 保存为配置的规则文档。
func (s *Service) SetRules(ctx context.Context, doc *iptables.Document) error {
	return s.Save(ctx, s.key, doc)
}

// Update runs one load-mutate-save cycle on the configured key. It takes no
// lock; callers that need serialized updates must provide it.
// Update 对配置的键执行一次 读取-修改-保存，不加锁。
func (s *Service) Update(ctx context.Context, fn func(*iptables.Document) error) error {
	doc, err := s.GetRules(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.SetRules(ctx, doc)
}

func recordStore(op string, err error) {
	result := metrics.ResultOK
	switch {
	case errors.Is(err, errors.ErrNotFound):
		result = metrics.ResultNotFound
	case err != nil:
		result = metrics.ResultError
	}
	metrics.StoreOps.WithLabelValues(op, result).Inc()
}

// recordSizes replaces the per-table gauges so tables removed from doc drop
// out of the series.
func recordSizes(doc *iptables.Document) {
	metrics.RulesCount.Reset()
	for _, name := range doc.Names() {
		t, _ := doc.Table(name)
		metrics.RulesCount.WithLabelValues(name).Set(float64(len(t.Rules)))
	}
}
