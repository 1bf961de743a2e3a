package ruleset

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/livp123/netxconf/internal/iptables"
	"github.com/livp123/netxconf/internal/metrics"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/livp123/netxconf/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `*filter
:INPUT DROP [0:0]
:OUTPUT ACCEPT [0:0]
-A INPUT -i lo -j ACCEPT
-A INPUT -p tcp -s 10.0.0.1 --dport 22 -j ACCEPT
-A INPUT -p udp --dport 53 -j ACCEPT
COMMIT

*nat
:POSTROUTING ACCEPT [0:0]
-A POSTROUTING -o eth0 -j MASQUERADE
COMMIT
`

// failingStore returns the same error for every call.
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Put(context.Context, string, string) error   { return f.err }

func newService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "iptables/rules", sample))
	return NewService(store, "iptables/rules"), store
}

// TestService_GetSetRules tests the load-mutate-save cycle
// TestService_GetSetRules 测试 读取-修改-保存 流程
func TestService_GetSetRules(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	doc, err := svc.GetRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"filter", "nat"}, doc.Names())
	assert.Equal(t, 4, doc.RuleCount())

	filter, _ := doc.Table("filter")
	filter.AppendRule(iptables.NewRule("INPUT", map[iptables.Field]string{
		iptables.FieldProtocol:        "tcp",
		iptables.FieldDestinationPort: "443",
		iptables.FieldJump:            "ACCEPT",
	}))
	require.NoError(t, svc.SetRules(ctx, doc))

	text, err := store.Get(ctx, "iptables/rules")
	require.NoError(t, err)
	assert.Contains(t, text, "-A INPUT -p udp --dport 53 -j ACCEPT\n-A INPUT -p tcp --dport 443 -j ACCEPT\nCOMMIT\n\n*nat")

	again, err := svc.GetRules(ctx)
	require.NoError(t, err)
	assert.True(t, doc.Equal(again))
}

func TestService_SaveIsCanonical(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	doc, err := svc.GetRules(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Save(ctx, "copy", doc))

	text, err := store.Get(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, sample, text)
}

// TestService_NotFoundPropagates asserts storage errors come back unchanged
// TestService_NotFoundPropagates 断言存储错误原样返回
func TestService_NotFoundPropagates(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), "iptables/rules")

	_, err := svc.GetRules(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.NotErrorIs(t, err, errors.ErrFormat)
}

func TestService_StorageErrorUnchanged(t *testing.T) {
	cause := errors.NewStorageError("get", "iptables/rules", fmt.Errorf("disk on fire"))
	svc := NewService(failingStore{err: cause}, "iptables/rules")

	_, err := svc.GetRules(context.Background())
	assert.Same(t, cause, err)

	doc := iptables.NewDocument()
	doc.Set("filter", &iptables.Table{})
	err = svc.SetRules(context.Background(), doc)
	assert.Same(t, cause, err)
}

func TestService_FormatError(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "iptables/rules", "not a ruleset\n"))

	_, err := NewService(store, "iptables/rules").GetRules(ctx)
	assert.ErrorIs(t, err, errors.ErrFormat)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	require.NoError(t, svc.Update(ctx, func(doc *iptables.Document) error {
		doc.Delete("nat")
		return nil
	}))
	doc, err := svc.GetRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"filter"}, doc.Names())

	boom := fmt.Errorf("abort")
	err = svc.Update(ctx, func(doc *iptables.Document) error {
		doc.Delete("filter")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	doc, err = svc.GetRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Len())
}

// TestService_ConcurrentSavesLastWriteWins shows that concurrent saves on one
// key do not merge: exactly one writer's document survives.
// TestService_ConcurrentSavesLastWriteWins 说明同一键上的并发保存不会合并。
func TestService_ConcurrentSavesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := iptables.NewDocument()
			doc.Set(fmt.Sprintf("t%d", i), &iptables.Table{})
			assert.NoError(t, svc.SetRules(ctx, doc))
		}(i)
	}
	wg.Wait()

	doc, err := svc.GetRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Len())
}

func TestService_DuplicateTablesLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "k", "*filter\n-A INPUT -j ACCEPT\nCOMMIT\n*filter\nCOMMIT\n"))

	doc, err := NewService(store, "k").GetRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"filter"}, doc.DuplicateTables)
	filter, _ := doc.Table("filter")
	assert.Empty(t, filter.Rules)
}

// TestService_SaveRejectsUnreadableDocuments tests that documents which would
// not parse back are never written
// TestService_SaveRejectsUnreadableDocuments 测试无法解析回来的文档不会被写入
func TestService_SaveRejectsUnreadableDocuments(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	unnamed := iptables.NewDocument()
	unnamed.Set("", &iptables.Table{Rules: []iptables.Rule{
		iptables.NewRule("INPUT", map[iptables.Field]string{iptables.FieldJump: "ACCEPT"}),
	}})
	badMatch := iptables.NewDocument()
	badMatch.Set("filter", &iptables.Table{Rules: []iptables.Rule{
		iptables.NewRule("INPUT", map[iptables.Field]string{iptables.FieldMatch: "state"}),
	}})

	for name, doc := range map[string]*iptables.Document{
		"no tables":      iptables.NewDocument(),
		"unnamed table":  unnamed,
		"reserved match": badMatch,
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, svc.SetRules(ctx, doc), errors.ErrFormat)
			text, err := store.Get(ctx, "iptables/rules")
			require.NoError(t, err)
			assert.Equal(t, sample, text)
		})
	}
}

func rulesCountSeries(t *testing.T) map[string]float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 16)
	metrics.RulesCount.Collect(ch)
	close(ch)
	out := make(map[string]float64)
	for m := range ch {
		var pb dto.Metric
		require.NoError(t, m.Write(&pb))
		out[pb.GetLabel()[0].GetValue()] = pb.GetGauge().GetValue()
	}
	return out
}

func TestService_RulesCountDropsDeletedTables(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.GetRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"filter": 3, "nat": 1}, rulesCountSeries(t))

	require.NoError(t, svc.Update(ctx, func(doc *iptables.Document) error {
		doc.Delete("nat")
		return nil
	}))
	assert.Equal(t, map[string]float64{"filter": 3}, rulesCountSeries(t))
}
