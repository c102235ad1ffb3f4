package search

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

var ErrClosed = errors.New("search engine closed")

type Engine interface {
	Index(ctx context.Context, doc Doc) error
	IndexBatch(ctx context.Context, docs []Doc) error
	Search(ctx context.Context, text string, fields []FieldBoost) ([]Hit, error)
	Count() (uint64, error)
	Close() error
}

type bleveEngine struct {
	cfg    Config
	index  bleve.Index
	mu     sync.RWMutex
	closed bool
}

// New IndexPath 为空时创建内存索引，否则打开或新建磁盘索引
func New(cfg Config, m mapping.IndexMapping) (Engine, error) {
	var (
		idx bleve.Index
		err error
	)
	if cfg.IndexPath == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.Open(cfg.IndexPath)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			idx, err = bleve.New(cfg.IndexPath, m)
		}
	}
	if err != nil {
		return nil, err
	}
	return &bleveEngine{cfg: cfg, index: idx}, nil
}

func (e *bleveEngine) guard() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

func docData(doc Doc) map[string]any {
	data := make(map[string]any, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		data[k] = v
	}
	if doc.Type != "" {
		data[typeField] = doc.Type
	}
	return data
}

func (e *bleveEngine) Index(ctx context.Context, doc Doc) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.index.Index(doc.ID, docData(doc))
}

func (e *bleveEngine) IndexBatch(ctx context.Context, docs []Doc) error {
	if err := e.guard(); err != nil {
		return err
	}
	bs := e.cfg.BatchSize
	if bs <= 0 {
		bs = 200
	}
	for i := 0; i < len(docs); i += bs {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+bs, len(docs))
		b := e.index.NewBatch()
		for _, d := range docs[i:end] {
			if err := b.Index(d.ID, docData(d)); err != nil {
				return err
			}
		}
		if err := e.index.Batch(b); err != nil {
			return err
		}
	}
	return nil
}

// Search 各字段查询取并集，结果按得分排序
func (e *bleveEngine) Search(ctx context.Context, text string, fields []FieldBoost) ([]Hit, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var clauses []query.Query
	for _, f := range fields {
		if f.Exact {
			tq := bleve.NewTermQuery(strings.ToLower(text))
			tq.SetField(f.Field)
			tq.SetBoost(f.Boost)
			clauses = append(clauses, tq)
			continue
		}
		mq := bleve.NewMatchQuery(text)
		mq.SetField(f.Field)
		mq.SetBoost(f.Boost)
		clauses = append(clauses, mq)
	}
	if len(clauses) == 0 {
		mq := bleve.NewMatchQuery(text)
		clauses = append(clauses, mq)
	}

	limit := e.cfg.Limit
	if limit <= 0 {
		limit = 20
	}
	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(clauses...), limit, 0, false)

	if e.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.QueryTimeout)
		defer cancel()
	}
	res, err := e.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

func (e *bleveEngine) Count() (uint64, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}
	return e.index.DocCount()
}

func (e *bleveEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.index.Close()
}
