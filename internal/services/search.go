package services

import (
	"context"
	"strconv"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/search"
)

// ProtocolSource 索引重建时读取全部规程
type ProtocolSource interface {
	GetEmergencyProtocols(ctx context.Context) ([]models.EmergencyProtocol, error)
}

// ProtocolSearch 规程全文检索，索引内只存可检索字段，结果回表读取
type ProtocolSearch struct {
	engine search.Engine
	source ProtocolSource
}

func NewProtocolSearch(engine search.Engine, source ProtocolSource) *ProtocolSearch {
	return &ProtocolSearch{engine: engine, source: source}
}

func protocolDoc(p models.EmergencyProtocol) search.Doc {
	return search.Doc{
		ID:   strconv.FormatUint(uint64(p.ID), 10),
		Type: search.ProtocolDoc,
		Fields: map[string]any{
			"type":        p.Type,
			"name":        p.Name,
			"category":    p.Category,
			"severity":    p.Severity,
			"description": p.Description,
			"steps":       p.Instructions.Steps,
			"warnings":    p.Instructions.Warnings,
		},
	}
}

// Reindex 全量重建
func (s *ProtocolSearch) Reindex(ctx context.Context) error {
	list, err := s.source.GetEmergencyProtocols(ctx)
	if err != nil {
		return err
	}
	docs := make([]search.Doc, len(list))
	for i, p := range list {
		docs[i] = protocolDoc(p)
	}
	return s.engine.IndexBatch(ctx, docs)
}

func (s *ProtocolSearch) Index(ctx context.Context, p models.EmergencyProtocol) error {
	return s.engine.Index(ctx, protocolDoc(p))
}

// Search 按得分排序返回规程，索引中已不存在于存储的文档被忽略
func (s *ProtocolSearch) Search(ctx context.Context, q string) ([]models.EmergencyProtocol, error) {
	hits, err := s.engine.Search(ctx, q, search.ProtocolFields())
	if err != nil {
		return nil, err
	}
	out := make([]models.EmergencyProtocol, 0, len(hits))
	if len(hits) == 0 {
		return out, nil
	}
	list, err := s.source.GetEmergencyProtocols(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.EmergencyProtocol, len(list))
	for _, p := range list {
		byID[strconv.FormatUint(uint64(p.ID), 10)] = p
	}
	for _, h := range hits {
		if p, ok := byID[h.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProtocolSearch) Close() error { return s.engine.Close() }
