package search

import (
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	typeField   = "docType"
	ProtocolDoc = "protocol"
)

// ProtocolMapping 急救规程索引映射：type/category 为关键词，其余为英文分词
func ProtocolMapping() *mapping.IndexMappingImpl {
	idx := mapping.NewIndexMapping()
	idx.DefaultAnalyzer = en.AnalyzerName
	idx.TypeField = typeField

	text := mapping.NewTextFieldMapping()
	text.Store = false
	text.Index = true
	text.Analyzer = en.AnalyzerName
	text.IncludeTermVectors = true

	kw := mapping.NewTextFieldMapping()
	kw.Store = true
	kw.Index = true
	kw.Analyzer = keyword.Name

	protocol := mapping.NewDocumentMapping()
	protocol.Dynamic = false
	protocol.AddFieldMappingsAt("type", kw)
	protocol.AddFieldMappingsAt("category", kw)
	protocol.AddFieldMappingsAt("severity", kw)
	protocol.AddFieldMappingsAt("name", text)
	protocol.AddFieldMappingsAt("description", text)
	protocol.AddFieldMappingsAt("steps", text)
	protocol.AddFieldMappingsAt("warnings", text)
	idx.AddDocumentMapping(ProtocolDoc, protocol)

	def := mapping.NewDocumentMapping()
	def.Dynamic = false
	idx.DefaultMapping = def
	return idx
}

// ProtocolFields 默认的查询字段
func ProtocolFields() []FieldBoost {
	return []FieldBoost{
		{Field: "type", Boost: 4, Exact: true},
		{Field: "name", Boost: 3},
		{Field: "category", Boost: 2, Exact: true},
		{Field: "description", Boost: 1.5},
		{Field: "steps", Boost: 1},
		{Field: "warnings", Boost: 0.5},
	}
}
