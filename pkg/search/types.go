package search

import "time"

type Config struct {
	// IndexPath 为空时使用内存索引
	IndexPath    string
	QueryTimeout time.Duration
	BatchSize    int
	// 结果数量上限
	Limit int
}

// Doc 待索引的文档
type Doc struct {
	ID     string
	Type   string
	Fields map[string]any
}

// Hit 命中结果，按得分降序
type Hit struct {
	ID    string
	Score float64
}

// FieldBoost 查询字段与权重
type FieldBoost struct {
	Field string
	Boost float64
	// Exact 为 true 时按关键词精确匹配
	Exact bool
}
