package models

import (
	"maps"
	"slices"
	"time"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

type Instructions struct {
	Steps    []string `json:"steps" binding:"required,min=1"`
	Warnings []string `json:"warnings,omitempty"`
	Supplies []string `json:"supplies,omitempty"`
}

type EmergencyProtocol struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Type         string            `gorm:"size:64;index;not null" json:"type"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Description  string            `gorm:"type:text" json:"description"`
	Instructions Instructions      `gorm:"serializer:json;type:text" json:"instructions"`
	Severity     string            `gorm:"size:16;not null" json:"severity"`
	Category     string            `gorm:"size:64;not null" json:"category"`
	Languages    map[string]string `gorm:"serializer:json;type:text" json:"languages"`
	CreatedAt    time.Time         `json:"createdAt"`

	// LocalizedName 按请求语言从 Languages 中取出，不落库
	LocalizedName string `gorm:"-" json:"localizedName,omitempty"`
}

type ProtocolInsert struct {
	Type         string            `json:"type" binding:"required,max=64"`
	Name         string            `json:"name" binding:"required"`
	Description  string            `json:"description" binding:"required"`
	Instructions Instructions      `json:"instructions"`
	Severity     string            `json:"severity" binding:"required,oneof=low medium high critical"`
	Category     string            `json:"category" binding:"required"`
	Languages    map[string]string `json:"languages"`
}

func (in ProtocolInsert) NewProtocol(now time.Time) EmergencyProtocol {
	p := EmergencyProtocol{
		Type:         in.Type,
		Name:         in.Name,
		Description:  in.Description,
		Instructions: in.Instructions,
		Severity:     in.Severity,
		Category:     in.Category,
		Languages:    in.Languages,
		CreatedAt:    now,
	}
	if p.Languages == nil {
		p.Languages = map[string]string{}
	}
	return p.Clone()
}

// Localize 设置 LocalizedName，找不到对应语言时使用 Name
func (p *EmergencyProtocol) Localize(lang string) {
	if name, ok := p.Languages[lang]; ok && name != "" {
		p.LocalizedName = name
		return
	}
	p.LocalizedName = p.Name
}

func (p EmergencyProtocol) Clone() EmergencyProtocol {
	p.Instructions.Steps = slices.Clone(p.Instructions.Steps)
	p.Instructions.Warnings = slices.Clone(p.Instructions.Warnings)
	p.Instructions.Supplies = slices.Clone(p.Instructions.Supplies)
	p.Languages = maps.Clone(p.Languages)
	return p
}
