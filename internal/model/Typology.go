package model

import "fmt"

type Typology struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);unique;not null" json:"name" form:"name" binding:"required"`
	Description string `gorm:"type:text" json:"description" form:"description"`

	Entries []TypologyEntry `json:"entries,omitempty"`
}

func (t Typology) TableName() string {
	return "typologies"
}

type TypologyEntry struct {
	BaseModel
	TypologyID  string `gorm:"type:text;not null;uniqueIndex:idx_typology_entry_code" json:"typologyId" form:"typologyId"`
	Code        int    `gorm:"type:integer;not null;uniqueIndex:idx_typology_entry_code" json:"code" form:"code"`
	Category    string `gorm:"type:varchar(255);not null;index" json:"category" form:"category" binding:"required"`
	Name        string `gorm:"type:varchar(255);not null" json:"name" form:"name" binding:"required"`
	Description string `gorm:"type:text" json:"description" form:"description"`
}

func (te TypologyEntry) TableName() string {
	return "typology_entries"
}

func (te TypologyEntry) Label() string {
	return fmt.Sprintf("%d - %s", te.Code, te.Name)
}
