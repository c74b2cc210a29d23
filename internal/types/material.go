package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChapterInput is one entry of the user-authored outline. Order in the
// slice is chapter order; titles are required, descriptions optional.
type ChapterInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GeneratedChapter struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GeneratedMaterial is the structured result of one generation call.
// It is produced atomically; a partially generated material is never
// persisted.
type GeneratedMaterial struct {
	Title    string             `json:"title"`
	Chapters []GeneratedChapter `json:"chapters"`
}

// EditedContent wraps the serialized rich document saved from the
// editing surface.
type EditedContent struct {
	HTML string `json:"html"`
}

type Material struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	TableOfContents  datatypes.JSON `gorm:"column:table_of_contents;type:jsonb;not null" json:"table_of_contents"`
	GeneratedContent datatypes.JSON `gorm:"column:generated_content;type:jsonb" json:"generated_content,omitempty"`
	EditedContent    datatypes.JSON `gorm:"column:edited_content;type:jsonb" json:"edited_content,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Material) TableName() string {
	return "material"
}

func (m *Material) Outline() ([]ChapterInput, error) {
	var out []ChapterInput
	if len(m.TableOfContents) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(m.TableOfContents, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Generated decodes the stored generation result. Returns nil when the
// material has not been generated yet.
func (m *Material) Generated() (*GeneratedMaterial, error) {
	if len(m.GeneratedContent) == 0 {
		return nil, nil
	}
	var gm GeneratedMaterial
	if err := json.Unmarshal(m.GeneratedContent, &gm); err != nil {
		return nil, err
	}
	return &gm, nil
}

// Edited decodes the stored editor document. Returns nil when the
// material has never been saved from the editor.
func (m *Material) Edited() (*EditedContent, error) {
	if len(m.EditedContent) == 0 {
		return nil, nil
	}
	var ec EditedContent
	if err := json.Unmarshal(m.EditedContent, &ec); err != nil {
		return nil, err
	}
	return &ec, nil
}
