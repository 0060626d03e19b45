package model

import (
	"encoding/json"
	"time"
)

// Chunk stores one retrievable unit of text together with its embedding.
// Embedding and Metadata are stored as JSON text for portability.
type Chunk struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	DocID     string    `gorm:"size:191;not null;index" json:"doc_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Embedding string    `gorm:"type:mediumtext;not null" json:"-"` // JSON array of float32
	Metadata  string    `gorm:"type:text" json:"-"`                // JSON object (title, url, filename, ...)
	CreatedAt time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *Chunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *Chunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}

// MetadataMap returns the parsed metadata map; nil when absent or malformed.
func (c *Chunk) MetadataMap() map[string]string {
	if c.Metadata == "" {
		return nil
	}
	var m map[string]string
	_ = json.Unmarshal([]byte(c.Metadata), &m)
	return m
}

// SetMetadata stores the metadata map as JSON.
func (c *Chunk) SetMetadata(m map[string]string) {
	if len(m) == 0 {
		c.Metadata = ""
		return
	}
	b, _ := json.Marshal(m)
	c.Metadata = string(b)
}

// Title returns the metadata title, or "" when not set.
func (c *Chunk) Title() string { return c.MetadataMap()["title"] }

// URL returns the metadata url, or "" when not set.
func (c *Chunk) URL() string { return c.MetadataMap()["url"] }

// Filename returns the metadata filename, or "" when not set.
func (c *Chunk) Filename() string { return c.MetadataMap()["filename"] }
