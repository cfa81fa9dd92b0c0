package models

import (
	"time"
)

const (
	PostTitleMaxLen  = 120
	PostAuthorMaxLen = 80
)

type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:120;not null"`
	Author    string    `json:"author" gorm:"size:80;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// PostResponse is the JSON shape of a post on the API.
type PostResponse struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (p Post) Response() PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Author:    p.Author,
		Content:   p.Content,
		CreatedAt: FormatTimestamp(p.CreatedAt),
	}
}

func PostResponses(posts []Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Response())
	}
	return out
}

// FormatTimestamp renders t as an ISO 8601 timestamp in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
