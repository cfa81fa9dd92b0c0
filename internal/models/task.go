package models

import (
	"time"
)

const (
	TaskTitleMaxLen = 120

	// DateLayout is the ISO calendar date format accepted for due dates.
	DateLayout = "2006-01-02"
)

type Task struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"size:120;not null"`
	Notes     *string    `json:"notes" gorm:"type:text"`
	DueDate   *time.Time `json:"due_date" gorm:"type:date;index"`
	Done      bool       `json:"done" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

type TaskResponse struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Notes     *string `json:"notes"`
	DueDate   *string `json:"due_date"`
	Done      bool    `json:"done"`
	CreatedAt string  `json:"created_at"`
}

func (t Task) Response() TaskResponse {
	resp := TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Notes:     t.Notes,
		Done:      t.Done,
		CreatedAt: FormatTimestamp(t.CreatedAt),
	}
	if due := t.DueDateString(); due != "" {
		resp.DueDate = &due
	}
	return resp
}

func TaskResponses(tasks []Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Response())
	}
	return out
}

// DueDateString returns the due date as yyyy-mm-dd, or "" when unset.
func (t Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// NotesString returns the notes, or "" when unset.
func (t Task) NotesString() string {
	if t.Notes == nil {
		return ""
	}
	return *t.Notes
}
