package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"blog-todo/internal/logging"
	"blog-todo/internal/models"
	"blog-todo/internal/repositories"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "services.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.Task{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newPostService(t *testing.T) (*PostServiceImpl, *gorm.DB) {
	db := setupTestDB(t)
	return NewPostService(repositories.NewPostRepository(db), logging.Discard()), db
}

func newTaskService(t *testing.T) *TaskServiceImpl {
	return NewTaskService(repositories.NewTaskRepository(setupTestDB(t)), logging.Discard())
}

func strPtr(s string) *string { return &s }

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCreatePost_RoundTrip(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	in := PostInput{
		Title:   "  " + gofakeit.Sentence(3) + " ",
		Author:  gofakeit.Name(),
		Content: gofakeit.Paragraph(1, 2, 5, " "),
	}

	post, err := svc.CreatePost(ctx, in)
	require.NoError(t, err)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(in.Title), got.Title)
	assert.Equal(t, in.Author, got.Author)
	assert.Equal(t, in.Content, got.Content)
}

func TestCreatePost_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   PostInput
		field   string
		message string
	}{
		{"blank title", PostInput{Title: "   ", Author: "A", Content: "C"}, "", MsgPostFieldsRequired},
		{"missing author", PostInput{Title: "T", Content: "C"}, "", MsgPostFieldsRequired},
		{"whitespace content", PostInput{Title: "T", Author: "A", Content: "\n\t"}, "", MsgPostFieldsRequired},
		{"title too long", PostInput{Title: strings.Repeat("x", 121), Author: "A", Content: "C"}, "title", "title must be at most 120 characters"},
		{"author too long", PostInput{Title: "T", Author: strings.Repeat("é", 81), Content: "C"}, "author", "author must be at most 80 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := newPostService(t)

			_, err := svc.CreatePost(context.Background(), tt.input)
			ve, ok := models.AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.message, ve.Message)
			assert.Zero(t, countRows(t, db, &models.Post{}), "no row may be persisted")
		})
	}
}

func TestCreatePost_LengthCountsRunes(t *testing.T) {
	svc, _ := newPostService(t)

	_, err := svc.CreatePost(context.Background(), PostInput{Title: strings.Repeat("ü", 120), Author: "A", Content: "C"})
	assert.NoError(t, err)
}

func TestUpdatePost(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, PostInput{Title: "T", Author: "A", Content: "C"})
	require.NoError(t, err)

	updated, err := svc.UpdatePost(ctx, post.ID, PostInput{Title: " T2 ", Author: "A2", Content: "C2"})
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.True(t, post.CreatedAt.Equal(updated.CreatedAt))

	_, err = svc.UpdatePost(ctx, post.ID, PostInput{Title: "", Author: "A3", Content: "C3"})
	_, isValidation := models.AsValidationError(err)
	assert.True(t, isValidation)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Author, "failed update must not change the row")
}

func TestUpdatePost_NotFoundBeforeValidation(t *testing.T) {
	svc, _ := newPostService(t)

	_, err := svc.UpdatePost(context.Background(), 99, PostInput{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPatchPost_OnlySuppliedFields(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, PostInput{Title: "Hi", Author: "A", Content: "C"})
	require.NoError(t, err)

	patched, err := svc.PatchPost(ctx, post.ID, PostPatch{Title: strPtr("X")})
	require.NoError(t, err)
	assert.Equal(t, "X", patched.Title)
	assert.Equal(t, "A", patched.Author)
	assert.Equal(t, "C", patched.Content)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, "A", got.Author)
	assert.Equal(t, "C", got.Content)
}

func TestPatchPost_Validation(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, PostInput{Title: "Hi", Author: "A", Content: "C"})
	require.NoError(t, err)

	_, err = svc.PatchPost(ctx, post.ID, PostPatch{Author: strPtr("  ")})
	ve, ok := models.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "author must not be blank", ve.Message)

	_, err = svc.PatchPost(ctx, post.ID, PostPatch{Title: strPtr(strings.Repeat("t", 121))})
	_, ok = models.AsValidationError(err)
	assert.True(t, ok)

	unchanged, err := svc.PatchPost(ctx, post.ID, PostPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Hi", unchanged.Title)

	_, err = svc.PatchPost(ctx, post.ID+100, PostPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeletePost_Twice(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, PostInput{Title: "T", Author: "A", Content: "C"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, post.ID))
	assert.ErrorIs(t, svc.DeletePost(ctx, post.ID), models.ErrNotFound)
}

func TestTaskInput_Apply(t *testing.T) {
	tests := []struct {
		name      string
		input     TaskInput
		wantErr   string
		wantTitle string
		wantDue   string
		wantNotes string
	}{
		{name: "minimal", input: TaskInput{Title: " Shop "}, wantTitle: "Shop"},
		{name: "all fields", input: TaskInput{Title: "Shop", Notes: " milk ", DueDate: "2024-01-05", Done: true}, wantTitle: "Shop", wantDue: "2024-01-05", wantNotes: "milk"},
		{name: "blank notes", input: TaskInput{Title: "Shop", Notes: "   "}, wantTitle: "Shop"},
		{name: "blank title", input: TaskInput{Title: "  "}, wantErr: MsgTitleRequired},
		{name: "invalid date", input: TaskInput{Title: "Shop", DueDate: "2024-13-40"}, wantErr: MsgInvalidDueDate},
		{name: "wrong format", input: TaskInput{Title: "Shop", DueDate: "05/01/2024"}, wantErr: MsgInvalidDueDate},
		{name: "single digit month", input: TaskInput{Title: "Shop", DueDate: "2024-1-05"}, wantErr: MsgInvalidDueDate},
		{name: "title too long", input: TaskInput{Title: strings.Repeat("a", 121)}, wantErr: "title must be at most 120 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := models.Task{Title: "original"}
			task := original

			err := tt.input.Apply(&task)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.Equal(t, original, task, "task must be untouched on failure")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, task.Title)
			assert.Equal(t, tt.wantDue, task.DueDateString())
			assert.Equal(t, tt.wantNotes, task.NotesString())
			assert.Equal(t, tt.input.Done, task.Done)
		})
	}
}

func TestUpdateTask_ClearsDueDate(t *testing.T) {
	svc := newTaskService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{Title: "Dentist", DueDate: "2024-06-01"})
	require.NoError(t, err)
	require.Equal(t, "2024-06-01", task.DueDateString())

	_, err = svc.UpdateTask(ctx, task.ID, TaskInput{Title: "Dentist", DueDate: ""})
	require.NoError(t, err)

	got, err := svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
}

func TestUpdateTask_InvalidDateLeavesRowUnchanged(t *testing.T) {
	svc := newTaskService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{Title: "Dentist", Notes: "bring card", DueDate: "2024-06-01"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, task.ID, TaskInput{Title: "Changed", DueDate: "2024-13-40", Done: true})
	ve, ok := models.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "due_date", ve.Field)

	got, err := svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", got.Title)
	assert.Equal(t, "2024-06-01", got.DueDateString())
	assert.Equal(t, "bring card", got.NotesString())
	assert.False(t, got.Done)
}

func TestTaskService_NotFound(t *testing.T) {
	svc := newTaskService(t)
	ctx := context.Background()

	_, err := svc.GetTask(ctx, 3)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.UpdateTask(ctx, 3, TaskInput{})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteTask(ctx, 3), models.ErrNotFound)
}

func TestListTasks_Ordering(t *testing.T) {
	svc := newTaskService(t)
	ctx := context.Background()

	a, err := svc.CreateTask(ctx, TaskInput{Title: "a", DueDate: "2024-01-05"})
	require.NoError(t, err)
	b, err := svc.CreateTask(ctx, TaskInput{Title: "b", DueDate: "2024-01-01", Done: true})
	require.NoError(t, err)
	c, err := svc.CreateTask(ctx, TaskInput{Title: "c"})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []uint{a.ID, c.ID, b.ID}, []uint{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}
