package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"blog-todo/internal/models"
	"blog-todo/internal/services"

	"github.com/gin-gonic/gin"
)

// TodoName is the display name of the to-do application.
const TodoName = "Todo"

// doneValue is what the done checkbox submits when ticked.
const doneValue = "on"

type TaskHandler struct {
	taskService services.TaskService
	log         *slog.Logger
}

func NewTaskHandler(taskService services.TaskService, log *slog.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, log: log}
}

func (h *TaskHandler) bindTaskForm(c *gin.Context) (services.TaskInput, bool) {
	var in services.TaskInput
	if !bindForm(c, h.log, TodoName, &in) {
		return in, false
	}
	in.Done = c.PostForm("done") == doneValue
	return in, true
}

func taskForm(task models.Task) services.TaskInput {
	return services.TaskInput{
		Title:   task.Title,
		Notes:   task.NotesString(),
		DueDate: task.DueDateString(),
		Done:    task.Done,
	}
}

func (h *TaskHandler) Index(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context())
	if err != nil {
		handlePageError(c, h.log, TodoName, err)
		return
	}
	page(c, http.StatusOK, TodoName, "todo/index.html", gin.H{"Tasks": tasks})
}

func (h *TaskHandler) New(c *gin.Context) {
	page(c, http.StatusOK, TodoName, "todo/new.html", gin.H{
		"Title": "New task",
		"Form":  services.TaskInput{},
	})
}

func (h *TaskHandler) Create(c *gin.Context) {
	in, ok := h.bindTaskForm(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), in)
	if err != nil {
		if ve, ok := models.AsValidationError(err); ok {
			page(c, http.StatusBadRequest, TodoName, "todo/new.html", gin.H{
				"Title": "New task",
				"Form":  in,
				"Error": ve.Message,
			})
			return
		}
		handlePageError(c, h.log, TodoName, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/tasks/%d", task.ID))
}

func (h *TaskHandler) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFoundPage(c, TodoName)
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		handlePageError(c, h.log, TodoName, err)
		return
	}
	page(c, http.StatusOK, TodoName, "todo/show.html", gin.H{
		"Title": task.Title,
		"Task":  task,
	})
}

func (h *TaskHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFoundPage(c, TodoName)
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		handlePageError(c, h.log, TodoName, err)
		return
	}
	page(c, http.StatusOK, TodoName, "todo/edit.html", gin.H{
		"Title": "Edit task",
		"ID":    task.ID,
		"Form":  taskForm(task),
	})
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFoundPage(c, TodoName)
		return
	}
	in, ok := h.bindTaskForm(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, in)
	if err != nil {
		if ve, ok := models.AsValidationError(err); ok {
			page(c, http.StatusBadRequest, TodoName, "todo/edit.html", gin.H{
				"Title": "Edit task",
				"ID":    id,
				"Form":  in,
				"Error": ve.Message,
			})
			return
		}
		handlePageError(c, h.log, TodoName, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/tasks/%d", task.ID))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFoundPage(c, TodoName)
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		handlePageError(c, h.log, TodoName, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context())
	if err != nil {
		handleAPIError(c, h.log, "task", err)
		return
	}
	c.JSON(http.StatusOK, models.TaskResponses(tasks))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		handleAPIError(c, h.log, "task", err)
		return
	}
	c.JSON(http.StatusOK, task.Response())
}
