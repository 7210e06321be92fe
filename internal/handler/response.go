package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskmanager/internal/middleware"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

// TaskResponse is the serialized task
type TaskResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date" example:"2025-01-15"`
	Priority    string  `json:"priority" enums:"low,medium,high"`
	Completed   bool    `json:"completed"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

// TaskListResponse is one page of tasks
type TaskListResponse struct {
	Items   []TaskResponse `json:"items"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
	PerPage int            `json:"per_page"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewTaskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.DescriptionText(),
		Priority:    string(task.Priority),
		Completed:   task.Completed,
		CreatedAt:   formatTime(&task.CreatedAt),
		UpdatedAt:   formatTime(task.UpdatedAt),
	}
	if task.DueDate != nil {
		due := task.DueDate.String()
		resp.DueDate = &due
	}
	return resp
}

func NewTaskListResponse(page *service.TaskPage) TaskListResponse {
	items := make([]TaskResponse, len(page.Items))
	for i := range page.Items {
		items[i] = NewTaskResponse(&page.Items[i])
	}
	return TaskListResponse{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		Pages:   page.Pages,
		PerPage: page.PerPage,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and hidden behind a generic 500.
func writeError(c *gin.Context, log *logrus.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		if len(verr.Fields) > 0 {
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: verr.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Task not found."})
	default:
		middleware.Entry(c, log).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error."})
	}
}
