package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskmanager/internal/middleware"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

type TaskService interface {
	List(ctx context.Context, values url.Values) (*service.TaskPage, error)
	Get(ctx context.Context, id uint) (*model.Task, error)
	Create(ctx context.Context, p service.Payload) (*model.Task, error)
	Update(ctx context.Context, id uint, p service.Payload) (*model.Task, error)
	Delete(ctx context.Context, id uint) error
}

var _ TaskService = (*service.TaskService)(nil)

type TaskHandler struct {
	service TaskService
	log     *logrus.Logger
}

func NewTaskHandler(svc TaskService, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{service: svc, log: log}
}

// List godoc
// @Summary      List tasks
// @Description  Filter by completion, sort and paginate tasks
// @Tags         Tasks
// @Produce      json
// @Param        completed  query     string  false  "true|1|yes or false|0|no"
// @Param        sort       query     string  false  "created|due|priority"  default(created)
// @Param        direction  query     string  false  "asc|desc"  default(asc)
// @Param        page       query     int     false  "page number"  default(1)
// @Param        per_page   query     int     false  "page size"  default(50)
// @Success      200        {object}  TaskListResponse
// @Failure      400        {object}  ErrorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, NewTaskListResponse(page))
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      TaskRequest  true  "task"
// @Success      201   {object}  TaskResponse
// @Failure      400   {object}  ValidationErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	task, err := h.service.Create(c.Request.Context(), h.payload(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	middleware.Entry(c, h.log).WithField("task_id", task.ID).Info("task created")
	c.JSON(http.StatusCreated, NewTaskResponse(task))
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "task id"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		writeError(c, h.log, service.ErrTaskNotFound)
		return
	}

	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(task))
}

// Update godoc
// @Summary      Update a task
// @Description  Only the keys present in the body are changed
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "task id"
// @Param        task  body      TaskRequest  true  "fields to change"
// @Success      200   {object}  TaskResponse
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		writeError(c, h.log, service.ErrTaskNotFound)
		return
	}

	task, err := h.service.Update(c.Request.Context(), id, h.payload(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	middleware.Entry(c, h.log).WithField("task_id", task.ID).Info("task updated")
	c.JSON(http.StatusOK, NewTaskResponse(task))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "task id"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		writeError(c, h.log, service.ErrTaskNotFound)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}

	middleware.Entry(c, h.log).WithField("task_id", id).Info("task deleted")
	c.JSON(http.StatusOK, MessageResponse{Message: "Deleted."})
}

// TaskRequest documents the accepted body; decoding goes through
// service.Payload so absent keys can be told apart from null ones.
type TaskRequest struct {
	Title       string  `json:"title" example:"Buy milk"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date" example:"2025-01-15"`
	Priority    string  `json:"priority" enums:"low,medium,high" example:"medium"`
	Completed   bool    `json:"completed"`
}

func (h *TaskHandler) payload(c *gin.Context) service.Payload {
	body, err := c.GetRawData()
	if err != nil {
		middleware.Entry(c, h.log).WithError(err).Warn("failed to read request body")
		return service.Payload{}
	}
	return service.DecodePayload(body)
}

// taskID parses the :id path parameter. Anything that is not a positive
// integer cannot name a task.
func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
