package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

// TaskRepository is the storage the service needs.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	List(ctx context.Context, q repository.ListQuery) ([]model.Task, int64, error)
	Update(ctx context.Context, id uint, mutate func(*model.Task) error) (*model.Task, error)
	Delete(ctx context.Context, id uint) error
}

var _ TaskRepository = (*repository.TaskRepository)(nil)

// TaskPage is one page of the task list.
type TaskPage struct {
	Items   []model.Task
	Total   int64
	Page    int
	Pages   int
	PerPage int
}

type TaskService struct {
	repo     TaskRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo:     repo,
		validate: newValidator(),
		now:      time.Now,
	}
}

// List filters, sorts and paginates tasks according to the query string.
func (s *TaskService) List(ctx context.Context, values url.Values) (*TaskPage, error) {
	params, err := ParseListParams(values)
	if err != nil {
		return nil, err
	}

	tasks, total, err := s.repo.List(ctx, params.Query())
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Items:   tasks,
		Total:   total,
		Page:    params.Page,
		Pages:   params.Pages(total),
		PerPage: params.PerPage,
	}, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates every field, collecting all problems, and stores the
// task only when there are none.
func (s *TaskService) Create(ctx context.Context, p Payload) (*model.Task, error) {
	errs := make(map[string]string)

	title, ok := p.Text("title")
	if !ok {
		errs["title"] = msgTitleType
	}
	description, ok := p.Text("description")
	if !ok {
		errs["description"] = msgDescriptionType
	}
	priority, ok := p.Text("priority")
	if !ok {
		errs["priority"] = msgInvalidPriority
	}
	if priority == "" {
		priority = string(model.PriorityMedium)
	}
	due, ok := p.Text("due_date")
	if !ok {
		errs["due_date"] = msgInvalidDate
	}

	in := taskInput{
		Title:    strings.TrimSpace(title),
		Priority: strings.ToLower(priority),
		DueDate:  due,
	}
	if err := s.check(in, errs); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	task := &model.Task{
		Title:       in.Title,
		Description: normalizeDescription(description),
		DueDate:     toDate(in.DueDate),
		Priority:    model.Priority(in.Priority),
		Completed:   p.Bool("completed", false),
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update changes only the keys present in the payload. The task is looked up
// first, so an unknown id is reported before any payload problem. Nothing is
// written when a field is invalid.
func (s *TaskService) Update(ctx context.Context, id uint, p Payload) (*model.Task, error) {
	return s.repo.Update(ctx, id, func(task *model.Task) error {
		errs := make(map[string]string)
		var (
			in      taskInput
			present []string
		)

		if p.Has("title") {
			title, ok := p.Text("title")
			if !ok {
				errs["title"] = msgTitleType
			}
			in.Title = strings.TrimSpace(title)
			present = append(present, "Title")
		}
		var description string
		if p.Has("description") {
			var ok bool
			if description, ok = p.Text("description"); !ok {
				errs["description"] = msgDescriptionType
			}
		}
		if p.Has("due_date") {
			due, ok := p.Text("due_date")
			if !ok {
				errs["due_date"] = msgInvalidDate
			}
			in.DueDate = due
			present = append(present, "DueDate")
		}
		if p.Has("priority") {
			priority, ok := p.Text("priority")
			if !ok {
				errs["priority"] = msgInvalidPriority
			}
			in.Priority = strings.ToLower(priority)
			present = append(present, "Priority")
		}

		if len(present) > 0 {
			if err := s.check(in, errs, present...); err != nil {
				return err
			}
		}
		if len(errs) > 0 {
			return &ValidationError{Fields: errs}
		}

		if p.Has("title") {
			task.Title = in.Title
		}
		if p.Has("description") {
			task.Description = normalizeDescription(description)
		}
		if p.Has("due_date") {
			task.DueDate = toDate(in.DueDate)
		}
		if p.Has("priority") {
			task.Priority = model.Priority(in.Priority)
		}
		if p.Has("completed") {
			task.Completed = p.Bool("completed", task.Completed)
		}

		// Every successful update is stamped, including one with no recognised keys.
		now := s.now()
		if now.Before(task.CreatedAt) {
			now = task.CreatedAt
		}
		task.UpdatedAt = &now
		return nil
	})
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// normalizeDescription trims s and maps blank text to no description.
func normalizeDescription(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// toDate converts a validated YYYY-MM-DD value; "" means no date.
func toDate(s string) *model.Date {
	if s == "" {
		return nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}
