package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskmanager/internal/model"
)

const (
	msgTitleRequired   = "Title is required."
	msgTitleType       = "Title must be a string."
	msgDescriptionType = "Description must be a string."
	msgInvalidDate     = "Invalid date format. Use YYYY-MM-DD."
)

var (
	msgInvalidPriority = "Priority must be one of " + model.PriorityList() + "."

	fieldMessages = map[string]string{
		"title":    msgTitleRequired,
		"priority": msgInvalidPriority,
		"due_date": msgInvalidDate,
	}
)

// taskInput is the normalized (trimmed, lower-cased) form of a payload.
type taskInput struct {
	Title    string `json:"title" validate:"required"`
	Priority string `json:"priority" validate:"priority"`
	DueDate  string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return model.Priority(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// check validates in and records one message per failing field, keeping any
// message already present in errs. With no names every field is checked,
// otherwise only the named struct fields.
func (s *TaskService) check(in taskInput, errs map[string]string, names ...string) error {
	var err error
	if len(names) == 0 {
		err = s.validate.Struct(in)
	} else {
		err = s.validate.StructPartial(in, names...)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		key := fe.Field()
		if _, exists := errs[key]; exists {
			continue
		}
		errs[key] = fieldMessages[key]
	}
	return nil
}
