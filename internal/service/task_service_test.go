package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskmanager/internal/database"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

var fixedNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*TaskService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	svc := NewTaskService(repository.NewTaskRepository(db))
	svc.now = func() time.Time { return fixedNow }
	return svc, db
}

func countTasks(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Task{}).Count(&n).Error)
	return n
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestTaskService_Create_Defaults(t *testing.T) {
	svc, _ := setupService(t)

	task, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"  Buy milk  ","due_date":"2025-01-15"}`)))

	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Nil(t, task.Description)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-01-15", task.DueDate.String())
	assert.Equal(t, fixedNow, task.CreatedAt)
	assert.Nil(t, task.UpdatedAt)
}

func TestTaskService_Create_NormalizesFields(t *testing.T) {
	svc, _ := setupService(t)

	task, err := svc.Create(context.Background(), DecodePayload([]byte(
		`{"title":"Call mom","description":"  weekly  ","priority":"HIGH","completed":1,"due_date":""}`)))

	require.NoError(t, err)
	assert.Equal(t, "weekly", task.DescriptionText())
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.True(t, task.Completed)
	assert.Nil(t, task.DueDate)
}

func TestTaskService_Create_BlankDescriptionIsAbsent(t *testing.T) {
	svc, _ := setupService(t)

	task, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"x","description":"   "}`)))

	require.NoError(t, err)
	assert.Nil(t, task.Description)
}

func TestTaskService_Create_CollectsAllErrors(t *testing.T) {
	svc, db := setupService(t)

	_, err := svc.Create(context.Background(), DecodePayload([]byte(
		`{"title":"   ","priority":"urgent","due_date":"15/01/2025"}`)))

	fields := validationFields(t, err)
	assert.Equal(t, map[string]string{
		"title":    "Title is required.",
		"priority": "Priority must be one of low, medium, high.",
		"due_date": "Invalid date format. Use YYYY-MM-DD.",
	}, fields)
	assert.Zero(t, countTasks(t, db))
}

func TestTaskService_Create_WrongTypes(t *testing.T) {
	svc, db := setupService(t)

	_, err := svc.Create(context.Background(), DecodePayload([]byte(
		`{"title":42,"description":["a"],"priority":true,"due_date":20250115}`)))

	fields := validationFields(t, err)
	assert.Equal(t, "Title must be a string.", fields["title"])
	assert.Equal(t, "Description must be a string.", fields["description"])
	assert.Equal(t, "Priority must be one of low, medium, high.", fields["priority"])
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD.", fields["due_date"])
	assert.Zero(t, countTasks(t, db))
}

func TestTaskService_Create_EmptyPayload(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), DecodePayload([]byte(`garbage`)))

	assert.Equal(t, map[string]string{"title": "Title is required."}, validationFields(t, err))
}

func TestTaskService_Update_Partial(t *testing.T) {
	svc, _ := setupService(t)
	created, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"Buy milk","priority":"low","description":"two"}`)))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, DecodePayload([]byte(`{"completed":true}`)))

	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, model.PriorityLow, updated.Priority)
	assert.Equal(t, "two", updated.DescriptionText())
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, fixedNow, *updated.UpdatedAt)
}

func TestTaskService_Update_EmptyPayloadStillStamps(t *testing.T) {
	svc, _ := setupService(t)
	created, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"Buy milk"}`)))
	require.NoError(t, err)
	require.Nil(t, created.UpdatedAt)

	updated, err := svc.Update(context.Background(), created.ID, DecodePayload([]byte(`{}`)))

	require.NoError(t, err)
	assert.Equal(t, "Buy milk", updated.Title)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, fixedNow, *updated.UpdatedAt)
}

func TestTaskService_Update_AllFields(t *testing.T) {
	svc, _ := setupService(t)
	created, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"a","due_date":"2025-01-15","description":"d"}`)))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, DecodePayload([]byte(
		`{"title":" b ","description":"","due_date":null,"priority":"High","completed":"yes"}`)))

	require.NoError(t, err)
	assert.Equal(t, "b", updated.Title)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.True(t, updated.Completed)

	updated, err = svc.Update(context.Background(), created.ID, DecodePayload([]byte(`{"due_date":"2026-02-01","completed":false}`)))
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2026-02-01", updated.DueDate.String())
	assert.False(t, updated.Completed)
}

func TestTaskService_Update_InvalidFieldsPersistNothing(t *testing.T) {
	svc, db := setupService(t)
	created, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"Keep me","priority":"low"}`)))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, DecodePayload([]byte(
		`{"title":"","priority":"urgent","due_date":"tomorrow","completed":true,"description":"changed"}`)))

	assert.Equal(t, map[string]string{
		"title":    "Title is required.",
		"priority": "Priority must be one of low, medium, high.",
		"due_date": "Invalid date format. Use YYYY-MM-DD.",
	}, validationFields(t, err))

	var stored model.Task
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, "Keep me", stored.Title)
	assert.Equal(t, model.PriorityLow, stored.Priority)
	assert.False(t, stored.Completed)
	assert.Nil(t, stored.Description)
	assert.Nil(t, stored.UpdatedAt)
}

func TestTaskService_Update_NullPriorityIsInvalid(t *testing.T) {
	svc, _ := setupService(t)
	created, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"x"}`)))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, DecodePayload([]byte(`{"priority":null}`)))

	assert.Contains(t, validationFields(t, err), "priority")
}

func TestTaskService_Update_NotFoundBeforeValidation(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Update(context.Background(), 404, DecodePayload([]byte(`{"title":""}`)))

	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_GetAndDelete(t *testing.T) {
	svc, _ := setupService(t)
	created, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"x"}`)))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrTaskNotFound)

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_List_Pagination(t *testing.T) {
	svc, _ := setupService(t)
	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"t"}`)))
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), url.Values{"per_page": {"2"}, "page": {"3"}})

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 2, page.PerPage)

	page, err = svc.List(context.Background(), url.Values{"per_page": {"2"}, "page": {"9"}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 9, page.Page)
}

func TestTaskService_List_InvalidQuery(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.List(context.Background(), url.Values{"sort": {"title"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid sort. Use one of due|priority|created.", verr.Message)
}

// MockTaskRepository lets the tests inject storage failures.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, q repository.ListQuery) ([]model.Task, int64, error) {
	args := m.Called(ctx, q)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskRepository) Update(ctx context.Context, id uint, mutate func(*model.Task) error) (*model.Task, error) {
	args := m.Called(ctx, id, mutate)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func TestTaskService_StoreErrorsPropagate(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := NewTaskService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(assert.AnError)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), assert.AnError)
	repo.On("Delete", mock.Anything, uint(1)).Return(assert.AnError)

	_, err := svc.Create(context.Background(), DecodePayload([]byte(`{"title":"x"}`)))
	assert.ErrorIs(t, err, assert.AnError)

	_, err = svc.List(context.Background(), url.Values{})
	assert.ErrorIs(t, err, assert.AnError)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1), assert.AnError)

	repo.AssertExpectations(t)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "Title is required.", "due_date": "Invalid date format. Use YYYY-MM-DD."}}
	assert.Equal(t, "validation failed: due_date: Invalid date format. Use YYYY-MM-DD.; title: Title is required.", err.Error())

	assert.Equal(t, "Invalid sort.", (&ValidationError{Message: "Invalid sort."}).Error())
}
