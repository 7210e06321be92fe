package model

import (
	"time"
)

type Task struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"type:text"`
	DueDate     *Date     `gorm:"index"`
	Priority    Priority  `gorm:"size:6;not null;index;check:chk_tasks_priority,priority IN ('low','medium','high')"`
	Completed   bool      `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
	// UpdatedAt stays NULL until the first update; the service stamps it.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`
}

func (Task) TableName() string {
	return "tasks"
}

// DescriptionText returns the description or "" when none is stored.
func (t *Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
