package domain

import "time"

// Task is a single to-do entry.
type Task struct {
	ID        uint      `gorm:"primaryKey"`
	Task      string    `gorm:"not null"`
	Completed bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t Task) String() string {
	return t.Task
}
