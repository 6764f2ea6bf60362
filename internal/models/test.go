package models

import (
	"time"
)

type Test struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	GroupName   string `json:"group_name" gorm:"size:100;index" validate:"omitempty,max=100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:TestID"`
	Attempts  []Attempt  `json:"attempts" gorm:"foreignKey:TestID"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count" gorm:"-"`
}

func (Test) TableName() string {
	return "tests"
}
