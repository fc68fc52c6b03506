package model

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProject is the create payload: POST /projects
type NewProject struct {
	Name        string `json:"name" validate:"required,min=1,max=50"`
	Key         string `json:"key" validate:"required,min=2,max=5,alpha"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description,omitempty"`
}

var validate = validator.New()

// Normalize trims the input and upper-cases the key.
func (p NewProject) Normalize() NewProject {
	p.Name = strings.TrimSpace(p.Name)
	p.Key = strings.ToUpper(strings.TrimSpace(p.Key))
	p.Category = strings.TrimSpace(p.Category)
	p.Description = strings.TrimSpace(p.Description)
	return p
}

func (p NewProject) Validate() error {
	return validate.Struct(p)
}
