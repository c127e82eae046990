package domain

import "time"

type Category struct {
	CategoryID  string    `json:"id" dynamodbav:"category_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	Name        string    `json:"name" dynamodbav:"category_name"`
	NameLC      string    `json:"-" dynamodbav:"name_lc"`
	Description string    `json:"description" dynamodbav:"description"`
	ImageURL    string    `json:"image_url" dynamodbav:"image_url"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"required,max=300"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=300"`
}
