package domain

import "time"

type Recipe struct {
	RecipeID        string    `json:"id" dynamodbav:"recipe_id"`
	UserID          string    `json:"user_id" dynamodbav:"user_id"`
	CategoryID      string    `json:"category_id" dynamodbav:"category_id"`
	Name            string    `json:"name" dynamodbav:"recipe_name"`
	NameLC          string    `json:"-" dynamodbav:"name_lc"` // lowercased, backs the uniqueness check and search
	ImageURL        string    `json:"image_url" dynamodbav:"image_url"`
	PreparationTime int       `json:"preparation_time" dynamodbav:"preparation_time"` // minutes
	ServingSize     string    `json:"serving_size" dynamodbav:"serving_size"`
	Ingredients     []string  `json:"ingredients" dynamodbav:"ingredients"`
	Steps           []string  `json:"steps" dynamodbav:"steps"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updated" dynamodbav:"updated_at"`

	// CategoryName is resolved at read time, never persisted.
	CategoryName string `json:"category_name,omitempty" dynamodbav:"-"`
}

type CreateRecipeRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	CategoryID      string   `json:"category_id" validate:"required"`
	PreparationTime int      `json:"preparation_time" validate:"required,min=1"`
	ServingSize     string   `json:"serving_size" validate:"required"`
	Ingredients     []string `json:"ingredients" validate:"required,min=1,dive,required"`
	Steps           []string `json:"steps" validate:"required,min=1,dive,required"`
}

type UpdateRecipeRequest struct {
	Name            *string  `json:"name" validate:"omitempty,max=200"`
	CategoryID      *string  `json:"category_id"`
	PreparationTime *int     `json:"preparation_time" validate:"omitempty,min=1"`
	ServingSize     *string  `json:"serving_size"`
	Ingredients     []string `json:"ingredients" validate:"omitempty,min=1,dive,required"`
	Steps           []string `json:"steps" validate:"omitempty,min=1,dive,required"`
}
