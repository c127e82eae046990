package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ashif1996/recipe-nest/internal/domain"
)

// RecipeRepo provides typed DynamoDB operations for the recipes table.
type RecipeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRecipeRepo(client *dynamodb.Client, tableName string) *RecipeRepo {
	return &RecipeRepo{client: client, tableName: tableName}
}

func (r *RecipeRepo) Put(ctx context.Context, rec *domain.Recipe) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal recipe: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RecipeRepo) Get(ctx context.Context, recipeID string) (*domain.Recipe, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("recipe_id", recipeID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("recipe not found: %w", domain.ErrNotFound)
	}
	var rec domain.Recipe
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByNameLC looks up a recipe by its lowercased name via the name_lc GSI.
func (r *RecipeRepo) GetByNameLC(ctx context.Context, nameLC string) (*domain.Recipe, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("name_lc-index"),
		KeyConditionExpression:    aws.String("name_lc = :n"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":n": &types.AttributeValueMemberS{Value: nameLC}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("recipe not found: %w", domain.ErrNotFound)
	}
	var rec domain.Recipe
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByCategory returns all recipes in a category via the category_id GSI.
func (r *RecipeRepo) ListByCategory(ctx context.Context, categoryID string) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String("category_id-index"),
			KeyConditionExpression:    aws.String("category_id = :c"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":c": &types.AttributeValueMemberS{Value: categoryID}},
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Recipe
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		recipes = append(recipes, page...)
		if out.LastEvaluatedKey == nil {
			return recipes, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Scan returns every recipe in the table. The catalog is small enough that
// filtering and sorting happen in the service layer.
func (r *RecipeRepo) Scan(ctx context.Context) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Recipe
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		recipes = append(recipes, page...)
		if out.LastEvaluatedKey == nil {
			return recipes, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *RecipeRepo) Update(ctx context.Context, recipeID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("recipe_id", recipeID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
