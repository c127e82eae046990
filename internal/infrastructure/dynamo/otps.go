package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ashif1996/recipe-nest/internal/domain"
)

// batchDeleteMax is the DynamoDB BatchWriteItem request cap.
const batchDeleteMax = 25

// transactMax is the DynamoDB TransactWriteItems item cap.
const transactMax = 100

// OTPRepo manages one-time codes in the otp_codes table.
// PK: email, SK: created_at (Unix nanos).
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Replace deletes every existing record for rec.Email and inserts rec.
// Both happen in one TransactWriteItems call, so a concurrent verification
// can never observe the gap between delete and insert.
func (r *OTPRepo) Replace(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}

	keys, err := r.keysByEmail(ctx, rec.Email)
	if err != nil {
		return err
	}

	// An email should only ever carry a handful of stale records. If it
	// somehow exceeds the transaction cap, fall back to batch delete + put.
	if len(keys) >= transactMax {
		if err := r.deleteKeys(ctx, keys); err != nil {
			return err
		}
		keys = nil
	}

	if len(keys) == 0 {
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      item,
		})
		return err
	}

	items := make([]types.TransactWriteItem, 0, len(keys)+1)
	for _, key := range keys {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{TableName: aws.String(r.tableName), Key: key},
		})
	}
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{TableName: aws.String(r.tableName), Item: item},
	})
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return err
}

// LatestByEmail returns the most recently created record for the email.
func (r *OTPRepo) LatestByEmail(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": &types.AttributeValueMemberS{Value: email}},
		ScanIndexForward:          aws.Bool(false), // newest created_at first
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("otp record not found: %w", domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the single record identified by its primary key.
func (r *OTPRepo) Delete(ctx context.Context, email string, createdAt int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       otpKey(email, createdAt),
	})
	return err
}

// DeleteAllByEmail removes every record for the email.
func (r *OTPRepo) DeleteAllByEmail(ctx context.Context, email string) error {
	keys, err := r.keysByEmail(ctx, email)
	if err != nil {
		return err
	}
	return r.deleteKeys(ctx, keys)
}

// DeleteExpired removes every record across all emails whose expiry has
// passed. before is compared in Unix seconds against expires_at.
func (r *OTPRepo) DeleteExpired(ctx context.Context, before time.Time) error {
	now := strconv.FormatInt(before.Unix(), 10)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          aws.String("expires_at <= :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":now": &types.AttributeValueMemberN{Value: now}},
			ProjectionExpression:      aws.String("email, created_at"),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return err
		}
		if err := r.deleteKeys(ctx, out.Items); err != nil {
			return err
		}
		if out.LastEvaluatedKey == nil {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// keysByEmail returns the primary keys of all records for the email.
func (r *OTPRepo) keysByEmail(ctx context.Context, email string) ([]map[string]types.AttributeValue, error) {
	var keys []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    aws.String("email = :e"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":e": &types.AttributeValueMemberS{Value: email}},
			ProjectionExpression:      aws.String("email, created_at"),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		keys = append(keys, out.Items...)
		if out.LastEvaluatedKey == nil {
			return keys, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// deleteKeys batch-deletes the given primary keys in chunks of 25.
func (r *OTPRepo) deleteKeys(ctx context.Context, keys []map[string]types.AttributeValue) error {
	for start := 0; start < len(keys); start += batchDeleteMax {
		end := start + batchDeleteMax
		if end > len(keys) {
			end = len(keys)
		}
		reqs := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			reqs = append(reqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}
		_, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.tableName: reqs},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// otpKey builds the composite primary key for the otp_codes table.
func otpKey(email string, createdAt int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"email":      &types.AttributeValueMemberS{Value: email},
		"created_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(createdAt, 10)},
	}
}
