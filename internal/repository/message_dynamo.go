package repository

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"golang.org/x/exp/slices"

	"github.com/pickstudio/chat-backend/internal/entity"
)

const channelCreatedIndex = "channel_id-created_at-index"

type dynamoMessageRepository struct {
	db        dynamodbiface.DynamoDBAPI
	tableName string
}

func NewDynamoMessageRepository(db dynamodbiface.DynamoDBAPI, tableName string) *dynamoMessageRepository {
	return &dynamoMessageRepository{db: db, tableName: tableName}
}

func (r *dynamoMessageRepository) Create(ctx context.Context, message entity.Message) error {
	item, err := dynamodbattribute.MarshalMap(message)
	if err != nil {
		return err
	}

	_, err = r.db.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})

	return err
}

func (r *dynamoMessageRepository) ListByChannel(
	ctx context.Context, channelID string,
) ([]entity.Message, error) {
	messages, err := r.queryByChannel(ctx,
		expression.Key("channel_id").Equal(expression.Value(channelID)), true, nil)
	if err != nil {
		return nil, err
	}

	// The index only sorts on created_at; ties need a stable order.
	slices.SortFunc(messages, func(a, b entity.Message) bool {
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}

		return a.MessageID < b.MessageID
	})

	return messages, nil
}

func (r *dynamoMessageRepository) LastByChannel(
	ctx context.Context, channelID string,
) (*entity.Message, error) {
	messages, err := r.queryByChannel(ctx,
		expression.Key("channel_id").Equal(expression.Value(channelID)), false, aws.Int64(1))
	if err != nil {
		return nil, err
	}

	if len(messages) == 0 {
		return nil, nil
	}

	return &messages[0], nil
}

func (r *dynamoMessageRepository) CountSince(
	ctx context.Context, channelID string, since int64,
) (int64, error) {
	cond := expression.Key("channel_id").Equal(expression.Value(channelID)).
		And(expression.Key("created_at").GreaterThanEqual(expression.Value(since)))

	expr, err := expression.NewBuilder().WithKeyCondition(cond).Build()
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.db.QueryPagesWithContext(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(channelCreatedIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    aws.String(dynamodb.SelectCount),
	}, func(page *dynamodb.QueryOutput, lastPage bool) bool {
		count += aws.Int64Value(page.Count)
		return true
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *dynamoMessageRepository) queryByChannel(
	ctx context.Context, cond expression.KeyConditionBuilder, forward bool, limit *int64,
) ([]entity.Message, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(cond).Build()
	if err != nil {
		return nil, err
	}

	messages := []entity.Message{}
	err = r.db.QueryPagesWithContext(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(channelCreatedIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(forward),
		Limit:                     limit,
	}, func(page *dynamodb.QueryOutput, lastPage bool) bool {
		var batch []entity.Message
		if err := dynamodbattribute.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return false
		}

		messages = append(messages, batch...)
		return limit == nil
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}
