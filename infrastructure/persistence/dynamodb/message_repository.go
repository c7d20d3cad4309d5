package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/domain/core/entities"
	"hackmate-backend/domain/core/valueobjects"
	appErrors "hackmate-backend/pkg/errors"
	"hackmate-backend/pkg/utils"
)

// MessageRepository implements ports.MessageRepository on DynamoDB.
// Messages live in one partition per unordered user pair, with the
// RFC3339Nano timestamp in the sort key so range queries come back in
// time order. GSI1 (sender) and GSI2 (receiver) together give the
// per-user feed across all partners.
type MessageRepository struct {
	client        *dynamodb.Client
	tableName     string
	senderIndex   string
	receiverIndex string
	logger        *zap.Logger
}

// NewMessageRepository creates a DynamoDB-backed message repository
func NewMessageRepository(client *dynamodb.Client, tableName, senderIndex, receiverIndex string, logger *zap.Logger) ports.MessageRepository {
	return &MessageRepository{
		client:        client,
		tableName:     tableName,
		senderIndex:   senderIndex,
		receiverIndex: receiverIndex,
		logger:        logger,
	}
}

// messageItem is the DynamoDB item structure for a message
type messageItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	GSI2PK     string `dynamodbav:"GSI2PK"`
	GSI2SK     string `dynamodbav:"GSI2SK"`
	EntityType string `dynamodbav:"EntityType"`
	MessageID  string `dynamodbav:"MessageID"`
	SenderID   string `dynamodbav:"SenderID"`
	ReceiverID string `dynamodbav:"ReceiverID"`
	Content    string `dynamodbav:"Content"`
	Timestamp  string `dynamodbav:"Timestamp"`
}

func convKey(userA, userB string) string {
	return fmt.Sprintf("CONV#%s", entities.PairKey(userA, userB))
}

func messageSortKey(ts, id string) string {
	return fmt.Sprintf("MSG#%s#%s", ts, id)
}

func (item messageItem) toEntity() (*entities.Message, error) {
	id, err := valueobjects.NewMessageIDFromString(item.MessageID)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", item.MessageID, err)
	}
	ts, err := utils.ParseRFC3339(item.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp on message %s: %w", item.MessageID, err)
	}
	return entities.ReconstructMessage(id, item.SenderID, item.ReceiverID, item.Content, ts), nil
}

// Append persists a new message, assigning the server-side timestamp
func (r *MessageRepository) Append(ctx context.Context, msg *entities.Message) (*entities.Message, error) {
	now := time.Now().UTC()
	msg.AssignTimestamp(now)
	ts := now.Format(time.RFC3339Nano)

	item := messageItem{
		PK:         convKey(msg.SenderID(), msg.ReceiverID()),
		SK:         messageSortKey(ts, msg.ID().String()),
		GSI1PK:     userKey(msg.SenderID()),
		GSI1SK:     messageSortKey(ts, msg.ID().String()),
		GSI2PK:     userKey(msg.ReceiverID()),
		GSI2SK:     messageSortKey(ts, msg.ID().String()),
		EntityType: "MESSAGE",
		MessageID:  msg.ID().String(),
		SenderID:   msg.SenderID(),
		ReceiverID: msg.ReceiverID(),
		Content:    msg.Content(),
		Timestamp:  ts,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}
	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to append message",
			zap.Error(err),
			zap.String("message_id", msg.ID().String()),
		)
		return nil, appErrors.NewDatabaseError("append message", err)
	}
	return msg, nil
}

// GetConversation returns every message between the two users in ascending
// timestamp order. Both directions share one partition, so a single query
// covers the whole conversation.
func (r *MessageRepository) GetConversation(ctx context.Context, userA, userB string) ([]*entities.Message, error) {
	msgs := make([]*entities.Message, 0)
	var startKey map[string]types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: convKey(userA, userB)},
				":prefix": &types.AttributeValueMemberS{Value: "MSG#"},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
		}

		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, appErrors.NewDatabaseError("get conversation", err)
		}

		page, err := r.unmarshalMessages(result.Items)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return msgs, nil
}

// GetAllForUser returns every message the user sent or received, newest
// first. Sent and received live on separate indexes; the two descending
// streams are merged and re-sorted.
func (r *MessageRepository) GetAllForUser(ctx context.Context, userID string) ([]*entities.Message, error) {
	sent, err := r.queryIndex(ctx, r.senderIndex, "GSI1PK", userID)
	if err != nil {
		return nil, err
	}
	received, err := r.queryIndex(ctx, r.receiverIndex, "GSI2PK", userID)
	if err != nil {
		return nil, err
	}

	msgs := append(sent, received...)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp().After(msgs[j].Timestamp())
	})
	return msgs, nil
}

func (r *MessageRepository) queryIndex(ctx context.Context, indexName, keyAttr, userID string) ([]*entities.Message, error) {
	msgs := make([]*entities.Message, 0)
	var startKey map[string]types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(indexName),
			KeyConditionExpression: aws.String(fmt.Sprintf("%s = :pk", keyAttr)),
			FilterExpression:       aws.String("EntityType = :type"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":   &types.AttributeValueMemberS{Value: userKey(userID)},
				":type": &types.AttributeValueMemberS{Value: "MESSAGE"},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		}

		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, appErrors.NewDatabaseError("get user messages", err)
		}

		page, err := r.unmarshalMessages(result.Items)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return msgs, nil
}

func (r *MessageRepository) unmarshalMessages(items []map[string]types.AttributeValue) ([]*entities.Message, error) {
	msgs := make([]*entities.Message, 0, len(items))
	for _, raw := range items {
		var item messageItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		msg, err := item.toEntity()
		if err != nil {
			r.logger.Warn("Skipping invalid message item",
				zap.String("message_id", item.MessageID),
				zap.Error(err),
			)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
