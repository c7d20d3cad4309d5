package dynamodb

import (
	"context"
	"errors"
	"fmt"
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

// ConnectionRepository implements ports.ConnectionRepository on DynamoDB.
// Each request item hangs off the requester's partition with the recipient
// on GSI1. A separate guard item per ordered (from, to) pair is written in
// the same transaction as the request; its conditional put is what makes
// "at most one active request per direction" hold under concurrency.
type ConnectionRepository struct {
	client        *dynamodb.Client
	tableName     string
	incomingIndex string
	idIndex       string
	logger        *zap.Logger
}

// NewConnectionRepository creates a DynamoDB-backed connection repository
func NewConnectionRepository(client *dynamodb.Client, tableName, incomingIndex, idIndex string, logger *zap.Logger) ports.ConnectionRepository {
	return &ConnectionRepository{
		client:        client,
		tableName:     tableName,
		incomingIndex: incomingIndex,
		idIndex:       idIndex,
		logger:        logger,
	}
}

// connectionItem is the DynamoDB item structure for a connection request
type connectionItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	GSI1PK       string `dynamodbav:"GSI1PK"`
	GSI1SK       string `dynamodbav:"GSI1SK"`
	GSI2PK       string `dynamodbav:"GSI2PK"` // CONNID#<id>, lookup by id
	GSI2SK       string `dynamodbav:"GSI2SK"` // always METADATA
	EntityType   string `dynamodbav:"EntityType"`
	ConnectionID string `dynamodbav:"ConnectionID"`
	FromUserID   string `dynamodbav:"FromUserID"`
	ToUserID     string `dynamodbav:"ToUserID"`
	Status       string `dynamodbav:"Status"`
	Message      string `dynamodbav:"Message,omitempty"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	UpdatedAt    string `dynamodbav:"UpdatedAt"`
}

func connectionSortKey(id string) string {
	return fmt.Sprintf("CONN#%s", id)
}

func guardKey(fromUserID, toUserID string) string {
	return fmt.Sprintf("CONNREQ#%s#%s", fromUserID, toUserID)
}

func toConnectionItem(conn *entities.TeamConnection) connectionItem {
	return connectionItem{
		PK:           userKey(conn.FromUserID()),
		SK:           connectionSortKey(conn.ID().String()),
		GSI1PK:       userKey(conn.ToUserID()),
		GSI1SK:       connectionSortKey(conn.ID().String()),
		GSI2PK:       fmt.Sprintf("CONNID#%s", conn.ID().String()),
		GSI2SK:       "METADATA",
		EntityType:   "CONNECTION",
		ConnectionID: conn.ID().String(),
		FromUserID:   conn.FromUserID(),
		ToUserID:     conn.ToUserID(),
		Status:       string(conn.Status()),
		Message:      conn.Message(),
		CreatedAt:    conn.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:    conn.UpdatedAt().UTC().Format(time.RFC3339Nano),
	}
}

func (item connectionItem) toEntity() (*entities.TeamConnection, error) {
	id, err := valueobjects.NewConnectionIDFromString(item.ConnectionID)
	if err != nil {
		return nil, fmt.Errorf("invalid connection id %q: %w", item.ConnectionID, err)
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt on connection %s: %w", item.ConnectionID, err)
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid UpdatedAt on connection %s: %w", item.ConnectionID, err)
	}
	return entities.ReconstructTeamConnection(
		id,
		item.FromUserID,
		item.ToUserID,
		entities.ConnectionStatus(item.Status),
		item.Message,
		createdAt,
		updatedAt,
	), nil
}

// Create persists a pending request and its active-pair guard in one
// transaction. When the guard already exists the whole transaction is
// rejected and the caller gets a duplicate-request error.
func (r *ConnectionRepository) Create(ctx context.Context, conn *entities.TeamConnection) error {
	av, err := attributevalue.MarshalMap(toConnectionItem(conn))
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	guard := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: guardKey(conn.FromUserID(), conn.ToUserID())},
		"SK":           &types.AttributeValueMemberS{Value: "ACTIVE"},
		"EntityType":   &types.AttributeValueMemberS{Value: "CONNECTION_GUARD"},
		"ConnectionID": &types.AttributeValueMemberS{Value: conn.ID().String()},
		"CreatedAt":    &types.AttributeValueMemberS{Value: conn.CreatedAt().UTC().Format(time.RFC3339Nano)},
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                guard,
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      av,
				},
			},
		},
	}

	if _, err := r.client.TransactWriteItems(ctx, input); err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) && hasConditionFailure(canceled) {
			return appErrors.NewDuplicateRequestError(conn.FromUserID(), conn.ToUserID())
		}
		r.logger.Error("Failed to create connection request",
			zap.Error(err),
			zap.String("connection_id", conn.ID().String()),
		)
		return appErrors.NewDatabaseError("create connection", err)
	}
	return nil
}

func hasConditionFailure(canceled *types.TransactionCanceledException) bool {
	for _, reason := range canceled.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

// HasActive reports whether the guard item for the ordered pair exists
func (r *ConnectionRepository) HasActive(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: guardKey(fromUserID, toUserID)},
			"SK": &types.AttributeValueMemberS{Value: "ACTIVE"},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return false, appErrors.NewDatabaseError("check active connection", err)
	}
	return result.Item != nil, nil
}

// GetByID looks a request up through the id index
func (r *ConnectionRepository) GetByID(ctx context.Context, id valueobjects.ConnectionID) (*entities.TeamConnection, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.idIndex),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNID#%s", id.String())},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, appErrors.NewDatabaseError("get connection", err)
	}
	if len(result.Items) == 0 {
		return nil, appErrors.NewNotFoundError("connection")
	}

	var item connectionItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection: %w", err)
	}
	return item.toEntity()
}

// Update persists a status transition, releasing the active-pair guard in
// the same transaction for terminal transitions
func (r *ConnectionRepository) Update(ctx context.Context, conn *entities.TeamConnection, releaseGuard bool) error {
	av, err := attributevalue.MarshalMap(toConnectionItem(conn))
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_exists(PK)"),
			},
		},
	}
	if releaseGuard {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: guardKey(conn.FromUserID(), conn.ToUserID())},
					"SK": &types.AttributeValueMemberS{Value: "ACTIVE"},
				},
			},
		})
	}

	if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		r.logger.Error("Failed to update connection request",
			zap.Error(err),
			zap.String("connection_id", conn.ID().String()),
		)
		return appErrors.NewDatabaseError("update connection", err)
	}
	return nil
}

// ListForUser returns the user's outgoing requests (base table) and
// incoming requests (GSI1), each newest first
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID string) ([]*entities.TeamConnection, []*entities.TeamConnection, error) {
	outgoing, err := r.queryConnections(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: userKey(userID)},
			":prefix": &types.AttributeValueMemberS{Value: "CONN#"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, nil, err
	}

	incoming, err := r.queryConnections(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.incomingIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: userKey(userID)},
			":prefix": &types.AttributeValueMemberS{Value: "CONN#"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, nil, err
	}
	return outgoing, incoming, nil
}

func (r *ConnectionRepository) queryConnections(ctx context.Context, input *dynamodb.QueryInput) ([]*entities.TeamConnection, error) {
	conns := make([]*entities.TeamConnection, 0)
	var startKey map[string]types.AttributeValue
	for {
		input.ExclusiveStartKey = startKey
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, appErrors.NewDatabaseError("list connections", err)
		}

		for _, raw := range result.Items {
			var item connectionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal connection: %w", err)
			}
			conn, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping invalid connection item",
					zap.String("connection_id", item.ConnectionID),
					zap.Error(err),
				)
				continue
			}
			conns = append(conns, conn)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return conns, nil
}
