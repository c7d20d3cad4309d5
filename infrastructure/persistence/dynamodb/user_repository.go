// Package dynamodb implements the repository ports on a single DynamoDB
// table. Item key layout:
//
//	USER#<id>        PROFILE                      user profile
//	CONV#<pairKey>   MSG#<timestamp>#<id>         message (GSI1 sender, GSI2 receiver)
//	USER#<from>      CONN#<id>                    connection request (GSI1 recipient)
//	CONNREQ#<from>#<to>  ACTIVE                   active-pair guard
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/domain/core/entities"
	appErrors "hackmate-backend/pkg/errors"
	"hackmate-backend/pkg/utils"
)

// UserRepository implements ports.UserRepository on DynamoDB
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a DynamoDB-backed user repository
func NewUserRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userItem is the DynamoDB item structure for a user profile
type userItem struct {
	PK                  string   `dynamodbav:"PK"`
	SK                  string   `dynamodbav:"SK"`
	EntityType          string   `dynamodbav:"EntityType"`
	UserID              string   `dynamodbav:"UserID"`
	Email               string   `dynamodbav:"Email"`
	Name                string   `dynamodbav:"Name"`
	Bio                 string   `dynamodbav:"Bio,omitempty"`
	Skills              string   `dynamodbav:"Skills,omitempty"`
	College             string   `dynamodbav:"College,omitempty"`
	Course              string   `dynamodbav:"Course,omitempty"`
	Branch              string   `dynamodbav:"Branch,omitempty"`
	Semester            string   `dynamodbav:"Semester,omitempty"`
	Role                string   `dynamodbav:"Role,omitempty"`
	LinkedIn            string   `dynamodbav:"LinkedIn,omitempty"`
	GitHub              string   `dynamodbav:"GitHub,omitempty"`
	PhotoURL            string   `dynamodbav:"PhotoURL,omitempty"`
	TeamStatus          string   `dynamodbav:"TeamStatus,omitempty"`
	ExperienceLevel     string   `dynamodbav:"ExperienceLevel,omitempty"`
	ProjectInterests    []string `dynamodbav:"ProjectInterests,omitempty"`
	HackathonInterests  []string `dynamodbav:"HackathonInterests,omitempty"`
	PreferredTeamSize   string   `dynamodbav:"PreferredTeamSize,omitempty"`
	Availability        string   `dynamodbav:"Availability,omitempty"`
	Communication       []string `dynamodbav:"Communication,omitempty"`
	OnboardingCompleted bool     `dynamodbav:"OnboardingCompleted"`
	CreatedAt           string   `dynamodbav:"CreatedAt"`
	UpdatedAt           string   `dynamodbav:"UpdatedAt"`
}

func userKey(id string) string {
	return fmt.Sprintf("USER#%s", id)
}

func toUserItem(user *entities.User) userItem {
	profile := user.Profile()
	prefs := user.Preferences()
	return userItem{
		PK:                  userKey(user.ID()),
		SK:                  "PROFILE",
		EntityType:          "USER",
		UserID:              user.ID(),
		Email:               user.Email(),
		Name:                profile.Name,
		Bio:                 profile.Bio,
		Skills:              profile.Skills,
		College:             profile.College,
		Course:              profile.Course,
		Branch:              profile.Branch,
		Semester:            profile.Semester,
		Role:                profile.Role,
		LinkedIn:            profile.LinkedIn,
		GitHub:              profile.GitHub,
		PhotoURL:            profile.PhotoURL,
		TeamStatus:          string(prefs.TeamStatus),
		ExperienceLevel:     string(prefs.ExperienceLevel),
		ProjectInterests:    prefs.ProjectInterests,
		HackathonInterests:  prefs.HackathonInterests,
		PreferredTeamSize:   prefs.PreferredTeamSize,
		Availability:        prefs.AvailabilityPreference,
		Communication:       prefs.CommunicationPreferences,
		OnboardingCompleted: user.OnboardingCompleted(),
		CreatedAt:           user.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:           user.UpdatedAt().UTC().Format(time.RFC3339Nano),
	}
}

func (item userItem) toEntity() (*entities.User, error) {
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt on user %s: %w", item.UserID, err)
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid UpdatedAt on user %s: %w", item.UserID, err)
	}

	return entities.ReconstructUser(
		item.UserID,
		item.Email,
		entities.Profile{
			Name:     item.Name,
			Bio:      item.Bio,
			Skills:   item.Skills,
			College:  item.College,
			Course:   item.Course,
			Branch:   item.Branch,
			Semester: item.Semester,
			Role:     item.Role,
			LinkedIn: item.LinkedIn,
			GitHub:   item.GitHub,
			PhotoURL: item.PhotoURL,
		},
		entities.TeamPreferences{
			TeamStatus:               entities.TeamStatus(item.TeamStatus),
			ExperienceLevel:          entities.ExperienceLevel(item.ExperienceLevel),
			ProjectInterests:         item.ProjectInterests,
			HackathonInterests:       item.HackathonInterests,
			PreferredTeamSize:        item.PreferredTeamSize,
			AvailabilityPreference:   item.Availability,
			CommunicationPreferences: item.Communication,
		},
		item.OnboardingCompleted,
		createdAt,
		updatedAt,
	), nil
}

// Save persists a user profile, overwriting any existing record
func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	av, err := attributevalue.MarshalMap(toUserItem(user))
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}
	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save user",
			zap.Error(err),
			zap.String("user_id", user.ID()),
		)
		return appErrors.NewDatabaseError("save user", err)
	}
	return nil
}

// GetByID retrieves a user profile by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userKey(id)},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, appErrors.NewDatabaseError("get user", err)
	}
	if result.Item == nil {
		return nil, appErrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return item.toEntity()
}

// List scans all user profiles except the excluded user, applying discover
// filters server side. "all" and empty filter values match everything;
// project interest is a containment check against the interests list.
func (r *UserRepository) List(ctx context.Context, excludeUserID string, filter ports.DiscoverFilter) ([]*entities.User, error) {
	cond := expression.Name("EntityType").Equal(expression.Value("USER")).
		And(expression.Name("UserID").NotEqual(expression.Value(excludeUserID)))

	if v := filter.TeamStatus; v != "" && v != "all" {
		cond = cond.And(expression.Name("TeamStatus").Equal(expression.Value(v)))
	}
	if v := filter.ExperienceLevel; v != "" && v != "all" {
		cond = cond.And(expression.Name("ExperienceLevel").Equal(expression.Value(v)))
	}
	if v := filter.ProjectInterest; v != "" && v != "all" {
		cond = cond.And(expression.Name("ProjectInterests").Contains(v))
	}

	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build filter expression: %w", err)
	}

	users := make([]*entities.User, 0)
	var startKey map[string]types.AttributeValue
	for {
		input := &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		}

		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, appErrors.NewDatabaseError("list users", err)
		}

		for _, raw := range result.Items {
			var item userItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping unreadable user item", zap.Error(err))
				continue
			}
			user, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping invalid user item",
					zap.String("user_id", item.UserID),
					zap.Error(err),
				)
				continue
			}
			users = append(users, user)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return users, nil
}
