package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memoryhub/application/ports"
	"memoryhub/domain/core/entities"
	pkgerrors "memoryhub/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	skProfile = "PROFILE"
	skEmail   = "EMAIL"
)

// UserRepository stores accounts as a profile item plus an email claim item.
// Both are written in one transaction so an email can only be claimed once.
type UserRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client Client, tableName string, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)

type userItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	UserID       string `dynamodbav:"UserID"`
	Email        string `dynamodbav:"Email"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	APIKey       string `dynamodbav:"APIKey"`
	Active       bool   `dynamodbav:"Active"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
}

type emailItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
}

func emailPK(email string) string {
	return "EMAIL#" + strings.ToLower(strings.TrimSpace(email))
}

// Save registers a new user. A taken email yields ErrEmailAlreadyRegistered.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	profile, err := attributevalue.MarshalMap(userItem{
		PK:           userPK(user.ID()),
		SK:           skProfile,
		EntityType:   "USER",
		UserID:       user.ID(),
		Email:        user.Email(),
		PasswordHash: user.PasswordHash(),
		APIKey:       user.APIKey(),
		Active:       user.IsActive(),
		CreatedAt:    user.CreatedAt().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	claim, err := attributevalue.MarshalMap(emailItem{
		PK:         emailPK(user.Email()),
		SK:         skEmail,
		EntityType: "EMAIL",
		UserID:     user.ID(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email claim: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     claim,
				ConditionExpression:      expr.Condition(),
				ExpressionAttributeNames: expr.Names(),
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     profile,
				ConditionExpression:      expr.Condition(),
				ExpressionAttributeNames: expr.Names(),
			}},
		},
	})
	if err != nil {
		var cancelled *types.TransactionCanceledException
		if errors.As(err, &cancelled) && emailClaimFailed(cancelled) {
			return pkgerrors.ErrEmailAlreadyRegistered
		}
		r.logger.Error("Failed to save user to DynamoDB",
			zap.Error(err),
			zap.String("userID", user.ID()),
		)
		return pkgerrors.NewDatabaseError("save user", err)
	}

	return nil
}

// emailClaimFailed reports whether the email claim, the first item of the
// transaction, failed its condition.
func emailClaimFailed(err *types.TransactionCanceledException) bool {
	if len(err.CancellationReasons) == 0 {
		return false
	}
	code := aws.ToString(err.CancellationReasons[0].Code)
	return code == "ConditionalCheckFailed"
}

// GetByID loads a user profile
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skProfile},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrUserNotFound
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt user item %s: %w", item.PK, err)
	}

	return entities.ReconstructUser(item.UserID, item.Email, item.PasswordHash, item.APIKey, item.Active, createdAt), nil
}

// GetByEmail resolves the email claim and then loads the profile
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: emailPK(email)},
			"SK": &types.AttributeValueMemberS{Value: skEmail},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user by email", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrUserNotFound
	}

	var claim emailItem
	if err := attributevalue.UnmarshalMap(out.Item, &claim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal email claim: %w", err)
	}
	return r.GetByID(ctx, claim.UserID)
}
