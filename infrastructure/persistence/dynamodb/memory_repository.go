package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memoryhub/application/ports"
	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"
	pkgerrors "memoryhub/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const entityTypeMemory = "MEMORY"

// MemoryRepository implements ports.MemoryRepository on a single DynamoDB
// table. Memories live under PK=USER#<owner>, SK=MEMORY#<id>, so every read
// targets the base table and can be strongly consistent.
type MemoryRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewMemoryRepository creates a new MemoryRepository
func NewMemoryRepository(client Client, tableName string, logger *zap.Logger) *MemoryRepository {
	return &MemoryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.MemoryRepository = (*MemoryRepository)(nil)

// memoryItem represents the DynamoDB item structure for a memory
type memoryItem struct {
	PK              string                 `dynamodbav:"PK"`
	SK              string                 `dynamodbav:"SK"`
	EntityType      string                 `dynamodbav:"EntityType"`
	MemoryID        string                 `dynamodbav:"MemoryID"`
	UserID          string                 `dynamodbav:"UserID"`
	Content         string                 `dynamodbav:"Content"`
	MemoryType      string                 `dynamodbav:"MemoryType"`
	Priority        string                 `dynamodbav:"Priority"`
	Source          string                 `dynamodbav:"Source"`
	ProjectID       string                 `dynamodbav:"ProjectID,omitempty"`
	Tags            []string               `dynamodbav:"Tags"`
	Metadata        map[string]interface{} `dynamodbav:"Metadata"`
	ImportanceScore int                    `dynamodbav:"ImportanceScore"`
	CreatedAt       string                 `dynamodbav:"CreatedAt"`
}

func userPK(userID string) string              { return "USER#" + userID }
func memorySK(id valueobjects.MemoryID) string { return "MEMORY#" + id.String() }

func memoryKey(userID string, id valueobjects.MemoryID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK": &types.AttributeValueMemberS{Value: memorySK(id)},
	}
}

func toMemoryItem(m *entities.Memory) memoryItem {
	return memoryItem{
		PK:              userPK(m.UserID()),
		SK:              memorySK(m.ID()),
		EntityType:      entityTypeMemory,
		MemoryID:        m.ID().String(),
		UserID:          m.UserID(),
		Content:         m.Content().String(),
		MemoryType:      m.Category().String(),
		Priority:        m.Priority().String(),
		Source:          m.Source().String(),
		ProjectID:       m.ProjectID(),
		Tags:            m.Tags(),
		Metadata:        m.Metadata(),
		ImportanceScore: m.ImportanceScore(),
		CreatedAt:       m.CreatedAt().Format(time.RFC3339Nano),
	}
}

func (item memoryItem) toEntity() (*entities.Memory, error) {
	id, err := valueobjects.NewMemoryIDFromString(item.MemoryID)
	if err != nil {
		return nil, fmt.Errorf("corrupt memory item %s: %w", item.SK, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt memory item %s: %w", item.SK, err)
	}
	return entities.ReconstructMemory(entities.MemoryParams{
		ID:        id,
		UserID:    item.UserID,
		Content:   valueobjects.RestoreMemoryContent(item.Content),
		Category:  valueobjects.Category(item.MemoryType),
		Priority:  valueobjects.Priority(item.Priority),
		Source:    valueobjects.Source(item.Source),
		ProjectID: item.ProjectID,
		Tags:      item.Tags,
		Metadata:  item.Metadata,
		CreatedAt: createdAt,
	}, item.ImportanceScore)
}

// Save persists a memory. Writing an existing ID fails since memories are immutable.
func (r *MemoryRepository) Save(ctx context.Context, memory *entities.Memory) error {
	av, err := attributevalue.MarshalMap(toMemoryItem(memory))
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.NewConflictError("memory already exists")
		}
		r.logger.Error("Failed to save memory to DynamoDB",
			zap.Error(err),
			zap.String("memoryID", memory.ID().String()),
		)
		return pkgerrors.NewDatabaseError("save memory", err)
	}

	return nil
}

// GetByOwnerAndID reads the memory straight from the owner's partition
func (r *MemoryRepository) GetByOwnerAndID(ctx context.Context, userID string, id valueobjects.MemoryID) (*entities.Memory, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            memoryKey(userID, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get memory", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrMemoryNotFound
	}

	var item memoryItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory: %w", err)
	}
	return item.toEntity()
}

// GetByOwner pages through every memory in the owner's partition
func (r *MemoryRepository) GetByOwner(ctx context.Context, userID string) ([]*entities.Memory, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith("MEMORY#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	memories := []*entities.Memory{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
			ConsistentRead:            aws.Bool(true),
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list memories", err)
		}

		var items []memoryItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal memories: %w", err)
		}
		for _, item := range items {
			m, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping unreadable memory", zap.String("sk", item.SK), zap.Error(err))
				continue
			}
			memories = append(memories, m)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return memories, nil
}

// Delete removes a memory from the owner's partition
func (r *MemoryRepository) Delete(ctx context.Context, userID string, id valueobjects.MemoryID) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      memoryKey(userID, id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.ErrMemoryNotFound
		}
		return pkgerrors.NewDatabaseError("delete memory", err)
	}

	return nil
}
