package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mfeld/queuebridge/internal/types"
	"github.com/rs/zerolog"
)

// DynamoStore implements Store using AWS DynamoDB. Callers and members live
// in separate tables, both keyed by QueueID (hash) and UUID (range).
type DynamoStore struct {
	client *dynamodb.Client
	config Config
	logger zerolog.Logger
}

// NewDynamoStore creates a new DynamoDB-backed store.
func NewDynamoStore(ctx context.Context, cfg Config, logger zerolog.Logger) (*DynamoStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == ModeLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint, which hangs when
		// static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoStore{
		client: client,
		config: cfg,
		logger: logger,
	}

	if cfg.Mode == ModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Msg("DynamoDB store initialized")

	return store, nil
}

// NewStore creates the appropriate store based on configuration.
func NewStore(ctx context.Context, logger zerolog.Logger) (Store, error) {
	cfg := LoadConfig()

	switch cfg.Mode {
	case ModeLocal, ModeAWS:
		return NewDynamoStore(ctx, cfg, logger)
	default:
		logger.Info().Msg("using in-memory store (STORE_MODE=memory)")
		return NewMemoryStore(), nil
	}
}

func (s *DynamoStore) CreateCaller(ctx context.Context, caller types.QueueCaller) (types.QueueCaller, error) {
	if caller.CreatedAt.IsZero() {
		caller.CreatedAt = time.Now().UTC()
	}
	if err := s.create(ctx, s.config.CallersTable, caller); err != nil {
		return types.QueueCaller{}, fmt.Errorf("caller %s/%s: %w", caller.QueueID, caller.UUID, err)
	}
	return caller, nil
}

func (s *DynamoStore) GetCaller(ctx context.Context, queueID, uuid string) (types.QueueCaller, error) {
	var caller types.QueueCaller
	if err := s.get(ctx, s.config.CallersTable, queueID, uuid, &caller); err != nil {
		return types.QueueCaller{}, fmt.Errorf("caller %s/%s: %w", queueID, uuid, err)
	}
	return caller, nil
}

func (s *DynamoStore) UpdateCaller(ctx context.Context, queueID, uuid string, upd types.CallerUpdate) (types.QueueCaller, error) {
	update := expression.UpdateBuilder{}
	set := false
	if upd.Name != nil {
		update = update.Set(expression.Name("Name"), expression.Value(*upd.Name))
		set = true
	}
	if upd.Number != nil {
		update = update.Set(expression.Name("Number"), expression.Value(*upd.Number))
		set = true
	}
	if upd.Position != nil {
		update = update.Set(expression.Name("Position"), expression.Value(*upd.Position))
		set = true
	}
	if upd.MemberUUID != nil {
		update = update.Set(expression.Name("MemberUUID"), expression.Value(*upd.MemberUUID))
		set = true
	}
	if upd.Status != nil {
		update = update.Set(expression.Name("Status"), expression.Value(int(*upd.Status)))
		set = true
	}
	if !set {
		return s.GetCaller(ctx, queueID, uuid)
	}

	var caller types.QueueCaller
	if err := s.update(ctx, s.config.CallersTable, queueID, uuid, update, &caller); err != nil {
		return types.QueueCaller{}, fmt.Errorf("caller %s/%s: %w", queueID, uuid, err)
	}
	return caller, nil
}

func (s *DynamoStore) DeleteCaller(ctx context.Context, queueID, uuid string) error {
	if err := s.delete(ctx, s.config.CallersTable, queueID, uuid); err != nil {
		return fmt.Errorf("caller %s/%s: %w", queueID, uuid, err)
	}
	return nil
}

func (s *DynamoStore) CreateMember(ctx context.Context, member types.QueueMember) (types.QueueMember, error) {
	if err := s.create(ctx, s.config.MembersTable, member); err != nil {
		return types.QueueMember{}, fmt.Errorf("member %s/%s: %w", member.QueueID, member.UUID, err)
	}
	return member, nil
}

func (s *DynamoStore) GetMember(ctx context.Context, queueID, uuid string) (types.QueueMember, error) {
	var member types.QueueMember
	if err := s.get(ctx, s.config.MembersTable, queueID, uuid, &member); err != nil {
		return types.QueueMember{}, fmt.Errorf("member %s/%s: %w", queueID, uuid, err)
	}
	return member, nil
}

func (s *DynamoStore) UpdateMember(ctx context.Context, queueID, uuid string, upd types.MemberUpdate) (types.QueueMember, error) {
	update := expression.UpdateBuilder{}
	set := false
	if upd.Number != nil {
		update = update.Set(expression.Name("Number"), expression.Value(*upd.Number))
		set = true
	}
	if upd.Status != nil {
		update = update.Set(expression.Name("Status"), expression.Value(int(*upd.Status)))
		set = true
	}
	if upd.Paused != nil {
		update = update.Set(expression.Name("Paused"), expression.Value(*upd.Paused))
		set = true
	}
	if !set {
		return s.GetMember(ctx, queueID, uuid)
	}

	var member types.QueueMember
	if err := s.update(ctx, s.config.MembersTable, queueID, uuid, update, &member); err != nil {
		return types.QueueMember{}, fmt.Errorf("member %s/%s: %w", queueID, uuid, err)
	}
	return member, nil
}

func (s *DynamoStore) DeleteMember(ctx context.Context, queueID, uuid string) error {
	if err := s.delete(ctx, s.config.MembersTable, queueID, uuid); err != nil {
		return fmt.Errorf("member %s/%s: %w", queueID, uuid, err)
	}
	return nil
}

func itemKey(queueID, uuid string) map[string]dbtypes.AttributeValue {
	return map[string]dbtypes.AttributeValue{
		"QueueID": &dbtypes.AttributeValueMemberS{Value: queueID},
		"UUID":    &dbtypes.AttributeValueMemberS{Value: uuid},
	}
}

func (s *DynamoStore) create(ctx context.Context, table string, record any) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(QueueID) AND attribute_not_exists(#u)"),
		ExpressionAttributeNames: map[string]string{
			"#u": "UUID",
		},
	})
	if err != nil {
		var ccf *dbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to put record: %w", err)
	}
	return nil
}

func (s *DynamoStore) get(ctx context.Context, table, queueID, uuid string, out any) error {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       itemKey(queueID, uuid),
	})
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if len(result.Item) == 0 {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return nil
}

func (s *DynamoStore) update(ctx context.Context, table, queueID, uuid string, update expression.UpdateBuilder, out any) error {
	cond := expression.AttributeExists(expression.Name("QueueID"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       itemKey(queueID, uuid),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              dbtypes.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *dbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update record: %w", err)
	}
	if err := attributevalue.UnmarshalMap(result.Attributes, out); err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return nil
}

func (s *DynamoStore) delete(ctx context.Context, table, queueID, uuid string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(table),
		Key:                 itemKey(queueID, uuid),
		ConditionExpression: aws.String("attribute_exists(QueueID)"),
	})
	if err != nil {
		var ccf *dbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}
