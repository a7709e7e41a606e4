package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// CreateTablesIfNotExist creates the caller and member tables for local
// development. Both share the same key schema: QueueID hash, UUID range.
func CreateTablesIfNotExist(ctx context.Context, client *dynamodb.Client, config Config, logger zerolog.Logger) error {
	for _, table := range []string{config.CallersTable, config.MembersTable} {
		_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table),
		})
		if err == nil {
			logger.Info().Str("table", table).Msg("table already exists")
			continue
		}

		_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(table),
			KeySchema: []dbtypes.KeySchemaElement{
				{AttributeName: aws.String("QueueID"), KeyType: dbtypes.KeyTypeHash},
				{AttributeName: aws.String("UUID"), KeyType: dbtypes.KeyTypeRange},
			},
			AttributeDefinitions: []dbtypes.AttributeDefinition{
				{AttributeName: aws.String("QueueID"), AttributeType: dbtypes.ScalarAttributeTypeS},
				{AttributeName: aws.String("UUID"), AttributeType: dbtypes.ScalarAttributeTypeS},
			},
			BillingMode: dbtypes.BillingModePayPerRequest,
		})
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
		logger.Info().Str("table", table).Msg("table created")
	}

	return nil
}
