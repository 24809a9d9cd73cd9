package dynamox

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/encstrset/driver/aws/internal/awsx"
)

// KeyAttr describes an attribute that forms part of a table's primary key.
type KeyAttr struct {
	Name    *string
	Type    types.ScalarAttributeType
	KeyType types.KeyType
}

// CreateTableIfNotExists creates a DynamoDB table with the given key
// attributes if it does not already exist.
//
// It waits for the table to become active before returning.
func CreateTableIfNotExists(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	onRequest func(any) []func(*dynamodb.Options),
	keys ...KeyAttr,
) error {
	in := &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
	}

	for _, k := range keys {
		in.AttributeDefinitions = append(
			in.AttributeDefinitions,
			types.AttributeDefinition{
				AttributeName: k.Name,
				AttributeType: k.Type,
			},
		)

		in.KeySchema = append(
			in.KeySchema,
			types.KeySchemaElement{
				AttributeName: k.Name,
				KeyType:       k.KeyType,
			},
		)
	}

	if _, err := awsx.Do(
		ctx,
		client.CreateTable,
		onRequest,
		in,
	); err != nil {
		if !errors.As(err, new(*types.ResourceInUseException)) {
			return err
		}
	}

	return waitForTable(ctx, client, table)
}

// DeleteTableIfExists deletes a DynamoDB table if it exists.
func DeleteTableIfExists(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	onRequest func(any) []func(*dynamodb.Options),
) error {
	if _, err := awsx.Do(
		ctx,
		client.DeleteTable,
		onRequest,
		&dynamodb.DeleteTableInput{
			TableName: aws.String(table),
		},
	); err != nil {
		if !errors.As(err, new(*types.ResourceNotFoundException)) {
			return err
		}
	}

	return nil
}

// maxTableWait is the longest time to wait for a new table to become active.
const maxTableWait = 5 * time.Minute

func waitForTable(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
) error {
	return dynamodb.
		NewTableExistsWaiter(client).
		Wait(
			ctx,
			&dynamodb.DescribeTableInput{
				TableName: aws.String(table),
			},
			maxTableWait,
		)
}
