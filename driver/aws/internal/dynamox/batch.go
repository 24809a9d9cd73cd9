package dynamox

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/encstrset/driver/aws/internal/awsx"
)

// maxBatchWrite is the largest number of requests accepted by a single
// BatchWriteItem call.
const maxBatchWrite = 25

// DeleteItems deletes the items with the given keys from table.
//
// Items that DynamoDB reports as unprocessed are resubmitted until every item
// is deleted or ctx is cancelled.
func DeleteItems(
	ctx context.Context,
	client *dynamodb.Client,
	onRequest func(any) []func(*dynamodb.Options),
	table string,
	keys []map[string]types.AttributeValue,
) error {
	pending := make([]types.WriteRequest, 0, len(keys))
	for _, k := range keys {
		pending = append(
			pending,
			types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: k},
			},
		)
	}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := pending[:min(len(pending), maxBatchWrite)]
		pending = pending[len(batch):]

		out, err := awsx.Do(
			ctx,
			client.BatchWriteItem,
			onRequest,
			&dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					table: batch,
				},
			},
		)
		if err != nil {
			return fmt.Errorf("unable to delete %d item(s): %w", len(batch), err)
		}

		pending = append(pending, out.UnprocessedItems[table]...)
	}

	return nil
}
