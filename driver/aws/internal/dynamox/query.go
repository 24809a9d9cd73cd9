package dynamox

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Query calls fn for each item that matches in, one page at a time, until fn
// returns false or an error.
//
// onRequest is called once with in, before the first page is requested. The
// options it returns are used for every page.
func Query(
	ctx context.Context,
	client *dynamodb.Client,
	onRequest func(any) []func(*dynamodb.Options),
	in *dynamodb.QueryInput,
	fn func(map[string]types.AttributeValue) (bool, error),
) error {
	pages, options := paginate(client, onRequest, in)

	for pages.HasMorePages() {
		out, err := pages.NextPage(ctx, options...)
		if err != nil {
			return err
		}

		for _, item := range out.Items {
			if ok, err := fn(item); !ok || err != nil {
				return err
			}
		}
	}

	return nil
}

// Count returns the number of items that match in without fetching them.
func Count(
	ctx context.Context,
	client *dynamodb.Client,
	onRequest func(any) []func(*dynamodb.Options),
	in *dynamodb.QueryInput,
) (int, error) {
	in.Select = types.SelectCount
	pages, options := paginate(client, onRequest, in)

	n := 0
	for pages.HasMorePages() {
		out, err := pages.NextPage(ctx, options...)
		if err != nil {
			return 0, err
		}
		n += int(out.Count)
	}

	return n, nil
}

func paginate(
	client *dynamodb.Client,
	onRequest func(any) []func(*dynamodb.Options),
	in *dynamodb.QueryInput,
) (*dynamodb.QueryPaginator, []func(*dynamodb.Options)) {
	var options []func(*dynamodb.Options)
	if onRequest != nil {
		options = onRequest(in)
	}
	return dynamodb.NewQueryPaginator(client, in), options
}
