package dynamoset

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/encstrset/driver/aws/internal/awsx"
	"github.com/dogmatiq/encstrset/driver/aws/internal/dynamox"
	"github.com/dogmatiq/encstrset/set"
)

var (
	mustExist    = aws.String("attribute_exists(" + digestAttr + ")")
	mustNotExist = aws.String("attribute_not_exists(" + digestAttr + ")")
)

type setimpl struct {
	client    *dynamodb.Client
	table     string
	onRequest func(any) []func(*dynamodb.Options)
	name      types.AttributeValueMemberS
}

func (s *setimpl) Name() string {
	return s.name.Value
}

func (s *setimpl) Has(ctx context.Context, v []byte) (bool, error) {
	out, err := awsx.Do(
		ctx,
		s.client.GetItem,
		s.onRequest,
		&dynamodb.GetItemInput{
			TableName:            &s.table,
			Key:                  s.key(digest(v)),
			ProjectionExpression: &nonExistentAttr,
		},
	)
	if err != nil {
		return false, fmt.Errorf("unable to get set member: %w", err)
	}

	return out.Item != nil, nil
}

func (s *setimpl) TryAdd(ctx context.Context, v []byte) (bool, error) {
	item := s.key(digest(v))
	item[memberAttr] = &types.AttributeValueMemberB{Value: append([]byte{}, v...)}

	_, err := awsx.Do(
		ctx,
		s.client.PutItem,
		s.onRequest,
		&dynamodb.PutItemInput{
			TableName:           &s.table,
			Item:                item,
			ConditionExpression: mustNotExist,
		},
	)

	if errors.As(err, new(*types.ConditionalCheckFailedException)) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("unable to put set member: %w", err)
	}

	return true, nil
}

func (s *setimpl) TryRemove(ctx context.Context, v []byte) (bool, error) {
	_, err := awsx.Do(
		ctx,
		s.client.DeleteItem,
		s.onRequest,
		&dynamodb.DeleteItemInput{
			TableName:           &s.table,
			Key:                 s.key(digest(v)),
			ConditionExpression: mustExist,
		},
	)

	if errors.As(err, new(*types.ConditionalCheckFailedException)) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("unable to delete set member: %w", err)
	}

	return true, nil
}

func (s *setimpl) Len(ctx context.Context) (int, error) {
	n, err := dynamox.Count(ctx, s.client, s.onRequest, s.query())
	if err != nil {
		return 0, fmt.Errorf("unable to count set members: %w", err)
	}
	return n, nil
}

func (s *setimpl) Clear(ctx context.Context) error {
	// The keys are collected before any item is deleted so that the query is
	// not paginating over a table that it is modifying.
	var keys []map[string]types.AttributeValue

	in := s.query()
	in.ProjectionExpression = aws.String("#D")
	in.ExpressionAttributeNames["#D"] = digestAttr

	if err := dynamox.Query(
		ctx,
		s.client,
		s.onRequest,
		in,
		func(item map[string]types.AttributeValue) (bool, error) {
			d, err := dynamox.Bytes(item, digestAttr)
			if err != nil {
				return false, err
			}
			keys = append(keys, s.key(d))
			return true, nil
		},
	); err != nil {
		return fmt.Errorf("unable to query set members: %w", err)
	}

	if err := dynamox.DeleteItems(
		ctx,
		s.client,
		s.onRequest,
		s.table,
		keys,
	); err != nil {
		return fmt.Errorf("unable to delete set members: %w", err)
	}

	return nil
}

func (s *setimpl) Range(ctx context.Context, fn set.RangeFunc) error {
	in := s.query()
	in.ProjectionExpression = aws.String("#M")
	in.ExpressionAttributeNames["#M"] = memberAttr

	return dynamox.Query(
		ctx,
		s.client,
		s.onRequest,
		in,
		func(item map[string]types.AttributeValue) (bool, error) {
			v, err := dynamox.Bytes(item, memberAttr)
			if err != nil {
				return false, err
			}
			return fn(ctx, v)
		},
	)
}

func (s *setimpl) Close() error {
	return nil
}

// key returns the primary key of the item with the given digest.
func (s *setimpl) key(d []byte) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		setAttr:    &s.name,
		digestAttr: &types.AttributeValueMemberB{Value: d},
	}
}

// query returns a new request for the items in the set.
func (s *setimpl) query() *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              &s.table,
		KeyConditionExpression: aws.String(`#S = :S`),
		ExpressionAttributeNames: map[string]string{
			"#S": setAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":S": &s.name,
		},
	}
}
