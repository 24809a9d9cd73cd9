package dynamoset

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/encstrset/internal/syncx"
	"github.com/dogmatiq/encstrset/set"
)

// store is an implementation of [set.Store] that persists to a DynamoDB
// table.
type store struct {
	Client    *dynamodb.Client
	Table     string
	OnRequest func(any) []func(*dynamodb.Options)

	createTableOnce syncx.SucceedOnce
}

// NewStore returns a new [set.Store] that uses the given DynamoDB
// client to store set members in the given table.
//
// The table is created the first time a set is opened, if it does not already
// exist.
func NewStore(
	client *dynamodb.Client,
	table string,
	options ...Option,
) set.Store {
	if table == "" {
		panic("table name must not be empty")
	}

	s := &store{
		Client: client,
		Table:  table,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Option is a functional option that changes the behavior of [NewStore].
type Option func(*store)

// WithRequestHook is an [Option] that configures fn as a pre-request hook.
//
// Before each DynamoDB API request, fn is passed a pointer to the input struct,
// e.g. [dynamodb.GetItemInput], which it may modify in-place. It may be called
// with any DynamoDB request type. The types of requests used may change in any
// version without notice.
//
// Any functions returned by fn will be applied to the request's options before
// the request is sent.
func WithRequestHook(fn func(any) []func(*dynamodb.Options)) Option {
	return func(s *store) {
		s.OnRequest = fn
	}
}

// Open returns the set with the given name.
func (s *store) Open(ctx context.Context, name string) (set.Set, error) {
	if err := s.createTableOnce.Do(ctx, s.createTable); err != nil {
		return nil, err
	}

	return &setimpl{
		client:    s.Client,
		table:     s.Table,
		onRequest: s.OnRequest,
		name:      types.AttributeValueMemberS{Value: name},
	}, nil
}
