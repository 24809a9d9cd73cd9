package dynamoset

import (
	"context"
	"crypto/sha256"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/encstrset/driver/aws/internal/dynamox"
)

// Each member is stored as one item.
//
// The item's key is the set name and the SHA-256 digest of the member. DynamoDB
// rejects empty binary key attributes and limits range keys to 1024 octets, so
// the member itself is held in a non-key attribute.
var (
	// setAttr is the hash key. It holds the set name.
	setAttr = "S"

	// digestAttr is the range key. It holds the digest of the member.
	digestAttr = "D"

	// memberAttr holds the member's octets.
	memberAttr = "M"

	// nonExistentAttr is projected to test for an item's existence without
	// fetching its attributes.
	nonExistentAttr = "X"
)

func digest(v []byte) []byte {
	d := sha256.Sum256(v)
	return d[:]
}

// createTable creates the DynamoDB table if it does not already exist.
func (s *store) createTable(ctx context.Context) error {
	return dynamox.CreateTableIfNotExists(
		ctx,
		s.Client,
		s.Table,
		s.OnRequest,
		dynamox.KeyAttr{
			Name:    &setAttr,
			Type:    types.ScalarAttributeTypeS,
			KeyType: types.KeyTypeHash,
		},
		dynamox.KeyAttr{
			Name:    &digestAttr,
			Type:    types.ScalarAttributeTypeB,
			KeyType: types.KeyTypeRange,
		},
	)
}
