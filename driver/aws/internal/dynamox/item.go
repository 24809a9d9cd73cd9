package dynamox

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Bytes returns the value of the binary attribute with the given name.
//
// The result is never nil, even if the attribute holds zero octets.
func Bytes(item map[string]types.AttributeValue, name string) ([]byte, error) {
	switch a := item[name].(type) {
	case *types.AttributeValueMemberB:
		return append([]byte{}, a.Value...), nil
	case nil:
		return nil, fmt.Errorf("item is corrupt: %q attribute is missing", name)
	default:
		return nil, fmt.Errorf("item is corrupt: %q attribute is %T, want binary", name, a)
	}
}
