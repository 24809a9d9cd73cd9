package dynamox

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dogmatiq/encstrset/internal/x/xtesting"
	"github.com/testcontainers/testcontainers-go"
	dynamotc "github.com/testcontainers/testcontainers-go/modules/dynamodb"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewTestClient returns a DynamoDB client for use in a test.
//
// It connects to the endpoint in the ENCSTRSET_TEST_DYNAMODB_ENDPOINT
// environment variable if it is set. Otherwise it starts a DynamoDB Local
// container that is terminated when the test ends.
func NewTestClient(t testing.TB) *dynamodb.Client {
	endpoint := os.Getenv("ENCSTRSET_TEST_DYNAMODB_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://" + startLocal(t)
	}

	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion("us-east-1"),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("encstrset", "encstrset", ""),
		),
		config.WithRetryer(
			func() aws.Retryer {
				return aws.NopRetryer{}
			},
		),
	)
	if err != nil {
		t.Fatal(err)
	}

	return dynamodb.NewFromConfig(cfg)
}

// startLocal starts a DynamoDB Local container and returns its host:port.
func startLocal(t testing.TB) string {
	container, err := dynamotc.Run(
		t.Context(),
		"amazon/dynamodb-local",
		dynamotc.WithDisableTelemetry(),
		testcontainers.WithWaitStrategy(
			// DynamoDB Local answers unauthenticated requests to / with an
			// error status, which is enough to know that it is listening.
			wait.
				ForHTTP("/").
				WithPort("8000").
				WithStatusCodeMatcher(func(int) bool { return true }),
		),
	)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(xtesting.ContextForCleanup(t)); err != nil {
			t.Log(err)
		}
	})

	addr, err := container.ConnectionString(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	return addr
}
