package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
)

// API is the subset of the DynamoDB client the repositories use.
type API interface {
	GetItem(ctx context.Context, params *awsv2dynamodb.GetItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *awsv2dynamodb.PutItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *awsv2dynamodb.UpdateItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *awsv2dynamodb.DeleteItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *awsv2dynamodb.QueryInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.QueryOutput, error)
}

type Client struct {
	db        API
	tableName string
}

// NewClient builds an instrumented client. endpoint overrides the service
// endpoint (DynamoDB Local) when non-empty.
func NewClient(ctx context.Context, region, tableName, endpoint string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	client := awsv2dynamodb.NewFromConfig(cfg, func(o *awsv2dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &Client{db: client, tableName: tableName}, nil
}

func NewClientWithAPI(api API, tableName string) *Client {
	return &Client{db: api, tableName: tableName}
}

func (c *Client) table() *string { return aws.String(c.tableName) }

func catalogPK() string                     { return "CATALOG" }
func registryPK() string                    { return "REGISTRY" }
func permSK(permID string) string           { return "PERM#" + permID }
func roleSK(roleID string) string           { return "ROLE#" + roleID }
func userPK(userID string) string           { return "USER#" + userID }
func userMetaSK() string                    { return "META" }
func logPK(collection string) string        { return "LOG#" + collection }
func logEntrySK(entryID string) string      { return "ENTRY#" + entryID }
func overrideSK(permissionID string) string { return permSK(permissionID) }

func key(pk, sk string) map[string]awsv2types.AttributeValue {
	return map[string]awsv2types.AttributeValue{
		"PK": &awsv2types.AttributeValueMemberS{Value: pk},
		"SK": &awsv2types.AttributeValueMemberS{Value: sk},
	}
}

func isConditionalCheckFailure(err error) bool {
	var condErr *awsv2types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

// queryAll collects every item of a key-condition query across pages.
func (c *Client) queryAll(ctx context.Context, input *awsv2dynamodb.QueryInput) ([]map[string]awsv2types.AttributeValue, error) {
	var items []map[string]awsv2types.AttributeValue
	p := awsv2dynamodb.NewQueryPaginator(c.db, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
