package lambda

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/labstack/echo/v4"

	"agency-rbac/internal/ports"
)

type LambdaHandler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// NewLambdaHandler serves API Gateway HTTP API events through the echo router.
// Proxy failures are logged with the invocation's request id.
func NewLambdaHandler(e *echo.Echo, logger ports.Logger) LambdaHandler {
	adapter := echoadapter.NewV2(e)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp, err := adapter.ProxyWithContext(ctx, req)
		if err != nil {
			args := []any{"route_key", req.RouteKey, "error", err}
			if lc, ok := lambdacontext.FromContext(ctx); ok {
				args = append(args, "aws_request_id", lc.AwsRequestID)
			}
			logger.Error(ctx, "lambda proxy failed", args...)
		}
		return resp, err
	}
}
