package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// XRayMiddleware opens one segment per request and annotates it with the
// route pattern and response status.
func XRayMiddleware(segmentName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, seg := xray.BeginSegment(c.Request().Context(), segmentName)
			req := c.Request().Clone(ctx)
			c.SetRequest(req)

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			_ = seg.AddAnnotation("route", c.Path())
			_ = seg.AddMetadata("method", req.Method)
			switch status := c.Response().Status; {
			case status >= 500 && err != nil:
				_ = seg.AddError(err)
			case status >= 500:
				seg.Fault = true
			case status >= 400:
				seg.Error = true
			}
			seg.Close(nil)
			return nil
		}
	}
}
