package handlers

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/Brownie44l1/catdog-api/internal/pipeline"
	"github.com/aws/aws-lambda-go/events"
)

// Lambda adapts an API Gateway HTTP API (payload v2) invocation.
func (h *Handler) Lambda(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return toLambda(pipeline.Envelope(fmt.Errorf("%w: body is not valid base64: %w", pipeline.ErrInvalidRequest, err))), nil
		}
		body = string(decoded)
	}

	resp := h.pipeline.Handle(ctx, pipeline.Event{
		Method:    req.RequestContext.HTTP.Method,
		Path:      req.RequestContext.HTTP.Path,
		Body:      body,
		RequestID: req.RequestContext.RequestID,
	})
	return toLambda(resp), nil
}

func toLambda(resp pipeline.Response) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}
}
