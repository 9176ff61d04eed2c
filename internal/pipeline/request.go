package pipeline

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Brownie44l1/catdog-api/internal/preprocess"
)

// parseImage decodes the JSON body {"image": "<base64>"} into an image.
func parseImage(body string) (*preprocess.Image, error) {
	var req predictRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON body: %w", ErrInvalidRequest, err)
	}
	if req.Image == nil {
		return nil, fmt.Errorf("%w: missing field 'image'", ErrInvalidRequest)
	}

	data, err := base64.StdEncoding.DecodeString(*req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image: %w", ErrInvalidRequest, err)
	}

	return preprocess.Decode(data)
}
