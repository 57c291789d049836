package google

import (
	"errors"

	ai "github.com/spetersoncode/talk2mcp"
	"google.golang.org/genai"
)

// wrapError wraps a Google GenAI error with error categorization.
// genai.APIError does not expose headers, so Retry-After is not available;
// a RESOURCE_EXHAUSTED status is reported as 429.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) {
			// Not an API error, likely a network error handled by heuristics.
			return err
		}
		apiErr = *apiErrPtr
	}

	code := apiErr.Code
	if code == 0 && apiErr.Status == "RESOURCE_EXHAUSTED" {
		code = 429
	}
	return ai.NewStatusError(err.Error(), code, 0, err)
}
