package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/interview-prep/studyclient/internal/models"
)

// ErrNetwork wraps transport failures where no response was received.
var ErrNetwork = errors.New("network error")

const networkMessage = "Network error: could not reach the server"

// Error is a non-2xx response reduced to its human readable message.
type Error struct {
	Status  int
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

func parseError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message any    `json:"message"`
		Detail  any    `json:"detail"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Code
		if s, ok := body.Message.(string); ok && s != "" {
			apiErr.Message = s
		} else if s, ok := body.Detail.(string); ok && s != "" {
			apiErr.Message = s
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return apiErr
}

// Message reduces any error returned by the client to one display string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrNetwork):
		return networkMessage
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	}
	return err.Error()
}

// IsRefineLimited reports whether err is the once-per-day plan refinement
// limit. The structured code is checked first; older servers only say so in
// the message text.
func IsRefineLimited(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == models.CodeRefineRateLimited {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "once per day")
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
