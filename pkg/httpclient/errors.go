package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/socialgraph/pkg/errors"
)

// remoteError covers the error bodies we know how to read: this module's own
// envelope ({"message","code"}) and Postmark's ({"ErrorCode","Message"}).
type remoteError struct {
	Message      string `json:"message"`
	Code         string `json:"code"`
	PascalMsg    string `json:"Message"`
	PostmarkCode *int   `json:"ErrorCode"`
}

func (e remoteError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.PascalMsg
}

func (e remoteError) code() string {
	if e.Code != "" {
		return e.Code
	}
	if e.PostmarkCode != nil {
		return fmt.Sprintf("REMOTE_%d", *e.PostmarkCode)
	}
	return ""
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an AppError named after serviceName.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var remote remoteError
	if json.Unmarshal(body, &remote) == nil && remote.text() != "" {
		return mapRemoteError(resp.StatusCode, remote.code(), remote.text(), serviceName)
	}
	return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(body))
}

func mapRemoteError(status int, code, message, serviceName string) error {
	qualified := fmt.Sprintf("%s: %s", serviceName, message)

	var appErr *apperrors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = apperrors.NotFoundMessage(qualified)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		appErr = apperrors.InvalidInput(qualified)
	case status == http.StatusUnauthorized:
		appErr = apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		appErr = apperrors.Forbidden(qualified)
	case status == http.StatusServiceUnavailable:
		appErr = apperrors.Unavailable(qualified)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", serviceName, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: qualified, Status: status}
	}
	if code != "" {
		appErr.Code = code
	}
	return appErr
}

// IsClientError reports whether status is 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
