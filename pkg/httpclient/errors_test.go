package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/socialgraph/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantCode   string
		wantIs     error
	}{
		{
			name:       "envelope not found",
			status:     http.StatusNotFound,
			body:       `{"success":false,"message":"User not found","code":"NOT_FOUND"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantIs:     apperrors.ErrNotFound,
		},
		{
			name:       "postmark inactive recipient",
			status:     http.StatusUnprocessableEntity,
			body:       `{"ErrorCode":406,"Message":"You tried to send to a recipient that has been marked as inactive."}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "REMOTE_406",
			wantIs:     apperrors.ErrInvalidInput,
		},
		{
			name:       "postmark bad token",
			status:     http.StatusUnauthorized,
			body:       `{"ErrorCode":10,"Message":"No Account or Server API tokens were supplied in the HTTP headers."}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "REMOTE_10",
			wantIs:     apperrors.ErrUnauthorized,
		},
		{
			name:       "forbidden",
			status:     http.StatusForbidden,
			body:       `{"message":"nope"}`,
			wantStatus: http.StatusForbidden,
			wantIs:     apperrors.ErrForbidden,
		},
		{
			name:       "unavailable",
			status:     http.StatusServiceUnavailable,
			body:       `{"message":"maintenance"}`,
			wantStatus: http.StatusServiceUnavailable,
			wantIs:     apperrors.ErrServiceUnavail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, tt.body), "postmark")
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr), "want AppError, got %T", err)
			assert.Equal(t, tt.wantStatus, appErr.Status)
			assert.True(t, strings.HasPrefix(appErr.Message, "postmark: "))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, appErr.Code)
			}
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusInternalServerError, `{"message":"db down","code":"INTERNAL"}`), "postmark")
	require.Error(t, err)

	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))
	assert.Contains(t, err.Error(), "postmark server error (500/INTERNAL): db down")
}

func TestParseResponseError_Unstructured(t *testing.T) {
	for _, body := range []string{"", "<html>Bad Gateway</html>", `{"unrelated":true}`} {
		err := ParseResponseError(makeResponse(http.StatusBadGateway, body), "postmark")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postmark returned status 502")
	}
}

func TestParseResponseError_OtherStatusKeepsStatus(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusTooManyRequests, `{"message":"slow down","code":"RATE"}`), "postmark")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
	assert.Equal(t, "RATE", appErr.Code)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(399))
	assert.False(t, IsClientError(500))
}
