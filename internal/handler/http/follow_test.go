package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/socialgraph/internal/domain"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
	"github.com/utafrali/socialgraph/pkg/pagination"
)

func TestFollowToggle(t *testing.T) {
	tests := []struct {
		action  domain.FollowAction
		wantMsg string
	}{
		{action: domain.Followed, wantMsg: "Followed"},
		{action: domain.Unfollowed, wantMsg: "Unfollowed"},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			f := newRouterFixture(t)
			me := sampleUser(aliceID, "alice")
			f.svc.On("ToggleFollow", mock.Anything, aliceID, bobID).Return(tt.action, me, nil)

			rec := f.do(t, http.MethodPost, "/api/v1/users/follow/"+bobID, nil, f.token(t, aliceID))

			require.Equal(t, http.StatusOK, rec.Code)
			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, aliceID, resp.Data.(map[string]any)["id"])
		})
	}
}

func TestFollowToggle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "self",
			err:        apperrors.InvalidInput("You cannot follow yourself"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "You cannot follow yourself",
		},
		{
			name:       "unknown target",
			err:        apperrors.NotFound("user"),
			wantStatus: http.StatusNotFound,
			wantMsg:    "User not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.svc.On("ToggleFollow", mock.Anything, aliceID, bobID).Return(domain.FollowAction(""), nil, tt.err)

			rec := f.do(t, http.MethodPost, "/api/v1/users/follow/"+bobID, nil, f.token(t, aliceID))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeResponse(t, rec).Message)
		})
	}
}

func TestFollowers_Paginated(t *testing.T) {
	f := newRouterFixture(t)
	params := pagination.Params{Page: 2, PerPage: 1, Offset: 1}
	result := pagination.NewResult([]domain.FollowSummary{{ID: aliceID, Username: "alice"}}, 3, params)
	f.svc.On("ListFollowers", mock.Anything, bobID, params).Return(result, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/users/followers/"+bobID+"?page=2&per_page=1", nil, f.token(t, aliceID))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.EqualValues(t, 3, data["total_count"])
	assert.EqualValues(t, 3, data["total_pages"])
	assert.Equal(t, true, data["has_next"])
	assert.Len(t, data["items"], 1)
}

func TestFollowing_UnknownUser(t *testing.T) {
	f := newRouterFixture(t)
	f.svc.On("ListFollowing", mock.Anything, bobID, pagination.DefaultParams()).
		Return(pagination.Result[domain.FollowSummary]{}, apperrors.NotFound("user"))

	rec := f.do(t, http.MethodGet, "/api/v1/users/following/"+bobID, nil, f.token(t, aliceID))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeResponse(t, rec).Message)
}

func TestFollowing_MalformedID(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/users/following/42", nil, f.token(t, aliceID))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
