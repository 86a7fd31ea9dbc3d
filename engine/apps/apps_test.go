package apps

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListActiveConnections(ctx context.Context, userID string) ([]Connection, error) {
	args := m.Called(ctx, userID)
	conns, _ := args.Get(0).([]Connection)
	return conns, args.Error(1)
}

func samplePlan() *plan.Plan {
	url := "https://sheets.example.com"
	return &plan.Plan{
		Name:    "apps",
		Trigger: plan.NewManualTrigger(),
		Actions: []plan.Action{
			plan.NewAction("mail", &plan.SendEmailParams{To: "a@example.com"}, "sheet"),
			plan.NewAction("sheet", &plan.HTTPRequestParams{URL: &url, Auth: &plan.AuthRef{App: "Google_Sheets"}}, "mail2"),
			plan.NewAction("mail2", &plan.SendEmailParams{To: "b@example.com"}),
			plan.NewAction("plain", &plan.HTTPRequestParams{URL: &url}),
		},
	}
}

func TestResolveRequiredApps(t *testing.T) {
	t.Run("Should map actions to sorted unique apps", func(t *testing.T) {
		assert.Equal(t, []string{"email", "google_sheets"}, ResolveRequiredApps(samplePlan()))
	})

	t.Run("Should require nothing for plain requests", func(t *testing.T) {
		p := &plan.Plan{Name: "x", Trigger: plan.NewManualTrigger(), Actions: []plan.Action{
			plan.NewAction("d", &plan.SetDataParams{Values: map[string]any{"a": 1}}),
		}}
		assert.Empty(t, ResolveRequiredApps(p))
	})
}

func TestCheckAvailability(t *testing.T) {
	t.Run("Should report unsupported apps before missing connections", func(t *testing.T) {
		err := CheckAvailability([]string{"email", "slack"}, NewRegistry("email"), nil)
		var availErr *AvailabilityError
		require.ErrorAs(t, err, &availErr)
		assert.ErrorIs(t, err, ErrUnsupportedApps)
		assert.Equal(t, []string{"slack"}, availErr.Apps)
	})

	t.Run("Should report missing connections", func(t *testing.T) {
		err := CheckAvailability([]string{"email", "slack"}, NewRegistry("EMAIL", "slack"), []string{"Slack"})
		var availErr *AvailabilityError
		require.ErrorAs(t, err, &availErr)
		assert.ErrorIs(t, err, ErrMissingConnections)
		assert.Equal(t, []string{"email"}, availErr.Apps)
		assert.Equal(t, "Missing connections for apps: email", err.Error())
	})

	t.Run("Should pass when every app is supported and connected", func(t *testing.T) {
		assert.NoError(t, CheckAvailability([]string{"email"}, NewRegistry("email"), []string{"email"}))
		assert.NoError(t, CheckAvailability(nil, NewRegistry(), nil))
	})
}

func TestCheckSupported(t *testing.T) {
	t.Run("Should ignore connections and report only unsupported apps", func(t *testing.T) {
		err := checkSupported([]string{"email", "slack", "notion"}, NewRegistry("email"))
		var availErr *AvailabilityError
		require.ErrorAs(t, err, &availErr)
		assert.ErrorIs(t, err, ErrUnsupportedApps)
		assert.Equal(t, []string{"slack", "notion"}, availErr.Apps)
	})

	t.Run("Should pass supported apps regardless of connections", func(t *testing.T) {
		assert.NoError(t, checkSupported([]string{"email"}, NewRegistry("email")))
	})

	t.Run("Should require a registry", func(t *testing.T) {
		err := checkSupported([]string{"email"}, nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnsupportedApps)
	})
}

func TestChecker_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("Should not call the connection service for unsupported apps", func(t *testing.T) {
		lister := &mockLister{}
		checker := NewChecker(NewRegistry("email"), lister)
		_, err := checker.Check(ctx, "user-1", samplePlan())
		assert.ErrorIs(t, err, ErrUnsupportedApps)
		lister.AssertNotCalled(t, "ListActiveConnections", mock.Anything, mock.Anything)
	})

	t.Run("Should report missing connections from the lister", func(t *testing.T) {
		lister := &mockLister{}
		lister.On("ListActiveConnections", ctx, "user-1").
			Return([]Connection{{ServiceName: "email"}}, nil).Once()
		checker := NewChecker(NewRegistry("email", "google_sheets"), lister)
		_, err := checker.Check(ctx, "user-1", samplePlan())
		var availErr *AvailabilityError
		require.ErrorAs(t, err, &availErr)
		assert.ErrorIs(t, err, ErrMissingConnections)
		assert.Equal(t, []string{"google_sheets"}, availErr.Apps)
		lister.AssertExpectations(t)
	})

	t.Run("Should check the user's connections", func(t *testing.T) {
		lister := &mockLister{}
		lister.On("ListActiveConnections", ctx, "user-1").
			Return([]Connection{{ServiceName: "email"}, {ServiceName: "google_sheets"}}, nil).Once()
		checker := NewChecker(NewRegistry("email", "google_sheets"), lister)
		apps, err := checker.Check(ctx, "user-1", samplePlan())
		require.NoError(t, err)
		assert.Equal(t, []string{"email", "google_sheets"}, apps)
		lister.AssertExpectations(t)
	})

	t.Run("Should wrap connection service failures", func(t *testing.T) {
		lister := &mockLister{}
		lister.On("ListActiveConnections", ctx, "user-1").Return(nil, errors.New("boom"))
		checker := NewChecker(NewRegistry("email", "google_sheets"), lister)
		_, err := checker.Check(ctx, "user-1", samplePlan())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestCachedConnectionLister(t *testing.T) {
	t.Run("Should serve repeated lookups from the cache", func(t *testing.T) {
		ctx := context.Background()
		lister := &mockLister{}
		lister.On("ListActiveConnections", ctx, "u").Return([]Connection{{ServiceName: "email"}}, nil).Twice()
		cached := NewCachedConnectionLister(lister, 8, time.Minute)
		for range 3 {
			conns, err := cached.ListActiveConnections(ctx, "u")
			require.NoError(t, err)
			assert.Len(t, conns, 1)
		}
		cached.Invalidate("u")
		_, err := cached.ListActiveConnections(ctx, "u")
		require.NoError(t, err)
		lister.AssertNumberOfCalls(t, "ListActiveConnections", 2)
	})
}

func TestHTTPConnectionLister(t *testing.T) {
	t.Run("Should list active connections for a user", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/u-1/connections", r.URL.Path)
			assert.Equal(t, "active", r.URL.Query().Get("status"))
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
				{"id": "1", "service_name": "email", "status": "active"},
				{"id": "2", "service_name": "slack", "status": "revoked"},
			}})
		}))
		defer srv.Close()
		lister, err := NewHTTPConnectionLister(srv.URL, "secret", time.Second)
		require.NoError(t, err)
		conns, err := lister.ListActiveConnections(context.Background(), "u-1")
		require.NoError(t, err)
		require.Len(t, conns, 1)
		assert.Equal(t, "email", conns[0].ServiceName)
	})

	t.Run("Should reject a missing base URL", func(t *testing.T) {
		_, err := NewHTTPConnectionLister("", "", time.Second)
		assert.Error(t, err)
	})
}
