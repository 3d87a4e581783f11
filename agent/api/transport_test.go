package api_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/absmach/cartridge/agent"
	"github.com/absmach/cartridge/agent/api"
	"github.com/absmach/cartridge/agent/mocks"
	pkgerrors "github.com/absmach/cartridge/pkg/errors"
	"github.com/absmach/cartridge/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, svc agent.Service) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(api.MakeHandler(svc, slog.Default(), "instance-1"))
	t.Cleanup(ts.Close)

	return ts
}

func TestStatus(t *testing.T) {
	t.Parallel()

	svc := mocks.NewService(t)
	svc.On("Status", mock.Anything).Return(agent.Status{
		MemberID:  "php.m1",
		ClusterID: "php.c1",
		State:     agent.ArtifactsUpdating,
		Since:     time.Now(),
		Scope:     "1-50",
	}).Once()

	res, err := http.Get(newServer(t, svc).URL + "/status")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "php.m1", body["member_id"])
	assert.Equal(t, "artifacts_updating", body["state"])
	assert.Equal(t, "1-50", body["tenant_scope"])
}

func TestListRepositories(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc   string
		repos  []repository.State
		err    error
		status int
		total  float64
	}{
		{
			desc: "lists repositories without credentials",
			repos: []repository.State{
				{TenantID: 1, RepoURL: "https://git.example.com/t1.git", Password: "secret", LastCommitID: "abc"},
				{TenantID: 2, RepoURL: "https://git.example.com/t2.git", LastError: "unreachable"},
			},
			status: http.StatusOK,
			total:  2,
		},
		{
			desc:   "empty list",
			status: http.StatusOK,
		},
		{
			desc:   "service failure",
			err:    errors.New("storage unavailable"),
			status: http.StatusInternalServerError,
		},
		{
			desc:   "closed service",
			err:    pkgerrors.ErrClosed,
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewService(t)
			svc.On("Repositories", mock.Anything).Return(tc.repos, tc.err).Once()

			res, err := http.Get(newServer(t, svc).URL + "/repositories")
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, tc.status, res.StatusCode)
			if tc.err != nil {
				return
			}

			var body struct {
				Total        float64          `json:"total"`
				Repositories []map[string]any `json:"repositories"`
			}
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.Equal(t, tc.total, body.Total)
			assert.Len(t, body.Repositories, len(tc.repos))
			for _, r := range body.Repositories {
				assert.NotContains(t, r, "password")
				assert.NotContains(t, r, "Password")
			}
		})
	}
}

func TestMetricsExposed(t *testing.T) {
	t.Parallel()

	res, err := http.Get(newServer(t, mocks.NewService(t)).URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
}
