package strava

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/summitchronicles/summit-tracker/internal/ptr"
	"github.com/summitchronicles/summit-tracker/internal/sqlite"
	"github.com/summitchronicles/summit-tracker/internal/testhelpers"
)

var testCredentials = Credentials{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	RefreshToken: "refresh-token",
}

// newTestServer serves a token endpoint plus a single page of activities.
func newTestServer(t *testing.T, activities []Activity, tokenRequests *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenRequests != nil {
			tokenRequests.Add(1)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if got := r.PostFormValue("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want %q", got, "refresh_token")
		}
		if err := json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-access-token",
			"expires_at":   time.Now().Add(time.Hour).Unix(),
		}); err != nil {
			t.Errorf("encode token response: %v", err)
		}
	})
	mux.HandleFunc("GET /api/v3/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-access-token" {
			t.Errorf("Authorization = %q", got)
		}
		page := r.URL.Query().Get("page")
		payload := activities
		if page != "1" {
			payload = nil
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode activities: %v", err)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client := NewClient(testCredentials, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	client.baseURL = server.URL
	return client
}

func TestClient_tokenIsCachedAcrossRequests(t *testing.T) {
	var tokenRequests atomic.Int64
	server := newTestServer(t, []Activity{{ID: 1, Name: "Run"}}, &tokenRequests)
	client := newTestClient(t, server)
	ctx := t.Context()

	for range 3 {
		if _, err := client.Activities(ctx, 1, 10); err != nil {
			t.Fatalf("Activities() error = %v", err)
		}
	}
	if got := tokenRequests.Load(); got != 1 {
		t.Errorf("token requests = %d, want 1", got)
	}
}

func TestClient_unconfiguredReturnsSentinel(t *testing.T) {
	client := NewClient(Credentials{}, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if _, err := client.Activities(t.Context(), 1, 10); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Activities() error = %v, want ErrNotConfigured", err)
	}
}

func TestSyncer_upsertsActivities(t *testing.T) {
	activities := []Activity{
		{
			ID:                 12345,
			Name:               "Morning Trail Run",
			SportType:          "TrailRun",
			StartDate:          "2025-09-08T06:30:00Z",
			Distance:           10250,
			MovingTime:         3900,
			TotalElevationGain: 640,
			SufferScore:        ptr.Ref(55.0),
		},
		{
			ID:        12346,
			Name:      "Recovery walk",
			SportType: "Walk",
			StartDate: "2025-09-09T07:00:00Z",
			Distance:  3000,
		},
	}
	server := newTestServer(t, activities, nil)
	client := newTestClient(t, server)
	ctx := t.Context()

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	syncer := NewSyncer(client, db, logger)
	for run := range 2 {
		count, err := syncer.Sync(ctx, 100)
		if err != nil {
			t.Fatalf("Sync() run %d error = %v", run, err)
		}
		if count != 2 {
			t.Errorf("Sync() run %d count = %d, want 2", run, count)
		}
	}

	var rows int
	if err := db.ReadOnly.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cardio_activities").Scan(&rows); err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if rows != 2 {
		t.Errorf("stored rows = %d, want 2 after repeated syncs", rows)
	}

	var intensity string
	var rpe float64
	if err := db.ReadOnly.QueryRowContext(ctx,
		"SELECT training_intensity, estimated_rpe FROM cardio_activities WHERE id = 12345").
		Scan(&intensity, &rpe); err != nil {
		t.Fatalf("read activity: %v", err)
	}
	if intensity != "moderate" {
		t.Errorf("training_intensity = %q, want %q", intensity, "moderate")
	}
	if rpe != 8 {
		t.Errorf("estimated_rpe = %v, want 8", rpe)
	}
}

func TestSyncer_unconfigured(t *testing.T) {
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	syncer := NewSyncer(NewClient(Credentials{}, logger), db, logger)
	if _, err := syncer.Sync(t.Context(), 10); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Sync() error = %v, want ErrNotConfigured", err)
	}
}
