//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	handler "github.com/samirrijal/usngrid/internal/adapters/http"
	"github.com/samirrijal/usngrid/internal/adapters/postgres"
	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
	"github.com/samirrijal/usngrid/internal/pkg/config"
)

// setupTestDB connects to the test database. The viewports migration must
// have been applied (go run ./cmd/migrate).
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("usngrid-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

// setupTestDeps creates dependencies with a real DB and repo, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	grid := usecases.NewGridService(nil, nil, usecases.DefaultGridOptions())
	return &handler.Dependencies{
		Grid:      grid,
		Convert:   usecases.NewConvertService(),
		Viewports: usecases.NewViewportService(postgres.NewViewportRepo(db), grid),
		DB:        db,
	}
}

// TestViewports_Integration_Lifecycle creates, reads, lists, renders and
// deletes a viewport against a real database.
func TestViewports_Integration_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	body := `{"name":"integration potomac","bounds":{"south":38.5,"north":39.2,"west":-77.6,"east":-76.8},"zoom":11,"datum":"nad83","intervals":["10k"]}`
	req := httptest.NewRequest("POST", "/v1/viewports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created domain.SavedViewport
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("database did not assign id and created_at: %+v", created)
	}
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM viewports WHERE id = $1`, created.ID)
	})

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/viewports/"+created.ID, nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	var got domain.SavedViewport
	json.NewDecoder(resp.Body).Decode(&got)
	if got.Name != "integration potomac" || got.Bounds != created.Bounds {
		t.Errorf("get returned %+v", got)
	}
	if len(got.Intervals) != 1 || got.Intervals[0] != domain.Interval10K {
		t.Errorf("intervals = %v, want [10000]", got.Intervals)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/viewports?limit=100", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var page struct {
		Data []domain.SavedViewport `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&page)
	found := false
	for _, v := range page.Data {
		if v.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("created viewport missing from list")
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/viewports/"+created.ID+"/grid", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("grid: expected 200, got %d", resp.StatusCode)
	}
	var res domain.GridResult
	json.NewDecoder(resp.Body).Decode(&res)
	if len(res.Layers) != 2 {
		t.Errorf("layers = %d, want gzd and 10k", len(res.Layers))
	}

	resp, _ = app.Test(httptest.NewRequest("DELETE", "/v1/viewports/"+created.ID, nil), -1)
	if resp.StatusCode != 204 {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/viewports/"+created.ID, nil), -1)
	if resp.StatusCode != 404 {
		t.Errorf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

// TestReady_Integration_WithRealDB checks readiness with only the database configured.
func TestReady_Integration_WithRealDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
