//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/meridiancap/cms-apiserver/config"
	"github.com/meridiancap/cms-apiserver/internal/logger"
	"github.com/meridiancap/cms-apiserver/internal/server"
	"github.com/meridiancap/cms-apiserver/internal/services"
	"github.com/meridiancap/cms-apiserver/internal/store"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d", "postgres"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestProjectLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	username := fmt.Sprintf("admin_%d", time.Now().UnixNano())
	password := "testpass123!"

	if err := seedAdmin(username, password); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	token, err := login(t, baseURL, username, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	id, err := createProject(t, baseURL, token)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected project id to be set")
	}

	fetched, err := getPublicProject(t, baseURL, id)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if fetched["title"] != "Harbor Logistics Fund" {
		t.Fatalf("unexpected project title: %v", fetched["title"])
	}
	if slug, _ := fetched["slug"].(string); slug == "" {
		t.Fatalf("expected a derived slug, got %v", fetched["slug"])
	}

	if err := updateProject(t, baseURL, token, id); err != nil {
		t.Fatalf("update project: %v", err)
	}
	fetched, err = getPublicProject(t, baseURL, id)
	if err != nil {
		t.Fatalf("get updated project: %v", err)
	}
	if fetched["title"] != "Harbor Logistics Fund II" {
		t.Fatalf("unexpected updated title: %v", fetched["title"])
	}

	if err := deleteProject(t, baseURL, token, id); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if err := expectProjectNotFound(t, baseURL, id); err != nil {
		t.Fatalf("expected deleted project to be missing: %v", err)
	}

	if err := logout(t, baseURL, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := expectUnauthorized(t, baseURL, token); err != nil {
		t.Fatalf("expected revoked token to be rejected: %v", err)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/admin/projects-manager", strings.NewReader(`{"title":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func seedAdmin(username, password string) error {
	cfg := config.LoadConfig()
	db, err := sql.Open("postgres", buildPostgresURL(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	auth := services.NewAuthService(
		store.NewAdminRepository(db),
		store.NewSessionRepository(db),
		logger.Nop(),
		cfg.Session.TTL,
	)
	_, err = auth.CreateAdmin(ctx, username, username+"@example.com", "Test Admin", "admin", password)
	return err
}

func login(t *testing.T, baseURL, username, password string) (string, error) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}

	env, status, err := doJSON(http.MethodPost, baseURL+"/api/admin/login", "", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("login status %d: %s", status, env.Message)
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", fmt.Errorf("missing token in login response")
	}
	return data.Token, nil
}

func createProject(t *testing.T, baseURL, token string) (int, error) {
	t.Helper()

	payload := []byte(`{"title":"Harbor Logistics Fund","description":"Core infrastructure holding.","year":2025,"is_active":true}`)
	env, status, err := doJSON(http.MethodPost, baseURL+"/api/admin/projects-manager", token, payload)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("create status %d: %s", status, env.Message)
	}

	var data struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return 0, err
	}
	return data.ID, nil
}

func updateProject(t *testing.T, baseURL, token string, id int) error {
	t.Helper()

	payload := []byte(fmt.Sprintf(`{"id":%d,"title":"Harbor Logistics Fund II","description":"Core infrastructure holding.","year":2026,"is_active":true}`, id))
	env, status, err := doJSON(http.MethodPut, baseURL+"/api/admin/projects-manager", token, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("update status %d: %s", status, env.Message)
	}
	return nil
}

func getPublicProject(t *testing.T, baseURL string, id int) (map[string]any, error) {
	t.Helper()

	env, status, err := doJSON(http.MethodGet, fmt.Sprintf("%s/api/projects?id=%d", baseURL, id), "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get status %d: %s", status, env.Message)
	}

	var row map[string]any
	if err := json.Unmarshal(env.Data, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func deleteProject(t *testing.T, baseURL, token string, id int) error {
	t.Helper()

	env, status, err := doJSON(http.MethodDelete, fmt.Sprintf("%s/api/admin/projects-manager?id=%d", baseURL, id), token, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("delete status %d: %s", status, env.Message)
	}
	return nil
}

func expectProjectNotFound(t *testing.T, baseURL string, id int) error {
	t.Helper()

	_, status, err := doJSON(http.MethodGet, fmt.Sprintf("%s/api/projects?id=%d", baseURL, id), "", nil)
	if err != nil {
		return err
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("expected 404 after delete, got %d", status)
	}
	return nil
}

func logout(t *testing.T, baseURL, token string) error {
	t.Helper()

	env, status, err := doJSON(http.MethodPost, baseURL+"/api/admin/logout", token, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("logout status %d: %s", status, env.Message)
	}
	return nil
}

func expectUnauthorized(t *testing.T, baseURL, token string) error {
	t.Helper()

	_, status, err := doJSON(http.MethodGet, baseURL+"/api/admin/check-auth", token, nil)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized {
		return fmt.Errorf("expected 401, got %d", status)
	}
	return nil
}

func doJSON(method, url, token string, payload []byte) (envelope, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return envelope{}, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return envelope{}, 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, resp.StatusCode, err
	}
	return env, resp.StatusCode, nil
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	db, err := sql.Open("postgres", buildPostgresURL(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, buildPostgresURL(cfg))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func buildPostgresURL(cfg config.Config) string {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}
	host := fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		host,
		cfg.Database.DBName,
		sslmode,
	)
}

func startServer() (*server.Server, error) {
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "cms")
	_ = os.Setenv("DB_PASSWORD", "password")
	_ = os.Setenv("DB_NAME", "cms_db")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("SESSION_TTL_HOURS", "24")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
