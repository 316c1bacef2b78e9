package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"gitquiz-service/internal/app"
	"gitquiz-service/internal/domain"
	pgstore "gitquiz-service/internal/infra/postgres"
	pgmigrations "gitquiz-service/internal/infra/postgres/migrations"
	infraredis "gitquiz-service/internal/infra/redis"
)

func TestExamEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCatalog(t, ctx, pgURL, sampleCatalog())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	catalogRepo := infraredis.NewCatalogRepository(redisClient, pgstore.NewCatalogLoader(pool), 5*time.Minute)
	sessions := pgstore.NewSessionStore(pool)
	answers := pgstore.NewAnswerStore(pool)
	service := app.NewQuizService(sessions, answers, catalogRepo, app.Options{EmailDomain: "pmfst.hr"})

	// Alice: q1 correct, q2 wrong, control q3 correct.
	alice, err := service.Start(ctx, "alice@pmfst.hr")
	if err != nil {
		t.Fatalf("start alice: %v", err)
	}
	mustRecord(t, ctx, service, alice.SessionID, 1, "yes", 2000)
	mustRecord(t, ctx, service, alice.SessionID, 2, "wrong", 2000)
	mustRecord(t, ctx, service, alice.SessionID, 3, "ok", 2000)

	result, err := service.Finish(ctx, alice.SessionID)
	if err != nil {
		t.Fatalf("finish alice: %v", err)
	}
	if result.Score != 2 || result.TotalQuestions != 3 {
		t.Fatalf("expected 2/3, got %d/%d", result.Score, result.TotalQuestions)
	}
	if result.Grade != 5 {
		t.Fatalf("sole finisher should grade 5, got %d", result.Grade)
	}
	if result.ControlTotal != 1 {
		t.Fatalf("expected 1 control question, got %d", result.ControlTotal)
	}
	if entry := result.Leaderboard.Entries[0]; entry.ControlCorrectCount != 1 || !entry.ControlAllCorrect {
		t.Fatalf("expected full control credit, got %+v", entry)
	}

	// A retake attempt must bounce off the finished session.
	if _, err := service.Start(ctx, "alice@pmfst.hr"); err != domain.ErrAlreadyCompleted {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if _, err := service.Finish(ctx, alice.SessionID); err != domain.ErrSessionFinished {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
}

func TestConcurrentStartsShareOneSession(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	seedCatalog(t, ctx, pgURL, sampleCatalog())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	catalogRepo := pgLoaderRepo{pgstore.NewCatalogLoader(pool)}
	service := app.NewQuizService(pgstore.NewSessionStore(pool), pgstore.NewAnswerStore(pool), catalogRepo, app.Options{EmailDomain: "pmfst.hr"})

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			view, err := service.Start(ctx, "bob@pmfst.hr")
			if err != nil {
				t.Errorf("worker %d start: %v", i, err)
				return
			}
			ids[i] = view.SessionID
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent starts produced different sessions: %q vs %q", ids[0], ids[i])
		}
	}
}

// pgLoaderRepo adapts the loader directly; no cache layer, every read goes
// to Postgres.
type pgLoaderRepo struct {
	loader *pgstore.CatalogLoader
}

func (r pgLoaderRepo) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	return r.loader.LoadCatalog(ctx)
}

func mustRecord(t *testing.T, ctx context.Context, service *app.QuizService, sessionID string, questionID int, option string, elapsedMs int64) {
	t.Helper()
	if err := service.RecordAnswer(ctx, sessionID, questionID, &option, elapsedMs); err != nil {
		t.Fatalf("record question %d: %v", questionID, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCatalog(t *testing.T, ctx context.Context, dsn string, catalog domain.Catalog) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO catalogs (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, pgstore.DefaultCatalogID, string(data)); err != nil {
		t.Fatalf("insert catalog: %v", err)
	}
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		TotalTimeLimit: 5 * time.Minute,
		Questions: []domain.Question{
			{ID: 1, Prompt: "first", Options: []string{"yes", "no"}, CorrectIndex: 0, TimeLimit: 30 * time.Second},
			{ID: 2, Prompt: "second", Options: []string{"right", "wrong"}, CorrectIndex: 0, TimeLimit: 30 * time.Second},
			{ID: 3, Prompt: "control", Options: []string{"ok", "nope"}, CorrectIndex: 0, TimeLimit: 30 * time.Second, IsControl: true},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
