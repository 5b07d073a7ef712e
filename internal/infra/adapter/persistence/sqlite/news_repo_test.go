package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-sqlite3"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/infra/adapter/persistence/sqlite"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/repository"
)

/* ────────────────────────────  helpers  ──────────────────────────── */

func newsColumns() []string {
	return []string{"date", "title", "url", "image", "source", "favicon", "body"}
}

func openTempStore(t *testing.T) repository.NewsRepository {
	t.Helper()
	cfg := db.Config{
		Dialect: db.DialectSQLite,
		DSN:     "file:" + filepath.Join(t.TempDir(), "news.db") + "?_busy_timeout=5000",
		Pool:    db.DefaultConnectionConfig(),
	}
	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.EnsureSchema(context.Background(), conn, db.DialectSQLite); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return sqlite.NewNewsRepo(conn)
}

/* ──────────────────────────── 1. Insert ──────────────────────────── */

func TestNewsRepo_Insert(t *testing.T) {
	t.Parallel()

	conn, mock, _ := sqlmock.New()
	defer func() { _ = conn.Close() }()

	news := &entity.NewsRecord{
		Date:  "2024-05-01T10:00:00Z",
		Title: "Synth revival",
		URL:   "https://music.example.com/synth",
		Image: "https://music.example.com/synth.jpg",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO news (date, title, url, image, source, favicon, body)")).
		WithArgs("2024-05-01T10:00:00Z", "Synth revival", "https://music.example.com/synth",
			"https://music.example.com/synth.jpg", nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := sqlite.NewNewsRepo(conn)
	outcome, err := repo.Insert(context.Background(), news)
	if err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	if outcome != repository.InsertOutcomeInserted {
		t.Fatalf("outcome=%v, want inserted", outcome)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestNewsRepo_Insert_Duplicate(t *testing.T) {
	t.Parallel()

	conn, mock, _ := sqlmock.New()
	defer func() { _ = conn.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO news")).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	repo := sqlite.NewNewsRepo(conn)
	outcome, err := repo.Insert(context.Background(), &entity.NewsRecord{Title: "t", URL: "https://x.com/1", Image: "i"})
	if err != nil {
		t.Fatalf("duplicate must not be an error, got %v", err)
	}
	if outcome != repository.InsertOutcomeDuplicate {
		t.Fatalf("outcome=%v, want duplicate", outcome)
	}
}

func TestNewsRepo_Insert_StorageError(t *testing.T) {
	t.Parallel()

	conn, mock, _ := sqlmock.New()
	defer func() { _ = conn.Close() }()

	diskErr := errors.New("disk I/O error")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO news")).WillReturnError(diskErr)

	repo := sqlite.NewNewsRepo(conn)
	outcome, err := repo.Insert(context.Background(), &entity.NewsRecord{Title: "t", URL: "https://x.com/1", Image: "i"})
	if !errors.Is(err, diskErr) {
		t.Fatalf("want wrapped disk error, got %v", err)
	}
	if outcome != repository.InsertOutcomeFailed {
		t.Fatalf("outcome=%v, want failed", outcome)
	}
}

/* ──────────────────────────── 2. Sample ──────────────────────────── */

func TestNewsRepo_Sample(t *testing.T) {
	t.Parallel()

	conn, mock, _ := sqlmock.New()
	defer func() { _ = conn.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY RANDOM()")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(newsColumns()).
			AddRow("2024-05-02", "B", "https://b.com/1", "ib", "B News", nil, "body b").
			AddRow(nil, "A", "https://a.com/1", "ia", nil, "https://a.com/favicon.ico", nil))

	repo := sqlite.NewNewsRepo(conn)
	got, err := repo.Sample(context.Background(), 5)
	if err != nil {
		t.Fatalf("Sample err=%v", err)
	}

	want := []*entity.NewsRecord{
		{Date: "2024-05-02", Title: "B", URL: "https://b.com/1", Image: "ib", Source: "B News", Body: "body b"},
		{Title: "A", URL: "https://a.com/1", Image: "ia", Favicon: "https://a.com/favicon.ico"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Sample mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestNewsRepo_Sample_QueryError(t *testing.T) {
	t.Parallel()

	conn, mock, _ := sqlmock.New()
	defer func() { _ = conn.Close() }()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("no such table: news"))

	repo := sqlite.NewNewsRepo(conn)
	if _, err := repo.Sample(context.Background(), 10); err == nil {
		t.Fatal("expected error")
	}
}

/* ──────────────────────────── 3. Count ──────────────────────────── */

func TestNewsRepo_Count(t *testing.T) {
	t.Parallel()

	conn, mock, _ := sqlmock.New()
	defer func() { _ = conn.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM news")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := sqlite.NewNewsRepo(conn)
	got, err := repo.Count(context.Background())
	if err != nil || got != 7 {
		t.Fatalf("Count=%d err=%v", got, err)
	}
}

/* ──────────────────────────── 4. real SQLite ──────────────────────────── */

func TestNewsRepo_SQLite_DuplicatesSkipped(t *testing.T) {
	repo := openTempStore(t)
	ctx := context.Background()

	seed := &entity.NewsRecord{Title: "existing", URL: "https://x.com/2", Image: "i"}
	if outcome, err := repo.Insert(ctx, seed); err != nil || outcome != repository.InsertOutcomeInserted {
		t.Fatalf("seed outcome=%v err=%v", outcome, err)
	}

	batch := []*entity.NewsRecord{
		{Title: "A", URL: "https://x.com/1", Image: "i1"},
		{Title: "B", URL: "https://x.com/1", Image: "i2"},
		{Title: "changed", URL: "https://x.com/2", Image: "i3"},
		{Title: "C", URL: "https://x.com/3", Image: "i4"},
	}
	var inserted, duplicates int
	for _, rec := range batch {
		outcome, err := repo.Insert(ctx, rec)
		if err != nil {
			t.Fatalf("Insert %s: %v", rec.URL, err)
		}
		switch outcome {
		case repository.InsertOutcomeInserted:
			inserted++
		case repository.InsertOutcomeDuplicate:
			duplicates++
		}
	}
	if inserted != 2 || duplicates != 2 {
		t.Fatalf("inserted=%d duplicates=%d, want 2/2", inserted, duplicates)
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 3 {
		t.Fatalf("Count=%d err=%v, want 3", count, err)
	}

	rows, err := repo.Sample(ctx, 200)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	titles := map[string]string{}
	for _, r := range rows {
		titles[r.URL] = r.Title
	}
	if titles["https://x.com/1"] != "A" || titles["https://x.com/2"] != "existing" {
		t.Fatalf("existing rows must be unchanged, got %v", titles)
	}
}

func TestNewsRepo_SQLite_SampleBoundedByStoreSize(t *testing.T) {
	repo := openTempStore(t)
	ctx := context.Background()

	urls := []string{"https://a.com/1", "https://b.com/1", "https://c.com/1"}
	for _, u := range urls {
		if _, err := repo.Insert(ctx, &entity.NewsRecord{Title: u, URL: u, Image: "i"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.Sample(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	gotURLs := make([]string, 0, len(got))
	for _, r := range got {
		gotURLs = append(gotURLs, r.URL)
		if r.Favicon != "" {
			t.Errorf("NULL favicon must read back as empty string, got %q", r.Favicon)
		}
	}
	sort.Strings(gotURLs)
	if diff := cmp.Diff(urls, gotURLs); diff != "" {
		t.Fatalf("sample mismatch (-want +got):\n%s", diff)
	}

	two, err := repo.Sample(ctx, 2)
	if err != nil || len(two) != 2 {
		t.Fatalf("Sample(2) len=%d err=%v", len(two), err)
	}
	if two[0].URL == two[1].URL {
		t.Fatal("sample must be without replacement")
	}
}
