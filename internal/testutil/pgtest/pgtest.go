// Package pgtest はPostgreSQLを使う統合テストのためのヘルパーを提供する。
//
// TEST_DATABASE_URLが設定されていればそのDBを使用し、未設定の場合は
// testcontainers-goでPostgreSQLコンテナを起動する。どちらも利用できない
// 環境ではテストをスキップする。
package pgtest

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// URL はテスト用データベースの接続URLを返す。
// パッケージ内の全テストで同じコンテナを共有する。
func URL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}
	if testing.Short() {
		t.Skip("-short指定のためPostgreSQL統合テストをスキップします")
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		ctx := context.Background()
		ctr, err := postgres.RunContainer(ctx,
			testcontainers.WithImage("postgres:16-alpine"),
			postgres.WithDatabase("kakeibo_test"),
			postgres.WithUsername("kakeibo"),
			postgres.WithPassword("kakeibo"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			containerErr = err
			return
		}
		containerURL, containerErr = ctr.ConnectionString(ctx, "sslmode=disable")
	})

	if containerErr != nil {
		t.Skipf("PostgreSQLコンテナを起動できません（スキップ）: %v", containerErr)
	}
	return containerURL
}

// Open はテスト用データベースに接続し、既存のテーブルを全て削除した状態で返す。
// 接続できない場合はテストをスキップする。
func Open(t *testing.T) (*sql.DB, string) {
	t.Helper()

	url := URL(t)
	db, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("データベースへの接続に失敗: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}

	cleanupSQL := `
		DROP TABLE IF EXISTS transactions CASCADE;
		DROP TABLE IF EXISTS expenses CASCADE;
		DROP TABLE IF EXISTS categories CASCADE;
		DROP TABLE IF EXISTS sessions CASCADE;
		DROP TABLE IF EXISTS password_credentials CASCADE;
		DROP TABLE IF EXISTS identities CASCADE;
		DROP TABLE IF EXISTS users CASCADE;
		DROP TABLE IF EXISTS schema_migrations CASCADE;
	`
	if _, err := db.Exec(cleanupSQL); err != nil {
		db.Close()
		t.Fatalf("クリーンアップに失敗: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db, url
}
