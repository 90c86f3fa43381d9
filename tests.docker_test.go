package main

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

// This file contains helpers to run the storage backends inside containers.

const testBooksTableDDL = `
CREATE TABLE IF NOT EXISTS books (
	isbn       TEXT PRIMARY KEY,
	amazon_url TEXT NOT NULL,
	author     TEXT NOT NULL,
	language   TEXT NOT NULL,
	pages      INTEGER NOT NULL,
	publisher  TEXT NOT NULL,
	title      TEXT NOT NULL,
	year       INTEGER NOT NULL
)`

// newDockerPool returns a ready docker pool or skips the test.
func newDockerPool(t *testing.T) *dockertest.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container based test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Failed to start Dockertest: %+v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("Could not connect to Docker: %+v", err)
	}
	pool.MaxWait = 60 * time.Second
	return pool
}

func startPostgresDockerContainer(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	pool := newDockerPool(t)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=books",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Failed to start postgres: %+v", err)
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s/books?sslmode=disable",
		net.JoinHostPort("localhost", resource.GetPort("5432/tcp")))

	// ensure to wait for the container to be ready
	var db *pgxpool.Pool
	err = pool.Retry(func() error {
		var e error
		db, e = pgxpool.New(context.Background(), dsn)
		if e != nil {
			return e
		}
		if e = db.Ping(context.Background()); e != nil {
			db.Close()
			return e
		}
		return nil
	})
	if err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("Failed to ping Postgres: %+v", err)
	}

	if _, err = db.Exec(context.Background(), testBooksTableDDL); err != nil {
		db.Close()
		_ = pool.Purge(resource)
		t.Fatalf("Failed to create books table: %+v", err)
	}

	destroyFunc := func() {
		db.Close()
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return db, destroyFunc
}

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()
	pool := newDockerPool(t)

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})
	if err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}
