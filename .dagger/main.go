// sqlchat CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/sqlchat/internal/dagger"
)

// Sqlchat is the main module for the sqlchat CI/CD pipeline
type Sqlchat struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Sqlchat CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".sqlchat", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Sqlchat {
	return &Sqlchat{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// the arm64 cross compiler, CGO enabled (go-sqlite3), and the project
// source mounted.
func (s *Sqlchat) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "gcc-aarch64-linux-gnu", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", s.Source)
}

// Test runs the sqlchat unit tests via "go test"
func (s *Sqlchat) Test(ctx context.Context) (string, error) {
	return s.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// Vet runs "go vet" over the module
func (s *Sqlchat) Vet(ctx context.Context) (string, error) {
	return s.goContainer().
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
}
