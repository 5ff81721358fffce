package main

import (
	"context"

	"dagger/sqlchat/internal/dagger"
)

// Release builds versioned binaries and adds a SHA256SUMS file next to them
func (s *Sqlchat) Release(
	ctx context.Context,

	// Version string (e.g., "v1.0.0")
	version string,

	// Git commit SHA
	commit string,
) *dagger.Directory {
	artifacts := s.BuildRelease(ctx, version, commit)

	sums := dag.Container().
		From("alpine:3.20").
		WithDirectory("/artifacts", artifacts).
		WithWorkdir("/artifacts").
		WithExec([]string{"sh", "-c", "find . -type f -name sqlchat | sort | xargs sha256sum > /SHA256SUMS"}).
		File("/SHA256SUMS")

	return artifacts.WithFile("SHA256SUMS", sums)
}
