package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usetidy/internal/core/app"
	"usetidy/internal/core/config"
	"usetidy/internal/core/ports"
)

func createWorkspace(t *testing.T, tmpDir string) {
	manifest := `[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = "1"
tokio-util = "0.7"

[dev-dependencies]
insta = "1"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "Cargo.toml"), []byte(manifest), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "src"), 0755))
	messy := `use tokio_util::codec::Decoder;
use std::io::Read;
use serde::Serialize;
use std::fmt;
use crate::config::Settings;

fn main() {}
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "src", "main.rs"), []byte(messy), 0644))

	tidy := "use std::fmt;\n\nfn ready() {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "src", "lib.rs"), []byte(tidy), 0644))

	// Build output must never be rewritten.
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "target", "debug"), 0755))
	generated := "use std::io;\nuse std::io;\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "target", "debug", "gen.rs"), []byte(generated), 0644))
}

func TestFullPipelineIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	createWorkspace(t, tmpDir)

	cfg := config.Default()
	cfg.Paths.ProjectRoot = tmpDir
	cfg.DB.Enabled = true

	appInstance, err := app.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = appInstance.Close(context.Background()) })

	svc := app.NewOrganizeService(appInstance)
	ctx := context.Background()

	res, err := svc.RunOrganize(ctx, ports.OrganizeRequest{Write: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesScanned, "target/ and Cargo.toml stay out of the scan")
	assert.Equal(t, 1, res.FilesChanged)
	assert.Equal(t, 1, res.FilesUnchanged)
	assert.Zero(t, res.ParseErrors)

	organized, err := os.ReadFile(filepath.Join(tmpDir, "src", "main.rs"))
	require.NoError(t, err)
	want := "use std::{\n" +
		"    fmt,\n" +
		"    io::Read,\n" +
		"};\n" +
		"\n" +
		"use serde::Serialize;\n" +
		"use tokio_util::codec::Decoder;\n" +
		"\n" +
		"use crate::config::Settings;\n" +
		"\n" +
		"fn main() {}\n"
	assert.Equal(t, want, string(organized))

	untouched, err := os.ReadFile(filepath.Join(tmpDir, "target", "debug", "gen.rs"))
	require.NoError(t, err)
	assert.Equal(t, "use std::io;\nuse std::io;\n", string(untouched))

	// A second pass over the organized tree is a no-op.
	res, err = svc.RunOrganize(ctx, ports.OrganizeRequest{Write: true})
	require.NoError(t, err)
	assert.Zero(t, res.FilesChanged)
	assert.Equal(t, 2, res.FilesUnchanged)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"insta", "serde", "tokio_util"}, status.Dependencies)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, "write", status.LastRun.Mode)

	runs, err := svc.QueryService().ListRuns(ctx, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	matched, err := svc.QueryService().RunQuery(ctx, "SELECT runs WHERE mode='write' LIMIT 5", 10)
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}
