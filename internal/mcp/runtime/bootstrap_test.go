package runtime

import (
	"log/slog"
	"testing"
)

func TestBuild_RequiresConfig(t *testing.T) {
	if _, err := Build(nil, Dependencies{Organize: &stubOrganize{}}); err == nil {
		t.Fatal("expected an error for nil config")
	}
}

func TestBuild_AssemblesServer(t *testing.T) {
	server, err := Build(testMCPConfig(), Dependencies{
		Organize:   &stubOrganize{},
		Logger:     slog.Default(),
		ConfigPath: "usetidy.toml",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if server == nil || server.transport == nil || server.registry == nil {
		t.Fatal("expected a fully wired server")
	}
}
