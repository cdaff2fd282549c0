package scan

import (
	"context"
	"testing"
	"time"

	"usetidy/internal/core/ports"
	"usetidy/internal/mcp/contracts"
)

type fakeService struct {
	gotReq ports.OrganizeRequest
	res    ports.OrganizeResult
	err    error
}

func (f *fakeService) RunOrganize(_ context.Context, req ports.OrganizeRequest) (ports.OrganizeResult, error) {
	f.gotReq = req
	return f.res, f.err
}

func TestHandleMapsRun(t *testing.T) {
	svc := &fakeService{res: ports.OrganizeResult{
		RunID:          "run-1",
		Mode:           "once",
		FilesScanned:   2,
		FilesChanged:   1,
		FilesUnchanged: 1,
		ParseErrors:    0,
		Duration:       1500 * time.Millisecond,
		Files: []ports.FileResult{
			{Path: "src/main.rs", Changed: true, Statements: 3, StatementsOut: 1},
			{Path: "src/lib.rs"},
		},
	}}

	out, err := Handle(context.Background(), svc, contracts.ScanInput{Paths: []string{"src"}})
	if err != nil {
		t.Fatalf("handle scan: %v", err)
	}

	if len(svc.gotReq.Paths) != 1 || svc.gotReq.Paths[0] != "src" {
		t.Fatalf("unexpected scan roots: %v", svc.gotReq.Paths)
	}
	if out.RunID != "run-1" || out.FilesScanned != 2 || out.FilesChanged != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.DurationMs != 1500 {
		t.Fatalf("unexpected duration: %d", out.DurationMs)
	}
	if len(out.Files) != 2 || !out.Files[0].Changed || out.Files[0].StatementsOut != 1 {
		t.Fatalf("unexpected file statuses: %+v", out.Files)
	}
}

func TestHandleNeverWrites(t *testing.T) {
	svc := &fakeService{}

	if _, err := Handle(context.Background(), svc, contracts.ScanInput{}); err != nil {
		t.Fatalf("handle scan: %v", err)
	}
	if svc.gotReq.Write || svc.gotReq.Check {
		t.Fatalf("scan must stay a dry run, got %+v", svc.gotReq)
	}
}
