package contracts

// Tool names exposed over MCP.
const (
	ToolOrganize = "organize"
	ToolScan     = "scan"
	ToolStatus   = "status"

	ContractVersion = "v1"
)

// UnusedSpan is a source region an agent-side resolver reported as an
// unused import. Coordinates are zero-based, end exclusive.
type UnusedSpan struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// AddSuggestion proposes a missing import by its :: separated path.
type AddSuggestion struct {
	Path      string `json:"path"`
	TraitLike bool   `json:"trait_like,omitempty"`
}

type OrganizeInput struct {
	Path   string          `json:"path"`
	Apply  bool            `json:"apply,omitempty"`
	Unused []UnusedSpan    `json:"unused,omitempty"`
	Add    []AddSuggestion `json:"add,omitempty"`
}

type OrganizeOutput struct {
	Path          string `json:"path"`
	Changed       bool   `json:"changed"`
	Applied       bool   `json:"applied"`
	Block         string `json:"block,omitempty"`
	Organized     string `json:"organized,omitempty"`
	Statements    int    `json:"statements"`
	StatementsOut int    `json:"statements_out"`
	ParseErrors   int    `json:"parse_errors"`
}

type ScanInput struct {
	Paths []string `json:"paths,omitempty"`
}

type FileStatus struct {
	Path          string `json:"path"`
	Changed       bool   `json:"changed"`
	Statements    int    `json:"statements"`
	StatementsOut int    `json:"statements_out"`
	ParseErrors   int    `json:"parse_errors"`
}

type ScanOutput struct {
	RunID          string       `json:"run_id"`
	FilesScanned   int          `json:"files_scanned"`
	FilesChanged   int          `json:"files_changed"`
	FilesUnchanged int          `json:"files_unchanged"`
	FilesFailed    int          `json:"files_failed"`
	ParseErrors    int          `json:"parse_errors"`
	DurationMs     int          `json:"duration_ms"`
	Files          []FileStatus `json:"files,omitempty"`
}

type StatusInput struct{}

type RunSummary struct {
	ID           string `json:"id"`
	Mode         string `json:"mode"`
	FilesScanned int    `json:"files_scanned"`
	FilesChanged int    `json:"files_changed"`
	ParseErrors  int    `json:"parse_errors"`
	DurationMs   int    `json:"duration_ms"`
}

type StatusOutput struct {
	Version      string      `json:"version"`
	ProjectRoot  string      `json:"project_root"`
	ManifestPath string      `json:"manifest_path,omitempty"`
	Dependencies []string    `json:"dependencies,omitempty"`
	LastRun      *RunSummary `json:"last_run,omitempty"`
	LastTrigger  string      `json:"last_trigger,omitempty"`
	LastUpdateAt string      `json:"last_update_at,omitempty"`
}

type ToolError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e ToolError) Error() string {
	return e.Message
}

const (
	ErrorInvalidArgument = "invalid_argument"
	ErrorNotFound        = "not_found"
	ErrorInternal        = "internal"
	ErrorUnavailable     = "unavailable"
)
