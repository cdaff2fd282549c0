package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"usetidy/internal/data/history"
)

var (
	rqlSelectRE       = regexp.MustCompile(`(?i)^\s*SELECT\s+runs(?:\s+WHERE\s+(.+))?\s*$`)
	rqlAndSplitRE     = regexp.MustCompile(`(?i)\s+AND\s+`)
	rqlNumericCondRE  = regexp.MustCompile(`(?i)^\s*([a-z_]+)\s*(>=|<=|!=|=|>|<)\s*(-?[0-9]+)\s*$`)
	rqlContainsCondRE = regexp.MustCompile(`(?i)^\s*([a-z_]+)\s+CONTAINS\s+['"]([^'"]+)['"]\s*$`)
	rqlStringCondRE   = regexp.MustCompile(`(?i)^\s*([a-z_]+)\s*(=|!=)\s*['"]([^'"]+)['"]\s*$`)
)

var numericFields = map[string]func(history.Run) int64{
	"files_scanned":   func(r history.Run) int64 { return int64(r.FilesScanned) },
	"files_changed":   func(r history.Run) int64 { return int64(r.FilesChanged) },
	"files_unchanged": func(r history.Run) int64 { return int64(r.FilesUnchanged) },
	"files_failed":    func(r history.Run) int64 { return int64(r.FilesFailed) },
	"statements_seen": func(r history.Run) int64 { return int64(r.StatementsSeen) },
	"statements_out":  func(r history.Run) int64 { return int64(r.StatementsOut) },
	"parse_errors":    func(r history.Run) int64 { return int64(r.ParseErrors) },
	"duration_ms":     func(r history.Run) int64 { return r.DurationMS },
}

var stringFields = map[string]func(history.Run) string{
	"id":   func(r history.Run) string { return r.ID },
	"mode": func(r history.Run) string { return r.Mode },
}

type RQLQuery struct {
	Conditions []RQLCondition
}

type RQLCondition struct {
	Field  string
	Op     string
	IntVal int64
	StrVal string
	IsInt  bool
}

// ParseRQL parses a run query of the form
// `SELECT runs [WHERE field OP value [AND ...]]`.
func ParseRQL(raw string) (RQLQuery, error) {
	matches := rqlSelectRE.FindStringSubmatch(strings.TrimSpace(raw))
	if len(matches) == 0 {
		return RQLQuery{}, fmt.Errorf("invalid run query: expected SELECT runs [WHERE ...]")
	}

	var query RQLQuery
	where := strings.TrimSpace(matches[1])
	if where == "" {
		return query, nil
	}

	parts := rqlAndSplitRE.Split(where, -1)
	query.Conditions = make([]RQLCondition, 0, len(parts))
	for _, part := range parts {
		condition, err := parseRQLCondition(part)
		if err != nil {
			return RQLQuery{}, err
		}
		query.Conditions = append(query.Conditions, condition)
	}
	return query, nil
}

func parseRQLCondition(raw string) (RQLCondition, error) {
	if match := rqlNumericCondRE.FindStringSubmatch(raw); len(match) == 4 {
		field := strings.ToLower(strings.TrimSpace(match[1]))
		if _, ok := numericFields[field]; !ok {
			return RQLCondition{}, fmt.Errorf("unknown numeric field %q", field)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(match[3]), 10, 64)
		if err != nil {
			return RQLCondition{}, fmt.Errorf("invalid numeric value %q: %w", match[3], err)
		}
		return RQLCondition{
			Field:  field,
			Op:     strings.TrimSpace(match[2]),
			IntVal: value,
			IsInt:  true,
		}, nil
	}

	if match := rqlContainsCondRE.FindStringSubmatch(raw); len(match) == 3 {
		field := strings.ToLower(strings.TrimSpace(match[1]))
		if _, ok := stringFields[field]; !ok {
			return RQLCondition{}, fmt.Errorf("unknown string field %q", field)
		}
		return RQLCondition{
			Field:  field,
			Op:     "contains",
			StrVal: strings.TrimSpace(match[2]),
		}, nil
	}

	if match := rqlStringCondRE.FindStringSubmatch(raw); len(match) == 4 {
		field := strings.ToLower(strings.TrimSpace(match[1]))
		if _, ok := stringFields[field]; !ok {
			return RQLCondition{}, fmt.Errorf("unknown string field %q", field)
		}
		return RQLCondition{
			Field:  field,
			Op:     strings.TrimSpace(match[2]),
			StrVal: strings.TrimSpace(match[3]),
		}, nil
	}

	return RQLCondition{}, fmt.Errorf("invalid condition %q", strings.TrimSpace(raw))
}

// Matches reports whether run satisfies every condition.
func (q RQLQuery) Matches(run history.Run) bool {
	for _, cond := range q.Conditions {
		if !cond.matches(run) {
			return false
		}
	}
	return true
}

func (c RQLCondition) matches(run history.Run) bool {
	if c.IsInt {
		value := numericFields[c.Field](run)
		switch c.Op {
		case "=":
			return value == c.IntVal
		case "!=":
			return value != c.IntVal
		case ">":
			return value > c.IntVal
		case "<":
			return value < c.IntVal
		case ">=":
			return value >= c.IntVal
		case "<=":
			return value <= c.IntVal
		default:
			return false
		}
	}

	value := stringFields[c.Field](run)
	switch c.Op {
	case "=":
		return value == c.StrVal
	case "!=":
		return value != c.StrVal
	case "contains":
		return strings.Contains(value, c.StrVal)
	default:
		return false
	}
}
