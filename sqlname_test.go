package insight

import (
	"testing"
)

func TestSpanNameForStatement(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		want      string
	}{
		{name: "select", statement: "SELECT * FROM users", want: "postgresql.SELECT"},
		{name: "count projection", statement: "SELECT COUNT(*) FROM users", want: "postgresql.COUNT"},
		{name: "insert", statement: "INSERT INTO users VALUES ($1)", want: "postgresql.INSERT"},
		{name: "update", statement: "UPDATE users SET name = $1", want: "postgresql.UPDATE"},
		{name: "delete", statement: "DELETE FROM users", want: "postgresql.DELETE"},
		{name: "exactly two tokens", statement: "DROP TABLE", want: "postgresql.DROP"},
		{name: "single token", statement: "COMMIT", want: "postgresql.OTHER"},
		{name: "empty statement", statement: "", want: "postgresql.OTHER"},
		{name: "whitespace only", statement: "   \t\n  ", want: "postgresql.OTHER"},
		{name: "leading whitespace", statement: "  SELECT * FROM t", want: "postgresql.SELECT"},
		{name: "newline separated", statement: "SELECT\nCOUNT(*)\nFROM t", want: "postgresql.COUNT"},
		{name: "lowercase verb kept verbatim", statement: "select * from t", want: "postgresql.select"},
		{name: "count is case-sensitive", statement: "SELECT count(*) FROM t", want: "postgresql.SELECT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpanNameForStatement("postgresql", tt.statement); got != tt.want {
				t.Errorf("SpanNameForStatement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanNameForStatementSystems(t *testing.T) {
	if got := SpanNameForStatement("mysql", "SELECT 1 FROM dual"); got != "mysql.SELECT" {
		t.Errorf("SpanNameForStatement() = %v, want mysql.SELECT", got)
	}
}

func TestTruncateQuery(t *testing.T) {
	short := "SELECT * FROM users"
	if got := truncateQuery(short); got != short {
		t.Errorf("truncateQuery() modified a short query: %v", got)
	}

	long := make([]byte, maxQueryLength+100)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateQuery(string(long))
	if len(got) != maxQueryLength+3 {
		t.Errorf("truncated length = %v, want %v", len(got), maxQueryLength+3)
	}
	if got[len(got)-3:] != "..." {
		t.Error("truncated query should end with ellipsis")
	}
}
