package trial

import "testing"

func TestExpr_Finished(t *testing.T) {
	tests := []struct {
		src          string
		count, lines int
		want         bool
	}{
		{"count > 0", 1, 10, true},
		{"count > 0", 0, 10, false},
		{"count == 1", 2, 10, false},
		{"count > 0 && lines > 100", 1, 50, false},
		{"count > 0 && lines > 100", 1, 500, true},
		// Truthiness follows JavaScript rules.
		{"count", 0, 0, false},
		{"count", 3, 0, true},
	}

	for _, tt := range tests {
		expr, err := CompileExpr(tt.src)
		if err != nil {
			t.Fatalf("CompileExpr(%q): %v", tt.src, err)
		}
		got, err := expr.Finished(tt.count, tt.lines)
		if err != nil {
			t.Fatalf("Finished(%q, %d, %d): %v", tt.src, tt.count, tt.lines, err)
		}
		if got != tt.want {
			t.Errorf("Finished(%q, %d, %d) = %v, want %v", tt.src, tt.count, tt.lines, got, tt.want)
		}
	}
}

func TestCompileExpr_SyntaxError(t *testing.T) {
	if _, err := CompileExpr("count >"); err == nil {
		t.Fatal("CompileExpr accepted a syntax error")
	}
}
