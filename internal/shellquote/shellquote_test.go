package shellquote

import "testing"

func TestQuoteIfNeeded(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"obsidian", "obsidian"},
		{"vault=/tmp/V", "vault=/tmp/V"},
		{"query=two words", "'query=two words'"},
		{"it's", `'it'\''s'`},
		{"", "''"},
	}
	for _, tc := range tests {
		if got := QuoteIfNeeded(tc.in); got != tc.want {
			t.Fatalf("QuoteIfNeeded(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJoin(t *testing.T) {
	got := Join("obsidian", "vault=/tmp/My Vault", "search", "query=it's")
	want := `obsidian 'vault=/tmp/My Vault' search 'query=it'\''s'`
	if got != want {
		t.Fatalf("Join = %q, want %q", got, want)
	}
	if got := Join(); got != "" {
		t.Fatalf("Join() = %q", got)
	}
}
