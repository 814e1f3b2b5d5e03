package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "Saved!", "Saved!"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"quotes", `say "hi" it's`, "say &quot;hi&quot; it&#39;s"},
		{"script", "<script>alert('x')</script>", "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;"},
		{"unicode", "Gespeichert ✓", "Gespeichert ✓"},
		{"newline kept", "a\nb", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeHTML(tt.input); got != tt.expected {
				t.Errorf("escapeHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"id", "toast-1700000000000-1", "toast-1700000000000-1"},
		{"quote breakout", `x" onclick="evil()`, "x&quot; onclick=&quot;evil()"},
		{"whitespace", "a\n\r\tb", "a&#10;&#13;&#9;b"},
		{"all", `<>&"'`, "&lt;&gt;&amp;&quot;&#39;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeAttr(tt.input); got != tt.expected {
				t.Errorf("escapeAttr(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func BenchmarkEscapeHTML(b *testing.B) {
	s := `<script>alert("xss")</script> & more content here`
	for i := 0; i < b.N; i++ {
		escapeHTML(s)
	}
}
