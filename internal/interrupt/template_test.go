package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandIdentityAndColumns(t *testing.T) {
	e := Expansion{
		Identity: "file.go",
		Columns:  []string{"file.go", "42"},
		Query:    "fi",
	}
	got := Expand("vim {} +{2}", e)
	assert.Equal(t, "vim 'file.go' +'42'", got)
}

func TestExpandEscapesEmbeddedQuote(t *testing.T) {
	e := Expansion{Identity: "it's a file.go"}
	got := Expand("cat {}", e)
	assert.Equal(t, `cat 'it'\''s a file.go'`, got)
}

func TestExpandSelectionAndQuery(t *testing.T) {
	e := Expansion{Selection: "a b c", Query: "q term"}
	got := Expand("echo {+} {q}", e)
	assert.Equal(t, "echo 'a b c' 'q term'", got)
}

func TestExpandLeavesUnknownPlaceholderLiteral(t *testing.T) {
	e := Expansion{Columns: []string{"only"}}
	got := Expand("{5}", e)
	assert.Equal(t, "{5}", got)
}

func TestExpandHandlesEmptyValue(t *testing.T) {
	e := Expansion{}
	got := Expand("[{}]", e)
	assert.Equal(t, "['']", got)
}

func TestResolveShellFallsBackWhenUnset(t *testing.T) {
	t.Setenv("SHELL", "")
	t.Setenv("COMSPEC", "")
	sh := ResolveShell()
	assert.NotEmpty(t, sh.Path)
	assert.NotEmpty(t, sh.Arg)
}
