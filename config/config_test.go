package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		caption  string
		src      string
		expected *Project
		err      bool
	}{
		{
			caption: "every key can be set",
			src: `
name = "expr"
grammar = "expr.grammar"
start = "<E>"
terminals = ["PLUS", "NUM"]
nonterminals = ["<E>"]
ebnf = true

[table]
conflicts = "error"
max_states = 100

[cache]
path = ".lr1gen/cache.db"
`,
			expected: &Project{
				Name:         "expr",
				Grammar:      "expr.grammar",
				Start:        "<E>",
				Terminals:    []string{"PLUS", "NUM"},
				NonTerminals: []string{"<E>"},
				EBNF:         true,
				Table: Table{
					Conflicts: ConflictError,
					MaxStates: 100,
				},
				Cache: Cache{
					Path: ".lr1gen/cache.db",
				},
			},
		},
		{
			caption: "conflicts are overwritten by default",
			src:     `grammar = "g"`,
			expected: &Project{
				Grammar: "g",
				Table: Table{
					Conflicts: ConflictOverwrite,
				},
			},
		},
		{
			caption: "the conflict mode is case-insensitive",
			src: `
[table]
conflicts = "Detect"
`,
			expected: &Project{
				Table: Table{
					Conflicts: ConflictDetect,
				},
			},
		},
		{
			caption: "an unknown conflict mode is an error",
			src: `
[table]
conflicts = "ignore"
`,
			err: true,
		},
		{
			caption: "a negative state limit is an error",
			src: `
[table]
max_states = -1
`,
			err: true,
		},
		{
			caption: "an unknown key is an error",
			src:     `grammer = "g"`,
			err:     true,
		},
		{
			caption: "malformed TOML is an error",
			src:     `name = `,
			err:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			p, err := Unmarshal([]byte(tt.src))
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	err := os.WriteFile(path, []byte(`
grammar = "expr.grammar"

[cache]
path = "/var/cache/lr1gen.db"
`), 0600)
	require.NoError(t, err)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, p.Dir)
	assert.Equal(t, filepath.Join(dir, "expr.grammar"), p.GrammarPath())
	assert.Equal(t, "/var/cache/lr1gen.db", p.CachePath())
	assert.Nil(t, p.Declaration())
	assert.Empty(t, p.CompileOptions())

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestProject_Declaration(t *testing.T) {
	p := &Project{
		Start:        "<S>",
		Terminals:    []string{"a"},
		NonTerminals: []string{"<S>"},
		Table: Table{
			Conflicts: ConflictDetect,
			MaxStates: 10,
		},
	}
	decl := p.Declaration()
	require.NotNil(t, decl)
	assert.Equal(t, "<S>", decl.Start)
	assert.Equal(t, []string{"a"}, decl.Terminals)
	assert.Equal(t, []string{"<S>"}, decl.NonTerminals)
	assert.Len(t, p.CompileOptions(), 2)
	assert.Empty(t, p.CachePath())
}

func TestConflictMode(t *testing.T) {
	var m ConflictMode
	assert.Equal(t, "overwrite", m.String())
	assert.Equal(t, "mode", m.Type())
	require.NoError(t, m.Set("ERROR"))
	assert.Equal(t, ConflictError, m)
	assert.Error(t, m.Set("warn"))
	assert.Equal(t, ConflictError, m)
}
