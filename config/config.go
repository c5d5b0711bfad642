// Package config reads lr1gen project files.
//
// A project file is a TOML document naming a grammar description and the options it is compiled
// with:
//
//	name = "expr"
//	grammar = "expr.grammar"
//	start = "<E>"
//	terminals = ["PLUS", "NUM"]
//	nonterminals = ["<E>", "<T>"]
//	ebnf = false
//
//	[table]
//	conflicts = "detect"
//	max_states = 0
//
//	[cache]
//	path = ".lr1gen/cache.db"
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nihei9/lr1gen/grammar"
	"github.com/nihei9/lr1gen/spec"
	"github.com/pkg/errors"
)

const DefaultFileName = "lr1gen.toml"

// ConflictMode decides what compiling does about conflicts. It implements pflag.Value.
type ConflictMode string

const (
	ConflictOverwrite = ConflictMode("overwrite")
	ConflictDetect    = ConflictMode("detect")
	ConflictError     = ConflictMode("error")
)

func (m *ConflictMode) String() string {
	if *m == "" {
		return string(ConflictOverwrite)
	}
	return string(*m)
}

func (m *ConflictMode) Set(v string) error {
	switch mode := ConflictMode(strings.ToLower(v)); mode {
	case ConflictOverwrite, ConflictDetect, ConflictError:
		*m = mode
		return nil
	}
	return errors.Errorf("conflict mode must be one of %v, %v, or %v: %q", ConflictOverwrite, ConflictDetect, ConflictError, v)
}

func (m *ConflictMode) Type() string {
	return "mode"
}

// CompileOptions converts the mode into the options of grammar.Compile.
func (m ConflictMode) CompileOptions() []grammar.CompileOption {
	switch m {
	case ConflictDetect:
		return []grammar.CompileOption{grammar.DetectConflicts()}
	case ConflictError:
		return []grammar.CompileOption{grammar.FailOnConflict()}
	}
	return nil
}

type Table struct {
	Conflicts ConflictMode `toml:"conflicts"`
	MaxStates int          `toml:"max_states"`
}

type Cache struct {
	Path string `toml:"path"`
}

type Project struct {
	Name         string   `toml:"name"`
	Grammar      string   `toml:"grammar"`
	Start        string   `toml:"start"`
	Terminals    []string `toml:"terminals"`
	NonTerminals []string `toml:"nonterminals"`
	EBNF         bool     `toml:"ebnf"`
	Table        Table    `toml:"table"`
	Cache        Cache    `toml:"cache"`

	// Dir is the directory of the project file. Relative paths are resolved against it.
	Dir string `toml:"-"`
}

// Load reads a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read the project file %s", path)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid project file %s", path)
	}
	p.Dir = filepath.Dir(path)
	return p, nil
}

// Unmarshal decodes and checks a project file. Dir of the result is empty.
func Unmarshal(data []byte) (*Project, error) {
	p := &Project{}
	md, err := toml.Decode(string(data), p)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown key: %v", undecoded[0])
	}
	if p.Table.Conflicts == "" {
		p.Table.Conflicts = ConflictOverwrite
	} else {
		err := p.Table.Conflicts.Set(string(p.Table.Conflicts))
		if err != nil {
			return nil, err
		}
	}
	if p.Table.MaxStates < 0 {
		return nil, errors.Errorf("max_states must be 0 or greater: %v", p.Table.MaxStates)
	}
	return p, nil
}

// GrammarPath returns the path of the grammar description.
func (p *Project) GrammarPath() string {
	return p.resolve(p.Grammar)
}

// CachePath returns the path of the cache database, or an empty string when the cache is disabled.
func (p *Project) CachePath() string {
	return p.resolve(p.Cache.Path)
}

func (p *Project) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}

// Declaration returns the declared symbols, or nil when the project leaves them to be inferred.
func (p *Project) Declaration() *spec.Declaration {
	if len(p.Terminals) == 0 && len(p.NonTerminals) == 0 {
		return nil
	}
	return &spec.Declaration{
		Terminals:    p.Terminals,
		NonTerminals: p.NonTerminals,
		Start:        p.Start,
	}
}

// CompileOptions returns the options of grammar.Compile the project asks for.
func (p *Project) CompileOptions() []grammar.CompileOption {
	opts := p.Table.Conflicts.CompileOptions()
	if p.Table.MaxStates > 0 {
		opts = append(opts, grammar.MaxStates(p.Table.MaxStates))
	}
	return opts
}
