package test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffTree(t *testing.T) {
	tests := []struct {
		caption   string
		t1        *Tree
		t2        *Tree
		different bool
	}{
		{
			caption: "identical leaves match",
			t1:      NewTree("a"),
			t2:      NewTree("a"),
		},
		{
			caption: "identical nested trees match",
			t1: NewTree("a",
				NewTree("b",
					NewTree("c"),
				),
				NewTree("d",
					NewTree("d"),
				),
			),
			t2: NewTree("a",
				NewTree("b",
					NewTree("c"),
				),
				NewTree("d",
					NewTree("d"),
				),
			),
		},
		{
			caption: "`_` matches any kind",
			t1: NewTree("a",
				NewTree("_"),
			),
			t2: NewTree("a",
				NewTree("b"),
			),
		},
		{
			caption:   "kinds differ",
			t1:        NewTree("a"),
			t2:        NewTree("b"),
			different: true,
		},
		{
			caption: "the actual tree lacks a child",
			t1: NewTree("a",
				NewTree("b"),
			),
			t2:        NewTree("a"),
			different: true,
		},
		{
			caption: "the actual tree has an extra child",
			t1: NewTree("a",
				NewTree("b"),
				NewTree("c"),
			),
			t2: NewTree("a",
				NewTree("b"),
				NewTree("c"),
				NewTree("d"),
			),
			different: true,
		},
		{
			caption: "a grandchild differs",
			t1: NewTree("a",
				NewTree("b",
					NewTree("c"),
				),
			),
			t2: NewTree("a",
				NewTree("b",
					NewTree("d"),
				),
			),
			different: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			diffs := DiffTree(tt.t1.Fill(), tt.t2.Fill())
			if tt.different {
				assert.NotEmpty(t, diffs)
			} else {
				assert.Empty(t, diffs)
			}
		})
	}
}

func TestDiffTree_Path(t *testing.T) {
	diffs := DiffTree(
		NewTree("a", NewTree("b"), NewTree("c")).Fill(),
		NewTree("a", NewTree("b"), NewTree("d")).Fill(),
	)
	require.Len(t, diffs, 1)
	assert.Equal(t, "a.[1]c", diffs[0].ExpectedPath)
	assert.Equal(t, "a.[1]d", diffs[0].ActualPath)
}

func TestParseTestCase(t *testing.T) {
	tests := []struct {
		caption  string
		src      string
		tc       *TestCase
		parseErr bool
	}{
		{
			caption: "a test case consists of three parts",
			src: `test
---
foo
---
(foo)
`,
			tc: &TestCase{
				Description: "test",
				Source:      []byte("foo"),
				Output:      NewTree("foo"),
			},
		},
		{
			caption: "blank lines belong to the parts",
			src: `
test

---

foo

---

(foo)

`,
			tc: &TestCase{
				Description: "\ntest\n",
				Source:      []byte("\nfoo\n"),
				Output:      NewTree("foo"),
			},
		},
		{
			caption: "a tree can nest and span lines",
			src: `test
---
A A
---
(<S>
    (A)
    (<S> (A) (<S>)))
`,
			tc: &TestCase{
				Description: "test",
				Source:      []byte("A A"),
				Output: NewTree("<S>",
					NewTree("A"),
					NewTree("<S>",
						NewTree("A"),
						NewTree("<S>"),
					),
				),
			},
		},
		{
			caption: "the length of a part delimiter may be greater than 3",
			src: `
test
----
foo
----
(foo)
`,
			tc: &TestCase{
				Description: "\ntest",
				Source:      []byte("foo"),
				Output:      NewTree("foo"),
			},
		},
		{
			caption: "the description part may be empty",
			src: `----
foo
----
(foo)
`,
			tc: &TestCase{
				Description: "",
				Source:      []byte("foo"),
				Output:      NewTree("foo"),
			},
		},
		{
			caption: "the source part may be empty",
			src: `test
---
---
(foo)
`,
			tc: &TestCase{
				Description: "test",
				Source:      []byte{},
				Output:      NewTree("foo"),
			},
		},
		{
			caption: "the word reject in the tree part expects a rejection",
			src: `test
---
A B
---
  reject
`,
			tc: &TestCase{
				Description: "test",
				Source:      []byte("A B"),
				Reject:      true,
			},
		},
		{
			caption:  "an empty source is an error",
			src:      ``,
			parseErr: true,
		},
		{
			caption: "a test case without a tree part is an error",
			src: `test
---
foo
---
`,
			parseErr: true,
		},
		{
			caption: "a delimiter needs three dashes",
			src: `test
--
foo
--
(foo)
`,
			parseErr: true,
		},
		{
			caption: "a tree must start with a parenthesis",
			src: `test
---
foo
---
foo
`,
			parseErr: true,
		},
		{
			caption: "an unclosed tree is an error",
			src: `test
---
foo
---
(foo (bar)
`,
			parseErr: true,
		},
		{
			caption: "only one tree is allowed",
			src: `test
---
foo
---
(foo) (bar)
`,
			parseErr: true,
		},
		{
			caption: "a node needs a kind",
			src: `test
---
foo
---
()
`,
			parseErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			tc, err := ParseTestCase(strings.NewReader(tt.src))
			if tt.parseErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tc.Description, tc.Description)
			assert.Equal(t, tt.tc.Source, tc.Source)
			assert.Equal(t, tt.tc.Reject, tc.Reject)
			if tt.tc.Output == nil {
				assert.Nil(t, tc.Output)
				return
			}
			assert.Empty(t, DiffTree(tt.tc.Output.Fill(), tc.Output))
		})
	}
}

func TestParseTestCase_ErrorPosition(t *testing.T) {
	_, err := ParseTestCase(strings.NewReader(`test
---
foo
---
(foo
  bar)
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "6:3:")
}

func TestTree_Format(t *testing.T) {
	tree := NewTree("<S>",
		NewTree("A"),
		NewTree("<S>"),
	)
	assert.Equal(t, "(<S>\n    (A)\n    (<S>))", string(tree.Format()))
}
