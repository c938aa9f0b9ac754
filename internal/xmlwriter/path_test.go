package xmlwriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(elements []*Element) []string {
	var out []string
	for _, el := range elements {
		if id := el.Child("PmtInfId"); id != nil {
			out = append(out, el.Name+":"+id.Value)
			continue
		}
		out = append(out, el.Name)
	}
	return out
}

func TestSelect(t *testing.T) {
	root := sampleTree()

	tests := []struct {
		expr     string
		expected []string
	}{
		{"/Document/CstmrDrctDbtInitn/GrpHdr", []string{"GrpHdr"}},
		{"/Document", []string{"Document"}},
		{"/Other", nil},
		{"//PmtInf", []string{"PmtInf:A", "PmtInf:B"}},
		{"//PmtInf[2]", []string{"PmtInf:B"}},
		{"//PmtInf[3]", nil},
		{"//PmtInf[PmtInfId='A']", []string{"PmtInf:A"}},
		{"//PmtInf[PmtInfId=\"B\"]", []string{"PmtInf:B"}},
		{"//InstdAmt[@Ccy='USD']", []string{"InstdAmt"}},
		{"CstmrDrctDbtInitn/GrpHdr/MsgId", []string{"MsgId"}},
		{"CstmrDrctDbtInitn/*", []string{"GrpHdr", "PmtInf:A", "PmtInf:B"}},
		{"//*[PmtInfId='B']/InstdAmt", []string{"InstdAmt"}},
		{"//CstmrDrctDbtInitn//PmtInfId", []string{"PmtInfId", "PmtInfId"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			matches, err := Select(root, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(matches))
		})
	}
}

func TestSelect_DescendantDoesNotDuplicate(t *testing.T) {
	root := NewElement("a", NewElement("b", NewElement("c", TextElement("d", "x"))))

	matches, err := Select(root, "//*//d")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{
		"",
		"/",
		"a/",
		"a//",
		"a[",
		"a[0]",
		"a[b]",
		"a[b=c]",
		"a[@=1]",
		"a]",
		"1a",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Compile(expr)
			assert.Error(t, err)
		})
	}
}

func TestCompile_QuotedBracket(t *testing.T) {
	root := NewElement("r", NewElement("item", TextElement("k", "a]b")))

	path := MustCompile("item[k='a]b']")
	assert.Equal(t, "item[k='a]b']", path.String())
	assert.Len(t, path.Select(root), 1)
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("a[") })
}
