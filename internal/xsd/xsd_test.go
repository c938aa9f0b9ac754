package xsd

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiagnostics(t *testing.T) {
	output := "-:12: element CtrlSum: Schemas validity error : Element '{urn:iso:std:iso:20022:tech:xsd:pain.008.001.02}CtrlSum': 'abc' is not a valid value of the atomic type 'DecimalNumber'.\n" +
		"-:30: element BICFI: Schemas validity error : Element 'BICFI': This element is not expected.\n" +
		"- fails to validate\n"

	problems := ParseDiagnostics(output)
	require.Len(t, problems, 2)

	assert.Equal(t, 12, problems[0].Line)
	assert.Contains(t, problems[0].Message, "CtrlSum")
	assert.Equal(t, 30, problems[1].Line)
	assert.Equal(t, "line 30: element BICFI: Schemas validity error : Element 'BICFI': This element is not expected.", problems[1].String())
}

func TestParseDiagnostics_UnnumberedLines(t *testing.T) {
	problems := ParseDiagnostics("warning: failed to load external entity \"missing.xsd\"\n\n- validates\n")
	require.Len(t, problems, 1)
	assert.Equal(t, 0, problems[0].Line)
	assert.Equal(t, `warning: failed to load external entity "missing.xsd"`, problems[0].String())
}

// fakeXMLLint writes a shell script that prints stderr and exits with code.
func fakeXMLLint(t *testing.T, stderr string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "xmllint")
	script := "#!/bin/sh\ncat > /dev/null\nprintf '%s' '" + stderr + "' >&2\nexit " + strconv.Itoa(code) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestXMLLint_Valid(t *testing.T) {
	lint := NewXMLLint(fakeXMLLint(t, "- validates", 0), nil)

	result, err := lint.Validate(context.Background(), []byte("<Document/>"), "pain.008.001.02.xsd")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Problems)
}

func TestXMLLint_Invalid(t *testing.T) {
	lint := NewXMLLint(fakeXMLLint(t, "-:3: element Foo: Schemas validity error : not expected", 4), nil)

	result, err := lint.Validate(context.Background(), []byte("<Document/>"), "pain.008.001.02.xsd")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Problems, 1)
	assert.Equal(t, 3, result.Problems[0].Line)
}

func TestXMLLint_SchemaFailureIsError(t *testing.T) {
	lint := NewXMLLint(fakeXMLLint(t, "failed to compile schema", 5), nil)

	_, err := lint.Validate(context.Background(), []byte("<Document/>"), "broken.xsd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile schema")
}

func TestXMLLint_MissingBinary(t *testing.T) {
	lint := NewXMLLint(filepath.Join(t.TempDir(), "no-such-xmllint"), nil)

	_, err := lint.Validate(context.Background(), []byte("<Document/>"), "pain.008.001.02.xsd")
	assert.Error(t, err)
}

func TestNewXMLLint_Defaults(t *testing.T) {
	lint := NewXMLLint("", nil)
	assert.Equal(t, DefaultXMLLintPath, lint.path)
	assert.NotNil(t, lint.logger)
}
