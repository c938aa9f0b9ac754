// =============================================================================
// SEPA Direct Debit Builder - Schema Validation
// =============================================================================
//
// Schema validation is delegated to an external facility. The engine hands a
// serialized document and the path of the matching pain.008 XSD to a
// Validator and receives a Result. A document that fails the schema is a
// normal outcome (Result.Valid == false); an error is returned only when the
// facility itself could not run.
//
// The bundled implementation shells out to xmllint:
//
//   xmllint --noout --schema pain.008.001.02.xsd -
//
// =============================================================================

package xsd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// DefaultXMLLintPath is the command used when no explicit path is configured.
const DefaultXMLLintPath = "xmllint"

// Problem is a single schema mismatch reported by the validator.
type Problem struct {
	// Line is the 1-based line in the document, or 0 when unknown.
	Line int

	Message string
}

func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("line %d: %s", p.Line, p.Message)
	}
	return p.Message
}

// Result is the outcome of validating one document.
type Result struct {
	Valid    bool
	Problems []Problem
}

// Validator validates a document against an XSD file.
type Validator interface {
	Validate(ctx context.Context, document []byte, schemaPath string) (Result, error)
}

// =============================================================================
// XMLLINT
// =============================================================================

// xmllint exit codes that mean "the input did not validate" rather than
// "xmllint could not do its job".
var invalidExitCodes = map[int]bool{
	1: true, // document not well-formed
	3: true, // DTD validation error
	4: true, // schema validation error
}

// XMLLint validates documents by running the xmllint binary.
type XMLLint struct {
	path   string
	logger *slog.Logger
}

// NewXMLLint creates an XMLLint validator. An empty path uses
// DefaultXMLLintPath from PATH.
func NewXMLLint(path string, logger *slog.Logger) *XMLLint {
	if path == "" {
		path = DefaultXMLLintPath
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &XMLLint{path: path, logger: logger}
}

// Validate runs xmllint with the document on stdin.
func (x *XMLLint) Validate(ctx context.Context, document []byte, schemaPath string) (Result, error) {
	cmd := exec.CommandContext(ctx, x.path, "--noout", "--schema", schemaPath, "-")
	cmd.Stdin = bytes.NewReader(document)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		x.logger.Debug("document validates", "schema", schemaPath)
		return Result{Valid: true}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && invalidExitCodes[exitErr.ExitCode()] {
		problems := ParseDiagnostics(stderr.String())
		x.logger.Debug("document fails to validate",
			"schema", schemaPath,
			"problems", len(problems),
		)
		return Result{Valid: false, Problems: problems}, nil
	}

	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("xmllint interrupted: %w", ctx.Err())
	}

	detail := strings.TrimSpace(stderr.String())
	if detail != "" {
		return Result{}, fmt.Errorf("failed to run %s: %w: %s", x.path, err, detail)
	}
	return Result{}, fmt.Errorf("failed to run %s: %w", x.path, err)
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

var diagnosticLine = regexp.MustCompile(`^[^:]*:(\d+): (.+)$`)

// ParseDiagnostics turns xmllint stderr output into problems. Summary lines
// such as "- fails to validate" are dropped.
func ParseDiagnostics(output string) []Problem {
	var problems []Problem

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, "fails to validate") || strings.HasSuffix(line, " validates") {
			continue
		}

		if match := diagnosticLine.FindStringSubmatch(line); match != nil {
			lineNumber, _ := strconv.Atoi(match[1])
			problems = append(problems, Problem{Line: lineNumber, Message: match[2]})
			continue
		}

		// Continuation lines (source excerpts and carets) are not reported.
		if strings.HasPrefix(line, "^") {
			continue
		}

		problems = append(problems, Problem{Message: line})
	}

	return problems
}
