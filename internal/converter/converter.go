// =============================================================================
// SEPA Direct Debit Builder - Converter Module
// =============================================================================
//
// This module contains the per-file pipeline. It turns one payment export
// into one pain.008 document.
//
// CONVERSION PIPELINE:
//   1. Read the payment file (CSV or XLSX) into rows
//   2. Create a document from the profile's creditor block
//   3. Apply transformation rules to each row
//   4. Map each row onto a payment and add it to the document
//   5. Finalize the document
//   6. Optionally validate it against the pain.008 schema
//   7. Write the output file and its summary
//   8. Archive the processed files
//
// CONCURRENCY:
//   A Converter owns its document, so separate files can be processed in
//   separate goroutines.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
	"github.com/ginjaninja78/sepa-direct-debit/internal/csvparser"
	"github.com/ginjaninja78/sepa-direct-debit/internal/types"
	"github.com/ginjaninja78/sepa-direct-debit/internal/xlsxparser"
	"github.com/ginjaninja78/sepa-direct-debit/internal/xsd"
	"github.com/ginjaninja78/sepa-direct-debit/pkg/sepadd"
	"github.com/ginjaninja78/sepa-direct-debit/pkg/utils"
)

// ErrRowsRejected is returned when rows were rejected and the profile does
// not allow skipping them.
var ErrRowsRejected = errors.New("rows rejected")

// ErrSchemaInvalid is returned when a document fails schema validation.
var ErrSchemaInvalid = errors.New("document does not match schema")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Profile is the code of the profile used.
	Profile string

	// OutputFile is the path to the generated document.
	// This is empty if processing failed.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// RowErrors lists every rejected row, also when processing succeeded
	// because the profile skips invalid rows.
	RowErrors []types.RowError

	// Summary describes the generated document.
	Summary sepadd.Summary

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of data rows read from the file.
	RowsRead int

	// PaymentsAdded is the number of payments in the document.
	PaymentsAdded int

	// RowsRejected is the number of rows that did not become payments.
	RowsRejected int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single payment file.
type Converter struct {
	inputPath  string
	profile    *config.CreditorProfile
	mainConfig *config.MainConfig
	files      *utils.FileManager
	logger     *slog.Logger
	schemas    xsd.Validator
	engineOpts []sepadd.Option
}

// Option customizes a Converter.
type Option func(*Converter)

// WithLogger sets the logger. File and profile are added to every record.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSchemaValidator replaces the xmllint validator used when
// validate_schema is enabled.
func WithSchemaValidator(validator xsd.Validator) Option {
	return func(c *Converter) {
		c.schemas = validator
	}
}

// WithEngineOptions passes options through to sepadd.New.
func WithEngineOptions(opts ...sepadd.Option) Option {
	return func(c *Converter) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the payment file.
//   - profile: The creditor profile matched to the file.
//   - mainConfig: The main application configuration.
func New(inputPath string, profile *config.CreditorProfile, mainConfig *config.MainConfig, opts ...Option) *Converter {
	c := &Converter{
		inputPath:  inputPath,
		profile:    profile,
		mainConfig: mainConfig,
		files: utils.NewFileManager(
			mainConfig.InputDir,
			mainConfig.OutputDir,
			mainConfig.InputArchiveDir,
			mainConfig.OutputArchiveDir,
		),
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With("file", filepath.Base(inputPath), "profile", profile.ProfileCode)

	if mainConfig.ValidateSchema && c.schemas == nil {
		c.schemas = xsd.NewXMLLint(mainConfig.XMLLintPath, c.logger)
	}

	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{
		FilePath: c.inputPath,
		Profile:  c.profile.ProfileCode,
	}

	fail := func(err error) Result {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		c.logger.Error("processing failed", "error", err)
		return result
	}

	c.logger.Info("processing file")

	// =========================================================================
	// STEP 1: READ PAYMENT FILE
	// =========================================================================

	table, err := c.readTable()
	if err != nil {
		return fail(fmt.Errorf("failed to read payment file: %w", err))
	}

	result.Stats.RowsRead = len(table.Rows)
	c.logger.Debug("read payment file", "rows", len(table.Rows))

	// =========================================================================
	// STEP 2: CREATE DOCUMENT
	// =========================================================================

	cfg, err := c.profile.EngineConfig()
	if err != nil {
		return fail(err)
	}

	opts := []sepadd.Option{sepadd.WithLogger(c.logger)}
	if c.schemas != nil {
		opts = append(opts, sepadd.WithSchemaValidator(c.schemas, c.mainConfig.SchemaDir))
	}
	opts = append(opts, c.engineOpts...)

	doc, err := sepadd.New(cfg, opts...)
	if err != nil {
		return fail(err)
	}

	// =========================================================================
	// STEP 3-4: TRANSFORM, MAP AND ADD PAYMENTS
	// =========================================================================

	result.RowErrors = c.addPayments(ctx, doc, table.Rows)
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	result.Stats.RowsRejected = len(result.RowErrors)
	result.Stats.PaymentsAdded = len(table.Rows) - len(result.RowErrors)

	if len(result.RowErrors) > 0 && !c.profile.SkipInvalidRows {
		return fail(fmt.Errorf("%w: %d of %d", ErrRowsRejected, len(result.RowErrors), len(table.Rows)))
	}

	if doc.IsEmpty() {
		return fail(errors.New("no payments to collect"))
	}

	// =========================================================================
	// STEP 5-6: FINALIZE AND VALIDATE
	// =========================================================================

	document, err := doc.Save()
	if err != nil {
		return fail(fmt.Errorf("failed to generate document: %w", err))
	}

	if c.mainConfig.ValidateSchema {
		if err := c.validate(ctx, doc, document); err != nil {
			return fail(err)
		}
	}

	result.Summary = doc.Summary()

	// =========================================================================
	// STEP 7: WRITE OUTPUT FILE
	// =========================================================================

	fileName := utils.GenerateOutputFileName(c.mainConfig.OutputFileFormat, map[string]string{
		"profile": c.profile.ProfileCode,
		"msgid":   doc.MessageID(),
	})

	outputPath, err := c.files.WriteOutput(fileName, document)
	if err != nil {
		return fail(fmt.Errorf("failed to write output: %w", err))
	}

	result.OutputFile = outputPath
	c.logger.Info("wrote document",
		"output", outputPath,
		"msg_id", doc.MessageID(),
		"payments", result.Summary.TotalTransactions,
		"amount", result.Summary.TotalAmount,
	)

	if _, err := utils.WriteDocumentSummary(result.Summary, outputPath); err != nil {
		c.logger.Warn("failed to write document summary", "error", err)
	}

	// =========================================================================
	// STEP 8: ARCHIVE FILES
	// =========================================================================

	if err := c.archiveFiles(outputPath); err != nil {
		c.logger.Warn("failed to archive files", "error", err)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readTable parses the input file according to its extension.
func (c *Converter) readTable() (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(c.inputPath)) {
	case ".csv":
		return csvparser.ParseFile(c.inputPath, c.profile.CSVSettings)
	case ".xlsx":
		return xlsxparser.ParseFile(c.inputPath, c.profile.XLSXSettings)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(c.inputPath))
	}
}

// addPayments adds one payment per row and returns the rejected rows.
// It stops early when ctx is cancelled.
func (c *Converter) addPayments(ctx context.Context, doc *sepadd.Document, rows []types.Row) []types.RowError {
	transformer := NewTransformer(c.profile.TransformationRules)
	mapper := NewMapper(c.profile)

	var rowErrors []types.RowError

	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}

		rowErr := c.addRow(doc, transformer, mapper, row)
		if rowErr == nil {
			continue
		}

		c.logger.Warn("row rejected", "row", rowErr.Row, "field", rowErr.Field, "reason", rowErr.Message)
		rowErrors = append(rowErrors, *rowErr)
	}

	return rowErrors
}

func (c *Converter) addRow(doc *sepadd.Document, transformer *Transformer, mapper *Mapper, row types.Row) *types.RowError {
	fields, err := transformer.TransformRow(row.Fields)
	if err != nil {
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) {
			return &types.RowError{Row: row.Number, Field: fieldErr.Column, Message: fieldErr.Err.Error()}
		}
		return &types.RowError{Row: row.Number, Message: err.Error()}
	}

	if _, err := doc.AddPayment(mapper.Payment(fields)); err != nil {
		var paymentErr *sepadd.PaymentError
		if errors.As(err, &paymentErr) {
			return &types.RowError{Row: row.Number, Field: paymentErr.Field, Message: paymentErr.Reason}
		}
		return &types.RowError{Row: row.Number, Message: err.Error()}
	}

	return nil
}

// validate runs the finalized document through the schema validator.
func (c *Converter) validate(ctx context.Context, doc *sepadd.Document, document []byte) error {
	validation, err := doc.Validate(ctx, document)
	if err != nil {
		return err
	}

	if !validation.Valid {
		problems := lo.Map(validation.Problems, func(p xsd.Problem, _ int) string { return p.String() })
		return fmt.Errorf("%w %s: %s", ErrSchemaInvalid, filepath.Base(doc.SchemaPath()), strings.Join(problems, "; "))
	}

	c.logger.Debug("document matches schema", "schema", doc.SchemaPath())
	return nil
}

// archiveFiles moves the input file and copies the output file to their
// archive directories.
func (c *Converter) archiveFiles(outputPath string) error {
	if _, err := c.files.ArchiveInputFile(c.inputPath); err != nil {
		return fmt.Errorf("failed to archive input file: %w", err)
	}

	if _, err := c.files.ArchiveOutputFile(outputPath); err != nil {
		return fmt.Errorf("failed to archive output file: %w", err)
	}

	return nil
}
