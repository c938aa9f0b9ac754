// =============================================================================
// SEPA Direct Debit Builder - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the builder, including:
//   - Payment file discovery
//   - Output writing and file naming
//   - File archival (moving processed files)
//   - Error and summary log generation
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after successful processing
//   - Output files are copied to output_archive for long-term storage
//   - Failed files remain in their original location
//   - Error logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sepa-direct-debit/pkg/sepadd"
)

// InputExtensions are the payment file types the builder reads.
var InputExtensions = []string{".csv", ".xlsx"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the builder.
type FileManager struct {
	// InputDir is the directory where payment files are placed.
	InputDir string

	// OutputDir is the directory where pain.008 files are placed.
	OutputDir string

	// InputArchiveDir is the directory for archived payment files.
	InputArchiveDir string

	// OutputArchiveDir is the directory for archived pain.008 files.
	OutputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: input_archive/2024/01/15/members.csv
	UseTimestampSubdirs bool

	// Now is the clock used for archive subdirectories.
	Now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		Now:              time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.InputDir,
		fm.OutputDir,
		fm.InputArchiveDir,
		fm.OutputArchiveDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the payment files in the input directory, sorted
// by name. Only regular files with an extension from InputExtensions are
// returned.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if slices.Contains(InputExtensions, ext) {
			files = append(files, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	return files, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteOutput writes a document to the output directory.
func (fm *FileManager) WriteOutput(fileName string, data []byte) (string, error) {
	outputPath := filepath.Join(fm.OutputDir, fileName)

	if FileExists(outputPath) {
		return "", fmt.Errorf("output file already exists: %s", outputPath)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return outputPath, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies an output file to the archive directory, leaving
// it in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(fm.OutputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.Now()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     any key of params, e.g. {profile} and {msgid}
//   - params: A map of placeholder values.
//
// EXAMPLE:
//
//	format: "{profile}_{date}_{msgid}.xml"
//	params: {"profile": "club", "msgid": "050120244530-a1d0c6e83f02"}
//	output: "club_20240105_050120244530-a1d0c6e83f02.xml"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xml") {
		result += ".xml"
	}

	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	RowNumber    int
	FieldName    string
}

// WriteErrorLog writes error entries to a log file.
//
// RETURNS:
//   - The path to the error log file, or "" when there are no entries.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := time.Now()
	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "SEPA Direct Debit Builder - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number:     %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
		}

		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalRows       int
	TotalPayments   int
	RejectedRows    int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	MessageID   string
	Rows        int
	Payments    int
	Amount      string
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a log file.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("processing_summary_%s.txt", summary.EndTime.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "SEPA Direct Debit Builder - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Total Rows:         %d\n"+
		"  Total Payments:     %d\n"+
		"  Rejected Rows:      %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRows,
		summary.TotalPayments,
		summary.RejectedRows)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			fmt.Fprintf(writer, "  Message ID:   %s\n", pf.MessageID)
			fmt.Fprintf(writer, "  Rows:         %d\n", pf.Rows)
			fmt.Fprintf(writer, "  Payments:     %d\n", pf.Payments)
			fmt.Fprintf(writer, "  Amount:       %s\n", pf.Amount)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// WriteDocumentSummary writes the batch summary of one document as YAML
// next to it, replacing the .xml extension with .summary.yaml.
func WriteDocumentSummary(summary sepadd.Summary, documentPath string) (string, error) {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	summaryPath := strings.TrimSuffix(documentPath, filepath.Ext(documentPath)) + ".summary.yaml"
	if err := os.WriteFile(summaryPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
