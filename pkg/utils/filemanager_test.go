package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sepa-direct-debit/pkg/sepadd"
)

func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()

	dir := t.TempDir()
	fm := NewFileManager(
		filepath.Join(dir, "input"),
		filepath.Join(dir, "output"),
		filepath.Join(dir, "input_archive"),
		filepath.Join(dir, "output_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestFileManager(t)
	touch(t, filepath.Join(fm.InputDir, "b.xlsx"))
	touch(t, filepath.Join(fm.InputDir, "a.CSV"))
	touch(t, filepath.Join(fm.InputDir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.csv"), 0755))

	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "a.CSV"),
		filepath.Join(fm.InputDir, "b.xlsx"),
	}, files)
}

func TestWriteOutput(t *testing.T) {
	fm := newTestFileManager(t)

	path, err := fm.WriteOutput("doc.xml", []byte("<Document/>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.OutputDir, "doc.xml"), path)

	_, err = fm.WriteOutput("doc.xml", []byte("<Document/>"))
	assert.ErrorContains(t, err, "already exists")
}

func TestArchive(t *testing.T) {
	fm := newTestFileManager(t)
	fm.UseTimestampSubdirs = true
	fm.Now = func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }

	input := filepath.Join(fm.InputDir, "members.csv")
	touch(t, input)
	output := filepath.Join(fm.OutputDir, "doc.xml")
	touch(t, output)

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "2024", "01", "05", "members.csv"), archived)
	assert.NoFileExists(t, input)
	assert.FileExists(t, archived)

	copied, err := fm.ArchiveOutputFile(output)
	require.NoError(t, err)
	assert.FileExists(t, output)
	assert.FileExists(t, copied)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{profile}_{msgid}_{uuid}", map[string]string{
		"profile": "club",
		"msgid":   "050120244530-a1d0c6e83f02",
	})

	pattern := regexp.MustCompile(`^club_050120244530-a1d0c6e83f02_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.xml$`)
	assert.Regexp(t, pattern, name)

	assert.Regexp(t, `^\d{8}_\d{6}\.XML$`, GenerateOutputFileName("{timestamp}.XML", nil))
	assert.Regexp(t, `^\d{8}\.xml$`, GenerateOutputFileName("{date}", nil))
	assert.NotEqual(t, GenerateOutputFileName("{uuid}", nil), GenerateOutputFileName("{uuid}", nil))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "members.csv",
		ErrorType:    "row rejected",
		ErrorMessage: "does not validate",
		RowNumber:    4,
		FieldName:    "IBAN",
	}}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Errors: 1")
	assert.Contains(t, string(data), "  Row Number:     4\n")
	assert.Contains(t, string(data), "  Field:          IBAN\n")
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC)

	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalPayments:   3,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "a.csv", OutputFile: "a.xml", Amount: "2250"}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.csv", ErrorMessage: "rows rejected: 1 of 3"}},
	}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "processing_summary_20240105_140002.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  Duration:       2s\n")
	assert.Contains(t, string(data), "  Amount:       2250\n")
	assert.Contains(t, string(data), "  Error: rows rejected: 1 of 3\n")
}

func TestWriteDocumentSummary(t *testing.T) {
	documentPath := filepath.Join(t.TempDir(), "club.xml")

	path, err := WriteDocumentSummary(sepadd.Summary{
		MessageID:         "id",
		TotalTransactions: 1,
		TotalAmount:       "1000",
		Batches:           []sepadd.BatchSummary{{Type: "FRST", Transactions: 1, Amount: "1000"}},
	}, documentPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(documentPath), "club.summary.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "1000", decoded["total_amount"])
	assert.Len(t, decoded["batches"], 1)
}
