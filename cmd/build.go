// =============================================================================
// SEPA Direct Debit Builder - Build Command
// =============================================================================
//
// This file defines the 'build' command, which is the main command for
// turning payment exports into pain.008 documents.
//
// COMMAND USAGE:
//   sepadd build [flags]
//
// FLAGS:
//   --file     : Process only this file
//   --profile  : Process only files matched to this profile code
//
// PROCESSING PIPELINE:
//   1. Load configuration files
//   2. Discover payment files in the input directory
//   3. Match each file to a creditor profile
//   4. For each file (concurrently, at most max_concurrency at a time):
//      a. Parse the payment file
//      b. Apply transformation rules and map rows to payments
//      c. Build and finalize the document
//      d. Validate it against the schema (validate_schema)
//      e. Write the output file
//      f. Archive processed files
//   5. Write the error log and summary report
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
	"github.com/ginjaninja78/sepa-direct-debit/internal/converter"
	"github.com/ginjaninja78/sepa-direct-debit/internal/types"
	"github.com/ginjaninja78/sepa-direct-debit/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// buildOptions holds the flags of the build command.
type buildOptions struct {
	// file limits processing to one file.
	file string

	// profile limits processing to files matched to one profile code.
	profile string
}

var buildFlags buildOptions

// =============================================================================
// BUILD COMMAND DEFINITION
// =============================================================================

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build pain.008 documents from payment files",
	Long: `The build command scans the input directory for payment files (.csv,
.xlsx), matches them to a creditor profile, and writes one pain.008 document
per file.

Each file is processed independently and concurrently.

On successful processing:
  - The document is placed in the output directory with a .summary.yaml
  - The original payment file is moved to the input archive
  - A summary report is generated

On error:
  - An error log is created in the output directory
  - The original payment file remains in the input directory
  - Other files are still processed when continue_on_error is set`,

	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, logger, err := loadEnvironment()
		if err != nil {
			return err
		}
		return runBuild(cmd.Context(), mainConfig, logger, buildFlags, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(
		&buildFlags.file,
		"file",
		"",
		"Process only this payment file",
	)

	buildCmd.Flags().StringVar(
		&buildFlags.profile,
		"profile",
		"",
		"Process only files matched to this profile code",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// job is one payment file with its matched profile.
type job struct {
	file    string
	profile *config.CreditorProfile
}

// runBuild orchestrates the conversion of every discovered file.
func runBuild(ctx context.Context, mainConfig *config.MainConfig, logger *slog.Logger, opts buildOptions, out io.Writer) error {
	summary := utils.ProcessingSummary{StartTime: time.Now()}

	// =========================================================================
	// STEP 1: LOAD PROFILES
	// =========================================================================

	profiles, err := config.LoadProfiles(mainConfig.ProfilesDir)
	if err != nil {
		return fmt.Errorf("failed to load creditor profiles: %w", err)
	}

	logger.Info("loaded creditor profiles", "count", len(profiles))

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	files := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	inputFiles := []string{opts.file}
	if opts.file == "" {
		inputFiles, err = files.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	// =========================================================================
	// STEP 3: MATCH PROFILES
	// =========================================================================

	var jobs []job
	var failures []converter.Result

	for _, file := range inputFiles {
		profile := config.MatchProfile(file, profiles)
		switch {
		case profile == nil:
			failures = append(failures, converter.Result{
				FilePath: file,
				Error:    errors.New("no matching creditor profile found"),
			})
		case opts.profile != "" && profile.ProfileCode != opts.profile:
			logger.Debug("skipping file for other profile", "file", filepath.Base(file), "profile", profile.ProfileCode)
		default:
			jobs = append(jobs, job{file: file, profile: profile})
		}
	}

	if len(jobs) == 0 && len(failures) == 0 {
		fmt.Fprintln(out, "No payment files found in the input directory.")
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(jobs)+len(failures))

	// =========================================================================
	// STEP 4: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := processJobs(ctx, mainConfig, logger, jobs)
	results = append(failures, results...)

	// =========================================================================
	// STEP 5: COLLECT RESULTS AND WRITE REPORTS
	// =========================================================================

	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		summary.TotalFiles++
		summary.TotalRows += result.Stats.RowsRead
		summary.RejectedRows += result.Stats.RowsRejected

		errorEntries = append(errorEntries, lo.Map(result.RowErrors, func(rowErr types.RowError, _ int) utils.ErrorLogEntry {
			return utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     name,
				ErrorType:    "row rejected",
				ErrorMessage: rowErr.Message,
				RowNumber:    rowErr.Row,
				FieldName:    rowErr.Field,
			}
		})...)

		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalPayments += result.Summary.TotalTransactions
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				MessageID:   result.Summary.MessageID,
				Rows:        result.Stats.RowsRead,
				Payments:    result.Summary.TotalTransactions,
				Amount:      result.Summary.TotalAmount,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, result.OutputFile)
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: result.Error.Error(),
		})
		errorEntries = append(errorEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     name,
			ErrorType:    "file failed",
			ErrorMessage: result.Error.Error(),
		})
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
	}

	summary.EndTime = time.Now()

	if _, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir); err != nil {
		logger.Warn("failed to write summary log", "error", err)
	}

	if logPath, err := utils.WriteErrorLog(errorEntries, mainConfig.OutputDir); err != nil {
		logger.Warn("failed to write error log", "error", err)
	} else if logPath != "" {
		fmt.Fprintf(out, "Errors have been logged to %s\n", logPath)
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Payments:        %d\n", summary.TotalPayments)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}

	return nil
}

// processJobs runs one converter per job with at most max_concurrency
// running at once. Without continue_on_error the first failure cancels the
// jobs that have not finished yet.
func processJobs(ctx context.Context, mainConfig *config.MainConfig, logger *slog.Logger, jobs []job) []converter.Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan converter.Result, len(jobs))
	slots := make(chan struct{}, max(mainConfig.MaxConcurrency, 1))

	for _, j := range jobs {
		wg.Add(1)

		go func(j job) {
			defer wg.Done()

			select {
			case slots <- struct{}{}:
				defer func() { <-slots }()
			case <-ctx.Done():
				results <- converter.Result{FilePath: j.file, Profile: j.profile.ProfileCode, Error: ctx.Err()}
				return
			}

			result := converter.New(j.file, j.profile, mainConfig, converter.WithLogger(logger)).Run(ctx)
			if !result.Success && !mainConfig.ContinueOnError {
				cancel()
			}
			results <- result
		}(j)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]converter.Result, 0, len(jobs))
	for result := range results {
		collected = append(collected, result)
	}

	return collected
}
