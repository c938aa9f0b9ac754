// =============================================================================
// SEPA Direct Debit Builder - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the creditor
// profiles that describe how payment files are turned into pain.008 documents.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Creditor Profiles (profiles/*.yaml): One creditor identity each, plus
//      the rules for reading that creditor's payment files
//
// A profile's creditor block maps onto sepadd.Config. Everything else in a
// profile (file patterns, CSV settings, column mapping, transformations) is
// consumed by the converter pipeline.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sepa-direct-debit/pkg/sepadd"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for payment files (.csv, .xlsx).
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where generated pain.008 files are placed.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is the directory where processed payment files are
	// moved. Files are only moved here after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated document.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ProfilesDir is the directory containing creditor profiles.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// SchemaDir holds pain.008.001.02.xsd and pain.008.001.03.xsd.
	// Default: "./schemas"
	SchemaDir string `yaml:"schema_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log handler: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFileFormat defines the format for output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {profile}   - Profile code
	//   {msgid}     - Group header message id
	//
	// Example: "{profile}_{date}_{msgid}.xml"
	// Default: "{profile}_{uuid}.xml"
	OutputFileFormat string `yaml:"output_file_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files to process concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError determines whether to continue processing other files
	// if one file fails.
	// Default: false
	ContinueOnError bool `yaml:"continue_on_error"`

	// ValidateSchema runs every generated document through xmllint before
	// it is written. A document that fails the schema is not written.
	// Default: false
	ValidateSchema bool `yaml:"validate_schema"`

	// XMLLintPath is the xmllint binary.
	// Default: "xmllint" from PATH
	XMLLintPath string `yaml:"xmllint_path"`
}

// =============================================================================
// CREDITOR PROFILE STRUCTURE
// =============================================================================

// CreditorProfile holds everything needed to turn one creditor's payment
// files into pain.008 documents.
type CreditorProfile struct {
	// =========================================================================
	// PROFILE IDENTIFICATION
	// =========================================================================

	// ProfileName is the human-readable name used in logs.
	ProfileName string `yaml:"profile_name"`

	// ProfileCode is a short code used in output file names.
	ProfileCode string `yaml:"profile_code"`

	// =========================================================================
	// CREDITOR IDENTITY
	// =========================================================================

	Creditor CreditorSettings `yaml:"creditor"`

	// =========================================================================
	// FILE MATCHING RULES
	// =========================================================================

	// FileMatchingPatterns is a list of glob patterns matched against input
	// file names. The first profile with a matching pattern is used.
	// Examples:
	//   - "members_*.csv"
	//   - "collections_*.xlsx"
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// =========================================================================
	// INPUT PARSING SETTINGS
	// =========================================================================

	CSVSettings  CSVSettings  `yaml:"csv_settings"`
	XLSXSettings XLSXSettings `yaml:"xlsx_settings"`

	// =========================================================================
	// FIELD MAPPING
	// =========================================================================

	// ColumnMapping maps a payment field to the input column holding it.
	// Payment fields: name, IBAN, BIC, amount, type, collection_date,
	// mandate_id, mandate_date, description, end_to_end_id.
	//
	// Example:
	//   column_mapping:
	//     name: "Account Holder"
	//     IBAN: "IBAN"
	//     amount: "Amount (cents)"
	ColumnMapping map[string]string `yaml:"column_mapping"`

	// StaticFields are payment fields with a constant value for every row,
	// for example the sequence type of a recurring collection run.
	StaticFields []StaticField `yaml:"static_fields"`

	// =========================================================================
	// TRANSFORMATION RULES
	// =========================================================================

	// TransformationRules are applied to input columns before mapping.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`

	// =========================================================================
	// ROW HANDLING
	// =========================================================================

	// SkipInvalidRows writes the document without rejected rows instead of
	// failing the whole file. Rejections are always logged.
	// Default: false
	SkipInvalidRows bool `yaml:"skip_invalid_rows"`
}

// CreditorSettings is the creditor block of a profile.
type CreditorSettings struct {
	Name       string `yaml:"name"`
	IBAN       string `yaml:"iban"`
	BIC        string `yaml:"bic"`
	CreditorID string `yaml:"creditor_id"`
	Currency   string `yaml:"currency"`

	// Batch must be present. It is a pointer so that "batch: false" can be
	// told apart from a missing key.
	Batch *bool `yaml:"batch"`

	// Version selects pain.008.001.02 (2) or pain.008.001.03 (3).
	// Default: 2
	Version int `yaml:"version"`

	// Validate enables IBAN and BIC validation.
	// Default: true
	Validate *bool `yaml:"validate"`
}

// =============================================================================
// CSV / XLSX SETTINGS STRUCTURES
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), ";" (semicolon), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows in the CSV file.
	// With more than one, the header of a column is its non-empty cells
	// joined by a space.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the row number where the actual data begins.
	// Row numbering starts at 1.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// Encoding is the character encoding of the CSV file.
	// Supported values: "UTF-8", "ISO-8859-1", "ISO-8859-15", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// XLSXSettings contains settings for reading .xlsx payment files.
type XLSXSettings struct {
	// Sheet is the worksheet name. Default: the first sheet.
	Sheet string `yaml:"sheet"`

	// HeaderRow is the row holding column headers. Default: 1
	HeaderRow int `yaml:"header_row"`

	// DataStartRow is the first data row. Default: HeaderRow + 1
	DataStartRow int `yaml:"data_start_row"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines a transformation to apply to a specific column.
type TransformationRule struct {
	// Field is the input column header the actions apply to.
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is the type of transformation to apply.
	// Supported types:
	//   - "trim", "uppercase", "lowercase"
	//   - "remove_spaces"        : Drop all whitespace (IBAN exports)
	//   - "normalize_whitespace" : Collapse runs of whitespace to one space
	//   - "extract_digits"       : Keep only 0-9
	//   - "replace"              : Replace Find with Value
	//   - "regex_replace"        : Replace the Find pattern with Value
	//   - "pad_zeros_to_length"  : Left pad with zeros to length Value
	//   - "substring"            : Keep Value characters ("start:length")
	//   - "format_date"          : Reformat a date from layout Find to Value
	//   - "decimal_to_cents"     : "12,50" or "12.50" to "1250"
	//   - "lookup"               : Replace via LookupTable
	//   - "lookup_with_default"  : Replace via LookupTable or Value
	//   - "if_empty_use_default" : Use Value when empty
	//   - "if_empty_use_field"   : Use the column named in Value when empty
	Type string `yaml:"type"`

	// Value is the parameter for the transformation.
	Value string `yaml:"value"`

	// Find is used by "replace", "regex_replace" and "format_date".
	Find string `yaml:"find,omitempty"`

	// LookupTable is used by the lookup transformations.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// STATIC FIELD STRUCTURE
// =============================================================================

// StaticField sets a payment field to a constant value.
type StaticField struct {
	// Field is the payment field name, e.g. "type".
	Field string `yaml:"field"`

	// Value is the constant value for this field.
	Value string `yaml:"value"`
}

// =============================================================================
// PAYMENT FIELDS
// =============================================================================

// PaymentFields lists the payment fields a profile can map, in the order the
// engine validates them.
var PaymentFields = []string{
	"name",
	"IBAN",
	"BIC",
	"amount",
	"type",
	"collection_date",
	"mandate_id",
	"mandate_date",
	"description",
	"end_to_end_id",
}

// RequiredPaymentFields must be mapped to a column or given a static value.
var RequiredPaymentFields = []string{
	"name",
	"IBAN",
	"amount",
	"type",
	"collection_date",
	"mandate_id",
	"mandate_date",
	"description",
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.SchemaDir == "" {
		config.SchemaDir = "./schemas"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.OutputFileFormat == "" {
		config.OutputFileFormat = "{profile}_{uuid}.xml"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
}

// validateMainConfig validates the main configuration and creates the
// working directories.
func validateMainConfig(config *MainConfig) error {
	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q must be text or json", config.LogFormat)
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.InputArchiveDir,
		config.OutputArchiveDir,
		config.ProfilesDir,
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// LoadProfiles loads all creditor profiles from a directory.
//
// PARAMETERS:
//   - profilesDir: The directory containing profile files (*.yaml, *.yml).
//
// RETURNS:
//   - The profiles sorted by profile code, so file matching is deterministic.
//   - An error if the directory cannot be read, any file cannot be parsed,
//     or two profiles share a code.
func LoadProfiles(profilesDir string) ([]*CreditorProfile, error) {
	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)

	profiles := make([]*CreditorProfile, 0, len(files))
	seen := make(map[string]string)

	for _, file := range files {
		profile, err := LoadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		if other, ok := seen[profile.ProfileCode]; ok {
			return nil, fmt.Errorf("profile code %q is used by both %s and %s", profile.ProfileCode, other, file)
		}
		seen[profile.ProfileCode] = file

		profiles = append(profiles, profile)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ProfileCode < profiles[j].ProfileCode
	})

	return profiles, nil
}

// LoadProfile loads a single creditor profile file.
func LoadProfile(filePath string) (*CreditorProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile CreditorProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	// Use the file name when no code is specified.
	if profile.ProfileCode == "" {
		base := filepath.Base(filePath)
		profile.ProfileCode = base[:len(base)-len(filepath.Ext(base))]
	}

	applyProfileDefaults(&profile)

	return &profile, nil
}

// applyProfileDefaults sets default values for a profile.
func applyProfileDefaults(profile *CreditorProfile) {
	if profile.ProfileName == "" {
		profile.ProfileName = profile.ProfileCode
	}

	if profile.CSVSettings.Delimiter == "" {
		profile.CSVSettings.Delimiter = ","
	}
	if profile.CSVSettings.HeaderRows == 0 {
		profile.CSVSettings.HeaderRows = 1
	}
	if profile.CSVSettings.DataStartRow == 0 {
		profile.CSVSettings.DataStartRow = profile.CSVSettings.HeaderRows + 1
	}
	if profile.CSVSettings.Encoding == "" {
		profile.CSVSettings.Encoding = "UTF-8"
	}

	if profile.XLSXSettings.HeaderRow == 0 {
		profile.XLSXSettings.HeaderRow = 1
	}
	if profile.XLSXSettings.DataStartRow == 0 {
		profile.XLSXSettings.DataStartRow = profile.XLSXSettings.HeaderRow + 1
	}
}

// =============================================================================
// PROFILE VALIDATION
// =============================================================================

// EngineConfig converts the creditor block into an engine configuration.
// A missing batch key is reported the same way the engine reports a
// missing field.
func (p *CreditorProfile) EngineConfig() (sepadd.Config, error) {
	c := p.Creditor

	if c.Batch == nil {
		return sepadd.Config{}, &sepadd.ConfigError{Field: "batch", Reason: "does not exist"}
	}

	validate := true
	if c.Validate != nil {
		validate = *c.Validate
	}

	return sepadd.Config{
		Name:              c.Name,
		IBAN:              c.IBAN,
		BIC:               c.BIC,
		Currency:          c.Currency,
		CreditorID:        c.CreditorID,
		Batch:             *c.Batch,
		Version:           c.Version,
		DisableValidation: !validate,
	}, nil
}

// Validate checks a profile without processing any file. It returns every
// problem found rather than stopping at the first.
func (p *CreditorProfile) Validate() []error {
	var errs []error

	if cfg, err := p.EngineConfig(); err != nil {
		errs = append(errs, err)
	} else if _, err := sepadd.New(cfg); err != nil {
		errs = append(errs, err)
	}

	if len(p.FileMatchingPatterns) == 0 {
		errs = append(errs, errors.New("file_matching_patterns is empty"))
	}
	for _, pattern := range p.FileMatchingPatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("file matching pattern %q: %w", pattern, err))
		}
	}

	staticFields := lo.Map(p.StaticFields, func(f StaticField, _ int) string { return f.Field })

	for _, field := range append(lo.Keys(p.ColumnMapping), staticFields...) {
		if !lo.Contains(PaymentFields, field) {
			errs = append(errs, fmt.Errorf("unknown payment field %q", field))
		}
	}

	for _, field := range RequiredPaymentFields {
		if _, mapped := p.ColumnMapping[field]; !mapped && !lo.Contains(staticFields, field) {
			errs = append(errs, fmt.Errorf("required payment field %q is not mapped to a column or static value", field))
		}
	}

	return errs
}

// MatchProfile returns the first profile with a pattern matching the base
// name of filePath, or nil.
func MatchProfile(filePath string, profiles []*CreditorProfile) *CreditorProfile {
	fileName := filepath.Base(filePath)

	for _, profile := range profiles {
		for _, pattern := range profile.FileMatchingPatterns {
			matched, err := filepath.Match(pattern, fileName)
			if err != nil {
				continue
			}
			if matched {
				return profile
			}
		}
	}

	return nil
}
