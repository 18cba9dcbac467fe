package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jenian/envcheck/internal/config"
	"github.com/jenian/envcheck/internal/envfile"
	"github.com/jenian/envcheck/internal/example"
	"github.com/jenian/envcheck/internal/output"
	"github.com/jenian/envcheck/internal/schema"
	"github.com/jenian/envcheck/internal/usage"
	"github.com/jenian/envcheck/internal/validate"
)

// Version is set at build time via -ldflags
var Version = "dev"

var logger = log.New(os.Stderr)

var (
	rootCmd = &cobra.Command{
		Use:   "envcheck",
		Short: "Validate environment variable files",
		Long:  "A CLI tool that validates .env files against schemas, example files and security rules.",
	}

	validateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate an environment file",
		Long:  "Validate an environment file against a schema, a reference example file and the built-in security rules.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}

	usageCmd = &cobra.Command{
		Use:   "usage [path]",
		Short: "Cross-check an environment file against the source tree",
		Long:  "Scan source code for environment variable reads and compare them with the variables defined in the environment file.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runUsage,
	}

	genExampleCmd = &cobra.Command{
		Use:   "gen-example [file]",
		Short: "Generate a shareable example file",
		Long:  "Print an example environment file, built either from a schema document (--schema) or from a real environment file with secret values replaced by placeholders.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGenExample,
	}

	initConfigCmd = &cobra.Command{
		Use:   "init-config",
		Short: "Create a .envcheck.yaml file in the current directory",
		RunE:  runInitConfig,
	}

	initSchemaCmd = &cobra.Command{
		Use:   "init-schema",
		Short: "Print a starter schema document",
		RunE:  runInitSchema,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}

	// Flags
	schemaPath     string
	examplePath    string
	strict         bool
	jsonOutput     bool
	junitOutput    bool
	silent         bool
	noColor        bool
	skipSecurity   bool
	noUnused       bool
	debug          bool
	ignorePatterns []string
	envFileFlag    string
	excludeDirs    []string
	workers        int
)

func init() {
	validateCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema document to validate against")
	validateCmd.Flags().StringVarP(&examplePath, "example", "e", "", "Reference example file to compare against")
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	validateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	validateCmd.Flags().BoolVar(&junitOutput, "junit", false, "Output results as JUnit XML")
	validateCmd.Flags().BoolVar(&silent, "silent", false, "Silent mode (exit code only)")
	validateCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	validateCmd.Flags().BoolVar(&skipSecurity, "skip-security", false, "Skip the security analysis")
	validateCmd.Flags().BoolVar(&noUnused, "no-unused", false, "Skip reporting unused variables")
	validateCmd.Flags().StringSliceVar(&ignorePatterns, "ignore", []string{}, "Key regexes exempt from unused reporting")
	validateCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	genExampleCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Build the example from a schema document instead of an environment file")

	usageCmd.Flags().StringVar(&envFileFlag, "env-file", ".env", "Environment file to cross-check")
	usageCmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	usageCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	usageCmd.Flags().BoolVar(&silent, "silent", false, "Silent mode (exit code only)")
	usageCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	usageCmd.Flags().StringSliceVar(&excludeDirs, "exclude", []string{}, "Additional directory names to skip")
	usageCmd.Flags().IntVar(&workers, "workers", 10, "Parallel file parsers")
	usageCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(genExampleCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(initSchemaCmd)
	rootCmd.AddCommand(versionCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if debug {
		logger.SetLevel(log.DebugLevel)
	}

	target := ".env"
	if len(args) > 0 {
		target = args[0]
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("cannot read %s: %w", target, err)
	}

	cfg, err := config.Load(filepath.Dir(target))
	if err != nil {
		return err
	}
	logger.Debug("loaded configuration", "schema", cfg.Schema, "example", cfg.Example, "rules", len(cfg.Rules))

	// Flags override the config file.
	if schemaPath == "" {
		schemaPath = cfg.Schema
	}
	if examplePath == "" {
		examplePath = cfg.Example
	}
	strict = strict || cfg.Strict

	rules, err := cfg.SecurityRules()
	if err != nil {
		return err
	}

	runner, err := validate.NewRunner(validate.Options{
		SchemaPath:   schemaPath,
		ExamplePath:  examplePath,
		Strict:       strict,
		Ignore:       append(cfg.Ignore, ignorePatterns...),
		Rules:        rules,
		SkipSecurity: skipSecurity,
		NoUnused:     noUnused || cfg.NoUnused,
	})
	if err != nil {
		return err
	}

	result, err := runner.Run(target)
	if err != nil {
		return err
	}
	logger.Debug("validation finished",
		"errors", len(result.Errors), "warnings", len(result.Warnings), "duration", result.Summary.Duration)

	if err := output.Format(os.Stdout, result, output.Options{
		JSON:    jsonOutput,
		JUnit:   junitOutput,
		Silent:  silent,
		NoColor: noColor,
		Path:    target,
	}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if !result.OK(strict) {
		os.Exit(1)
	}
	return nil
}

func runUsage(cmd *cobra.Command, args []string) error {
	if debug {
		logger.SetLevel(log.DebugLevel)
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		return fmt.Errorf("cannot read %s: %w", absRoot, err)
	}

	envPath := envFileFlag
	if !filepath.IsAbs(envPath) && len(args) > 0 {
		envPath = filepath.Join(absRoot, envFileFlag)
	}
	file, err := envfile.LoadAny(envPath)
	if err != nil {
		return err
	}
	if len(file.Errors) > 0 {
		return fmt.Errorf("%s has %d parse errors, fix it first", envPath, len(file.Errors))
	}

	checker := &usage.CrossChecker{
		Workers:     workers,
		ExcludeDirs: excludeDirs,
		Logger:      logger,
	}
	result, err := checker.Run(absRoot, file)
	if err != nil {
		return err
	}

	if err := output.Format(os.Stdout, result, output.Options{
		JSON:    jsonOutput,
		Silent:  silent,
		NoColor: noColor,
		Path:    envPath,
	}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if !result.OK(strict) {
		os.Exit(1)
	}
	return nil
}

func runGenExample(cmd *cobra.Command, args []string) error {
	if schemaPath != "" {
		doc, err := schema.Load(schemaPath)
		if err != nil {
			return err
		}
		fmt.Print(schema.GenerateExample(doc))
		return nil
	}

	target := ".env"
	if len(args) > 0 {
		target = args[0]
	}

	file, err := envfile.LoadAny(target)
	if err != nil {
		return err
	}
	if len(file.Errors) > 0 {
		return fmt.Errorf("%s has %d parse errors, fix it first", target, len(file.Errors))
	}

	fmt.Print(example.Generate(file))
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(config.FileName); err == nil {
		return fmt.Errorf("%s already exists in the current directory", config.FileName)
	}
	if err := os.WriteFile(config.FileName, []byte(config.DefaultContent), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}
	fmt.Printf("created %s\n", config.FileName)
	return nil
}

func runInitSchema(cmd *cobra.Command, args []string) error {
	schema := `# envcheck schema
variables:
  DATABASE_URL:
    required: true
    type: url
    description: primary database connection string
    example: postgres://localhost:5432/app
  PORT:
    required: true
    type: number
    example: "3000"
  DEBUG:
    type: boolean
    allow_empty: true
`
	fmt.Print(schema)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}
