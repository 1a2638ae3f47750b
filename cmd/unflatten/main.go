// Package main provides the CLI entry point for unflatten-go.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ukaji3/unflatten-go/pkg/unflatten"
	"github.com/ukaji3/unflatten-go/pkg/unflatten/output"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	s := &settings{}
	rootCmd := &cobra.Command{
		Use:   "unflatten [input]",
		Short: "Rebuild nested records from flattened spreadsheets",
		Long: `unflatten-go reads a directory of CSV files or an XLSX workbook whose
columns are slash separated paths and rebuilds the nested records as JSON
or XML.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], s)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&s.config, "config", "", "YAML or TOML config file")
	flags.StringVarP(&s.format, "format", "f", "", "Input format: csv, xlsx (default: detect)")
	flags.StringVarP(&s.mainSheet, "main-sheet", "m", "main", "Name of the main sheet")
	flags.StringVar(&s.rootID, "root-id", "ocid", "Column grouping top-level records; empty to disable")
	flags.StringVar(&s.idName, "id-name", "id", "Name of the identifier field")
	flags.StringVar(&s.timezone, "timezone", "UTC", "IANA zone attached to spreadsheet dates")
	flags.BoolVar(&s.convertTitles, "convert-titles", false, "Map human readable column titles to paths")
	flags.StringVar(&s.titles, "titles", "", "YAML or TOML file of column title mappings")
	flags.StringVar(&s.rootListPath, "root-list-path", "", "Wrap JSON output in an object under this key; XML item element name")
	flags.BoolVar(&s.xml, "xml", false, "Write XML instead of JSON")
	flags.StringVar(&s.xmlRootTag, "xml-root-tag", output.DefaultXMLRootTag, "Root element of XML output")
	flags.StringVar(&s.encoding, "encoding", "", "Encoding of CSV input (default: utf-8)")
	flags.StringVarP(&s.output, "output", "o", "", "Output file path (default: stdout)")
	flags.BoolVar(&s.pretty, "pretty", false, "Pretty-print output")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "Log progress at debug level")

	return rootCmd
}

func run(cmd *cobra.Command, inputPath string, s *settings) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	if !cmd.Flags().Changed("config") {
		if v, ok := os.LookupEnv(envName("config")); ok {
			s.config = v
		}
	}
	cfg, err := loadFileConfig(s.config)
	if err != nil {
		return err
	}
	if err := s.resolve(cmd.Flags().Changed, cfg, os.LookupEnv); err != nil {
		return err
	}

	level := slog.LevelInfo
	if s.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	// Validate input exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	var format unflatten.Format
	switch s.format {
	case "":
		format = unflatten.FormatAuto
	case "csv":
		format = unflatten.FormatCSV
	case "xlsx":
		format = unflatten.FormatXLSX
	default:
		return fmt.Errorf("invalid format: %s (must be csv or xlsx)", s.format)
	}

	opts := unflatten.DefaultOptions()
	opts.MainSheetName = s.mainSheet
	opts.RootID = s.rootID
	opts.IDName = s.idName
	opts.Timezone = s.timezone
	opts.ConvertTitles = s.convertTitles
	opts.Encoding = s.encoding
	opts.Logger = logger
	if s.titles != "" {
		tf, err := loadTitles(s.titles)
		if err != nil {
			return err
		}
		opts.Titles = tf.Titles
		opts.SheetTitles = tf.Sheets
	}

	res, err := unflatten.UnflattenFile(inputPath, format, opts)
	if err != nil {
		return fmt.Errorf("unflatten failed: %w", err)
	}

	var data []byte
	if s.xml {
		data, err = output.ToXML(res.Records, s.xmlRootTag, s.rootListPath, s.pretty)
	} else {
		data, err = output.ToJSON(res.Records, s.rootListPath, s.pretty)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if s.output != "" {
		if err := os.WriteFile(s.output, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	logger.Debug("unflatten finished", "records", len(res.Records), "warnings", len(res.Warnings))
	return nil
}
