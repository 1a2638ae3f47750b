package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const envPrefix = "UNFLATTEN_"

// settings holds the resolved command line configuration.
type settings struct {
	config        string
	format        string
	mainSheet     string
	rootID        string
	idName        string
	timezone      string
	titles        string
	rootListPath  string
	xmlRootTag    string
	encoding      string
	output        string
	convertTitles bool
	xml           bool
	pretty        bool
	verbose       bool
}

// fileConfig is the layout of a --config file. Unset keys leave the flag
// default in place.
type fileConfig struct {
	Format        *string `yaml:"format" toml:"format"`
	MainSheet     *string `yaml:"main_sheet" toml:"main_sheet"`
	RootID        *string `yaml:"root_id" toml:"root_id"`
	IDName        *string `yaml:"id_name" toml:"id_name"`
	Timezone      *string `yaml:"timezone" toml:"timezone"`
	Titles        *string `yaml:"titles" toml:"titles"`
	RootListPath  *string `yaml:"root_list_path" toml:"root_list_path"`
	XMLRootTag    *string `yaml:"xml_root_tag" toml:"xml_root_tag"`
	Encoding      *string `yaml:"encoding" toml:"encoding"`
	Output        *string `yaml:"output" toml:"output"`
	ConvertTitles *bool   `yaml:"convert_titles" toml:"convert_titles"`
	XML           *bool   `yaml:"xml" toml:"xml"`
	Pretty        *bool   `yaml:"pretty" toml:"pretty"`
	Verbose       *bool   `yaml:"verbose" toml:"verbose"`
}

// titleFile is the layout of a --titles file.
type titleFile struct {
	Titles map[string]string            `yaml:"titles" toml:"titles"`
	Sheets map[string]map[string]string `yaml:"sheets" toml:"sheets"`
}

// decodeFile reads a YAML or TOML document into v, chosen by extension.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	case ".toml":
		err = toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported config format: %s", filepath.Base(path))
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func loadFileConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadTitles(path string) (*titleFile, error) {
	tf := &titleFile{}
	if err := decodeFile(path, tf); err != nil {
		return nil, err
	}
	return tf, nil
}

// envName returns the environment variable overriding flag.
func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// resolve fills every setting whose flag was not given explicitly from the
// environment, then from the config file.
func (s *settings) resolve(changed func(string) bool, cfg *fileConfig, lookupEnv func(string) (string, bool)) error {
	strs := []struct {
		flag string
		dst  *string
		file *string
	}{
		{"format", &s.format, cfg.Format},
		{"main-sheet", &s.mainSheet, cfg.MainSheet},
		{"root-id", &s.rootID, cfg.RootID},
		{"id-name", &s.idName, cfg.IDName},
		{"timezone", &s.timezone, cfg.Timezone},
		{"titles", &s.titles, cfg.Titles},
		{"root-list-path", &s.rootListPath, cfg.RootListPath},
		{"xml-root-tag", &s.xmlRootTag, cfg.XMLRootTag},
		{"encoding", &s.encoding, cfg.Encoding},
		{"output", &s.output, cfg.Output},
	}
	for _, st := range strs {
		if changed(st.flag) {
			continue
		}
		if v, ok := lookupEnv(envName(st.flag)); ok {
			*st.dst = v
		} else if st.file != nil {
			*st.dst = *st.file
		}
	}

	bools := []struct {
		flag string
		dst  *bool
		file *bool
	}{
		{"convert-titles", &s.convertTitles, cfg.ConvertTitles},
		{"xml", &s.xml, cfg.XML},
		{"pretty", &s.pretty, cfg.Pretty},
		{"verbose", &s.verbose, cfg.Verbose},
	}
	var errs []error
	for _, b := range bools {
		if changed(b.flag) {
			continue
		}
		if v, ok := lookupEnv(envName(b.flag)); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", envName(b.flag), err))
				continue
			}
			*b.dst = parsed
		} else if b.file != nil {
			*b.dst = *b.file
		}
	}
	return errors.Join(errs...)
}
