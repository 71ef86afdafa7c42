package snippet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// FileFormat represents the snippet file formats the library understands.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatTOML               // human-editable source format
	FormatBinary             // compact msgpack export
)

// FormatInfo contains metadata about a snippet file format.
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // minimum plausible file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatTOML: {
		Format:      FormatTOML,
		Description: "TOML Snippet File",
		Extensions:  []string{".toml"},
		MinSize:     1,
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "Binary Snippet File",
		Extensions:  []string{".bin", ".snip"},
		MinSize:     2, // at least a msgpack map header
	},
}

// snippetFile is the on-disk envelope shared by both formats.
type snippetFile struct {
	Version  int       `toml:"version,omitempty" msgpack:"v"`
	Snippets []Snippet `toml:"snippet" msgpack:"snippets"`
}

const fileVersion = 1

// DetectFileFormat determines the format of a snippet file from its
// extension and basic shape checks.
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, validExt := range info.Extensions {
			if ext == validExt {
				if err := ValidateFileFormat(filename, format); err != nil {
					return FormatUnknown, err
				}
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect snippet format for %s", filename)
}

// ValidateFileFormat checks that a file plausibly matches the expected
// format before a full decode is attempted.
func ValidateFileFormat(filename string, expected FileFormat) error {
	info, exists := supportedFormats[expected]
	if !exists {
		return fmt.Errorf("unknown format: %v", expected)
	}

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.Size() < info.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s",
			filename, fileInfo.Size(), info.Description)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, validExt := range info.Extensions {
		if ext == validExt {
			return nil
		}
	}
	return fmt.Errorf("file %s has extension %s, expected one of %v for %s",
		filename, ext, info.Extensions, info.Description)
}

// ReadFile loads snippets from path, detecting the format.
func ReadFile(path string) ([]Snippet, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	var file snippetFile
	switch format {
	case FormatTOML:
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("failed to parse snippet file %s: %w", path, err)
		}
	case FormatBinary:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read snippet file %s: %w", path, err)
		}
		if err := msgpack.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to decode snippet file %s: %w", path, err)
		}
	}

	log.Debugf("Read %d snippets from %s", len(file.Snippets), path)
	return file.Snippets, nil
}

// WriteFile saves snippets to path in the format implied by its extension.
func WriteFile(path string, snippets []Snippet) error {
	if path == "" {
		return fmt.Errorf("no snippet file path set")
	}
	file := snippetFile{Version: fileVersion, Snippets: snippets}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create snippet file %s: %w", path, err)
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(file)
	case ".bin", ".snip":
		data, err := msgpack.Marshal(file)
		if err != nil {
			return fmt.Errorf("failed to encode snippets: %w", err)
		}
		return os.WriteFile(path, data, 0644)
	default:
		return fmt.Errorf("unsupported snippet file extension %q", ext)
	}
}
