package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatSeq     Format = "seq"
	FormatSyx     Format = "syx"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file from its extension
func DetectFormat(filename string) Format {
	return ParseFormat(filepath.Ext(filename))
}

// ParseFormat parses a format name or file extension
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "mid", "midi":
		return FormatMIDI
	case "seq":
		return FormatSeq
	case "syx":
		return FormatSyx
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	switch {
	case string(data[:4]) == "MThd":
		return FormatMIDI
	case data[0] == SysExStart:
		return FormatSyx
	case bytes.HasPrefix(data, SeqMagic[:]):
		return FormatSeq
	default:
		return FormatUnknown
	}
}

// Extension returns the file extension written for f
func (f Format) Extension() string {
	switch f {
	case FormatMIDI:
		return ".mid"
	case FormatSeq:
		return ".seq"
	case FormatSyx:
		return ".syx"
	default:
		return ""
	}
}

// ContentType returns the MIME type served for f
func (f Format) ContentType() string {
	if f == FormatMIDI {
		return "audio/midi"
	}
	return "application/octet-stream"
}

// Parse decodes data in the given format
func (c *Converter) Parse(format Format, data []byte) (*Pattern, error) {
	switch format {
	case FormatMIDI:
		return c.midi().ParseMIDI(data)
	case FormatSeq:
		return NewSeqConverter(c.device).ParseSeq(data)
	case FormatSyx:
		return NewSyxConverter(c.device).ParseSyx(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Generate encodes pattern in the given format
func (c *Converter) Generate(format Format, pattern *Pattern) ([]byte, error) {
	switch format {
	case FormatMIDI:
		return c.midi().GenerateMIDI(pattern)
	case FormatSeq:
		return NewSeqConverter(c.device).GenerateSeq(pattern)
	case FormatSyx:
		return NewSyxConverter(c.device).GenerateSyx(pattern)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Convert decodes data in one format and encodes it in another
func (c *Converter) Convert(from, to Format, data []byte) ([]byte, error) {
	if from == to {
		return nil, fmt.Errorf("unsupported conversion: %s to %s", from, to)
	}
	pattern, err := c.Parse(from, data)
	if err != nil {
		return nil, err
	}
	return c.Generate(to, pattern)
}

// LoadFile reads a pattern from a .mid, .seq or .syx file
func (c *Converter) LoadFile(path string) (*Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	format := DetectFormat(path)
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}
	pattern, err := c.Parse(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return pattern, nil
}

// SaveFile writes pattern to path in the format given by its extension
func (c *Converter) SaveFile(pattern *Pattern, path string) error {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	data, err := c.Generate(format, pattern)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	if DetectFormat(outputPath) == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}
	pattern, err := c.LoadFile(inputPath)
	if err != nil {
		return err
	}
	return c.SaveFile(pattern, outputPath)
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"midi -> seq",
		"midi -> syx",
		"seq -> midi",
		"seq -> syx",
		"syx -> midi",
		"syx -> seq",
	}
}
