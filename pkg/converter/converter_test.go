package converter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/james-see/acidstep/pkg/engine"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"test.mid", FormatMIDI},
		{"test.midi", FormatMIDI},
		{"TEST.MID", FormatMIDI},
		{"test.seq", FormatSeq},
		{"test.syx", FormatSyx},
		{"test.txt", FormatUnknown},
		{"test", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
	}{
		{"midi", FormatMIDI},
		{".mid", FormatMIDI},
		{"SEQ", FormatSeq},
		{"syx", FormatSyx},
		{"wav", FormatUnknown},
		{"", FormatUnknown},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.expected {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.expected)
		}
	}
	if FormatMIDI.Extension() != ".mid" || FormatUnknown.Extension() != "" {
		t.Error("Extension() mismatch")
	}
	if FormatMIDI.ContentType() != "audio/midi" || FormatSyx.ContentType() != "application/octet-stream" {
		t.Error("ContentType() mismatch")
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"MIDI file", []byte("MThd\x00\x00\x00\x06"), FormatMIDI},
		{"SysEx message", []byte{0xF0, 0x00, 0x20, 0x32, 0x00, 0xF7}, FormatSyx},
		{"Short data", []byte{0x00, 0x01}, FormatUnknown},
		{"SEQ data", append(SeqMagic[:], SeqVersion, 0x00, 0x01, 0x00, 0x01), FormatSeq},
		{"Unknown data", []byte{0x3C, 0x01, 0x3E, 0x02, 0x40, 0x03}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// mockDevice implements Device interface for testing
type mockDevice struct{}

func (m *mockDevice) Name() string { return "Mock Device" }
func (m *mockDevice) ID() uint8    { return 0 }
func (m *mockDevice) ParseSeq(data []byte) (*Pattern, error) {
	return NewPattern("Mock"), nil
}
func (m *mockDevice) GenerateSeq(pattern *Pattern) ([]byte, error) {
	return append(SeqMagic[:], SeqVersion, 0x00, 0x01, 0x7F, 0x00), nil
}
func (m *mockDevice) ParseSyx(data []byte) (*Pattern, error) {
	return NewPattern("Mock"), nil
}
func (m *mockDevice) GenerateSyx(pattern *Pattern) ([]byte, error) {
	return []byte{0xF0, 0xF7}, nil
}

func TestConverterNew(t *testing.T) {
	device := &mockDevice{}
	conv := New(device)

	if conv == nil {
		t.Fatal("New() returned nil")
	}

	if conv.GetDevice() != device {
		t.Error("GetDevice() did not return the expected device")
	}
}

func TestConverterSetDevice(t *testing.T) {
	device1 := &mockDevice{}
	device2 := &mockDevice{}

	conv := New(device1)
	if conv.GetDevice() != device1 {
		t.Error("GetDevice() should return device1")
	}

	conv.SetDevice(device2)
	if conv.GetDevice() != device2 {
		t.Error("GetDevice() should return device2 after SetDevice")
	}
}

func TestPatternFromEngine(t *testing.T) {
	e := engine.New()
	e.SetPitch(2, 5)
	e.SetGate(2, engine.GateOn)
	e.SetAccent(2, true)

	p := FromEngine("Live", e)
	if p.Name != "Live" || p.Tempo != DefaultTempo {
		t.Errorf("FromEngine() = %q @ %v", p.Name, p.Tempo)
	}
	if p.Steps != e.Pattern() {
		t.Error("FromEngine() steps differ from the engine")
	}

	back, ok := p.Engine()
	if !ok {
		t.Fatal("Engine() rejected a valid pattern")
	}
	if back.DeterminedPitch(0) != 5 {
		t.Errorf("Engine().DeterminedPitch(0) = %d, want 5", back.DeterminedPitch(0))
	}
	back.SetPitch(2, 1)
	if p.Steps[2].Pitch != 5 {
		t.Error("Engine() shares storage with the pattern")
	}

	p.Steps[9].Transpose = engine.Transpose(7)
	if e, ok := p.Engine(); ok || e.StepAt(2).Gate != engine.GateRest {
		t.Error("Engine() loaded a pattern with an invalid transpose")
	}
}

func TestConverterForDevice(t *testing.T) {
	conv := New(&mockDevice{})
	conv.SetBaseNote(48)

	other := &mockDevice{}
	cp := conv.ForDevice(other)
	if cp.GetDevice() != other || cp.BaseNote() != 48 {
		t.Errorf("ForDevice() = device %p base %d", cp.GetDevice(), cp.BaseNote())
	}
	if conv.GetDevice() == other {
		t.Error("ForDevice() changed the original converter")
	}
}

func TestConvertErrors(t *testing.T) {
	conv := New(nil)

	if _, err := conv.Convert(FormatMIDI, FormatMIDI, nil); err == nil {
		t.Error("Convert() to the same format should fail")
	}
	if _, err := conv.Parse(FormatUnknown, []byte("data")); err == nil {
		t.Error("Parse() of unknown format should fail")
	}
	if _, err := conv.Generate(FormatSeq, NewPattern("x")); err == nil {
		t.Error("Generate(seq) without a device should fail")
	}
	if _, err := conv.Parse(FormatSyx, []byte{0xF0, 0xF7}); err == nil {
		t.Error("Parse(syx) without a device should fail")
	}
}

func TestValidateSeq(t *testing.T) {
	s := NewSeqConverter(&mockDevice{})
	valid := append(SeqMagic[:], SeqVersion, 0x00, 0x01, 0x7F, 0x00)

	if err := s.ValidateSeq(valid); err != nil {
		t.Errorf("ValidateSeq() error = %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"short", valid[:3]},
		{"bad magic", append([]byte("XXXX"), valid[4:]...)},
		{"bad version", append(SeqMagic[:], 0x02, 0x00, 0x01, 0x7F, 0x00)},
		{"zero count", append(SeqMagic[:], SeqVersion, 0x00, 0x00)},
		{"missing steps", append(SeqMagic[:], SeqVersion, 0x00, 0x02, 0x7F, 0x00)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.ValidateSeq(tt.data); err == nil {
				t.Error("ValidateSeq() expected error")
			}
		})
	}
}

func TestParseDump(t *testing.T) {
	d := Dump{Device: 0x00, Model: 0x01, Command: 0x40, Payload: []byte{0x10, 0x22, 0x7F}}
	valid := d.Bytes()

	got, err := ParseDump(valid)
	if err != nil {
		t.Fatalf("ParseDump() error = %v", err)
	}
	if got.Model != 0x01 || got.Command != 0x40 || !bytes.Equal(got.Payload, d.Payload) {
		t.Errorf("ParseDump() = %+v, want %+v", got, d)
	}
	if !IsBehringerSyx(valid) {
		t.Error("IsBehringerSyx() = false for a framed dump")
	}

	highBit := bytes.Clone(valid)
	highBit[7] |= 0x80 // checksum is 7-bit, so only the byte check catches this
	badChecksum := bytes.Clone(valid)
	badChecksum[len(badChecksum)-2] ^= 0x01
	roland := bytes.Clone(valid)
	copy(roland[1:4], []byte{0x41, 0x10, 0x16})

	tests := []struct {
		name string
		data []byte
	}{
		{"minimal", []byte{0xF0, 0xF7}},
		{"no start", append([]byte{0x00}, valid[1:]...)},
		{"no end", append(bytes.Clone(valid[:len(valid)-1]), 0x00)},
		{"8-bit payload", highBit},
		{"bad checksum", badChecksum},
		{"other manufacturer", roland},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDump(tt.data); err == nil {
				t.Error("ParseDump() expected error")
			}
		})
	}
	if IsBehringerSyx(roland) {
		t.Error("IsBehringerSyx() = true for Roland data")
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		payload []byte
		want    byte
	}{
		{nil, 0x00},
		{[]byte{0x01, 0x02}, 0x03},
		{[]byte{0x7F, 0x7F}, 0x00},
		{[]byte{0x40, 0x20, 0x10}, 0x70},
	}
	for _, tt := range tests {
		if got := Checksum(tt.payload); got != tt.want {
			t.Errorf("Checksum(% X) = 0x%02X, want 0x%02X", tt.payload, got, tt.want)
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	conv := New(&mockDevice{})
	original := acidPattern()

	midPath := filepath.Join(dir, "acid.mid")
	if err := conv.SaveFile(original, midPath); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	loaded, err := conv.LoadFile(midPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Steps != original.Steps {
		t.Errorf("LoadFile() steps differ:\n got %+v\nwant %+v", loaded.Steps, original.Steps)
	}

	// Unknown extensions fall back to content sniffing
	data, err := os.ReadFile(midPath)
	if err != nil {
		t.Fatal(err)
	}
	binPath := filepath.Join(dir, "acid.bin")
	if err := os.WriteFile(binPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.LoadFile(binPath); err != nil {
		t.Errorf("LoadFile() of sniffed MIDI error = %v", err)
	}

	seqPath := filepath.Join(dir, "acid.seq")
	if err := conv.ConvertFile(midPath, seqPath); err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	if DetectFormat(seqPath) != FormatSeq {
		t.Error("output is not a .seq path")
	}
	if _, err := os.Stat(seqPath); err != nil {
		t.Errorf("ConvertFile() did not write output: %v", err)
	}
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()
	conv := New(&mockDevice{})

	if _, err := conv.LoadFile(filepath.Join(dir, "missing.mid")); err == nil {
		t.Error("LoadFile() of a missing file should fail")
	}
	if err := conv.SaveFile(NewPattern("x"), filepath.Join(dir, "out.txt")); err == nil {
		t.Error("SaveFile() with unknown extension should fail")
	}
	if err := conv.ConvertFile(filepath.Join(dir, "in.mid"), filepath.Join(dir, "out")); err == nil {
		t.Error("ConvertFile() with unknown output extension should fail")
	}
}

func TestGetSupportedConversions(t *testing.T) {
	conversions := GetSupportedConversions()

	if len(conversions) != 6 {
		t.Errorf("GetSupportedConversions() returned %d conversions, want 6", len(conversions))
	}

	expected := []string{
		"midi -> seq",
		"midi -> syx",
		"seq -> midi",
		"seq -> syx",
		"syx -> midi",
		"syx -> seq",
	}

	for i, exp := range expected {
		if conversions[i] != exp {
			t.Errorf("conversions[%d] = %q, want %q", i, conversions[i], exp)
		}
	}
}
