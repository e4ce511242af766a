package devices

import (
	"bytes"
	"testing"

	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/engine"
)

func testPattern() *converter.Pattern {
	p := converter.NewPattern("Test")
	p.Steps[0] = engine.Step{Pitch: 0, Gate: engine.GateOn, Accent: true}
	p.Steps[1] = engine.Step{Pitch: engine.PitchRest, Gate: engine.GateTie}
	p.Steps[2] = engine.Step{Pitch: 7, Gate: engine.GateOn, Slide: true, Transpose: engine.TransposeUp}
	p.Steps[3] = engine.Step{Pitch: 11, Gate: engine.GateOn, Transpose: engine.TransposeDown}
	p.Steps[15] = engine.Step{Pitch: engine.PitchRest, Gate: engine.GateRest, Reset: true}
	return p
}

func TestTD3Name(t *testing.T) {
	td3 := NewTD3()
	if td3.Name() != "Behringer TD-3" {
		t.Errorf("Name() = %q, want %q", td3.Name(), "Behringer TD-3")
	}
	if td3.ID() != TD3DeviceID {
		t.Errorf("ID() = %d, want %d", td3.ID(), TD3DeviceID)
	}
}

func TestEncodeStep(t *testing.T) {
	tests := []struct {
		name  string
		step  engine.Step
		pitch byte
		attr  byte
	}{
		{"default", engine.DefaultStep(), RestByte, 0},
		{"plain note", engine.Step{Pitch: 4, Gate: engine.GateOn}, 4, AttrGate},
		{"tie", engine.Step{Pitch: engine.PitchRest, Gate: engine.GateTie}, RestByte, AttrTie},
		{"accent slide", engine.Step{Pitch: 9, Gate: engine.GateOn, Accent: true, Slide: true}, 9, AttrGate | AttrAccent | AttrSlide},
		{"up", engine.Step{Pitch: 0, Transpose: engine.TransposeUp}, 0, AttrUp},
		{"down reset", engine.Step{Pitch: 11, Transpose: engine.TransposeDown, Reset: true}, 11, AttrDown | AttrReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pitch, attr, err := encodeStep(tt.step)
			if err != nil {
				t.Fatalf("encodeStep() error = %v", err)
			}
			if pitch != tt.pitch || attr != tt.attr {
				t.Errorf("encodeStep() = %02X %02X, want %02X %02X", pitch, attr, tt.pitch, tt.attr)
			}
			back, err := decodeStep(pitch, attr)
			if err != nil {
				t.Fatalf("decodeStep() error = %v", err)
			}
			if back != tt.step {
				t.Errorf("decodeStep() = %+v, want %+v", back, tt.step)
			}
		})
	}
}

func TestDecodeStepInvalid(t *testing.T) {
	tests := []struct {
		name        string
		pitch, attr byte
	}{
		{"pitch too high", 12, 0},
		{"gate and tie", 0, AttrGate | AttrTie},
		{"up and down", 0, AttrUp | AttrDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeStep(tt.pitch, tt.attr); err == nil {
				t.Error("decodeStep() expected error")
			}
		})
	}
}

func TestTD3GenerateSeq(t *testing.T) {
	td3 := NewTD3()

	data, err := td3.GenerateSeq(testPattern())
	if err != nil {
		t.Fatalf("GenerateSeq() error = %v", err)
	}

	if len(data) != converter.SeqSize {
		t.Errorf("GenerateSeq() data length = %d, want %d", len(data), converter.SeqSize)
	}
	if !bytes.HasPrefix(data, converter.SeqMagic[:]) {
		t.Errorf("header = % X, want magic % X", data[:4], converter.SeqMagic)
	}
	if data[4] != converter.SeqVersion || data[5] != TD3DeviceID || data[6] != engine.MaxPatternLength {
		t.Errorf("header fields = % X", data[4:7])
	}

	step2 := data[converter.SeqHeaderSize+4 : converter.SeqHeaderSize+6]
	if step2[0] != 7 || step2[1] != AttrGate|AttrSlide|AttrUp {
		t.Errorf("step 2 bytes = % X", step2)
	}
	if converter.DetectFormatFromContent(data) != converter.FormatSeq {
		t.Error("generated data not detected as seq")
	}
}

func TestTD3ParseSeqShortCount(t *testing.T) {
	td3 := NewTD3()

	data := append(converter.SeqMagic[:], converter.SeqVersion, TD3DeviceID, 2)
	data = append(data, 5, AttrGate|AttrAccent, RestByte, AttrTie)

	pattern, err := td3.ParseSeq(data)
	if err != nil {
		t.Fatalf("ParseSeq() error = %v", err)
	}

	want := engine.Step{Pitch: 5, Gate: engine.GateOn, Accent: true}
	if pattern.Steps[0] != want {
		t.Errorf("step 0 = %+v, want %+v", pattern.Steps[0], want)
	}
	if pattern.Steps[1].Gate != engine.GateTie {
		t.Errorf("step 1 gate = %v, want tie", pattern.Steps[1].Gate)
	}
	for i := 2; i < engine.MaxPatternLength; i++ {
		if pattern.Steps[i] != engine.DefaultStep() {
			t.Fatalf("step %d = %+v, want defaults", i, pattern.Steps[i])
		}
	}
}

func TestTD3ParseSeqInvalid(t *testing.T) {
	td3 := NewTD3()
	valid, err := td3.GenerateSeq(testPattern())
	if err != nil {
		t.Fatal(err)
	}

	badMagic := bytes.Clone(valid)
	badMagic[0] = 'X'
	badVersion := bytes.Clone(valid)
	badVersion[4] = 9
	badDevice := bytes.Clone(valid)
	badDevice[5] = 0x05
	badCount := bytes.Clone(valid)
	badCount[6] = 40
	badPitch := bytes.Clone(valid)
	badPitch[converter.SeqHeaderSize] = 0x30

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", valid[:converter.SeqHeaderSize]},
		{"truncated", valid[:converter.SeqSize-1]},
		{"bad magic", badMagic},
		{"bad version", badVersion},
		{"other device", badDevice},
		{"bad count", badCount},
		{"bad pitch", badPitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := td3.ParseSeq(tt.data); err == nil {
				t.Error("ParseSeq() expected error for invalid data")
			}
		})
	}
}

func TestTD3GenerateSyx(t *testing.T) {
	td3 := NewTD3()

	data, err := td3.GenerateSyx(testPattern())
	if err != nil {
		t.Fatalf("GenerateSyx() error = %v", err)
	}

	if len(data) != SyxSize {
		t.Errorf("GenerateSyx() length = %d, want %d", len(data), SyxSize)
	}
	if data[0] != converter.SysExStart {
		t.Errorf("SysEx start = 0x%02X, want 0x%02X", data[0], converter.SysExStart)
	}
	if data[len(data)-1] != converter.SysExEnd {
		t.Errorf("SysEx end = 0x%02X, want 0x%02X", data[len(data)-1], converter.SysExEnd)
	}
	if !converter.IsBehringerSyx(data) {
		t.Errorf("Manufacturer ID = % X, want 00 20 32", data[1:4])
	}
	if data[4] != TD3DeviceID || data[5] != TD3ModelID || data[6] != PatternDump {
		t.Errorf("header = % X", data[4:7])
	}
	for i, b := range data[1 : len(data)-1] {
		if b > 0x7F {
			t.Errorf("byte %d = 0x%02X is not 7-bit", i+1, b)
		}
	}
}

func TestTD3ParseSyxInvalid(t *testing.T) {
	td3 := NewTD3()
	valid, err := td3.GenerateSyx(testPattern())
	if err != nil {
		t.Fatal(err)
	}

	badChecksum := bytes.Clone(valid)
	badChecksum[len(badChecksum)-2] ^= 0x01
	badModel := bytes.Clone(valid)
	badModel[5] = 0x09
	badCommand := bytes.Clone(valid)
	badCommand[6] = 0x41
	otherVendor := bytes.Clone(valid)
	otherVendor[2] = 0x21
	highBit := bytes.Clone(valid)
	highBit[9] |= 0x80

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"too short", []byte{0xF0, 0xF7}},
		{"no start byte", []byte{0x00, 0x20, 0x32, 0xF7}},
		{"no end byte", []byte{0xF0, 0x00, 0x20, 0x32}},
		{"truncated", append(bytes.Clone(valid[:20]), converter.SysExEnd)},
		{"bad checksum", badChecksum},
		{"bad model", badModel},
		{"bad command", badCommand},
		{"other manufacturer", otherVendor},
		{"8-bit step byte", highBit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := td3.ParseSyx(tt.data); err == nil {
				t.Error("ParseSyx() expected error for invalid data")
			}
		})
	}
}

func TestTD3RoundTrip(t *testing.T) {
	td3 := NewTD3()
	original := testPattern()

	seqData, err := td3.GenerateSeq(original)
	if err != nil {
		t.Fatalf("GenerateSeq() error = %v", err)
	}
	fromSeq, err := td3.ParseSeq(seqData)
	if err != nil {
		t.Fatalf("ParseSeq() error = %v", err)
	}
	if fromSeq.Steps != original.Steps {
		t.Error("seq round trip changed the steps")
	}

	syxData, err := td3.GenerateSyx(original)
	if err != nil {
		t.Fatalf("GenerateSyx() error = %v", err)
	}
	fromSyx, err := td3.ParseSyx(syxData)
	if err != nil {
		t.Fatalf("ParseSyx() error = %v", err)
	}
	if fromSyx.Steps != original.Steps {
		t.Error("syx round trip changed the steps")
	}
}

func TestTD3GenerateRejectsInvalid(t *testing.T) {
	td3 := NewTD3()

	p := converter.NewPattern("bad")
	p.Steps[4].Pitch = 30

	if _, err := td3.GenerateSeq(p); err == nil {
		t.Error("GenerateSeq() accepted an invalid step")
	}
	if _, err := td3.GenerateSyx(p); err == nil {
		t.Error("GenerateSyx() accepted an invalid step")
	}
	if _, err := td3.GenerateSeq(nil); err == nil {
		t.Error("GenerateSeq(nil) expected error")
	}
}

func TestConverterWithTD3(t *testing.T) {
	conv := converter.New(NewTD3())
	original := testPattern()

	midiData, err := conv.Generate(converter.FormatMIDI, original)
	if err != nil {
		t.Fatalf("Generate(midi) error = %v", err)
	}
	syxData, err := conv.Convert(converter.FormatMIDI, converter.FormatSyx, midiData)
	if err != nil {
		t.Fatalf("Convert(midi, syx) error = %v", err)
	}
	seqData, err := conv.Convert(converter.FormatSyx, converter.FormatSeq, syxData)
	if err != nil {
		t.Fatalf("Convert(syx, seq) error = %v", err)
	}
	back, err := conv.Parse(converter.FormatSeq, seqData)
	if err != nil {
		t.Fatalf("Parse(seq) error = %v", err)
	}

	if back.Steps[0].Gate != engine.GateOn || !back.Steps[0].Accent {
		t.Errorf("step 0 = %+v, want accented note", back.Steps[0])
	}
	if back.Steps[3].Transpose != engine.TransposeDown || back.Steps[3].Pitch != 11 {
		t.Errorf("step 3 = %+v, want pitch 11 down", back.Steps[3])
	}
	if back.Steps.LoopLength() != 16 {
		t.Errorf("LoopLength() = %d, want 16", back.Steps.LoopLength())
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"", "td3", "TD-3", " tb303 "} {
		d, err := Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%q) error = %v", name, err)
			continue
		}
		if d.Name() != "Behringer TD-3" {
			t.Errorf("Lookup(%q) = %s", name, d.Name())
		}
	}
	if _, err := Lookup("sh101"); err == nil {
		t.Error("Lookup() accepted an unknown device")
	}

	list := List()
	if len(list) != 1 || list[0].ID != "td3" {
		t.Errorf("List() = %+v", list)
	}
}
