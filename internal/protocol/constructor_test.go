package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		params  Params
		want    Frame
		wantErr error
	}{
		{
			name: "read concentration",
			cmd:  ReadConcentration,
			want: Frame{0xFF, 0x01, 0x86, 0x00, 0x00, 0x00, 0x00, 0x00, 0x79},
		},
		{
			name:   "read concentration ignores params",
			cmd:    ReadConcentration,
			params: Params{SpanPPM: 2000, DetectionRange: 5000, ABCEnabled: true},
			want:   Frame{0xFF, 0x01, 0x86, 0x00, 0x00, 0x00, 0x00, 0x00, 0x79},
		},
		{
			name: "calibrate zero",
			cmd:  CalibrateZeroPoint,
			want: Frame{0xFF, 0x01, 0x87, 0x00, 0x00, 0x00, 0x00, 0x00, 0x78},
		},
		{
			name:   "calibrate span 2000",
			cmd:    CalibrateSpanPoint,
			params: Params{SpanPPM: 2000},
			want:   Frame{0xFF, 0x01, 0x88, 0x07, 0xD0, 0x00, 0x00, 0x00, 0xA0},
		},
		{
			name:   "calibrate span 1000",
			cmd:    CalibrateSpanPoint,
			params: Params{SpanPPM: 1000},
			want:   Frame{0xFF, 0x01, 0x88, 0x03, 0xE8, 0x00, 0x00, 0x00, 0x8C},
		},
		{
			name:   "calibrate span lower bound",
			cmd:    CalibrateSpanPoint,
			params: Params{SpanPPM: 0},
			want:   Frame{0xFF, 0x01, 0x88, 0x00, 0x00, 0x00, 0x00, 0x00, 0x77},
		},
		{
			name:   "calibrate span upper bound",
			cmd:    CalibrateSpanPoint,
			params: Params{SpanPPM: 10000},
			want:   Frame{0xFF, 0x01, 0x88, 0x27, 0x10, 0x00, 0x00, 0x00, 0x40},
		},
		{
			name:    "calibrate span negative",
			cmd:     CalibrateSpanPoint,
			params:  Params{SpanPPM: -1},
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "calibrate span too large",
			cmd:     CalibrateSpanPoint,
			params:  Params{SpanPPM: 70000},
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "calibrate span just above range",
			cmd:     CalibrateSpanPoint,
			params:  Params{SpanPPM: MaxSpanPPM + 1},
			wantErr: ErrInvalidParameter,
		},
		{
			name:   "detection range 2000",
			cmd:    SetDetectionRange,
			params: Params{DetectionRange: 2000},
			want:   Frame{0xFF, 0x01, 0x99, 0x07, 0xD0, 0x00, 0x00, 0x00, 0x8F},
		},
		{
			name:   "detection range 5000",
			cmd:    SetDetectionRange,
			params: Params{DetectionRange: 5000},
			want:   Frame{0xFF, 0x01, 0x99, 0x13, 0x88, 0x00, 0x00, 0x00, 0xCB},
		},
		{
			name:   "detection range 10000",
			cmd:    SetDetectionRange,
			params: Params{DetectionRange: 10000},
			want:   Frame{0xFF, 0x01, 0x99, 0x27, 0x10, 0x00, 0x00, 0x00, 0x2F},
		},
		{
			name:    "detection range unsupported",
			cmd:     SetDetectionRange,
			params:  Params{DetectionRange: 3000},
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "detection range zero",
			cmd:     SetDetectionRange,
			wantErr: ErrInvalidParameter,
		},
		{
			name:   "abc on",
			cmd:    SetAutoBaselineCorrection,
			params: Params{ABCEnabled: true},
			want:   Frame{0xFF, 0x01, 0x79, 0xA0, 0x00, 0x00, 0x00, 0x00, 0xE6},
		},
		{
			name:   "abc off",
			cmd:    SetAutoBaselineCorrection,
			params: Params{ABCEnabled: false},
			want:   Frame{0xFF, 0x01, 0x79, 0x00, 0x00, 0x00, 0x00, 0x00, 0x86},
		},
		{
			name:    "unknown command",
			cmd:     Command(0x42),
			wantErr: ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildRequest(tt.cmd, tt.params)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("BuildRequest() error = %v, want %v", err, tt.wantErr)
				}
				var pe *ParameterError
				if !errors.As(err, &pe) {
					t.Fatalf("BuildRequest() error type = %T, want *ParameterError", err)
				}
				if got != (Frame{}) {
					t.Errorf("BuildRequest() returned non-zero frame on error: %s", got.Hex())
				}
				return
			}

			if err != nil {
				t.Fatalf("BuildRequest() unexpected error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildRequest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildRequest_ChecksumRoundTrip(t *testing.T) {
	var combos []struct {
		cmd    Command
		params Params
	}
	add := func(cmd Command, p Params) {
		combos = append(combos, struct {
			cmd    Command
			params Params
		}{cmd, p})
	}

	add(ReadConcentration, Params{})
	add(CalibrateZeroPoint, Params{})
	for ppm := MinSpanPPM; ppm <= MaxSpanPPM; ppm += 7 {
		add(CalibrateSpanPoint, Params{SpanPPM: ppm})
	}
	add(CalibrateSpanPoint, Params{SpanPPM: MaxSpanPPM})
	for _, r := range DetectionRanges {
		add(SetDetectionRange, Params{DetectionRange: r})
	}
	add(SetAutoBaselineCorrection, Params{ABCEnabled: true})
	add(SetAutoBaselineCorrection, Params{ABCEnabled: false})

	for _, c := range combos {
		f, err := BuildRequest(c.cmd, c.params)
		if err != nil {
			t.Fatalf("BuildRequest(%s, %+v) error = %v", c.cmd, c.params, err)
		}
		if !f.Valid() {
			t.Fatalf("BuildRequest(%s, %+v) = %s, not valid", c.cmd, c.params, f.Hex())
		}
		if f[8] != Checksum(f[:]) {
			t.Fatalf("BuildRequest(%s, %+v) checksum = 0x%02X, recomputed 0x%02X", c.cmd, c.params, f[8], Checksum(f[:]))
		}
		// a request frame is itself a structurally valid frame
		if _, err := ParseFrame(f.Bytes()); err != nil {
			t.Fatalf("ParseFrame(BuildRequest(%s)) error = %v", c.cmd, err)
		}
	}
}

func TestBuildRequest_CommandCode(t *testing.T) {
	tests := []struct {
		cmd    Command
		params Params
		want   byte
	}{
		{ReadConcentration, Params{}, 0x86},
		{CalibrateZeroPoint, Params{}, 0x87},
		{CalibrateSpanPoint, Params{SpanPPM: 2000}, 0x88},
		{SetDetectionRange, Params{DetectionRange: 5000}, 0x99},
		{SetAutoBaselineCorrection, Params{ABCEnabled: true}, 0x79},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			f, err := BuildRequest(tt.cmd, tt.params)
			if err != nil {
				t.Fatalf("BuildRequest() error = %v", err)
			}
			if f[0] != StartByte || f[1] != SensorAddress {
				t.Errorf("header = % X, want FF 01", f[:2])
			}
			if f[2] != tt.want {
				t.Errorf("command byte = 0x%02X, want 0x%02X", f[2], tt.want)
			}
		})
	}
}

func TestConvenienceConstructors(t *testing.T) {
	span, err := CalibrateSpanPointRequest(2000)
	if err != nil {
		t.Fatalf("CalibrateSpanPointRequest() error = %v", err)
	}
	rng, err := SetDetectionRangeRequest(5000)
	if err != nil {
		t.Fatalf("SetDetectionRangeRequest() error = %v", err)
	}

	got := []string{
		ReadConcentrationRequest().Hex(),
		CalibrateZeroPointRequest().Hex(),
		span.Hex(),
		rng.Hex(),
		SetAutoBaselineCorrectionRequest(true).Hex(),
		SetAutoBaselineCorrectionRequest(false).Hex(),
	}
	want := []string{
		"FF 01 86 00 00 00 00 00 79",
		"FF 01 87 00 00 00 00 00 78",
		"FF 01 88 07 D0 00 00 00 A0",
		"FF 01 99 13 88 00 00 00 CB",
		"FF 01 79 A0 00 00 00 00 E6",
		"FF 01 79 00 00 00 00 00 86",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("constructor frames mismatch (-want +got):\n%s", diff)
	}

	if _, err := CalibrateSpanPointRequest(-1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("CalibrateSpanPointRequest(-1) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := SetDetectionRangeRequest(1234); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("SetDetectionRangeRequest(1234) error = %v, want ErrInvalidParameter", err)
	}
}

func TestLookupCommand(t *testing.T) {
	tests := []struct {
		input  string
		want   Command
		wantOK bool
	}{
		{"read-concentration", ReadConcentration, true},
		{"calibrate-span", CalibrateSpanPoint, true},
		{" SET-ABC ", SetAutoBaselineCorrection, true},
		{"0x99", SetDetectionRange, true},
		{"0x87", CalibrateZeroPoint, true},
		{"bogus", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := LookupCommand(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LookupCommand(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	for _, c := range Commands {
		if !c.Known() {
			t.Errorf("%v.Known() = false", c)
		}
	}
	if Command(0x00).Known() {
		t.Error("Command(0x00).Known() = true")
	}
	if got := Command(0x42).String(); got != "unknown(0x42)" {
		t.Errorf("String() = %q", got)
	}
}
