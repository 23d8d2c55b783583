package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_Render(t *testing.T) {
	out := NewSuccessResult("Detection range set",
		Detail{Key: "Port", Value: "/dev/ttyUSB0"},
		Detail{Key: "Range", Value: "5000 ppm"},
	).SetWidth(80).Render()

	assert.Contains(t, out, "SUCCESS")
	assert.Contains(t, out, "Detection range set")
	assert.Less(t, strings.Index(out, "/dev/ttyUSB0"), strings.Index(out, "5000 ppm"), "details keep their order")

	out = NewFailureResult("Read failed", errors.New("timeout"), []string{"Check wiring"}).SetWidth(80).Render()
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "Error: timeout")
	assert.Contains(t, out, "Check wiring")

	out = NewWarningResult("No acknowledgement").AddDetail("Mode", "fire and forget").SetWidth(80).Render()
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "fire and forget")
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("span calibration", "mhz19 calibrate span", Detail{Key: "Port", Value: "COM3"}).SetWidth(70).Render()
	assert.Contains(t, out, "SPAN CALIBRATION")
	assert.Contains(t, out, "mhz19 calibrate span")
	assert.Contains(t, out, "COM3")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"CALIBRATE\n", true},
		{"  CALIBRATE  \n", true},
		{"CALIBRATE", true},
		{"yes\n", false},
		{"calibrate\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			got := ConfirmSpanCalibration(strings.NewReader(tt.input), &out, 2000)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "2000ppm")
		})
	}
}

func TestPrinter(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)
	p.PrintReading("/dev/ttyS0", 1250)

	assert.Contains(t, out.String(), "1250 ppm")
	assert.Contains(t, out.String(), "Fair")
}
