package protocol

// Request constructors for the five sensor commands.
//
// Request Structure:
//
//	[0]     0xFF           StartByte
//	[1]     0x01           SensorAddress
//	[2]     command        Command code
//	[3-7]   payload        Per-command encoding, unused bytes 0x00
//	[8]     checksum       Checksum(frame)

// BuildRequest constructs the request frame for cmd.
//
// The returned frame always satisfies Frame.Valid. The only failure is
// ErrInvalidParameter (wrapped in *ParameterError) when params fall outside
// the command's domain or cmd is not a known command.
//
// Example:
//
//	req, err := BuildRequest(SetDetectionRange, Params{DetectionRange: 5000})
//	// req = FF 01 99 13 88 00 00 00 CB
func BuildRequest(cmd Command, params Params) (Frame, error) {
	var f Frame
	f[0] = StartByte
	f[1] = SensorAddress
	f[2] = cmd.Code()

	if err := cmd.encode(f[payloadOffset:checksumIndex], params); err != nil {
		return Frame{}, err
	}

	f[checksumIndex] = Checksum(f[:])
	return f, nil
}

// ReadConcentrationRequest returns the gas concentration query,
// FF 01 86 00 00 00 00 00 79.
func ReadConcentrationRequest() Frame {
	f, _ := BuildRequest(ReadConcentration, Params{})
	return f
}

// CalibrateZeroPointRequest returns the zero point calibration command.
//
// The sensor treats its current environment as 400ppm, so it must have been
// running in fresh air for at least 20 minutes.
func CalibrateZeroPointRequest() Frame {
	f, _ := BuildRequest(CalibrateZeroPoint, Params{})
	return f
}

// CalibrateSpanPointRequest returns the span point calibration command for
// the given reference concentration.
//
// Zero calibration must precede span calibration, and the sensor must have
// been in the reference gas for over 20 minutes. 2000ppm is the suggested
// span, 1000ppm the practical minimum.
func CalibrateSpanPointRequest(ppm int) (Frame, error) {
	return BuildRequest(CalibrateSpanPoint, Params{SpanPPM: ppm})
}

// SetDetectionRangeRequest returns the detection range command (MH-Z19B).
func SetDetectionRangeRequest(rangePPM int) (Frame, error) {
	return BuildRequest(SetDetectionRange, Params{DetectionRange: rangePPM})
}

// SetAutoBaselineCorrectionRequest returns the command that enables or
// disables Automatic Baseline Correction (MH-Z19B).
func SetAutoBaselineCorrectionRequest(enabled bool) Frame {
	f, _ := BuildRequest(SetAutoBaselineCorrection, Params{ABCEnabled: enabled})
	return f
}
