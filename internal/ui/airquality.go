package ui

import "github.com/charmbracelet/lipgloss"

// Band is an indoor air quality category derived from CO2 concentration.
type Band struct {
	Name  string
	Below int // exclusive upper bound in ppm, 0 for the last band
	Color lipgloss.Color
}

// Bands in ascending order
var Bands = []Band{
	{Name: "Excellent", Below: 600, Color: SuccessColor},
	{Name: "Good", Below: 1000, Color: SuccessColor},
	{Name: "Fair", Below: 1500, Color: CautionColor},
	{Name: "Poor", Below: 2000, Color: WarningColor},
	{Name: "Bad", Color: ErrorColor},
}

// AirQuality returns the band for a concentration.
func AirQuality(ppm int) Band {
	for _, b := range Bands {
		if b.Below == 0 || ppm < b.Below {
			return b
		}
	}
	return Bands[len(Bands)-1]
}
