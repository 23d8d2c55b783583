package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/mhz19/internal/protocol"
)

// Reader reads one concentration value.
type Reader interface {
	ReadConcentration(ctx context.Context) (protocol.Reading, error)
}

// ReadingMsg carries the result of one read.
type ReadingMsg struct {
	PPM  int
	Time time.Time
	Err  error
}

type tickMsg struct{}

// MonitorConfig configures the live monitor.
type MonitorConfig struct {
	Port        string
	Interval    time.Duration
	RangePPM    int           // full scale of the gauge, 5000 when zero
	ReadTimeout time.Duration // per read, Interval when zero
}

// MonitorModel is the Bubble Tea model for the live monitor.
type MonitorModel struct {
	cfg     MonitorConfig
	reader  Reader
	spinner spinner.Model
	gauge   progress.Model

	reading  bool
	current  int
	min, max int
	sum      int
	reads    int
	failures int
	lastErr  error
	lastAt   time.Time
	width    int
	quitting bool
}

// NewMonitorModel creates a monitor reading from r.
func NewMonitorModel(r Reader, cfg MonitorConfig) MonitorModel {
	if cfg.RangePPM == 0 {
		cfg.RangePPM = 5000
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = cfg.Interval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	return MonitorModel{
		cfg:     cfg,
		reader:  r,
		reading: true, // Init starts the first read
		spinner: s,
		gauge:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		width:   GetTerminalWidth(),
	}
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.read())
}

func (m MonitorModel) read() tea.Cmd {
	r, timeout := m.reader, m.cfg.ReadTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reading, err := r.ReadConcentration(ctx)
		return ReadingMsg{PPM: reading.PPM, Time: time.Now(), Err: err}
	}
}

func (m MonitorModel) tick() tea.Cmd {
	return tea.Tick(m.cfg.Interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.reading {
				m.reading = true
				return m, m.read()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)
		return m, nil

	case ReadingMsg:
		m.reading = false
		m.record(msg)
		return m, m.tick()

	case tickMsg:
		if m.reading {
			return m, nil
		}
		m.reading = true
		return m, m.read()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *MonitorModel) record(msg ReadingMsg) {
	m.lastAt = msg.Time
	if msg.Err != nil {
		m.failures++
		m.lastErr = msg.Err
		return
	}
	m.lastErr = nil
	m.current = msg.PPM
	if m.reads == 0 || msg.PPM < m.min {
		m.min = msg.PPM
	}
	if m.reads == 0 || msg.PPM > m.max {
		m.max = msg.PPM
	}
	m.sum += msg.PPM
	m.reads++
}

// Average returns the mean of successful readings.
func (m MonitorModel) Average() int {
	if m.reads == 0 {
		return 0
	}
	return m.sum / m.reads
}

// Current returns the last successful reading and whether there is one.
func (m MonitorModel) Current() (int, bool) {
	return m.current, m.reads > 0
}

// View implements tea.Model
func (m MonitorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(NewHeader("CO2 monitor", "mhz19 monitor",
		Detail{Key: "Port", Value: m.cfg.Port},
		Detail{Key: "Interval", Value: m.cfg.Interval.String()},
	).SetWidth(m.width).Render())
	b.WriteString("\n\n")

	if m.reads == 0 {
		fmt.Fprintf(&b, "  %s Waiting for first reading...\n", m.spinner.View())
	} else {
		band := AirQuality(m.current)
		style := ReadingStyle.Foreground(band.Color)
		b.WriteString(style.Render(fmt.Sprintf("%d ppm", m.current)))
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(band.Color).Render(band.Name))
		if m.reading {
			b.WriteString("  " + m.spinner.View())
		}
		b.WriteString("\n\n")

		percent := float64(m.current) / float64(m.cfg.RangePPM)
		if percent > 1 {
			percent = 1
		}
		b.WriteString("  " + m.gauge.ViewAs(percent) + fmt.Sprintf("  %d", m.cfg.RangePPM))
		b.WriteString("\n\n")

		fmt.Fprintf(&b, "  %s %d   %s %d   %s %d\n",
			ResultKeyStyle.Width(0).Render("min"), m.min,
			ResultKeyStyle.Width(0).Render("max"), m.max,
			ResultKeyStyle.Width(0).Render("avg"), m.Average())
	}

	fmt.Fprintf(&b, "  %s %d   %s %d\n",
		ResultKeyStyle.Width(0).Render("reads"), m.reads,
		ResultKeyStyle.Width(0).Render("failures"), m.failures)

	if m.lastErr != nil {
		b.WriteString("\n" + ErrorMessageStyle.Render("  Last read failed: "+m.lastErr.Error()) + "\n")
	}
	if !m.lastAt.IsZero() {
		b.WriteString(HelpStyle.Render("Updated "+m.lastAt.Format("15:04:05")) + "\n")
	}

	b.WriteString("\n" + HelpStyle.Render("r read now • q quit") + "\n")
	return b.String()
}

// RunMonitor runs the interactive monitor until the user quits or ctx is done.
func RunMonitor(ctx context.Context, r Reader, cfg MonitorConfig) error {
	p := tea.NewProgram(NewMonitorModel(r, cfg), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
