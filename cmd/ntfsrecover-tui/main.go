package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wgladysz/ntfsrecover/internal/device"
	"github.com/wgladysz/ntfsrecover/internal/disk"
	"github.com/wgladysz/ntfsrecover/internal/ntfs"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)
)

// State represents the current screen.
type State int

const (
	StateWelcome State = iota
	StateSelectSource
	StateSelectDevice
	StateEnterPath
	StateSelectMode
	StateSelectFileTypes
	StateSelectOutput
	StateConfirm
	StateRunning
	StateResults
)

type SourceType int

const (
	SourceDevice SourceType = iota
	SourceImage
)

// RecoveryMode selects which operation ntfs.Run performs.
type RecoveryMode int

const (
	ModeScan RecoveryMode = iota
	ModeRecover
	ModeListDirectories
)

// FileTypeFilter is one togglable -i/-x bucket offered on the file-type screen.
type FileTypeFilter struct {
	Name    string
	Tokens  []string
	Enabled bool
}

type model struct {
	state  State
	width  int
	height int
	err    error

	sourceType SourceType
	sourceList list.Model

	devices        []device.Device
	deviceList     list.Model
	selectedDevice *device.Device

	pathInput textinput.Model
	imagePath string

	mode     RecoveryMode
	modeList list.Model

	fileTypes      []FileTypeFilter
	fileTypeCursor int

	outputInput textinput.Model
	outputPath  string

	spinner   spinner.Model
	statusMsg string

	result ntfs.Result
}

type sourceItem struct{ name, desc string }

func (i sourceItem) Title() string       { return i.name }
func (i sourceItem) Description() string { return i.desc }
func (i sourceItem) FilterValue() string { return i.name }

type deviceItem struct{ device device.Device }

func (i deviceItem) Title() string { return fmt.Sprintf("%s - %s", i.device.Path, i.device.Name) }
func (i deviceItem) Description() string {
	return fmt.Sprintf("%s | %s", i.device.SizeHuman, i.device.Filesystem)
}
func (i deviceItem) FilterValue() string { return i.device.Path }

type modeItem struct {
	name, desc string
	mode       RecoveryMode
}

func (i modeItem) Title() string       { return i.name }
func (i modeItem) Description() string { return i.desc }
func (i modeItem) FilterValue() string { return i.name }

type devicesLoadedMsg struct {
	devices []device.Device
	err     error
}

type recoveryCompleteMsg struct {
	result ntfs.Result
	err    error
}

func initialModel() model {
	sourceItems := []list.Item{
		sourceItem{name: "Physical Device", desc: "Scan a connected drive (USB, HDD, SSD)"},
		sourceItem{name: "Disk Image", desc: "Scan a .img, .dd, or .raw NTFS volume image"},
	}
	sourceList := list.New(sourceItems, list.NewDefaultDelegate(), 0, 0)
	sourceList.Title = "Select Recovery Source"
	sourceList.SetShowStatusBar(false)
	sourceList.SetFilteringEnabled(false)

	modeItems := []list.Item{
		modeItem{name: "Scan Only", desc: "Walk the MFT and report deleted records without writing files", mode: ModeScan},
		modeItem{name: "Recover Files", desc: "Extract recoverable file content to the output directory", mode: ModeRecover},
		modeItem{name: "List Directories", desc: "Resolve directory entries without recovering content (summary counts only)", mode: ModeListDirectories},
	}
	modeList := list.New(modeItems, list.NewDefaultDelegate(), 0, 0)
	modeList.Title = "Select Recovery Mode"
	modeList.SetShowStatusBar(false)
	modeList.SetFilteringEnabled(false)

	pathInput := textinput.New()
	pathInput.Placeholder = "/path/to/volume.img"
	pathInput.Focus()
	pathInput.Width = 50

	outputInput := textinput.New()
	outputInput.Placeholder = "./recovered"
	outputInput.SetValue("./recovered")
	outputInput.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	fileTypes := []FileTypeFilter{
		{Name: "Images (jpg, png, gif, bmp, tiff)", Tokens: []string{"image"}, Enabled: true},
		{Name: "Video (mp4, avi, mkv, mov)", Tokens: []string{"video"}, Enabled: true},
		{Name: "Audio (mp3, wav, flac, ogg)", Tokens: []string{"audio"}, Enabled: true},
		{Name: "Documents (pdf, docx, xlsx)", Tokens: []string{"pdf", "docx", "xlsx", "pptx"}, Enabled: true},
		{Name: "Archives (zip, rar, 7z)", Tokens: []string{"zip", "rar", "7z"}, Enabled: true},
		{Name: "Everything else", Tokens: nil, Enabled: true},
	}

	return model{
		state:       StateWelcome,
		sourceList:  sourceList,
		modeList:    modeList,
		pathInput:   pathInput,
		outputInput: outputInput,
		spinner:     s,
		fileTypes:   fileTypes,
		outputPath:  "./recovered",
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != StateRunning {
				return m, tea.Quit
			}
		case "esc":
			if m.state > StateWelcome && m.state != StateRunning {
				m.state--
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sourceList.SetSize(msg.Width-4, msg.Height-10)
		m.modeList.SetSize(msg.Width-4, msg.Height-10)
		if m.deviceList.Items() != nil {
			m.deviceList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case devicesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.devices = msg.devices
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = deviceItem{device: d}
		}
		m.deviceList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.deviceList.Title = "Select Device"
		m.deviceList.SetShowStatusBar(false)
		m.deviceList.SetFilteringEnabled(true)
		m.state = StateSelectDevice
		return m, nil

	case recoveryCompleteMsg:
		m.state = StateResults
		m.result = msg.result
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.state {
	case StateWelcome:
		return m.updateWelcome(msg)
	case StateSelectSource:
		return m.updateSelectSource(msg)
	case StateSelectDevice:
		return m.updateSelectDevice(msg)
	case StateEnterPath:
		return m.updateEnterPath(msg)
	case StateSelectMode:
		return m.updateSelectMode(msg)
	case StateSelectFileTypes:
		return m.updateSelectFileTypes(msg)
	case StateSelectOutput:
		return m.updateSelectOutput(msg)
	case StateConfirm:
		return m.updateConfirm(msg)
	case StateRunning:
		return m.updateRunning(msg)
	case StateResults:
		return m.updateResults(msg)
	}
	return m, nil
}

func (m model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		m.state = StateSelectSource
	}
	return m, nil
}

func (m model) updateSelectSource(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		selected := m.sourceList.SelectedItem()
		if selected != nil {
			if strings.Contains(selected.(sourceItem).name, "Device") {
				m.sourceType = SourceDevice
				return m, m.loadDevices()
			}
			m.sourceType = SourceImage
			m.state = StateEnterPath
			m.pathInput.Focus()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.sourceList, cmd = m.sourceList.Update(msg)
	return m, cmd
}

func (m model) updateSelectDevice(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		selected := m.deviceList.SelectedItem()
		if selected != nil {
			dev := selected.(deviceItem).device
			m.selectedDevice = &dev
			m.imagePath = dev.Path
			m.state = StateSelectMode
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.deviceList, cmd = m.deviceList.Update(msg)
	return m, cmd
}

func (m model) updateEnterPath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		path := m.pathInput.Value()
		if path != "" {
			if strings.HasPrefix(path, "~") {
				home, _ := os.UserHomeDir()
				path = filepath.Join(home, path[1:])
			}
			m.imagePath = path
			m.state = StateSelectMode
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m model) updateSelectMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		selected := m.modeList.SelectedItem()
		if selected != nil {
			m.mode = selected.(modeItem).mode
			if m.mode == ModeScan || m.mode == ModeListDirectories {
				m.state = StateConfirm
			} else {
				m.state = StateSelectFileTypes
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.modeList, cmd = m.modeList.Update(msg)
	return m, cmd
}

func (m model) updateSelectFileTypes(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if m.fileTypeCursor > 0 {
				m.fileTypeCursor--
			}
		case "down", "j":
			if m.fileTypeCursor < len(m.fileTypes)-1 {
				m.fileTypeCursor++
			}
		case " ":
			m.fileTypes[m.fileTypeCursor].Enabled = !m.fileTypes[m.fileTypeCursor].Enabled
		case "enter":
			m.state = StateSelectOutput
		}
	}
	return m, nil
}

func (m model) updateSelectOutput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		path := m.outputInput.Value()
		if path != "" {
			if strings.HasPrefix(path, "~") {
				home, _ := os.UserHomeDir()
				path = filepath.Join(home, path[1:])
			}
			m.outputPath = path
			m.state = StateConfirm
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.outputInput, cmd = m.outputInput.Update(msg)
	return m, cmd
}

func (m model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y", "enter":
			m.state = StateRunning
			m.statusMsg = "Scanning MFT..."
			return m, tea.Batch(m.spinner.Tick, m.runRecovery())
		case "n", "N":
			m.state = StateSelectSource
		}
	}
	return m, nil
}

func (m model) updateRunning(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m model) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "q":
			return m, tea.Quit
		case "r":
			return initialModel(), nil
		}
	}
	return m, nil
}

func (m model) loadDevices() tea.Cmd {
	return func() tea.Msg {
		devices, err := device.List()
		return devicesLoadedMsg{devices: devices, err: err}
	}
}

func (m model) buildConfig() ntfs.Config {
	cfg := ntfs.DefaultConfig()
	cfg.Device = m.imagePath
	cfg.Output = m.outputPath
	cfg.Recover = m.mode == ModeRecover
	cfg.ListOnly = m.mode == ModeListDirectories
	cfg.Undelete = true
	// "Everything else" has no tokens: when it is enabled, the disabled
	// buckets become exclusions instead of the enabled ones inclusions.
	everything := false
	for _, ft := range m.fileTypes {
		if ft.Enabled && ft.Tokens == nil {
			everything = true
		}
	}
	for _, ft := range m.fileTypes {
		switch {
		case everything && !ft.Enabled:
			cfg.Exclude = append(cfg.Exclude, ft.Tokens...)
		case !everything && ft.Enabled:
			cfg.Include = append(cfg.Include, ft.Tokens...)
		}
	}
	return cfg
}

func (m model) runRecovery() tea.Cmd {
	return func() tea.Msg {
		reader, err := disk.Open(m.imagePath)
		if err != nil {
			return recoveryCompleteMsg{err: err}
		}
		defer reader.Close()

		cfg := m.buildConfig()
		if m.mode == ModeRecover {
			if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
				return recoveryCompleteMsg{err: err}
			}
		}

		result, err := ntfs.Run(cfg, reader, reader.Size(), nil)
		return recoveryCompleteMsg{result: result, err: err}
	}
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" NTFS Recovery "))
	s.WriteString("\n\n")

	switch m.state {
	case StateWelcome:
		s.WriteString(m.viewWelcome())
	case StateSelectSource:
		s.WriteString(m.sourceList.View())
	case StateSelectDevice:
		s.WriteString(m.deviceList.View())
	case StateEnterPath:
		s.WriteString(m.viewEnterPath())
	case StateSelectMode:
		s.WriteString(m.modeList.View())
	case StateSelectFileTypes:
		s.WriteString(m.viewSelectFileTypes())
	case StateSelectOutput:
		s.WriteString(m.viewSelectOutput())
	case StateConfirm:
		s.WriteString(m.viewConfirm())
	case StateRunning:
		s.WriteString(m.viewRunning())
	case StateResults:
		s.WriteString(m.viewResults())
	}

	if m.err != nil {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press q to quit • esc to go back"))
	return s.String()
}

func (m model) viewWelcome() string {
	var s strings.Builder
	s.WriteString(subtitleStyle.Render("NTFS Deleted File Recovery"))
	s.WriteString("\n\n")
	s.WriteString("This tool walks the Master File Table of an NTFS volume\n")
	s.WriteString("and recovers file content still referenced by deleted\n")
	s.WriteString("or orphaned records.\n\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("Important:"))
	s.WriteString(" the source is opened read-only and never modified.\n\n")
	s.WriteString(selectedStyle.Render("Press Enter to continue..."))
	return s.String()
}

func (m model) viewEnterPath() string {
	var s strings.Builder
	s.WriteString(subtitleStyle.Render("Enter Volume Image Path"))
	s.WriteString("\n\n")
	s.WriteString(m.pathInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press Enter to continue"))
	return s.String()
}

func (m model) viewSelectFileTypes() string {
	var s strings.Builder
	s.WriteString(subtitleStyle.Render("Select File Types to Include"))
	s.WriteString("\n\n")
	for i, ft := range m.fileTypes {
		cursor := "  "
		if i == m.fileTypeCursor {
			cursor = "> "
		}
		checkbox := "[ ]"
		if ft.Enabled {
			checkbox = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, checkbox, ft.Name)
		if i == m.fileTypeCursor {
			s.WriteString(selectedStyle.Render(line))
		} else {
			s.WriteString(line)
		}
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("up/down to move, space to toggle, enter to continue"))
	return s.String()
}

func (m model) viewSelectOutput() string {
	var s strings.Builder
	s.WriteString(subtitleStyle.Render("Select Output Directory"))
	s.WriteString("\n\n")
	s.WriteString(m.outputInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press Enter to continue"))
	return s.String()
}

func (m model) viewConfirm() string {
	var s strings.Builder
	s.WriteString(subtitleStyle.Render("Confirm Recovery Settings"))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("  Source: %s\n", m.imagePath))

	modeStr := "Scan Only"
	switch m.mode {
	case ModeRecover:
		modeStr = "Recover Files"
	case ModeListDirectories:
		modeStr = "List Directories"
	}
	s.WriteString(fmt.Sprintf("  Mode:   %s\n", modeStr))
	if m.mode == ModeRecover {
		s.WriteString(fmt.Sprintf("  Output: %s\n", m.outputPath))
	}
	s.WriteString("\n")
	s.WriteString(selectedStyle.Render("Press Y to start, N to go back"))
	return s.String()
}

func (m model) viewRunning() string {
	var s strings.Builder
	s.WriteString(m.spinner.View())
	s.WriteString(" ")
	s.WriteString(m.statusMsg)
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("This may take a while for large volumes..."))
	return s.String()
}

func (m model) viewResults() string {
	var s strings.Builder
	if m.err != nil {
		s.WriteString(errorStyle.Render("Recovery Failed"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Error: %v\n", m.err))
	} else {
		s.WriteString(successStyle.Render("Recovery Complete"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Scanned:   %d records\n", m.result.Scanned))
		s.WriteString(fmt.Sprintf("Recovered: %d\n", m.result.Recovered))
		s.WriteString(fmt.Sprintf("Skipped:   %d\n", m.result.Skipped))
		s.WriteString(fmt.Sprintf("Failed:    %d\n", m.result.Failed))
		if m.mode == ModeRecover {
			s.WriteString(fmt.Sprintf("Saved to:  %s\n", m.outputPath))
		}
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Press r to run again, q to quit"))
	return s.String()
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
