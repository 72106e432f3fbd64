// Package ui is the Bubble Tea front end over the seed-inversion
// pipeline and the forward generator, per spec.md §10: a seed-finder
// view that runs internal/seedinv against two typed-in observations, and
// a path-explorer view that streams internal/forward results through
// internal/worker's control block. Grounded on the teacher's
// internal/cli/ui/ui.go (Model/Init/Update/View, lipgloss style block,
// iota view-state consts, tea.Tick-based channel polling), scaled down
// to this domain's two views.
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lareveal/compute"
	"lareveal/compute/factory"
	"lareveal/internal/forward"
	"lareveal/internal/model"
	"lareveal/internal/seedinv"
	"lareveal/internal/sizeinv"
	"lareveal/internal/staticdata"
	"lareveal/internal/worker"
)

// View states.
const (
	MenuView = iota
	SeedFinderView
	PathExplorerView
)

// Styles, same palette as the teacher's ui.go.
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Padding(0, 2).
			Bold(true).
			Width(80)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4B5563")).
			Padding(0, 2).
			Width(80)

	outputViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9CA3AF"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2563EB")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

type menuItem struct {
	title       string
	description string
	view        int
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.description }
func (i menuItem) FilterValue() string { return i.title }

var menuItems = []list.Item{
	menuItem{title: "Find group seed", description: "recover a group seed from two observed specimens", view: SeedFinderView},
	menuItem{title: "Explore forward paths", description: "stream specimens from a known group seed and spawner", view: PathExplorerView},
}

// Model is the top-level Bubble Tea model for the whole program.
type Model struct {
	CurrentView int
	Menu        list.Model
	Input       textarea.Model
	Output      viewport.Model
	Width       int
	Height      int

	Store   *staticdata.Store
	Backend compute.Backend

	// Seed-finder state.
	SeedStage     int // 0: obs1 line, 1: obs2 line, 2: flags line, 3: running, and it stays 3 once recovery finishes
	Obs           [2]seedinv.Observation
	IsMulti       bool
	Variable      bool
	Recovering    bool
	RecoverErr    error
	RecoveredSeed *model.GroupSeed
	recoverCh     chan recoverOutcome

	// Path-explorer state.
	ExploreRunning bool
	ExploreErr     error
	ForwardControl *worker.ControlBlock
	forwardCh      <-chan forward.Result
	forwardErrCh   chan error
	ForwardResults []forward.Result
	ForwardDone    bool

	log []string
}

type recoverOutcome struct {
	seed *model.GroupSeed
	err  error
}

// NewModel builds the initial program state: the static-data facade is
// loaded once here (spec.md §3's lifecycle rule) and the compute
// backend is selected once via compute/factory, mirroring the teacher's
// HashMethodFactory being resolved once at program start.
func NewModel() (Model, error) {
	store, err := staticdata.Load()
	if err != nil {
		return Model{}, fmt.Errorf("ui: load static data: %w", err)
	}
	backend := factory.New(nil).GetBestBackend()

	items := list.New(menuItems, list.NewDefaultDelegate(), 76, 8)
	items.Title = "Group Seed Recovery"
	items.SetShowStatusBar(false)
	items.SetFilteringEnabled(false)

	input := textarea.New()
	input.Placeholder = "type a command, Enter to submit"
	input.Focus()
	input.Prompt = ""
	input.SetHeight(1)
	input.SetWidth(76)
	input.ShowLineNumbers = false
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))

	output := viewport.New(76, 14)
	output.Style = outputViewStyle

	return Model{
		CurrentView: MenuView,
		Menu:        items,
		Input:       input,
		Output:      output,
		Width:       80,
		Height:      24,
		Store:       store,
		Backend:     backend,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.CurrentView != MenuView {
				m = m.resetToMenu()
				return m, nil
			}
		case tea.KeyEnter:
			if m.CurrentView == MenuView {
				if sel, ok := m.Menu.SelectedItem().(menuItem); ok {
					m.CurrentView = sel.view
					m.Input.SetValue("")
					m.appendLog(helpPrompt(sel.view))
				}
				return m, nil
			}
			line := strings.TrimSpace(m.Input.Value())
			m.Input.SetValue("")
			return m.submitLine(line)
		case tea.KeyRunes:
			if len(msg.Runes) == 1 && msg.Runes[0] == 'c' && m.CurrentView == PathExplorerView && m.ExploreRunning {
				m.ForwardControl.RequestCancel()
				m.appendLog("cancellation requested")
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.Output.Width = m.Width - 4
		m.Input.SetWidth(m.Width - 4)

	case recoverDoneMsg:
		m.Recovering = false
		m.RecoveredSeed = msg.seed
		m.RecoverErr = msg.err
		if msg.err != nil {
			m.appendLog(errorStyle.Render("recovery failed: " + msg.err.Error()))
		} else {
			m.appendLog(progressStyle.Render("recovered group seed " + msg.seed.String()))
		}

	case pollForwardMsg:
		if m.ExploreRunning {
			drained := 0
			for drained < 50 {
				select {
				case r, ok := <-m.forwardCh:
					if !ok {
						m.ExploreRunning = false
						m.ForwardDone = true
						select {
						case err := <-m.forwardErrCh:
							m.ExploreErr = err
							if err != nil {
								m.appendLog(errorStyle.Render("generation error: " + err.Error()))
							}
						default:
						}
						m.appendLog(fmt.Sprintf("done: %d specimens emitted, %d nodes visited", len(m.ForwardResults), m.ForwardControl.Progress()))
						drained = 50
						continue
					}
					m.ForwardResults = append(m.ForwardResults, r)
					m.appendLog(fmt.Sprintf("adv=%d path=%s species=%d nature=%d ivs=%v shiny=%s",
						r.Advance, r.Path.String(), r.Specimen.Species, r.Specimen.Nature, r.Specimen.IVs, r.Specimen.Shiny))
					drained++
				default:
					drained = 50
				}
			}
			if m.ExploreRunning {
				cmds = append(cmds, tea.Tick(30*time.Millisecond, func(time.Time) tea.Msg { return pollForwardMsg{} }))
			}
		}
	}

	var cmd tea.Cmd
	switch m.CurrentView {
	case MenuView:
		m.Menu, cmd = m.Menu.Update(msg)
		cmds = append(cmds, cmd)
	default:
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

type recoverDoneMsg struct {
	seed *model.GroupSeed
	err  error
}

type pollForwardMsg struct{}

func (m *Model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > 200 {
		m.log = m.log[len(m.log)-200:]
	}
	m.Output.SetContent(strings.Join(m.log, "\n"))
	m.Output.GotoBottom()
}

func (m Model) resetToMenu() Model {
	m.CurrentView = MenuView
	m.SeedStage = 0
	m.Recovering = false
	m.ExploreRunning = false
	return m
}

func helpPrompt(view int) string {
	switch view {
	case SeedFinderView:
		return "specimen 1: species=453 form=0 ivs=31,31,31,31,31,31 nature=5 gender=male ability=0 alpha=false shinyrolls=1 size=128,128"
	case PathExplorerView:
		return "seed=0123456789ABCDEF spawner=100 minadv=0 maxadv=20"
	default:
		return ""
	}
}

// submitLine dispatches one typed command line to the active view's
// stage machine.
func (m Model) submitLine(line string) (tea.Model, tea.Cmd) {
	switch m.CurrentView {
	case SeedFinderView:
		return m.submitSeedFinderLine(line)
	case PathExplorerView:
		return m.submitPathExplorerLine(line)
	default:
		return m, nil
	}
}

func (m Model) submitSeedFinderLine(line string) (tea.Model, tea.Cmd) {
	if line == "" && m.SeedStage != 2 {
		return m, nil
	}
	switch m.SeedStage {
	case 0, 1:
		fields := parseFields(line)
		obs, err := parseObservation(m.Store, fields)
		if err != nil {
			m.appendLog(errorStyle.Render(err.Error()))
			return m, nil
		}
		m.Obs[m.SeedStage] = obs
		m.appendLog(infoStyle.Render(fmt.Sprintf("specimen %d recorded", m.SeedStage+1)))
		m.SeedStage++
		if m.SeedStage == 1 {
			m.appendLog(helpPrompt(SeedFinderView) + " (specimen 2)")
		} else {
			m.appendLog("flags: ismulti=true variable=false fixedsteps=1 generatorsteps=64 (Enter to run with defaults)")
		}
		return m, nil
	case 2:
		fields := parseFields(line)
		m.IsMulti = fields["ismulti"] != "false"
		m.Variable = fields["variable"] == "true"
		fixedSteps := atoiDefault(fields["fixedsteps"], 1)
		generatorSteps := atoiDefault(fields["generatorsteps"], 64)

		m.Recovering = true
		m.SeedStage = 3
		ch := make(chan recoverOutcome, 1)
		m.recoverCh = ch
		backend, obs1, obs2, isMulti, variable := m.Backend, m.Obs[0], m.Obs[1], m.IsMulti, m.Variable
		go func() {
			seed, err := seedinv.RecoverWithBackend(backend, obs1, obs2, isMulti, variable, fixedSteps, generatorSteps)
			ch <- recoverOutcome{seed: seed, err: err}
		}()
		m.appendLog("recovery started in the background")
		return m, waitForRecover(ch)
	default:
		return m, nil
	}
}

func waitForRecover(ch chan recoverOutcome) tea.Cmd {
	return func() tea.Msg {
		out := <-ch
		return recoverDoneMsg{seed: out.seed, err: out.err}
	}
}

func (m Model) submitPathExplorerLine(line string) (tea.Model, tea.Cmd) {
	if line == "" || m.ExploreRunning {
		return m, nil
	}
	fields := parseFields(line)

	var seed model.GroupSeed
	s0, err := strconv.ParseUint(fields["seed"], 16, 64)
	if err != nil {
		m.appendLog(errorStyle.Render("seed must be a hex S0 value: " + err.Error()))
		return m, nil
	}
	seed.S0 = s0

	spawnerID, err := strconv.ParseUint(fields["spawner"], 10, 32)
	if err != nil {
		m.appendLog(errorStyle.Render("spawner must be a numeric id: " + err.Error()))
		return m, nil
	}
	desc, ok := m.Store.SpawnerDescriptor(uint32(spawnerID))
	if !ok {
		m.appendLog(errorStyle.Render("unknown spawner id"))
		return m, nil
	}
	table, ok := m.Store.EncounterTable(desc.EncounterTable)
	if !ok {
		m.appendLog(errorStyle.Render("unknown encounter table"))
		return m, nil
	}

	minAdv := atoiDefault(fields["minadv"], 0)
	maxAdv := atoiDefault(fields["maxadv"], 20)
	filters := parseFilters(fields)
	info := forward.SpeciesInfo{Store: m.Store, ShinyRolls: atoiDefault(fields["shinyrolls"], 1)}

	control := worker.NewControlBlock()
	resultCh := make(chan forward.Result, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(resultCh)
		emit := func(r forward.Result) { resultCh <- r }
		var err error
		switch desc.Kind() {
		case model.SpawnerSingle, model.SpawnerFixedMulti:
			path := forward.StandardStartingPath(desc.MaxCount)
			err = forward.GenerateStandard(seed, path, minAdv, maxAdv, desc.MaxCount, table, staticdata.WeatherAny, staticdata.TimeAny, info, filters, control, emit)
		case model.SpawnerMassOutbreak:
			// The static-data spawner schema carries a single encounter
			// table id, so the second wave reuses the first wave's
			// table rather than a distinct one — a CLI-level
			// simplification, not a limitation of internal/forward
			// itself (see DESIGN.md).
			err = forward.GenerateMassOutbreak(seed, minAdv, maxAdv, 3, desc.MaxCount, table, table, staticdata.WeatherAny, staticdata.TimeAny, info, filters, control, emit)
		case model.SpawnerVariableMulti:
			path := forward.VariableStartingPath()
			err = forward.GenerateVariable(seed, path, minAdv, maxAdv, desc.MinCount, desc.MaxCount, table, staticdata.WeatherAny, staticdata.TimeAny, info, filters, control, emit)
		}
		errCh <- err
	}()

	m.ExploreRunning = true
	m.ForwardDone = false
	m.ForwardControl = control
	m.forwardCh = resultCh
	m.forwardErrCh = errCh
	m.ForwardResults = nil
	m.appendLog("exploring forward paths (press 'c' to cancel)")

	return m, tea.Tick(30*time.Millisecond, func(time.Time) tea.Msg { return pollForwardMsg{} })
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Group Seed Recovery") + "\n\n")

	switch m.CurrentView {
	case MenuView:
		b.WriteString(m.Menu.View())
	default:
		b.WriteString(outputViewStyle.Width(m.Output.Width).Render(m.Output.View()))
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(m.Input.View()))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.footerText()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+c: quit   esc: back to menu"))
	return b.String()
}

func (m Model) footerText() string {
	switch m.CurrentView {
	case SeedFinderView:
		if m.Recovering {
			return "recovering..."
		}
		if m.RecoveredSeed != nil {
			return "recovered: " + m.RecoveredSeed.String()
		}
		return fmt.Sprintf("seed finder — stage %d/3", m.SeedStage+1)
	case PathExplorerView:
		if m.ExploreRunning {
			return fmt.Sprintf("exploring — %d nodes visited, %d emitted", m.ForwardControl.Progress(), len(m.ForwardResults))
		}
		if m.ForwardDone {
			return fmt.Sprintf("done — %d specimens emitted", len(m.ForwardResults))
		}
		return "path explorer"
	default:
		return "select a mode and press Enter"
	}
}

// parseFields splits a command line into whitespace-separated key=value
// tokens, mirroring the teacher's chat-command argument parsing
// (handleRuleAdd/handleRuleDelete split free text into structured args).
func parseFields(line string) map[string]string {
	out := make(map[string]string)
	for _, tok := range strings.Fields(line) {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseObservation(store *staticdata.Store, fields map[string]string) (seedinv.Observation, error) {
	species, err := strconv.ParseUint(fields["species"], 10, 16)
	if err != nil {
		return seedinv.Observation{}, fmt.Errorf("species: %w", err)
	}
	form := atoiDefault(fields["form"], 0)
	personal, ok := store.PersonalInfo(uint16(species), uint8(form))
	if !ok {
		return seedinv.Observation{}, fmt.Errorf("unknown species/form %d/%d", species, form)
	}

	ivs, err := parseIVs(fields["ivs"])
	if err != nil {
		return seedinv.Observation{}, err
	}

	gender, err := parseGender(fields["gender"])
	if err != nil {
		return seedinv.Observation{}, err
	}

	nature := atoiDefault(fields["nature"], 0)
	ability := atoiDefault(fields["ability"], 0)
	shinyRolls := atoiDefault(fields["shinyrolls"], 1)
	alpha := fields["alpha"] == "true"

	var sizes []sizeinv.HW
	if s, ok := fields["size"]; ok {
		hw, err := parseHW(s)
		if err != nil {
			return seedinv.Observation{}, err
		}
		sizes = []sizeinv.HW{hw}
	} else if !alpha {
		return seedinv.Observation{}, fmt.Errorf("size=h,w is required for non-alpha specimens")
	}

	obs := seedinv.Observation{
		Personal:       personal,
		ShinyRolls:     shinyRolls,
		IVs:            ivs,
		Ability:        uint8(ability),
		Nature:         uint8(nature),
		Gender:         gender,
		Alpha:          alpha,
		SizeCandidates: sizes,
	}
	if b, ok := fields["basculin"]; ok {
		g, err := parseGender(b)
		if err != nil {
			return seedinv.Observation{}, err
		}
		obs.BasculinGenderOverride = &g
	}
	return obs, nil
}

func parseIVs(s string) (model.IVs, error) {
	var ivs model.IVs
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return ivs, fmt.Errorf("ivs needs exactly 6 comma-separated values, got %d", len(parts))
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 31 {
			return ivs, fmt.Errorf("ivs[%d]=%q is not a valid 0-31 value", i, p)
		}
		ivs[i] = uint8(n)
	}
	return ivs, nil
}

func parseHW(s string) (sizeinv.HW, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return sizeinv.HW{}, fmt.Errorf("size needs exactly 2 comma-separated values (height,weight)")
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	w, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || h < 0 || h > 255 || w < 0 || w > 255 {
		return sizeinv.HW{}, fmt.Errorf("size=%q is not a valid byte pair", s)
	}
	return sizeinv.HW{Height: uint8(h), Weight: uint8(w)}, nil
}

func parseGender(s string) (model.Gender, error) {
	switch strings.ToLower(s) {
	case "male":
		return model.GenderMale, nil
	case "female":
		return model.GenderFemale, nil
	case "genderless":
		return model.GenderGenderless, nil
	default:
		return 0, fmt.Errorf("gender must be male/female/genderless, got %q", s)
	}
}

func parseFilters(fields map[string]string) forward.Filters {
	var f forward.Filters
	if fields["alpha"] != "" {
		v := fields["alpha"] == "true"
		f.Alpha = &v
	}
	if fields["gender"] != "" {
		if g, err := parseGender(fields["gender"]); err == nil {
			f.Gender = &g
		}
	}
	f.ShinyOnly = fields["shiny"] == "true"
	f.Dedup = fields["dedup"] == "true"
	return f
}
