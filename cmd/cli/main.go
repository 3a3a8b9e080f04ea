package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/lexidrill/lexidrill/internal/ai"
	"github.com/lexidrill/lexidrill/internal/config"
	"github.com/lexidrill/lexidrill/internal/core"
	"github.com/lexidrill/lexidrill/internal/db"
	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/quiz"
	"github.com/lexidrill/lexidrill/internal/session"
)

type view int

const (
	viewMenu view = iota
	viewQuestion
	viewWaiting
	viewDeletion
	viewInput
	viewLoading
	viewList
	viewMessage
)

type inputMode int

const (
	inputModeAddWord inputMode = iota
	inputModeFilePath
)

var menuItems = []string{
	"Learn",
	"Add word",
	"Remove word",
	"My words",
	"Import document",
	"Statistics",
	"Help",
	"Exit",
}

// importResultMsg carries the result of an async document import
type importResultMsg struct {
	result *core.ImportResult
	err    error
}

type statsMsg struct {
	stats *db.Stats
	err   error
}

type model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	externalID string
	name       string

	engine    *quiz.Engine
	processor *core.Processor
	gateway   *channelGateway

	view       view
	inLesson   bool
	cursor     int
	banner     string
	message    string
	question   quiz.Question
	result     *quiz.Result
	words      []db.ActiveWord
	candidates []db.ActiveWord
	err        error
	input      textinput.Model
	inputMode  inputMode
	spinner    spinner.Model
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	normalStyle = lipgloss.NewStyle()

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

func newModel(engine *quiz.Engine, processor *core.Processor, externalID, name string) model {
	ctx, cancel := context.WithCancel(context.Background())

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		ctx:        ctx,
		cancel:     cancel,
		externalID: externalID,
		name:       name,
		engine:     engine,
		processor:  processor,
		gateway:    newChannelGateway(),
		view:       viewMenu,
		input:      textinput.New(),
		spinner:    s,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.gateway.next(),
		m.dispatch(quiz.UserContacted{ExternalID: m.externalID, DisplayName: m.name}),
	)
}

// dispatch runs ev in the background; its effects arrive as effectMsg.
func (m model) dispatch(ev quiz.Event) tea.Cmd {
	return func() tea.Msg {
		if err := m.engine.Dispatch(m.ctx, ev, m.gateway); err != nil && !errors.Is(err, context.Canceled) {
			return dispatchErrMsg{err: err}
		}
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case effectMsg:
		m = m.applyEffect(msg.effect)
		return m, m.gateway.next()

	case dispatchErrMsg:
		m.err = msg.err
		m.view = viewMessage
		return m, nil

	case importResultMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = fmt.Sprintf("New words added: %d\nAlready known: %d\nFailed: %d\nTotal processed: %d",
				msg.result.NewWords, msg.result.SkippedDuplicates, msg.result.Failed, msg.result.TotalProcessed)
		}
		m.view = viewMessage
		return m, nil

	case statsMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = fmt.Sprintf("Active words: %d of %d\nCorrect answers: %d\nWrong answers: %d",
				msg.stats.ActiveWords, msg.stats.TotalWords, msg.stats.CorrectCount, msg.stats.WrongCount)
		}
		m.view = viewMessage
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "esc":
			return m.toMenu(), nil
		case "enter":
			return m.handleEnter()
		}

		if m.view == viewInput {
			break
		}

		switch msg.String() {
		case "q":
			if m.view == viewMenu {
				m.cancel()
				return m, tea.Quit
			}
			return m.toMenu(), nil
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.choiceCount()-1 {
				m.cursor++
			}
		}
		return m, nil
	}

	// Handle text input when in input view
	if m.view == viewInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewMenu:
		return m.handleMenuSelection()
	case viewQuestion:
		return m.handleAnswer()
	case viewDeletion:
		return m.handleDeletion()
	case viewInput:
		return m.handleInputSubmission()
	case viewList, viewMessage:
		return m.toMenu(), nil
	}
	return m, nil
}

func (m model) toMenu() model {
	m.view = viewMenu
	m.inLesson = false
	m.cursor = 0
	m.err = nil
	m.input.Reset()
	m.input.Blur()
	return m
}

func (m model) choiceCount() int {
	switch m.view {
	case viewMenu:
		return len(menuItems)
	case viewQuestion:
		return len(m.question.Options)
	case viewDeletion:
		return len(m.candidates)
	}
	return 0
}

// applyEffect moves the UI to the screen that shows e. Lesson steps that
// arrive after the user left the lesson are dropped.
func (m model) applyEffect(e quiz.Effect) model {
	switch e.(type) {
	case quiz.Question, quiz.Result:
		if !m.inLesson {
			return m
		}
	}

	m.err = nil
	switch e := e.(type) {
	case quiz.Welcome:
		m.banner = quiz.Describe(e)
		return m
	case quiz.Question:
		m.question = e
		m.cursor = 0
		m.view = viewQuestion
	case quiz.Result:
		m.result = &e
		m.view = viewWaiting
	case quiz.WordList:
		m.words = e.Words
		m.view = viewList
	case quiz.DeletionMenu:
		if len(e.Candidates) == 0 {
			m.message = quiz.Describe(e)
			m.view = viewMessage
			return m
		}
		m.candidates = e.Candidates
		m.cursor = 0
		m.view = viewDeletion
	default:
		m.message = quiz.Describe(e)
		m.view = viewMessage
	}
	return m
}

func (m model) handleMenuSelection() (tea.Model, tea.Cmd) {
	switch menuItems[m.cursor] {
	case "Learn":
		m.view = viewWaiting
		m.inLesson = true
		m.result = nil
		return m, tea.Batch(m.dispatch(quiz.AskRequested{ExternalID: m.externalID}), m.spinner.Tick)

	case "Add word":
		m.view = viewInput
		m.inputMode = inputModeAddWord
		m.input.Placeholder = "native = english"
		m.input.Focus()
		return m, textinput.Blink

	case "Remove word":
		return m, m.dispatch(quiz.RemoveWordRequested{ExternalID: m.externalID})

	case "My words":
		return m, m.dispatch(quiz.ListRequested{ExternalID: m.externalID})

	case "Import document":
		m.view = viewInput
		m.inputMode = inputModeFilePath
		m.input.Placeholder = "Enter file path (PDF, DOCX or TXT)"
		m.input.Focus()
		return m, textinput.Blink

	case "Statistics":
		processor, id := m.processor, m.externalID
		ctx := m.ctx
		return m, func() tea.Msg {
			stats, err := processor.UserStats(ctx, id)
			return statsMsg{stats: stats, err: err}
		}

	case "Help":
		m.message = quiz.HelpText
		m.view = viewMessage
		return m, nil

	case "Exit":
		m.cancel()
		return m, tea.Quit
	}

	return m, nil
}

func (m model) handleAnswer() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.question.Options) {
		return m, nil
	}
	answer := m.question.Options[m.cursor]
	m.view = viewWaiting
	m.result = nil
	return m, tea.Batch(
		m.dispatch(quiz.AnswerChosen{ExternalID: m.externalID, Answer: answer}),
		m.spinner.Tick,
	)
}

func (m model) handleDeletion() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.candidates) {
		return m, nil
	}
	wordID := m.candidates[m.cursor].WordID
	return m, m.dispatch(quiz.WordDeletionChosen{ExternalID: m.externalID, WordID: wordID})
}

func (m model) handleInputSubmission() (tea.Model, tea.Cmd) {
	inputValue := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.input.Blur()

	switch m.inputMode {
	case inputModeAddWord:
		ev, err := quiz.ParseText(m.externalID, inputValue)
		if errors.Is(err, quiz.ErrUnrecognized) {
			// "english native" without the command prefix.
			ev, err = quiz.ParseText(m.externalID, "/add "+inputValue)
		}
		if err != nil {
			m.message = quiz.HelpText
			m.view = viewMessage
			return m, nil
		}
		m.view = viewLoading
		return m, tea.Batch(m.dispatch(ev), m.spinner.Tick)

	case inputModeFilePath:
		m.view = viewLoading
		m.err = nil
		processor, id, ctx := m.processor, m.externalID, m.ctx
		importCmd := func() tea.Msg {
			result, err := processor.ImportDocument(ctx, id, inputValue)
			return importResultMsg{result: result, err: err}
		}
		return m, tea.Batch(importCmd, m.spinner.Tick)
	}

	return m, nil
}

func (m model) View() string {
	switch m.view {
	case viewMenu:
		return m.renderMenu()
	case viewQuestion:
		return m.renderQuestion()
	case viewWaiting:
		return m.renderWaiting()
	case viewDeletion:
		return m.renderDeletion()
	case viewInput:
		return m.renderInput()
	case viewLoading:
		return m.renderLoading()
	case viewList:
		return m.renderWordList()
	case viewMessage:
		return m.renderMessage()
	}
	return m.renderMenu()
}

func renderChoices(s *strings.Builder, items []string, cursor int) {
	for i, item := range items {
		if cursor == i {
			s.WriteString(selectedStyle.Render("> " + item))
		} else {
			s.WriteString(normalStyle.Render("  " + item))
		}
		s.WriteString("\n")
	}
}

func (m model) renderMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Lexidrill - English Vocabulary Drill"))
	s.WriteString("\n\n")
	if m.banner != "" {
		s.WriteString(m.banner)
		s.WriteString("\n\n")
	}

	renderChoices(&s, menuItems, m.cursor)

	s.WriteString("\n\n")
	s.WriteString("Use ↑/↓ arrows or j/k to navigate, Enter to select, q to quit")

	return menuStyle.Render(s.String())
}

func (m model) renderResult(s *strings.Builder) {
	if m.result == nil {
		return
	}
	if m.result.Correct {
		s.WriteString(successStyle.Render(quiz.Describe(*m.result)))
	} else {
		s.WriteString(errorStyle.Render(quiz.Describe(*m.result)))
	}
	s.WriteString("\n\n")
}

func (m model) renderQuestion() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Lesson"))
	s.WriteString("\n\n")
	m.renderResult(&s)
	s.WriteString(quiz.Describe(m.question))
	s.WriteString("\n\n")

	renderChoices(&s, m.question.Options, m.cursor)

	s.WriteString("\n\nEnter to answer, Esc to leave the lesson")

	return menuStyle.Render(s.String())
}

func (m model) renderWaiting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Lesson"))
	s.WriteString("\n\n")
	m.renderResult(&s)
	s.WriteString(m.spinner.View())
	s.WriteString(" Next word...")

	return menuStyle.Render(s.String())
}

func (m model) renderDeletion() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Remove a word"))
	s.WriteString("\n\n")

	labels := make([]string, len(m.candidates))
	for i, w := range m.candidates {
		labels[i] = quiz.DeletionLabel(w)
	}
	renderChoices(&s, labels, m.cursor)

	s.WriteString("\n\nEnter to remove, Esc to cancel")

	return menuStyle.Render(s.String())
}

func (m model) renderLoading() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Lexidrill - English Vocabulary Drill"))
	s.WriteString("\n\n")
	s.WriteString(m.spinner.View())
	if m.inputMode == inputModeFilePath {
		s.WriteString(" Extracting word pairs with AI...")
		s.WriteString("\n\n")
		s.WriteString("This may take a moment depending on document size.")
	} else {
		s.WriteString(" Saving...")
	}

	return menuStyle.Render(s.String())
}

func (m model) renderInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Lexidrill - English Vocabulary Drill"))
	s.WriteString("\n\n")

	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString("Press Enter to submit, Esc to cancel")

	return menuStyle.Render(s.String())
}

func (m model) renderWordList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("My words"))
	s.WriteString("\n\n")
	s.WriteString(quiz.Describe(quiz.WordList{Words: m.words}))
	s.WriteString("\n\nPress Enter to return to menu")

	return menuStyle.Render(s.String())
}

func (m model) renderMessage() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Lexidrill - English Vocabulary Drill"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		s.WriteString(m.message)
	}

	s.WriteString("\n\nPress Enter to return to menu")

	return menuStyle.Render(s.String())
}

// identity returns the external ID and display name the client talks as.
func identity(cfg *config.Config) (string, string) {
	if cfg.CLIUser != "" {
		return cfg.CLIUser, cfg.CLIUser
	}
	if u, err := user.Current(); err == nil {
		name := u.Name
		if name == "" {
			name = u.Username
		}
		return "cli:" + u.Username, name
	}
	return "cli:local", ""
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs always go to a file.
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = "lexidrill.log"
	}
	log, err := logger.New(cfg.Logging.Level, logFile)
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	database, err := db.NewDatabase(cfg.Database.Path)
	if err != nil {
		fmt.Printf("Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if _, err := database.SeedSharedWords(context.Background()); err != nil {
		fmt.Printf("Error seeding shared words: %v\n", err)
		os.Exit(1)
	}

	var extractor ai.PairExtractor
	if cfg.ImportEnabled() {
		client, err := ai.NewClaudeClient(cfg.AnthropicAPIKey)
		if err != nil {
			fmt.Printf("Error initializing AI client: %v\n", err)
			os.Exit(1)
		}
		extractor = client
	} else {
		log.Info("ANTHROPIC_API_KEY not set, document import disabled")
	}

	engine := quiz.NewEngine(database, session.NewMemoryStore(), quiz.Config{
		CorrectDelay: cfg.Quiz.CorrectDelay,
		WrongDelay:   cfg.Quiz.WrongDelay,
		OptionCount:  cfg.Quiz.OptionCount,
	}, log)
	processor := core.NewProcessor(database, extractor, cfg.NativeLanguage, log)

	externalID, name := identity(cfg)
	log.Info("Starting terminal client", zap.String("external_id", externalID))

	p := tea.NewProgram(newModel(engine, processor, externalID, name))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
