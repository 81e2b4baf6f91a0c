package gui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/fmuoria/interview-analyzer/internal/agent"
	"github.com/fmuoria/interview-analyzer/internal/config"
	"github.com/fmuoria/interview-analyzer/internal/export"
	"github.com/fmuoria/interview-analyzer/internal/models"
)

var cardHeaders = []string{"Speaker", "Tone", "Score", "Confidence", "Empathy", "Fillers", "Avg Sent.", "Knowledge", "Matched Keywords"}

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	agent      *agent.InterviewAgent
	log        *logrus.Entry
	ctx        context.Context
	cancelFunc context.CancelFunc

	// UI Components
	industrySelect  *widget.Select
	subdomainSelect *widget.Select
	candidateRadio  *widget.RadioGroup
	roundSelect     *widget.Select
	transcriptText  *widget.Entry
	filePathLabel   *widget.Label
	analyzeBtn      *widget.Button
	cancelBtn       *widget.Button
	progressBar     *widget.ProgressBar
	progressLabel   *widget.Label
	reportSelect    *widget.Select
	badgeGradient   *canvas.LinearGradient
	badgeText       *canvas.Text
	headlineLabel   *widget.Label
	cardsTable      *widget.Table
	prosLabel       *widget.Label
	consLabel       *widget.Label
	summaryLabel    *widget.Label
	subjectEntry    *widget.Entry
	exportBtn       *widget.Button

	filePath string
	reports  []models.Report
	current  *models.Report
}

// NewApp creates a new GUI application around an agent
func NewApp(cfg *config.Config, ag *agent.InterviewAgent, log *logrus.Entry) *App {
	a := app.New()
	w := a.NewWindow("MentorFlow | Interview Analyzer")
	w.Resize(fyne.NewSize(1100, 760))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     cfg,
		agent:      ag,
		log:        log,
	}

	guiApp.setupUI()

	return guiApp
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Analyze", a.createAnalyzeTab()),
		container.NewTabItem("Gmail", a.createGmailTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// createSelectionForm builds the domain, candidate and round pickers
func (a *App) createSelectionForm() fyne.CanvasObject {
	table := a.agent.Domains()

	a.subdomainSelect = widget.NewSelect(nil, nil)
	a.industrySelect = widget.NewSelect(table.IndustryNames(), func(industry string) {
		a.subdomainSelect.SetOptions(table.Subdomains(industry))
		a.subdomainSelect.SetSelectedIndex(0)
	})
	if len(table.Industries) > 0 {
		a.industrySelect.SetSelectedIndex(0)
	}

	a.candidateRadio = widget.NewRadioGroup(table.CandidateTypes, nil)
	a.candidateRadio.Horizontal = true
	if len(table.CandidateTypes) > 0 {
		a.candidateRadio.SetSelected(table.CandidateTypes[0])
	}

	a.roundSelect = widget.NewSelect(table.RoundTypes, nil)
	if len(table.RoundTypes) > 0 {
		a.roundSelect.SetSelectedIndex(0)
	}

	return widget.NewForm(
		widget.NewFormItem("Interview Domain", a.industrySelect),
		widget.NewFormItem("Subdomain/Role", a.subdomainSelect),
		widget.NewFormItem("Candidate Type", a.candidateRadio),
		widget.NewFormItem("Round Type", a.roundSelect),
	)
}

func (a *App) createAnalyzeTab() fyne.CanvasObject {
	selection := a.createSelectionForm()

	a.transcriptText = widget.NewMultiLineEntry()
	a.transcriptText.SetPlaceHolder("Paste interview/group transcript here, one \"Speaker: text\" line per utterance")
	a.transcriptText.SetMinRowsVisible(8)
	a.transcriptText.Wrapping = fyne.TextWrapWord

	a.filePathLabel = widget.NewLabel("No file selected")
	openBtn := widget.NewButton("Open File...", a.handleOpenFile)
	clearBtn := widget.NewButton("Clear File", func() {
		a.filePath = ""
		a.filePathLabel.SetText("No file selected")
	})

	a.progressBar = widget.NewProgressBar()
	a.progressLabel = widget.NewLabel("Ready")
	a.analyzeBtn = widget.NewButton("Analyze Now", a.handleAnalyze)
	a.analyzeBtn.Importance = widget.HighImportance
	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	inputSection := container.NewVBox(
		widget.NewLabelWithStyle("MentorFlow Interview Analytics", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		selection,
		widget.NewSeparator(),
		a.transcriptText,
		container.NewHBox(openBtn, clearBtn, a.filePathLabel),
		a.progressLabel,
		a.progressBar,
		container.NewHBox(a.analyzeBtn, a.cancelBtn),
	)

	return container.NewVScroll(container.NewVBox(
		inputSection,
		widget.NewSeparator(),
		a.createResultsSection(),
	))
}

func (a *App) createResultsSection() fyne.CanvasObject {
	a.reportSelect = widget.NewSelect(nil, func(label string) {
		for i := range a.reports {
			if reportLabel(a.reports[i]) == label {
				a.showReport(&a.reports[i])
				return
			}
		}
	})
	a.reportSelect.PlaceHolder = "No analyses yet"

	from, to := export.BadgeColors(models.BadgeAverage)
	a.badgeGradient = canvas.NewHorizontalGradient(hexColor(from), hexColor(to))
	a.badgeText = canvas.NewText("  -  ", color.White)
	a.badgeText.TextStyle = fyne.TextStyle{Bold: true}
	a.badgeText.Alignment = fyne.TextAlignCenter
	badge := container.NewStack(a.badgeGradient, container.NewPadded(a.badgeText))

	a.headlineLabel = widget.NewLabel("")
	a.headlineLabel.Wrapping = fyne.TextWrapWord

	a.cardsTable = widget.NewTable(
		func() (int, int) {
			if a.current == nil {
				return 1, len(cardHeaders)
			}
			return len(a.current.Cards) + 1, len(cardHeaders)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(cardHeaders[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			if a.current != nil && id.Row-1 < len(a.current.Cards) {
				label.SetText(cardCell(a.current.Cards[id.Row-1], id.Col))
			}
		},
	)
	widths := []float32{120, 80, 60, 90, 70, 60, 80, 80, 260}
	for i, w := range widths {
		a.cardsTable.SetColumnWidth(i, w)
	}

	a.prosLabel = widget.NewLabel("")
	a.prosLabel.Wrapping = fyne.TextWrapWord
	a.consLabel = widget.NewLabel("")
	a.consLabel.Wrapping = fyne.TextWrapWord
	a.summaryLabel = widget.NewLabel("")
	a.summaryLabel.Wrapping = fyne.TextWrapWord

	a.exportBtn = widget.NewButton("Export to Excel", a.handleExport)
	a.exportBtn.Disable()

	tableScroll := container.NewScroll(a.cardsTable)
	tableScroll.SetMinSize(fyne.NewSize(900, 200))

	return container.NewVBox(
		widget.NewLabelWithStyle("Results", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.reportSelect,
		container.NewHBox(badge, a.headlineLabel),
		tableScroll,
		container.NewGridWithColumns(2,
			widget.NewCard("Pros", "", a.prosLabel),
			widget.NewCard("Cons", "", a.consLabel),
		),
		widget.NewCard("Session Summary", "", a.summaryLabel),
		a.exportBtn,
	)
}

func (a *App) createGmailTab() fyne.CanvasObject {
	a.subjectEntry = widget.NewEntry()
	a.subjectEntry.SetPlaceHolder("e.g., Interview Recording")

	fetchBtn := widget.NewButton("Fetch and Analyze", a.handleGmail)

	return container.NewVBox(
		widget.NewLabel("Analyze transcript (.txt, .docx) and audio (.wav) attachments of matching emails.\nOn first use, check the console for the OAuth URL."),
		widget.NewForm(widget.NewFormItem("Email Subject Filter", a.subjectEntry)),
		fetchBtn,
	)
}

func (a *App) createSettingsTab() fyne.CanvasObject {
	projectEntry := widget.NewEntry()
	projectEntry.SetText(a.config.GoogleCloudProject)

	locationEntry := widget.NewEntry()
	locationEntry.SetText(a.config.GoogleCloudLocation)

	googleCredsEntry := widget.NewEntry()
	googleCredsEntry.SetText(a.config.GoogleCredentialsPath)

	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.GmailCredentialsPath)

	asrEntry := widget.NewEntry()
	asrEntry.SetText(a.config.ASRURL)
	asrEntry.SetPlaceHolder("http://localhost:9000")

	redisEntry := widget.NewEntry()
	redisEntry.SetText(a.config.RedisAddr)
	redisEntry.SetPlaceHolder("localhost:6379 (optional summary cache)")

	sentimentSelect := widget.NewSelect([]string{config.SentimentLexicon, config.SentimentVertex}, nil)
	sentimentSelect.SetSelected(a.config.SentimentBackend)

	summarizerSelect := widget.NewSelect([]string{config.SummarizerExtractive, config.SummarizerVertex}, nil)
	summarizerSelect.SetSelected(a.config.SummarizerBackend)

	browse := func(target *widget.Entry) *widget.Button {
		return widget.NewButton("Browse...", func() {
			dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
				if err == nil && uc != nil {
					target.SetText(uc.URI().Path())
					uc.Close()
				}
			}, a.mainWindow)
		})
	}

	form := widget.NewForm(
		widget.NewFormItem("Google Cloud Project", projectEntry),
		widget.NewFormItem("Google Cloud Location", locationEntry),
		widget.NewFormItem("Google Credentials", container.NewBorder(nil, nil, nil, browse(googleCredsEntry), googleCredsEntry)),
		widget.NewFormItem("Gmail Credentials", container.NewBorder(nil, nil, nil, browse(gmailCredsEntry), gmailCredsEntry)),
		widget.NewFormItem("Speech-to-Text URL", asrEntry),
		widget.NewFormItem("Redis Address", redisEntry),
		widget.NewFormItem("Sentiment Backend", sentimentSelect),
		widget.NewFormItem("Summarizer Backend", summarizerSelect),
	)

	apply := func() {
		a.config.GoogleCloudProject = projectEntry.Text
		a.config.GoogleCloudLocation = locationEntry.Text
		a.config.GoogleCredentialsPath = googleCredsEntry.Text
		a.config.GmailCredentialsPath = gmailCredsEntry.Text
		a.config.ASRURL = asrEntry.Text
		a.config.RedisAddr = redisEntry.Text
		a.config.SentimentBackend = sentimentSelect.Selected
		a.config.SummarizerBackend = summarizerSelect.Selected
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		apply()
		if err := a.config.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.config.ApplyToEnv()
		dialog.ShowInformation("Success", "Settings saved. Restart the application to switch backends.", a.mainWindow)
	})

	testBtn := widget.NewButton("Validate", func() {
		apply()
		if err := a.config.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn),
	)
}

// selection returns the request metadata chosen in the sidebar form
func (a *App) selection() models.AnalyzeRequest {
	return models.AnalyzeRequest{
		Industry:      a.industrySelect.Selected,
		Subdomain:     a.subdomainSelect.Selected,
		CandidateType: a.candidateRadio.Selected,
		RoundType:     a.roundSelect.Selected,
	}
}

func (a *App) handleOpenFile() {
	open := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()

		a.filePath = uc.URI().Path()
		a.filePathLabel.SetText(filepath.Base(a.filePath))
	}, a.mainWindow)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".docx", ".wav"}))
	open.Show()
}

// startWork switches the UI into busy mode and returns a cancellable context
func (a *App) startWork() context.Context {
	a.analyzeBtn.Disable()
	a.cancelBtn.Enable()
	a.progressBar.SetValue(0)

	a.ctx, a.cancelFunc = context.WithCancel(context.Background())

	a.agent.SetProgressCallback(func(current, total int, message string) {
		fyne.Do(func() {
			a.progressBar.SetValue(float64(current) / float64(total))
			a.progressLabel.SetText(message)
		})
	})

	return a.ctx
}

func (a *App) finishWork(err error) {
	a.analyzeBtn.Enable()
	a.cancelBtn.Disable()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.progressLabel.SetText("Analysis canceled")
			return
		}
		a.progressLabel.SetText("Error: " + err.Error())
		dialog.ShowError(err, a.mainWindow)
	}
}

func (a *App) handleAnalyze() {
	req := a.selection()
	path := a.filePath
	req.Transcript = a.transcriptText.Text

	if path == "" && strings.TrimSpace(req.Transcript) == "" {
		dialog.ShowError(fmt.Errorf("insufficient data for analysis, please paste a transcript or open a file"), a.mainWindow)
		return
	}

	ctx := a.startWork()
	a.progressLabel.SetText("Analyzing...")

	go func() {
		var (
			report *models.Report
			err    error
		)
		if path != "" {
			report, err = a.agent.AnalyzeFile(ctx, path, req)
		} else {
			report, err = a.agent.Analyze(ctx, req)
		}

		fyne.Do(func() {
			a.finishWork(err)
			if err != nil {
				a.log.WithError(err).Warn("analysis failed")
				return
			}
			a.progressBar.SetValue(1)
			a.progressLabel.SetText(fmt.Sprintf("Complete! Scored %d speakers", len(report.Cards)))
			a.refreshReports(report.ID)
		})
	}()
}

func (a *App) handleGmail() {
	subject := strings.TrimSpace(a.subjectEntry.Text)
	if subject == "" {
		dialog.ShowError(fmt.Errorf("please enter an email subject filter"), a.mainWindow)
		return
	}

	ctx := a.startWork()
	base := a.selection()

	go func() {
		results, err := a.agent.AnalyzeFromGmail(ctx, subject, base, os.Stdout, os.Stdin)

		fyne.Do(func() {
			a.finishWork(err)
			if err != nil {
				return
			}

			ok, failed := 0, 0
			lastID := ""
			for _, r := range results {
				if r.Err != nil {
					failed++
					continue
				}
				ok++
				lastID = r.Report.ID
			}
			a.progressLabel.SetText(fmt.Sprintf("Complete! Analyzed %d attachments, %d failed", ok, failed))
			a.refreshReports(lastID)

			fyne.CurrentApp().SendNotification(&fyne.Notification{
				Title:   "Analysis Complete",
				Content: fmt.Sprintf("Analyzed %d attachments", ok),
			})
		})
	}()
}

func (a *App) handleCancel() {
	if a.cancelFunc != nil {
		a.cancelFunc()
		a.progressLabel.SetText("Canceling...")
	}
}

// refreshReports reloads the report list and shows the report with id
func (a *App) refreshReports(id string) {
	a.reports = a.agent.GetReports()

	labels := make([]string, len(a.reports))
	for i, r := range a.reports {
		labels[i] = reportLabel(r)
	}
	a.reportSelect.SetOptions(labels)

	for i := range a.reports {
		if a.reports[i].ID == id {
			a.reportSelect.SetSelected(labels[i])
			break
		}
	}

	if len(a.reports) > 0 {
		a.exportBtn.Enable()
	}
}

func (a *App) showReport(r *models.Report) {
	a.current = r

	from, to := export.BadgeColors(r.Session.Badge)
	a.badgeGradient.StartColor = hexColor(from)
	a.badgeGradient.EndColor = hexColor(to)
	a.badgeGradient.Refresh()
	a.badgeText.Text = "  " + string(r.Session.Badge) + "  "
	a.badgeText.Refresh()

	a.headlineLabel.SetText(sessionHeadline(r.Session))
	a.prosLabel.SetText(bulletText(r.Session.Pros))
	a.consLabel.SetText(bulletText(r.Session.Cons))
	a.summaryLabel.SetText(r.Session.Summary)
	a.cardsTable.Refresh()
}

func (a *App) handleExport() {
	reports := a.agent.GetReports()
	if len(reports) == 0 {
		dialog.ShowError(fmt.Errorf("no results to export"), a.mainWindow)
		return
	}

	timestamp := time.Now().Format("2006-01-02_150405")
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()

		outputPath := uc.URI().Path()
		if err := export.ExportToExcel(reports, outputPath); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "Results exported successfully to "+filepath.Base(outputPath), a.mainWindow)
	}, a.mainWindow)
	save.SetFileName(fmt.Sprintf("Interview_Analysis_%s.xlsx", timestamp))
	save.Show()
}

// reportLabel names a report in the result picker
func reportLabel(r models.Report) string {
	short := r.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s · %s/%s · %s", r.Source, r.Industry, r.Subdomain, short)
}

// sessionHeadline renders the recommendation line above the card table
func sessionHeadline(s models.SessionResult) string {
	return fmt.Sprintf("%s (%s)\nAvg score %.1f/10 · Knowledge %.1f/10 (%s)",
		s.Message, s.Recommendation, s.AvgScore, s.AvgKnowledge, s.KnowledgeBadge)
}

// cardCell formats one column of a score card row
func cardCell(c models.SpeakerScoreCard, col int) string {
	switch col {
	case 0:
		return c.Speaker
	case 1:
		return string(c.Tone)
	case 2:
		return fmt.Sprintf("%.1f", c.Score)
	case 3:
		return fmt.Sprintf("%.2f", c.Confidence)
	case 4:
		return strconv.Itoa(c.EmpathyScore)
	case 5:
		return strconv.Itoa(c.NumFillers)
	case 6:
		return strconv.Itoa(c.AvgSentenceLength)
	case 7:
		return fmt.Sprintf("%.1f", c.KnowledgeScore)
	case 8:
		return strings.Join(c.MatchedKeywords, ", ")
	}
	return ""
}

func bulletText(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return "• " + strings.Join(items, "\n• ")
}

// hexColor parses "RRGGBB"; invalid input yields opaque grey
func hexColor(s string) color.NRGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(s, "#")) != 6 {
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}
