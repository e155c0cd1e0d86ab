package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"interview-prep-bot/internal/interview"
	"interview-prep-bot/internal/resume"
	"interview-prep-bot/internal/sandbox"
	"interview-prep-bot/internal/storage"
	"interview-prep-bot/internal/voice"
)

var chatCommands = []string{
	"/help", "/summary", "/save", "/restart", "/status", "/leaderboard",
	"/history", "/voice", "/run", "/resume", "/quit",
}

func newChatCmd(a *app) *cobra.Command {
	var (
		user, role, mode, domain string
		voiceInput               string
		tts                      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Пройти интервью в терминале",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sessionCfg, err := a.sessionConfig(role, mode, domain)
			if err != nil {
				return err
			}
			if user == "" {
				user = a.prefs.GetUserName()
			}

			client, err := a.newCompleter()
			if err != nil {
				return err
			}
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sb, closeSandbox := a.newSandbox(ctx)
			defer closeSandbox()

			out := cmd.OutOrStdout()
			opts := []interview.Option{interview.WithLeaderboard(store), interview.WithHistory(store)}
			var ack voice.Speaker = voice.NewWriterSpeaker(out)
			if tts || a.cfg.Voice.TTSEnabled {
				speaker := voice.NewOpenAISpeaker(a.cfg.OpenAI, a.cfg.Voice, out)
				opts = append(opts, interview.WithSpeaker(speaker))
				ack = speaker
			}

			repl := &chatREPL{
				manager:    interview.NewManager(user, client, opts...),
				store:      store,
				session:    sessionCfg,
				analyzer:   resume.NewAnalyzer(client),
				sandbox:    sb,
				reportsDir: a.cfg.Storage.ReportsDir,
				out:        out,
			}

			if voiceInput != "" {
				f, err := os.Open(voiceInput)
				if err != nil {
					return fmt.Errorf("ошибка открытия источника голоса: %w", err)
				}
				defer f.Close()
				repl.listener = voice.NewWakeListener(voice.NewLineSource(f), ack)
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)
			line.SetCompleter(func(s string) []string {
				var matches []string
				for _, c := range chatCommands {
					if strings.HasPrefix(c, s) {
						matches = append(matches, c)
					}
				}
				return matches
			})
			repl.in = &linerPrompter{state: line}

			return repl.run(ctx)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "имя для таблицы лидеров (по умолчанию из конфигурации)")
	cmd.Flags().StringVar(&role, "role", "", "роль: swe, analyst, pm")
	cmd.Flags().StringVar(&mode, "mode", "", "режим: technical, behavioral, faang")
	cmd.Flags().StringVar(&domain, "domain", "", "домен, например SQL или frontend")
	cmd.Flags().StringVar(&voiceInput, "voice-input", "", "файл или FIFO с распознанной речью, по фразе на строку")
	cmd.Flags().BoolVar(&tts, "tts", false, "озвучивать вопросы через OpenAI TTS")

	return cmd
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

type linerPrompter struct {
	state *liner.State
}

func (p *linerPrompter) Prompt(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		p.state.AppendHistory(line)
	}
	return line, err
}

// chatREPL консольный цикл интервью
type chatREPL struct {
	manager    *interview.Manager
	store      storage.Store
	session    interview.SessionConfig
	analyzer   *resume.Analyzer
	sandbox    *sandbox.Sandbox
	listener   *voice.WakeListener
	reportsDir string

	in  prompter
	out io.Writer
}

func (r *chatREPL) run(ctx context.Context) error {
	fmt.Fprintf(r.out, "🎯 Интервью: %s, %s, домен %s. Введите /help для списка команд.\n",
		r.session.Role, r.session.Mode, r.session.DomainOrDefault())
	r.start(ctx)

	for {
		line, err := r.in.Prompt("Вы> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out, "👋 До встречи!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("ошибка чтения ввода: %w", err)
		}

		if quit := r.handle(ctx, strings.TrimSpace(line)); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *chatREPL) start(ctx context.Context) {
	if _, err := r.manager.Start(ctx, r.session); err != nil {
		r.printError(err)
		return
	}
	snapshot := r.manager.Snapshot()
	if question, ok := snapshot.Transcript.Last(); ok {
		r.printReply(question.Content)
	}
}

// handle выполняет одну строку ввода и сообщает, нужно ли выйти
func (r *chatREPL) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, "/") {
		r.answer(ctx, line)
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit", "/exit":
		fmt.Fprintln(r.out, "👋 До встречи!")
		return true
	case "/help":
		r.help()
	case "/summary":
		r.summary(ctx)
	case "/save":
		r.save()
	case "/restart":
		r.start(ctx)
	case "/status":
		r.status()
	case "/leaderboard":
		printLeaderboard(ctx, r.out, r.store, 10)
	case "/history":
		printHistory(ctx, r.out, r.store, r.manager.User())
	case "/voice":
		r.voice(ctx)
	case "/run":
		r.runCode(ctx, arg)
	case "/resume":
		r.resume(ctx, arg)
	default:
		fmt.Fprintln(r.out, "Неизвестная команда. Введите /help.")
	}
	return false
}

func (r *chatREPL) answer(ctx context.Context, text string) {
	reply, err := r.manager.SubmitAnswer(ctx, text)
	if err != nil {
		r.printError(err)
		return
	}
	r.printReply(reply.Content)
}

func (r *chatREPL) summary(ctx context.Context) {
	fmt.Fprintln(r.out, "📝 Подвожу итоги...")
	summary, err := r.manager.RequestSummary(ctx)
	if err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintf(r.out, "\n📋 Итоги\n%s\n\n", summary)
	if score, ok := r.manager.Score(); ok {
		fmt.Fprintf(r.out, "🏆 Оценка: %d/10\n", score)
	}
}

func (r *chatREPL) save() {
	snapshot := r.manager.Snapshot()
	if snapshot.State != interview.StateSummarized {
		fmt.Fprintln(r.out, "Сначала подведите итоги командой /summary.")
		return
	}

	score, ok := r.manager.Score()
	path, err := storage.SaveReport(r.reportsDir, storage.NewReport(r.manager.User(), snapshot, score, ok))
	if err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintf(r.out, "💾 Отчет сохранен: %s\n", path)
}

func (r *chatREPL) status() {
	snapshot := r.manager.Snapshot()
	if snapshot.State == interview.StateIdle {
		fmt.Fprintln(r.out, "Интервью не начато. Введите /restart.")
		return
	}
	fmt.Fprintf(r.out, "📊 %s, %s: %d сообщений, состояние %s\n",
		snapshot.Config.Role, snapshot.Config.Mode, snapshot.Transcript.Len(), snapshot.State)
}

func (r *chatREPL) voice(ctx context.Context) {
	if r.listener == nil {
		fmt.Fprintln(r.out, "Голосовой ввод не настроен, запустите chat с --voice-input.")
		return
	}
	fmt.Fprintln(r.out, "🎙 Жду фразу \"Hello Jarvis\"...")

	command := r.listener.Listen(ctx)
	if command == "" {
		fmt.Fprintln(r.out, "Ничего не распознано.")
		return
	}
	fmt.Fprintf(r.out, "🗣 %s\n", command)
	r.answer(ctx, command)
}

// runCode читает код до строки /end и выполняет его в песочнице
func (r *chatREPL) runCode(ctx context.Context, arg string) {
	if arg == "" {
		arg = string(sandbox.Python)
	}
	lang, err := sandbox.ParseLanguage(arg)
	if err != nil {
		r.printError(err)
		return
	}

	fmt.Fprintf(r.out, "Введите код на %s, завершите строкой /end\n", lang)
	var code []string
	for {
		line, err := r.in.Prompt("... ")
		if err != nil || strings.TrimSpace(line) == "/end" {
			break
		}
		code = append(code, line)
	}

	fmt.Fprintln(r.out, r.sandbox.Run(ctx, strings.Join(code, "\n"), lang))
}

func (r *chatREPL) resume(ctx context.Context, path string) {
	if path == "" {
		fmt.Fprintln(r.out, "Укажите путь: /resume cv.pdf")
		return
	}
	text, err := resume.ExtractFile(path, "")
	if err != nil {
		r.printError(err)
		return
	}

	fmt.Fprintln(r.out, "🔍 Анализирую резюме...")
	feedback, err := r.analyzer.Analyze(ctx, text)
	if err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintf(r.out, "\n📄 Рекомендации по резюме\n%s\n\n", feedback)
}

func (r *chatREPL) help() {
	fmt.Fprint(r.out, `Команды:
  /summary          подвести итоги и получить оценку
  /save             сохранить отчет в JSON
  /restart          начать интервью заново
  /status           состояние интервью
  /leaderboard      таблица лидеров
  /history          ваши прошлые итоги
  /voice            ответить голосом ("Hello Jarvis", затем ответ)
  /run [python|js]  выполнить код в песочнице
  /resume <файл>    разбор резюме (PDF или DOCX)
  /quit             выход
Любой другой текст отправляется как ответ на вопрос.
`)
}

func (r *chatREPL) printReply(text string) {
	fmt.Fprintf(r.out, "\n🤖 %s\n\n", text)
}

func (r *chatREPL) printError(err error) {
	var service *interview.ServiceError
	switch {
	case errors.Is(err, interview.ErrNoSession):
		fmt.Fprintln(r.out, "Интервью не начато. Введите /restart.")
	case errors.Is(err, interview.ErrSummarized):
		fmt.Fprintln(r.out, "✅ Интервью завершено. /restart начнет новое, /save сохранит отчет.")
	case errors.Is(err, interview.ErrNoExchange):
		fmt.Fprintln(r.out, "Ответьте хотя бы на один вопрос, прежде чем подводить итоги.")
	case errors.As(err, &service):
		slog.Debug("Ошибка сервиса диалога", "op", service.Op, "error", service.Err)
		fmt.Fprintf(r.out, "⚠️ %v\nПопробуйте еще раз.\n", err)
	default:
		fmt.Fprintf(r.out, "❌ %v\n", err)
	}
}
