package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"interview-prep-bot/internal/resume"
	"interview-prep-bot/internal/sandbox"
)

func newResumeCmd(a *app) *cobra.Command {
	var (
		mimeType string
		textOnly bool
	)

	cmd := &cobra.Command{
		Use:   "resume <файл>",
		Short: "Извлечь текст резюме (PDF/DOCX) и получить рекомендации",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			text, err := resume.ExtractFile(args[0], mimeType)
			if err != nil {
				return err
			}
			if textOnly {
				fmt.Fprintln(out, text)
				return nil
			}

			client, err := a.newCompleter()
			if err != nil {
				return err
			}
			feedback, err := resume.NewAnalyzer(client).Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "📄 Рекомендации по резюме\n\n%s\n", feedback)
			return nil
		},
	}

	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME тип файла (по умолчанию по расширению)")
	cmd.Flags().BoolVar(&textOnly, "text", false, "только вывести извлеченный текст")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "run [файл]",
		Short: "Выполнить код в Docker песочнице (stdin, если файл не указан)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, err := sandbox.ParseLanguage(lang)
			if err != nil {
				return err
			}

			var code []byte
			if len(args) == 1 {
				code, err = os.ReadFile(args[0])
			} else {
				code, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("ошибка чтения кода: %w", err)
			}

			sb, closeSandbox := a.newSandbox(cmd.Context())
			defer closeSandbox()

			fmt.Fprintln(cmd.OutOrStdout(), sb.Run(cmd.Context(), string(code), language))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "python", "язык: python или javascript")
	return cmd
}
