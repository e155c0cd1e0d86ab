package resume

import (
	"context"
	"fmt"
	"strings"

	"interview-prep-bot/internal/interview"
)

const reviewerPrompt = "You are a professional resume reviewer."

// Analyzer просит модель дать рекомендации по резюме.
// Запрос идет отдельным транскриптом и не затрагивает сессию интервью.
type Analyzer struct {
	client interview.Completer
}

func NewAnalyzer(client interview.Completer) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze возвращает отзыв модели о резюме
func (a *Analyzer) Analyze(ctx context.Context, resumeText string) (string, error) {
	if strings.TrimSpace(resumeText) == "" {
		return "", &interview.ValidationError{Field: "resume", Reason: "текст резюме пуст"}
	}

	transcript := []interview.Message{
		{Role: interview.RoleSystem, Content: reviewerPrompt},
		{Role: interview.RoleUser, Content: "Analyze the following resume and provide feedback for improvement:\n" + resumeText},
	}

	reply, err := a.client.Complete(ctx, transcript)
	if err != nil {
		return "", &interview.ServiceError{Op: "resume", Err: fmt.Errorf("ошибка анализа резюме: %w", err)}
	}
	return strings.TrimSpace(reply.Content), nil
}
