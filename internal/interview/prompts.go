package interview

import (
	"fmt"
	"strings"
)

// SummaryRequest отправляется от имени пользователя при запросе итогов
const SummaryRequest = "Generate a detailed summary of the interview session. Mention strengths, areas to improve, and final rating out of 10."

// SystemPrompt строит системное сообщение по конфигурации сессии.
// Шаблон выбирается режимом интервью.
func SystemPrompt(cfg SessionConfig) string {
	if cfg.Mode == FAANGTechnical {
		return fmt.Sprintf("You are a senior FAANG interviewer. Ask advanced DSA/system design questions relevant to the %s role in the %s domain. "+
			"Evaluate each answer thoroughly and provide expert-level feedback with model answers, expected optimal solution, and score out of 10.",
			cfg.Role, cfg.DomainOrDefault())
	}

	return fmt.Sprintf("You are an expert interviewer for a %s role in %s domain. Conduct a %s interview with 3-5 questions. "+
		"Evaluate each answer based on clarity, accuracy, and real-world relevance. Give feedback and score (out of 10).",
		cfg.Role, cfg.DomainOrDefault(), strings.ToLower(string(cfg.Mode)))
}
