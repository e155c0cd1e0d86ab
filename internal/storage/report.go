package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	reportPrefix = "interview_"
	reportExt    = ".json"
)

// ErrInvalidReportID возвращается для идентификатора, который не является именем одного файла
var ErrInvalidReportID = errors.New("некорректный идентификатор отчета")

func reportPath(dir, interviewID string) (string, error) {
	if interviewID == "" || interviewID == "." || interviewID == ".." ||
		strings.ContainsAny(interviewID, `/\`) || filepath.Base(interviewID) != interviewID {
		return "", fmt.Errorf("%w: %q", ErrInvalidReportID, interviewID)
	}
	return filepath.Join(dir, reportPrefix+interviewID+reportExt), nil
}

// SaveReport сохраняет отчет об интервью в JSON файл и возвращает путь к нему
func SaveReport(dir string, report *Report) (string, error) {
	path, err := reportPath(dir, report.InterviewID)
	if err != nil {
		return "", err
	}

	// Создаем директорию если её нет
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	// Сериализуем отчет в JSON с отступами
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации отчета: %w", err)
	}

	err = os.WriteFile(path, jsonData, 0644)
	if err != nil {
		return "", fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}

	return path, nil
}

// LoadReport загружает отчет об интервью из JSON файла
func LoadReport(dir, interviewID string) (*Report, error) {
	path, err := reportPath(dir, interviewID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	var report Report
	err = json.Unmarshal(data, &report)
	if err != nil {
		return nil, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}

	return &report, nil
}

// ListReports возвращает идентификаторы всех сохраненных отчетов
func ListReports(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", dir, err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != reportExt || !strings.HasPrefix(name, reportPrefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, reportPrefix), reportExt))
	}

	return ids, nil
}
