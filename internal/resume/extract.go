// Package resume извлекает текст резюме из PDF и DOCX и отдает его на анализ модели.
package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// UnsupportedFormatError формат файла не поддерживается
type UnsupportedFormatError struct {
	MimeType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("неподдерживаемый формат резюме: %q (ожидается PDF или DOCX)", e.MimeType)
}

// ExtractionError файл поврежден или не читается
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("ошибка извлечения текста из %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// DetectMIME определяет тип по расширению файла
func DetectMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	default:
		return ""
	}
}

// ExtractFile читает файл и извлекает из него текст.
// Пустой mimeType определяется по расширению.
func ExtractFile(path, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = DetectMIME(path)
	}
	if mimeType != MimePDF && mimeType != MimeDOCX {
		return "", &UnsupportedFormatError{MimeType: mimeType}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}
	return Extract(bytes.NewReader(data), int64(len(data)), mimeType)
}

// Extract извлекает текст из содержимого файла заданного типа
func Extract(r io.ReaderAt, size int64, mimeType string) (string, error) {
	switch mimeType {
	case MimePDF:
		return extractPDF(r, size)
	case MimeDOCX:
		return extractDOCX(r, size)
	default:
		return "", &UnsupportedFormatError{MimeType: mimeType}
	}
}

func extractPDF(r io.ReaderAt, size int64) (text string, err error) {
	// Парсер паникует на некоторых поврежденных файлах
	defer func() {
		if p := recover(); p != nil {
			text, err = "", &ExtractionError{Format: "PDF", Err: fmt.Errorf("%v", p)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", &ExtractionError{Format: "PDF", Err: err}
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Format: "PDF", Err: fmt.Errorf("страница %d: %w", i, err)}
		}
		b.WriteString(content)
	}
	return b.String(), nil
}

func extractDOCX(r io.ReaderAt, size int64) (string, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return "", &ExtractionError{Format: "DOCX", Err: err}
	}

	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", &ExtractionError{Format: "DOCX", Err: err}
		}
		defer rc.Close()

		text, err := documentText(rc)
		if err != nil {
			return "", &ExtractionError{Format: "DOCX", Err: err}
		}
		return text, nil
	}

	return "", &ExtractionError{Format: "DOCX", Err: errors.New("word/document.xml не найден")}
}

// documentText собирает текст абзацев WordprocessingML, по строке на абзац
func documentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}
