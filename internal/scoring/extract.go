// Package scoring извлекает числовую оценку из свободного текста итогов.
package scoring

import (
	"strconv"
	"strings"
	"unicode"
)

// ExtractScore ищет первую строку, содержащую "rating" (без учета регистра)
// или "/10", и берет цифры (любой письменности) из ее части до первого "/".
// Отсутствие оценки не ошибка: возвращается false.
// Диапазон 0-10 не проверяется.
func ExtractScore(summary string) (int, bool) {
	for _, line := range strings.Split(summary, "\n") {
		if !strings.Contains(strings.ToLower(line), "rating") && !strings.Contains(line, "/10") {
			continue
		}

		head, _, _ := strings.Cut(line, "/")
		digits := strings.Map(asciiDigit, head)
		if digits == "" {
			return 0, false
		}

		score, err := strconv.Atoi(digits)
		if err != nil {
			return 0, false
		}
		return score, true
	}
	return 0, false
}

// asciiDigit переводит десятичную цифру любой письменности в ASCII, остальное отбрасывает.
// Цифры в Unicode идут блоками по десять, начиная с нуля.
func asciiDigit(r rune) rune {
	if !unicode.IsDigit(r) {
		return -1
	}
	zero := r
	for unicode.IsDigit(zero - 1) {
		zero--
	}
	return '0' + (r-zero)%10
}
