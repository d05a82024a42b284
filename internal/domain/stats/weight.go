package stats

import (
	"strconv"
	"strings"
)

// ParseWeight извлекает число из строки вида "150g" или "12.5kg".
//
// Удаляются все символы, кроме цифр и точки; остаток разбирается как число.
// Пустая строка означает «величина не записана»: 0, ok=true.
// Неразбираемый остаток (в том числе переполнение float64) даёт 0, ok=false:
// одна битая запись обнуляется, а не срывает отчёт целиком.
func ParseWeight(text string) (value float64, ok bool) {
	if text == "" {
		return 0, true
	}

	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)

	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
