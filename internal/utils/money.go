package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatSoles renders an amount in Peruvian soles, e.g. "S/ 1,234.50".
func FormatSoles(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	return fmt.Sprintf("%sS/ %s.%02d", sign, formatThousand(cents/100), cents%100)
}

// FormatDollars renders whole dollars with separators, e.g. "$245,800".
func FormatDollars(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s$%s", sign, formatThousand(int64(math.Round(amount))))
}

// FormatCount renders an integer with thousand separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + formatThousand(-n)
	}
	return formatThousand(n)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
