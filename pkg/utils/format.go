package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Money formata valores como "$1,234.56"
func Money(v float64) string {
	return moneyWithDigits(v, 2)
}

// Money0 formata valores sem casas decimais, "$1,235"
func Money0(v float64) string {
	return moneyWithDigits(v, 0)
}

func moneyWithDigits(v float64, digits int) string {
	v = Finite(v)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := humanize.CommafWithDigits(Round(v, digits), digits)
	if digits > 0 {
		if i := strings.IndexByte(s, '.'); i < 0 {
			s += "." + strings.Repeat("0", digits)
		} else if pad := digits - (len(s) - i - 1); pad > 0 {
			s += strings.Repeat("0", pad)
		}
	}
	return sign + "$" + s
}

// Int formata inteiros com separador de milhar
func Int(v float64) string {
	return humanize.Comma(int64(math.Round(Finite(v))))
}

// Percent formata uma fração (0.123) como "12.30%"
func Percent(frac float64, digits int) string {
	return fmt.Sprintf("%.*f%%", digits, Finite(frac)*100)
}

// Pct formata um valor já em percentual (12.3) como "12.30%"
func Pct(v float64, digits int) string {
	return fmt.Sprintf("%.*f%%", digits, Finite(v))
}

// Ratio formata multiplicadores como "2.35x"
func Ratio(v float64) string {
	return fmt.Sprintf("%.2fx", Finite(v))
}
