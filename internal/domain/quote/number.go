// Package quote contiene las reglas puras de la cotización: formato del número
// (Q-YYYYMM-NNNN) y la máquina de estados DRAFT → SENT → ACCEPTED/REJECTED, EXPIRED.
package quote

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/surblend-api/internal/domain"
)

// NumberPrefix prefijo fijo del número de cotización.
const NumberPrefix = "Q"

// Period mes calendario al que pertenece una secuencia de numeración.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf devuelve el período de t en la zona horaria loc (nil = UTC).
// El período se fija en el momento de la asignación, no al persistir.
func PeriodOf(t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return Period{Year: lt.Year(), Month: lt.Month()}
}

// String YYYYMM; también sirve como clave de la secuencia.
func (p Period) String() string {
	return fmt.Sprintf("%04d%02d", p.Year, int(p.Month))
}

// Prefix parte fija de los números del período: Q-YYYYMM-.
func (p Period) Prefix() string {
	return NumberPrefix + "-" + p.String() + "-"
}

// Number número de cotización ya asignado.
type Number struct {
	Period   Period
	Sequence int64
}

// String Q-YYYYMM-NNNN (la secuencia crece a más dígitos si supera 9999).
func (n Number) String() string {
	return fmt.Sprintf("%s-%s-%04d", NumberPrefix, n.Period, n.Sequence)
}

// ParseNumber interpreta un número Q-YYYYMM-NNNN.
func ParseNumber(s string) (Number, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] != NumberPrefix || len(parts[1]) != 6 || len(parts[2]) < 4 {
		return Number{}, domain.NewValidationError("quote_number", s, "formato esperado Q-YYYYMM-NNNN")
	}
	year, err := strconv.Atoi(parts[1][:4])
	if err != nil {
		return Number{}, domain.NewValidationError("quote_number", s, "año inválido")
	}
	month, err := strconv.Atoi(parts[1][4:])
	if err != nil || month < 1 || month > 12 {
		return Number{}, domain.NewValidationError("quote_number", s, "mes inválido")
	}
	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 1 {
		return Number{}, domain.NewValidationError("quote_number", s, "secuencia inválida")
	}
	return Number{Period: Period{Year: year, Month: time.Month(month)}, Sequence: seq}, nil
}
