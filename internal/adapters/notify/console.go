package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// Formatos de salida soportados por Console.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Umbrales de retorno anualizado (%) para la columna Tier.
const (
	tierHigh   = 50.0
	tierMedium = 30.0
)

// Console implementa ports.Notifier escribiendo cada evento a un io.Writer.
type Console struct {
	mu          sync.Mutex
	out         io.Writer
	format      string
	diagnostics bool
	now         func() time.Time
}

// NewConsole crea un notificador que escribe a stdout.
// format es "table" (default) o "json"; diagnostics añade los conteos por predicado.
func NewConsole(format string, diagnostics bool) *Console {
	return NewConsoleWriter(os.Stdout, format, diagnostics)
}

// NewConsoleWriter crea un notificador sobre w (tests).
func NewConsoleWriter(w io.Writer, format string, diagnostics bool) *Console {
	if format != FormatJSON {
		format = FormatTable
	}
	return &Console{out: w, format: format, diagnostics: diagnostics, now: time.Now}
}

// Notify imprime el evento en el formato configurado.
func (c *Console) Notify(_ context.Context, ev domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.format == FormatJSON {
		b, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("notify.Console: marshal event: %w", err)
		}
		_, err = fmt.Fprintf(c.out, "%s\n", b)
		return err
	}

	ts := c.now().Format("15:04:05")
	if ev.IsSummary() {
		fmt.Fprintf(c.out, "\n[%s] === %s ===\n", ts, ev.Message())
		c.printRows(ev.Result.Rows)
		return nil
	}

	fmt.Fprintf(c.out, "[%s] %s\n", ts, ev.Message())
	switch ev.State {
	case domain.JobSucceeded:
		c.printHeader(ev.Result)
		c.printRows(ev.Result.Rows)
		c.printDiagnostics(ev.Result)
	case domain.JobEmptyResult:
		c.printDiagnostics(ev.Result)
	}
	return nil
}

func (c *Console) printHeader(r *domain.ScreeningResult) {
	fmt.Fprintf(c.out, "  %s spot $%.2f | config v%d | %d contracts\n",
		r.Symbol, r.SpotPrice, r.ConfigVersion, len(r.Rows))
}

// printRows imprime la tabla de candidatos en el orden recibido.
func (c *Console) printRows(rows []domain.ResultRow) {
	if len(rows) == 0 {
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Symbol", "Strike", "Premium", "Volume", "OI", "IV%", "Delta", "Return%", "Tier", "Expiration", "DTE", "BD")
	for i, r := range rows {
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.Symbol,
			fmt.Sprintf("%.2f", r.Strike),
			fmt.Sprintf("%.2f", r.Premium),
			fmt.Sprintf("%d", r.Volume),
			fmt.Sprintf("%d", r.OpenInterest),
			fmt.Sprintf("%.2f", r.ImpliedVolatility),
			fmt.Sprintf("%.3f", r.Delta),
			fmt.Sprintf("%.2f", r.AnnualizedReturn),
			Tier(r.AnnualizedReturn),
			r.Expiration.Format(time.DateOnly),
			fmt.Sprintf("%d", r.CalendarDays),
			fmt.Sprintf("%d", r.BusinessDays),
		)
	}
	table.Render()
}

// printDiagnostics muestra cuántos contratos pasan cada criterio por separado.
func (c *Console) printDiagnostics(r *domain.ScreeningResult) {
	if !c.diagnostics || r == nil {
		return
	}
	n, p := r.Diagnostics.Normalization, r.Diagnostics.Predicates
	fmt.Fprintf(c.out, "  normalize: input=%d dropped=%d delta_computed=%d undefined_delta=%d out_of_window=%d\n",
		n.Input, n.Dropped, n.DeltaComputed, n.UndefinedDelta, r.Diagnostics.OutOfWindow)
	fmt.Fprintf(c.out, "  criteria:  total=%d volume=%d oi=%d min_delta=%d max_delta=%d return=%d otm=%d all=%d\n",
		p.Total, p.Volume, p.OpenInterest, p.MinDelta, p.MaxDelta, p.Return, p.OutOfTheMoney, p.All)
}

// Tier devuelve el marcador de la banda de retorno anualizado.
func Tier(annualizedReturn float64) string {
	switch {
	case annualizedReturn >= tierHigh:
		return "HIGH"
	case annualizedReturn >= tierMedium:
		return "MED"
	}
	return ""
}
