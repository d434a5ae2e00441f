package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"sciloc/internal/classify"
)

const chartTitle = "محل تولد دانشمندان ایرانی"

// ChartWriter выводит распределение по категориям в Markdown:
// таблица с процентами и круговая диаграмма mermaid.
// Mermaid сам отображает RTL-подписи, отдельного решейпинга не нужно.
type ChartWriter struct {
	output io.Writer
}

func NewChartWriter(output io.Writer) *ChartWriter {
	return &ChartWriter{output: output}
}

// Write выводит отчёт; records — число записей в файле данных
func (w *ChartWriter) Write(counts []classify.CategoryCount, records int) error {
	md := markdown.NewMarkdown(w.output)

	md.H1(chartTitle)
	md.PlainText("")

	total := classify.Total(counts)

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count), Percent(c.Count, total)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count", "Share"},
		Rows:   rows,
	})
	md.PlainText("")

	if total == 0 {
		md.Note(fmt.Sprintf("None of %d records matched a category.", records))
		return md.Build()
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(chartTitle),
		piechart.WithShowData(true),
	)
	for _, c := range counts {
		if c.Count > 0 {
			chart.LabelAndIntValue(c.Name, uint64(c.Count))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
	md.PlainTextf("%d of %d records classified.", total, records)

	return md.Build()
}

// Percent форматирует долю как "12.5%"
func Percent(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)*100/float64(total))
}
