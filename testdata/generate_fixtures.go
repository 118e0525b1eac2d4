//go:build ignore

// This program generates the sample plant exports used by benchmarks and
// manual testing: a semicolon-separated Latin-1 CSV and a workbook with a
// title block above the header.
package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/xlsx"
)

const days = 400

func main() {
	rows := productionRows()

	if err := generateCSV(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating producao.csv: %v\n", err)
		os.Exit(1)
	}

	if err := generateXlsx(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating producao.xlsx: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Test fixtures generated successfully.")
}

func productionRows() [][]string {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := [][]string{{"Data", "Linha", "OEE %", "Scrap %", "Produção", "Observação"}}
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		oee := 70 + rng.Float64()*20 + float64(i)/days*5
		scrap := 0.01 + rng.Float64()*0.04
		produced := 9000 + rng.Intn(3000)

		note := ""
		if rng.Intn(20) == 0 {
			note = "parada não programada"
		}
		oeeCell := strings.Replace(fmt.Sprintf("%.1f", oee), ".", ",", 1)
		if rng.Intn(40) == 0 {
			oeeCell = "n/d"
		}
		rows = append(rows, []string{
			day.Format("02/01/2006"),
			fmt.Sprintf("L%d", 1+i%3),
			oeeCell,
			strings.Replace(fmt.Sprintf("%.3f", scrap), ".", ",", 1),
			fmt.Sprintf("%d.%03d", produced/1000, produced%1000),
			note,
		})
	}
	return rows
}

func generateCSV(rows [][]string) error {
	var buf bytes.Buffer
	for _, r := range rows {
		buf.WriteString(strings.Join(r, ";"))
		buf.WriteString("\r\n")
	}
	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes(buf.Bytes())
	if err != nil {
		return err
	}
	return os.WriteFile("testdata/producao.csv", latin1, 0644)
}

func generateXlsx(rows [][]string) error {
	sheet := [][]string{
		{"Relatório de Produção - Planta 1"},
		{},
	}
	sheet = append(sheet, rows...)

	wb := &xlsx.Workbook{
		Sheets: []xlsx.Sheet{
			{Name: "Produção", Rows: sheet},
			{
				Name: "Metas",
				Rows: [][]string{
					{"Indicador", "Meta"},
					{"OEE %", "85"},
					{"Scrap %", "2,5"},
				},
			},
		},
	}

	return xlsx.WriteFile(wb, "testdata/producao.xlsx")
}
