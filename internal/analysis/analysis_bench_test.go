package analysis

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/delimited"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

var sampleCSV = filepath.Join("..", "..", "testdata", "producao.csv")

func syntheticTable(n int) *table.Table {
	rows := make([][]string, n)
	for i := range rows {
		day := 1 + i%28
		month := 1 + (i/28)%12
		rows[i] = []string{
			fmt.Sprintf("%02d/%02d/%d", day, month, 2023+i/336),
			fmt.Sprintf("%d,%d", 70+i%20, i%10),
			fmt.Sprintf("L%d", 1+i%3),
		}
	}
	return table.New("bench.csv", []string{"Data", "OEE %", "Linha"}, rows)
}

func BenchmarkRun(b *testing.B) {
	for _, n := range []int{100, 10000} {
		raw := syntheticTable(n)
		cfg := Config{KPIColumn: "OEE %", TimeColumn: "Data"}
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Run(raw, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkColumns(b *testing.B) {
	raw := syntheticTable(10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Columns(raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRunSampleCSV(b *testing.B) {
	raw, err := delimited.ReadFile(sampleCSV, delimited.Options{})
	if err != nil {
		b.Skip("producao.csv not found, run go run testdata/generate_fixtures.go")
	}
	cfg := Config{KPIColumn: "OEE %", TimeColumn: "Data"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(raw, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
