package delimited

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBytesSemicolonLatin1(t *testing.T) {
	// "Mês;Perda %" with ê encoded as 0xEA
	data := []byte("M\xeas;Perda %\nfev/25;1,5\nmar/25;2,0\n")

	tbl, err := ReadBytes("perdas.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mês", "Perda %"}, tbl.Columns)
	assert.Equal(t, [][]string{{"fev/25", "1,5"}, {"mar/25", "2,0"}}, tbl.Rows)
	assert.Equal(t, "perdas.csv", tbl.Name)
}

func TestReadBytesCommaUTF8WithBOM(t *testing.T) {
	data := []byte("\xef\xbb\xbfData,OEE,Obs\n15/03/2024,\"85,5\",ok\n16/03/2024,80\n")

	tbl, err := ReadBytes("oee.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "OEE", "Obs"}, tbl.Columns)
	assert.Equal(t, []string{"15/03/2024", "85,5", "ok"}, tbl.Rows[0])
	assert.Equal(t, []string{"16/03/2024", "80", ""}, tbl.Rows[1], "short rows are padded")
}

func TestReadBytesForcedOptions(t *testing.T) {
	data := []byte("a|b\n1|2\n")
	tbl, err := ReadBytes("x", data, Options{Comma: '|', Encoding: EncodingUTF8})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)

	latin, err := ReadBytes("y", []byte("caf\xe9\n1\n"), Options{Encoding: EncodingLatin1})
	require.NoError(t, err)
	assert.Equal(t, []string{"café"}, latin.Columns)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.csv")
	require.NoError(t, os.WriteFile(path, []byte("Scrap;Data\n0,05;01/2024\n"), 0o644))

	tbl, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Scrap", "Data"}, tbl.Columns)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', SniffDelimiter("\n\na;b;c\n"))
	assert.Equal(t, ',', SniffDelimiter("a,b;c,d\n"))
	assert.Equal(t, ',', SniffDelimiter(`"x;y;z",b`+"\n"))
	assert.Equal(t, ',', SniffDelimiter(""))
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{
		"":           EncodingAuto,
		"UTF8":       EncodingUTF8,
		"iso-8859-1": EncodingLatin1,
	} {
		got, err := ParseEncoding(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEncoding("ebcdic")
	assert.Error(t, err)
}
