package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
)

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func headcountRows() []Row {
	return []Row{
		{{Key: "department", Value: "Engineering"}, {Key: "headcount", Value: 3}},
		{{Key: "department", Value: "Sales"}, {Key: "headcount", Value: 2}},
	}
}

func readSheet(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	name := f.GetSheetName(0)
	rows, err := f.GetRows(name)
	require.NoError(t, err)
	return name, rows
}

func TestBuildExcelWritesHeaderThenRowsInKeyOrder(t *testing.T) {
	data, err := BuildExcel("Headcount", nil, headcountRows())
	require.NoError(t, err)

	name, rows := readSheet(t, data)
	assert.Equal(t, "Headcount", name)
	assert.Equal(t, [][]string{
		{"department", "headcount"},
		{"Engineering", "3"},
		{"Sales", "2"},
	}, rows)
}

func TestBuildExcelEmptyRowsWritesNotice(t *testing.T) {
	data, err := BuildExcel("Empty", []string{"name"}, nil)
	require.NoError(t, err)

	_, rows := readSheet(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{EmptyNotice}, rows[0])
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"", "Report"},
		{"Cost/Dept [Q1]", "Cost Dept (Q1)"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sheetName(tt.title))
	}
}

func TestBuildPDFFromRowsIsDeterministic(t *testing.T) {
	first, err := BuildPDFFromRows("Headcount", headcountRows(), fixedTime)
	require.NoError(t, err)
	second, err := BuildPDFFromRows("Headcount", headcountRows(), fixedTime)
	require.NoError(t, err)

	assert.Equal(t, "%PDF", string(first[:4]))
	assert.True(t, bytes.Equal(first, second), "same rows must render to the same bytes")
}

func TestBuildPDFFromHTMLIsDeterministic(t *testing.T) {
	html := "<h1>Contract</h1><p>Employee: <b>Ada Lovelace</b></p>"
	first, err := BuildPDFFromHTML("Contract", html, fixedTime)
	require.NoError(t, err)
	second, err := BuildPDFFromHTML("Contract", html, fixedTime)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPDFStartsNewPageWhenFull(t *testing.T) {
	d := newPDFDoc(fixedTime)
	for i := 0; i < 200; i++ {
		d.line("line", "", rowSize, rowStep)
	}
	// 52 lines of 14pt fit between the 50pt margins of an A4 page
	assert.Equal(t, 4, d.pdf.PageNo())

	_, err := d.bytes()
	require.NoError(t, err)
}

func TestStripHTML(t *testing.T) {
	got, err := StripHTML("<h1>Title</h1><p>Hello&nbsp;<b>World</b></p><script>alert(1)</script><ul><li>a</li><li>b</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "Title Hello World a b", got)
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "one two", 10, []string{"one two"}},
		{"breaks on words", "one two three", 7, []string{"one two", "three"}},
		{"splits long words", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"empty", "   ", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapText(tt.text, tt.width))
		})
	}
}

func TestRowLine(t *testing.T) {
	row := Row{
		{Key: "name", Value: "Ada"},
		{Key: "startDate", Value: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Key: "amount", Value: 1250.5},
	}
	assert.Equal(t, "3. name: Ada | startDate: 2023-01-02 | amount: 1250.5", RowLine(3, row))
}

func TestRowMarshalJSONKeepsOrder(t *testing.T) {
	row := Row{{Key: "z", Value: 1}, {Key: "a", Value: "x"}}
	data, err := row.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x"}`, string(data))
}

func TestRowBSONKeepsOrderAndTypes(t *testing.T) {
	type doc struct {
		Rows []Row `bson:"rows"`
	}
	in := doc{Rows: []Row{{
		{Key: "name", Value: "Ada"},
		{Key: "headcount", Value: 3},
		{Key: "startDate", Value: fixedTime},
	}}}

	data, err := bson.Marshal(in)
	require.NoError(t, err)

	var out doc
	require.NoError(t, bson.Unmarshal(data, &out))
	require.Len(t, out.Rows, 1)
	assert.Equal(t, []string{"name", "headcount", "startDate"}, out.Rows[0].Keys())
	assert.Equal(t, in.Rows, out.Rows)
}
