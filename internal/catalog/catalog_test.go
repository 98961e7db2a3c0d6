package catalog

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// workbook builds an XLSX with the given rows on its first sheet.
func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadRecords(t *testing.T) {
	buf := workbook(t, [][]any{
		{"number", "_id", "brand", "model", "description", "images", "median", "low", "average", "high", "rating"},
		{1, "a1", "Kia", "Rio", "Седан 1.6", `["https://img/1.jpg", "https://img/2.jpg"]`, 1_200_000, 1_000_000, 1_150_000, 1_400_000, 8.5},
		{},
		{2, "a2", "Lada", "Vesta", "Седан 1.8", "https://img/3.jpg,", "", "", "", "", ""},
	})

	records, err := ReadRecords(buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, model.CandidateRecord{
		Number:      1,
		ID:          "a1",
		Brand:       "Kia",
		Model:       "Rio",
		Description: "Седан 1.6",
		Images:      []string{"https://img/1.jpg", "https://img/2.jpg"},
		Prices:      []float64{1_200_000},
		Rating:      floatPtr(8.5),
		Low:         floatPtr(1_000_000),
		Average:     floatPtr(1_150_000),
		High:        floatPtr(1_400_000),
	}, records[0])
	assert.Equal(t, 1_200_000.0, records[0].Price())

	assert.Equal(t, "a2", records[1].ID)
	assert.Equal(t, []string{"https://img/3.jpg"}, records[1].Images)
	assert.Empty(t, records[1].Prices)
	assert.Nil(t, records[1].Rating)
	assert.Nil(t, records[1].Low)
}

func TestReadRecordsPriceIsMedianCell(t *testing.T) {
	buf := workbook(t, [][]any{
		{"_id", "brand", "model", "description", "median", "low", "average", "high"},
		{"a1", "Kia", "Rio", "Седан", 1_000_000, 500_000, 1_100_000, 3_000_000},
		{"a2", "Kia", "Rio", "Седан", "", 500_000, 1_100_000, 3_000_000},
	})

	records, err := ReadRecords(buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1_000_000.0, records[0].Price())
	assert.Zero(t, records[1].Price())
	assert.Equal(t, floatPtr(3_000_000), records[1].High)
}

func TestReadRecordsMissingColumn(t *testing.T) {
	buf := workbook(t, [][]any{
		{"_id", "brand", "description"},
		{"a1", "Kia", "Седан"},
	})

	_, err := ReadRecords(buf)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.ErrorContains(t, err, "model")
}

func TestRecordsRoundTrip(t *testing.T) {
	in := []model.CandidateRecord{
		{Number: 0, ID: "x", Brand: "Kia", Model: "Rio", Description: "d", Images: []string{"i1", "i2"}, Prices: []float64{200}, Rating: floatPtr(7), Low: floatPtr(100), High: floatPtr(300)},
		{Number: 1, ID: "y", Brand: "Lada", Model: "Niva", Description: "e"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, in))

	out, err := ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, []float64{200}, out[0].Prices)
	assert.Equal(t, floatPtr(100), out[0].Low)
	assert.Nil(t, out[0].Average)
	assert.Equal(t, floatPtr(300), out[0].High)
	assert.Equal(t, []string{"i1", "i2"}, out[0].Images)
	require.NotNil(t, out[0].Rating)
	assert.Equal(t, 7.0, *out[0].Rating)
	assert.Empty(t, out[1].Prices)
	assert.Empty(t, out[1].Images)
}

func TestCatalogRoundTrip(t *testing.T) {
	in := []model.Car{{
		Number:      3,
		ID:          "car-3",
		Brand:       "Toyota",
		Model:       "RAV4",
		Description: "Кроссовер",
		Images:      model.JSONArray{"https://img/a.jpg"},
		Price:       3_150_000,
		Rating:      9.5,
		CarAttributes: model.CarAttributes{
			Seats:           intPtr(5),
			Drive:           model.DriveAllWheel,
			Country:         "Япония",
			BodyType:        "кроссовер",
			EngineType:      model.EnginePetrol,
			FuelConsumption: floatPtr(7.5),
			Horsepower:      intPtr(149),
			Transmission:    model.TransmissionCVT,
			StartYear:       intPtr(2019),
		},
		Summary: "Надежный",
		Pros:    "Полный привод",
		Cons:    "Цена",
	}}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, WriteCatalogFile(path, in))

	out, err := ReadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, in[0].ID, got.ID)
	assert.Equal(t, in[0].Number, got.Number)
	assert.Equal(t, in[0].Images, got.Images)
	assert.Equal(t, in[0].Price, got.Price)
	assert.Equal(t, in[0].Rating, got.Rating)
	assert.Equal(t, in[0].CarAttributes, got.CarAttributes)
	assert.Equal(t, in[0].Summary, got.Summary)
	assert.Equal(t, in[0].Pros, got.Pros)
	assert.Equal(t, in[0].Cons, got.Cons)
}

func TestCatalogHeaderOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, CatalogColumns, rows[0])
	assert.Equal(t, "Количество_мест", rows[0][8])
	assert.Equal(t, "desc_minus", rows[0][len(rows[0])-1])
}

func TestReadCatalogDefaultRating(t *testing.T) {
	buf := workbook(t, [][]any{
		{"_id", "brand", "model", "description", "rating", "Количество_мест"},
		{"c1", "Kia", "Rio", "Седан", "", "5.0"},
	})

	cars, err := ReadCatalog(buf)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, DefaultRating, cars[0].Rating)
	assert.Equal(t, intPtr(5), cars[0].Seats)
	assert.Equal(t, 0, cars[0].Number)
}

func TestParseImages(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want []string
	}{
		{"empty", "", []string{}},
		{"plain", "a,b", []string{"a", "b"}},
		{"python list", `['a', 'b']`, []string{"a", "b"}},
		{"json list", `["a","b"]`, []string{"a", "b"}},
		{"blank items", " , a ,, ", []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseImages(tt.cell))
		})
	}
}
