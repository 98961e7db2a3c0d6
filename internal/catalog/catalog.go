// Package catalog reads and writes car listings as XLSX workbooks: raw
// scraped listings before deduplication and the enriched catalog after it.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

// SheetName is the sheet written by this package. Readers use the first sheet.
const SheetName = "cars"

// DefaultRating is used for rows with an empty rating cell.
const DefaultRating = 9.0

// Column names
const (
	ColNumber      = "number"
	ColID          = "_id"
	ColBrand       = "brand"
	ColModel       = "model"
	ColDescription = "description"
	ColImages      = "images"
	ColMedian      = "median"
	ColLow         = "low"
	ColAverage     = "average"
	ColHigh        = "high"
	ColRating      = "rating"
	ColSummary     = "desc_summarization"
	ColPros        = "desc_plus"
	ColCons        = "desc_minus"
)

// RecordColumns is the raw listing layout.
var RecordColumns = []string{
	ColNumber, ColID, ColBrand, ColModel, ColDescription, ColImages,
	ColMedian, ColLow, ColAverage, ColHigh, ColRating,
}

// CatalogColumns is the enriched catalog layout.
var CatalogColumns = append([]string{
	ColNumber, ColID, ColBrand, ColDescription, ColImages, ColMedian, ColModel, ColRating,
}, append(append([]string(nil), model.AttributeFields...), ColSummary, ColPros, ColCons)...)

var requiredColumns = []string{ColBrand, ColModel, ColDescription}

// ErrMissingColumn is returned when a sheet lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// sheet is a header-indexed view of a worksheet
type sheet struct {
	index map[string]int
	rows  [][]string
}

func (s sheet) cell(row []string, col string) string {
	i, ok := s.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readSheet(r io.Reader) (sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return sheet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return sheet{}, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return sheet{}, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return sheet{}, fmt.Errorf("%w: sheet %q is empty", ErrMissingColumn, sheets[0])
	}

	s := sheet{index: make(map[string]int, len(rows[0]))}
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h != "" {
			s.index[h] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := s.index[col]; !ok {
			return sheet{}, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	for _, row := range rows[1:] {
		if !blankRow(row) {
			s.rows = append(s.rows, row)
		}
	}
	return s, nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadRecords reads raw listings. The median column is the listing's price;
// low, average and high are kept as offer statistics.
func ReadRecords(r io.Reader) ([]model.CandidateRecord, error) {
	s, err := readSheet(r)
	if err != nil {
		return nil, err
	}

	records := make([]model.CandidateRecord, 0, len(s.rows))
	for i, row := range s.rows {
		rec := model.CandidateRecord{
			Number:      rowNumber(s.cell(row, ColNumber), i),
			ID:          s.cell(row, ColID),
			Brand:       s.cell(row, ColBrand),
			Model:       s.cell(row, ColModel),
			Description: s.cell(row, ColDescription),
			Images:      ParseImages(s.cell(row, ColImages)),
		}
		if v, ok := parseFloat(s.cell(row, ColMedian)); ok {
			rec.Prices = []float64{v}
		}
		rec.Low = parseFloatPtr(s.cell(row, ColLow))
		rec.Average = parseFloatPtr(s.cell(row, ColAverage))
		rec.High = parseFloatPtr(s.cell(row, ColHigh))
		rec.Rating = parseFloatPtr(s.cell(row, ColRating))
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes raw listings. The representative price goes to the
// median column.
func WriteRecords(w io.Writer, records []model.CandidateRecord) error {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			rec.Number, rec.ID, rec.Brand, rec.Model, rec.Description, JoinImages(rec.Images),
			priceCell(rec.Price()), floatCell(rec.Low), floatCell(rec.Average), floatCell(rec.High), floatCell(rec.Rating),
		})
	}
	return writeSheet(w, RecordColumns, rows)
}

// ReadCatalog reads an enriched catalog.
func ReadCatalog(r io.Reader) ([]model.Car, error) {
	s, err := readSheet(r)
	if err != nil {
		return nil, err
	}

	cars := make([]model.Car, 0, len(s.rows))
	for i, row := range s.rows {
		car := model.Car{
			Number:      rowNumber(s.cell(row, ColNumber), i),
			ID:          s.cell(row, ColID),
			Brand:       s.cell(row, ColBrand),
			Model:       s.cell(row, ColModel),
			Description: s.cell(row, ColDescription),
			Images:      model.JSONArray(ParseImages(s.cell(row, ColImages))),
			Rating:      DefaultRating,
			Summary:     s.cell(row, ColSummary),
			Pros:        s.cell(row, ColPros),
			Cons:        s.cell(row, ColCons),
		}
		if v, ok := parseFloat(s.cell(row, ColMedian)); ok {
			car.Price = v
		}
		if v, ok := parseFloat(s.cell(row, ColRating)); ok {
			car.Rating = v
		}
		car.CarAttributes = readAttributes(s, row)
		cars = append(cars, car)
	}
	return cars, nil
}

func readAttributes(s sheet, row []string) model.CarAttributes {
	return model.CarAttributes{
		Seats:           parseIntPtr(s.cell(row, model.FieldSeats)),
		Drive:           model.DriveType(s.cell(row, model.FieldDrive)),
		Country:         s.cell(row, model.FieldCountry),
		Doors:           parseIntPtr(s.cell(row, model.FieldDoors)),
		BodyType:        s.cell(row, model.FieldBodyType),
		EngineType:      model.EngineType(s.cell(row, model.FieldEngineType)),
		FuelConsumption: parseFloatPtr(s.cell(row, model.FieldFuelConsumption)),
		Clearance:       parseIntPtr(s.cell(row, model.FieldClearance)),
		Horsepower:      parseIntPtr(s.cell(row, model.FieldHorsepower)),
		Transmission:    model.TransmissionType(s.cell(row, model.FieldTransmission)),
		StartYear:       parseIntPtr(s.cell(row, model.FieldStartYear)),
		EndYear:         parseIntPtr(s.cell(row, model.FieldEndYear)),
	}
}

// WriteCatalog writes an enriched catalog. Unknown attributes are blank cells.
func WriteCatalog(w io.Writer, cars []model.Car) error {
	rows := make([][]any, 0, len(cars))
	for _, c := range cars {
		a := c.CarAttributes
		rows = append(rows, []any{
			c.Number, c.ID, c.Brand, c.Description, JoinImages(c.Images), priceCell(c.Price), c.Model, c.Rating,
			intCell(a.Seats), string(a.Drive), a.Country, intCell(a.Doors), a.BodyType, string(a.EngineType),
			floatCell(a.FuelConsumption), intCell(a.Clearance), intCell(a.Horsepower), string(a.Transmission),
			intCell(a.StartYear), intCell(a.EndYear),
			c.Summary, c.Pros, c.Cons,
		})
	}
	return writeSheet(w, CatalogColumns, rows)
}

func writeSheet(w io.Writer, headers []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// ParseImages splits an images cell. Brackets and quotes left over from a
// serialized list are tolerated.
func ParseImages(cell string) []string {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimPrefix(cell, "[")
	cell = strings.TrimSuffix(cell, "]")

	images := []string{}
	for _, part := range strings.Split(cell, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			images = append(images, part)
		}
	}
	return images
}

// JoinImages renders images as one cell.
func JoinImages(images []string) string {
	return strings.Join(images, ",")
}

func rowNumber(cell string, i int) int {
	if v, ok := parseFloat(cell); ok {
		return int(v)
	}
	return i
}

func parseFloat(cell string) (float64, bool) {
	cell = strings.ReplaceAll(strings.TrimSpace(cell), " ", "")
	cell = strings.ReplaceAll(cell, ",", ".")
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseFloatPtr(cell string) *float64 {
	v, ok := parseFloat(cell)
	if !ok {
		return nil
	}
	return &v
}

func parseIntPtr(cell string) *int {
	v, ok := parseFloat(cell)
	if !ok {
		return nil
	}
	n := int(math.Round(v))
	return &n
}

func priceCell(v float64) any {
	if v <= 0 {
		return nil
	}
	return v
}

func intCell(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// ReadRecordsFile reads raw listings from path.
func ReadRecordsFile(path string) ([]model.CandidateRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f)
}

// ReadCatalogFile reads an enriched catalog from path.
func ReadCatalogFile(path string) ([]model.Car, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCatalog(f)
}

// WriteRecordsFile writes raw listings to path.
func WriteRecordsFile(path string, records []model.CandidateRecord) error {
	return writeFile(path, func(w io.Writer) error { return WriteRecords(w, records) })
}

// WriteCatalogFile writes an enriched catalog to path.
func WriteCatalogFile(path string, cars []model.Car) error {
	return writeFile(path, func(w io.Writer) error { return WriteCatalog(w, cars) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
