package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"kanto-ml/internal/model"
)

const sampleCSV = "\xef\xbb\xbfname,location,facilities,price,openingHours,closingHours,description,category,city,visitor,officialRating,rating,lat,lon\n" +
	"Pantai Camplong,Camplong,\"Parkir, Toilet ,,Musholla\",5000,07:00,17:00,Pantai,Beach,Sampang,1200,4,4.5,-7.2,113.3\n" +
	"Api Tak Kunjung Padam,Larangan,,\"10,5\",08:00,22:00,Api abadi,Nature,Pamekasan,,,,,\n" +
	",,,,,,,,,,,,,\n" +
	"Air Terjun Toroan,Ketapang,Parkir,not-a-number,,,,Waterfall,Sampang,300,3,4,-6.9,113.2\n"

func TestLoadCSV(t *testing.T) {
	cat, err := Load("dataset.csv", []byte(sampleCSV), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (blank row skipped)", cat.Len())
	}

	all := cat.All()
	first := all[0]
	if first.Name != "Pantai Camplong" || first.City != "Sampang" || first.Price != 5000 || first.Rating != 4.5 {
		t.Errorf("unexpected first record: %+v", first)
	}
	if want := []string{"Parkir", "Toilet", "Musholla"}; !reflect.DeepEqual(first.Facilities, want) {
		t.Errorf("Facilities = %v, want %v", first.Facilities, want)
	}

	second := all[1]
	if second.Price != 10.5 {
		t.Errorf("comma decimal price = %v, want 10.5", second.Price)
	}
	if second.Visitor != 0 || second.Lat != 0 || second.Lon != 0 {
		t.Errorf("missing numbers should default to 0: %+v", second)
	}
	if second.Facilities == nil || len(second.Facilities) != 0 {
		t.Errorf("missing facilities should be an empty list, got %#v", second.Facilities)
	}

	third := all[2]
	if third.Price != 0 {
		t.Errorf("unparseable price = %v, want 0", third.Price)
	}
	if third.OpeningHours != model.DefaultText || third.Description != model.DefaultText {
		t.Errorf("missing text should default to %q: %+v", model.DefaultText, third)
	}
}

func TestLoadFillsMissingColumns(t *testing.T) {
	data := "name,city\nBukit Jaddih,Bangkalan\n"
	cat, err := Load("partial.csv", []byte(data), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := model.Destination{
		Name:         "Bukit Jaddih",
		Location:     model.DefaultText,
		Facilities:   []string{},
		OpeningHours: model.DefaultText,
		ClosingHours: model.DefaultText,
		Description:  model.DefaultText,
		Category:     model.DefaultText,
		City:         "Bangkalan",
	}
	if got := cat.All()[0]; !reflect.DeepEqual(got, want) {
		t.Errorf("All()[0] = %+v, want %+v", got, want)
	}
}

func TestByCityExactMatch(t *testing.T) {
	cat, err := Load("dataset.csv", []byte(sampleCSV), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		city string
		want int
	}{
		{"Sampang", 2},
		{"Pamekasan", 1},
		{"sampang", 0},
		{"Sampang ", 0},
		{"Atlantis", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			got := cat.ByCity(tt.city)
			if got == nil {
				t.Fatalf("ByCity(%q) returned nil, want empty slice", tt.city)
			}
			if len(got) != tt.want {
				t.Fatalf("len(ByCity(%q)) = %d, want %d", tt.city, len(got), tt.want)
			}
			for _, d := range got {
				if d.City != tt.city {
					t.Errorf("ByCity(%q) returned record for city %q", tt.city, d.City)
				}
			}
		})
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	cat, err := Load("dataset.csv", []byte(sampleCSV), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := cat.ByCity("Sampang")
	got[0].Name = "changed"
	got[0].Facilities[0] = "changed"

	again := cat.ByCity("Sampang")
	if again[0].Name != "Pantai Camplong" || again[0].Facilities[0] != "Parkir" {
		t.Errorf("catalog mutated through returned slice: %+v", again[0])
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"name", "city", "category", "price", "openingHours", "facilities", "rating"},
		{"Gili Labak", "Sumenep", "Island", 25000, "06:00", "Snorkeling, Perahu", 4.8},
		{"Bukit Jaddih", "Bangkalan", "Nature", "", "", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName() error = %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	cat, err := Load("Dataset_Wisata_Madura.xlsx", buf.Bytes(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cat.Len())
	}
	gili := cat.ByCity("Sumenep")[0]
	if gili.Price != 25000 || gili.Rating != 4.8 || gili.OpeningHours != "06:00" {
		t.Errorf("unexpected xlsx record: %+v", gili)
	}
	if want := []string{"Snorkeling", "Perahu"}; !reflect.DeepEqual(gili.Facilities, want) {
		t.Errorf("Facilities = %v, want %v", gili.Facilities, want)
	}
	jaddih := cat.ByCity("Bangkalan")[0]
	if jaddih.Price != 0 || jaddih.OpeningHours != model.DefaultText {
		t.Errorf("blank xlsx cells should take defaults: %+v", jaddih)
	}

	if _, err := Load("Dataset_Wisata_Madura.xlsx", buf.Bytes(), "NoSuchSheet"); err == nil {
		t.Errorf("Load() with missing sheet error = nil, want error")
	}
}

func TestLoadXLSXThousandsFormat(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"name", "city", "price", "visitor", "openingHours"},
		{"Api Tak Kunjung Padam", "Pamekasan", 25000, 1500000, "08:00"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName() error = %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}
	// 3 = "#,##0"
	style, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		t.Fatalf("NewStyle() error = %v", err)
	}
	if err := f.SetCellStyle(sheet, "C2", "D2", style); err != nil {
		t.Fatalf("SetCellStyle() error = %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	cat, err := Load("Dataset_Wisata_Madura.xlsx", buf.Bytes(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := cat.ByCity("Pamekasan")
	if len(got) != 1 {
		t.Fatalf("ByCity() returned %d records, want 1", len(got))
	}
	if got[0].Price != 25000 || got[0].Visitor != 1500000 {
		t.Errorf("Price = %v, Visitor = %v, want 25000 and 1500000", got[0].Price, got[0].Visitor)
	}
	if got[0].OpeningHours != "08:00" {
		t.Errorf("OpeningHours = %q, want formatted text", got[0].OpeningHours)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cat, err := LoadFile(path, "")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cat.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cat.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), ""); err == nil {
		t.Errorf("LoadFile() on missing file error = nil, want error")
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load("dataset.json", []byte("{}"), ""); err == nil {
		t.Errorf("Load() with unsupported extension error = nil, want error")
	}
	if _, err := Load("empty.csv", nil, ""); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Load() on empty csv error = %v, want ErrEmptyDataset", err)
	}
	if _, err := Load("broken.xlsx", []byte("not a zip"), ""); err == nil {
		t.Errorf("Load() on corrupt xlsx error = nil, want error")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"4.5", 4.5, false},
		{"4,5", 4.5, false},
		{"-7.21", -7.21, false},
		{"1,000.5", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
