// Package catalog 提供启动时加载一次、之后只读的静态景点数据集。
package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"kanto-ml/internal/model"
	"kanto-ml/pkg/log"
)

// ErrEmptyDataset 表示数据源中没有表头行。
var ErrEmptyDataset = errors.New("dataset has no header row")

// Catalog 是静态数据集的内存快照。加载后不再修改，并发读取无需加锁。
type Catalog struct {
	records []model.Destination
	byCity  map[string][]int
}

// New 使用已规范化的记录构建目录。
func New(records []model.Destination) *Catalog {
	c := &Catalog{
		records: make([]model.Destination, len(records)),
		byCity:  make(map[string][]int),
	}
	for i, r := range records {
		c.records[i] = r.Clone()
		c.byCity[r.City] = append(c.byCity[r.City], i)
	}
	return c
}

// LoadFile 从本地文件加载数据集，扩展名决定解析方式。
func LoadFile(path, sheet string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return Load(path, data, sheet)
}

// Load 解析 .xlsx 或 .csv 数据集。name 仅用于判断格式。
func Load(name string, data []byte, sheet string) (*Catalog, error) {
	var (
		rows, raw [][]string
		err       error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		rows, raw, err = readXLSX(data, sheet)
	case ".csv":
		rows, err = readCSV(data)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, err
	}
	records, err := parseRows(rows, raw)
	if err != nil {
		return nil, err
	}
	log.Infof("[Catalog] 数据集 %s 加载完成, 共 %d 条记录", filepath.Base(name), len(records))
	return New(records), nil
}

// All 返回全部记录的副本。
func (c *Catalog) All() []model.Destination {
	out := make([]model.Destination, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// ByCity 返回 city 字段与参数完全相等（区分大小写）的记录；无匹配时返回空切片。
func (c *Catalog) ByCity(city string) []model.Destination {
	idx := c.byCity[city]
	out := make([]model.Destination, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.records[i].Clone())
	}
	return out
}

// Len 返回记录总数。
func (c *Catalog) Len() int {
	return len(c.records)
}

// readXLSX 返回按单元格格式显示的文本，以及未经格式化的原始值。
// 数值列读原始值，避免 "#,##0" 之类的千分位格式被误读。
func readXLSX(data []byte, sheet string) (rows, raw [][]string, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err = f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err = f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read raw sheet %q: %w", sheet, err)
	}
	return rows, raw, nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// column 描述一个已知列如何写入记录。
type column struct {
	text   func(d *model.Destination, v string)
	number func(d *model.Destination, v float64)
}

var columns = map[string]column{
	"name":         {text: func(d *model.Destination, v string) { d.Name = v }},
	"location":     {text: func(d *model.Destination, v string) { d.Location = v }},
	"openingHours": {text: func(d *model.Destination, v string) { d.OpeningHours = v }},
	"closingHours": {text: func(d *model.Destination, v string) { d.ClosingHours = v }},
	"description":  {text: func(d *model.Destination, v string) { d.Description = v }},
	"category":     {text: func(d *model.Destination, v string) { d.Category = v }},
	"city":         {text: func(d *model.Destination, v string) { d.City = v }},
	"facilities":   {text: func(d *model.Destination, v string) { d.Facilities = model.SplitFacilities(v) }},

	"price":          {number: func(d *model.Destination, v float64) { d.Price = v }},
	"visitor":        {number: func(d *model.Destination, v float64) { d.Visitor = v }},
	"officialRating": {number: func(d *model.Destination, v float64) { d.OfficialRating = v }},
	"rating":         {number: func(d *model.Destination, v float64) { d.Rating = v }},
	"lat":            {number: func(d *model.Destination, v float64) { d.Lat = v }},
	"lon":            {number: func(d *model.Destination, v float64) { d.Lon = v }},
}

// blankDestination 返回所有字段均为默认值的记录。
func blankDestination() model.Destination {
	return model.Destination{
		Name:         model.DefaultText,
		Location:     model.DefaultText,
		Facilities:   []string{},
		OpeningHours: model.DefaultText,
		ClosingHours: model.DefaultText,
		Description:  model.DefaultText,
		Category:     model.DefaultText,
		City:         model.DefaultText,
	}
}

// parseRows 把表格行转换为记录。raw 与 rows 行列对齐，为 nil 时数值列也使用 rows。
func parseRows(rows, raw [][]string) ([]model.Destination, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	header := make([]string, len(rows[0]))
	known := 0
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if _, ok := columns[header[i]]; ok {
			known++
		}
	}
	if known == 0 {
		log.Warnf("[Catalog] 表头中没有任何已知列: %v", header)
	}

	records := make([]model.Destination, 0, len(rows)-1)
	for ri, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		d := blankDestination()
		for ci, cell := range row {
			if ci >= len(header) {
				break
			}
			col, ok := columns[header[ci]]
			if !ok {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			if col.text != nil {
				col.text(&d, value)
				continue
			}
			if r := rawCell(raw, ri+1, ci); r != "" {
				value = r
			}
			n, err := parseNumber(value)
			if err != nil {
				log.Warnf("[Catalog] 第 %d 行列 %s 的数值 %q 无法解析, 使用 0", ri+2, header[ci], value)
				continue
			}
			col.number(&d, n)
		}
		records = append(records, d)
	}
	return records, nil
}

func rawCell(raw [][]string, row, col int) string {
	if row >= len(raw) || col >= len(raw[row]) {
		return ""
	}
	return strings.TrimSpace(raw[row][col])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseNumber 接受 "." 小数点，或在没有 "." 时将唯一的 "," 视为小数点。
func parseNumber(s string) (float64, error) {
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return n, nil
}
