// Package dataset derives descriptive metadata from stored CSV datasets:
// schema, shape, missing and unique value counts, duplicate rows and basic
// statistics for numeric columns.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"model-pipeline/core/metadata"
)

// ColumnStats are the basic statistics of one numeric column
type ColumnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// StructuralMetadata describes the dataset's shape
type StructuralMetadata struct {
	Schema     map[string]string `json:"schema"`
	NumColumns int               `json:"num_columns"`
	NumRows    int               `json:"num_rows"`
	FileFormat string            `json:"file_format"`
}

// Profile is the metadata document produced for one dataset
type Profile struct {
	DatasetName     string                 `json:"dataset_name"`
	DatasetSource   string                 `json:"dataset_source"`
	CreationDate    string                 `json:"creation_date"`
	Structural      StructuralMetadata     `json:"Structural_Metadata"`
	BasicStatistics map[string]ColumnStats `json:"basic_statistics"`
	MissingValues   map[string]int         `json:"missing_values"`
	UniqueValues    map[string]int         `json:"unique_values"`
	Duplicates      int                    `json:"duplicates"`
	StorageLocation string                 `json:"storage_location"`
}

// Profiler reads datasets from the object store and profiles them
type Profiler struct {
	objects metadata.ObjectStore
}

// NewProfiler creates a profiler over the given store
func NewProfiler(objects metadata.ObjectStore) *Profiler {
	return &Profiler{objects: objects}
}

// Profile fetches the CSV at an s3:// location and derives its metadata.
// The first row is taken as the header.
func (p *Profiler) Profile(ctx context.Context, filePath string) (Profile, error) {
	bucket, key, err := splitS3Path(filePath)
	if err != nil {
		return Profile{}, err
	}

	info, err := p.objects.HeadObject(ctx, bucket, key)
	if err != nil {
		return Profile{}, fmt.Errorf("head %q: %w", key, err)
	}
	body, err := p.objects.GetObject(ctx, bucket, key)
	if err != nil {
		return Profile{}, fmt.Errorf("get %q: %w", key, err)
	}

	header, rows, err := parseCSV(body)
	if err != nil {
		return Profile{}, fmt.Errorf("parse %q: %w", key, err)
	}

	profile := Profile{
		DatasetName:     key[strings.LastIndex(key, "/")+1:],
		DatasetSource:   filePath,
		CreationDate:    info.LastModified.UTC().Format("2006-01-02 15:04:05"),
		StorageLocation: filePath,
		Structural: StructuralMetadata{
			Schema:     map[string]string{},
			NumColumns: len(header),
			NumRows:    len(rows),
			FileFormat: "CSV",
		},
		BasicStatistics: map[string]ColumnStats{},
		MissingValues:   map[string]int{},
		UniqueValues:    map[string]int{},
	}

	for col, name := range header {
		values := columnValues(rows, col)
		profile.Structural.Schema[name] = inferType(values)
		profile.MissingValues[name] = len(rows) - len(values)
		profile.UniqueValues[name] = uniqueCount(values)
		if stats, ok := numericStats(values); ok {
			profile.BasicStatistics[name] = stats
		}
	}
	profile.Duplicates = duplicateRows(rows)

	return profile, nil
}

func splitS3Path(path string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(path, "s3://")
	if trimmed == path {
		return "", "", fmt.Errorf("not an s3 path: %q", path)
	}
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 path: %q", path)
	}
	return bucket, key, nil
}

func parseCSV(body []byte) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}
	return records[0], records[1:], nil
}

// columnValues returns the non-empty cells of one column
func columnValues(rows [][]string, col int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if cell := strings.TrimSpace(row[col]); cell != "" {
			values = append(values, cell)
		}
	}
	return values
}

// inferType classifies a column as int64, float64 or object by trying to
// parse every non-empty value
func inferType(values []string) string {
	if len(values) == 0 {
		return "object"
	}
	allInt, allFloat := true, true
	for _, v := range values {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloat = false
			break
		}
	}
	switch {
	case allInt:
		return "int64"
	case allFloat:
		return "float64"
	default:
		return "object"
	}
}

func uniqueCount(values []string) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	count := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			count++
		}
	}
	return count
}

func duplicateRows(rows [][]string) int {
	seen := make(map[string]bool, len(rows))
	duplicates := 0
	for _, row := range rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}
	return duplicates
}

func numericStats(values []string) (ColumnStats, bool) {
	numbers := make([]float64, 0, len(values))
	for _, v := range values {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ColumnStats{}, false
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return ColumnStats{}, false
	}

	sum, min, max := 0.0, numbers[0], numbers[0]
	for _, n := range numbers {
		sum += n
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	mean := sum / float64(len(numbers))

	variance := 0.0
	for _, n := range numbers {
		variance += (n - mean) * (n - mean)
	}
	std := 0.0
	if len(numbers) > 1 {
		// Sample standard deviation, matching what data-frame describe()
		// style tooling reports.
		std = math.Sqrt(variance / float64(len(numbers)-1))
	}

	return ColumnStats{Count: len(numbers), Mean: mean, Std: std, Min: min, Max: max}, true
}
