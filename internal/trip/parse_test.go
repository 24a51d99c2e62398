package trip

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRow is a well-formed trip in Columns order.
func sampleRow() []string {
	return []string{
		"2", "2015-01-15 19:05:39", "2015-01-15 19:23:42", "1", "1.59",
		"-73.993896484375", "40.750110626220703", "1", "N",
		"-73.974784851074219", "40.750617980957031", "1",
		"12", "1", "0.5", "3.25", "0", "0.3", "17.05",
	}
}

func TestParseRow_Valid(t *testing.T) {
	r := ParseRow(sampleRow(), "")

	require.False(t, r.Incomplete)
	assert.Equal(t, 2, r.VendorID)
	assert.Equal(t, time.Date(2015, 1, 15, 19, 5, 39, 0, time.UTC), r.PickupAt)
	assert.Equal(t, time.Date(2015, 1, 15, 19, 23, 42, 0, time.UTC), r.DropoffAt)
	assert.Equal(t, 1, r.PassengerCount)
	assert.InDelta(t, 1.59, r.TripDistance, 1e-9)
	assert.InDelta(t, -73.993896484375, r.PickupLon, 1e-12)
	assert.InDelta(t, 40.750110626220703, r.PickupLat, 1e-12)
	assert.Equal(t, 1, r.RateCodeID)
	assert.Equal(t, "N", r.StoreAndFwdFlag)
	assert.Equal(t, 1, r.PaymentType)
	assert.InDelta(t, 12.0, r.FareAmount, 1e-9)
	assert.InDelta(t, 3.25, r.TipAmount, 1e-9)
	assert.InDelta(t, 0.3, r.ImprovementSurcharge, 1e-9)
	assert.InDelta(t, 17.05, r.TotalAmount, 1e-9)
}

func TestParseRow_MissingOrMalformedFields(t *testing.T) {
	cases := map[string]func([]string){
		"empty vendor":        func(r []string) { r[0] = "" },
		"blank flag":          func(r []string) { r[8] = "  " },
		"bad timestamp":       func(r []string) { r[1] = "yesterday" },
		"float rate code":     func(r []string) { r[7] = "1.5" },
		"text tip":            func(r []string) { r[15] = "n/a" },
		"nan latitude":        func(r []string) { r[6] = "NaN" },
		"missing total":       func(r []string) { r[18] = "" },
		"bad passenger count": func(r []string) { r[3] = "two" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			row := sampleRow()
			mutate(row)
			assert.True(t, ParseRow(row, DefaultTimestampLayout).Incomplete)
		})
	}
}

func TestParseRow_WrongColumnCount(t *testing.T) {
	assert.True(t, ParseRow(sampleRow()[:18], "").Incomplete)
	assert.True(t, ParseRow(append(sampleRow(), "extra"), "").Incomplete)
}

func TestParseRow_CustomLayout(t *testing.T) {
	row := sampleRow()
	row[1] = "01/15/2015 07:05:39 PM"
	row[2] = "01/15/2015 07:23:42 PM"

	r := ParseRow(row, "01/02/2006 03:04:05 PM")
	require.False(t, r.Incomplete)
	assert.Equal(t, 19, r.PickupAt.Hour())
}

func TestHasHeader(t *testing.T) {
	assert.True(t, HasHeader("yellow_tripdata_2015-01_00", "00"))
	assert.True(t, HasHeader("/data/trips/part_00", ""))
	assert.False(t, HasHeader("yellow_tripdata_2015-01_01", "00"))
	assert.False(t, HasHeader("part_100.csv", "00"))
	assert.True(t, HasHeader("part_A", "A"))
}

func writeBatch(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestReadBatch_SkipsHeaderBySuffix(t *testing.T) {
	header := strings.Join(Columns, ",")
	row := strings.Join(sampleRow(), ",")

	withHeader := writeBatch(t, "trips_00", header, row, row)
	b, err := ReadBatch(withHeader, ReadOptions{HeaderSuffix: "00"})
	require.NoError(t, err)
	assert.Equal(t, "trips_00", b.Name)
	require.Len(t, b.Records, 2)
	assert.False(t, b.Records[0].Incomplete)

	withoutHeader := writeBatch(t, "trips_01", row, row)
	b, err = ReadBatch(withoutHeader, ReadOptions{HeaderSuffix: "00"})
	require.NoError(t, err)
	require.Len(t, b.Records, 2)
	assert.False(t, b.Records[0].Incomplete)
}

func TestReadBatch_HeaderMisreadAsData(t *testing.T) {
	header := strings.Join(Columns, ",")
	row := strings.Join(sampleRow(), ",")

	// A header in a file without the suffix is parsed as a row and marked Incomplete.
	path := writeBatch(t, "trips_07", header, row)
	b, err := ReadBatch(path, ReadOptions{HeaderSuffix: "00"})
	require.NoError(t, err)
	require.Len(t, b.Records, 2)
	assert.True(t, b.Records[0].Incomplete)
	assert.False(t, b.Records[1].Incomplete)
}

func TestReadBatch_Missing(t *testing.T) {
	_, err := ReadBatch(filepath.Join(t.TempDir(), "missing_01"), ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trip: read batch missing_01")
}
