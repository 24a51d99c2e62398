package trip

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/taxiblocks/internal/census"
)

var nycBox = census.BBox{MinLat: 40.49, MinLon: -74.26, MaxLat: 40.92, MaxLon: -73.70}

// validRecord passes every cleaning filter against nycBox.
func validRecord() Record {
	pickup := time.Date(2015, 1, 15, 19, 5, 39, 0, time.UTC)
	return Record{
		VendorID:             2,
		PickupAt:             pickup,
		DropoffAt:            pickup.Add(18 * time.Minute),
		PassengerCount:       1,
		TripDistance:         1.59,
		PickupLon:            -73.99,
		PickupLat:            40.75,
		RateCodeID:           1,
		StoreAndFwdFlag:      "N",
		DropoffLon:           -73.97,
		DropoffLat:           40.76,
		PaymentType:          1,
		FareAmount:           12,
		Extra:                1,
		MTATax:               0.5,
		TipAmount:            3.25,
		TollsAmount:          0,
		ImprovementSurcharge: 0.3,
		TotalAmount:          17.05,
	}
}

func cleanOne(r Record) ([]Record, CleanStats) {
	return Clean([]Record{r}, nycBox)
}

func TestClean_KeepsValidRecord(t *testing.T) {
	kept, stats := cleanOne(validRecord())
	require.Len(t, kept, 1)
	assert.Equal(t, CleanStats{Input: 1, Kept: 1}, stats)
	assert.Equal(t, 0, stats.Dropped())
}

func TestClean_DropsIncomplete(t *testing.T) {
	r := validRecord()
	r.Incomplete = true
	kept, stats := cleanOne(r)
	assert.Empty(t, kept)
	assert.Equal(t, 1, stats.Incomplete)
}

func TestClean_DropsBackInTime(t *testing.T) {
	r := validRecord()
	r.DropoffAt = r.PickupAt.Add(-time.Second)
	kept, stats := cleanOne(r)
	assert.Empty(t, kept)
	assert.Equal(t, 1, stats.BackInTime)
}

func TestClean_KeepsZeroDuration(t *testing.T) {
	r := validRecord()
	r.DropoffAt = r.PickupAt
	kept, _ := cleanOne(r)
	assert.Len(t, kept, 1)
}

func TestClean_DropsNegativeAmounts(t *testing.T) {
	cases := map[string]func(*Record){
		"tip":                   func(r *Record) { r.TipAmount = -0.01 },
		"tolls":                 func(r *Record) { r.TollsAmount = -5.33 },
		"total":                 func(r *Record) { r.TotalAmount = -17.05 },
		"fare":                  func(r *Record) { r.FareAmount = -12 },
		"extra":                 func(r *Record) { r.Extra = -0.5 },
		"improvement surcharge": func(r *Record) { r.ImprovementSurcharge = -0.3 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := validRecord()
			mutate(&r)
			kept, stats := cleanOne(r)
			assert.Empty(t, kept)
			assert.Equal(t, 1, stats.NegativeAmount)
		})
	}
}

func TestClean_NegativeMTATaxIsNotChecked(t *testing.T) {
	r := validRecord()
	r.MTATax = -0.5
	kept, _ := cleanOne(r)
	assert.Len(t, kept, 1)
}

func TestClean_TipMinusOneCentAlwaysDropped(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		r := randomRecord(rng)
		r.TipAmount = -0.01
		kept, _ := cleanOne(r)
		assert.Empty(t, kept)
	}
}

func TestClean_RateCodes(t *testing.T) {
	for id := -1; id <= 99; id++ {
		r := validRecord()
		r.RateCodeID = id
		kept, _ := cleanOne(r)
		if id >= 1 && id <= 6 {
			assert.Len(t, kept, 1, "rate code %d", id)
		} else {
			assert.Empty(t, kept, "rate code %d", id)
		}
	}
}

func TestClean_RateCodeSevenAlwaysDropped(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		r := randomRecord(rng)
		r.RateCodeID = 7
		kept, _ := cleanOne(r)
		assert.Empty(t, kept)
	}
}

func TestClean_BoundaryUsesEitherEnd(t *testing.T) {
	// Pickup off the map, dropoff on it: both axis checks pass through the dropoff.
	r := validRecord()
	r.PickupLat, r.PickupLon = 0, 0
	kept, _ := cleanOne(r)
	assert.Len(t, kept, 1)

	// Latitude from the pickup, longitude from the dropoff.
	r = validRecord()
	r.PickupLon = 0
	r.DropoffLat = 0
	kept, _ = cleanOne(r)
	assert.Len(t, kept, 1)
}

func TestClean_BoundaryDropsWhenBothEndsOffAxis(t *testing.T) {
	r := validRecord()
	r.PickupLat, r.DropoffLat = 0, 0
	kept, stats := cleanOne(r)
	assert.Empty(t, kept)
	assert.Equal(t, 1, stats.OutOfBounds)

	r = validRecord()
	r.PickupLon, r.DropoffLon = -80, -60
	kept, _ = cleanOne(r)
	assert.Empty(t, kept)
}

func TestClean_BoundaryStraddlingTripDropped(t *testing.T) {
	// Pickup south of the box, dropoff north of it: neither latitude is
	// inside, so the trip goes even though it crosses the map.
	r := validRecord()
	r.PickupLat, r.DropoffLat = 40.0, 41.5
	kept, stats := cleanOne(r)
	assert.Empty(t, kept)
	assert.Equal(t, 1, stats.OutOfBounds)

	// Same on the longitude axis: west of the box to east of it.
	r = validRecord()
	r.PickupLon, r.DropoffLon = -74.5, -73.5
	kept, stats = cleanOne(r)
	assert.Empty(t, kept)
	assert.Equal(t, 1, stats.OutOfBounds)
}

func TestClean_BoundaryEdgesInclusive(t *testing.T) {
	r := validRecord()
	r.PickupLat, r.PickupLon = nycBox.MaxLat, nycBox.MinLon
	r.DropoffLat, r.DropoffLon = nycBox.MinLat, nycBox.MaxLon
	kept, _ := cleanOne(r)
	assert.Len(t, kept, 1)
}

func TestClean_PreservesOrder(t *testing.T) {
	a, b, c := validRecord(), validRecord(), validRecord()
	a.VendorID, b.VendorID, c.VendorID = 1, 2, 3
	b.RateCodeID = 99

	kept, stats := Clean([]Record{a, b, c}, nycBox)
	require.Len(t, kept, 2)
	assert.Equal(t, 1, kept[0].VendorID)
	assert.Equal(t, 3, kept[1].VendorID)
	assert.Equal(t, 1, stats.Dropped())
}

func TestClean_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	records := make([]Record, 500)
	for i := range records {
		records[i] = randomRecord(rng)
	}

	once, _ := Clean(records, nycBox)
	twice, stats := Clean(once, nycBox)
	assert.Equal(t, once, twice)
	assert.Equal(t, 0, stats.Dropped())
	assert.NotEmpty(t, once)
	assert.Less(t, len(once), len(records))
}

func TestClean_InsideBoxAlwaysSurvives(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		r := validRecord()
		r.PickupLat = nycBox.MinLat + rng.Float64()*(nycBox.MaxLat-nycBox.MinLat)
		r.PickupLon = nycBox.MinLon + rng.Float64()*(nycBox.MaxLon-nycBox.MinLon)
		r.DropoffLat = rng.Float64()*180 - 90
		r.DropoffLon = rng.Float64()*360 - 180
		r.RateCodeID = 1 + rng.Intn(6)
		kept, _ := cleanOne(r)
		assert.Len(t, kept, 1)
	}
}

// randomRecord perturbs a valid record so that roughly half fail some filter.
func randomRecord(rng *rand.Rand) Record {
	r := validRecord()
	r.RateCodeID = rng.Intn(8)
	r.TipAmount = rng.Float64()*4 - 0.5
	r.PickupLat = 40 + rng.Float64()
	r.PickupLon = -74.5 + rng.Float64()
	r.DropoffLat = 40 + rng.Float64()
	r.DropoffLon = -74.5 + rng.Float64()
	r.DropoffAt = r.PickupAt.Add(time.Duration(rng.Intn(3600)-300) * time.Second)
	r.Incomplete = rng.Intn(20) == 0
	return r
}
