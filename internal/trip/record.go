// Package trip parses taxi trip batch files and filters out records that fail
// data-quality or map-boundary checks.
package trip

import "time"

// Columns is the fixed 19-column layout of a trip batch file.
var Columns = []string{
	"VendorID",
	"tpep_pickup_datetime",
	"tpep_dropoff_datetime",
	"passenger_count",
	"trip_distance",
	"pickup_longitude",
	"pickup_latitude",
	"RateCodeID",
	"store_and_fwd_flag",
	"dropoff_longitude",
	"dropoff_latitude",
	"payment_type",
	"fare_amount",
	"extra",
	"mta_tax",
	"tip_amount",
	"tolls_amount",
	"improvement_surcharge",
	"total_amount",
}

// Record is one taxi ride. Incomplete is set when any field was missing or
// could not be parsed; such records carry zero values for those fields.
type Record struct {
	VendorID             int
	PickupAt             time.Time
	DropoffAt            time.Time
	PassengerCount       int
	TripDistance         float64
	PickupLon            float64
	PickupLat            float64
	RateCodeID           int
	StoreAndFwdFlag      string
	DropoffLon           float64
	DropoffLat           float64
	PaymentType          int
	FareAmount           float64
	Extra                float64
	MTATax               float64
	TipAmount            float64
	TollsAmount          float64
	ImprovementSurcharge float64
	TotalAmount          float64

	Incomplete bool
}

// Batch is the parsed content of one input file.
type Batch struct {
	Name    string
	Records []Record
}
