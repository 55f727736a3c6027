package dataset

import "nytaxi/internal/schema"

// Defaults returns the three built-in ingest targets: yellow and green trip
// records for the pinned month, plus the zone lookup reference file. Column
// sets follow the TLC trip-record data dictionary; everything is declared
// optional because monthly extracts add and drop columns without notice.
func Defaults() []Descriptor {
	return []Descriptor{
		{
			Name:   "yellow_trips",
			URL:    "https://d37ci6vzurychx.cloudfront.net/trip-data/yellow_tripdata_2025-11.parquet",
			Format: FormatParquet,
			Table:  "yellow_taxi_trips",
			Schema: schema.Schema{
				{Name: "vendorid", Type: schema.TypeInteger},
				{Name: "tpep_pickup_datetime", Type: schema.TypeTimestamp},
				{Name: "tpep_dropoff_datetime", Type: schema.TypeTimestamp},
				{Name: "passenger_count", Type: schema.TypeInteger},
				{Name: "trip_distance", Type: schema.TypeDecimal},
				{Name: "ratecodeid", Type: schema.TypeInteger},
				{Name: "store_and_fwd_flag", Type: schema.TypeText},
				{Name: "pulocationid", Type: schema.TypeInteger},
				{Name: "dolocationid", Type: schema.TypeInteger},
				{Name: "payment_type", Type: schema.TypeInteger},
				{Name: "fare_amount", Type: schema.TypeDecimal},
				{Name: "extra", Type: schema.TypeDecimal},
				{Name: "mta_tax", Type: schema.TypeDecimal},
				{Name: "tip_amount", Type: schema.TypeDecimal},
				{Name: "tolls_amount", Type: schema.TypeDecimal},
				{Name: "improvement_surcharge", Type: schema.TypeDecimal},
				{Name: "total_amount", Type: schema.TypeDecimal},
				{Name: "congestion_surcharge", Type: schema.TypeDecimal},
				{Name: "airport_fee", Type: schema.TypeDecimal},
				{Name: "cbd_congestion_fee", Type: schema.TypeDecimal},
			},
		},
		{
			Name:   "green_trips",
			URL:    "https://d37ci6vzurychx.cloudfront.net/trip-data/green_tripdata_2025-11.parquet",
			Format: FormatParquet,
			Table:  "green_taxi_trips",
			Schema: schema.Schema{
				{Name: "vendorid", Type: schema.TypeInteger},
				{Name: "lpep_pickup_datetime", Type: schema.TypeTimestamp},
				{Name: "lpep_dropoff_datetime", Type: schema.TypeTimestamp},
				{Name: "store_and_fwd_flag", Type: schema.TypeText},
				{Name: "ratecodeid", Type: schema.TypeInteger},
				{Name: "pulocationid", Type: schema.TypeInteger},
				{Name: "dolocationid", Type: schema.TypeInteger},
				{Name: "passenger_count", Type: schema.TypeInteger},
				{Name: "trip_distance", Type: schema.TypeDecimal},
				{Name: "fare_amount", Type: schema.TypeDecimal},
				{Name: "extra", Type: schema.TypeDecimal},
				{Name: "mta_tax", Type: schema.TypeDecimal},
				{Name: "tip_amount", Type: schema.TypeDecimal},
				{Name: "tolls_amount", Type: schema.TypeDecimal},
				{Name: "ehail_fee", Type: schema.TypeDecimal},
				{Name: "improvement_surcharge", Type: schema.TypeDecimal},
				{Name: "total_amount", Type: schema.TypeDecimal},
				{Name: "payment_type", Type: schema.TypeInteger},
				{Name: "trip_type", Type: schema.TypeInteger},
				{Name: "congestion_surcharge", Type: schema.TypeDecimal},
				{Name: "cbd_congestion_fee", Type: schema.TypeDecimal},
			},
		},
		{
			Name:   "zones",
			URL:    "https://github.com/DataTalksClub/nyc-tlc-data/releases/download/misc/taxi_zone_lookup.csv",
			Format: FormatCSV,
			Table:  "taxi_zones",
			Schema: schema.Schema{
				{Name: "locationid", Type: schema.TypeInteger},
				{Name: "borough", Type: schema.TypeText},
				{Name: "zone", Type: schema.TypeText},
				{Name: "service_zone", Type: schema.TypeText},
			},
		},
	}
}
