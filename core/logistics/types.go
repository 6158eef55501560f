package logistics

// Resource names as exposed by the backend.
const (
	ResourceDrivers   = "drivers"
	ResourceTerminals = "terminals"
	ResourceTrucks    = "trucks"
	ResourceTrailers  = "trailers"
	ResourceOrders    = "orders"
)

type Driver struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Terminal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name,omitempty"`
	AccountCode int    `json:"account_code,omitempty"`
	Address     string `json:"address,omitempty"`
	TimeZone    string `json:"time_zone,omitempty"`
}

type Truck struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LicensePlate string `json:"license_plate"`
}

type Trailer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LicensePlate string `json:"license_plate"`
}

// Order is a grid row. The *_id fields are the foreign keys the resolver
// batches lookups for; empty means unassigned.
type Order struct {
	ID         string `json:"id"`
	Reference  string `json:"reference"`
	Service    string `json:"service,omitempty"`
	TerminalID string `json:"terminal_id,omitempty"`

	EtaDate string `json:"eta_date,omitempty"`
	EtaTime string `json:"eta_time,omitempty"`
	EtdDate string `json:"etd_date,omitempty"`
	EtdTime string `json:"etd_time,omitempty"`

	EtaDriverID  string `json:"eta_driver_id,omitempty"`
	EtdDriverID  string `json:"etd_driver_id,omitempty"`
	EtaTruckID   string `json:"eta_truck_id,omitempty"`
	EtdTruckID   string `json:"etd_truck_id,omitempty"`
	EtaTrailerID string `json:"eta_trailer_id,omitempty"`
	EtdTrailerID string `json:"etd_trailer_id,omitempty"`

	Commodity string  `json:"commodity,omitempty"`
	Pallets   int     `json:"pallets,omitempty"`
	Boxes     int     `json:"boxes,omitempty"`
	Kilos     float64 `json:"kilos,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}
