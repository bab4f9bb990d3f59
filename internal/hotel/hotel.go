package hotel

import "fmt"

// Hotel is static reference data for one managed property. The set is fixed
// at startup and never mutated at runtime.
type Hotel struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	UpstreamHotelID    string `json:"hotelId"`
	AuthKey            string `json:"-"`
	CompanyName        string `json:"companyName"`
	Location           string `json:"location"`
	POBox              string `json:"poBox"`
	TINNumber          string `json:"tinnNumber"`
	RegistrationNumber string `json:"registrationNumber"`
	Phone              string `json:"phone"`
	AccountNumber      string `json:"accountNumber"`
	SwiftCode          string `json:"swiftCode"`
	Email              string `json:"email"`
}

// Directory is the in-memory hotel lookup
type Directory struct {
	hotels []Hotel
	byID   map[string]*Hotel
}

// NewDirectory builds a directory over the built-in property set
func NewDirectory() *Directory {
	return newDirectory(properties)
}

func newDirectory(hotels []Hotel) *Directory {
	d := &Directory{hotels: hotels, byID: make(map[string]*Hotel, len(hotels))}
	for i := range d.hotels {
		d.byID[d.hotels[i].ID] = &d.hotels[i]
	}
	return d
}

// All returns every configured property
func (d *Directory) All() []Hotel {
	return d.hotels
}

// ByID looks up a property by its identifier
func (d *Directory) ByID(id string) (*Hotel, error) {
	h, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown hotel: %s", id)
	}
	return h, nil
}

var properties = []Hotel{
	{
		ID:                 "sunset-beach",
		Name:               "Sunset Beach",
		UpstreamHotelID:    "38711",
		AuthKey:            "3688029724ee71b79b-b26a-11ed-8",
		CompanyName:        "Sunset Beach Hotel",
		Location:           "Kiwengwa-Zanzibar (Tanzania)",
		POBox:              "P.O Box 2529",
		TINNumber:          "300-101-496",
		RegistrationNumber: "Z0000007238",
		Phone:              "0779-414986",
		AccountNumber:      "0400392000",
		SwiftCode:          "PBZATZTZ",
		Email:              "info@sunsetbeach.com",
	},
	{
		ID:                 "zanzibar-village",
		Name:               "Zanzibar Village",
		UpstreamHotelID:    "38736",
		AuthKey:            "4884018408ee64c1f0-b26a-11ed-8",
		CompanyName:        "Zanzibar Village Hotel",
		Location:           "Kiwengwa-Zanzibar (Tanzania)",
		POBox:              "P.O Box 2529",
		TINNumber:          "300-101-496",
		RegistrationNumber: "Z0000007238",
		Phone:              "0779-414986",
		AccountNumber:      "0400392000",
		SwiftCode:          "PBZATZTZ",
		Email:              "info@zanzibarvillage.com",
	},
}
