package domain

type ProvinceRegion string

const (
	ProvinceRegionNorth     ProvinceRegion = "north"
	ProvinceRegionNortheast ProvinceRegion = "northeast"
	ProvinceRegionCentral   ProvinceRegion = "central"
	ProvinceRegionEast      ProvinceRegion = "east"
	ProvinceRegionWest      ProvinceRegion = "west"
	ProvinceRegionSouth     ProvinceRegion = "south"
)

type Province struct {
	ID            int            `db:"id" json:"id"`
	NameEN        string         `db:"name_en" json:"name_en"`
	NameTH        string         `db:"name_th" json:"name_th"`
	Region        ProvinceRegion `db:"region" json:"region"`
	CampsiteCount int            `db:"campsite_count" json:"campsite_count"`
}
