package roadmodel

// RoadType classifies a way by its OSM highway tag.
type RoadType int

const (
	Invalid RoadType = iota
	Unclassified
	Service
	Residential
	Tertiary
	Secondary
	Primary
	Trunk
	Motorway
	Footway
)

var roadTypeNames = map[RoadType]string{
	Invalid:      "invalid",
	Unclassified: "unclassified",
	Service:      "service",
	Residential:  "residential",
	Tertiary:     "tertiary",
	Secondary:    "secondary",
	Primary:      "primary",
	Trunk:        "trunk",
	Motorway:     "motorway",
	Footway:      "footway",
}

func (t RoadType) String() string {
	if name, ok := roadTypeNames[t]; ok {
		return name
	}
	return "invalid"
}

// ParseRoadType maps an OSM highway value to a RoadType. Unknown values are Invalid.
func ParseRoadType(highway string) RoadType {
	switch highway {
	case "motorway", "motorway_link":
		return Motorway
	case "trunk", "trunk_link":
		return Trunk
	case "primary", "primary_link":
		return Primary
	case "secondary", "secondary_link":
		return Secondary
	case "tertiary", "tertiary_link":
		return Tertiary
	case "residential", "living_street":
		return Residential
	case "service":
		return Service
	case "unclassified":
		return Unclassified
	case "footway", "bridleway", "steps", "path", "pedestrian":
		return Footway
	default:
		return Invalid
	}
}

// Node is a map point. X and Y are in model units, roughly [0, 1] across the map.
type Node struct {
	OSMID    int64
	Lat, Lon float64
	X, Y     float64
}

// Way is an ordered list of node indexes.
type Way struct {
	OSMID int64
	Nodes []int
}

// Road is a way that vehicles or pedestrians may travel along.
type Road struct {
	Way  int
	Type RoadType
}
