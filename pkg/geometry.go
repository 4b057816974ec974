package reconcile

import (
	"fmt"
	"sort"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx"
)

// PlaneInvalid is returned for channel ids outside every mapped range.
const PlaneInvalid = -1

type planeRange struct {
	Low   uint32
	High  uint32 // inclusive
	Plane int
}

// Built-in channel map, from ChannelMapICARUS_20240318. Each TPC contributes
// one contiguous block per readout view.
var defaultPlaneTable = []planeRange{
	{0, 2239, 0},
	{2240, 8063, 1},
	{8064, 13823, 2},
	{13824, 16063, 0},
	{16128, 21087, 1},
	{21888, 27647, 2},
	{27648, 29887, 0},
	{29952, 35711, 1},
	{35712, 41471, 2},
	{41472, 43711, 0},
	{43776, 49535, 1},
	{49536, 55295, 2},
}

// Geometry resolves detector channels to readout planes through an ordered
// table of disjoint inclusive ranges.
type Geometry struct {
	ranges []planeRange
}

// NewGeometry returns a resolver backed by the built-in channel map.
func NewGeometry() *Geometry {
	return newGeometryFromRanges(defaultPlaneTable)
}

func newGeometryFromRanges(ranges []planeRange) *Geometry {
	sorted := make([]planeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Low < sorted[j].Low
	})
	return &Geometry{ranges: sorted}
}

// PlaneOf returns the readout plane for a channel id, or PlaneInvalid when
// the id falls outside every range. Callers keying sums by plane drop
// invalid channels.
func (g *Geometry) PlaneOf(channel uint32) int {
	idx := sort.Search(len(g.ranges), func(i int) bool {
		return g.ranges[i].High >= channel
	})
	if idx == len(g.ranges) || g.ranges[idx].Low > channel {
		return PlaneInvalid
	}
	return g.ranges[idx].Plane
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type planeRangeEntry struct {
	PlaneID    int `db:"PlaneID"`
	ChannelMin int `db:"ChannelMin"`
	ChannelMax int `db:"ChannelMax"`
}

// LoadGeometryFromDB reads the channel ranges valid for a run from the
// channel-map database.
func LoadGeometryFromDB(db *sqlx.DB, runNumber int) (*Geometry, error) {
	query := "SELECT PlaneID, ChannelMin, ChannelMax FROM ChannelPlaneMapping WHERE MinRun <= %d and MaxRun >= %d ORDER BY ChannelMin"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Channel plane mapping read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	ranges := make([]planeRange, 0)
	for rows.Next() {
		result := planeRangeEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		ranges = append(ranges, planeRange{
			Low:   uint32(result.ChannelMin),
			High:  uint32(result.ChannelMax),
			Plane: result.PlaneID,
		})
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("no channel plane mapping for run %d", runNumber)
	}
	return newGeometryFromRanges(ranges), nil
}
