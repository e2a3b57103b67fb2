package adsb

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"modes1090/internal/geo"
)

// CPRSample is one half of a CPR encoded position
type CPRSample struct {
	Lat       uint32 // 17-bit encoded latitude
	Lon       uint32 // 17-bit encoded longitude
	Odd       bool
	Surface   bool
	Timestamp time.Time
}

// CPRPair buffers the most recent even and odd samples of one aircraft
type CPRPair struct {
	Even *CPRSample
	Odd  *CPRSample

	failures int // consecutive out of range global decodes
}

// Add stores a sample in its slot. A sample from the other domain
// (surface vs airborne) first discards the buffered samples; Add reports
// whether that happened.
func (p *CPRPair) Add(s CPRSample) bool {
	discarded := false
	if last := p.Latest(); last != nil && last.Surface != s.Surface {
		discarded = p.Reset()
	}
	if s.Odd {
		p.Odd = &s
	} else {
		p.Even = &s
	}
	return discarded
}

// Reset discards both samples and reports whether any was buffered
func (p *CPRPair) Reset() bool {
	had := p.Even != nil || p.Odd != nil
	p.Even, p.Odd = nil, nil
	p.failures = 0
	return had
}

// Empty reports whether no sample is buffered
func (p *CPRPair) Empty() bool {
	return p.Even == nil && p.Odd == nil
}

// Latest returns the most recently received sample, or nil
func (p *CPRPair) Latest() *CPRSample {
	switch {
	case p.Even == nil:
		return p.Odd
	case p.Odd == nil:
		return p.Even
	case p.Odd.Timestamp.After(p.Even.Timestamp):
		return p.Odd
	default:
		return p.Even
	}
}

// Usable reports whether both halves are present, from the same domain and
// no more than maxSkew apart
func (p *CPRPair) Usable(maxSkew time.Duration) bool {
	if p.Even == nil || p.Odd == nil || p.Even.Surface != p.Odd.Surface {
		return false
	}
	skew := p.Even.Timestamp.Sub(p.Odd.Timestamp)
	if skew < 0 {
		skew = -skew
	}
	return skew <= maxSkew
}

// CPRConfig holds the limits applied when resolving positions
type CPRConfig struct {
	MaxSkewAirborne       time.Duration
	MaxSkewSurface        time.Duration
	MaxGlobalRange        float64 // meters from the receiver
	MaxLocalRangeAirborne float64 // meters from the reference
	MaxLocalRangeSurface  float64 // meters from the reference
	MaxDisagreement       float64 // meters between global and local results
	MaxImplausible        int     // consecutive failures before the pair is dropped
}

// DefaultCPRConfig returns the standard resolver limits
func DefaultCPRConfig() CPRConfig {
	return CPRConfig{
		MaxSkewAirborne:       8500 * time.Millisecond,
		MaxSkewSurface:        48500 * time.Millisecond,
		MaxGlobalRange:        600e3,
		MaxLocalRangeAirborne: 320e3,
		MaxLocalRangeSurface:  80e3,
		MaxDisagreement:       5.1,
		MaxImplausible:        2,
	}
}

// Resolution is the outcome of resolving one CPR sample
type Resolution struct {
	Position    geo.Point
	OK          bool
	Global      bool // result came from an even/odd pair
	Invalidated bool // the buffered pair was dropped
	Reason      string
}

// CPRResolver turns CPR samples into positions using global (pair) and
// local (reference) decoding
type CPRResolver struct {
	cfg      CPRConfig
	receiver *geo.Point
	logger   *logrus.Logger
}

// NewCPRResolver creates a resolver. receiver may be nil when the receiver
// location is unknown.
func NewCPRResolver(cfg CPRConfig, receiver *geo.Point, logger *logrus.Logger) *CPRResolver {
	return &CPRResolver{
		cfg:      cfg,
		receiver: receiver,
		logger:   logger,
	}
}

// Receiver returns the configured receiver location, or nil
func (r *CPRResolver) Receiver() *geo.Point {
	return r.receiver
}

// Resolve buffers s in pair and tries to produce a position. last is the
// aircraft's last known position if it is recent enough to serve as a local
// reference, otherwise nil.
func (r *CPRResolver) Resolve(pair *CPRPair, s CPRSample, last *geo.Point) Resolution {
	pair.Add(s)

	localRef := last
	if localRef == nil {
		localRef = r.receiver
	}
	// Surface global decodes need a reference to pick the quadrant
	globalRef := r.receiver
	if globalRef == nil {
		globalRef = last
	}

	var global geo.Point
	globalOK := false
	if pair.Usable(r.maxSkew(s.Surface)) {
		global, globalOK = decodeGlobal(*pair.Even, *pair.Odd, globalRef)
		if globalOK && r.receiver != nil {
			if d := geo.Distance(global, *r.receiver); d > r.cfg.MaxGlobalRange {
				globalOK = false
				pair.failures++
				r.logger.WithFields(logrus.Fields{
					"lat":      global.Lat,
					"lon":      global.Lon,
					"range_km": d / 1000,
					"bearing":  geo.Bearing(*r.receiver, global),
					"failures": pair.failures,
				}).Debug("CPR global decode out of range")
				if pair.failures >= r.cfg.MaxImplausible {
					pair.Reset()
					return Resolution{Invalidated: true, Reason: "global decode repeatedly out of range"}
				}
			}
		}
		if globalOK {
			pair.failures = 0
		}
	}

	var local geo.Point
	localOK := false
	if localRef != nil {
		local, localOK = decodeLocal(s, *localRef)
		if localOK && geo.Distance(local, *localRef) > r.maxLocalRange(s.Surface) {
			localOK = false
		}
	}

	switch {
	case globalOK && localOK:
		if d := disagreement(global, local); d > r.cfg.MaxDisagreement {
			r.logger.WithFields(logrus.Fields{
				"global_lat": global.Lat,
				"global_lon": global.Lon,
				"local_lat":  local.Lat,
				"local_lon":  local.Lon,
				"diff_m":     d,
			}).Debug("CPR global and local decodes disagree")
			pair.Reset()
			return Resolution{Invalidated: true, Reason: "global and local decodes disagree"}
		}
		return Resolution{Position: global, OK: true, Global: true}
	case globalOK:
		return Resolution{Position: global, OK: true, Global: true}
	case localOK:
		return Resolution{Position: local, OK: true}
	}
	return Resolution{Reason: "no decodable position"}
}

func (r *CPRResolver) maxSkew(surface bool) time.Duration {
	if surface {
		return r.cfg.MaxSkewSurface
	}
	return r.cfg.MaxSkewAirborne
}

func (r *CPRResolver) maxLocalRange(surface bool) float64 {
	if surface {
		return r.cfg.MaxLocalRangeSurface
	}
	return r.cfg.MaxLocalRangeAirborne
}

// disagreement returns the larger of the north-south and east-west
// separations of two nearby points in meters
func disagreement(a, b geo.Point) float64 {
	dLat := math.Abs(a.Lat-b.Lat) * geo.MetersPerDegree
	dLon := math.Abs(geo.NormalizeLongitude(a.Lon-b.Lon)) * geo.MetersPerDegree * math.Cos(geo.Radians(a.Lat))
	return math.Max(dLat, dLon)
}

// NL returns the number of longitude zones at a latitude
func NL(lat float64) int {
	lat = math.Abs(lat)
	switch {
	case lat == 0:
		return 59
	case lat == 87:
		return 2
	case lat > 87:
		return 1
	}
	a := 1 - math.Cos(math.Pi/(2*CPRLatZones))
	b := math.Pow(math.Cos(geo.Radians(lat)), 2)
	return int(math.Floor(2 * math.Pi / math.Acos(1-a/b)))
}

// cprModInt performs an always positive integer modulo
func cprModInt(a, b int) int {
	res := a % b
	if res < 0 {
		res += b
	}
	return res
}

// cprModFloat performs an always positive float modulo
func cprModFloat(a, b float64) float64 {
	res := math.Mod(a, b)
	if res < 0 {
		res += b
	}
	return res
}

func zoneSpan(surface bool) float64 {
	if surface {
		return 90
	}
	return 360
}

// decodeGlobal decodes an even/odd pair. ref is only required for surface
// pairs, whose result is ambiguous by quadrant.
func decodeGlobal(even, odd CPRSample, ref *geo.Point) (geo.Point, bool) {
	surface := even.Surface
	if surface && ref == nil {
		return geo.Point{}, false
	}
	span := zoneSpan(surface)

	lat0 := float64(even.Lat)
	lat1 := float64(odd.Lat)
	lon0 := float64(even.Lon)
	lon1 := float64(odd.Lon)

	// Latitude index
	j := int(math.Floor((59*lat0-60*lat1)/CPRMax + 0.5))

	rlat0 := span / 60 * (float64(cprModInt(j, 60)) + lat0/CPRMax)
	rlat1 := span / 59 * (float64(cprModInt(j, 59)) + lat1/CPRMax)

	if surface {
		// Only the northern solution is encoded; the southern one is 90 degrees below
		if rlat0-ref.Lat > 45 {
			rlat0 -= 90
		}
		if rlat1-ref.Lat > 45 {
			rlat1 -= 90
		}
	} else {
		if rlat0 >= 270 {
			rlat0 -= 360
		}
		if rlat1 >= 270 {
			rlat1 -= 360
		}
	}

	if rlat0 < -90 || rlat0 > 90 || rlat1 < -90 || rlat1 > 90 {
		return geo.Point{}, false
	}

	// Both halves must fall in the same longitude zone count
	if NL(rlat0) != NL(rlat1) {
		return geo.Point{}, false
	}

	// Use the most recent half
	rlat, lonCPR, oddFlag := rlat0, lon0, 0
	if odd.Timestamp.After(even.Timestamp) {
		rlat, lonCPR, oddFlag = rlat1, lon1, 1
	}

	nl := NL(rlat)
	ni := nl - oddFlag
	if ni < 1 {
		ni = 1
	}
	m := int(math.Floor((lon0*float64(nl-1)-lon1*float64(nl))/CPRMax + 0.5))
	rlon := span / float64(ni) * (float64(cprModInt(m, ni)) + lonCPR/CPRMax)

	if surface {
		// Pick the longitude quadrant closest to the reference
		rlon += math.Floor((ref.Lon-rlon+45)/90) * 90
	}

	return geo.Point{Lat: rlat, Lon: geo.NormalizeLongitude(rlon)}, true
}

// decodeLocal decodes a single sample relative to a reference position
// that is known to lie within half a zone of the true position
func decodeLocal(s CPRSample, ref geo.Point) (geo.Point, bool) {
	span := zoneSpan(s.Surface)
	oddFlag := 0
	if s.Odd {
		oddFlag = 1
	}

	dLat := span / float64(60-oddFlag)
	fracLat := float64(s.Lat) / CPRMax
	j := math.Floor(ref.Lat/dLat) + math.Floor(0.5+cprModFloat(ref.Lat, dLat)/dLat-fracLat)
	rlat := dLat * (j + fracLat)
	if rlat < -90 || rlat > 90 || math.Abs(rlat-ref.Lat) > dLat/2 {
		return geo.Point{}, false
	}

	ni := NL(rlat) - oddFlag
	if ni < 1 {
		ni = 1
	}
	dLon := span / float64(ni)
	fracLon := float64(s.Lon) / CPRMax
	m := math.Floor(ref.Lon/dLon) + math.Floor(0.5+cprModFloat(ref.Lon, dLon)/dLon-fracLon)
	rlon := dLon * (m + fracLon)
	if math.Abs(rlon-ref.Lon) > dLon/2 {
		return geo.Point{}, false
	}

	return geo.Point{Lat: rlat, Lon: geo.NormalizeLongitude(rlon)}, true
}
