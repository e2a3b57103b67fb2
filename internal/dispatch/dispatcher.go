package dispatch

import (
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"modes1090/internal/adsb"
	"modes1090/internal/aircraft"
	"modes1090/internal/bds"
)

// Result classifies what happened to a frame
type Result int

const (
	// ResultApplied means at least the frame's surveillance fields were accepted
	ResultApplied Result = iota
	// ResultUnsupported means the frame shape is not handled
	ResultUnsupported
	// ResultRejected means the frame failed a structural check
	ResultRejected
	// ResultAmbiguous means no single BDS register could be chosen
	ResultAmbiguous
	// ResultImplausible means a decoded value contradicted known state
	ResultImplausible

	numResults
)

func (r Result) String() string {
	switch r {
	case ResultApplied:
		return "applied"
	case ResultUnsupported:
		return "unsupported"
	case ResultRejected:
		return "rejected"
	case ResultAmbiguous:
		return "ambiguous"
	case ResultImplausible:
		return "implausible"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Outcome describes the handling of one frame
type Outcome struct {
	Result  Result
	Class   Class
	Address uint32
	Reason  string

	// Set for frames carrying a Comm-B MB field
	Verdict  bds.Verdict
	Register bds.Register
}

// Config holds dispatcher policy
type Config struct {
	// RequireSeenAddress accepts an address recovered from AP parity only
	// if a DF11/17/18 frame declared it within SeenTTL
	RequireSeenAddress bool
	SeenTTL            time.Duration
	SeenSize           int

	// MaxClimbRate bounds the implied rate between Mode-S altitude replies, ft/min
	MaxClimbRate float64

	// ReferenceMaxAge is how old a position may be to serve as local CPR reference
	ReferenceMaxAge time.Duration

	// PriorMaxAge is how old a field may be to constrain BDS hypotheses
	PriorMaxAge time.Duration
}

// DefaultConfig returns the default dispatcher policy
func DefaultConfig() Config {
	return Config{
		RequireSeenAddress: true,
		SeenTTL:            60 * time.Second,
		SeenSize:           4096,
		MaxClimbRate:       6000,
		ReferenceMaxAge:    5 * time.Minute,
		PriorMaxAge:        10 * time.Second,
	}
}

// Dispatcher decodes frames into an aircraft store. It is not safe for
// concurrent use; only Stats may be read from other goroutines.
type Dispatcher struct {
	store    *aircraft.Store
	resolver *adsb.CPRResolver
	bds      *bds.Disambiguator
	cfg      Config
	logger   *logrus.Logger

	seen  *expirable.LRU[uint32, time.Time]
	stats Stats
}

// New creates a dispatcher writing to store
func New(store *aircraft.Store, resolver *adsb.CPRResolver, disambiguator *bds.Disambiguator, cfg Config, logger *logrus.Logger) *Dispatcher {
	size := cfg.SeenSize
	if size <= 0 {
		size = DefaultConfig().SeenSize
	}
	return &Dispatcher{
		store:    store,
		resolver: resolver,
		bds:      disambiguator,
		cfg:      cfg,
		logger:   logger,
		seen:     expirable.NewLRU[uint32, time.Time](size, nil, cfg.SeenTTL),
	}
}

// Stats returns the dispatcher counters
func (d *Dispatcher) Stats() *Stats {
	return &d.stats
}

// Store returns the aircraft store
func (d *Dispatcher) Store() *aircraft.Store {
	return d.store
}

// Dispatch fully processes one frame
func (d *Dispatcher) Dispatch(f *adsb.Frame) Outcome {
	out := d.dispatch(f)
	d.stats.countResult(out.Result)
	if out.Result != ResultApplied {
		d.logger.WithFields(logrus.Fields{
			"frame":   f.Hex(),
			"kind":    out.Class.Kind.String(),
			"address": fmt.Sprintf("%06X", out.Address),
			"result":  out.Result.String(),
			"reason":  out.Reason,
		}).Debug("Frame not applied")
	}
	return out
}

func (d *Dispatcher) dispatch(f *adsb.Frame) Outcome {
	c := Classify(f)
	d.stats.countFrame(c)
	out := Outcome{Class: c}

	if c.Kind == KindUnsupported {
		out.Result, out.Reason = ResultUnsupported, "frame shape"
		return out
	}
	if c.Kind == KindExtendedSquitter && c.ES == ESUnsupported {
		out.Result, out.Reason = ResultUnsupported, fmt.Sprintf("type code %d", c.TC)
		return out
	}

	addr, reason := d.address(f, c)
	out.Address = addr
	if reason != "" {
		out.Result, out.Reason = ResultRejected, reason
		return out
	}

	r := d.store.GetOrCreate(addr, f.Timestamp)
	r.Seen(f.Timestamp)

	switch c.Kind {
	case KindAllCall:
		return d.allCall(r, f, out)
	case KindExtendedSquitter:
		return d.extendedSquitter(r, f, out)
	case KindShortACAS, KindLongACAS:
		return d.acas(r, f, out)
	case KindAltitudeReply, KindCommBAltitude:
		return d.altitudeReply(r, f, out)
	case KindIdentityReply, KindCommBIdentity:
		return d.identityReply(r, f, out)
	}
	panic(fmt.Sprintf("dispatch: unhandled frame kind %s", c.Kind))
}

// address determines the aircraft address of a frame, or a reason to reject it
func (d *Dispatcher) address(f *adsb.Frame, c Class) (uint32, string) {
	switch c.Kind {
	case KindAllCall:
		if _, ok := adsb.InterrogatorCode(f); !ok {
			return f.AA(), "parity"
		}
	case KindExtendedSquitter:
		if adsb.Syndrome(f) != 0 {
			return f.AA(), "parity"
		}
	}

	if c.Kind == KindAllCall || c.Kind == KindExtendedSquitter {
		addr := f.AA()
		if addr == 0 {
			return 0, "address zero"
		}
		d.seen.Add(addr, f.Timestamp)
		return addr, ""
	}

	if f.Address != 0 {
		return f.Address & 0xFFFFFF, ""
	}
	addr := adsb.RecoverAddress(f)
	if addr == 0 {
		return 0, "address zero"
	}
	if d.cfg.RequireSeenAddress {
		last, ok := d.seen.Get(addr)
		if !ok || f.Timestamp.Sub(last) > d.cfg.SeenTTL {
			return addr, "address not seen"
		}
	}
	return addr, ""
}

func (d *Dispatcher) allCall(r *aircraft.Record, f *adsb.Frame, out Outcome) Outcome {
	ic, _ := adsb.InterrogatorCode(f)
	r.ApplyInterrogator(ic, f.Timestamp)

	// CA 4 and 5 declare the surface state
	switch out.Class.CA {
	case 4:
		r.ApplyOnGround(true, f.Timestamp)
	case 5:
		r.ApplyOnGround(false, f.Timestamp)
	}
	out.Result = ResultApplied
	return out
}

// applyFlightStatus applies the on-ground state implied by an FS field
func applyFlightStatus(r *aircraft.Record, fs uint8, ts time.Time) {
	switch fs {
	case 0, 2:
		r.ApplyOnGround(false, ts)
	case 1, 3:
		r.ApplyOnGround(true, ts)
	}
}

// applyModeSAltitude applies a Mode-S altitude reply unless the implied
// vertical rate against the last known altitude is implausible
func (d *Dispatcher) applyModeSAltitude(r *aircraft.Record, f *adsb.Frame, out *Outcome) {
	alt, ok := adsb.DecodeAC13(f.AC13())
	if !ok {
		return
	}
	if r.Altitude.Valid {
		dt := f.Timestamp.Sub(r.Altitude.Updated)
		if dt < time.Second {
			dt = time.Second
		}
		if rate := math.Abs(float64(alt-r.Altitude.Value)) / dt.Minutes(); rate > d.cfg.MaxClimbRate {
			out.Result = ResultImplausible
			out.Reason = fmt.Sprintf("altitude %d ft implies %.0f ft/min", alt, rate)
			return
		}
	}
	r.ApplyAltitude(alt, f.Timestamp)
}

func (d *Dispatcher) acas(r *aircraft.Record, f *adsb.Frame, out Outcome) Outcome {
	prior := d.prior(r, f.Timestamp)
	out.Result = ResultApplied
	r.ApplyOnGround(adsb.Bit(f.Data, 6), f.Timestamp)
	r.ApplyACAS(uint8(adsb.Bits(f.Data, 14, 17)), f.Timestamp)
	d.applyModeSAltitude(r, f, &out)

	if out.Class.Kind == KindLongACAS && out.Result == ResultApplied {
		mv := f.ME()
		// 0x30 identifies an ACAS coordination reply carrying a resolution advisory
		if mv[0] == 0x30 {
			r.ApplyAdvisory(adsb.DecodeRA(mv), f.Timestamp)
			out.Register = bds.BDS30
			return out
		}
		return d.commB(r, f, prior, out)
	}
	return out
}

func (d *Dispatcher) altitudeReply(r *aircraft.Record, f *adsb.Frame, out Outcome) Outcome {
	prior := d.prior(r, f.Timestamp)
	out.Result = ResultApplied
	applyFlightStatus(r, out.Class.CA, f.Timestamp)
	d.applyModeSAltitude(r, f, &out)

	if out.Class.Kind == KindCommBAltitude && out.Result == ResultApplied {
		return d.commB(r, f, prior, out)
	}
	return out
}

func (d *Dispatcher) identityReply(r *aircraft.Record, f *adsb.Frame, out Outcome) Outcome {
	prior := d.prior(r, f.Timestamp)
	out.Result = ResultApplied
	applyFlightStatus(r, out.Class.CA, f.Timestamp)

	squawk := adsb.DecodeSquawk(f.ID13())
	r.ApplySquawk(squawk, f.Timestamp)
	if name, ok := adsb.SquawkEmergencyName(squawk); ok {
		r.ApplyEmergency(name, f.Timestamp)
	}

	if out.Class.Kind == KindCommBIdentity {
		return d.commB(r, f, prior, out)
	}
	return out
}

// commB disambiguates the MB field against prior and applies the decoded
// register. prior must be taken before the frame's own fields are applied.
func (d *Dispatcher) commB(r *aircraft.Record, f *adsb.Frame, prior bds.Prior, out Outcome) Outcome {
	p, v, h := d.bds.Decode(f.ME(), prior)
	d.stats.countBDS(p, v)
	out.Verdict = v

	switch v {
	case bds.VerdictNone:
		out.Result, out.Reason = ResultImplausible, "no plausible BDS register"
		return out
	case bds.VerdictAmbiguous:
		out.Result, out.Reason = ResultAmbiguous, "BDS candidates "+h.String()
		return out
	}

	out.Register = p.Register()
	d.applyPayload(r, p, f.Timestamp, &out)
	return out
}

// prior collects the recent known state used to check BDS hypotheses
func (d *Dispatcher) prior(r *aircraft.Record, now time.Time) bds.Prior {
	age := d.cfg.PriorMaxAge
	var p bds.Prior
	if r.Callsign.Valid {
		p.Callsign = bds.Some(r.Callsign.Value)
	}
	if r.Altitude.Fresh(now, age) {
		p.Altitude = bds.Some(r.Altitude.Value)
	}
	if r.Position.Fresh(now, age) {
		p.Position = bds.Some(r.Position.Value)
	}
	if r.GroundSpeed.Fresh(now, age) {
		p.GroundSpeed = bds.Some(r.GroundSpeed.Value)
	}
	if r.Track.Fresh(now, age) {
		p.Track = bds.Some(r.Track.Value)
	}
	if r.Heading.Fresh(now, age) {
		p.Heading = bds.Some(r.Heading.Value)
	}
	if r.IAS.Fresh(now, age) {
		p.IAS = bds.Some(r.IAS.Value)
	}
	if r.TAS.Fresh(now, age) {
		p.TAS = bds.Some(r.TAS.Value)
	}
	if r.Mach.Fresh(now, age) {
		p.Mach = bds.Some(r.Mach.Value)
	}
	if r.VerticalRate.Fresh(now, age) {
		p.VerticalRate = bds.Some(r.VerticalRate.Value)
	}
	if r.Temperature.Fresh(now, age) {
		p.Temperature = bds.Some(r.Temperature.Value)
	}
	return p
}
