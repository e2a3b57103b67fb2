package geo

import "math"

// International Standard Atmosphere constants (SI)
const (
	isaT0      = 288.15    // sea level temperature, K
	isaP0      = 101325.0  // sea level pressure, Pa
	isaLapse   = 0.0065    // troposphere lapse rate, K/m
	isaTropo   = 11000.0   // tropopause altitude, m
	isaGravity = 9.80665   // m/s^2
	isaR       = 287.05287 // specific gas constant for dry air, J/(kg K)
	isaGamma   = 1.4

	// KnotsToMetersPerSecond converts knots to m/s
	KnotsToMetersPerSecond = 0.514444
)

var isaA0 = math.Sqrt(isaGamma * isaR * isaT0)

// ISATemperature returns the standard atmosphere temperature in Celsius at a pressure altitude in feet
func ISATemperature(altFt float64) float64 {
	return isaTemperatureK(altFt*FeetToMeters) - 273.15
}

func isaTemperatureK(h float64) float64 {
	if h > isaTropo {
		h = isaTropo
	}
	return isaT0 - isaLapse*h
}

func isaPressure(h float64) float64 {
	if h <= isaTropo {
		t := isaTemperatureK(h)
		return isaP0 * math.Pow(t/isaT0, isaGravity/(isaLapse*isaR))
	}
	t11 := isaTemperatureK(isaTropo)
	p11 := isaP0 * math.Pow(t11/isaT0, isaGravity/(isaLapse*isaR))
	return p11 * math.Exp(-isaGravity/(isaR*t11)*(h-isaTropo))
}

// MachToTAS converts a Mach number at a pressure altitude in feet to true airspeed in knots
func MachToTAS(mach, altFt float64) float64 {
	a := math.Sqrt(isaGamma * isaR * isaTemperatureK(altFt*FeetToMeters))
	return mach * a / KnotsToMetersPerSecond
}

// MachToCAS converts a Mach number at a pressure altitude in feet to calibrated airspeed in knots
func MachToCAS(mach, altFt float64) float64 {
	p := isaPressure(altFt * FeetToMeters)
	qc := p * (math.Pow(1+0.2*mach*mach, 3.5) - 1)
	cas := isaA0 * math.Sqrt(5*(math.Pow(qc/isaP0+1, 2.0/7.0)-1))
	return cas / KnotsToMetersPerSecond
}
