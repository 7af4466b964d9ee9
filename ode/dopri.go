package ode

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Dormand–Prince 5(4) tableau. The last stage row equals the 5th-order
// weights, so the final stage evaluation is reusable as the first stage of
// the next step (FSAL).
var (
	dpC = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	}
	dpB5 = [7]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0}
	dpB4 = [7]float64{5179.0 / 57600.0, 0, 7571.0 / 16695.0, 393.0 / 640.0, -92097.0 / 339200.0, 187.0 / 2100.0, 1.0 / 40.0}
)

const (
	defaultAbsTol = 1e-9
	defaultRelTol = 1e-6

	// Step-size controller bounds (Hairer–Nørsett–Wanner style).
	safetyFactor = 0.9
	minShrink    = 0.2
	maxGrow      = 5.0

	machEps = 2.220446049250313e-16
)

// DormandPrince is an adaptive explicit Runge–Kutta 5(4) integrator with
// cubic Hermite dense output. The zero value is ready to use.
type DormandPrince struct{}

// NewDormandPrince returns a ready-to-use integrator.
func NewDormandPrince() *DormandPrince { return &DormandPrince{} }

// Info implements Integrator.
func (dp *DormandPrince) Info() Info {
	return Info{Name: "dormand-prince-5(4)", Stages: 7, Order: 5}
}

// Integrate advances y0 from t0 to t1 under the configured tolerances.
// y0 is not modified. On ErrStepBudget or ErrStepTooSmall the partial
// solution up to the failure time is returned together with the error.
func (dp *DormandPrince) Integrate(t0, t1 float64, y0 []float64, outputTimes []float64, cfg *Config) (Solution, Statistics, error) {
	var sol Solution
	var stat Statistics

	if cfg == nil || cfg.Fcn == nil {
		return sol, stat, fmt.Errorf("%w: nil config or RHS", ErrBadConfig)
	}
	if len(y0) == 0 {
		return sol, stat, fmt.Errorf("%w: empty state", ErrBadConfig)
	}
	if !(t1 > t0) {
		return sol, stat, fmt.Errorf("%w: t1 (%g) must exceed t0 (%g)", ErrBadConfig, t1, t0)
	}
	if len(outputTimes) > 0 {
		if !sort.Float64sAreSorted(outputTimes) {
			return sol, stat, fmt.Errorf("%w: output times not increasing", ErrBadConfig)
		}
		if outputTimes[0] < t0 || outputTimes[len(outputTimes)-1] > t1 {
			return sol, stat, fmt.Errorf("%w: output times outside [%g, %g]", ErrBadConfig, t0, t1)
		}
	}

	atol := cfg.AbsTol
	if atol <= 0 {
		atol = defaultAbsTol
	}
	rtol := cfg.RelTol
	if rtol <= 0 {
		rtol = defaultRelTol
	}

	n := len(y0)
	y := make([]float64, n)
	copy(y, y0)
	ynew := make([]float64, n)
	ytmp := make([]float64, n)
	yerr := make([]float64, n)
	dense := make([]float64, n)

	var k [7][]float64
	for i := range k {
		k[i] = make([]float64, n)
	}

	f := func(t float64, yIn, dyOut []float64) {
		cfg.Fcn(t, yIn, dyOut)
		stat.Evaluations++
	}

	t := t0
	f(t, y, k[0])

	h := cfg.InitialStep
	if h <= 0 {
		h = (t1 - t0) / 100
	}
	if cfg.MaxStep > 0 && h > cfg.MaxStep {
		h = cfg.MaxStep
	}
	if h > t1-t0 {
		h = t1 - t0
	}

	emit := func(ts float64, state []float64) {
		cp := make([]float64, n)
		copy(cp, state)
		sol.Times = append(sol.Times, ts)
		sol.States = append(sol.States, cp)
	}

	outIdx := 0
	if len(outputTimes) > 0 {
		for outIdx < len(outputTimes) && outputTimes[outIdx] <= t0 {
			emit(outputTimes[outIdx], y)
			outIdx++
		}
	} else {
		emit(t0, y)
	}

	fail := func(err error) (Solution, Statistics, error) {
		stat.CurrentTime = t
		return sol, stat, err
	}

	for t < t1 {
		if cfg.MaxSteps > 0 && stat.Steps >= cfg.MaxSteps {
			return fail(fmt.Errorf("%w after %d steps at t=%g", ErrStepBudget, stat.Steps, t))
		}

		minStep := cfg.MinStep
		if minStep <= 0 {
			minStep = 16 * machEps * math.Max(math.Abs(t), 1)
		}
		if h < minStep {
			return fail(fmt.Errorf("%w: h=%g at t=%g", ErrStepTooSmall, h, t))
		}

		lastStep := false
		if t1-t <= h {
			h = t1 - t
			lastStep = true
		}

		// Stages 2..7. Stage 7 lands on the 5th-order solution, so ytmp
		// holds ynew when the loop finishes and k[6] is its derivative.
		for i := 1; i < 7; i++ {
			copy(ytmp, y)
			for j := 0; j < i; j++ {
				if dpA[i][j] != 0 {
					floats.AddScaled(ytmp, h*dpA[i][j], k[j])
				}
			}
			f(t+dpC[i]*h, ytmp, k[i])
		}
		copy(ynew, ytmp)

		// Embedded 4th-order error estimate.
		errNorm := 0.0
		for i := 0; i < n; i++ {
			e := 0.0
			for j := 0; j < 7; j++ {
				e += (dpB5[j] - dpB4[j]) * k[j][i]
			}
			yerr[i] = h * e
			sc := atol + rtol*math.Max(math.Abs(y[i]), math.Abs(ynew[i]))
			r := yerr[i] / sc
			errNorm += r * r
		}
		errNorm = math.Sqrt(errNorm / float64(n))

		if errNorm <= 1 {
			tNew := t + h
			if lastStep {
				tNew = t1
			}
			stat.Steps++
			stat.LastStep = h

			if len(outputTimes) > 0 {
				for outIdx < len(outputTimes) && outputTimes[outIdx] <= tNew {
					theta := (outputTimes[outIdx] - t) / h
					hermite(dense, y, k[0], ynew, k[6], h, theta)
					emit(outputTimes[outIdx], dense)
					outIdx++
				}
			} else {
				emit(tNew, ynew)
			}

			t = tNew
			copy(y, ynew)
			copy(k[0], k[6]) // FSAL
		} else {
			stat.Rejected++
		}

		fac := maxGrow
		if errNorm > 0 {
			fac = safetyFactor * math.Pow(errNorm, -0.2)
		}
		if fac > maxGrow {
			fac = maxGrow
		}
		if fac < minShrink {
			fac = minShrink
		}
		if errNorm > 1 && fac > 1 {
			fac = 1
		}
		h *= fac
		if cfg.MaxStep > 0 && h > cfg.MaxStep {
			h = cfg.MaxStep
		}
	}

	stat.CurrentTime = t
	return sol, stat, nil
}

// hermite evaluates the cubic Hermite interpolant over one accepted step at
// fraction theta in [0, 1], using the endpoint states and derivatives.
func hermite(dst, y0, f0, y1, f1 []float64, h, theta float64) {
	t2 := theta * theta
	t3 := t2 * theta
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + theta
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	for i := range dst {
		dst[i] = h00*y0[i] + h*h10*f0[i] + h01*y1[i] + h*h11*f1[i]
	}
}
