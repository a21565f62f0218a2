package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// initCoefCap keeps regression based starting values inside the stationary region
	initCoefCap = 0.95

	// minSigma2 is the residual variance below which a fit is considered degenerate
	minSigma2 = 1e-12
)

type SARIMAOptions struct {
	Spec Spec

	// IncludeMean estimates a constant mean of the differenced series
	IncludeMean bool

	// MaxIterations bounds the number of Nelder-Mead iterations
	MaxIterations int

	// Tolerance is the absolute improvement in the sum of squares below which the optimizer
	// is considered converged
	Tolerance float64

	// Conditioning is the number of leading observations of the original series left out of
	// the likelihood. Values below the candidate's own Spec.Conditioning are raised to it.
	Conditioning int
}

// NewDefaultSARIMAOptions estimates a mean only when the candidate is not differenced.
func NewDefaultSARIMAOptions(spec Spec) *SARIMAOptions {
	return &SARIMAOptions{
		Spec:          spec,
		IncludeMean:   spec.Integration() == 0,
		MaxIterations: 2000,
		Tolerance:     1e-9,
	}
}

func (s *SARIMAOptions) Validate() (*SARIMAOptions, error) {
	if s == nil {
		return nil, ErrNoOptions
	}
	if err := s.Spec.Validate(); err != nil {
		return nil, err
	}
	opt := *s
	if opt.Spec.Seasonal != nil {
		so := *opt.Spec.Seasonal
		opt.Spec.Seasonal = &so
	}
	if opt.MaxIterations <= 0 {
		opt.MaxIterations = 2000
	}
	if opt.Tolerance <= 0 {
		opt.Tolerance = 1e-9
	}
	if opt.Conditioning < 0 {
		opt.Conditioning = 0
	}
	return &opt, nil
}

func (s *SARIMAOptions) numParams() int {
	n := s.Spec.NumCoef()
	if s.IncludeMean {
		n++
	}
	return n
}

// CommonConditioning returns the largest Spec.Conditioning among the specs that can be fit on
// n observations by themselves. Candidates fit with it all score their likelihood on the same
// observations of the original series.
func CommonConditioning(n int, specs []Spec) int {
	var common int
	for _, spec := range specs {
		if spec.Validate() != nil {
			continue
		}
		c := spec.Conditioning()
		if n-c < NewDefaultSARIMAOptions(spec).numParams()+3 {
			continue
		}
		if c > common {
			common = c
		}
	}
	return common
}

// SARIMA is a multiplicative seasonal ARIMA(p,d,q)(P,D,Q,s) model estimated by conditional
// sum of squares. A plain ARIMA model is the case of a nil seasonal order.
type SARIMA struct {
	opt *SARIMAOptions

	y     []float64 // original series
	w     []float64 // differenced series
	delta []float64 // differencing polynomial

	params []float64
	ar     []float64 // expanded AR polynomial phi(B)Phi(B^s)
	ma     []float64 // expanded MA polynomial theta(B)Theta(B^s)
	mu     float64

	resid  []float64
	from   int // first residual of w counted in the likelihood
	nEff   int
	sigma2 float64
	loglik float64
	fitted bool
}

func NewSARIMA(opt *SARIMAOptions) (*SARIMA, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &SARIMA{opt: opt}, nil
}

func (s *SARIMA) Spec() Spec {
	return s.opt.Spec
}

func (s *SARIMA) numParams() int {
	return s.opt.numParams()
}

// unpack splits the parameter vector into its phi, theta, seasonal phi, seasonal theta and
// mean components.
func (s *SARIMA) unpack(params []float64) ([]float64, []float64, []float64, []float64, float64) {
	o := s.opt.Spec.Order
	so := s.opt.Spec.seasonalOrder()

	idx := 0
	take := func(n int) []float64 {
		v := params[idx : idx+n]
		idx += n
		return v
	}
	phi := take(o.P)
	theta := take(o.Q)
	sphi := take(so.P)
	stheta := take(so.Q)

	var mu float64
	if s.opt.IncludeMean {
		mu = params[idx]
	}
	return phi, theta, sphi, stheta, mu
}

func (s *SARIMA) polynomials(params []float64) ([]float64, []float64, float64, bool) {
	phi, theta, sphi, stheta, mu := s.unpack(params)
	period := s.opt.Spec.period()

	arN, arS := arPoly(phi, 1), arPoly(sphi, 1)
	maN, maS := maPoly(theta, 1), maPoly(stheta, 1)
	stable := isStable(arN) && isStable(arS) && isStable(maN) && isStable(maS)

	ar := polyMul(arPoly(phi, 1), arPoly(sphi, period))
	ma := polyMul(maPoly(theta, 1), maPoly(stheta, period))
	return ar, ma, mu, stable
}

// residuals computes the conditional residuals of the differenced series. Residuals before
// the first observation with a complete AR history are taken as zero. Only residuals from
// index from onward are summed.
func residuals(w, ar, ma []float64, mu float64, from int) ([]float64, float64) {
	start := len(ar) - 1
	e := make([]float64, len(w))
	var sse float64
	for t := start; t < len(w); t++ {
		v := w[t] - mu
		for i := 1; i < len(ar); i++ {
			if ar[i] == 0 {
				continue
			}
			v += ar[i] * (w[t-i] - mu)
		}
		for j := 1; j < len(ma) && j <= t; j++ {
			if ma[j] == 0 {
				continue
			}
			v -= ma[j] * e[t-j]
		}
		e[t] = v
		if t >= from {
			sse += v * v
		}
	}
	return e, sse
}

func (s *SARIMA) objective(params []float64) float64 {
	ar, ma, mu, stable := s.polynomials(params)
	if !stable {
		return math.Inf(1)
	}
	_, sse := residuals(s.w, ar, ma, mu, s.from)
	if math.IsNaN(sse) {
		return math.Inf(1)
	}
	return sse
}

// Fit estimates the model on y. Any failure leaves the model unfitted.
func (s *SARIMA) Fit(y []float64) error {
	s.fitted = false
	if len(y) == 0 {
		return ErrNoTrainingArray
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s, %w", s.opt.Spec, ErrNonFinite)
		}
	}

	spec := s.opt.Spec
	so := spec.seasonalOrder()
	s.delta = diffPoly(spec.Order.D, so.D, so.S)
	s.y = append(make([]float64, 0, len(y)), y...)
	s.w = applyPoly(s.delta, s.y)

	maxAR := spec.Order.P + so.P*so.S
	from := max(maxAR, s.opt.Conditioning-(len(s.delta)-1))
	k := s.numParams()
	nEff := len(s.w) - from
	if nEff < k+3 {
		return fmt.Errorf(
			"%s has %d usable observations after differencing for %d parameters, %w",
			spec, nEff, k, ErrInsufficientData,
		)
	}
	s.from = from
	s.nEff = nEff

	params := s.initialParams()
	if k > 0 {
		problem := optimize.Problem{Func: s.objective}
		settings := &optimize.Settings{
			MajorIterations: s.opt.MaxIterations,
			Converger: &optimize.FunctionConverge{
				Absolute:   s.opt.Tolerance,
				Iterations: 100,
			},
		}
		res, err := optimize.Minimize(problem, params, settings, &optimize.NelderMead{})
		if err != nil {
			return fmt.Errorf("%s, %s, %w", spec, err.Error(), ErrNotConverged)
		}
		if res.Status.Early() {
			return fmt.Errorf("%s stopped with status %s, %w", spec, res.Status, ErrNotConverged)
		}
		params = res.X
	}

	ar, ma, mu, stable := s.polynomials(params)
	if !stable {
		return fmt.Errorf("%s estimated outside the stationary region, %w", spec, ErrNotConverged)
	}
	resid, sse := residuals(s.w, ar, ma, mu, from)
	sigma2 := sse / float64(nEff)
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return fmt.Errorf("%s residual variance, %w", spec, ErrNonFinite)
	}
	if sigma2 <= minSigma2 {
		return fmt.Errorf("%s residual variance %g, %w", spec, sigma2, ErrDegenerateFit)
	}

	s.params = params
	s.ar = ar
	s.ma = ma
	s.mu = mu
	s.resid = resid
	s.sigma2 = sigma2
	s.loglik = -0.5 * float64(nEff) * (math.Log(2*math.Pi*sigma2) + 1)
	s.fitted = true
	return nil
}

// initialParams regresses the differenced series on its non-seasonal and seasonal AR lags to
// seed the optimizer. MA terms start at zero. Any failure falls back to all zeros.
func (s *SARIMA) initialParams() []float64 {
	spec := s.opt.Spec
	so := spec.seasonalOrder()
	params := make([]float64, s.numParams())

	var mean float64
	if s.opt.IncludeMean {
		mean = floats.Sum(s.w) / float64(len(s.w))
		params[len(params)-1] = mean
	}

	lags := make([]int, 0, spec.Order.P+so.P)
	for i := 1; i <= spec.Order.P; i++ {
		lags = append(lags, i)
	}
	for i := 1; i <= so.P; i++ {
		lags = append(lags, i*so.S)
	}
	if len(lags) == 0 {
		return params
	}

	coef, ok := lagRegression(s.w, lags, mean)
	if !ok {
		return params
	}
	for i := range coef {
		coef[i] = math.Max(-initCoefCap, math.Min(initCoefCap, coef[i]))
	}

	// shrink toward zero until the starting polynomials are stationary
	for attempt := 0; attempt < 10; attempt++ {
		arN := arPoly(coef[:spec.Order.P], 1)
		arS := arPoly(coef[spec.Order.P:], 1)
		if isStable(arN) && isStable(arS) {
			copy(params[:spec.Order.P], coef[:spec.Order.P])
			copy(params[spec.Order.P+spec.Order.Q:spec.Order.P+spec.Order.Q+so.P], coef[spec.Order.P:])
			return params
		}
		floats.Scale(0.5, coef)
	}
	return params
}

// lagRegression fits w_t - mean on the requested lags.
func lagRegression(w []float64, lags []int, mean float64) ([]float64, bool) {
	reg, err := NewLagRegression(lags, mean)
	if err != nil {
		return nil, false
	}
	if err := reg.Fit(w); err != nil {
		return nil, false
	}
	return reg.Coef(), true
}

// Forecast produces steps ahead mean forecasts of the original series with (1-alpha)
// intervals from the psi weight expansion of the full model including differencing.
func (s *SARIMA) Forecast(steps int, alpha float64) (*Prediction, error) {
	if !s.fitted {
		return nil, ErrUnfitted
	}
	if steps < 1 {
		return nil, fmt.Errorf("got %d steps, %w", steps, ErrInvalidHorizon)
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("got alpha %g, %w", alpha, ErrInvalidAlpha)
	}

	nw := len(s.w)
	w := make([]float64, nw+steps)
	copy(w, s.w)
	e := make([]float64, nw+steps)
	copy(e, s.resid)

	for t := nw; t < nw+steps; t++ {
		v := s.mu
		for i := 1; i < len(s.ar); i++ {
			v -= s.ar[i] * (w[t-i] - s.mu)
		}
		for j := 1; j < len(s.ma) && j <= t; j++ {
			v += s.ma[j] * e[t-j]
		}
		w[t] = v
	}

	// undo differencing: y_t = w_t - sum_{k>=1} delta_k y_{t-k}
	ny := len(s.y)
	y := make([]float64, ny+steps)
	copy(y, s.y)
	lag := len(s.delta) - 1
	for h := 0; h < steps; h++ {
		t := ny + h
		v := w[nw+h]
		for k := 1; k <= lag; k++ {
			v -= s.delta[k] * y[t-k]
		}
		y[t] = v
	}

	psi := psiWeights(s.ma, polyMul(s.ar, s.delta), steps)
	z := distuv.UnitNormal.Quantile(1 - alpha/2)

	pred := &Prediction{
		Mean:   make([]float64, steps),
		Lower:  make([]float64, steps),
		Upper:  make([]float64, steps),
		StdErr: make([]float64, steps),
		Alpha:  alpha,
	}
	var cum float64
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		se := math.Sqrt(s.sigma2 * cum)
		mean := y[ny+h]
		if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(se) || math.IsInf(se, 0) {
			return nil, fmt.Errorf("%s forecast step %d, %w", s.opt.Spec, h+1, ErrNonFinite)
		}
		pred.Mean[h] = mean
		pred.StdErr[h] = se
		pred.Lower[h] = mean - z*se
		pred.Upper[h] = mean + z*se
	}
	return pred, nil
}

// FittedValues returns one step ahead in-sample predictions aligned with the original
// series. Observations without a complete history are NaN.
func (s *SARIMA) FittedValues() []float64 {
	if !s.fitted {
		return nil
	}
	out := make([]float64, len(s.y))
	lag := len(s.delta) - 1
	start := len(s.ar) - 1
	for i := range out {
		wi := i - lag
		if wi < start {
			out[i] = math.NaN()
			continue
		}
		out[i] = s.y[i] - s.resid[wi]
	}
	return out
}

func (s *SARIMA) LogLikelihood() float64 {
	return s.loglik
}

// Score returns the requested information criterion. The variance counts as a parameter.
func (s *SARIMA) Score(c Criterion) float64 {
	if !s.fitted {
		return math.Inf(1)
	}
	k := float64(s.numParams() + 1)
	n := float64(s.nEff)
	aic := -2*s.loglik + 2*k
	switch c {
	case CriterionAICc:
		return aic + 2*k*(k+1)/(n-k-1)
	case CriterionBIC:
		return -2*s.loglik + k*math.Log(n)
	default:
		return aic
	}
}

func (s *SARIMA) AIC() float64 {
	return s.Score(CriterionAIC)
}

// Params returns phi, theta, seasonal phi, seasonal theta and the mean when estimated.
func (s *SARIMA) Params() []float64 {
	p := make([]float64, len(s.params))
	copy(p, s.params)
	return p
}

func (s *SARIMA) Sigma2() float64 {
	return s.sigma2
}

// NumObs is the number of residuals contributing to the likelihood
func (s *SARIMA) NumObs() int {
	return s.nEff
}
