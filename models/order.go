package models

import (
	"fmt"
	"strings"
)

const (
	// maxOrder bounds every individual order component
	maxOrder = 5
)

// Family distinguishes plain from seasonal candidates
type Family string

const (
	FamilyARIMA   Family = "ARIMA"
	FamilySARIMAX Family = "SARIMAX"
)

// Order is the non-seasonal (p,d,q) order
type Order struct {
	P int `json:"p" yaml:"p"`
	D int `json:"d" yaml:"d"`
	Q int `json:"q" yaml:"q"`
}

func (o Order) Tuple() []int {
	return []int{o.P, o.D, o.Q}
}

// SeasonalOrder is the seasonal (P,D,Q,s) order
type SeasonalOrder struct {
	P int `json:"P" yaml:"P"`
	D int `json:"D" yaml:"D"`
	Q int `json:"Q" yaml:"Q"`
	S int `json:"s" yaml:"s"`
}

func (o SeasonalOrder) Tuple() []int {
	return []int{o.P, o.D, o.Q, o.S}
}

// Spec is a single model candidate. A nil Seasonal order makes it a plain ARIMA candidate.
type Spec struct {
	Order    Order          `json:"order" yaml:"order"`
	Seasonal *SeasonalOrder `json:"seasonal_order,omitempty" yaml:"seasonal_order,omitempty"`
}

// ARIMASpec returns a non-seasonal candidate
func ARIMASpec(p, d, q int) Spec {
	return Spec{Order: Order{P: p, D: d, Q: q}}
}

// SeasonalSpec returns a seasonal candidate
func SeasonalSpec(p, d, q, sp, sd, sq, s int) Spec {
	return Spec{
		Order:    Order{P: p, D: d, Q: q},
		Seasonal: &SeasonalOrder{P: sp, D: sd, Q: sq, S: s},
	}
}

func (s Spec) Family() Family {
	if s.Seasonal == nil {
		return FamilyARIMA
	}
	return FamilySARIMAX
}

func (s Spec) IsSeasonal() bool {
	return s.Seasonal != nil
}

// String renders the candidate as ARIMA(p,d,q) or SARIMAX(p,d,q)x(P,D,Q,s).
func (s Spec) String() string {
	o := s.Order
	if s.Seasonal == nil {
		return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
	}
	so := s.Seasonal
	return fmt.Sprintf("SARIMAX(%d,%d,%d)x(%d,%d,%d,%d)", o.P, o.D, o.Q, so.P, so.D, so.Q, so.S)
}

// Validate checks that all orders are within bounds and the seasonal period can be separated
// from the non-seasonal lags.
func (s Spec) Validate() error {
	o := s.Order
	for _, v := range []int{o.P, o.D, o.Q} {
		if v < 0 || v > maxOrder {
			return fmt.Errorf("%s has order component %d outside [0,%d], %w", s, v, maxOrder, ErrInvalidOrder)
		}
	}
	if s.Seasonal == nil {
		return nil
	}
	so := s.Seasonal
	for _, v := range []int{so.P, so.D, so.Q} {
		if v < 0 || v > maxOrder {
			return fmt.Errorf("%s has seasonal component %d outside [0,%d], %w", s, v, maxOrder, ErrInvalidOrder)
		}
	}
	if so.S < 2 {
		return fmt.Errorf("%s has seasonal period %d, %w", s, so.S, ErrInvalidOrder)
	}
	if o.P >= so.S || o.Q >= so.S {
		return fmt.Errorf("%s has non-seasonal lags overlapping the seasonal period, %w", s, ErrInvalidOrder)
	}
	return nil
}

// NumCoef is the number of AR and MA coefficients estimated
func (s Spec) NumCoef() int {
	n := s.Order.P + s.Order.Q
	if s.Seasonal != nil {
		n += s.Seasonal.P + s.Seasonal.Q
	}
	return n
}

// Integration is the total differencing order d + D
func (s Spec) Integration() int {
	n := s.Order.D
	if s.Seasonal != nil {
		n += s.Seasonal.D
	}
	return n
}

// Conditioning is the number of leading observations of the original series consumed by
// differencing and the AR lags before the first residual can be computed.
func (s Spec) Conditioning() int {
	so := s.seasonalOrder()
	return s.Order.D + so.D*so.S + s.Order.P + so.P*so.S
}

func (s Spec) period() int {
	if s.Seasonal == nil {
		return 1
	}
	return s.Seasonal.S
}

func (s Spec) seasonalOrder() SeasonalOrder {
	if s.Seasonal == nil {
		return SeasonalOrder{S: 1}
	}
	return *s.Seasonal
}

// Criterion selects the information criterion used to score a fit
type Criterion string

const (
	CriterionAIC  Criterion = "aic"
	CriterionAICc Criterion = "aicc"
	CriterionBIC  Criterion = "bic"
)

// ParseCriterion maps a case-insensitive name to a Criterion
func ParseCriterion(s string) (Criterion, error) {
	switch c := Criterion(strings.ToLower(strings.TrimSpace(s))); c {
	case CriterionAIC, CriterionAICc, CriterionBIC:
		return c, nil
	case "":
		return CriterionAIC, nil
	default:
		return "", fmt.Errorf("%q, %w", s, ErrInvalidCriterion)
	}
}
