package forecast

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bfp-analytics/go-firecast/forecast/util"
	"github.com/bfp-analytics/go-firecast/models"
)

// Summary describes how a single area was modeled. It is serialized into the report metadata.
type Summary struct {
	ModelType      string             `json:"model_type"`
	Model          string             `json:"model"`
	Order          []int              `json:"order,omitempty"`
	SeasonalOrder  []int              `json:"seasonal_order,omitempty"`
	Criterion      string             `json:"criterion,omitempty"`
	Score          *float64           `json:"score,omitempty"`
	ValidationRMSE *float64           `json:"validation_rmse,omitempty"`
	MAE            *float64           `json:"mae,omitempty"`
	RMSE           *float64           `json:"rmse,omitempty"`
	Mean           *float64           `json:"fallback_mean,omitempty"`
	Std            *float64           `json:"fallback_std,omitempty"`
	Fallback       string             `json:"fallback,omitempty"`
	Error          string             `json:"error,omitempty"`
	Transform      string             `json:"transform,omitempty"`
	Policy         string             `json:"policy,omitempty"`
	Months         int                `json:"history_months"`
	NonZeroMonths  int                `json:"nonzero_months"`
	Candidates     []CandidateSummary `json:"candidates,omitempty"`
}

// CandidateSummary records the outcome of one candidate fit
type CandidateSummary struct {
	Model string   `json:"model"`
	Score *float64 `json:"score,omitempty"`
	Error string   `json:"error,omitempty"`
}

func (s *Summary) setWinner(out FitOutcome, criterion models.Criterion) {
	s.ModelType = string(out.Spec.Family())
	s.Model = out.Spec.String()
	s.Order = out.Spec.Order.Tuple()
	if out.Spec.Seasonal != nil {
		s.SeasonalOrder = out.Spec.Seasonal.Tuple()
	}
	s.Criterion = string(criterion)
	s.Score = floatPtr(out.Score)
}

func (s *Summary) addCandidates(outcomes []FitOutcome) {
	for _, out := range outcomes {
		cs := CandidateSummary{Model: out.Spec.String()}
		if out.Fitted() {
			cs.Score = floatPtr(out.Score)
		} else if out.Err != nil {
			cs.Error = out.Err.Error()
		}
		s.Candidates = append(s.Candidates, cs)
	}
}

// Round rounds every reported metric to the given decimals
func (s *Summary) Round(precision int) {
	for _, v := range []*float64{s.Score, s.ValidationRMSE, s.MAE, s.RMSE, s.Mean, s.Std} {
		if v != nil {
			*v = util.Round(*v, precision)
		}
	}
	for _, c := range s.Candidates {
		if c.Score != nil {
			*c.Score = util.Round(*c.Score, precision)
		}
	}
}

func (s Summary) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sModel: %s\n", prefix, util.IndentExpand(indent, 0), s.Model); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sHistory: %d months, %d non-zero\n",
		prefix, util.IndentExpand(indent, 1), s.Months, s.NonZeroMonths); err != nil {
		return err
	}
	if s.Score != nil {
		if _, err := fmt.Fprintf(w, "%s%s%s: %.3f\n",
			prefix, util.IndentExpand(indent, 1), s.Criterion, *s.Score); err != nil {
			return err
		}
	}
	if s.MAE != nil && s.RMSE != nil {
		if _, err := fmt.Fprintf(w, "%s%sMAE: %.3f    RMSE: %.3f\n",
			prefix, util.IndentExpand(indent, 1), *s.MAE, *s.RMSE); err != nil {
			return err
		}
	}
	if s.ValidationRMSE != nil {
		if _, err := fmt.Fprintf(w, "%s%sValidation RMSE: %.3f\n",
			prefix, util.IndentExpand(indent, 1), *s.ValidationRMSE); err != nil {
			return err
		}
	}
	if s.Fallback != "" {
		if _, err := fmt.Fprintf(w, "%s%sFallback: %s\n", prefix, util.IndentExpand(indent, 1), s.Fallback); err != nil {
			return err
		}
	}
	if s.Error != "" {
		if _, err := fmt.Fprintf(w, "%s%sError: %s\n", prefix, util.IndentExpand(indent, 1), s.Error); err != nil {
			return err
		}
	}
	if len(s.Candidates) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s%sCandidates:\n", prefix, util.IndentExpand(indent, 1)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sModel\tScore\t\n", prefix, util.IndentExpand(indent, 2)); err != nil {
		return err
	}
	for _, c := range s.Candidates {
		score := "failed"
		if c.Score != nil {
			score = fmt.Sprintf("%.3f", *c.Score)
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t\n", prefix, util.IndentExpand(indent, 2), c.Model, score); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
