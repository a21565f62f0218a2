package firecast

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/bfp-analytics/go-firecast/forecast"
	"github.com/bfp-analytics/go-firecast/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// lineValues converts values to echart points, leaving NaN as gaps and padding the front with
// offset gaps so series of different spans share one x axis.
func lineValues(offset int, y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, offset+len(y))
	for i := 0; i < offset; i++ {
		data = append(data, opts.LineData{Value: nil})
	}
	for _, v := range y {
		if math.IsNaN(v) {
			data = append(data, opts.LineData{Value: nil})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

// LineArea generates an echart line chart of an area's history followed by its forecast mean
// and bounds.
func LineArea(area string, series *timedataset.TimeDataset, res *forecast.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    area,
				Subtitle: res.ModelUsed,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	months := make([]string, 0, series.Len()+len(res.Months))
	for _, m := range series.T {
		months = append(months, m.String())
	}
	for _, m := range res.Months {
		months = append(months, m.String())
	}

	offset := series.Len()
	line.SetXAxis(months).
		AddSeries("Actual", lineValues(0, series.Values())).
		AddSeries("Forecast", lineValues(offset, res.Predicted)).
		AddSeries("Upper", lineValues(offset, res.Upper)).
		AddSeries("Lower", lineValues(offset, res.Lower))
	return line
}

// RunWithPlot runs the pipeline and renders one chart per modeled area to w as an html page.
func (p *Pipeline) RunWithPlot(ctx context.Context, records []timedataset.Record, h Horizon, w io.Writer) (*Report, error) {
	rep, results, err := p.run(ctx, records, h)
	if err != nil {
		return nil, err
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Fire incident forecast, %s", h)
	for _, r := range results {
		if r.series == nil || r.result == nil {
			continue
		}
		page.AddCharts(LineArea(r.area, r.series, r.result))
	}
	if err := page.Render(w); err != nil {
		return nil, fmt.Errorf("unable to render forecast plot, %w", err)
	}
	return rep, nil
}
