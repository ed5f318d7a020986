package chart

import (
	"strconv"
)

// Table flattens a spec into rows for CSV export. The first row is the
// header.
func (s Spec) Table() [][]string {
	switch s.Kind {
	case Scatter, Line:
		rows := [][]string{{"series", s.axisName(s.X, "x"), s.axisName(s.Y, "y")}}
		for _, sr := range s.Series {
			for i := range sr.X {
				rows = append(rows, []string{sr.Name, num(sr.X[i]), num(sr.Y[i])})
			}
		}
		return rows
	case Bar:
		rows := [][]string{{"series", "label", "value"}}
		for _, sr := range s.Series {
			for i := range sr.Labels {
				rows = append(rows, []string{sr.Name, sr.Labels[i], num(sr.Values[i])})
			}
		}
		return rows
	case Histogram:
		rows := [][]string{{"series", "bin_start", "bin_end", "count"}}
		for _, sr := range s.Series {
			for i, c := range sr.Values {
				rows = append(rows, []string{sr.Name, num(s.Edges[i]), num(s.Edges[i+1]), num(c)})
			}
		}
		return rows
	case Box:
		rows := [][]string{{"series", "n", "min", "q1", "median", "q3", "max"}}
		for _, sr := range s.Series {
			if sr.Stats == nil {
				continue
			}
			st := sr.Stats
			rows = append(rows, []string{
				sr.Name, strconv.Itoa(len(sr.Values)),
				num(st.Min), num(st.Q1), num(st.Median), num(st.Q3), num(st.Max),
			})
		}
		return rows
	case Matrix:
		rows := [][]string{append([]string{"series"}, s.Dimensions...)}
		for _, sr := range s.Series {
			if len(sr.Dims) == 0 {
				continue
			}
			for i := range sr.Dims[0] {
				row := []string{sr.Name}
				for _, d := range sr.Dims {
					row = append(row, num(d[i]))
				}
				rows = append(rows, row)
			}
		}
		return rows
	case Choropleth:
		rows := [][]string{{"location", "name", s.valueName()}}
		for _, sr := range s.Series {
			for i := range sr.Labels {
				hover := ""
				if i < len(sr.Hover) {
					hover = sr.Hover[i]
				}
				rows = append(rows, []string{sr.Labels[i], hover, num(sr.Values[i])})
			}
		}
		return rows
	default:
		return nil
	}
}

func (s Spec) axisName(a Axis, fallback string) string {
	if a.Title != "" {
		return a.Title
	}
	return fallback
}

func (s Spec) valueName() string {
	if s.ValueLabel != "" {
		return s.ValueLabel
	}
	return "value"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
