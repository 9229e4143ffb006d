package domain

import "fmt"

// Advisory threshold constants. These are fixed operational literals, not
// configuration: the label set is enumerable and downstream consumers key on
// it.
const (
	heatStressMaxTempC    = 35.0 // max temperatura above this → heat-stress
	diseasePressureMeanRH = 80.0 // mean humedad_relativa above this → disease-pressure
	sprayingMaxWindKmh    = 20.0 // max velocidad_viento above this → unsuitable-for-spraying
	frostRiskMinTempC     = 0.0  // min temperatura at or below this → frost-risk
)

// Advisory label values.
const (
	AdvisoryHeatStress      = "heat-stress"
	AdvisoryDiseasePressure = "disease-pressure"
	AdvisoryNoSpraying      = "unsuitable-for-spraying"
	AdvisoryFrostRisk       = "frost-risk"
)

// Advisory is one rule firing for one observation period.
type Advisory struct {
	Timestamp string  `json:"timestamp"`
	Label     string  `json:"label"`
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Detail    string  `json:"detail"`
}

// DeriveAdvisories maps each timestamp summary through the fixed threshold
// rules. Parameters with no present readings in a period fire nothing.
func DeriveAdvisories(summaries []TimestampSummary) []Advisory {
	var advisories []Advisory
	for _, summary := range summaries {
		advisories = append(advisories, deriveForPeriod(summary)...)
	}
	return advisories
}

func deriveForPeriod(summary TimestampSummary) []Advisory {
	var out []Advisory

	if temp, ok := summary.Fields[ParamTemperature]; ok && temp.Count > 0 {
		if temp.Max > heatStressMaxTempC {
			out = append(out, Advisory{
				Timestamp: summary.Timestamp,
				Label:     AdvisoryHeatStress,
				Parameter: ParamTemperature,
				Value:     temp.Max,
				Detail:    fmt.Sprintf("max temperature %.1f°C exceeds %.0f°C", temp.Max, heatStressMaxTempC),
			})
		}
		if temp.Min <= frostRiskMinTempC {
			out = append(out, Advisory{
				Timestamp: summary.Timestamp,
				Label:     AdvisoryFrostRisk,
				Parameter: ParamTemperature,
				Value:     temp.Min,
				Detail:    fmt.Sprintf("min temperature %.1f°C at or below %.0f°C", temp.Min, frostRiskMinTempC),
			})
		}
	}

	if rh, ok := summary.Fields[ParamHumidity]; ok && rh.Count > 0 && rh.Mean > diseasePressureMeanRH {
		out = append(out, Advisory{
			Timestamp: summary.Timestamp,
			Label:     AdvisoryDiseasePressure,
			Parameter: ParamHumidity,
			Value:     rh.Mean,
			Detail:    fmt.Sprintf("mean relative humidity %.1f%% exceeds %.0f%%", rh.Mean, diseasePressureMeanRH),
		})
	}

	if wind, ok := summary.Fields[ParamWindSpeed]; ok && wind.Count > 0 && wind.Max > sprayingMaxWindKmh {
		out = append(out, Advisory{
			Timestamp: summary.Timestamp,
			Label:     AdvisoryNoSpraying,
			Parameter: ParamWindSpeed,
			Value:     wind.Max,
			Detail:    fmt.Sprintf("max wind %.1f km/h exceeds %.0f km/h", wind.Max, sprayingMaxWindKmh),
		})
	}

	return out
}
