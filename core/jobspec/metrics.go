package jobspec

import (
	"encoding/json"
	"fmt"
)

// xgboostLogPattern scrapes one "#011<channel>-<metric>:<value>" pair from
// an XGBoost iteration log line
const xgboostLogPattern = `.*\[[0-9]+\].*#011%s-%s:([-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?).*`

var trainingMetrics = []struct{ channel, metric string }{
	{"train", "mae"},
	{"validation", "aucpr"},
	{"validation", "f1_binary"},
	{"validation", "mae"},
	{"validation", "logloss"},
	{"validation", "f1"},
	{"train", "accuracy"},
	{"validation", "recall"},
	{"validation", "precision"},
	{"train", "error"},
	{"validation", "auc"},
	{"train", "auc"},
	{"validation", "error"},
	{"train", "rmse"},
	{"train", "logloss"},
	{"validation", "accuracy"},
}

// TrainingMetricDefinitions returns the log-scraping definitions for every
// metric the training image can emit
func TrainingMetricDefinitions() []MetricDefinition {
	defs := make([]MetricDefinition, 0, len(trainingMetrics))
	for _, m := range trainingMetrics {
		defs = append(defs, MetricDefinition{
			Name:  fmt.Sprintf("%s:%s", m.channel, m.metric),
			Regex: fmt.Sprintf(xgboostLogPattern, m.channel, m.metric),
		})
	}
	return defs
}

func atoiField(name string, n json.Number) (int, error) {
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("field %s is not an integer: %w", name, err)
	}
	return int(v), nil
}
