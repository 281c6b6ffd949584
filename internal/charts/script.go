package charts

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// frameInterval is the delay between animation frames, in milliseconds.
const frameInterval = 800

// script wraps body in a function that has the chart's echarts instance in
// scope as `chart`. It runs right after the initial setOption.
func script(kind, body string) string {
	return fmt.Sprintf(`(function () {
	var chart = echarts.getInstanceByDom(document.getElementById(%q));
	if (!chart) { return; }
	%s
})();`, chartID(kind), body)
}

// mergeOption merges option into the chart's current option.
func mergeOption(kind string, option any) (string, error) {
	b, err := json.Marshal(option)
	if err != nil {
		return "", err
	}
	return script(kind, "chart.setOption("+string(b)+");"), nil
}

// animate cycles the chart through frames, each merged as an option. A
// single frame is applied once.
func animate(kind string, frames []any) (string, error) {
	b, err := json.Marshal(frames)
	if err != nil {
		return "", err
	}
	var body strings.Builder
	fmt.Fprintf(&body, "var frames = %s;\n", b)
	body.WriteString("\tvar i = 0;\n\tchart.setOption(frames[0]);\n")
	if len(frames) > 1 {
		fmt.Fprintf(&body, "\tsetInterval(function () { i = (i + 1) %% frames.length; chart.setOption(frames[i]); }, %d);", frameInterval)
	}
	return script(kind, body.String()), nil
}

// seriesLabels are the per-point label texts of one series.
type seriesLabels struct {
	Texts    []string `json:"texts"`
	FontSize int      `json:"fontSize,omitempty"`
}

// labelTexts installs a formatter on every series listed in labels that
// shows the text of each data point. Other series keep their labels.
func labelTexts(kind string, labels map[int]seriesLabels) (string, error) {
	b, err := json.Marshal(labels)
	if err != nil {
		return "", err
	}
	body := fmt.Sprintf(`var labels = %s;
	var series = chart.getOption().series.map(function (s, idx) {
		var l = labels[idx];
		if (!l) { return {}; }
		var label = {show: true, formatter: function (p) { return l.texts[p.dataIndex] || ""; }};
		if (l.fontSize) { label.fontSize = l.fontSize; }
		return {label: label};
	});
	chart.setOption({series: series});`, b)
	return script(kind, body), nil
}
