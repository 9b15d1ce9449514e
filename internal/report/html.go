package report

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"
)

// DefaultCallbackPath is where the live page fetches figures from.
const DefaultCallbackPath = "/api/callback/"

// Snapshot holds precomputed figures for one site option
type Snapshot struct {
	Pie     *PieFigure     `json:"pie"`
	Scatter *ScatterFigure `json:"scatter"`
}

// Page is the dashboard document. With Snapshots set the page embeds its
// figures, hides the payload selector and needs no server.
type Page struct {
	Layout       Layout
	Snapshots    map[string]Snapshot
	CallbackPath string
	Generated    time.Time
}

// RenderPage builds the dashboard HTML.
func RenderPage(p Page) (string, error) {
	if p.CallbackPath == "" {
		p.CallbackPath = DefaultCallbackPath
	}
	if p.Generated.IsZero() {
		p.Generated = time.Now()
	}

	layoutJSON, err := json.Marshal(p.Layout)
	if err != nil {
		return "", fmt.Errorf("encoding layout: %w", err)
	}
	snapshotsJSON := []byte("null")
	if p.Snapshots != nil {
		snapshotsJSON, err = json.Marshal(p.Snapshots)
		if err != nil {
			return "", fmt.Errorf("encoding snapshots: %w", err)
		}
	}
	callbackJSON, err := json.Marshal(p.CallbackPath)
	if err != nil {
		return "", fmt.Errorf("encoding callback path: %w", err)
	}

	title := html.EscapeString(p.Layout.Title)

	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>`)
	sb.WriteString(title)
	sb.WriteString(`</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<style>
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #f5f5f5; color: #333; line-height: 1.6; padding: 20px; }
.container { max-width: 1200px; margin: 0 auto; }
h1 { text-align: center; color: #503D36; font-size: 40px; margin-bottom: 10px; }
.timestamp { color: #666; text-align: center; margin-bottom: 30px; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 20px; margin-bottom: 30px; }
.card { background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.card h3 { color: #666; font-size: 0.9em; text-transform: uppercase; margin-bottom: 10px; }
.card .value { font-size: 2em; font-weight: bold; color: #2c3e50; }
.card .subtitle { color: #999; font-size: 0.9em; margin-top: 5px; }
.controls { background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 20px; }
.controls label { display: block; font-weight: 600; margin: 10px 0 6px; }
.controls select { width: 100%; padding: 8px; font-size: 1em; }
.range { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; }
.range input { width: 100%; }
.chart-container { background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 20px; }
.chart-wrapper { position: relative; height: 400px; }
.empty { display: none; color: #7f8c8d; text-align: center; padding: 10px; }
.error { color: #e74c3c; }
</style>
</head>
<body>
<div class="container">
<h1>`)
	sb.WriteString(title)
	sb.WriteString(`</h1>
<p class="timestamp">Generated: `)
	sb.WriteString(p.Generated.Format("2006-01-02 15:04:05"))
	sb.WriteString(`</p>
<div class="cards" id="summary-cards">
`)
	sb.WriteString(summaryCards(p.Layout))
	sb.WriteString(`</div>
<div class="controls">
<label for="site-dropdown">Launch site</label>
<select id="site-dropdown">
`)
	for _, opt := range p.Layout.Options {
		selected := ""
		if opt.Value == p.Layout.DefaultSite {
			selected = " selected"
		}
		fmt.Fprintf(&sb, "<option value=\"%s\"%s>%s</option>\n",
			html.EscapeString(opt.Value), selected, html.EscapeString(opt.Label))
	}
	sb.WriteString(`</select>
`)
	if p.Snapshots == nil {
		s := p.Layout.Slider
		sb.WriteString(`<label>Payload range (Kg): <span id="payload-value"></span></label>
<div class="range">
`)
		fmt.Fprintf(&sb, "<input type=\"range\" id=\"payload-low\" min=\"%g\" max=\"%g\" step=\"any\" value=\"%g\" list=\"payload-marks\">\n", s.Min, s.Max, s.Value[0])
		fmt.Fprintf(&sb, "<input type=\"range\" id=\"payload-high\" min=\"%g\" max=\"%g\" step=\"any\" value=\"%g\" list=\"payload-marks\">\n", s.Min, s.Max, s.Value[1])
		sb.WriteString(`</div>
<datalist id="payload-marks">
`)
		for _, m := range s.Marks {
			fmt.Fprintf(&sb, "<option value=\"%g\" label=\"%s\"></option>\n", m.Value, html.EscapeString(m.Label))
		}
		sb.WriteString(`</datalist>
`)
	}
	sb.WriteString(`<p class="error" id="error"></p>
</div>
<div class="chart-container">
<div class="chart-wrapper"><canvas id="success-pie-chart"></canvas></div>
<p class="empty" id="success-pie-chart-empty">No launches match the selection.</p>
</div>
<div class="chart-container">
<div class="chart-wrapper"><canvas id="success-payload-scatter-chart"></canvas></div>
<p class="empty" id="success-payload-scatter-chart-empty">No launches match the selection.</p>
</div>
</div>
<script>
`)
	fmt.Fprintf(&sb, "const layout = %s;\n", layoutJSON)
	fmt.Fprintf(&sb, "const snapshots = %s;\n", snapshotsJSON)
	fmt.Fprintf(&sb, "const callbackPath = %s;\n", callbackJSON)
	sb.WriteString(dashboardScript)
	sb.WriteString(`</script>
</body>
</html>
`)

	return sb.String(), nil
}

func summaryCards(l Layout) string {
	var sb strings.Builder
	for _, s := range l.Summaries {
		fmt.Fprintf(&sb, "<div class=\"card\" data-site=\"%s\">\n<h3>%s</h3>\n", html.EscapeString(s.Site), html.EscapeString(s.Site))
		fmt.Fprintf(&sb, "<div class=\"value\">%.1f%%</div>\n", s.SuccessRate)
		fmt.Fprintf(&sb, "<div class=\"subtitle\">%d launches, %d successful, avg payload %.0f kg</div>\n</div>\n",
			s.Launches, s.Successes, s.AvgPayload)
	}
	return sb.String()
}

const dashboardScript = `const palette = ['#ff6b35', '#3498db', '#27ae60', '#9b59b6', '#e74c3c', '#f39c12', '#1abc9c', '#34495e', '#d35400', '#7f8c8d'];
const charts = {};
const siteSelect = document.getElementById('site-dropdown');
const lowInput = document.getElementById('payload-low');
const highInput = document.getElementById('payload-high');

function snap(v) {
    const s = layout.slider;
    if (v <= s.min) { return s.min; }
    if (v >= s.max) { return s.max; }
    return Math.min(s.max, Math.max(s.min, Math.round(v / s.step) * s.step));
}

function radius(size, max) {
    return max > 0 ? 4 + 16 * size / max : 6;
}

function showEmpty(id, empty) {
    document.getElementById(id + '-empty').style.display = empty ? 'block' : 'none';
}

function draw(id, config) {
    if (charts[id]) { charts[id].destroy(); }
    charts[id] = new Chart(document.getElementById(id), config);
}

function drawPie(fig) {
    showEmpty('success-pie-chart', fig.total === 0);
    draw('success-pie-chart', {
        type: 'pie',
        data: {
            labels: fig.labels,
            datasets: [{ data: fig.values, backgroundColor: fig.labels.map((_, i) => palette[i % palette.length]) }]
        },
        options: {
            responsive: true,
            maintainAspectRatio: false,
            plugins: { title: { display: true, text: fig.title }, legend: { position: 'bottom' } }
        }
    });
}

function pointLabel(ctx) {
    const p = ctx.raw;
    const lines = [p.booster + ' @ ' + p.site + ': ' + p.x + ' kg, class ' + p.y];
    if (p.flight) { lines.push('Flight ' + p.flight); }
    if (p.outcome) { lines.push('Mission: ' + p.outcome); }
    return lines;
}

function drawScatter(fig) {
    showEmpty('success-payload-scatter-chart', fig.count === 0);
    const datasets = fig.series.map((s, i) => ({
        label: s.name,
        backgroundColor: palette[i % palette.length] + 'b3',
        data: s.points.map(p => ({ x: p.x, y: p.y, r: radius(p.size, fig.max_size), site: p.site, booster: p.booster_version, flight: p.flight_number, outcome: p.mission_outcome }))
    }));
    draw('success-payload-scatter-chart', {
        type: 'bubble',
        data: { datasets: datasets },
        options: {
            responsive: true,
            maintainAspectRatio: false,
            plugins: {
                title: { display: true, text: fig.title },
                legend: { position: 'right' },
                tooltip: { callbacks: { label: pointLabel } }
            },
            scales: {
                x: { title: { display: true, text: fig.x_label } },
                y: { min: -0.5, max: 1.5, ticks: { stepSize: 1 }, title: { display: true, text: fig.y_label } }
            }
        }
    });
}

async function fetchFigure(output, params) {
    const resp = await fetch(callbackPath + output + '?' + params.toString());
    if (!resp.ok) { throw new Error(output + ': ' + (await resp.text())); }
    return resp.json();
}

async function refresh() {
    const site = siteSelect.value;
    document.getElementById('error').textContent = '';
    if (snapshots) {
        const shot = snapshots[site];
        drawPie(shot.pie);
        drawScatter(shot.scatter);
        return;
    }
    let low = snap(Number(lowInput.value));
    let high = snap(Number(highInput.value));
    if (low > high) { [low, high] = [high, low]; }
    lowInput.value = low;
    highInput.value = high;
    document.getElementById('payload-value').textContent = low + ' kg to ' + high + ' kg';
    const params = new URLSearchParams({ site: site, low: String(low), high: String(high) });
    try {
        const figs = await Promise.all([fetchFigure('success-pie-chart', params), fetchFigure('success-payload-scatter-chart', params)]);
        drawPie(figs[0]);
        drawScatter(figs[1]);
    } catch (err) {
        document.getElementById('error').textContent = err.message;
    }
}

siteSelect.addEventListener('change', refresh);
if (lowInput) { lowInput.addEventListener('change', refresh); }
if (highInput) { highInput.addEventListener('change', refresh); }
refresh();
`
