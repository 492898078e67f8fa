package handlers

import (
	"html/template"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
)

const DashboardTemplateName = "dashboard.html"

// PageData is what the dashboard template renders.
type PageData struct {
	Dashboard        render.Dashboard
	Banner           *render.Banner
	TransactionTypes []string
	Form             models.TestTransactionInput
}

var DashboardTemplate = template.Must(template.New(DashboardTemplateName).Parse(dashboardHTML))

// Every value shown on the page is formatted server-side; the script only
// swaps rendered strings into place and feeds the chart.
const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Fraud Detection Dashboard</title>
  <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.2/dist/css/bootstrap.min.css" rel="stylesheet" />
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.0/dist/chart.umd.min.js"></script>
  <style>
    body { background: #f4f6f9; }
    .stat-card { text-align: center; padding: 1rem; }
    .stat-card .value { font-size: 2rem; font-weight: 600; }
    .transaction-item { border-left: 4px solid #198754; padding: .5rem .75rem; margin-bottom: .5rem; background: #fff; }
    .transaction-item.fraud { border-left-color: #dc3545; background: #fff5f5; }
    .alert-item { border-bottom: 1px solid #eee; padding: .5rem 0; }
    .risk-high { color: #dc3545; font-weight: 600; }
    .risk-medium { color: #fd7e14; font-weight: 600; }
    .risk-low { color: #198754; font-weight: 600; }
    .placeholder-text { color: #6c757d; font-style: italic; }
    .stale-note { color: #fd7e14; font-size: .85rem; }
  </style>
</head>
<body>
<nav class="navbar navbar-dark bg-dark mb-4">
  <div class="container-fluid">
    <span class="navbar-brand">Fraud Detection Dashboard</span>
    <div>
      <span id="ml-status" class="badge {{.Dashboard.MLStatus.Class}}" title="{{.Dashboard.MLStatus.Error}}">{{.Dashboard.MLStatus.Label}}</span>
      <span id="alert-status" class="badge {{.Dashboard.AlertStatus.Class}}" title="{{.Dashboard.AlertStatus.Error}}">{{.Dashboard.AlertStatus.Label}}</span>
    </div>
  </div>
</nav>

<div class="container-fluid">
  <div class="row mb-4">
    <div class="col-md-3"><div class="card stat-card"><div>Total Transactions</div><div class="value" id="total-transactions">{{.Dashboard.Stats.Total}}</div></div></div>
    <div class="col-md-3"><div class="card stat-card"><div>Fraud Detected</div><div class="value text-danger" id="fraud-count">{{.Dashboard.Stats.Fraud}}</div></div></div>
    <div class="col-md-3"><div class="card stat-card"><div>Normal</div><div class="value text-success" id="normal-count">{{.Dashboard.Stats.Normal}}</div></div></div>
    <div class="col-md-3"><div class="card stat-card"><div>Fraud Rate</div><div class="value" id="fraud-rate">{{.Dashboard.Stats.FraudRate}}</div></div></div>
  </div>

  <div class="row">
    <div class="col-md-4">
      <div class="card mb-4">
        <div class="card-header">Test Transaction</div>
        <div class="card-body">
          <form id="test-form" method="post" action="/test">
            <div class="mb-2">
              <label class="form-label" for="amount">Amount ($)</label>
              <input class="form-control" type="number" step="0.01" min="0" id="amount" name="amount" value="{{.Form.Amount}}" required />
            </div>
            <div class="mb-2">
              <label class="form-label" for="hour">Hour (0-23)</label>
              <input class="form-control" type="number" min="0" max="23" id="hour" name="hour" value="{{.Form.Hour}}" required />
            </div>
            <div class="mb-2">
              <label class="form-label" for="type">Type</label>
              <select class="form-select" id="type" name="type">
                {{range .TransactionTypes}}<option value="{{.}}"{{if eq . (print $.Form.Type)}} selected{{end}}>{{.}}</option>{{end}}
              </select>
            </div>
            <div class="mb-3">
              <label class="form-label" for="day">Day of Week (0=Mon, 6=Sun)</label>
              <input class="form-control" type="number" min="0" max="6" id="day" name="day" value="{{.Form.Day}}" required />
            </div>
            <button class="btn btn-primary w-100" type="submit">Test Transaction</button>
          </form>
          <div id="test-result" class="mt-3">
            {{with .Banner}}
            <div class="alert alert-{{.Class}}">
              {{if eq .Kind "error"}}{{.Message}}{{else}}
              <strong>{{.Title}}</strong><br />
              Probability: {{.Probability}}<br />
              Risk Level: <span class="{{.RiskClass}}">{{.RiskLevel}}</span>{{end}}
            </div>
            {{end}}
          </div>
        </div>
      </div>

      <div class="card mb-4">
        <div class="card-header">Recent Alerts <span id="alerts-note" class="stale-note">{{.Dashboard.AlertsNote}}</span></div>
        <div class="card-body">
          <div id="alert-summary">{{with .Dashboard.AlertSummary}}Total {{.Total}} · <span class="risk-high">HIGH {{.High}}</span> · <span class="risk-medium">MEDIUM {{.Medium}}</span> · <span class="risk-low">LOW {{.Low}}</span>{{end}}</div>
          <div id="alerts-container">
            {{range .Dashboard.Alerts}}
            <div class="alert-item">
              <strong>{{.TransactionID}}</strong> {{.Amount}}
              <span class="{{.RiskClass}}">{{.RiskLevel}}</span> {{.Probability}}
            </div>
            {{else}}<p class="placeholder-text">{{.Dashboard.AlertsPlaceholder}}</p>{{end}}
          </div>
        </div>
      </div>
    </div>

    <div class="col-md-8">
      <div class="card mb-4">
        <div class="card-header">Fraud Rate Trend</div>
        <div class="card-body"><canvas id="fraud-chart" height="120"></canvas></div>
      </div>
      <div class="card mb-4">
        <div class="card-header">Transaction Stream</div>
        <div class="card-body" id="transaction-stream">
          {{range .Dashboard.Stream}}
          <div class="transaction-item {{.Class}}">
            <strong>{{.TransactionID}}</strong> {{.Amount}} ({{.Type}})
            <span class="{{.RiskClass}}">{{.RiskLevel}}</span> {{.Probability}}
          </div>
          {{else}}<p class="placeholder-text">{{.Dashboard.StreamPlaceholder}}</p>{{end}}
        </div>
      </div>
    </div>
  </div>
</div>

<script>
  const initial = {{.Dashboard}};
  let sessionID = initial.session_id;

  const chart = new Chart(document.getElementById('fraud-chart'), {
    type: 'line',
    data: {
      labels: initial.chart.labels,
      datasets: [{ label: initial.chart.label, data: initial.chart.data, borderColor: '#dc3545', tension: 0.3, fill: false }]
    },
    options: {
      animation: false,
      scales: { y: { min: initial.chart.y_min, max: initial.chart.y_max, ticks: { callback: v => v + initial.chart.tick_suffix } } }
    }
  });

  function el(tag, cls, text) {
    const node = document.createElement(tag);
    if (cls) node.className = cls;
    if (text !== undefined) node.textContent = text;
    return node;
  }

  function itemRow(cls, item, extra) {
    const row = el('div', cls);
    row.append(el('strong', '', item.transaction_id), ' ' + item.amount + (extra || '') + ' ',
      el('span', item.risk_class, item.risk_level), ' ' + item.probability);
    return row;
  }

  function renderList(container, items, placeholder, build) {
    container.replaceChildren();
    if (!items.length) {
      container.append(el('p', 'placeholder-text', placeholder));
      return;
    }
    items.forEach(item => container.append(build(item)));
  }

  function renderBanner(b) {
    const box = el('div', 'alert alert-' + b.class);
    if (b.kind === 'error') {
      box.textContent = b.message;
    } else {
      box.append(el('strong', '', b.title), el('br'), 'Probability: ' + b.probability, el('br'),
        'Risk Level: ', el('span', b.risk_class, b.risk_level));
    }
    document.getElementById('test-result').replaceChildren(box);
  }

  function badge(id, b) {
    const node = document.getElementById(id);
    node.className = 'badge ' + b.class;
    node.textContent = b.label;
    node.title = b.error || '';
  }

  function apply(d) {
    if (d.session_id !== sessionID) {
      sessionID = d.session_id;
      document.getElementById('test-result').replaceChildren();
    }
    badge('ml-status', d.ml_status);
    badge('alert-status', d.alert_status);
    document.getElementById('total-transactions').textContent = d.stats.total;
    document.getElementById('fraud-count').textContent = d.stats.fraud;
    document.getElementById('normal-count').textContent = d.stats.normal;
    document.getElementById('fraud-rate').textContent = d.stats.fraud_rate;

    chart.data.labels = d.chart.labels;
    chart.data.datasets[0].data = d.chart.data;
    chart.update('none');

    renderList(document.getElementById('transaction-stream'), d.stream, d.stream_placeholder,
      item => itemRow('transaction-item ' + item.class, item, ' (' + item.type + ')'));
    renderList(document.getElementById('alerts-container'), d.alerts, d.alerts_placeholder,
      item => itemRow('alert-item', item));
    document.getElementById('alerts-note').textContent = d.alerts_note || '';

    const summary = document.getElementById('alert-summary');
    summary.replaceChildren();
    if (d.alert_summary) {
      const s = d.alert_summary;
      summary.append('Total ' + s.total + ' · ', el('span', 'risk-high', 'HIGH ' + s.high), ' · ',
        el('span', 'risk-medium', 'MEDIUM ' + s.medium), ' · ', el('span', 'risk-low', 'LOW ' + s.low));
    }
  }

  document.getElementById('test-form').addEventListener('submit', async e => {
    e.preventDefault();
    const form = new FormData(e.target);
    const body = Object.fromEntries(form.entries());
    try {
      const res = await fetch('/api/v1/transactions/test', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify(body)
      });
      const out = await res.json();
      if (out.banner) renderBanner(out.banner);
    } catch (err) {
      renderBanner({ kind: 'error', class: 'danger', message: 'Error: ' + err.message });
    }
  });

  function connect() {
    const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    const ws = new WebSocket(proto + location.host + '/ws');
    ws.onmessage = msg => apply(JSON.parse(msg.data));
    ws.onclose = () => setTimeout(connect, 2000);
  }

  if ('WebSocket' in window) {
    connect();
  } else {
    setInterval(async () => apply(await (await fetch('/api/v1/state')).json()), 5000);
  }
</script>
</body>
</html>
`
