package report

// portfolioSummaryTemplate is the printable portfolio summary sheet.
// Rendered through the printing template engine, so the formatMoney,
// formatPercent and formatDate helpers are available.
const portfolioSummaryTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{ .Title }}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1a1a1a; margin: 0; }
  h1 { font-size: 18px; margin: 0 0 2px 0; }
  .subtitle { color: #666; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
  th { text-align: left; border-bottom: 2px solid #1a1a1a; padding: 6px 8px; font-size: 11px; text-transform: uppercase; }
  td { border-bottom: 1px solid #ddd; padding: 6px 8px; }
  td.num, th.num { text-align: right; }
  .section { font-size: 14px; font-weight: bold; margin: 18px 0 6px 0; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
<div class="subtitle">As of {{ formatDate .Summary.AsOf }}{{ if .Period }} &middot; Servicing period {{ .Period }}{{ end }}</div>

<div class="section">Portfolio</div>
<table>
  <tr><th>Metric</th><th class="num">Value</th></tr>
  <tr><td>Active assets</td><td class="num">{{ .Summary.ActiveAssets }}</td></tr>
  <tr><td>Liquidated assets</td><td class="num">{{ .Summary.LiquidatedAssets }}</td></tr>
  <tr><td>Sold assets</td><td class="num">{{ .Summary.SoldAssets }}</td></tr>
  <tr><td>Total UPB</td><td class="num">{{ formatMoney .Summary.TotalUPB }}</td></tr>
  <tr><td>Average UPB</td><td class="num">{{ formatMoney .Summary.AvgUPB }}</td></tr>
  <tr><td>Total as-is value</td><td class="num">{{ formatMoney .Summary.TotalAsIsValue }}</td></tr>
  <tr><td>Weighted note rate</td><td class="num">{{ formatPercent .Summary.WeightedRate 2 }}</td></tr>
</table>

{{ if .Delinquency }}
<div class="section">Delinquency distribution{{ if .Delinquency.Period }} ({{ .Delinquency.Period }}){{ end }}</div>
<table>
  <tr><th>Bucket</th><th class="num">Loans</th><th class="num">UPB</th><th class="num">% of UPB</th></tr>
  {{ range .Delinquency.Bands }}
  <tr>
    <td>{{ .Bucket }}</td>
    <td class="num">{{ .LoanCount }}</td>
    <td class="num">{{ formatMoney .TotalUPB }}</td>
    <td class="num">{{ formatPercent .PctOfUPB 1 }}</td>
  </tr>
  {{ end }}
</table>
{{ end }}

<div class="subtitle">Generated {{ formatDateTime .GeneratedAt }}</div>
</body>
</html>`
