package web

import "html/template"

const layoutCSS = `
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f4f6f8; color: #1f2933; }
header { background: #075e54; color: #fff; padding: 16px 32px; display: flex; justify-content: space-between; align-items: center; }
header a { color: #dcf8c6; }
main { max-width: 1100px; margin: 24px auto; padding: 0 16px; }
.card { background: #fff; border-radius: 8px; padding: 20px; margin-bottom: 20px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.drop-zone { border: 2px dashed #8aa; border-radius: 8px; padding: 32px; text-align: center; cursor: pointer; }
.drop-zone.dragover { background: #e6f4ea; border-color: #25d366; }
.file-info { margin-top: 12px; font-size: .95rem; }
.status { padding: 12px 16px; border-radius: 6px; }
.status.error { background: #fde8e8; color: #9b1c1c; }
.status.loading { background: #e8f0fe; color: #1a56db; }
.stats { display: grid; grid-template-columns: repeat(4, 1fr); gap: 16px; }
.stat .value { font-size: 1.8rem; font-weight: 600; }
.stat .label { color: #66788a; font-size: .85rem; }
.users li { display: flex; justify-content: space-between; padding: 4px 0; border-bottom: 1px solid #eef1f4; }
.emojis { display: grid; grid-template-columns: repeat(6, 1fr); gap: 12px; }
.emoji { text-align: center; }
.emoji .glyph { font-size: 1.8rem; }
.timeline { display: flex; align-items: flex-end; height: 200px; gap: 2px; overflow-x: auto; }
.timeline .bar { background: #25d366; min-width: 8px; flex: 1; }
.word-cloud span { display: inline-block; margin: 4px 8px; color: #075e54; }
textarea { width: 100%; min-height: 160px; font-family: monospace; }
pre { background: #1f2933; color: #e4e7eb; padding: 16px; border-radius: 6px; overflow-x: auto; }
button { background: #075e54; color: #fff; border: 0; border-radius: 4px; padding: 8px 18px; cursor: pointer; }
`

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Chat Analyzer</title>
<style>` + layoutCSS + `</style>
</head>
<body>
<header>
  <h1>Chat Analyzer</h1>
  <a href="/raw">Raw JSON</a>
</header>
<main>
  <section class="card">
    <form id="select-form" action="/select" method="post" enctype="multipart/form-data">
      <label id="drop-zone" class="drop-zone" for="file-input">
        Drop a WhatsApp export (.txt) here or click to choose a file
        <input id="file-input" type="file" name="chatFile" accept=".txt" hidden>
      </label>
    </form>
    {{with .Snapshot.File}}
    <div class="file-info">Selected: <strong>{{.Name}}</strong> ({{.Size}})</div>
    {{end}}
    <form id="analyze-form" action="/analyze" method="post" style="margin-top: 12px">
      <button type="submit">Analyze</button>
    </form>
  </section>

  <div id="loading" class="card status loading"{{if not .Loading}} hidden{{end}}>Analyzing chat...</div>

  {{if .Failed}}
  <div id="error" class="card status error">{{.Snapshot.Message}}</div>
  {{end}}

  {{if .HasResult}}
  <div id="results">
    <section class="card stats">
      <div class="stat"><div class="value">{{.View.TotalMessages}}</div><div class="label">Total messages</div></div>
      <div class="stat"><div class="value">{{.View.MostActiveUser}}</div><div class="label">Most active user ({{.View.MostActiveUserCount}})</div></div>
      <div class="stat"><div class="value">{{.View.TotalWords}}</div><div class="label">Total words</div></div>
      <div class="stat"><div class="value">{{.View.MediaMessages}}</div><div class="label">Media messages</div></div>
    </section>

    <section class="card">
      <h2>Most active users</h2>
      <ul class="users">
        {{range .View.Users}}<li><span>{{.Name}}</span><span>{{.Count}}</span></li>{{end}}
      </ul>
    </section>

    <section class="card">
      <h2>Top emojis</h2>
      <div class="emojis">
        {{range .View.Emojis}}<div class="emoji"><div class="glyph">{{.Key}}</div><div>{{.Count}}</div></div>{{end}}
      </div>
    </section>

    <section class="card">
      <h2>Activity timeline</h2>
      <div class="timeline">
        {{range .View.Timeline}}<div class="bar" style="height: {{.HeightStyle}}" title="{{.Title}}"></div>{{end}}
      </div>
    </section>

    <section class="card">
      <h2>Top words</h2>
      <div class="word-cloud">
        {{range .View.Words}}<span style="font-size: {{.FontSizeStyle}}">{{.Label}}</span>{{end}}
      </div>
      <p><a href="/export">Download .xlsx</a></p>
    </section>
  </div>
  {{end}}
</main>
<script>
(function () {
  var zone = document.getElementById('drop-zone');
  var input = document.getElementById('file-input');
  var selectForm = document.getElementById('select-form');

  input.addEventListener('change', function () {
    if (input.files.length > 0) { selectForm.submit(); }
  });
  zone.addEventListener('dragover', function (e) { e.preventDefault(); zone.classList.add('dragover'); });
  zone.addEventListener('dragleave', function () { zone.classList.remove('dragover'); });
  zone.addEventListener('drop', function (e) {
    e.preventDefault();
    zone.classList.remove('dragover');
    if (e.dataTransfer.files.length > 0) {
      input.files = e.dataTransfer.files;
      selectForm.submit();
    }
  });

  document.getElementById('analyze-form').addEventListener('submit', function () {
    ['error', 'results'].forEach(function (id) {
      var el = document.getElementById(id);
      if (el) { el.hidden = true; }
    });
    document.getElementById('loading').hidden = false;
  });
})();
</script>
</body>
</html>
`

const rawHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Chat Analyzer - Raw</title>
<style>` + layoutCSS + `</style>
</head>
<body>
<header>
  <h1>Chat Analyzer</h1>
  <a href="/">Dashboard</a>
</header>
<main>
  <section class="card">
    <h2>Upload file</h2>
    <form action="/raw/file" method="post" enctype="multipart/form-data">
      <input type="file" name="chatFile" accept=".txt">
      <button type="submit">Analyze file</button>
    </form>
  </section>

  <section class="card">
    <h2>Paste chat text</h2>
    <form action="/raw/text" method="post">
      <textarea name="content" placeholder="1/15/24, 10:30 - Alice: Hello!">{{.Content}}</textarea>
      <button type="submit">Analyze text</button>
    </form>
  </section>

  {{if .Failed}}
  <div id="error" class="card status error">{{.Snapshot.Message}}</div>
  {{end}}

  {{if .JSON}}
  <section class="card">
    <h2>Result</h2>
    <pre id="result">{{.JSON}}</pre>
  </section>
  {{end}}
</main>
</body>
</html>
`

var (
	dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))
	rawTmpl       = template.Must(template.New("raw").Parse(rawHTML))
)
