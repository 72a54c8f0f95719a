package main

import (
	"io"
	"net/http"
)

// serveUI serves the single-page conversation view. The Wails runtime
// scripts are injected by the asset server.
func serveUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Parley</title>
<style>
  body { margin: 0; font-family: system-ui, sans-serif; background: #f4f4f6; display: flex; flex-direction: column; height: 100vh; }
  header { padding: 8px 12px; background: #1f2937; color: #fff; display: flex; gap: 6px; align-items: center; }
  header input { flex: 1; min-width: 0; padding: 4px 6px; }
  #status { padding: 6px 12px; font-size: 13px; color: #374151; background: #e5e7eb; }
  #chat { flex: 1; overflow-y: auto; padding: 12px; display: flex; flex-direction: column; gap: 8px; }
  .msg { max-width: 80%; padding: 8px 10px; border-radius: 10px; background: #fff; box-shadow: 0 1px 2px rgba(0,0,0,.1); }
  .msg.home { align-self: flex-end; background: #dbeafe; }
  .msg .label { font-size: 11px; color: #6b7280; }
  .msg .translated { font-weight: 600; margin-top: 4px; }
  #partial { min-height: 20px; padding: 0 12px; color: #6b7280; font-style: italic; }
  footer { padding: 12px; display: flex; gap: 8px; }
  #talk { flex: 1; padding: 16px; font-size: 18px; border: none; border-radius: 12px; background: #2563eb; color: #fff; }
  #talk.active { background: #dc2626; }
</style>
</head>
<body>
<header>
  <input id="key" type="password" placeholder="Speech key">
  <input id="region" placeholder="eastus">
  <button id="save">Save</button>
</header>
<div id="status">Starting...</div>
<div id="chat"></div>
<div id="partial"></div>
<footer>
  <button id="talk">Hold to talk</button>
  <button id="reset">Clear</button>
</footer>
<script>
  const api = () => window.go.main.App;
  const $ = (id) => document.getElementById(id);
  const setStatus = (text) => { if (text) $("status").textContent = text; };

  function addMessage(msg) {
    const div = document.createElement("div");
    div.className = "msg" + (msg.isHomeSide ? " home" : "");
    const label = document.createElement("div");
    label.className = "label";
    label.textContent = msg.sourceLabel + " → " + msg.targetLabel;
    const original = document.createElement("div");
    original.textContent = msg.originalText;
    const translated = document.createElement("div");
    translated.className = "translated";
    translated.textContent = msg.translatedText;
    div.append(label, original, translated);
    $("chat").append(div);
    $("chat").scrollTop = $("chat").scrollHeight;
  }

  function start() {
    runtime.EventsOn("parley:session", (e) => setStatus(e.message));
    runtime.EventsOn("parley:partial", (e) => { $("partial").textContent = e.text; });
    runtime.EventsOn("parley:message", (m) => { $("partial").textContent = ""; addMessage(m); });
    runtime.EventsOn("parley:playback", (e) => setStatus(e.message));
    runtime.EventsOn("parley:error", (e) => setStatus(e.message + (e.detail ? ": " + e.detail : "")));

    $("save").onclick = () => api().Configure($("key").value, $("region").value).catch((err) => setStatus(String(err)));
    $("reset").onclick = () => { $("chat").innerHTML = ""; api().ResetConversation(); };

    const talk = $("talk");
    const down = () => { talk.classList.add("active"); api().StartTalking().catch((err) => setStatus(String(err))); };
    const up = () => {
      if (!talk.classList.contains("active")) return;
      talk.classList.remove("active");
      api().StopTalking().catch((err) => setStatus(String(err)));
    };
    talk.addEventListener("pointerdown", down);
    talk.addEventListener("pointerup", up);
    talk.addEventListener("pointerleave", up);

    api().GetStatus().then((s) => setStatus(s.message || s.state));
  }

  window.addEventListener("load", start);
</script>
</body>
</html>
`
