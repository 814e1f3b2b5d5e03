package render

// ClientScript keeps the toast region in sync with the server.
//
// Every server message is {event, toast, html}: "sync" replaces the
// region, "shown" appends, "hidden" and "action" replace the toast in
// place, "closed" and "removed" delete it. Clicks on the close and action
// buttons are sent back as {op, id}.
const ClientScript = `(function () {
  var el = document.currentScript;
  var path = (el && el.dataset.socket) || "/ws";
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws;
  var retry = 500;

  function region() {
    return document.getElementById("` + RegionID + `");
  }

  function find(id) {
    return document.querySelector('[data-toast-id="' + CSS.escape(id) + '"]');
  }

  function fragment(html) {
    var t = document.createElement("template");
    t.innerHTML = html;
    return t.content.firstElementChild;
  }

  function apply(msg) {
    var r = region();
    if (!r) return;
    if (msg.event === "sync") {
      r.outerHTML = msg.html;
      return;
    }
    var node = find(msg.toast.id);
    switch (msg.event) {
      case "shown":
        if (!node) r.appendChild(fragment(msg.html));
        break;
      case "hidden":
      case "action":
        if (node) node.replaceWith(fragment(msg.html));
        break;
      case "closed":
      case "removed":
        if (node) node.remove();
        break;
    }
  }

  function send(op, id) {
    if (ws && ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify({ op: op, id: id }));
    }
  }

  document.addEventListener("click", function (e) {
    var b = e.target.closest("[data-toast-dismiss],[data-toast-action]");
    if (!b) return;
    if (b.dataset.toastDismiss) send("dismiss", b.dataset.toastDismiss);
    else send("action", b.dataset.toastAction);
  });

  function connect() {
    ws = new WebSocket(proto + "//" + location.host + path);
    ws.onopen = function () { retry = 500; };
    ws.onmessage = function (e) { apply(JSON.parse(e.data)); };
    ws.onclose = function () {
      setTimeout(connect, retry);
      retry = Math.min(retry * 2, 10000);
    };
  }

  connect();
})();
`
