// Package server exposes a toast.Host over HTTP and WebSocket.
//
// Routes:
//
//	GET    /                          page with the current toast region
//	GET    /healthz                   liveness probe
//	GET    /metrics                   Prometheus metrics
//	GET    /_toastd/client.js         thin client script
//	GET    /api/toasts                list mounted toasts
//	POST   /api/toasts                show a toast, returns {"id": ...}
//	GET    /api/toasts/{id}           one toast
//	POST   /api/toasts/{id}/dismiss   start the exit of a toast
//	POST   /api/toasts/{id}/action    fire a toast's action
//	DELETE /api/toasts/{id}           tear a toast down immediately
//	GET    /ws                        lifecycle event stream
//
// A WebSocket client first receives a "sync" message holding the whole
// region, then one message per lifecycle event:
//
//	{"event":"hidden","toast":{...},"html":"<div ...>","at":"..."}
//
// Clients send {"op":"dismiss","id":"..."} or {"op":"action","id":"..."}.
// A client whose send buffer fills up is disconnected.
package server
