package bridge

import (
	"encoding/json"
	"fmt"

	"arcadeshell/internal/types"
)

// HintElementID is the id of the overlay element; injection is skipped when it exists
const HintElementID = "fullscreen-hint"

const hintCSS = `#fullscreen-hint {
	position: fixed;
	top: 15px;
	left: 15px;
	font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
	font-size: 14px;
	color: #00ff00;
	text-shadow: 0 0 10px #00ff00, 0 0 20px #00ff00, 0 0 30px #00ff00;
	z-index: 9999;
	pointer-events: none;
	opacity: 0.8;
}`

// CapabilityScript defines window.arcadeShell as a frozen, non-writable copy of caps. The same
// object is also published as window.electronAPI with isElectron set, for pages written against
// the Electron preload.
func CapabilityScript(caps types.Capabilities) string {
	payload, _ := json.Marshal(caps) // plain struct of string and bool, cannot fail
	legacy, _ := json.Marshal(struct {
		Platform   string `json:"platform"`
		IsElectron bool   `json:"isElectron"`
	}{caps.Platform, caps.IsShell})
	return fmt.Sprintf(`(function () {
	function define(name, value) {
		if (Object.prototype.hasOwnProperty.call(window, name)) return;
		Object.defineProperty(window, name, {
			value: Object.freeze(value),
			writable: false,
			configurable: false,
			enumerable: true
		});
	}
	define("arcadeShell", %s);
	define("electronAPI", %s);
})();`, payload, legacy)
}

// NavigateScript replaces the current document with url, leaving no history entry
func NavigateScript(url string) string {
	target, _ := json.Marshal(url)
	return fmt.Sprintf(`window.location.replace(%s);`, target)
}

// HintScript adds the fullscreen hint overlay once per document
func HintScript() string {
	css, _ := json.Marshal(hintCSS)
	return fmt.Sprintf(`(function () {
	if (!document.body || document.getElementById(%[1]q)) return;
	var style = document.createElement("style");
	style.textContent = %[2]s;
	document.head.appendChild(style);
	var hint = document.createElement("div");
	hint.id = %[1]q;
	hint.textContent = "F11 to toggle fullscreen";
	document.body.appendChild(hint);
})();`, HintElementID, css)
}

// LinkScript routes window.open and link clicks that leave the page through
// Bridge.RequestWindow. The shell has exactly one window, so an allowed URL replaces the
// current page and same-origin targets navigate in place. Backend pages have no generated
// bindings, so the request falls back to the raw IPC channel.
func LinkScript() string {
	return `(function () {
	if (window.__arcadeShellLinks) return;
	window.__arcadeShellLinks = true;

	var pending = {};
	var seq = 0;
	function post(message) {
		if (window.chrome && window.chrome.webview) {
			window.chrome.webview.postMessage(message);
			return true;
		}
		var handlers = window.webkit && window.webkit.messageHandlers;
		if (handlers && handlers.external) {
			handlers.external.postMessage(message);
			return true;
		}
		return false;
	}
	window.wails = window.wails || {};
	if (!window.wails.Callback) {
		window.wails.Callback = function (raw) {
			var m = JSON.parse(raw);
			var p = pending[m.callbackid];
			if (!p) return;
			delete pending[m.callbackid];
			if (m.error) p.reject(m.error); else p.resolve(m.result);
		};
	}

	function requestWindow(href) {
		var bound = window.go && window.go.bridge && window.go.bridge.Bridge;
		if (bound) return bound.RequestWindow(href);
		return new Promise(function (resolve, reject) {
			var id = "arcade-shell-" + (++seq);
			pending[id] = { resolve: resolve, reject: reject };
			var sent = post("C" + JSON.stringify({
				name: "bridge.Bridge.RequestWindow",
				args: [href],
				callbackID: id
			}));
			if (!sent) {
				delete pending[id];
				reject("no native channel");
			}
		});
	}

	function resolve(u) {
		try { return new URL(u, location.href); } catch (e) { return null; }
	}

	window.open = function (u) {
		var url = resolve(u);
		if (!url || url.protocol === "javascript:") return null;
		if (url.origin === location.origin) {
			location.assign(url.href);
			return null;
		}
		requestWindow(url.href).then(function (d) {
			if (d && d.action === "allow") location.assign(url.href);
		}, function () {});
		return null;
	};

	document.addEventListener("click", function (e) {
		var a = e.target && e.target.closest ? e.target.closest("a[href]") : null;
		if (!a) return;
		var url = resolve(a.getAttribute("href"));
		if (!url || url.protocol === "javascript:") return;
		if (a.target !== "_blank" && url.origin === location.origin) return;
		e.preventDefault();
		window.open(url.href);
	}, true);
})();`
}

// PageScripts returns the scripts to run after each backend page load, in order
func PageScripts(caps types.Capabilities, hint bool) []string {
	scripts := []string{CapabilityScript(caps), LinkScript()}
	if hint {
		scripts = append(scripts, HintScript())
	}
	return scripts
}
