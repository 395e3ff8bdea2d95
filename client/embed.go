// Package client holds the embedded browser assets.
//
// toast.js is the thin client: it speaks the binary frame protocol over a
// WebSocket and renders toast containers into the page. index.html is the
// demo page served at "/".
package client

import _ "embed"

// ToastJS is the embedded thin client, served at "/client.js".
//
//go:embed toast.js
var ToastJS []byte

// IndexHTML is the embedded demo page, served at "/".
//
//go:embed index.html
var IndexHTML []byte
