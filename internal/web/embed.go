// Package web holds the single-page frontend served at the site root.
package web

import _ "embed"

//go:embed index.html
var IndexHTML string
