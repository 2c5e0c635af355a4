// Package web holds the page served at the root of the monitor.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sarchlab/packetgraph/logging"
)

// DevEnv names the variable that makes the monitor read the page from the
// source tree, so that edits show up without a rebuild.
const DevEnv = "PACKETGRAPH_MONITOR_DEV"

//go:embed dist/*
var dist embed.FS

// GetAssets returns the file system the monitor serves at "/".
func GetAssets() http.FileSystem {
	if devMode() {
		if _, src, _, ok := runtime.Caller(0); ok {
			dir := filepath.Join(filepath.Dir(src), "dist")

			logging.Get(logging.Monitor).Info("serving the web page from disk",
				"path", dir)

			return http.Dir(dir)
		}
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

func devMode() bool {
	on, err := strconv.ParseBool(os.Getenv(DevEnv))
	return err == nil && on
}
