package webui

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ridership.subwaydash.org/internal/logging"
)

const defaultAssetsDir = "web"

var allowedAssetExtensions = map[string]bool{
	".html": true, ".css": true, ".js": true, ".json": true,
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".ico": true,
}

// assetsHandler serves one file of the front end from AssetsDir. Only flat
// file names with an allowed extension are served; a directory path serves
// index.html.
func (webUI *WebUI) assetsHandler(w http.ResponseWriter, r *http.Request) {
	fileName := filepath.Base(r.URL.Path)
	if strings.HasSuffix(r.URL.Path, "/") {
		fileName = "index.html"
	}

	if !allowedAssetExtensions[strings.ToLower(filepath.Ext(fileName))] {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if strings.Contains(fileName, "..") || strings.ContainsAny(fileName, `/\`) {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	root, err := filepath.Abs(webUI.assetsDir())
	if err != nil {
		http.Error(w, "Internal configuration error", http.StatusInternalServerError)
		return
	}
	absPath := filepath.Join(root, fileName)
	rel, err := filepath.Rel(root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		logging.FromContext(r.Context()).Warn("asset path escaped the assets directory", "path", absPath)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(absPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer logging.SafeCloseWithLogging(f, logging.FromContext(r.Context()), "asset_file")

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, fileName, stat.ModTime(), f)
}
