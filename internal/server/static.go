package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

//go:embed web
var webFiles embed.FS

// webFS serves the embedded page.
type webFS struct {
	http.FileSystem
}

// Exists implements static.ServeFileSystem.
func (w webFS) Exists(prefix, path string) bool {
	name := strings.TrimPrefix(path, prefix)
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}

	f, err := w.Open(name)
	if err != nil {
		return false
	}

	_ = f.Close()

	return true
}

func serveWeb() gin.HandlerFunc {
	sub, err := fs.Sub(webFiles, "web")
	if err != nil {
		// the embed pattern above guarantees the directory
		panic(err)
	}

	return static.Serve("/", webFS{FileSystem: http.FS(sub)})
}
