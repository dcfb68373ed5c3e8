// Package web holds the server-rendered templates of the public site.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates templates/petitions/_signatures.html
var templates embed.FS

// NewEngine builds the fiber view engine over the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("lower", strings.ToLower)
	engine.AddFunc("percent", func(n int) int {
		if n > 100 {
			return 100
		}
		return n
	})
	return engine
}
