package mail

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"label": statusLabel,
}).ParseFS(templateFS, "templates/*.html"))

// テンプレートに渡す値
type view struct {
	Name     string
	Order    model.Order
	ShopName string
}

func render(name string, v view) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// in_transit → In Transit
func statusLabel(s model.OrderStatus) string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
