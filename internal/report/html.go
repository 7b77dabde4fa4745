package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/goldlab/assay-api/internal/config"
	"github.com/goldlab/assay-api/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer writes printable HTML documents headed with the shop details.
// The shop section can be swapped at runtime when the config file changes.
type Renderer struct {
	mu   sync.RWMutex
	shop config.ShopConfig
	tmpl map[string]*template.Template
}

func NewRenderer(shop *config.ShopConfig) (*Renderer, error) {
	r := &Renderer{tmpl: make(map[string]*template.Template)}
	r.SetShop(shop)

	for _, name := range []string{"receipt", "skin_test", "statement"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("template.ParseFS %s -> %w", name, err)
		}
		r.tmpl[name] = t
	}

	return r, nil
}

func (r *Renderer) SetShop(shop *config.ShopConfig) {
	if shop == nil {
		return
	}

	r.mu.Lock()
	r.shop = *shop
	r.mu.Unlock()
}

func (r *Renderer) Shop() config.ShopConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.shop
}

func (r *Renderer) execute(w io.Writer, name string, data map[string]any) error {
	data["Shop"] = r.Shop()

	if err := r.tmpl[name].ExecuteTemplate(w, name+".html", data); err != nil {
		return fmt.Errorf("execute %s -> %w", name, err)
	}

	return nil
}

func (r *Renderer) Receipt(w io.Writer, token domain.Token) error {
	return r.execute(w, "receipt", map[string]any{
		"Title": "Receipt " + token.TokenNo,
		"Token": token,
		"Words": AmountInWords(token.Amount),
	})
}

func (r *Renderer) SkinTestReport(w io.Writer, test domain.SkinTest) error {
	return r.execute(w, "skin_test", map[string]any{
		"Title": "Skin Test Report " + test.TokenNo,
		"Test":  test,
	})
}

func (r *Renderer) Statement(w io.Writer, st domain.Statement) error {
	return r.execute(w, "statement", map[string]any{
		"Title":     "Statement " + st.Entry.Code,
		"Statement": st,
		"From":      st.From.Format(domain.DateLayout),
		"To":        st.To.Format(domain.DateLayout),
		"Words":     AmountInWords(st.Unpaid),
	})
}
