package export

import (
	"encoding/json"
	"time"

	"github.com/lumen-browser/lumen/internal/nav"
	"github.com/lumen-browser/lumen/internal/session"
)

type jsonExport struct {
	ExportedAt time.Time   `json:"exported_at"`
	SavedAt    time.Time   `json:"saved_at"`
	Groups     []jsonGroup `json:"groups"`
}

type jsonGroup struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`
	Tabs  []jsonTab `json:"tabs"`
}

type jsonTab struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Domain string `json:"domain"`
	Active bool   `json:"active,omitempty"`
}

// JSON formats a saved window as a JSON document. Blank tabs and empty
// groups are omitted.
func JSON(ls session.LastSession) (string, error) {
	out := jsonExport{
		ExportedAt: time.Now(),
		SavedAt:    time.UnixMilli(ls.SavedAt),
		Groups:     make([]jsonGroup, 0, len(ls.Groups)),
	}

	for _, g := range ls.Groups {
		group := jsonGroup{
			ID:    g.ID,
			Name:  g.Name,
			Color: g.Color,
		}
		for _, tab := range ls.Tabs {
			if tab.GroupID != g.ID || tab.URL == "" {
				continue
			}
			domain := nav.Domain(tab.URL)
			if domain == "" {
				domain = tab.URL
			}
			group.Tabs = append(group.Tabs, jsonTab{
				Title:  tab.Title,
				URL:    tab.URL,
				Domain: domain,
				Active: tab.ID == ls.ActiveID,
			})
		}
		if len(group.Tabs) == 0 {
			continue
		}
		out.Groups = append(out.Groups, group)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
