package services

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"airbnb-monitor/models"
)

// Digest is one grouped notification message covering all new listings from a
// run, ready to hand to the delivery sink.
type Digest struct {
	Subject  string
	HTMLBody string
}

// sourceGroup is one source's new listings, in document order.
type sourceGroup struct {
	Label    string
	Listings []*models.Listing
}

var digestTmpl = template.Must(template.New("digest").Parse(`
<h2>New Airbnb Listings Found</h2>
<p>Found {{.Total}} new listing(s) across {{len .Groups}} search(es):</p>
<br>
{{- range .Groups}}
<h3 style="color: #ff5a5f; margin: 25px 0 15px 0;">{{.Label}} ({{len .Listings}} new)</h3>
{{- range .Listings}}
<div style="border: 1px solid #ddd; padding: 20px; margin: 15px 0; border-radius: 8px; background-color: #fafafa;">
  <div style="display: flex; align-items: flex-start; gap: 15px;">
  {{- if .HasImage}}
    <div style="flex-shrink: 0;">
      <img src="{{.ImageURL}}" alt="Property image" style="width: 120px; height: 90px; object-fit: cover; border-radius: 6px; border: 1px solid #ddd;">
    </div>
  {{- end}}
    <div style="flex-grow: 1;">
      <h3 style="margin: 0 0 8px 0; color: #222; font-size: 16px;">{{.DisplayTitle}}</h3>
      <p style="margin: 5px 0; color: #666; font-size: 14px;"><strong>Price:</strong> <span style="color: #ff5a5f; font-weight: bold;">{{if .HasPrice}}{{.Price}}{{else}}Price not available{{end}}</span></p>
      <p style="margin: 5px 0; color: #666; font-size: 14px;"><strong>ID:</strong> {{.ID}}</p>
      <p style="margin: 10px 0 0 0;"><a href="{{.URL}}" style="color: #ff5a5f; text-decoration: none; font-weight: bold;">View Listing</a></p>
    </div>
  </div>
</div>
{{- end}}
{{- end}}
<br>
<p style="color: #666; font-size: 12px; margin-top: 30px;">
  Generated by the Airbnb listing monitor.<br>
  Monitoring timestamp: {{.Timestamp}}
</p>
`))

// BuildDigest formats new listings into a single digest message. Listings are
// grouped by source label, preserving source order and within-source order.
// Returns nil when there is nothing to report.
func BuildDigest(newListings []*models.Listing, now time.Time) (*Digest, error) {
	if len(newListings) == 0 {
		return nil, nil
	}

	byLabel := make(map[string]*sourceGroup)
	var groups []*sourceGroup
	for _, l := range newListings {
		g, ok := byLabel[l.Source]
		if !ok {
			g = &sourceGroup{Label: l.Source}
			byLabel[l.Source] = g
			groups = append(groups, g)
		}
		g.Listings = append(g.Listings, l)
	}

	var body strings.Builder
	err := digestTmpl.Execute(&body, struct {
		Total     int
		Groups    []*sourceGroup
		Timestamp string
	}{
		Total:     len(newListings),
		Groups:    groups,
		Timestamp: now.UTC().Format("2006-01-02 15:04:05 UTC"),
	})
	if err != nil {
		return nil, fmt.Errorf("digest: render body: %w", err)
	}

	return &Digest{
		Subject:  fmt.Sprintf("%d New Airbnb Listing(s) Found!", len(newListings)),
		HTMLBody: body.String(),
	}, nil
}
