package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"

	"github.com/jgoulah/octousage/pkg/models"
)

const (
	cardWidth    = 360
	cardHeaderH  = 40
	cardRowH     = 28
	cardPaddingX = 24
)

type svgRow struct {
	Label string
	Value string
	Color string
	Y     int
}

type svgCard struct {
	Width    int
	Height   int
	InnerW   int
	InnerH   int
	CenterX  int
	Title    string
	Subtitle string
	TitleY   int
	RuleY    int
	ValueX   int
	PadX     int
	Rows     []svgRow
}

// xmlText escapes s for use in SVG text content and attribute values
func xmlText(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

var cardTemplate = template.Must(template.New("card").Funcs(template.FuncMap{"xml": xmlText}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
  <style>
    text { font-family: Menlo, Monaco, "DejaVu Sans Mono", monospace; font-size: 15px; fill: #c5c8c6; }
    .title { font-size: 13px; fill: #8a8a8a; }
    .range { font-style: italic; }
  </style>
  <rect x="1" y="1" width="{{.InnerW}}" height="{{.InnerH}}" rx="8" fill="#0c0c0c" stroke="rgba(255,255,255,0.35)"/>
  <circle cx="22" cy="20" r="6" fill="#ff5f57"/>
  <circle cx="42" cy="20" r="6" fill="#febc2e"/>
  <circle cx="62" cy="20" r="6" fill="#28c840"/>
  <text class="title" x="{{.CenterX}}" y="25" text-anchor="middle">{{.Title | xml}}</text>
  <text class="range" x="{{.CenterX}}" y="{{.TitleY}}" text-anchor="middle">{{.Subtitle | xml}}</text>
  <line x1="{{.PadX}}" y1="{{.RuleY}}" x2="{{.ValueX}}" y2="{{.RuleY}}" stroke="#444"/>
{{- range .Rows}}
  <text x="{{$.PadX}}" y="{{.Y}}" style="fill: {{.Color | xml}}">{{.Label | xml}}</text>
  <text x="{{$.ValueX}}" y="{{.Y}}" text-anchor="end">{{.Value | xml}}</text>
{{- end}}
</svg>
`))

// RenderSVG draws the summary as a standalone "Electricity Usage" card
func RenderSVG(s models.Summary) ([]byte, error) {
	titleY := cardHeaderH + 22
	ruleY := titleY + 12
	card := svgCard{
		Width:    cardWidth,
		Title:    "Electricity Usage",
		Subtitle: Title(s),
		TitleY:   titleY,
		RuleY:    ruleY,
		PadX:     cardPaddingX,
		ValueX:   cardWidth - cardPaddingX,
		Rows: []svgRow{
			{Label: "Daily Avg", Value: FormatKWh(s.DailyAverage), Color: Pink, Y: ruleY + cardRowH},
			{Label: "Total Usage", Value: FormatKWh(s.TotalUsage), Color: Purple, Y: ruleY + 2*cardRowH},
		},
	}
	card.Height = ruleY + 2*cardRowH + 24
	card.InnerW = card.Width - 2
	card.InnerH = card.Height - 2
	card.CenterX = card.Width / 2

	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, card); err != nil {
		return nil, fmt.Errorf("rendering svg: %w", err)
	}
	return buf.Bytes(), nil
}
