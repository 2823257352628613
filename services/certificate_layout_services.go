package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	ElementStaticText  = "static_text"
	ElementDynamicText = "dynamic_text"
	ElementImage       = "image"

	AnchorStart  = "start"
	AnchorMiddle = "middle"
	AnchorEnd    = "end"

	DefaultCanvasWidth  = 842.0
	DefaultCanvasHeight = 595.0
)

// PaperSize is a named page size in PDF points
type PaperSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PaperSizes offered by the template editor
var PaperSizes = map[string]PaperSize{
	"A4_LANDSCAPE":     {Width: 842, Height: 595},
	"A4_PORTRAIT":      {Width: 595, Height: 842},
	"A3_LANDSCAPE":     {Width: 1191, Height: 842},
	"A3_PORTRAIT":      {Width: 842, Height: 1191},
	"LETTER_LANDSCAPE": {Width: 792, Height: 612},
	"LETTER_PORTRAIT":  {Width: 612, Height: 792},
}

// FlexFloat accepts both JSON numbers and numeric strings such as "16" or "16px"
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "px")
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

type Position struct {
	X FlexFloat `json:"x"`
	Y FlexFloat `json:"y"`
}

type ElementStyle struct {
	FontFamily string    `json:"font_family"`
	FontSize   FlexFloat `json:"font_size"`
	FontWeight string    `json:"font_weight"`
	Color      string    `json:"color"`
	Align      string    `json:"align"`
}

type TemplateElement struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Content     string        `json:"content"`
	Placeholder string        `json:"placeholder"`
	Prefix      *string       `json:"prefix"`
	Position    Position      `json:"position"`
	Style       *ElementStyle `json:"style"`
	TextAnchor  string        `json:"text_anchor"`
}

type Calibration struct {
	ScaleX        float64 `json:"scaleX"`
	ScaleY        float64 `json:"scaleY"`
	OffsetY       float64 `json:"offsetY"`
	BaselineRatio float64 `json:"baselineRatio"`
}

// DefaultCalibration is used when a template carries none
var DefaultCalibration = Calibration{ScaleX: 1, ScaleY: 1, OffsetY: 0, BaselineRatio: 0.35}

type Canvas struct {
	Width  FlexFloat `json:"width"`
	Height FlexFloat `json:"height"`
}

type TemplateConfiguration struct {
	Canvas      *Canvas           `json:"canvas"`
	Elements    []TemplateElement `json:"elements"`
	Calibration *Calibration      `json:"calibration"`
}

// ParseTemplateConfiguration decodes a stored configuration, filling canvas and calibration defaults
func ParseTemplateConfiguration(raw []byte) (*TemplateConfiguration, error) {
	cfg := &TemplateConfiguration{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("decode template configuration: %w", err)
		}
	}
	if cfg.Canvas == nil || cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		cfg.Canvas = &Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight}
	}
	if cfg.Calibration == nil {
		c := DefaultCalibration
		cfg.Calibration = &c
	}
	return cfg, nil
}

// FixTextAnchor maps an editor alignment onto an SVG style text anchor
func FixTextAnchor(align string) string {
	switch align {
	case "center":
		return AnchorMiddle
	case "right":
		return AnchorEnd
	default:
		return AnchorStart
	}
}

// NormalizeElements sets text_anchor from style.align on text elements and gives dynamic
// elements an empty prefix when missing. Unknown element properties are kept as they are.
func NormalizeElements(elements []map[string]interface{}) []map[string]interface{} {
	for _, element := range elements {
		elementType, _ := element["type"].(string)
		if elementType != ElementStaticText && elementType != ElementDynamicText {
			continue
		}

		align := ""
		if style, ok := element["style"].(map[string]interface{}); ok {
			align, _ = style["align"].(string)
		}
		element["text_anchor"] = FixTextAnchor(align)

		if elementType == ElementDynamicText {
			if _, ok := element["prefix"].(string); !ok {
				element["prefix"] = ""
			}
		}
	}
	return elements
}

// NormalizeConfiguration applies NormalizeElements to a raw configuration document
func NormalizeConfiguration(raw []byte) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return raw, nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode template configuration: %w", err)
	}

	if list, ok := doc["elements"].([]interface{}); ok {
		elements := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if element, ok := item.(map[string]interface{}); ok {
				elements = append(elements, element)
			}
		}
		NormalizeElements(elements)
	}

	return json.Marshal(doc)
}

// CertificateData carries the values available to dynamic placeholders
type CertificateData struct {
	RecipientName   string
	ICNumber        string
	ContingentName  string
	TeamName        string
	ContestName     string
	AwardTitle      string
	Position        string
	Achievement     string
	UniqueCode      string
	SerialNumber    string
	InstitutionName string
	IssueDate       time.Time
}

var (
	placeholderBraces = regexp.MustCompile(`^\{\{|\}\}$`)
	contingentWord    = regexp.MustCompile(`(?i)\bcontingent\b`)
	hexColor          = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// ResolvePlaceholder returns the upper-cased value of a {{key}}; unknown keys resolve to ""
func ResolvePlaceholder(key string, data CertificateData) string {
	cleanKey := strings.TrimSpace(placeholderBraces.ReplaceAllString(key, ""))

	issueDate := data.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	var value string
	switch cleanKey {
	case "recipient_name":
		value = data.RecipientName
	case "ic_number":
		value = data.ICNumber
	case "contingent_name":
		value = strings.TrimSpace(contingentWord.ReplaceAllString(data.ContingentName, ""))
	case "team_name":
		value = data.TeamName
	case "contest_name":
		value = data.ContestName
	case "award_title":
		value = data.AwardTitle
	case "position":
		value = data.Position
	case "achievement":
		value = data.Achievement
	case "unique_code":
		value = data.UniqueCode
	case "serial_number":
		value = data.SerialNumber
	case "institution_name":
		value = data.InstitutionName
	case "issue_date":
		value = issueDate.Format("02/01/2006")
	}
	return strings.ToUpper(value)
}

// ElementText is the text an element renders, or "" when nothing should be drawn
func ElementText(element TemplateElement, data CertificateData) string {
	switch element.Type {
	case ElementStaticText:
		return element.Content
	case ElementDynamicText:
		if element.Placeholder == "" {
			return ""
		}
		prefix := ""
		if element.Prefix != nil {
			prefix = *element.Prefix
		}
		return prefix + ResolvePlaceholder(element.Placeholder, data)
	}
	return ""
}

// RGB is a color with 0-255 channels
type RGB struct {
	R, G, B int
}

// ParseHexColor reads #rrggbb, falling back to black
func ParseHexColor(color string) RGB {
	if !hexColor.MatchString(color) {
		return RGB{}
	}
	r, _ := strconv.ParseUint(color[1:3], 16, 8)
	g, _ := strconv.ParseUint(color[3:5], 16, 8)
	b, _ := strconv.ParseUint(color[5:7], 16, 8)
	return RGB{R: int(r), G: int(g), B: int(b)}
}

// TextMeasurer returns the rendered width of text in points
type TextMeasurer func(text string, bold bool, size float64) float64

// PlacedText is a text run ready to be drawn with a top-left origin and y on the baseline
type PlacedText struct {
	Text     string
	X        float64
	Y        float64
	FontSize float64
	Bold     bool
	Color    RGB
}

// LayoutElements resolves every text element into its final position on the page
func LayoutElements(cfg *TemplateConfiguration, data CertificateData, measure TextMeasurer) []PlacedText {
	calibration := DefaultCalibration
	if cfg.Calibration != nil {
		calibration = *cfg.Calibration
	}

	placed := make([]PlacedText, 0, len(cfg.Elements))
	for _, element := range cfg.Elements {
		text := ElementText(element, data)
		if text == "" {
			continue
		}

		style := ElementStyle{}
		if element.Style != nil {
			style = *element.Style
		}
		fontSize := float64(style.FontSize)
		if fontSize <= 0 {
			fontSize = 16
		}
		bold := style.FontWeight == "bold"

		fontSpecificOffset := 0.0
		family := strings.ToLower(style.FontFamily)
		if strings.Contains(family, "georgia") {
			fontSpecificOffset = fontSize * 0.05
		} else if strings.Contains(family, "times") {
			fontSpecificOffset = fontSize * 0.03
		}

		x := float64(element.Position.X) * calibration.ScaleX
		top := float64(element.Position.Y)*calibration.ScaleY + calibration.OffsetY

		anchor := element.TextAnchor
		if anchor == "" {
			anchor = FixTextAnchor(style.Align)
		}
		switch anchor {
		case AnchorMiddle:
			x -= measure(text, bold, fontSize) / 2
		case AnchorEnd:
			x -= measure(text, bold, fontSize)
		}

		y := top + fontSize*calibration.BaselineRatio + fontSpecificOffset
		if fontSize > 30 {
			y -= fontSize * 0.02
		}

		placed = append(placed, PlacedText{
			Text:     text,
			X:        x,
			Y:        y,
			FontSize: fontSize,
			Bold:     bold,
			Color:    ParseHexColor(style.Color),
		})
	}
	return placed
}
