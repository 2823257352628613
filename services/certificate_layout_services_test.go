package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedWidth(text string, bold bool, size float64) float64 {
	return float64(len(text)) * 10
}

func TestFixTextAnchor(t *testing.T) {
	assert.Equal(t, "middle", FixTextAnchor("center"))
	assert.Equal(t, "end", FixTextAnchor("right"))
	assert.Equal(t, "start", FixTextAnchor("left"))
	assert.Equal(t, "start", FixTextAnchor(""))
	assert.Equal(t, "start", FixTextAnchor("justify"))
}

func TestNormalizeConfiguration(t *testing.T) {
	raw := []byte(`{
		"canvas": {"width": 842, "height": 595},
		"elements": [
			{"id": "a", "type": "static_text", "content": "Sijil", "style": {"align": "center"}, "layer": 2},
			{"id": "b", "type": "dynamic_text", "placeholder": "{{recipient_name}}", "style": {"align": "right"}},
			{"id": "c", "type": "dynamic_text", "placeholder": "{{ic_number}}", "prefix": "IC: "},
			{"id": "d", "type": "image", "src": "/logo.png"}
		]
	}`)

	out, err := NormalizeConfiguration(raw)
	require.NoError(t, err)

	var doc struct {
		Canvas   map[string]interface{}   `json:"canvas"`
		Elements []map[string]interface{} `json:"elements"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	require.Len(t, doc.Elements, 4)

	assert.Equal(t, "middle", doc.Elements[0]["text_anchor"])
	assert.Equal(t, float64(2), doc.Elements[0]["layer"], "unknown properties are preserved")
	assert.NotContains(t, doc.Elements[0], "prefix")

	assert.Equal(t, "end", doc.Elements[1]["text_anchor"])
	assert.Equal(t, "", doc.Elements[1]["prefix"])

	assert.Equal(t, "start", doc.Elements[2]["text_anchor"])
	assert.Equal(t, "IC: ", doc.Elements[2]["prefix"])

	assert.NotContains(t, doc.Elements[3], "text_anchor")
	assert.Equal(t, float64(842), doc.Canvas["width"])
}

func TestParseTemplateConfigurationDefaults(t *testing.T) {
	cfg, err := ParseTemplateConfiguration(nil)
	require.NoError(t, err)
	assert.Equal(t, FlexFloat(842), cfg.Canvas.Width)
	assert.Equal(t, FlexFloat(595), cfg.Canvas.Height)
	assert.Equal(t, DefaultCalibration, *cfg.Calibration)

	cfg, err = ParseTemplateConfiguration([]byte(`{"elements":[{"type":"static_text","content":"x","style":{"font_size":"24px"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, FlexFloat(24), cfg.Elements[0].Style.FontSize)

	_, err = ParseTemplateConfiguration([]byte(`{"elements": "nope"}`))
	assert.Error(t, err)
}

func TestResolvePlaceholder(t *testing.T) {
	data := CertificateData{
		RecipientName:  "Ali bin Abu",
		ContingentName: "SMK Seri Contingent Bestari",
		IssueDate:      time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "ALI BIN ABU", ResolvePlaceholder("{{recipient_name}}", data))
	assert.Equal(t, "SMK SERI  BESTARI", ResolvePlaceholder("{{contingent_name}}", data))
	assert.Equal(t, "07/03/2025", ResolvePlaceholder("{{ issue_date }}", data))
	assert.Equal(t, "", ResolvePlaceholder("{{unknown}}", data))
}

func TestLayoutElements(t *testing.T) {
	prefix := "NAMA: "
	cfg := &TemplateConfiguration{
		Canvas:      &Canvas{Width: 842, Height: 595},
		Calibration: &Calibration{ScaleX: 1, ScaleY: 1, OffsetY: 0, BaselineRatio: 0.35},
		Elements: []TemplateElement{
			{Type: ElementStaticText, Content: "ABC", Position: Position{X: 100, Y: 100}, TextAnchor: AnchorMiddle,
				Style: &ElementStyle{FontSize: 20, Color: "#ff0000"}},
			{Type: ElementDynamicText, Placeholder: "{{recipient_name}}", Prefix: &prefix, Position: Position{X: 400, Y: 200},
				TextAnchor: AnchorEnd, Style: &ElementStyle{FontSize: 40, FontWeight: "bold", FontFamily: "Georgia"}},
			{Type: ElementDynamicText, Placeholder: "{{team_name}}", Position: Position{X: 10, Y: 10}},
			{Type: ElementImage, Position: Position{X: 0, Y: 0}},
		},
	}

	placed := LayoutElements(cfg, CertificateData{RecipientName: "ali"}, fixedWidth)
	require.Len(t, placed, 2, "empty text and images are skipped")

	first := placed[0]
	assert.Equal(t, "ABC", first.Text)
	assert.InDelta(t, 100-15, first.X, 0.001)
	assert.InDelta(t, 100+20*0.35, first.Y, 0.001)
	assert.Equal(t, RGB{R: 255}, first.Color)
	assert.False(t, first.Bold)

	second := placed[1]
	assert.Equal(t, "NAMA: ALI", second.Text)
	assert.InDelta(t, 400-90, second.X, 0.001)
	// baseline + georgia offset, raised for large sizes
	assert.InDelta(t, 200+40*0.35+40*0.05-40*0.02, second.Y, 0.001)
	assert.True(t, second.Bold)
}

func TestLayoutElementsCalibration(t *testing.T) {
	cfg := &TemplateConfiguration{
		Canvas:      &Canvas{Width: 842, Height: 595},
		Calibration: &Calibration{ScaleX: 2, ScaleY: 0.5, OffsetY: 10, BaselineRatio: 0},
		Elements: []TemplateElement{
			{Type: ElementStaticText, Content: "x", Position: Position{X: 50, Y: 100},
				Style: &ElementStyle{FontSize: 12, FontFamily: "Times New Roman", Align: "left"}},
		},
	}

	placed := LayoutElements(cfg, CertificateData{}, fixedWidth)
	require.Len(t, placed, 1)
	assert.InDelta(t, 100, placed[0].X, 0.001)
	assert.InDelta(t, 50+10+12*0.03, placed[0].Y, 0.001)
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, RGB{R: 0x12, G: 0x34, B: 0x56}, ParseHexColor("#123456"))
	assert.Equal(t, RGB{}, ParseHexColor("red"))
	assert.Equal(t, RGB{}, ParseHexColor("#fff"))
}

func TestCertificateFileName(t *testing.T) {
	assert.Equal(t, "Sijil_Penyertaan_Ali_bin_Abu_CERT-1.pdf", CertificateFileName("Sijil Penyertaan", "Ali bin Abu", "CERT-1"))
}
