package entity

// FragmentSource records where a fragment came from.
type FragmentSource string

const (
	SourceNative FragmentSource = "native"
	SourceOCR    FragmentSource = "ocr"
)

// BoundingBox is a pixel rectangle (x0,y0) to (x1,y1) on the rendered page.
type BoundingBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// TextFragment is one recognized or extracted piece of text. Native text
// carries confidence 100 and a zero box.
type TextFragment struct {
	Text       string         `json:"text"`
	Box        BoundingBox    `json:"box"`
	Confidence float64        `json:"confidence"`
	FontSize   float64        `json:"font_size"`
	Page       int            `json:"page"`
	Source     FragmentSource `json:"source"`
}
