package pipeline

type Mode int

const (
	ModeEmpty Mode = iota
	ModeImage
	ModeText
)

func (m Mode) String() string {
	switch m {
	case ModeImage:
		return "image"
	case ModeText:
		return "text"
	default:
		return "empty"
	}
}

// Input carries an inscription image or pre-extracted text. The image wins
// when both are set. Text is taken verbatim, so whitespace-only text is
// still text; only an absent value is empty.
type Input struct {
	Image []byte
	Text  string
}

func ImageInput(b []byte) Input { return Input{Image: b} }
func TextInput(s string) Input  { return Input{Text: s} }

func (in Input) Mode() Mode {
	switch {
	case len(in.Image) > 0:
		return ModeImage
	case in.Text != "":
		return ModeText
	default:
		return ModeEmpty
	}
}
