package tesseract

// DefaultLangs covers modern Tamil plus Latin numerals and annotations.
var DefaultLangs = []string{"tam", "eng"}
