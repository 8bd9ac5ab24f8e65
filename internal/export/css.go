package export

import (
	"fmt"
	"strings"

	"sprite-detector/internal/detect"
)

// CSS renders a stylesheet with one rule per frame. class is the base
// class carrying the sheet url; each frame gets "<class>-<name>".
func CSS(frames []detect.Frame, class, url string) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".%s {\n", class)
	fmt.Fprintf(&b, "  background-image: url(%q);\n", url)
	b.WriteString("  background-repeat: no-repeat;\n")
	b.WriteString("  display: inline-block;\n")
	b.WriteString("}\n")

	for _, fr := range frames {
		r := fr.Rect
		fmt.Fprintf(&b, "\n.%s-%s {\n", class, fr.Name)
		fmt.Fprintf(&b, "  width: %dpx;\n", r.W)
		fmt.Fprintf(&b, "  height: %dpx;\n", r.H)
		fmt.Fprintf(&b, "  background-position: %s %s;\n", offset(r.X), offset(r.Y))
		b.WriteString("}\n")
	}
	return b.String()
}

func offset(v int) string {
	if v == 0 {
		return "0"
	}
	return fmt.Sprintf("-%dpx", v)
}
