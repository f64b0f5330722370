package build

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// buildBlock matches one `<!-- build:name -->...<!-- endbuild -->` block
// together with the indentation in front of it.
var buildBlock = regexp.MustCompile(`(?s)([ \t]*)<!--\s*build:([\w-]+)\s*-->.*?<!--\s*endbuild\s*-->`)

// ReplaceBlocks substitutes every build block in src with the tag for the
// target registered under its name. Blocks without a target are removed.
func ReplaceBlocks(src []byte, targets map[string]string) []byte {
	return buildBlock.ReplaceAllFunc(src, func(block []byte) []byte {
		m := buildBlock.FindSubmatch(block)
		indent, name := string(m[1]), string(m[2])

		target, ok := targets[name]
		if !ok {
			return nil
		}
		return []byte(indent + tagFor(target))
	})
}

// tagFor renders the HTML that references target. Stylesheets and scripts get
// their usual tags; anything else is inserted verbatim.
func tagFor(target string) string {
	switch strings.ToLower(path.Ext(target)) {
	case ".css":
		return fmt.Sprintf(`<link rel="stylesheet" href="%s">`, target)
	case ".js":
		return fmt.Sprintf(`<script src="%s"></script>`, target)
	default:
		return target
	}
}
