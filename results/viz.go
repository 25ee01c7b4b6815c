package results

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
)

// vizTemplate emits an embeddable 3Dmol.js fragment, not a full document.
// Cartoon colored by spectrum for the chain, green-carbon sticks for
// heteroatoms, camera fit to the whole structure.
var vizTemplate = template.Must(template.New("viz").Parse(`<div id="viewer-{{.ID}}" class="mol-viewer" style="width: 100%; height: 400px; position: relative;"></div>
<script>
(function() {
  var viewer = $3Dmol.createViewer("viewer-{{.ID}}", { backgroundColor: "white" });
  viewer.addModel("{{.PDB}}", "pdb");
  viewer.setStyle({}, { cartoon: { color: "spectrum" } });
  viewer.setStyle({ hetflag: true }, { stick: { colorscheme: "greenCarbon" } });
  viewer.zoomTo();
  viewer.render();
})();
</script>
`))

// reorderPDB partitions the record lines into chain atoms, heteroatoms
// and everything else, concatenated in that fixed order. The renderer's
// coloring rules assume ATOM records precede HETATM records.
func reorderPDB(pdb string) string {
	var atoms, hetatms, rest []string

	for _, line := range strings.Split(pdb, "\n") {
		switch {
		case strings.HasPrefix(line, "ATOM"):
			atoms = append(atoms, line)
		case strings.HasPrefix(line, "HETATM"):
			hetatms = append(hetatms, line)
		default:
			rest = append(rest, line)
		}
	}

	ordered := make([]string, 0, len(atoms)+len(hetatms)+len(rest))
	ordered = append(ordered, atoms...)
	ordered = append(ordered, hetatms...)
	ordered = append(ordered, rest...)
	return strings.Join(ordered, "\n")
}

// RenderStructureHTML renders a PDB text into an embeddable 3-D
// visualization fragment
func RenderStructureHTML(pdb string) (string, error) {
	var sb strings.Builder
	err := vizTemplate.Execute(&sb, struct {
		ID  string
		PDB string
	}{
		ID:  uuid.New().String()[:8],
		PDB: reorderPDB(pdb),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render structure: %w", err)
	}
	return sb.String(), nil
}
