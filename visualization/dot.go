package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/junction"
)

// DOTGenerator renders the intersection's movement table as a Graphviz graph.
// Each movement becomes a chain of edges from its entry lane through the
// quadrants it holds to its exit road.
type DOTGenerator struct {
	options DOTOptions
	summary *junction.RunSummary
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	RankDirection string // "TB", "LR", "BT", "RL"
	Maneuvers     []junction.Maneuver
	Entries       []junction.Direction
	LaneShape     string
	QuadrantShape string
	ManeuverColor map[junction.Maneuver]string
}

// DefaultDOTOptions renders every movement left to right
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		RankDirection: "LR",
		Maneuvers: []junction.Maneuver{
			junction.ManeuverRight,
			junction.ManeuverStraight,
			junction.ManeuverLeft,
			junction.ManeuverUTurn,
		},
		Entries:       append([]junction.Direction(nil), junction.Directions[:]...),
		LaneShape:     "box",
		QuadrantShape: "square",
		ManeuverColor: map[junction.Maneuver]string{
			junction.ManeuverRight:    "forestgreen",
			junction.ManeuverStraight: "steelblue",
			junction.ManeuverLeft:     "darkorange",
			junction.ManeuverUTurn:    "purple",
		},
	}
}

// NewDOTGenerator creates a new DOT generator
func NewDOTGenerator(options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	return &DOTGenerator{options: opts}
}

// WithSummary annotates quadrant nodes with the crossing counts of a run
func (g *DOTGenerator) WithSummary(summary junction.RunSummary) *DOTGenerator {
	g.summary = &summary
	return g
}

// Generate creates the DOT representation
func (g *DOTGenerator) Generate() (string, error) {
	if len(g.options.Maneuvers) == 0 {
		return "", fmt.Errorf("no maneuvers selected")
	}
	for _, d := range g.options.Entries {
		if !d.Valid() {
			return "", fmt.Errorf("invalid entry direction %d", int(d))
		}
	}

	var dot strings.Builder

	dot.WriteString("digraph Intersection {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generateNodes(&dot)
	g.generateMovements(&dot)

	dot.WriteString("}\n")
	return dot.String(), nil
}

func (g *DOTGenerator) generateNodes(dot *strings.Builder) {
	dot.WriteString("  // Lanes\n")
	for _, d := range junction.Directions {
		dot.WriteString(fmt.Sprintf("  \"in_%s\" [shape=%s style=\"filled\" fillcolor=lightgreen label=\"%s in\"];\n",
			d, g.options.LaneShape, d))
		dot.WriteString(fmt.Sprintf("  \"out_%s\" [shape=%s style=\"filled\" fillcolor=lightcoral label=\"%s out\"];\n",
			d, g.options.LaneShape, d))
	}

	dot.WriteString("  // Quadrants\n")
	for _, q := range junction.Quadrants {
		label := q.String()
		if g.summary != nil {
			st := g.summary.Quadrants[int(q)-1]
			label = fmt.Sprintf("%s\\n%d crossings", q, st.Crossings)
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" [shape=%s style=\"filled\" fillcolor=lightyellow label=\"%s\"];\n",
			q, g.options.QuadrantShape, label))
	}
	dot.WriteString("\n")
}

func (g *DOTGenerator) generateMovements(dot *strings.Builder) {
	selected := make(map[junction.Maneuver]bool, len(g.options.Maneuvers))
	for _, m := range g.options.Maneuvers {
		selected[m] = true
	}

	dot.WriteString("  // Movements\n")
	for _, entry := range g.options.Entries {
		for _, exit := range junction.Directions {
			m := junction.Classify(entry, exit)
			if !selected[m] {
				continue
			}

			nodes := []string{"in_" + entry.String()}
			for _, q := range junction.ResolvePath(entry, exit).Quadrants() {
				nodes = append(nodes, q.String())
			}
			nodes = append(nodes, "out_"+exit.String())

			color := g.options.ManeuverColor[m]
			if color == "" {
				color = "black"
			}
			label := fmt.Sprintf("%s->%s", entry, exit)
			for i := 0; i+1 < len(nodes); i++ {
				dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=%s label=\"%s\" tooltip=\"%s\"];\n",
					nodes[i], nodes[i+1], color, label, m))
			}
		}
	}
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG renders the graph to SVG with the Graphviz dot command
func (g *DOTGenerator) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}
