package colour

// DefaultPaper is the paper type reported when none is known.
const DefaultPaper = "Regular Stock"

// Provenance records where a recipe came from.
type Provenance string

const (
	// ProvenanceAI marks a recipe returned by the remote model in this session.
	ProvenanceAI Provenance = "ai"
	// ProvenanceHeuristic marks a recipe computed by the local rule engine.
	ProvenanceHeuristic Provenance = "heuristic"
	// ProvenanceCache marks a recipe loaded from the durable snapshot.
	ProvenanceCache Provenance = "cache"
)

// Valid reports whether p is one of the known provenance values.
func (p Provenance) Valid() bool {
	switch p {
	case ProvenanceAI, ProvenanceHeuristic, ProvenanceCache:
		return true
	}
	return false
}

func (p Provenance) String() string {
	return string(p)
}

// StandardAuto is the deterministic conversion plus its caveat.
type StandardAuto struct {
	CMYK
	Note string `json:"note"`
}

// SmartRecipe is a print-corrected recipe.
type SmartRecipe struct {
	CMYK
	Explanation string `json:"explanation"`
	Paper       string `json:"paper"`
}

// PrintConversion is the full recipe for one colour. Treat it as a value:
// a different colour always gets a new PrintConversion.
type PrintConversion struct {
	Hex              HexColor     `json:"hex"`
	StandardAuto     StandardAuto `json:"standard_auto"`
	SmartPrintRecipe SmartRecipe  `json:"smart_print_recipe"`
}

// Clamp returns a copy with every ink value forced into range.
func (pc PrintConversion) Clamp() PrintConversion {
	pc.StandardAuto.CMYK = pc.StandardAuto.CMYK.Clamp()
	pc.SmartPrintRecipe.CMYK = pc.SmartPrintRecipe.CMYK.Clamp()
	return pc
}

// Result is a recipe together with its provenance.
type Result struct {
	PrintConversion
	Provenance Provenance `json:"provenance"`
}

// WithProvenance returns a copy of r tagged with p.
func (r Result) WithProvenance(p Provenance) Result {
	r.Provenance = p
	return r
}
