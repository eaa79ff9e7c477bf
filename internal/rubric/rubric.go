// Package rubric defines the fixed classification rubric: four categories of
// weighted criteria plus two negative factors, with the keyword lists used
// for evidence retrieval. The tables here are business rules ported verbatim
// from the commercial rubric; do not "fix" thresholds or orderings.
package rubric

// Category identifies one of the four positive criterion groups.
type Category int

const (
	CategoryPA Category = iota // protein production
	CategoryS                  // gene synthesis
	CategoryC                  // cell-free protein synthesis
	CategoryF                  // growth factors
)

// Code returns the short category code used in criterion codes and exports.
func (c Category) Code() string {
	switch c {
	case CategoryPA:
		return "PA"
	case CategoryS:
		return "S"
	case CategoryC:
		return "C"
	case CategoryF:
		return "F"
	default:
		return "?"
	}
}

// Title returns the human-readable category name used in prompts and reports.
func (c Category) Title() string {
	switch c {
	case CategoryPA:
		return "PRODUÇÃO DE PROTEÍNA"
	case CategoryS:
		return "SÍNTESE DE GENE"
	case CategoryC:
		return "CFPS"
	case CategoryF:
		return "FATORES DE CRESCIMENTO"
	default:
		return "DESCONHECIDA"
	}
}

// Slug returns the filename-safe category name used for exported lists.
func (c Category) Slug() string {
	switch c {
	case CategoryPA:
		return "producao_proteina"
	case CategoryS:
		return "sintese_gene"
	case CategoryC:
		return "cfps"
	case CategoryF:
		return "fatores_crescimento"
	default:
		return "desconhecida"
	}
}

// Categories returns the four categories in canonical (declaration) order.
func Categories() []Category {
	return []Category{CategoryPA, CategoryS, CategoryC, CategoryF}
}

// TieBreakOrder is the fixed category precedence used by the segmenter when
// multiple categories tie at the best tier. Not alphabetical; do not sort.
var TieBreakOrder = []Category{CategoryC, CategoryF, CategoryPA, CategoryS}

// Tier is the per-category classification level.
type Tier int

const (
	TierBaixa    Tier = 1
	TierModerada Tier = 2
	TierAlta     Tier = 3
)

func (t Tier) String() string {
	switch t {
	case TierAlta:
		return "ALTA"
	case TierModerada:
		return "MODERADA"
	case TierBaixa:
		return "BAIXA"
	default:
		return "BAIXA"
	}
}

// Min returns the more restrictive of two tiers.
func (t Tier) Min(other Tier) Tier {
	if other < t {
		return other
	}
	return t
}

// Criterion is one atomic yes/no rubric item.
type Criterion struct {
	// Code is the stable short identifier (PA1, S2, N1, ...).
	Code string

	// Description is shown to the LLM alongside the code.
	Description string

	// Weight is used in category score normalization (1 or 2).
	Weight int

	// Category owns this criterion. Meaningless when Negative is true.
	Category Category

	// Negative marks a disqualifying/limiting factor rather than a
	// positive signal.
	Negative bool

	// Keywords are matched as normalized substrings during evidence
	// retrieval. Portuguese and English variants.
	Keywords []string
}

var criteria = []Criterion{
	// Category PA: protein production
	{
		Code:        "PA1",
		Description: "Expressão e purificação de proteínas recombinantes",
		Weight:      2,
		Category:    CategoryPA,
		Keywords: []string{
			"expressao proteina", "purificacao proteina", "proteina recombinante",
			"antigeno recombinante", "expressao heterologa", "producao proteinas",
			"protein expression", "protein purification", "recombinant protein",
		},
	},
	{
		Code:        "PA2",
		Description: "Enzimas biotecnológicas e biocatálise",
		Weight:      2,
		Category:    CategoryPA,
		Keywords: []string{
			"enzimas biotecnologicas", "caracterizacao enzimas", "purificacao enzimas",
			"biocatalise", "enzimas industriais", "biotechnological enzymes",
			"enzyme characterization", "enzyme purification", "biocatalysis",
		},
	},
	{
		Code:        "PA3",
		Description: "Técnicas ELISA, Western blot, biossensores",
		Weight:      1,
		Category:    CategoryPA,
		Keywords: []string{
			"elisa", "western blot", "biossensores", "imunoensaios", "triagem farmacos",
			"imunizacao", "bioquimica proteinas", "interacoes proteicas",
			"biosensors", "immunoassays", "drug screening", "protein biochemistry",
		},
	},
	{
		Code:        "PA4",
		Description: "Cromatografia, espectrometria de massas",
		Weight:      1,
		Category:    CategoryPA,
		Keywords: []string{
			"cromatografia", "espectrometria massas", "modelagem estrutural",
			"hplc", "analise instrumental", "proteomica", "chromatography",
			"mass spectrometry", "structural modeling", "proteomics",
		},
	},

	// Category S: gene synthesis
	{
		Code:        "S1",
		Description: "Síntese e expressão gênica",
		Weight:      1,
		Category:    CategoryS,
		Keywords: []string{
			"sintese genica", "expressao genica", "construcao genica",
			"gene synthesis", "gene expression", "gene construction",
		},
	},
	{
		Code:        "S2",
		Description: "Clonagem molecular, PCR, CRISPR",
		Weight:      1,
		Category:    CategoryS,
		Keywords: []string{
			"clonagem molecular", "clonagem genica", "pcr", "crispr",
			"edicao genetica", "molecular cloning", "gene editing", "genetic engineering",
		},
	},
	{
		Code:        "S3",
		Description: "Circuitos genéticos, biologia sintética",
		Weight:      1,
		Category:    CategoryS,
		Keywords: []string{
			"circuito genetico", "chassis bacteriano", "engenharia metabolica",
			"biologia sintetica", "genetic circuits", "synthetic biology", "metabolic engineering",
		},
	},

	// Category C: CFPS
	{
		Code:        "C1",
		Description: "Cell-free protein synthesis",
		Weight:      1,
		Category:    CategoryC,
		Keywords: []string{
			"cfps", "cell-free", "sintese livre celula", "sistema acelular",
			"cell-free protein synthesis", "in vitro protein synthesis",
		},
	},
	{
		Code:        "C2",
		Description: "Proteínas tóxicas/difíceis",
		Weight:      1,
		Category:    CategoryC,
		Keywords: []string{
			"proteinas toxicas", "proteinas dificeis", "proteinas recalcitrantes",
			"toxic proteins", "difficult proteins", "recalcitrant proteins",
		},
	},
	{
		Code:        "C3",
		Description: "Screening de fármacos",
		Weight:      1,
		Category:    CategoryC,
		Keywords: []string{
			"screening farmacos", "triagem medicamentos", "descoberta drogas",
			"validacao expressao", "drug screening", "drug discovery",
		},
	},
	{
		Code:        "C4",
		Description: "Aplicações educacionais",
		Weight:      1,
		Category:    CategoryC,
		Keywords: []string{
			"educacao", "ensino", "didatica", "educacional",
			"education", "teaching", "educational applications",
		},
	},
	{
		Code:        "C5",
		Description: "Cristalografia de proteínas",
		Weight:      1,
		Category:    CategoryC,
		Keywords: []string{
			"cristalografia proteinas", "estrutura proteinas", "cristais proteina",
			"difracao raios x", "protein crystallography", "x-ray diffraction",
		},
	},

	// Category F: growth factors
	{
		Code:        "F1",
		Description: "Cultura celular, células-tronco",
		Weight:      1,
		Category:    CategoryF,
		Keywords: []string{
			"cultura celular", "cultivo celulas", "diferenciacao celular",
			"celulas-tronco", "ipscs", "cell culture", "stem cells",
		},
	},
	{
		Code:        "F2",
		Description: "Fermentação, biorreatores",
		Weight:      1,
		Category:    CategoryF,
		Keywords: []string{
			"fermentacao", "biorreatores", "crescimento celular",
			"producao biomassa", "fermentation", "bioreactors", "biomass production",
		},
	},
	{
		Code:        "F3",
		Description: "Embriologia, reprodução assistida",
		Weight:      1,
		Category:    CategoryF,
		Keywords: []string{
			"embriologia", "reproducao assistida", "fertilizacao in vitro",
			"desenvolvimento embrionario", "embryology", "assisted reproduction",
		},
	},
	{
		Code:        "F4",
		Description: "Engenharia de tecidos",
		Weight:      1,
		Category:    CategoryF,
		Keywords: []string{
			"engenharia tecidos", "bioimpressao", "scaffolds", "medicina regenerativa",
			"tissue engineering", "bioprinting", "regenerative medicine",
		},
	},

	// Negative factors
	{
		Code:        "N1",
		Description: "Área SEM uso direto de proteínas recombinantes",
		Weight:      1,
		Negative:    true,
		Keywords: []string{
			"sem proteinas", "nao usa proteinas", "area teorica", "matematica aplicada",
			"fisica teorica", "quimica inorganica", "without proteins", "theoretical area",
		},
	},
	{
		Code:        "N2",
		Description: "Área NÃO correlata à biotecnologia",
		Weight:      1,
		Negative:    true,
		Keywords: []string{
			"nao biotecnologia", "area distante", "engenharia civil", "psicologia",
			"administracao", "direito", "not biotechnology", "distant area",
		},
	},
}

var (
	byCode     map[string]Criterion
	byCategory map[Category][]Criterion
	codes      []string
)

func init() {
	byCode = make(map[string]Criterion, len(criteria))
	byCategory = make(map[Category][]Criterion)
	codes = make([]string, 0, len(criteria))

	for _, c := range criteria {
		byCode[c.Code] = c
		codes = append(codes, c.Code)
		if !c.Negative {
			byCategory[c.Category] = append(byCategory[c.Category], c)
		}
	}
}

// Criteria returns all criteria, negative factors last, in canonical order.
func Criteria() []Criterion {
	out := make([]Criterion, len(criteria))
	copy(out, criteria)
	return out
}

// Codes returns every criterion code in canonical order. A classification
// response missing any of these codes is invalid.
func Codes() []string {
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// ByCode looks up a criterion by its code.
func ByCode(code string) (Criterion, bool) {
	c, ok := byCode[code]
	return c, ok
}

// CategoryCriteria returns the positive criteria owned by a category, in
// canonical order.
func CategoryCriteria(cat Category) []Criterion {
	src := byCategory[cat]
	out := make([]Criterion, len(src))
	copy(out, src)
	return out
}

// CategoryWeightSum returns the normalization denominator for a category.
func CategoryWeightSum(cat Category) int {
	sum := 0
	for _, c := range byCategory[cat] {
		sum += c.Weight
	}
	return sum
}

// NegativeCodes returns the negative-factor codes in canonical order.
func NegativeCodes() []string {
	var out []string
	for _, c := range criteria {
		if c.Negative {
			out = append(out, c.Code)
		}
	}
	return out
}

// CriterionSet maps criterion code to the boolean verdict returned by the
// classifier.
type CriterionSet map[string]bool

// Complete reports whether the set contains every expected criterion code.
func (s CriterionSet) Complete() bool {
	for _, code := range codes {
		if _, ok := s[code]; !ok {
			return false
		}
	}
	return true
}

// AllFalse returns a set with every criterion false. This is the terminal
// fallback verdict: no evidence of any criterion.
func AllFalse() CriterionSet {
	s := make(CriterionSet, len(codes))
	for _, code := range codes {
		s[code] = false
	}
	return s
}
