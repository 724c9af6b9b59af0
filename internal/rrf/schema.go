package rrf

// Schema is the ordered, positional column layout of one RRF table.
type Schema struct {
	name    string
	columns []string
	index   map[string]int
}

// NewSchema creates a schema for the table file <name>.RRF.
func NewSchema(name string, columns ...string) Schema {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return Schema{name: name, columns: columns, index: idx}
}

// Name returns the table name, e.g. MRCONSO.
func (s Schema) Name() string { return s.name }

// Columns returns the column names in file order.
func (s Schema) Columns() []string { return s.columns }

// Len returns the expected column count.
func (s Schema) Len() int { return len(s.columns) }

// Index returns the position of a column.
func (s Schema) Index(column string) (int, bool) {
	i, ok := s.index[column]
	return i, ok
}

// Column names used by the pipeline.
const (
	ColCUI  = "CUI"
	ColLAT  = "LAT"
	ColTS   = "TS"
	ColSTR  = "STR"
	ColDEF  = "DEF"
	ColSTY  = "STY"
	ColCUI1 = "CUI1"
	ColCUI2 = "CUI2"
	ColREL  = "REL"
	ColRELA = "RELA"
)

// Standard UMLS Metathesaurus table layouts.
var (
	MRCONSO = NewSchema("MRCONSO",
		"CUI", "LAT", "TS", "LUI", "STT", "SUI", "ISPREF", "AUI", "SAUI",
		"SCUI", "SDUI", "SAB", "TTY", "CODE", "STR", "SRL", "SUPPRESS", "CVF",
	)
	MRREL = NewSchema("MRREL",
		"CUI1", "AUI1", "STYPE1", "REL", "CUI2", "AUI2", "STYPE2", "RELA",
		"RUI", "SRUI", "SAB", "SL", "RG", "DIR", "SUPPRESS", "CVF",
	)
	MRDEF = NewSchema("MRDEF",
		"CUI", "AUI", "ATUI", "SATUI", "SAB", "DEF", "SUPPRESS", "CVF",
	)
	MRSTY = NewSchema("MRSTY",
		"CUI", "TUI", "STN", "STY", "ATUI", "CVF",
	)
)
