package refusal

// FileSide distinguishes which snapshot a refusal detail refers to.
type FileSide int

const (
	Old FileSide = iota
	New
)

func (s FileSide) String() string {
	if s == New {
		return "new"
	}
	return "old"
}

// NamedDelimiter is one of the five delimiters rvl recognizes by name.
type NamedDelimiter int

const (
	Comma NamedDelimiter = iota
	Tab
	Semicolon
	Pipe
	Caret
)

func (n NamedDelimiter) String() string {
	switch n {
	case Comma:
		return "comma"
	case Tab:
		return "tab"
	case Semicolon:
		return "semicolon"
	case Pipe:
		return "pipe"
	case Caret:
		return "caret"
	default:
		return "unknown"
	}
}

// DelimiterHint names a delimiter for a rerun suggestion, either by its
// recognized name or as a raw 0xNN byte.
type DelimiterHint struct {
	Named    NamedDelimiter
	IsNamed  bool
	RawByte  byte
}

func NamedHint(n NamedDelimiter) DelimiterHint { return DelimiterHint{Named: n, IsNamed: true} }
func ByteHint(b byte) DelimiterHint            { return DelimiterHint{RawByte: b} }

func (h DelimiterHint) String() string {
	if h.IsNamed {
		return h.Named.String()
	}
	return formatHexByte(h.RawByte)
}

// DialectSuggestion is the remediation rvl offers for an E_DIALECT refusal.
type DialectSuggestion struct {
	ForceDelimiter *DelimiterHint // rerun with --delimiter <hint>
	SepDirective   *byte          // add `sep=X` to the file
}

// EncodingIssue classifies why the Input Guard refused on encoding.
type EncodingIssue int

const (
	EncodingUTF16 EncodingIssue = iota
	EncodingUTF32
	EncodingNulByte
)

func (i EncodingIssue) String() string {
	switch i {
	case EncodingUTF16:
		return "utf16"
	case EncodingUTF32:
		return "utf32"
	case EncodingNulByte:
		return "nul_byte"
	default:
		return "unknown"
	}
}

// HeadersIssueKind classifies an E_HEADERS refusal.
type HeadersIssueKind int

const (
	MissingHeader HeadersIssueKind = iota
	DuplicateHeader
	ExtraFields
)

// Kind is a closed sum type holding the code-specific detail payload.
// Exactly one of the fields relevant to Code is populated; callers switch
// on Code, not on which field is non-zero.
type Kind struct {
	// Io
	IoFile  FileSide
	IoError string

	// Encoding
	EncFile  FileSide
	EncIssue EncodingIssue
	// EncHint is an optional human-readable guess at the source encoding
	// (e.g. "windows-1252"), populated by the charset sniffer. Empty when
	// no better guess than the BOM/NUL classification is available.
	EncHint string

	// CsvParse
	ParseFile   FileSide
	ParseLine   *uint64
	ParseColumn *uint64

	// Headers
	HeadersFile     FileSide
	HeadersIssue    HeadersIssueKind
	HeadersName     []byte // Duplicate
	HeadersRecord   uint64 // ExtraFields

	// NoKey
	KeyColumn []byte

	// KeyEmpty
	KeyEmptyFile   FileSide
	KeyEmptyRecord uint64

	// KeyDup
	KeyDupFile   FileSide
	KeyDupRecord uint64
	KeyDupValue  []byte

	// KeyMismatch
	MissingInNew   int
	ExtraInNew     int
	MissingSamples [][]byte
	ExtraSamples   [][]byte

	// RowCount
	RowsOld       uint64
	RowsNew       uint64
	SuggestedKeys [][]byte

	// NeedKey reuses SuggestedKeys.

	// Dialect
	DialectFile        FileSide
	TiedDelimiters      []byte
	DialectSuggestion  DialectSuggestion

	// MixedTypes / Missingness
	CellFile   FileSide
	CellRecord uint64
	CellColumn []byte
	CellValue  []byte
	CellKey    []byte // optional, key-mode only

	// Diffuse
	TopKCoverage float64
	Threshold    float64
}

// Detail pairs a code-specific Kind with its rendered remediation string.
type Detail struct {
	Code Code
	Kind Kind
	Next string
}

// RerunPaths carries the display names rvl substitutes into rerun commands.
type RerunPaths struct {
	Old string
	New string
}

// WithDefaultNext builds a Detail, computing Next from the code and kind
// exactly as the original implementation's default_next policy does.
func WithDefaultNext(code Code, kind Kind, paths RerunPaths) Detail {
	return Detail{Code: code, Kind: kind, Next: defaultNext(code, kind, paths)}
}
