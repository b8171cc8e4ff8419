package manifest

// CollectManifest is written next to the corpus files after a collect run.
// It gives an overview of what each access type produced and which titles
// came back empty, without opening the corpora themselves.
type CollectManifest struct {
	GeneratedAt string          `json:"generated_at" yaml:"generated_at"`
	RunKey      string          `json:"run_key,omitempty" yaml:"run_key,omitempty"`
	StartDate   string          `json:"start_date" yaml:"start_date"`
	EndDate     string          `json:"end_date" yaml:"end_date"`
	TitleCount  int             `json:"title_count" yaml:"title_count"`
	Requests    int             `json:"requests" yaml:"requests"`
	Accesses    []AccessSummary `json:"accesses" yaml:"accesses"`
	Misses      []MissSummary   `json:"misses" yaml:"misses"`
}

// AccessSummary describes one corpus file.
type AccessSummary struct {
	Access      string   `json:"access" yaml:"access"`
	FilePath    string   `json:"file_path" yaml:"file_path"`
	SizeBytes   int64    `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	Titles      int      `json:"titles" yaml:"titles"`
	WithData    int      `json:"with_data" yaml:"with_data"`
	Empty       int      `json:"empty" yaml:"empty"`
	EmptyTitles []string `json:"empty_titles,omitempty" yaml:"empty_titles,omitempty"`
}

// MissSummary is one failed request.
type MissSummary struct {
	Title        string `json:"title" yaml:"title"`
	Access       string `json:"access" yaml:"access"`
	Variant      string `json:"variant" yaml:"variant"`
	ErrorType    string `json:"error_type" yaml:"error_type"`
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}
