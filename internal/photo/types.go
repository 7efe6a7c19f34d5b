package photo

// Precision states which date components were successfully inferred from a
// filename stem.
type Precision string

const (
	// PrecisionUnknown means no usable date prefix was found.
	PrecisionUnknown Precision = "unknown"
	// PrecisionYear means only the year is known.
	PrecisionYear Precision = "year"
	// PrecisionYearMonth means year and month are known.
	PrecisionYearMonth Precision = "month"
	// PrecisionFull means a complete calendar date was parsed.
	PrecisionFull Precision = "full"
)

// DateInfo is the metadata inferred from a single filename stem. A zero
// Year/Month/Day means the component is unknown; Day is only ever set when
// Month is, and Month only when Year is. Decade is always set.
type DateInfo struct {
	Year      int
	Month     int
	Day       int
	Precision Precision
	Title     string
	Decade    string
}

// FolderSummary describes a top-level category of the collection. JSON
// field names are kept from the original front end.
type FolderSummary struct {
	Name        string `json:"nombre"`
	DisplayName string `json:"nombreFormateado"`
	PhotoCount  int    `json:"totalFotos"`
}

// SubfolderSummary describes a second-level folder inside a category.
type SubfolderSummary struct {
	Name        string `json:"nombre"`
	DisplayName string `json:"nombreFormateado"`
	PhotoCount  int    `json:"totalFotos"`
	Category    string `json:"categoria"`
}

// Coordinates locates a photo. The archive pins every photo to the town
// center; there is no per-photo geodata.
type Coordinates struct {
	Latitude  float64 `json:"latitud"`
	Longitude float64 `json:"longitud"`
}

// Record is a fully assembled photo as exposed to the browsing API. It is
// built per request and never stored.
type Record struct {
	ID           string      `json:"id"`
	Title        string      `json:"titulo"`
	Description  string      `json:"descripcion"`
	Date         string      `json:"fecha,omitempty"`
	Year         int         `json:"año,omitempty"`
	Month        int         `json:"mes,omitempty"`
	Day          int         `json:"dia,omitempty"`
	Decade       string      `json:"decada"`
	Category     string      `json:"categoria"`
	Subcategory  string      `json:"subcategoria"`
	Location     string      `json:"localizacion"`
	People       []string    `json:"personas"`
	Event        string      `json:"evento"`
	FileName     string      `json:"archivo"`
	Folder       string      `json:"carpeta"`
	UploadDate   string      `json:"fechaSubida"`
	Coordinates  Coordinates `json:"coordenadas"`
	Status       string      `json:"estado"`
	ImageURL     string      `json:"imagen"`
	ThumbnailURL string      `json:"miniatura"`
	AudioURL     string      `json:"audio,omitempty"`
}

// Stats aggregates collection-wide counts.
type Stats struct {
	TotalPhotos  int            `json:"totalFotos"`
	TotalFolders int            `json:"totalCarpetas"`
	ByDecade     map[string]int `json:"porDecada"`
	ByCategory   map[string]int `json:"porCategoria"`
}
