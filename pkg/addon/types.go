package addon

// Canonical file names inside an add-on and its repository entry.
const (
	DescriptorFileName = "addon.xml"
	IconFileName       = "icon.png"
	FanartFileName     = "fanart.jpg"
	ChangelogFileName  = "changelog.txt"
	CatalogFileName    = "addons.xml.gz"
)

// AuxFileNames are the files published next to a repository entry's
// archive so clients can read metadata without downloading it.
var AuxFileNames = []string{
	DescriptorFileName,
	IconFileName,
	FanartFileName,
	ChangelogFileName,
}

// Descriptor identifies one add-on as declared by its addon.xml.
type Descriptor struct {
	ID      string
	Version string
	// XML holds the full descriptor document for catalog embedding.
	XML []byte
}

// Manifest is the repository build configuration in addonsmith.yaml.
type Manifest struct {
	Version int          `yaml:"version"`
	DataDir string       `yaml:"datadir"`
	Sources []SourceSpec `yaml:"sources"`
}

// SourceSpec declares one add-on source to include in the repository.
type SourceSpec struct {
	Path     string `yaml:"path"`
	Checksum string `yaml:"checksum"`
}

// Source is one parsed add-on source reference. Local paths keep only
// Raw; remote references carry the split url, branch and subpath.
type Source struct {
	Raw      string
	URL      string
	Branch   string
	Subpath  string
	Checksum string
}
