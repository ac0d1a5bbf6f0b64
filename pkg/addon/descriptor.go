package addon

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
)

var (
	idPattern      = regexp.MustCompile(`^[a-z0-9._-]+$`)
	versionPattern = regexp.MustCompile(`^(\d+\.\d+\.\d+)`)
)

// ParseDescriptor reads the id and version attributes from the root
// element of an addon.xml document. The root element name itself is not
// constrained. The version keeps only its major.minor.patch prefix; a
// trailing qualifier is discarded.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *xml.StartElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			root = &start
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrInvalidDescriptor)
	}

	var id, version string
	for _, attr := range root.Attr {
		switch attr.Name.Local {
		case "id":
			id = attr.Value
		case "version":
			version = attr.Value
		}
	}
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: id %q", ErrInvalidDescriptor, id)
	}
	groups := versionPattern.FindStringSubmatch(version)
	if groups == nil {
		return nil, fmt.Errorf("%w: version %q", ErrInvalidDescriptor, version)
	}

	return &Descriptor{ID: id, Version: groups[1], XML: data}, nil
}
