package repo

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"

	"github.com/klauspost/compress/gzip"

	"addonsmith/internal/cli/shared"
)

var xmlDeclarationPattern = regexp.MustCompile(`(?s)^\s*<\?xml.*?\?>\s*`)

// writeCatalog joins the descriptor documents into one addons document,
// compresses it to {datadir}/addons.xml.gz and writes the digest
// sidecar. Document order follows the slice.
func writeCatalog(datadir string, addons []*Descriptor) (string, error) {
	var doc bytes.Buffer
	doc.WriteString(xml.Header)
	doc.WriteString("<addons>\n")
	for _, desc := range addons {
		doc.Write(stripXMLDeclaration(desc.XML))
		doc.WriteByte('\n')
	}
	doc.WriteString("</addons>\n")

	catalogPath := filepath.Join(datadir, CatalogFileName)
	if err := writeGzip(catalogPath, doc.Bytes()); err != nil {
		return "", err
	}
	if err := shared.WriteChecksumFile(catalogPath); err != nil {
		return "", err
	}
	return catalogPath, nil
}

func writeGzip(path string, content []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	writer := gzip.NewWriter(out)
	if _, err := writer.Write(content); err != nil {
		writer.Close()
		out.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// stripXMLDeclaration drops a leading <?xml ...?> prologue so a
// descriptor document can embed under the catalog root.
func stripXMLDeclaration(doc []byte) []byte {
	return bytes.TrimSpace(xmlDeclarationPattern.ReplaceAll(doc, nil))
}
