package ingest

import (
	"golang.org/x/text/encoding/charmap"
)

// DecodeLatin1 converts an ISO-8859-1 byte string to UTF-8. INEGI and CDMX
// open-data shapefiles ship DBF attributes in Latin-1, which go-shp hands
// back as raw bytes.
func DecodeLatin1(s string) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}
