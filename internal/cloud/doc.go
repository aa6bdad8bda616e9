package cloud

import (
	"encoding/json"

	"mousecolony/pkg/colony"
)

// encodeDocument serializes a document for storage. Collections are
// normalized first so no backend ever persists nil collections.
func encodeDocument(doc colony.Document) ([]byte, error) {
	return json.Marshal(colony.NormalizeDocument(doc))
}
