package llm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/plan-parser/constants"
)

// readDocument loads the raw document and the MIME type declared for it.
// Content is not sniffed; the extension is trusted.
func readDocument(path string, maxBytes int64) ([]byte, string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return nil, "", fmt.Errorf("document is %d bytes, limit %d", st.Size(), maxBytes)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return b, constants.MimeTypeForExt(filepath.Ext(path)), nil
}
