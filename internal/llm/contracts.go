package llm

import "context"

// DocumentRequest is one call to a vision-capable inference service.
type DocumentRequest struct {
	Data        []byte
	MIMEType    string
	Instruction string
	FileName    string
}

// DocumentGenerator sends a document with an instruction and returns the
// service's free-form text reply. Implementations treat the reply as
// untrusted; parsing happens in the caller.
type DocumentGenerator interface {
	Model() string
	Generate(ctx context.Context, req DocumentRequest) (string, error)
}
